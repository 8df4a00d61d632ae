package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"faceauth/internal/config"
	"faceauth/internal/web/middleware"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a signed bearer token for a user",
	Long: `Issue a signed bearer token for a user. The token is signed with
AUTH_SECRET and accepted by the API in the Authorization header.`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	auth := middleware.NewAuthenticator(cfg.Auth.Secret)
	fmt.Println(auth.Token(args[0]))
	return nil
}
