package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "faceauth",
	Short: "Face re-authentication service for quiz attempts",
	Long: `Faceauth is a biometric re-authentication service. Users enroll a
reference face image and later verify themselves against it before
submitting quiz attempts. Embeddings come from a neural embedding
server, with a deterministic pixel fallback for development.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
