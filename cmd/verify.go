package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"faceauth/internal/config"
	"faceauth/internal/registry"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <image-file>",
	Short: "Verify a face image against a user's enrollment",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("user", "", "User id to verify against (required)")
	verifyCmd.MarkFlagRequired("user")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	service, cleanup, err := newService(cfg)
	if err != nil {
		return fmt.Errorf("initializing biometric service: %w", err)
	}
	defer cleanup()

	userID := mustGetString(cmd, "user")
	image, err := os.ReadFile(args[0]) //nolint:gosec // path comes from the operator
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	decision, err := service.Verify(context.Background(), userID, image)
	if errors.Is(err, registry.ErrNotEnrolled) {
		return fmt.Errorf("user %s has no enrolled face", userID)
	}
	if err != nil {
		return fmt.Errorf("verifying face: %w", err)
	}

	fmt.Printf("Score: %.4f (threshold %.4f)\n", decision.Score, service.Threshold())
	if !decision.Match {
		return errors.New("face does not match the enrolled reference")
	}
	fmt.Println("MATCH")
	return nil
}
