package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"faceauth/internal/config"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <image-file-or-directory>",
	Short: "Enroll reference face images",
	Long: `Enroll reference face images into the registry.

With a single image file, --user is required and the image becomes
that user's reference. With a directory, every image in it is
enrolled and the file name without extension is used as the user id.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("user", "", "User id to enroll (required for a single file)")
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// collectEnrollments maps user ids to image paths for the given target.
func collectEnrollments(target, userID string) (map[string]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}

	if !info.IsDir() {
		if userID == "" {
			return nil, errors.New("--user is required when enrolling a single file")
		}
		return map[string]string{userID: target}, nil
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", target, err)
	}

	enrollments := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !imageExtensions[ext] {
			continue
		}
		user := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		enrollments[user] = filepath.Join(target, entry.Name())
	}

	if len(enrollments) == 0 {
		return nil, fmt.Errorf("no image files found in %s", target)
	}
	return enrollments, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	service, cleanup, err := newService(cfg)
	if err != nil {
		return fmt.Errorf("initializing biometric service: %w", err)
	}
	defer cleanup()

	enrollments, err := collectEnrollments(args[0], mustGetString(cmd, "user"))
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(enrollments),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("faces"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	ctx := context.Background()
	failed := 0
	for user, path := range enrollments {
		image, err := os.ReadFile(path) //nolint:gosec // paths come from the operator
		if err != nil {
			fmt.Printf("\nFailed to read %s: %v\n", path, err)
			failed++
			bar.Add(1)
			continue
		}

		if err := service.Enroll(ctx, user, image); err != nil {
			fmt.Printf("\nFailed to enroll %s: %v\n", user, err)
			failed++
		}
		bar.Add(1)
	}
	fmt.Println()

	if failed > 0 {
		return fmt.Errorf("%d of %d enrollments failed", failed, len(enrollments))
	}
	fmt.Printf("Enrolled %d face(s)\n", len(enrollments))
	return nil
}
