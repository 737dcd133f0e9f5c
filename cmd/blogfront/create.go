package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdulachik/blogfront/internal/app"
	"github.com/abdulachik/blogfront/internal/storage"
	"github.com/abdulachik/blogfront/internal/workflow"
)

var (
	createTitle       string
	createContent     string
	createImage       string
	createContentType string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a blog post",
	Long: `Upload an image and create a post from the terminal, using the same
presign, upload and submit steps as the web form.

Examples:
  blogfront create --title "Hello" --content "First post" --image cat.png
  blogfront create --title "Hello" --content "..." --image raw.bin --content-type image/webp`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "Post title")
	createCmd.Flags().StringVar(&createContent, "content", "", "Post content")
	createCmd.Flags().StringVar(&createImage, "image", "", "Path to the image file")
	createCmd.Flags().StringVar(&createContentType, "content-type", "", "Image content type (sniffed when empty)")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	var f storage.File
	if createImage != "" {
		data, err := os.ReadFile(createImage)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		f = storage.NewFile(createImage, createContentType, data)
	}

	a := app.New(cfg)
	s := a.NewSession()
	out := cmd.OutOrStdout()

	if err := s.SelectFile(ctx, f); err != nil {
		return userError(err)
	}

	result, err := s.Submit(ctx, createTitle, createContent)
	if err != nil {
		return userError(err)
	}

	if result.Warning != "" {
		fmt.Fprintf(out, "Warning: %s\n", result.Warning)
		if result.Message != "" {
			fmt.Fprintln(out, result.Message)
		}
		return nil
	}

	fmt.Fprintln(out, workflow.MsgCreated)
	if result.PostID != "" {
		fmt.Fprintf(out, "Post ID: %s\n", result.PostID)
	}
	return nil
}

// userError unwraps validation failures to their message.
func userError(err error) error {
	var ve *workflow.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return err
}
