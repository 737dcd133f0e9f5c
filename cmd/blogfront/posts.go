package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abdulachik/blogfront/internal/api"
	"github.com/abdulachik/blogfront/internal/app"
	"github.com/abdulachik/blogfront/internal/post"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List blog posts",
	Long:  `Fetch the post list from the API and print one line per post.`,
	RunE:  runPosts,
}

func init() {
	rootCmd.AddCommand(postsCmd)
}

func runPosts(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a := app.New(cfg)
	posts, err := a.API.FetchPosts(context.Background())

	var pe *api.ParseError
	if errors.As(err, &pe) {
		posts, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("fetch posts: %w", err)
	}

	printPosts(cmd.OutOrStdout(), posts, cfg.ExcerptLength)
	return nil
}

func printPosts(w io.Writer, posts []post.Post, excerptLength int) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts available.")
		return
	}

	fmt.Fprintf(w, "%d posts:\n", len(posts))
	for i, p := range posts {
		fmt.Fprintf(w, "\n[%s] %s\n", p.Key(i), p.Title)
		if p.HasImage() {
			fmt.Fprintf(w, "  image: %s\n", p.ImageURL)
		}
		fmt.Fprintf(w, "  %s\n", p.Excerpt(excerptLength))
	}
}
