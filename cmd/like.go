package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var likeCmd = &cobra.Command{
	Use:   "like <article-id>",
	Short: "Toggle a like on an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := newSession()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		if err := sess.Likes.Refresh(ctx, false); err != nil {
			return fmt.Errorf("fetching likes: %w", err)
		}

		id := args[0]
		if err := sess.Likes.Toggle(ctx, id); err != nil {
			return fmt.Errorf("toggling like: %w", err)
		}
		sess.Stats.Invalidate(id)

		verb := "Unliked"
		if sess.Likes.Contains(id) {
			verb = "Liked"
		}
		if count, err := sess.Stats.LikeCount(ctx, id); err == nil {
			fmt.Printf("%s %s (%d likes).\n", verb, id, count)
		} else {
			fmt.Printf("%s %s.\n", verb, id)
		}
		return nil
	},
}
