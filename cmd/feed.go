package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthurgrandao/scinewsAI/internal/model"
)

var (
	flagSearch string
	flagPages  int
)

func init() {
	feedCmd.Flags().StringVar(&flagSearch, "search", "", "narrow the feed with a search query")
	feedCmd.Flags().IntVar(&flagPages, "pages", 1, "number of pages to load")
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print the subscribed feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := newSession()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		if err := sess.Feed.Reset(ctx, flagSearch); err != nil {
			return fmt.Errorf("fetching feed: %w", err)
		}
		for p := 1; p < flagPages && sess.Feed.HasMore(); p++ {
			if err := sess.Feed.LoadNext(ctx); err != nil {
				return fmt.Errorf("fetching page %d: %w", p+1, err)
			}
		}

		// Liked markers are best effort; an anonymous session just skips them.
		_ = sess.Likes.Refresh(ctx, false)

		snapshot := sess.Feed.Snapshot()
		if len(snapshot.Articles) == 0 {
			fmt.Println("No articles in your feed.")
			return nil
		}

		for _, a := range snapshot.Articles {
			printArticle(a, sess.Likes.Contains(a.ID))
		}
		fmt.Printf("\n%d of %d articles\n", len(snapshot.Articles), snapshot.Total)
		return nil
	},
}

func printArticle(a model.Article, liked bool) {
	mark := " "
	if liked {
		mark = "♥"
	}
	fmt.Printf("%s %s  %s\n", mark, a.ID, a.Title)
	if len(a.Authors) > 0 {
		fmt.Printf("    %s · %s\n", strings.Join(a.Authors, ", "), a.PublicationDate.Format("2006-01-02"))
	}
}
