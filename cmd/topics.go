package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthurgrandao/scinewsAI/internal/model"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics and manage subscriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := newSession()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		catalog, err := sess.Topics.Ensure(ctx, false)
		if err != nil {
			return fmt.Errorf("fetching topics: %w", err)
		}
		_ = sess.Subscriptions.Refresh(ctx, false)

		for _, t := range catalog {
			fmt.Println(formatTopicLine(t, sess.Subscriptions.Contains(t.ID)))
		}
		return nil
	},
}

func formatTopicLine(t model.Topic, subscribed bool) string {
	mark := " "
	if subscribed {
		mark = "*"
	}
	line := fmt.Sprintf("%s %s  %s", mark, t.ID, t.Name)
	if t.Description != "" {
		line += " - " + t.Description
	}
	return line
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <topic-id>",
	Short: "Toggle a topic subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := newSession()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		if err := sess.Subscriptions.Refresh(ctx, false); err != nil {
			return fmt.Errorf("fetching subscriptions: %w", err)
		}

		id := args[0]
		if err := sess.Subscriptions.Toggle(ctx, id); err != nil {
			return fmt.Errorf("toggling subscription: %w", err)
		}

		if sess.Subscriptions.Contains(id) {
			fmt.Printf("Subscribed to %s.\n", id)
		} else {
			fmt.Printf("Unsubscribed from %s.\n", id)
		}
		return nil
	},
}

func init() {
	topicsCmd.AddCommand(subscribeCmd)
}
