package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthurgrandao/scinewsAI/internal/config"
	"github.com/arthurgrandao/scinewsAI/internal/session"
	"github.com/arthurgrandao/scinewsAI/internal/store"
	"github.com/arthurgrandao/scinewsAI/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "scinews",
	Short: "Terminal reader for your subscribed science feed",
	Long:  "scinews is a terminal client for the SciNews platform: browse your subscribed article feed, filter by topic, and like articles without leaving the keyboard.",
	RunE:  runReader,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log API traffic to stderr")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(profileCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scinews %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func runReader(cmd *cobra.Command, args []string) error {
	sess, cleanup, err := newSession()
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.Run(sess)
}

// newSession loads config, opens the credential store, and wires the full
// session. The returned cleanup closes the store.
func newSession() (*session.Session, func(), error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	st, err := store.Open(config.SessionPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening session store: %w", err)
	}

	sess, err := session.New(cfg, st, newLogger())
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return sess, func() { st.Close() }, nil
}

func newLogger() *slog.Logger {
	if flagDebug {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
