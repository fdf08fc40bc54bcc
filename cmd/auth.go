package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var flagPassword string

func init() {
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "password (prompted when omitted)")
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate and store the session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := flagPassword
		if password == "" {
			var err error
			password, err = promptPassword()
			if err != nil {
				return err
			}
		}

		sess, cleanup, err := newSession()
		if err != nil {
			return err
		}
		defer cleanup()

		user, err := sess.Login(cmd.Context(), args[0], password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Email)
		return nil
	},
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := newSession()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := sess.Logout(); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := newSession()
		if err != nil {
			return err
		}
		defer cleanup()

		user, ok, err := sess.Store.User()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Not logged in.")
			return nil
		}

		fmt.Printf("%s <%s>\n", user.Name, user.Email)
		if user.ProfileType != "" {
			fmt.Printf("Profile: %s\n", user.ProfileType)
		}
		fmt.Printf("Subscribed topics: %d\n", len(user.SubscribedTopics))
		return nil
	},
}
