package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagName        string
	flagProfileType string
)

func init() {
	profileCmd.Flags().StringVar(&flagName, "name", "", "new display name")
	profileCmd.Flags().StringVar(&flagProfileType, "type", "", "new profile type")
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the user profile",
	Long:  "Without flags, prints the stored profile. With --name or --type, patches the remote profile and stores the confirmed result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := newSession()
		if err != nil {
			return err
		}
		defer cleanup()

		if flagName == "" && flagProfileType == "" {
			user, ok, err := sess.Store.User()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("Name:    %s\nEmail:   %s\nProfile: %s\n", user.Name, user.Email, user.ProfileType)
			return nil
		}

		var name, profileType *string
		if flagName != "" {
			name = &flagName
		}
		if flagProfileType != "" {
			profileType = &flagProfileType
		}

		user, err := sess.UpdateProfile(cmd.Context(), name, profileType)
		if err != nil {
			return fmt.Errorf("updating profile: %w", err)
		}
		fmt.Printf("Profile updated: %s (%s)\n", user.Name, user.ProfileType)
		return nil
	},
}
