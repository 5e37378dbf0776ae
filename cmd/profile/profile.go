package profile

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parksmart/parkctl/cmd/root"
)

var (
	name  string
	email string
	phone string
)

var ProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Example: `  # Show the profile
  parkctl profile

  # Update the phone number
  parkctl profile --phone +919800000000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}

		partial := map[string]any{}
		if cmd.Flags().Changed("name") {
			partial["name"] = name
		}
		if cmd.Flags().Changed("email") {
			partial["email"] = email
		}
		if cmd.Flags().Changed("phone") {
			partial["phone"] = phone
		}

		if len(partial) > 0 {
			profile, err := client.UpdateProfile(partial)
			if err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}
			fmt.Println("Profile updated.")
			printProfile(profile.Name, profile.Email, profile.Phone)
			return nil
		}

		profile, err := client.GetProfile()
		if err != nil {
			return fmt.Errorf("failed to get profile: %w", err)
		}
		printProfile(profile.Name, profile.Email, profile.Phone)
		return nil
	},
}

func init() {
	ProfileCmd.Flags().StringVar(&name, "name", "", "update the display name")
	ProfileCmd.Flags().StringVar(&email, "email", "", "update the email address")
	ProfileCmd.Flags().StringVar(&phone, "phone", "", "update the phone number")

	root.RootCmd.AddCommand(ProfileCmd)
}

func printProfile(name, email, phone string) {
	fmt.Printf("Name:  %s\n", name)
	fmt.Printf("Email: %s\n", email)
	fmt.Printf("Phone: %s\n", phone)
}
