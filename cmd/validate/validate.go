package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parksmart/parkctl/cmd/root"
	"github.com/parksmart/parkctl/parksmart"
	"github.com/parksmart/parkctl/workflow"
)

var (
	bookingID string
	method    string
	plate     string
)

var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate arrival and start the parking session",
	Long: `Validate physical arrival at the booked slot and start the parking
session. QR, NFC and plate validation are interchangeable; only the plate
method needs a plate number.`,
	Example: `  # Validate with the QR code at the entrance
  parkctl validate --booking B1 --method qr

  # Plate recognition fallback
  parkctl validate --booking B1 --method plate --plate ka01ab1234`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}
		if bookingID == "" {
			return fmt.Errorf("--booking is required")
		}

		store, err := root.GetStore()
		if err != nil {
			return fmt.Errorf("failed to open state store: %w", err)
		}
		defer root.CloseStore()

		validator := workflow.NewValidator(client, store, bookingID)
		if pairing := validator.StoredPairing(); pairing != nil {
			fmt.Printf("EV charger %s is waiting at your bay.\n", pairing.ChargerID)
		}

		session, err := validator.Validate(cmd.Context(), workflow.ValidationInput{
			Method: parksmart.ValidationMethod(method),
			Plate:  plate,
		})
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Printf("Session %s started (slot %s)\n", session.SessionID, session.SlotID)
		if session.StartedAt != nil {
			fmt.Printf("Started at %s\n", session.StartedAt.Format("15:04:05"))
		}
		fmt.Printf("Watch it with: parkctl session --id %s\n", session.SessionID)
		return nil
	},
}

func init() {
	ValidateCmd.Flags().StringVar(&bookingID, "booking", "", "booking id (from parkctl book)")
	ValidateCmd.Flags().StringVar(&method, "method", "qr", "validation method (qr, nfc, plate)")
	ValidateCmd.Flags().StringVar(&plate, "plate", "", "plate number for --method plate")

	root.RootCmd.AddCommand(ValidateCmd)
}
