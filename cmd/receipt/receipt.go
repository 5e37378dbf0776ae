package receipt

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/parksmart/parkctl/cmd/root"
	"github.com/parksmart/parkctl/parksmart"
	"github.com/parksmart/parkctl/workflow"
)

var (
	sessionID string
	savePath  string
	share     bool
)

var ReceiptCmd = &cobra.Command{
	Use:   "receipt",
	Short: "Show the receipt for an ended session",
	Long: `Show the final receipt for a parking session: check-in/out times,
duration, the reconciled charge and, when available, the trip's carbon
score. The charge shown here is authoritative; the pre-auth estimate from
booking time is not.`,
	Example: `  # Show the receipt
  parkctl receipt --id SESS1

  # Save a text copy
  parkctl receipt --id SESS1 --save receipt.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}
		if sessionID == "" {
			return fmt.Errorf("--id is required")
		}

		r, err := workflow.LoadReceipt(cmd.Context(), client, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load receipt: %w", err)
		}

		printReceipt(r)

		if share {
			fmt.Println()
			fmt.Println(r.ShareText())
		}
		if savePath != "" {
			if err := r.SaveText(savePath); err != nil {
				return fmt.Errorf("failed to save receipt: %w", err)
			}
			fmt.Printf("Saved to %s\n", savePath)
		}
		return nil
	},
}

func init() {
	ReceiptCmd.Flags().StringVar(&sessionID, "id", "", "session id")
	ReceiptCmd.Flags().StringVar(&savePath, "save", "", "write a plain-text copy to this path")
	ReceiptCmd.Flags().BoolVar(&share, "share", false, "print the shareable summary text")

	root.RootCmd.AddCommand(ReceiptCmd)
}

// printReceipt renders the receipt as a lipgloss card
func printReceipt(r *workflow.Receipt) {
	label := lipgloss.NewStyle().Bold(true).Width(12)
	var body string
	row := func(name, value string) {
		body += label.Render(name) + value + "\n"
	}

	row("Session", r.SessionID)
	row("Booking", r.BookingID)
	row("Location", r.Lot)
	row("Bay", r.Bay)
	row("Check-in", r.CheckIn)
	row("Check-out", r.CheckOut)
	row("Duration", r.Duration)
	row("Total", parksmart.FormatAmount(r.TotalCharged))
	if r.Carbon != nil {
		row("CO₂", fmt.Sprintf("%.0f g (efficiency %.0f)", r.Carbon.GramsCO2, r.Carbon.EfficiencyScore))
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("99")).
		Padding(0, 2)
	fmt.Println(card.Render("Parking Receipt\n\n" + body[:len(body)-1]))
}
