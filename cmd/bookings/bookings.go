package bookings

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/parksmart/parkctl/cmd/root"
	"github.com/parksmart/parkctl/parksmart"
)

var limit int

var BookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List recent bookings",
	Long:  `List the recent bookings ledger, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}

		bookings, err := client.GetRecentBookings(limit)
		if err != nil {
			return fmt.Errorf("failed to list bookings: %w", err)
		}
		if len(bookings) == 0 {
			fmt.Println("No bookings found.")
			return nil
		}

		printBookings(bookings)
		return nil
	},
}

func init() {
	BookingsCmd.Flags().IntVar(&limit, "limit", 20, "maximum number of bookings")
	root.RootCmd.AddCommand(BookingsCmd)
}

func str(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// printBookings prints the ledger using lipgloss's table
func printBookings(bookings []parksmart.RecentBooking) {
	var rows [][]string
	for _, b := range bookings {
		rows = append(rows, []string{
			b.ID,
			str(b.Lot),
			str(b.SlotID),
			str(b.Duration),
			parksmart.FormatAmount(parksmart.ParseAmount(b.Amount)),
			str(b.Status),
			str(b.PaymentStatus),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("ID", "LOT", "SLOT", "DURATION", "AMOUNT", "STATUS", "PAYMENT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
			}
			baseStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if col >= 3 {
				return baseStyle.Align(lipgloss.Center)
			}
			return baseStyle
		}).
		Rows(rows...)

	fmt.Println(t)
}
