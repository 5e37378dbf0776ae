package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/parksmart/parkctl/cmd/root"
	"github.com/parksmart/parkctl/parksmart"
)

var days int

var DashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Operator dashboard: revenue, occupancy, violations, carbon",
	Long: `Show the operator-facing dashboard: daily revenue and occupancy,
the payments summary, active violations and the fleet carbon picture.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}

		revenue, err := client.GetDailyRevenue(days)
		if err != nil {
			return fmt.Errorf("failed to get revenue: %w", err)
		}
		occupancy, err := client.GetDailyOccupancy(days)
		if err != nil {
			return fmt.Errorf("failed to get occupancy: %w", err)
		}
		printDaily(revenue, occupancy)

		if summary, err := client.GetPaymentsSummary(); err != nil {
			root.GetLogger().Warnf("payments summary unavailable: %v", err)
		} else {
			total := summary.TotalRevenue
			pending := summary.PendingAmount
			fmt.Printf("\nPayments: %s collected (%d paid), %s pending, %d failed\n",
				parksmart.FormatAmount(&total), summary.PaidCount,
				parksmart.FormatAmount(&pending), summary.FailedCount)
		}

		if stats, err := client.GetViolationStats(); err != nil {
			root.GetLogger().Warnf("violation stats unavailable: %v", err)
		} else {
			fmt.Printf("Violations: %d active (%d today, %d overstay, %d misuse)\n",
				stats.Active, stats.Today, stats.Overstay, stats.Misuse)
		}
		if violations, err := client.GetActiveViolations(); err == nil && len(violations) > 0 {
			printViolations(violations)
		}

		if carbon, err := client.GetCarbonDashboard(); err != nil {
			root.GetLogger().Debugf("carbon dashboard unavailable: %v", err)
		} else {
			fmt.Printf("Carbon: %.0f g CO₂ over %d sessions (avg %.0f g)\n",
				carbon.TotalCO2Grams, carbon.TotalSessions, carbon.AvgPerSession)
			if carbon.TopReducerTip != "" {
				fmt.Printf("Tip: %s\n", carbon.TopReducerTip)
			}
		}
		return nil
	},
}

func init() {
	DashboardCmd.Flags().IntVar(&days, "days", 7, "number of days of history")
	root.RootCmd.AddCommand(DashboardCmd)
}

// printDaily prints revenue and occupancy side by side using lipgloss's table
func printDaily(revenue []parksmart.RevenuePoint, occupancy []parksmart.OccupancyPoint) {
	occByDate := make(map[string]float64, len(occupancy))
	for _, p := range occupancy {
		occByDate[p.Date] = p.Occupancy
	}

	var rows [][]string
	for _, p := range revenue {
		amount := p.Amount
		occ := "-"
		if v, ok := occByDate[p.Date]; ok {
			occ = fmt.Sprintf("%.0f%%", v*100)
		}
		rows = append(rows, []string{p.Date, parksmart.FormatAmount(&amount), occ})
	}
	if len(rows) == 0 {
		fmt.Println("No analytics data.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("DATE", "REVENUE", "OCCUPANCY").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
			}
			baseStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if col >= 1 {
				return baseStyle.Align(lipgloss.Right)
			}
			return baseStyle
		}).
		Rows(rows...)

	fmt.Println(t)
}

func printViolations(violations []parksmart.Violation) {
	var rows [][]string
	for _, v := range violations {
		rows = append(rows, []string{
			v.ID,
			v.Kind,
			v.Severity,
			v.DetectedAt.Format("15:04:05"),
			v.RecommendedAction,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("ID", "KIND", "SEVERITY", "DETECTED", "ACTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
			}
			return lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
		}).
		Rows(rows...)

	fmt.Println(t)
}
