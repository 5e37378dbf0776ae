package offers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	"github.com/parksmart/parkctl/cmd/root"
	"github.com/parksmart/parkctl/workflow"
)

var (
	lat        float64
	lng        float64
	etaMinutes int
	lotID      string
	evOnly     bool
	accessible bool
	watch      bool
	interval   time.Duration
	cronExpr   string
)

var OffersCmd = &cobra.Command{
	Use:   "offers",
	Short: "Search predictive parking offers",
	Long: `Search the backend for predictive parking offers near a location.

When the predictive search returns nothing, offers are synthesized from the
lot inventory so there is always something bookable. With --watch the search
re-runs periodically; with --cron it follows a cron expression instead.`,
	Example: `  # One-shot search near the configured default location
  parkctl offers

  # Search near explicit coordinates, arriving in 20 minutes
  parkctl offers --lat 12.9716 --lng 77.5946 --eta 20

  # Keep refreshing every 5 minutes
  parkctl offers --watch

  # Re-search at the top of every hour
  parkctl offers --cron "0 * * * *"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}

		params := workflow.SearchParams{LotID: lotID}
		if cmd.Flags().Changed("lat") {
			params.Lat = &lat
		}
		if cmd.Flags().Changed("lng") {
			params.Lng = &lng
		}
		if cfgLat, cfgLng := root.SearchOrigin(); params.Lat == nil && cfgLat != nil {
			params.Lat = cfgLat
			params.Lng = cfgLng
		}
		if cmd.Flags().Changed("eta") {
			eta := time.Now().Add(time.Duration(etaMinutes) * time.Minute)
			params.ETA = &eta
		}

		searcher := workflow.NewOfferSearcher(client, workflow.NewMemoryCache(workflow.DefaultRefreshInterval), params)
		defer searcher.Stop()

		offers, err := searcher.Fetch(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to search offers: %w", err)
		}
		printOffers(filterOffers(offers))

		switch {
		case cronExpr != "":
			return watchCron(cmd.Context(), searcher)
		case watch:
			return watchInterval(cmd.Context(), searcher)
		}
		return nil
	},
}

func init() {
	OffersCmd.Flags().Float64Var(&lat, "lat", 0, "search origin latitude")
	OffersCmd.Flags().Float64Var(&lng, "lng", 0, "search origin longitude")
	OffersCmd.Flags().IntVar(&etaMinutes, "eta", 30, "minutes until arrival")
	OffersCmd.Flags().StringVar(&lotID, "lot", "", "restrict fallback offers to this lot")
	OffersCmd.Flags().BoolVar(&evOnly, "ev", false, "only show offers with EV charging")
	OffersCmd.Flags().BoolVar(&accessible, "accessible", false, "only show accessible offers")
	OffersCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep refreshing on an interval")
	OffersCmd.Flags().DurationVar(&interval, "interval", workflow.DefaultRefreshInterval, "refresh interval for --watch")
	OffersCmd.Flags().StringVar(&cronExpr, "cron", "", "cron expression for scheduled re-search (overrides --watch)")

	root.RootCmd.AddCommand(OffersCmd)
}

// watchInterval re-renders the offer table on every poll refresh until
// interrupted.
func watchInterval(ctx context.Context, searcher *workflow.OfferSearcher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	searcher.Poll(ctx, interval)

	render := time.NewTicker(interval)
	defer render.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	fmt.Printf("Watching offers every %s, press Ctrl+C to stop.\n", interval)
	for {
		select {
		case <-sigChan:
			return nil
		case <-ctx.Done():
			return nil
		case <-render.C:
			if offers, updated, ok := searcher.Offers(); ok {
				fmt.Printf("\nRefreshed %s\n", updated.Format("15:04:05"))
				printOffers(filterOffers(offers))
			}
			if err := searcher.LastError(); err != nil {
				root.GetLogger().Warnf("last refresh failed: %v", err)
			}
		}
	}
}

// watchCron schedules re-searches with a cron expression and re-renders the
// table after each run.
func watchCron(ctx context.Context, searcher *workflow.OfferSearcher) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	defer func() { _ = scheduler.Shutdown() }()

	_, err = scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			offers, err := searcher.Fetch(ctx)
			if err != nil {
				root.GetLogger().Warnf("scheduled refresh failed: %v", err)
				return
			}
			fmt.Printf("\nRefreshed %s\n", time.Now().Format("15:04:05"))
			printOffers(filterOffers(offers))
		}),
	)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	fmt.Printf("Re-searching on schedule %q, press Ctrl+C to stop.\n", cronExpr)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}
	return nil
}

func filterOffers(offers []workflow.Offer) []workflow.Offer {
	if !evOnly && !accessible {
		return offers
	}
	var out []workflow.Offer
	for _, o := range offers {
		if evOnly && !o.Features.EV {
			continue
		}
		if accessible && !o.Features.Accessible {
			continue
		}
		out = append(out, o)
	}
	return out
}

// printOffers prints the offers using lipgloss's table
func printOffers(offers []workflow.Offer) {
	if len(offers) == 0 {
		fmt.Println("No offers found.")
		return
	}

	var rows [][]string
	for _, o := range offers {
		features := ""
		if o.Features.EV {
			features += "⚡"
		}
		if o.Features.Accessible {
			features += "♿"
		}
		if features == "" {
			features = "-"
		}

		sla := "-"
		if o.SLA.GuaranteedSpot {
			sla = "guaranteed"
		} else if o.SLA.HasBackup {
			sla = "smart hold"
		}

		rows = append(rows, []string{
			o.ID,
			o.Name,
			fmt.Sprintf("%.1f km", o.DistanceKm),
			fmt.Sprintf("%s%.0f", o.Currency, o.Price),
			fmt.Sprintf("%d%%", o.Availability.Percentage),
			fmt.Sprintf("%d/10", o.Availability.Confidence),
			sla,
			features,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("SLOT ID", "NAME", "DISTANCE", "PRICE", "FREE", "CONFIDENCE", "SLA", "FEATURES").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
			}
			baseStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

			// Center align the numeric and badge columns
			if col >= 2 {
				return baseStyle.Align(lipgloss.Center)
			}
			return baseStyle
		}).
		Rows(rows...)

	fmt.Println(t)
}
