package session

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/parksmart/parkctl/cmd/root"
	"github.com/parksmart/parkctl/parksmart"
	"github.com/parksmart/parkctl/workflow"
)

var (
	sessionID string
	watch     bool
	doExtend  bool
	doEnd     bool
	doLocate  bool
	lat       float64
	lng       float64
)

var SessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Watch and manage the active parking session",
	Long: `Show the active parking session: elapsed time, running cost, lot
rules and the EV charging status carried over from the booking.

Actions: --extend requests 15 more minutes (only in the last 15 minutes of
the slot period), --end closes the session and hands off to the receipt,
--locate fetches walk-back directions to the bay.`,
	Example: `  # Show the session once
  parkctl session --id SESS1

  # Live view, updating every second
  parkctl session --id SESS1 --watch

  # End it and print the receipt pointer
  parkctl session --id SESS1 --end`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}
		if sessionID == "" {
			return fmt.Errorf("--id is required")
		}

		store, err := root.GetStore()
		if err != nil {
			return fmt.Errorf("failed to open state store: %w", err)
		}
		defer root.CloseStore()

		monitor := workflow.NewSessionMonitor(client, store, sessionID)
		defer monitor.Stop()

		if err := monitor.Load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		switch {
		case doEnd:
			id := monitor.End(cmd.Context())
			fmt.Printf("Session ended. Get the receipt with: parkctl receipt --id %s\n", id)
			return nil
		case doExtend:
			if err := monitor.Extend(cmd.Context()); err != nil {
				return fmt.Errorf("failed to extend: %w", err)
			}
			fmt.Printf("Extended by %d minutes.\n", workflow.ExtendIncrementMinutes)
			return nil
		case doLocate:
			var pos *workflow.Position
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				pos = &workflow.Position{Lat: lat, Lng: lng}
			}
			path, err := monitor.Locate(cmd.Context(), pos)
			if err != nil {
				return fmt.Errorf("failed to locate car: %w", err)
			}
			printWalkBack(path)
			return nil
		}

		printSession(monitor, cmd)
		if watch {
			return watchSession(cmd, monitor)
		}
		return nil
	},
}

func init() {
	SessionCmd.Flags().StringVar(&sessionID, "id", "", "session id (from parkctl validate)")
	SessionCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep the view updating")
	SessionCmd.Flags().BoolVar(&doExtend, "extend", false, "extend the session by 15 minutes")
	SessionCmd.Flags().BoolVar(&doEnd, "end", false, "end the session")
	SessionCmd.Flags().BoolVar(&doLocate, "locate", false, "walk-back directions to the bay")
	SessionCmd.Flags().Float64Var(&lat, "lat", 0, "current latitude for --locate")
	SessionCmd.Flags().Float64Var(&lng, "lng", 0, "current longitude for --locate")

	root.RootCmd.AddCommand(SessionCmd)
}

func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func printSession(monitor *workflow.SessionMonitor, cmd *cobra.Command) {
	s := monitor.Session()
	fmt.Printf("Session %s — %s, bay %s\n", s.SessionID, s.LotName, s.BayLabel)
	fmt.Printf("Elapsed: %s\n", formatElapsed(monitor.Elapsed()))
	if cost := monitor.CurrentCost(); cost != nil {
		fmt.Printf("Current cost: %s\n", parksmart.FormatAmount(cost))
	}
	if monitor.GraceWarning() {
		fmt.Println("⚠ Grace period ends soon — extend or return to your car.")
	}
	if monitor.CanExtend() {
		fmt.Println("Extend available: parkctl session --id " + s.SessionID + " --extend")
	}
	if pairing := monitor.Pairing(); pairing != nil {
		fmt.Printf("EV charging: %s (~%.0f kWh)\n", pairing.ChargerID, pairing.EstKWh)
	}
	fmt.Println("Lot rules:")
	for _, rule := range monitor.Rules(cmd.Context()) {
		fmt.Printf("  • %s\n", rule)
	}
}

// watchSession re-prints the elapsed line every second until interrupted.
func watchSession(cmd *cobra.Command, monitor *workflow.SessionMonitor) error {
	monitor.StartTicker(cmd.Context())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	render := time.NewTicker(time.Second)
	defer render.Stop()

	fmt.Println("\nWatching, press Ctrl+C to stop.")
	for {
		select {
		case <-sigChan:
			return nil
		case <-cmd.Context().Done():
			return nil
		case <-render.C:
			line := "Elapsed: " + formatElapsed(monitor.Elapsed())
			if cost := monitor.CurrentCost(); cost != nil {
				line += "  cost: " + parksmart.FormatAmount(cost)
			}
			fmt.Printf("\r%s", line)
		}
	}
}

func printWalkBack(path *parksmart.NavPath) {
	total := 0
	for _, step := range path.Steps {
		total += step.DistanceM
	}
	fmt.Printf("Walk back to your car (%d m):\n", total)
	for i, step := range path.Steps {
		fmt.Printf("  %d. %s (%d m)\n", i+1, step.Instruction, step.DistanceM)
	}
}
