package enroute

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/parksmart/parkctl/cmd/root"
	"github.com/parksmart/parkctl/parksmart"
	"github.com/parksmart/parkctl/workflow"
)

var (
	bookingID     string
	lat           float64
	lng           float64
	targetLat     float64
	targetLng     float64
	watch         bool
	watchInterval time.Duration
	guide         bool
)

var EnrouteCmd = &cobra.Command{
	Use:   "enroute",
	Short: "Track the drive to a booked slot",
	Long: `Track the drive to a booked slot: live arrival estimate from your
position, a confidence watch over the held slot, and indoor guidance for
the last stretch.

With --watch the held slot's availability is polled; when its confidence
degrades a swap to the held backup slot is proposed and can be accepted or
declined interactively.`,
	Example: `  # Show booking status and ETA from the current position
  parkctl enroute --booking B1 --lat 12.9712 --lng 77.5940

  # Watch for confidence drops on the held slot
  parkctl enroute --booking B1 --watch

  # Fetch indoor guidance for the final 200m
  parkctl enroute --booking B1 --lat 12.9716 --lng 77.5946 --guide`,
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

		tracker := workflow.NewEnRouteTracker(client, store, bookingID)
		defer tracker.Stop()

		if err := tracker.Load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load booking: %w", err)
		}

		if cmd.Flags().Changed("target-lat") && cmd.Flags().Changed("target-lng") {
			tracker.SetTarget(workflow.Location{Lat: targetLat, Lng: targetLng})
		} else {
			tracker.SetTarget(workflow.Location{Lat: workflow.FallbackLat, Lng: workflow.FallbackLng})
		}
		if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
			tracker.UpdatePosition(workflow.Position{Lat: lat, Lng: lng})
		}

		printStatus(tracker)

		if guide {
			path, err := tracker.GuideToBay(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch indoor guidance: %w", err)
			}
			printPath(path)
		}

		if watch {
			return watchConfidence(cmd, tracker)
		}
		return nil
	},
}

func init() {
	EnrouteCmd.Flags().StringVar(&bookingID, "booking", "", "booking id (from parkctl book)")
	EnrouteCmd.Flags().Float64Var(&lat, "lat", 0, "current latitude")
	EnrouteCmd.Flags().Float64Var(&lng, "lng", 0, "current longitude")
	EnrouteCmd.Flags().Float64Var(&targetLat, "target-lat", 0, "destination latitude")
	EnrouteCmd.Flags().Float64Var(&targetLng, "target-lng", 0, "destination longitude")
	EnrouteCmd.Flags().BoolVarP(&watch, "watch", "w", false, "poll the held slot's availability confidence")
	EnrouteCmd.Flags().DurationVar(&watchInterval, "interval", time.Minute, "confidence poll interval for --watch")
	EnrouteCmd.Flags().BoolVar(&guide, "guide", false, "fetch indoor guidance to the bay (requires --lat/--lng)")

	root.RootCmd.AddCommand(EnrouteCmd)
}

func printStatus(tracker *workflow.EnRouteTracker) {
	booking := tracker.Booking()
	fmt.Printf("Booking %s — slot %s (%s, %s)\n",
		booking.BookingID, tracker.TargetSlotID(), booking.Mode, booking.Status)
	fmt.Printf("ETA: %s\n", tracker.ETAText())
	if pairing := tracker.Pairing(); pairing != nil {
		fmt.Printf("EV charger: %s (~%.0f kWh in %d min)\n",
			pairing.ChargerID, pairing.EstKWh, pairing.EstTimeMin)
	}
	if len(booking.Backups) > 0 {
		fmt.Printf("Backup slot held: %s\n", booking.Backups[0].SlotID)
	}
}

func printPath(path *parksmart.NavPath) {
	total := 0
	for _, step := range path.Steps {
		total += step.DistanceM
	}
	fmt.Printf("Indoor route to bay (%d m):\n", total)
	for i, step := range path.Steps {
		fmt.Printf("  %d. %s (%d m)\n", i+1, step.Instruction, step.DistanceM)
	}
}

// watchConfidence polls until interrupted, prompting on a swap proposal.
func watchConfidence(cmd *cobra.Command, tracker *workflow.EnRouteTracker) error {
	tracker.WatchConfidence(cmd.Context(), watchInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	check := time.NewTicker(time.Second)
	defer check.Stop()

	fmt.Printf("Watching slot confidence every %s, press Ctrl+C to stop.\n", watchInterval)
	for {
		select {
		case <-sigChan:
			return nil
		case <-cmd.Context().Done():
			return nil
		case <-check.C:
			proposal := tracker.Proposal()
			if proposal == nil {
				continue
			}
			fmt.Printf("\nAvailability on %s is degrading.\n", proposal.FromSlotID)
			fmt.Printf("Proposed swap to backup slot %s (+%d min)", proposal.ToSlotID, proposal.TimeDeltaMin)
			if proposal.Confidence != nil {
				fmt.Printf(", confidence %.0f%%", *proposal.Confidence*100)
			}
			fmt.Println()
			if promptYesNo("Accept swap? [y/N] ") {
				tracker.AcceptSwap()
				fmt.Printf("Re-targeted to slot %s.\n", tracker.TargetSlotID())
			} else {
				tracker.DeclineSwap()
				fmt.Println("Keeping the original slot.")
			}
		}
	}
}

func promptYesNo(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
