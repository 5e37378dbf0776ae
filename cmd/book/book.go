package book

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/parksmart/parkctl/cmd/root"
	"github.com/parksmart/parkctl/parksmart"
	"github.com/parksmart/parkctl/workflow"
)

var (
	slotID     string
	mode       string
	addOnIDs   []string
	etaMinutes int
)

var BookCmd = &cobra.Command{
	Use:   "book",
	Short: "Confirm a booking for a slot",
	Long: `Confirm a booking for a previously searched slot.

The active vehicle gates the confirmation: an EV cannot be booked into a
slot without EV charging. For EVs a charger pairing is requested right after
the booking is created; a pairing failure never rolls the booking back.`,
	Example: `  # Book a slot with the guaranteed SLA
  parkctl book --slot S1

  # Smart hold with add-ons
  parkctl book --slot S1 --mode smart-hold --addon car-wash --addon ev-boost`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}
		if slotID == "" {
			return fmt.Errorf("--slot is required")
		}

		store, err := root.GetStore()
		if err != nil {
			return fmt.Errorf("failed to open state store: %w", err)
		}
		defer root.CloseStore()

		params := workflow.SearchParams{}
		if lat, lng := root.SearchOrigin(); lat != nil {
			params.Lat = lat
			params.Lng = lng
		}
		if cmd.Flags().Changed("eta") {
			eta := time.Now().Add(time.Duration(etaMinutes) * time.Minute)
			params.ETA = &eta
		}
		searcher := workflow.NewOfferSearcher(client, workflow.NoOpCache{}, params)
		offers, err := searcher.Fetch(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to search offers: %w", err)
		}
		offer := workflow.FindOffer(offers, slotID)
		if offer == nil {
			return fmt.Errorf("slot %s not found in the current offers", slotID)
		}

		flow := workflow.NewBookingFlow(client, store, *offer, workflow.ParseMode(mode))
		flow.Notify = func(msg string) { fmt.Println(msg) }

		roster := workflow.NewVehicleRoster(client, store)
		if err := roster.Load(cmd.Context()); err != nil {
			root.GetLogger().Warnf("vehicle roster unavailable: %v", err)
		} else {
			flow.Vehicle = roster.Active()
		}

		if len(addOnIDs) > 0 {
			selected, err := selectAddOns(client, addOnIDs)
			if err != nil {
				return err
			}
			flow.SelectedAddOns = selected
		}

		if err := flow.CanConfirm(); err != nil {
			return err
		}
		fmt.Printf("Pre-authorization hold: %s%.0f\n", offer.Currency, flow.PreAuthEstimate())

		result, err := flow.Confirm(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}

		fmt.Printf("Booking %s confirmed for slot %s (%s)\n",
			result.Booking.BookingID, result.Booking.SlotID, result.Booking.Mode)
		switch result.PairingStatus {
		case workflow.PairingDone:
			fmt.Printf("EV charger paired: %s (~%.0f kWh in %d min)\n",
				result.Pairing.ChargerID, result.Pairing.EstKWh, result.Pairing.EstTimeMin)
		case workflow.PairingError:
			fmt.Printf("EV pairing unavailable: %v\n", result.PairingErr)
		}
		fmt.Printf("Track your drive in with: parkctl enroute --booking %s\n", result.Booking.BookingID)
		return nil
	},
}

func init() {
	BookCmd.Flags().StringVar(&slotID, "slot", "", "slot id to book (from parkctl offers)")
	BookCmd.Flags().StringVar(&mode, "mode", "guaranteed", "booking mode (guaranteed, smart-hold)")
	BookCmd.Flags().StringArrayVar(&addOnIDs, "addon", nil, "add-on service id (repeatable)")
	BookCmd.Flags().IntVar(&etaMinutes, "eta", 30, "minutes until arrival")

	root.RootCmd.AddCommand(BookCmd)
}

// selectAddOns resolves the requested add-on ids against the catalog so the
// pre-auth estimate uses real prices.
func selectAddOns(client *parksmart.Client, ids []string) ([]parksmart.AddOn, error) {
	catalog, err := client.GetAddOns()
	if err != nil {
		return nil, fmt.Errorf("failed to list add-ons: %w", err)
	}
	byID := make(map[string]parksmart.AddOn, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}

	var selected []parksmart.AddOn
	var missing []string
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			selected = append(selected, a)
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unknown add-on id(s): %s", strings.Join(missing, ", "))
	}
	return selected, nil
}
