package vehicles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/parksmart/parkctl/cmd/root"
	"github.com/parksmart/parkctl/parksmart"
	"github.com/parksmart/parkctl/workflow"
)

var (
	plate         string
	make_         string
	model         string
	vehicleType   string
	isEV          bool
	accessibility bool
)

var VehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "List your vehicles",
	Long: `List your vehicles. The active vehicle (marked with *) gates booking:
an EV cannot be booked into a slot without charging.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		roster, err := loadRoster(cmd)
		if err != nil {
			return err
		}
		defer root.CloseStore()
		printVehicles(roster)
		return nil
	},
}

var setActiveCmd = &cobra.Command{
	Use:   "use <vehicle-id>",
	Short: "Select the active vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roster, err := loadRoster(cmd)
		if err != nil {
			return err
		}
		defer root.CloseStore()
		if err := roster.SetActive(args[0]); err != nil {
			return err
		}
		fmt.Printf("Active vehicle is now %s\n", args[0])
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a vehicle",
	Example: `  parkctl vehicles add --plate KA01AB1234 --make Tata --model Nexon --ev`,
	RunE: func(cmd *cobra.Command, args []string) error {
		roster, err := loadRoster(cmd)
		if err != nil {
			return err
		}
		defer root.CloseStore()
		if plate == "" {
			return fmt.Errorf("--plate is required")
		}
		created, err := roster.Add(cmd.Context(), parksmart.Vehicle{
			Plate:              plate,
			Make:               make_,
			Model:              model,
			Type:               vehicleType,
			IsEV:               isEV,
			NeedsAccessibility: accessibility,
		})
		if err != nil {
			return fmt.Errorf("failed to add vehicle: %w", err)
		}
		fmt.Printf("Added vehicle %s (%s)\n", created.ID, created.Plate)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <vehicle-id>",
	Short: "Remove a vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roster, err := loadRoster(cmd)
		if err != nil {
			return err
		}
		defer root.CloseStore()
		if err := roster.Remove(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to remove vehicle: %w", err)
		}
		fmt.Printf("Removed vehicle %s\n", args[0])
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&plate, "plate", "", "plate number")
	addCmd.Flags().StringVar(&make_, "make", "", "vehicle make")
	addCmd.Flags().StringVar(&model, "model", "", "vehicle model")
	addCmd.Flags().StringVar(&vehicleType, "type", "car", "vehicle type")
	addCmd.Flags().BoolVar(&isEV, "ev", false, "vehicle is an EV")
	addCmd.Flags().BoolVar(&accessibility, "accessibility", false, "vehicle needs accessible parking")

	VehiclesCmd.AddCommand(setActiveCmd)
	VehiclesCmd.AddCommand(addCmd)
	VehiclesCmd.AddCommand(removeCmd)
	root.RootCmd.AddCommand(VehiclesCmd)
}

func loadRoster(cmd *cobra.Command) (*workflow.VehicleRoster, error) {
	client := root.GetClient()
	if client == nil {
		return nil, fmt.Errorf("client not initialized")
	}
	store, err := root.GetStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	roster := workflow.NewVehicleRoster(client, store)
	if err := roster.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}
	return roster, nil
}

// printVehicles prints the roster using lipgloss's table
func printVehicles(roster *workflow.VehicleRoster) {
	vehicles := roster.Vehicles()
	if len(vehicles) == 0 {
		fmt.Println("No vehicles registered.")
		return
	}
	active := roster.Active()

	var rows [][]string
	for _, v := range vehicles {
		marker := ""
		if active != nil && v.ID == active.ID {
			marker = "*"
		}
		ev := "no"
		if v.IsEV {
			ev = "⚡"
		}
		rows = append(rows, []string{marker, v.ID, v.Plate, v.Make + " " + v.Model, v.Type, ev})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("", "ID", "PLATE", "VEHICLE", "TYPE", "EV").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
			}
			baseStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if col == 0 || col == 5 {
				return baseStyle.Align(lipgloss.Center)
			}
			return baseStyle
		}).
		Rows(rows...)

	fmt.Println(t)
}
