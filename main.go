package main

import (
	"os"

	"github.com/sirupsen/logrus"

	_ "github.com/parksmart/parkctl/cmd/book"
	_ "github.com/parksmart/parkctl/cmd/bookings"
	_ "github.com/parksmart/parkctl/cmd/dashboard"
	_ "github.com/parksmart/parkctl/cmd/enroute"
	_ "github.com/parksmart/parkctl/cmd/offers"
	_ "github.com/parksmart/parkctl/cmd/profile"
	_ "github.com/parksmart/parkctl/cmd/receipt"
	"github.com/parksmart/parkctl/cmd/root"
	_ "github.com/parksmart/parkctl/cmd/session"
	_ "github.com/parksmart/parkctl/cmd/validate"
	_ "github.com/parksmart/parkctl/cmd/vehicles"
	_ "github.com/parksmart/parkctl/cmd/version"
)

func main() {
	if err := root.RootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
