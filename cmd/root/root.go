package root

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parksmart/parkctl/parksmart"
	"github.com/parksmart/parkctl/statestore"
)

var (
	cfgFile   string
	logLevel  string
	statePath string
	cfg       *parksmart.Config
	client    *parksmart.Client
	store     *statestore.Store
	storeOnce sync.Once
	storeErr  error
	log       = logrus.StandardLogger()
)

var RootCmd = &cobra.Command{
	Use:   "parkctl",
	Short: "parkctl - book and manage predictive parking",
	Long: `parkctl drives the parking booking lifecycle against the backend:
search predictive offers, confirm a booking (guaranteed or smart hold),
track the drive in, validate arrival, watch the active session, and pull
the final receipt.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setLogLevel(); err != nil {
			return err
		}

		// Commands that never touch the backend
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if err := initConfig(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if err := initClient(); err != nil {
			return fmt.Errorf("unable to initialize client: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/parkctl/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVar(&statePath, "state-path", "", "local state database path (default is $XDG_STATE_HOME/parkctl/state)")

	viper.BindPFlag("config", RootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log-level", RootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix("PARKCTL")
	viper.AutomaticEnv()
}

func initConfig() error {
	configPath := ""

	if cfgFile != "" {
		configPath = cfgFile
		viper.SetConfigFile(cfgFile)
	} else {
		configPath = filepath.Join(xdg.ConfigHome, "parkctl", "config.yaml")

		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "parkctl"))
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug("No config file found, using defaults and environment variables")
	} else {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
		configPath = viper.ConfigFileUsed()
	}

	var err error
	cfg, err = parksmart.GetConfigFromFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Config file not found, creating empty config")
			cfg = &parksmart.Config{}
		} else {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Environment variables and flags win over the file
	if viper.IsSet("backend") {
		cfg.Backend = viper.GetString("backend")
	}
	if viper.IsSet("api_key") {
		cfg.APIKey = viper.GetString("api_key")
	}
	if viper.IsSet("default_location.latitude") {
		cfg.DefaultLocation.Latitude = viper.GetFloat64("default_location.latitude")
	}
	if viper.IsSet("default_location.longitude") {
		cfg.DefaultLocation.Longitude = viper.GetFloat64("default_location.longitude")
	}

	return nil
}

func initClient() error {
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	var err error
	client, err = parksmart.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	if cfgFile != "" {
		client.SetConfigPath(cfgFile)
	} else if viper.ConfigFileUsed() != "" {
		client.SetConfigPath(viper.ConfigFileUsed())
	}
	return nil
}

func setLogLevel() error {
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", logLevel)
	}
	log.SetLevel(lvl)
	return nil
}

func Execute() error {
	return RootCmd.Execute()
}

func GetClient() *parksmart.Client {
	return client
}

func GetConfig() *parksmart.Config {
	return cfg
}

func GetLogger() *logrus.Logger {
	return log
}

// GetStore opens the local state database on first use.
func GetStore() (*statestore.Store, error) {
	storeOnce.Do(func() {
		store, storeErr = statestore.Open(statePath)
	})
	return store, storeErr
}

// CloseStore releases the state database; called once on exit.
func CloseStore() {
	if store != nil {
		if err := store.Close(); err != nil {
			log.Warnf("closing state store: %v", err)
		}
	}
}

// SearchOrigin resolves the configured default search origin, nil when the
// config leaves it unset (the workflow then uses its own fallback).
func SearchOrigin() (lat, lng *float64) {
	if cfg == nil {
		return nil, nil
	}
	if cfg.DefaultLocation.Latitude != 0 || cfg.DefaultLocation.Longitude != 0 {
		return &cfg.DefaultLocation.Latitude, &cfg.DefaultLocation.Longitude
	}
	return nil, nil
}
