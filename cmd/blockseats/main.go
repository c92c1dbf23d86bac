package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/blockseats/internal/config"
	"github.com/dharmasatrya/blockseats/internal/dataaccess"
	"github.com/dharmasatrya/blockseats/internal/ratelimit"
)

var (
	backendURL string
	jsonOutput bool
	verbose    bool

	cfg    *config.Config
	client *dataaccess.Client
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "blockseats <command>",
	Short:         "Search block seats and browse admin lists from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if backendURL != "" {
			cfg.Backend.URL = backendURL
		}

		level := cfg.SlogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		dacfg := dataaccess.DefaultConfig()
		dacfg.BaseURL = cfg.Backend.URL
		dacfg.Token = cfg.Backend.Token
		dacfg.Timeout = cfg.Backend.Timeout
		dacfg.MaxRetries = cfg.Backend.MaxRetries
		dacfg.Limiter = ratelimit.NewEndpointLimiter(cfg.RateLimit.Default, cfg.RateLimit.Endpoints)
		dacfg.Logger = logger
		client = dataaccess.NewClient(dacfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "booking backend base URL (overrides BACKEND_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests to stderr")

	rootCmd.AddGroup(
		&cobra.Group{ID: "search", Title: "Search:"},
		&cobra.Group{ID: "admin", Title: "Admin:"},
	)

	rootCmd.AddCommand(urlCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(listCmd)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
