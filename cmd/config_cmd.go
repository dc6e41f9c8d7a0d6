// Package cmd implements the erp CLI commands.
package cmd

import (
	"fmt"
	"strconv"

	"constructerp/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.SeedFile != "" {
		fmt.Printf("    Seed file:  %s\n", cfg.General.SeedFile)
	} else {
		fmt.Println("    Seed file:  built-in demo data")
	}
	fmt.Printf("    Log level:  %s\n", cfg.General.LogLevel)
	fmt.Println()

	fmt.Println("  [Service]")
	fmt.Printf("    Simulated latency: %v\n", cfg.Service.SimulateLatency)
	fmt.Printf("    Latency scale:     %sx\n", strconv.FormatFloat(cfg.Service.LatencyScale, 'f', -1, 64))
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Server.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Session]")
	if sess, err := config.LoadSession(); err == nil {
		fmt.Printf("    Signed in as: %s\n", sess.Username)
	} else {
		fmt.Println("    Signed in as: nobody")
	}
	fmt.Printf("    Session file: %s\n", config.SessionPath())
	fmt.Println()

	fmt.Println("  Run `erp setup` to reconfigure.")
	return nil
}
