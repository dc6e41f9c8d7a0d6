package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"constructerp/internal/config"
	"constructerp/internal/source"
	"constructerp/internal/tui/theme"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)
	prompt := func() string {
		fmt.Print("     > ")
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to ConstructERP!")
	fmt.Println()

	// 1. Dataset
	fmt.Println("  1. Seed data")
	fmt.Println("     Path to a YAML dataset, or blank for the built-in demo data.")
	if cfg.General.SeedFile != "" {
		fmt.Printf("     Current: %s\n", cfg.General.SeedFile)
	}
	if path := prompt(); path != "" {
		ds, err := source.LoadFile(path)
		if err != nil {
			fmt.Printf("     Ignoring %s: %v\n", path, err)
		} else {
			cfg.General.SeedFile = path
			fmt.Printf("     %d projects, %d invoices, %d users\n", len(ds.Projects), len(ds.Invoices), len(ds.Users))
		}
	}
	fmt.Println()

	// 2. Latency
	fmt.Println("  2. Simulated service latency")
	fmt.Println("     (1) Realistic [default]")
	fmt.Println("     (2) Fast (half delays)")
	fmt.Println("     (3) Off")
	switch prompt() {
	case "2":
		cfg.Service.SimulateLatency = true
		cfg.Service.LatencyScale = 0.5
	case "3":
		cfg.Service.SimulateLatency = false
	default:
		cfg.Service.SimulateLatency = true
		cfg.Service.LatencyScale = 1.0
	}
	fmt.Println()

	// 3. Theme
	fmt.Println("  3. Color theme")
	for i, t := range theme.All {
		def := ""
		if t.Name == theme.Slate.Name {
			def = " [default]"
		}
		fmt.Printf("     (%d) %s%s\n", i+1, t.Name, def)
	}
	cfg.Appearance.Theme = theme.Slate.Name
	if n, err := strconv.Atoi(prompt()); err == nil && n >= 1 && n <= len(theme.All) {
		cfg.Appearance.Theme = theme.All[n-1].Name
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Sign in with `erp login` and run `erp tui` to explore.")
	fmt.Println()

	return nil
}
