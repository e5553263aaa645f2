package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nravi/leadgrid/internal/config"
	"github.com/nravi/leadgrid/internal/dashboard"
	"github.com/nravi/leadgrid/internal/store"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show or switch the active dashboard tab",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		active, _ := env.store.Get(store.KeyActiveTab)
		for _, t := range dashboard.Tabs() {
			marker := " "
			if string(t) == active {
				marker = colorize(styleSuccess, "*")
			}
			fmt.Printf("%s %s\n", marker, t)
		}
		return nil
	},
}

var dashboardSwitchCmd = &cobra.Command{
	Use:   "switch <tab>",
	Short: "Make a tab active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		host := dashboard.NewHost(
			func(t dashboard.Tab) (dashboard.Controller, error) {
				return noopController{}, nil
			},
			env.cfg.Dashboard.RetainBackgroundTabs,
			slog.Default(),
		)
		if prev, err := env.store.Get(store.KeyActiveTab); err == nil && prev != "" {
			host.Switch(dashboard.Tab(prev))
		}

		target := dashboard.Tab(args[0])
		if err := host.Switch(target); err != nil {
			return err
		}
		if err := env.store.Put(store.KeyActiveTab, string(target)); err != nil {
			return err
		}
		printSuccess("Active tab: %s", target)
		if !env.cfg.Dashboard.RetainBackgroundTabs {
			printWarning("Background tabs are suspended (dashboard.retain_background_tabs=false)")
		}
		return nil
	},
}

// noopController stands in for tab state in the one-shot CLI, where each
// invocation rebuilds its tab from the store.
type noopController struct{}

func (noopController) Suspend() {}
func (noopController) Resume()  {}
func (noopController) Close()   {}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(styleLabel, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	dashboardCmd.AddCommand(dashboardSwitchCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
