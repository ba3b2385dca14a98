package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/blescout/internal/config"
	"github.com/srg/blescout/internal/device"
	"github.com/srg/blescout/internal/devicefactory"
)

// adapterCmd represents the adapter command
var adapterCmd = &cobra.Command{
	Use:   "adapter",
	Short: "Show the Bluetooth adapter state",
	Long: `Show whether the Bluetooth adapter is enabled.

With --enable, request the adapter be turned on before reporting.`,
	RunE: runAdapter,
}

var adapterEnable bool

func init() {
	adapterCmd.Flags().BoolVar(&adapterEnable, "enable", false, "Request the adapter be enabled")
	adapterCmd.Flags().Bool("verbose", false, "Enable debug logging")
}

func runAdapter(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger, err := configureLogger(cmd, "verbose", cfg.Log.Level)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	binding := devicefactory.BindingFactory(logger)
	defer binding.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := binding.Initialize(ctx, device.InitOptions{}); err != nil {
		return fmt.Errorf("failed to initialize BLE binding: %w", err)
	}

	if adapterEnable {
		if err := binding.RequestEnable(ctx); err != nil {
			return fmt.Errorf("%w: %v", device.ErrAdapterUnavailable, err)
		}
	}

	state, err := binding.AdapterState(ctx)
	if err != nil {
		return fmt.Errorf("failed to read adapter state: %w", err)
	}

	fmt.Printf("Adapter: %s\n", colorizeAdapterState(state))
	return nil
}

func colorizeAdapterState(state device.AdapterState) string {
	switch state {
	case device.AdapterEnabled:
		return color.GreenString(state.String())
	case device.AdapterDisabled:
		return color.RedString(state.String())
	default:
		return color.YellowString(state.String())
	}
}
