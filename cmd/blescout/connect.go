package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/srg/blescout/internal/bledb"
	"github.com/srg/blescout/internal/config"
	"github.com/srg/blescout/internal/device"
	"github.com/srg/blescout/internal/devicefactory"
	"github.com/srg/blescout/internal/permission"
	"github.com/srg/blescout/scanner"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect <address>",
	Short: "Connect to a BLE device and list its services",
	Long: `Connect to a Bluetooth Low Energy device by address and list the GATT
services it exposes. Known SIG service UUIDs are annotated with their names.

The connection is informational: it is released when the command exits.`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

var connectTimeout time.Duration

func init() {
	connectCmd.Flags().DurationVarP(&connectTimeout, "timeout", "t", 30*time.Second, "Connection timeout")
	connectCmd.Flags().Bool("verbose", false, "Enable debug logging")
}

func runConnect(cmd *cobra.Command, args []string) error {
	address := args[0]

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
	ctrl, err := scanner.NewController(binding, permission.HostService(), logger, cfg.ScanOptions())
	if err != nil {
		return fmt.Errorf("failed to create scan controller: %w", err)
	}
	defer ctrl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	fmt.Printf("Connecting to %s...\n", address)
	if err := ctrl.Connect(ctx, address); err != nil {
		return &device.ScanError{Op: "connect", Err: device.NormalizeError(err)}
	}

	services, err := ctrl.FetchServices(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to discover services: %w", err)
	}

	if len(services) == 0 {
		fmt.Println("No services advertised")
		return nil
	}

	fmt.Printf("Services (%d):\n", len(services))
	for _, uuid := range services {
		if name := bledb.LookupService(uuid); name != "" {
			fmt.Printf("  %s  %s\n", uuid, name)
		} else {
			fmt.Printf("  %s\n", uuid)
		}
	}
	return nil
}
