package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/srg/blescout/internal/config"
	"github.com/srg/blescout/internal/device"
	"github.com/srg/blescout/internal/devicefactory"
	"github.com/srg/blescout/internal/permission"
	"github.com/srg/blescout/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for BLE devices",
	Long: `Scan for and display Bluetooth Low Energy devices in the vicinity.

Discovery merges two sources into one device table: live advertisement
events and a periodic snapshot poll of the adapter. The scan runs for a
fixed duration and can be cancelled early with Ctrl+C.`,
	RunE: runScan,
}

var (
	scanDuration   time.Duration
	scanFormat     string
	scanServices   []string
	scanAllowList  []string
	scanBlockList  []string
	scanDuplicates bool
	scanWatch      bool
	scanVerbose    bool
)

// watchRefreshInterval is the redraw cadence of the watch-mode table.
const watchRefreshInterval = 500 * time.Millisecond

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 0, "Scan duration (default from config, 10s)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json)")
	scanCmd.Flags().StringSliceVarP(&scanServices, "services", "s", nil, "Filter by service UUIDs")
	scanCmd.Flags().StringSliceVar(&scanAllowList, "allow", nil, "Only show devices with these addresses")
	scanCmd.Flags().StringSliceVar(&scanBlockList, "block", nil, "Hide devices with these addresses")
	scanCmd.Flags().BoolVar(&scanDuplicates, "duplicates", true, "Request repeat advertisements to keep RSSI fresh")
	scanCmd.Flags().BoolVarP(&scanWatch, "watch", "w", false, "Continuously scan and refresh the device table")
	scanCmd.Flags().BoolVar(&scanVerbose, "verbose", false, "Enable debug logging")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanFormat != "table" && scanFormat != "json" {
		return fmt.Errorf("invalid format '%s': must be one of [table json]", scanFormat)
	}

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger, err := configureLogger(cmd, "verbose", cfg.Log.Level)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	opts := cfg.ScanOptions()
	if !cmd.Flags().Changed("format") && cfg.Scan.Format != "" {
		scanFormat = cfg.Scan.Format
		if scanFormat != "table" && scanFormat != "json" {
			return fmt.Errorf("invalid format '%s' in config: must be one of [table json]", scanFormat)
		}
	}
	if cmd.Flags().Changed("duration") {
		opts.Duration = scanDuration
	}
	if cmd.Flags().Changed("duplicates") {
		opts.AllowDuplicates = scanDuplicates
	}
	if len(scanServices) > 0 {
		uuids, err := device.ValidateUUID(scanServices...)
		if err != nil {
			return fmt.Errorf("invalid service UUID: %w", err)
		}
		opts.ServiceUUIDs = uuids
	}
	if len(scanAllowList) > 0 {
		opts.AllowList = scanAllowList
	}
	if len(scanBlockList) > 0 {
		opts.BlockList = scanBlockList
	}
	if scanWatch && !cmd.Flags().Changed("duration") {
		// Watch mode keeps collecting until interrupted.
		opts.Duration = 24 * time.Hour
	}
	if opts.Duration <= 0 {
		return fmt.Errorf("scan duration must be positive, got %s", opts.Duration)
	}

	binding := devicefactory.BindingFactory(logger)
	ctrl, err := scanner.NewController(binding, permission.HostService(), logger, opts)
	if err != nil {
		return fmt.Errorf("failed to create scan controller: %w", err)
	}
	defer ctrl.Close()

	if scanWatch {
		return runWatchScan(ctrl, logger)
	}
	return runSingleScan(ctrl, opts.Duration)
}

func runSingleScan(ctrl *scanner.Controller, duration time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Listen for Ctrl+C to cut the scan short
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\nCtrl+C pressed, stopping scan...")
			_ = ctrl.StopScan()
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := ctrl.StartScan(ctx); err != nil {
		return err
	}

	progress := newCountdownPrinter("Scanning for BLE devices", duration)
	progress.Start()
	waitUntilIdle(ctx, ctrl)
	progress.Stop()

	return displayDevices(ctrl.Devices(), scanFormat)
}

// waitUntilIdle blocks until the controller's session ends or ctx is done.
func waitUntilIdle(ctx context.Context, ctrl *scanner.Controller) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctrl.State() == scanner.StateIdle {
				return
			}
		}
	}
}

func runWatchScan(ctrl *scanner.Controller, logger *logrus.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := ctrl.StartScan(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-sigCh:
			fmt.Println("\nCtrl+C pressed, stopping scan...")
			cancel()
		case <-gctx.Done():
		}
		return ctrl.StopScan()
	})

	g.Go(func() error {
		ticker := time.NewTicker(watchRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				clearScreen()
				if err := displayDevices(ctrl.Devices(), scanFormat); err != nil {
					return err
				}
			}
		}
	})

	// Drain device events so slow table redraws never stall discovery; the
	// stream doubles as a debug trail.
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-ctrl.Events():
				if !ok {
					return nil
				}
				logger.WithFields(logrus.Fields{
					"device": ev.Record.DisplayName(),
					"rssi":   ev.Record.RSSI,
				}).Debug("Device event")
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	clearScreen()
	return displayDevices(ctrl.Devices(), scanFormat)
}

func displayDevices(devices []device.DeviceRecord, format string) error {
	if format == "json" {
		return displayDevicesJSON(devices)
	}
	return displayDevicesTable(devices)
}

func displayDevicesTable(devices []device.DeviceRecord) error {
	if len(devices) == 0 {
		fmt.Println("No devices discovered")
		return nil
	}

	// Strongest signal first; ties keep discovery order.
	sorted := make([]device.DeviceRecord, len(devices))
	copy(sorted, devices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RSSI > sorted[j].RSSI
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := color.New(color.Bold).Sprint
	fmt.Fprintln(w, header("NAME\tADDRESS\tRSSI\tSERVICES\tLAST SEEN"))
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, rec := range sorted {
		name := rec.DisplayName()
		if len(name) > 20 {
			name = name[:17] + "..."
		}

		services := strings.Join(rec.Services, ",")
		if len(services) > 30 {
			services = services[:27] + "..."
		}

		lastSeen := time.Since(rec.LastSeen).Truncate(time.Second)

		fmt.Fprintf(w, "%s\t%s\t%d dBm\t%s\t%s ago\n",
			name, rec.ID, rec.RSSI, services, lastSeen)
	}

	return w.Flush()
}

// scanResult is the JSON output shape for a discovered device.
type scanResult struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	RSSI        int      `json:"rssi"`
	TxPower     *int     `json:"tx_power,omitempty"`
	Connectable bool     `json:"connectable"`
	Services    []string `json:"services,omitempty"`
	LastSeen    string   `json:"last_seen"`
}

func displayDevicesJSON(devices []device.DeviceRecord) error {
	results := make([]scanResult, 0, len(devices))
	for _, rec := range devices {
		results = append(results, scanResult{
			ID:          rec.ID,
			Name:        rec.DisplayName(),
			RSSI:        rec.RSSI,
			TxPower:     rec.TxPower,
			Connectable: rec.Connectable,
			Services:    rec.Services,
			LastSeen:    rec.LastSeen.Format(time.RFC3339),
		})
	}

	var w io.Writer = os.Stdout
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func clearScreen() {
	fmt.Print("\033[2J\033[H")
}
