// active-scan hops across the 2.4 GHz 802.15.4 channels sending beacon
// requests and reports every coordinator and router that answers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gousb"

	"github.com/herlein/activescan/pkg/config"
	"github.com/herlein/activescan/pkg/logging"
	"github.com/herlein/activescan/pkg/report"
	"github.com/herlein/activescan/pkg/rfcat"
	"github.com/herlein/activescan/pkg/scan"
)

var (
	configPath = flag.String("c", "", "YAML config file")
	deviceSel  = flag.String("d", "", rfcat.DeviceFlagUsage())
	listOnly   = flag.Bool("l", false, "List devices only")
	simulate   = flag.Bool("sim", false, "Use the simulated radio instead of a dongle")
	channels   = flag.String("channels", "", "Channels to scan, e.g. 11-26 or 11,15,20")
	hop        = flag.Duration("hop", 0, "Time spent on each channel (default 2s)")
	duration   = flag.Duration("duration", 0, "Scan duration (0 = indefinite)")
	logFile    = flag.String("log-file", "", "Append JSON event records to this rotating file")
	mqttBroker = flag.String("mqtt", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	wsListen   = flag.String("ws", "", "Serve live events over websocket on this address, e.g. :8080")
	saveConfig = flag.String("save-config", "", "Write the effective config to this file and exit")
	verbose    = flag.Bool("v", false, "Verbose output - debug logging with per-frame link status")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "IEEE 802.15.4 active scanner\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                               # Scan channels 11-26 with the first dongle\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -channels 15,20,25 -hop 500ms # Scan three channels quickly\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -sim -duration 30s -v         # Run against simulated coordinators\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c lab.yaml -ws :8080         # Stream events to websocket clients\n", os.Args[0])
	}
	flag.Parse()

	if err := run(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}

func run() error {
	if *listOnly {
		usb := gousb.NewContext()
		defer usb.Close()
		return listDevices(usb)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if *verbose {
		logging.EnableDebug()
	}

	if *saveConfig != "" {
		if err := config.Save(cfg, *saveConfig); err != nil {
			return err
		}
		logging.Infof("Config written to %s", *saveConfig)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	r, closeRadio, err := openRadio(cfg)
	if err != nil {
		return err
	}
	defer closeRadio()

	sinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer sinks.Close()
	rotateOnHangup(ctx, sinks)

	scanCfg, err := cfg.ToScanConfig()
	if err != nil {
		return err
	}
	scanCfg.DebugLog = logging.Debugf
	scanCfg.OnNetworkDiscovered = func(n *scan.Network) {
		logging.Info("New network", "pan", fmt.Sprintf("%04x", uint16(n.PAN)), "address", n.Address.String(), "channel", n.Channel)
	}
	scanCfg.OnNetworkExpired = func(n *scan.Network) {
		logging.Info("Network expired", "address", n.Address.String(), "last_seen", n.LastSeen.Format(time.TimeOnly))
	}

	scanner := scan.New(r, sinks, scanCfg)

	if interval := cfg.StatsInterval(); interval > 0 {
		report.StartStatsReporter(ctx, interval, scanner.Stats)
	}

	if *duration > 0 {
		logging.Infof("Scanning %d channels for %v...", len(scanCfg.Channels), *duration)
	} else {
		logging.Infof("Scanning %d channels... (Press Ctrl+C to stop)", len(scanCfg.Channels))
	}

	err = scanner.Run(ctx)
	printSummary(scanner.Networks(), scanner.Stats())

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// loadConfig reads the config file, applies command-line overrides and
// validates the result
func loadConfig() (*config.Config, error) {
	cfg, err := config.Read(*configPath)
	if err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			cfg.Device.Selector = *deviceSel
		case "sim":
			cfg.Device.Simulate = *simulate
		case "channels":
			cfg.Scan.Channels = *channels
		case "hop":
			cfg.Scan.HopIntervalMs = int(*hop / time.Millisecond)
		case "log-file":
			cfg.Output.LogFile.Path = *logFile
		case "mqtt":
			cfg.Output.MQTT.Broker = *mqttBroker
		case "ws":
			cfg.Output.WebSocket.Listen = *wsListen
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
