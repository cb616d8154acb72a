package main

import (
	"fmt"

	"github.com/google/gousb"

	"github.com/herlein/activescan/pkg/config"
	"github.com/herlein/activescan/pkg/dongle"
	"github.com/herlein/activescan/pkg/logging"
	"github.com/herlein/activescan/pkg/radio"
	"github.com/herlein/activescan/pkg/radio/sim"
	"github.com/herlein/activescan/pkg/rfcat"
)

// openRadio brings up the simulated radio or the selected dongle. The
// returned func releases everything openRadio acquired.
func openRadio(cfg *config.Config) (radio.Radio, func(), error) {
	var debugLog func(string, ...interface{})
	if logging.DebugEnabled() {
		debugLog = logging.Debugf
	}

	if cfg.Device.Simulate {
		simCfg := cfg.SimConfig()
		simCfg.DebugLog = debugLog
		r := sim.New(simCfg)
		logging.Infof("Using simulated radio with %d coordinators", len(simCfg.Coordinators))
		return r, func() { r.Close() }, nil
	}

	usb := gousb.NewContext()

	device, err := rfcat.SelectDevice(usb, rfcat.DeviceSelector(cfg.Device.Selector))
	if err != nil {
		usb.Close()
		return nil, nil, err
	}
	release := func() {
		device.Close()
		usb.Close()
	}

	logging.Infof("Connected to: %s", device)

	partNum, err := device.GetPartNum()
	if err != nil {
		logging.Warnf("Could not read chip part number: %v", err)
	} else if !rfcat.Is24GHz(partNum) {
		logging.Warnf("Chip %s (0x%02X) is not a 2.4 GHz radio; no beacons will be heard", rfcat.PartName(partNum), partNum)
	}

	r := dongle.New(device, dongle.Config{Amplifier: cfg.Device.Amplifier, DebugLog: debugLog})
	if err := r.Init(); err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to initialize radio: %w", err)
	}

	return r, release, nil
}

// listDevices prints every supported dongle on the bus
func listDevices(usb *gousb.Context) error {
	devices, err := rfcat.FindAllDevices(usb)
	if err != nil {
		return fmt.Errorf("failed to enumerate devices: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No supported devices found")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))
	for i, device := range devices {
		defer device.Close()

		if !*verbose {
			fmt.Printf("  #%d  %s  %d:%d  %s\n", i, device.Serial, device.Bus, device.Address, device.Product)
			continue
		}

		fmt.Printf("Device #%d:\n", i)
		fmt.Printf("  Serial:       %s\n", device.Serial)
		fmt.Printf("  Bus:Address:  %d:%d\n", device.Bus, device.Address)
		fmt.Printf("  Manufacturer: %s\n", device.Manufacturer)
		fmt.Printf("  Product:      %s (0x%04X)\n", device.Product, device.ProductID)

		if buildType, err := device.GetBuildType(); err == nil {
			fmt.Printf("  Firmware:     %s\n", buildType)
		} else {
			fmt.Printf("  Firmware:     (error: %v)\n", err)
		}

		if ampMode, err := device.GetAmpMode(); err == nil {
			amp := "bypassed"
			if ampMode == rfcat.AmpModeOn {
				amp = "enabled"
			}
			fmt.Printf("  Amplifier:    %s\n", amp)
		} else {
			fmt.Printf("  Amplifier:    (error: %v)\n", err)
		}

		if partNum, err := device.GetPartNum(); err == nil {
			band := "sub-GHz"
			if rfcat.Is24GHz(partNum) {
				band = "2.4 GHz"
			}
			fmt.Printf("  Chip:         %s (0x%02X, %s)\n", rfcat.PartName(partNum), partNum, band)
		} else {
			fmt.Printf("  Chip:         (error: %v)\n", err)
		}
		fmt.Println()
	}
	return nil
}
