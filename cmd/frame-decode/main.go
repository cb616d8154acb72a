// frame-decode prints the fields of captured 802.15.4 MAC frames.
//
// Frames are given as hex, one per argument or one per line on stdin.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/herlein/activescan/pkg/logging"
	"github.com/herlein/activescan/pkg/mac"
	"github.com/herlein/activescan/pkg/scan"
)

var withFCS = flag.Bool("fcs", true, "Frames include the trailing 2-byte FCS")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [hex-frame ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Decode IEEE 802.15.4 MAC frames. Reads stdin when no frame is given.\n\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s 008001621a0000ffcf000074ee   # coordinator beacon, PAN 1a62\n", os.Args[0])
	}
	flag.Parse()

	footer := mac.FooterNone
	if *withFCS {
		footer = mac.FooterExplicit
	}

	failed := false
	decodeLine := func(line string) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			return
		}
		if err := decode(line, footer); err != nil {
			logging.Errorf("%s: %v", line, err)
			failed = true
		}
	}

	if flag.NArg() > 0 {
		for _, arg := range flag.Args() {
			decodeLine(arg)
		}
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			decodeLine(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			logging.Errorf("reading stdin: %v", err)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func decode(text string, footer mac.FooterMode) error {
	raw, err := hex.DecodeString(strings.NewReplacer(" ", "", ":", "").Replace(text))
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}

	if footer == mac.FooterExplicit {
		if _, received, computed, ok := mac.CheckFCS(raw); !ok {
			return fmt.Errorf("fcs mismatch: received 0x%04x computed 0x%04x", received, computed)
		}
	}

	f, err := mac.Decode(raw, footer)
	if err != nil {
		return err
	}

	h := f.Header
	fmt.Printf("%s frame, version %s, seq %d\n", h.FrameType, h.Version, h.Sequence)
	if h.Destination != nil {
		fmt.Printf("  Destination:  %s\n", h.Destination)
	}
	if h.Source != nil {
		fmt.Printf("  Source:       %s\n", h.Source)
	}
	fmt.Printf("  Flags:        security=%t pending=%t ack=%t compress=%t\n",
		h.Security, h.FramePending, h.AckRequest, h.PANIDCompress)

	switch c := f.Content.(type) {
	case *mac.Beacon:
		sf := c.Superframe
		fmt.Printf("  Superframe:   BO=%d SO=%d final CAP slot %d\n", sf.BeaconOrder, sf.SuperframeOrder, sf.FinalCAPSlot)
		fmt.Printf("  Roles:        pan coordinator=%t permit join=%t ble=%t\n", sf.PANCoordinator, sf.AssociationPermit, sf.BatteryLifeExtension)
		if len(c.GTS) > 0 || len(c.PendingShort) > 0 || len(c.PendingExtended) > 0 {
			fmt.Printf("  GTS:          %d slots, %d short / %d extended pending\n", len(c.GTS), len(c.PendingShort), len(c.PendingExtended))
		}
	case mac.Command:
		fmt.Printf("  Command:      %s\n", c.ID)
	}
	if len(f.Payload) > 0 {
		fmt.Printf("  Payload:      %s\n", hex.EncodeToString(f.Payload))
	}
	if footer == mac.FooterExplicit {
		fmt.Printf("  FCS:          0x%04x\n", f.FCS)
	}

	if obs, ok := scan.Classify(f); ok {
		fmt.Printf("  Scan result:  %s\n", obs)
	}
	fmt.Println()
	return nil
}
