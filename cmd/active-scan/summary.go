package main

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"github.com/herlein/activescan/pkg/scan"
)

// printSummary renders the networks heard this run and the loop counters
func printSummary(networks []*scan.Network, stats scan.StatsSnapshot) {
	fmt.Println()
	pterm.DefaultSection.Println("Scan Summary")

	if len(networks) == 0 {
		pterm.Info.Println("No networks found")
	} else {
		data := pterm.TableData{{"PAN", "Address", "Channel", "Role", "Join", "Beacons", "Last Seen"}}
		for _, n := range networks {
			role := "Router"
			if n.Coordinator {
				role = "Coordinator"
			}
			join := ""
			if n.PermitJoin {
				join = "yes"
			}
			data = append(data, []string{
				fmt.Sprintf("%04x", uint16(n.PAN)),
				n.Address.String(),
				fmt.Sprintf("%d", n.Channel),
				role,
				join,
				fmt.Sprintf("%d", n.BeaconCount),
				n.LastSeen.Format(time.TimeOnly),
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	pterm.DefaultTable.WithData(pterm.TableData{
		{"Hops", fmt.Sprintf("%d", stats.Hops)},
		{"Requests sent", fmt.Sprintf("%d", stats.RequestsSent)},
		{"Transmit faults", fmt.Sprintf("%d", stats.TransmitFaults)},
		{"Beacons", fmt.Sprintf("%d", stats.Beacons)},
		{"Frames ignored", fmt.Sprintf("%d", stats.FramesIgnored)},
		{"Decode errors", fmt.Sprintf("%d", stats.DecodeErrors)},
		{"CRC faults", fmt.Sprintf("%d", stats.CRCFaults)},
		{"Receive faults", fmt.Sprintf("%d", stats.ReceiveFaults)},
	}).Render()
}
