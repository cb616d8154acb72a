package scan

import (
	"fmt"
	"sync/atomic"
)

// Stats counts scan loop outcomes. Counters may be read while the loop runs.
type Stats struct {
	Hops           atomic.Uint64
	RequestsSent   atomic.Uint64
	TransmitFaults atomic.Uint64
	Beacons        atomic.Uint64
	FramesIgnored  atomic.Uint64 // decoded frames that were not usable beacons
	DecodeErrors   atomic.Uint64
	CRCFaults      atomic.Uint64
	ReceiveFaults  atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats
type StatsSnapshot struct {
	Hops           uint64 `json:"hops"`
	RequestsSent   uint64 `json:"requests_sent"`
	TransmitFaults uint64 `json:"transmit_faults"`
	Beacons        uint64 `json:"beacons"`
	FramesIgnored  uint64 `json:"frames_ignored"`
	DecodeErrors   uint64 `json:"decode_errors"`
	CRCFaults      uint64 `json:"crc_faults"`
	ReceiveFaults  uint64 `json:"receive_faults"`
}

// Snapshot loads every counter
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Hops:           s.Hops.Load(),
		RequestsSent:   s.RequestsSent.Load(),
		TransmitFaults: s.TransmitFaults.Load(),
		Beacons:        s.Beacons.Load(),
		FramesIgnored:  s.FramesIgnored.Load(),
		DecodeErrors:   s.DecodeErrors.Load(),
		CRCFaults:      s.CRCFaults.Load(),
		ReceiveFaults:  s.ReceiveFaults.Load(),
	}
}

// Sub returns the counter deltas since prev
func (s StatsSnapshot) Sub(prev StatsSnapshot) StatsSnapshot {
	return StatsSnapshot{
		Hops:           s.Hops - prev.Hops,
		RequestsSent:   s.RequestsSent - prev.RequestsSent,
		TransmitFaults: s.TransmitFaults - prev.TransmitFaults,
		Beacons:        s.Beacons - prev.Beacons,
		FramesIgnored:  s.FramesIgnored - prev.FramesIgnored,
		DecodeErrors:   s.DecodeErrors - prev.DecodeErrors,
		CRCFaults:      s.CRCFaults - prev.CRCFaults,
		ReceiveFaults:  s.ReceiveFaults - prev.ReceiveFaults,
	}
}

// String formats the snapshot for a one-line log
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("Req: %d sent %d failed | Beacons: %d | Ignored: %d | Errors: %d decode %d crc %d rx",
		s.RequestsSent, s.TransmitFaults, s.Beacons, s.FramesIgnored,
		s.DecodeErrors, s.CRCFaults, s.ReceiveFaults)
}
