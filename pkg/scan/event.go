package scan

import (
	"time"

	"github.com/herlein/activescan/pkg/radio"
)

// EventKind classifies a scan loop event
type EventKind uint8

const (
	// EventBeacon: a beacon with a source address was heard
	EventBeacon EventKind = iota + 1
	// EventDecodeError: received bytes did not parse as a MAC frame
	EventDecodeError
	// EventCRCFault: the radio rejected a frame on its FCS
	EventCRCFault
	// EventReceiveFault: the radio failed a receive for another reason
	EventReceiveFault
	// EventRequestSent: a beacon request went out
	EventRequestSent
	// EventTransmitFault: tuning, encoding or transmitting a request failed
	EventTransmitFault
)

// String returns the event kind name used in logs and JSON records
func (k EventKind) String() string {
	switch k {
	case EventBeacon:
		return "beacon"
	case EventDecodeError:
		return "decode-error"
	case EventCRCFault:
		return "crc-fault"
	case EventReceiveFault:
		return "receive-fault"
	case EventRequestSent:
		return "request-sent"
	case EventTransmitFault:
		return "transmit-fault"
	default:
		return "unknown"
	}
}

// Event is emitted by the scan loop for every outcome of an iteration.
// Fields beyond Kind, Time and Channel are set only for the kinds that use them.
type Event struct {
	Kind    EventKind
	Time    time.Time
	Channel radio.Channel

	Observation *Observation // EventBeacon
	Sequence    uint8        // EventRequestSent, EventTransmitFault
	Raw         []byte       // EventDecodeError; owned by the event
	CRC         uint16       // EventCRCFault
	Err         error        // EventDecodeError, EventReceiveFault, EventTransmitFault
}

// Reporter receives scan events. Report is called from the scan loop and
// must not block for long; sinks that do I/O should buffer.
type Reporter interface {
	Report(ev Event)
}

// ReporterFunc adapts a function to the Reporter interface
type ReporterFunc func(ev Event)

func (f ReporterFunc) Report(ev Event) { f(ev) }

type discardReporter struct{}

func (discardReporter) Report(Event) {}
