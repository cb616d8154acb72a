package report

import (
	"github.com/herlein/activescan/pkg/logging"
	"github.com/herlein/activescan/pkg/scan"
)

// LogSink prints every event to the console log. Beacons and requests are
// info; faults are errors.
type LogSink struct{}

// NewLogSink returns a console sink
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (LogSink) Report(ev scan.Event) {
	switch ev.Kind {
	case scan.EventBeacon:
		if ev.Observation != nil {
			logging.Infof("%s", ev.Observation)
		}
	case scan.EventRequestSent:
		logging.Infof("CH %d BEACON REQUEST", ev.Channel)
	case scan.EventTransmitFault:
		logging.Errorf("CH %d TX failed seq %d: %v", ev.Channel, ev.Sequence, ev.Err)
	case scan.EventCRCFault:
		logging.Errorf("CH %d Invalid CRC %04x", ev.Channel, ev.CRC)
	case scan.EventDecodeError:
		logging.Errorf("CH %d Failed to parse frame, % x: %v", ev.Channel, ev.Raw, ev.Err)
	case scan.EventReceiveFault:
		logging.Errorf("CH %d Receive failed: %v", ev.Channel, ev.Err)
	}
}
