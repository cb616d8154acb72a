package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/herlein/activescan/pkg/config"
	"github.com/herlein/activescan/pkg/logging"
	"github.com/herlein/activescan/pkg/report"
)

// openSinks builds the event fan-out from the output config. Sinks that
// fail to open are closed again before the error is returned.
func openSinks(ctx context.Context, cfg *config.Config) (report.Multi, error) {
	var sinks report.Multi
	out := cfg.Output

	if out.Console {
		sinks = append(sinks, report.NewLogSink())
	}

	if out.LogFile.Path != "" {
		fileSink, err := report.NewFileSink(report.FileConfig{
			Path:       out.LogFile.Path,
			MaxSizeMB:  out.LogFile.MaxSizeMB,
			MaxBackups: out.LogFile.MaxBackups,
			MaxAgeDays: out.LogFile.MaxAgeDays,
			Compress:   out.LogFile.Compress,
		})
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, fileSink)
		logging.Infof("Writing events to %s", out.LogFile.Path)
	}

	if out.MQTT.Broker != "" {
		mqttSink, err := report.NewMQTTSink(report.MQTTConfig{
			Broker:   out.MQTT.Broker,
			ClientID: out.MQTT.ClientID,
			Username: out.MQTT.Username,
			Password: out.MQTT.Password,
			Topic:    out.MQTT.Topic,
			QoS:      byte(out.MQTT.QoS),
		})
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, mqttSink)
		logging.Infof("Publishing events to %s under %s/", out.MQTT.Broker, out.MQTT.Topic)
	}

	if out.WebSocket.Listen != "" {
		hub := report.NewHub()
		sinks = append(sinks, hub)
		go func() {
			if err := hub.Serve(ctx, out.WebSocket.Listen); err != nil {
				logging.Errorf("Websocket server: %v", err)
			}
		}()
	}

	return sinks, nil
}

// rotator is a sink backed by a file that can be reopened
type rotator interface {
	Rotate() error
}

// rotateSinks rotates every file-backed sink and returns how many rotated
func rotateSinks(sinks report.Multi) int {
	rotated := 0
	for _, sink := range sinks {
		r, ok := sink.(rotator)
		if !ok {
			continue
		}
		if err := r.Rotate(); err != nil {
			logging.Warnf("Failed to rotate event log: %v", err)
			continue
		}
		rotated++
	}
	return rotated
}

// rotateOnHangup rotates the event logs on SIGHUP until ctx is done
func rotateOnHangup(ctx context.Context, sinks report.Multi) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logging.Infof("SIGHUP: rotated %d event log(s)", rotateSinks(sinks))
			}
		}
	}()
}
