package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/herlein/activescan/pkg/mac"
	"github.com/herlein/activescan/pkg/radio"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activescan.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	sc, err := cfg.ToScanConfig()
	if err != nil {
		t.Fatalf("ToScanConfig() error = %v", err)
	}
	if len(sc.Channels) != 16 || sc.Channels[0] != 11 || sc.Channels[15] != 26 {
		t.Errorf("Channels = %v, want 11..26", sc.Channels)
	}
	if sc.HopInterval != 2*time.Second || sc.QuiescentDelay != 100*time.Microsecond {
		t.Errorf("timing = %v / %v, want 2s / 100µs", sc.HopInterval, sc.QuiescentDelay)
	}
	if sc.FrameVersion != mac.FrameVersion2003 {
		t.Errorf("FrameVersion = %v, want 2003", sc.FrameVersion)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
device:
  selector: "#1"
  amplifier: true
  simulation:
    corrupt_every: 4
    coordinators:
      - channel: 15
        pan: 0x1a62
        short: 0x0000
        pan_coordinator: true
        permit_join: true
      - channel: 20
        pan: 0xbeef
        extended: 0x00124b0012345678
scan:
  channels: "15,20-22"
  hop_interval_ms: 500
  frame_version: 2006
output:
  console: false
  log_file:
    path: /var/log/activescan/events.jsonl
  mqtt:
    broker: tcp://localhost:1883
    topic: lab/scan
  websocket:
    listen: ":8080"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Selector != "#1" || !cfg.Device.Amplifier {
		t.Errorf("Device = %+v", cfg.Device)
	}
	if cfg.Output.Console || cfg.Output.MQTT.Broker != "tcp://localhost:1883" || cfg.Output.WebSocket.Listen != ":8080" {
		t.Errorf("Output = %+v", cfg.Output)
	}
	// defaults survive for keys the file leaves out
	if cfg.Output.LogFile.MaxSizeMB != 10 || cfg.Scan.StatsIntervalSec != 10 {
		t.Errorf("defaults lost: log max size %d, stats interval %d", cfg.Output.LogFile.MaxSizeMB, cfg.Scan.StatsIntervalSec)
	}

	sc, err := cfg.ToScanConfig()
	if err != nil {
		t.Fatalf("ToScanConfig() error = %v", err)
	}
	want := []radio.Channel{15, 20, 21, 22}
	if len(sc.Channels) != len(want) {
		t.Fatalf("Channels = %v, want %v", sc.Channels, want)
	}
	for i := range want {
		if sc.Channels[i] != want[i] {
			t.Errorf("Channels[%d] = %d, want %d", i, sc.Channels[i], want[i])
		}
	}
	if sc.HopInterval != 500*time.Millisecond || sc.FrameVersion != mac.FrameVersion2006 {
		t.Errorf("HopInterval %v FrameVersion %v", sc.HopInterval, sc.FrameVersion)
	}

	simCfg := cfg.SimConfig()
	if simCfg.CorruptEvery != 4 || len(simCfg.Coordinators) != 2 {
		t.Fatalf("SimConfig() = %+v", simCfg)
	}
	if c := simCfg.Coordinators[1]; c.Extended != 0x00124b0012345678 || c.PAN != 0xbeef || c.Channel != 20 {
		t.Errorf("coordinator 1 = %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"bad version", `version: "2.0"`, ErrConfigVersion},
		{"bad channel", "version: \"1.0\"\nscan:\n  channels: \"10-12\"", radio.ErrInvalidChannel},
		{"bad frame version", "version: \"1.0\"\nscan:\n  frame_version: 2011", ErrInvalidFrameVersion},
		{"negative hop", "version: \"1.0\"\nscan:\n  hop_interval_ms: -5", ErrInvalidValue},
		{"bad qos", "version: \"1.0\"\noutput:\n  mqtt:\n    qos: 3", ErrInvalidValue},
		{"bad sim channel", "version: \"1.0\"\ndevice:\n  simulation:\n    coordinators:\n      - channel: 30", radio.ErrInvalidChannel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
	if _, err := Load(writeConfig(t, "version: [")); err == nil {
		t.Error("Load() of malformed YAML should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ACTIVESCAN_DEVICE", "009a")
	t.Setenv("ACTIVESCAN_CHANNELS", "26")
	t.Setenv("ACTIVESCAN_HOP_INTERVAL_MS", "250")
	t.Setenv("ACTIVESCAN_MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("ACTIVESCAN_WS_LISTEN", "127.0.0.1:9000")
	t.Setenv("ACTIVESCAN_LOG_FILE", "events.jsonl")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Device.Selector != "009a" || cfg.Scan.Channels != "26" || cfg.Scan.HopIntervalMs != 250 {
		t.Errorf("device/scan overrides not applied: %+v %+v", cfg.Device, cfg.Scan)
	}
	if cfg.Output.MQTT.Broker != "tcp://broker:1883" || cfg.Output.WebSocket.Listen != "127.0.0.1:9000" || cfg.Output.LogFile.Path != "events.jsonl" {
		t.Errorf("output overrides not applied: %+v", cfg.Output)
	}
}

func TestEnvOverrideMalformed(t *testing.T) {
	t.Setenv("ACTIVESCAN_HOP_INTERVAL_MS", "2s")

	if _, err := Load(""); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Load() error = %v, want %v", err, ErrInvalidValue)
	}
	if _, err := Read(""); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Read() error = %v, want %v", err, ErrInvalidValue)
	}
}

func TestReadSkipsValidation(t *testing.T) {
	path := writeConfig(t, "version: \"1.0\"\nscan:\n  channels: \"99\"")

	cfg, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !errors.Is(cfg.Validate(), radio.ErrInvalidChannel) {
		t.Errorf("Validate() error = %v, want %v", cfg.Validate(), radio.ErrInvalidChannel)
	}

	cfg.Scan.Channels = "15"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after override error = %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Scan.Channels = "11,25"
	cfg.Device.Simulation.Coordinators = []CoordinatorConfig{{Channel: 25, PAN: 0x0777, Short: 0x8a01}}

	path := filepath.Join(t.TempDir(), "nested", "activescan.yaml")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Scan.Channels != "11,25" || len(loaded.Device.Simulation.Coordinators) != 1 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestSimConfigDefaults(t *testing.T) {
	simCfg := Default().SimConfig()
	if len(simCfg.Coordinators) != len(DefaultCoordinators()) {
		t.Errorf("SimConfig() coordinators = %d, want defaults", len(simCfg.Coordinators))
	}
}
