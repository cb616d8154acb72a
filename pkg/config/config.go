// Package config loads the activescan YAML configuration file.
package config

import (
	"fmt"
	"time"

	"github.com/herlein/activescan/pkg/mac"
	"github.com/herlein/activescan/pkg/radio"
	"github.com/herlein/activescan/pkg/radio/sim"
	"github.com/herlein/activescan/pkg/scan"
)

// CurrentVersion is the only config file version understood
const CurrentVersion = "1.0"

// Config represents the YAML configuration file structure
type Config struct {
	Version string       `yaml:"version"`
	Device  DeviceConfig `yaml:"device"`
	Scan    ScanConfig   `yaml:"scan"`
	Output  OutputConfig `yaml:"output"`
}

// DeviceConfig selects the radio
type DeviceConfig struct {
	Selector   string           `yaml:"selector"` // "", serial, bus:addr or #N
	Amplifier  bool             `yaml:"amplifier"`
	Simulate   bool             `yaml:"simulate"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// SimulationConfig describes the virtual coordinators of the simulated radio
type SimulationConfig struct {
	Coordinators []CoordinatorConfig `yaml:"coordinators"`
	CorruptEvery int                 `yaml:"corrupt_every"`
}

// CoordinatorConfig is one simulated beaconing device
type CoordinatorConfig struct {
	Channel        uint8  `yaml:"channel"`
	PAN            uint16 `yaml:"pan"`
	Short          uint16 `yaml:"short"`
	Extended       uint64 `yaml:"extended,omitempty"`
	PANCoordinator bool   `yaml:"pan_coordinator"`
	PermitJoin     bool   `yaml:"permit_join"`
}

// ScanConfig holds scan loop timing and channel settings
type ScanConfig struct {
	Channels         string `yaml:"channels"` // e.g. "11-26" or "11,15,20"
	HopIntervalMs    int    `yaml:"hop_interval_ms"`
	QuiescentDelayUs int    `yaml:"quiescent_delay_us"`
	FrameVersion     int    `yaml:"frame_version"` // 2003, 2006 or 2015
	NetworkExpirySec int    `yaml:"network_expiry_s"`
	StatsIntervalSec int    `yaml:"stats_interval_s"`
}

// OutputConfig selects the event sinks
type OutputConfig struct {
	Console   bool            `yaml:"console"`
	LogFile   LogFileConfig   `yaml:"log_file"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// LogFileConfig configures the rotating JSON-lines event log; empty Path disables it
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// MQTTConfig configures the broker sink; empty Broker disables it
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      int    `yaml:"qos"`
}

// WebSocketConfig configures the live event stream; empty Listen disables it
type WebSocketConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Scan: ScanConfig{
			Channels:         "11-26",
			HopIntervalMs:    int(scan.DefaultHopInterval / time.Millisecond),
			QuiescentDelayUs: int(scan.DefaultQuiescentDelay / time.Microsecond),
			FrameVersion:     2003,
			NetworkExpirySec: int(scan.DefaultNetworkExpiry / time.Second),
			StatsIntervalSec: 10,
		},
		Output: OutputConfig{
			Console: true,
			LogFile: LogFileConfig{
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
			MQTT: MQTTConfig{
				Topic: "activescan",
			},
		},
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: %q", ErrConfigVersion, c.Version)
	}

	sc, err := c.ToScanConfig()
	if err != nil {
		return err
	}
	if err := sc.Validate(); err != nil {
		return err
	}

	if c.Scan.StatsIntervalSec < 0 {
		return fmt.Errorf("%w: stats interval %d s", ErrInvalidValue, c.Scan.StatsIntervalSec)
	}

	if c.Output.MQTT.QoS < 0 || c.Output.MQTT.QoS > 2 {
		return fmt.Errorf("%w: mqtt qos %d", ErrInvalidValue, c.Output.MQTT.QoS)
	}

	for i, coord := range c.Device.Simulation.Coordinators {
		if !radio.Channel(coord.Channel).Valid() {
			return fmt.Errorf("simulated coordinator %d: %w: %d", i, radio.ErrInvalidChannel, coord.Channel)
		}
	}

	return nil
}

// FrameVersion maps the configured year to a frame version
func (c *Config) FrameVersion() (mac.FrameVersion, error) {
	version, err := mac.ParseFrameVersion(c.Scan.FrameVersion)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidFrameVersion, err)
	}
	return version, nil
}

// ToScanConfig converts the file settings to a runtime scan.ScanConfig.
// Zero durations fall back to the scan package defaults.
func (c *Config) ToScanConfig() (*scan.ScanConfig, error) {
	sc := scan.DefaultConfig()

	if c.Scan.Channels != "" {
		channels, err := radio.ParseChannels(c.Scan.Channels)
		if err != nil {
			return nil, err
		}
		sc.Channels = channels
	}

	if c.Scan.HopIntervalMs < 0 || c.Scan.QuiescentDelayUs < 0 || c.Scan.NetworkExpirySec < 0 {
		return nil, fmt.Errorf("%w: negative duration", ErrInvalidValue)
	}
	if c.Scan.HopIntervalMs > 0 {
		sc.HopInterval = time.Duration(c.Scan.HopIntervalMs) * time.Millisecond
	}
	if c.Scan.QuiescentDelayUs > 0 {
		sc.QuiescentDelay = time.Duration(c.Scan.QuiescentDelayUs) * time.Microsecond
	}
	if c.Scan.NetworkExpirySec > 0 {
		sc.NetworkExpiry = time.Duration(c.Scan.NetworkExpirySec) * time.Second
	}

	if c.Scan.FrameVersion != 0 {
		version, err := c.FrameVersion()
		if err != nil {
			return nil, err
		}
		sc.FrameVersion = version
	}

	return sc, nil
}

// StatsInterval returns the periodic stats log interval; zero disables it
func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.Scan.StatsIntervalSec) * time.Second
}

// SimConfig builds the simulated radio configuration
func (c *Config) SimConfig() sim.Config {
	coords := make([]sim.Coordinator, 0, len(c.Device.Simulation.Coordinators))
	for _, cc := range c.Device.Simulation.Coordinators {
		coords = append(coords, sim.Coordinator{
			Channel:        radio.Channel(cc.Channel),
			PAN:            mac.PANID(cc.PAN),
			Short:          mac.ShortAddress(cc.Short),
			Extended:       mac.ExtendedAddress(cc.Extended),
			PANCoordinator: cc.PANCoordinator,
			PermitJoin:     cc.PermitJoin,
		})
	}
	if len(coords) == 0 {
		coords = DefaultCoordinators()
	}
	return sim.Config{Coordinators: coords, CorruptEvery: c.Device.Simulation.CorruptEvery}
}

// DefaultCoordinators is the simulated neighborhood used when none is configured
func DefaultCoordinators() []sim.Coordinator {
	return []sim.Coordinator{
		{Channel: 11, PAN: 0x1a62, Short: 0x0000, PANCoordinator: true, PermitJoin: true},
		{Channel: 15, PAN: 0x4f2d, Short: 0x0000, PANCoordinator: true},
		{Channel: 15, PAN: 0x4f2d, Short: 0x3c1e},
		{Channel: 20, PAN: 0xbeef, Extended: 0x00124b0012345678, PANCoordinator: true},
		{Channel: 25, PAN: 0x0777, Short: 0x8a01, PermitJoin: true},
	}
}
