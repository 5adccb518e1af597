// Package config handles configuration loading of the meter programs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/thinkgos/mercury236"
)

// Transports
const (
	TransportSerial = "serial"
	TransportTCP    = "tcp"
)

// Default config file locations.
var configPaths = []string{
	"./mercury236.yaml",
	"./mercury236.yml",
	"~/.config/mercury236/config.yaml",
	"/etc/mercury236/config.yaml",
}

// Config of the meter programs.
type Config struct {
	// Device is the serial device, or host:port with the tcp transport.
	Device      string        `yaml:"device" json:"device"`
	Transport   string        `yaml:"transport" json:"transport" validate:"oneof=serial tcp"`
	BaudRate    int           `yaml:"baud_rate" json:"baud_rate" validate:"oneof=300 600 1200 2400 4800 9600 19200 38400 57600 115200"`
	Address     uint8         `yaml:"address" json:"address"`
	AccessLevel uint8         `yaml:"access_level" json:"access_level" validate:"oneof=1 2"`
	Password    string        `yaml:"password" json:"password" validate:"len=6,numeric"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
	Delay       time.Duration `yaml:"delay" json:"delay" validate:"gte=0"`
	// LockPath is the bus lock shared with other programs, empty for the default.
	LockPath string `yaml:"lock_path" json:"lock_path"`

	Monitor MonitorConfig `yaml:"monitor" json:"monitor"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	MQTT    MQTTConfig    `yaml:"mqtt" json:"mqtt"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// MonitorConfig of the polling monitor.
type MonitorConfig struct {
	// MaxPower in W, 0 disables the power limit.
	MaxPower      float64       `yaml:"max_power" json:"max_power" validate:"omitempty,min=100,max=30000"`
	Interval      time.Duration `yaml:"interval" json:"interval" validate:"gt=0"`
	SummaryEvery  int           `yaml:"summary_every" json:"summary_every" validate:"gt=0"`
	ApplianceFile string        `yaml:"appliance_file" json:"appliance_file"`
}

// MetricsConfig of the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address" validate:"required_if=Enabled true"`
	Path    string `yaml:"path" json:"path" validate:"required_if=Enabled true"`
}

// MQTTConfig of the snapshot publisher.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Broker   string `yaml:"broker" json:"broker" validate:"required_if=Enabled true"`
	ClientID string `yaml:"client_id" json:"client_id"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	Topic    string `yaml:"topic" json:"topic"`
	QOS      uint8  `yaml:"qos" json:"qos" validate:"lte=2"`
	Retained bool   `yaml:"retained" json:"retained"`
}

// LoggingConfig of the logrus backend.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Transport:   TransportSerial,
		BaudRate:    mercury.SerialDefaultBaudRate,
		Address:     mercury.DefaultAddress,
		AccessLevel: mercury.DefaultAccessLevel,
		Password:    "111111",
		Timeout:     mercury.DefaultTimeout,
		Delay:       mercury.DefaultDelay,
		Monitor: MonitorConfig{
			Interval:     5 * time.Second,
			SummaryEvery: 20,
		},
		Metrics: MetricsConfig{
			Address: ":9236",
			Path:    "/metrics",
		},
		MQTT: MQTTConfig{
			Topic: "mercury236/snapshot",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from file. With an empty path the default
// locations are tried, then the default configuration is returned.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}
	for _, p := range configPaths {
		if p[0] == '~' {
			home, err := os.UserHomeDir()
			if err != nil {
				continue
			}
			p = filepath.Join(home, p[2:])
		}
		if _, err := os.Stat(p); err == nil {
			return loadFile(p)
		}
	}
	return DefaultConfig(), nil
}

// loadFile loads configuration from a specific file over the defaults.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err = Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func Validate(cfg *Config) error {
	validate := validator.New()
	return validate.Struct(cfg)
}

// PasswordBytes returns the session password, one digit per byte.
func (c *Config) PasswordBytes() ([mercury.PasswordSize]byte, error) {
	var pwd [mercury.PasswordSize]byte
	if len(c.Password) != mercury.PasswordSize {
		return pwd, errors.New("config: password must be 6 digits")
	}
	for i := 0; i < mercury.PasswordSize; i++ {
		d := c.Password[i]
		if d < '0' || d > '9' {
			return pwd, errors.New("config: password must be 6 digits")
		}
		pwd[i] = d - '0'
	}
	return pwd, nil
}

// ClientOptions returns the client options the configuration describes.
func (c *Config) ClientOptions() ([]mercury.Option, error) {
	pwd, err := c.PasswordBytes()
	if err != nil {
		return nil, err
	}
	return []mercury.Option{
		mercury.WithAddress(c.Address),
		mercury.WithAccessLevel(c.AccessLevel),
		mercury.WithPassword(pwd),
		mercury.WithTimeout(c.Timeout),
		mercury.WithDelay(c.Delay),
	}, nil
}
