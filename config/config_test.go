package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mercury236.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Errorf("Validate(DefaultConfig()) error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
device: /dev/ttyUSB0
baud_rate: 9600
timeout: 2s
monitor:
  max_power: 17250
  interval: 10s
  appliance_file: /var/lib/appliances/mainHeater
mqtt:
  enabled: true
  broker: tcp://localhost:1883
logging:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := DefaultConfig()
	want.Device = "/dev/ttyUSB0"
	want.Timeout = 2 * time.Second
	want.Monitor.MaxPower = 17250
	want.Monitor.Interval = 10 * time.Second
	want.Monitor.ApplianceFile = "/var/lib/appliances/mainHeater"
	want.MQTT.Enabled = true
	want.MQTT.Broker = "tcp://localhost:1883"
	want.Logging.Level = "debug"
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"max power too low", "monitor:\n  max_power: 50\n"},
		{"max power too high", "monitor:\n  max_power: 30001\n"},
		{"transport", "transport: udp\n"},
		{"baud rate", "baud_rate: 1000\n"},
		{"password", "password: \"12ab56\"\n"},
		{"access level", "access_level: 3\n"},
		{"mqtt without broker", "mqtt:\n  enabled: true\n"},
		{"log format", "logging:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			var ve validator.ValidationErrors
			if !errors.As(err, &ve) {
				t.Errorf("Load() error = %v, want validation errors", err)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Errorf("Load() missing file error = %v", err)
	}
	if _, err := Load(writeConfig(t, "device: [")); err == nil {
		t.Error("Load() malformed yaml error = nil")
	}
}

func TestConfig_PasswordBytes(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     [6]byte
		wantErr  bool
	}{
		{"factory level 1", "111111", [6]byte{1, 1, 1, 1, 1, 1}, false},
		{"factory level 2", "222222", [6]byte{2, 2, 2, 2, 2, 2}, false},
		{"digits", "012345", [6]byte{0, 1, 2, 3, 4, 5}, false},
		{"short", "1111", [6]byte{}, true},
		{"letters", "11a111", [6]byte{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Password: tt.password}
			got, err := c.PasswordBytes()
			if (err != nil) != tt.wantErr {
				t.Fatalf("PasswordBytes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("PasswordBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_ClientOptions(t *testing.T) {
	opts, err := DefaultConfig().ClientOptions()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 5 {
		t.Errorf("options = %d, want 5", len(opts))
	}
	c := DefaultConfig()
	c.Password = "x"
	if _, err = c.ClientOptions(); err == nil {
		t.Error("ClientOptions() with bad password error = nil")
	}
}
