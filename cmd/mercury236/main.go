// mercury236 reads a Mercury 236 power meter over RS-485.
//
//	mercury236 read /dev/ttyUSB0 --format json
//	mercury236 monitor /dev/ttyUSB0 17250 --metrics-addr :9236
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thinkgos/mercury236"
	"github.com/thinkgos/mercury236/buslock"
	"github.com/thinkgos/mercury236/config"
)

var version = "dev"

var (
	cfgFile   string
	debug     bool
	transport string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "mercury236",
		Short:        "Mercury 236 power meter client",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./mercury236.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print extra debug info")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", "", "serial or tcp (RS-485 to Ethernet converter)")

	rootCmd.AddCommand(
		newReadCmd(),
		newMonitorCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the configuration and applies the command line overrides.
func loadConfig(device string) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if device != "" {
		cfg.Device = device
	}
	if transport != "" {
		cfg.Transport = transport
	}
	if debug {
		cfg.Logging.Level = "debug"
	}
	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Device == "" {
		return nil, fmt.Errorf("no RS485 device specified")
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// openChannel opens the line to the meter.
func openChannel(cfg *config.Config) (io.ReadWriteCloser, error) {
	if cfg.Transport == config.TransportTCP {
		conn, err := mercury.DialTCP(cfg.Device, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to %s: %w", cfg.Device, err)
		}
		return conn, nil
	}
	port := mercury.NewSerialPort(cfg.Device)
	port.BaudRate = cfg.BaudRate
	port.Timeout = cfg.Timeout
	if err := port.Connect(); err != nil {
		return nil, fmt.Errorf("cannot open %s terminal channel: %w", cfg.Device, err)
	}
	return port, nil
}

// newClient builds a client sharing the bus lock, logging through logger.
func newClient(cfg *config.Config, ch mercury.Channel, logger *logrus.Logger) (*mercury.Client, error) {
	opts, err := cfg.ClientOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		mercury.WithLocker(buslock.New(cfg.LockPath)),
		mercury.WithLogProvider(logger),
	)
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		opts = append(opts, mercury.WithEnableLogger())
	}
	return mercury.NewClient(ch, opts...), nil
}

// channelFailureMessage words a failed probe like the meter tools always did.
func channelFailureMessage(err error) string {
	if mercury.IsTimeout(err) {
		return "Power meter channel time out."
	}
	return "Power meter communication channel test failed."
}
