package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/thinkgos/mercury236/config"
	"github.com/thinkgos/mercury236/mon"
)

func newMonitorCmd() *cobra.Command {
	var (
		interval    time.Duration
		metricsAddr string
		mqttBroker  string
		appliance   string
	)
	cmd := &cobra.Command{
		Use:   "monitor RS485 MaxPower",
		Short: "Keep polling the meter power consumption",
		Long: `Probe the meter once, then poll its reactive power every interval.
When the power (W) exceeds MaxPower the appliance control file is switched
off. Press Ctrl+C to exit.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxPower, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid maximum power %q: %w", args[1], err)
			}
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			cfg.Monitor.MaxPower = float64(maxPower)
			if cmd.Flags().Changed("interval") {
				cfg.Monitor.Interval = interval
			}
			if metricsAddr != "" {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Address = metricsAddr
			}
			if mqttBroker != "" {
				cfg.MQTT.Enabled = true
				cfg.MQTT.Broker = mqttBroker
			}
			if appliance != "" {
				cfg.Monitor.ApplianceFile = appliance
			}
			if maxPower < 100 || maxPower > 30000 {
				return fmt.Errorf("maximum power (%d) is out of the range (100..30000)", maxPower)
			}
			return runMonitor(cmd.Context(), cfg)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", mon.DefaultInterval, "poll interval")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().StringVar(&mqttBroker, "mqtt-broker", "", "publish snapshots to this MQTT broker")
	cmd.Flags().StringVar(&appliance, "appliance", "", "appliance control file written when MaxPower is exceeded")
	return cmd
}

func runMonitor(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.Logging)

	ch, err := openChannel(cfg)
	if err != nil {
		logger.Error(err)
		return err
	}
	defer ch.Close()

	client, err := newClient(cfg, ch, logger)
	if err != nil {
		return err
	}

	handlers := mon.Handlers{
		&mon.PowerLimit{Max: cfg.Monitor.MaxPower, Path: cfg.Monitor.ApplianceFile, Logger: logger},
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		handlers = append(handlers, mon.NewMetrics(reg))
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("metrics server")
			}
		}()
		defer srv.Close()
		logger.Infof("serving metrics on %s%s", cfg.Metrics.Address, cfg.Metrics.Path)
	}

	if cfg.MQTT.Enabled {
		pub := mon.NewPublisher(mon.PublisherConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
			QOS:      cfg.MQTT.QOS,
			Retained: cfg.MQTT.Retained,
		}, logger)
		if err = pub.Connect(); err != nil {
			logger.Error(err)
			return err
		}
		defer pub.Close()
		handlers = append(handlers, pub)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := mon.New(client,
		mon.WithInterval(cfg.Monitor.Interval),
		mon.WithSummaryEvery(cfg.Monitor.SummaryEvery),
		mon.WithHandler(handlers),
		mon.WithLogger(logger),
		mon.WithPanicHandler(func(e interface{}) {
			logger.Errorf("poll panic: %v", e)
		}),
	)
	if err = m.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, channelFailureMessage(err))
		return err
	}
	return nil
}
