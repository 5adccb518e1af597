package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thinkgos/mercury236"
)

func newReadCmd() *cobra.Command {
	var (
		format  string
		header  bool
		testRun bool
	)
	cmd := &cobra.Command{
		Use:   "read [RS485]",
		Short: "Read a full snapshot of the meter",
		Long: `Read voltage, current, power factor, frequency, phase angles,
active and reactive power and the energy counters, then print them.
RS485 is the address of the RS485 dongle (e.g. /dev/ttyUSB0).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			var block mercury.OutputBlock
			if !testRun {
				var device string
				if len(args) > 0 {
					device = args[0]
				}
				err = runRead(cmd.Context(), device, &block)
			}
			if perr := printOutput(cmd.OutOrStdout(), f, &block, header); perr != nil {
				return perr
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "human", "output format: human, csv or json")
	cmd.Flags().BoolVar(&header, "header", false, "print data header (with csv only)")
	cmd.Flags().BoolVar(&testRun, "test-run", false, "dry run to see output sample, no hardware required")
	return cmd
}

// runRead collects a snapshot into block. Only a failed probe or bus lock
// is an error, a failed read leaves the rest of block zero.
func runRead(ctx context.Context, device string, block *mercury.OutputBlock) error {
	cfg, err := loadConfig(device)
	if err != nil {
		return err
	}
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

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = client.Collect(ctx, block, mercury.DefaultReads...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mercury.ErrChannelFailure):
		fmt.Fprintln(os.Stderr, channelFailureMessage(err))
		return err
	case errors.Is(err, mercury.ErrLockUnavailable):
		logger.WithError(err).Error("bus is busy")
		return err
	}
	logger.WithError(err).WithField("code", int(mercury.Code(err))).Error("data collection stopped")
	return nil
}
