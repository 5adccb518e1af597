// Package mon keeps polling a meter: the channel is probed once, then every
// interval a session is opened, the configured reads run and the session
// is closed, all under the bus lock. Each poll is handed to a Handler.
package mon

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/thinkgos/mercury236"
)

const (
	// DefaultInterval time between two polls
	DefaultInterval = 5 * time.Second
	// DefaultSummaryEvery number of polls between two summary log lines
	DefaultSummaryEvery = 20
)

// DefaultReads polls the reactive power only.
var DefaultReads = []mercury.Reader{mercury.ReadS}

// Logger used by the monitor and its handlers. *logrus.Logger satisfies it.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Result of one poll.
type Result struct {
	Loop     uint64              // poll number, from 1
	Time     time.Time           // poll start
	Duration time.Duration       // poll duration
	Code     mercury.ResultCode  // result code of the poll
	TxCnt    uint64              // polls done
	ErrCnt   uint64              // polls failed
	Block    mercury.OutputBlock // readings, fields of failed reads keep their previous value
}

// Monitor polls one meter until its context is cancelled.
type Monitor struct {
	client       *mercury.Client
	interval     time.Duration
	summaryEvery int
	reads        []mercury.Reader
	handler      Handler
	panicHandle  func(err interface{})
	logger       Logger

	block  mercury.OutputBlock
	txCnt  uint64
	errCnt uint64
}

// New creates a monitor of client. The client should carry the bus lock
// (mercury.WithLocker) when other programs share the line.
func New(client *mercury.Client, opts ...Option) *Monitor {
	m := &Monitor{
		client:       client,
		interval:     DefaultInterval,
		summaryEvery: DefaultSummaryEvery,
		reads:        DefaultReads,
		handler:      NopProc{},
		panicHandle:  func(interface{}) {},
		logger:       newStdLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run probes the meter once and then polls it every interval until ctx is
// done. A failed probe is returned at once, wrapping mercury.ErrChannelFailure.
// Cancellation is observed between polls, a poll in progress completes.
func (sf *Monitor) Run(ctx context.Context) error {
	err := sf.client.Exclusive(ctx, sf.client.CheckChannel)
	if err != nil {
		if mercury.IsTimeout(err) {
			sf.logger.Errorf("power meter channel time out: %v", err)
		} else {
			sf.logger.Errorf("power meter communication channel test failed: %v", err)
		}
		return err
	}
	sf.block.MS = mercury.MainsOn

	var loop uint64
	for {
		loop++
		result := sf.poll(ctx, loop)
		if loop%uint64(sf.summaryEvery) == 0 {
			if result.Code == mercury.OK {
				sf.logger.Infof("current power consumption: %8.2fW", result.Block.S.Sum)
			} else {
				sf.logger.Infof("one or more errors occurred during data collection")
			}
		}

		select {
		case <-ctx.Done():
			sf.logger.Infof("monitor terminated")
			return nil
		case <-time.After(sf.interval):
		}
	}
}

// poll runs one conversation and reports it to the handler.
func (sf *Monitor) poll(ctx context.Context, loop uint64) (result *Result) {
	var err error

	start := time.Now()
	defer func() {
		if e := recover(); e != nil {
			sf.panicHandle(e)
			if err == nil {
				err = errors.New("mon: panic during poll")
			}
		}
		sf.txCnt++
		if err != nil {
			sf.errCnt++
			sf.logger.Debugf("poll %d: %v", loop, err)
		}
		result = &Result{
			Loop:     loop,
			Time:     start,
			Duration: time.Since(start),
			Code:     mercury.Code(err),
			TxCnt:    sf.txCnt,
			ErrCnt:   sf.errCnt,
			Block:    sf.block,
		}
		sf.handler.ProcResult(err, result)
	}()

	err = sf.client.Exclusive(ctx, func() error {
		return sf.client.Conversation(&sf.block, sf.reads...)
	})
	return
}

// default logger on std log
type stdLogger struct {
	*log.Logger
}

func newStdLogger() *stdLogger {
	return &stdLogger{log.New(os.Stderr, "mercury236-mon => ", log.LstdFlags)}
}

func (sf *stdLogger) Debugf(format string, v ...interface{}) {}

func (sf *stdLogger) Infof(format string, v ...interface{}) {
	sf.Printf("[I]: "+format, v...)
}

func (sf *stdLogger) Errorf(format string, v ...interface{}) {
	sf.Printf("[E]: "+format, v...)
}
