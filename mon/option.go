package mon

import (
	"time"

	"github.com/thinkgos/mercury236"
)

// Option 可选项
type Option func(m *Monitor)

// WithHandler set the handler of poll results.
func WithHandler(h Handler) Option {
	return func(m *Monitor) {
		if h != nil {
			m.handler = h
		}
	}
}

// WithInterval set the time between two polls.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithSummaryEvery set the number of polls between two summary log lines.
func WithSummaryEvery(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.summaryEvery = n
		}
	}
}

// WithReads set the reads of every poll, default DefaultReads.
func WithReads(reads ...mercury.Reader) Option {
	return func(m *Monitor) {
		if len(reads) > 0 {
			m.reads = reads
		}
	}
}

// WithPanicHandler 发生panic回调,主要用于调试
func WithPanicHandler(f func(interface{})) Option {
	return func(m *Monitor) {
		if f != nil {
			m.panicHandle = f
		}
	}
}

// WithLogger set the logger.
func WithLogger(l Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}
