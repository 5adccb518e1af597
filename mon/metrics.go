package mon

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/thinkgos/mercury236"
)

const namespace = "mercury236"

// Phase label values.
const (
	PhaseSum = "sum"
	Phase1   = "1"
	Phase2   = "2"
	Phase3   = "3"
)

// Metrics exports poll results to Prometheus.
type Metrics struct {
	polls           *prometheus.CounterVec
	pollDuration    prometheus.Histogram
	mains           prometheus.Gauge
	voltage         *prometheus.GaugeVec
	current         *prometheus.GaugeVec
	angle           *prometheus.GaugeVec
	cosPhi          *prometheus.GaugeVec
	activePower     *prometheus.GaugeVec
	reactivePower   *prometheus.GaugeVec
	frequency       prometheus.Gauge
	energyReset     prometheus.Gauge
	energyTariff    *prometheus.GaugeVec
	energyToday     prometheus.Gauge
	energyYesterday prometheus.Gauge
}

var _ Handler = (*Metrics)(nil)

// NewMetrics registers the meter metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	phase := []string{"phase"}
	return &Metrics{
		polls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "The total number of meter polls by result code",
		}, []string{"code"}),
		pollDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of a meter poll",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
		}),
		mains: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mains_on",
			Help:      "1 when the meter answered the channel probe",
		}),
		voltage: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "voltage_volts",
			Help:      "Voltage by phases",
		}, phase),
		current: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_amperes",
			Help:      "Current by phases",
		}, phase),
		angle: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_angle_degrees",
			Help:      "Angles between phases",
		}, phase),
		cosPhi: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "power_factor",
			Help:      "Power factor by phases and total",
		}, phase),
		activePower: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_power_watts",
			Help:      "Active power by phases and total",
		}, phase),
		reactivePower: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reactive_power_voltamperes",
			Help:      "Reactive power by phases and total",
		}, phase),
		frequency: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frequency_hertz",
			Help:      "Grid frequency",
		}),
		energyReset: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_active_import_kwh",
			Help:      "Active energy consumed since reset, all tariffs",
		}),
		energyTariff: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_tariff_active_import_kwh",
			Help:      "Active energy consumed since reset by tariff",
		}, []string{"tariff"}),
		energyToday: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_today_active_import_kwh",
			Help:      "Active energy consumed today",
		}),
		energyYesterday: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_yesterday_active_import_kwh",
			Help:      "Active energy consumed yesterday",
		}),
	}
}

// ProcResult implement interface Handler
func (sf *Metrics) ProcResult(_ error, result *Result) {
	sf.polls.WithLabelValues(strconv.Itoa(int(result.Code))).Inc()
	sf.pollDuration.Observe(result.Duration.Seconds())

	b := &result.Block
	if b.MS == mercury.MainsOn {
		sf.mains.Set(1)
	} else {
		sf.mains.Set(0)
	}
	setP3V(sf.voltage, b.U)
	setP3V(sf.current, b.I)
	setP3V(sf.angle, b.A)
	setP3VS(sf.cosPhi, b.C)
	setP3VS(sf.activePower, b.P)
	setP3VS(sf.reactivePower, b.S)
	sf.frequency.Set(b.F)
	sf.energyReset.Set(b.PR.AP)
	for i := range b.PRT {
		sf.energyTariff.WithLabelValues(strconv.Itoa(i + 1)).Set(b.PRT[i].AP)
	}
	sf.energyToday.Set(b.PT.AP)
	sf.energyYesterday.Set(b.PY.AP)
}

func setP3V(g *prometheus.GaugeVec, v mercury.P3V) {
	g.WithLabelValues(Phase1).Set(v.P1)
	g.WithLabelValues(Phase2).Set(v.P2)
	g.WithLabelValues(Phase3).Set(v.P3)
}

func setP3VS(g *prometheus.GaugeVec, v mercury.P3VS) {
	g.WithLabelValues(PhaseSum).Set(v.Sum)
	setP3V(g, mercury.P3V{P1: v.P1, P2: v.P2, P3: v.P3})
}
