package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"code.meridianbank.io/meridian-go/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Gauge instrument = iota
	Counter
	Histogram
)

const namespace = "meridian"

var (
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	apiRequestCounter *prometheus.CounterVec
	apiRequestTime    *prometheus.HistogramVec
	handshakeCounter  *prometheus.CounterVec
	renewalCounter    *prometheus.CounterVec
	activeSession     prometheus.Gauge
)

// abstract prometheus types
type instrument int

// combine all possible prometheus options + way to differentiate between regular or vector type
type instrumentOpts struct {
	opts    prometheus.Opts
	buckets []float64
	vectors []string
}

type mi struct {
	gaugeV     *prometheus.GaugeVec
	gauge      prometheus.Gauge
	counterV   *prometheus.CounterVec
	counter    prometheus.Counter
	histogramV *prometheus.HistogramVec
	histogram  prometheus.Histogram
}

// InstrumentOption - vararg for instrument options setting
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface, slice of label names
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

// Help - set the help field on instrument
func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

// Namespace - set namespace
func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

// Labels - set constant labels for instrument
func Labels(labels map[string]string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.ConstLabels = prometheus.Labels(labels)
	}
}

// Buckets - specific to histogram type
func Buckets(b []float64) InstrumentOption {
	return func(o *instrumentOpts) {
		o.buckets = b
	}
}

// AddInstrument configures and registers a new metrics instrument.
func AddInstrument(t instrument, name string, opts ...InstrumentOption) (*mi, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := opt.gauge()
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := opt.counter()
		if len(opt.vectors) == 0 {
			ret.counter = prometheus.NewCounter(o)
			col = ret.counter
		} else {
			ret.counterV = prometheus.NewCounterVec(o, opt.vectors)
			col = ret.counterV
		}
	case Histogram:
		o := opt.histogram()
		if len(opt.vectors) == 0 {
			ret.histogram = prometheus.NewHistogram(o)
			col = ret.histogram
		} else {
			ret.histogramV = prometheus.NewHistogramVec(o, opt.vectors)
			col = ret.histogramV
		}
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := prometheus.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Start registers the library instruments and exposes them over HTTP when the
// configuration enables them.
func Start(log *logging.Logger, conf Config) error {
	if !conf.Enabled {
		return nil
	}

	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())

	if err := setupMetrics(); err != nil {
		return fmt.Errorf("couldn't set up the metrics instruments: %w", err)
	}

	http.Handle(conf.Path, promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", conf.Port), nil); err != nil {
			log.Error("the metrics server stopped", logging.Error(err))
		}
	}()

	log.Info("serving metrics",
		logging.Int("port", conf.Port),
		logging.String("path", conf.Path),
	)
	return nil
}

func (i instrumentOpts) gauge() prometheus.GaugeOpts {
	return prometheus.GaugeOpts(i.opts)
}

func (i instrumentOpts) counter() prometheus.CounterOpts {
	return prometheus.CounterOpts(i.opts)
}

func (i instrumentOpts) histogram() prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Name:        i.opts.Name,
		Namespace:   i.opts.Namespace,
		Subsystem:   i.opts.Subsystem,
		ConstLabels: i.opts.ConstLabels,
		Help:        i.opts.Help,
		Buckets:     i.buckets,
	}
}

func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

func (m mi) GaugeVec() (*prometheus.GaugeVec, error) {
	if m.gaugeV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gaugeV, nil
}

func (m mi) Counter() (prometheus.Counter, error) {
	if m.counter == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counter, nil
}

func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func (m mi) Histogram() (prometheus.Histogram, error) {
	if m.histogram == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogram, nil
}

func (m mi) HistogramVec() (*prometheus.HistogramVec, error) {
	if m.histogramV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogramV, nil
}

func setupMetrics() error {
	h, err := AddInstrument(
		Counter,
		"api_request_total",
		Namespace(namespace),
		Vectors("endpoint", "outcome"),
		Help("Number of requests sent to the platform"),
	)
	if err != nil {
		return err
	}
	rc, err := h.CounterVec()
	if err != nil {
		return err
	}
	apiRequestCounter = rc

	h, err = AddInstrument(
		Histogram,
		"api_request_duration_seconds",
		Namespace(namespace),
		Vectors("endpoint"),
		Help("Time spent on requests to the platform"),
	)
	if err != nil {
		return err
	}
	rt, err := h.HistogramVec()
	if err != nil {
		return err
	}
	apiRequestTime = rt

	h, err = AddInstrument(
		Counter,
		"handshake_step_total",
		Namespace(namespace),
		Vectors("step", "outcome"),
		Help("Number of handshake steps run"),
	)
	if err != nil {
		return err
	}
	hc, err := h.CounterVec()
	if err != nil {
		return err
	}
	handshakeCounter = hc

	h, err = AddInstrument(
		Counter,
		"session_renewal_total",
		Namespace(namespace),
		Vectors("outcome"),
		Help("Number of background session renewals"),
	)
	if err != nil {
		return err
	}
	rwc, err := h.CounterVec()
	if err != nil {
		return err
	}
	renewalCounter = rwc

	h, err = AddInstrument(
		Gauge,
		"session_active",
		Namespace(namespace),
		Help("Whether a session is currently held"),
	)
	if err != nil {
		return err
	}
	g, err := h.Gauge()
	if err != nil {
		return err
	}
	activeSession = g

	return nil
}

// APIRequestInc counts one request to the platform and its outcome.
func APIRequestInc(endpoint, outcome string) {
	if apiRequestCounter == nil {
		return
	}
	apiRequestCounter.WithLabelValues(endpoint, outcome).Inc()
}

// HandshakeStepInc counts one run of a handshake step.
func HandshakeStepInc(step, outcome string) {
	if handshakeCounter == nil {
		return
	}
	handshakeCounter.WithLabelValues(step, outcome).Inc()
}

// SessionRenewalInc counts one background renewal attempt.
func SessionRenewalInc(outcome string) {
	if renewalCounter == nil {
		return
	}
	renewalCounter.WithLabelValues(outcome).Inc()
}

// ActiveSessionSet flags whether a session is currently held.
func ActiveSessionSet(active bool) {
	if activeSession == nil {
		return
	}
	if active {
		activeSession.Set(1)
		return
	}
	activeSession.Set(0)
}
