package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// LLMCallEvent records metadata about a single LLM invocation.
type LLMCallEvent struct {
	Task      TaskType
	Provider  Provider
	Model     string
	LatencyMs int64
	Success   bool
	ErrorCode string
	Usage     *Usage
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes LLM call events to a zap logger.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger.Named("llm")}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	fields := []zap.Field{
		zap.String("task", string(event.Task)),
		zap.String("provider", string(event.Provider)),
		zap.String("model", event.Model),
		zap.Int64("latency_ms", event.LatencyMs),
	}
	if event.Usage != nil {
		fields = append(fields,
			zap.Int("prompt_tokens", event.Usage.PromptTokens),
			zap.Int("completion_tokens", event.Usage.CompletionTokens),
		)
	}
	if !event.Success {
		o.logger.Warn("llm_call", append(fields, zap.String("error_code", event.ErrorCode))...)
		return
	}
	o.logger.Info("llm_call", fields...)
}

// MetricsObserver exports call counts, latency and token usage to Prometheus.
type MetricsObserver struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
	tokens  *prometheus.CounterVec
}

// NewMetricsObserver registers the LLM collectors with reg.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	f := promauto.With(reg)
	return &MetricsObserver{
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "homily_llm_requests_total",
			Help: "Total number of LLM generation calls.",
		}, []string{"provider", "task", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "homily_llm_request_duration_seconds",
			Help:    "Latency of LLM generation calls.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"provider", "task"}),
		tokens: f.NewCounterVec(prometheus.CounterOpts{
			Name: "homily_llm_tokens_total",
			Help: "Tokens reported by the provider.",
		}, []string{"provider", "type"}),
	}
}

func (o *MetricsObserver) OnCallComplete(event LLMCallEvent) {
	status := "ok"
	if !event.Success {
		status = event.ErrorCode
	}
	o.calls.WithLabelValues(string(event.Provider), string(event.Task), status).Inc()
	o.latency.WithLabelValues(string(event.Provider), string(event.Task)).Observe(float64(event.LatencyMs) / 1000)
	if event.Usage != nil {
		o.tokens.WithLabelValues(string(event.Provider), "prompt").Add(float64(event.Usage.PromptTokens))
		o.tokens.WithLabelValues(string(event.Provider), "completion").Add(float64(event.Usage.CompletionTokens))
	}
}

// MultiObserver fans an event out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event LLMCallEvent) {
	for _, o := range m {
		o.OnCallComplete(event)
	}
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}
