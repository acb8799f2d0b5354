package async

import "github.com/ygrebnov/async/metrics"

// taskConfig holds the per-task settings an Option can adjust before Run
// spawns the procedure's frame goroutine. The functional-options shape
// mirrors the teacher library's own options.go/defaults.go.
type taskConfig struct {
	propagate bool
	label     string
	provider  metrics.Provider
}

func defaultTaskConfig() taskConfig {
	return taskConfig{
		propagate: true,
		provider:  metrics.NewNoopProvider(),
	}
}

// Option customizes a task at Run/RunWithProgress time.
type Option func(*taskConfig)

// WithPropagation sets the task's initial cancellation-propagation setting.
// It defaults to enabled; a procedure may still flip it later via
// Frame.EnablePropagation.
func WithPropagation(enabled bool) Option {
	return func(c *taskConfig) { c.propagate = enabled }
}

// WithLabel attaches a diagnostic label to the task, included in metrics
// emitted for it.
func WithLabel(label string) Option {
	return func(c *taskConfig) { c.label = label }
}

// WithMetrics sets the metrics.Provider instrumenting the task's lifecycle.
// Defaults to metrics.NewNoopProvider().
func WithMetrics(p metrics.Provider) Option {
	return func(c *taskConfig) {
		if p != nil {
			c.provider = p
		}
	}
}

func resolveOptions(opts []Option) taskConfig {
	cfg := defaultTaskConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
