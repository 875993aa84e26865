package xmetrics

import "github.com/prometheus/client_golang/prometheus"

const (
	DefaultNamespace = "global"
	DefaultSubsystem = "development"
)

// Options is the configurable options for creating a Prometheus registry
type Options struct {
	// Namespace is the global default namespace for metrics which don't define a namespace (or for ad hoc metrics).
	// If not supplied, DefaultNamespace is used.
	Namespace string

	// Subsystem is the global default subsystem for metrics which don't define a subsystem (or for ad hoc metrics).
	// If not supplied, DefaultSubsystem is used.
	Subsystem string

	// Pedantic indicates whether the registry is created via NewPedanticRegistry().  By default, this is false.  Set
	// to true for testing or development.
	Pedantic bool

	// Metrics defines predefined metrics.  These metrics will be defined immediately by a Registry
	// created using this Options instance.  This field is optional.
	Metrics []Metric
}

func (o *Options) namespace() string {
	if o != nil && len(o.Namespace) > 0 {
		return o.Namespace
	}

	return DefaultNamespace
}

func (o *Options) subsystem() string {
	if o != nil && len(o.Subsystem) > 0 {
		return o.Subsystem
	}

	return DefaultSubsystem
}

func (o *Options) pedantic() bool {
	if o != nil {
		return o.Pedantic
	}

	return false
}

func (o *Options) metrics() []Metric {
	if o != nil {
		return o.Metrics
	}

	return nil
}

// registry returns the underlying Prometheus registry to use, honoring
// Pedantic for tests that want strict collector validation.
func (o *Options) registry() *prometheus.Registry {
	if o.pedantic() {
		return prometheus.NewPedanticRegistry()
	}

	return prometheus.NewRegistry()
}
