package vm

import (
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/operation"
	"github.com/rcrowley/go-metrics"
)

type vmMetrics struct {
	registry    metrics.Registry
	total       metrics.Counter
	failed      metrics.Counter
	gasUsed     metrics.Counter
	completed   metrics.Counter
	interrupted metrics.Counter
}

func newVmMetrics(registry metrics.Registry) *vmMetrics {
	if registry == nil {
		registry = metrics.DefaultRegistry
	}
	return &vmMetrics{
		registry:    registry,
		total:       metrics.GetOrRegisterCounter("vm.call.total", registry),
		failed:      metrics.GetOrRegisterCounter("vm.call.failed", registry),
		gasUsed:     metrics.GetOrRegisterCounter("vm.gas.used", registry),
		completed:   metrics.GetOrRegisterCounter("vm.operation.completed", registry),
		interrupted: metrics.GetOrRegisterCounter("vm.operation.interrupted", registry),
	}
}

func (m *vmMetrics) addCall(method string, gasUsed uint64, err error) {
	m.total.Inc(1)
	m.gasUsed.Inc(int64(gasUsed))
	metrics.GetOrRegisterCounter("vm.call."+method, m.registry).Inc(1)
	if err != nil {
		m.failed.Inc(1)
	}
}

func (m *vmMetrics) addOperation(status operation.Status) {
	if status == operation.Completed {
		m.completed.Inc(1)
	} else {
		m.interrupted.Inc(1)
	}
}
