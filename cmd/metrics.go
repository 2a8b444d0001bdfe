package cmd

import (
	"github.com/etnz/rentroll"
	"github.com/prometheus/client_golang/prometheus"
)

// runMetrics are the gauges of one command run. They live in a private registry and are
// written once, at the end of the run, for the node exporter textfile collector.
type runMetrics struct {
	registry *prometheus.Registry

	monthlyRent  prometheus.Gauge
	leasedArea   prometheus.Gauge
	rentableArea prometheus.Gauge
	occupancy    prometheus.Gauge
	walt         prometheus.Gauge
	leases       prometheus.Gauge
	excluded     *prometheus.GaugeVec
	rejected     prometheus.Gauge
	quality      *prometheus.GaugeVec
	accuracy     prometheus.Gauge
	status       *prometheus.GaugeVec
}

func newRunMetrics(command string) *runMetrics {
	labels := prometheus.Labels{"command": command}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rentroll", Name: name, Help: help, ConstLabels: labels,
		})
	}
	vec := func(name, help, label string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rentroll", Name: name, Help: help, ConstLabels: labels,
		}, []string{label})
	}
	m := &runMetrics{
		registry:     prometheus.NewRegistry(),
		monthlyRent:  gauge("monthly_rent", "Total monthly rent of the snapshot."),
		leasedArea:   gauge("leased_area", "Total leased area of the snapshot."),
		rentableArea: gauge("rentable_area", "Rentable area of the held properties."),
		occupancy:    gauge("occupancy_percent", "Leased area over rentable area, 0-100."),
		walt:         gauge("walt_years", "Weighted average lease term, in years."),
		leases:       gauge("leases", "Leases with an authoritative amendment."),
		excluded:     vec("excluded_leases", "Lease keys without an authoritative amendment.", "reason"),
		rejected:     gauge("rejected_records", "Input records rejected while reading."),
		quality:      vec("quality_percent", "Data quality rates, 0-100.", "rate"),
		accuracy:     gauge("validation_accuracy_percent", "Rent accuracy against the reference, 0-100."),
		status:       vec("validation_status", "1 for the status of the last validation.", "status"),
	}
	m.registry.MustRegister(m.monthlyRent, m.leasedArea, m.rentableArea, m.occupancy, m.walt,
		m.leases, m.excluded, m.rejected, m.quality, m.accuracy, m.status)
	return m
}

func (m *runMetrics) observeBook(b *rentroll.Book) {
	m.rejected.Set(float64(len(b.Rejections())))
}

func (m *runMetrics) observeSnapshot(s *rentroll.RentRollSnapshot) {
	p := s.Portfolio
	m.monthlyRent.Set(p.MonthlyRent.Float())
	m.leasedArea.Set(p.LeasedArea.Float())
	m.rentableArea.Set(p.RentableArea.Float())
	m.occupancy.Set(float64(p.Occupancy))
	m.walt.Set(p.WALT.InexactFloat64())
	m.leases.Set(float64(p.Leases))
	for reason, n := range p.Excluded {
		m.excluded.WithLabelValues(string(reason)).Set(float64(n))
	}
}

func (m *runMetrics) observeQuality(r rentroll.QualityReport) {
	m.quality.WithLabelValues("composite").Set(float64(r.CompositeScore))
	m.quality.WithLabelValues("charge_coverage").Set(float64(r.ChargeCoverage))
	m.quality.WithLabelValues("rule_compliance").Set(float64(r.RuleCompliance))
	m.quality.WithLabelValues("active_distribution").Set(float64(r.ActiveDistribution))
}

func (m *runMetrics) observeValidation(v rentroll.ValidationResult) {
	if v.AccuracyScore != nil {
		m.accuracy.Set(float64(*v.AccuracyScore))
	}
	for _, s := range []rentroll.ValidationStatus{rentroll.Pass, rentroll.Warn, rentroll.Fail, rentroll.ScopeMismatch} {
		value := 0.0
		if s == v.Status {
			value = 1
		}
		m.status.WithLabelValues(string(s)).Set(value)
	}
}

// write saves the metrics when -metrics-file is set.
func (m *runMetrics) write() error {
	if *metricsFile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(*metricsFile, m.registry)
}
