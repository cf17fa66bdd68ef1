package metrics

import "github.com/prometheus/client_golang/prometheus"

// AppointmentMetrics exposes counters/histograms for the booking flows.
type AppointmentMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	transitionsTotal   *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	roomProvisionTotal *prometheus.CounterVec
	provisionLatency   prometheus.Histogram
}

func NewAppointmentMetrics(reg prometheus.Registerer) *AppointmentMetrics {
	m := &AppointmentMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medibot",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Total appointments booked",
		}, []string{"status"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medibot",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Total appointment status transitions",
		}, []string{"from", "to"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medibot",
			Subsystem: "appointments",
			Name:      "notifications_total",
			Help:      "Total appointment notifications dispatched",
		}, []string{"kind"}),
		roomProvisionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medibot",
			Subsystem: "video",
			Name:      "room_provision_total",
			Help:      "Total video room provisioning attempts",
		}, []string{"outcome"}),
		provisionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "medibot",
			Subsystem: "video",
			Name:      "room_provision_latency_seconds",
			Help:      "Latency of video room provisioning",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.transitionsTotal, m.notificationsTotal, m.roomProvisionTotal, m.provisionLatency)
	return m
}

func (m *AppointmentMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *AppointmentMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *AppointmentMetrics) ObserveNotification(kind string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(kind).Inc()
}

func (m *AppointmentMetrics) ObserveRoomProvision(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.roomProvisionTotal.WithLabelValues(outcome).Inc()
	m.provisionLatency.Observe(seconds)
}
