package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors the service exposes beyond the
// per-request HTTP instrumentation.
type Metrics struct {
	RegistrationsTotal  prometheus.Counter
	VerificationsTotal  *prometheus.CounterVec
	LoginsTotal         *prometheus.CounterVec
	PasswordResetsTotal prometheus.Counter
}

// NewMetrics constructs and registers the domain-level collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	registrations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "registrations_total",
		Help:      "Total number of successful account registrations.",
	})

	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "verifications_total",
		Help:      "Total number of successful contact verifications partitioned by channel.",
	}, []string{"channel"})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "logins_total",
		Help:      "Total number of login attempts partitioned by outcome.",
	}, []string{"outcome"})

	resets := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "password_resets_total",
		Help:      "Total number of completed password resets.",
	})

	if err := reg.Register(registrations); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				registrations = existing
			} else {
				return nil, fmt.Errorf("existing registrations collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register registrations collector: %w", err)
		}
	}

	if err := reg.Register(verifications); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				verifications = existing
			} else {
				return nil, fmt.Errorf("existing verifications collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register verifications collector: %w", err)
		}
	}

	if err := reg.Register(logins); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				logins = existing
			} else {
				return nil, fmt.Errorf("existing logins collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register logins collector: %w", err)
		}
	}

	if err := reg.Register(resets); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				resets = existing
			} else {
				return nil, fmt.Errorf("existing resets collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register resets collector: %w", err)
		}
	}

	return &Metrics{
		RegistrationsTotal:  registrations,
		VerificationsTotal:  verifications,
		LoginsTotal:         logins,
		PasswordResetsTotal: resets,
	}, nil
}
