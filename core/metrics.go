package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	loginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activities_api",
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Login attempts partitioned by result.",
	}, []string{"result"})
	tokenRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activities_api",
		Subsystem: "auth",
		Name:      "token_rejections_total",
		Help:      "Bearer tokens rejected as missing, invalid, expired or unresolvable.",
	})
	rosterChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activities_api",
		Subsystem: "roster",
		Name:      "changes_total",
		Help:      "Signup and unregister requests partitioned by action and outcome.",
	}, []string{"action", "outcome"})
)

func init() {
	prometheus.MustRegister(loginAttempts, tokenRejections, rosterChanges)
}

func recordLogin(ok bool) {
	if ok {
		loginAttempts.WithLabelValues("success").Inc()
		return
	}
	loginAttempts.WithLabelValues("failure").Inc()
}

func recordRosterChange(action string, err error) {
	rosterChanges.WithLabelValues(action, rosterOutcome(err)).Inc()
}

func rosterOutcome(err error) string {
	switch err {
	case nil:
		return "ok"
	case ErrActivityNotFound:
		return "not_found"
	case ErrAlreadyEnrolled:
		return "already_enrolled"
	case ErrNotEnrolled:
		return "not_enrolled"
	case ErrActivityFull:
		return "full"
	default:
		return "error"
	}
}
