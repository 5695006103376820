// Package metrics holds Prometheus instruments that are used across the
// platform.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RegistrationAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registration_attempts_total",
			Help: "Cumulative number of account-creation submissions received.",
		})

	RegistrationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_failures_total",
			Help: "Cumulative number of validation failures, labelled by field.",
		},
		[]string{"field"},
	)

	RegistrationCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registration_created_total",
			Help: "Cumulative number of accounts successfully created.",
		})

	ProvisionErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "discussion_provision_errors_total",
			Help: "Cumulative number of failed discussion-service provisioning calls.",
		})

	ActiveSites = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sites",
			Help: "Number of sites currently loaded in memory.",
		})

	SiteLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_load_total",
			Help: "Cumulative number of sites successfully loaded.",
		})

	SiteLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_load_errors_total",
			Help: "Cumulative number of site load errors.",
		})

	SiteEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_evict_total",
			Help: "Cumulative number of sites evicted from the cache.",
		})

	FooterCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "footer_cache_hits_total",
			Help: "Cumulative number of footer responses served from the LRU cache.",
		})
)

func init() {
	prometheus.MustRegister(
		RegistrationAttemptsTotal,
		RegistrationFailuresTotal,
		RegistrationCreatedTotal,
		ProvisionErrorsTotal,
		ActiveSites,
		SiteLoadTotal,
		SiteLoadErrorsTotal,
		SiteEvictTotal,
		FooterCacheHitsTotal,
	)
}
