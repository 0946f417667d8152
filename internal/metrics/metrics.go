// Package metrics регистрирует счётчики Prometheus для ключевых событий
// аутентификации и отзывов. Экспортируются через /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginFailures — количество неудачных попыток входа.
	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tourbooking_login_failures_total",
		Help: "Total number of failed login attempts.",
	})

	// LoginLockouts — количество сработавших блокировок входа.
	LoginLockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tourbooking_login_lockouts_total",
		Help: "Total number of accounts locked after repeated login failures.",
	})

	// ReviewsWritten — количество созданных отзывов.
	ReviewsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tourbooking_reviews_written_total",
		Help: "Total number of reviews created.",
	})

	// EmailsPublished — количество писем, отправленных в очередь.
	EmailsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourbooking_emails_published_total",
		Help: "Total number of emails published to the outgoing queue.",
	}, []string{"template"})
)
