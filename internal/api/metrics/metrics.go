// Package metrics defines and registers all custom Prometheus metrics for the
// admin API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is imported.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/99minutos/admin-api/internal/core/domain"
)

const namespace = "admin"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts token exchanges.
// Labels:
//   - flow: "login", "refresh" or "login_link"
//   - outcome: "success" or the error kind (e.g. "InvalidToken", "Unauthorized")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by flow and outcome.",
	},
	[]string{"flow", "outcome"},
)

// AuthRejectionsTotal counts requests rejected by the authorization middleware.
// Label:
//   - reason: "missing_token", "invalid_token", "unknown_user" or "store_error"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by the authorization middleware.",
	},
	[]string{"reason"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UserMutationsTotal counts user management writes.
// Labels:
//   - op: "create", "update" or "delete"
//   - outcome: "success" or the error kind
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of user create/update/delete operations, by outcome.",
	},
	[]string{"op", "outcome"},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// LoginLinksQueueDepth tracks the number of mails waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var LoginLinksQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "login_links_queue_depth",
		Help:      "Current number of login-link mails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// LoginLinksSentTotal counts delivery attempts.
// Label:
//   - result: "sent", "failed" or "dropped"
var LoginLinksSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_links_sent_total",
		Help:      "Total number of login-link mails handed to the mailer, by result.",
	},
	[]string{"result"},
)

// LoginLinkDeliveryDuration measures how long the mailer takes per message.
var LoginLinkDeliveryDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_link_delivery_duration_seconds",
		Help:      "Duration of a single login-link delivery.",
		Buckets:   prometheus.DefBuckets,
	},
)

// Outcome returns the label value for err: "success" for nil, otherwise the
// error kind when known.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return string(derr.Kind)
	}
	return string(domain.KindInternal)
}
