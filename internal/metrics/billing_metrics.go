package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// BillingMetrics интерфейс для метрик обработки событий биллинга
type BillingMetrics interface {
	IncWebhookEvent(eventType, outcome string)
	ObserveWebhookDuration(seconds float64)
	IncSetupEmailSent()
	AddPushResults(sent, failed int)
}

type billingMetrics struct {
	log             *logger.Logger
	webhookEvents   *prometheus.CounterVec
	webhookDuration prometheus.Histogram
	setupEmails     prometheus.Counter
	pushMessages    *prometheus.CounterVec
}

// NewBillingMetrics создает новые метрики биллинга
func NewBillingMetrics(registry *prometheus.Registry, log *logger.Logger) BillingMetrics {
	webhookEvents := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "The total number of billing webhook events by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	webhookDuration := promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webhook_processing_seconds",
			Help:    "Billing webhook processing duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	setupEmails := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "setup_emails_sent_total",
			Help: "The total number of password setup emails sent",
		},
	)

	pushMessages := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_messages_total",
			Help: "The total number of push messages by delivery result",
		},
		[]string{"result"},
	)

	return &billingMetrics{
		log:             log,
		webhookEvents:   webhookEvents,
		webhookDuration: webhookDuration,
		setupEmails:     setupEmails,
		pushMessages:    pushMessages,
	}
}

// IncWebhookEvent увеличивает счетчик событий вебхука
func (m *billingMetrics) IncWebhookEvent(eventType, outcome string) {
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// ObserveWebhookDuration записывает длительность обработки вебхука
func (m *billingMetrics) ObserveWebhookDuration(seconds float64) {
	m.webhookDuration.Observe(seconds)
}

// IncSetupEmailSent увеличивает счетчик отправленных писем установки пароля
func (m *billingMetrics) IncSetupEmailSent() {
	m.setupEmails.Inc()
}

// AddPushResults записывает результаты multicast-доставки push
func (m *billingMetrics) AddPushResults(sent, failed int) {
	m.pushMessages.WithLabelValues("sent").Add(float64(sent))
	m.pushMessages.WithLabelValues("failed").Add(float64(failed))
}
