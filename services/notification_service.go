package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"

	"github.com/tadweer/tadweer-site/config"
	"github.com/tadweer/tadweer-site/logger"
	"github.com/tadweer/tadweer-site/types"
)

// Notifier is told about every stored suggestion.
type Notifier interface {
	NotifyNewSuggestion(ctx context.Context, s types.Suggestion) error
}

// emailSender is the part of the Resend client the notifier uses.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type NotificationMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

// EmailNotifier emails the site owner through Resend when a suggestion arrives.
type EmailNotifier struct {
	config  *config.NotifyConfig
	sender  emailSender
	tmpl    *template.Template
	metrics *NotificationMetrics
}

func NewEmailNotifier(cfg *config.NotifyConfig, reg prometheus.Registerer) *EmailNotifier {
	logger.GetLogger().Infow("Initializing suggestion notifier",
		"from", cfg.FromAddress,
		"to", logger.MaskEmail(cfg.ToAddress),
		"apikey", logger.MaskSensitiveString(cfg.ResendAPIKey, 3, 0))
	client := resend.NewClient(cfg.ResendAPIKey)

	return newEmailNotifier(cfg, client.Emails, reg)
}

func newEmailNotifier(cfg *config.NotifyConfig, sender emailSender, reg prometheus.Registerer) *EmailNotifier {
	metrics := &NotificationMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tadweer_notification_send_duration_seconds",
			Help:    "Time taken to send suggestion notifications",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tadweer_notification_errors_total",
			Help: "Total number of suggestion notification errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tadweer_notifications_sent_total",
			Help: "Total number of suggestion notifications sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	return &EmailNotifier{
		config:  cfg,
		sender:  sender,
		tmpl:    template.Must(template.New("suggestion").Parse(newSuggestionEmailTemplate)),
		metrics: metrics,
	}
}

func (n *EmailNotifier) NotifyNewSuggestion(ctx context.Context, s types.Suggestion) error {
	startTime := time.Now()
	log := logger.GetLogger()
	defer func() {
		n.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	var htmlContent bytes.Buffer
	if err := n.tmpl.Execute(&htmlContent, s); err != nil {
		n.metrics.errorCount.Inc()
		log.Errorw("Failed to execute notification template", "error", err)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", n.config.FromName, n.config.FromAddress),
		To:      []string{n.config.ToAddress},
		Subject: fmt.Sprintf("New suggestion %s (%s)", s.TrackingID, s.Category),
		Html:    htmlContent.String(),
	}
	if s.Email != "" {
		params.ReplyTo = s.Email
	}

	if _, err := n.sender.SendWithContext(ctx, params); err != nil {
		n.metrics.errorCount.Inc()
		log.Errorw("Failed to send suggestion notification",
			"error", err,
			"trackingID", s.TrackingID)
		return fmt.Errorf("notification send failed: %w", err)
	}

	n.metrics.sentCount.Inc()
	log.Infow("Suggestion notification sent", "trackingID", s.TrackingID)
	return nil
}

const newSuggestionEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New suggestion {{.TrackingID}}</title>
</head>
<body style="font-family: sans-serif; color: #333333;">
    <h2>New suggestion {{.TrackingID}}</h2>
    <p><strong>Category:</strong> {{.Category}}</p>
    <p><strong>From:</strong> {{.Name}}{{if .Email}} &lt;{{.Email}}&gt;{{end}}</p>
    {{if .PageURL}}<p><strong>Page:</strong> {{.PageURL}}</p>{{end}}
    <p style="white-space: pre-wrap;">{{.Suggestion}}</p>
</body>
</html>`
