package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
)

const webhookTimeout = 10 * time.Second

// Order update types sent to the live feed and the order webhook
const (
	UpdateOrderCreated   = "order_created"
	UpdateStatusChanged  = "status_changed"
	UpdatePaymentChanged = "payment_changed"
)

// OrderUpdate is the payload shared by the live feed and the order webhook
type OrderUpdate struct {
	Type          string               `json:"type"`
	OrderID       string               `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	Status        domain.OrderStatus   `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	Total         string               `json:"total"`
	CustomerName  string               `json:"customer_name,omitempty"`
	At            time.Time            `json:"at"`
}

func newOrderUpdate(updateType string, o *domain.Order) OrderUpdate {
	return OrderUpdate{
		Type:          updateType,
		OrderID:       o.ID.String(),
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total.StringFixed(2),
		CustomerName:  o.CustomerName,
		At:            time.Now().UTC(),
	}
}

// Notifier fans order updates out to the admin live feed and the optional
// order webhook. A nil Notifier drops everything.
type Notifier struct {
	feed       *LiveFeed
	webhookURL string
	logger     *zap.Logger
	send       func(url string, payload interface{}, logger *zap.Logger)
}

func NewNotifier(feed *LiveFeed, webhookURL string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{feed: feed, webhookURL: webhookURL, logger: logger, send: NotifyWebhook}
}

// OrderChanged publishes the update without blocking the caller
func (n *Notifier) OrderChanged(updateType string, o *domain.Order) {
	if n == nil || o == nil {
		return
	}
	update := newOrderUpdate(updateType, o)
	if n.feed != nil {
		n.feed.Publish(update)
	}
	if n.webhookURL != "" {
		go n.send(n.webhookURL, update, n.logger)
	}
}

// NotifyWebhook posts payload as JSON to webhookURL.
// It is intended to be called in a goroutine so the API response is not blocked.
func NotifyWebhook(webhookURL string, payload interface{}, logger *zap.Logger) {
	if webhookURL == "" {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("Webhook: failed to marshal payload", zap.Error(err))
		return
	}
	client := &http.Client{Timeout: webhookTimeout}
	req, err := http.NewRequest(http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		logger.Warn("Webhook: failed to create request", zap.String("url", webhookURL), zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("Webhook: order notification request failed", zap.String("url", webhookURL), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("Webhook: order notification returned non-2xx",
			zap.String("url", webhookURL), zap.Int("status", resp.StatusCode))
		return
	}
	logger.Info("Webhook: order notification sent", zap.String("url", webhookURL), zap.Int("status", resp.StatusCode))
}
