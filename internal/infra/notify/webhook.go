package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront-service/internal/domain"

	"github.com/shopspring/decimal"
)

const defaultSubject = "New Order Received"

// Payload is the form-post body accepted by Formspree style endpoints.
type Payload struct {
	Subject string `json:"_subject"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

// WebhookNotifier emails order summaries by posting to a form webhook.
type WebhookNotifier struct {
	url        string
	currency   string
	httpClient *http.Client
}

func NewWebhookNotifier(url, currency string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		currency:   currency,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Publish sends order.placed events and ignores every other routing key.
func (n *WebhookNotifier) Publish(ctx context.Context, routingKey string, data any) error {
	if routingKey != domain.EventOrderPlaced {
		return nil
	}
	evt, ok := data.(domain.OrderPlacedEvent)
	if !ok {
		return fmt.Errorf("notify: unexpected payload %T for %s", data, routingKey)
	}

	body, err := json.Marshal(Payload{
		Subject: defaultSubject,
		Email:   evt.Customer.Email,
		Message: FormatOrderMessage(evt, n.currency),
	})
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned status %d", resp.StatusCode)
	}
	slog.DebugContext(ctx, "order notification sent", slog.String("order_id", evt.OrderID))
	return nil
}

// FormatOrderMessage renders the plain-text order summary.
func FormatOrderMessage(evt domain.OrderPlacedEvent, currency string) string {
	var b strings.Builder
	b.WriteString("New Order Received\n\n")
	fmt.Fprintf(&b, "Order ID: %s\n", evt.OrderID)
	fmt.Fprintf(&b, "Customer Name: %s\n", evt.Customer.Name)
	fmt.Fprintf(&b, "Email: %s\n", evt.Customer.Email)
	fmt.Fprintf(&b, "Phone: %s\n", evt.Customer.Phone)
	fmt.Fprintf(&b, "Address: %s\n\n", evt.Customer.Address)
	b.WriteString("-----------------------------\nItems Ordered:\n")
	for i, it := range evt.Items {
		fmt.Fprintf(&b, "%d. %s — %s%s × %d = %s%s\n",
			i+1, it.ProductName,
			currency, FormatAmount(it.UnitPriceAtOrder),
			it.Quantity,
			currency, FormatAmount(it.Subtotal()))
	}
	b.WriteString("-----------------------------\n")
	fmt.Fprintf(&b, "Total: %s%s\n", currency, FormatAmount(evt.Total))
	return b.String()
}

// FormatAmount groups thousands and keeps two decimals only for fractional amounts.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.Equal(d.Truncate(0)) {
		s = d.StringFixed(0)
	}
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")

	var g strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			g.WriteByte(',')
		}
		g.WriteRune(r)
	}
	if hasFrac {
		return sign + g.String() + "." + frac
	}
	return sign + g.String()
}
