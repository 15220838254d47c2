// Package notify delivers best-effort vault confirmation emails. Delivery
// runs on its own worker; a failed or dropped message can never influence
// the submission that was already committed.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type ItemSummary struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Image string `json:"image,omitempty"`
}

type VaultConfirmation struct {
	Recipient   string
	UserName    string
	Items       []ItemSummary
	ReferenceID string
}

type Sender interface {
	SendVaultConfirmation(ctx context.Context, msg VaultConfirmation) error
}

// ResendSender posts template emails to the Resend HTTP API.
type ResendSender struct {
	apiKey     string
	templateID string
	from       string
	baseURL    string
	client     *http.Client
}

func NewResendSender(apiKey, templateID, from string) *ResendSender {
	return &ResendSender{
		apiKey:     apiKey,
		templateID: templateID,
		from:       from,
		baseURL:    "https://api.resend.com",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *ResendSender) SendVaultConfirmation(ctx context.Context, msg VaultConfirmation) error {
	if s.apiKey == "" || s.templateID == "" || s.from == "" {
		return fmt.Errorf("resend sender not configured")
	}
	payload, err := json.Marshal(map[string]any{
		"from": s.from,
		"to":   []string{msg.Recipient},
		"template": map[string]any{
			"id": s.templateID,
			"variables": map[string]string{
				"User_Name":         msg.UserName,
				"Collectibles_List": FormatItemsHTML(msg.Items),
				"Vault_ID":          msg.ReferenceID,
			},
		},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// FormatItemsHTML renders the submitted items as the list fragment the email
// template embeds.
func FormatItemsHTML(items []ItemSummary) string {
	if len(items) == 0 {
		return "<p>No items listed.</p>"
	}
	var b strings.Builder
	b.WriteString("<ul style='list-style: none; padding: 0;'>")
	for _, item := range items {
		b.WriteString("<li style='margin-bottom: 12px; padding: 8px; border-left: 3px solid #ccc;'>")
		b.WriteString("<strong>" + html.EscapeString(item.Name) + "</strong><br>")
		b.WriteString("<span style='color: #666; font-size: 0.9em;'>Estimated Value: $" + html.EscapeString(item.Value) + "</span>")
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// Dispatcher decouples senders from request handling. Enqueue is
// non-blocking: when the buffer is full the message is dropped and logged.
type Dispatcher struct {
	sender Sender
	queue  chan VaultConfirmation
	done   chan struct{}
	log    *zap.Logger
}

func NewDispatcher(sender Sender, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		queue:  make(chan VaultConfirmation, 64),
		done:   make(chan struct{}),
		log:    log,
	}
	go d.run()
	return d
}

func (d *Dispatcher) Enqueue(msg VaultConfirmation) {
	select {
	case d.queue <- msg:
	default:
		d.log.Warn("notification queue full, dropping message",
			zap.String("recipient", msg.Recipient),
			zap.String("reference_id", msg.ReferenceID))
	}
}

func (d *Dispatcher) run() {
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := d.sender.SendVaultConfirmation(ctx, msg); err != nil {
			d.log.Error("vault confirmation send failed",
				zap.String("recipient", msg.Recipient),
				zap.String("reference_id", msg.ReferenceID),
				zap.Error(err))
		} else {
			d.log.Info("vault confirmation sent",
				zap.String("recipient", msg.Recipient),
				zap.String("reference_id", msg.ReferenceID))
		}
		cancel()
	}
	close(d.done)
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}
