// Package notification renders and dispatches patient-facing notifications.
// Delivery transport (SMS gateway, mail relay) is pluggable; the built-in
// senders record messages so the rest of the system can treat dispatch as
// fire-and-forget.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Channel is the delivery channel for a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Notification is a single outbound message.
type Notification struct {
	ID         string            `json:"id"`
	Channel    Channel           `json:"channel"`
	Recipient  string            `json:"recipient"`
	Subject    string            `json:"subject,omitempty"`
	Body       string            `json:"body"`
	TemplateID string            `json:"template_id,omitempty"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	SentAt     *time.Time        `json:"sent_at,omitempty"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// EmailSender sends email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender sends SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Template is a reusable notification template with {{key}} placeholders.
type Template struct {
	ID      string
	Subject string
	Body    string
	Channel Channel
}

// TemplateEngine stores templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in clinic
// templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	for _, t := range []Template{
		{
			ID:      "appointment-confirmed",
			Subject: "Your appointment is confirmed",
			Body:    "Dear {{patient_name}}, your {{appointment_type}} appointment on {{date}} at {{time}} has been confirmed. Your reference is {{appointment_id}}.",
			Channel: ChannelSMS,
		},
		{
			ID:      "appointment-rejected",
			Subject: "Update on your appointment request",
			Body:    "Dear {{patient_name}}, unfortunately your appointment request for {{date}} could not be accommodated. {{reason}}",
			Channel: ChannelSMS,
		},
		{
			ID:      "booking-received",
			Subject: "We received your booking request",
			Body:    "Dear {{patient_name}}, we received your booking request for {{date}}. We will notify you once it is reviewed.",
			Channel: ChannelSMS,
		},
	} {
		tpl := t
		e.templates[t.ID] = &tpl
	}
	return e
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template and performs {{key}} replacement with data.
// Placeholders absent from data are left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// Channel returns the delivery channel a template is registered for.
func (e *TemplateEngine) Channel(templateID string) Channel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if t, ok := e.templates[templateID]; ok {
		return t.Channel
	}
	return ChannelSMS
}

// Manager renders templates and hands the result to the configured senders,
// keeping an in-memory record of every notification.
type Manager struct {
	email     EmailSender
	sms       SMSSender
	templates *TemplateEngine

	mu   sync.RWMutex
	sent map[string]*Notification
}

func NewManager(email EmailSender, sms SMSSender, templates *TemplateEngine) *Manager {
	return &Manager{
		email:     email,
		sms:       sms,
		templates: templates,
		sent:      make(map[string]*Notification),
	}
}

// Send renders templateID with data and delivers it to recipient over the
// template's channel. The notification record is kept regardless of the
// delivery outcome.
func (m *Manager) Send(ctx context.Context, templateID, recipient string, data, metadata map[string]string) (*Notification, error) {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return nil, err
	}

	n := &Notification{
		ID:         uuid.New().String(),
		Channel:    m.templates.Channel(templateID),
		Recipient:  recipient,
		Subject:    subject,
		Body:       body,
		TemplateID: templateID,
		Status:     "pending",
		CreatedAt:  time.Now(),
		Metadata:   metadata,
	}

	switch n.Channel {
	case ChannelEmail:
		if m.email == nil {
			err = errors.New("no email sender configured")
		} else {
			err = m.email.SendEmail(ctx, recipient, subject, body)
		}
	case ChannelSMS:
		if m.sms == nil {
			err = errors.New("no sms sender configured")
		} else {
			err = m.sms.SendSMS(ctx, recipient, body)
		}
	default:
		err = fmt.Errorf("unknown channel %q", n.Channel)
	}

	if err != nil {
		n.Status = "failed"
		n.Error = err.Error()
	} else {
		now := time.Now()
		n.Status = "sent"
		n.SentAt = &now
	}

	m.mu.Lock()
	m.sent[n.ID] = n
	m.mu.Unlock()

	if err != nil {
		return n, err
	}
	return n, nil
}

// List returns all recorded notifications, newest last.
func (m *Manager) List() []*Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Notification, 0, len(m.sent))
	for _, n := range m.sent {
		out = append(out, n)
	}
	return out
}

// MockSMSSender is a test double that records sent messages.
type MockSMSSender struct {
	mu         sync.Mutex
	calls      []SMSCall
	ShouldFail bool
}

// SMSCall records a single SendSMS invocation.
type SMSCall struct {
	To   string
	Body string
}

func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SMSCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New("sms gateway unavailable")
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (m *MockSMSSender) Calls() []SMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockEmailSender is a test double that records sent emails.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
}

// EmailCall records a single SendEmail invocation.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New("mail relay unavailable")
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}
