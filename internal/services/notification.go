package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"sync"
	"time"

	"event-registration-platform/internal/config"
	"event-registration-platform/internal/models"
)

// NotificationService defines the interface for registration lifecycle emails.
// All sends are best-effort: callers log failures and never surface them.
type NotificationService interface {
	SendAdminNewRegistration(event *models.Event, registration *models.EventRegistration, moduleCounts map[string]int) error
	SendPaymentPending(event *models.Event, registration *models.EventRegistration) error
	SendApproval(event *models.Event, registration *models.EventRegistration) error
	SendRejection(event *models.Event, registration *models.EventRegistration) error
}

// SMTPNotificationService sends registration emails over SMTP
type SMTPNotificationService struct {
	config    config.SMTPConfig
	templates map[string]*template.Template
}

// NewSMTPNotificationService creates a new SMTP notification service
func NewSMTPNotificationService(cfg config.SMTPConfig) (*SMTPNotificationService, error) {
	service := &SMTPNotificationService{
		config:    cfg,
		templates: make(map[string]*template.Template),
	}

	sources := map[string]string{
		"admin_new_registration": adminNewRegistrationTemplate,
		"payment_pending":        paymentPendingTemplate,
		"registration_approved":  registrationApprovedTemplate,
		"registration_rejected":  registrationRejectedTemplate,
	}
	for name, source := range sources {
		tmpl, err := template.New(name).Parse(source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		service.templates[name] = tmpl
	}

	return service, nil
}

// teamEmailData is the payload shared by all registration email templates
type teamEmailData struct {
	EventName        string
	TeamName         string
	Members          []models.TeamMember
	Modules          []string
	ModuleCounts     map[string]int
	RegistrationTime string
	Year             int
}

func (s *SMTPNotificationService) buildData(event *models.Event, registration *models.EventRegistration, moduleCounts map[string]int) teamEmailData {
	eventName := ""
	if event != nil {
		eventName = event.Title
	}
	return teamEmailData{
		EventName:        eventName,
		TeamName:         registration.TeamName,
		Members:          registration.Members,
		Modules:          registration.Modules,
		ModuleCounts:     moduleCounts,
		RegistrationTime: registration.CreatedAt.Format("2006-01-02 15:04:05"),
		Year:             time.Now().Year(),
	}
}

// SendAdminNewRegistration notifies the admin address about a new registration
func (s *SMTPNotificationService) SendAdminNewRegistration(event *models.Event, registration *models.EventRegistration, moduleCounts map[string]int) error {
	body, err := s.render("admin_new_registration", s.buildData(event, registration, moduleCounts))
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New Event Registration - %s", registration.TeamName)
	return s.send(s.config.AdminEmail, subject, body)
}

// SendPaymentPending mails every team member that their payment is under review
func (s *SMTPNotificationService) SendPaymentPending(event *models.Event, registration *models.EventRegistration) error {
	subject := fmt.Sprintf("Event Registration Pending - %s", registration.TeamName)
	return s.sendToTeam("payment_pending", subject, event, registration)
}

// SendApproval mails every team member that their registration was approved
func (s *SMTPNotificationService) SendApproval(event *models.Event, registration *models.EventRegistration) error {
	subject := fmt.Sprintf("Event Registration Approved - %s", registration.TeamName)
	return s.sendToTeam("registration_approved", subject, event, registration)
}

// SendRejection mails every team member that their registration was rejected
func (s *SMTPNotificationService) SendRejection(event *models.Event, registration *models.EventRegistration) error {
	subject := fmt.Sprintf("Event Registration Update - %s", registration.TeamName)
	return s.sendToTeam("registration_rejected", subject, event, registration)
}

func (s *SMTPNotificationService) sendToTeam(templateName, subject string, event *models.Event, registration *models.EventRegistration) error {
	body, err := s.render(templateName, s.buildData(event, registration, nil))
	if err != nil {
		return err
	}

	var firstErr error
	for _, email := range registration.MemberEmails() {
		if err := s.send(email, subject, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *SMTPNotificationService) render(name string, data teamEmailData) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return buf.String(), nil
}

func (s *SMTPNotificationService) send(to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("no recipient address")
	}

	from := s.config.FromEmail
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, htmlBody)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	var auth smtp.Auth
	if s.config.User != "" {
		auth = smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// MockNotificationService records notifications for development and tests
type MockNotificationService struct {
	mu sync.Mutex

	AdminNotifications []string // team names
	PendingRecipients  []string
	ApprovalRecipients []string
	RejectedRecipients []string

	// FailWith, when set, is returned from every send.
	FailWith error
}

// NewMockNotificationService creates a new mock notification service
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) SendAdminNewRegistration(event *models.Event, registration *models.EventRegistration, moduleCounts map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.AdminNotifications = append(m.AdminNotifications, registration.TeamName)
	return nil
}

func (m *MockNotificationService) SendPaymentPending(event *models.Event, registration *models.EventRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.PendingRecipients = append(m.PendingRecipients, registration.MemberEmails()...)
	return nil
}

func (m *MockNotificationService) SendApproval(event *models.Event, registration *models.EventRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.ApprovalRecipients = append(m.ApprovalRecipients, registration.MemberEmails()...)
	return nil
}

func (m *MockNotificationService) SendRejection(event *models.Event, registration *models.EventRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.RejectedRecipients = append(m.RejectedRecipients, registration.MemberEmails()...)
	return nil
}

// Approvals returns a copy of the approval recipient list
func (m *MockNotificationService) Approvals() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ApprovalRecipients...)
}
