package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"event-registration-platform/internal/models"
	"event-registration-platform/internal/repositories"

	"github.com/google/uuid"
)

// RegistrationService handles the team registration and payment workflow
type RegistrationService struct {
	registrationRepo RegistrationRepository
	eventRepo        EventReader
	storage          StorageService
	notifier         NotificationService
	notifyOnReject   bool
}

// RegistrationRepository interface for registration data operations
type RegistrationRepository interface {
	Create(ctx context.Context, eventID int, req *models.RegistrationCreateRequest) (*models.EventRegistration, error)
	GetByTeamName(ctx context.Context, eventID int, teamName string) (*models.EventRegistration, error)
	GetByMemberEmail(ctx context.Context, eventID int, email string) (*models.EventRegistration, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.EventRegistration, error)
	ListByMemberEmail(ctx context.Context, email string) ([]*repositories.RegistrationWithEvent, error)
	TeamNameTaken(ctx context.Context, eventID int, teamName string) (bool, error)
	EmailRegistered(ctx context.Context, eventID int, email string) (bool, error)
	CountByModule(ctx context.Context, eventID int, modules []string) (map[string]int, error)
	SubmitPayment(ctx context.Context, registrationID int, receiptURL, transactionID string, codes []models.DiscountCodeUse) (*models.EventRegistration, error)
	UpdateStatus(ctx context.Context, eventID int, teamName string, decision models.PaymentStatus) (*models.EventRegistration, error)
}

// EventReader is the slice of event access the registration workflow needs
type EventReader interface {
	GetByID(ctx context.Context, id int) (*models.Event, error)
}

// FileUpload carries an uploaded file (payment receipt or event image)
type FileUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// PaymentStatusSnapshot is the public view of a registration's payment state
type PaymentStatusSnapshot struct {
	TeamName      string               `json:"team_name"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	TransactionID string               `json:"transaction_id,omitempty"`
	ReceiptURL    string               `json:"receipt_url,omitempty"`
	SubmittedAt   *time.Time           `json:"submitted_at,omitempty"`
	Modules       []string             `json:"modules"`
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	registrationRepo RegistrationRepository,
	eventRepo EventReader,
	storage StorageService,
	notifier NotificationService,
	notifyOnReject bool,
) *RegistrationService {
	return &RegistrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		storage:          storage,
		notifier:         notifier,
		notifyOnReject:   notifyOnReject,
	}
}

// Register creates a new team registration for an event. The registration
// starts as pending; the admin is notified best-effort in the background.
func (s *RegistrationService) Register(ctx context.Context, eventID int, req *models.RegistrationCreateRequest) (*models.EventRegistration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !event.RegistrationOpen {
		return nil, models.ErrRegistrationClosed
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	// Friendly pre-checks that name the conflicting value. The unique indexes
	// remain the source of truth under concurrency.
	for _, member := range req.Members {
		if member.Email == "" {
			continue
		}
		registered, err := s.registrationRepo.EmailRegistered(ctx, eventID, member.Email)
		if err != nil {
			return nil, err
		}
		if registered {
			return nil, fmt.Errorf("%w: %s", models.ErrDuplicateMemberEmail, member.Email)
		}
	}

	registration, err := s.registrationRepo.Create(ctx, eventID, req)
	if err != nil {
		return nil, err
	}

	go s.notifyAdmin(event, registration)

	return registration, nil
}

func (s *RegistrationService) notifyAdmin(event *models.Event, registration *models.EventRegistration) {
	counts, err := s.registrationRepo.CountByModule(context.Background(), event.ID, registration.Modules)
	if err != nil {
		log.Printf("Warning: failed to count module registrations for admin notification: %v", err)
		counts = nil
	}
	if err := s.notifier.SendAdminNewRegistration(event, registration, counts); err != nil {
		log.Printf("Warning: failed to send admin notification for team %s: %v", registration.TeamName, err)
	}
}

// SubmitPayment uploads a receipt, validates the submission against the event,
// and moves the registration to submitted. Team members are notified
// best-effort that their registration is pending approval.
func (s *RegistrationService) SubmitPayment(ctx context.Context, eventID int, submission *models.PaymentSubmission, receipt *FileUpload) (*models.EventRegistration, error) {
	if err := submission.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}
	if receipt == nil || receipt.Reader == nil {
		return nil, fmt.Errorf("%w: receipt file is required", models.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	registration, err := s.locateRegistration(ctx, eventID, submission)
	if err != nil {
		return nil, err
	}

	if !event.HasModule(submission.Competition) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownModule, submission.Competition)
	}

	for _, use := range submission.DiscountCodes {
		if _, ok := event.FindDiscount(use.Code, use.Module); !ok {
			return nil, fmt.Errorf("%w: %s", models.ErrDiscountNotFound, use.Code)
		}
	}

	if !registration.PaymentStatus.CanSubmitPayment() {
		return nil, models.ErrInvalidTransition
	}

	key := receiptKey(eventID, receipt.Filename)
	receiptURL, err := s.storage.Upload(ctx, key, receipt.Reader, receipt.ContentType, receipt.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to upload receipt: %w", err)
	}

	updated, err := s.registrationRepo.SubmitPayment(ctx, registration.ID, receiptURL, submission.TransactionID, submission.DiscountCodes)
	if err != nil {
		// The receipt is orphaned; remove it best-effort.
		if deleteErr := s.storage.Delete(ctx, key); deleteErr != nil {
			log.Printf("Warning: failed to delete orphaned receipt %s: %v", key, deleteErr)
		}
		return nil, err
	}

	go func() {
		if err := s.notifier.SendPaymentPending(event, updated); err != nil {
			log.Printf("Warning: failed to send pending notification for team %s: %v", updated.TeamName, err)
		}
	}()

	return updated, nil
}

func (s *RegistrationService) locateRegistration(ctx context.Context, eventID int, submission *models.PaymentSubmission) (*models.EventRegistration, error) {
	if submission.TeamName != "" {
		return s.registrationRepo.GetByTeamName(ctx, eventID, submission.TeamName)
	}
	return s.registrationRepo.GetByMemberEmail(ctx, eventID, submission.Email)
}

// ValidateDiscount returns the discount amount for an exact (code, module)
// match on the event's configured discount codes
func (s *RegistrationService) ValidateDiscount(ctx context.Context, eventID int, code, module string) (int, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}

	amount, ok := event.FindDiscount(code, module)
	if !ok {
		return 0, models.ErrDiscountNotFound
	}
	return amount, nil
}

// Approve marks a submitted registration as approved and notifies the team
func (s *RegistrationService) Approve(ctx context.Context, eventID int, teamName string) (*models.EventRegistration, error) {
	return s.review(ctx, eventID, teamName, models.PaymentApproved)
}

// Reject marks a submitted registration as rejected and, when configured,
// notifies the team
func (s *RegistrationService) Reject(ctx context.Context, eventID int, teamName string) (*models.EventRegistration, error) {
	return s.review(ctx, eventID, teamName, models.PaymentRejected)
}

func (s *RegistrationService) review(ctx context.Context, eventID int, teamName string, decision models.PaymentStatus) (*models.EventRegistration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	registration, err := s.registrationRepo.UpdateStatus(ctx, eventID, teamName, decision)
	if err != nil {
		return nil, err
	}

	notify := s.notifier.SendApproval
	if decision == models.PaymentRejected {
		if !s.notifyOnReject {
			return registration, nil
		}
		notify = s.notifier.SendRejection
	}

	go func() {
		if err := notify(event, registration); err != nil {
			log.Printf("Warning: failed to send %s notification for team %s: %v", decision, registration.TeamName, err)
		}
	}()

	return registration, nil
}

// ListByEvent returns all registrations for an event, newest first
func (s *RegistrationService) ListByEvent(ctx context.Context, eventID int) ([]*models.EventRegistration, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.registrationRepo.ListByEvent(ctx, eventID)
}

// TeamNameAvailable reports whether a team name is still free on an event.
// A blank name is reported available, matching the live-check contract.
func (s *RegistrationService) TeamNameAvailable(ctx context.Context, eventID int, teamName string) (bool, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return false, err
	}

	if strings.TrimSpace(teamName) == "" {
		return true, nil
	}

	taken, err := s.registrationRepo.TeamNameTaken(ctx, eventID, teamName)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// IsEmailRegistered reports whether an email already belongs to a registration
// on the event
func (s *RegistrationService) IsEmailRegistered(ctx context.Context, eventID int, email string) (bool, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return false, err
	}
	return s.registrationRepo.EmailRegistered(ctx, eventID, email)
}

// ListByEmail returns all registrations across events for a member email,
// joined with event summaries, newest first
func (s *RegistrationService) ListByEmail(ctx context.Context, email string) ([]*repositories.RegistrationWithEvent, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", models.ErrInvalidInput)
	}
	return s.registrationRepo.ListByMemberEmail(ctx, email)
}

// PaymentStatus returns the payment snapshot for a registration located by
// team name or member email
func (s *RegistrationService) PaymentStatus(ctx context.Context, eventID int, identifier, identifierType string) (*PaymentStatusSnapshot, error) {
	var (
		registration *models.EventRegistration
		err          error
	)

	switch identifierType {
	case "email":
		registration, err = s.registrationRepo.GetByMemberEmail(ctx, eventID, identifier)
	case "team_name":
		registration, err = s.registrationRepo.GetByTeamName(ctx, eventID, identifier)
	default:
		return nil, fmt.Errorf("%w: identifier_type must be 'email' or 'team_name'", models.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	return &PaymentStatusSnapshot{
		TeamName:      registration.TeamName,
		PaymentStatus: registration.PaymentStatus,
		TransactionID: registration.TransactionID,
		ReceiptURL:    registration.PaymentReceiptURL,
		SubmittedAt:   registration.PaymentSubmittedAt,
		Modules:       registration.Modules,
	}, nil
}

func receiptKey(eventID int, filename string) string {
	return objectKey(fmt.Sprintf("receipts/event-%d", eventID), filename)
}

// objectKey builds a collision-free storage key keeping the file extension
func objectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)
}
