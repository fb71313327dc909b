package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"event-registration-platform/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// RegistrationRepository handles event registration data operations
type RegistrationRepository struct {
	db *sql.DB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// RegistrationWithEvent represents a registration joined with its event summary
type RegistrationWithEvent struct {
	*models.EventRegistration
	EventTitle string `json:"event_title" db:"event_title"`
	EventDate  string `json:"event_date" db:"event_date"`
	EventTime  string `json:"event_time" db:"event_time"`
	Location   string `json:"location" db:"location"`
}

const registrationColumns = `id, public_id, event_id, team_name, members, modules,
	payment_status, transaction_id, payment_receipt_url, discount_codes_used,
	created_at, payment_submitted_at`

// Create inserts a new registration and its member email rows in one
// transaction. Uniqueness of team name and member emails is enforced by the
// database, so concurrent intakes cannot both succeed.
func (r *RegistrationRepository) Create(ctx context.Context, eventID int, req *models.RegistrationCreateRequest) (*models.EventRegistration, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	modules := req.NormalizedModules()

	membersJSON, err := json.Marshal(req.Members)
	if err != nil {
		return nil, fmt.Errorf("failed to encode members: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO event_registrations (public_id, event_id, team_name, members, modules, payment_status, discount_codes_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, '[]', $7)
		RETURNING ` + registrationColumns

	row := tx.QueryRowContext(
		ctx,
		query,
		uuid.NewString(),
		eventID,
		strings.TrimSpace(req.TeamName),
		membersJSON,
		pq.Array(modules),
		models.PaymentPending,
		time.Now().UTC(),
	)

	registration, err := scanRegistration(row)
	if err != nil {
		return nil, mapUniqueViolation(err, "failed to create registration")
	}

	for _, member := range req.Members {
		if member.Email == "" {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO registration_members (registration_id, event_id, email)
			VALUES ($1, $2, $3)`,
			registration.ID, eventID, member.Email)
		if err != nil {
			return nil, mapUniqueViolation(err, "failed to record member email")
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	return registration, nil
}

// GetByTeamName retrieves a registration by event and team name
func (r *RegistrationRepository) GetByTeamName(ctx context.Context, eventID int, teamName string) (*models.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM event_registrations
		WHERE event_id = $1 AND LOWER(team_name) = LOWER($2)`

	registration, err := scanRegistration(r.db.QueryRowContext(ctx, query, eventID, teamName))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration by team name: %w", err)
	}

	return registration, nil
}

// GetByMemberEmail retrieves a registration by event and member email
func (r *RegistrationRepository) GetByMemberEmail(ctx context.Context, eventID int, email string) (*models.EventRegistration, error) {
	query := `SELECT ` + prefixedRegistrationColumns("er") + `
		FROM event_registrations er
		JOIN registration_members rm ON rm.registration_id = er.id
		WHERE er.event_id = $1 AND LOWER(rm.email) = LOWER($2)`

	registration, err := scanRegistration(r.db.QueryRowContext(ctx, query, eventID, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration by member email: %w", err)
	}

	return registration, nil
}

// ListByEvent retrieves all registrations for an event, newest first
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM event_registrations
		WHERE event_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var registrations []*models.EventRegistration
	for rows.Next() {
		registration, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		registrations = append(registrations, registration)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}

	return registrations, nil
}

// ListByMemberEmail retrieves all registrations across events for a member
// email, newest first, joined with event summaries
func (r *RegistrationRepository) ListByMemberEmail(ctx context.Context, email string) ([]*RegistrationWithEvent, error) {
	query := `SELECT ` + prefixedRegistrationColumns("er") + `,
			e.title AS event_title, e.date AS event_date, e.time AS event_time, e.location
		FROM event_registrations er
		JOIN registration_members rm ON rm.registration_id = er.id
		JOIN events e ON e.id = er.event_id
		WHERE LOWER(rm.email) = LOWER($1)
		ORDER BY er.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations by email: %w", err)
	}
	defer rows.Close()

	var results []*RegistrationWithEvent
	for rows.Next() {
		result := &RegistrationWithEvent{}
		registration, err := scanRegistrationInto(rows, &result.EventTitle, &result.EventDate, &result.EventTime, &result.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration with event: %w", err)
		}
		result.EventRegistration = registration
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations by email: %w", err)
	}

	return results, nil
}

// TeamNameTaken reports whether a team name is already used on an event
func (r *RegistrationRepository) TeamNameTaken(ctx context.Context, eventID int, teamName string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM event_registrations
			WHERE event_id = $1 AND LOWER(team_name) = LOWER($2)
		)`, eventID, teamName).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check team name: %w", err)
	}
	return taken, nil
}

// EmailRegistered reports whether an email already has a registration on an event
func (r *RegistrationRepository) EmailRegistered(ctx context.Context, eventID int, email string) (bool, error) {
	var registered bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM registration_members
			WHERE event_id = $1 AND LOWER(email) = LOWER($2)
		)`, eventID, email).Scan(&registered)
	if err != nil {
		return false, fmt.Errorf("failed to check email registration: %w", err)
	}
	return registered, nil
}

// CountByModule returns the number of registrations per module for an event
func (r *RegistrationRepository) CountByModule(ctx context.Context, eventID int, modules []string) (map[string]int, error) {
	counts := make(map[string]int, len(modules))
	for _, module := range modules {
		var count int
		err := r.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM event_registrations
			WHERE event_id = $1 AND $2 = ANY(modules)`, eventID, module).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("failed to count module registrations: %w", err)
		}
		counts[module] = count
	}
	return counts, nil
}

// CountByEvent returns the number of registrations for an event
func (r *RegistrationRepository) CountByEvent(ctx context.Context, eventID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_registrations WHERE event_id = $1", eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

// SubmitPayment records receipt and transaction details and moves the
// registration to submitted. The update is conditional on the current status so
// a concurrent approval cannot be silently overwritten.
func (r *RegistrationRepository) SubmitPayment(ctx context.Context, registrationID int, receiptURL, transactionID string, codes []models.DiscountCodeUse) (*models.EventRegistration, error) {
	codesJSON, err := json.Marshal(codes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode discount codes: %w", err)
	}
	if codes == nil {
		codesJSON = []byte("[]")
	}

	query := `
		UPDATE event_registrations
		SET payment_receipt_url = $2,
			transaction_id = $3,
			discount_codes_used = $4,
			payment_status = $5,
			payment_submitted_at = $6
		WHERE id = $1 AND payment_status = ANY($7)
		RETURNING ` + registrationColumns

	registration, err := scanRegistration(r.db.QueryRowContext(
		ctx,
		query,
		registrationID,
		receiptURL,
		transactionID,
		codesJSON,
		models.PaymentSubmitted,
		time.Now().UTC(),
		statusArray(models.PaymentSubmissionFrom()),
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, r.transitionError(ctx, registrationID)
		}
		return nil, fmt.Errorf("failed to submit payment: %w", err)
	}

	return registration, nil
}

// UpdateStatus applies an admin decision. The update is conditional on the
// current status: repeating a decision is idempotent, flipping one is refused.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, eventID int, teamName string, decision models.PaymentStatus) (*models.EventRegistration, error) {
	if !decision.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", models.ErrInvalidInput, decision)
	}

	query := `
		UPDATE event_registrations
		SET payment_status = $3
		WHERE event_id = $1 AND LOWER(team_name) = LOWER($2) AND payment_status = ANY($4)
		RETURNING ` + registrationColumns

	registration, err := scanRegistration(r.db.QueryRowContext(
		ctx, query, eventID, teamName, decision, statusArray(models.ReviewFrom(decision)),
	))
	if err != nil {
		if err == sql.ErrNoRows {
			if _, getErr := r.GetByTeamName(ctx, eventID, teamName); getErr != nil {
				return nil, getErr
			}
			return nil, models.ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	return registration, nil
}

func (r *RegistrationRepository) transitionError(ctx context.Context, registrationID int) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM event_registrations WHERE id = $1)", registrationID).Scan(&exists); err == nil && exists {
		return models.ErrInvalidTransition
	}
	return models.ErrRegistrationNotFound
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRegistration(row rowScanner) (*models.EventRegistration, error) {
	return scanRegistrationInto(row)
}

// scanRegistrationInto scans the registration columns followed by any extra
// columns appended to the query.
func scanRegistrationInto(row rowScanner, extra ...interface{}) (*models.EventRegistration, error) {
	registration := &models.EventRegistration{}
	var (
		membersJSON   []byte
		codesJSON     []byte
		transactionID sql.NullString
		receiptURL    sql.NullString
		submittedAt   sql.NullTime
	)

	dest := []interface{}{
		&registration.ID,
		&registration.PublicID,
		&registration.EventID,
		&registration.TeamName,
		&membersJSON,
		pq.Array(&registration.Modules),
		&registration.PaymentStatus,
		&transactionID,
		&receiptURL,
		&codesJSON,
		&registration.CreatedAt,
		&submittedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(membersJSON, &registration.Members); err != nil {
		return nil, fmt.Errorf("failed to decode members: %w", err)
	}
	if len(codesJSON) > 0 {
		if err := json.Unmarshal(codesJSON, &registration.DiscountCodesUsed); err != nil {
			return nil, fmt.Errorf("failed to decode discount codes: %w", err)
		}
	}

	registration.TransactionID = transactionID.String
	registration.PaymentReceiptURL = receiptURL.String
	if submittedAt.Valid {
		t := submittedAt.Time
		registration.PaymentSubmittedAt = &t
	}

	return registration, nil
}

func prefixedRegistrationColumns(alias string) string {
	parts := strings.Split(registrationColumns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

func statusArray(statuses []models.PaymentStatus) interface{} {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return pq.Array(values)
}

// mapUniqueViolation translates unique-index violations into domain errors
func mapUniqueViolation(err error, context string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "idx_registrations_event_team":
			return models.ErrDuplicateTeamName
		case "idx_registration_members_event_email", "registration_members_pkey":
			return models.ErrDuplicateMemberEmail
		}
	}
	return fmt.Errorf("%s: %w", context, err)
}
