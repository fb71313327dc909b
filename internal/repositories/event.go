package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"event-registration-platform/internal/models"

	"github.com/lib/pq"
)

// EventRepository handles event data operations
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventSearchFilters represents filters for competition browsing
type EventSearchFilters struct {
	Query      string // Title/description search
	CategoryID int
	DateFrom   string // YYYY-MM-DD
	DateTo     string // YYYY-MM-DD
	Sort       string // "new", "most_registrations", "trending"
}

const eventColumns = `e.id, e.title, e.date, e.time, e.location, e.description,
	e.image_url, e.registration_open, e.modules, e.module_amounts, e.discount_codes,
	e.category_id, COALESCE(c.name, ''), e.rules, e.prizes, e.deadline,
	e.created_at, e.updated_at`

const eventJoin = `FROM events e LEFT JOIN categories c ON c.id = e.category_id`

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, req *models.EventCreateRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	amountsJSON, codesJSON, err := encodeEventJSON(req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var id int
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO events (title, date, time, location, description, image_url,
			registration_open, modules, module_amounts, discount_codes,
			category_id, rules, prizes, deadline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NULLIF($14, ''), $15, $15)
		RETURNING id`,
		req.Title, req.Date, req.Time, req.Location, req.Description,
		nullableString(req.ImageURL), req.RegistrationOpen, pq.Array(req.Modules),
		amountsJSON, codesJSON, req.CategoryID, req.Rules, req.Prizes,
		req.Deadline, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` ` + eventJoin + ` WHERE e.id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// Update replaces an event's fields
func (r *EventRepository) Update(ctx context.Context, id int, req *models.EventCreateRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	amountsJSON, codesJSON, err := encodeEventJSON(req)
	if err != nil {
		return nil, err
	}

	// An empty ImageURL keeps the existing image, matching the admin panel's
	// update contract where the image field is optional.
	result, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET title = $2, date = $3, time = $4, location = $5, description = $6,
			image_url = COALESCE(NULLIF($7, ''), image_url),
			registration_open = $8, modules = $9, module_amounts = $10,
			discount_codes = $11, category_id = $12, rules = $13, prizes = $14,
			deadline = NULLIF($15, ''), updated_at = $16
		WHERE id = $1`,
		id, req.Title, req.Date, req.Time, req.Location, req.Description,
		req.ImageURL, req.RegistrationOpen, pq.Array(req.Modules),
		amountsJSON, codesJSON, req.CategoryID, req.Rules, req.Prizes,
		req.Deadline, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, models.ErrEventNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes an event. Registrations cascade at the database level.
func (r *EventRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrEventNotFound
	}

	return nil
}

// List retrieves all events, newest first
func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` ` + eventJoin + ` ORDER BY e.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// Search retrieves events with registration counts matching the filters
func (r *EventRepository) Search(ctx context.Context, filters EventSearchFilters) ([]*models.Event, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.CategoryID > 0 {
		conditions = append(conditions, fmt.Sprintf("e.category_id = $%d", argIndex))
		args = append(args, filters.CategoryID)
		argIndex++
	}

	if q := strings.TrimSpace(filters.Query); q != "" {
		conditions = append(conditions, fmt.Sprintf("(e.title ILIKE $%d OR e.description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+q+"%")
		argIndex++
	}

	if filters.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("e.date >= $%d", argIndex))
		args = append(args, filters.DateFrom)
		argIndex++
	}

	if filters.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("e.date <= $%d", argIndex))
		args = append(args, filters.DateTo)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := "ORDER BY e.created_at DESC"
	switch filters.Sort {
	case "most_registrations":
		orderBy = "ORDER BY registration_count DESC, e.created_at DESC"
	case "trending":
		orderBy = "ORDER BY registration_count DESC, e.date ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s,
			(SELECT COUNT(*) FROM event_registrations er WHERE er.event_id = e.id) AS registration_count
		%s
		%s
		%s`, eventColumns, eventJoin, whereClause, orderBy)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEventInto(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// ListByDatePrefix retrieves events whose date starts with the prefix
// ("2026-02" for a month, "2026" for a year), ordered for a calendar view.
func (r *EventRepository) ListByDatePrefix(ctx context.Context, prefix string) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + `,
			(SELECT COUNT(*) FROM event_registrations er WHERE er.event_id = e.id) AS registration_count
		` + eventJoin + `
		WHERE e.date LIKE $1
		ORDER BY e.date ASC, e.time ASC`

	rows, err := r.db.QueryContext(ctx, query, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list events by date: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEventInto(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

func collectEvents(rows *sql.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		event, err := scanEventInto(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

func scanEvent(row rowScanner) (*models.Event, error) {
	return scanEventInto(row, false)
}

func scanEventInto(row rowScanner, withCount bool) (*models.Event, error) {
	event := &models.Event{}
	var (
		imageURL    sql.NullString
		deadline    sql.NullString
		categoryID  sql.NullInt64
		amountsJSON []byte
		codesJSON   []byte
	)

	dest := []interface{}{
		&event.ID,
		&event.Title,
		&event.Date,
		&event.Time,
		&event.Location,
		&event.Description,
		&imageURL,
		&event.RegistrationOpen,
		pq.Array(&event.Modules),
		&amountsJSON,
		&codesJSON,
		&categoryID,
		&event.CategoryName,
		&event.Rules,
		&event.Prizes,
		&deadline,
		&event.CreatedAt,
		&event.UpdatedAt,
	}
	if withCount {
		dest = append(dest, &event.RegistrationCount)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	event.ImageURL = imageURL.String
	event.Deadline = deadline.String
	if categoryID.Valid {
		id := int(categoryID.Int64)
		event.CategoryID = &id
	}

	event.ModuleAmounts = make(map[string]int)
	if len(amountsJSON) > 0 {
		if err := json.Unmarshal(amountsJSON, &event.ModuleAmounts); err != nil {
			return nil, fmt.Errorf("failed to decode module amounts: %w", err)
		}
	}
	if len(codesJSON) > 0 {
		if err := json.Unmarshal(codesJSON, &event.DiscountCodes); err != nil {
			return nil, fmt.Errorf("failed to decode discount codes: %w", err)
		}
	}

	return event, nil
}

func encodeEventJSON(req *models.EventCreateRequest) ([]byte, []byte, error) {
	amounts := req.ModuleAmounts
	if amounts == nil {
		amounts = map[string]int{}
	}
	amountsJSON, err := json.Marshal(amounts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode module amounts: %w", err)
	}

	codes := req.DiscountCodes
	if codes == nil {
		codes = []models.DiscountCode{}
	}
	codesJSON, err := json.Marshal(codes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode discount codes: %w", err)
	}

	return amountsJSON, codesJSON, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
