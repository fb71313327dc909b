package models

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// DiscountCode represents a fee reduction tied to one module of an event
type DiscountCode struct {
	Code   string `json:"code"`
	Module string `json:"module"`
	Amount int    `json:"amount"`
}

// Event represents an event/competition in the system
type Event struct {
	ID               int            `json:"id" db:"id"`
	Title            string         `json:"title" db:"title"`
	Date             string         `json:"date" db:"date"` // YYYY-MM-DD
	Time             string         `json:"time" db:"time"`
	Location         string         `json:"location" db:"location"`
	Description      string         `json:"description" db:"description"`
	ImageURL         string         `json:"image_url,omitempty" db:"image_url"`
	RegistrationOpen bool           `json:"registration_open" db:"registration_open"`
	Modules          []string       `json:"modules" db:"modules"`
	ModuleAmounts    map[string]int `json:"module_amounts" db:"module_amounts"`
	DiscountCodes    []DiscountCode `json:"discount_codes" db:"discount_codes"`
	CategoryID       *int           `json:"category_id,omitempty" db:"category_id"`
	CategoryName     string         `json:"category_name,omitempty" db:"-"`
	Rules            string         `json:"rules" db:"rules"`
	Prizes           string         `json:"prizes" db:"prizes"`
	Deadline         string         `json:"deadline,omitempty" db:"deadline"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`

	// RegistrationCount is populated on browse/detail views, not stored.
	RegistrationCount int `json:"registration_count,omitempty" db:"-"`
}

// Category groups events for browsing
type Category struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EventCreateRequest represents the data needed to create or update an event
type EventCreateRequest struct {
	Title            string
	Date             string
	Time             string
	Location         string
	Description      string
	ImageURL         string
	RegistrationOpen bool
	Modules          []string
	ModuleAmounts    map[string]int
	DiscountCodes    []DiscountCode
	CategoryID       *int
	Rules            string
	Prizes           string
	Deadline         string
}

// HasModule reports whether name is one of the event's configured modules
func (e *Event) HasModule(name string) bool {
	for _, m := range e.Modules {
		if m == name {
			return true
		}
	}
	return false
}

// FindDiscount returns the discount amount for an exact (code, module) match
func (e *Event) FindDiscount(code, module string) (int, bool) {
	for _, d := range e.DiscountCodes {
		if d.Code == code && d.Module == module {
			return d.Amount, true
		}
	}
	return 0, false
}

// Validate validates event creation data
func (req *EventCreateRequest) Validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}

	if len(req.Title) > 255 {
		return errors.New("title must be less than 255 characters")
	}

	if strings.TrimSpace(req.Date) == "" {
		return errors.New("date is required")
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return errors.New("date must be in YYYY-MM-DD format")
	}

	if req.Deadline != "" {
		if _, err := time.Parse("2006-01-02", req.Deadline); err != nil {
			return errors.New("deadline must be in YYYY-MM-DD format")
		}
	}

	for _, d := range req.DiscountCodes {
		if d.Code == "" || d.Module == "" {
			return errors.New("discount codes require both code and module")
		}
		if d.Amount < 0 {
			return errors.New("discount amount cannot be negative")
		}
	}

	return nil
}

// ParseModuleList parses the comma-separated modules form field
func ParseModuleList(raw string) []string {
	var modules []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			modules = append(modules, trimmed)
		}
	}
	return modules
}

// ParseModuleAmounts parses the "name:amount,name:amount" form field.
// Pairs with a non-numeric amount are skipped, matching the admin panel's
// tolerant contract for this field.
func ParseModuleAmounts(raw string) map[string]int {
	amounts := make(map[string]int)
	for _, pair := range strings.Split(raw, ",") {
		name, value, found := strings.Cut(pair, ":")
		if !found {
			continue
		}
		amount, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			amounts[trimmed] = amount
		}
	}
	return amounts
}

// ParseDiscountCodes parses the JSON discount_codes form field
func ParseDiscountCodes(raw string) ([]DiscountCode, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var codes []DiscountCode
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		return nil, errors.New("discount_codes must be a JSON array of {code, module, amount}")
	}
	return codes, nil
}
