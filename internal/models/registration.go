package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PaymentStatus represents the payment lifecycle stage of a registration
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSubmitted PaymentStatus = "submitted"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
)

// MaxTeamMembers is the largest team a registration may carry.
const MaxTeamMembers = 3

// TeamMember represents one member of a registered team
type TeamMember struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	UniversityName   string `json:"university_name"`
	UniversityRollNo string `json:"university_roll_no"`
	Batch            string `json:"batch"`
}

// DiscountCodeUse records one discount code applied at payment submission
type DiscountCodeUse struct {
	Module string `json:"module"`
	Code   string `json:"code"`
}

// EventRegistration represents a team registration for an event
type EventRegistration struct {
	ID                 int               `json:"-" db:"id"`
	PublicID           string            `json:"id" db:"public_id"`
	EventID            int               `json:"event_id" db:"event_id"`
	TeamName           string            `json:"team_name" db:"team_name"`
	Members            []TeamMember      `json:"members" db:"members"`
	Modules            []string          `json:"modules" db:"modules"`
	PaymentStatus      PaymentStatus     `json:"payment_status" db:"payment_status"`
	TransactionID      string            `json:"transaction_id,omitempty" db:"transaction_id"`
	PaymentReceiptURL  string            `json:"payment_receipt_url,omitempty" db:"payment_receipt_url"`
	DiscountCodesUsed  []DiscountCodeUse `json:"discount_codes_used" db:"discount_codes_used"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
	PaymentSubmittedAt *time.Time        `json:"payment_submitted_at,omitempty" db:"payment_submitted_at"`
}

// RegistrationCreateRequest represents the data needed to register a team
type RegistrationCreateRequest struct {
	TeamName string       `json:"team_name"`
	Members  []TeamMember `json:"members"`
	Modules  []string     `json:"modules"`
	// Competition is accepted as a single-module alias for older clients.
	Competition string `json:"competition,omitempty"`
}

// PaymentSubmission represents a payment receipt submission for a registration
type PaymentSubmission struct {
	TeamName      string
	Email         string
	TransactionID string
	Competition   string
	DiscountCodes []DiscountCodeUse
}

var memberEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Valid reports whether the status is one of the known lifecycle stages
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentSubmitted, PaymentApproved, PaymentRejected:
		return true
	}
	return false
}

// CanSubmitPayment reports whether a receipt may be submitted from this status.
// Resubmission while already submitted is accepted (the newer receipt wins),
// and a rejected team may resubmit and re-enter review. Approved is terminal.
func (s PaymentStatus) CanSubmitPayment() bool {
	switch s {
	case PaymentPending, PaymentSubmitted, PaymentRejected:
		return true
	}
	return false
}

// PaymentSubmissionFrom lists the statuses a payment submission may start from.
func PaymentSubmissionFrom() []PaymentStatus {
	return []PaymentStatus{PaymentPending, PaymentSubmitted, PaymentRejected}
}

// ReviewFrom lists the statuses an admin decision may start from. Repeating the
// same decision is an idempotent overwrite; flipping a decided registration is not.
func ReviewFrom(decision PaymentStatus) []PaymentStatus {
	return []PaymentStatus{PaymentSubmitted, decision}
}

// IsDecided returns true once an admin has approved or rejected the registration
func (r *EventRegistration) IsDecided() bool {
	return r.PaymentStatus == PaymentApproved || r.PaymentStatus == PaymentRejected
}

// MemberEmails returns the non-empty member email addresses in order
func (r *EventRegistration) MemberEmails() []string {
	var emails []string
	for _, m := range r.Members {
		if m.Email != "" {
			emails = append(emails, m.Email)
		}
	}
	return emails
}

// Validate validates a registration create request
func (req *RegistrationCreateRequest) Validate() error {
	if strings.TrimSpace(req.TeamName) == "" {
		return errors.New("team name is required")
	}

	if len(req.TeamName) > 255 {
		return errors.New("team name must be less than 255 characters")
	}

	if len(req.Members) == 0 {
		return errors.New("at least one team member is required")
	}

	if len(req.Members) > MaxTeamMembers {
		return fmt.Errorf("a team can have at most %d members", MaxTeamMembers)
	}

	seen := make(map[string]bool, len(req.Members))
	for i, member := range req.Members {
		if err := validateTeamMember(member); err != nil {
			return fmt.Errorf("member %d: %w", i+1, err)
		}
		email := strings.ToLower(member.Email)
		if seen[email] {
			return fmt.Errorf("member %d: duplicate email %s", i+1, member.Email)
		}
		seen[email] = true
	}

	if len(req.NormalizedModules()) == 0 {
		return ErrNoModules
	}

	return nil
}

// NormalizedModules returns the selected modules, folding the legacy single
// competition field into the list when no modules were sent.
func (req *RegistrationCreateRequest) NormalizedModules() []string {
	var modules []string
	for _, m := range req.Modules {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			modules = append(modules, trimmed)
		}
	}
	if len(modules) == 0 && strings.TrimSpace(req.Competition) != "" {
		modules = append(modules, strings.TrimSpace(req.Competition))
	}
	return modules
}

func validateTeamMember(member TeamMember) error {
	if strings.TrimSpace(member.Name) == "" {
		return errors.New("name is required")
	}

	if member.Email == "" {
		return errors.New("email is required")
	}

	if !memberEmailRegex.MatchString(member.Email) {
		return errors.New("email format is invalid")
	}

	if len(member.Email) > 255 {
		return errors.New("email must be less than 255 characters")
	}

	return nil
}

// Validate validates a payment submission
func (p *PaymentSubmission) Validate() error {
	if p.TransactionID == "" {
		return errors.New("transaction ID is required")
	}

	if p.TeamName == "" && p.Email == "" {
		return errors.New("either team_name or email is required")
	}

	if p.Competition == "" {
		return errors.New("competition is required")
	}

	return nil
}

// ParseDiscountCodesUsed parses the discount_codes form field. Clients send
// either an object {"module": "code"} or an array [{"module": ..., "code": ...}].
// Malformed JSON is a validation error, not an empty list.
func ParseDiscountCodesUsed(raw string) ([]DiscountCodeUse, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var asList []DiscountCodeUse
	if err := json.Unmarshal([]byte(raw), &asList); err == nil {
		var used []DiscountCodeUse
		for _, entry := range asList {
			if entry.Module != "" && entry.Code != "" {
				used = append(used, entry)
			}
		}
		return used, nil
	}

	var asMap map[string]string
	if err := json.Unmarshal([]byte(raw), &asMap); err != nil {
		return nil, fmt.Errorf("%w: discount_codes must be a JSON object or array", ErrInvalidInput)
	}

	var used []DiscountCodeUse
	for module, code := range asMap {
		if module != "" && code != "" {
			used = append(used, DiscountCodeUse{Module: module, Code: code})
		}
	}
	return used, nil
}
