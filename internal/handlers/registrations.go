package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"event-registration-platform/internal/models"
	"event-registration-platform/internal/services"

	"github.com/go-chi/chi/v5"
)

// maxReceiptSize caps uploaded payment receipts at 10MB
const maxReceiptSize = 10 << 20

// RegistrationHandler handles the registration and payment workflow endpoints
type RegistrationHandler struct {
	registrationService *services.RegistrationService
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrationService *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
	}
}

// Register handles POST /api/events/{id}/register
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req models.RegistrationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid JSON body", models.ErrInvalidInput))
		return
	}

	registration, err := h.registrationService.Register(r.Context(), eventID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":         "registration successful, please proceed to payment",
		"registration_id": registration.PublicID,
		"team_name":       registration.TeamName,
		"payment_status":  registration.PaymentStatus,
	})
}

// SubmitPayment handles POST /api/events/{id}/payment (multipart form)
func (h *RegistrationHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		writeError(w, fmt.Errorf("%w: expected multipart form data", models.ErrInvalidInput))
		return
	}

	codes, err := models.ParseDiscountCodesUsed(r.FormValue("discount_codes"))
	if err != nil {
		writeError(w, err)
		return
	}

	// Older clients send transactionId instead of transaction_id.
	transactionID := r.FormValue("transaction_id")
	if transactionID == "" {
		transactionID = r.FormValue("transactionId")
	}

	submission := &models.PaymentSubmission{
		TeamName:      r.FormValue("team_name"),
		Email:         r.FormValue("email"),
		TransactionID: transactionID,
		Competition:   r.FormValue("competition"),
		DiscountCodes: codes,
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		writeError(w, fmt.Errorf("%w: receipt file is required", models.ErrInvalidInput))
		return
	}
	defer file.Close()

	receipt := &services.FileUpload{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}

	registration, err := h.registrationService.SubmitPayment(r.Context(), eventID, submission, receipt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":        "payment receipt submitted, pending approval",
		"receipt_url":    registration.PaymentReceiptURL,
		"transaction_id": registration.TransactionID,
		"payment_status": registration.PaymentStatus,
	})
}

// ValidateDiscount handles POST /api/events/{id}/discount/validate
func (h *RegistrationHandler) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, fmt.Errorf("%w: invalid form data", models.ErrInvalidInput))
		return
	}

	code := r.FormValue("code")
	module := r.FormValue("module")
	if code == "" || module == "" {
		writeError(w, fmt.Errorf("%w: code and module are required", models.ErrInvalidInput))
		return
	}

	amount, err := h.registrationService.ValidateDiscount(r.Context(), eventID, code, module)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"amount":  amount,
		"message": fmt.Sprintf("discount of %d applied for %s", amount, module),
	})
}

// CheckTeamName handles GET /api/events/{id}/check-team-name
func (h *RegistrationHandler) CheckTeamName(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	available, err := h.registrationService.TeamNameAvailable(r.Context(), eventID, r.URL.Query().Get("team_name"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

// CheckRegistered handles GET /api/events/{id}/registered
func (h *RegistrationHandler) CheckRegistered(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, fmt.Errorf("%w: email is required", models.ErrInvalidInput))
		return
	}

	registered, err := h.registrationService.IsEmailRegistered(r.Context(), eventID, email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"registered": registered})
}

// PaymentStatus handles GET /api/events/{id}/payment-status/{identifier}
func (h *RegistrationHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	identifier := chi.URLParam(r, "identifier")
	identifierType := r.URL.Query().Get("identifier_type")
	if identifierType == "" {
		identifierType = "email"
	}

	snapshot, err := h.registrationService.PaymentStatus(r.Context(), eventID, identifier, identifierType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// UserRegistrations handles GET /api/users/registrations
func (h *RegistrationHandler) UserRegistrations(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	registrations, err := h.registrationService.ListByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"registrations": registrations,
		"count":         len(registrations),
	})
}

// ListRegistrations handles GET /api/events/{id}/registrations (admin)
func (h *RegistrationHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	registrations, err := h.registrationService.ListByEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"registrations": registrations,
		"count":         len(registrations),
	})
}

// Approve handles POST /api/events/{id}/registrations/{teamName}/approve (admin)
func (h *RegistrationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.registrationService.Approve, "registration approved")
}

// Reject handles POST /api/events/{id}/registrations/{teamName}/reject (admin)
func (h *RegistrationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.registrationService.Reject, "registration rejected")
}

func (h *RegistrationHandler) review(
	w http.ResponseWriter,
	r *http.Request,
	decide func(ctx context.Context, eventID int, teamName string) (*models.EventRegistration, error),
	message string,
) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	teamName := chi.URLParam(r, "teamName")
	if teamName == "" {
		writeError(w, fmt.Errorf("%w: team name is required", models.ErrInvalidInput))
		return
	}

	registration, err := decide(r.Context(), eventID, teamName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      message,
		"registration": registration,
	})
}

func eventIDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid event id", models.ErrInvalidInput)
	}
	return id, nil
}
