package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"event-registration-platform/internal/models"
	"event-registration-platform/internal/services"
)

// maxImageSize caps uploaded event images at 10MB
const maxImageSize = 10 << 20

// EventHandler handles event catalog and category endpoints
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// ListEvents handles GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListEvents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// GetEvent handles GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// BrowseCompetitions handles GET /api/competitions
func (h *EventHandler) BrowseCompetitions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := services.EventBrowseFilters{
		Sort:     query.Get("sort"),
		Category: query.Get("category"),
		Search:   query.Get("search"),
		DateFrom: query.Get("date_from"),
		DateTo:   query.Get("date_to"),
	}
	if raw := query.Get("category_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filters.CategoryID = id
		}
	}

	events, err := h.eventService.BrowseCompetitions(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"competitions": events,
		"count":        len(events),
	})
}

// CompetitionsCalendar handles GET /api/competitions/calendar
func (h *EventHandler) CompetitionsCalendar(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	month := query.Get("month")
	year := 0
	if raw := query.Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: year must be a number", models.ErrInvalidInput))
			return
		}
		year = parsed
	}

	events, err := h.eventService.CompetitionsCalendar(r.Context(), month, year)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"competitions": events,
		"count":        len(events),
	})
}

// CreateEvent handles POST /api/events (admin, multipart form)
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	req, image, err := parseEventForm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error()))
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), req, image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /api/events/{id} (admin, multipart form)
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req, image, err := parseEventForm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error()))
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), eventID, req, image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/events/{id} (admin)
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), eventID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// ListCategories handles GET /api/categories
func (h *EventHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.eventService.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// CreateCategory handles POST /api/categories (admin)
func (h *EventHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid JSON body", models.ErrInvalidInput))
		return
	}

	category, err := h.eventService.CreateCategory(r.Context(), req.Name, req.Slug)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// parseEventForm reads the admin create/update multipart form. Modules arrive
// comma-separated, module fees as "name:amount" pairs, and discount codes as a
// JSON array. The image file is optional.
func parseEventForm(r *http.Request) (*models.EventCreateRequest, *services.FileUpload, error) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return nil, nil, fmt.Errorf("%w: expected multipart form data", models.ErrInvalidInput)
	}

	discountCodes, err := models.ParseDiscountCodes(r.FormValue("discount_codes"))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	req := &models.EventCreateRequest{
		Title:            r.FormValue("title"),
		Date:             r.FormValue("date"),
		Time:             r.FormValue("time"),
		Location:         r.FormValue("location"),
		Description:      r.FormValue("description"),
		RegistrationOpen: parseFormBool(r.FormValue("registration_open"), true),
		Modules:          models.ParseModuleList(r.FormValue("modules")),
		ModuleAmounts:    models.ParseModuleAmounts(r.FormValue("module_amounts")),
		DiscountCodes:    discountCodes,
		Rules:            r.FormValue("rules"),
		Prizes:           r.FormValue("prizes"),
		Deadline:         r.FormValue("deadline"),
	}

	if raw := r.FormValue("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: category_id must be a number", models.ErrInvalidInput)
		}
		req.CategoryID = &id
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		// The image is optional; any other multipart error surfaces on read.
		return req, nil, nil
	}

	image := &services.FileUpload{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	return req, image, nil
}

func parseFormBool(raw string, defaultValue bool) bool {
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
