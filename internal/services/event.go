package services

import (
	"context"
	"fmt"
	"log"

	"event-registration-platform/internal/models"
	"event-registration-platform/internal/repositories"
)

// EventService handles event catalog business logic
type EventService struct {
	eventRepo        EventRepository
	categoryRepo     CategoryRepository
	registrationRepo RegistrationCounter
	storage          StorageService
}

// EventRepository interface for event data operations
type EventRepository interface {
	Create(ctx context.Context, req *models.EventCreateRequest) (*models.Event, error)
	GetByID(ctx context.Context, id int) (*models.Event, error)
	Update(ctx context.Context, id int, req *models.EventCreateRequest) (*models.Event, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]*models.Event, error)
	Search(ctx context.Context, filters repositories.EventSearchFilters) ([]*models.Event, error)
	ListByDatePrefix(ctx context.Context, prefix string) ([]*models.Event, error)
}

// CategoryRepository interface for category data operations
type CategoryRepository interface {
	List(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id int) (*models.Category, error)
	GetBySlugOrName(ctx context.Context, identifier string) (*models.Category, error)
	Create(ctx context.Context, name, slug string) (*models.Category, error)
}

// RegistrationCounter is the slice of registration access the catalog needs
type RegistrationCounter interface {
	CountByEvent(ctx context.Context, eventID int) (int, error)
}

// EventBrowseFilters represents the public competition browse parameters
type EventBrowseFilters struct {
	Sort       string // "new" (default), "most_registrations", "trending"
	CategoryID int
	Category   string // slug or name, resolved when CategoryID is zero
	Search     string
	DateFrom   string
	DateTo     string
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo EventRepository,
	categoryRepo CategoryRepository,
	registrationRepo RegistrationCounter,
	storage StorageService,
) *EventService {
	return &EventService{
		eventRepo:        eventRepo,
		categoryRepo:     categoryRepo,
		registrationRepo: registrationRepo,
		storage:          storage,
	}
}

// CreateEvent creates a new event, uploading the image first when present
func (s *EventService) CreateEvent(ctx context.Context, req *models.EventCreateRequest, image *FileUpload) (*models.Event, error) {
	if image != nil && image.Reader != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		req.ImageURL = url
	}
	return s.eventRepo.Create(ctx, req)
}

// UpdateEvent updates an event. A missing image keeps the stored one.
func (s *EventService) UpdateEvent(ctx context.Context, id int, req *models.EventCreateRequest, image *FileUpload) (*models.Event, error) {
	if image != nil && image.Reader != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		req.ImageURL = url
	}
	return s.eventRepo.Update(ctx, id, req)
}

// DeleteEvent removes an event; its registrations cascade with it
func (s *EventService) DeleteEvent(ctx context.Context, id int) error {
	return s.eventRepo.Delete(ctx, id)
}

// GetEvent returns one event with its registration count
func (s *EventService) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.registrationRepo.CountByEvent(ctx, id)
	if err != nil {
		log.Printf("Warning: failed to count registrations for event %d: %v", id, err)
	} else {
		event.RegistrationCount = count
	}

	return event, nil
}

// ListEvents returns all events, newest first
func (s *EventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return s.eventRepo.List(ctx)
}

// BrowseCompetitions returns events with registration counts matching the
// public browse filters
func (s *EventService) BrowseCompetitions(ctx context.Context, filters EventBrowseFilters) ([]*models.Event, error) {
	searchFilters := repositories.EventSearchFilters{
		Query:      filters.Search,
		CategoryID: filters.CategoryID,
		DateFrom:   filters.DateFrom,
		DateTo:     filters.DateTo,
		Sort:       filters.Sort,
	}

	if searchFilters.CategoryID == 0 && filters.Category != "" {
		category, err := s.categoryRepo.GetBySlugOrName(ctx, filters.Category)
		if err == nil {
			searchFilters.CategoryID = category.ID
		} else if err != models.ErrCategoryNotFound {
			return nil, err
		}
		// An unknown category filter matches nothing being filtered, same as
		// the original browse behavior.
	}

	return s.eventRepo.Search(ctx, searchFilters)
}

// CompetitionsCalendar returns events for a month ("2026-02") or a year,
// ordered by date and time
func (s *EventService) CompetitionsCalendar(ctx context.Context, month string, year int) ([]*models.Event, error) {
	prefix := ""
	switch {
	case month != "":
		prefix = month
	case year > 0:
		prefix = fmt.Sprintf("%d-", year)
	}
	return s.eventRepo.ListByDatePrefix(ctx, prefix)
}

// ListCategories returns all categories
func (s *EventService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx)
}

// CreateCategory creates a new category
func (s *EventService) CreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	if name == "" || slug == "" {
		return nil, fmt.Errorf("%w: name and slug are required", models.ErrInvalidInput)
	}
	return s.categoryRepo.Create(ctx, name, slug)
}

func (s *EventService) uploadImage(ctx context.Context, image *FileUpload) (string, error) {
	key := objectKey("events", image.Filename)

	url, err := s.storage.Upload(ctx, key, image.Reader, image.ContentType, image.Size)
	if err != nil {
		return "", fmt.Errorf("failed to upload event image: %w", err)
	}
	return url, nil
}
