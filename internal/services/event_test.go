package services

import (
	"context"
	"strings"
	"testing"

	"event-registration-platform/internal/models"
	"event-registration-platform/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock EventRepository for testing
type mockEventRepository struct {
	events      map[int]*models.Event
	nextID      int
	lastFilters repositories.EventSearchFilters
	lastPrefix  string
}

func newMockEventRepository() *mockEventRepository {
	return &mockEventRepository{
		events: make(map[int]*models.Event),
		nextID: 1,
	}
}

func (m *mockEventRepository) Create(ctx context.Context, req *models.EventCreateRequest) (*models.Event, error) {
	event := &models.Event{
		ID:               m.nextID,
		Title:            req.Title,
		Date:             req.Date,
		Time:             req.Time,
		Location:         req.Location,
		ImageURL:         req.ImageURL,
		RegistrationOpen: req.RegistrationOpen,
		Modules:          req.Modules,
		ModuleAmounts:    req.ModuleAmounts,
		DiscountCodes:    req.DiscountCodes,
		CategoryID:       req.CategoryID,
	}
	m.events[m.nextID] = event
	m.nextID++
	return event, nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	event, exists := m.events[id]
	if !exists {
		return nil, models.ErrEventNotFound
	}
	return event, nil
}

func (m *mockEventRepository) Update(ctx context.Context, id int, req *models.EventCreateRequest) (*models.Event, error) {
	event, exists := m.events[id]
	if !exists {
		return nil, models.ErrEventNotFound
	}
	event.Title = req.Title
	event.Date = req.Date
	if req.ImageURL != "" {
		event.ImageURL = req.ImageURL
	}
	return event, nil
}

func (m *mockEventRepository) Delete(ctx context.Context, id int) error {
	if _, exists := m.events[id]; !exists {
		return models.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *mockEventRepository) List(ctx context.Context) ([]*models.Event, error) {
	var result []*models.Event
	for _, event := range m.events {
		result = append(result, event)
	}
	return result, nil
}

func (m *mockEventRepository) Search(ctx context.Context, filters repositories.EventSearchFilters) ([]*models.Event, error) {
	m.lastFilters = filters
	return m.List(ctx)
}

func (m *mockEventRepository) ListByDatePrefix(ctx context.Context, prefix string) ([]*models.Event, error) {
	m.lastPrefix = prefix
	return m.List(ctx)
}

// Mock CategoryRepository for testing
type mockCategoryRepository struct {
	categories map[string]*models.Category
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	var result []*models.Category
	for _, category := range m.categories {
		result = append(result, category)
	}
	return result, nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	for _, category := range m.categories {
		if category.ID == id {
			return category, nil
		}
	}
	return nil, models.ErrCategoryNotFound
}

func (m *mockCategoryRepository) GetBySlugOrName(ctx context.Context, identifier string) (*models.Category, error) {
	category, exists := m.categories[identifier]
	if !exists {
		return nil, models.ErrCategoryNotFound
	}
	return category, nil
}

func (m *mockCategoryRepository) Create(ctx context.Context, name, slug string) (*models.Category, error) {
	category := &models.Category{ID: len(m.categories) + 1, Name: name, Slug: slug}
	m.categories[slug] = category
	return category, nil
}

type mockRegistrationCounter struct {
	counts map[int]int
}

func (m *mockRegistrationCounter) CountByEvent(ctx context.Context, eventID int) (int, error) {
	return m.counts[eventID], nil
}

func newEventFixture() (*EventService, *mockEventRepository, *mockCategoryRepository) {
	eventRepo := newMockEventRepository()
	categoryRepo := &mockCategoryRepository{categories: make(map[string]*models.Category)}
	counter := &mockRegistrationCounter{counts: map[int]int{1: 7}}
	service := NewEventService(eventRepo, categoryRepo, counter, NewMockStorageService())
	return service, eventRepo, categoryRepo
}

func TestGetEventWithRegistrationCount(t *testing.T) {
	service, eventRepo, _ := newEventFixture()
	ctx := context.Background()

	_, err := eventRepo.Create(ctx, &models.EventCreateRequest{Title: "Hack2026", Date: "2026-02-14"})
	require.NoError(t, err)

	event, err := service.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, event.RegistrationCount)

	_, err = service.GetEvent(ctx, 99)
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestCreateEventWithImage(t *testing.T) {
	service, _, _ := newEventFixture()

	image := &FileUpload{
		Reader:      strings.NewReader("png bytes"),
		Filename:    "poster.PNG",
		ContentType: "image/png",
		Size:        9,
	}

	event, err := service.CreateEvent(context.Background(), &models.EventCreateRequest{
		Title: "Hack2026",
		Date:  "2026-02-14",
	}, image)
	require.NoError(t, err)

	assert.Contains(t, event.ImageURL, "https://storage.local/events/")
	assert.Contains(t, event.ImageURL, ".png")
}

func TestBrowseCompetitionsResolvesCategory(t *testing.T) {
	service, eventRepo, categoryRepo := newEventFixture()
	ctx := context.Background()

	category, err := categoryRepo.Create(ctx, "Technical", "technical")
	require.NoError(t, err)

	_, err = service.BrowseCompetitions(ctx, EventBrowseFilters{Category: "technical", Sort: "trending"})
	require.NoError(t, err)
	assert.Equal(t, category.ID, eventRepo.lastFilters.CategoryID)
	assert.Equal(t, "trending", eventRepo.lastFilters.Sort)

	// An unknown category name is ignored rather than failing the browse
	_, err = service.BrowseCompetitions(ctx, EventBrowseFilters{Category: "nonsense"})
	require.NoError(t, err)
	assert.Equal(t, 0, eventRepo.lastFilters.CategoryID)
}

func TestCompetitionsCalendarPrefix(t *testing.T) {
	service, eventRepo, _ := newEventFixture()
	ctx := context.Background()

	_, err := service.CompetitionsCalendar(ctx, "2026-02", 0)
	require.NoError(t, err)
	assert.Equal(t, "2026-02", eventRepo.lastPrefix)

	_, err = service.CompetitionsCalendar(ctx, "", 2026)
	require.NoError(t, err)
	assert.Equal(t, "2026-", eventRepo.lastPrefix)

	_, err = service.CompetitionsCalendar(ctx, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "", eventRepo.lastPrefix)
}

func TestCreateCategoryValidation(t *testing.T) {
	service, _, _ := newEventFixture()

	_, err := service.CreateCategory(context.Background(), "", "technical")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	category, err := service.CreateCategory(context.Background(), "Technical", "technical")
	require.NoError(t, err)
	assert.Equal(t, "technical", category.Slug)
}
