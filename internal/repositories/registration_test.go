package repositories

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"event-registration-platform/internal/database"
	"event-registration-platform/internal/models"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the test database and runs migrations. Tests are
// skipped when TEST_DATABASE_URL is not set.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration tests")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Skipf("Failed to connect to test database: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("Failed to ping test database: %v", err)
	}

	migrator := database.NewMigrator(db)
	if err := migrator.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM registration_members")
		db.Exec("DELETE FROM event_registrations")
		db.Exec("DELETE FROM events")
		db.Close()
	})

	return db
}

func createTestEvent(t *testing.T, db *sql.DB) int {
	t.Helper()

	repo := NewEventRepository(db)
	event, err := repo.Create(context.Background(), &models.EventCreateRequest{
		Title:            "Hack2026",
		Date:             "2026-02-14",
		Time:             "09:00",
		Location:         "Main Auditorium",
		RegistrationOpen: true,
		Modules:          []string{"AI", "Web"},
		ModuleAmounts:    map[string]int{"AI": 500},
		DiscountCodes: []models.DiscountCode{
			{Code: "EARLY", Module: "AI", Amount: 100},
		},
	})
	require.NoError(t, err)
	return event.ID
}

func testRegistrationRequest(teamName, email string) *models.RegistrationCreateRequest {
	return &models.RegistrationCreateRequest{
		TeamName: teamName,
		Members: []models.TeamMember{
			{Name: "Alice", Email: email, UniversityName: "Test University"},
		},
		Modules: []string{"AI"},
	}
}

func TestRegistrationRepositoryCreate(t *testing.T) {
	db := setupTestDB(t)
	eventID := createTestEvent(t, db)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	registration, err := repo.Create(ctx, eventID, testRegistrationRequest("Foo", "a@x.com"))
	require.NoError(t, err)

	assert.NotEmpty(t, registration.PublicID)
	assert.Equal(t, "Foo", registration.TeamName)
	assert.Equal(t, models.PaymentPending, registration.PaymentStatus)
	assert.Nil(t, registration.PaymentSubmittedAt)

	// The unique index catches the duplicate even with different casing
	_, err = repo.Create(ctx, eventID, testRegistrationRequest("FOO", "b@x.com"))
	assert.ErrorIs(t, err, models.ErrDuplicateTeamName)

	_, err = repo.Create(ctx, eventID, testRegistrationRequest("Bar", "A@X.COM"))
	assert.ErrorIs(t, err, models.ErrDuplicateMemberEmail)
}

func TestRegistrationRepositoryCreateDuplicateEmailsWithinTeam(t *testing.T) {
	db := setupTestDB(t)
	eventID := createTestEvent(t, db)
	repo := NewRegistrationRepository(db)

	req := testRegistrationRequest("Foo", "a@x.com")
	req.Members = append(req.Members, models.TeamMember{Name: "Bob", Email: "a@x.com"})

	// The member-registry primary key maps to the same conflict error
	_, err := repo.Create(context.Background(), eventID, req)
	assert.ErrorIs(t, err, models.ErrDuplicateMemberEmail)
}

func TestRegistrationRepositoryLookups(t *testing.T) {
	db := setupTestDB(t)
	eventID := createTestEvent(t, db)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, eventID, testRegistrationRequest("Foo", "a@x.com"))
	require.NoError(t, err)

	byTeam, err := repo.GetByTeamName(ctx, eventID, "foo")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byTeam.ID)

	byEmail, err := repo.GetByMemberEmail(ctx, eventID, "A@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.GetByTeamName(ctx, eventID, "Ghost")
	assert.ErrorIs(t, err, models.ErrRegistrationNotFound)

	taken, err := repo.TeamNameTaken(ctx, eventID, "FOO")
	require.NoError(t, err)
	assert.True(t, taken)

	registered, err := repo.EmailRegistered(ctx, eventID, "a@x.com")
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestRegistrationRepositorySubmitPayment(t *testing.T) {
	db := setupTestDB(t)
	eventID := createTestEvent(t, db)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, eventID, testRegistrationRequest("Foo", "a@x.com"))
	require.NoError(t, err)

	updated, err := repo.SubmitPayment(ctx, created.ID, "https://storage.local/receipt.png", "TX1", []models.DiscountCodeUse{
		{Module: "AI", Code: "EARLY"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentSubmitted, updated.PaymentStatus)
	assert.Equal(t, "TX1", updated.TransactionID)
	require.NotNil(t, updated.PaymentSubmittedAt)
	require.Len(t, updated.DiscountCodesUsed, 1)

	// Approved registrations refuse further submissions
	_, err = repo.UpdateStatus(ctx, eventID, "Foo", models.PaymentApproved)
	require.NoError(t, err)

	_, err = repo.SubmitPayment(ctx, created.ID, "https://storage.local/receipt2.png", "TX2", nil)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestRegistrationRepositoryUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	eventID := createTestEvent(t, db)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, eventID, testRegistrationRequest("Foo", "a@x.com"))
	require.NoError(t, err)

	// Pending registrations cannot be decided
	_, err = repo.UpdateStatus(ctx, eventID, "Foo", models.PaymentApproved)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = repo.SubmitPayment(ctx, created.ID, "https://storage.local/receipt.png", "TX1", nil)
	require.NoError(t, err)

	approved, err := repo.UpdateStatus(ctx, eventID, "Foo", models.PaymentApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentApproved, approved.PaymentStatus)

	// Flipping the decision is refused, repeating it is not
	_, err = repo.UpdateStatus(ctx, eventID, "Foo", models.PaymentRejected)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = repo.UpdateStatus(ctx, eventID, "Foo", models.PaymentApproved)
	assert.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, eventID, "Ghost", models.PaymentApproved)
	assert.ErrorIs(t, err, models.ErrRegistrationNotFound)
}

func TestRegistrationRepositoryListByEvent(t *testing.T) {
	db := setupTestDB(t)
	eventID := createTestEvent(t, db)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, eventID, testRegistrationRequest("First", "first@x.com"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, eventID, testRegistrationRequest("Second", "second@x.com"))
	require.NoError(t, err)

	registrations, err := repo.ListByEvent(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, registrations, 2)

	// Newest first
	assert.Equal(t, "Second", registrations[0].TeamName)
	assert.Equal(t, "First", registrations[1].TeamName)

	counts, err := repo.CountByModule(ctx, eventID, []string{"AI", "Web"})
	require.NoError(t, err)
	assert.Equal(t, 2, counts["AI"])
	assert.Equal(t, 0, counts["Web"])
}
