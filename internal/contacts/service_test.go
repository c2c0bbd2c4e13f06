package contacts

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontaktapp/kontakt/internal/platform/apperr"
)

// fakeRepository is an in-memory Repository honoring the owner scoping
// contract: rows of other owners behave as if they do not exist.
type fakeRepository struct {
	contacts map[string]*Contact // keyed by ID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{contacts: make(map[string]*Contact)}
}

func (repo *fakeRepository) List(_ context.Context, ownerID string) ([]*Contact, error) {
	owned := make([]*Contact, 0)
	for _, contact := range repo.contacts {
		if contact.OwnerID == ownerID {
			copied := *contact
			owned = append(owned, &copied)
		}
	}
	return owned, nil
}

func (repo *fakeRepository) Get(_ context.Context, ownerID, id string) (*Contact, error) {
	contact, ok := repo.contacts[id]
	if !ok || contact.OwnerID != ownerID {
		return nil, apperr.NotFound("Contact")
	}
	copied := *contact
	return &copied, nil
}

func (repo *fakeRepository) FindByColumn(_ context.Context, ownerID, column, value string) ([]*Contact, error) {
	matched := make([]*Contact, 0)
	for _, contact := range repo.contacts {
		if contact.OwnerID != ownerID {
			continue
		}
		var fieldValue string
		switch column {
		case "firstname":
			fieldValue = contact.FirstName
		case "lastname":
			fieldValue = contact.LastName
		case "email":
			fieldValue = contact.Email
		case "phone":
			fieldValue = contact.Phone
		}
		if fieldValue == value {
			copied := *contact
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

func (repo *fakeRepository) Create(_ context.Context, contact *Contact) error {
	copied := *contact
	repo.contacts[contact.ID] = &copied
	return nil
}

func (repo *fakeRepository) Update(_ context.Context, contact *Contact) error {
	existing, ok := repo.contacts[contact.ID]
	if !ok || existing.OwnerID != contact.OwnerID {
		return apperr.NotFound("Contact")
	}
	copied := *contact
	repo.contacts[contact.ID] = &copied
	return nil
}

func (repo *fakeRepository) Delete(_ context.Context, ownerID, id string) error {
	existing, ok := repo.contacts[id]
	if !ok || existing.OwnerID != ownerID {
		return apperr.NotFound("Contact")
	}
	delete(repo.contacts, id)
	return nil
}

func newTestService() (*Service, *fakeRepository) {
	repo := newFakeRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger), repo
}

func validInput() ContactInput {
	return ContactInput{
		FirstName: "Olha",
		LastName:  "Shevchenko",
		Email:     "olha@example.com",
		Phone:     "+380501234567",
		BirthDate: time.Date(1991, time.March, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestService_CRUDFlow(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	const owner = "owner-1"

	created, err := service.Create(ctx, owner, validInput())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, owner, created.OwnerID)

	fetched, err := service.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Olha", fetched.FirstName)

	updatedInput := validInput()
	updatedInput.FirstName = "Olena"
	updated, err := service.Update(ctx, owner, created.ID, updatedInput)
	require.NoError(t, err)
	assert.Equal(t, "Olena", updated.FirstName)

	deleted, err := service.Delete(ctx, owner, created.ID)
	require.NoError(t, err)
	// Delete echoes the record's prior state.
	assert.Equal(t, "Olena", deleted.FirstName)

	_, err = service.Get(ctx, owner, created.ID)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "NOT_FOUND", appError.Code)
}

func TestService_OwnershipIsolation(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	mine, err := service.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	otherInput := validInput()
	otherInput.Email = "taras@example.com"
	_, err = service.Create(ctx, "owner-2", otherInput)
	require.NoError(t, err)

	t.Run("get", func(t *testing.T) {
		_, err := service.Get(ctx, "owner-2", mine.ID)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("update", func(t *testing.T) {
		_, err := service.Update(ctx, "owner-2", mine.ID, validInput())
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("delete", func(t *testing.T) {
		_, err := service.Delete(ctx, "owner-2", mine.ID)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

		// The row is untouched for its real owner.
		_, err = service.Get(ctx, "owner-1", mine.ID)
		assert.NoError(t, err)
	})

	t.Run("list", func(t *testing.T) {
		contacts, err := service.List(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, contacts, 1)
		assert.Equal(t, mine.ID, contacts[0].ID)
	})

	t.Run("search", func(t *testing.T) {
		contacts, err := service.FindByField(ctx, "owner-2", FieldFirstName, "Olha")
		require.NoError(t, err)
		require.Len(t, contacts, 1)
		assert.NotEqual(t, mine.ID, contacts[0].ID)
	})
}

func TestService_FindByField(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	const owner = "owner-1"

	_, err := service.Create(ctx, owner, validInput())
	require.NoError(t, err)

	tests := []struct {
		name    string
		field   string
		value   string
		matches int
	}{
		{"first_name_hit", FieldFirstName, "Olha", 1},
		{"last_name_hit", FieldLastName, "Shevchenko", 1},
		{"email_hit", FieldEmail, "olha@example.com", 1},
		{"phone_hit", FieldPhone, "+380501234567", 1},
		{"first_name_miss", FieldFirstName, "Nobody", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contacts, err := service.FindByField(ctx, owner, tt.field, tt.value)
			require.NoError(t, err)
			assert.Len(t, contacts, tt.matches)
		})
	}

	t.Run("rejected_fields", func(t *testing.T) {
		for _, field := range []string{FieldBirthDate, "ownerid", "id; DROP TABLE", ""} {
			_, err := service.FindByField(ctx, owner, field, "x")
			appError := apperr.As(err)
			require.NotNil(t, appError, "field %q must be rejected", field)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
			assert.EqualError(t, appError, "Invalid field name")
		}
	})
}

func TestService_Create_Validation(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*ContactInput)
	}{
		{"missing_first_name", func(input *ContactInput) { input.FirstName = "" }},
		{"bad_email", func(input *ContactInput) { input.Email = "not-an-email" }},
		{"phone_too_short", func(input *ContactInput) { input.Phone = "+38050123" }},
		{"phone_too_long", func(input *ContactInput) { input.Phone = "+3805012345678" }},
		{"birth_date_today", func(input *ContactInput) { input.BirthDate = time.Now() }},
		{"birth_date_future", func(input *ContactInput) { input.BirthDate = time.Now().AddDate(1, 0, 0) }},
		{"birth_date_missing", func(input *ContactInput) { input.BirthDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := service.Create(ctx, "owner-1", input)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		})
	}
}

func TestService_UpcomingBirthdays(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	const owner = "owner-1"

	if time.Now().AddDate(0, 0, 2).Year() != time.Now().Year() {
		t.Skip("window crosses the year boundary; the filter never rolls over")
	}

	soon := validInput()
	soonDay := time.Now().AddDate(0, 0, 2)
	soon.BirthDate = time.Date(1990, soonDay.Month(), soonDay.Day(), 0, 0, 0, 0, time.UTC)
	_, err := service.Create(ctx, owner, soon)
	require.NoError(t, err)

	past := validInput()
	past.Email = "past@example.com"
	pastDay := time.Now().AddDate(0, 0, -10)
	past.BirthDate = time.Date(1990, pastDay.Month(), pastDay.Day(), 0, 0, 0, 0, time.UTC)
	_, err = service.Create(ctx, owner, past)
	require.NoError(t, err)

	upcoming, err := service.UpcomingBirthdays(ctx, owner)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "olha@example.com", upcoming[0].Email)
}
