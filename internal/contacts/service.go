package contacts

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kontaktapp/kontakt/internal/platform/apperr"
	"github.com/kontaktapp/kontakt/internal/platform/validate"
	"github.com/kontaktapp/kontakt/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ContactInput carries the full set of mutable fields. Create and Update both
// take the whole thing; partial updates are not supported.
type ContactInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	BirthDate time.Time
	Extra     *string
}

func (service *Service) List(context context.Context, ownerID string) ([]*Contact, error) {
	return service.repo.List(context, ownerID)
}

func (service *Service) Get(context context.Context, ownerID, id string) (*Contact, error) {
	return service.repo.Get(context, ownerID, id)
}

// FindByField searches the owner's contacts by exact match on one of the
// allow-listed fields. Anything outside the list is rejected up front.
func (service *Service) FindByField(context context.Context, ownerID, field, value string) ([]*Contact, error) {
	column, ok := searchColumns[field]
	if !ok {
		return nil, apperr.ValidationError("Invalid field name", apperr.FieldError{
			Field:   field,
			Message: "Must be one of: " + strings.Join(SearchableFields, ", "),
		})
	}
	return service.repo.FindByColumn(context, ownerID, column, value)
}

// UpcomingBirthdays returns the owner's contacts with a birthday in the next
// seven days.
func (service *Service) UpcomingBirthdays(context context.Context, ownerID string) ([]*Contact, error) {
	contacts, err := service.repo.List(context, ownerID)
	if err != nil {
		return nil, err
	}
	return UpcomingBirthdays(contacts, time.Now()), nil
}

func (service *Service) Create(context context.Context, ownerID string, input ContactInput) (*Contact, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	contact := &Contact{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		BirthDate: input.BirthDate,
		Extra:     input.Extra,
	}

	if err := service.repo.Create(context, contact); err != nil {
		return nil, err
	}

	service.logger.Info("contact_created",
		slog.String("contact_id", contact.ID),
		slog.String("owner_id", ownerID),
	)
	return contact, nil
}

// Update replaces every field of an owned contact with the given input.
func (service *Service) Update(context context.Context, ownerID, id string, input ContactInput) (*Contact, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	contact, err := service.repo.Get(context, ownerID, id)
	if err != nil {
		return nil, err
	}

	contact.FirstName = input.FirstName
	contact.LastName = input.LastName
	contact.Email = input.Email
	contact.Phone = input.Phone
	contact.BirthDate = input.BirthDate
	contact.Extra = input.Extra

	if err := service.repo.Update(context, contact); err != nil {
		return nil, err
	}

	service.logger.Info("contact_updated",
		slog.String("contact_id", id),
		slog.String("owner_id", ownerID),
	)
	return contact, nil
}

// Delete removes an owned contact and returns its prior state.
func (service *Service) Delete(context context.Context, ownerID, id string) (*Contact, error) {
	contact, err := service.repo.Get(context, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := service.repo.Delete(context, ownerID, id); err != nil {
		return nil, err
	}

	service.logger.Warn("contact_deleted",
		slog.String("contact_id", id),
		slog.String("owner_id", ownerID),
	)
	return contact, nil
}

func validateInput(input ContactInput) error {
	validator := &validate.Validator{}

	validator.Required(FieldFirstName, input.FirstName).
		MaxLen(FieldFirstName, input.FirstName, 100).
		Required(FieldLastName, input.LastName).
		MaxLen(FieldLastName, input.LastName, 100).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPhone, input.Phone).
		LenBetween(FieldPhone, input.Phone, PhoneMinLength, PhoneMaxLength)

	if input.BirthDate.IsZero() {
		validator.Custom(FieldBirthDate, true, "This field is required")
	} else {
		validator.PastDate(FieldBirthDate, input.BirthDate, time.Now())
	}

	return validator.Err()
}
