// Package contacts implements the per-user address book: CRUD, field search,
// and the upcoming-birthday filter. Every operation is scoped to the acting
// user; a contact is never visible outside its owner's account.
package contacts

import "time"

// Contact is a single address-book entry owned by exactly one user.
type Contact struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	BirthDate time.Time `json:"birth_date"`
	Extra     *string   `json:"extra,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Field names shared by validation, search, and JSON payloads.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldBirthDate = "birth_date"
	FieldID        = "id"
)

// Phone numbers are stored in E.164-ish form: 12 or 13 characters.
const (
	PhoneMinLength = 12
	PhoneMaxLength = 13
)

// searchColumns is the closed allow-list of searchable fields, mapped to
// their column names. Only values from this map ever reach a query string;
// everything else is rejected before storage is touched.
var searchColumns = map[string]string{
	FieldFirstName: "firstname",
	FieldLastName:  "lastname",
	FieldEmail:     "email",
	FieldPhone:     "phone",
}

// SearchableFields lists the fields accepted by FindByField, in a stable
// order for error messages.
var SearchableFields = []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhone}
