package contacts

import "context"

// Repository defines owner-scoped data access for contacts. Every method
// takes the owner's user ID and must never return another user's rows.
type Repository interface {
	// List returns all contacts belonging to the owner.
	List(context context.Context, ownerID string) ([]*Contact, error)

	// Get returns a single contact, or NotFound when absent or owned by
	// someone else.
	Get(context context.Context, ownerID, id string) (*Contact, error)

	// FindByColumn returns the owner's contacts whose column equals value.
	// The column must come from the searchColumns allow-list.
	FindByColumn(context context.Context, ownerID, column, value string) ([]*Contact, error)

	// Create persists a new contact.
	Create(context context.Context, contact *Contact) error

	// Update replaces every mutable field of an owned contact. NotFound when
	// the row is absent or owned by someone else.
	Update(context context.Context, contact *Contact) error

	// Delete removes an owned contact. NotFound when the row is absent or
	// owned by someone else.
	Delete(context context.Context, ownerID, id string) error
}
