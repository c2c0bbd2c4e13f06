package contacts

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kontaktapp/kontakt/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const contactColumns = "id, ownerid, firstname, lastname, email, phone, birthdate, extra, createdat, updatedat"

func scanContact(row pgx.Row) (*Contact, error) {
	contact := &Contact{}
	err := row.Scan(
		&contact.ID,
		&contact.OwnerID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.Phone,
		&contact.BirthDate,
		&contact.Extra,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func collectContacts(rows pgx.Rows) ([]*Contact, error) {
	defer rows.Close()

	contacts := make([]*Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func (repository *PostgresRepository) List(context context.Context, ownerID string) ([]*Contact, error) {
	const query = `
		SELECT ` + contactColumns + `
		FROM contacts.card
		WHERE ownerid = $1
		ORDER BY id ASC`

	rows, err := repository.db.Query(context, query, ownerID)
	if err != nil {
		return nil, dberr.Wrap(err, "Contacts")
	}

	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, dberr.Wrap(err, "Contacts")
	}
	return contacts, nil
}

func (repository *PostgresRepository) Get(context context.Context, ownerID, id string) (*Contact, error) {
	const query = `
		SELECT ` + contactColumns + `
		FROM contacts.card
		WHERE ownerid = $1 AND id = $2`

	contact, err := scanContact(repository.db.QueryRow(context, query, ownerID, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Contact")
	}
	return contact, nil
}

// FindByColumn trusts its column argument: the service layer only passes
// values from the searchColumns allow-list, never client input.
func (repository *PostgresRepository) FindByColumn(context context.Context, ownerID, column, value string) ([]*Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts.card
		WHERE ownerid = $1 AND ` + column + ` = $2
		ORDER BY id ASC`

	rows, err := repository.db.Query(context, query, ownerID, value)
	if err != nil {
		return nil, dberr.Wrap(err, "Contacts")
	}

	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, dberr.Wrap(err, "Contacts")
	}
	return contacts, nil
}

func (repository *PostgresRepository) Create(context context.Context, contact *Contact) error {
	const query = `
		INSERT INTO contacts.card (
			id, ownerid, firstname, lastname, email, phone, birthdate, extra, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	_, err := repository.db.Exec(context, query,
		contact.ID,
		contact.OwnerID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.BirthDate,
		contact.Extra,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Contact")
	}
	return nil
}

func (repository *PostgresRepository) Update(context context.Context, contact *Contact) error {
	const query = `
		UPDATE contacts.card
		SET firstname = $3, lastname = $4, email = $5, phone = $6, birthdate = $7, extra = $8, updatedat = $9
		WHERE ownerid = $1 AND id = $2`

	contact.UpdatedAt = time.Now()

	tag, err := repository.db.Exec(context, query,
		contact.OwnerID,
		contact.ID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.BirthDate,
		contact.Extra,
		contact.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Contact")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Contact")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, ownerID, id string) error {
	const query = "DELETE FROM contacts.card WHERE ownerid = $1 AND id = $2"

	tag, err := repository.db.Exec(context, query, ownerID, id)
	if err != nil {
		return dberr.Wrap(err, "Contact")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Contact")
	}
	return nil
}
