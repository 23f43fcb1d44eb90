package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/school-portal/internal/domain"
)

// ContactRepository defines persistence access for directory entries.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	Update(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	List(ctx context.Context) ([]domain.Contact, error)
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a Postgres-backed implementation.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (name, email, phone, kind, notes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Kind,
		contact.Notes,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	const query = `
        UPDATE contacts SET name=$1, email=$2, phone=$3, kind=$4, notes=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Kind,
		contact.Notes,
		contact.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	const query = `
        SELECT id, name, email, phone, kind, notes, created_at, updated_at
        FROM contacts WHERE id=$1`

	var contact domain.Contact
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&contact.ID,
		&contact.Name,
		&contact.Email,
		&contact.Phone,
		&contact.Kind,
		&contact.Notes,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) List(ctx context.Context) ([]domain.Contact, error) {
	const query = `
        SELECT id, name, email, phone, kind, notes, created_at, updated_at
        FROM contacts ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var contact domain.Contact
		if err := rows.Scan(
			&contact.ID,
			&contact.Name,
			&contact.Email,
			&contact.Phone,
			&contact.Kind,
			&contact.Notes,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}
