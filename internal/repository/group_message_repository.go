package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/school-portal/internal/domain"
)

// GroupMessageRepository defines persistence access for group posts.
type GroupMessageRepository interface {
	Create(ctx context.Context, message *domain.GroupMessage) error
	ListByGroup(ctx context.Context, groupName string, limit int) ([]domain.GroupMessage, error)
}

type groupMessageRepository struct {
	pool *pgxpool.Pool
}

// NewGroupMessageRepository returns a Postgres-backed implementation.
func NewGroupMessageRepository(pool *pgxpool.Pool) GroupMessageRepository {
	return &groupMessageRepository{pool: pool}
}

func (r *groupMessageRepository) Create(ctx context.Context, message *domain.GroupMessage) error {
	const query = `
        INSERT INTO group_messages (group_name, author_id, author_role, body)
        VALUES ($1, $2, $3, $4)
        RETURNING id, posted_at`

	return r.pool.QueryRow(ctx, query,
		message.GroupName,
		message.AuthorID,
		message.AuthorRole,
		message.Body,
	).Scan(&message.ID, &message.PostedAt)
}

func (r *groupMessageRepository) ListByGroup(ctx context.Context, groupName string, limit int) ([]domain.GroupMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const query = `
        SELECT id, group_name, author_id, author_role, body, posted_at
        FROM group_messages WHERE group_name=$1
        ORDER BY posted_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, groupName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.GroupMessage
	for rows.Next() {
		var message domain.GroupMessage
		if err := rows.Scan(
			&message.ID,
			&message.GroupName,
			&message.AuthorID,
			&message.AuthorRole,
			&message.Body,
			&message.PostedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
