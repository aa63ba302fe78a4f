package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"prepdesk/internal/domain"
)

type topicRepository struct {
	DB *sql.DB
}

// NewTopicRepository returns a domain.TopicRepository implemented with Postgres.
func NewTopicRepository(db *sql.DB) domain.TopicRepository {
	return &topicRepository{DB: db}
}

func (r *topicRepository) Create(ctx context.Context, t *domain.Topic) error {
	query := `
		INSERT INTO topics (title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, t.Title, t.Description, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
}

func (r *topicRepository) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	query := `
		SELECT id, title, description, deleted, created_at, updated_at
		FROM topics
		WHERE id = $1
	`
	t := &domain.Topic{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Title, &t.Description, &t.Deleted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *topicRepository) List(ctx context.Context, includeDeleted bool) ([]*domain.Topic, error) {
	query := `
		SELECT id, title, description, deleted, created_at, updated_at
		FROM topics
	`
	if !includeDeleted {
		query += ` WHERE NOT deleted`
	}
	query += ` ORDER BY title`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	topics := make([]*domain.Topic, 0)
	for rows.Next() {
		t := &domain.Topic{}
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Deleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (r *topicRepository) Update(ctx context.Context, id string, title, description *string) (*domain.Topic, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *title)
		n++
	}
	if description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *description)
		n++
	}
	if n == 1 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE topics SET %s
		WHERE id = $%d
		RETURNING id, title, description, deleted, created_at, updated_at
	`, strings.Join(setClauses, ", "), n)
	t := &domain.Topic{}
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.Title, &t.Description, &t.Deleted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *topicRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE topics SET deleted = $2, updated_at = NOW() WHERE id = $1`, id, deleted)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
