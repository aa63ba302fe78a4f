package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"prepdesk/internal/domain"

	"github.com/lib/pq"
)

type tagRepository struct {
	DB *sql.DB
}

// NewTagRepository returns a domain.TagRepository implemented with Postgres.
func NewTagRepository(db *sql.DB) domain.TagRepository {
	return &tagRepository{DB: db}
}

func (r *tagRepository) Create(ctx context.Context, t *domain.Tag) error {
	query := `
		INSERT INTO tags (title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, t.Title, t.Description, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return fmt.Errorf("tag title already exists: %s", t.Title)
		}
		return err
	}
	return nil
}

func (r *tagRepository) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	query := `
		SELECT id, title, description, deleted, created_at, updated_at
		FROM tags
		WHERE id = $1
	`
	t := &domain.Tag{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Title, &t.Description, &t.Deleted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *tagRepository) List(ctx context.Context, includeDeleted bool) ([]*domain.Tag, error) {
	query := `
		SELECT id, title, description, deleted, created_at, updated_at
		FROM tags
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
	return scanTags(rows)
}

func (r *tagRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Tag, error) {
	if len(ids) == 0 {
		return []*domain.Tag{}, nil
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, description, deleted, created_at, updated_at
		FROM tags
		WHERE id = ANY($1)
		ORDER BY title`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func (r *tagRepository) ListByTopicID(ctx context.Context, topicID string) ([]*domain.Tag, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.title, t.description, t.deleted, t.created_at, t.updated_at
		FROM tags t
		JOIN topic_tags tt ON tt.tag_id = t.id
		WHERE tt.topic_id = $1
		ORDER BY t.title`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func scanTags(rows *sql.Rows) ([]*domain.Tag, error) {
	tags := make([]*domain.Tag, 0)
	for rows.Next() {
		t := &domain.Tag{}
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Deleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *tagRepository) Update(ctx context.Context, id string, title, description *string) (*domain.Tag, error) {
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
		UPDATE tags SET %s
		WHERE id = $%d
		RETURNING id, title, description, deleted, created_at, updated_at
	`, strings.Join(setClauses, ", "), n)
	t := &domain.Tag{}
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.Title, &t.Description, &t.Deleted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return nil, fmt.Errorf("tag title already exists")
		}
		return nil, err
	}
	return t, nil
}

func (r *tagRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE tags SET deleted = $2, updated_at = NOW() WHERE id = $1`, id, deleted)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetTopicTags replaces the topic's tag set. Delete and inserts commit
// together; a failed insert leaves the old edges in place.
func (r *tagRepository) SetTopicTags(ctx context.Context, topicID string, tagIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM topic_tags WHERE topic_id = $1`, topicID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO topic_tags (topic_id, tag_id) VALUES ($1, $2) ON CONFLICT (topic_id, tag_id) DO NOTHING`, topicID, tagID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
