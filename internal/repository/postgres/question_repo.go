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

type questionRepository struct {
	DB *sql.DB
}

// NewQuestionRepository returns a domain.QuestionRepository implemented with Postgres.
func NewQuestionRepository(db *sql.DB) domain.QuestionRepository {
	return &questionRepository{DB: db}
}

const questionColumns = `id, title, content, primary_answer, secondary_answer, difficulty, status, source, deleted, created_at, updated_at`

func (r *questionRepository) Create(ctx context.Context, q *domain.Question) error {
	query := `
		INSERT INTO questions (title, content, primary_answer, secondary_answer, difficulty, status, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		q.Title, q.Content, q.PrimaryAnswer, q.SecondaryAnswer, q.Difficulty, q.Status, q.Source, q.CreatedAt, q.UpdatedAt,
	).Scan(&q.ID)
}

func (r *questionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	q := &domain.Question{}
	err := r.DB.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id).Scan(
		&q.ID, &q.Title, &q.Content, &q.PrimaryAnswer, &q.SecondaryAnswer, &q.Difficulty, &q.Status, &q.Source, &q.Deleted, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadTags(ctx, []*domain.Question{q}); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *questionRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Question, error) {
	if len(ids) == 0 {
		return []*domain.Question{}, nil
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) ListAvailableForSession(ctx context.Context, sessionID string) ([]*domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions q
		WHERE NOT q.deleted
		  AND NOT EXISTS (
			SELECT 1 FROM session_questions sq
			WHERE sq.session_id = $1 AND sq.question_id = q.id
		  )
		ORDER BY q.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func scanQuestions(rows *sql.Rows) ([]*domain.Question, error) {
	questions := make([]*domain.Question, 0)
	for rows.Next() {
		q := &domain.Question{}
		if err := rows.Scan(&q.ID, &q.Title, &q.Content, &q.PrimaryAnswer, &q.SecondaryAnswer, &q.Difficulty, &q.Status, &q.Source, &q.Deleted, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		q.TagIDs = []string{}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// loadTags fills TagIDs for the given questions with one batch query.
func (r *questionRepository) loadTags(ctx context.Context, questions []*domain.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT question_id, tag_id FROM question_tags WHERE question_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	tagsByQuestion := make(map[string][]string)
	for rows.Next() {
		var questionID, tagID string
		if err := rows.Scan(&questionID, &tagID); err != nil {
			return err
		}
		tagsByQuestion[questionID] = append(tagsByQuestion[questionID], tagID)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, q := range questions {
		if t := tagsByQuestion[q.ID]; t != nil {
			q.TagIDs = t
		}
	}
	return nil
}

func (r *questionRepository) Update(ctx context.Context, id string, patch domain.QuestionPatch) (*domain.Question, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(col string, v interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, v)
		n++
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.PrimaryAnswer != nil {
		add("primary_answer", *patch.PrimaryAnswer)
	}
	if patch.SecondaryAnswer != nil {
		add("secondary_answer", *patch.SecondaryAnswer)
	}
	if patch.Difficulty != nil {
		add("difficulty", *patch.Difficulty)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Source != nil {
		add("source", *patch.Source)
	}
	if n == 1 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE questions SET %s
		WHERE id = $%d
		RETURNING `+questionColumns+`
	`, strings.Join(setClauses, ", "), n)
	q := &domain.Question{}
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&q.ID, &q.Title, &q.Content, &q.PrimaryAnswer, &q.SecondaryAnswer, &q.Difficulty, &q.Status, &q.Source, &q.Deleted, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadTags(ctx, []*domain.Question{q}); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *questionRepository) AssignTag(ctx context.Context, tagID string, questionIDs []string) (assigned, skipped []string, err error) {
	if len(questionIDs) == 0 {
		return []string{}, []string{}, nil
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM questions WHERE id = ANY($1)`, pq.Array(questionIDs))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	known := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, nil, err
		}
		known[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	assigned = make([]string, 0, len(questionIDs))
	skipped = make([]string, 0)
	for _, id := range questionIDs {
		if _, ok := known[id]; !ok {
			skipped = append(skipped, id)
			continue
		}
		if _, err := r.DB.ExecContext(ctx, `INSERT INTO question_tags (question_id, tag_id) VALUES ($1, $2) ON CONFLICT (question_id, tag_id) DO NOTHING`, id, tagID); err != nil {
			return nil, nil, err
		}
		assigned = append(assigned, id)
	}
	return assigned, skipped, nil
}

func (r *questionRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE questions SET deleted = $2, updated_at = NOW() WHERE id = $1`, id, deleted)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
