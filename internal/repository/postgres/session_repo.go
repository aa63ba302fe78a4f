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

// SessionRepository persists the session aggregate. Question-set mutations
// run in a transaction so edge membership and total_question_count always
// change together.
type SessionRepository struct {
	DB *sql.DB
}

// NewSessionRepository returns a domain.SessionRepository implemented with Postgres.
func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &SessionRepository{DB: db}
}

const sessionColumns = `id, title, description, thumbnail_url, topic_id, difficulty, duration_minutes, source, total_question_count, deleted, created_at, updated_at`

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sessions (title, description, topic_id, difficulty, duration_minutes, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, query,
		s.Title, s.Description, s.TopicID, s.Difficulty, s.DurationMinutes, s.Source, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID); err != nil {
		return err
	}
	for _, tagID := range s.TagIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO session_tags (session_id, tag_id) VALUES ($1, $2) ON CONFLICT (session_id, tag_id) DO NOTHING`, s.ID, tagID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	// Repeatable-read snapshot: the row, the tag edges and the question edges
	// must come from one committed state, or a concurrent attach/detach makes
	// total_question_count and question_ids disagree in the response.
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	s := &domain.Session{}
	var thumbNull sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id).Scan(
		&s.ID, &s.Title, &s.Description, &thumbNull, &s.TopicID, &s.Difficulty, &s.DurationMinutes,
		&s.Source, &s.TotalQuestionCount, &s.Deleted, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if thumbNull.Valid {
		s.ThumbnailURL = &thumbNull.String
	}
	s.TagIDs = []string{}
	s.QuestionIDs = []string{}

	tagRows, err := tx.QueryContext(ctx, `SELECT tag_id FROM session_tags WHERE session_id = $1 ORDER BY tag_id`, id)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tagID string
		if err := tagRows.Scan(&tagID); err != nil {
			return nil, err
		}
		s.TagIDs = append(s.TagIDs, tagID)
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	qRows, err := tx.QueryContext(ctx, `SELECT question_id FROM session_questions WHERE session_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer qRows.Close()
	for qRows.Next() {
		var questionID string
		if err := qRows.Scan(&questionID); err != nil {
			return nil, err
		}
		s.QuestionIDs = append(s.QuestionIDs, questionID)
	}
	if err := qRows.Err(); err != nil {
		return nil, err
	}
	return s, tx.Commit()
}

func (r *SessionRepository) List(ctx context.Context, filter domain.SessionFilter, p domain.PaginationParams) ([]*domain.Session, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	n := 1
	if !filter.IncludeDeleted {
		where = append(where, "NOT deleted")
	}
	if filter.Source != "" {
		where = append(where, fmt.Sprintf("source = $%d", n))
		args = append(args, filter.Source)
		n++
	}
	cond := strings.Join(where, " AND ")

	// Same snapshot discipline as GetByID: rows, edge sets and the page total
	// are read from one committed state.
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, cond, n, n+1)
	args = append(args, p.PageSize, p.Offset())
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sessions := make([]*domain.Session, 0)
	var sessionIDs []string
	for rows.Next() {
		s := &domain.Session{}
		var thumbNull sql.NullString
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &thumbNull, &s.TopicID, &s.Difficulty, &s.DurationMinutes,
			&s.Source, &s.TotalQuestionCount, &s.Deleted, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		if thumbNull.Valid {
			s.ThumbnailURL = &thumbNull.String
		}
		s.TagIDs = []string{}
		s.QuestionIDs = []string{}
		sessions = append(sessions, s)
		sessionIDs = append(sessionIDs, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(sessionIDs) == 0 {
		return sessions, total, tx.Commit()
	}

	tagRows, err := tx.QueryContext(ctx, `SELECT session_id, tag_id FROM session_tags WHERE session_id = ANY($1)`, pq.Array(sessionIDs))
	if err != nil {
		return nil, 0, err
	}
	defer tagRows.Close()
	tagsBySession := make(map[string][]string)
	for tagRows.Next() {
		var sessionID, tagID string
		if err := tagRows.Scan(&sessionID, &tagID); err != nil {
			return nil, 0, err
		}
		tagsBySession[sessionID] = append(tagsBySession[sessionID], tagID)
	}
	if err := tagRows.Err(); err != nil {
		return nil, 0, err
	}

	// question_ids must be hydrated here too: every read path promises
	// total_question_count == len(question_ids).
	qRows, err := tx.QueryContext(ctx, `SELECT session_id, question_id FROM session_questions WHERE session_id = ANY($1) ORDER BY session_id, position`, pq.Array(sessionIDs))
	if err != nil {
		return nil, 0, err
	}
	defer qRows.Close()
	questionsBySession := make(map[string][]string)
	for qRows.Next() {
		var sessionID, questionID string
		if err := qRows.Scan(&sessionID, &questionID); err != nil {
			return nil, 0, err
		}
		questionsBySession[sessionID] = append(questionsBySession[sessionID], questionID)
	}
	if err := qRows.Err(); err != nil {
		return nil, 0, err
	}

	for _, s := range sessions {
		if t := tagsBySession[s.ID]; t != nil {
			s.TagIDs = t
		}
		if q := questionsBySession[s.ID]; q != nil {
			s.QuestionIDs = q
		}
	}
	return sessions, total, tx.Commit()
}

func (r *SessionRepository) UpdateMetadata(ctx context.Context, id string, patch domain.SessionPatch) (*domain.Session, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

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
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.TopicID != nil {
		add("topic_id", *patch.TopicID)
	}
	if patch.Difficulty != nil {
		add("difficulty", *patch.Difficulty)
	}
	if patch.DurationMinutes != nil {
		add("duration_minutes", *patch.DurationMinutes)
	}
	if patch.Source != nil {
		add("source", *patch.Source)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE sessions SET %s
		WHERE id = $%d
		RETURNING id
	`, strings.Join(setClauses, ", "), n)
	var updatedID string
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if patch.TagIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_tags WHERE session_id = $1`, id); err != nil {
			return nil, err
		}
		for _, tagID := range *patch.TagIDs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO session_tags (session_id, tag_id) VALUES ($1, $2) ON CONFLICT (session_id, tag_id) DO NOTHING`, id, tagID); err != nil {
				return nil, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *SessionRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	// Restoring a never-deleted session still updates the row, so this is a
	// successful no-op rather than an error.
	result, err := r.DB.ExecContext(ctx, `UPDATE sessions SET deleted = $2, updated_at = NOW() WHERE id = $1`, id, deleted)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) AttachQuestion(ctx context.Context, sessionID, questionID string) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := lockSessionAndCheckQuestion(ctx, tx, sessionID, questionID); err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO session_questions (session_id, question_id, position)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0)
		FROM session_questions WHERE session_id = $1
		ON CONFLICT (session_id, question_id) DO NOTHING`, sessionID, questionID)
	if err != nil {
		return 0, err
	}
	inserted, _ := result.RowsAffected()

	var count int
	if inserted > 0 {
		err = tx.QueryRowContext(ctx, `
			UPDATE sessions SET total_question_count = total_question_count + 1, updated_at = NOW()
			WHERE id = $1
			RETURNING total_question_count`, sessionID).Scan(&count)
	} else {
		err = tx.QueryRowContext(ctx, `SELECT total_question_count FROM sessions WHERE id = $1`, sessionID).Scan(&count)
	}
	if err != nil {
		return 0, err
	}
	return count, tx.Commit()
}

func (r *SessionRepository) DetachQuestion(ctx context.Context, sessionID, questionID string) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := lockSessionAndCheckQuestion(ctx, tx, sessionID, questionID); err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM session_questions WHERE session_id = $1 AND question_id = $2`, sessionID, questionID)
	if err != nil {
		return 0, err
	}
	removed, _ := result.RowsAffected()

	var count int
	if removed > 0 {
		err = tx.QueryRowContext(ctx, `
			UPDATE sessions SET total_question_count = total_question_count - 1, updated_at = NOW()
			WHERE id = $1
			RETURNING total_question_count`, sessionID).Scan(&count)
	} else {
		err = tx.QueryRowContext(ctx, `SELECT total_question_count FROM sessions WHERE id = $1`, sessionID).Scan(&count)
	}
	if err != nil {
		return 0, err
	}
	return count, tx.Commit()
}

// lockSessionAndCheckQuestion locks the sessions row and verifies the
// question exists. Question-set mutations on one session serialize on the
// row lock, so MAX(position)+1 and the counter cannot race each other.
func lockSessionAndCheckQuestion(ctx context.Context, tx *sql.Tx, sessionID, questionID string) error {
	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = $1 FOR UPDATE`, sessionID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM questions WHERE id = $1)`, questionID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) ReplaceThumbnail(ctx context.Context, sessionID, url string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE sessions SET thumbnail_url = $2, updated_at = NOW() WHERE id = $1`, sessionID, url)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
