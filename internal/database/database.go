package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect opens a Postgres connection pool for the given URL and verifies it
// with a ping.
func Connect(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}

// Migrate applies the schema. All statements are idempotent so it is safe to
// run on every startup.
func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS topics (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title       VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		deleted     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS tags (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title       VARCHAR(255) UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		deleted     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS topic_tags (
		topic_id UUID NOT NULL REFERENCES topics(id),
		tag_id   UUID NOT NULL REFERENCES tags(id),
		UNIQUE(topic_id, tag_id)
	);

	CREATE TABLE IF NOT EXISTS questions (
		id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title            VARCHAR(500) NOT NULL,
		content          TEXT NOT NULL,
		primary_answer   TEXT NOT NULL,
		secondary_answer TEXT NOT NULL DEFAULT '',
		difficulty       VARCHAR(20) NOT NULL,
		status           VARCHAR(50) NOT NULL DEFAULT 'active',
		source           VARCHAR(100) NOT NULL DEFAULT '',
		deleted          BOOLEAN NOT NULL DEFAULT FALSE,
		created_at       TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at       TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS question_tags (
		question_id UUID NOT NULL REFERENCES questions(id),
		tag_id      UUID NOT NULL REFERENCES tags(id),
		UNIQUE(question_id, tag_id)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id                   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title                VARCHAR(255) NOT NULL,
		description          TEXT NOT NULL DEFAULT '',
		thumbnail_url        TEXT,
		topic_id             UUID NOT NULL REFERENCES topics(id),
		difficulty           VARCHAR(20) NOT NULL DEFAULT 'medium',
		duration_minutes     INT NOT NULL DEFAULT 0,
		source               VARCHAR(100) NOT NULL DEFAULT '',
		total_question_count INT NOT NULL DEFAULT 0,
		deleted              BOOLEAN NOT NULL DEFAULT FALSE,
		created_at           TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at           TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS session_tags (
		session_id UUID NOT NULL REFERENCES sessions(id),
		tag_id     UUID NOT NULL REFERENCES tags(id),
		UNIQUE(session_id, tag_id)
	);

	CREATE TABLE IF NOT EXISTS session_questions (
		session_id  UUID NOT NULL REFERENCES sessions(id),
		question_id UUID NOT NULL REFERENCES questions(id),
		position    INT NOT NULL,
		UNIQUE(session_id, question_id)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_topic ON sessions(topic_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_source ON sessions(source) WHERE NOT deleted;
	CREATE INDEX IF NOT EXISTS idx_session_questions_session ON session_questions(session_id, position);
	CREATE INDEX IF NOT EXISTS idx_question_tags_tag ON question_tags(tag_id);
	CREATE INDEX IF NOT EXISTS idx_questions_deleted ON questions(deleted);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
