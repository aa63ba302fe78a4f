package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"prepdesk/internal/domain"
)

var topicCols = []string{"id", "title", "description", "deleted", "created_at", "updated_at"}

func TestTopicRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`INSERT INTO topics`).
			WithArgs("Backend", "server-side engineering", now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("topic-uuid-1"))

		repo := NewTopicRepository(db)
		topic := domain.NewTopic("Backend", "server-side engineering", now, now)
		require.NoError(t, repo.Create(ctx, topic))
		require.Equal(t, "topic-uuid-1", topic.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`INSERT INTO topics`).
			WithArgs("Backend", "", now, now).
			WillReturnError(sql.ErrConnDone)

		repo := NewTopicRepository(db)
		err = repo.Create(ctx, domain.NewTopic("Backend", "", now, now))
		require.Error(t, err)
		require.Contains(t, err.Error(), "connection is already closed")
	})
}

func TestTopicRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`SELECT id, title, description, deleted, created_at, updated_at\s+FROM topics\s+WHERE id = \$1`).
			WithArgs("topic-1").
			WillReturnRows(sqlmock.NewRows(topicCols).AddRow("topic-1", "Backend", "", true, now, now))

		repo := NewTopicRepository(db)
		got, err := repo.GetByID(ctx, "topic-1")
		require.NoError(t, err)
		require.Equal(t, "Backend", got.Title)
		// Deleted topics are still returned; callers decide what that means.
		require.True(t, got.Deleted)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`FROM topics\s+WHERE id = \$1`).
			WithArgs("topic-missing").
			WillReturnRows(sqlmock.NewRows(topicCols))

		repo := NewTopicRepository(db)
		_, err = repo.GetByID(ctx, "topic-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTopicRepository_List(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("excludes deleted by default", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`FROM topics\s+WHERE NOT deleted ORDER BY title`).
			WillReturnRows(sqlmock.NewRows(topicCols).
				AddRow("topic-1", "Backend", "", false, now, now))

		repo := NewTopicRepository(db)
		topics, err := repo.List(ctx, false)
		require.NoError(t, err)
		require.Len(t, topics, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("include deleted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`FROM topics\s+ORDER BY title`).
			WillReturnRows(sqlmock.NewRows(topicCols).
				AddRow("topic-1", "Backend", "", false, now, now).
				AddRow("topic-2", "Retired", "", true, now, now))

		repo := NewTopicRepository(db)
		topics, err := repo.List(ctx, true)
		require.NoError(t, err)
		require.Len(t, topics, 2)
		require.True(t, topics[1].Deleted)
	})
}

func TestTopicRepository_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("title only", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`UPDATE topics SET updated_at = NOW\(\), title = \$1\s+WHERE id = \$2`).
			WithArgs("Platform", "topic-1").
			WillReturnRows(sqlmock.NewRows(topicCols).AddRow("topic-1", "Platform", "", false, now, now))

		repo := NewTopicRepository(db)
		title := "Platform"
		got, err := repo.Update(ctx, "topic-1", &title, nil)
		require.NoError(t, err)
		require.Equal(t, "Platform", got.Title)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no fields falls back to read", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`FROM topics\s+WHERE id = \$1`).
			WithArgs("topic-1").
			WillReturnRows(sqlmock.NewRows(topicCols).AddRow("topic-1", "Backend", "", false, now, now))

		repo := NewTopicRepository(db)
		got, err := repo.Update(ctx, "topic-1", nil, nil)
		require.NoError(t, err)
		require.Equal(t, "Backend", got.Title)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`UPDATE topics SET`).
			WithArgs("Platform", "topic-missing").
			WillReturnRows(sqlmock.NewRows(topicCols))

		repo := NewTopicRepository(db)
		title := "Platform"
		_, err = repo.Update(ctx, "topic-missing", &title, nil)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTopicRepository_SetDeleted(t *testing.T) {
	ctx := context.Background()

	t.Run("delete", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectExec(`UPDATE topics SET deleted = \$2, updated_at = NOW\(\) WHERE id = \$1`).
			WithArgs("topic-1", true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewTopicRepository(db)
		require.NoError(t, repo.SetDeleted(ctx, "topic-1", true))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing topic", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectExec(`UPDATE topics SET deleted`).
			WithArgs("topic-missing", false).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewTopicRepository(db)
		require.ErrorIs(t, repo.SetDeleted(ctx, "topic-missing", false), domain.ErrNotFound)
	})
}
