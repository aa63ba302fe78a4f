package domain

import (
	"context"
	"io"
	"time"
)

// Session represents an interview template: a named, ordered bundle of
// questions under one topic, optionally tagged and thumbnailed.
// TotalQuestionCount always equals len(QuestionIDs); every mutation of the
// question set updates both in the same unit of work.
// swagger:model Session
type Session struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	ThumbnailURL       *string    `json:"thumbnail_url"`
	TopicID            string     `json:"topic_id"`
	TagIDs             []string   `json:"tag_ids"`
	QuestionIDs        []string   `json:"question_ids"`
	TotalQuestionCount int        `json:"total_question_count"`
	Difficulty         Difficulty `json:"difficulty"`
	DurationMinutes    int        `json:"duration_minutes"`
	Source             string     `json:"source"`
	Deleted            bool       `json:"deleted"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewSession returns a new Session with an empty question set.
// ID is typically set by the repository on create.
func NewSession(title, description, topicID string, difficulty Difficulty, durationMinutes int, source string, tagIDs []string, createdAt, updatedAt time.Time) *Session {
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return &Session{
		Title:           title,
		Description:     description,
		TopicID:         topicID,
		TagIDs:          tagIDs,
		QuestionIDs:     []string{},
		Difficulty:      difficulty,
		DurationMinutes: durationMinutes,
		Source:          source,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// SessionPatch carries optional metadata updates for a session.
// Nil fields are left unchanged. TagIDs, when set, replaces the whole tag set.
// The question set is never touched by a metadata patch.
type SessionPatch struct {
	Title           *string
	Description     *string
	TopicID         *string
	Difficulty      *Difficulty
	DurationMinutes *int
	Source          *string
	TagIDs          *[]string
}

// SessionFilter narrows session listings. Source filters on the session
// source ("admin", "company"); empty means all sources. Deleted sessions are
// excluded unless IncludeDeleted is set.
type SessionFilter struct {
	Source         string
	IncludeDeleted bool
}

// SessionRepository persists the session aggregate: the row plus its tag and
// question edge sets as one consistency unit. AttachQuestion and
// DetachQuestion change edge membership and total_question_count in a single
// transaction and return the post-operation count.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	// GetByID returns the session regardless of its deleted flag; the restore
	// path depends on that.
	GetByID(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context, filter SessionFilter, p PaginationParams) ([]*Session, int, error)
	UpdateMetadata(ctx context.Context, id string, patch SessionPatch) (*Session, error)
	SetDeleted(ctx context.Context, id string, deleted bool) error
	AttachQuestion(ctx context.Context, sessionID, questionID string) (count int, err error)
	DetachQuestion(ctx context.Context, sessionID, questionID string) (count int, err error)
	ReplaceThumbnail(ctx context.Context, sessionID, url string) error
}

// SessionDetail is an expanded session view: the aggregate plus its resolved
// topic, tags, and questions. Topic may be nil when the referenced topic was
// deleted after the session was created.
type SessionDetail struct {
	Session   *Session    `json:"session"`
	Topic     *Topic      `json:"topic"`
	Tags      []*Tag      `json:"tags"`
	Questions []*Question `json:"questions"`
}

// CreateSessionInput carries the fields for creating a session. Title and
// TopicID are required; the rest default to empty. Thumbnail, when non-nil,
// is uploaded to the Asset Store before the session is created.
type CreateSessionInput struct {
	Title           string
	Description     string
	TopicID         string
	Difficulty      Difficulty
	DurationMinutes int
	Source          string
	TagIDs          []string
	Thumbnail       io.Reader
	ThumbnailType   string
}

// SessionService defines the public session-template operations and enforces
// the cross-entity invariants.
type SessionService interface {
	CreateTemplate(ctx context.Context, input CreateSessionInput) (*Session, error)
	GetTemplate(ctx context.Context, id string) (*SessionDetail, error)
	ListTemplates(ctx context.Context, filter SessionFilter, p PaginationParams) ([]*Session, int, error)
	UpdateTemplate(ctx context.Context, id string, patch SessionPatch) (*Session, error)
	DeleteTemplate(ctx context.Context, id string) error
	RestoreTemplate(ctx context.Context, id string) error
	// AddQuestions attaches the given questions, skipping ones already
	// attached, and returns the resulting question count.
	AddQuestions(ctx context.Context, sessionID string, questionIDs []string) (int, error)
	RemoveQuestion(ctx context.Context, sessionID, questionID string) (int, error)
	ListAvailableQuestions(ctx context.Context, sessionID string) ([]*Question, error)
	// ReplaceThumbnail uploads the image and swaps the session's thumbnail
	// URL. On upload failure the session is left unchanged.
	ReplaceThumbnail(ctx context.Context, sessionID string, image io.Reader, contentType string) (url string, err error)
}
