package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Difficulty is the difficulty grade of a question or session.
type Difficulty string

// Difficulty values. Stored lowercase.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty parses a difficulty string case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrValidation, s)
}

// Question represents a single interview question. Session membership and tag
// membership are separate relations; TagIDs carries only the tag edges.
// swagger:model Question
type Question struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	PrimaryAnswer   string     `json:"primary_answer"`
	SecondaryAnswer string     `json:"secondary_answer"`
	Difficulty      Difficulty `json:"difficulty"`
	Status          string     `json:"status"`
	Source          string     `json:"source"`
	TagIDs          []string   `json:"tag_ids"`
	Deleted         bool       `json:"deleted"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewQuestion returns a new Question. ID is typically set by the repository on create.
func NewQuestion(title, content, primaryAnswer, secondaryAnswer string, difficulty Difficulty, status, source string, createdAt, updatedAt time.Time) *Question {
	return &Question{
		Title:           title,
		Content:         content,
		PrimaryAnswer:   primaryAnswer,
		SecondaryAnswer: secondaryAnswer,
		Difficulty:      difficulty,
		Status:          status,
		Source:          source,
		TagIDs:          []string{},
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// QuestionPatch carries optional field updates for a question.
// Nil fields are left unchanged. Tag edges and session membership are not
// patchable here; they have their own operations.
type QuestionPatch struct {
	Title           *string
	Content         *string
	PrimaryAnswer   *string
	SecondaryAnswer *string
	Difficulty      *Difficulty
	Status          *string
	Source          *string
}

// TagAssignment reports the outcome of assigning a tag to a batch of questions.
// Unknown question IDs are skipped, not fatal to the call.
type TagAssignment struct {
	TagID      string   `json:"tag_id"`
	AssignedTo []string `json:"assigned_to"`
	SkippedIDs []string `json:"skipped_ids"`
}

// QuestionRepository defines the interface for question storage and
// question–tag links.
type QuestionRepository interface {
	Create(ctx context.Context, q *Question) error
	GetByID(ctx context.Context, id string) (*Question, error)
	// ListByIDs returns questions for the given IDs in arbitrary order;
	// unknown IDs are omitted.
	ListByIDs(ctx context.Context, ids []string) ([]*Question, error)
	// ListAvailableForSession returns non-deleted questions not currently
	// attached to the given session.
	ListAvailableForSession(ctx context.Context, sessionID string) ([]*Question, error)
	Update(ctx context.Context, id string, patch QuestionPatch) (*Question, error)
	// AssignTag idempotently links tagID to each existing question; unknown
	// question IDs are reported as skipped.
	AssignTag(ctx context.Context, tagID string, questionIDs []string) (assigned, skipped []string, err error)
	SetDeleted(ctx context.Context, id string, deleted bool) error
}
