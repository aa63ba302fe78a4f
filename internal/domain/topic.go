package domain

import (
	"context"
	"time"
)

// Topic represents a subject-matter category an interview session belongs to.
// swagger:model Topic
type Topic struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deleted     bool      `json:"deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTopic returns a new Topic with the given fields. ID is typically set by the repository on create.
func NewTopic(title, description string, createdAt, updatedAt time.Time) *Topic {
	return &Topic{
		Title:       title,
		Description: description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// TopicRepository defines the interface for topic storage.
// Delete is logical: SetDeleted flips the flag and never removes edges.
type TopicRepository interface {
	Create(ctx context.Context, topic *Topic) error
	GetByID(ctx context.Context, id string) (*Topic, error)
	List(ctx context.Context, includeDeleted bool) ([]*Topic, error)
	Update(ctx context.Context, id string, title, description *string) (*Topic, error)
	SetDeleted(ctx context.Context, id string, deleted bool) error
}
