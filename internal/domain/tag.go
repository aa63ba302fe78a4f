package domain

import (
	"context"
	"time"
)

// Tag represents a cross-cutting label applied to questions and topics.
// swagger:model Tag
type Tag struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deleted     bool      `json:"deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTag returns a new Tag with the given fields. ID is typically set by the repository on create.
func NewTag(title, description string, createdAt, updatedAt time.Time) *Tag {
	return &Tag{
		Title:       title,
		Description: description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// TagRepository defines storage for tags and topic–tag links.
type TagRepository interface {
	Create(ctx context.Context, tag *Tag) error
	GetByID(ctx context.Context, id string) (*Tag, error)
	List(ctx context.Context, includeDeleted bool) ([]*Tag, error)
	// ListByIDs returns the tags for the given IDs; unknown IDs are omitted.
	ListByIDs(ctx context.Context, ids []string) ([]*Tag, error)
	Update(ctx context.Context, id string, title, description *string) (*Tag, error)
	SetDeleted(ctx context.Context, id string, deleted bool) error
	// SetTopicTags replaces all tag links for the given topic with the given tag IDs.
	SetTopicTags(ctx context.Context, topicID string, tagIDs []string) error
	// ListByTopicID returns all tags linked to the given topic via topic_tags.
	ListByTopicID(ctx context.Context, topicID string) ([]*Tag, error)
}
