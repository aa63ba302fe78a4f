package domain

import "context"

// CreateQuestionInput carries the fields for creating a question.
// Title, Content, PrimaryAnswer, and Difficulty are required.
type CreateQuestionInput struct {
	Title           string
	Content         string
	PrimaryAnswer   string
	SecondaryAnswer string
	Difficulty      Difficulty
	Status          string
	Source          string
}

// CatalogService defines the business logic for the question, tag, and topic
// catalog: CRUD, soft delete and restore, and the many-to-many edges.
type CatalogService interface {
	CreateQuestion(ctx context.Context, input CreateQuestionInput) (*Question, error)
	GetQuestion(ctx context.Context, id string) (*Question, error)
	UpdateQuestion(ctx context.Context, id string, patch QuestionPatch) (*Question, error)
	// AssignTagToQuestions idempotently tags each question; unknown question
	// IDs are reported in the result, not fatal to the call.
	AssignTagToQuestions(ctx context.Context, tagID string, questionIDs []string) (*TagAssignment, error)

	CreateTag(ctx context.Context, title, description string) (*Tag, error)
	ListTags(ctx context.Context, includeDeleted bool) ([]*Tag, error)
	UpdateTag(ctx context.Context, id string, title, description *string) (*Tag, error)
	DeleteTag(ctx context.Context, id string) error
	RestoreTag(ctx context.Context, id string) error

	CreateTopic(ctx context.Context, title, description string) (*Topic, error)
	ListTopics(ctx context.Context, includeDeleted bool) ([]*Topic, error)
	UpdateTopic(ctx context.Context, id string, title, description *string) (*Topic, error)
	DeleteTopic(ctx context.Context, id string) error
	RestoreTopic(ctx context.Context, id string) error
	// SetTopicTags replaces the topic's tag set.
	SetTopicTags(ctx context.Context, topicID string, tagIDs []string) error
	ListTopicTags(ctx context.Context, topicID string) ([]*Tag, error)
}
