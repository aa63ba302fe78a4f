package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"prepdesk/internal/domain"
)

type catalogService struct {
	questionRepo   domain.QuestionRepository
	tagRepo        domain.TagRepository
	topicRepo      domain.TopicRepository
	contextTimeout time.Duration
}

// NewCatalogService wires the question/tag/topic catalog business logic.
func NewCatalogService(questionRepo domain.QuestionRepository, tagRepo domain.TagRepository, topicRepo domain.TopicRepository, timeout time.Duration) domain.CatalogService {
	return &catalogService{
		questionRepo:   questionRepo,
		tagRepo:        tagRepo,
		topicRepo:      topicRepo,
		contextTimeout: timeout,
	}
}

func (s *catalogService) CreateQuestion(ctx context.Context, input domain.CreateQuestionInput) (*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.PrimaryAnswer) == "" {
		return nil, fmt.Errorf("%w: primary_answer is required", domain.ErrValidation)
	}
	if input.Difficulty == "" {
		return nil, fmt.Errorf("%w: difficulty is required", domain.ErrValidation)
	}
	if input.Status == "" {
		input.Status = "active"
	}

	now := time.Now()
	q := domain.NewQuestion(input.Title, input.Content, input.PrimaryAnswer, input.SecondaryAnswer, input.Difficulty, input.Status, input.Source, now, now)
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

func (s *catalogService) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

func (s *catalogService) UpdateQuestion(ctx context.Context, id string, patch domain.QuestionPatch) (*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	q, err := s.questionRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

func (s *catalogService) AssignTagToQuestions(ctx context.Context, tagID string, questionIDs []string) (*domain.TagAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.tagRepo.GetByID(ctx, tagID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	assigned, skipped, err := s.questionRepo.AssignTag(ctx, tagID, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("assign tag: %w", err)
	}
	return &domain.TagAssignment{TagID: tagID, AssignedTo: assigned, SkippedIDs: skipped}, nil
}

func (s *catalogService) CreateTag(ctx context.Context, title, description string) (*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	now := time.Now()
	tag := domain.NewTag(title, description, now, now)
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

func (s *catalogService) ListTags(ctx context.Context, includeDeleted bool) ([]*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.tagRepo.List(ctx, includeDeleted)
}

func (s *catalogService) UpdateTag(ctx context.Context, id string, title, description *string) (*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.tagRepo.Update(ctx, id, title, description)
}

func (s *catalogService) DeleteTag(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.tagRepo.SetDeleted(ctx, id, true)
}

func (s *catalogService) RestoreTag(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.tagRepo.SetDeleted(ctx, id, false)
}

func (s *catalogService) CreateTopic(ctx context.Context, title, description string) (*domain.Topic, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	now := time.Now()
	topic := domain.NewTopic(title, description, now, now)
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return topic, nil
}

func (s *catalogService) ListTopics(ctx context.Context, includeDeleted bool) ([]*domain.Topic, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.topicRepo.List(ctx, includeDeleted)
}

func (s *catalogService) UpdateTopic(ctx context.Context, id string, title, description *string) (*domain.Topic, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.topicRepo.Update(ctx, id, title, description)
}

func (s *catalogService) DeleteTopic(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.topicRepo.SetDeleted(ctx, id, true)
}

func (s *catalogService) RestoreTopic(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.topicRepo.SetDeleted(ctx, id, false)
}

func (s *catalogService) SetTopicTags(ctx context.Context, topicID string, tagIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get topic: %w", err)
	}
	if err := s.tagRepo.SetTopicTags(ctx, topicID, tagIDs); err != nil {
		return fmt.Errorf("set topic tags: %w", err)
	}
	return nil
}

func (s *catalogService) ListTopicTags(ctx context.Context, topicID string) ([]*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.tagRepo.ListByTopicID(ctx, topicID)
}
