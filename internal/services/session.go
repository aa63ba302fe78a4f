package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"prepdesk/internal/domain"
)

type sessionService struct {
	sessionRepo    domain.SessionRepository
	topicRepo      domain.TopicRepository
	tagRepo        domain.TagRepository
	questionRepo   domain.QuestionRepository
	assets         domain.AssetStore
	contextTimeout time.Duration
}

// NewSessionService wires the session-template business logic over the
// aggregate store, the catalog repos, and the Asset Store.
func NewSessionService(
	sessionRepo domain.SessionRepository,
	topicRepo domain.TopicRepository,
	tagRepo domain.TagRepository,
	questionRepo domain.QuestionRepository,
	assets domain.AssetStore,
	timeout time.Duration,
) domain.SessionService {
	return &sessionService{
		sessionRepo:    sessionRepo,
		topicRepo:      topicRepo,
		tagRepo:        tagRepo,
		questionRepo:   questionRepo,
		assets:         assets,
		contextTimeout: timeout,
	}
}

func (s *sessionService) CreateTemplate(ctx context.Context, input domain.CreateSessionInput) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if input.TopicID == "" {
		return nil, fmt.Errorf("%w: topic_id is required", domain.ErrValidation)
	}
	topic, err := s.topicRepo.GetByID(ctx, input.TopicID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: topic %s does not exist", domain.ErrValidation, input.TopicID)
		}
		return nil, fmt.Errorf("get topic: %w", err)
	}
	if topic.Deleted {
		return nil, fmt.Errorf("%w: topic %s is deleted", domain.ErrValidation, input.TopicID)
	}
	if input.Difficulty == "" {
		input.Difficulty = domain.DifficultyMedium
	}

	now := time.Now()
	session := domain.NewSession(input.Title, input.Description, input.TopicID, input.Difficulty, input.DurationMinutes, input.Source, input.TagIDs, now, now)

	if input.Thumbnail != nil {
		url, err := s.assets.UploadImage(ctx, input.Thumbnail, input.ThumbnailType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamAsset, err)
		}
		session.ThumbnailURL = &url
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (s *sessionService) GetTemplate(ctx context.Context, id string) (*domain.SessionDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	// The topic may have been soft-deleted after the session was created;
	// that is a display-time concern, not an error here.
	topic, err := s.topicRepo.GetByID(ctx, session.TopicID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get topic: %w", err)
	}

	tags, err := s.tagRepo.ListByIDs(ctx, session.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	questions, err := s.questionRepo.ListByIDs(ctx, session.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	ordered := orderQuestions(session.QuestionIDs, questions)

	return &domain.SessionDetail{
		Session:   session,
		Topic:     topic,
		Tags:      tags,
		Questions: ordered,
	}, nil
}

// orderQuestions arranges questions to match the session's insertion order.
func orderQuestions(ids []string, questions []*domain.Question) []*domain.Question {
	byID := make(map[string]*domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]*domain.Question, 0, len(questions))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered
}

func (s *sessionService) ListTemplates(ctx context.Context, filter domain.SessionFilter, p domain.PaginationParams) ([]*domain.Session, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	sessions, total, err := s.sessionRepo.List(ctx, filter, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, total, nil
}

func (s *sessionService) UpdateTemplate(ctx context.Context, id string, patch domain.SessionPatch) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.TopicID != nil {
		topic, err := s.topicRepo.GetByID(ctx, *patch.TopicID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: topic %s does not exist", domain.ErrValidation, *patch.TopicID)
			}
			return nil, fmt.Errorf("get topic: %w", err)
		}
		if topic.Deleted {
			return nil, fmt.Errorf("%w: topic %s is deleted", domain.ErrValidation, *patch.TopicID)
		}
	}
	updated, err := s.sessionRepo.UpdateMetadata(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update session: %w", err)
	}
	return updated, nil
}

func (s *sessionService) DeleteTemplate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.sessionRepo.SetDeleted(ctx, id, true)
}

func (s *sessionService) RestoreTemplate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.sessionRepo.SetDeleted(ctx, id, false)
}

func (s *sessionService) AddQuestions(ctx context.Context, sessionID string, questionIDs []string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	seen := make(map[string]struct{}, len(questionIDs))
	count := -1
	for _, questionID := range questionIDs {
		if _, dup := seen[questionID]; dup {
			continue
		}
		seen[questionID] = struct{}{}
		c, err := s.sessionRepo.AttachQuestion(ctx, sessionID, questionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return 0, domain.ErrNotFound
			}
			return 0, fmt.Errorf("attach question %s: %w", questionID, err)
		}
		count = c
	}
	if count < 0 {
		session, err := s.sessionRepo.GetByID(ctx, sessionID)
		if err != nil {
			return 0, err
		}
		count = session.TotalQuestionCount
	}
	return count, nil
}

func (s *sessionService) RemoveQuestion(ctx context.Context, sessionID, questionID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	count, err := s.sessionRepo.DetachQuestion(ctx, sessionID, questionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("detach question %s: %w", questionID, err)
	}
	return count, nil
}

func (s *sessionService) ListAvailableQuestions(ctx context.Context, sessionID string) ([]*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	questions, err := s.questionRepo.ListAvailableForSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list available questions: %w", err)
	}
	return questions, nil
}

func (s *sessionService) ReplaceThumbnail(ctx context.Context, sessionID string, image io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get session: %w", err)
	}

	// Upload first; the session row is only touched after the new asset
	// exists, so a failed or timed-out upload leaves the thumbnail unchanged.
	url, err := s.assets.UploadImage(ctx, image, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamAsset, err)
	}
	if err := s.sessionRepo.ReplaceThumbnail(ctx, sessionID, url); err != nil {
		return "", fmt.Errorf("replace thumbnail: %w", err)
	}
	return url, nil
}
