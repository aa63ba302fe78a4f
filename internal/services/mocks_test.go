package services

import (
	"context"
	"fmt"
	"io"

	"prepdesk/internal/domain"
)

type mockTopicRepository struct {
	topics map[string]*domain.Topic
	err    error
}

func (m *mockTopicRepository) Create(ctx context.Context, topic *domain.Topic) error {
	if m.err != nil {
		return m.err
	}
	topic.ID = fmt.Sprintf("topic-%d", len(m.topics)+1)
	m.topics[topic.ID] = topic
	return nil
}

func (m *mockTopicRepository) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	if m.err != nil {
		return nil, m.err
	}
	topic, ok := m.topics[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return topic, nil
}

func (m *mockTopicRepository) List(ctx context.Context, includeDeleted bool) ([]*domain.Topic, error) {
	out := []*domain.Topic{}
	for _, topic := range m.topics {
		if topic.Deleted && !includeDeleted {
			continue
		}
		out = append(out, topic)
	}
	return out, nil
}

func (m *mockTopicRepository) Update(ctx context.Context, id string, title, description *string) (*domain.Topic, error) {
	topic, ok := m.topics[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if title != nil {
		topic.Title = *title
	}
	if description != nil {
		topic.Description = *description
	}
	return topic, nil
}

func (m *mockTopicRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	topic, ok := m.topics[id]
	if !ok {
		return domain.ErrNotFound
	}
	topic.Deleted = deleted
	return nil
}

type mockTagRepository struct {
	tags        map[string]*domain.Tag
	tagsByTopic map[string][]string
	err         error
}

func (m *mockTagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	if m.err != nil {
		return m.err
	}
	tag.ID = fmt.Sprintf("tag-%d", len(m.tags)+1)
	m.tags[tag.ID] = tag
	return nil
}

func (m *mockTagRepository) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	if m.err != nil {
		return nil, m.err
	}
	tag, ok := m.tags[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tag, nil
}

func (m *mockTagRepository) List(ctx context.Context, includeDeleted bool) ([]*domain.Tag, error) {
	out := []*domain.Tag{}
	for _, tag := range m.tags {
		if tag.Deleted && !includeDeleted {
			continue
		}
		out = append(out, tag)
	}
	return out, nil
}

func (m *mockTagRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Tag, error) {
	out := []*domain.Tag{}
	for _, id := range ids {
		if tag, ok := m.tags[id]; ok {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (m *mockTagRepository) Update(ctx context.Context, id string, title, description *string) (*domain.Tag, error) {
	tag, ok := m.tags[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if title != nil {
		tag.Title = *title
	}
	if description != nil {
		tag.Description = *description
	}
	return tag, nil
}

func (m *mockTagRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	tag, ok := m.tags[id]
	if !ok {
		return domain.ErrNotFound
	}
	tag.Deleted = deleted
	return nil
}

func (m *mockTagRepository) SetTopicTags(ctx context.Context, topicID string, tagIDs []string) error {
	if m.tagsByTopic == nil {
		m.tagsByTopic = map[string][]string{}
	}
	m.tagsByTopic[topicID] = tagIDs
	return nil
}

func (m *mockTagRepository) ListByTopicID(ctx context.Context, topicID string) ([]*domain.Tag, error) {
	return m.ListByIDs(ctx, m.tagsByTopic[topicID])
}

type mockQuestionRepository struct {
	questions map[string]*domain.Question
	createErr error
	tagErr    error
	created   int
}

func (m *mockQuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created++
	q.ID = fmt.Sprintf("q-%d", m.created)
	m.questions[q.ID] = q
	return nil
}

func (m *mockQuestionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return q, nil
}

func (m *mockQuestionRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Question, error) {
	out := []*domain.Question{}
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestionRepository) ListAvailableForSession(ctx context.Context, sessionID string) ([]*domain.Question, error) {
	out := []*domain.Question{}
	for _, q := range m.questions {
		if !q.Deleted {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestionRepository) Update(ctx context.Context, id string, patch domain.QuestionPatch) (*domain.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		q.Title = *patch.Title
	}
	if patch.Status != nil {
		q.Status = *patch.Status
	}
	return q, nil
}

func (m *mockQuestionRepository) AssignTag(ctx context.Context, tagID string, questionIDs []string) ([]string, []string, error) {
	if m.tagErr != nil {
		return nil, nil, m.tagErr
	}
	assigned := []string{}
	skipped := []string{}
	for _, id := range questionIDs {
		q, ok := m.questions[id]
		if !ok {
			skipped = append(skipped, id)
			continue
		}
		q.TagIDs = append(q.TagIDs, tagID)
		assigned = append(assigned, id)
	}
	return assigned, skipped, nil
}

func (m *mockQuestionRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	q, ok := m.questions[id]
	if !ok {
		return domain.ErrNotFound
	}
	q.Deleted = deleted
	return nil
}

// mockSessionRepository keeps the aggregate in memory and maintains the
// count/edge invariant the same way the Postgres transaction does.
type mockSessionRepository struct {
	sessions  map[string]*domain.Session
	attachErr error
}

func (m *mockSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	s.ID = fmt.Sprintf("sess-%d", len(m.sessions)+1)
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockSessionRepository) List(ctx context.Context, filter domain.SessionFilter, p domain.PaginationParams) ([]*domain.Session, int, error) {
	out := []*domain.Session{}
	for _, s := range m.sessions {
		if s.Deleted && !filter.IncludeDeleted {
			continue
		}
		if filter.Source != "" && s.Source != filter.Source {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockSessionRepository) UpdateMetadata(ctx context.Context, id string, patch domain.SessionPatch) (*domain.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	if patch.TopicID != nil {
		s.TopicID = *patch.TopicID
	}
	if patch.TagIDs != nil {
		s.TagIDs = *patch.TagIDs
	}
	return s, nil
}

func (m *mockSessionRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Deleted = deleted
	return nil
}

func (m *mockSessionRepository) AttachQuestion(ctx context.Context, sessionID, questionID string) (int, error) {
	if m.attachErr != nil {
		return 0, m.attachErr
	}
	s, ok := m.sessions[sessionID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	for _, id := range s.QuestionIDs {
		if id == questionID {
			return s.TotalQuestionCount, nil
		}
	}
	s.QuestionIDs = append(s.QuestionIDs, questionID)
	s.TotalQuestionCount = len(s.QuestionIDs)
	return s.TotalQuestionCount, nil
}

func (m *mockSessionRepository) DetachQuestion(ctx context.Context, sessionID, questionID string) (int, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	for i, id := range s.QuestionIDs {
		if id == questionID {
			s.QuestionIDs = append(s.QuestionIDs[:i], s.QuestionIDs[i+1:]...)
			break
		}
	}
	s.TotalQuestionCount = len(s.QuestionIDs)
	return s.TotalQuestionCount, nil
}

func (m *mockSessionRepository) ReplaceThumbnail(ctx context.Context, sessionID, url string) error {
	s, ok := m.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	s.ThumbnailURL = &url
	return nil
}

type mockAssetStore struct {
	url     string
	err     error
	uploads int
}

func (m *mockAssetStore) UploadImage(ctx context.Context, image io.Reader, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.uploads++
	_, _ = io.Copy(io.Discard, image)
	return m.url, nil
}
