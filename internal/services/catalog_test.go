package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"prepdesk/internal/domain"
)

func newCatalogFixture() (*mockQuestionRepository, *mockTagRepository, *mockTopicRepository, domain.CatalogService) {
	questionRepo := &mockQuestionRepository{questions: map[string]*domain.Question{}}
	tagRepo := &mockTagRepository{tags: map[string]*domain.Tag{}}
	topicRepo := &mockTopicRepository{topics: map[string]*domain.Topic{}}
	svc := NewCatalogService(questionRepo, tagRepo, topicRepo, testTimeout)
	return questionRepo, tagRepo, topicRepo, svc
}

func TestCatalogService_CreateQuestion(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   domain.CreateQuestionInput
		wantErr error
	}{
		{
			name: "valid question",
			input: domain.CreateQuestionInput{
				Title:         "Two sum",
				Content:       "Find two numbers adding to a target.",
				PrimaryAnswer: "Hash map of complements.",
				Difficulty:    domain.DifficultyEasy,
			},
		},
		{
			name: "missing title",
			input: domain.CreateQuestionInput{
				Content:       "c",
				PrimaryAnswer: "a",
				Difficulty:    domain.DifficultyEasy,
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "missing content",
			input: domain.CreateQuestionInput{
				Title:         "t",
				PrimaryAnswer: "a",
				Difficulty:    domain.DifficultyEasy,
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "missing primary answer",
			input: domain.CreateQuestionInput{
				Title:      "t",
				Content:    "c",
				Difficulty: domain.DifficultyEasy,
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "missing difficulty",
			input: domain.CreateQuestionInput{
				Title:         "t",
				Content:       "c",
				PrimaryAnswer: "a",
			},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questionRepo, _, _, svc := newCatalogFixture()
			q, err := svc.CreateQuestion(ctx, tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, questionRepo.questions)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, q.ID)
			require.Equal(t, "active", q.Status)
		})
	}
}

func TestCatalogService_AssignTagToQuestions(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown questions are skipped", func(t *testing.T) {
		_, tagRepo, _, svc := newCatalogFixture()
		tag, err := svc.CreateTag(ctx, "algorithms", "")
		require.NoError(t, err)

		q1, err := svc.CreateQuestion(ctx, domain.CreateQuestionInput{Title: "t", Content: "c", PrimaryAnswer: "a", Difficulty: domain.DifficultyEasy})
		require.NoError(t, err)

		result, err := svc.AssignTagToQuestions(ctx, tag.ID, []string{q1.ID, "q-missing"})
		require.NoError(t, err)
		require.Equal(t, []string{q1.ID}, result.AssignedTo)
		require.Equal(t, []string{"q-missing"}, result.SkippedIDs)
		require.NotNil(t, tagRepo.tags[tag.ID])
	})

	t.Run("missing tag", func(t *testing.T) {
		_, _, _, svc := newCatalogFixture()
		_, err := svc.AssignTagToQuestions(ctx, "tag-missing", []string{"q-1"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCatalogService_TagLifecycle(t *testing.T) {
	ctx := context.Background()
	_, tagRepo, _, svc := newCatalogFixture()

	_, err := svc.CreateTag(ctx, "  ", "")
	require.ErrorIs(t, err, domain.ErrValidation)

	tag, err := svc.CreateTag(ctx, "algorithms", "sorting and searching")
	require.NoError(t, err)

	title := "data structures"
	updated, err := svc.UpdateTag(ctx, tag.ID, &title, nil)
	require.NoError(t, err)
	require.Equal(t, "data structures", updated.Title)
	require.Equal(t, "sorting and searching", updated.Description)

	require.NoError(t, svc.DeleteTag(ctx, tag.ID))
	visible, err := svc.ListTags(ctx, false)
	require.NoError(t, err)
	require.Empty(t, visible)

	all, err := svc.ListTags(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, svc.RestoreTag(ctx, tag.ID))
	require.False(t, tagRepo.tags[tag.ID].Deleted)

	// Restoring a live tag is a successful no-op.
	require.NoError(t, svc.RestoreTag(ctx, tag.ID))

	require.ErrorIs(t, svc.DeleteTag(ctx, "tag-missing"), domain.ErrNotFound)
}

func TestCatalogService_TopicLifecycle(t *testing.T) {
	ctx := context.Background()
	_, _, topicRepo, svc := newCatalogFixture()

	_, err := svc.CreateTopic(ctx, "", "")
	require.ErrorIs(t, err, domain.ErrValidation)

	topic, err := svc.CreateTopic(ctx, "Backend", "server-side engineering")
	require.NoError(t, err)

	desc := "services and storage"
	updated, err := svc.UpdateTopic(ctx, topic.ID, nil, &desc)
	require.NoError(t, err)
	require.Equal(t, "Backend", updated.Title)
	require.Equal(t, "services and storage", updated.Description)

	require.NoError(t, svc.DeleteTopic(ctx, topic.ID))
	visible, err := svc.ListTopics(ctx, false)
	require.NoError(t, err)
	require.Empty(t, visible)

	require.NoError(t, svc.RestoreTopic(ctx, topic.ID))
	require.False(t, topicRepo.topics[topic.ID].Deleted)
}

func TestCatalogService_SetTopicTags(t *testing.T) {
	ctx := context.Background()
	_, _, _, svc := newCatalogFixture()

	topic, err := svc.CreateTopic(ctx, "Backend", "")
	require.NoError(t, err)
	tag, err := svc.CreateTag(ctx, "go", "")
	require.NoError(t, err)

	require.NoError(t, svc.SetTopicTags(ctx, topic.ID, []string{tag.ID}))
	tags, err := svc.ListTopicTags(ctx, topic.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	require.Equal(t, "go", tags[0].Title)

	// Replacing with an empty set clears the edges.
	require.NoError(t, svc.SetTopicTags(ctx, topic.ID, []string{}))
	tags, err = svc.ListTopicTags(ctx, topic.ID)
	require.NoError(t, err)
	require.Empty(t, tags)

	require.ErrorIs(t, svc.SetTopicTags(ctx, "topic-missing", []string{tag.ID}), domain.ErrNotFound)
}
