package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"prepdesk/internal/delivery/http/helpers"
	"prepdesk/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicController_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := NewTopicController(testLogger, &fakeCatalogService{})
		req := httptest.NewRequest(http.MethodPost, "/topics", bytes.NewBufferString(`{"title":"Backend","description":"server-side"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		ctrl.Create(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.Nil(t, envelope.Error)
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		var topic domain.Topic
		require.NoError(t, json.Unmarshal(dataBytes, &topic))
		assert.Equal(t, "Backend", topic.Title)
	})

	t.Run("missing title", func(t *testing.T) {
		ctrl := NewTopicController(testLogger, &fakeCatalogService{})
		req := httptest.NewRequest(http.MethodPost, "/topics", bytes.NewBufferString(`{"description":"no title"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		ctrl.Create(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.NotNil(t, envelope.Error)
		assert.Contains(t, envelope.Error.Message, "title is required")
	})
}

func TestTopicController_List(t *testing.T) {
	fake := &fakeCatalogService{listTopicsResult: []*domain.Topic{{ID: "topic-1", Title: "Backend"}}}
	ctrl := NewTopicController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "/topics?include_deleted=true", nil)
	rr := httptest.NewRecorder()

	ctrl.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, fake.lastListTopicsDel, "include_deleted must be forwarded")
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Nil(t, envelope.Error)
	dataBytes, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var topics []domain.Topic
	require.NoError(t, json.Unmarshal(dataBytes, &topics))
	require.Len(t, topics, 1)
	assert.Equal(t, "Backend", topics[0].Title)
}

func TestTopicController_DeleteRestore(t *testing.T) {
	t.Run("delete then restore", func(t *testing.T) {
		ctrl := NewTopicController(testLogger, &fakeCatalogService{})

		req := httptest.NewRequest(http.MethodDelete, "http://test/topics/topic-1", nil)
		req.SetPathValue("topicID", "topic-1")
		rr := httptest.NewRecorder()
		ctrl.Delete(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		req = httptest.NewRequest(http.MethodPost, "http://test/topics/topic-1/restore", nil)
		req.SetPathValue("topicID", "topic-1")
		rr = httptest.NewRecorder()
		ctrl.Restore(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		dataMap, ok := envelope.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "restored", dataMap["status"])
	})

	t.Run("delete missing topic", func(t *testing.T) {
		ctrl := NewTopicController(testLogger, &fakeCatalogService{deleteTopicErr: domain.ErrNotFound})
		req := httptest.NewRequest(http.MethodDelete, "http://test/topics/topic-missing", nil)
		req.SetPathValue("topicID", "topic-missing")
		rr := httptest.NewRecorder()

		ctrl.Delete(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.NotNil(t, envelope.Error)
		assert.Contains(t, envelope.Error.Message, "topic not found")
	})
}

func TestTopicController_SetTags(t *testing.T) {
	tests := []struct {
		name           string
		topicID        string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
		checkCall      func(t *testing.T, fake *fakeCatalogService)
	}{
		{
			name:       "success",
			topicID:    "topic-1",
			body:       `{"tag_ids":["tag-1","tag-2"]}`,
			wantStatus: http.StatusOK,
			checkCall: func(t *testing.T, fake *fakeCatalogService) {
				assert.Equal(t, "topic-1", fake.lastSetTopicTagsID)
				assert.Equal(t, []string{"tag-1", "tag-2"}, fake.lastSetTopicTagsIDs)
			},
		},
		{
			name:       "empty list clears the set",
			topicID:    "topic-1",
			body:       `{"tag_ids":[]}`,
			wantStatus: http.StatusOK,
			checkCall: func(t *testing.T, fake *fakeCatalogService) {
				require.NotNil(t, fake.lastSetTopicTagsIDs)
				assert.Empty(t, fake.lastSetTopicTagsIDs)
			},
		},
		{
			name:           "missing tag_ids",
			topicID:        "topic-1",
			body:           `{}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "tag_ids is required",
		},
		{
			name:           "topic not found",
			topicID:        "topic-missing",
			body:           `{"tag_ids":["tag-1"]}`,
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "topic not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCatalogService{setTopicTagsErr: tt.fakeErr}
			ctrl := NewTopicController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPut, "http://test/topics/"+tt.topicID+"/tags", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("topicID", tt.topicID)
			rr := httptest.NewRecorder()

			ctrl.SetTags(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataMap, ok := envelope.Data.(map[string]interface{})
				require.True(t, ok)
				assert.Equal(t, "updated", dataMap["status"])
				if tt.checkCall != nil {
					tt.checkCall(t, fake)
				}
			} else {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestTopicController_ListTags(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &fakeCatalogService{listTopicTagsResult: []*domain.Tag{{ID: "tag-1", Title: "go"}}}
		ctrl := NewTopicController(testLogger, fake)
		req := httptest.NewRequest(http.MethodGet, "http://test/topics/topic-1/tags", nil)
		req.SetPathValue("topicID", "topic-1")
		rr := httptest.NewRecorder()

		ctrl.ListTags(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.Nil(t, envelope.Error)
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		var tags []domain.Tag
		require.NoError(t, json.Unmarshal(dataBytes, &tags))
		require.Len(t, tags, 1)
	})

	t.Run("empty result is an array", func(t *testing.T) {
		ctrl := NewTopicController(testLogger, &fakeCatalogService{})
		req := httptest.NewRequest(http.MethodGet, "http://test/topics/topic-1/tags", nil)
		req.SetPathValue("topicID", "topic-1")
		rr := httptest.NewRecorder()

		ctrl.ListTags(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		_, ok := envelope.Data.([]interface{})
		assert.True(t, ok, "data must be an array, not null")
	})
}
