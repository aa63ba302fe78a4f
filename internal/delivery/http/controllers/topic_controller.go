package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"prepdesk/internal/delivery/http/helpers"
	"prepdesk/internal/domain"
)

// TopicController handles the topic catalog endpoints.
type TopicController struct {
	Logger  *slog.Logger
	Service domain.CatalogService
}

func NewTopicController(logger *slog.Logger, svc domain.CatalogService) *TopicController {
	return &TopicController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *TopicController) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrValidation):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// CreateTopicRequest is the request body for POST /topics.
type CreateTopicRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate implements Validator.
func (c CreateTopicRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	return errs
}

// CreateTopicSuccessResponse is the success response envelope for POST /topics (201).
type CreateTopicSuccessResponse struct {
	Data  *domain.Topic     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Create godoc
// @Summary Create a topic
// @Description Create a new topic. Sessions reference a topic by ID; deleted topics cannot be referenced from new sessions.
// @Tags topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTopicRequest true "Topic data"
// @Success 201 {object} controllers.CreateTopicSuccessResponse "data contains the created topic"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /topics [post]
func (c *TopicController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTopicRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	topic, err := c.Service.CreateTopic(r.Context(), req.Title, req.Description)
	if err != nil {
		c.writeServiceError(w, r, err, "topic not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, topic)
}

// ListTopicsSuccessResponse is the success response envelope for GET /topics (200).
type ListTopicsSuccessResponse struct {
	Data  []*domain.Topic   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// List godoc
// @Summary List topics
// @Description Returns all topics. Deleted topics are excluded unless include_deleted=true.
// @Tags topics
// @Produce json
// @Param include_deleted query bool false "Include soft-deleted topics"
// @Success 200 {object} controllers.ListTopicsSuccessResponse "data is an array of topics"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /topics [get]
func (c *TopicController) List(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	topics, err := c.Service.ListTopics(r.Context(), includeDeleted)
	if err != nil {
		c.writeServiceError(w, r, err, "topic not found")
		return
	}
	if topics == nil {
		topics = []*domain.Topic{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, topics)
}

// UpdateTopicRequest is the request body for PUT /topics/{topicID}.
// All fields optional; omitted fields are unchanged.
type UpdateTopicRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Validate implements Validator.
func (u UpdateTopicRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	return errs
}

// UpdateTopicSuccessResponse is the success response envelope for PUT /topics/{topicID} (200).
type UpdateTopicSuccessResponse struct {
	Data  *domain.Topic     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Update godoc
// @Summary Update a topic
// @Description Partially updates topic title and/or description. Omitted fields are unchanged.
// @Tags topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param topicID path string true "Topic ID (UUID)"
// @Param body body UpdateTopicRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateTopicSuccessResponse "data contains the updated topic"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /topics/{topicID} [put]
func (c *TopicController) Update(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")
	if topicID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing topicID")
		return
	}
	var req UpdateTopicRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	topic, err := c.Service.UpdateTopic(r.Context(), topicID, req.Title, req.Description)
	if err != nil {
		c.writeServiceError(w, r, err, "topic not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, topic)
}

// TopicStatusResponse is the data payload for delete and restore (200).
type TopicStatusResponse struct {
	Status string `json:"status"`
}

// TopicStatusSuccessResponse is the success response envelope for delete and restore (200).
type TopicStatusSuccessResponse struct {
	Data  TopicStatusResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// Delete godoc
// @Summary Soft-delete a topic
// @Description Marks the topic deleted. Existing sessions keep their reference; new sessions cannot use a deleted topic.
// @Tags topics
// @Produce json
// @Security BearerAuth
// @Param topicID path string true "Topic ID (UUID)"
// @Success 200 {object} controllers.TopicStatusSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /topics/{topicID} [delete]
func (c *TopicController) Delete(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")
	if topicID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing topicID")
		return
	}
	if err := c.Service.DeleteTopic(r.Context(), topicID); err != nil {
		c.writeServiceError(w, r, err, "topic not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, TopicStatusResponse{Status: "deleted"})
}

// Restore godoc
// @Summary Restore a soft-deleted topic
// @Description Clears the deleted flag. Restoring a topic that was never deleted is a successful no-op.
// @Tags topics
// @Produce json
// @Security BearerAuth
// @Param topicID path string true "Topic ID (UUID)"
// @Success 200 {object} controllers.TopicStatusSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /topics/{topicID}/restore [post]
func (c *TopicController) Restore(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")
	if topicID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing topicID")
		return
	}
	if err := c.Service.RestoreTopic(r.Context(), topicID); err != nil {
		c.writeServiceError(w, r, err, "topic not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, TopicStatusResponse{Status: "restored"})
}

// SetTopicTagsRequest is the request body for PUT /topics/{topicID}/tags.
// tag_ids replaces the topic's whole tag set; an empty list clears it.
type SetTopicTagsRequest struct {
	TagIDs []string `json:"tag_ids"`
}

// Validate implements Validator.
func (s SetTopicTagsRequest) Validate() []string {
	if s.TagIDs == nil {
		return []string{"tag_ids is required"}
	}
	return nil
}

// SetTopicTagsSuccessResponse is the success response envelope for PUT /topics/{topicID}/tags (200).
type SetTopicTagsSuccessResponse struct {
	Data  TopicStatusResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// SetTags godoc
// @Summary Replace a topic's tag set
// @Description Replaces the topic's tag edges with the given list. An empty list removes all tags.
// @Tags topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param topicID path string true "Topic ID (UUID)"
// @Param body body SetTopicTagsRequest true "Tag IDs"
// @Success 200 {object} controllers.SetTopicTagsSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /topics/{topicID}/tags [put]
func (c *TopicController) SetTags(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")
	if topicID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing topicID")
		return
	}
	var req SetTopicTagsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.SetTopicTags(r.Context(), topicID, req.TagIDs); err != nil {
		c.writeServiceError(w, r, err, "topic not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, TopicStatusResponse{Status: "updated"})
}

// ListTopicTagsSuccessResponse is the success response envelope for GET /topics/{topicID}/tags (200).
type ListTopicTagsSuccessResponse struct {
	Data  []*domain.Tag     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListTags godoc
// @Summary List a topic's tags
// @Description Returns the tags currently linked to the topic.
// @Tags topics
// @Produce json
// @Param topicID path string true "Topic ID (UUID)"
// @Success 200 {object} controllers.ListTopicTagsSuccessResponse "data is an array of tags"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /topics/{topicID}/tags [get]
func (c *TopicController) ListTags(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")
	if topicID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing topicID")
		return
	}
	tags, err := c.Service.ListTopicTags(r.Context(), topicID)
	if err != nil {
		c.writeServiceError(w, r, err, "topic not found")
		return
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tags)
}
