package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"prepdesk/internal/delivery/http/helpers"
	"prepdesk/internal/domain"
)

// TagController handles the tag catalog endpoints.
type TagController struct {
	Logger  *slog.Logger
	Service domain.CatalogService
}

func NewTagController(logger *slog.Logger, svc domain.CatalogService) *TagController {
	return &TagController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *TagController) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
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

// CreateTagRequest is the request body for POST /tags.
type CreateTagRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate implements Validator.
func (c CreateTagRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	return errs
}

// CreateTagSuccessResponse is the success response envelope for POST /tags (201).
type CreateTagSuccessResponse struct {
	Data  *domain.Tag       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Create godoc
// @Summary Create a tag
// @Description Create a new tag. Titles are unique; a duplicate title is rejected.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTagRequest true "Tag data"
// @Success 201 {object} controllers.CreateTagSuccessResponse "data contains the created tag"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tags [post]
func (c *TagController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tag, err := c.Service.CreateTag(r.Context(), req.Title, req.Description)
	if err != nil {
		c.writeServiceError(w, r, err, "tag not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, tag)
}

// ListTagsSuccessResponse is the success response envelope for GET /tags (200).
type ListTagsSuccessResponse struct {
	Data  []*domain.Tag     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// List godoc
// @Summary List tags
// @Description Returns all tags. Deleted tags are excluded unless include_deleted=true.
// @Tags tags
// @Produce json
// @Param include_deleted query bool false "Include soft-deleted tags"
// @Success 200 {object} controllers.ListTagsSuccessResponse "data is an array of tags"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tags [get]
func (c *TagController) List(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	tags, err := c.Service.ListTags(r.Context(), includeDeleted)
	if err != nil {
		c.writeServiceError(w, r, err, "tag not found")
		return
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tags)
}

// UpdateTagRequest is the request body for PUT /tags/{tagID}.
// All fields optional; omitted fields are unchanged.
type UpdateTagRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Validate implements Validator.
func (u UpdateTagRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	return errs
}

// UpdateTagSuccessResponse is the success response envelope for PUT /tags/{tagID} (200).
type UpdateTagSuccessResponse struct {
	Data  *domain.Tag       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Update godoc
// @Summary Update a tag
// @Description Partially updates tag title and/or description. Omitted fields are unchanged.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tagID path string true "Tag ID (UUID)"
// @Param body body UpdateTagRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateTagSuccessResponse "data contains the updated tag"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tags/{tagID} [put]
func (c *TagController) Update(w http.ResponseWriter, r *http.Request) {
	tagID := r.PathValue("tagID")
	if tagID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing tagID")
		return
	}
	var req UpdateTagRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tag, err := c.Service.UpdateTag(r.Context(), tagID, req.Title, req.Description)
	if err != nil {
		c.writeServiceError(w, r, err, "tag not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tag)
}

// TagStatusResponse is the data payload for delete and restore (200).
type TagStatusResponse struct {
	Status string `json:"status"`
}

// TagStatusSuccessResponse is the success response envelope for delete and restore (200).
type TagStatusSuccessResponse struct {
	Data  TagStatusResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Delete godoc
// @Summary Soft-delete a tag
// @Description Marks the tag deleted. Edges to questions, topics, and sessions are kept; restore brings the tag back unchanged.
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param tagID path string true "Tag ID (UUID)"
// @Success 200 {object} controllers.TagStatusSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tags/{tagID} [delete]
func (c *TagController) Delete(w http.ResponseWriter, r *http.Request) {
	tagID := r.PathValue("tagID")
	if tagID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing tagID")
		return
	}
	if err := c.Service.DeleteTag(r.Context(), tagID); err != nil {
		c.writeServiceError(w, r, err, "tag not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, TagStatusResponse{Status: "deleted"})
}

// Restore godoc
// @Summary Restore a soft-deleted tag
// @Description Clears the deleted flag. Restoring a tag that was never deleted is a successful no-op.
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param tagID path string true "Tag ID (UUID)"
// @Success 200 {object} controllers.TagStatusSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tags/{tagID}/restore [post]
func (c *TagController) Restore(w http.ResponseWriter, r *http.Request) {
	tagID := r.PathValue("tagID")
	if tagID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing tagID")
		return
	}
	if err := c.Service.RestoreTag(r.Context(), tagID); err != nil {
		c.writeServiceError(w, r, err, "tag not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, TagStatusResponse{Status: "restored"})
}

// AssignQuestionsRequest is the request body for PUT /tags/{tagID}/questions.
type AssignQuestionsRequest struct {
	QuestionIDs []string `json:"question_ids"`
}

// Validate implements Validator.
func (a AssignQuestionsRequest) Validate() []string {
	if len(a.QuestionIDs) == 0 {
		return []string{"question_ids is required"}
	}
	return nil
}

// AssignQuestionsSuccessResponse is the success response envelope for PUT /tags/{tagID}/questions (200).
type AssignQuestionsSuccessResponse struct {
	Data  *domain.TagAssignment `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// AssignQuestions godoc
// @Summary Assign a tag to a batch of questions
// @Description Idempotently links the tag to each listed question. Unknown question IDs are reported in skipped_ids rather than failing the call; already-tagged questions stay tagged.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tagID path string true "Tag ID (UUID)"
// @Param body body AssignQuestionsRequest true "Question IDs to tag"
// @Success 200 {object} controllers.AssignQuestionsSuccessResponse "data contains assigned_to and skipped_ids"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (tag)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tags/{tagID}/questions [put]
func (c *TagController) AssignQuestions(w http.ResponseWriter, r *http.Request) {
	tagID := r.PathValue("tagID")
	if tagID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing tagID")
		return
	}
	var req AssignQuestionsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	assignment, err := c.Service.AssignTagToQuestions(r.Context(), tagID, req.QuestionIDs)
	if err != nil {
		c.writeServiceError(w, r, err, "tag not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, assignment)
}
