package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"prepdesk/internal/delivery/http/helpers"
	"prepdesk/internal/domain"
)

// maxThumbnailBytes caps the accepted thumbnail upload size.
const maxThumbnailBytes = 5 << 20

// SessionController handles the session-template endpoints.
type SessionController struct {
	Logger  *slog.Logger
	Service domain.SessionService
}

func NewSessionController(logger *slog.Logger, svc domain.SessionService) *SessionController {
	return &SessionController{
		Logger:  logger,
		Service: svc,
	}
}

// writeServiceError maps service errors to the standard envelope. notFoundMsg
// is the 404 message; validation and upstream failures carry their own text.
func (c *SessionController) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrValidation):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrUpstreamAsset):
		c.Logger.ErrorContext(r.Context(), "asset store failure", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodeUpstreamError, "image upload failed")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// CreateSessionRequest is the request body for POST /sessions.
type CreateSessionRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	TopicID         string   `json:"topic_id"`
	Difficulty      string   `json:"difficulty"`
	DurationMinutes int      `json:"duration_minutes"`
	Source          string   `json:"source"`
	TagIDs          []string `json:"tag_ids"`
}

// Validate implements Validator.
func (c CreateSessionRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.TopicID == "" {
		errs = append(errs, "topic_id is required")
	}
	if c.Difficulty != "" {
		if _, err := domain.ParseDifficulty(c.Difficulty); err != nil {
			errs = append(errs, "difficulty must be easy, medium, or hard")
		}
	}
	if c.DurationMinutes < 0 {
		errs = append(errs, "duration_minutes must be non-negative")
	}
	return errs
}

// CreateSessionSuccessResponse is the success response envelope for POST /sessions (201).
type CreateSessionSuccessResponse struct {
	Data  *domain.Session   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Create godoc
// @Summary Create a session template
// @Description Create a new session template under an existing topic. The question set starts empty; use the attach endpoint to add questions. A thumbnail is set separately via PUT /sessions/{sessionID}/thumbnail.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateSessionRequest true "Session data"
// @Success 201 {object} controllers.CreateSessionSuccessResponse "data contains the created session"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions [post]
func (c *SessionController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	var difficulty domain.Difficulty
	if req.Difficulty != "" {
		difficulty, _ = domain.ParseDifficulty(req.Difficulty)
	}
	session, err := c.Service.CreateTemplate(r.Context(), domain.CreateSessionInput{
		Title:           req.Title,
		Description:     req.Description,
		TopicID:         req.TopicID,
		Difficulty:      difficulty,
		DurationMinutes: req.DurationMinutes,
		Source:          req.Source,
		TagIDs:          req.TagIDs,
	})
	if err != nil {
		c.writeServiceError(w, r, err, "session not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, session)
}

// ListSessionsResponse is the data payload for GET /sessions (200).
type ListSessionsResponse struct {
	Items      []*domain.Session      `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListSessionsSuccessResponse is the success response envelope for GET /sessions (200).
type ListSessionsSuccessResponse struct {
	Data  ListSessionsResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// List godoc
// @Summary List session templates
// @Description Returns a paginated list of session templates. scope filters by source ("admin" or "company"; "all" or omitted returns every source). Deleted templates are excluded unless include_deleted=true.
// @Tags sessions
// @Produce json
// @Param scope query string false "Source filter: admin, company, or all (default all)"
// @Param include_deleted query bool false "Include soft-deleted templates"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListSessionsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions [get]
func (c *SessionController) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.SessionFilter
	switch scope := strings.ToLower(r.URL.Query().Get("scope")); scope {
	case "", "all":
	case "admin", "company":
		filter.Source = scope
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "scope must be admin, company, or all")
		return
	}
	filter.IncludeDeleted = r.URL.Query().Get("include_deleted") == "true"

	params := helpers.ParsePagination(r)
	sessions, total, err := c.Service.ListTemplates(r.Context(), filter, params)
	if err != nil {
		c.writeServiceError(w, r, err, "session not found")
		return
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListSessionsResponse{Items: sessions, Pagination: meta})
}

// GetSessionSuccessResponse is the success response envelope for GET /sessions/{sessionID} (200).
type GetSessionSuccessResponse struct {
	Data  *domain.SessionDetail `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// Get godoc
// @Summary Get a session template by ID
// @Description Returns the session with its resolved topic, tags, and questions in attachment order. Deleted templates are returned too, so the admin restore screen can show them.
// @Tags sessions
// @Produce json
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} controllers.GetSessionSuccessResponse "data contains the session detail"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{sessionID} [get]
func (c *SessionController) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	detail, err := c.Service.GetTemplate(r.Context(), sessionID)
	if err != nil {
		c.writeServiceError(w, r, err, "session not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// UpdateSessionRequest is the request body for PUT /sessions/{sessionID}.
// All fields optional; omitted fields are unchanged. tag_ids, when present,
// replaces the whole tag set.
type UpdateSessionRequest struct {
	Title           *string   `json:"title"`
	Description     *string   `json:"description"`
	TopicID         *string   `json:"topic_id"`
	Difficulty      *string   `json:"difficulty"`
	DurationMinutes *int      `json:"duration_minutes"`
	Source          *string   `json:"source"`
	TagIDs          *[]string `json:"tag_ids"`
}

// Validate implements Validator.
func (u UpdateSessionRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.TopicID != nil && *u.TopicID == "" {
		errs = append(errs, "topic_id cannot be empty")
	}
	if u.Difficulty != nil {
		if _, err := domain.ParseDifficulty(*u.Difficulty); err != nil {
			errs = append(errs, "difficulty must be easy, medium, or hard")
		}
	}
	if u.DurationMinutes != nil && *u.DurationMinutes < 0 {
		errs = append(errs, "duration_minutes must be non-negative")
	}
	return errs
}

// UpdateSessionSuccessResponse is the success response envelope for PUT /sessions/{sessionID} (200).
type UpdateSessionSuccessResponse struct {
	Data  *domain.Session   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Update godoc
// @Summary Update session template metadata
// @Description Partially updates session metadata. Omitted fields are unchanged. The question set and thumbnail are never touched here; they have their own endpoints.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Param body body UpdateSessionRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateSessionSuccessResponse "data contains the updated session"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{sessionID} [put]
func (c *SessionController) Update(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	var req UpdateSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	patch := domain.SessionPatch{
		Title:           req.Title,
		Description:     req.Description,
		TopicID:         req.TopicID,
		DurationMinutes: req.DurationMinutes,
		Source:          req.Source,
		TagIDs:          req.TagIDs,
	}
	if req.Difficulty != nil {
		d, _ := domain.ParseDifficulty(*req.Difficulty)
		patch.Difficulty = &d
	}
	session, err := c.Service.UpdateTemplate(r.Context(), sessionID, patch)
	if err != nil {
		c.writeServiceError(w, r, err, "session not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, session)
}

// SessionStatusResponse is the data payload for delete and restore (200).
type SessionStatusResponse struct {
	Status string `json:"status"`
}

// SessionStatusSuccessResponse is the success response envelope for delete and restore (200).
type SessionStatusSuccessResponse struct {
	Data  SessionStatusResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// Delete godoc
// @Summary Soft-delete a session template
// @Description Marks the template deleted. Its rows, edges, and question count are kept; restore brings it back unchanged. Deleting an already-deleted template is a successful no-op.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} controllers.SessionStatusSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{sessionID} [delete]
func (c *SessionController) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	if err := c.Service.DeleteTemplate(r.Context(), sessionID); err != nil {
		c.writeServiceError(w, r, err, "session not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SessionStatusResponse{Status: "deleted"})
}

// Restore godoc
// @Summary Restore a soft-deleted session template
// @Description Clears the deleted flag. Restoring a template that was never deleted is a successful no-op.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} controllers.SessionStatusSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{sessionID}/restore [post]
func (c *SessionController) Restore(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	if err := c.Service.RestoreTemplate(r.Context(), sessionID); err != nil {
		c.writeServiceError(w, r, err, "session not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SessionStatusResponse{Status: "restored"})
}

// QuestionCountResponse is the data payload for attach and detach (200).
type QuestionCountResponse struct {
	TotalQuestionCount int `json:"total_question_count"`
}

// QuestionCountSuccessResponse is the success response envelope for attach and detach (200).
type QuestionCountSuccessResponse struct {
	Data  QuestionCountResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// AttachQuestion godoc
// @Summary Attach a question to a session template
// @Description Adds the question to the end of the template's question list and bumps total_question_count in the same transaction. Attaching an already-attached question is a successful no-op that returns the unchanged count.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Param questionID path string true "Question ID (UUID)"
// @Success 200 {object} controllers.QuestionCountSuccessResponse "data contains total_question_count"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{sessionID}/questions/{questionID} [post]
func (c *SessionController) AttachQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	questionID := r.PathValue("questionID")
	if sessionID == "" || questionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID or questionID")
		return
	}
	count, err := c.Service.AddQuestions(r.Context(), sessionID, []string{questionID})
	if err != nil {
		c.writeServiceError(w, r, err, "session or question not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, QuestionCountResponse{TotalQuestionCount: count})
}

// DetachQuestion godoc
// @Summary Detach a question from a session template
// @Description Removes the question from the template's question list and drops total_question_count in the same transaction. Detaching a question that is not attached is a successful no-op that returns the unchanged count.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Param questionID path string true "Question ID (UUID)"
// @Success 200 {object} controllers.QuestionCountSuccessResponse "data contains total_question_count"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{sessionID}/questions/{questionID} [delete]
func (c *SessionController) DetachQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	questionID := r.PathValue("questionID")
	if sessionID == "" || questionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID or questionID")
		return
	}
	count, err := c.Service.RemoveQuestion(r.Context(), sessionID, questionID)
	if err != nil {
		c.writeServiceError(w, r, err, "session or question not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, QuestionCountResponse{TotalQuestionCount: count})
}

// ListAvailableQuestionsSuccessResponse is the success response envelope for GET /sessions/{sessionID}/available-questions (200).
type ListAvailableQuestionsSuccessResponse struct {
	Data  []*domain.Question `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListAvailableQuestions godoc
// @Summary List questions not yet attached to a session template
// @Description Returns non-deleted questions that are not currently attached to the template, for the add-question picker.
// @Tags sessions
// @Produce json
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} controllers.ListAvailableQuestionsSuccessResponse "data is an array of questions"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{sessionID}/available-questions [get]
func (c *SessionController) ListAvailableQuestions(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	questions, err := c.Service.ListAvailableQuestions(r.Context(), sessionID)
	if err != nil {
		c.writeServiceError(w, r, err, "session not found")
		return
	}
	if questions == nil {
		questions = []*domain.Question{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, questions)
}

// ReplaceThumbnailResponse is the data payload for PUT /sessions/{sessionID}/thumbnail (200).
type ReplaceThumbnailResponse struct {
	ThumbnailURL string `json:"thumbnail_url"`
}

// ReplaceThumbnailSuccessResponse is the success response envelope for PUT /sessions/{sessionID}/thumbnail (200).
type ReplaceThumbnailSuccessResponse struct {
	Data  ReplaceThumbnailResponse `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// ReplaceThumbnail godoc
// @Summary Replace a session template's thumbnail
// @Description Uploads the multipart "image" part to the asset store and swaps the template's thumbnail URL. The upload happens first; if it fails the current thumbnail is kept and 502 is returned.
// @Tags sessions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Param image formData file true "Thumbnail image (png, jpeg, gif, or webp; max 5 MiB)"
// @Success 200 {object} controllers.ReplaceThumbnailSuccessResponse "data contains the new thumbnail_url"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: upstream_error"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{sessionID}/thumbnail [put]
func (c *SessionController) ReplaceThumbnail(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxThumbnailBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing image file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := c.Service.ReplaceThumbnail(r.Context(), sessionID, file, contentType)
	if err != nil {
		c.writeServiceError(w, r, err, "session not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ReplaceThumbnailResponse{ThumbnailURL: url})
}
