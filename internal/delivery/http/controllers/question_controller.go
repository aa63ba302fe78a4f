package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"prepdesk/internal/delivery/http/helpers"
	"prepdesk/internal/domain"
)

// maxImportBytes caps the accepted CSV upload size.
const maxImportBytes = 10 << 20

// QuestionController handles the question catalog and bulk import endpoints.
type QuestionController struct {
	Logger   *slog.Logger
	Service  domain.CatalogService
	Importer domain.QuestionImporter
}

func NewQuestionController(logger *slog.Logger, svc domain.CatalogService, importer domain.QuestionImporter) *QuestionController {
	return &QuestionController{
		Logger:   logger,
		Service:  svc,
		Importer: importer,
	}
}

func (c *QuestionController) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
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

// CreateQuestionRequest is the request body for POST /questions.
type CreateQuestionRequest struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	PrimaryAnswer   string `json:"primary_answer"`
	SecondaryAnswer string `json:"secondary_answer"`
	Difficulty      string `json:"difficulty"`
	Status          string `json:"status"`
	Source          string `json:"source"`
}

// Validate implements Validator.
func (c CreateQuestionRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(c.Content) == "" {
		errs = append(errs, "content is required")
	}
	if strings.TrimSpace(c.PrimaryAnswer) == "" {
		errs = append(errs, "primary_answer is required")
	}
	if _, err := domain.ParseDifficulty(c.Difficulty); err != nil {
		errs = append(errs, "difficulty must be easy, medium, or hard")
	}
	return errs
}

// CreateQuestionSuccessResponse is the success response envelope for POST /questions (201).
type CreateQuestionSuccessResponse struct {
	Data  *domain.Question  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Create godoc
// @Summary Create a question
// @Description Create a new interview question. Tag edges are managed separately via PUT /tags/{tagID}/questions.
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateQuestionRequest true "Question data"
// @Success 201 {object} controllers.CreateQuestionSuccessResponse "data contains the created question"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /questions [post]
func (c *QuestionController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	difficulty, _ := domain.ParseDifficulty(req.Difficulty)
	question, err := c.Service.CreateQuestion(r.Context(), domain.CreateQuestionInput{
		Title:           req.Title,
		Content:         req.Content,
		PrimaryAnswer:   req.PrimaryAnswer,
		SecondaryAnswer: req.SecondaryAnswer,
		Difficulty:      difficulty,
		Status:          req.Status,
		Source:          req.Source,
	})
	if err != nil {
		c.writeServiceError(w, r, err, "question not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, question)
}

// GetQuestionSuccessResponse is the success response envelope for GET /questions/{questionID} (200).
type GetQuestionSuccessResponse struct {
	Data  *domain.Question  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Get godoc
// @Summary Get a question by ID
// @Description Returns the question with its tag IDs.
// @Tags questions
// @Produce json
// @Param questionID path string true "Question ID (UUID)"
// @Success 200 {object} controllers.GetQuestionSuccessResponse "data contains the question"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /questions/{questionID} [get]
func (c *QuestionController) Get(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("questionID")
	if questionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing questionID")
		return
	}
	question, err := c.Service.GetQuestion(r.Context(), questionID)
	if err != nil {
		c.writeServiceError(w, r, err, "question not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, question)
}

// UpdateQuestionRequest is the request body for PUT /questions/{questionID}.
// All fields optional; omitted fields are unchanged.
type UpdateQuestionRequest struct {
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	PrimaryAnswer   *string `json:"primary_answer"`
	SecondaryAnswer *string `json:"secondary_answer"`
	Difficulty      *string `json:"difficulty"`
	Status          *string `json:"status"`
	Source          *string `json:"source"`
}

// Validate implements Validator.
func (u UpdateQuestionRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.Content != nil && strings.TrimSpace(*u.Content) == "" {
		errs = append(errs, "content cannot be empty")
	}
	if u.PrimaryAnswer != nil && strings.TrimSpace(*u.PrimaryAnswer) == "" {
		errs = append(errs, "primary_answer cannot be empty")
	}
	if u.Difficulty != nil {
		if _, err := domain.ParseDifficulty(*u.Difficulty); err != nil {
			errs = append(errs, "difficulty must be easy, medium, or hard")
		}
	}
	return errs
}

// UpdateQuestionSuccessResponse is the success response envelope for PUT /questions/{questionID} (200).
type UpdateQuestionSuccessResponse struct {
	Data  *domain.Question  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Update godoc
// @Summary Update a question
// @Description Partially updates question fields. Omitted fields are unchanged. Tag edges and session membership are not patchable here.
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questionID path string true "Question ID (UUID)"
// @Param body body UpdateQuestionRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateQuestionSuccessResponse "data contains the updated question"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /questions/{questionID} [put]
func (c *QuestionController) Update(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("questionID")
	if questionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing questionID")
		return
	}
	var req UpdateQuestionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	patch := domain.QuestionPatch{
		Title:           req.Title,
		Content:         req.Content,
		PrimaryAnswer:   req.PrimaryAnswer,
		SecondaryAnswer: req.SecondaryAnswer,
		Status:          req.Status,
		Source:          req.Source,
	}
	if req.Difficulty != nil {
		d, _ := domain.ParseDifficulty(*req.Difficulty)
		patch.Difficulty = &d
	}
	question, err := c.Service.UpdateQuestion(r.Context(), questionID, patch)
	if err != nil {
		c.writeServiceError(w, r, err, "question not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, question)
}

// ImportCSVSuccessResponse is the success response envelope for POST /questions/import-csv/{tagID}/{sessionID} (200).
type ImportCSVSuccessResponse struct {
	Data  *domain.ImportSummary `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ImportCSV godoc
// @Summary Bulk-import questions from a CSV file
// @Description Parses the multipart "file" part as CSV, creates a question per valid row, tags each with the path tag, and attaches them to the path session. Bad rows are listed in failed_rows with their 1-based data row number; the rest import normally, so the call returns 200 even on partial failure.
// @Tags questions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param tagID path string true "Tag ID (UUID) applied to every imported question"
// @Param sessionID path string true "Session ID (UUID) the imported questions are attached to"
// @Param file formData file true "CSV file (max 10 MiB)"
// @Success 200 {object} controllers.ImportCSVSuccessResponse "data contains the import summary"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (session or tag)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /questions/import-csv/{tagID}/{sessionID} [post]
func (c *QuestionController) ImportCSV(w http.ResponseWriter, r *http.Request) {
	tagID := r.PathValue("tagID")
	sessionID := r.PathValue("sessionID")
	if tagID == "" || sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing tagID or sessionID")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing csv file")
		return
	}
	defer file.Close()

	summary, err := c.Importer.ImportCSV(r.Context(), sessionID, tagID, file)
	if err != nil {
		c.writeServiceError(w, r, err, "session or tag not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}
