package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"prepdesk/internal/domain"
)

type questionImporter struct {
	questionRepo   domain.QuestionRepository
	tagRepo        domain.TagRepository
	sessionRepo    domain.SessionRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewQuestionImporter wires the CSV bulk import pipeline.
func NewQuestionImporter(questionRepo domain.QuestionRepository, tagRepo domain.TagRepository, sessionRepo domain.SessionRepository, logger *slog.Logger, timeout time.Duration) domain.QuestionImporter {
	return &questionImporter{
		questionRepo:   questionRepo,
		tagRepo:        tagRepo,
		sessionRepo:    sessionRepo,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// CSV columns. Header is matched case-insensitively; secondary_answer and
// source are optional.
const (
	colTitle           = "TITLE"
	colContent         = "CONTENT"
	colPrimaryAnswer   = "PRIMARY_ANSWER"
	colSecondaryAnswer = "SECONDARY_ANSWER"
	colDifficulty      = "DIFFICULTY"
	colSource          = "SOURCE"
)

// ImportCSV parses the file row by row, creates and tags a question per valid
// row, and attaches everything that was created to the session once all rows
// have settled. A malformed row is recorded and skipped, never fatal; the
// call fails outright only when the session or tag is missing, or the file
// has no usable header.
func (s *questionImporter) ImportCSV(ctx context.Context, sessionID, tagID string, file io.Reader) (*domain.ImportSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if _, err := s.tagRepo.GetByID(ctx, tagID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: tag %s", domain.ErrNotFound, tagID)
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}

	cr := csv.NewReader(file)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read CSV header: %v", domain.ErrValidation, err)
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colTitle, colContent, colPrimaryAnswer, colDifficulty} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("%w: CSV missing required column: %s", domain.ErrValidation, strings.ToLower(required))
		}
	}
	getCol := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	summary := &domain.ImportSummary{FailedRows: []domain.ImportRowFailure{}}
	var createdIDs []string
	rowNum := 0

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			summary.FailedRows = append(summary.FailedRows, domain.ImportRowFailure{Row: rowNum, Reason: err.Error()})
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			break
		}

		title := getCol(row, colTitle)
		content := getCol(row, colContent)
		primary := getCol(row, colPrimaryAnswer)
		if title == "" || content == "" || primary == "" {
			summary.FailedRows = append(summary.FailedRows, domain.ImportRowFailure{Row: rowNum, Reason: "title, content and primary_answer are required"})
			continue
		}
		difficulty, err := domain.ParseDifficulty(getCol(row, colDifficulty))
		if err != nil {
			summary.FailedRows = append(summary.FailedRows, domain.ImportRowFailure{Row: rowNum, Reason: "unknown difficulty: " + getCol(row, colDifficulty)})
			continue
		}
		source := getCol(row, colSource)
		if source == "" {
			source = "csv-import"
		}

		now := time.Now()
		q := domain.NewQuestion(title, content, primary, getCol(row, colSecondaryAnswer), difficulty, "active", source, now, now)
		if err := s.questionRepo.Create(ctx, q); err != nil {
			s.logger.ErrorContext(ctx, "import row create failed", "row", rowNum, "err", err)
			summary.FailedRows = append(summary.FailedRows, domain.ImportRowFailure{Row: rowNum, Reason: "create failed: " + err.Error()})
			continue
		}
		if _, _, err := s.questionRepo.AssignTag(ctx, tagID, []string{q.ID}); err != nil {
			s.logger.ErrorContext(ctx, "import row tag failed", "row", rowNum, "question_id", q.ID, "err", err)
			summary.FailedRows = append(summary.FailedRows, domain.ImportRowFailure{Row: rowNum, Reason: "tag assignment failed: " + err.Error()})
			continue
		}
		createdIDs = append(createdIDs, q.ID)
		summary.CreatedCount++
	}

	// Attach after all row-level creations settled so no created question is
	// left invisible to the caller.
	count := session.TotalQuestionCount
	for _, questionID := range createdIDs {
		c, err := s.sessionRepo.AttachQuestion(ctx, sessionID, questionID)
		if err != nil {
			return nil, fmt.Errorf("attach imported question %s: %w", questionID, err)
		}
		count = c
	}
	summary.TotalQuestionCount = count

	s.logger.InfoContext(ctx, "bulk import finished",
		"session_id", sessionID,
		"tag_id", tagID,
		"created", summary.CreatedCount,
		"failed", len(summary.FailedRows),
		"total_question_count", summary.TotalQuestionCount,
	)
	return summary, nil
}
