package domain

import (
	"context"
	"io"
)

// ImportRowFailure describes why a single CSV data row was not imported.
// Row is the 1-based data row number, header excluded.
type ImportRowFailure struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportSummary is the manifest returned by a bulk question import.
// Partial success is the expected outcome: failed rows are listed, never
// silently dropped. TotalQuestionCount is the session's count after import.
type ImportSummary struct {
	CreatedCount       int                `json:"created_count"`
	FailedRows         []ImportRowFailure `json:"failed_rows"`
	TotalQuestionCount int                `json:"total_question_count"`
}

// QuestionImporter converts an uploaded CSV into questions tagged with the
// given tag and attached to the target session. The call fails outright only
// when the session or tag does not exist or the file cannot be parsed at all.
type QuestionImporter interface {
	ImportCSV(ctx context.Context, sessionID, tagID string, file io.Reader) (*ImportSummary, error)
}
