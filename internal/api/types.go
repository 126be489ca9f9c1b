package api

import (
	"time"

	"voicetag/internal/history"
	"voicetag/internal/inference"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

const (
	statusOK    = "ok"
	statusError = "error"
)

// PredictResponse is returned for a successful prediction.
type PredictResponse struct {
	Status     string    `json:"status"`
	ID         string    `json:"id"`
	Word       string    `json:"word"`
	Speaker    string    `json:"speaker"`
	Display    string    `json:"display"`
	Prediction []float64 `json:"prediction"`
	Source     string    `json:"source"`
	Filename   string    `json:"filename,omitempty"`
	DurationMS int64     `json:"durationMs"`
}

// ErrorResponse is returned for every failure.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse describes server liveness.
type HealthResponse struct {
	Status      string `json:"status"`
	Fingerprint string `json:"modelFingerprint,omitempty"`
	Features    int    `json:"features"`
}

// HistoryEntry is one past prediction.
type HistoryEntry struct {
	ID          string    `json:"id"`
	CreatedAt   string    `json:"createdAt"`
	Source      string    `json:"source"`
	Filename    string    `json:"filename,omitempty"`
	Word        string    `json:"word"`
	Speaker     string    `json:"speaker"`
	Prediction  []float64 `json:"prediction"`
	DurationMS  int64     `json:"durationMs"`
	Fingerprint string    `json:"modelFingerprint,omitempty"`
}

// HistoryResponse wraps a page of history entries.
type HistoryResponse struct {
	Status  string         `json:"status"`
	Entries []HistoryEntry `json:"entries"`
}

// FromOutcome converts a completed prediction into its wire form.
func FromOutcome(out inference.Outcome) PredictResponse {
	word, speaker := out.Labels.Display()
	return PredictResponse{
		Status:     statusOK,
		ID:         out.ID,
		Word:       out.Labels.Word,
		Speaker:    out.Labels.Speaker,
		Display:    word + " / " + speaker,
		Prediction: append([]float64(nil), out.Prediction...),
		Source:     string(out.Source),
		Filename:   out.Filename,
		DurationMS: out.Duration.Milliseconds(),
	}
}

// FromRecord converts a stored prediction into its wire form.
func FromRecord(rec history.Record) HistoryEntry {
	return HistoryEntry{
		ID:          rec.ID,
		CreatedAt:   formatTime(rec.CreatedAt),
		Source:      rec.Source,
		Filename:    rec.Filename,
		Word:        rec.Word,
		Speaker:     rec.Speaker,
		Prediction:  rec.Prediction,
		DurationMS:  rec.Duration.Milliseconds(),
		Fingerprint: rec.Fingerprint,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
