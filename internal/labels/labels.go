// Package labels maps raw prediction vectors onto the configured word and
// speaker names.
package labels

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"voicetag/internal/config"
)

// ErrShortVector reports a prediction vector without the word and speaker
// positions.
var ErrShortVector = errors.New("prediction vector too short")

const (
	wordIndex    = 0
	speakerIndex = 2
	minLength    = 3
)

// Code identifies one of the two classes of a binary output.
type Code string

const (
	CodeA Code = "A"
	CodeB Code = "B"
)

// Result is the interpreted label pair.
type Result struct {
	Word        string `json:"word"`
	Speaker     string `json:"speaker"`
	WordCode    Code   `json:"word_code"`
	SpeakerCode Code   `json:"speaker_code"`
}

// Display returns the labels upper-cased for presentation.
func (r Result) Display() (word, speaker string) {
	upper := cases.Upper(language.Und)
	return upper.String(r.Word), upper.String(r.Speaker)
}

// Interpreter holds the label names for each class.
type Interpreter struct {
	labels config.Labels
}

// NewInterpreter builds an Interpreter from configured label names.
func NewInterpreter(cfg config.Labels) *Interpreter {
	return &Interpreter{labels: cfg}
}

// Interpret maps vec to labels. A nonzero value at position 0 selects word A
// and at position 2 selects speaker A. Position 1 is not interpreted.
func (i *Interpreter) Interpret(vec []float64) (Result, error) {
	if len(vec) < minLength {
		return Result{}, fmt.Errorf("%w: got %d positions, need %d", ErrShortVector, len(vec), minLength)
	}
	res := Result{
		Word:        i.labels.WordB,
		WordCode:    CodeB,
		Speaker:     i.labels.SpeakerB,
		SpeakerCode: CodeB,
	}
	if vec[wordIndex] != 0 {
		res.Word, res.WordCode = i.labels.WordA, CodeA
	}
	if vec[speakerIndex] != 0 {
		res.Speaker, res.SpeakerCode = i.labels.SpeakerA, CodeA
	}
	return res, nil
}
