package labels

import (
	"errors"
	"testing"

	"voicetag/internal/config"
)

func TestInterpretBoundaries(t *testing.T) {
	interp := NewInterpreter(config.Default().Labels)

	tests := []struct {
		name    string
		vec     []float64
		word    string
		speaker string
	}{
		{"word A speaker B", []float64{1, 0, 0}, "buka", "fauzan"},
		{"word B speaker A", []float64{0, 0, 1}, "tutup", "fikri"},
		{"both A", []float64{1, 0, 1}, "buka", "fikri"},
		{"both B", []float64{0, 1, 0}, "tutup", "fauzan"},
		{"any nonzero selects A", []float64{-2, 7, 0.5, 9}, "buka", "fikri"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := interp.Interpret(tt.vec)
			if err != nil {
				t.Fatalf("Interpret returned error: %v", err)
			}
			if res.Word != tt.word || res.Speaker != tt.speaker {
				t.Fatalf("got (%s, %s), want (%s, %s)", res.Word, res.Speaker, tt.word, tt.speaker)
			}
		})
	}
}

func TestInterpretIgnoresMiddlePosition(t *testing.T) {
	interp := NewInterpreter(config.Default().Labels)
	a, _ := interp.Interpret([]float64{1, 0, 0})
	b, _ := interp.Interpret([]float64{1, 1, 0})
	if a != b {
		t.Fatalf("position 1 changed the result: %+v vs %+v", a, b)
	}
}

func TestInterpretRejectsShortVector(t *testing.T) {
	interp := NewInterpreter(config.Default().Labels)
	if _, err := interp.Interpret([]float64{1, 0}); !errors.Is(err, ErrShortVector) {
		t.Fatalf("expected ErrShortVector, got %v", err)
	}
}

func TestDisplayUpperCases(t *testing.T) {
	res := Result{Word: "buka", Speaker: "Fikri"}
	word, speaker := res.Display()
	if word != "BUKA" || speaker != "FIKRI" {
		t.Fatalf("unexpected display %q %q", word, speaker)
	}
}

func TestInterpretCodes(t *testing.T) {
	interp := NewInterpreter(config.Labels{WordA: "open", WordB: "close", SpeakerA: "x", SpeakerB: "y"})
	res, err := interp.Interpret([]float64{0, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.WordCode != CodeB || res.SpeakerCode != CodeA || res.Word != "close" || res.Speaker != "x" {
		t.Fatalf("unexpected result %+v", res)
	}
}
