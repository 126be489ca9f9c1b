package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"voicetag/internal/testsupport"
)

func TestPredictPrintsLabels(t *testing.T) {
	env := setupCLITestEnv(t)
	tone := filepath.Join(env.baseDir, "tone.wav")
	testsupport.WriteWAV(t, tone, testsupport.SineWave(16000, 16000, 400), 16000)

	out, _, err := runCLI(t, []string{"predict", tone}, env.configPath, nil)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	requireContains(t, out, "tone.wav: BUKA / FAUZAN")
}

func TestPredictJSONReportsPerFileErrors(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithEmptyPath())
	silence := filepath.Join(env.baseDir, "silence.wav")
	testsupport.WriteWAV(t, silence, make([]float64, 16000), 16000)
	clip := filepath.Join(env.baseDir, "clip.mp3")
	if err := os.WriteFile(clip, []byte("ID3 not decodable"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"predict", "--json", silence, clip}, env.configPath, nil)
	if err == nil || err.Error() != "1 of 2 predictions failed" {
		t.Fatalf("expected partial failure error, got %v", err)
	}

	var results []predictResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != "ok" || results[0].Word != "tutup" || results[0].Speaker != "fikri" || len(results[0].Prediction) != 3 {
		t.Fatalf("unexpected first result %+v", results[0])
	}
	if results[1].Status != "error" || results[1].Message != "FFmpeg not found. Make sure FFmpeg is installed." {
		t.Fatalf("unexpected second result %+v", results[1])
	}
}

func TestPredictReadsStdinRecording(t *testing.T) {
	env := setupCLITestEnv(t)
	wav := testsupport.WAVBytes(t, make([]float64, 8000), 16000)

	out, _, err := runCLI(t, []string{"predict", "--recording", "-"}, env.configPath, bytes.NewReader(wav))
	if err != nil {
		t.Fatalf("predict stdin: %v", err)
	}
	requireContains(t, out, "-: TUTUP / FIKRI")

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var rows []historyRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode history %q: %v", out, err)
	}
	if len(rows) != 1 || rows[0].Source != "recorder" || rows[0].Filename != "stdin" {
		t.Fatalf("unexpected history %+v", rows)
	}
}

func TestPredictFailsWithoutArtifacts(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.Remove(env.cfg.Paths.Model); err != nil {
		t.Fatal(err)
	}
	tone := filepath.Join(env.baseDir, "tone.wav")
	testsupport.WriteWAV(t, tone, testsupport.SineWave(1600, 16000, 400), 16000)

	_, _, err := runCLI(t, []string{"predict", tone}, env.configPath, nil)
	if err == nil {
		t.Fatal("expected failure when the model artifact is missing")
	}
	requireContains(t, err.Error(), "load model assets")
}
