package inference

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"voicetag/internal/assets"
	"voicetag/internal/audio"
	"voicetag/internal/history"
	"voicetag/internal/labels"
	"voicetag/internal/logging"
	"voicetag/internal/pipeline"
)

// AssetSource provides the shared model bundle.
type AssetSource interface {
	Load() (*assets.Assets, error)
}

// Normalizer turns raw bytes into a TargetSampleRate mono signal.
type Normalizer interface {
	Normalize(ctx context.Context, raw []byte, hint audio.Hint) (audio.Signal, error)
}

// Recorder persists completed predictions.
type Recorder interface {
	Record(ctx context.Context, rec history.Record) error
}

// Request is one unit of work.
type Request struct {
	Data     []byte
	Filename string
	Source   audio.Source
}

// Outcome is a completed prediction.
type Outcome struct {
	ID         string
	Labels     labels.Result
	Prediction pipeline.Prediction
	// Duration is the length of the normalized audio.
	Duration time.Duration
	// Elapsed is the wall time spent serving the request.
	Elapsed     time.Duration
	Source      audio.Source
	Filename    string
	Fingerprint string
}

// Service coordinates normalization, prediction and interpretation.
type Service struct {
	assets      AssetSource
	normalizer  Normalizer
	interpreter *labels.Interpreter
	recorder    Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// New constructs a Service. recorder may be nil to skip history.
func New(source AssetSource, normalizer Normalizer, interpreter *labels.Interpreter, recorder Recorder, logger *slog.Logger) *Service {
	return &Service{
		assets:      source,
		normalizer:  normalizer,
		interpreter: interpreter,
		recorder:    recorder,
		logger:      logging.NewComponentLogger(logger, "inference"),
		now:         time.Now,
	}
}

// Run serves req.
func (s *Service) Run(ctx context.Context, req Request) (Outcome, error) {
	started := s.now()
	id := uuid.NewString()
	ctx = logging.WithRequestID(ctx, id)
	log := logging.WithContext(ctx, s.logger)

	source := req.Source
	if source == "" {
		source = audio.SourceUpload
	}

	fail := func(stage string, err error) (Outcome, error) {
		log.Warn("prediction failed",
			logging.Stage(stage),
			logging.String("filename", req.Filename),
			logging.String("source", string(source)),
			logging.Error(err),
		)
		return Outcome{}, err
	}

	bundle, err := s.assets.Load()
	if err != nil {
		return fail("assets", fmt.Errorf("load assets: %w", err))
	}

	sig, err := s.normalizer.Normalize(ctx, req.Data, audio.Hint{Filename: req.Filename, Source: source})
	if err != nil {
		return fail("normalize", err)
	}

	pred, err := pipeline.Predict(ctx, sig, bundle)
	if err != nil {
		return fail("pipeline", err)
	}

	result, err := s.interpreter.Interpret(pred)
	if err != nil {
		return fail("interpret", err)
	}

	out := Outcome{
		ID:          id,
		Labels:      result,
		Prediction:  pred,
		Duration:    sig.Duration(),
		Elapsed:     s.now().Sub(started),
		Source:      source,
		Filename:    req.Filename,
		Fingerprint: bundle.Fingerprint,
	}

	log.Info("prediction complete",
		logging.String("word", result.Word),
		logging.String("speaker", result.Speaker),
		logging.String("source", string(source)),
		logging.Duration("audio", out.Duration),
		logging.Duration("elapsed", out.Elapsed),
	)

	s.record(ctx, log, out, started)
	return out, nil
}

func (s *Service) record(ctx context.Context, log *slog.Logger, out Outcome, started time.Time) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(ctx, history.Record{
		ID:          out.ID,
		CreatedAt:   started,
		Source:      string(out.Source),
		Filename:    out.Filename,
		Word:        out.Labels.Word,
		Speaker:     out.Labels.Speaker,
		WordCode:    string(out.Labels.WordCode),
		SpeakerCode: string(out.Labels.SpeakerCode),
		Prediction:  out.Prediction,
		Duration:    out.Duration,
		Fingerprint: out.Fingerprint,
	})
	if err != nil {
		log.Warn("history write failed",
			logging.Error(err),
			logging.String("impact", "prediction returned but not recorded"),
		)
	}
}
