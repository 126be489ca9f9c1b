package assets

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"voicetag/internal/config"
	"voicetag/internal/features"
	"voicetag/internal/fileutil"
	"voicetag/internal/logging"
	"voicetag/internal/model"
)

var (
	// ErrArtifactMissing indicates an artifact file does not exist.
	ErrArtifactMissing = errors.New("model artifact missing")
	// ErrMalformedArtifact indicates an artifact exists but cannot be used.
	ErrMalformedArtifact = errors.New("malformed model artifact")
	// ErrShapeMismatch indicates artifacts that were not exported together.
	ErrShapeMismatch = errors.New("model artifacts disagree on shape")
)

// Paths locates the artifacts on disk. An empty FeaturesConfig selects every
// feature in every domain.
type Paths struct {
	Model            string
	Imputer          string
	SelectedFeatures string
	FeaturesConfig   string
}

// PathsFromConfig extracts artifact paths from application config.
func PathsFromConfig(cfg *config.Config) Paths {
	return Paths{
		Model:            cfg.Paths.Model,
		Imputer:          cfg.Paths.Imputer,
		SelectedFeatures: cfg.Paths.SelectedFeatures,
		FeaturesConfig:   cfg.Paths.FeaturesConfig,
	}
}

// Assets is the immutable model bundle shared by all requests.
type Assets struct {
	Classifier       model.Classifier
	Imputer          model.Imputer
	SelectedFeatures []string
	FeatureConfig    features.Config
	// Fingerprint is the hex SHA256 of the classifier artifact.
	Fingerprint string
}

// Loader memoizes a single artifact load.
type Loader struct {
	paths  Paths
	logger *slog.Logger

	once   sync.Once
	assets *Assets
	err    error
}

// NewLoader constructs a Loader; nothing is read until Load is called.
func NewLoader(paths Paths, logger *slog.Logger) *Loader {
	return &Loader{paths: paths, logger: logging.NewComponentLogger(logger, "assets")}
}

// Load reads and validates the artifacts on first call. Every later call
// returns the same pointer or the same error without touching the disk.
func (l *Loader) Load() (*Assets, error) {
	l.once.Do(func() {
		l.assets, l.err = l.load()
		if l.err != nil {
			l.logger.Error("model assets failed to load", logging.Error(l.err))
		}
	})
	return l.assets, l.err
}

func (l *Loader) load() (*Assets, error) {
	modelData, err := readArtifact("model", l.paths.Model)
	if err != nil {
		return nil, err
	}
	imputerData, err := readArtifact("imputer", l.paths.Imputer)
	if err != nil {
		return nil, err
	}
	selectedData, err := readArtifact("selected features", l.paths.SelectedFeatures)
	if err != nil {
		return nil, err
	}

	classifier, err := model.DecodeClassifier(modelData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedArtifact, l.paths.Model, err)
	}
	imputer, err := model.DecodeImputer(imputerData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedArtifact, l.paths.Imputer, err)
	}
	selected, err := DecodeFeatureNames(selectedData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.paths.SelectedFeatures, err)
	}

	featureCfg := features.Default()
	if l.paths.FeaturesConfig != "" {
		if _, statErr := os.Stat(l.paths.FeaturesConfig); errors.Is(statErr, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: feature config %s", ErrArtifactMissing, l.paths.FeaturesConfig)
		}
		featureCfg, err = features.LoadConfig(l.paths.FeaturesConfig)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
		}
	}

	if err := crossCheck(classifier, imputer, selected); err != nil {
		return nil, err
	}

	l.warnUnproduced(selected, featureCfg)

	a := &Assets{
		Classifier:       classifier,
		Imputer:          imputer,
		SelectedFeatures: selected,
		FeatureConfig:    featureCfg,
		Fingerprint:      fileutil.HashBytes(modelData),
	}
	l.logger.Info("model assets loaded",
		logging.Int("features", len(selected)),
		logging.Int("outputs", classifier.NumOutputs()),
		logging.Int("extracted_columns", len(features.Names(featureCfg))),
		logging.String("fingerprint", a.Fingerprint[:12]),
	)
	return a, nil
}

func readArtifact(label, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: %s path not configured", ErrArtifactMissing, label)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("read %s artifact: %w", label, err)
	}
	return data, nil
}

func crossCheck(c model.Classifier, imp model.Imputer, selected []string) error {
	if got, want := imp.NumFeaturesIn(), len(selected); got != want {
		return fmt.Errorf("%w: imputer expects %d columns, %d features selected", ErrShapeMismatch, got, want)
	}
	if got, want := imp.NumFeaturesOut(), c.NumFeatures(); got != want {
		return fmt.Errorf("%w: imputer emits %d columns, classifier expects %d", ErrShapeMismatch, got, want)
	}
	if names := imp.FeatureNames(); names != nil && !slices.Equal(names, selected) {
		return fmt.Errorf("%w: imputer feature names differ from the selected feature list", ErrShapeMismatch)
	}
	return nil
}

// warnUnproduced logs selected columns the extractor will never fill. They
// still flow through the pipeline as missing values for the imputer.
func (l *Loader) warnUnproduced(selected []string, cfg features.Config) {
	produced := map[string]struct{}{}
	for _, name := range features.Names(cfg) {
		produced[name] = struct{}{}
	}
	var missing []string
	for _, name := range selected {
		if _, ok := produced[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return
	}
	sample := missing
	if len(sample) > 5 {
		sample = sample[:5]
	}
	l.logger.Warn("selected features not produced by the extractor",
		logging.Int("count", len(missing)),
		logging.Any("examples", sample),
		logging.String("impact", "columns are always imputed"),
	)
}

// DecodeFeatureNames decodes the selected-feature artifact: an ordered
// msgpack array of unique, non-empty strings.
func DecodeFeatureNames(data []byte) ([]string, error) {
	var raw any
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: selected features: %v", ErrMalformedArtifact, err)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: selected features must be a list, got %T", ErrMalformedArtifact, raw)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: selected feature list is empty", ErrMalformedArtifact)
	}
	names := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		name, ok := item.(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: selected feature %d is %T, want non-empty string", ErrMalformedArtifact, i, item)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate selected feature %q", ErrMalformedArtifact, name)
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

// EncodeFeatureNames encodes a selected-feature artifact.
func EncodeFeatureNames(names []string) ([]byte, error) {
	return msgpack.Marshal(names)
}
