package preflight

import (
	"context"

	"voicetag/internal/assets"
	"voicetag/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// AssetSource loads the model bundle.
type AssetSource interface {
	Load() (*assets.Assets, error)
}

// RunAll executes all applicable preflight checks for the given config. A
// nil loader skips the asset load check.
func RunAll(ctx context.Context, cfg *config.Config, loader AssetSource) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckFFmpeg(cfg)}

	results = append(results,
		CheckArtifact("Model artifact", cfg.Paths.Model),
		CheckArtifact("Imputer artifact", cfg.Paths.Imputer),
		CheckArtifact("Selected features", cfg.Paths.SelectedFeatures),
	)
	if cfg.Paths.FeaturesConfig != "" {
		results = append(results, CheckArtifact("Feature config", cfg.Paths.FeaturesConfig))
	}

	results = append(results, CheckWritableDir("State directory", cfg.Paths.StateDir))

	if cfg.History.Enabled {
		results = append(results, CheckHistory(ctx, cfg.History.Path))
	}

	if loader != nil {
		results = append(results, CheckAssets(ctx, loader))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
