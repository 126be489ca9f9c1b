package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"voicetag/internal/features"
)

func newFeaturesCommand(ctx *commandContext) *cobra.Command {
	var domain string
	var columns bool

	cmd := &cobra.Command{
		Use:   "features",
		Short: "List the features the extractor produces",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			featureCfg := features.Default()
			if cfg.Paths.FeaturesConfig != "" {
				featureCfg, err = features.LoadConfig(cfg.Paths.FeaturesConfig)
				if err != nil {
					return err
				}
			}
			if domain != "" {
				featureCfg, err = restrictDomain(featureCfg, features.Domain(strings.ToLower(domain)))
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if columns {
				for _, name := range features.Names(featureCfg) {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			infos := features.Describe(featureCfg)
			rows := make([][]string, 0, len(infos))
			total := 0
			for _, info := range infos {
				total += len(info.Columns)
				rows = append(rows, []string{string(info.Domain), info.Name, strconv.Itoa(len(info.Columns))})
			}
			footer := fmt.Sprintf("%d features, %d columns", len(infos), total)
			fmt.Fprintln(out, renderTable([]string{"Domain", "Feature", "Columns"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}, footer))
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Only list one domain (statistical, temporal, spectral)")
	cmd.Flags().BoolVar(&columns, "columns", false, "Print column names one per line")
	return cmd
}

func restrictDomain(cfg features.Config, domain features.Domain) (features.Config, error) {
	known := false
	for _, d := range features.Domains {
		if d == domain {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown domain %q", domain)
	}
	settings, ok := cfg[domain]
	if !ok {
		return features.Config{}, nil
	}
	return features.Config{domain: settings}, nil
}
