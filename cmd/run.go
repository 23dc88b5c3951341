package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/pipeline"
)

var (
	runSKU       string
	runImages    []string
	runOverrides []string
	runJSON      bool
)

var runCmd = &cobra.Command{
	Use:   "run <raw title>",
	Short: "Enrich a single supplier title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		overrides, err := parseOverrides(runOverrides)
		if err != nil {
			return err
		}

		item, err := env.Pipeline.Run(ctx, pipeline.Item{
			RawTitle:  args[0],
			SKU:       runSKU,
			ImageURLs: runImages,
			Overrides: overrides,
		})
		if err != nil {
			return eris.Wrap(err, "run enrichment")
		}

		if runJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(item)
		}

		zap.L().Info("enrichment finished",
			zap.String("item_id", item.ID),
			zap.String("status", string(item.Status)),
			zap.Any("resolved_fields", item.ResolvedFields),
		)
		if item.Readiness != nil {
			zap.L().Info("readiness",
				zap.Float64("score", item.Readiness.OverallScore),
				zap.Bool("is_ready", item.Readiness.IsReady),
				zap.Strings("blocking_issues", item.Readiness.BlockingIssues),
			)
		}
		return nil
	},
}

// parseOverrides turns repeated --override field=value flags into a map.
func parseOverrides(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, o := range raw {
		field, value, ok := strings.Cut(o, "=")
		if !ok || field == "" || value == "" {
			return nil, eris.Errorf("malformed override %q, expected field=value", o)
		}
		out[field] = value
	}
	return out, nil
}

func init() {
	runCmd.Flags().StringVar(&runSKU, "sku", "", "supplier SKU for the logistics fallback lookup")
	runCmd.Flags().StringSliceVar(&runImages, "image", nil, "product image URL (repeatable)")
	runCmd.Flags().StringSliceVar(&runOverrides, "override", nil, "manual field override as field=value (repeatable)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the full enriched item as JSON")
	rootCmd.AddCommand(runCmd)
}
