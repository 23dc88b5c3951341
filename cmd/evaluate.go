package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/gate"
	"github.com/sells-group/catalog-enrich/internal/model"
	"github.com/sells-group/catalog-enrich/internal/store"
)

var (
	evalMinScore      float64
	evalConfidence    string
	evalRequireMarket bool
	evalRequireMedia  bool
	evalBrands        []string
	evalStatus        string
	evalLimit         int
	evalJSON          bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Bulk-evaluate stored items against publication criteria",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("import"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		items, err := st.ListItems(ctx, store.ItemFilter{
			Status: model.ItemStatus(evalStatus),
			Limit:  evalLimit,
		})
		if err != nil {
			return eris.Wrap(err, "list items")
		}

		decision := gate.EvaluateBulk(items, gate.Criteria{
			MinScore:                  evalMinScore,
			RequiredConfidenceLevel:   model.ConfidenceLevel(evalConfidence),
			RequireMarketVerification: evalRequireMarket,
			RequireMediaValidation:    evalRequireMedia,
			BrandFilters:              evalBrands,
		})

		if evalJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(decision)
		}

		zap.L().Info("bulk decision",
			zap.Int("total", decision.Summary.Total),
			zap.Int("approved", decision.Summary.Approved),
			zap.Int("rejected", decision.Summary.Rejected),
			zap.Float64("mean_score", decision.Summary.MeanScore),
		)
		for _, rej := range decision.Rejected {
			zap.L().Info("rejected",
				zap.String("item_id", rej.ItemID),
				zap.Strings("reasons", rej.Reasons),
			)
		}
		return nil
	},
}

func init() {
	evaluateCmd.Flags().Float64Var(&evalMinScore, "min-score", 0, "minimum readiness score")
	evaluateCmd.Flags().StringVar(&evalConfidence, "confidence", "", "required confidence level (low|medium|high)")
	evaluateCmd.Flags().BoolVar(&evalRequireMarket, "require-market", false, "require at least one market-verified entity")
	evaluateCmd.Flags().BoolVar(&evalRequireMedia, "require-media", false, "require a passing media validation score")
	evaluateCmd.Flags().StringSliceVar(&evalBrands, "brand", nil, "restrict approval to these brands (repeatable)")
	evaluateCmd.Flags().StringVar(&evalStatus, "status", "", "only evaluate items with this status")
	evaluateCmd.Flags().IntVar(&evalLimit, "limit", 0, "max items to evaluate (0 = store default)")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "print the full decision as JSON")
	rootCmd.AddCommand(evaluateCmd)
}
