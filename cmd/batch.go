package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/feed"
	"github.com/sells-group/catalog-enrich/internal/pipeline"
)

var (
	batchFile      string
	batchLimit     int
	batchDelimiter string
	batchHeader    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch enrich titles from a supplier feed file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		records, err := readFeed(ctx, batchFile)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			zap.L().Info("feed contains no usable rows", zap.String("file", batchFile))
			return nil
		}
		if batchLimit > 0 && len(records) > batchLimit {
			records = records[:batchLimit]
		}

		items := make([]pipeline.Item, len(records))
		for i, r := range records {
			items[i] = pipeline.Item{SKU: r.SKU, RawTitle: r.RawTitle}
		}

		zap.L().Info("processing feed",
			zap.String("file", batchFile),
			zap.Int("items", len(items)),
			zap.Int("concurrency", cfg.Enrich.MaxConcurrentItems),
		)

		res, err := env.Pipeline.RunBatch(ctx, items)
		if err != nil {
			return eris.Wrap(err, "batch enrichment")
		}

		zap.L().Info("feed processed",
			zap.Int("total", res.Total),
			zap.Int("ok", res.OK),
			zap.Int("needs_review", res.Review),
			zap.Int("failed", res.Failed),
			zap.Int("errored", res.Errored),
		)
		return nil
	},
}

// readFeed loads a local feed file, dispatching on extension.
func readFeed(ctx context.Context, path string) ([]feed.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return feed.ReadXLSX(path, feed.XLSXOptions{})
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open feed %s", path)
		}
		defer f.Close()

		delim := ';'
		if batchDelimiter != "" {
			delim = rune(batchDelimiter[0])
		}
		recCh, errCh := feed.StreamCSV(ctx, f, feed.CSVOptions{
			Delimiter: delim,
			HasHeader: batchHeader,
		})

		var records []feed.Record
		for r := range recCh {
			records = append(records, r)
		}
		if err := <-errCh; err != nil {
			return nil, err
		}
		return records, nil
	}
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "supplier feed file (csv or xlsx)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of rows to process (0 = all)")
	batchCmd.Flags().StringVar(&batchDelimiter, "delimiter", ";", "csv field delimiter")
	batchCmd.Flags().BoolVar(&batchHeader, "header", true, "treat the first csv row as a header")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
