package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/feed"
	"github.com/sells-group/catalog-enrich/internal/model"
	"github.com/sells-group/catalog-enrich/internal/store"
)

var importSource string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Ingest a supplier feed into the store as pending items",
	Long:  "Downloads a feed from a local path, http(s) or ftp URL and stores each row as a received item. Rows whose input hash is already stored are upserted, not duplicated. Enrichment happens separately via batch.",
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

		records, err := fetchFeed(ctx, importSource)
		if err != nil {
			return err
		}

		imported, err := importRecords(ctx, st, records)
		if err != nil {
			return err
		}

		zap.L().Info("feed imported",
			zap.String("source", importSource),
			zap.Int("rows", len(records)),
			zap.Int("imported", imported),
		)
		return nil
	},
}

// fetchFeed materializes the feed behind a source reference. Remote
// sources are downloaded to a temp file first so xlsx parsing can seek.
func fetchFeed(ctx context.Context, source string) ([]feed.Record, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		f := feed.NewHTTPFetcher(feed.HTTPOptions{RatePerSec: cfg.Feed.RatePerSec})
		return fetchRemote(ctx, source, func(ctx context.Context, path string) error {
			_, err := f.DownloadToFile(ctx, source, path)
			return err
		})
	case strings.HasPrefix(source, "ftp://"):
		f := feed.NewFTPFetcher(feed.FTPOptions{
			User:     cfg.Feed.FTPUser,
			Password: cfg.Feed.FTPPassword,
		})
		return fetchRemote(ctx, source, func(ctx context.Context, path string) error {
			_, err := f.DownloadToFile(ctx, source, path)
			return err
		})
	default:
		return readFeed(ctx, source)
	}
}

func fetchRemote(ctx context.Context, source string, download func(ctx context.Context, path string) error) ([]feed.Record, error) {
	tmp := filepath.Join(os.TempDir(), "catalog-feed-"+uuid.NewString()+filepath.Ext(source))
	if err := download(ctx, tmp); err != nil {
		return nil, eris.Wrapf(err, "download feed %s", source)
	}
	defer os.Remove(tmp)
	return readFeed(ctx, tmp)
}

// importRecords stores feed rows as received items keyed by input hash.
// Rows already present are left untouched so re-importing a delivery does
// not reset enriched records.
func importRecords(ctx context.Context, st store.Store, records []feed.Record) (int, error) {
	var fresh []*model.EnrichedItem
	for _, r := range records {
		hash := model.HashInput(r.RawTitle)
		if existing, err := st.GetByInputHash(ctx, hash); err == nil {
			zap.L().Debug("feed row already stored",
				zap.String("item_id", existing.ID),
				zap.String("sku", r.SKU),
			)
			continue
		}

		item := model.NewEnrichedItem(uuid.NewString(), r.RawTitle)
		item.Audit("imported", "", "", r.SKU, "feed_import")
		fresh = append(fresh, item)
	}

	if err := st.PutItems(ctx, fresh); err != nil {
		return 0, eris.Wrap(err, "store feed rows")
	}
	return len(fresh), nil
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "", "feed source: local path, http(s) or ftp URL")
	_ = importCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(importCmd)
}
