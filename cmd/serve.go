package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/gate"
	"github.com/sells-group/catalog-enrich/internal/model"
	"github.com/sells-group/catalog-enrich/internal/pipeline"
	"github.com/sells-group/catalog-enrich/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the enrichment HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// newRouter builds the API surface: submit an item, fetch it back, approve
// it, bulk-evaluate stored items.
func newRouter(env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/items", func(w http.ResponseWriter, r *http.Request) {
		var req pipeline.Item
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.RawTitle == "" {
			writeError(w, http.StatusBadRequest, "raw_title is required")
			return
		}

		item, err := env.Pipeline.Run(r.Context(), req)
		if err != nil {
			zap.L().Error("api: enrichment failed",
				zap.String("raw_title", req.RawTitle),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "enrichment failed")
			return
		}
		writeJSON(w, http.StatusOK, item)
	})

	r.Get("/api/items", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		items, err := env.Store.ListItems(r.Context(), store.ItemFilter{
			Status: model.ItemStatus(q.Get("status")),
			Brand:  q.Get("brand"),
			Limit:  limit,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list items failed")
			return
		}
		writeJSON(w, http.StatusOK, items)
	})

	r.Get("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		item, err := env.Store.GetItem(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "item not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "get item failed")
			return
		}
		writeJSON(w, http.StatusOK, item)
	})

	r.Post("/api/items/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		item, err := env.Pipeline.Approve(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case eris.Is(err, store.ErrNotFound):
				writeError(w, http.StatusNotFound, "item not found")
			case eris.Is(err, pipeline.ErrNotTerminal):
				writeError(w, http.StatusConflict, "item is still being enriched")
			default:
				writeError(w, http.StatusInternalServerError, "approve failed")
			}
			return
		}
		writeJSON(w, http.StatusOK, item)
	})

	r.Post("/api/evaluate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status   string        `json:"status,omitempty"`
			Limit    int           `json:"limit,omitempty"`
			Criteria gate.Criteria `json:"criteria"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		items, err := env.Store.ListItems(r.Context(), store.ItemFilter{
			Status: model.ItemStatus(req.Status),
			Limit:  req.Limit,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list items failed")
			return
		}
		writeJSON(w, http.StatusOK, gate.EvaluateBulk(items, req.Criteria))
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
