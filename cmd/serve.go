package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flashfusion/dealflow-cli/internal/model"
	"github.com/flashfusion/dealflow-cli/internal/sourcing"
	"github.com/flashfusion/dealflow-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for sourcing runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initSourcing(ctx)
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

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the HTTP API around an initialized sourcing environment.
func newRouter(env *sourcingEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/source", handleSource(env))
	r.Get("/api/runs", handleRunsList(env))
	r.Get("/api/runs/{id}", handleRunsShow(env))

	return r
}

// handleSource executes a sourcing run synchronously and returns the
// report envelope.
func handleSource(env *sourcingEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserEmail string `json:"user_email"`
			Limit     int    `json:"limit"`
		}
		// An empty body means "all profiles, default limit".
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		params := model.RunParams{UserEmail: req.UserEmail, Limit: req.Limit}
		report, err := executeRun(r.Context(), env, params)
		if err != nil {
			if errors.Is(err, sourcing.ErrNoProfiles) {
				writeError(w, http.StatusNotFound, "No profiles found")
				return
			}
			zap.L().Error("sourcing run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "sourcing run failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"processed": report.Processed,
			"results":   report.Results,
		})
	}
}

// handleRunsList serves run history, newest first.
func handleRunsList(env *sourcingEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if env.Store == nil {
			writeError(w, http.StatusNotFound, "run history is disabled")
			return
		}

		filter := store.RunFilter{
			Status: model.RunStatus(r.URL.Query().Get("status")),
			Limit:  50,
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			filter.Limit = n
		}

		runs, err := env.Store.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("run history list failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "run history unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

func handleRunsShow(env *sourcingEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if env.Store == nil {
			writeError(w, http.StatusNotFound, "run history is disabled")
			return
		}

		run, err := env.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
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
