package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clipdex/clipdex-agent/internal/config"
	"github.com/clipdex/clipdex-agent/internal/library"
	"github.com/clipdex/clipdex-agent/internal/source"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/clips", listClipsHandler(cfg))
	r.Get("/library", libraryHandler(cfg))
	r.Post("/source/resolve", resolveSourceHandler(cfg))
	r.Post("/source/adjusted", adjustedSourceHandler(cfg))
	r.Get("/playback", playbackHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func listClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := r.URL.Query().Get("account")

		clips, err := cfg.LibraryService.ListAccountClips(r.Context(), accountID)
		if err != nil {
			if err == library.ErrNoRoot {
				WriteError(w, http.StatusServiceUnavailable, "library root unavailable", "UNAUTHORISED")
				return
			}
			WriteError(w, http.StatusInternalServerError, "failed to list clips", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, ClipsResponse{Clips: clips})
	}
}

func libraryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := r.URL.Query().Get("account")

		base, accountDir, err := cfg.LibraryService.ResolveAccountClipsDirectory(accountID)
		if err != nil {
			if err == library.ErrNoRoot {
				WriteError(w, http.StatusServiceUnavailable, "library root unavailable", "UNAUTHORISED")
				return
			}
			WriteError(w, http.StatusNotFound, "account directory not found", "NOT_FOUND")
			return
		}

		WriteJSON(w, http.StatusOK, LibraryResponse{Base: base, AccountDir: accountDir})
	}
}

func resolveSourceHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req source.ResolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusOK, cfg.Resolver.ResolveProjectSourceVideo(req))
	}
}

func adjustedSourceHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req source.ResolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusOK, cfg.Resolver.ResolveAdjustedSourceURL(r.Context(), req))
	}
}

func playbackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "id is required", "BAD_REQUEST")
			return
		}

		if err := cfg.PlaybackServer.ServeOpaque(w, r, id); err != nil {
			cfg.Logger.Error("playback error", "error", err)
		}
	}
}
