package api

import (
	"github.com/clipdex/clipdex-agent/internal/library"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type ClipsResponse struct {
	Clips []library.Clip `json:"clips"`
}

type LibraryResponse struct {
	Base       string `json:"base"`
	AccountDir string `json:"account_dir"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
