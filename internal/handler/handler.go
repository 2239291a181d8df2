package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"switchmap/internal/codec"
	"switchmap/internal/domain"
	"switchmap/internal/repository"
)

// RunReader reads persisted discovery runs
type RunReader interface {
	GetRun(ctx context.Context, id string) (*domain.DiscoveryRun, error)
	LatestRun(ctx context.Context) (*domain.DiscoveryRun, error)
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)
}

// DiscoveryTrigger queues an asynchronous discovery run
type DiscoveryTrigger interface {
	Trigger() bool
}

// HostScanner sweeps the configured subnet for candidate devices
type HostScanner interface {
	Seed(ctx context.Context) ([]string, error)
}

// TopologyHandler handles topology API requests
type TopologyHandler struct {
	runs      RunReader
	discovery DiscoveryTrigger
	scanner   HostScanner
	log       *slog.Logger
}

// NewTopologyHandler creates a new topology handler
func NewTopologyHandler(runs RunReader, logger *slog.Logger) *TopologyHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TopologyHandler{runs: runs, log: logger}
}

// SetDiscoveryTrigger sets the discovery trigger
func (h *TopologyHandler) SetDiscoveryTrigger(d DiscoveryTrigger) {
	h.discovery = d
}

// SetHostScanner sets the seed scanner
func (h *TopologyHandler) SetHostScanner(s HostScanner) {
	h.scanner = s
}

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetGraph returns the latest run's topology document. With no runs yet
// it returns the empty document rather than an error.
func (h *TopologyHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.latestGraph(r.Context())
	if err != nil {
		h.log.Error("failed to load latest run", "error", err)
		h.writeError(w, "Failed to get graph", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, graph, http.StatusOK)
}

// ListRuns returns run summaries, newest first
func (h *TopologyHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, "Invalid limit", "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.log.Error("failed to list runs", "error", err)
		h.writeError(w, "Failed to list runs", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, runs, http.StatusOK)
}

// GetRun returns a single run with its full host and link detail
func (h *TopologyHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, "Invalid run ID", "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := h.runs.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error("failed to get run", "run_id", id, "error", err)
		h.writeError(w, "Failed to get run", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, run, http.StatusOK)
}

// TriggerDiscovery queues a discovery run and returns immediately
func (h *TopologyHandler) TriggerDiscovery(w http.ResponseWriter, r *http.Request) {
	if h.discovery == nil {
		h.writeError(w, "Discovery not configured", "No discovery service is registered", http.StatusServiceUnavailable)
		return
	}

	if !h.discovery.Trigger() {
		h.writeError(w, "Discovery already pending", "A discovery run is already queued", http.StatusConflict)
		return
	}

	h.writeJSON(w, map[string]string{"status": "discovery_triggered"}, http.StatusAccepted)
}

// ScanHosts sweeps the configured subnet and returns candidate devices
// with the SSH port open
func (h *TopologyHandler) ScanHosts(w http.ResponseWriter, r *http.Request) {
	if h.scanner == nil {
		h.writeError(w, "Scanner not configured", "No subnet scanner is registered", http.StatusServiceUnavailable)
		return
	}

	hosts, err := h.scanner.Seed(r.Context())
	if err != nil {
		h.log.Error("seed scan failed", "error", err)
		h.writeError(w, "Scan failed", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"hosts": hosts,
		"count": len(hosts),
	}, http.StatusOK)
}

// ExportJSON exports the latest topology document as a download
func (h *TopologyHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, codec.NewJSONCodec(), "application/json", "topology.json")
}

// ExportDOT exports the latest topology as a Graphviz document
func (h *TopologyHandler) ExportDOT(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, codec.NewDOTCodec(), "text/vnd.graphviz", "topology.dot")
}

func (h *TopologyHandler) export(w http.ResponseWriter, r *http.Request, exporter codec.Exporter, contentType, filename string) {
	graph, err := h.latestGraph(r.Context())
	if err != nil {
		h.log.Error("failed to load latest run", "error", err)
		h.writeError(w, "Failed to export", err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Export(graph, &buf); err != nil {
		h.log.Error("export failed", "format", exporter.Format(), "error", err)
		h.writeError(w, "Failed to export", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Write(buf.Bytes())
}

// latestGraph projects the most recent run's document; no runs yet means
// the empty document, not an error
func (h *TopologyHandler) latestGraph(ctx context.Context) (*domain.Graph, error) {
	run, err := h.runs.LatestRun(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ProjectGraph(nil, nil), nil
		}
		return nil, err
	}
	return run.Graph(), nil
}

// Helper methods

func (h *TopologyHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn("failed to encode response", "error", err)
	}
}

func (h *TopologyHandler) writeError(w http.ResponseWriter, message, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   message,
		Details: details,
	}); err != nil {
		h.log.Warn("failed to encode error response", "error", err)
	}
}
