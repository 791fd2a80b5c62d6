package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hazyhaar/fangyan/pkg/dict"
	"github.com/hazyhaar/fangyan/pkg/kit"
	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// maxImportBytes bounds the body of an import request.
const maxImportBytes = 8 << 20

// Options configures NewRouter.
type Options struct {
	// MaxResults caps search results when the request has no limit. Zero
	// means unlimited.
	MaxResults int
	// MCP, when set, is mounted at /mcp.
	MCP    http.Handler
	Logger *slog.Logger
}

// NewRouter returns an http.Handler with all API routes.
func NewRouter(reg *dict.Registry, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	mux := http.NewServeMux()
	h := &handler{
		eps:        NewEndpoints(reg, opts.Logger),
		reg:        reg,
		maxResults: opts.MaxResults,
		logger:     opts.Logger,
	}

	mux.HandleFunc("GET /v1/search", h.handleSearch)
	mux.HandleFunc("GET /v1/entries/{id}", h.handleGetEntry)
	mux.HandleFunc("GET /v1/entries/import", methodNotAllowed) // prevent GET on import
	mux.HandleFunc("POST /v1/entries/import", h.handleImport)
	mux.HandleFunc("POST /v1/entries/reset", h.handleReset)
	mux.HandleFunc("GET /v1/facets", h.handleFacets)
	mux.HandleFunc("GET /v1/datasets", h.handleDatasets)
	mux.HandleFunc("GET /v1/export", h.handleExport)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	if opts.MCP != nil {
		mux.Handle("/mcp", opts.MCP)
	}

	return cors(requestID(mux))
}

type handler struct {
	eps        *Endpoints
	reg        *dict.Registry
	maxResults int
	logger     *slog.Logger
}

// --- search ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := h.maxResults
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	resp, err := h.eps.Search(r.Context(), &searchReq{
		Query:   q.Get("q"),
		Filters: lexicon.Filters{Dialect: q.Get("dialect"), POS: q.Get("pos")},
		Limit:   limit,
	})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- entries ---

func (h *handler) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	resp, err := h.eps.GetEntry(r.Context(), &entryReq{ID: id})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read body")
		return
	}

	format := dict.FormatJSON
	if v := r.URL.Query().Get("format"); v != "" {
		if format, err = dict.ParseFormat(v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		format = dict.FormatCSV
	}

	entries, err := dict.ReadEntries(bytes.NewReader(body), format, dict.FormatSpec{})
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s body: %v", format, err))
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "http"
	}
	resp, err := h.eps.Import(r.Context(), &importReq{Entries: entries, Source: source})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleReset(w http.ResponseWriter, r *http.Request) {
	resp, err := h.eps.Reset(r.Context(), nil)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- facets, datasets ---

func (h *handler) handleFacets(w http.ResponseWriter, r *http.Request) {
	resp, err := h.eps.Facets(r.Context(), nil)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleDatasets(w http.ResponseWriter, r *http.Request) {
	resp, err := h.eps.Datasets(r.Context(), nil)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- export ---

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := dict.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.reg.Export(&buf, format); err != nil {
		h.logger.Error("export failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	contentType := "application/json; charset=utf-8"
	if format == dict.FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="entries.%s"`, format))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// --- health ---

type healthResponse struct {
	Status   string `json:"status"`
	Datasets int    `json:"datasets"`
	Entries  int    `json:"entries"`
	Imported bool   `json:"imported"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Datasets: h.reg.DatasetCount(),
		Entries:  h.reg.EntryCount(),
		Imported: h.reg.Imported(),
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeEndpointError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case isClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requestID propagates or assigns X-Request-ID and stores it in the context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = kit.NewRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := kit.WithTransport(kit.WithRequestID(r.Context(), id), "http")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
