package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/fangyan/pkg/dict"
	"github.com/hazyhaar/fangyan/pkg/kit"
	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

var (
	errNotFound   = errors.New("entry not found")
	errBadRequest = errors.New("bad request")
)

// Shared request/response types used by both HTTP and MCP transports.

type searchReq struct {
	Query   string
	Filters lexicon.Filters
	Limit   int
}

type entryReq struct {
	ID string
}

type importReq struct {
	Entries []lexicon.Entry
	Source  string
}

type datasetsResponse struct {
	Datasets []dict.DatasetInfo `json:"datasets"`
	Imported bool               `json:"imported"`
	Entries  int                `json:"entries"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

type resetResponse struct {
	Entries int `json:"entries"`
}

// Endpoints are the kit.Endpoints backed by the registry.
type Endpoints struct {
	Search   kit.Endpoint
	GetEntry kit.Endpoint
	Facets   kit.Endpoint
	Datasets kit.Endpoint
	Import   kit.Endpoint
	Reset    kit.Endpoint
}

// NewEndpoints builds the endpoints, each wrapped with request ID and logging
// middleware.
func NewEndpoints(reg *dict.Registry, logger *slog.Logger) *Endpoints {
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(logger, name))(ep)
	}
	return &Endpoints{
		Search:   wrap("search", searchEndpoint(reg)),
		GetEntry: wrap("get_entry", getEntryEndpoint(reg)),
		Facets:   wrap("facets", facetsEndpoint(reg)),
		Datasets: wrap("datasets", datasetsEndpoint(reg)),
		Import:   wrap("import", importEndpoint(reg)),
		Reset:    wrap("reset", resetEndpoint(reg)),
	}
}

func searchEndpoint(reg *dict.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*searchReq)
		if req.Limit < 0 {
			return nil, fmt.Errorf("%w: limit must not be negative", errBadRequest)
		}
		return reg.Search(req.Filters, req.Query, req.Limit), nil
	}
}

func getEntryEndpoint(reg *dict.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*entryReq)
		e, ok := reg.Entry(req.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errNotFound, req.ID)
		}
		return e, nil
	}
}

func facetsEndpoint(reg *dict.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return reg.Facets(), nil
	}
}

func datasetsEndpoint(reg *dict.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return datasetsResponse{
			Datasets: reg.ListDatasets(),
			Imported: reg.Imported(),
			Entries:  reg.EntryCount(),
		}, nil
	}
}

func importEndpoint(reg *dict.Registry) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*importReq)
		n, err := reg.Import(ctx, req.Entries, req.Source)
		if err != nil {
			return nil, err
		}
		return importResponse{Imported: n}, nil
	}
}

func resetEndpoint(reg *dict.Registry) kit.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		n, err := reg.Reset(ctx)
		if err != nil {
			return nil, err
		}
		return resetResponse{Entries: n}, nil
	}
}

// isClientError reports whether err was caused by the request.
func isClientError(err error) bool {
	return errors.Is(err, errBadRequest) ||
		errors.Is(err, dict.ErrDuplicateID) ||
		errors.Is(err, dict.ErrEmptyImport) ||
		errors.Is(err, dict.ErrUnknownFormat)
}
