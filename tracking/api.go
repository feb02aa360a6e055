package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Run is one tracked experiment run.
type Run struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Config  map[string]any `json:"config"`
	Summary map[string]any `json:"summary"`
}

// Service wraps the tracking API's run endpoints with pagination handling.
type Service struct {
	client   Client
	pageSize int
}

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 50

// NewService creates a Service over the given client. pageSize <= 0 selects
// DefaultPageSize.
func NewService(client Client, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{client: client, pageSize: pageSize}
}

// Runs lists every run of a project, following pagination until a short
// page.
func (s *Service) Runs(ctx context.Context, entity, project string) ([]Run, error) {
	path := fmt.Sprintf("api/v1/runs/%s/%s", url.PathEscape(entity), url.PathEscape(project))

	var all []Run
	for page := 1; ; page++ {
		var payload struct {
			Runs []Run `json:"runs"`
		}
		if err := s.getJSON(ctx, path, page, &payload); err != nil {
			return nil, err
		}
		all = append(all, payload.Runs...)
		if len(payload.Runs) < s.pageSize {
			return all, nil
		}
	}
}

// History fetches a run's metric rows in logged order, following pagination
// until a short page.
func (s *Service) History(ctx context.Context, entity, project, runID string) ([]map[string]any, error) {
	path := fmt.Sprintf("api/v1/runs/%s/%s/%s/history",
		url.PathEscape(entity), url.PathEscape(project), url.PathEscape(runID))

	var all []map[string]any
	for page := 1; ; page++ {
		var payload struct {
			Rows []map[string]any `json:"rows"`
		}
		if err := s.getJSON(ctx, path, page, &payload); err != nil {
			return nil, err
		}
		all = append(all, payload.Rows...)
		if len(payload.Rows) < s.pageSize {
			return all, nil
		}
	}
}

func (s *Service) getJSON(ctx context.Context, path string, page int, out any) error {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(s.pageSize))

	resp, err := s.client.Get(ctx, &Request{Path: path, Query: query})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("tracking: parse response for %s: %w", path, err)
	}
	return nil
}

// FilterConfig reports whether every key-value pair in subset matches full.
// Used to select runs by a partial configuration. Values are compared by
// their %v rendering: configs arrive JSON-decoded, where every number is a
// float64, while callers naturally write untyped ints.
func FilterConfig(subset, full map[string]any) bool {
	for k, want := range subset {
		got, ok := full[k]
		if !ok || fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}

// stripInternalKeys drops service-internal config entries, which are
// conventionally prefixed with an underscore.
func stripInternalKeys(cfg map[string]any) map[string]any {
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = v
	}
	return out
}
