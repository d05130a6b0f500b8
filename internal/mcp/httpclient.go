package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/analytics"
	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the IronLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var exercises []models.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) ExerciseRecords(ctx context.Context, id uuid.UUID) (analytics.Records, error) {
	body, err := c.get(ctx, "/api/v1/exercises/"+id.String()+"/records", nil)
	if err != nil {
		return analytics.Records{}, err
	}

	var records analytics.Records
	if err := json.Unmarshal(body, &records); err != nil {
		return analytics.Records{}, fmt.Errorf("httpclient: decode records: %w", err)
	}
	return records, nil
}

func (c *HTTPClient) ExerciseHistory(ctx context.Context, id uuid.UUID) ([]models.WorkoutSet, error) {
	body, err := c.get(ctx, "/api/v1/exercises/"+id.String()+"/history", nil)
	if err != nil {
		return nil, err
	}

	var sets []models.WorkoutSet
	if err := json.Unmarshal(body, &sets); err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return sets, nil
}

func (c *HTTPClient) Sessions(ctx context.Context) ([]models.WorkoutSession, error) {
	body, err := c.get(ctx, "/api/v1/sessions", nil)
	if err != nil {
		return nil, err
	}

	var sessions []models.WorkoutSession
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return sessions, nil
}

func (c *HTTPClient) Routines(ctx context.Context) ([]models.Routine, error) {
	body, err := c.get(ctx, "/api/v1/routines", nil)
	if err != nil {
		return nil, err
	}

	var routines []models.Routine
	if err := json.Unmarshal(body, &routines); err != nil {
		return nil, fmt.Errorf("httpclient: decode routines: %w", err)
	}
	return routines, nil
}

func (c *HTTPClient) WeeklyWorkoutCounts(ctx context.Context, weeks int) ([]analytics.WeekCount, error) {
	params := url.Values{}
	params.Set("weeks", strconv.Itoa(weeks))

	body, err := c.get(ctx, "/api/v1/analytics/weekly", params)
	if err != nil {
		return nil, err
	}

	var counts []analytics.WeekCount
	if err := json.Unmarshal(body, &counts); err != nil {
		return nil, fmt.Errorf("httpclient: decode weekly counts: %w", err)
	}
	return counts, nil
}

func (c *HTTPClient) MacroTargets(ctx context.Context) (analytics.MacroTargets, error) {
	body, err := c.get(ctx, "/api/v1/analytics/macros", nil)
	if err != nil {
		return analytics.MacroTargets{}, err
	}

	var targets analytics.MacroTargets
	if err := json.Unmarshal(body, &targets); err != nil {
		return analytics.MacroTargets{}, fmt.Errorf("httpclient: decode macro targets: %w", err)
	}
	return targets, nil
}

func (c *HTTPClient) MeasurementsByType(ctx context.Context, t models.MeasurementType) ([]models.MeasurementLog, error) {
	params := url.Values{}
	params.Set("type", string(t))

	body, err := c.get(ctx, "/api/v1/measurements", params)
	if err != nil {
		return nil, err
	}

	var logs []models.MeasurementLog
	if err := json.Unmarshal(body, &logs); err != nil {
		return nil, fmt.Errorf("httpclient: decode measurements: %w", err)
	}
	return logs, nil
}

func (c *HTTPClient) Profile(ctx context.Context) (models.UserProfile, error) {
	body, err := c.get(ctx, "/api/v1/profile", nil)
	if err != nil {
		return models.UserProfile{}, err
	}

	var p models.UserProfile
	if err := json.Unmarshal(body, &p); err != nil {
		return models.UserProfile{}, fmt.Errorf("httpclient: decode profile: %w", err)
	}
	return p, nil
}
