package kinopoisk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"kinobot/internal/config"
	"kinobot/internal/retry"
	"log/slog"
)

// Client — минимальный публичный интерфейс клиента API Кинопоиска.
type Client interface {
	SearchByName(ctx context.Context, q NameQuery) ([]MovieDoc, error)
	SearchByRating(ctx context.Context, q RatingQuery) ([]MovieDoc, error)
	SearchByBudget(ctx context.Context, q BudgetQuery) ([]MovieDoc, error)
}

type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
	logger     *slog.Logger
}

func NewHTTPClient(cfg config.KinopoiskConfig, httpClient *http.Client, logger *slog.Logger) Client {
	return &HTTPClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		policy:     retry.DefaultPolicy(),
		logger:     logger,
	}
}

func (c *HTTPClient) SearchByName(ctx context.Context, q NameQuery) ([]MovieDoc, error) {
	params := url.Values{}
	params.Set("query", q.Query)
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(q.Limit))

	return c.search(ctx, "/v1.4/movie/search", params)
}

func (c *HTTPClient) SearchByRating(ctx context.Context, q RatingQuery) ([]MovieDoc, error) {
	params := url.Values{}
	params.Set("rating.kp", formatRatingRange(q.MinRating, q.MaxRating))
	if q.Genre != nil {
		params.Set("genres.name", *q.Genre)
	}
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(q.Limit))

	return c.search(ctx, "/v1.4/movie", params)
}

func (c *HTTPClient) SearchByBudget(ctx context.Context, q BudgetQuery) ([]MovieDoc, error) {
	params := url.Values{}
	params.Set("budget.value", fmt.Sprintf("%d-%d", q.BudgetLow, q.BudgetHigh))
	if q.Genre != nil {
		params.Set("genres.name", *q.Genre)
	}
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(q.Limit))

	return c.search(ctx, "/v1.4/movie", params)
}

func (c *HTTPClient) search(ctx context.Context, path string, params url.Values) ([]MovieDoc, error) {
	endpoint := c.baseURL + path + "?" + params.Encode()

	resp, body, err := retry.DoHTTP(ctx, c.policy, c.logger, func(ctx context.Context) (*http.Response, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("build kinopoisk request: %w", err)
		}
		req.Header.Set("X-API-KEY", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp, nil, fmt.Errorf("read kinopoisk response: %w", err)
		}
		return resp, data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("kinopoisk request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kinopoisk api status %d: %s", resp.StatusCode, snippet(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode kinopoisk response: %w", err)
	}
	return parsed.Docs, nil
}

// formatRatingRange приводит диапазон к виду "7-9.5" без лишних нулей.
func formatRatingRange(min, max float64) string {
	return formatRating(min) + "-" + formatRating(max)
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit])
}
