package booking

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
)

// Client — интерфейс клиента API цен на отели.
type Client interface {
	SearchHotels(ctx context.Context, q HotelQuery) ([]Hotel, error)
}

// HotelQuery — параметры поиска отелей, отсортированных по цене.
type HotelQuery struct {
	City         string
	CheckinDate  string // YYYY-MM-DD
	CheckoutDate string // YYYY-MM-DD
	Adults       int
}

// Hotel — запись отеля из ответа API.
type Hotel struct {
	Name     string
	Total    float64
	Currency string
	URL      string
}

type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(cfg config.BookingConfig, httpClient *http.Client) Client {
	return &HTTPClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *HTTPClient) SearchHotels(ctx context.Context, q HotelQuery) ([]Hotel, error) {
	adults := q.Adults
	if adults < 1 {
		adults = 1
	}

	params := url.Values{}
	params.Set("location_id", q.City)
	params.Set("checkin_date", q.CheckinDate)
	params.Set("checkout_date", q.CheckoutDate)
	params.Set("adults_number", strconv.Itoa(adults))
	params.Set("order_by", "price")
	params.Set("units", "metric")
	params.Set("room_number", "1")
	params.Set("locale", "en-gb")

	endpoint := c.baseURL + "/v1/hotels/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build booking request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", hostFromURL(c.baseURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute booking request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read booking response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("booking api status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode booking response: %w", err)
	}

	hotels := make([]Hotel, 0, len(parsed.Result))
	for _, h := range parsed.Result {
		hotels = append(hotels, Hotel{
			Name:     h.HotelName,
			Total:    h.Price.Total,
			Currency: h.Price.Currency,
			URL:      h.URL,
		})
	}
	return hotels, nil
}

type searchResponse struct {
	Result []hotelPayload `json:"result"`
}

type hotelPayload struct {
	HotelName string       `json:"hotel_name"`
	URL       string       `json:"url"`
	Price     pricePayload `json:"price"`
}

type pricePayload struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

func hostFromURL(base string) string {
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		return u.Host
	}
	return base
}
