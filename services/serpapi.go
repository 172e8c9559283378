package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ─── SerpAPI Client ───────────────────────────────────────────────────────────

// SerpAPIClient adapts the SerpAPI Google Flights engine to the OfferProvider
// contract. Authentication is an api_key request parameter.
type SerpAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewSerpAPI(apiKey, baseURL string) *SerpAPIClient {
	if baseURL == "" {
		baseURL = "https://serpapi.com"
	}
	return &SerpAPIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *SerpAPIClient) Name() string { return "serpapi" }

// FetchOffers runs one google_flights search and parses both the
// "best_flights" and "other_flights" blocks into FlightOffer records.
func (c *SerpAPIClient) FetchOffers(ctx context.Context, q TripQuery) ([]FlightOffer, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("serpapi: %w: missing api key", ErrProviderAuth)
	}

	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", q.Origin)
	params.Set("arrival_id", q.Destination)
	params.Set("outbound_date", q.DepartureDate)
	if q.RoundTrip() {
		params.Set("return_date", q.ReturnDate)
	} else {
		params.Set("type", "2") // one-way
	}
	params.Set("currency", q.Currency)
	params.Set("hl", "en")
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("serpapi: %w (%d): %s", ErrProviderAuth, resp.StatusCode, body)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("serpapi: %w", ErrProviderRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("serpapi error (%d): %s", resp.StatusCode, body)
	}

	offers, dropped, err := parseSerpFlights(body, q.Currency)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		log.Printf("⚠️  serpapi: dropped %d offers with missing price or unparseable times", dropped)
	}
	return offers, nil
}

// ─── Response Parsing ─────────────────────────────────────────────────────────

type serpFlightsResponse struct {
	Error       string           `json:"error,omitempty"`
	BestFlights []serpFlightItem `json:"best_flights"`
	Others      []serpFlightItem `json:"other_flights"`
}

type serpFlightItem struct {
	Flights []struct {
		DepartureAirport serpAirport `json:"departure_airport"`
		ArrivalAirport   serpAirport `json:"arrival_airport"`
		Duration         int         `json:"duration"`
		Airline          string      `json:"airline"`
		FlightNumber     string      `json:"flight_number"`
	} `json:"flights"`
	Layovers []struct {
		Duration int    `json:"duration"`
		ID       string `json:"id"`
	} `json:"layovers"`
	TotalDuration  int     `json:"total_duration"`
	Price          float64 `json:"price"`
	DepartureToken string  `json:"departure_token"`
}

type serpAirport struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"` // "2006-01-02 15:04", local airport time
}

func parseSerpFlights(data []byte, currency string) ([]FlightOffer, int, error) {
	var resp serpFlightsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to parse serpapi response: %w", err)
	}
	if resp.Error != "" {
		return nil, 0, fmt.Errorf("serpapi: %s", resp.Error)
	}

	items := append(append([]serpFlightItem{}, resp.BestFlights...), resp.Others...)
	offers := make([]FlightOffer, 0, len(items))
	for _, item := range items {
		if len(item.Flights) == 0 {
			continue
		}
		first := item.Flights[0]
		last := item.Flights[len(item.Flights)-1]

		o := FlightOffer{
			Carrier:      first.Airline,
			CarrierCode:  carrierCodeFromNumber(first.FlightNumber),
			FlightNumber: strings.ReplaceAll(first.FlightNumber, " ", ""),
			DepartAt:     parseSerpTime(first.DepartureAirport.Time),
			ArriveAt:     parseSerpTime(last.ArrivalAirport.Time),
			DurationMin:  item.TotalDuration,
			Price:        item.Price,
			Currency:     currency,
			Stops:        len(item.Flights) - 1,
			Source:       "serpapi",
		}
		if item.DepartureToken != "" {
			o.BookingLink = "https://www.google.com/travel/flights?tfs=" + url.QueryEscape(item.DepartureToken)
		}
		offers = append(offers, o)
	}
	kept, dropped := usable(offers)
	return kept, dropped, nil
}

// parseSerpTime handles SerpAPI's "YYYY-MM-DD HH:MM" airport-local time,
// normalized to UTC for comparison across providers.
func parseSerpTime(s string) time.Time {
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// carrierCodeFromNumber extracts "DL" from flight numbers like "DL 403".
func carrierCodeFromNumber(num string) string {
	parts := strings.Fields(num)
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}
