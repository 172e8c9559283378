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
	"sync"
	"time"
)

// ─── Amadeus Client ───────────────────────────────────────────────────────────

// AmadeusClient adapts the Amadeus Flight Offers Search API to the
// OfferProvider contract. Authentication is an OAuth2 client-credentials
// exchange; the bearer token is cached until shortly before expiry.
type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewAmadeus(clientID, clientSecret, baseURL string) *AmadeusClient {
	if baseURL == "" {
		baseURL = "https://test.api.amadeus.com"
	}
	return &AmadeusClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *AmadeusClient) Name() string { return "amadeus" }

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("amadeus: %w: %s", ErrProviderAuth, body)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("amadeus token request failed (%d): %s", resp.StatusCode, body)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()
	return nil
}

func (c *AmadeusClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	tok := c.accessToken
	expired := time.Now().After(c.tokenExpiry)
	c.mu.Unlock()

	if tok == "" || expired {
		if err := c.refreshToken(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		tok = c.accessToken
		c.mu.Unlock()
	}
	return tok, nil
}

func (c *AmadeusClient) doRequest(ctx context.Context, path string) ([]byte, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("amadeus: %w (%d)", ErrProviderAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("amadeus: %w", ErrProviderRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("amadeus error (%d): %s", resp.StatusCode, body)
	}
	return body, nil
}

// ─── Flight Search ────────────────────────────────────────────────────────────

// FetchOffers searches the Flight Offers Search API (v2).
func (c *AmadeusClient) FetchOffers(ctx context.Context, q TripQuery) ([]FlightOffer, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, fmt.Errorf("amadeus: %w: missing credentials", ErrProviderAuth)
	}

	path := fmt.Sprintf(
		"/v2/shopping/flight-offers?originLocationCode=%s&destinationLocationCode=%s"+
			"&departureDate=%s&adults=%d&max=10&currencyCode=%s",
		url.QueryEscape(q.Origin),
		url.QueryEscape(q.Destination),
		url.QueryEscape(q.DepartureDate),
		q.Passengers,
		url.QueryEscape(q.Currency),
	)
	if q.RoundTrip() {
		path += "&returnDate=" + url.QueryEscape(q.ReturnDate)
	}

	body, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}

	offers, dropped, err := parseAmadeusOffers(body)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		log.Printf("⚠️  amadeus: dropped %d offers with missing price or unparseable times", dropped)
	}
	return offers, nil
}

type amadeusFlightOffersResponse struct {
	Data []struct {
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Currency   string `json:"currency"`
		} `json:"price"`
		Itineraries []struct {
			Duration string `json:"duration"` // ISO 8601, e.g. PT5H30M
			Segments []struct {
				Departure struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
				CarrierCode string `json:"carrierCode"`
				Number      string `json:"number"`
			} `json:"segments"`
		} `json:"itineraries"`
		ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
	} `json:"data"`
}

func parseAmadeusOffers(data []byte) ([]FlightOffer, int, error) {
	var resp amadeusFlightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	offers := make([]FlightOffer, 0, len(resp.Data))
	for _, d := range resp.Data {
		if len(d.Itineraries) == 0 || len(d.Itineraries[0].Segments) == 0 {
			continue
		}
		outbound := d.Itineraries[0]
		first := outbound.Segments[0]
		last := outbound.Segments[len(outbound.Segments)-1]

		code := first.CarrierCode
		if code == "" && len(d.ValidatingAirlineCodes) > 0 {
			code = d.ValidatingAirlineCodes[0]
		}

		offers = append(offers, FlightOffer{
			Carrier:      airlineName(code),
			CarrierCode:  code,
			FlightNumber: code + first.Number,
			DepartAt:     parseAmadeusTime(first.Departure.At),
			ArriveAt:     parseAmadeusTime(last.Arrival.At),
			DurationMin:  parseISODurationMinutes(outbound.Duration),
			Price:        parsePrice(d.Price.GrandTotal),
			Currency:     d.Price.Currency,
			Stops:        len(outbound.Segments) - 1,
			Source:       "amadeus",
		})
	}
	kept, dropped := usable(offers)
	return kept, dropped, nil
}

// ─── Hotel Search ─────────────────────────────────────────────────────────────

// HotelSource provides accommodation context for the itinerary prompt.
type HotelSource interface {
	FetchHotels(ctx context.Context, q TripQuery) ([]Hotel, error)
}

// FetchHotels looks up availability via Hotel List + Hotel Offers. Failures
// here only cost prompt context, so callers treat errors as an empty list.
func (c *AmadeusClient) FetchHotels(ctx context.Context, q TripQuery) ([]Hotel, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, fmt.Errorf("amadeus: %w: missing credentials", ErrProviderAuth)
	}
	if !q.RoundTrip() {
		return nil, nil // no checkout date to search with
	}

	hotelIDs, err := c.hotelIDsByCity(ctx, q.Destination)
	if err != nil {
		return nil, fmt.Errorf("hotel list failed: %w", err)
	}
	if len(hotelIDs) == 0 {
		return nil, nil
	}
	// Cap the ID list to stay under rate limits.
	if len(hotelIDs) > 20 {
		hotelIDs = hotelIDs[:20]
	}

	path := fmt.Sprintf("/v3/shopping/hotel-offers?hotelIds=%s&checkInDate=%s&checkOutDate=%s&adults=%d&roomQuantity=1&currency=%s&bestRateOnly=true",
		url.QueryEscape(strings.Join(hotelIDs, ",")),
		url.QueryEscape(q.DepartureDate),
		url.QueryEscape(q.ReturnDate),
		q.Passengers,
		url.QueryEscape(q.Currency),
	)
	body, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("hotel offers failed: %w", err)
	}
	return parseHotelOffers(body)
}

type amadeusHotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

func (c *AmadeusClient) hotelIDsByCity(ctx context.Context, airport string) ([]string, error) {
	// Hotel search keys on city codes, not airport codes.
	path := fmt.Sprintf("/v1/reference-data/locations/hotels/by-city?cityCode=%s&radius=5&radiusUnit=KM&hotelSource=ALL",
		url.QueryEscape(airportToCity(airport)))

	body, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp amadeusHotelListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel list: %w", err)
	}
	ids := make([]string, 0, len(resp.Data))
	for _, h := range resp.Data {
		ids = append(ids, h.HotelID)
	}
	return ids, nil
}

type amadeusHotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID  string `json:"hotelId"`
			Name     string `json:"name"`
			CityCode string `json:"cityCode"`
			Address  struct {
				CityName string `json:"cityName"`
			} `json:"address"`
			Rating string `json:"rating"`
		} `json:"hotel"`
		Available bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

func parseHotelOffers(data []byte) ([]Hotel, error) {
	var resp amadeusHotelOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel offers: %w", err)
	}

	hotels := make([]Hotel, 0, len(resp.Data))
	for _, item := range resp.Data {
		if !item.Available || len(item.Offers) == 0 {
			continue
		}
		price := parsePrice(item.Offers[0].Price.Total)
		if price <= 0 {
			continue
		}
		location := item.Hotel.Address.CityName
		if location == "" {
			location = item.Hotel.CityCode
		}
		hotels = append(hotels, Hotel{
			Name:     item.Hotel.Name,
			HotelID:  item.Hotel.HotelID,
			Price:    price,
			Rating:   parseRating(item.Hotel.Rating),
			Location: location,
			Currency: item.Offers[0].Price.Currency,
		})
	}
	return hotels, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// parseAmadeusTime handles the segment "at" field, which carries local time
// without an offset (2025-12-01T08:45:00). Normalized to UTC.
func parseAmadeusTime(s string) time.Time {
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// parseISODurationMinutes converts PT5H30M style durations to minutes.
func parseISODurationMinutes(s string) int {
	s = strings.TrimPrefix(s, "PT")
	total := 0
	num := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			num = num*10 + int(r-'0')
			continue
		}
		switch r {
		case 'H':
			total += num * 60
		case 'M':
			total += num
		}
		num = 0
	}
	return total
}

func parsePrice(s string) float64 {
	var price float64
	fmt.Sscanf(s, "%f", &price)
	return price
}

func parseRating(s string) float64 {
	if s == "" {
		return 0
	}
	var r float64
	fmt.Sscanf(s, "%f", &r)
	if r < 0 {
		return 0
	}
	if r > 5 {
		r = 5
	}
	return r
}

// airportToCity maps airport IATA codes to the city codes hotel search expects.
func airportToCity(airport string) string {
	mapping := map[string]string{
		"LHR": "LON", "LGW": "LON", "STN": "LON", "LTN": "LON",
		"CDG": "PAR", "ORY": "PAR",
		"JFK": "NYC", "LGA": "NYC", "EWR": "NYC",
		"NRT": "TYO", "HND": "TYO",
		"FCO": "ROM", "CIA": "ROM",
	}
	if city, ok := mapping[airport]; ok {
		return city
	}
	return airport
}

// airlineName returns a display name for common IATA carrier codes.
func airlineName(code string) string {
	names := map[string]string{
		"TK": "Turkish Airlines",
		"LH": "Lufthansa",
		"AF": "Air France",
		"BA": "British Airways",
		"EK": "Emirates",
		"QR": "Qatar Airways",
		"FR": "Ryanair",
		"U2": "EasyJet",
		"W6": "Wizz Air",
		"UA": "United Airlines",
		"AA": "American Airlines",
		"DL": "Delta Air Lines",
		"KL": "KLM",
		"IB": "Iberia",
		"LX": "Swiss International Air Lines",
		"SQ": "Singapore Airlines",
		"NH": "ANA",
		"JL": "Japan Airlines",
		"EY": "Etihad Airways",
	}
	if name, ok := names[code]; ok {
		return name
	}
	if code != "" {
		return code
	}
	return "Unknown Airline"
}
