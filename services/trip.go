package services

import (
	"fmt"
	"strings"
	"time"
)

// ─── Trip Query ───────────────────────────────────────────────────────────────

// TripQuery is the validated, immutable set of trip search parameters.
// Build one with NewTripQuery; adapters assume it is already valid and do not
// re-check business rules.
type TripQuery struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`          // YYYY-MM-DD
	ReturnDate    string `json:"return_date,omitempty"`   // YYYY-MM-DD, empty for one-way
	Passengers    int    `json:"passengers"`
	Currency      string `json:"currency"`

	// Personalization carried into the itinerary prompt.
	Preferences string `json:"preferences,omitempty"`
	Theme       string `json:"theme,omitempty"`        // e.g. "family vacation"
	Budget      string `json:"budget,omitempty"`       // economy / standard / luxury
	CabinClass  string `json:"cabin_class,omitempty"`  // economy / business / first
	HotelRating string `json:"hotel_rating,omitempty"` // any / 3 / 4 / 5
}

// NewTripQuery normalizes and validates raw trip parameters. It returns a
// *ValidationError describing the first broken rule.
func NewTripQuery(origin, destination, departureDate, returnDate string, passengers int, currency string) (TripQuery, error) {
	q := TripQuery{
		Origin:        strings.ToUpper(strings.TrimSpace(origin)),
		Destination:   strings.ToUpper(strings.TrimSpace(destination)),
		DepartureDate: strings.TrimSpace(departureDate),
		ReturnDate:    strings.TrimSpace(returnDate),
		Passengers:    passengers,
		Currency:      strings.ToUpper(strings.TrimSpace(currency)),
	}
	if q.Passengers <= 0 {
		q.Passengers = 1
	}
	if q.Currency == "" {
		q.Currency = "USD"
	}
	if err := q.validate(); err != nil {
		return TripQuery{}, err
	}
	return q, nil
}

func (q TripQuery) validate() error {
	if len(q.Origin) != 3 {
		return &ValidationError{Field: "origin", Reason: "must be a 3-letter IATA code"}
	}
	if len(q.Destination) != 3 {
		return &ValidationError{Field: "destination", Reason: "must be a 3-letter IATA code"}
	}
	if q.Origin == q.Destination {
		return &ValidationError{Field: "destination", Reason: "must differ from origin"}
	}

	dep, err := time.Parse("2006-01-02", q.DepartureDate)
	if err != nil {
		return &ValidationError{Field: "departure_date", Reason: "must be a valid date (YYYY-MM-DD)"}
	}
	if q.ReturnDate != "" {
		ret, err := time.Parse("2006-01-02", q.ReturnDate)
		if err != nil {
			return &ValidationError{Field: "return_date", Reason: "must be a valid date (YYYY-MM-DD)"}
		}
		if ret.Before(dep) {
			return &ValidationError{Field: "return_date", Reason: "must not be before departure date"}
		}
	}
	return nil
}

// RoundTrip reports whether the query includes a return leg.
func (q TripQuery) RoundTrip() bool { return q.ReturnDate != "" }

// Nights returns the number of nights between departure and return,
// or zero for one-way trips.
func (q TripQuery) Nights() int {
	if q.ReturnDate == "" {
		return 0
	}
	dep, err1 := time.Parse("2006-01-02", q.DepartureDate)
	ret, err2 := time.Parse("2006-01-02", q.ReturnDate)
	if err1 != nil || err2 != nil {
		return 0
	}
	n := int(ret.Sub(dep).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// Route renders the query as "JFK → LHR" for logs and prompts.
func (q TripQuery) Route() string {
	return fmt.Sprintf("%s → %s", q.Origin, q.Destination)
}

// ─── Hotel ────────────────────────────────────────────────────────────────────

// Hotel is an accommodation option used to enrich the itinerary prompt.
// Hotel lookup is best-effort: an empty list never blocks planning.
type Hotel struct {
	Name     string  `json:"name"`
	HotelID  string  `json:"hotel_id,omitempty"`
	Price    float64 `json:"price"` // per night
	Rating   float64 `json:"rating"`
	Location string  `json:"location"`
	Currency string  `json:"currency,omitempty"`
}

// ─── Itinerary Request ────────────────────────────────────────────────────────

// PlanStatus is the terminal state reached by the orchestrator for one query.
type PlanStatus string

const (
	StatusReceived       PlanStatus = "received"
	StatusFetchingOffers PlanStatus = "fetching_offers"
	StatusNormalizing    PlanStatus = "normalizing"
	StatusReady          PlanStatus = "ready"
)

// ItineraryRequest is the package handed to the synthesizer: one query, the
// normalized offers, and optional hotel context. Ephemeral, one per request.
type ItineraryRequest struct {
	Query  TripQuery  `json:"query"`
	Offers OfferSet   `json:"offers"`
	Hotels []Hotel    `json:"hotels,omitempty"`
	Status PlanStatus `json:"status"`
}
