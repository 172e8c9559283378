package services

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ─── Flight Offer ─────────────────────────────────────────────────────────────

// FlightOffer is the provider-independent representation of one bookable
// flight. Adapters build these from raw provider output; afterwards an offer
// is only discarded or reordered, never mutated.
type FlightOffer struct {
	Carrier      string    `json:"carrier"`
	CarrierCode  string    `json:"carrier_code,omitempty"`
	FlightNumber string    `json:"flight_number,omitempty"`
	DepartAt     time.Time `json:"depart_at"`
	ArriveAt     time.Time `json:"arrive_at"`
	DurationMin  int       `json:"duration_min,omitempty"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	Stops        int       `json:"stops"`
	BookingLink  string    `json:"booking_link,omitempty"`
	Source       string    `json:"source"` // provider tag, e.g. "serpapi" / "amadeus"
}

// dedupKey is the composite identity used for deduplication across providers:
// same carrier, same departure minute, same price (to the cent) == same offer.
func (o FlightOffer) dedupKey() string {
	return fmt.Sprintf("%s|%d|%d", o.CarrierCode, o.DepartAt.Unix(), int64(math.Round(o.Price*100)))
}

// ─── Offer Set ────────────────────────────────────────────────────────────────

// OfferSet is a deduplicated sequence of offers ordered ascending by price,
// ties broken by fewer stops, then by source tag (lexicographic) so the
// ordering is deterministic regardless of which provider answered first.
type OfferSet []FlightOffer

// Merge concatenates two offer sequences, drops duplicates under the
// composite key (keeping the first-seen instance, i.e. a's copy when both
// inputs carry the same offer), and sorts per the OfferSet ordering rule.
// Either input may be empty; two empty inputs yield an empty set, which is a
// valid "no offers found" result rather than an error.
func Merge(a, b OfferSet) OfferSet {
	merged := make(OfferSet, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))

	for _, o := range append(append(OfferSet{}, a...), b...) {
		k := o.dedupKey()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, o)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Price != merged[j].Price {
			return merged[i].Price < merged[j].Price
		}
		if merged[i].Stops != merged[j].Stops {
			return merged[i].Stops < merged[j].Stops
		}
		return merged[i].Source < merged[j].Source
	})
	return merged
}

// Top returns the n cheapest offers (the whole set when it has fewer).
func (s OfferSet) Top(n int) OfferSet {
	if n < 0 || n >= len(s) {
		return s
	}
	return s[:n]
}

// Cheapest returns the first offer and true, or false for an empty set.
func (s OfferSet) Cheapest() (FlightOffer, bool) {
	if len(s) == 0 {
		return FlightOffer{}, false
	}
	return s[0], true
}

// usable filters out offers an adapter should drop rather than surface:
// missing price or ill-ordered timestamps. Returns the kept offers and the
// number dropped, so callers can log the count.
func usable(offers []FlightOffer) ([]FlightOffer, int) {
	kept := make([]FlightOffer, 0, len(offers))
	dropped := 0
	for _, o := range offers {
		if o.Price <= 0 || o.DepartAt.IsZero() || o.ArriveAt.IsZero() || !o.ArriveAt.After(o.DepartAt) {
			dropped++
			continue
		}
		kept = append(kept, o)
	}
	return kept, dropped
}
