package services

import "context"

// OfferProvider fetches flight offers for a validated trip query from one
// external source. Implementations are independent: they share no state and a
// failure in one never aborts the other.
type OfferProvider interface {
	Name() string
	FetchOffers(ctx context.Context, q TripQuery) ([]FlightOffer, error)
}
