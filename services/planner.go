package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// ─── Query Orchestrator ───────────────────────────────────────────────────────

// Planner sequences the provider lookups for one trip query: fan out to every
// configured provider, merge whatever came back, package the result for the
// synthesizer. Stateless across requests.
type Planner struct {
	providers []OfferProvider
	timeout   time.Duration // per-provider; a timed-out provider just contributes nothing
}

func NewPlanner(providers []OfferProvider, timeout time.Duration) *Planner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Planner{providers: providers, timeout: timeout}
}

// Plan validates the query, fetches offers from all providers concurrently,
// and returns the normalized ItineraryRequest. A provider failure is isolated:
// it is logged and contributes an empty set. Plan fails only on an invalid
// query or when every provider errored; zero offers from healthy providers is
// a valid empty result.
func (p *Planner) Plan(ctx context.Context, q TripQuery) (*ItineraryRequest, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	log.Printf("🧭 planning %s (%s)", q.Route(), q.DepartureDate)

	// FetchingOffers: all providers in parallel, each under its own deadline.
	// Goroutines never return an error so one failure cannot cancel the rest.
	results := make([]OfferSet, len(p.providers))
	provErrs := make([]error, len(p.providers))

	g := new(errgroup.Group)
	for i, prov := range p.providers {
		i, prov := i, prov
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			offers, err := prov.FetchOffers(cctx, q)
			if err != nil {
				log.Printf("⚠️  %s: %v — continuing without it", prov.Name(), err)
				provErrs[i] = fmt.Errorf("%s: %w", prov.Name(), err)
				return nil
			}
			log.Printf("✅ %s: %d offers", prov.Name(), len(offers))
			results[i] = offers
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range provErrs {
		if err != nil {
			failed++
		}
	}
	if len(p.providers) > 0 && failed == len(p.providers) {
		return nil, fmt.Errorf("%w: %v", ErrProvidersUnavailable, errors.Join(provErrs...))
	}

	// Normalizing: merge in configured provider order so the output is
	// deterministic no matter which lookup finished first.
	merged := OfferSet{}
	for _, r := range results {
		merged = Merge(merged, r)
	}
	if len(merged) == 0 {
		log.Printf("ℹ️  no offers found for %s", q.Route())
	}

	return &ItineraryRequest{Query: q, Offers: merged, Status: StatusReady}, nil
}
