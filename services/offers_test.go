package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func offerAt(carrier string, day int, price float64, stops int, source string) FlightOffer {
	depart := time.Date(2025, 12, day, 8, 0, 0, 0, time.UTC)
	return FlightOffer{
		Carrier:     carrier,
		CarrierCode: carrier,
		DepartAt:    depart,
		ArriveAt:    depart.Add(7 * time.Hour),
		Price:       price,
		Currency:    "USD",
		Stops:       stops,
		Source:      source,
	}
}

func TestMergeSortsByPriceThenStops(t *testing.T) {
	// One $500/1-stop offer from one source, one $450/0-stop from the other.
	a := OfferSet{offerAt("BA", 1, 500, 1, "serpapi")}
	b := OfferSet{offerAt("DL", 1, 450, 0, "amadeus")}

	merged := Merge(a, b)
	require.Len(t, merged, 2)
	require.Equal(t, 450.0, merged[0].Price)
	require.Equal(t, 0, merged[0].Stops)
	require.Equal(t, 500.0, merged[1].Price)

	for i := 1; i < len(merged); i++ {
		require.LessOrEqual(t, merged[i-1].Price, merged[i].Price)
		if merged[i-1].Price == merged[i].Price {
			require.LessOrEqual(t, merged[i-1].Stops, merged[i].Stops)
		}
	}
}

func TestMergeDropsDuplicatesAcrossSources(t *testing.T) {
	// Same carrier, departure and price seen by both providers: one survives,
	// and it is the first-seen (left input) instance.
	a := OfferSet{offerAt("LH", 1, 300, 0, "serpapi")}
	b := OfferSet{offerAt("LH", 1, 300, 0, "amadeus")}

	merged := Merge(a, b)
	require.Len(t, merged, 1)
	require.Equal(t, "serpapi", merged[0].Source)
}

func TestMergeKeepsDistinctOffersFromSameCarrier(t *testing.T) {
	a := OfferSet{offerAt("LH", 1, 300, 0, "serpapi")}
	b := OfferSet{
		offerAt("LH", 2, 300, 0, "amadeus"), // different departure day
		offerAt("LH", 1, 310, 0, "amadeus"), // different price
	}

	merged := Merge(a, b)
	require.Len(t, merged, 3)
}

func TestMergeIdempotent(t *testing.T) {
	a := OfferSet{offerAt("BA", 1, 500, 1, "serpapi"), offerAt("AF", 2, 420, 0, "serpapi")}
	b := OfferSet{offerAt("DL", 1, 450, 0, "amadeus")}

	once := Merge(a, b)
	again := Merge(once, OfferSet{})
	require.Equal(t, once, again)
}

func TestMergeCommutativeUpToTieOrder(t *testing.T) {
	a := OfferSet{offerAt("BA", 1, 500, 1, "serpapi"), offerAt("LH", 3, 450, 0, "serpapi")}
	b := OfferSet{offerAt("DL", 1, 450, 0, "amadeus"), offerAt("LH", 3, 450, 0, "amadeus")}

	ab := Merge(a, b)
	ba := Merge(b, a)
	require.Len(t, ba, len(ab))

	keys := func(s OfferSet) map[string]bool {
		m := make(map[string]bool, len(s))
		for _, o := range s {
			m[o.dedupKey()] = true
		}
		return m
	}
	require.Equal(t, keys(ab), keys(ba))
}

func TestMergeBothEmpty(t *testing.T) {
	merged := Merge(OfferSet{}, nil)
	require.Empty(t, merged)
}

func TestTop(t *testing.T) {
	s := Merge(OfferSet{
		offerAt("AA", 1, 700, 2, "serpapi"),
		offerAt("BA", 1, 500, 1, "serpapi"),
		offerAt("DL", 1, 450, 0, "serpapi"),
	}, nil)

	top := s.Top(2)
	require.Len(t, top, 2)
	require.Equal(t, 450.0, top[0].Price)
	require.Equal(t, 500.0, top[1].Price)

	require.Len(t, s.Top(10), 3)
}

func TestUsableDropsBadOffers(t *testing.T) {
	good := offerAt("BA", 1, 500, 1, "serpapi")

	noPrice := good
	noPrice.Price = 0

	badTimes := good
	badTimes.ArriveAt = badTimes.DepartAt.Add(-time.Hour)

	noDepart := good
	noDepart.DepartAt = time.Time{}

	kept, dropped := usable([]FlightOffer{good, noPrice, badTimes, noDepart})
	require.Len(t, kept, 1)
	require.Equal(t, 3, dropped)
	require.Equal(t, good, kept[0])
}
