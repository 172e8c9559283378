package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTripQueryNormalizes(t *testing.T) {
	q, err := NewTripQuery(" jfk ", "lhr", "2025-12-01", "2025-12-08", 0, "")
	require.NoError(t, err)
	require.Equal(t, "JFK", q.Origin)
	require.Equal(t, "LHR", q.Destination)
	require.Equal(t, 1, q.Passengers)
	require.Equal(t, "USD", q.Currency)
	require.True(t, q.RoundTrip())
	require.Equal(t, 7, q.Nights())
	require.Equal(t, "JFK → LHR", q.Route())
}

func TestNewTripQueryOneWay(t *testing.T) {
	q, err := NewTripQuery("JFK", "LHR", "2025-12-01", "", 2, "EUR")
	require.NoError(t, err)
	require.False(t, q.RoundTrip())
	require.Equal(t, 2, q.Passengers)
	require.Equal(t, "EUR", q.Currency)
}

func TestNewTripQueryRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		run   func() (TripQuery, error)
		field string
	}{
		{
			name:  "same origin and destination",
			run:   func() (TripQuery, error) { return NewTripQuery("JFK", "jfk", "2025-12-01", "", 1, "USD") },
			field: "destination",
		},
		{
			name:  "origin not an airport code",
			run:   func() (TripQuery, error) { return NewTripQuery("NEWYORK", "LHR", "2025-12-01", "", 1, "USD") },
			field: "origin",
		},
		{
			name:  "empty destination",
			run:   func() (TripQuery, error) { return NewTripQuery("JFK", "", "2025-12-01", "", 1, "USD") },
			field: "destination",
		},
		{
			name:  "malformed departure date",
			run:   func() (TripQuery, error) { return NewTripQuery("JFK", "LHR", "01/12/2025", "", 1, "USD") },
			field: "departure_date",
		},
		{
			name:  "return before departure",
			run:   func() (TripQuery, error) { return NewTripQuery("JFK", "LHR", "2025-12-08", "2025-12-01", 1, "USD") },
			field: "return_date",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.run()
			require.Error(t, err)
			require.True(t, IsValidation(err), "expected a validation error, got %v", err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}
}
