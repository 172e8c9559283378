package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const amadeusOffersFixture = `{
  "data": [
    {
      "price": {"grandTotal": "450.00", "currency": "USD"},
      "itineraries": [
        {
          "duration": "PT7H15M",
          "segments": [
            {
              "departure": {"iataCode": "JFK", "at": "2025-12-01T18:30:00"},
              "arrival": {"iataCode": "LHR", "at": "2025-12-02T06:45:00"},
              "carrierCode": "DL",
              "number": "403"
            }
          ]
        }
      ],
      "validatingAirlineCodes": ["DL"]
    },
    {
      "price": {"grandTotal": "510.50", "currency": "USD"},
      "itineraries": [
        {
          "duration": "PT10H10M",
          "segments": [
            {
              "departure": {"iataCode": "JFK", "at": "2025-12-01T08:10:00"},
              "arrival": {"iataCode": "DUB", "at": "2025-12-01T19:40:00"},
              "carrierCode": "EI",
              "number": "104"
            },
            {
              "departure": {"iataCode": "DUB", "at": "2025-12-01T21:00:00"},
              "arrival": {"iataCode": "LHR", "at": "2025-12-01T22:20:00"},
              "carrierCode": "EI",
              "number": "168"
            }
          ]
        }
      ],
      "validatingAirlineCodes": ["EI"]
    },
    {
      "price": {"grandTotal": "", "currency": "USD"},
      "itineraries": [
        {
          "duration": "PT7H",
          "segments": [
            {
              "departure": {"iataCode": "JFK", "at": "2025-12-01T10:00:00"},
              "arrival": {"iataCode": "LHR", "at": "2025-12-01T22:00:00"},
              "carrierCode": "XX",
              "number": "1"
            }
          ]
        }
      ]
    }
  ]
}`

func TestParseAmadeusOffers(t *testing.T) {
	offers, dropped, err := parseAmadeusOffers([]byte(amadeusOffersFixture))
	require.NoError(t, err)
	require.Equal(t, 1, dropped, "the offer with no price is dropped")
	require.Len(t, offers, 2)

	direct := offers[0]
	require.Equal(t, "Delta Air Lines", direct.Carrier)
	require.Equal(t, "DL", direct.CarrierCode)
	require.Equal(t, "DL403", direct.FlightNumber)
	require.Equal(t, 450.0, direct.Price)
	require.Equal(t, "USD", direct.Currency)
	require.Equal(t, 0, direct.Stops)
	require.Equal(t, 435, direct.DurationMin)
	require.Equal(t, time.Date(2025, 12, 1, 18, 30, 0, 0, time.UTC), direct.DepartAt)
	require.Equal(t, "amadeus", direct.Source)

	connecting := offers[1]
	require.Equal(t, 1, connecting.Stops)
	require.Equal(t, 610, connecting.DurationMin)
}

func TestAmadeusFetchOffersTokenFlow(t *testing.T) {
	var tokenCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/security/oauth2/token":
			tokenCalls++
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, r.ParseForm())
			require.Equal(t, "client_credentials", r.FormValue("grant_type"))
			require.Equal(t, "id", r.FormValue("client_id"))
			w.Write([]byte(`{"access_token": "tok-1", "expires_in": 1799}`))
		case "/v2/shopping/flight-offers":
			require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			require.Equal(t, "JFK", r.URL.Query().Get("originLocationCode"))
			require.Equal(t, "LHR", r.URL.Query().Get("destinationLocationCode"))
			require.Equal(t, "2025-12-08", r.URL.Query().Get("returnDate"))
			w.Write([]byte(amadeusOffersFixture))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewAmadeus("id", "secret", srv.URL)
	offers, err := c.FetchOffers(context.Background(), testQuery(t))
	require.NoError(t, err)
	require.Len(t, offers, 2)

	// Second search reuses the cached token.
	_, err = c.FetchOffers(context.Background(), testQuery(t))
	require.NoError(t, err)
	require.Equal(t, 1, tokenCalls)
}

func TestAmadeusAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid_client"}`))
	}))
	defer srv.Close()

	c := NewAmadeus("id", "wrong", srv.URL)
	_, err := c.FetchOffers(context.Background(), testQuery(t))
	require.ErrorIs(t, err, ErrProviderAuth)
}

func TestAmadeusMissingCredentials(t *testing.T) {
	c := NewAmadeus("", "", "")
	_, err := c.FetchOffers(context.Background(), testQuery(t))
	require.ErrorIs(t, err, ErrProviderAuth)

	_, err = c.FetchHotels(context.Background(), testQuery(t))
	require.ErrorIs(t, err, ErrProviderAuth)
}

func TestFetchHotelsSkipsOneWayTrips(t *testing.T) {
	q, err := NewTripQuery("JFK", "LHR", "2025-12-01", "", 1, "USD")
	require.NoError(t, err)

	c := NewAmadeus("id", "secret", "http://invalid.example")
	hotels, err := c.FetchHotels(context.Background(), q)
	require.NoError(t, err)
	require.Nil(t, hotels)
}

func TestParseHotelOffers(t *testing.T) {
	fixture := `{
	  "data": [
	    {
	      "hotel": {"hotelId": "HLLON123", "name": "The Strand Palace", "cityCode": "LON",
	                "address": {"cityName": "LONDON"}, "rating": "4"},
	      "available": true,
	      "offers": [{"price": {"total": "980.00", "currency": "USD"}}]
	    },
	    {
	      "hotel": {"hotelId": "HLLON456", "name": "Sold Out Inn", "cityCode": "LON"},
	      "available": false,
	      "offers": [{"price": {"total": "500.00", "currency": "USD"}}]
	    }
	  ]
	}`

	hotels, err := parseHotelOffers([]byte(fixture))
	require.NoError(t, err)
	require.Len(t, hotels, 1)
	require.Equal(t, "The Strand Palace", hotels[0].Name)
	require.Equal(t, 980.0, hotels[0].Price)
	require.Equal(t, 4.0, hotels[0].Rating)
	require.Equal(t, "LONDON", hotels[0].Location)
}

func TestParseISODurationMinutes(t *testing.T) {
	require.Equal(t, 450, parseISODurationMinutes("PT7H30M"))
	require.Equal(t, 420, parseISODurationMinutes("PT7H"))
	require.Equal(t, 45, parseISODurationMinutes("PT45M"))
	require.Equal(t, 0, parseISODurationMinutes(""))
}

func TestAirportToCity(t *testing.T) {
	require.Equal(t, "LON", airportToCity("LHR"))
	require.Equal(t, "NYC", airportToCity("JFK"))
	require.Equal(t, "BCN", airportToCity("BCN")) // unmapped codes pass through
}
