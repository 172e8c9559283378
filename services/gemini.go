package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ─── Synthesizer ──────────────────────────────────────────────────────────────

// Synthesizer turns an ItineraryRequest into free-form itinerary text. The
// model is external and non-deterministic, so it sits behind this interface
// and tests substitute a stub with fixed output.
type Synthesizer interface {
	GenerateItinerary(ctx context.Context, req *ItineraryRequest) (string, error)
}

// ─── Gemini Client ────────────────────────────────────────────────────────────

// GeminiClient calls the Google Generative Language API. No semantic contract
// beyond non-empty text on success; anything else is ErrSynthesisFailed.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewGemini(apiKey, model, baseURL string) *GeminiClient {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) GenerateItinerary(ctx context.Context, req *ItineraryRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: gemini API key not configured", ErrSynthesisFailed)
	}

	var body geminiRequest
	body.Contents = []geminiContent{{Parts: []geminiPart{{Text: BuildItineraryPrompt(req)}}}}
	body.GenerationConfig.Temperature = 0.6
	body.GenerationConfig.MaxOutputTokens = 1024

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: gemini API error (%d): %s", ErrSynthesisFailed, resp.StatusCode, respBody)
	}

	var gr geminiResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("%w: failed to parse gemini response: %v", ErrSynthesisFailed, err)
	}

	text := ""
	if len(gr.Candidates) > 0 {
		for _, part := range gr.Candidates[0].Content.Parts {
			text += part.Text
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response from model", ErrSynthesisFailed)
	}
	return text, nil
}

// ─── Prompt ───────────────────────────────────────────────────────────────────

// BuildItineraryPrompt renders one ItineraryRequest as the model prompt.
// Deterministic for a given request, so tests can assert on its content.
func BuildItineraryPrompt(req *ItineraryRequest) string {
	q := req.Query

	var b strings.Builder
	b.WriteString("You are a helpful travel assistant. Create a practical day-by-day itinerary.\n\n")
	fmt.Fprintf(&b, "Trip: %s | %s", q.Route(), q.DepartureDate)
	if q.RoundTrip() {
		fmt.Fprintf(&b, " to %s (%d nights)", q.ReturnDate, q.Nights())
	}
	fmt.Fprintf(&b, " | %d passenger(s) | currency %s\n", q.Passengers, q.Currency)

	if q.Theme != "" {
		fmt.Fprintf(&b, "Travel theme: %s\n", q.Theme)
	}
	if q.Budget != "" {
		fmt.Fprintf(&b, "Budget preference: %s\n", q.Budget)
	}
	if q.CabinClass != "" {
		fmt.Fprintf(&b, "Flight class: %s\n", q.CabinClass)
	}
	if q.HotelRating != "" {
		fmt.Fprintf(&b, "Preferred hotel rating: %s\n", q.HotelRating)
	}
	if q.Preferences != "" {
		fmt.Fprintf(&b, "The traveler enjoys: %s\n", q.Preferences)
	}

	if len(req.Offers) == 0 {
		b.WriteString("\nNo flights were found for these dates. Plan the itinerary anyway and note that flights must be booked separately.\n")
	} else {
		b.WriteString("\nFlight options (cheapest first):\n")
		for i, o := range req.Offers.Top(5) {
			fmt.Fprintf(&b, "  %d. %s — %.0f %s, %d stop(s), departs %s\n",
				i+1, o.Carrier, o.Price, o.Currency, o.Stops, o.DepartAt.Format("02 Jan 15:04"))
		}
	}

	if len(req.Hotels) > 0 {
		b.WriteString("\nHotels (per night):\n")
		for i, h := range req.Hotels {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "  %d. %s — %.0f %s (★%.1f) %s\n", i+1, h.Name, h.Price, h.Currency, h.Rating, h.Location)
		}
	}

	b.WriteString("\nRecommend the best flight for the trip, then lay out each day with activities and rough costs. Be direct and keep it under 400 words.")
	return b.String()
}

// ─── Fallback ─────────────────────────────────────────────────────────────────

// FallbackItinerary produces deterministic summary text when the model is
// unavailable. Flight offers are always shown regardless; this only replaces
// the narrative.
func FallbackItinerary(req *ItineraryRequest) string {
	cheapest, ok := req.Offers.Cheapest()
	if !ok {
		return fmt.Sprintf("No flight offers were found for %s on %s. Try different dates or nearby airports.",
			req.Query.Route(), req.Query.DepartureDate)
	}

	text := fmt.Sprintf("Best value flight: %s at %.0f %s (%d stop(s)), departing %s.",
		cheapest.Carrier, cheapest.Price, cheapest.Currency, cheapest.Stops,
		cheapest.DepartAt.Format("02 Jan 15:04"))

	if len(req.Hotels) > 0 {
		best := req.Hotels[0]
		for _, h := range req.Hotels {
			if h.Price < best.Price {
				best = h
			}
		}
		text += fmt.Sprintf(" Best value stay: %s at %.0f/night (★%.1f).", best.Name, best.Price, best.Rating)
		if n := req.Query.Nights(); n > 0 {
			text += fmt.Sprintf(" Estimated total: %.0f %s for flight + %d nights.",
				cheapest.Price+best.Price*float64(n), cheapest.Currency, n)
		}
	}
	return text
}
