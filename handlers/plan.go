package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tripscout/database"
	"tripscout/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PlanRequest struct {
	Origin        string `json:"origin" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	DepartureDate string `json:"departure_date" binding:"required"`
	ReturnDate    string `json:"return_date"`
	Passengers    int    `json:"passengers"`
	Currency      string `json:"currency"`

	Preferences string `json:"preferences"`
	Theme       string `json:"theme"`
	Budget      string `json:"budget"`
	CabinClass  string `json:"cabin_class"`
	HotelRating string `json:"hotel_rating"`
}

type PlanResponse struct {
	PlanID          string            `json:"plan_id"`
	Offers          services.OfferSet `json:"offers"`
	Hotels          []services.Hotel  `json:"hotels"`
	Itinerary       string            `json:"itinerary"`
	ItinerarySource string            `json:"itinerary_source"` // "model" or "fallback"
}

// PlanHandler runs the full pipeline: validate → fetch+merge offers →
// hotel context → itinerary synthesis → persist. Partial results win over no
// results: a failed synthesis still returns the offers with fallback text.
func PlanHandler(planner *services.Planner, synth services.Synthesizer, hotelSrc services.HotelSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		query, err := services.NewTripQuery(req.Origin, req.Destination,
			req.DepartureDate, req.ReturnDate, req.Passengers, req.Currency)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		query.Preferences = req.Preferences
		query.Theme = req.Theme
		query.Budget = req.Budget
		query.CabinClass = req.CabinClass
		query.HotelRating = req.HotelRating

		plan, err := planner.Plan(c.Request.Context(), query)
		if err != nil {
			if services.IsValidation(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if errors.Is(err, services.ErrProvidersUnavailable) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "All flight providers are unavailable right now"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// Hotel context is best-effort; it only enriches the prompt.
		if hotelSrc != nil {
			hotels, err := hotelSrc.FetchHotels(c.Request.Context(), query)
			if err != nil {
				log.Printf("⚠️  hotel lookup failed: %v — continuing without hotels", err)
			} else {
				plan.Hotels = hotels
			}
		}

		itinerary, err := synth.GenerateItinerary(c.Request.Context(), plan)
		source := "model"
		if err != nil {
			log.Printf("⚠️  itinerary synthesis failed: %v — using fallback text", err)
			itinerary = services.FallbackItinerary(plan)
			source = "fallback"
		}

		offersJSON, _ := json.Marshal(plan.Offers)
		hotelsJSON, _ := json.Marshal(plan.Hotels)

		planID := uuid.New().String()
		if err := database.SavePlan(&database.Plan{
			ID:            planID,
			Origin:        query.Origin,
			Destination:   query.Destination,
			DepartureDate: query.DepartureDate,
			ReturnDate:    query.ReturnDate,
			Currency:      query.Currency,
			OffersJSON:    string(offersJSON),
			HotelsJSON:    string(hotelsJSON),
			Itinerary:     itinerary,
		}); err != nil {
			log.Printf("❌ Failed to save plan: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save plan"})
			return
		}

		c.JSON(http.StatusOK, PlanResponse{
			PlanID:          planID,
			Offers:          plan.Offers,
			Hotels:          plan.Hotels,
			Itinerary:       itinerary,
			ItinerarySource: source,
		})
	}
}
