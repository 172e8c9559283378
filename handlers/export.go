package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"tripscout/database"
	"tripscout/services"

	"github.com/gin-gonic/gin"
)

type ExportRequest struct {
	PlanID              string `json:"plan_id" binding:"required"`
	SelectedFlightIndex int    `json:"selected_flight_index"`
	SelectedHotelIndex  int    `json:"selected_hotel_index"`
	TravelerName        string `json:"traveler_name"`
}

type ExportResponse struct {
	PlanID  string `json:"plan_id"`
	PDFURL  string `json:"pdf_url"`
	Message string `json:"message"`
}

// ExportHandler renders a stored plan as a PDF with the traveler's chosen
// offer and stores the bytes next to the plan for later download.
func ExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		plan, err := database.GetPlan(req.PlanID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
			return
		}

		var offers services.OfferSet
		var hotels []services.Hotel
		if err := json.Unmarshal([]byte(plan.OffersJSON), &offers); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse stored offers"})
			return
		}
		if plan.HotelsJSON != "" {
			_ = json.Unmarshal([]byte(plan.HotelsJSON), &hotels)
		}
		if len(offers) == 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Plan has no flight offers to export"})
			return
		}

		if req.SelectedFlightIndex < 0 || req.SelectedFlightIndex >= len(offers) {
			req.SelectedFlightIndex = 0
		}

		var hotel *services.Hotel
		if len(hotels) > 0 {
			idx := req.SelectedHotelIndex
			if idx < 0 || idx >= len(hotels) {
				idx = 0
			}
			hotel = &hotels[idx]
		}

		pdfBytes, err := services.GeneratePDFBytes(services.PDFData{
			TravelerName: req.TravelerName,
			Query: services.TripQuery{
				Origin:        plan.Origin,
				Destination:   plan.Destination,
				DepartureDate: plan.DepartureDate,
				ReturnDate:    plan.ReturnDate,
				Currency:      plan.Currency,
			},
			Flight:    offers[req.SelectedFlightIndex],
			Hotel:     hotel,
			Itinerary: plan.Itinerary,
		})
		if err != nil {
			log.Printf("❌ PDF generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}

		if err := database.UpdatePlanPDF(plan.ID, pdfBytes, req.TravelerName); err != nil {
			log.Printf("❌ Failed to save generated PDF: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save generated PDF"})
			return
		}

		log.Printf("✅ PDF generated for plan %s (%d bytes)", plan.ID, len(pdfBytes))

		c.JSON(http.StatusOK, ExportResponse{
			PlanID:  plan.ID,
			PDFURL:  "/api/download/" + plan.ID,
			Message: "PDF generated successfully",
		})
	}
}
