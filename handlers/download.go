package handlers

import (
	"net/http"

	"tripscout/database"

	"github.com/gin-gonic/gin"
)

// DownloadHandler streams the stored PDF for a plan.
func DownloadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing plan ID"})
			return
		}

		plan, err := database.GetPlan(id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
			return
		}

		if len(plan.PDFData) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "PDF has not been generated for this plan"})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=tripscout-itinerary.pdf")
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "application/pdf", plan.PDFData)
	}
}

// HealthHandler reports service and database status.
func HealthHandler(c *gin.Context) {
	db := database.DB
	dbStatus := "ok"
	if db == nil {
		dbStatus = "not initialized"
	} else if err := db.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "TripScout API",
		"database": dbStatus,
	})
}
