package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFData carries everything the itinerary document needs: the trip, the
// offer the traveler picked, and the synthesized itinerary text.
type PDFData struct {
	TravelerName string
	Query        TripQuery
	Flight       FlightOffer
	Hotel        *Hotel // nil when no hotel context was available
	Itinerary    string
}

// GeneratePDFBytes renders the itinerary document and returns raw bytes
// (stored in the database, no filesystem needed).
func GeneratePDFBytes(data PDFData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(16, 42, 67)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "TripScout", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(126, 200, 227)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "Flight Recommendations & Itinerary", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Disclaimer ───────────────────────────────────────────
	pdf.SetFillColor(255, 248, 225)
	pdf.SetDrawColor(212, 168, 67)
	pdf.SetTextColor(130, 90, 20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetLineWidth(0.4)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 12, "FD")
	pdf.SetXY(23, y+2)
	pdf.MultiCell(164, 4,
		"This is NOT a booking confirmation. Prices are quotes at search time and subject to change. Verify with the carrier before booking.",
		"", "C", false)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Ln(6)

	// ── Section Helpers ──────────────────────────────────────
	sectionHeader := func(title string) {
		pdf.SetFillColor(16, 42, 67)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, value, "", 1, "L", false, 0, "")
	}

	// ── Traveler & Trip ──────────────────────────────────────
	sectionHeader("Trip Overview")
	name := data.TravelerName
	if name == "" {
		name = "Guest Traveler"
	}
	row("Traveler", name)
	// Core PDF fonts are cp1252, so stick to ASCII arrows here.
	row("Route", fmt.Sprintf("%s -> %s", data.Query.Origin, data.Query.Destination))
	row("Departure", fmtDateReadable(data.Query.DepartureDate))
	if data.Query.RoundTrip() {
		row("Return", fmtDateReadable(data.Query.ReturnDate))
		row("Duration", fmt.Sprintf("%d nights", data.Query.Nights()))
	}
	row("Generated", time.Now().UTC().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	// ── Selected Flight ──────────────────────────────────────
	sectionHeader("Selected Flight")
	row("Airline", data.Flight.Carrier)
	if data.Flight.FlightNumber != "" {
		row("Flight", data.Flight.FlightNumber)
	}
	row("Outbound", formatFlightLeg(data.Flight.DepartAt, data.Flight.ArriveAt, data.Flight.DurationMin))
	stops := "Direct"
	if data.Flight.Stops > 0 {
		stops = fmt.Sprintf("%d stop(s)", data.Flight.Stops)
	}
	row("Stops", stops)
	row("Price", fmt.Sprintf("%.0f %s per person", data.Flight.Price, data.Flight.Currency))
	row("Source", data.Flight.Source)
	pdf.Ln(4)

	// ── Hotel ────────────────────────────────────────────────
	if data.Hotel != nil {
		sectionHeader("Suggested Hotel")
		row("Hotel", data.Hotel.Name)
		row("Location", data.Hotel.Location)
		row("Rating", fmt.Sprintf("%.1f / 5.0", data.Hotel.Rating))
		row("Price", fmt.Sprintf("%.0f %s per night", data.Hotel.Price, data.Hotel.Currency))
		pdf.Ln(4)
	}

	// ── Itinerary ────────────────────────────────────────────
	if data.Itinerary != "" {
		sectionHeader("Itinerary")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(170, 5, data.Itinerary, "", "L", false)
		pdf.Ln(4)
	}

	// ── Footer ───────────────────────────────────────────────
	pdf.SetY(-22)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8,
		"Generated by TripScout · Not a booking confirmation · Prices subject to change",
		"", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func fmtDateReadable(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006 (Mon)")
}

func formatFlightLeg(dep, arr time.Time, durationMin int) string {
	if dep.IsZero() || arr.IsZero() {
		return "N/A"
	}
	result := fmt.Sprintf("%s -> %s",
		dep.Format("02 Jan 15:04"),
		arr.Format("02 Jan 15:04"))
	if durationMin > 0 {
		result += fmt.Sprintf(" (%dh %02dm)", durationMin/60, durationMin%60)
	}
	return result
}
