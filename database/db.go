package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// ─── Models ──────────────────────────────────────────────────────────────────

// Plan is one generated travel plan: the merged offers, the itinerary text,
// and (once exported) the PDF bytes. Past searches themselves are never
// stored — only the artifact the user can download again.
type Plan struct {
	ID            string    `json:"id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departure_date"`
	ReturnDate    string    `json:"return_date"`
	Currency      string    `json:"currency"`
	OffersJSON    string    `json:"offers_json"`
	HotelsJSON    string    `json:"hotels_json"`
	Itinerary     string    `json:"itinerary"`
	PDFData       []byte    `json:"pdf_data,omitempty"` // stored in DB, no filesystem needed
	TravelerName  string    `json:"traveler_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// ─── Init ─────────────────────────────────────────────────────────────────────

func InitDB(dsn string) {
	if dsn == "" {
		dsn = "host=localhost port=5432 user=postgres password=postgres dbname=tripscout sslmode=disable"
	}

	var err error
	DB, err = sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(5 * time.Minute)

	// Retry a few times; the database may still be coming up.
	for i := 0; i < 10; i++ {
		if err = DB.Ping(); err == nil {
			break
		}
		log.Printf("⏳ Waiting for database... attempt %d/10: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("❌ Failed to connect to database after retries: %v", err)
	}

	migrate()
	log.Println("✅ Database connected and migrated")
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func migrate() {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS plans (
			id             TEXT PRIMARY KEY,
			origin         TEXT NOT NULL,
			destination    TEXT NOT NULL,
			departure_date TEXT NOT NULL,
			return_date    TEXT,
			currency       TEXT NOT NULL,
			offers_json    TEXT,
			hotels_json    TEXT,
			itinerary      TEXT,
			pdf_data       BYTEA,
			traveler_name  TEXT,
			created_at     TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_plans_created_at
			ON plans(created_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := DB.Exec(m); err != nil {
			log.Fatalf("❌ Migration failed: %v\nSQL: %s", err, m)
		}
	}
}

// ─── CRUD ─────────────────────────────────────────────────────────────────────

func SavePlan(p *Plan) error {
	_, err := DB.Exec(`
		INSERT INTO plans (id, origin, destination, departure_date, return_date, currency, offers_json, hotels_json, itinerary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Origin, p.Destination, p.DepartureDate, p.ReturnDate, p.Currency,
		p.OffersJSON, p.HotelsJSON, p.Itinerary)
	return err
}

func GetPlan(id string) (*Plan, error) {
	p := &Plan{}
	err := DB.QueryRow(`
		SELECT id, origin, destination, departure_date, return_date, currency,
		       offers_json, hotels_json, itinerary, pdf_data, COALESCE(traveler_name, ''), created_at
		FROM plans WHERE id = $1`, id).
		Scan(&p.ID, &p.Origin, &p.Destination, &p.DepartureDate, &p.ReturnDate, &p.Currency,
			&p.OffersJSON, &p.HotelsJSON, &p.Itinerary, &p.PDFData, &p.TravelerName, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func UpdatePlanPDF(id string, pdfData []byte, travelerName string) error {
	_, err := DB.Exec(`
		UPDATE plans SET pdf_data = $1, traveler_name = $2 WHERE id = $3`,
		pdfData, travelerName, id)
	return err
}
