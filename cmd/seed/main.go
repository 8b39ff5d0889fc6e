package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/psims/scholar-portal/config"
	"github.com/psims/scholar-portal/internal/domain/entity"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	code := "DEMO-INIT-2026"
	year := entity.CurrentSchoolYear()

	var id string
	err = db.QueryRow(`
		INSERT INTO scholars (
			first_name, last_name, birth_date, sex, student_id,
			address, contact_number, email, school_type, school_level, school_name,
			year_level, average_grade, enrollment_date, graduation_status,
			initialization_code, payroll_request_status,
			staged_school_year, staged_issued_date, staged_payroll_number
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (email) DO UPDATE SET initialization_code = EXCLUDED.initialization_code
		RETURNING id
	`,
		"Juan", "Dela Cruz", time.Date(2005, time.March, 14, 0, 0, 0, 0, time.UTC), "Male", "2026-00123",
		"123 Mabini St, Quezon City", "09171234567", "juan.delacruz@example.com",
		"Public", "College", "Polytechnic University", "2nd Year", 91.5,
		time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC), "Ongoing",
		code, string(entity.PayrollNoRequest),
		year, time.Now().UTC(), "PR-0001",
	).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed scholar: %v", err)
	}
	fmt.Printf("seeded scholar: id=%s email=juan.delacruz@example.com initialization_code=%s\n", id, code)

	// A fulfilled record from the previous school year
	if _, err := db.Exec(`
		INSERT INTO payroll_history (scholar_id, position, school_year, issued_date, distributed_date, payroll_number)
		VALUES ($1, 0, $2, $3, $4, $5)
		ON CONFLICT (scholar_id, position) DO NOTHING
	`, id, "2025-2026",
		time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.September, 30, 0, 0, 0, 0, time.UTC),
		"PR-0000",
	); err != nil {
		log.Fatalf("failed to seed payroll history: %v", err)
	}
	fmt.Println("seeded payroll history")

	var eventID string
	if err := db.QueryRow(`
		INSERT INTO activity_events (title, held_date)
		VALUES ($1, $2)
		ON CONFLICT (title, held_date) DO UPDATE SET title = EXCLUDED.title
		RETURNING id
	`, "Community Outreach Day", time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC)).Scan(&eventID); err != nil {
		log.Fatalf("failed to seed event: %v", err)
	}
	fmt.Printf("seeded event: id=%s\n", eventID)
}
