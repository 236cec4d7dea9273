// Package appdb reads the admissions/users snapshot from the
// application's MySQL database. These tables arrive independently of the
// log pipeline and never interact with it.
package appdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/stanbell/analytics/internal/model"
	"github.com/stanbell/analytics/internal/timestamp"
)

// Store wraps the app-database connection pool.
type Store struct {
	db *sql.DB
}

// Open connects to the app database. The DSN is the standard
// go-sql-driver form, e.g. user:pass@tcp(host:3306)/EHCCEA?parseTime=true.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("appdb: open: %w", err)
	}
	db.SetMaxOpenConns(40)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("appdb: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection, for tests.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Admissions reads the encounter snapshot.
func (s *Store) Admissions(ctx context.Context) ([]model.Admission, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT emr_patient_id, hospital_id, emr_encounter_id, expired_date FROM encounter")
	if err != nil {
		return nil, fmt.Errorf("appdb: querying encounters: %w", err)
	}
	defer rows.Close()

	var admissions []model.Admission
	for rows.Next() {
		var a model.Admission
		var expired sql.NullTime
		if err := rows.Scan(&a.PatientID, &a.HospitalID, &a.EncounterID, &expired); err != nil {
			return nil, fmt.Errorf("appdb: scanning encounter: %w", err)
		}
		if expired.Valid {
			a.NoLongerEligible = timestamp.FormatDateTime(expired.Time)
		}
		admissions = append(admissions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appdb: reading encounters: %w", err)
	}
	return admissions, nil
}

// Users reads the user snapshot joined to encounters. Patients and
// proxies self-register, so their invited date/by derive from creation;
// staff users arrive by invitation elsewhere and those fields stay
// blank, as do the removal columns the app does not track yet.
func (s *Store) Users(ctx context.Context) ([]model.User, error) {
	const query = `
		SELECT u.comm_identifier, e.emr_patient_id, e.emr_encounter_id, e.hospital_id, u.created, ue.role, e.expired_date
		FROM user u
		JOIN user_encounter ue ON ue.user_id = u.user_id
		JOIN encounter e ON e.encounter_id = ue.encounter_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("appdb: querying users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var created, expired sql.NullTime
		if err := rows.Scan(&u.User, &u.PatientID, &u.EncounterID, &u.HospitalID, &created, &u.CurrentRole, &expired); err != nil {
			return nil, fmt.Errorf("appdb: scanning user: %w", err)
		}

		if created.Valid {
			u.CreatedDate = timestamp.FormatDateTime(created.Time)
		}
		u.EULAAcceptedDate = u.CreatedDate
		if expired.Valid {
			u.NoLongerEligible = timestamp.FormatDateTime(expired.Time)
		}

		role := strings.ToUpper(u.CurrentRole)
		if role == "PATIENT" || role == "PROXY" {
			u.InvitedDate = u.CreatedDate
			u.InvitedBy = "Self"
		}

		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appdb: reading users: %w", err)
	}
	return users, nil
}
