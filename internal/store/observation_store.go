package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

type ObservationStore struct {
	db *sql.DB
}

func NewObservationStore(db *sql.DB) *ObservationStore {
	return &ObservationStore{db: db}
}

func (s *ObservationStore) Create(ctx context.Context, o domain.Observation) (*domain.Observation, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO observations (survey_id, area, risk_level, latitude, longitude, sample_collected, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, o.SurveyID, o.Area, o.RiskLevel, nullFloat(o.Latitude), nullFloat(o.Longitude), nullBool(o.SampleCollected), o.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create observation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	o.ID = id
	return &o, nil
}

func (s *ObservationStore) ListBySurvey(ctx context.Context, surveyID int64) ([]domain.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, area, risk_level, latitude, longitude, sample_collected, notes
		FROM observations WHERE survey_id = ? ORDER BY id ASC
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	defer rows.Close()

	var observations []domain.Observation
	for rows.Next() {
		var (
			o        domain.Observation
			lat, lon sql.NullFloat64
			sampled  sql.NullBool
		)
		if err := rows.Scan(&o.ID, &o.SurveyID, &o.Area, &o.RiskLevel, &lat, &lon, &sampled, &o.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		o.Latitude = floatPtr(lat)
		o.Longitude = floatPtr(lon)
		o.SampleCollected = boolPtr(sampled)
		observations = append(observations, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating observations: %w", err)
	}

	return observations, nil
}
