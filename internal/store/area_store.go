package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

// AreaStore persists both kinds of survey area.
type AreaStore struct {
	db *sql.DB
}

func NewAreaStore(db *sql.DB) *AreaStore {
	return &AreaStore{db: db}
}

func (s *AreaStore) CreateFunctional(ctx context.Context, fa domain.FunctionalArea) (*domain.FunctionalArea, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO functional_areas (survey_id, title, description) VALUES (?, ?, ?)
	`, fa.SurveyID, fa.Title, fa.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create functional area: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	fa.ID = id
	return &fa, nil
}

func (s *AreaStore) CreateHomogeneous(ctx context.Context, ha domain.HomogeneousArea) (*domain.HomogeneousArea, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO homogeneous_areas (survey_id, code, title, description) VALUES (?, ?, ?, ?)
	`, ha.SurveyID, ha.Code, ha.Title, ha.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create homogeneous area: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	ha.ID = id
	return &ha, nil
}

func (s *AreaStore) ListFunctional(ctx context.Context, surveyID int64) ([]domain.FunctionalArea, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, title, description FROM functional_areas
		WHERE survey_id = ? ORDER BY id ASC
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list functional areas: %w", err)
	}
	defer rows.Close()

	var areas []domain.FunctionalArea
	for rows.Next() {
		var fa domain.FunctionalArea
		if err := rows.Scan(&fa.ID, &fa.SurveyID, &fa.Title, &fa.Description); err != nil {
			return nil, fmt.Errorf("failed to scan functional area: %w", err)
		}
		areas = append(areas, fa)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating functional areas: %w", err)
	}

	return areas, nil
}

// ListHomogeneous returns areas in insertion order. Display ordering by code
// is applied by the report.
func (s *AreaStore) ListHomogeneous(ctx context.Context, surveyID int64) ([]domain.HomogeneousArea, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, code, title, description FROM homogeneous_areas
		WHERE survey_id = ? ORDER BY id ASC
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list homogeneous areas: %w", err)
	}
	defer rows.Close()

	var areas []domain.HomogeneousArea
	for rows.Next() {
		var ha domain.HomogeneousArea
		if err := rows.Scan(&ha.ID, &ha.SurveyID, &ha.Code, &ha.Title, &ha.Description); err != nil {
			return nil, fmt.Errorf("failed to scan homogeneous area: %w", err)
		}
		areas = append(areas, ha)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating homogeneous areas: %w", err)
	}

	return areas, nil
}
