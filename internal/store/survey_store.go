package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

type SurveyStore struct {
	db *sql.DB
}

func NewSurveyStore(db *sql.DB) *SurveyStore {
	return &SurveyStore{db: db}
}

const surveyColumns = `id, site_name, site_address, survey_type, survey_date, inspector_name, status, site_photo, created_at`

func (s *SurveyStore) Create(ctx context.Context, sv domain.Survey) (*domain.Survey, error) {
	status := sv.Status
	if status == "" {
		status = "draft"
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO surveys (site_name, site_address, survey_type, survey_date, inspector_name, status, site_photo)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sv.SiteName, sv.SiteAddress, sv.SurveyType, nullTime(sv.SurveyDate), sv.InspectorName, status, sv.SitePhoto)
	if err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *SurveyStore) GetByID(ctx context.Context, id int64) (*domain.Survey, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE id = ?`, id)
	sv, err := scanSurvey(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	return sv, nil
}

func (s *SurveyStore) List(ctx context.Context) ([]*domain.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+surveyColumns+` FROM surveys ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	defer rows.Close()

	var surveys []*domain.Survey
	for rows.Next() {
		sv, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		surveys = append(surveys, sv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating surveys: %w", err)
	}

	return surveys, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row scanner) (*domain.Survey, error) {
	sv := &domain.Survey{}
	var date sql.NullTime
	if err := row.Scan(&sv.ID, &sv.SiteName, &sv.SiteAddress, &sv.SurveyType, &date,
		&sv.InspectorName, &sv.Status, &sv.SitePhoto, &sv.CreatedAt); err != nil {
		return nil, err
	}
	sv.SurveyDate = timePtr(date)
	return sv, nil
}
