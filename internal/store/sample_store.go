package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

// SampleStore persists asbestos samples, their layers, and paint samples.
type SampleStore struct {
	db *sql.DB
}

func NewSampleStore(db *sql.DB) *SampleStore {
	return &SampleStore{db: db}
}

func (s *SampleStore) CreateAsbestos(ctx context.Context, a domain.AsbestosSample) (*domain.AsbestosSample, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO asbestos_samples (
			survey_id, sample_number, functional_area, homogeneous_area, location,
			material_type, asbestos_type, asbestos_percent, estimated_quantity,
			condition, collection_method, results, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.SurveyID, a.SampleNumber, a.FunctionalArea, a.HomogeneousArea, a.Location,
		a.MaterialType, a.AsbestosType, nullFloat(a.AsbestosPercent), a.EstimatedQuantity,
		a.Condition, a.CollectionMethod, a.Results, a.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create asbestos sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	a.ID = id
	return &a, nil
}

func (s *SampleStore) CreateLayer(ctx context.Context, l domain.Layer) (*domain.Layer, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO asbestos_layers (sample_id, layer_number, material_type, asbestos_type, percent, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, l.SampleID, l.LayerNumber, l.MaterialType, l.AsbestosType, nullFloat(l.Percent), l.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create layer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	l.ID = id
	return &l, nil
}

func (s *SampleStore) CreatePaint(ctx context.Context, p domain.PaintSample) (*domain.PaintSample, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO paint_samples (
			survey_id, sample_number, functional_area, homogeneous_area, location,
			substrate, substrate_other, color, condition, collection_method,
			lead_result, cadmium_result, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.SurveyID, p.SampleNumber, p.FunctionalArea, p.HomogeneousArea, p.Location,
		p.Substrate, p.SubstrateOther, p.Color, p.Condition, p.CollectionMethod,
		p.LeadResult, p.CadmiumResult, p.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create paint sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	p.ID = id
	return &p, nil
}

func (s *SampleStore) ListAsbestos(ctx context.Context, surveyID int64) ([]domain.AsbestosSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, sample_number, functional_area, homogeneous_area, location,
			material_type, asbestos_type, asbestos_percent, estimated_quantity,
			condition, collection_method, results, notes
		FROM asbestos_samples WHERE survey_id = ? ORDER BY id ASC
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list asbestos samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.AsbestosSample
	for rows.Next() {
		var (
			a       domain.AsbestosSample
			percent sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &a.SurveyID, &a.SampleNumber, &a.FunctionalArea, &a.HomogeneousArea, &a.Location,
			&a.MaterialType, &a.AsbestosType, &percent, &a.EstimatedQuantity,
			&a.Condition, &a.CollectionMethod, &a.Results, &a.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan asbestos sample: %w", err)
		}
		a.AsbestosPercent = floatPtr(percent)
		samples = append(samples, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asbestos samples: %w", err)
	}

	return samples, nil
}

// ListLayersBySurvey returns every layer of every asbestos sample in the
// survey, keyed by sample ID and ordered by layer number.
func (s *SampleStore) ListLayersBySurvey(ctx context.Context, surveyID int64) (map[int64][]domain.Layer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.sample_id, l.layer_number, l.material_type, l.asbestos_type, l.percent, l.notes
		FROM asbestos_layers l
		JOIN asbestos_samples s ON s.id = l.sample_id
		WHERE s.survey_id = ?
		ORDER BY l.sample_id ASC, l.layer_number ASC
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list layers: %w", err)
	}
	defer rows.Close()

	layers := make(map[int64][]domain.Layer)
	for rows.Next() {
		var (
			l       domain.Layer
			percent sql.NullFloat64
		)
		if err := rows.Scan(&l.ID, &l.SampleID, &l.LayerNumber, &l.MaterialType, &l.AsbestosType, &percent, &l.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan layer: %w", err)
		}
		l.Percent = floatPtr(percent)
		layers[l.SampleID] = append(layers[l.SampleID], l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating layers: %w", err)
	}

	return layers, nil
}

func (s *SampleStore) ListPaint(ctx context.Context, surveyID int64) ([]domain.PaintSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, sample_number, functional_area, homogeneous_area, location,
			substrate, substrate_other, color, condition, collection_method,
			lead_result, cadmium_result, notes
		FROM paint_samples WHERE survey_id = ? ORDER BY id ASC
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list paint samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.PaintSample
	for rows.Next() {
		var p domain.PaintSample
		if err := rows.Scan(&p.ID, &p.SurveyID, &p.SampleNumber, &p.FunctionalArea, &p.HomogeneousArea, &p.Location,
			&p.Substrate, &p.SubstrateOther, &p.Color, &p.Condition, &p.CollectionMethod,
			&p.LeadResult, &p.CadmiumResult, &p.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan paint sample: %w", err)
		}
		samples = append(samples, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating paint samples: %w", err)
	}

	return samples, nil
}
