package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

// photoTables maps each photo kind to its table and the owner table used to
// reach the survey.
var photoTables = map[domain.PhotoKind]struct{ photos, owners string }{
	domain.PhotoKindObservation: {"observation_photos", "observations"},
	domain.PhotoKindAsbestos:    {"asbestos_photos", "asbestos_samples"},
	domain.PhotoKindPaint:       {"paint_photos", "paint_samples"},
}

type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

func (s *PhotoStore) Create(ctx context.Context, kind domain.PhotoKind, ownerID int64, storageKey, originalName, url string) (*domain.Photo, error) {
	t, ok := photoTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown photo kind %q", kind)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO `+t.photos+` (owner_id, filename, original_name, url) VALUES (?, ?, ?, ?)
	`, ownerID, storageKey, originalName, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s photo: %w", kind, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	photo := &domain.Photo{}
	err = s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, filename, original_name, url, uploaded_at FROM `+t.photos+` WHERE id = ?
	`, id).Scan(&photo.ID, &photo.OwnerID, &photo.Filename, &photo.OriginalName, &photo.URL, &photo.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s photo: %w", kind, err)
	}

	return photo, nil
}

// ListBySurvey returns the photos of one kind for a survey keyed by owner ID,
// each group in upload order.
func (s *PhotoStore) ListBySurvey(ctx context.Context, kind domain.PhotoKind, surveyID int64) (map[int64][]domain.Photo, error) {
	t, ok := photoTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown photo kind %q", kind)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.owner_id, p.filename, p.original_name, p.url, p.uploaded_at
		FROM `+t.photos+` p
		JOIN `+t.owners+` o ON o.id = p.owner_id
		WHERE o.survey_id = ?
		ORDER BY p.owner_id ASC, p.uploaded_at ASC, p.id ASC
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s photos: %w", kind, err)
	}
	defer rows.Close()

	photos := make(map[int64][]domain.Photo)
	for rows.Next() {
		var p domain.Photo
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Filename, &p.OriginalName, &p.URL, &p.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s photo: %w", kind, err)
		}
		photos[p.OwnerID] = append(photos[p.OwnerID], p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s photos: %w", kind, err)
	}

	return photos, nil
}
