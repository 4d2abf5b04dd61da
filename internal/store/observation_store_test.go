package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestObservationStore_RoundTripsOptionalFields(t *testing.T) {
	d := openTestDB(t)
	sv := createTestSurvey(t, d, "Depot")

	store := NewObservationStore(d)
	ctx := context.Background()

	_, err := store.Create(ctx, domain.Observation{
		SurveyID:        sv.ID,
		Area:            "Boiler Room",
		RiskLevel:       "high",
		Latitude:        ptr(45.5),
		Longitude:       ptr(-73.25),
		SampleCollected: ptr(true),
		Notes:           "Damaged lagging",
	})
	require.NoError(t, err)
	_, err = store.Create(ctx, domain.Observation{SurveyID: sv.ID, Area: "Roof"})
	require.NoError(t, err)

	got, err := store.ListBySurvey(ctx, sv.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Boiler Room", first.Area)
	assert.Equal(t, "high", first.RiskLevel)
	require.NotNil(t, first.Latitude)
	require.NotNil(t, first.Longitude)
	assert.Equal(t, 45.5, *first.Latitude)
	assert.Equal(t, -73.25, *first.Longitude)
	require.NotNil(t, first.SampleCollected)
	assert.True(t, *first.SampleCollected)

	second := got[1]
	assert.Equal(t, "Roof", second.Area)
	assert.Nil(t, second.Latitude)
	assert.Nil(t, second.Longitude)
	assert.Nil(t, second.SampleCollected)
}

func TestObservationStore_ScopedToSurvey(t *testing.T) {
	d := openTestDB(t)
	a := createTestSurvey(t, d, "A")
	b := createTestSurvey(t, d, "B")

	store := NewObservationStore(d)
	ctx := context.Background()

	_, err := store.Create(ctx, domain.Observation{SurveyID: a.ID, Area: "Hall"})
	require.NoError(t, err)

	got, err := store.ListBySurvey(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
