package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldsurvey/internal/db"
	"github.com/vbonduro/fieldsurvey/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func createTestSurvey(t *testing.T, d *sql.DB, name string) *domain.Survey {
	t.Helper()
	sv, err := NewSurveyStore(d).Create(context.Background(), domain.Survey{SiteName: name})
	require.NoError(t, err)
	return sv
}

func TestAreaStoreFunctional(t *testing.T) {
	d := openTestDB(t)
	sv := createTestSurvey(t, d, "Depot")
	other := createTestSurvey(t, d, "Annex")

	store := NewAreaStore(d)
	ctx := context.Background()

	created, err := store.CreateFunctional(ctx, domain.FunctionalArea{SurveyID: sv.ID, Title: "Boiler Room", Description: "Basement"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = store.CreateFunctional(ctx, domain.FunctionalArea{SurveyID: sv.ID, Title: "Roof"})
	require.NoError(t, err)
	_, err = store.CreateFunctional(ctx, domain.FunctionalArea{SurveyID: other.ID, Title: "Lobby"})
	require.NoError(t, err)

	areas, err := store.ListFunctional(ctx, sv.ID)
	require.NoError(t, err)
	require.Len(t, areas, 2)
	assert.Equal(t, "Boiler Room", areas[0].Title)
	assert.Equal(t, "Basement", areas[0].Description)
	assert.Equal(t, "Roof", areas[1].Title)
}

func TestAreaStoreHomogeneous_InsertionOrder(t *testing.T) {
	d := openTestDB(t)
	sv := createTestSurvey(t, d, "Depot")

	store := NewAreaStore(d)
	ctx := context.Background()

	for _, code := range []string{"HA-2", "HA-1"} {
		_, err := store.CreateHomogeneous(ctx, domain.HomogeneousArea{SurveyID: sv.ID, Code: code, Title: "Area " + code})
		require.NoError(t, err)
	}

	areas, err := store.ListHomogeneous(ctx, sv.ID)
	require.NoError(t, err)
	require.Len(t, areas, 2)
	assert.Equal(t, "HA-2", areas[0].Code)
	assert.Equal(t, "HA-1", areas[1].Code)
}

func TestAreaStoreHomogeneous_Empty(t *testing.T) {
	d := openTestDB(t)
	sv := createTestSurvey(t, d, "Depot")

	areas, err := NewAreaStore(d).ListHomogeneous(context.Background(), sv.ID)
	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestAreaStoreCreate_UnknownSurvey(t *testing.T) {
	d := openTestDB(t)

	_, err := NewAreaStore(d).CreateFunctional(context.Background(), domain.FunctionalArea{SurveyID: 404, Title: "Nowhere"})
	assert.Error(t, err)
}
