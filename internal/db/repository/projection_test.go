package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "duck-projection/internal/db"
	"duck-projection/internal/domain"
)

func setupProjectionRepo(t *testing.T) *ProjectionRepo {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	return NewProjectionRepo(writeDB, readDB)
}

func sampleProjection(name string) *domain.Projection {
	return &domain.Projection{
		Name:        name,
		Description: "events for dashboards",
		Fields: []domain.FieldSpec{
			{Name: "id", Type: "long"},
			{Name: "name", Type: "string", Nullable: true, Metadata: map[string]string{"comment": "display name"}},
			{Name: "active", Type: "boolean"},
		},
	}
}

func TestProjectionRepo_CreateAndGet(t *testing.T) {
	repo := setupProjectionRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleProjection("events"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByName(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "events for dashboards", got.Description)
	assert.Equal(t, sampleProjection("events").Fields, got.Fields)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestProjectionRepo_DuplicateName(t *testing.T) {
	repo := setupProjectionRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleProjection("events"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, sampleProjection("events"))
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "events")
}

func TestProjectionRepo_GetMissing(t *testing.T) {
	repo := setupProjectionRepo(t)

	_, err := repo.GetByName(context.Background(), "nope")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestProjectionRepo_EmptyFields(t *testing.T) {
	repo := setupProjectionRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Projection{Name: "nothing"})
	require.NoError(t, err)

	got, err := repo.GetByName(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, got.Fields)
}

func TestProjectionRepo_ListPaginates(t *testing.T) {
	repo := setupProjectionRepo(t)
	ctx := context.Background()

	for i := range 5 {
		_, err := repo.Create(ctx, sampleProjection(fmt.Sprintf("p%d", i)))
		require.NoError(t, err)
	}

	page1, total, err := repo.List(ctx, domain.PageRequest{MaxResults: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page1, 2)
	assert.Equal(t, "p0", page1[0].Name)
	assert.Equal(t, "p1", page1[1].Name)

	token := domain.NextPageToken(0, 2, total)
	require.NotEmpty(t, token)

	page2, _, err := repo.List(ctx, domain.PageRequest{MaxResults: 2, PageToken: token})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "p2", page2[0].Name)
}

func TestProjectionRepo_Delete(t *testing.T) {
	repo := setupProjectionRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleProjection("events"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "events"))

	_, err = repo.GetByName(ctx, "events")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)

	err = repo.Delete(ctx, "events")
	require.ErrorAs(t, err, &notFound)
}
