package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjhdream/truck-billing/internal/domain"
)

func TestTeamRepo_Create(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	got, err := r.Teams.Create(ctx, domain.Team{Name: "Fleet A", OwnerUserID: "owner-1"})

	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, "Fleet A", got.Name)
	assert.Equal(t, "owner-1", got.OwnerUserID)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
}

func TestTeamRepo_GetByID_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.Teams.GetByID(context.Background(), ghostID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTeamRepo_ListByOwner(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	createTeam(t, r, "First")
	createTeam(t, r, "Second")
	_, err := r.Teams.Create(ctx, domain.Team{Name: "Other", OwnerUserID: "owner-2"})
	require.NoError(t, err)

	teams, err := r.Teams.ListByOwner(ctx, "owner-1")

	require.NoError(t, err)
	var names []string
	for _, tm := range teams {
		names = append(names, tm.Name)
	}
	assert.Contains(t, names, "First")
	assert.Contains(t, names, "Second")
	assert.NotContains(t, names, "Other")
}

func TestTeamRepo_UpdateName(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	team := createTeam(t, r, "Old")

	got, err := r.Teams.UpdateName(ctx, team.ID, "New")

	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, team.ID, got.ID)
}

func TestTeamRepo_UpdateName_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.Teams.UpdateName(context.Background(), ghostID, "x")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTeamRepo_Delete(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	team := createTeam(t, r, "Doomed")

	require.NoError(t, r.Teams.Delete(ctx, team.ID))

	_, err := r.Teams.GetByID(ctx, team.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "team should be gone after delete")
}

func TestTeamRepo_Delete_NotFound(t *testing.T) {
	r := newTestRepos(t)

	err := r.Teams.Delete(context.Background(), ghostID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
