package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/fjhdream/truck-billing/internal/domain"
	"github.com/fjhdream/truck-billing/internal/repo"
	"github.com/fjhdream/truck-billing/testutil"
)

// newTestTx opens a transaction against the test database. The transaction is
// rolled back when the test finishes, giving free per-test isolation.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// newTestRepos returns every repository bound to one rolled-back transaction.
func newTestRepos(t *testing.T) repo.Repos {
	t.Helper()
	return repo.NewRepos(newTestTx(t))
}

// createTeam inserts a team fixture and fails the test on error.
func createTeam(t *testing.T, r repo.Repos, name string) domain.Team {
	t.Helper()
	team, err := r.Teams.Create(context.Background(), domain.Team{Name: name, OwnerUserID: "owner-1"})
	require.NoError(t, err)
	return team
}

// createBilling inserts an open billing period for team.
func createBilling(t *testing.T, r repo.Repos, teamID uuid.UUID, start time.Time) domain.Billing {
	t.Helper()
	b, err := r.Billings.Create(context.Background(), domain.Billing{TeamID: teamID, Name: start.Format(domain.BillingDateLayout), StartTime: start})
	require.NoError(t, err)
	return b
}

var ghostID = [16]byte{0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef,
	0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef}
