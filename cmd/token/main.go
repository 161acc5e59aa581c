// Command token issues a bearer token for a user id, signed with
// JWT_SECRET. It bridges the external identity provider during local
// development.
//
// With -grant-admin it also assigns ADMIN to the user in the database named
// by DATABASE_URL. The API only lets existing admins grant ADMIN, so this is
// how the first one is made.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fjhdream/truck-billing/internal/auth"
	"github.com/fjhdream/truck-billing/internal/domain"
	"github.com/fjhdream/truck-billing/internal/repo"
	"github.com/fjhdream/truck-billing/internal/service"
)

func main() {
	userID := flag.String("user", "", "user id to put in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	grantAdmin := flag.Bool("grant-admin", false, "assign ADMIN to the user before issuing the token")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "token: -user is required")
		os.Exit(2)
	}

	signer, err := auth.NewSigner(os.Getenv("JWT_SECRET"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}

	if *grantAdmin {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		err := bootstrapAdmin(ctx, os.Getenv("DATABASE_URL"), *userID)
		stop()
		if err != nil {
			fmt.Fprintln(os.Stderr, "token:", err)
			os.Exit(1)
		}
	}

	tok, err := signer.GenerateToken(*userID, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}

// bootstrapAdmin assigns ADMIN without a caller check. The user must exist.
func bootstrapAdmin(ctx context.Context, dsn, userID string) error {
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is required with -grant-admin")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	roles := service.NewRoleService(service.Deps{Repos: repo.NewRepos(pool), Tx: repo.NewTxRunner(pool)})
	_, err = roles.Assign(ctx, userID, string(domain.RoleAdmin))
	return err
}
