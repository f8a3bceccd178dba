// Package store provides a PostgreSQL-backed account provider for mentorauth.
package store

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/VaibhavDaveDev/mentorauth"
)

//go:embed migrations/001_initial.sql
var migrationSQL string

// poolIface is the subset of pgxpool.Pool the store uses. Mock pools in
// tests satisfy the same interface.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresAccountStore implements mentorauth.AccountProvider on PostgreSQL.
//
// PostgresAccountStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PostgresAccountStore struct {
	pool poolIface
}

// NewPostgresAccountStore wraps an existing pool. Use [Connect] when the
// caller does not manage its own pool.
func NewPostgresAccountStore(pool poolIface) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool}
}

// Connect opens a pgx pool for the given DSN and returns a store over it
// together with the pool so the caller can close it on shutdown.
func Connect(ctx context.Context, dsn string) (*PostgresAccountStore, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, oops.Code("STORE_CONNECT_FAILED").Wrap(err)
	}
	return NewPostgresAccountStore(pool), pool, nil
}

// Migrate applies the embedded schema. It is idempotent.
func (s *PostgresAccountStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migrationSQL); err != nil {
		return oops.Code("STORE_MIGRATE_FAILED").Wrap(err)
	}
	return nil
}

const accountColumns = `id, name, mail, pwd, role,
	organization_id, exp, contact, gender, profile_pic_url, github_id`

// FindByEmail returns the account registered under the given email, or
// mentorauth.ErrProviderNotFound when no row exists.
func (s *PostgresAccountStore) FindByEmail(ctx context.Context, email string) (mentorauth.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE mail = $1`,
		email)

	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mentorauth.Account{}, mentorauth.ErrProviderNotFound
		}
		return mentorauth.Account{}, oops.Code("STORE_QUERY_FAILED").
			With("operation", "find account by email").
			Wrap(err)
	}
	return acct, nil
}

// Insert creates the account row and returns it with its assigned ID. A
// unique-violation on the email column maps to
// mentorauth.ErrProviderDuplicateEmail so the engine can resolve races
// against its pre-insert existence check.
func (s *PostgresAccountStore) Insert(ctx context.Context, input mentorauth.CreateAccountInput) (mentorauth.Account, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, mail, pwd, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		input.Name, input.Email, input.PasswordHash, string(input.Role),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return mentorauth.Account{}, mentorauth.ErrProviderDuplicateEmail
		}
		return mentorauth.Account{}, oops.Code("STORE_INSERT_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}

	return mentorauth.Account{
		ID:           id,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
	}, nil
}

// ExistsByEmail reports whether an account row exists for the email.
func (s *PostgresAccountStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE mail = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, oops.Code("STORE_QUERY_FAILED").
			With("operation", "account existence check").
			Wrap(err)
	}
	return exists, nil
}

func scanAccount(row pgx.Row) (mentorauth.Account, error) {
	var acct mentorauth.Account
	var role string
	err := row.Scan(
		&acct.ID,
		&acct.Name,
		&acct.Email,
		&acct.PasswordHash,
		&role,
		&acct.OrganizationID,
		&acct.ExperienceYears,
		&acct.Contact,
		&acct.Gender,
		&acct.ProfilePicURL,
		&acct.GithubID,
	)
	if err != nil {
		return mentorauth.Account{}, err
	}
	acct.Role = mentorauth.Role(role)
	return acct, nil
}
