package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/musicclouds/web/internal/domain/auth"
	apperrors "github.com/musicclouds/web/internal/errors"
	"github.com/musicclouds/web/internal/ports"
)

var _ ports.CredentialStoreFactory = (*CredentialRepo)(nil)

// CredentialRepo persists one credential per visitor in Postgres.
type CredentialRepo struct {
	DB    *sql.DB
	clock ports.Clock
}

// CredentialRepoOption configures a CredentialRepo.
type CredentialRepoOption func(*CredentialRepo)

// WithClock overrides the clock used to stamp updated_at.
func WithClock(c ports.Clock) CredentialRepoOption {
	return func(r *CredentialRepo) {
		if c != nil {
			r.clock = c
		}
	}
}

// NewCredentialRepo returns a repo backed by db.
func NewCredentialRepo(db *sql.DB, opts ...CredentialRepoOption) *CredentialRepo {
	r := &CredentialRepo{DB: db, clock: RealTimeProvider{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ForVisitor returns the credential store view for a single visitor.
//
//nolint:ireturn // callers only depend on the port.
func (r *CredentialRepo) ForVisitor(visitorID string) ports.CredentialStore {
	return &visitorCredential{repo: r, visitorID: visitorID}
}

// Lookup returns the visitor's token. ok is false when no row exists.
func (r *CredentialRepo) Lookup(ctx context.Context, visitorID string) (token string, ok bool, err error) {
	if visitorID == "" {
		return "", false, nil
	}
	const q = `SELECT token FROM visitor_credentials WHERE visitor_id = $1 AND cred_key = $2`
	err = r.DB.QueryRowContext(ctx, q, visitorID, auth.CredentialKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup credential: %w", apperrors.MapDBError(err))
	}
	return token, true, nil
}

// Upsert stores token for the visitor, replacing any previous value. The
// token is stored as given, empty or not.
func (r *CredentialRepo) Upsert(ctx context.Context, visitorID, token string) error {
	if visitorID == "" {
		return ErrVisitorIDRequired
	}
	const q = `
		INSERT INTO visitor_credentials (visitor_id, cred_key, token, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (visitor_id, cred_key)
		DO UPDATE SET token = EXCLUDED.token, updated_at = EXCLUDED.updated_at`
	if _, err := r.DB.ExecContext(ctx, q, visitorID, auth.CredentialKey, token, r.clock.Now().UTC()); err != nil {
		return fmt.Errorf("upsert credential: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Delete removes the visitor's credential. Deleting a missing row is not an error.
func (r *CredentialRepo) Delete(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return nil
	}
	const q = `DELETE FROM visitor_credentials WHERE visitor_id = $1 AND cred_key = $2`
	if _, err := r.DB.ExecContext(ctx, q, visitorID, auth.CredentialKey); err != nil {
		return fmt.Errorf("delete credential: %w", apperrors.MapDBError(err))
	}
	return nil
}

type visitorCredential struct {
	repo      *CredentialRepo
	visitorID string
}

func (v *visitorCredential) Get(ctx context.Context) (string, bool, error) {
	return v.repo.Lookup(ctx, v.visitorID)
}

func (v *visitorCredential) Set(ctx context.Context, token string) error {
	return v.repo.Upsert(ctx, v.visitorID, token)
}

func (v *visitorCredential) Clear(ctx context.Context) error {
	return v.repo.Delete(ctx, v.visitorID)
}
