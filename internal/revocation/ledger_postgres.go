package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"claimflow/internal/attestation/models"
)

// PostgresSchema creates the revocation table. A credential revoked twice is
// recorded once.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS revoked_credentials (
	signed_hash TEXT PRIMARY KEY,
	entity      TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	signed_data TEXT NOT NULL,
	user_id     TEXT NOT NULL DEFAULT '',
	revoked_at  TIMESTAMPTZ NOT NULL
);
`

// Clock returns the current time.
type Clock func() time.Time

// PostgresLedger persists revocations in PostgreSQL.
type PostgresLedger struct {
	db    *sql.DB
	clock Clock
}

// PostgresLedgerOption configures a PostgresLedger instance.
type PostgresLedgerOption func(*PostgresLedger)

// WithPostgresClock sets the clock function for testability.
func WithPostgresClock(clock Clock) PostgresLedgerOption {
	return func(l *PostgresLedger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// NewPostgresLedger constructs a PostgreSQL-backed revocation ledger.
func NewPostgresLedger(db *sql.DB, opts ...PostgresLedgerOption) *PostgresLedger {
	l := &PostgresLedger{
		db:    db,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Migrate applies PostgresSchema.
func (l *PostgresLedger) Migrate(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("migrate revoked credentials: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Record(ctx context.Context, rc models.RevokedCredential) error {
	query := `
		INSERT INTO revoked_credentials (signed_hash, entity, entity_id, signed_data, user_id, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (signed_hash) DO NOTHING
	`
	_, err := l.db.ExecContext(ctx, query, rc.SignedHash, rc.Entity, rc.EntityID, rc.SignedData, rc.UserID, l.clock())
	if err != nil {
		return fmt.Errorf("record revoked credential: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Exists(ctx context.Context, signedHash string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, `SELECT 1 FROM revoked_credentials WHERE signed_hash = $1`, signedHash).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check revoked credential: %w", err)
	}
	return true, nil
}

// Revoked returns the subset of hashes that were revoked. Empty hashes are
// ignored.
func (l *PostgresLedger) Revoked(ctx context.Context, hashes []string) (map[string]bool, error) {
	valid := make([]string, 0, len(hashes))
	for _, h := range hashes {
		if h != "" {
			valid = append(valid, h)
		}
	}
	out := make(map[string]bool, len(valid))
	if len(valid) == 0 {
		return out, nil
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT signed_hash FROM revoked_credentials WHERE signed_hash = ANY($1::text[])`,
		pq.Array(valid),
	)
	if err != nil {
		return nil, fmt.Errorf("check revoked credentials batch: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan revoked credential: %w", err)
		}
		out[h] = true
	}
	return out, rows.Err()
}
