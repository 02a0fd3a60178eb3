package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/ports"
	"claimflow/pkg/platform/sentinel"
)

// Schema creates the entities table. Bodies are JSONB so searches can filter
// on top-level fields.
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
	entity_type TEXT NOT NULL,
	id          TEXT NOT NULL,
	body        JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (entity_type, id)
);
CREATE INDEX IF NOT EXISTS entities_body_gin ON entities USING GIN (body jsonb_path_ops);
`

const uniqueViolation = "23505"

// PostgresStore persists entities in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool         *pgxpool.Pool
	uuidProperty string
}

// NewPostgres constructs a PostgreSQL-backed entity store.
func NewPostgres(pool *pgxpool.Pool, uuidProperty string) *PostgresStore {
	if uuidProperty == "" {
		uuidProperty = "osid"
	}
	return &PostgresStore{pool: pool, uuidProperty: uuidProperty}
}

// Migrate applies Schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate entities: %w", err)
	}
	return nil
}

func (s *PostgresStore) Read(ctx context.Context, entityType, id string) (models.Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT body FROM entities WHERE entity_type = $1 AND id = $2`,
		entityType, id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", entityType, id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("read entity: %w", err)
	}
	body, err := jsondoc.Decode(raw)
	if err != nil {
		return nil, err
	}
	return jsondoc.Wrap(entityType, body), nil
}

func (s *PostgresStore) Update(ctx context.Context, entityType, id string, root models.Document) error {
	body, ok := jsondoc.Body(root, entityType)
	if !ok {
		return fmt.Errorf("snapshot does not contain %s", entityType)
	}
	stored := jsondoc.CloneDocument(body)
	stored[s.uuidProperty] = id
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode entity: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE entities SET body = $3::jsonb, updated_at = now() WHERE entity_type = $1 AND id = $2`,
		entityType, id, string(raw),
	)
	if err != nil {
		return fmt.Errorf("update entity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", entityType, id, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, entityType string, body models.Document) (string, error) {
	stored := jsondoc.CloneDocument(body)
	if stored == nil {
		stored = models.Document{}
	}
	id, _ := stored[s.uuidProperty].(string)
	if id == "" {
		id = uuid.NewString()
		stored[s.uuidProperty] = id
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode entity: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO entities (entity_type, id, body) VALUES ($1, $2, $3::jsonb)`,
		entityType, id, string(raw),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("%s/%s: %w", entityType, id, sentinel.ErrConflict)
		}
		return "", fmt.Errorf("create entity: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Delete(ctx context.Context, entityType, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM entities WHERE entity_type = $1 AND id = $2`,
		entityType, id,
	)
	if err != nil {
		return fmt.Errorf("delete entity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", entityType, id, sentinel.ErrNotFound)
	}
	return nil
}

// Search filters on top-level body fields. "eq" matches a string field
// exactly; "contains" matches a substring of a string field or an element of
// an array field.
func (s *PostgresStore) Search(ctx context.Context, q ports.SearchQuery) (*ports.SearchResult, error) {
	where, args := buildFilters(q)
	query := `SELECT body, count(*) OVER () FROM entities WHERE ` + where + ` ORDER BY id`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search entities: %w", err)
	}
	defer rows.Close()

	res := &ports.SearchResult{}
	for rows.Next() {
		var raw []byte
		var total int64
		if err := rows.Scan(&raw, &total); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		body, err := jsondoc.Decode(raw)
		if err != nil {
			return nil, err
		}
		res.Entities = append(res.Entities, body)
		res.TotalCount = int(total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search entities: %w", err)
	}
	return res, nil
}

func buildFilters(q ports.SearchQuery) (string, []any) {
	args := []any{q.EntityType}
	clauses := []string{"entity_type = $1"}
	for field, f := range q.Filters {
		args = append(args, field, f.Value)
		k, v := len(args)-1, len(args)
		switch f.Op {
		case ports.FilterContains:
			clauses = append(clauses, fmt.Sprintf(
				"(jsonb_typeof(body->$%[1]d::text) = 'string' AND strpos(body->>$%[1]d::text, $%[2]d::text) > 0 OR body->$%[1]d::text ? $%[2]d::text)",
				k, v))
		default:
			clauses = append(clauses, fmt.Sprintf("body->>$%d::text = $%d::text", k, v))
		}
	}
	return strings.Join(clauses, " AND "), args
}
