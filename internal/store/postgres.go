package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationsFS holds the goose migrations for the Postgres backend.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the directory of MigrationsFS containing the SQL files.
const MigrationsDir = "migrations"

// Postgres is a Store keeping every collection as JSONB rows of one table.
type Postgres struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// ConnectPostgres opens a pool for dsn and pings it.
func ConnectPostgres(ctx context.Context, dsn string, timeout time.Duration) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Postgres{db: pool, timeout: timeout}, nil
}

func NewPostgres(db *pgxpool.Pool, timeout time.Duration) *Postgres {
	return &Postgres{db: db, timeout: timeout}
}

// Migrate applies the embedded migrations.
func (p *Postgres) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(p.db)
	defer db.Close()

	goose.SetBaseFS(MigrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, MigrationsDir); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

func (p *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Postgres) FindOne(ctx context.Context, collection string, filter Filter, out any) error {
	where, args, err := pgWhere(collection, filter)
	if err != nil {
		return err
	}
	query := "SELECT id::text, doc FROM documents WHERE " + where + " ORDER BY seq LIMIT 1"

	var (
		id  string
		raw []byte
	)
	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	if err := p.db.QueryRow(timeoutCtx, query, args...).Scan(&id, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("finding %s document: %w", collection, err)
	}

	doc, err := withID(id, raw)
	if err != nil {
		return err
	}
	return remarshal(doc, out)
}

func (p *Postgres) FindMany(ctx context.Context, collection string, filter Filter, out any) error {
	where, args, err := pgWhere(collection, filter)
	if err != nil {
		return err
	}
	query := "SELECT id::text, doc FROM documents WHERE " + where + " ORDER BY seq"

	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	rows, err := p.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return fmt.Errorf("finding %s documents: %w", collection, err)
	}
	defer rows.Close()

	docs := []map[string]any{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return fmt.Errorf("scanning %s document: %w", collection, err)
		}
		doc, err := withID(id, raw)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s documents: %w", collection, err)
	}
	return remarshal(docs, out)
}

func (p *Postgres) InsertOne(ctx context.Context, collection string, doc any) (InsertResult, error) {
	var fields map[string]any
	if err := remarshal(doc, &fields); err != nil {
		return InsertResult{}, err
	}
	delete(fields, "_id")
	raw, err := json.Marshal(fields)
	if err != nil {
		return InsertResult{}, fmt.Errorf("encoding %s document: %w", collection, err)
	}

	const query = `INSERT INTO documents (collection, doc) VALUES ($1, $2::jsonb) RETURNING id::text`
	var id string
	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	if err := p.db.QueryRow(timeoutCtx, query, collection, string(raw)).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return InsertResult{}, fmt.Errorf("inserting %s document: %w", collection, ErrDuplicateKey)
		}
		return InsertResult{}, fmt.Errorf("inserting %s document: %w", collection, err)
	}
	return InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (p *Postgres) UpdateOne(ctx context.Context, collection, id string, patch map[string]any, mode UpdateMode) (UpdateResult, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return UpdateResult{}, ErrInvalidID
	}

	setExpr, extra, err := pgUpdateExpr(patch, mode, 3)
	if err != nil {
		return UpdateResult{}, err
	}
	query := `
		WITH target AS (
			SELECT id, doc FROM documents WHERE collection = $1 AND id = $2::uuid FOR UPDATE
		)
		UPDATE documents d
		SET doc = ` + setExpr + `
		FROM target t
		WHERE d.id = t.id
		RETURNING t.doc IS DISTINCT FROM d.doc`

	args := append([]any{collection, parsed.String()}, extra...)
	var changed bool
	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	if err := p.db.QueryRow(timeoutCtx, query, args...).Scan(&changed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UpdateResult{}, nil
		}
		return UpdateResult{}, fmt.Errorf("updating %s document: %w", collection, err)
	}

	res := UpdateResult{Matched: 1}
	if changed {
		res.Modified = 1
	}
	return res, nil
}

func (p *Postgres) DeleteOne(ctx context.Context, collection, id string) (int64, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return 0, ErrInvalidID
	}

	const query = `DELETE FROM documents WHERE collection = $1 AND id = $2::uuid`
	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	tag, err := p.db.Exec(timeoutCtx, query, collection, parsed.String())
	if err != nil {
		return 0, fmt.Errorf("deleting %s document: %w", collection, err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.db.Ping(timeoutCtx)
}

func (p *Postgres) Close(ctx context.Context) error {
	p.db.Close()
	return nil
}

// pgWhere builds the WHERE clause for filter; collection is always $1.
func pgWhere(collection string, f Filter) (string, []any, error) {
	clauses := []string{"collection = $1"}
	args := []any{collection}
	argn := 2

	if f.ID != "" {
		parsed, err := uuid.Parse(f.ID)
		if err != nil {
			return "", nil, ErrInvalidID
		}
		clauses = append(clauses, fmt.Sprintf("id = $%d::uuid", argn))
		args = append(args, parsed.String())
		argn++
	}

	for _, field := range sortedKeys(f.Equal) {
		clauses = append(clauses, fmt.Sprintf("doc->>($%d::text) = $%d", argn, argn+1))
		args = append(args, field, fmt.Sprint(f.Equal[field]))
		argn += 2
	}

	if f.Search != nil && f.Search.Term != "" && len(f.Search.Fields) > 0 {
		pattern := "%" + escapeLike(f.Search.Term) + "%"
		patternArg := argn
		args = append(args, pattern)
		argn++

		or := make([]string, 0, len(f.Search.Fields))
		for _, field := range f.Search.Fields {
			or = append(or, fmt.Sprintf("doc->>($%d::text) ILIKE $%d", argn, patternArg))
			args = append(args, field)
			argn++
		}
		clauses = append(clauses, "("+strings.Join(or, " OR ")+")")
	}

	return strings.Join(clauses, " AND "), args, nil
}

// pgUpdateExpr returns the new value expression for d.doc, numbering its
// parameters from argn.
func pgUpdateExpr(patch map[string]any, mode UpdateMode, argn int) (string, []any, error) {
	switch mode {
	case ReplaceFields:
		raw, err := json.Marshal(patch)
		if err != nil {
			return "", nil, fmt.Errorf("encoding patch: %w", err)
		}
		return fmt.Sprintf("d.doc || $%d::jsonb", argn), []any{string(raw)}, nil
	case AppendToArray:
		expr := "d.doc"
		var args []any
		for _, field := range sortedKeys(patch) {
			raw, err := json.Marshal(patch[field])
			if err != nil {
				return "", nil, fmt.Errorf("encoding %s: %w", field, err)
			}
			expr = fmt.Sprintf(
				"jsonb_set(%s, ARRAY[$%d::text], COALESCE(d.doc->($%d::text), '[]'::jsonb) || jsonb_build_array($%d::jsonb))",
				expr, argn, argn, argn+1,
			)
			args = append(args, field, string(raw))
			argn += 2
		}
		return expr, args, nil
	}
	return "", nil, fmt.Errorf("unsupported update mode %d", mode)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func withID(id string, raw []byte) (map[string]any, error) {
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", id, err)
	}
	doc["_id"] = id
	return doc, nil
}

// remarshal copies v into out through its JSON encoding.
func remarshal(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	return nil
}
