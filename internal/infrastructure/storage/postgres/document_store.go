package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"freshsave/internal/core/apperror"
	"freshsave/internal/core/id"
	"freshsave/internal/infrastructure/storage/docstore"
)

var tracer = otel.Tracer("freshsave/postgres")

//go:embed schema.sql
var schemaSQL string

const documentsTable = "documents"

var documentCols = []string{"id", "collection_id", "data", "created_at", "updated_at"}

// Querier is the subset of pgxpool.Pool the document store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type documentRow struct {
	ID           string          `db:"id"`
	CollectionID string          `db:"collection_id"`
	Data         docstore.Fields `db:"data"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r documentRow) toDocument() docstore.Document {
	return docstore.Document{
		ID:           r.ID,
		CollectionID: r.CollectionID,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		Data:         r.Data,
	}
}

// DocumentStore implements docstore.Store on a single JSONB table.
type DocumentStore struct {
	db Querier
}

var _ docstore.Store = (*DocumentStore)(nil)

// NewDocumentStore creates a store over any pgx querier (usually *Pool).
func NewDocumentStore(db Querier) *DocumentStore {
	return &DocumentStore{db: db}
}

// EnsureSchema creates the documents table and its indexes.
func (s *DocumentStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure documents schema: %w", err)
	}
	return nil
}

// Builder returns squirrel builder with PostgreSQL placeholders.
func (s *DocumentStore) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (s *DocumentStore) startSpan(ctx context.Context, op, collectionID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "docstore."+op,
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("docstore.collection", collectionID),
		))
}

func (s *DocumentStore) CreateDocument(ctx context.Context, collectionID, documentID string, data docstore.Fields) (docstore.Document, error) {
	ctx, span := s.startSpan(ctx, "create", collectionID)
	defer span.End()

	if data == nil {
		data = docstore.Fields{}
	}
	q := s.Builder().
		Insert(documentsTable).
		SetMap(map[string]any{
			"collection_id": collectionID,
			"id":            id.Resolve(documentID),
			"data":          data,
		}).
		Suffix("RETURNING " + joinCols())

	var row documentRow
	if err := s.get(ctx, &row, q); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			err = apperror.NewConflict("document already exists").WithDetail("id", documentID)
		}
		return docstore.Document{}, s.fail(span, "create", err)
	}
	return row.toDocument(), nil
}

func (s *DocumentStore) GetDocument(ctx context.Context, collectionID, documentID string) (docstore.Document, error) {
	ctx, span := s.startSpan(ctx, "get", collectionID)
	defer span.End()

	q := s.Builder().
		Select(documentCols...).
		From(documentsTable).
		Where(squirrel.Eq{"collection_id": collectionID, "id": documentID}).
		Limit(1)

	var row documentRow
	if err := s.get(ctx, &row, q); err != nil {
		if pgxscan.NotFound(err) {
			return docstore.Document{}, docstore.NotFound(collectionID, documentID)
		}
		return docstore.Document{}, s.fail(span, "get", err)
	}
	return row.toDocument(), nil
}

// UpdateDocument merges data with jsonb concatenation, so keys set to nil
// are stored as JSON null and read back as absent.
func (s *DocumentStore) UpdateDocument(ctx context.Context, collectionID, documentID string, data docstore.Fields) (docstore.Document, error) {
	ctx, span := s.startSpan(ctx, "update", collectionID)
	defer span.End()

	if data == nil {
		data = docstore.Fields{}
	}
	q := s.Builder().
		Update(documentsTable).
		Set("data", squirrel.Expr("data || ?::jsonb", data)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"collection_id": collectionID, "id": documentID}).
		Suffix("RETURNING " + joinCols())

	var row documentRow
	if err := s.get(ctx, &row, q); err != nil {
		if pgxscan.NotFound(err) {
			return docstore.Document{}, docstore.NotFound(collectionID, documentID)
		}
		return docstore.Document{}, s.fail(span, "update", err)
	}
	return row.toDocument(), nil
}

func (s *DocumentStore) DeleteDocument(ctx context.Context, collectionID, documentID string) error {
	ctx, span := s.startSpan(ctx, "delete", collectionID)
	defer span.End()

	sql, args, err := s.Builder().
		Delete(documentsTable).
		Where(squirrel.Eq{"collection_id": collectionID, "id": documentID}).
		ToSql()
	if err != nil {
		return s.fail(span, "delete", fmt.Errorf("build delete: %w", err))
	}

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return s.fail(span, "delete", err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.NotFound(collectionID, documentID)
	}
	return nil
}

func (s *DocumentStore) ListDocuments(ctx context.Context, collectionID string, queries ...docstore.Query) (docstore.DocumentList, error) {
	ctx, span := s.startSpan(ctx, "list", collectionID)
	defer span.End()
	span.SetAttributes(attribute.Int("docstore.queries", len(queries)))

	filtered, page, err := s.buildList(collectionID, queries)
	if err != nil {
		return docstore.DocumentList{}, apperror.NewInvalidInput(err.Error())
	}

	countSQL, countArgs, err := s.Builder().
		Select("COUNT(*)").
		FromSelect(filtered, "sub").
		ToSql()
	if err != nil {
		return docstore.DocumentList{}, s.fail(span, "list", fmt.Errorf("build count query: %w", err))
	}

	var out docstore.DocumentList
	if err := s.db.QueryRow(ctx, countSQL, countArgs...).Scan(&out.Total); err != nil {
		return docstore.DocumentList{}, s.fail(span, "list", fmt.Errorf("count: %w", err))
	}

	sql, args, err := page.ToSql()
	if err != nil {
		return docstore.DocumentList{}, s.fail(span, "list", fmt.Errorf("build query: %w", err))
	}

	var rows []documentRow
	if err := pgxscan.Select(ctx, s.db, &rows, sql, args...); err != nil {
		return docstore.DocumentList{}, s.fail(span, "list", err)
	}

	out.Documents = make([]docstore.Document, 0, len(rows))
	for _, r := range rows {
		out.Documents = append(out.Documents, r.toDocument())
	}
	return out, nil
}

// Ping checks connectivity.
func (s *DocumentStore) Ping(ctx context.Context) error {
	if p, ok := s.db.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return apperror.NewStore("ping", err)
		}
		return nil
	}
	var one int
	if err := s.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return apperror.NewStore("ping", err)
	}
	return nil
}

// buildList returns the filtered query (used for counting) and the same
// query with ordering and pagination applied.
func (s *DocumentStore) buildList(collectionID string, queries []docstore.Query) (squirrel.SelectBuilder, squirrel.SelectBuilder, error) {
	q := s.Builder().
		Select(documentCols...).
		From(documentsTable).
		Where(squirrel.Eq{"collection_id": collectionID})

	if err := docstore.ValidateAll(queries); err != nil {
		return q, q, err
	}

	for _, dq := range queries {
		if !dq.IsFilter() {
			continue
		}
		pred, err := filterExpr(dq)
		if err != nil {
			return q, q, err
		}
		q = q.Where(pred)
	}
	filtered := q

	ordered := false
	for _, dq := range queries {
		switch dq.Method {
		case docstore.MethodOrderAsc:
			q = q.OrderByClause("data->?::text ASC", dq.Attribute)
			ordered = true
		case docstore.MethodOrderDesc:
			q = q.OrderByClause("data->?::text DESC", dq.Attribute)
			ordered = true
		case docstore.MethodLimit:
			n, _ := docstore.AsFloat(dq.Values[0])
			q = q.Limit(uint64(n))
		case docstore.MethodOffset:
			n, _ := docstore.AsFloat(dq.Values[0])
			q = q.Offset(uint64(n))
		}
	}
	if !ordered {
		q = q.OrderBy("created_at", "id")
	}
	return filtered, q, nil
}

var comparisonOps = map[docstore.Method]string{
	docstore.MethodEqual:            "=",
	docstore.MethodNotEqual:         "<>",
	docstore.MethodLessThan:         "<",
	docstore.MethodLessThanEqual:    "<=",
	docstore.MethodGreaterThan:      ">",
	docstore.MethodGreaterThanEqual: ">=",
}

// filterExpr translates one filter into a predicate on the data column.
// The jsonb_typeof guard keeps casts from failing on mixed-type attributes
// and makes absent attributes fail every comparison.
func filterExpr(q docstore.Query) (squirrel.Sqlizer, error) {
	switch q.Method {
	case docstore.MethodIsNull:
		return squirrel.Expr("COALESCE(jsonb_typeof(data->?::text), 'null') = 'null'", q.Attribute), nil
	case docstore.MethodIsNotNull:
		return squirrel.Expr("COALESCE(jsonb_typeof(data->?::text), 'null') <> 'null'", q.Attribute), nil
	}

	op, ok := comparisonOps[q.Method]
	if !ok {
		return nil, fmt.Errorf("unsupported query method: %s", q.Method)
	}

	preds := make([]squirrel.Sqlizer, 0, len(q.Values))
	for _, v := range q.Values {
		p, err := comparePred(q.Attribute, op, v)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	if q.Method == docstore.MethodNotEqual {
		return squirrel.And(preds), nil
	}
	return squirrel.Or(preds), nil
}

func comparePred(attr, op string, v any) (squirrel.Sqlizer, error) {
	switch val := v.(type) {
	case string:
		return squirrel.Expr(
			fmt.Sprintf(`(jsonb_typeof(data->?::text) = 'string' AND (data->>?::text) COLLATE "C" %s ?)`, op),
			attr, attr, val), nil
	case bool:
		return squirrel.Expr(
			fmt.Sprintf(`(jsonb_typeof(data->?::text) = 'boolean' AND (data->>?::text)::boolean %s ?)`, op),
			attr, attr, val), nil
	}
	if f, ok := docstore.AsFloat(v); ok {
		return squirrel.Expr(
			fmt.Sprintf(`(jsonb_typeof(data->?::text) = 'number' AND (data->>?::text)::numeric %s ?)`, op),
			attr, attr, f), nil
	}
	return nil, fmt.Errorf("unsupported value type %T for %q", v, attr)
}

func (s *DocumentStore) get(ctx context.Context, dst *documentRow, q squirrel.Sqlizer) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Get(ctx, s.db, dst, sql, args...)
}

// fail records err on the span and converts it to the store error taxonomy.
func (s *DocumentStore) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperror.NewStore(op, err)
}

func joinCols() string {
	return strings.Join(documentCols, ", ")
}
