package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshsave/internal/infrastructure/storage/docstore"
)

const selectPrefix = "SELECT id, collection_id, data, created_at, updated_at FROM documents WHERE collection_id = $1"

func TestBuildList_ExpiryWindow(t *testing.T) {
	s := NewDocumentStore(nil)
	now := "2026-10-19T08:00:00.000Z"
	upper := "2026-10-26T08:00:00.000Z"

	_, page, err := s.buildList("items", []docstore.Query{
		docstore.GreaterThan("expiryDate", now),
		docstore.LessThanEqual("expiryDate", upper),
	})
	require.NoError(t, err)

	sql, args, err := page.ToSql()
	require.NoError(t, err)

	wantSQL := selectPrefix +
		` AND (jsonb_typeof(data->$2::text) = 'string' AND (data->>$3::text) COLLATE "C" > $4)` +
		` AND (jsonb_typeof(data->$5::text) = 'string' AND (data->>$6::text) COLLATE "C" <= $7)` +
		` ORDER BY created_at, id`
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	assert.Equal(t, []any{"items", "expiryDate", "expiryDate", now, "expiryDate", "expiryDate", upper}, args)
}

func TestBuildList_Operators(t *testing.T) {
	s := NewDocumentStore(nil)

	tests := []struct {
		name     string
		query    docstore.Query
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "numeric equal",
			query:    docstore.Equal("quantity", 2),
			wantSQL:  selectPrefix + ` AND (jsonb_typeof(data->$2::text) = 'number' AND (data->>$3::text)::numeric = $4) ORDER BY created_at, id`,
			wantArgs: []any{"items", "quantity", "quantity", 2.0},
		},
		{
			name:     "boolean not equal",
			query:    docstore.NotEqual("isFavorite", true),
			wantSQL:  selectPrefix + ` AND (jsonb_typeof(data->$2::text) = 'boolean' AND (data->>$3::text)::boolean <> $4) ORDER BY created_at, id`,
			wantArgs: []any{"items", "isFavorite", "isFavorite", true},
		},
		{
			name:     "is null",
			query:    docstore.IsNull("unit"),
			wantSQL:  selectPrefix + ` AND COALESCE(jsonb_typeof(data->$2::text), 'null') = 'null' ORDER BY created_at, id`,
			wantArgs: []any{"items", "unit"},
		},
		{
			name:     "is not null",
			query:    docstore.IsNotNull("expiryDate"),
			wantSQL:  selectPrefix + ` AND COALESCE(jsonb_typeof(data->$2::text), 'null') <> 'null' ORDER BY created_at, id`,
			wantArgs: []any{"items", "expiryDate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, page, err := s.buildList("items", []docstore.Query{tt.query})
			if err != nil {
				t.Fatalf("buildList failed: %v", err)
			}
			sql, args, err := page.ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildList_OrderingAndPaging(t *testing.T) {
	s := NewDocumentStore(nil)

	filtered, page, err := s.buildList("items", []docstore.Query{
		docstore.Equal("category", "Dairy"),
		docstore.OrderDesc("quantity"),
		docstore.Limit(10),
		docstore.Offset(20),
	})
	require.NoError(t, err)

	sql, args, err := page.ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql, "ORDER BY data->$5::text DESC LIMIT 10 OFFSET 20"), sql)
	assert.Equal(t, "quantity", args[len(args)-1])

	// the count query sees neither ordering nor pagination
	countSQL, _, err := filtered.ToSql()
	require.NoError(t, err)
	assert.NotContains(t, countSQL, "ORDER BY")
	assert.NotContains(t, countSQL, "LIMIT")
}

func TestBuildList_EqualAnyValue(t *testing.T) {
	s := NewDocumentStore(nil)

	_, page, err := s.buildList("items", []docstore.Query{
		{Method: docstore.MethodEqual, Attribute: "category", Values: []any{"Fruits", "Vegetables"}},
	})
	require.NoError(t, err)

	sql, args, err := page.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, " OR ")
	assert.Len(t, args, 7)
}

func TestBuildList_RejectsInvalidInput(t *testing.T) {
	s := NewDocumentStore(nil)

	_, _, err := s.buildList("items", []docstore.Query{docstore.Equal("data); DROP TABLE documents; --", "x")})
	assert.Error(t, err)

	_, _, err = s.buildList("items", []docstore.Query{docstore.Equal("tags", []string{"a"})})
	assert.Error(t, err)
}
