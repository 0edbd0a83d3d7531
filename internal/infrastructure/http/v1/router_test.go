package v1

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshsave/internal/domain/home"
	"freshsave/internal/infrastructure/http/v1/dto"
	"freshsave/internal/infrastructure/storage/inventory_repo"
	"freshsave/internal/infrastructure/storage/memstore"
	"freshsave/pkg/logger"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type testAPI struct {
	router http.Handler
	coord  *home.Coordinator
	store  *memstore.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	store := memstore.New()
	repo := inventory_repo.New(store, inventory_repo.Config{},
		inventory_repo.WithClock(clock), inventory_repo.WithLogger(logger.Nop()))
	coord := home.NewCoordinator(repo, home.WithLogger(logger.Nop()), home.WithClock(clock))
	t.Cleanup(coord.Close)

	router := NewRouter(RouterConfig{
		Logger:             logger.Nop(),
		Store:              store,
		StoreDriver:        "memory",
		Version:            "test",
		Repository:         repo,
		Coordinator:        coord,
		ExpiringWindowDays: 7,
		Now:                clock,
	})
	return &testAPI{router: router, coord: coord, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (a *testAPI) create(t *testing.T, body string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/items", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.IDResponse](t, w).ID
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/health/ready", "").Code)

	w := api.do(t, http.MethodGet, "/health/info", "")
	assert.Contains(t, w.Body.String(), `"store_driver":"memory"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreateGetAndStatus(t *testing.T) {
	api := newTestAPI(t)

	milk := api.create(t, `{"name":" Milk ","category":"Dairy","quantity":"1","unit":"liter","expiryDate":"2026-10-22T12:00:00Z"}`)
	old := api.create(t, `{"name":"Bread","category":"Bakery","quantity":2,"expiryDate":"2026-10-10T08:00:00Z"}`)
	rice := api.create(t, `{"name":"Rice","category":"Pantry Staples","quantity":1.5}`)

	w := api.do(t, http.MethodGet, "/api/v1/items/"+milk, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.ItemResponse](t, w)
	assert.Equal(t, "Milk", got.Name)
	assert.Equal(t, 1.0, got.Quantity)
	assert.Equal(t, "expiring_soon", string(got.Status))

	statuses := map[string]string{}
	list := decode[dto.ListResponse[dto.ItemResponse]](t, api.do(t, http.MethodGet, "/api/v1/items", ""))
	for _, it := range list.Items {
		statuses[it.ID] = string(it.Status)
	}
	assert.Equal(t, 3, list.TotalCount)
	assert.Equal(t, "expired", statuses[old])
	assert.Equal(t, "none", statuses[rice])

	exp := decode[dto.ListResponse[dto.ItemResponse]](t, api.do(t, http.MethodGet, "/api/v1/items/expiring", ""))
	require.Len(t, exp.Items, 1)
	assert.Equal(t, milk, exp.Items[0].ID)

	byCat := decode[dto.ListResponse[dto.ItemResponse]](t, api.do(t, http.MethodGet, "/api/v1/items?category=Bakery", ""))
	require.Len(t, byCat.Items, 1)
	assert.Equal(t, old, byCat.Items[0].ID)
}

func TestCreateValidation(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/items", `{"name":"","category":"","quantity":"abc"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, "Item name cannot be empty", body.Details["name"])
	assert.Equal(t, "Category cannot be empty", body.Details["category"])
	assert.Equal(t, "Invalid quantity format", body.Details["quantity"])

	w = api.do(t, http.MethodPost, "/api/v1/items", `{"name":"Eggs","category":"Dairy & Eggs","quantity":"0"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Quantity must be positive")

	w = api.do(t, http.MethodPost, "/api/v1/items", `{"name":"Eggs","category":"Dairy & Eggs"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Quantity cannot be empty")
}

func TestGetMissingIsNotFound(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/items/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestUpdateWithRefresh(t *testing.T) {
	api := newTestAPI(t)
	milk := api.create(t, `{"name":"Milk","category":"Dairy","quantity":1}`)

	w := api.do(t, http.MethodPut, "/api/v1/items/"+milk+"?refresh=true", `{"name":"Oat milk","category":"Beverages","quantity":"2"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	api.coord.Wait()

	snap := decode[dto.HomeResponse](t, api.do(t, http.MethodGet, "/api/v1/home", ""))
	require.Len(t, snap.AllItems, 1)
	assert.Equal(t, "Oat milk", snap.AllItems[0].Name)
	assert.Equal(t, []string{"Beverages"}, snap.Categories)
}

func TestQuickEdits(t *testing.T) {
	api := newTestAPI(t)
	eggs := api.create(t, `{"name":"Eggs","category":"Dairy & Eggs","quantity":1}`)

	w := api.do(t, http.MethodPut, "/api/v1/items/"+eggs+"/quantity", `{"quantity":6}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 6.0, decode[dto.ItemResponse](t, w).Quantity)

	w = api.do(t, http.MethodPost, "/api/v1/items/"+eggs+"/adjust", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 7.0, decode[dto.ItemResponse](t, w).Quantity)

	w = api.do(t, http.MethodPost, "/api/v1/items/"+eggs+"/adjust", `{"delta":-10}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode[dto.ItemResponse](t, w).Quantity)

	w = api.do(t, http.MethodPost, "/api/v1/items/"+eggs+"/adjust", `{"delta":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPut, "/api/v1/items/"+eggs+"/quantity", `{"quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/items/"+eggs+"/favorite", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.ItemResponse](t, w).IsFavorite)
}

func TestDeleteReloadsHome(t *testing.T) {
	api := newTestAPI(t)
	milk := api.create(t, `{"name":"Milk","category":"Dairy","quantity":1}`)
	api.create(t, `{"name":"Kale","category":"Vegetables","quantity":1}`)

	w := api.do(t, http.MethodPost, "/api/v1/home/refresh?wait=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[dto.HomeResponse](t, w).TotalCount)

	require.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/api/v1/items/"+milk, "").Code)
	api.coord.Wait()

	snap := decode[dto.HomeResponse](t, api.do(t, http.MethodGet, "/api/v1/home", ""))
	assert.Equal(t, 1, snap.TotalCount)

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodDelete, "/api/v1/items/"+milk, "").Code)
}

func TestHomeCategoryAndEditing(t *testing.T) {
	api := newTestAPI(t)
	kale := api.create(t, `{"name":"Kale","category":"Vegetables","quantity":1,"expiryDate":"2026-10-20T12:00:00Z"}`)
	api.create(t, `{"name":"Milk","category":"Dairy","quantity":1}`)

	w := api.do(t, http.MethodPost, "/api/v1/home/refresh", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	api.coord.Wait()

	w = api.do(t, http.MethodPut, "/api/v1/home/category", `{"category":"Vegetables"}`)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[dto.HomeResponse](t, w)
	assert.Equal(t, "Vegetables", snap.SelectedCategory)
	require.Len(t, snap.DisplayedItems, 1)
	assert.Equal(t, "Kale", snap.DisplayedItems[0].Name)
	require.NotNil(t, snap.SuggestedRecipe)
	assert.Equal(t, "Quick Garden Salad", snap.SuggestedRecipe.Name)
	assert.Equal(t, "$0.00", snap.Savings)

	w = api.do(t, http.MethodPost, "/api/v1/home/editing/"+kale, "")
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[dto.HomeResponse](t, w)
	require.NotNil(t, snap.ItemToEdit)
	assert.Equal(t, kale, snap.ItemToEdit.ID)

	require.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/api/v1/home/editing", "").Code)
	assert.Nil(t, api.coord.ItemToEdit().Get())
}

func TestSuggestions(t *testing.T) {
	api := newTestAPI(t)
	api.create(t, `{"name":"Tofu","category":"Plant Protein","quantity":1}`)
	require.NoError(t, api.coord.LoadItems(context.Background()))

	got := decode[dto.SuggestionsResponse](t, api.do(t, http.MethodGet, "/api/v1/suggestions", ""))
	assert.Contains(t, got.Categories, "Plant Protein")
	assert.Contains(t, got.Categories, "Dairy & Eggs")
	assert.NotEmpty(t, got.Units)
}

func TestStoreFailureMapsToBadGateway(t *testing.T) {
	api := newTestAPI(t)
	api.store.FailWith(errors.New("connection reset"))

	w := api.do(t, http.MethodGet, "/api/v1/items", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "STORE_ERROR")
	assert.NotContains(t, w.Body.String(), "connection reset")

	assert.Equal(t, http.StatusServiceUnavailable, api.do(t, http.MethodGet, "/health/ready", "").Code)
}

func TestHomeStreamSendsStateOnChange(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/home/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := make(chan dto.HomeResponse, 16)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			var snap dto.HomeResponse
			if json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &snap) == nil {
				events <- snap
			}
		}
	}()

	first := <-events
	assert.Equal(t, 0, first.TotalCount)

	api.create(t, `{"name":"Milk","category":"Dairy","quantity":1}`)
	api.coord.TriggerLoadItems()

	for {
		select {
		case snap, ok := <-events:
			require.True(t, ok, "stream closed early")
			if snap.TotalCount == 1 {
				return
			}
		case <-ctx.Done():
			t.Fatal("no update event received")
		}
	}
}
