package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/application/catalog"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/estoque-api/internal/interfaces/http"
)

type testServer struct {
	app   *fiber.App
	store *memory.Store
	admin string
	oper  string
}

func newTestServer(t *testing.T, opts ...func(*apphttp.RouterDeps)) *testServer {
	t.Helper()
	s := memory.NewStore()
	log := zerolog.Nop()
	proj := ledger.NewProjection(s.Stock(), s.Items())
	alerts := ledger.NewAlertEvaluator(proj)
	history := ledger.NewHistoryView(s.Entries(), s.Exits(), s.Items(), s.Profiles())

	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	deps := apphttp.RouterDeps{
		Catalog:       catalog.NewUseCase(s.Items(), 5),
		Items:         s.Items(),
		Engine:        ledger.NewEngine(s, s.Items(), ledger.Options{Logger: log}),
		Projection:    proj,
		Alerts:        alerts,
		History:       history,
		Dashboard:     ledger.NewDashboard(s.Items(), alerts, history, time.UTC, 5),
		Replenishment: ledger.NewReplenishmentUseCase(s.Items(), alerts),
		Verifier:      ledger.NewVerifier(s, s.Items()),
		HistoryPDF:    pdf.NewHistoryGenerator("test"),
		JWTSecret:     testJWTSecret,
		Logger:        log,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	apphttp.Router(app, deps)
	s.PutProfile(&entity.Profile{ID: testUserID, Name: "Maria"})
	return &testServer{app: app, store: s, admin: tokenForRole(t, auth.RoleAdmin), oper: tokenForRole(t, auth.RoleOperator)}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (ts *testServer) createItem(t *testing.T, name string, min int64) dto.ItemResponse {
	t.Helper()
	status, body := ts.do(t, http.MethodPost, "/api/items", ts.oper, dto.CreateItemRequest{
		Name: name, Category: "Alimentos", UnitOfMeasure: "kg", MinimumQuantity: &min,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var it dto.ItemResponse
	require.NoError(t, json.Unmarshal(body, &it))
	return it
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func TestAPI_RiceScenario(t *testing.T) {
	ts := newTestServer(t)
	rice := ts.createItem(t, "Arroz", 10)

	status, body := ts.do(t, http.MethodPost, "/api/entries", ts.oper, dto.RecordEntryRequest{ItemID: rice.ID, Quantity: 50, OccurredOn: "2024-01-02"})
	require.Equal(t, http.StatusCreated, status, string(body))
	mv := decode[dto.MovementDTO](t, body)
	assert.Equal(t, "entrada", mv.Kind)
	assert.Equal(t, testUserID, mv.ActorID)

	status, body = ts.do(t, http.MethodPost, "/api/exits", ts.oper, dto.RecordExitRequest{ItemID: rice.ID, Quantity: 20, Destination: "Cozinha", OccurredOn: "2024-01-03"})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, "Destino: Cozinha", decode[dto.MovementDTO](t, body).Details)

	status, body = ts.do(t, http.MethodPost, "/api/exits", ts.oper, dto.RecordExitRequest{ItemID: rice.ID, Quantity: 40, Destination: "Cozinha"})
	require.Equal(t, http.StatusConflict, status)
	e := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	require.NotNil(t, e.Details)
	assert.Equal(t, int64(30), *e.Details.Available)
	assert.Equal(t, int64(40), *e.Details.Requested)

	status, body = ts.do(t, http.MethodGet, "/api/stock/"+rice.ID, ts.oper, nil)
	require.Equal(t, http.StatusOK, status)
	lvl := decode[dto.StockLevelDTO](t, body)
	assert.Equal(t, int64(30), lvl.CurrentQuantity)
	assert.False(t, lvl.LowStock)

	status, body = ts.do(t, http.MethodGet, "/api/history", ts.oper, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.MovementListResponse](t, body)
	require.Len(t, list.Movements, 2)
	assert.Equal(t, "salida", list.Movements[0].Kind)
	assert.Equal(t, "Maria", list.Movements[0].ActorName)
	assert.Equal(t, dto.MovementTotalsDTO{EntryQty: 50, ExitQty: 20, Count: 2}, list.Totals)
}

func TestAPI_ValidationAndNotFound(t *testing.T) {
	ts := newTestServer(t)
	rice := ts.createItem(t, "Arroz", 10)

	status, body := ts.do(t, http.MethodPost, "/api/entries", ts.oper, dto.RecordEntryRequest{ItemID: rice.ID, Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, status)
	e := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Equal(t, "quantity", e.Details.Field)

	status, body = ts.do(t, http.MethodPost, "/api/exits", ts.oper, dto.RecordExitRequest{ItemID: rice.ID, Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "destination", decode[dto.ErrorResponse](t, body).Details.Field)

	status, _ = ts.do(t, http.MethodPost, "/api/entries", ts.oper, dto.RecordEntryRequest{ItemID: rice.ID, Quantity: 1, OccurredOn: "02/01/2024"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = ts.do(t, http.MethodPost, "/api/entries", ts.oper, dto.RecordEntryRequest{ItemID: "ghost", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, body).Code)

	status, _ = ts.do(t, http.MethodGet, "/api/items/ghost", ts.oper, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodGet, "/api/history?kind=transfer", ts.oper, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodGet, "/api/history?date_from=2024-01-05&date_to=2024-01-01", ts.oper, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodGet, "/api/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_ItemLifecycleAndRoles(t *testing.T) {
	ts := newTestServer(t)
	rice := ts.createItem(t, "Arroz", 10)
	beans := ts.createItem(t, "Feijão", 3)

	name := "Arroz Integral"
	status, body := ts.do(t, http.MethodPut, "/api/items/"+rice.ID, ts.oper, dto.UpdateItemRequest{Name: &name})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, name, decode[dto.ItemResponse](t, body).Name)

	status, body = ts.do(t, http.MethodGet, "/api/items", ts.oper, nil)
	require.Equal(t, http.StatusOK, status)
	items := decode[dto.ItemListResponse](t, body)
	require.Len(t, items.Items, 2)
	assert.Equal(t, name, items.Items[0].Name)

	status, body = ts.do(t, http.MethodGet, "/api/items?q=INTEGRAL", ts.oper, nil)
	require.Equal(t, http.StatusOK, status)
	found := decode[dto.ItemListResponse](t, body)
	require.Len(t, found.Items, 1)
	assert.Equal(t, rice.ID, found.Items[0].ID)

	status, _ = ts.do(t, http.MethodDelete, "/api/items/"+beans.ID, ts.oper, nil)
	assert.Equal(t, http.StatusForbidden, status, "solo admin elimina")

	ts.do(t, http.MethodPost, "/api/entries", ts.oper, dto.RecordEntryRequest{ItemID: rice.ID, Quantity: 1})
	status, body = ts.do(t, http.MethodDelete, "/api/items/"+rice.ID, ts.admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, body).Code)

	status, _ = ts.do(t, http.MethodDelete, "/api/items/"+beans.ID, ts.admin, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestAPI_AlertsReplenishmentDashboardVerify(t *testing.T) {
	ts := newTestServer(t)
	rice := ts.createItem(t, "Arroz", 10)
	oil := ts.createItem(t, "Óleo", 2)
	ts.createItem(t, "Sal", 1)
	ts.do(t, http.MethodPost, "/api/entries", ts.oper, dto.RecordEntryRequest{ItemID: rice.ID, Quantity: 10})
	ts.do(t, http.MethodPost, "/api/entries", ts.oper, dto.RecordEntryRequest{ItemID: oil.ID, Quantity: 9})

	status, body := ts.do(t, http.MethodGet, "/api/alerts", ts.oper, nil)
	require.Equal(t, http.StatusOK, status)
	alerts := decode[dto.AlertListResponse](t, body)
	assert.Equal(t, 2, alerts.Count)
	assert.Equal(t, "Sal", alerts.Items[0].ItemName, "0 unidades primero")
	assert.Equal(t, "Arroz", alerts.Items[1].ItemName, "10 == mínimo")

	status, body = ts.do(t, http.MethodGet, "/api/alerts?limit=1", ts.oper, nil)
	require.Equal(t, http.StatusOK, status)
	alerts = decode[dto.AlertListResponse](t, body)
	assert.Equal(t, 2, alerts.Count)
	assert.Len(t, alerts.Items, 1)

	status, body = ts.do(t, http.MethodGet, "/api/replenishment", ts.oper, nil)
	require.Equal(t, http.StatusOK, status)
	repl := decode[struct {
		Total          int                              `json:"total"`
		Replenishments []dto.ReplenishmentSuggestionDTO `json:"replenishments"`
	}](t, body)
	assert.Equal(t, 2, repl.Total)
	assert.Equal(t, 1, repl.Replenishments[0].Priority)

	status, body = ts.do(t, http.MethodGet, "/api/dashboard/summary", ts.oper, nil)
	require.Equal(t, http.StatusOK, status)
	sum := decode[dto.DashboardSummaryDTO](t, body)
	assert.Equal(t, 3, sum.TotalItems)
	assert.Equal(t, int64(19), sum.EntriesToday)
	assert.Len(t, sum.RecentMovements, 2)

	status, body = ts.do(t, http.MethodGet, "/api/stock", ts.oper, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]dto.StockLevelDTO](t, body), 3)

	status, _ = ts.do(t, http.MethodGet, "/api/stock/verify", ts.oper, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, body = ts.do(t, http.MethodGet, "/api/stock/verify", ts.admin, nil)
	require.Equal(t, http.StatusOK, status)
	report := decode[ledger.VerificationReport](t, body)
	assert.True(t, report.OK)
	assert.Equal(t, 3, report.CheckedItems)
}

func TestAPI_PerKindListingsAndPDF(t *testing.T) {
	ts := newTestServer(t)
	rice := ts.createItem(t, "Arroz", 1)
	ts.do(t, http.MethodPost, "/api/entries", ts.oper, dto.RecordEntryRequest{ItemID: rice.ID, Quantity: 5, OccurredOn: "2024-01-01"})
	ts.do(t, http.MethodPost, "/api/entries", ts.oper, dto.RecordEntryRequest{ItemID: rice.ID, Quantity: 7, OccurredOn: "2024-01-04"})
	ts.do(t, http.MethodPost, "/api/exits", ts.oper, dto.RecordExitRequest{ItemID: rice.ID, Quantity: 2, Destination: "Escola", OccurredOn: "2024-01-05"})

	status, body := ts.do(t, http.MethodGet, "/api/entries", ts.oper, nil)
	require.Equal(t, http.StatusOK, status)
	entries := decode[dto.MovementListResponse](t, body)
	require.Len(t, entries.Movements, 2)
	assert.Equal(t, "2024-01-04", entries.Movements[0].OccurredOn)
	assert.Equal(t, int64(0), entries.Totals.ExitQty)

	status, body = ts.do(t, http.MethodGet, "/api/exits?date_from=2024-01-05", ts.oper, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[dto.MovementListResponse](t, body).Movements, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/history/report.pdf?kind=entrada", nil)
	req.Header.Set("Authorization", ts.oper)
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	b, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestAPI_ConcurrentExitsOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	rice := ts.createItem(t, "Arroz", 1)
	ts.do(t, http.MethodPost, "/api/entries", ts.oper, dto.RecordEntryRequest{ItemID: rice.ID, Quantity: 10})

	var mu sync.Mutex
	codes := map[int]int{}
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _ := ts.do(t, http.MethodPost, "/api/exits", ts.oper, dto.RecordExitRequest{ItemID: rice.ID, Quantity: 3, Destination: "x"})
			mu.Lock()
			codes[status]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, codes[http.StatusCreated])
	assert.Equal(t, 9, codes[http.StatusConflict])

	level, err := ts.store.Stock().Get(context.Background(), rice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), level.CurrentQuantity)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	status, body := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "ok")
}

type capturePDF struct {
	report pdf.HistoryReport
}

func (c *capturePDF) GenerateHistoryPDF(_ context.Context, r pdf.HistoryReport) ([]byte, error) {
	c.report = r
	return []byte("%PDF-1.4"), nil
}

func TestAPI_PDFDateUsesLedgerZone(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	gen := &capturePDF{}
	// 01:30 UTC del 11 sigue siendo el 10 en São Paulo.
	ts := newTestServer(t, func(d *apphttp.RouterDeps) {
		d.HistoryPDF = gen
		d.Location = sp
		d.Clock = func() time.Time { return time.Date(2024, 1, 11, 1, 30, 0, 0, time.UTC) }
	})

	req := httptest.NewRequest(http.MethodGet, "/api/history/report.pdf", nil)
	req.Header.Set("Authorization", ts.oper)
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "historial-20240110.pdf")
	assert.Equal(t, sp, gen.report.GeneratedAt.Location())
	assert.Equal(t, 10, gen.report.GeneratedAt.Day())
}
