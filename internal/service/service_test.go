package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alihassan193/snooker-console/internal/config"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/gateway"
)

type call struct {
	Method string
	Path   string
	Body   any
}

// fakeGateway records calls and answers with canned JSON per "METHOD path".
type fakeGateway struct {
	mu        sync.Mutex
	calls     []call
	responses map[string]string
	errs      map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

func (f *fakeGateway) on(method, path, body string) {
	f.responses[method+" "+path] = body
}

func (f *fakeGateway) fail(method, path string, err error) {
	f.errs[method+" "+path] = err
}

func (f *fakeGateway) do(method, path string, body, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call{Method: method, Path: path, Body: body})
	key := method + " " + path
	if err, ok := f.errs[key]; ok {
		return err
	}
	if raw, ok := f.responses[key]; ok && out != nil {
		return json.Unmarshal([]byte(raw), out)
	}

	return nil
}

func (f *fakeGateway) Get(_ context.Context, path string, out any) error {
	return f.do(http.MethodGet, path, nil, out)
}

func (f *fakeGateway) Post(_ context.Context, path string, body, out any) error {
	return f.do(http.MethodPost, path, body, out)
}

func (f *fakeGateway) Put(_ context.Context, path string, body, out any) error {
	return f.do(http.MethodPut, path, body, out)
}

func (f *fakeGateway) Patch(_ context.Context, path string, body, out any) error {
	return f.do(http.MethodPatch, path, body, out)
}

func (f *fakeGateway) Delete(_ context.Context, path string, out any) error {
	return f.do(http.MethodDelete, path, nil, out)
}

func (f *fakeGateway) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

type staticTokens struct {
	tokens domain.Tokens
}

func (s *staticTokens) Tokens() domain.Tokens                         { return s.tokens }
func (s *staticTokens) SaveTokens(context.Context, domain.Tokens) error { return nil }
func (s *staticTokens) ClearTokens(context.Context) error               { return nil }

func uintPtr(v uint) *uint { return &v }

func TestSessionService_StartValidatesBeforeSending(t *testing.T) {
	tests := []struct {
		name string
		in   StartSessionInput
	}{
		{name: "no player", in: StartSessionInput{TableID: 1, GameTypeID: 2, PricingID: 3, GuestPlayerName: "   "}},
		{name: "no pricing", in: StartSessionInput{TableID: 1, GameTypeID: 2, GuestPlayerName: "Ali"}},
		{name: "no table", in: StartSessionInput{GameTypeID: 2, PricingID: 3, PlayerID: uintPtr(9)}},
		{name: "zero player id", in: StartSessionInput{TableID: 1, GameTypeID: 2, PricingID: 3, PlayerID: uintPtr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			svc := NewSessionService(gw)

			_, err := svc.Start(context.Background(), tt.in)

			assert.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, gw.Calls())
		})
	}
}

func TestSessionService_StartSendsGuestBody(t *testing.T) {
	var got map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":44,"table_id":1,"status":"active","guest_player_name":"Ali"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := gateway.NewClient(&config.BackendConfig{BaseURL: srv.URL, Timeout: time.Second},
		&staticTokens{domain.Tokens{AccessToken: "access-1"}})
	svc := NewSessionService(client)

	session, err := svc.Start(context.Background(), StartSessionInput{
		TableID: 1, GameTypeID: 2, PricingID: 3, GuestPlayerName: "  Ali ",
	})

	require.NoError(t, err)
	assert.EqualValues(t, 44, session.ID)
	assert.Equal(t, domain.SessionActive, session.Status)
	assert.Equal(t, map[string]any{
		"table_id":          float64(1),
		"game_type_id":      float64(2),
		"pricing_id":        float64(3),
		"is_guest":          true,
		"guest_player_name": "Ali",
	}, got)
}

func TestSessionService_EndAndOrders(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodPut, "/sessions/7/end", `{"id":7,"status":"completed","total_amount":"400"}`)
	gw.on(http.MethodPost, "/sessions/7/orders", `{"id":3,"session_id":7,"total_amount":"120"}`)
	svc := NewSessionService(gw)

	ended, err := svc.End(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, ended.Status)
	assert.True(t, decimal.NewFromInt(400).Equal(ended.TotalAmount))

	_, err = svc.AddCanteenOrder(context.Background(), 7, nil)
	assert.ErrorIs(t, err, ErrValidation)

	order, err := svc.AddCanteenOrder(context.Background(), 7, []domain.OrderLine{{ItemID: 1, Quantity: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 7, *order.SessionID)
	assert.Len(t, gw.Calls(), 2)
}

func TestSessionService_ListQuery(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodGet, "/sessions?limit=20&status=completed&table_id=4", `[{"id":1},{"id":2}]`)
	svc := NewSessionService(gw)

	sessions, err := svc.List(context.Background(), SessionFilter{Status: domain.SessionCompleted, TableID: 4, Limit: 20})

	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestCart_StockBound(t *testing.T) {
	items := []domain.CanteenItem{
		{ID: 1, Name: "Tea", Price: decimal.NewFromInt(50), StockQuantity: 3, IsAvailable: true},
		{ID: 2, Name: "Chips", Price: decimal.RequireFromString("30.5"), StockQuantity: 1, IsAvailable: true},
		{ID: 3, Name: "Cola", Price: decimal.NewFromInt(80), StockQuantity: 10},
	}
	cart := NewCart(items)

	require.NoError(t, cart.Add(1, 2))
	require.NoError(t, cart.Add(1, 1))
	assert.ErrorIs(t, cart.Add(1, 1), ErrInsufficientStock)
	require.NoError(t, cart.Add(2, 1))
	assert.ErrorIs(t, cart.Add(3, 1), ErrItemUnavailable)
	assert.ErrorIs(t, cart.Add(99, 1), ErrItemUnavailable)
	assert.ErrorIs(t, cart.Add(2, 0), ErrValidation)

	assert.Equal(t, []domain.OrderLine{{ItemID: 1, Quantity: 3}, {ItemID: 2, Quantity: 1}}, cart.Lines())
	assert.Equal(t, "180.5", cart.Total().String())

	cart.Remove(1)
	assert.Equal(t, "30.5", cart.Total().String())

	_, err := FillCart(items, []domain.OrderLine{{ItemID: 1, Quantity: 4}})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCanteenService_Sell(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodPost, "/canteen/sales", `{"id":12,"items":[{"item_id":1,"quantity":2}],"total_amount":"100"}`)
	svc := NewCanteenService(gw)

	_, err := svc.Sell(context.Background(), CanteenSale{Items: []domain.OrderLine{{ItemID: 1, Quantity: -1}}})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, gw.Calls())

	order, err := svc.Sell(context.Background(), CanteenSale{Items: []domain.OrderLine{{ItemID: 1, Quantity: 2}}})
	require.NoError(t, err)
	assert.EqualValues(t, 12, order.ID)
	assert.Nil(t, order.SessionID)
}

func TestClubService_ActiveSession(t *testing.T) {
	gw := newFakeGateway()
	svc := NewClubService(gw)
	ctx := context.Background()

	gw.fail(http.MethodGet, "/clubs/1/sessions/active", &gateway.APIError{StatusCode: http.StatusNotFound})
	session, err := svc.ActiveSession(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, session)

	gw.on(http.MethodGet, "/clubs/2/sessions/active", `null`)
	session, err = svc.ActiveSession(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, session)

	gw.on(http.MethodGet, "/clubs/3/sessions/active", `{"id":5,"club_id":3,"opening_cash":"1000","opened_at":"2024-05-01T09:00:00Z"}`)
	session, err = svc.ActiveSession(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.EqualValues(t, 5, session.ID)

	gw.fail(http.MethodGet, "/clubs/4/sessions/active", gateway.ErrTransport)
	_, err = svc.ActiveSession(ctx, 4)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClubService_OpenSessionValidation(t *testing.T) {
	gw := newFakeGateway()
	svc := NewClubService(gw)

	_, err := svc.OpenSession(context.Background(), 0, OpenClubSessionInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.OpenSession(context.Background(), 1, OpenClubSessionInput{OpeningCash: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, gw.Calls())

	_, err = svc.OpenSession(context.Background(), 1, OpenClubSessionInput{OpeningCash: decimal.NewFromInt(500)})
	require.NoError(t, err)
	assert.Equal(t, "/clubs/1/sessions", gw.Calls()[0].Path)
}

func TestInvoiceService_UpdateStatus(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodPatch, "/invoices/9/status", `{"id":9,"payment_status":"paid","payment_method":"cash"}`)
	svc := NewInvoiceService(gw)

	_, err := svc.UpdateStatus(context.Background(), 9, InvoiceStatusInput{PaymentStatus: domain.PaymentPaid})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(context.Background(), 9, InvoiceStatusInput{PaymentStatus: "refunded"})
	assert.ErrorIs(t, err, ErrValidation)

	invoice, err := svc.UpdateStatus(context.Background(), 9, InvoiceStatusInput{PaymentStatus: domain.PaymentPaid, PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, invoice.PaymentStatus)
}

func TestAuthService_LoginIsAnonymous(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"user":{"id":1,"username":"frontdesk","role":"manager"},"access_token":"a","refresh_token":"r"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	conf := &config.BackendConfig{BaseURL: srv.URL, LoginPath: "/auth/login", RefreshPath: "/auth/refresh", Timeout: time.Second}
	client := gateway.NewClient(conf, &staticTokens{domain.Tokens{AccessToken: "stale"}})
	svc := NewAuthService(client, conf)

	_, err := svc.Login(context.Background(), Credentials{Username: " "})
	assert.ErrorIs(t, err, ErrValidation)

	result, err := svc.Login(context.Background(), Credentials{Username: "frontdesk", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, result.User.Role)
	assert.Equal(t, domain.Tokens{AccessToken: "a", RefreshToken: "r"}, result.Tokens)
}

func TestReportService_RevenueRange(t *testing.T) {
	gw := newFakeGateway()
	svc := NewReportService(gw)
	from := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.Revenue(context.Background(), 1, from, from.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrValidation)

	gw.on(http.MethodGet, "/reports/revenue?club_id=1&from=2024-05-10&to=2024-05-17", `{"from":"2024-05-10","to":"2024-05-17","total_revenue":"5400"}`)
	report, err := svc.Revenue(context.Background(), 1, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, "5400", report.TotalRevenue.String())

	_, err = svc.CreateExpense(context.Background(), ExpenseInput{ClubID: 1, Amount: decimal.NewFromInt(10), Category: "utilities", ExpenseDate: "10/05/2024"})
	assert.ErrorIs(t, err, ErrValidation)
}
