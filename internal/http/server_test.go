package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"premi/internal/core"
	"premi/internal/engine"
	"premi/internal/feed"
	feedmemory "premi/internal/feed/memory"
	"premi/internal/services"
	"premi/internal/stats"
)

type noopStore struct{}

func (noopStore) SaveState(context.Context, engine.State) error { return nil }

func testPrizes() []core.Prize {
	return []core.Prize{
		{ID: "points-100", Name: "100 Points", Category: core.CategoryPoints, FaceValue: "100 points", Weight: 60},
		{ID: "coffee", Name: "Coffee Voucher", Category: core.CategoryVoucher, FaceValue: "1 coffee", Weight: 40},
	}
}

func testItems() []core.ShopItem {
	return []core.ShopItem{
		{ID: "mug", Name: "Coffee Mug", Price: 300, Stock: 1, Active: true},
		{ID: "tee", Name: "T-Shirt", Price: 800, Stock: core.UnlimitedStock, DiscountPercent: 25, Active: true},
	}
}

func newTestServer(t *testing.T, balance int64, fetcher *feed.Fetcher) *Server {
	t.Helper()
	state := engine.NewState(testItems())
	state.Balance = balance

	eng, err := engine.New(
		engine.Config{SpinCost: 50, MaxFreeSpinsPerDay: 0},
		testPrizes(), testItems(), state,
		engine.WithClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }),
		engine.WithUniform(func() float64 { return 0 }),
	)
	if err != nil {
		t.Fatal(err)
	}

	svc := services.NewRewardsService(eng, noopStore{}, nil)
	srv := NewServer(":0", svc, fetcher)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, 0, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestSpinEndpoint(t *testing.T) {
	srv := newTestServer(t, 60, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/spin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	res := decode[spinResponse](t, rec)
	if res.Prize.ID != "points-100" {
		t.Errorf("prize = %s", res.Prize.ID)
	}
	// 60 - 50 cost + 100 won
	if res.Balance != 110 {
		t.Errorf("balance = %d, want 110", res.Balance)
	}
	if res.FreeSpin {
		t.Error("no free spins configured")
	}
}

func TestSpinEndpointInsufficient(t *testing.T) {
	srv := newTestServer(t, 10, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/spin", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestWheelEndpoint(t *testing.T) {
	srv := newTestServer(t, 0, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/wheel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	wheel := decode[[]prizeResponse](t, rec)
	if len(wheel) != 2 {
		t.Fatalf("wheel entries = %d, want 2", len(wheel))
	}
	// First wedge covers [0,60), midpoint 30 -> 108 degrees.
	if wheel[0].Angle != 108 {
		t.Errorf("first angle = %v, want 108", wheel[0].Angle)
	}
}

func TestAllowanceEndpoint(t *testing.T) {
	srv := newTestServer(t, 0, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/allowance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	a := decode[allowanceResponse](t, rec)
	if a.FreeSpinsRemaining != 0 {
		t.Errorf("free spins = %d, want 0", a.FreeSpinsRemaining)
	}
}

func TestShopAndRedeem(t *testing.T) {
	srv := newTestServer(t, 850, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/shop", nil)
	items := decode[[]shopItemResponse](t, rec)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[1].EffectivePrice != 600 {
		t.Errorf("discounted price = %d, want 600", items[1].EffectivePrice)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/shop/redeem", redeemRequest{ItemID: "mug"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	res := decode[redemptionResponse](t, rec)
	if res.PricePaid != 300 || res.Balance != 550 {
		t.Errorf("redemption = %+v", res)
	}

	// Stock 1, so the second redemption conflicts.
	rec = doJSON(t, srv, http.MethodPost, "/api/shop/redeem", redeemRequest{ItemID: "mug"})
	if rec.Code != http.StatusConflict {
		t.Errorf("sold out status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/shop/redeem", redeemRequest{ItemID: "ghost"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown item status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/shop/redeem", redeemRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing item_id status = %d, want 400", rec.Code)
	}
}

func TestGoalLifecycle(t *testing.T) {
	srv := newTestServer(t, 0, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/goals", createGoalRequest{
		Title:    "Vacation",
		Target:   "2500.00",
		Deadline: "2025-09-01",
		Priority: "high",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[goalResponse](t, rec)
	if created.TargetCents != 250000 || created.PointsReward != 25 {
		t.Errorf("created = %+v", created)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/goals", nil)
	goals := decode[[]goalResponse](t, rec)
	if len(goals) != 1 {
		t.Fatalf("goals = %d, want 1", len(goals))
	}

	newTitle := "Summer Vacation"
	rec = doJSON(t, srv, http.MethodPut, "/api/goals/"+created.ID, editGoalRequest{Title: &newTitle})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body %s", rec.Code, rec.Body.String())
	}
	edited := decode[goalResponse](t, rec)
	if edited.Title != "Summer Vacation" || edited.PointsReward != 25 {
		t.Errorf("edited = %+v", edited)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/goals/"+created.ID+"/contribute", contributeRequest{Amount: "2500.00"})
	if rec.Code != http.StatusOK {
		t.Fatalf("contribute status = %d, body %s", rec.Code, rec.Body.String())
	}
	contributed := decode[contributeResponse](t, rec)
	if !contributed.Completed || contributed.RewardCredited != 25 || contributed.Balance != 25 {
		t.Errorf("contributed = %+v", contributed)
	}

	// Contributing to a completed goal is a validation error.
	rec = doJSON(t, srv, http.MethodPost, "/api/goals/"+created.ID+"/contribute", contributeRequest{Amount: "1.00"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("completed goal contribute status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/goals/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/goals/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/goals/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestOverviewEndpoint(t *testing.T) {
	srv := newTestServer(t, 850, nil)

	doJSON(t, srv, http.MethodPost, "/api/spin", nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/stats/overview", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	ov := decode[overviewResponse](t, rec)
	if ov.TotalSpins != 1 {
		t.Errorf("total spins = %d, want 1", ov.TotalSpins)
	}
	if len(ov.PrizeWins) != 1 || ov.PrizeWins[0].Key != "points-100" {
		t.Errorf("prize wins = %+v", ov.PrizeWins)
	}
	if len(ov.SpinsPerDay) != 1 || ov.SpinsPerDay[0].Count != 1 {
		t.Errorf("spins per day = %+v", ov.SpinsPerDay)
	}

	// Second read hits the cache and reports the same snapshot.
	rec = doJSON(t, srv, http.MethodGet, "/api/stats/overview", nil)
	cached := decode[overviewResponse](t, rec)
	if cached.TotalSpins != ov.TotalSpins {
		t.Errorf("cached overview diverged: %+v", cached)
	}
}

func TestFeedEndpoints(t *testing.T) {
	store := feedmemory.New([]stats.TransactionRow{
		{Category: "Food", Amount: core.Money{Cents: 1200}, At: time.Now()},
	}, nil)
	fetcher := feed.NewFetcher(store, store, 50)

	srv := newTestServer(t, 0, fetcher)

	rec := doJSON(t, srv, http.MethodGet, "/api/feed", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("empty feed status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/feed/refresh", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("refresh status = %d, want 202", rec.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = doJSON(t, srv, http.MethodGet, "/api/feed", nil)
		if rec.Code == http.StatusOK {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("feed never became available, last status %d", rec.Code)
		}
		time.Sleep(10 * time.Millisecond)
	}
	res := decode[feedResponse](t, rec)
	if res.Transactions != 1 {
		t.Errorf("transactions = %d, want 1", res.Transactions)
	}
}

func TestFeedNotConfigured(t *testing.T) {
	srv := newTestServer(t, 0, nil)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/feed"},
		{http.MethodPost, "/api/feed/refresh"},
	} {
		rec := doJSON(t, srv, tc.method, tc.path, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3)
	defer rl.stop()

	for i := 0; i < 3; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Error("fourth request should be rejected")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other clients are not affected")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, 0, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/spin", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRequestIDGeneration(t *testing.T) {
	a, b := generateRequestID(), generateRequestID()
	if a == b {
		t.Error("request ids must be unique")
	}
	if len(a) != len("req_")+16 {
		t.Errorf("unexpected id shape: %q", a)
	}
}
