package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"premi/internal/amqp"
	"premi/internal/core"
	"premi/internal/engine"
)

type fakeStore struct {
	saves  []engine.State
	failed bool
}

func (f *fakeStore) SaveState(_ context.Context, state engine.State) error {
	if f.failed {
		return errors.New("disk full")
	}
	f.saves = append(f.saves, state)
	return nil
}

type fakePublisher struct {
	spins       []*amqp.SpinRecordedMessage
	redemptions []*amqp.RedemptionRecordedMessage
	goals       []*amqp.GoalCompletedMessage
	err         error
}

func (f *fakePublisher) PublishSpinRecorded(_ context.Context, msg *amqp.SpinRecordedMessage) error {
	f.spins = append(f.spins, msg)
	return f.err
}

func (f *fakePublisher) PublishRedemptionRecorded(_ context.Context, msg *amqp.RedemptionRecordedMessage) error {
	f.redemptions = append(f.redemptions, msg)
	return f.err
}

func (f *fakePublisher) PublishGoalCompleted(_ context.Context, msg *amqp.GoalCompletedMessage) error {
	f.goals = append(f.goals, msg)
	return f.err
}

func servicePrizes() []core.Prize {
	return []core.Prize{
		{ID: "points-100", Name: "100 Points", Category: core.CategoryPoints, FaceValue: "100 points", Weight: 60},
		{ID: "coffee", Name: "Coffee Voucher", Category: core.CategoryVoucher, FaceValue: "1 coffee", Weight: 40},
	}
}

func serviceItems() []core.ShopItem {
	return []core.ShopItem{
		{ID: "mug", Name: "Coffee Mug", Price: 300, Stock: 2, Active: true},
	}
}

func newTestService(t *testing.T, balance int64) (*RewardsService, *fakeStore, *fakePublisher) {
	t.Helper()
	state := engine.NewState(serviceItems())
	state.Balance = balance

	eng, err := engine.New(
		engine.Config{SpinCost: 50, MaxFreeSpinsPerDay: 0},
		servicePrizes(), serviceItems(), state,
		engine.WithClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }),
		engine.WithUniform(func() float64 { return 0 }),
	)
	if err != nil {
		t.Fatal(err)
	}

	store := &fakeStore{}
	pub := &fakePublisher{}
	return NewRewardsService(eng, store, pub), store, pub
}

func TestSpinSavesAndPublishes(t *testing.T) {
	svc, store, pub := newTestService(t, 850)

	res, err := svc.Spin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Prize.ID != "points-100" {
		t.Errorf("prize = %s", res.Prize.ID)
	}
	// 850 - 50 cost + 100 won
	if res.Balance != 900 {
		t.Errorf("balance = %d, want 900", res.Balance)
	}

	if len(store.saves) != 1 {
		t.Fatalf("saves = %d, want 1", len(store.saves))
	}
	if store.saves[0].Balance != 900 {
		t.Errorf("saved balance = %d, want 900", store.saves[0].Balance)
	}

	if len(pub.spins) != 1 {
		t.Fatalf("published spins = %d, want 1", len(pub.spins))
	}
	msg := pub.spins[0]
	if msg.PrizeID != "points-100" || msg.PointsWon != 100 || msg.Balance != 900 {
		t.Errorf("message = %+v", msg)
	}
	if msg.SpinID == "" {
		t.Error("message must carry the spin record id")
	}
}

func TestSpinEngineErrorSkipsSaveAndPublish(t *testing.T) {
	svc, store, pub := newTestService(t, 10) // below spin cost, no free spins

	_, err := svc.Spin(context.Background())
	if !errors.Is(err, core.ErrNoSpinsAvailable) {
		t.Fatalf("err = %v, want ErrNoSpinsAvailable", err)
	}
	if len(store.saves) != 0 || len(pub.spins) != 0 {
		t.Error("failed spin must not save or publish")
	}
}

func TestSpinSaveFailureFailsRequest(t *testing.T) {
	svc, store, pub := newTestService(t, 850)
	store.failed = true

	if _, err := svc.Spin(context.Background()); err == nil {
		t.Fatal("save failure must fail the request")
	}
	if len(pub.spins) != 0 {
		t.Error("must not publish when the save failed")
	}
}

func TestRedeemSavesAndPublishes(t *testing.T) {
	svc, store, pub := newTestService(t, 850)

	rec, err := svc.Redeem(context.Background(), "mug")
	if err != nil {
		t.Fatal(err)
	}
	if rec.PricePaid != 300 {
		t.Errorf("price paid = %d, want 300", rec.PricePaid)
	}

	if len(store.saves) != 1 || store.saves[0].Balance != 550 {
		t.Errorf("saves = %+v", store.saves)
	}
	if len(pub.redemptions) != 1 {
		t.Fatalf("published redemptions = %d, want 1", len(pub.redemptions))
	}
	if pub.redemptions[0].ItemID != "mug" || pub.redemptions[0].Balance != 550 {
		t.Errorf("message = %+v", pub.redemptions[0])
	}
}

func TestContributePublishesOnlyOnCompletion(t *testing.T) {
	svc, _, pub := newTestService(t, 0)
	ctx := context.Background()

	target, _ := core.ParseAmount("100.00")
	g, err := svc.CreateGoal(ctx, "Bike", target, time.Time{}, core.PriorityLow)
	if err != nil {
		t.Fatal(err)
	}

	half, _ := core.ParseAmount("50.00")
	res, err := svc.Contribute(ctx, g.ID, half)
	if err != nil {
		t.Fatal(err)
	}
	if res.Completed {
		t.Fatal("goal should not be completed yet")
	}
	if len(pub.goals) != 0 {
		t.Error("partial contribution must not publish a goal event")
	}

	res, err = svc.Contribute(ctx, g.ID, half)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Completed {
		t.Fatal("goal should be completed")
	}
	if len(pub.goals) != 1 {
		t.Fatalf("published goals = %d, want 1", len(pub.goals))
	}
	msg := pub.goals[0]
	if msg.Title != "Bike" || msg.PointsReward != 1 {
		t.Errorf("message = %+v", msg)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	svc, store, pub := newTestService(t, 850)
	pub.err = errors.New("broker down")

	if _, err := svc.Spin(context.Background()); err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}
	if len(store.saves) != 1 {
		t.Error("state must still be saved")
	}
}

func TestNilPublisherIsSkipped(t *testing.T) {
	svc, store, _ := newTestService(t, 850)
	svc.publisher = nil

	if _, err := svc.Spin(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.saves) != 1 {
		t.Error("state must still be saved without a publisher")
	}
}

func TestDeleteGoalSaves(t *testing.T) {
	svc, store, _ := newTestService(t, 0)
	ctx := context.Background()

	target, _ := core.ParseAmount("10.00")
	g, err := svc.CreateGoal(ctx, "Tiny", target, time.Time{}, core.PriorityMedium)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteGoal(ctx, g.ID); err != nil {
		t.Fatal(err)
	}

	last := store.saves[len(store.saves)-1]
	if len(last.Goals) != 0 {
		t.Errorf("goals after delete = %d, want 0", len(last.Goals))
	}
}
