package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"cartsync/internal/domain"
	"cartsync/internal/session"
)

type stubGateway struct {
	fetchLines   []domain.CartLine
	fetchErr     error
	fetchStarted chan struct{}
	fetchRelease chan struct{}

	addErr      error
	setErr      error
	removeErr   error
	clearErr    error
	summary     domain.CartSummary
	summaryErr  error
	checkoutRes domain.CheckoutResult
	checkoutErr error

	calls []string
}

func (g *stubGateway) Fetch(_ context.Context, userID int64) ([]domain.CartLine, error) {
	g.calls = append(g.calls, fmt.Sprintf("fetch %d", userID))
	if g.fetchStarted != nil {
		started := g.fetchStarted
		g.fetchStarted = nil
		close(started)
		<-g.fetchRelease
	}
	return g.fetchLines, g.fetchErr
}

func (g *stubGateway) AddLine(_ context.Context, userID int64, productID string, quantity int) error {
	g.calls = append(g.calls, fmt.Sprintf("add %d %s %d", userID, productID, quantity))
	return g.addErr
}

func (g *stubGateway) SetQuantity(_ context.Context, userID int64, productID string, quantity int) error {
	g.calls = append(g.calls, fmt.Sprintf("set %d %s %d", userID, productID, quantity))
	return g.setErr
}

func (g *stubGateway) RemoveLine(_ context.Context, userID int64, productID string) error {
	g.calls = append(g.calls, fmt.Sprintf("remove %d %s", userID, productID))
	return g.removeErr
}

func (g *stubGateway) Clear(_ context.Context, userID int64) error {
	g.calls = append(g.calls, fmt.Sprintf("clear %d", userID))
	return g.clearErr
}

func (g *stubGateway) Summary(_ context.Context, userID int64) (domain.CartSummary, error) {
	g.calls = append(g.calls, fmt.Sprintf("summary %d", userID))
	return g.summary, g.summaryErr
}

func (g *stubGateway) Checkout(_ context.Context, userID int64, _ map[string]interface{}) (domain.CheckoutResult, error) {
	g.calls = append(g.calls, fmt.Sprintf("checkout %d", userID))
	return g.checkoutRes, g.checkoutErr
}

type stubStore struct {
	slots    map[string][]domain.CartLine
	writeErr error
	writes   int
}

func newStubStore() *stubStore {
	return &stubStore{slots: make(map[string][]domain.CartLine)}
}

func (s *stubStore) Read(_ context.Context, guestID string) []domain.CartLine {
	return s.slots[guestID]
}

func (s *stubStore) Write(_ context.Context, guestID string, lines []domain.CartLine) error {
	s.writes++
	if s.writeErr != nil {
		return s.writeErr
	}
	snapshot := make([]domain.CartLine, len(lines))
	copy(snapshot, lines)
	s.slots[guestID] = snapshot
	return nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestController(sessionID string, store *stubStore, gw *stubGateway) *Controller {
	return NewController(session.Session{ID: sessionID}, store, gw, testLogger())
}

func product(id string, price float64) map[string]interface{} {
	return map[string]interface{}{"id": id, "price": price}
}

const guestID = "guest-11111111-1111-1111-1111-111111111111"

func TestLoadGuestReadsLocalSnapshot(t *testing.T) {
	store := newStubStore()
	store.slots[guestID] = []domain.CartLine{line("P1", 10, 2)}
	ctrl := newTestController(guestID, store, &stubGateway{})

	if err := ctrl.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := ctrl.State()
	checkDerived(t, st)
	if len(st.Lines) != 1 || st.Lines[0].ProductID != "P1" || st.Total != 20 {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestLoadAuthenticatedSuccess(t *testing.T) {
	gw := &stubGateway{fetchLines: []domain.CartLine{line("P1", 4, 3)}}
	ctrl := newTestController("7", newStubStore(), gw)

	if err := ctrl.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := ctrl.State()
	checkDerived(t, st)
	if st.Loading {
		t.Fatalf("loading must be off after a finished load")
	}
	if st.Total != 12 || st.ItemCount != 3 {
		t.Fatalf("unexpected totals: %+v", st)
	}
	if len(gw.calls) != 1 || gw.calls[0] != "fetch 7" {
		t.Fatalf("unexpected gateway calls: %v", gw.calls)
	}
}

func TestLoadAuthenticatedFailureIsVisible(t *testing.T) {
	gw := &stubGateway{fetchErr: domain.ErrGateway}
	ctrl := newTestController("7", newStubStore(), gw)

	err := ctrl.Load(context.Background())
	if !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	st := ctrl.State()
	if st.Error == "" {
		t.Fatalf("fetch failure must surface as an error state")
	}
	if st.Loading {
		t.Fatalf("error must force loading off")
	}
	if len(st.Lines) != 0 {
		t.Fatalf("failed load must not substitute lines: %+v", st.Lines)
	}
}

func TestLoadStaleResponseDropped(t *testing.T) {
	gw := &stubGateway{
		fetchLines:   []domain.CartLine{line("STALE", 1, 1)},
		fetchStarted: make(chan struct{}),
		fetchRelease: make(chan struct{}),
	}
	started := gw.fetchStarted
	ctrl := newTestController("7", newStubStore(), gw)

	done := make(chan error, 1)
	go func() { done <- ctrl.Load(context.Background()) }()
	<-started

	// A mutation issued while the fetch is in flight supersedes it.
	if err := ctrl.AddToCart(context.Background(), product("P9", 2), 1); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	close(gw.fetchRelease)
	if err := <-done; err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	st := ctrl.State()
	if st.Loading {
		t.Fatalf("loading must be off after the stale load resolves")
	}
	if len(st.Lines) != 1 || st.Lines[0].ProductID != "P9" {
		t.Fatalf("stale fetch overwrote a newer mutation: %+v", st.Lines)
	}
}

func TestAddToCartGuestPersistsMergedSnapshot(t *testing.T) {
	store := newStubStore()
	ctrl := newTestController(guestID, store, &stubGateway{})

	ctx := context.Background()
	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctrl.AddToCart(ctx, product("P1", 10), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	persisted := store.slots[guestID]
	if len(persisted) != 1 || persisted[0].Quantity != 5 {
		t.Fatalf("expected merged snapshot, got %+v", persisted)
	}
	st := ctrl.State()
	checkDerived(t, st)
	if st.ItemCount != 5 {
		t.Fatalf("unexpected item count %d", st.ItemCount)
	}
}

func TestAddToCartGuestOfflineKeepsMemory(t *testing.T) {
	store := newStubStore()
	store.writeErr = errors.New("disk gone")
	ctrl := newTestController(guestID, store, &stubGateway{})

	ctx := context.Background()
	if err := ctrl.AddToCart(ctx, product("P1", 10), 1); err != nil {
		t.Fatalf("write failure must be swallowed, got %v", err)
	}
	if err := ctrl.AddToCart(ctx, product("P2", 5), 2); err != nil {
		t.Fatalf("write failure must be swallowed, got %v", err)
	}

	st := ctrl.State()
	checkDerived(t, st)
	if len(st.Lines) != 2 || st.ItemCount != 3 {
		t.Fatalf("in-memory state must reflect both adds: %+v", st)
	}
	if st.Error != "" {
		t.Fatalf("local persistence failure must not surface: %q", st.Error)
	}
	if store.writes != 2 {
		t.Fatalf("expected two write attempts, got %d", store.writes)
	}
}

func TestAddToCartAuthenticatedOptimistic(t *testing.T) {
	gw := &stubGateway{}
	ctrl := newTestController("7", newStubStore(), gw)

	if err := ctrl.AddToCart(context.Background(), product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.calls) != 1 || gw.calls[0] != "add 7 P1 2" {
		t.Fatalf("unexpected gateway calls: %v", gw.calls)
	}
	st := ctrl.State()
	if st.Total != 20 {
		t.Fatalf("optimistic update missing: %+v", st)
	}
}

func TestAddToCartRollbackOnRemoteFailure(t *testing.T) {
	gw := &stubGateway{addErr: domain.ErrGateway}
	ctrl := newTestController("7", newStubStore(), gw)

	err := ctrl.AddToCart(context.Background(), product("P1", 10), 2)
	if !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	st := ctrl.State()
	if len(st.Lines) != 0 {
		t.Fatalf("optimistic add must roll back: %+v", st.Lines)
	}
	if st.Error == "" {
		t.Fatalf("remote failure must also surface via the error state")
	}
}

func TestAddToCartRollbackRestoresPriorQuantity(t *testing.T) {
	gw := &stubGateway{}
	ctrl := newTestController("7", newStubStore(), gw)
	ctx := context.Background()

	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gw.addErr = domain.ErrGateway
	if err := ctrl.AddToCart(ctx, product("P1", 10), 3); err == nil {
		t.Fatalf("expected failure")
	}

	st := ctrl.State()
	checkDerived(t, st)
	if len(st.Lines) != 1 || st.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity restored to 2, got %+v", st.Lines)
	}
}

func TestAddToCartRequiresProductID(t *testing.T) {
	ctrl := newTestController(guestID, newStubStore(), &stubGateway{})
	if err := ctrl.AddToCart(context.Background(), map[string]interface{}{"price": 3.0}, 1); err == nil {
		t.Fatalf("expected validation error for missing product id")
	}
}

func TestUpdateQuantityZeroRoutesRemoval(t *testing.T) {
	gw := &stubGateway{}
	ctrl := newTestController("7", newStubStore(), gw)
	ctx := context.Background()

	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctrl.UpdateQuantity(ctx, "P1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := gw.calls[len(gw.calls)-1]
	if last != "remove 7 P1" {
		t.Fatalf("zero quantity must route to removal, got %q", last)
	}
	if len(ctrl.State().Lines) != 0 {
		t.Fatalf("line must be gone")
	}
}

func TestUpdateQuantityRollback(t *testing.T) {
	gw := &stubGateway{}
	ctrl := newTestController("7", newStubStore(), gw)
	ctx := context.Background()

	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gw.setErr = domain.ErrGateway
	if err := ctrl.UpdateQuantity(ctx, "P1", 9); err == nil {
		t.Fatalf("expected failure")
	}

	st := ctrl.State()
	if st.Lines[0].Quantity != 2 {
		t.Fatalf("expected rollback to quantity 2, got %d", st.Lines[0].Quantity)
	}
}

func TestUpdateQuantityGuestFiltersZeroFromSnapshot(t *testing.T) {
	store := newStubStore()
	ctrl := newTestController(guestID, store, &stubGateway{})
	ctx := context.Background()

	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctrl.AddToCart(ctx, product("P2", 5), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctrl.UpdateQuantity(ctx, "P1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	persisted := store.slots[guestID]
	if len(persisted) != 1 || persisted[0].ProductID != "P2" {
		t.Fatalf("persisted snapshot must not contain dropped lines: %+v", persisted)
	}
}

func TestRemoveFromCartRollbackReinserts(t *testing.T) {
	gw := &stubGateway{}
	ctrl := newTestController("7", newStubStore(), gw)
	ctx := context.Background()

	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gw.removeErr = domain.ErrGateway
	if err := ctrl.RemoveFromCart(ctx, "P1"); err == nil {
		t.Fatalf("expected failure")
	}

	st := ctrl.State()
	checkDerived(t, st)
	if len(st.Lines) != 1 || st.Lines[0].Quantity != 2 {
		t.Fatalf("expected line restored, got %+v", st.Lines)
	}
}

func TestClearCartRollbackRestores(t *testing.T) {
	gw := &stubGateway{}
	ctrl := newTestController("7", newStubStore(), gw)
	ctx := context.Background()

	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gw.clearErr = domain.ErrGateway
	if err := ctrl.ClearCart(ctx); err == nil {
		t.Fatalf("expected failure")
	}

	st := ctrl.State()
	if len(st.Lines) != 1 || st.Total != 20 {
		t.Fatalf("expected cart restored, got %+v", st)
	}
	if st.Error == "" {
		t.Fatalf("expected error state set")
	}
}

func TestClearCartGuestPersistsEmptySnapshot(t *testing.T) {
	store := newStubStore()
	ctrl := newTestController(guestID, store, &stubGateway{})
	ctx := context.Background()

	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctrl.ClearCart(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	persisted, ok := store.slots[guestID]
	if !ok || len(persisted) != 0 {
		t.Fatalf("expected empty persisted snapshot, got %+v", persisted)
	}
}

func TestCheckoutGuestFailsFast(t *testing.T) {
	gw := &stubGateway{}
	ctrl := newTestController(guestID, newStubStore(), gw)

	_, err := ctrl.Checkout(context.Background(), nil)
	if !errors.Is(err, domain.ErrRequiresAccount) {
		t.Fatalf("expected ErrRequiresAccount, got %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("guest checkout must never reach the gateway: %v", gw.calls)
	}
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	gw := &stubGateway{checkoutRes: domain.CheckoutResult{"orderId": "o-1"}}
	ctrl := newTestController("7", newStubStore(), gw)
	ctx := context.Background()

	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := ctrl.Checkout(ctx, map[string]interface{}{"metodo_pago": "tarjeta"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["orderId"] != "o-1" {
		t.Fatalf("unexpected checkout result: %+v", result)
	}

	st := ctrl.State()
	if len(st.Lines) != 0 || st.Total != 0 || st.ItemCount != 0 {
		t.Fatalf("checkout must empty the cart: %+v", st)
	}
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	gw := &stubGateway{checkoutErr: domain.ErrGateway}
	ctrl := newTestController("7", newStubStore(), gw)
	ctx := context.Background()

	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ctrl.Checkout(ctx, nil); !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}

	st := ctrl.State()
	if len(st.Lines) != 1 {
		t.Fatalf("failed checkout must keep the cart: %+v", st.Lines)
	}
	if st.Error == "" {
		t.Fatalf("expected error state set")
	}
}

func TestUnlinkedSessionSurfaces(t *testing.T) {
	ctrl := newTestController("not-a-number", newStubStore(), &stubGateway{})
	ctx := context.Background()

	if err := ctrl.Load(ctx); !errors.Is(err, domain.ErrUnlinkedAccount) {
		t.Fatalf("expected unlinked error from load, got %v", err)
	}
	if err := ctrl.AddToCart(ctx, product("P1", 10), 1); !errors.Is(err, domain.ErrUnlinkedAccount) {
		t.Fatalf("expected unlinked error from add, got %v", err)
	}
	if st := ctrl.State(); st.Error == "" {
		t.Fatalf("unlinked condition must be visible in state")
	}
	if st := ctrl.State(); len(st.Lines) != 0 {
		t.Fatalf("unlinked session must not accumulate lines")
	}
}

func TestQueriesAreSideEffectFree(t *testing.T) {
	gw := &stubGateway{}
	ctrl := newTestController("7", newStubStore(), gw)
	ctx := context.Background()

	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	callsBefore := len(gw.calls)

	if !ctrl.IsInCart("P1") || ctrl.IsInCart("P2") {
		t.Fatalf("unexpected membership answers")
	}
	if ctrl.QuantityOf("P1") != 2 || ctrl.QuantityOf("P2") != 0 {
		t.Fatalf("unexpected quantities")
	}
	if len(gw.calls) != callsBefore {
		t.Fatalf("queries must not perform I/O: %v", gw.calls)
	}
}

func TestSummaryGuestComputedLocally(t *testing.T) {
	gw := &stubGateway{}
	ctrl := newTestController(guestID, newStubStore(), gw)
	ctx := context.Background()

	if err := ctrl.AddToCart(ctx, product("P1", 10), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, err := ctrl.Summary(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 20 || summary.ItemCount != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("guest summary must not reach the gateway")
	}
}

func TestSummaryAuthenticatedFromGateway(t *testing.T) {
	gw := &stubGateway{summary: domain.CartSummary{Total: 99, ItemCount: 4}}
	ctrl := newTestController("7", newStubStore(), gw)

	summary, err := ctrl.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 99 || summary.ItemCount != 4 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
