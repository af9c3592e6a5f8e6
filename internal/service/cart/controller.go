package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"cartsync/internal/domain"
	"cartsync/internal/gueststore"
	"cartsync/internal/session"
)

// remoteGateway is the consumed slice of the remote cart API.
type remoteGateway interface {
	Fetch(ctx context.Context, userID int64) ([]domain.CartLine, error)
	AddLine(ctx context.Context, userID int64, productID string, quantity int) error
	SetQuantity(ctx context.Context, userID int64, productID string, quantity int) error
	RemoveLine(ctx context.Context, userID int64, productID string) error
	Clear(ctx context.Context, userID int64) error
	Summary(ctx context.Context, userID int64) (domain.CartSummary, error)
	Checkout(ctx context.Context, userID int64, payload map[string]interface{}) (domain.CheckoutResult, error)
}

// Controller reconciles the three cart representations for one session:
// the guest snapshot in the local store, the authoritative server-side
// cart behind the gateway, and the in-memory state the client renders
// from. Mutations apply optimistically to the in-memory state; a failed
// remote write rolls the optimistic transition back before the error is
// recorded and returned.
//
// All state transitions go through the reducer under a single mutex, so
// the in-memory cart behaves as if owned by one logical thread. Load
// releases the mutex for the duration of the remote fetch and applies the
// response only if no newer operation started in the meantime.
type Controller struct {
	mu      sync.Mutex
	state   domain.CartState
	seq     uint64
	session session.Session
	guests  gueststore.Store
	gateway remoteGateway
	logger  *log.Logger
}

func NewController(sess session.Session, guests gueststore.Store, gw remoteGateway, logger *log.Logger) *Controller {
	return &Controller{
		session: sess,
		state:   domain.CartState{Lines: []domain.CartLine{}},
		guests:  guests,
		gateway: gw,
		logger:  logger,
	}
}

// State returns a copy of the current in-memory cart.
func (c *Controller) State() domain.CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Load replaces the in-memory cart from the authoritative store. For a
// guest that is the local snapshot; for an authenticated user it is the
// remote cart, with a visible error state on failure rather than a silent
// guest fallback.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	ident, err := session.Resolve(c.session)
	if err != nil {
		c.dispatch(Action{Type: ActionSetError, Message: err.Error()})
		c.mu.Unlock()
		return err
	}

	if ident.Guest {
		lines := c.guests.Read(ctx, ident.GuestID)
		c.dispatch(Action{Type: ActionSetCart, Lines: lines})
		c.mu.Unlock()
		return nil
	}

	c.seq++
	started := c.seq
	c.dispatch(Action{Type: ActionSetLoading, Loading: true})
	c.mu.Unlock()

	lines, err := c.gateway.Fetch(ctx, ident.UserID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != started {
		// A newer mutation or load was issued while this fetch was in
		// flight; dropping the stale response keeps last-issued-wins.
		c.dispatch(Action{Type: ActionSetLoading, Loading: false})
		return nil
	}
	if err != nil {
		c.dispatch(Action{Type: ActionSetError, Message: err.Error()})
		return err
	}
	c.dispatch(Action{Type: ActionSetCart, Lines: lines})
	c.dispatch(Action{Type: ActionSetLoading, Loading: false})
	return nil
}

// AddToCart normalizes a heterogeneous product payload into a line and
// merges it into the cart.
func (c *Controller) AddToCart(ctx context.Context, product map[string]interface{}, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ident, err := c.resolveLocked()
	if err != nil {
		return err
	}
	line := domain.NormalizeLine(product, quantity)
	if line.ProductID == "" {
		return errors.New("product id required")
	}

	c.seq++
	opID := uuid.NewString()
	prev, existed := c.lineLocked(line.ProductID)
	c.dispatch(Action{Type: ActionAddItem, Line: line})

	if ident.Guest {
		c.persistGuestLocked(ctx, ident.GuestID, opID)
		return nil
	}
	if err := c.gateway.AddLine(ctx, ident.UserID, line.ProductID, line.Quantity); err != nil {
		c.rollbackQuantityLocked(line.ProductID, prev, existed)
		c.dispatch(Action{Type: ActionSetError, Message: err.Error()})
		c.logger.Printf("remote add rolled back op=%s product=%s: %v", opID, line.ProductID, err)
		return err
	}
	return nil
}

// UpdateQuantity sets the absolute quantity for a line. Zero or negative
// means removal, both in memory and against the backing store.
func (c *Controller) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ident, err := c.resolveLocked()
	if err != nil {
		return err
	}

	c.seq++
	opID := uuid.NewString()
	prev, existed := c.lineLocked(productID)
	c.dispatch(Action{Type: ActionUpdateItem, ProductID: productID, Quantity: quantity})

	if ident.Guest {
		c.persistGuestLocked(ctx, ident.GuestID, opID)
		return nil
	}

	// Removal is routed explicitly rather than as a zero-quantity update.
	var remoteErr error
	if quantity <= 0 {
		remoteErr = c.gateway.RemoveLine(ctx, ident.UserID, productID)
	} else {
		remoteErr = c.gateway.SetQuantity(ctx, ident.UserID, productID, quantity)
	}
	if remoteErr != nil {
		c.rollbackQuantityLocked(productID, prev, existed)
		c.dispatch(Action{Type: ActionSetError, Message: remoteErr.Error()})
		c.logger.Printf("remote update rolled back op=%s product=%s: %v", opID, productID, remoteErr)
		return remoteErr
	}
	return nil
}

// RemoveFromCart drops a line unconditionally.
func (c *Controller) RemoveFromCart(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ident, err := c.resolveLocked()
	if err != nil {
		return err
	}

	c.seq++
	opID := uuid.NewString()
	prev, existed := c.lineLocked(productID)
	c.dispatch(Action{Type: ActionRemoveItem, ProductID: productID})

	if ident.Guest {
		c.persistGuestLocked(ctx, ident.GuestID, opID)
		return nil
	}
	if err := c.gateway.RemoveLine(ctx, ident.UserID, productID); err != nil {
		if existed {
			c.dispatch(Action{Type: ActionAddItem, Line: prev})
		}
		c.dispatch(Action{Type: ActionSetError, Message: err.Error()})
		c.logger.Printf("remote remove rolled back op=%s product=%s: %v", opID, productID, err)
		return err
	}
	return nil
}

// ClearCart empties the cart.
func (c *Controller) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ident, err := c.resolveLocked()
	if err != nil {
		return err
	}

	c.seq++
	opID := uuid.NewString()
	prevLines := c.snapshotLocked().Lines
	c.dispatch(Action{Type: ActionClearCart})

	if ident.Guest {
		c.persistGuestLocked(ctx, ident.GuestID, opID)
		return nil
	}
	if err := c.gateway.Clear(ctx, ident.UserID); err != nil {
		c.dispatch(Action{Type: ActionSetCart, Lines: prevLines})
		c.dispatch(Action{Type: ActionSetError, Message: err.Error()})
		c.logger.Printf("remote clear rolled back op=%s: %v", opID, err)
		return err
	}
	return nil
}

// Checkout submits the cart for an authenticated user. A guest fails fast
// before any network call. A successful checkout always empties the
// in-memory cart regardless of the response payload.
func (c *Controller) Checkout(ctx context.Context, payload map[string]interface{}) (domain.CheckoutResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ident, err := c.resolveLocked()
	if err != nil {
		return nil, err
	}
	if ident.Guest {
		return nil, domain.ErrRequiresAccount
	}

	result, err := c.gateway.Checkout(ctx, ident.UserID, payload)
	if err != nil {
		c.dispatch(Action{Type: ActionSetError, Message: err.Error()})
		return nil, err
	}
	c.seq++
	c.dispatch(Action{Type: ActionClearCart})
	return result, nil
}

// Summary returns totals: computed locally for guests, from the remote
// summary endpoint for authenticated users.
func (c *Controller) Summary(ctx context.Context) (domain.CartSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ident, err := c.resolveLocked()
	if err != nil {
		return domain.CartSummary{}, err
	}
	if ident.Guest {
		return domain.CartSummary{Total: c.state.Total, ItemCount: c.state.ItemCount}, nil
	}
	summary, err := c.gateway.Summary(ctx, ident.UserID)
	if err != nil {
		c.dispatch(Action{Type: ActionSetError, Message: err.Error()})
		return domain.CartSummary{}, err
	}
	return summary, nil
}

// IsInCart reports whether a product is present. Pure read, cannot fail.
func (c *Controller) IsInCart(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lineLocked(productID)
	return ok
}

// QuantityOf returns the quantity for a product, zero when absent.
func (c *Controller) QuantityOf(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line, ok := c.lineLocked(productID); ok {
		return line.Quantity
	}
	return 0
}

func (c *Controller) dispatch(a Action) {
	c.state = Reduce(c.state, a)
}

func (c *Controller) resolveLocked() (session.Identity, error) {
	ident, err := session.Resolve(c.session)
	if err != nil {
		c.dispatch(Action{Type: ActionSetError, Message: err.Error()})
		return session.Identity{}, err
	}
	return ident, nil
}

func (c *Controller) lineLocked(productID string) (domain.CartLine, bool) {
	for _, line := range c.state.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return domain.CartLine{}, false
}

func (c *Controller) snapshotLocked() domain.CartState {
	out := c.state
	out.Lines = make([]domain.CartLine, len(c.state.Lines))
	copy(out.Lines, c.state.Lines)
	return out
}

// persistGuestLocked writes the current lines to the guest store. Loss of
// guest persistence is non-fatal: the in-memory cart keeps working for
// the rest of the session, so the error is logged and swallowed.
func (c *Controller) persistGuestLocked(ctx context.Context, guestID, opID string) {
	if err := c.guests.Write(ctx, guestID, c.state.Lines); err != nil {
		c.logger.Printf("guest store write failed op=%s guest=%s: %v", opID, guestID, err)
	}
}

// rollbackQuantityLocked restores a line to its pre-mutation quantity, or
// drops it when it did not exist before the optimistic update.
func (c *Controller) rollbackQuantityLocked(productID string, prev domain.CartLine, existed bool) {
	if existed {
		c.dispatch(Action{Type: ActionUpdateItem, ProductID: productID, Quantity: prev.Quantity})
	} else {
		c.dispatch(Action{Type: ActionRemoveItem, ProductID: productID})
	}
}
