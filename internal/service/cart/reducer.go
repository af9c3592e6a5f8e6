package cart

import "cartsync/internal/domain"

// ActionType enumerates the cart state transitions.
type ActionType string

const (
	ActionSetLoading ActionType = "SET_LOADING"
	ActionSetError   ActionType = "SET_ERROR"
	ActionSetCart    ActionType = "SET_CART"
	ActionAddItem    ActionType = "ADD_ITEM"
	ActionUpdateItem ActionType = "UPDATE_ITEM"
	ActionRemoveItem ActionType = "REMOVE_ITEM"
	ActionClearCart  ActionType = "CLEAR_CART"
)

// Action is one reducer input. Only the fields relevant to Type are read.
type Action struct {
	Type      ActionType
	Loading   bool
	Message   string
	Lines     []domain.CartLine
	Line      domain.CartLine
	ProductID string
	Quantity  int
}

// Reduce maps (state, action) to a new state. It is pure and total: no
// I/O, no panics, and an unknown action returns the state unchanged.
// Total and ItemCount are recomputed from the lines on every transition
// that touches them, summing unitPrice times quantity in line order.
func Reduce(state domain.CartState, action Action) domain.CartState {
	switch action.Type {
	case ActionSetLoading:
		state.Loading = action.Loading
		return state

	case ActionSetError:
		state.Error = action.Message
		state.Loading = false
		return state

	case ActionSetCart:
		state.Lines, state.Total, state.ItemCount = recompute(action.Lines)
		state.Error = ""
		return state

	case ActionAddItem:
		lines := make([]domain.CartLine, len(state.Lines))
		copy(lines, state.Lines)
		merged := false
		for i := range lines {
			if lines[i].ProductID == action.Line.ProductID {
				lines[i].Quantity += action.Line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			lines = append(lines, action.Line)
		}
		state.Lines, state.Total, state.ItemCount = recompute(lines)
		return state

	case ActionUpdateItem:
		lines := make([]domain.CartLine, 0, len(state.Lines))
		for _, line := range state.Lines {
			if line.ProductID == action.ProductID {
				if action.Quantity <= 0 {
					continue
				}
				line.Quantity = action.Quantity
			}
			lines = append(lines, line)
		}
		state.Lines, state.Total, state.ItemCount = recompute(lines)
		return state

	case ActionRemoveItem:
		lines := make([]domain.CartLine, 0, len(state.Lines))
		for _, line := range state.Lines {
			if line.ProductID != action.ProductID {
				lines = append(lines, line)
			}
		}
		state.Lines, state.Total, state.ItemCount = recompute(lines)
		return state

	case ActionClearCart:
		state.Lines = []domain.CartLine{}
		state.Total = 0
		state.ItemCount = 0
		state.Error = ""
		return state

	default:
		return state
	}
}

// recompute rebuilds the derived fields from the given lines. Lines with
// non-positive quantity are dropped so they can never survive a transition.
func recompute(lines []domain.CartLine) ([]domain.CartLine, float64, int) {
	out := make([]domain.CartLine, 0, len(lines))
	total := 0.0
	count := 0
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		line.Subtotal = line.UnitPrice * float64(line.Quantity)
		total += line.Subtotal
		count += line.Quantity
		out = append(out, line)
	}
	return out, total, count
}
