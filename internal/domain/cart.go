package domain

// CartLine is one product line in a cart. Subtotal is derived from
// UnitPrice and Quantity and is recomputed on every state transition.
type CartLine struct {
	ProductID      string  `json:"productId"`
	Name           string  `json:"name,omitempty"`
	Brand          string  `json:"brand,omitempty"`
	UnitPrice      float64 `json:"unitPrice"`
	Quantity       int     `json:"quantity"`
	ImageRef       string  `json:"imageRef,omitempty"`
	AvailableStock int     `json:"availableStock,omitempty"`
	MinStock       int     `json:"minStock,omitempty"`
	Active         bool    `json:"active"`
	Subtotal       float64 `json:"subtotal"`
}

// CartState is the in-memory cart a session renders from. Total and
// ItemCount are always recomputed from Lines, never stored independently.
type CartState struct {
	Lines     []CartLine `json:"lines"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"itemCount"`
	Loading   bool       `json:"loading"`
	Error     string     `json:"error,omitempty"`
}

// CartSummary carries totals without line detail.
type CartSummary struct {
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

// CheckoutResult is the upstream checkout response, passed through opaque.
type CheckoutResult map[string]interface{}
