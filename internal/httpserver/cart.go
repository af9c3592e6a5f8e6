package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	Product  map[string]interface{} `json:"product" binding:"required"`
	Quantity int                    `json:"quantity"`
}

type updateItemRequest struct {
	// Pointer so that an explicit zero (meaning "remove") still binds.
	Quantity *int `json:"quantity" binding:"required"`
}

func loadCartHandler(carts CartProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "session required")
			return
		}
		ctrl := carts.ControllerFor(sess)
		if err := ctrl.Load(c.Request.Context()); err != nil {
			respondError(c, statusForError(err), err.Error())
			return
		}
		respondData(c, http.StatusOK, ctrl.State())
	}
}

func addItemHandler(carts CartProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "session required")
			return
		}
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "product payload required")
			return
		}
		ctrl := carts.ControllerFor(sess)
		if err := ctrl.AddToCart(c.Request.Context(), req.Product, req.Quantity); err != nil {
			respondError(c, statusForError(err), err.Error())
			return
		}
		respondData(c, http.StatusCreated, ctrl.State())
	}
}

func updateItemHandler(carts CartProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "session required")
			return
		}
		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "quantity required")
			return
		}
		ctrl := carts.ControllerFor(sess)
		if err := ctrl.UpdateQuantity(c.Request.Context(), c.Param("productId"), *req.Quantity); err != nil {
			respondError(c, statusForError(err), err.Error())
			return
		}
		respondData(c, http.StatusOK, ctrl.State())
	}
}

func removeItemHandler(carts CartProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "session required")
			return
		}
		ctrl := carts.ControllerFor(sess)
		if err := ctrl.RemoveFromCart(c.Request.Context(), c.Param("productId")); err != nil {
			respondError(c, statusForError(err), err.Error())
			return
		}
		respondData(c, http.StatusOK, ctrl.State())
	}
}

func clearCartHandler(carts CartProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "session required")
			return
		}
		ctrl := carts.ControllerFor(sess)
		if err := ctrl.ClearCart(c.Request.Context()); err != nil {
			respondError(c, statusForError(err), err.Error())
			return
		}
		respondData(c, http.StatusOK, ctrl.State())
	}
}

func cartSummaryHandler(carts CartProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "session required")
			return
		}
		ctrl := carts.ControllerFor(sess)
		summary, err := ctrl.Summary(c.Request.Context())
		if err != nil {
			respondError(c, statusForError(err), err.Error())
			return
		}
		respondData(c, http.StatusOK, summary)
	}
}

func itemProbeHandler(carts CartProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "session required")
			return
		}
		ctrl := carts.ControllerFor(sess)
		productID := c.Param("productId")
		respondData(c, http.StatusOK, gin.H{
			"present":  ctrl.IsInCart(productID),
			"quantity": ctrl.QuantityOf(productID),
		})
	}
}

func checkoutHandler(carts CartProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "session required")
			return
		}
		payload := map[string]interface{}{}
		// Checkout payload is optional and passed through opaque.
		_ = c.ShouldBindJSON(&payload)
		ctrl := carts.ControllerFor(sess)
		result, err := ctrl.Checkout(c.Request.Context(), payload)
		if err != nil {
			respondError(c, statusForError(err), err.Error())
			return
		}
		respondData(c, http.StatusOK, result)
	}
}
