package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	cartsvc "cartsync/internal/service/cart"
	"cartsync/internal/session"
)

// SessionService issues and validates session tokens.
type SessionService interface {
	IssueGuest() (token, guestID string, err error)
	Validate(token string) (session.Session, error)
	TTLSeconds() int
}

// CartProvider hands out the per-session cart controller.
type CartProvider interface {
	ControllerFor(sess session.Session) *cartsvc.Controller
}

// Deps carries the collaborators the routes need.
type Deps struct {
	Sessions SessionService
	Carts    CartProvider
	Ready    Pinger
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(corsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready))

	router.POST("/sessions/guest", guestSessionHandler(deps.Sessions))

	authed := router.Group("/", sessionMiddleware(deps.Sessions))
	authed.GET("/cart", loadCartHandler(deps.Carts))
	authed.DELETE("/cart", clearCartHandler(deps.Carts))
	authed.GET("/cart/summary", cartSummaryHandler(deps.Carts))
	authed.POST("/cart/items", addItemHandler(deps.Carts))
	authed.GET("/cart/items/:productId", itemProbeHandler(deps.Carts))
	authed.PUT("/cart/items/:productId", updateItemHandler(deps.Carts))
	authed.DELETE("/cart/items/:productId", removeItemHandler(deps.Carts))
	authed.POST("/cart/checkout", checkoutHandler(deps.Carts))

	return router
}
