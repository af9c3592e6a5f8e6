package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func guestSessionHandler(sessions SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, guestID, err := sessions.IssueGuest()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "could not issue guest session")
			return
		}
		respondData(c, http.StatusCreated, gin.H{
			"token":     token,
			"guestId":   guestID,
			"expiresIn": sessions.TTLSeconds(),
		})
	}
}
