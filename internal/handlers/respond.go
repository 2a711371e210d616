package handlers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ridepool/ridepool-backend/internal/services"
)

// abortWithError maps the service error taxonomy onto HTTP statuses.
// Unrecognized errors are logged and reported as 500 without leaking
// internals.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidArgument),
		errors.Is(err, services.ErrInvalidOperation):
		c.JSON(400, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(403, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(409, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}
