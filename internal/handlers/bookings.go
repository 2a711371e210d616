package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ridepool/ridepool-backend/internal/models"
	"github.com/ridepool/ridepool-backend/internal/services"
)

// RequestBooking handles the creation of a new booking by a passenger.
func RequestBooking(svc *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			RideID  uint   `json:"rideId" binding:"required"`
			Seats   int    `json:"seats"`
			Message string `json:"message"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.Seats == 0 {
			input.Seats = 1
		}

		booking, err := svc.Request(c.Request.Context(), input.RideID, userId, input.Seats, input.Message)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(201, booking)
	}
}

// DecideBooking applies the driver's accept/reject decision.
func DecideBooking(svc *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		bookingID, err := parseID(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := svc.Decide(c.Request.Context(), bookingID, userId, models.BookingStatus(input.Status))
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(200, booking)
	}
}

// GetMyBookings retrieves all bookings placed by the authenticated
// passenger.
func GetMyBookings(svc *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		bookings, err := svc.ForPassenger(c.Request.Context(), userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// GetDriverBookings retrieves all bookings placed against the
// authenticated driver's rides.
func GetDriverBookings(svc *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		bookings, err := svc.ForDriver(c.Request.Context(), userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}
