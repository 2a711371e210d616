package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ridepool/ridepool-backend/internal/models"
	"github.com/ridepool/ridepool-backend/internal/services"
	"github.com/ridepool/ridepool-backend/internal/store"
)

type geoPointInput struct {
	Label string   `json:"label"`
	Lng   *float64 `json:"lng" binding:"required"`
	Lat   *float64 `json:"lat" binding:"required"`
}

func (in *geoPointInput) toPoint() models.GeoPoint {
	return models.GeoPoint{Label: in.Label, Lng: *in.Lng, Lat: *in.Lat}
}

// CreateRide handles the creation of a new ride by a driver
func CreateRide(rides store.RideStore, notifier services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			SeatsTotal     int           `json:"seatsTotal" binding:"required"`
			SeatsAvailable *int          `json:"seatsAvailable"`
			Pickup         geoPointInput `json:"pickup" binding:"required"`
			Dropoff        geoPointInput `json:"dropoff" binding:"required"`
			DepartAt       time.Time     `json:"departAt" binding:"required"`
			ReturnAt       *time.Time    `json:"returnAt"`
			Price          float64       `json:"price"`
			Notes          string        `json:"notes"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		seatsAvailable := input.SeatsTotal
		if input.SeatsAvailable != nil {
			seatsAvailable = *input.SeatsAvailable
		}

		pickup := input.Pickup.toPoint()
		dropoff := input.Dropoff.toPoint()
		switch {
		case input.SeatsTotal < 1,
			seatsAvailable < 0,
			seatsAvailable > input.SeatsTotal,
			input.Price < 0,
			!pickup.Valid(),
			!dropoff.Valid():
			c.JSON(400, gin.H{"error": "Invalid ride payload"})
			return
		}

		ride := models.Ride{
			DriverID:       userId,
			SeatsTotal:     input.SeatsTotal,
			SeatsAvailable: seatsAvailable,
			Pickup:         pickup,
			Dropoff:        dropoff,
			DepartAt:       input.DepartAt,
			ReturnAt:       input.ReturnAt,
			Price:          input.Price,
			Notes:          input.Notes,
		}

		if err := rides.Create(c.Request.Context(), &ride); err != nil {
			c.JSON(500, gin.H{"error": "Failed to create ride"})
			return
		}

		notifier.Publish(services.TopicRideNew, ride)
		c.JSON(201, ride)
	}
}

// GetMyRides retrieves all rides created by the authenticated driver,
// newest first.
func GetMyRides(rides store.RideStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		out, err := rides.ByDriver(c.Request.Context(), userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		c.JSON(200, out)
	}
}

// UpdateRide applies a partial, owner-only edit. Absent fields keep their
// current values.
func UpdateRide(rides store.RideStore, notifier services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		rideID, err := parseID(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		ride, err := rides.FindByID(c.Request.Context(), rideID)
		if err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if ride.DriverID != userId {
			c.JSON(403, gin.H{"error": "Not your ride"})
			return
		}

		var input struct {
			SeatsTotal     *int           `json:"seatsTotal"`
			SeatsAvailable *int           `json:"seatsAvailable"`
			Pickup         *geoPointInput `json:"pickup"`
			Dropoff        *geoPointInput `json:"dropoff"`
			DepartAt       *time.Time     `json:"departAt"`
			ReturnAt       *time.Time     `json:"returnAt"`
			Price          *float64       `json:"price"`
			Notes          *string        `json:"notes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.SeatsTotal != nil {
			ride.SeatsTotal = *input.SeatsTotal
		}
		if input.SeatsAvailable != nil {
			ride.SeatsAvailable = *input.SeatsAvailable
		}
		if input.Pickup != nil {
			ride.Pickup = input.Pickup.toPoint()
		}
		if input.Dropoff != nil {
			ride.Dropoff = input.Dropoff.toPoint()
		}
		if input.DepartAt != nil {
			ride.DepartAt = *input.DepartAt
		}
		if input.ReturnAt != nil {
			ride.ReturnAt = input.ReturnAt
		}
		if input.Price != nil {
			ride.Price = *input.Price
		}
		if input.Notes != nil {
			ride.Notes = *input.Notes
		}

		if ride.SeatsTotal < 1 || ride.SeatsAvailable < 0 || ride.SeatsAvailable > ride.SeatsTotal ||
			ride.Price < 0 || !ride.Pickup.Valid() || !ride.Dropoff.Valid() {
			c.JSON(400, gin.H{"error": "Invalid ride payload"})
			return
		}

		if err := rides.Save(c.Request.Context(), ride); err != nil {
			c.JSON(500, gin.H{"error": "Failed to update ride"})
			return
		}

		notifier.Publish(services.TopicRideUpdate, ride)
		c.JSON(200, ride)
	}
}

// DeleteRide removes a ride permanently. Only the owning driver may do it.
func DeleteRide(rides store.RideStore, notifier services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		rideID, err := parseID(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		ride, err := rides.FindByID(c.Request.Context(), rideID)
		if err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if ride.DriverID != userId {
			c.JSON(403, gin.H{"error": "Not your ride"})
			return
		}

		if err := rides.Delete(c.Request.Context(), rideID); err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete ride"})
			return
		}

		notifier.Publish(services.TopicRideUpdate, gin.H{"rideId": rideID, "deleted": true})
		c.JSON(200, gin.H{"message": "Ride deleted"})
	}
}

// SearchRides finds rides compatible with the rider's points, departure
// window, and seat count. Points arrive as "lng,lat" query parameters.
func SearchRides(matcher *services.Matcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params services.SearchParams

		if raw := c.Query("pickup"); raw != "" {
			p, err := parseLngLat(raw)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid pickup (lng,lat)"})
				return
			}
			params.Pickup = p
		}
		if raw := c.Query("dropoff"); raw != "" {
			p, err := parseLngLat(raw)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid dropoff (lng,lat)"})
				return
			}
			params.Dropoff = p
		}
		if raw := c.Query("radiusKm"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid radiusKm"})
				return
			}
			params.RadiusKm = v
		}
		if raw := c.Query("departAt"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid departAt"})
				return
			}
			params.DepartAt = &t
		}
		if raw := c.Query("windowMin"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid windowMin"})
				return
			}
			params.WindowMin = &v
		}
		if raw := c.Query("minSeats"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid minSeats"})
				return
			}
			params.MinSeats = v
		}

		rides, err := matcher.Search(c.Request.Context(), params)
		if err != nil {
			abortWithError(c, err)
			return
		}

		// Empty is a valid outcome; keep the JSON an array, not null.
		if rides == nil {
			rides = []models.Ride{}
		}
		c.JSON(200, rides)
	}
}

func parseLngLat(raw string) (*models.GeoPoint, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected lng,lat")
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, err
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, err
	}
	return &models.GeoPoint{Lng: lng, Lat: lat}, nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
