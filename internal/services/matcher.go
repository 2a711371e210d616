package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ridepool/ridepool-backend/internal/models"
	"github.com/ridepool/ridepool-backend/internal/store"
)

const (
	// DefaultRadiusKm bounds the geo query when the caller gives none.
	DefaultRadiusKm = 5.0
	// DefaultWindowMin is the departure window applied to an explicit departAt.
	DefaultWindowMin = 60
	// MaxSearchResults caps every search response.
	MaxSearchResults = 100

	// departLookback widens the default window into the near past so a ride
	// leaving "right now" still shows up.
	departLookback = 10 * time.Minute
)

// SearchParams is the typed search request. Optional fields are pointers;
// zero-valued numerics mean "use the default".
type SearchParams struct {
	Pickup   *models.GeoPoint
	Dropoff  *models.GeoPoint
	RadiusKm float64
	DepartAt *time.Time
	// WindowMin is nil for the default window; an explicit zero means
	// "exactly departAt".
	WindowMin *int
	MinSeats  int
}

// Matcher finds rides compatible with a rider's pickup/dropoff points, time
// window, and seat requirement. Searches are pure reads and safe to run
// concurrently.
type Matcher struct {
	rides store.RideStore
	cache *SearchCache // optional
	log   *slog.Logger
}

func NewMatcher(rides store.RideStore, cache *SearchCache, log *slog.Logger) *Matcher {
	return &Matcher{rides: rides, cache: cache, log: log}
}

// Search validates the parameters, resolves them into a query descriptor,
// executes it, and returns at most MaxSearchResults rides ordered by
// departure time. The pickup point anchors the radius query when given;
// otherwise the dropoff does; with neither, every ride is a candidate. When
// both points are given, the ride's dropoff must additionally lie within
// the same radius of the requested dropoff. An empty result is not an
// error.
func (m *Matcher) Search(ctx context.Context, p SearchParams) ([]models.Ride, error) {
	q, err := resolveQuery(p)
	if err != nil {
		return nil, err
	}

	key := cacheKey(q)
	if m.cache != nil {
		if rides, ok := m.cache.Get(ctx, key); ok {
			return rides, nil
		}
	}

	rides, err := m.rides.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search rides: %w", err)
	}

	// Chronological order, not distance: the product goal is "next ride I
	// can catch". ID breaks ties so repeated searches stay stable.
	sort.Slice(rides, func(i, j int) bool {
		if rides[i].DepartAt.Equal(rides[j].DepartAt) {
			return rides[i].ID < rides[j].ID
		}
		return rides[i].DepartAt.Before(rides[j].DepartAt)
	})
	if len(rides) > MaxSearchResults {
		rides = rides[:MaxSearchResults]
	}

	if m.cache != nil {
		m.cache.Set(ctx, key, rides)
	}
	return rides, nil
}

// resolveQuery turns loosely-optional parameters into a fully-resolved
// store.RideQuery, failing with ErrInvalidArgument on out-of-range input.
func resolveQuery(p SearchParams) (store.RideQuery, error) {
	var q store.RideQuery

	if p.Pickup != nil && !p.Pickup.Valid() {
		return q, fmt.Errorf("%w: pickup coordinates out of range", ErrInvalidArgument)
	}
	if p.Dropoff != nil && !p.Dropoff.Valid() {
		return q, fmt.Errorf("%w: dropoff coordinates out of range", ErrInvalidArgument)
	}

	radiusKm := p.RadiusKm
	if radiusKm == 0 {
		radiusKm = DefaultRadiusKm
	}
	if radiusKm < 0 {
		return q, fmt.Errorf("%w: radiusKm must be positive", ErrInvalidArgument)
	}
	q.RadiusMeters = radiusKm * 1000

	windowMin := DefaultWindowMin
	if p.WindowMin != nil {
		windowMin = *p.WindowMin
	}
	if windowMin < 0 {
		return q, fmt.Errorf("%w: windowMin must not be negative", ErrInvalidArgument)
	}

	if p.DepartAt != nil {
		q.DepartFrom = *p.DepartAt
		to := p.DepartAt.Add(time.Duration(windowMin) * time.Minute)
		q.DepartTo = &to
	} else {
		// No explicit window: rides departing from the near past onward.
		q.DepartFrom = time.Now().Add(-departLookback)
	}

	q.MinSeats = p.MinSeats
	if q.MinSeats == 0 {
		q.MinSeats = 1
	}
	if q.MinSeats < 0 {
		return q, fmt.Errorf("%w: minSeats must be positive", ErrInvalidArgument)
	}

	switch {
	case p.Pickup != nil:
		q.Anchor = store.AnchorPickup
		q.Center = *p.Pickup
		if p.Dropoff != nil {
			q.DropoffNear = p.Dropoff
		}
	case p.Dropoff != nil:
		q.Anchor = store.AnchorDropoff
		q.Center = *p.Dropoff
	default:
		q.Anchor = store.AnchorNone
	}

	return q, nil
}

// cacheKey folds every resolved predicate into the key; two searches that
// could return different rides never share an entry.
func cacheKey(q store.RideQuery) string {
	to := int64(0)
	if q.DepartTo != nil {
		to = q.DepartTo.Unix()
	}
	return fmt.Sprintf("%d:%.6f:%.6f:%.0f:%v:%d:%d:%d",
		q.Anchor, q.Center.Lat, q.Center.Lng, q.RadiusMeters,
		q.DropoffNear, q.MinSeats, q.DepartFrom.Unix(), to)
}
