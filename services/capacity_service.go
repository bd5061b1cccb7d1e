package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"whitelotus/models"
	"whitelotus/monitoring"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// soldCacheTTL bounds how stale the cached counter on listing pages can
// get; the purchase path never reads the cache.
const soldCacheTTL = 30 * time.Second

type CapacityService struct {
	app   core.App
	redis *redis.Client
}

func NewCapacityService(app core.App, redisClient *redis.Client) *CapacityService {
	return &CapacityService{app: app, redis: redisClient}
}

// TicketsSold fetches the event's ticket rows and counts the ones that
// hold capacity. Callers on the purchase path must call this immediately
// before deciding, so the count is as fresh as the store allows.
func (s *CapacityService) TicketsSold(ctx context.Context, eventID string) (int, error) {
	records, err := s.app.FindRecordsByFilter(
		"tickets",
		"event = {:event}",
		"",
		0,
		0,
		dbx.Params{"event": eventID},
	)
	if err != nil {
		return 0, fmt.Errorf("capacity: fetch tickets: %w", err)
	}

	sold := models.TicketsSold(models.TicketsFromRecords(records))

	monitoring.SetTicketsSold(eventID, sold)
	if s.redis != nil {
		s.redis.Set(ctx, soldCacheKey(eventID), sold, soldCacheTTL)
	}

	return sold, nil
}

// CachedTicketsSold serves listing pages from the short-lived counter,
// falling back to a fresh count on a miss.
func (s *CapacityService) CachedTicketsSold(ctx context.Context, eventID string) (int, error) {
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, soldCacheKey(eventID)).Result(); err == nil {
			if sold, convErr := strconv.Atoi(val); convErr == nil {
				return sold, nil
			}
		}
	}
	return s.TicketsSold(ctx, eventID)
}

// Availability is the public shape of an event's remaining capacity.
type Availability struct {
	TicketsSold int  `json:"tickets_sold"`
	SoldOut     bool `json:"sold_out"`
	Remaining   *int `json:"remaining"` // nil when unlimited
}

// Availability evaluates an event snapshot against a counted sold total.
func (s *CapacityService) Availability(event models.Event, sold int) Availability {
	a := Availability{
		TicketsSold: sold,
		SoldOut:     event.IsSoldOut(sold),
	}
	if remaining, ok := event.RemainingCapacity(sold); ok {
		a.Remaining = &remaining
	}
	return a
}

func soldCacheKey(eventID string) string {
	return "tickets_sold:" + eventID
}
