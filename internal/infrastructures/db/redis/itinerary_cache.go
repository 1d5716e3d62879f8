package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	derr "github.com/ozzus/flight-filter/internal/domain/errors"
	"github.com/ozzus/flight-filter/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

type ItineraryCacheRepository struct {
	redis *redis.Client
}

func NewItineraryCacheRepository(redisClient *redis.Client) *ItineraryCacheRepository {
	return &ItineraryCacheRepository{redis: redisClient}
}

func (r *ItineraryCacheRepository) GetItineraries(ctx context.Context, key string) ([]models.Itinerary, error) {
	data, err := r.redis.Get(ctx, itinerariesKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, derr.ErrItinerariesNotFound
		}
		return nil, fmt.Errorf("redis get itineraries: %w", err)
	}

	return decodeItineraries([]byte(data))
}

func (r *ItineraryCacheRepository) SetItineraries(ctx context.Context, key string, itineraries []models.Itinerary, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(itineraries)
	if err != nil {
		return fmt.Errorf("marshal itineraries for cache: %w", err)
	}

	if err := r.redis.Set(ctx, itinerariesKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set itineraries: %w", err)
	}

	return nil
}

func decodeItineraries(data []byte) ([]models.Itinerary, error) {
	var payload []models.Itinerary
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal cached itineraries: %w", err)
	}
	return payload, nil
}

func itinerariesKey(key string) string {
	return fmt.Sprintf("itineraries:%s", strings.ToLower(strings.TrimSpace(key)))
}
