package ports

import (
	"context"
	"time"

	"github.com/ozzus/flight-filter/internal/domain/models"
)

type ItinerarySource interface {
	Itineraries(ctx context.Context) ([]models.Itinerary, error)
}

type ResultSink interface {
	Write(ctx context.Context, title string, itineraries []models.Itinerary) error
}

type ItineraryCache interface {
	GetItineraries(ctx context.Context, key string) ([]models.Itinerary, error)
	SetItineraries(ctx context.Context, key string, itineraries []models.Itinerary, ttl time.Duration) error
}
