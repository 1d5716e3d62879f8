package sample

import (
	"context"
	"time"

	"github.com/ozzus/flight-filter/internal/domain/models"
)

// Source builds a fixed demo batch relative to the clock: two valid
// itineraries followed by one of each kind the pipeline rejects.
type Source struct {
	clock func() time.Time
}

func NewSource(clock func() time.Time) *Source {
	if clock == nil {
		clock = time.Now
	}
	return &Source{clock: clock}
}

func (s *Source) Itineraries(ctx context.Context) ([]models.Itinerary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := s.clock().Add(72 * time.Hour)
	h := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }

	return []models.Itinerary{
		// A normal flight with two hour duration
		build("normal-2h", base, h(2)),
		// A normal multi segment flight
		build("normal-multi", base, h(2), h(3), h(5)),
		// A flight departing in the past
		build("past-departure", base.AddDate(0, 0, -6), base),
		// A flight that departs before it arrives
		build("arrives-before-departs", base, h(-6)),
		// A flight with more than two hours ground time
		build("ground-3h", base, h(2), h(5), h(6)),
		// Another flight with more than two hours ground time
		build("ground-3h-multi", base, h(2), h(3), h(4), h(6), h(7)),
	}, nil
}

func build(id string, dates ...time.Time) models.Itinerary {
	segments := make([]models.Segment, 0, len(dates)/2)
	for i := 0; i+1 < len(dates); i += 2 {
		segments = append(segments, models.NewSegment(dates[i], dates[i+1]))
	}
	return models.NewItineraryWithID(id, segments...)
}
