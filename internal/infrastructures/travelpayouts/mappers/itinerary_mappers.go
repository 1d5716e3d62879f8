package mappers

import (
	"fmt"
	"strings"
	"time"

	"github.com/ozzus/flight-filter/internal/domain/models"
	"github.com/ozzus/flight-filter/internal/infrastructures/travelpayouts/dto"
)

// ToItineraries maps offers to single segment itineraries. Offers without a
// parseable departure or a positive duration are skipped.
func ToItineraries(data []dto.PriceForDateItem) []models.Itinerary {
	itineraries := make([]models.Itinerary, 0, len(data))
	for _, item := range data {
		departure, ok := parseTime(item.DepartureAt)
		if !ok {
			continue
		}

		duration := item.DurationTo
		if duration <= 0 {
			duration = item.Duration
		}
		if duration <= 0 {
			continue
		}

		segment := models.NewSegment(departure, departure.Add(time.Duration(duration)*time.Minute))
		if id := itineraryID(item); id != "" {
			itineraries = append(itineraries, models.NewItineraryWithID(id, segment))
			continue
		}
		itineraries = append(itineraries, models.NewItinerary(segment))
	}

	return itineraries
}

func itineraryID(item dto.PriceForDateItem) string {
	airline := strings.ToUpper(strings.TrimSpace(item.Airline))
	number := strings.TrimSpace(item.FlightNumber)
	if airline == "" || number == "" {
		return ""
	}
	return fmt.Sprintf("%s%s@%s", airline, number, strings.TrimSpace(item.DepartureAt))
}

func parseTime(value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}
