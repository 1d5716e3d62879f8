package filter

import (
	"time"

	"github.com/ozzus/flight-filter/internal/domain/models"
)

const DefaultMaxGroundTime = 2 * time.Hour

const (
	StagePastDepartures         = "past_departures"
	StageArrivalBeforeDeparture = "arrival_before_departure"
	StageExcessiveGroundTime    = "excessive_ground_time"
)

// Rule selects a subset of itineraries. Survivors keep their relative order.
type Rule func(itineraries []models.Itinerary) []models.Itinerary

type NamedRule struct {
	Name  string
	Apply Rule
}

func PastDepartures(now time.Time) Rule {
	return func(itineraries []models.Itinerary) []models.Itinerary {
		return FilterPastDepartures(itineraries, now)
	}
}

func ArrivalBeforeDeparture() Rule {
	return FilterArrivalBeforeDeparture
}

func ExcessiveGroundTime(maxGroundTime time.Duration) Rule {
	return func(itineraries []models.Itinerary) []models.Itinerary {
		return FilterExcessiveGroundTime(itineraries, maxGroundTime)
	}
}

// FilterPastDepartures keeps itineraries whose first segment departs strictly after now.
func FilterPastDepartures(itineraries []models.Itinerary, now time.Time) []models.Itinerary {
	return selectWhere(itineraries, func(it models.Itinerary) bool {
		departure, ok := it.FirstDeparture()
		return ok && departure.After(now)
	})
}

// FilterArrivalBeforeDeparture drops itineraries with any segment arriving
// strictly before it departs. Arrival equal to departure is valid.
func FilterArrivalBeforeDeparture(itineraries []models.Itinerary) []models.Itinerary {
	return selectWhere(itineraries, func(it models.Itinerary) bool {
		for _, s := range it.Segments {
			if s.Arrival.Before(s.Departure) {
				return false
			}
		}
		return true
	})
}

// FilterExcessiveGroundTime keeps itineraries whose total ground time, summed
// in whole hours per gap, does not exceed maxGroundTime.
func FilterExcessiveGroundTime(itineraries []models.Itinerary, maxGroundTime time.Duration) []models.Itinerary {
	return selectWhere(itineraries, func(it models.Itinerary) bool {
		return time.Duration(GroundTimeHours(it))*time.Hour <= maxGroundTime
	})
}

// GroundTimeHours sums the gaps between adjacent segments. Each gap is
// truncated to whole hours before summing, so 1h59m counts as 1.
// Negative gaps are summed as-is.
func GroundTimeHours(it models.Itinerary) int64 {
	var total int64
	for i := 0; i+1 < len(it.Segments); i++ {
		gap := it.Segments[i+1].Departure.Sub(it.Segments[i].Arrival)
		total += int64(gap / time.Hour)
	}
	return total
}

func selectWhere(itineraries []models.Itinerary, keep func(models.Itinerary) bool) []models.Itinerary {
	result := make([]models.Itinerary, 0, len(itineraries))
	for _, it := range itineraries {
		if keep(it) {
			result = append(result, it)
		}
	}
	return result
}
