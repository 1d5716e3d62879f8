package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const timeLayout = "2006-01-02T15:04"

// Segment is one leg of an itinerary. Arrival before departure is allowed
// here; it is screened out by the filtering rules.
type Segment struct {
	Departure time.Time `json:"departure"`
	Arrival   time.Time `json:"arrival"`
}

func NewSegment(departure, arrival time.Time) Segment {
	return Segment{Departure: departure, Arrival: arrival}
}

func (s Segment) String() string {
	return fmt.Sprintf("[%s|%s]", s.Departure.Format(timeLayout), s.Arrival.Format(timeLayout))
}

// Itinerary is an ordered, non-empty sequence of segments.
type Itinerary struct {
	ID       string    `json:"id"`
	Segments []Segment `json:"segments"`
}

// NewItinerary copies segments so the itinerary owns its sequence.
func NewItinerary(segments ...Segment) Itinerary {
	return NewItineraryWithID(uuid.NewString(), segments...)
}

func NewItineraryWithID(id string, segments ...Segment) Itinerary {
	owned := make([]Segment, len(segments))
	copy(owned, segments)

	return Itinerary{ID: id, Segments: owned}
}

// FirstDeparture reports false for an itinerary without segments.
func (it Itinerary) FirstDeparture() (time.Time, bool) {
	if len(it.Segments) == 0 {
		return time.Time{}, false
	}
	return it.Segments[0].Departure, true
}

func (it Itinerary) String() string {
	parts := make([]string, 0, len(it.Segments))
	for _, s := range it.Segments {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, " ")
}
