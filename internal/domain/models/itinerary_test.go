package models

import (
	"testing"
	"time"
)

func TestNewItinerary_OwnsSegments(t *testing.T) {
	base := time.Date(2026, 10, 21, 10, 0, 0, 0, time.UTC)
	segments := []Segment{NewSegment(base, base.Add(2*time.Hour))}

	it := NewItinerary(segments...)
	segments[0] = NewSegment(base.Add(-time.Hour), base)

	if !it.Segments[0].Departure.Equal(base) {
		t.Fatalf("itinerary segments were aliased: got %s", it.Segments[0].Departure)
	}
	if it.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestFirstDeparture(t *testing.T) {
	base := time.Date(2026, 10, 21, 10, 0, 0, 0, time.UTC)
	it := NewItineraryWithID("A",
		NewSegment(base, base.Add(time.Hour)),
		NewSegment(base.Add(2*time.Hour), base.Add(3*time.Hour)),
	)

	got, ok := it.FirstDeparture()
	if !ok || !got.Equal(base) {
		t.Fatalf("unexpected first departure: %s ok=%v", got, ok)
	}

	if _, ok := (Itinerary{ID: "empty"}).FirstDeparture(); ok {
		t.Fatal("expected no first departure for empty itinerary")
	}
}

func TestItineraryString(t *testing.T) {
	base := time.Date(2026, 10, 21, 10, 0, 0, 0, time.UTC)
	it := NewItineraryWithID("A",
		NewSegment(base, base.Add(2*time.Hour)),
		NewSegment(base.Add(3*time.Hour), base.Add(5*time.Hour)),
	)

	want := "[2026-10-21T10:00|2026-10-21T12:00] [2026-10-21T13:00|2026-10-21T15:00]"
	if got := it.String(); got != want {
		t.Fatalf("unexpected string: got %q want %q", got, want)
	}
}
