package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

func TestItinerariesKey_Normalizes(t *testing.T) {
	if got := itinerariesKey("  Travelpayouts "); got != "itineraries:travelpayouts" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestDecodeItineraries(t *testing.T) {
	got, err := decodeItineraries([]byte(`[{"id":"A","segments":[{"departure":"2026-10-21T10:00:00Z","arrival":"2026-10-21T12:00:00Z"}]}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "A" || len(got[0].Segments) != 1 {
		t.Fatalf("unexpected itineraries: %+v", got)
	}
	if want := time.Date(2026, 10, 21, 12, 0, 0, 0, time.UTC); !got[0].Segments[0].Arrival.Equal(want) {
		t.Fatalf("unexpected arrival: got %s want %s", got[0].Segments[0].Arrival, want)
	}

	if _, err := decodeItineraries([]byte(`{`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestSetItineraries_SkipsNonPositiveTTL(t *testing.T) {
	// The client is never dialed when ttl disables caching.
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	repo := NewItineraryCacheRepository(client)
	if err := repo.SetItineraries(context.Background(), "sample", nil, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
