package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ozzus/flight-filter/internal/application/filter"
	derr "github.com/ozzus/flight-filter/internal/domain/errors"
	"github.com/ozzus/flight-filter/internal/domain/models"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func flight(id string, dates ...time.Time) models.Itinerary {
	segments := make([]models.Segment, 0, len(dates)/2)
	for i := 0; i+1 < len(dates); i += 2 {
		segments = append(segments, models.NewSegment(dates[i], dates[i+1]))
	}
	return models.NewItineraryWithID(id, segments...)
}

func h(n int) time.Time { return testNow.Add(time.Duration(n) * time.Hour) }

func testBatch() []models.Itinerary {
	return []models.Itinerary{
		flight("A", h(1), h(3)),
		flight("B", h(-1), h(1)),
		flight("C", h(1), h(2), h(4), h(1)),
		flight("D", h(1), h(2), h(5), h(6)),
		flight("E", h(1), h(2), h(3), h(4)),
	}
}

type testSource struct {
	itineraries []models.Itinerary
	err         error
	calls       int
}

func (s *testSource) Itineraries(ctx context.Context) ([]models.Itinerary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.itineraries, nil
}

type testCache struct {
	getResult []models.Itinerary
	getErr    error
	setCalls  int
	setTTL    time.Duration
}

func (c *testCache) GetItineraries(ctx context.Context, key string) ([]models.Itinerary, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.getResult, nil
}

func (c *testCache) SetItineraries(ctx context.Context, key string, itineraries []models.Itinerary, ttl time.Duration) error {
	c.setCalls++
	c.setTTL = ttl
	return nil
}

type sinkWrite struct {
	title string
	ids   []string
}

type testSink struct {
	writes []sinkWrite
}

func (s *testSink) Write(ctx context.Context, title string, itineraries []models.Itinerary) error {
	ids := make([]string, 0, len(itineraries))
	for _, it := range itineraries {
		ids = append(ids, it.ID)
	}
	s.writes = append(s.writes, sinkWrite{title: title, ids: ids})
	return nil
}

func newTestService(source *testSource, cache *testCache, sink *testSink) *FilterService {
	settings := Settings{
		SourceKey:     "sample",
		CacheTTL:      time.Minute,
		MaxGroundTime: filter.DefaultMaxGroundTime,
		Clock:         testClock,
	}

	svc := NewFilterService(zap.NewNop(), source, nil, nil, settings)
	if cache != nil {
		svc.cache = cache
	}
	if sink != nil {
		svc.sink = sink
	}
	return svc
}

func TestFilter_ReturnsSurvivorsAndStages(t *testing.T) {
	svc := newTestService(&testSource{}, nil, nil)

	got, err := svc.Filter(context.Background(), FilterRequest{Itineraries: testBatch()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Itineraries) != 2 || got.Itineraries[0].ID != "A" || got.Itineraries[1].ID != "E" {
		t.Fatalf("unexpected survivors: %v", got.Itineraries)
	}
	if !got.Now.Equal(testNow) {
		t.Fatalf("unexpected now: %s", got.Now)
	}
	want := []StageStat{
		{Stage: filter.StagePastDepartures, In: 5, Out: 4},
		{Stage: filter.StageArrivalBeforeDeparture, In: 4, Out: 3},
		{Stage: filter.StageExcessiveGroundTime, In: 3, Out: 2},
	}
	if len(got.Stages) != len(want) {
		t.Fatalf("unexpected stages: %+v", got.Stages)
	}
	for i := range want {
		if got.Stages[i] != want[i] {
			t.Fatalf("unexpected stage %d: got %+v want %+v", i, got.Stages[i], want[i])
		}
	}
}

func TestFilter_Overrides(t *testing.T) {
	svc := newTestService(&testSource{}, nil, nil)
	now := h(-2)
	maxGroundTime := 3 * time.Hour

	got, err := svc.Filter(context.Background(), FilterRequest{
		Itineraries:   testBatch(),
		Now:           &now,
		MaxGroundTime: &maxGroundTime,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// B departs after the overridden now and D fits the wider ground time cap.
	wantIDs := []string{"A", "B", "D", "E"}
	if len(got.Itineraries) != len(wantIDs) {
		t.Fatalf("unexpected survivors: %v", got.Itineraries)
	}
	for i, id := range wantIDs {
		if got.Itineraries[i].ID != id {
			t.Fatalf("unexpected survivor %d: got %s want %s", i, got.Itineraries[i].ID, id)
		}
	}
}

func TestFilter_ZeroMaxGroundTimeIsApplied(t *testing.T) {
	svc := NewFilterService(zap.NewNop(), &testSource{}, nil, nil, Settings{
		SourceKey:     "sample",
		MaxGroundTime: 0,
		Clock:         testClock,
	})

	got, err := svc.Filter(context.Background(), FilterRequest{Itineraries: testBatch()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// E has one hour of ground time, only the single segment A fits a zero cap.
	if len(got.Itineraries) != 1 || got.Itineraries[0].ID != "A" {
		t.Fatalf("unexpected survivors: %v", got.Itineraries)
	}
}

func TestFilter_InvalidItinerary(t *testing.T) {
	svc := newTestService(&testSource{}, nil, nil)

	_, err := svc.Filter(context.Background(), FilterRequest{
		Itineraries: append(testBatch(), models.Itinerary{ID: "empty"}),
	})
	if !errors.Is(err, derr.ErrInvalidItinerary) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrInvalidItinerary)
	}
}

func TestFilter_UsesSource(t *testing.T) {
	source := &testSource{itineraries: testBatch()}
	svc := newTestService(source, nil, nil)

	got, err := svc.Filter(context.Background(), FilterRequest{UseSource: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected one source call, got %d", source.calls)
	}
	if len(got.Itineraries) != 2 {
		t.Fatalf("unexpected survivors: %v", got.Itineraries)
	}
}

func TestLoadItineraries_UsesCacheHit(t *testing.T) {
	source := &testSource{itineraries: testBatch()}
	cache := &testCache{getResult: []models.Itinerary{flight("cached", h(1), h(2))}}
	svc := newTestService(source, cache, nil)

	got, err := svc.LoadItineraries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "cached" {
		t.Fatalf("unexpected itineraries: %v", got)
	}
	if source.calls != 0 {
		t.Fatalf("source should not be called on cache hit, calls=%d", source.calls)
	}
}

func TestLoadItineraries_CacheMissStoresBatch(t *testing.T) {
	source := &testSource{itineraries: testBatch()}
	cache := &testCache{getErr: derr.ErrItinerariesNotFound}
	svc := newTestService(source, cache, nil)

	got, err := svc.LoadItineraries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("unexpected itineraries count: %d", len(got))
	}
	if cache.setCalls != 1 || cache.setTTL != time.Minute {
		t.Fatalf("unexpected cache writes: calls=%d ttl=%s", cache.setCalls, cache.setTTL)
	}
}

func TestLoadItineraries_CacheFailureFallsBackToSource(t *testing.T) {
	source := &testSource{itineraries: testBatch()}
	cache := &testCache{getErr: errors.New("redis down")}
	svc := newTestService(source, cache, nil)

	if _, err := svc.LoadItineraries(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source call after cache failure, calls=%d", source.calls)
	}
}

func TestLoadItineraries_SourceFailure(t *testing.T) {
	source := &testSource{err: derr.ErrSourceTemporary}
	svc := newTestService(source, nil, nil)

	_, err := svc.LoadItineraries(context.Background())
	if !errors.Is(err, derr.ErrSourceTemporary) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrSourceTemporary)
	}
}

func TestRun_WritesTestSetAndFilteredFlights(t *testing.T) {
	sink := &testSink{}
	svc := newTestService(&testSource{itineraries: testBatch()}, nil, sink)

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.writes) != 2 {
		t.Fatalf("unexpected sink writes: %+v", sink.writes)
	}
	if sink.writes[0].title != TitleTestSet || len(sink.writes[0].ids) != 5 {
		t.Fatalf("unexpected test set write: %+v", sink.writes[0])
	}
	if sink.writes[1].title != TitleFilteredFlights || len(sink.writes[1].ids) != 2 {
		t.Fatalf("unexpected filtered write: %+v", sink.writes[1])
	}
}

func TestRun_WithoutSink(t *testing.T) {
	svc := newTestService(&testSource{itineraries: testBatch()}, nil, nil)

	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error without sink")
	}
}
