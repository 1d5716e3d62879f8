package filter

import (
	"fmt"
	"time"

	derr "github.com/ozzus/flight-filter/internal/domain/errors"
	"github.com/ozzus/flight-filter/internal/domain/models"
)

// Filter is anything that can filter a sequence of itineraries.
type Filter interface {
	Filter(itineraries []models.Itinerary) ([]models.Itinerary, error)
}

type Clock func() time.Time

type StageObserver func(stage string, in, out int)

type Option func(*Pipeline)

func WithStageObserver(observer StageObserver) Option {
	return func(p *Pipeline) {
		p.observer = observer
	}
}

// Pipeline applies past departures, arrival before departure and excessive
// ground time, in that order. Ground time is only computed over itineraries
// whose segments are already known to be well formed.
type Pipeline struct {
	clock         Clock
	maxGroundTime time.Duration
	observer      StageObserver
}

var _ Filter = (*Pipeline)(nil)

func NewPipeline(clock Clock, maxGroundTime time.Duration, opts ...Option) *Pipeline {
	if clock == nil {
		clock = time.Now
	}

	p := &Pipeline{
		clock:         clock,
		maxGroundTime: maxGroundTime,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Filter samples the clock once, so every itinerary in the batch is judged
// against the same instant. A batch containing an itinerary without
// segments fails as a whole.
func (p *Pipeline) Filter(itineraries []models.Itinerary) ([]models.Itinerary, error) {
	const op = "filter.Pipeline.Filter"

	if p.maxGroundTime < 0 {
		return nil, fmt.Errorf("%s: %w", op, derr.ErrInvalidGroundTimeCap)
	}
	if err := Validate(itineraries); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := p.clock()
	stages := []NamedRule{
		{Name: StagePastDepartures, Apply: PastDepartures(now)},
		{Name: StageArrivalBeforeDeparture, Apply: ArrivalBeforeDeparture()},
		{Name: StageExcessiveGroundTime, Apply: ExcessiveGroundTime(p.maxGroundTime)},
	}

	result := itineraries
	for _, stage := range stages {
		in := len(result)
		result = stage.Apply(result)
		if p.observer != nil {
			p.observer(stage.Name, in, len(result))
		}
	}

	return result, nil
}

func Validate(itineraries []models.Itinerary) error {
	for i, it := range itineraries {
		if len(it.Segments) == 0 {
			return fmt.Errorf("itinerary %d (%s): %w", i, it.ID, derr.ErrInvalidItinerary)
		}
	}
	return nil
}
