package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ozzus/flight-filter/internal/application/filter"
	derr "github.com/ozzus/flight-filter/internal/domain/errors"
	"github.com/ozzus/flight-filter/internal/domain/models"
	"github.com/ozzus/flight-filter/internal/domain/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	TitleTestSet         = "Test set"
	TitleFilteredFlights = "Filtered flights"
)

type Settings struct {
	SourceKey     string
	CacheTTL      time.Duration
	MaxGroundTime time.Duration
	Clock         filter.Clock
}

type FilterRequest struct {
	Itineraries []models.Itinerary
	// UseSource ignores Itineraries and loads the batch from the configured source.
	UseSource     bool
	Now           *time.Time
	MaxGroundTime *time.Duration
}

type StageStat struct {
	Stage string
	In    int
	Out   int
}

type FilterResult struct {
	Now         time.Time
	Itineraries []models.Itinerary
	Stages      []StageStat
}

type FilterService struct {
	log      *zap.Logger
	source   ports.ItinerarySource
	cache    ports.ItineraryCache
	sink     ports.ResultSink
	settings Settings
}

func NewFilterService(log *zap.Logger, source ports.ItinerarySource, cache ports.ItineraryCache, sink ports.ResultSink, settings Settings) *FilterService {
	if log == nil {
		log = zap.NewNop()
	}
	if settings.Clock == nil {
		settings.Clock = time.Now
	}

	return &FilterService{
		log:      log,
		source:   source,
		cache:    cache,
		sink:     sink,
		settings: settings,
	}
}

func (s *FilterService) LoadItineraries(ctx context.Context) ([]models.Itinerary, error) {
	const op = "service.LoadItineraries"
	tracer := otel.Tracer("flight-filter/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("itineraries.source", s.settings.SourceKey))

	logger := s.log.With(
		zap.String("op", op),
		zap.String("source", s.settings.SourceKey),
	)

	if s.source == nil {
		span.SetStatus(otelcodes.Error, "source is not configured")
		return nil, derr.ErrUnknownSource
	}

	if s.cache != nil {
		cached, err := s.cache.GetItineraries(ctx, s.settings.SourceKey)
		if err == nil {
			logger.Info("itineraries cache hit", zap.Int("count", len(cached)))
			span.AddEvent("itineraries.cache.hit")
			return cached, nil
		}
		if errors.Is(err, derr.ErrItinerariesNotFound) {
			logger.Info("itineraries cache miss")
			span.AddEvent("itineraries.cache.miss")
		} else {
			logger.Warn("redis cache read failed", zap.Error(err))
			span.RecordError(err)
		}
	}

	itineraries, err := s.source.Itineraries(ctx)
	if err != nil {
		logger.Warn("failed to load itineraries", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to load itineraries")
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetItineraries(ctx, s.settings.SourceKey, itineraries, s.settings.CacheTTL); err != nil {
			logger.Warn("redis cache write failed", zap.Error(err))
			span.RecordError(err)
		}
	}

	span.SetAttributes(attribute.Int("itineraries.count", len(itineraries)))
	logger.Info("itineraries loaded", zap.Int("count", len(itineraries)))
	return itineraries, nil
}

func (s *FilterService) Filter(ctx context.Context, req FilterRequest) (FilterResult, error) {
	const op = "service.Filter"
	tracer := otel.Tracer("flight-filter/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	logger := s.log.With(zap.String("op", op))

	itineraries := req.Itineraries
	if req.UseSource {
		loaded, err := s.LoadItineraries(ctx)
		if err != nil {
			span.SetStatus(otelcodes.Error, "failed to load itineraries")
			return FilterResult{}, err
		}
		itineraries = loaded
	}

	maxGroundTime := s.settings.MaxGroundTime
	if req.MaxGroundTime != nil {
		maxGroundTime = *req.MaxGroundTime
	}

	now := s.settings.Clock()
	if req.Now != nil {
		now = *req.Now
	}
	span.SetAttributes(
		attribute.Int("filter.input_count", len(itineraries)),
		attribute.String("filter.now", now.UTC().Format(time.RFC3339Nano)),
		attribute.String("filter.max_ground_time", maxGroundTime.String()),
	)

	stages := make([]StageStat, 0, 3)
	pipeline := filter.NewPipeline(
		func() time.Time { return now },
		maxGroundTime,
		filter.WithStageObserver(func(stage string, in, out int) {
			stages = append(stages, StageStat{Stage: stage, In: in, Out: out})
			logger.Info("filter stage applied",
				zap.String("stage", stage),
				zap.Int("in", in),
				zap.Int("out", out),
			)
			span.AddEvent("filter.stage", trace.WithAttributes(
				attribute.String("filter.stage", stage),
				attribute.Int("filter.in", in),
				attribute.Int("filter.out", out),
			))
		}),
	)

	filtered, err := pipeline.Filter(itineraries)
	if err != nil {
		logger.Warn("filter rejected batch", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "filter rejected batch")
		return FilterResult{}, err
	}

	span.SetAttributes(attribute.Int("filter.output_count", len(filtered)))
	span.SetStatus(otelcodes.Ok, "ok")
	logger.Info("itineraries filtered",
		zap.Int("input_count", len(itineraries)),
		zap.Int("output_count", len(filtered)),
	)

	return FilterResult{Now: now, Itineraries: filtered, Stages: stages}, nil
}

// Run loads the configured batch, filters it and reports both the input and
// the survivors to the sink.
func (s *FilterService) Run(ctx context.Context) error {
	const op = "service.Run"

	if s.sink == nil {
		return fmt.Errorf("%s: result sink is not configured", op)
	}

	itineraries, err := s.LoadItineraries(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sink.Write(ctx, TitleTestSet, itineraries); err != nil {
		return fmt.Errorf("%s: write test set: %w", op, err)
	}

	result, err := s.Filter(ctx, FilterRequest{Itineraries: itineraries})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sink.Write(ctx, TitleFilteredFlights, result.Itineraries); err != nil {
		return fmt.Errorf("%s: write filtered flights: %w", op, err)
	}

	return nil
}
