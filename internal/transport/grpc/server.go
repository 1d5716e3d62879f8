package grpc

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/ozzus/flight-filter/internal/application/service"
	derr "github.com/ozzus/flight-filter/internal/domain/errors"
	"github.com/ozzus/flight-filter/internal/domain/models"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maxGroundTimeHours is the largest cap representable as a time.Duration.
const maxGroundTimeHours = int64(math.MaxInt64 / int64(time.Hour))

type serverAPI struct {
	log     *zap.Logger
	service *service.FilterService
}

func Register(gRPCServer *grpc.Server, log *zap.Logger, filterService *service.FilterService) {
	if log == nil {
		log = zap.NewNop()
	}
	gRPCServer.RegisterService(&flightFilterServiceDesc, &serverAPI{
		log:     log,
		service: filterService,
	})
}

func (s *serverAPI) Filter(ctx context.Context, req *FilterRequest) (*FilterResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.UseSource && len(req.Itineraries) > 0 {
		return nil, status.Error(codes.InvalidArgument, "itineraries must be empty when use_source is set")
	}

	itineraries, err := toModels(req.Itineraries)
	if err != nil {
		s.log.Warn("validation failed", zap.Error(err))
		return nil, err
	}

	svcReq := service.FilterRequest{
		Itineraries: itineraries,
		UseSource:   req.UseSource,
	}

	if strings.TrimSpace(req.NowUTC) != "" {
		now, err := parseInstant(req.NowUTC)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "now_utc must be RFC3339")
		}
		svcReq.Now = &now
	}

	if req.MaxGroundTimeHours != nil {
		if *req.MaxGroundTimeHours < 0 {
			return nil, status.Error(codes.InvalidArgument, "max_ground_time_hours must not be negative")
		}
		if *req.MaxGroundTimeHours > maxGroundTimeHours {
			return nil, status.Errorf(codes.InvalidArgument, "max_ground_time_hours must not exceed %d", maxGroundTimeHours)
		}
		maxGroundTime := time.Duration(*req.MaxGroundTimeHours) * time.Hour
		svcReq.MaxGroundTime = &maxGroundTime
	}

	result, err := s.service.Filter(ctx, svcReq)
	if err != nil {
		return nil, mapFilterError(err)
	}

	resp := &FilterResponse{
		NowUTC:      result.Now.UTC().Format(time.RFC3339Nano),
		Itineraries: fromModels(result.Itineraries),
		Stages:      make([]StageStat, 0, len(result.Stages)),
	}
	for _, stage := range result.Stages {
		resp.Stages = append(resp.Stages, StageStat{
			Stage: stage.Stage,
			In:    int32(stage.In),
			Out:   int32(stage.Out),
		})
	}

	return resp, nil
}

func toModels(in []Itinerary) ([]models.Itinerary, error) {
	out := make([]models.Itinerary, 0, len(in))
	for i, it := range in {
		if len(it.Segments) == 0 {
			return nil, status.Errorf(codes.InvalidArgument, "itineraries[%d].segments must not be empty", i)
		}

		segments := make([]models.Segment, 0, len(it.Segments))
		for j, seg := range it.Segments {
			departure, err := parseInstant(seg.DepartureUTC)
			if err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "itineraries[%d].segments[%d].departure_utc must be RFC3339", i, j)
			}
			arrival, err := parseInstant(seg.ArrivalUTC)
			if err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "itineraries[%d].segments[%d].arrival_utc must be RFC3339", i, j)
			}
			segments = append(segments, models.NewSegment(departure, arrival))
		}

		if strings.TrimSpace(it.ID) == "" {
			out = append(out, models.NewItinerary(segments...))
			continue
		}
		out = append(out, models.NewItineraryWithID(it.ID, segments...))
	}
	return out, nil
}

func fromModels(in []models.Itinerary) []Itinerary {
	out := make([]Itinerary, 0, len(in))
	for _, it := range in {
		segments := make([]Segment, 0, len(it.Segments))
		for _, seg := range it.Segments {
			segments = append(segments, Segment{
				DepartureUTC: seg.Departure.UTC().Format(time.RFC3339Nano),
				ArrivalUTC:   seg.Arrival.UTC().Format(time.RFC3339Nano),
			})
		}
		out = append(out, Itinerary{ID: it.ID, Segments: segments})
	}
	return out
}

func parseInstant(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func mapFilterError(err error) error {
	switch {
	case errors.Is(err, derr.ErrInvalidItinerary), errors.Is(err, derr.ErrInvalidGroundTimeCap):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, derr.ErrItinerariesNotFound):
		return status.Error(codes.NotFound, "itineraries not found")
	case errors.Is(err, derr.ErrUnknownSource):
		return status.Error(codes.FailedPrecondition, "itinerary source is not configured")
	case errors.Is(err, derr.ErrSourceTemporary):
		return status.Error(codes.Unavailable, "source temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
