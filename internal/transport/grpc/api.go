package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	serviceName      = "flightfilter.v1.FlightFilterService"
	FilterFullMethod = "/" + serviceName + "/Filter"
)

type Segment struct {
	DepartureUTC string `json:"departure_utc"`
	ArrivalUTC   string `json:"arrival_utc"`
}

type Itinerary struct {
	ID       string    `json:"id"`
	Segments []Segment `json:"segments"`
}

type FilterRequest struct {
	Itineraries        []Itinerary `json:"itineraries,omitempty"`
	UseSource          bool        `json:"use_source,omitempty"`
	NowUTC             string      `json:"now_utc,omitempty"`
	MaxGroundTimeHours *int64      `json:"max_ground_time_hours,omitempty"`
}

type StageStat struct {
	Stage string `json:"stage"`
	In    int32  `json:"in"`
	Out   int32  `json:"out"`
}

type FilterResponse struct {
	NowUTC      string      `json:"now_utc"`
	Itineraries []Itinerary `json:"itineraries"`
	Stages      []StageStat `json:"stages"`
}

func (r *FilterRequest) ItineraryCount() int {
	if r == nil {
		return 0
	}
	return len(r.Itineraries)
}

func (r *FilterResponse) ItineraryCount() int {
	if r == nil {
		return 0
	}
	return len(r.Itineraries)
}

type FlightFilterServiceServer interface {
	Filter(ctx context.Context, req *FilterRequest) (*FilterResponse, error)
}

// flightFilterServiceDesc has no proto file behind it, so server reflection
// lists the service name but cannot describe its messages.
var flightFilterServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*FlightFilterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Filter",
			Handler:    filterHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

func filterHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(FilterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightFilterServiceServer).Filter(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: FilterFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FlightFilterServiceServer).Filter(ctx, req.(*FilterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the service over a connection using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Filter(ctx context.Context, req *FilterRequest, opts ...grpc.CallOption) (*FilterResponse, error) {
	out := new(FilterResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FilterFullMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
