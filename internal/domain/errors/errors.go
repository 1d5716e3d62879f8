package errors

import "errors"

var (
	ErrInvalidItinerary     = errors.New("itinerary has no segments")
	ErrInvalidGroundTimeCap = errors.New("max ground time must not be negative")
	ErrItinerariesNotFound  = errors.New("itineraries not found")
	ErrSourceTemporary      = errors.New("temporary source failure")
	ErrUnknownSource        = errors.New("unknown itinerary source")
)
