package dto

type PriceForDateItem struct {
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	Airline      string `json:"airline"`
	FlightNumber string `json:"flight_number"`
	Price        int64  `json:"price"`
	DepartureAt  string `json:"departure_at"`
	DurationTo   int    `json:"duration_to"`
	Duration     int    `json:"duration"`
	Transfers    int    `json:"transfers"`
}

type PriceForDatesResponse struct {
	Success bool               `json:"success"`
	Data    []PriceForDateItem `json:"data"`
}
