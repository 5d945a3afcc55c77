package models

import (
	"time"
)

// Sort orders accepted by the search endpoints
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// FlightSearchQuery is the raw query string for GET /api/search/flights.
// Everything stays a string until the service parses it, so malformed
// numbers get our error codes instead of a binding failure.
type FlightSearchQuery struct {
	OriginIata      string `form:"originIata"`
	DestinationIata string `form:"destinationIata"`
	DepartureDate   string `form:"departureDate"`
	ReturnDate      string `form:"returnDate"`
	Passengers      string `form:"passengers"`
	PriceMax        string `form:"priceMax"`
	Stops           string `form:"stops"`
	SortBy          string `form:"sortBy"`
	SortOrder       string `form:"sortOrder"`
	Page            string `form:"page"`
	PageSize        string `form:"pageSize"`
}

// HotelSearchQuery is the raw query string for GET /api/search/hotels
type HotelSearchQuery struct {
	City         string `form:"city"`
	CheckInDate  string `form:"checkInDate"`
	CheckOutDate string `form:"checkOutDate"`
	Guests       string `form:"guests"`
	PriceMax     string `form:"priceMax"`
	MinStars     string `form:"minStars"`
	SortBy       string `form:"sortBy"`
	SortOrder    string `form:"sortOrder"`
	Page         string `form:"page"`
	PageSize     string `form:"pageSize"`
}

// CarSearchQuery is the raw query string for GET /api/search/cars
type CarSearchQuery struct {
	PickupLocation  string `form:"pickupLocation"`
	DropoffLocation string `form:"dropoffLocation"`
	PickupDate      string `form:"pickupDate"`
	DropoffDate     string `form:"dropoffDate"`
	PriceMax        string `form:"priceMax"`
	CarType         string `form:"carType"`
	SortBy          string `form:"sortBy"`
	SortOrder       string `form:"sortOrder"`
	Page            string `form:"page"`
	PageSize        string `form:"pageSize"`
}

// FlightSearchParams are the parsed query parameters for GET /api/search/flights
type FlightSearchParams struct {
	OriginIata      string
	DestinationIata string
	DepartureDate   time.Time
	ReturnDate      *time.Time
	Passengers      int
	PriceMax        float64
	Stops           string
	SortBy          string
	SortOrder       string
	Page            int
	PageSize        int
}

// FlightSearchResult is a flight row joined with its origin and destination
// airports for display.
type FlightSearchResult struct {
	Flight
	OriginIata      string `json:"originIata" db:"origin_iata"`
	OriginCity      string `json:"originCity" db:"origin_city"`
	DestinationIata string `json:"destinationIata" db:"destination_iata"`
	DestinationCity string `json:"destinationCity" db:"destination_city"`
}

// HotelSearchParams are the parsed query parameters for GET /api/search/hotels
type HotelSearchParams struct {
	City         string
	CheckInDate  time.Time
	CheckOutDate time.Time
	Guests       int
	PriceMax     float64
	MinStars     int
	SortBy       string
	SortOrder    string
	Page         int
	PageSize     int
}

// CarSearchParams are the parsed query parameters for GET /api/search/cars
type CarSearchParams struct {
	PickupLocation  string
	DropoffLocation string
	PickupDate      time.Time
	DropoffDate     time.Time
	PriceMax        float64
	CarType         string
	SortBy          string
	SortOrder       string
	Page            int
	PageSize        int
}

// SearchPage is the common paginated search response shape.
type SearchPage struct {
	Items    interface{} `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}
