package models

import (
	"time"
)

// PropertyRevenue is one row of the top-properties-by-revenue report.
type PropertyRevenue struct {
	ListingType  string  `json:"listingType" db:"listing_type"`
	ListingID    string  `json:"listingId" db:"listing_id"`
	ListingName  string  `json:"listingName" db:"listing_name"`
	Bookings     int     `json:"bookings" db:"bookings"`
	TotalRevenue float64 `json:"totalRevenue" db:"total_revenue"`
	Currency     string  `json:"currency" db:"currency"`
}

// CityRevenue aggregates confirmed revenue attributed to a city across
// hotels, cars and flights.
type CityRevenue struct {
	City         string  `json:"city" db:"city"`
	TotalRevenue float64 `json:"totalRevenue" db:"total_revenue"`
	Bookings     int     `json:"bookings" db:"bookings"`
}

// ProviderStat is one row of the top-providers report.
type ProviderStat struct {
	Provider     string  `json:"provider" db:"provider"`
	ItemType     string  `json:"itemType" db:"item_type"`
	Bookings     int     `json:"bookings" db:"bookings"`
	TotalRevenue float64 `json:"totalRevenue" db:"total_revenue"`
}

// PageClickStat counts clickstream events per (page, eventType).
type PageClickStat struct {
	Page      string `json:"page" bson:"page"`
	EventType string `json:"eventType" bson:"event_type"`
	Count     int64  `json:"count" bson:"count"`
}

// ListingClickStat counts clickstream events per (listingType, listingId).
type ListingClickStat struct {
	ListingType string `json:"listingType" bson:"listing_type"`
	ListingID   string `json:"listingId" bson:"listing_id"`
	Count       int64  `json:"count" bson:"count"`
}

// SessionTrace is one session's ordered page walk within a user trace.
type SessionTrace struct {
	SessionID  string     `json:"sessionId"`
	Pages      []string   `json:"pages"`
	EventCount int        `json:"eventCount"`
	FirstAt    *time.Time `json:"firstAt"`
	LastAt     *time.Time `json:"lastAt"`
}

// UserTrace is the per-user clickstream summary.
type UserTrace struct {
	UserID     string         `json:"userId"`
	EventCount int            `json:"eventCount"`
	Sessions   []SessionTrace `json:"sessions"`
}

// CohortSequence is a page sequence shared by users of a cohort with its
// occurrence count.
type CohortSequence struct {
	Pages []string `json:"pages"`
	Count int      `json:"count"`
}

// CohortTrace is the result of the cohort-by-city analysis.
type CohortTrace struct {
	City         string           `json:"city"`
	UserCount    int              `json:"userCount"`
	SessionCount int              `json:"sessionCount"`
	TopSequences []CohortSequence `json:"topSequences"`
}
