package models

import (
	"time"
)

// Review lives in the document store. The (userId, listingType, listingId)
// triple is unique; bookingId is stored but never validated so reviews
// survive booking deletion.
type Review struct {
	ID          string                 `json:"id" bson:"_id,omitempty"`
	UserID      string                 `json:"userId" bson:"user_id"`
	ListingType string                 `json:"listingType" bson:"listing_type"`
	ListingID   string                 `json:"listingId" bson:"listing_id"`
	BookingID   string                 `json:"bookingId,omitempty" bson:"booking_id,omitempty"`
	Rating      int                    `json:"rating" bson:"rating"`
	Title       string                 `json:"title,omitempty" bson:"title,omitempty"`
	Comment     string                 `json:"comment,omitempty" bson:"comment,omitempty"`
	StayDate    *time.Time             `json:"stayDate,omitempty" bson:"stay_date,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time              `json:"updatedAt" bson:"updated_at"`
}

// CreateReviewRequest is the payload for POST /api/reviews
type CreateReviewRequest struct {
	ListingType string                 `json:"listingType"`
	ListingID   string                 `json:"listingId"`
	BookingID   string                 `json:"bookingId"`
	Rating      int                    `json:"rating"`
	Title       string                 `json:"title"`
	Comment     string                 `json:"comment"`
	StayDate    *time.Time             `json:"stayDate"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// ReviewListQuery is the raw query string for GET /api/reviews
type ReviewListQuery struct {
	ListingType string `form:"listingType"`
	ListingID   string `form:"listingId"`
	My          string `form:"my"`
	Limit       string `form:"limit"`
	Offset      string `form:"offset"`
}

// ReviewFilter narrows review listings.
type ReviewFilter struct {
	ListingType string
	ListingID   string
	UserID      string
	Limit       int
	Offset      int
}

// RatingBucket is one bar of a review distribution.
type RatingBucket struct {
	Rating     int     `json:"rating"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ReviewDistribution aggregates ratings for one listing. AverageRating is
// null when the listing has no reviews.
type ReviewDistribution struct {
	ListingType   string         `json:"listingType"`
	ListingID     string         `json:"listingId"`
	TotalReviews  int64          `json:"totalReviews"`
	AverageRating *float64       `json:"averageRating"`
	Buckets       []RatingBucket `json:"buckets"`
}
