package models

import (
	"time"
)

// Clickstream event types
const (
	EventTypePageView         = "PAGE_VIEW"
	EventTypeClick            = "CLICK"
	EventTypeSearch           = "SEARCH"
	EventTypeBookingStarted   = "BOOKING_STARTED"
	EventTypeBookingCompleted = "BOOKING_COMPLETED"
	EventTypeBookingFailed    = "BOOKING_FAILED"
	EventTypeScroll           = "SCROLL"
	EventTypeCustom           = "CUSTOM"
)

var clickstreamEventTypes = map[string]bool{
	EventTypePageView:         true,
	EventTypeClick:            true,
	EventTypeSearch:           true,
	EventTypeBookingStarted:   true,
	EventTypeBookingCompleted: true,
	EventTypeBookingFailed:    true,
	EventTypeScroll:           true,
	EventTypeCustom:           true,
}

// ValidEventType reports whether t is a recognized clickstream event type
func ValidEventType(t string) bool {
	return clickstreamEventTypes[t]
}

// ClickstreamEvent is a user-interaction record in the document store.
// Events are anonymous unless the caller presented a valid token.
type ClickstreamEvent struct {
	ID           string                 `json:"id" bson:"_id,omitempty"`
	UserID       string                 `json:"userId,omitempty" bson:"user_id,omitempty"`
	SessionID    string                 `json:"sessionId" bson:"session_id"`
	EventType    string                 `json:"eventType" bson:"event_type"`
	Page         string                 `json:"page" bson:"page"`
	Referrer     string                 `json:"referrer,omitempty" bson:"referrer,omitempty"`
	ElementID    string                 `json:"elementId,omitempty" bson:"element_id,omitempty"`
	ElementLabel string                 `json:"elementLabel,omitempty" bson:"element_label,omitempty"`
	ListingType  string                 `json:"listingType,omitempty" bson:"listing_type,omitempty"`
	ListingID    string                 `json:"listingId,omitempty" bson:"listing_id,omitempty"`
	IP           string                 `json:"-" bson:"ip,omitempty"`
	UserAgent    string                 `json:"-" bson:"user_agent,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"createdAt" bson:"created_at"`
}

// TrackEventRequest is the payload for POST /api/analytics/track
type TrackEventRequest struct {
	SessionID    string                 `json:"sessionId"`
	EventType    string                 `json:"eventType"`
	Page         string                 `json:"page"`
	Referrer     string                 `json:"referrer"`
	ElementID    string                 `json:"elementId"`
	ElementLabel string                 `json:"elementLabel"`
	ListingType  string                 `json:"listingType"`
	ListingID    string                 `json:"listingId"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// SessionStats summarizes one browsing session.
type SessionStats struct {
	SessionID  string             `json:"sessionId"`
	EventCount int                `json:"eventCount"`
	ByType     map[string]int     `json:"byType"`
	Pages      []string           `json:"pages"`
	FirstAt    *time.Time         `json:"firstAt"`
	LastAt     *time.Time         `json:"lastAt"`
	Events     []ClickstreamEvent `json:"events"`
}
