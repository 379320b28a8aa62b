package realtime

import "time"

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

const (
	TableListings         = "listings"
	TableListingImages    = "listing_images"
	TableListingAmenities = "listing_amenities"
	TableInquiries        = "inquiries"
)

// WatchedTables are the tables whose writes are broadcast.
var WatchedTables = []string{TableListings, TableListingImages, TableListingAmenities, TableInquiries}

// Event says that a row in Table changed. Consumers refetch rather than
// apply it, so RecordID may be empty for bulk writes.
type Event struct {
	Table    string    `json:"table"`
	Type     EventType `json:"type"`
	RecordID string    `json:"record_id,omitempty"`
	At       time.Time `json:"at"`
}
