package domain

// FieldCount is the number of approved entries in a field of work.
type FieldCount struct {
	Field FieldOfWork `json:"field"`
	Count int         `json:"count"`
}

// RequestedEntry ranks an entry by how often it was requested.
type RequestedEntry struct {
	EntryID     string      `json:"service_id"`
	Name        string      `json:"name"`
	Field       FieldOfWork `json:"field"`
	CompanyName string      `json:"company"`
	Requests    int         `json:"requests"`
}

// RatedEntry ranks an entry by its average score.
type RatedEntry struct {
	EntryID     string        `json:"service_id"`
	Name        string        `json:"name"`
	Field       FieldOfWork   `json:"field"`
	CompanyName string        `json:"company"`
	Rating      RatingSummary `json:"rating"`
}

// PlatformStats is the public marketplace overview.
type PlatformStats struct {
	Customers     int              `json:"customers"`
	Companies     int              `json:"companies"`
	ApprovedCount int              `json:"approved_services"`
	PendingCount  int              `json:"pending_services"`
	RequestCount  int              `json:"requests"`
	ByField       []FieldCount     `json:"by_field"`
	MostRequested []RequestedEntry `json:"most_requested"`
	TopRated      []RatedEntry     `json:"top_rated"`
}
