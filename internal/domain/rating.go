package domain

import "time"

const (
	MinScore = 1
	MaxScore = 5
)

// Rating is a customer's one-time review of a catalog entry.
type Rating struct {
	ID         string
	EntryID    string
	CustomerID string
	Score      int
	Review     string
	CreatedAt  time.Time
}

// RatingView is a rating with the reviewer's public name.
type RatingView struct {
	Rating       Rating
	CustomerName string
	EntryName    string
}

// RatingSummary is the derived aggregate for an entry.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// SummarizeRatings averages scores; an empty set yields zero average and count.
func SummarizeRatings(scores []int) RatingSummary {
	if len(scores) == 0 {
		return RatingSummary{}
	}
	total := 0
	for _, s := range scores {
		total += s
	}
	return RatingSummary{
		Average: float64(total) / float64(len(scores)),
		Count:   len(scores),
	}
}
