package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/service"
)

// CreateRatingRequest payload for POST /services/:id/ratings. The score
// range is enforced by the domain so the error carries its kind.
type CreateRatingRequest struct {
	Score  int    `json:"score"`
	Review string `json:"review" validate:"max=2000"`
}

// Input converts the payload to service input.
func (r CreateRatingRequest) Input() service.RatingInput {
	return service.RatingInput{Score: r.Score, Review: r.Review}
}

// RatingResponse is a single review.
type RatingResponse struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	Service   string    `json:"service,omitempty"`
	Customer  string    `json:"customer,omitempty"`
	Score     int       `json:"score"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRatingResponse renders a bare rating.
func NewRatingResponse(rating domain.Rating) RatingResponse {
	return RatingResponse{
		ID:        rating.ID,
		ServiceID: rating.EntryID,
		Score:     rating.Score,
		Review:    rating.Review,
		CreatedAt: rating.CreatedAt,
	}
}

// NewRatingListResponse renders rating views in order.
func NewRatingListResponse(views []domain.RatingView) []RatingResponse {
	return lo.Map(views, func(v domain.RatingView, _ int) RatingResponse {
		resp := NewRatingResponse(v.Rating)
		resp.Service = v.EntryName
		resp.Customer = v.CustomerName
		return resp
	})
}
