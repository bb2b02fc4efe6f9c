package review

import "time"

type Review struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	CatalogID  string    `json:"catalogId"`
	MovieTitle string    `json:"movieTitle"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AdminReview is a review as listed for moderation, with the author's email.
type AdminReview struct {
	Review
	Email string `json:"email"`
}

type createReviewRequest struct {
	Rating     int    `json:"rating" validate:"required,gte=1,lte=10"`
	Comment    string `json:"comment" validate:"required,max=500"`
	MovieTitle string `json:"movieTitle" validate:"required,max=300"`
}
