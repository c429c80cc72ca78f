package models

import "io"

// ReviewImage is an image attached to a review submission.
type ReviewImage struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ReviewSubmission is what a client sends to post a review.
type ReviewSubmission struct {
	EstablishmentID string
	Rating          int
	Comment         string
	Image           *ReviewImage
}

// ReviewRecord is the post_review RPC body.
type ReviewRecord struct {
	EstablishmentID string  `json:"establishment_id"`
	Rating          int     `json:"rating"`
	Comment         string  `json:"comment"`
	MediaURL        *string `json:"media_url"`
}
