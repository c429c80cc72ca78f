package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"discover-server/api/discovery"
	"discover-server/metrics"
	"discover-server/models"
	"discover-server/storage"
)

const MIN_REVIEW_COMMENT_LENGTH = 5

var ErrInvalidReview = errors.New("invalid review")

// ReviewService validates review submissions, stores the attached image and
// records the review. Nothing is rolled back if recording fails after an upload.
type ReviewService struct {
	api     discovery.DiscoveryAPI
	media   storage.MediaStore
	metrics *metrics.Registry
}

// NewReviewService builds the service. reg may be nil.
func NewReviewService(api discovery.DiscoveryAPI, media storage.MediaStore, reg *metrics.Registry) *ReviewService {
	return &ReviewService{api: api, media: media, metrics: reg}
}

func ValidateReview(sub models.ReviewSubmission) error {
	if strings.TrimSpace(sub.EstablishmentID) == "" {
		return fmt.Errorf("%w: missing establishment id", ErrInvalidReview)
	}
	if sub.Rating < 1 || sub.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidReview)
	}
	if utf8.RuneCountInString(sub.Comment) < MIN_REVIEW_COMMENT_LENGTH {
		return fmt.Errorf("%w: comment must be at least %d characters", ErrInvalidReview, MIN_REVIEW_COMMENT_LENGTH)
	}
	return nil
}

// Submit posts the review and returns what was recorded.
func (s *ReviewService) Submit(ctx context.Context, sub models.ReviewSubmission) (*models.ReviewRecord, error) {
	if err := ValidateReview(sub); err != nil {
		return nil, err
	}

	record := models.ReviewRecord{
		EstablishmentID: sub.EstablishmentID,
		Rating:          sub.Rating,
		Comment:         sub.Comment,
	}
	if sub.Image != nil {
		if s.media == nil {
			return nil, fmt.Errorf("%w: image uploads are disabled", ErrInvalidReview)
		}
		url, err := s.media.Upload(ctx, *sub.Image)
		if err != nil {
			return nil, fmt.Errorf("error uploading review image: %w", err)
		}
		record.MediaURL = &url
		if s.metrics != nil {
			s.metrics.ImagesUploaded.Inc()
		}
	}

	if err := s.api.PostReview(ctx, record); err != nil {
		return nil, fmt.Errorf("error posting review: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ReviewsPosted.Inc()
	}
	log.Printf("[ReviewService] Posted review for establishment %s (rating=%d, image=%v)",
		sub.EstablishmentID, sub.Rating, record.MediaURL != nil)
	return &record, nil
}
