package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

const (
	MinCommentLength = 10
	MaxCommentLength = 500
)

var (
	ErrRatingNotSelected = errors.New("please select a star rating")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrCommentTooShort   = fmt.Errorf("review must be at least %d characters", MinCommentLength)
	ErrCommentTooLong    = fmt.Errorf("review must be at most %d characters", MaxCommentLength)
	ErrAlreadyReviewed   = errors.New("you have already reviewed this product")
	ErrMissingUser       = errors.New("user name is required")
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=reviews

type purchaseChecker interface {
	ContainsProduct(ctx context.Context, productID string) (bool, error)
}

type Service struct {
	store     *Store
	purchases purchaseChecker
}

func NewService(store *Store, purchases purchaseChecker) *Service {
	return &Service{
		store:     store,
		purchases: purchases,
	}
}

type Submission struct {
	ProductID string
	UserName  string
	Rating    int
	Comment   string
}

// Submit validates and stores a review. It is marked verified when the
// product appears in any placed order.
func (s *Service) Submit(ctx context.Context, submission Submission) (_ *Review, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.reviews.submit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := Validate(submission); err != nil {
		return nil, err
	}

	reviewed, err := s.store.HasReviewed(ctx, submission.ProductID, submission.UserName)
	if err != nil {
		return nil, fmt.Errorf("check reviewed: %w", err)
	}
	if reviewed {
		return nil, ErrAlreadyReviewed
	}

	verified, err := s.purchases.ContainsProduct(ctx, submission.ProductID)
	if err != nil {
		return nil, fmt.Errorf("check purchased: %w", err)
	}

	review, err := s.store.Add(ctx, NewReview{
		ProductID: submission.ProductID,
		UserName:  submission.UserName,
		Rating:    submission.Rating,
		Comment:   strings.TrimSpace(submission.Comment),
		Verified:  verified,
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("review %s added for product %s (verified: %t)", review.ID, review.ProductID, review.Verified)
	return review, nil
}

func Validate(submission Submission) error {
	if submission.UserName == "" {
		return ErrMissingUser
	}
	if submission.Rating == 0 {
		return ErrRatingNotSelected
	}
	if submission.Rating < 1 || submission.Rating > 5 {
		return ErrInvalidRating
	}

	commentLength := utf8.RuneCountInString(strings.TrimSpace(submission.Comment))
	if commentLength < MinCommentLength {
		return ErrCommentTooShort
	}
	if commentLength > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}

// IsValidationError reports whether err is a rejection the user can fix.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrRatingNotSelected) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrCommentTooShort) ||
		errors.Is(err, ErrCommentTooLong) ||
		errors.Is(err, ErrMissingUser)
}
