package reviews

import (
	"context"
	"time"

	"github.com/2beens/fittrack/internal/calendar"
	"github.com/2beens/fittrack/internal/kv"

	"github.com/google/uuid"
)

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Date      time.Time `json:"date"`
	Helpful   int       `json:"helpful"`
	Verified  bool      `json:"verified"`
}

type NewReview struct {
	ProductID string
	UserName  string
	Rating    int
	Comment   string
	Verified  bool
}

// Store keeps reviews newest first. It does not enforce one review per user,
// see Service for that.
type Store struct {
	reviews *kv.Collection[Review]
	clock   calendar.Clock
	newID   func() string
}

func NewStore(store kv.Store, clock calendar.Clock) *Store {
	return &Store{
		reviews: kv.NewCollection[Review](store, kv.KeyUserReviews),
		clock:   clock,
		newID: func() string {
			return "user-review-" + uuid.NewString()
		},
	}
}

func (s *Store) List(ctx context.Context) ([]Review, error) {
	return s.reviews.List(ctx)
}

func (s *Store) Add(ctx context.Context, newReview NewReview) (*Review, error) {
	review := Review{
		ID:        s.newID(),
		ProductID: newReview.ProductID,
		UserName:  newReview.UserName,
		Rating:    newReview.Rating,
		Comment:   newReview.Comment,
		Date:      s.clock.Now(),
		Helpful:   0,
		Verified:  newReview.Verified,
	}
	_, err := s.reviews.Update(ctx, func(reviews []Review) ([]Review, error) {
		return append([]Review{review}, reviews...), nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *Store) ProductReviews(ctx context.Context, productID string) ([]Review, error) {
	reviews, err := s.reviews.List(ctx)
	if err != nil {
		return nil, err
	}
	productReviews := make([]Review, 0)
	for _, review := range reviews {
		if review.ProductID == productID {
			productReviews = append(productReviews, review)
		}
	}
	return productReviews, nil
}

func (s *Store) HasReviewed(ctx context.Context, productID, userName string) (bool, error) {
	reviews, err := s.reviews.List(ctx)
	if err != nil {
		return false, err
	}
	for _, review := range reviews {
		if review.ProductID == productID && review.UserName == userName {
			return true, nil
		}
	}
	return false, nil
}

// MarkHelpful bumps the helpful counter; unknown ids are ignored.
func (s *Store) MarkHelpful(ctx context.Context, id string) (*Review, error) {
	var marked *Review
	_, err := s.reviews.Update(ctx, func(reviews []Review) ([]Review, error) {
		for i := range reviews {
			if reviews[i].ID == id {
				reviews[i].Helpful++
				review := reviews[i]
				marked = &review
				break
			}
		}
		return reviews, nil
	})
	if err != nil {
		return nil, err
	}
	return marked, nil
}
