package reviews

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/2beens/fittrack/internal/calendar"
	"github.com/2beens/fittrack/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestValidate(t *testing.T) {
	valid := Submission{ProductID: "p1", UserName: "ana", Rating: 4, Comment: "really comfortable"}

	testCases := []struct {
		name        string
		mutate      func(s *Submission)
		expectedErr error
	}{
		{name: "Valid", mutate: func(s *Submission) {}},
		{name: "NoRating", mutate: func(s *Submission) { s.Rating = 0 }, expectedErr: ErrRatingNotSelected},
		{name: "RatingTooHigh", mutate: func(s *Submission) { s.Rating = 6 }, expectedErr: ErrInvalidRating},
		{name: "CommentTooShort", mutate: func(s *Submission) { s.Comment = "short" }, expectedErr: ErrCommentTooShort},
		{name: "ShortAfterTrim", mutate: func(s *Submission) { s.Comment = "   nine chr   " }, expectedErr: ErrCommentTooShort},
		{name: "ExactlyTen", mutate: func(s *Submission) { s.Comment = "  ten chars!  " }},
		{name: "CommentTooLong", mutate: func(s *Submission) { s.Comment = strings.Repeat("a", 501) }, expectedErr: ErrCommentTooLong},
		{name: "MaxLength", mutate: func(s *Submission) { s.Comment = strings.Repeat("a", 500) }},
		{name: "MissingUser", mutate: func(s *Submission) { s.UserName = "" }, expectedErr: ErrMissingUser},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			submission := valid
			tc.mutate(&submission)
			err := Validate(submission)
			if tc.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	purchases := NewMockpurchaseChecker(ctrl)
	store := NewStore(kv.NewMemoryStore(), calendar.NewFixedClock(testNow))
	service := NewService(store, purchases)

	purchases.EXPECT().ContainsProduct(gomock.Any(), "p1").Return(true, nil)
	review, err := service.Submit(ctx, Submission{
		ProductID: "p1",
		UserName:  "ana",
		Rating:    5,
		Comment:   "   love these shoes   ",
	})
	require.NoError(t, err)
	assert.True(t, review.Verified)
	assert.Equal(t, "love these shoes", review.Comment)

	// second review from the same user, purchases not even consulted
	_, err = service.Submit(ctx, Submission{ProductID: "p1", UserName: "ana", Rating: 2, Comment: "changed my mind"})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.False(t, IsValidationError(err))

	purchases.EXPECT().ContainsProduct(gomock.Any(), "p1").Return(false, nil)
	review, err = service.Submit(ctx, Submission{ProductID: "p1", UserName: "bo", Rating: 3, Comment: "looks fine to me"})
	require.NoError(t, err)
	assert.False(t, review.Verified)

	stored, err := store.ProductReviews(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestService_SubmitInvalidNotStored(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := NewStore(kv.NewMemoryStore(), calendar.NewFixedClock(testNow))
	service := NewService(store, NewMockpurchaseChecker(ctrl))

	_, err := service.Submit(ctx, Submission{ProductID: "p1", UserName: "ana", Rating: 0, Comment: "a valid comment"})
	assert.ErrorIs(t, err, ErrRatingNotSelected)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_SubmitPurchaseCheckFails(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	purchases := NewMockpurchaseChecker(ctrl)
	service := NewService(NewStore(kv.NewMemoryStore(), calendar.NewFixedClock(testNow)), purchases)

	backendErr := errors.New("orders unavailable")
	purchases.EXPECT().ContainsProduct(gomock.Any(), "p1").Return(false, backendErr)
	_, err := service.Submit(ctx, Submission{ProductID: "p1", UserName: "ana", Rating: 4, Comment: "a valid comment"})
	assert.ErrorIs(t, err, backendErr)
}
