package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/fittrack/internal/shop"
	"github.com/2beens/fittrack/internal/shop/orders"
	"github.com/2beens/fittrack/internal/shop/reviews"
)

func (s *IntegrationTestSuite) TestCheckoutFlow() {
	s.login()

	status, body := s.do("POST", "/cart", shop.ProductRef{ID: "running-3"})
	s.Require().Equal(http.StatusOK, status, string(body))
	status, body = s.do("POST", "/cart", shop.ProductRef{ID: "running-3"})
	s.Require().Equal(http.StatusOK, status, string(body))

	var cartResp shop.CartResponse
	s.Require().NoError(json.Unmarshal(body, &cartResp))
	s.Require().Len(cartResp.Items, 1)
	s.Equal(2, cartResp.ItemCount)
	s.Equal("Running Performance Jersey", cartResp.Items[0].Name)
	s.InDelta(119.98, cartResp.Total, 0.001)

	status, body = s.do("GET", "/checkout/quote?promo=fittrack10", nil)
	s.Require().Equal(http.StatusOK, status, string(body))
	var quote shop.QuoteResponse
	s.Require().NoError(json.Unmarshal(body, &quote))
	s.True(quote.PromoApplied)
	s.Equal(12.0, quote.Discount)
	s.Equal(0.0, quote.Shipping)
	s.Equal(107.98, quote.Total)

	status, body = s.do("POST", "/checkout", map[string]string{"promo": "FITTRACK10"})
	s.Require().Equal(http.StatusCreated, status, string(body))
	var order orders.Order
	s.Require().NoError(json.Unmarshal(body, &order))
	s.Equal(orders.StatusProcessing, order.Status)
	s.Equal(107.98, order.Total)

	// checkout empties the cart in redis too
	exists, err := s.redisClient.Exists(context.Background(), "fittrack-test:fittrack_cart").Result()
	s.Require().NoError(err)
	s.Zero(exists)

	status, body = s.do("POST", "/orders/"+order.ID+"/advance", nil)
	s.Require().Equal(http.StatusOK, status, string(body))
	s.Require().NoError(json.Unmarshal(body, &order))
	s.Equal(orders.StatusShipped, order.Status)

	status, body = s.do("POST", "/products/running-3/reviews", shop.SubmitReviewRequest{Rating: 5, Comment: "Great grip on wet rocks"})
	s.Require().Equal(http.StatusCreated, status, string(body))
	var review reviews.Review
	s.Require().NoError(json.Unmarshal(body, &review))
	s.True(review.Verified)
	s.Equal("Runner", review.UserName)

	status, _ = s.do("POST", "/products/running-3/reviews", shop.SubmitReviewRequest{Rating: 4, Comment: "Second opinion here"})
	s.Equal(http.StatusConflict, status)
}

func (s *IntegrationTestSuite) TestCheckoutEmptyCart() {
	s.login()
	status, _ := s.do("POST", "/checkout", nil)
	s.Equal(http.StatusBadRequest, status)
}
