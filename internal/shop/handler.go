// Package shop exposes the cart, wishlist, comparison, checkout, orders and
// reviews stores over HTTP.
package shop

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fittrack/internal/catalog"
	"github.com/2beens/fittrack/internal/session"
	"github.com/2beens/fittrack/internal/shop/cart"
	"github.com/2beens/fittrack/internal/shop/checkout"
	"github.com/2beens/fittrack/internal/shop/compare"
	"github.com/2beens/fittrack/internal/shop/orders"
	"github.com/2beens/fittrack/internal/shop/reviews"
	"github.com/2beens/fittrack/internal/shop/wishlist"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type userSource interface {
	Current(ctx context.Context) (*session.User, bool, error)
}

type productLookup interface {
	Product(id string) (catalog.Product, bool)
}

// ProductRef picks a catalog product. Any other field a client sends along
// (name, price) is ignored, the catalog is the source of both.
type ProductRef struct {
	ID string `json:"id"`
}

type CartResponse struct {
	Items     []cart.Item `json:"items"`
	Total     float64     `json:"total"`
	ItemCount int         `json:"itemCount"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type WishlistToggleResponse struct {
	Items []wishlist.Item `json:"items"`
	Added bool            `json:"added"`
}

type CompareAddResponse struct {
	compare.AddResult
	Message string `json:"message,omitempty"`
}

type QuoteResponse struct {
	checkout.Quote
	PromoError string `json:"promoError,omitempty"`
}

type PlaceOrderRequest struct {
	Promo string `json:"promo"`
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ProductReviewsResponse struct {
	Reviews     []reviews.Review `json:"reviews"`
	HasReviewed bool             `json:"hasReviewed"`
}

type Handler struct {
	products productLookup
	cart     *cart.Store
	wishlist *wishlist.Store
	compare  *compare.Store
	orders   *orders.Store
	reviews  *reviews.Store
	reviewer *reviews.Service
	checkout *checkout.Service
	users    userSource
}

type NewHandlerParams struct {
	Products productLookup
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Compare  *compare.Store
	Orders   *orders.Store
	Reviews  *reviews.Store
	Checkout *checkout.Service
	Users    userSource
}

func NewHandler(params NewHandlerParams) *Handler {
	return &Handler{
		products: params.Products,
		cart:     params.Cart,
		wishlist: params.Wishlist,
		compare:  params.Compare,
		orders:   params.Orders,
		reviews:  params.Reviews,
		reviewer: reviews.NewService(params.Reviews, params.Orders),
		checkout: params.Checkout,
		users:    params.Users,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/cart", h.HandleCartList).Methods("GET", "OPTIONS").Name("cart")
	r.HandleFunc("/cart", h.HandleCartAdd).Methods("POST", "OPTIONS").Name("cart-add")
	r.HandleFunc("/cart", h.HandleCartClear).Methods("DELETE", "OPTIONS").Name("cart-clear")
	r.HandleFunc("/cart/{id}", h.HandleCartUpdate).Methods("PUT", "OPTIONS").Name("cart-update")
	r.HandleFunc("/cart/{id}", h.HandleCartRemove).Methods("DELETE", "OPTIONS").Name("cart-remove")

	r.HandleFunc("/wishlist", h.HandleWishlistList).Methods("GET", "OPTIONS").Name("wishlist")
	r.HandleFunc("/wishlist", h.HandleWishlistAdd).Methods("POST", "OPTIONS").Name("wishlist-add")
	r.HandleFunc("/wishlist/toggle", h.HandleWishlistToggle).Methods("POST", "OPTIONS").Name("wishlist-toggle")
	r.HandleFunc("/wishlist/{id}", h.HandleWishlistRemove).Methods("DELETE", "OPTIONS").Name("wishlist-remove")

	r.HandleFunc("/compare", h.HandleCompareList).Methods("GET", "OPTIONS").Name("compare")
	r.HandleFunc("/compare/products", h.HandleCompareProducts).Methods("GET", "OPTIONS").Name("compare-products")
	r.HandleFunc("/compare", h.HandleCompareClear).Methods("DELETE", "OPTIONS").Name("compare-clear")
	r.HandleFunc("/compare/{id}", h.HandleCompareAdd).Methods("POST", "OPTIONS").Name("compare-add")
	r.HandleFunc("/compare/{id}", h.HandleCompareRemove).Methods("DELETE", "OPTIONS").Name("compare-remove")

	r.HandleFunc("/checkout/quote", h.HandleQuote).Methods("GET", "OPTIONS").Name("checkout-quote")
	r.HandleFunc("/checkout", h.HandlePlaceOrder).Methods("POST", "OPTIONS").Name("checkout")

	r.HandleFunc("/orders", h.HandleOrdersList).Methods("GET", "OPTIONS").Name("orders")
	r.HandleFunc("/orders/{id}", h.HandleOrderGet).Methods("GET", "OPTIONS").Name("order")
	r.HandleFunc("/orders/{id}/advance", h.HandleOrderAdvance).Methods("POST", "OPTIONS").Name("order-advance")

	r.HandleFunc("/products/{id}/reviews", h.HandleProductReviews).Methods("GET", "OPTIONS").Name("product-reviews")
	r.HandleFunc("/products/{id}/reviews", h.HandleSubmitReview).Methods("POST", "OPTIONS").Name("submit-review")
	r.HandleFunc("/reviews/{id}/helpful", h.HandleReviewHelpful).Methods("POST", "OPTIONS").Name("review-helpful")
}

// cart

func (h *Handler) HandleCartList(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.List(r.Context())
	if err != nil {
		writeInternalError(w, "list cart", err)
		return
	}
	writeCart(w, items)
}

func (h *Handler) HandleCartAdd(w http.ResponseWriter, r *http.Request) {
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	items, err := h.cart.Add(r.Context(), cartItemFor(product))
	if err != nil {
		writeInternalError(w, "add to cart", err)
		return
	}
	writeCart(w, items)
}

func (h *Handler) HandleCartUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items, err := h.cart.UpdateQuantity(r.Context(), mux.Vars(r)["id"], req.Quantity)
	if err != nil {
		writeInternalError(w, "update cart quantity", err)
		return
	}
	writeCart(w, items)
}

func (h *Handler) HandleCartRemove(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.Remove(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeInternalError(w, "remove from cart", err)
		return
	}
	writeCart(w, items)
}

func (h *Handler) HandleCartClear(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		writeInternalError(w, "clear cart", err)
		return
	}
	writeCart(w, []cart.Item{})
}

func writeCart(w http.ResponseWriter, items []cart.Item) {
	pkg.WriteJSON(w, http.StatusOK, CartResponse{
		Items:     items,
		Total:     cart.Total(items),
		ItemCount: cart.ItemCount(items),
	})
}

// wishlist

func (h *Handler) HandleWishlistList(w http.ResponseWriter, r *http.Request) {
	items, err := h.wishlist.List(r.Context())
	if err != nil {
		writeInternalError(w, "list wishlist", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleWishlistAdd(w http.ResponseWriter, r *http.Request) {
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	item := wishlistItemFor(product)

	items, err := h.wishlist.Add(r.Context(), item)
	if err != nil {
		writeInternalError(w, "add to wishlist", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleWishlistToggle(w http.ResponseWriter, r *http.Request) {
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	item := wishlistItemFor(product)

	items, added, err := h.wishlist.Toggle(r.Context(), item)
	if err != nil {
		writeInternalError(w, "toggle wishlist", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, WishlistToggleResponse{Items: items, Added: added})
}

func (h *Handler) HandleWishlistRemove(w http.ResponseWriter, r *http.Request) {
	items, err := h.wishlist.Remove(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeInternalError(w, "remove from wishlist", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, items)
}

// comparison

func (h *Handler) HandleCompareList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.compare.List(r.Context())
	if err != nil {
		writeInternalError(w, "list comparison", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, ids)
}

func (h *Handler) HandleCompareAdd(w http.ResponseWriter, r *http.Request) {
	product, ok := h.products.Product(mux.Vars(r)["id"])
	if !ok {
		pkg.WriteJSONError(w, http.StatusNotFound, "product not found")
		return
	}

	result, err := h.compare.Add(r.Context(), product.ID)
	if err != nil {
		writeInternalError(w, "add to comparison", err)
		return
	}

	resp := CompareAddResponse{AddResult: result, Message: result.Rejection.Message()}
	status := http.StatusOK
	if !result.Added {
		status = http.StatusConflict
	}
	pkg.WriteJSON(w, status, resp)
}

// HandleCompareProducts resolves the compared ids, skipping any the catalog no longer has.
func (h *Handler) HandleCompareProducts(w http.ResponseWriter, r *http.Request) {
	ids, err := h.compare.List(r.Context())
	if err != nil {
		writeInternalError(w, "list comparison", err)
		return
	}
	products := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := h.products.Product(id); ok {
			products = append(products, product)
		}
	}
	pkg.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleCompareRemove(w http.ResponseWriter, r *http.Request) {
	ids, err := h.compare.Remove(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeInternalError(w, "remove from comparison", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, ids)
}

func (h *Handler) HandleCompareClear(w http.ResponseWriter, r *http.Request) {
	if err := h.compare.Clear(r.Context()); err != nil {
		writeInternalError(w, "clear comparison", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, []string{})
}

// checkout & orders

func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.checkout.Quote(r.Context(), r.URL.Query().Get("promo"))
	resp := QuoteResponse{Quote: quote}
	if errors.Is(err, checkout.ErrInvalidPromo) {
		resp.PromoError = err.Error()
	} else if err != nil {
		writeInternalError(w, "quote", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.checkout.place_order")
	defer span.End()

	var req PlaceOrderRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.checkout.PlaceOrder(ctx, req.Promo)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrInvalidPromo):
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeInternalError(w, "place order", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleOrdersList(w http.ResponseWriter, r *http.Request) {
	placed, err := h.orders.List(r.Context())
	if err != nil {
		writeInternalError(w, "list orders", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, placed)
}

func (h *Handler) HandleOrderGet(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, orders.ErrOrderNotFound) {
		pkg.WriteJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeInternalError(w, "get order", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleOrderAdvance(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.AdvanceOrder(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, orders.ErrOrderNotFound) {
		pkg.WriteJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeInternalError(w, "advance order", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, order)
}

// reviews

func (h *Handler) HandleProductReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := mux.Vars(r)["id"]
	if _, ok := h.products.Product(productID); !ok {
		pkg.WriteJSONError(w, http.StatusNotFound, "product not found")
		return
	}

	productReviews, err := h.reviews.ProductReviews(ctx, productID)
	if err != nil {
		writeInternalError(w, "list product reviews", err)
		return
	}

	resp := ProductReviewsResponse{Reviews: productReviews}
	if user, ok, err := h.currentUser(ctx); err != nil {
		writeInternalError(w, "current user", err)
		return
	} else if ok {
		if resp.HasReviewed, err = h.reviews.HasReviewed(ctx, productID, user.Name); err != nil {
			writeInternalError(w, "has reviewed", err)
			return
		}
	}
	pkg.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleSubmitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	product, ok := h.products.Product(mux.Vars(r)["id"])
	if !ok {
		pkg.WriteJSONError(w, http.StatusNotFound, "product not found")
		return
	}

	var req SubmitReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, ok, err := h.currentUser(ctx)
	if err != nil {
		writeInternalError(w, "current user", err)
		return
	}
	submission := reviews.Submission{
		ProductID: product.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if ok {
		submission.UserName = user.Name
	}

	review, err := h.reviewer.Submit(ctx, submission)
	switch {
	case reviews.IsValidationError(err):
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, reviews.ErrAlreadyReviewed):
		pkg.WriteJSONError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeInternalError(w, "submit review", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, review)
}

func (h *Handler) HandleReviewHelpful(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviews.MarkHelpful(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeInternalError(w, "mark review helpful", err)
		return
	}
	if review == nil {
		pkg.WriteJSONError(w, http.StatusNotFound, "review not found")
		return
	}
	pkg.WriteJSON(w, http.StatusOK, review)
}

func (h *Handler) currentUser(ctx context.Context) (*session.User, bool, error) {
	if h.users == nil {
		return nil, false, nil
	}
	return h.users.Current(ctx)
}

func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request) (catalog.Product, bool) {
	var ref ProductRef
	if !decodeJSON(w, r, &ref) {
		return catalog.Product{}, false
	}
	if ref.ID == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "product id is required")
		return catalog.Product{}, false
	}
	product, ok := h.products.Product(ref.ID)
	if !ok {
		pkg.WriteJSONError(w, http.StatusNotFound, "product not found")
		return catalog.Product{}, false
	}
	return product, true
}

func cartItemFor(product catalog.Product) cart.Item {
	return cart.Item{
		ID:            product.ID,
		Name:          product.Name,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
		Image:         product.Image,
		Sport:         product.Sport,
	}
}

func wishlistItemFor(product catalog.Product) wishlist.Item {
	return wishlist.Item{
		ID:            product.ID,
		Name:          product.Name,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
		Image:         product.Image,
		Sport:         product.Sport,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Debugf("%s %s, unmarshal json body: %s", r.Method, r.URL.Path, err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func writeInternalError(w http.ResponseWriter, op string, err error) {
	log.Errorf("%s: %s", op, err)
	pkg.WriteJSONError(w, http.StatusInternalServerError, "internal error")
}
