package catalog

import (
	"net/http"
	"strconv"

	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
)

type ProductsResponse struct {
	Products   []Product `json:"products"`
	Categories []string  `json:"categories"`
	Total      int       `json:"total"`
}

type ProductDetailResponse struct {
	Product Product   `json:"product"`
	Related []Product `json:"related"`
}

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{
		catalog: catalog,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/products", h.HandleProducts).Methods("GET", "OPTIONS").Name("products")
	r.HandleFunc("/products/{id}", h.HandleProduct).Methods("GET", "OPTIONS").Name("product")
	r.HandleFunc("/sports", h.HandleSports).Methods("GET", "OPTIONS").Name("sports")
	r.HandleFunc("/sports/{id}", h.HandleSport).Methods("GET", "OPTIONS").Name("sport")
}

// HandleProducts filters by the sport, category and q query params.
func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	products := h.catalog.Products(Filter{
		Sport:    query.Get("sport"),
		Category: query.Get("category"),
		Query:    query.Get("q"),
	})
	pkg.WriteJSON(w, http.StatusOK, ProductsResponse{
		Products:   products,
		Categories: h.catalog.Categories(),
		Total:      len(products),
	})
}

func (h *Handler) HandleProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.catalog.Product(mux.Vars(r)["id"])
	if !ok {
		pkg.WriteJSONError(w, http.StatusNotFound, "product not found")
		return
	}

	limit := DefaultRelatedLimit
	if raw := r.URL.Query().Get("related"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			pkg.WriteJSONError(w, http.StatusBadRequest, "related must be a positive number")
			return
		}
		limit = parsed
	}

	pkg.WriteJSON(w, http.StatusOK, ProductDetailResponse{
		Product: product,
		Related: h.catalog.Related(product, limit),
	})
}

func (h *Handler) HandleSports(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, http.StatusOK, h.catalog.Sports())
}

func (h *Handler) HandleSport(w http.ResponseWriter, r *http.Request) {
	sport, ok := h.catalog.Sport(mux.Vars(r)["id"])
	if !ok {
		pkg.WriteJSONError(w, http.StatusNotFound, "sport not found")
		return
	}
	pkg.WriteJSON(w, http.StatusOK, sport)
}
