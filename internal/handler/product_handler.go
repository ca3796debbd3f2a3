package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mohashafici/DalagHub/internal/marketplace/catalog"
	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
	"github.com/mohashafici/DalagHub/internal/marketplace/filter"
	"github.com/mohashafici/DalagHub/internal/platform/logger"
)

type ProductHandler struct {
	catalog *catalog.Store
	logger  logger.Logger
}

func NewProductHandler(catalogStore *catalog.Store, log logger.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalogStore, logger: log}
}

type productListResponse struct {
	Products []*domain.Listing `json:"products"`
	Count    int               `json:"count"`
	Stale    bool              `json:"stale,omitempty"`
}

// ListProducts serves the public catalog with the derived view filter
// applied from query parameters: category, q, location, subcategory.
// A non-nil store error marks the response stale so clients can surface it
// instead of silently showing old data.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	criteria := filter.Criteria{
		Category:    r.URL.Query().Get("category"),
		Query:       r.URL.Query().Get("q"),
		Location:    r.URL.Query().Get("location"),
		Subcategory: r.URL.Query().Get("subcategory"),
	}
	filtered := filter.Apply(h.catalog.Products(), criteria)
	writeJSON(w, http.StatusOK, productListResponse{
		Products: filtered,
		Count:    len(filtered),
		Stale:    h.catalog.LastError() != nil,
	})
}

// MyProducts serves the current identity's listings in any status.
func (h *ProductHandler) MyProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.AllUserProducts()
	writeJSON(w, http.StatusOK, productListResponse{Products: products, Count: len(products)})
}

type productDetailResponse struct {
	*domain.Listing
	WhatsAppURL string `json:"whatsapp_url,omitempty"`
	PhoneURL    string `json:"phone_url,omitempty"`
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := h.catalog.GetProductByID(r.Context(), id)
	if err != nil {
		h.logger.Errorf("get product %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if listing == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	resp := productDetailResponse{Listing: listing}
	if listing.SellerPhone != "" {
		resp.WhatsAppURL = domain.WhatsAppLink(listing.SellerPhone, listing.Title)
		resp.PhoneURL = domain.PhoneLink(listing.SellerPhone)
	}
	writeJSON(w, http.StatusOK, resp)
}

type createProductRequest struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Quantity    string   `json:"quantity"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
}

// CreateProduct is the creation form boundary: it enforces required
// fields, the category/subcategory pairing and the location list before
// anything is sent remotely. The store itself does not re-validate.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Category == "" || req.Subcategory == "" || req.Quantity == "" || req.Location == "" {
		writeError(w, http.StatusBadRequest, "Please fill in all required fields")
		return
	}
	category := domain.Category(req.Category)
	if !domain.ValidCategory(category) {
		writeError(w, http.StatusBadRequest, "category must be crops or livestock")
		return
	}
	if !domain.ValidSubcategory(category, req.Subcategory) {
		writeError(w, http.StatusBadRequest, "subcategory does not belong to category")
		return
	}
	if !domain.ValidLocation(req.Location) {
		writeError(w, http.StatusBadRequest, "unknown location")
		return
	}
	if len(req.Images) > 3 {
		writeError(w, http.StatusBadRequest, "Maximum 3 images allowed")
		return
	}

	listing, err := h.catalog.AddProduct(r.Context(), catalog.AddProductInput{
		Title:       req.Title,
		Category:    category,
		Subcategory: req.Subcategory,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Description: req.Description,
		Location:    req.Location,
		Images:      req.Images,
	})
	if errors.Is(err, catalog.ErrNotLoggedIn) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.logger.Errorf("create product failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, listing)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.catalog.DeleteProduct(r.Context(), id)
	if errors.Is(err, catalog.ErrLoginRequired) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if errors.Is(err, domain.ErrListingNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.logger.Errorf("delete product %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *ProductHandler) UpdateProductStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.catalog.UpdateProductStatus(r.Context(), id, domain.ListingStatus(req.Status))
	if errors.Is(err, catalog.ErrLoginRequired) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if errors.Is(err, catalog.ErrInvalidStatus) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, domain.ErrListingNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.logger.Errorf("update status of %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

type reportProductRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

func (h *ProductHandler) ReportProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req reportProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.catalog.ReportProduct(r.Context(), catalog.ReportInput{
		ProductID:   id,
		Reason:      domain.ReportReason(req.Reason),
		Description: req.Description,
	})
	if errors.Is(err, catalog.ErrInvalidReason) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Errorf("report product %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "reported"})
}
