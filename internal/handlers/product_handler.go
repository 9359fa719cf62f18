package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"mall-api/internal/models"
	"mall-api/internal/services"
	"mall-api/internal/validation"
)

type ProductHandler struct {
	products *services.ProductService
	logger   zerolog.Logger
}

func NewProductHandler(products *services.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	var patch models.ProductPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	product, err := h.products.Create(r.Context(), actor, patch)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, envelope{"message": "Product created successfully", "product": product})
}

// List serves both /products and /products/filter; shop, category and offer
// query parameters narrow the result.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.products.List(r.Context(), models.ProductFilter{
		ShopID:     q.Get("shop"),
		CategoryID: q.Get("category"),
		OfferID:    q.Get("offer"),
	})
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"products": products})
}

// Compare takes ids from a JSON body on POST or from ?ids=a,b on GET.
func (h *ProductHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if r.Method == http.MethodPost {
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, r, h.logger, err)
			return
		}
	} else {
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.IDs = append(req.IDs, id)
			}
		}
	}
	if err := validation.Struct(&req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	products, err := h.products.Compare(r.Context(), req.IDs)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"products": products})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"product": product})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	var patch models.ProductPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	product, err := h.products.Update(r.Context(), actor, mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"message": "Product updated successfully", "product": product})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	if err := h.products.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"message": "Product deleted successfully"})
}
