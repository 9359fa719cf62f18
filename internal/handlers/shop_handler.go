package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"mall-api/internal/models"
	"mall-api/internal/services"
)

type ShopHandler struct {
	shops  *services.ShopService
	logger zerolog.Logger
}

func NewShopHandler(shops *services.ShopService, logger zerolog.Logger) *ShopHandler {
	return &ShopHandler{shops: shops, logger: logger}
}

func (h *ShopHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	var patch models.ShopPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	shop, err := h.shops.Create(r.Context(), actor, patch)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, envelope{"message": "Shop created successfully", "shop": shop})
}

// List accepts optional owner, category and floor query filters.
func (h *ShopHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shops, err := h.shops.List(r.Context(), models.ShopFilter{
		OwnerID:    q.Get("owner"),
		CategoryID: q.Get("category"),
		FloorID:    q.Get("floor"),
	})
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"shops": shops})
}

// Mine lists the shops owned by the caller.
func (h *ShopHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	shops, err := h.shops.List(r.Context(), models.ShopFilter{OwnerID: actor.ID})
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"shops": shops})
}

func (h *ShopHandler) Get(w http.ResponseWriter, r *http.Request) {
	shop, err := h.shops.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"shop": shop})
}

func (h *ShopHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	var patch models.ShopPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	shop, err := h.shops.Update(r.Context(), actor, mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"message": "Shop updated successfully", "shop": shop})
}

func (h *ShopHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	if err := h.shops.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"message": "Shop deleted successfully"})
}
