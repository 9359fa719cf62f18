package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"mall-api/internal/models"
	"mall-api/internal/services"
)

type OfferHandler struct {
	offers *services.OfferService
	logger zerolog.Logger
}

func NewOfferHandler(offers *services.OfferService, logger zerolog.Logger) *OfferHandler {
	return &OfferHandler{offers: offers, logger: logger}
}

func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	var patch models.OfferPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	offer, err := h.offers.Create(r.Context(), actor, patch)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, envelope{"message": "Offer created successfully", "offer": offer})
}

// List returns all offers; ?active=true keeps only those running now.
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	offers, err := h.offers.List(r.Context(), activeOnly)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"offers": offers})
}

func (h *OfferHandler) ListByShop(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.ListByShop(r.Context(), mux.Vars(r)["shopId"])
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"offers": offers})
}

func (h *OfferHandler) Get(w http.ResponseWriter, r *http.Request) {
	offer, err := h.offers.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"offer": offer})
}

func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	var patch models.OfferPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	offer, err := h.offers.Update(r.Context(), actor, mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"message": "Offer updated successfully", "offer": offer})
}

func (h *OfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	if err := h.offers.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"message": "Offer deleted successfully"})
}
