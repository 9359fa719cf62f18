package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"mall-api/internal/models"
	"mall-api/internal/services"
)

type FloorHandler struct {
	floors *services.FloorService
	logger zerolog.Logger
}

func NewFloorHandler(floors *services.FloorService, logger zerolog.Logger) *FloorHandler {
	return &FloorHandler{floors: floors, logger: logger}
}

func (h *FloorHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	var patch models.FloorPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	floor, err := h.floors.Create(r.Context(), actor, patch)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, envelope{"message": "Floor created successfully", "floor": floor})
}

func (h *FloorHandler) List(w http.ResponseWriter, r *http.Request) {
	floors, err := h.floors.List(r.Context())
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"floors": floors})
}

func (h *FloorHandler) Get(w http.ResponseWriter, r *http.Request) {
	floor, err := h.floors.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"floor": floor})
}

func (h *FloorHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	var patch models.FloorPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	floor, err := h.floors.Update(r.Context(), actor, mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"message": "Floor updated successfully", "floor": floor})
}

func (h *FloorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	if err := h.floors.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"message": "Floor deleted successfully"})
}
