package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"mall-api/internal/models"
	"mall-api/internal/services"
)

type CategoryHandler struct {
	categories *services.CategoryService
	logger     zerolog.Logger
}

func NewCategoryHandler(categories *services.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	var patch models.CategoryPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	category, err := h.categories.Create(r.Context(), actor, patch)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, envelope{"message": "Category created successfully", "category": category})
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"categories": categories})
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"category": category})
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	var patch models.CategoryPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	category, err := h.categories.Update(r.Context(), actor, mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"message": "Category updated successfully", "category": category})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	if err := h.categories.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"message": "Category deleted successfully"})
}
