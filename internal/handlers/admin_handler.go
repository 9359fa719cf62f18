package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"mall-api/internal/events"
	"mall-api/internal/models"
	"mall-api/internal/services"
)

type AdminHandler struct {
	userService *services.UserService
	auditLog    *events.AuditLog
	logger      zerolog.Logger
}

func NewAdminHandler(userService *services.UserService, auditLog *events.AuditLog, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		userService: userService,
		auditLog:    auditLog,
		logger:      logger,
	}
}

func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var req models.CreateAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	admin, err := h.userService.CreateAdmin(r.Context(), actor, &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, envelope{"message": "Admin created successfully", "admin": admin})
}

func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.userService.ListAdmins(r.Context())
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{"admins": admins})
}

// AuditLogs pages through recorded events, newest first.
func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 200)
	offset := queryInt(r, "offset", 0, 0)

	entries, err := h.auditLog.Recent(r.Context(), limit, offset)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, envelope{
		"audit_logs": entries,
		"limit":      limit,
		"offset":     offset,
	})
}
