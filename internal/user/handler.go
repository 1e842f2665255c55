package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"organic-be/internal/logger"
	"organic-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Get("/get-user", h.GetUsers)
	r.Patch("/update-user/{id}", h.UpdateRole)
	r.Delete("/delete-user/{id}", h.Delete)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.Register(r.Context(), input); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteMessage(w, "User registered successfully")
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var input UpdateRoleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	role, ok := input.Value()
	if !ok {
		utils.WriteJSONError(w, "newStatus is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateRole(r.Context(), id, role); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteMessage(w, "User status updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteMessage(w, "User deleted successfully")
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, ErrInvalidRole):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUserNotFound):
		utils.WriteJSONError(w, "User not found", http.StatusNotFound)
	default:
		logger.FromCtx(r.Context()).Error("user request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
