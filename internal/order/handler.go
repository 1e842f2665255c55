package order

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
	r.Post("/order", h.Initiate)
	r.Get("/my-bought-product/{email}", h.ListByEmail)
	r.Get("/api/bought-product-all", h.ListAll)
	r.Get("/api/check-transaction/{tranID}", h.CheckTransaction)
}

func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	var input InitiateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	checkout, err := h.svc.Initiate(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, checkout)
}

func (h *Handler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) CheckTransaction(w http.ResponseWriter, r *http.Request) {
	exists, err := h.svc.Exists(r.Context(), chi.URLParam(r, "tranID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !exists {
		utils.WriteJSONError(w, "Transaction ID not found", http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"exists": true})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrOrderNotFound):
		utils.WriteJSONError(w, "No orders found", http.StatusNotFound)
	case errors.Is(err, ErrTransactionNotFound):
		utils.WriteJSONError(w, "Transaction ID not found", http.StatusNotFound)
	case errors.Is(err, ErrGatewayUnavailable):
		utils.WriteJSONError(w, "Payment gateway unavailable, please try again", http.StatusBadGateway)
	default:
		logger.FromCtx(r.Context()).Error("order request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
