// Package webhook serves the endpoints the payment gateway calls after checkout.
package webhook

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strings"

	"organic-be/internal/logger"
	"organic-be/internal/order"
	"organic-be/internal/payment"
	"organic-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	OrderSvc  order.Service
	Gateway   payment.Gateway
	Events    payment.Repository
	ClientURL string
}

// NewWebhookHandler builds the callback handler. events may be nil, in which
// case IPNs are processed without being journaled.
func NewWebhookHandler(orderSvc order.Service, gateway payment.Gateway, events payment.Repository, clientURL string) *Handler {
	return &Handler{
		OrderSvc:  orderSvc,
		Gateway:   gateway,
		Events:    events,
		ClientURL: strings.TrimRight(clientURL, "/"),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/payment/success/{tranID}", h.Success)
	r.Post("/payment/fail/{tranID}", h.Fail)
	r.Post("/payment/cancel/{tranID}", h.Cancel)
	r.Post("/ipn", h.IPN)
}

// Success marks the order paid only after the gateway confirms val_id for
// this transaction.
func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {
	tranID := chi.URLParam(r, "tranID")
	form, ok := h.verifiedForm(w, r, tranID)
	if !ok {
		return
	}
	if !payment.Paid(strings.ToUpper(form.Get("status"))) {
		h.writeError(w, r, errCallbackMismatch)
		return
	}

	if err := h.confirmPaid(r, tranID, form.Get("val_id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	http.Redirect(w, r, h.ClientURL+"/paymentSuccess/"+tranID, http.StatusSeeOther)
}

func (h *Handler) Fail(w http.ResponseWriter, r *http.Request) {
	h.failed(w, r, "/payment/fail/")
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.failed(w, r, "/payment/cancel/")
}

func (h *Handler) failed(w http.ResponseWriter, r *http.Request, clientPath string) {
	tranID := chi.URLParam(r, "tranID")
	form, ok := h.verifiedForm(w, r, tranID)
	if !ok {
		return
	}
	if payment.Paid(strings.ToUpper(form.Get("status"))) {
		h.writeError(w, r, errCallbackMismatch)
		return
	}

	if err := h.OrderSvc.MarkFailed(r.Context(), tranID); err != nil {
		h.writeError(w, r, err)
		return
	}

	http.Redirect(w, r, h.ClientURL+clientPath+tranID, http.StatusSeeOther)
}

// IPN handles the gateway's server-to-server notification. Paid statuses are
// confirmed through the validation API before the order is touched.
func (h *Handler) IPN(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	if err := r.ParseForm(); err != nil {
		utils.WriteJSONError(w, "invalid form body", http.StatusBadRequest)
		return
	}
	form := r.PostForm
	tranID := form.Get("tran_id")
	status := strings.ToUpper(form.Get("status"))
	valID := form.Get("val_id")
	log = log.With(zap.String("tran_id", tranID), zap.String("status", status))

	if tranID == "" {
		utils.WriteJSONError(w, "tran_id is required", http.StatusBadRequest)
		return
	}

	sigErr := h.Gateway.VerifyCallback(form)

	eventID, dup, err := h.journal(r, form, tranID, status, valID, sigErr == nil)
	if err != nil {
		log.Error("failed to journal IPN", zap.Error(err))
		utils.WriteJSONError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if sigErr != nil {
		log.Warn("IPN signature rejected", zap.Error(sigErr))
		h.markFailed(r, eventID, sigErr)
		utils.WriteJSONError(w, "invalid signature", http.StatusUnauthorized)
		return
	}
	if dup {
		log.Info("IPN redelivered, processing again")
	}

	switch {
	case payment.Paid(status):
		err = h.confirmPaid(r, tranID, valID)
	case status == payment.StatusFailed || status == payment.StatusCancelled:
		err = h.OrderSvc.MarkFailed(r.Context(), tranID)
	default:
		log.Info("IPN status ignored")
		h.markProcessed(r, eventID)
		utils.WriteMessage(w, "ignored")
		return
	}

	if err != nil {
		h.markFailed(r, eventID, err)
		h.writeError(w, r, err)
		return
	}

	h.markProcessed(r, eventID)
	log.Info("IPN processed")
	utils.WriteMessage(w, "ok")
}

var (
	errValidationMismatch = errors.New("validation does not match the order")
	errCallbackMismatch   = errors.New("callback does not match the transaction")
)

func (h *Handler) confirmPaid(r *http.Request, tranID, valID string) error {
	ctx := r.Context()
	if valID == "" {
		return errValidationMismatch
	}

	v, err := h.Gateway.Validate(ctx, valID)
	if err != nil {
		return err
	}
	if v.TransactionID != tranID {
		return errValidationMismatch
	}

	o, err := h.OrderSvc.Get(ctx, tranID)
	if err != nil {
		return err
	}
	if v.Amount <= 0 || math.Abs(v.Amount-o.TotalAmount) > 0.009 ||
		!strings.EqualFold(v.Currency, o.Currency) {
		logger.FromCtx(ctx).Warn("validated payment differs from order",
			zap.Float64("validated", v.Amount),
			zap.Float64("expected", o.TotalAmount),
			zap.String("validated_currency", v.Currency),
			zap.String("expected_currency", o.Currency),
		)
		return errValidationMismatch
	}

	return h.OrderSvc.MarkPaid(ctx, tranID, valID)
}

// verifiedForm checks the signature and that the signed tran_id, when
// present, names the transaction in the URL.
func (h *Handler) verifiedForm(w http.ResponseWriter, r *http.Request, tranID string) (url.Values, bool) {
	if err := r.ParseForm(); err != nil {
		utils.WriteJSONError(w, "invalid form body", http.StatusBadRequest)
		return nil, false
	}
	if err := h.Gateway.VerifyCallback(r.PostForm); err != nil {
		logger.FromCtx(r.Context()).Warn("callback signature rejected",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "invalid signature", http.StatusUnauthorized)
		return nil, false
	}
	if signed := r.PostForm.Get("tran_id"); signed != "" && signed != tranID {
		logger.FromCtx(r.Context()).Warn("callback tran_id differs from URL",
			zap.String("tran_id", signed),
			zap.String("url_tran_id", tranID),
		)
		h.writeError(w, r, errCallbackMismatch)
		return nil, false
	}
	return r.PostForm, true
}

func (h *Handler) journal(r *http.Request, form url.Values, tranID, status, valID string, sigValid bool) (int64, bool, error) {
	if h.Events == nil {
		return 0, false, nil
	}

	flat := make(map[string]string, len(form))
	for k := range form {
		flat[k] = form.Get(k)
	}
	payload, err := json.Marshal(flat)
	if err != nil {
		return 0, false, err
	}

	eventID := valID
	if eventID == "" {
		eventID = tranID + ":" + status
	}

	return h.Events.SaveEvent(r.Context(), payment.Event{
		Provider:       payment.ProviderSSLCommerz,
		EventID:        eventID,
		EventType:      "ipn." + status,
		TransactionID:  tranID,
		Payload:        payload,
		SignatureValid: sigValid,
	})
}

func (h *Handler) markProcessed(r *http.Request, eventID int64) {
	if h.Events == nil || eventID == 0 {
		return
	}
	if err := h.Events.MarkEventProcessed(r.Context(), eventID); err != nil {
		logger.FromCtx(r.Context()).Error("failed to mark IPN processed", zap.Error(err))
	}
}

func (h *Handler) markFailed(r *http.Request, eventID int64, cause error) {
	if h.Events == nil || eventID == 0 {
		return
	}
	if err := h.Events.MarkEventFailed(r.Context(), eventID, cause.Error()); err != nil {
		logger.FromCtx(r.Context()).Error("failed to mark IPN failed", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrTransactionNotFound):
		utils.WriteJSONError(w, "Transaction ID not found", http.StatusNotFound)
	case errors.Is(err, order.ErrAlreadyPaid):
		utils.WriteJSONError(w, "Order already paid", http.StatusConflict)
	case errors.Is(err, payment.ErrInvalidPayment), errors.Is(err, errValidationMismatch):
		utils.WriteJSONError(w, "payment could not be validated", http.StatusBadRequest)
	case errors.Is(err, errCallbackMismatch):
		utils.WriteJSONError(w, errCallbackMismatch.Error(), http.StatusBadRequest)
	default:
		logger.FromCtx(r.Context()).Error("payment callback failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
