package product

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"organic-be/internal/logger"
	"organic-be/internal/storage"
	"organic-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadMemory = 10 << 20

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/product-upload", h.Create)
	r.Get("/get-product", h.List)
	r.Get("/get-product-approved", h.ListApproved)
	r.Get("/get-product-by-id/{id}", h.GetByID)
	r.Patch("/update-product/{id}", h.Update)
	r.Delete("/deleteProduct/{id}", h.Delete)
	r.Get("/images/{imageName}", h.Image)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		utils.WriteJSONError(w, "expected multipart form", http.StatusBadRequest)
		return
	}

	input := NewProductInput{
		ProductName: r.PostFormValue("productName"),
		ParentTitle: r.PostFormValue("parentTitle"),
		Type:        r.PostFormValue("type"),
		MadeIn:      r.PostFormValue("madeIn"),
		NetWeight:   r.PostFormValue("netWeight"),
		Expired:     r.PostFormValue("expired"),
		Description: r.PostFormValue("description"),
	}
	var err error
	if input.Price, err = parseAmount(r.PostFormValue("price")); err != nil {
		utils.WriteJSONError(w, "price: "+err.Error(), http.StatusBadRequest)
		return
	}
	if input.PrePrice, err = parseAmount(r.PostFormValue("prePrice")); err != nil {
		utils.WriteJSONError(w, "prePrice: "+err.Error(), http.StatusBadRequest)
		return
	}

	upload, closeFn, err := formImage(r)
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer closeFn()

	if _, err := h.svc.Create(r.Context(), input, upload); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteText(w, http.StatusOK, "Values inserted")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, ListOptions{})
}

func (h *Handler) ListApproved(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, ListOptions{OnlyApproved: true})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, opts ListOptions) {
	products, err := h.svc.List(r.Context(), opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

// Update accepts either a JSON body or a multipart form with an optional
// productImage file.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		input  UpdateProductInput
		upload *Upload
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			utils.WriteJSONError(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		if input, err = updateFromForm(r); err != nil {
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		u, closeFn, err := formImage(r)
		if err != nil && !errors.Is(err, ErrImageRequired) {
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer closeFn()
		upload = u
	default:
		if err := r.ParseForm(); err != nil {
			utils.WriteJSONError(w, "invalid form body", http.StatusBadRequest)
			return
		}
		if input, err = updateFromForm(r); err != nil {
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := h.svc.Update(r.Context(), id, input, upload); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteText(w, http.StatusOK, "Product updated")
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

	utils.WriteText(w, http.StatusOK, "Product and image deleted")
}

func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "imageName")

	rc, err := h.svc.OpenImage(r.Context(), name)
	switch {
	case errors.Is(err, storage.ErrInvalidName):
		utils.WriteJSONError(w, "invalid image name", http.StatusBadRequest)
		return
	case errors.Is(err, fs.ErrNotExist):
		utils.WriteJSONError(w, "Image not found", http.StatusNotFound)
		return
	case err != nil:
		h.writeError(w, r, err)
		return
	}
	defer rc.Close()

	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, ErrNoFieldsToUpdate),
		errors.Is(err, ErrImageRequired):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrProductNotFound):
		utils.WriteJSONError(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, ErrImageDelete):
		logger.FromCtx(r.Context()).Error("product image replacement failed", zap.Error(err))
		utils.WriteJSONError(w, ErrImageDelete.Error(), http.StatusInternalServerError)
	default:
		logger.FromCtx(r.Context()).Error("product request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// formImage returns the productImage part. The close func is always safe to call.
func formImage(r *http.Request) (*Upload, func(), error) {
	noop := func() {}
	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, ErrImageRequired
	}
	if err != nil {
		return nil, noop, fmt.Errorf("read %s: %w", imageField, err)
	}
	return &Upload{Filename: header.Filename, Body: file}, func() { file.Close() }, nil
}

func updateFromForm(r *http.Request) (UpdateProductInput, error) {
	var in UpdateProductInput
	text := func(key string) *string {
		if _, ok := r.PostForm[key]; !ok {
			return nil
		}
		v := r.PostForm.Get(key)
		return &v
	}

	in.ProductName = text("productName")
	in.ParentTitle = text("parentTitle")
	in.Type = text("type")
	in.MadeIn = text("madeIn")
	in.NetWeight = text("netWeight")
	in.Expired = text("expired")
	in.Description = text("description")

	for key, dst := range map[string]**float64{"price": &in.Price, "prePrice": &in.PrePrice} {
		raw := text(key)
		if raw == nil || strings.TrimSpace(*raw) == "" {
			continue
		}
		v, err := parseAmount(*raw)
		if err != nil {
			return in, fmt.Errorf("%s: %w", key, err)
		}
		*dst = &v
	}

	if raw := text("role"); raw != nil {
		role := Status(*raw)
		in.Role = &role
	}
	return in, nil
}

func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("must be a number")
	}
	if v > MaxAmount {
		return 0, fmt.Errorf("must be at most %.2f", MaxAmount)
	}
	return v, nil
}
