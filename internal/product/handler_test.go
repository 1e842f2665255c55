package product

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, repo Repository) (http.Handler, string) {
	t.Helper()
	svc, root := newTestService(t, repo)
	r := chi.NewRouter()
	NewHandler(svc).Routes(r)
	return r, root
}

func multipartBody(t *testing.T, fields map[string]string, fileName, fileBody string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile(imageField, fileName)
		require.NoError(t, err)
		_, _ = fw.Write([]byte(fileBody))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		router, root := newTestRouter(t, repo)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(p Product) bool {
			return p.ProductName == "Honey" && p.Price == 500 && p.PrePrice == 550 && p.NetWeight == "1kg"
		})).Return(Product{ID: 1, ProductImage: expectedImageName(".jpg")}, nil)

		body, ct := multipartBody(t, map[string]string{
			"productName": "Honey",
			"price":       "500",
			"prePrice":    "550",
			"netWeight":   "1kg",
		}, "honey.jpg", "img")
		req := httptest.NewRequest(http.MethodPost, "/product-upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Values inserted", rec.Body.String())
		assert.FileExists(t, filepath.Join(root, expectedImageName(".jpg")))
	})

	t.Run("MissingImage", func(t *testing.T) {
		router, _ := newTestRouter(t, new(MockRepository))

		body, ct := multipartBody(t, map[string]string{"productName": "Honey", "price": "500"}, "", "")
		req := httptest.NewRequest(http.MethodPost, "/product-upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BadPrice", func(t *testing.T) {
		router, _ := newTestRouter(t, new(MockRepository))

		body, ct := multipartBody(t, map[string]string{"productName": "Honey", "price": "cheap"}, "a.jpg", "x")
		req := httptest.NewRequest(http.MethodPost, "/product-upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NotMultipart", func(t *testing.T) {
		router, _ := newTestRouter(t, new(MockRepository))

		req := httptest.NewRequest(http.MethodPost, "/product-upload", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_GetByID(t *testing.T) {
	repo := new(MockRepository)
	router, _ := newTestRouter(t, repo)

	repo.On("GetByID", mock.Anything, int64(7)).
		Return(&Product{ID: 7, ProductName: "Ghee", ProductImage: "g.jpg"}, nil)
	repo.On("GetByID", mock.Anything, int64(8)).Return(nil, ErrProductNotFound)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get-product-by-id/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Ghee", got.ProductName)
	assert.Equal(t, "http://localhost:3000/images/g.jpg", got.ImageURL)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get-product-by-id/8", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get-product-by-id/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ListApproved(t *testing.T) {
	repo := new(MockRepository)
	router, _ := newTestRouter(t, repo)

	repo.On("List", mock.Anything, ListOptions{OnlyApproved: true}).Return([]Product{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get-product-approved", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_Update(t *testing.T) {
	t.Run("JSONPartial", func(t *testing.T) {
		repo := new(MockRepository)
		router, _ := newTestRouter(t, repo)

		repo.On("GetByID", mock.Anything, int64(1)).Return(&Product{ID: 1}, nil)
		repo.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(in UpdateProductInput) bool {
			return in.Price != nil && *in.Price == 450 && in.ProductName == nil
		}), (*string)(nil)).Return(nil)

		req := httptest.NewRequest(http.MethodPatch, "/update-product/1", strings.NewReader(`{"price":450}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Product updated", rec.Body.String())
	})

	t.Run("EmptyBody", func(t *testing.T) {
		repo := new(MockRepository)
		router, _ := newTestRouter(t, repo)

		req := httptest.NewRequest(http.MethodPatch, "/update-product/1", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("MultipartWithImageMissingOldFile", func(t *testing.T) {
		repo := new(MockRepository)
		router, root := newTestRouter(t, repo)

		repo.On("GetByID", mock.Anything, int64(2)).Return(&Product{ID: 2, ProductImage: "vanished.jpg"}, nil)

		body, ct := multipartBody(t, map[string]string{"productName": "New"}, "n.png", "x")
		req := httptest.NewRequest(http.MethodPatch, "/update-product/2", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), ErrImageDelete.Error())
		assert.NoFileExists(t, filepath.Join(root, expectedImageName(".png")))
	})

	t.Run("MultipartFieldsOnly", func(t *testing.T) {
		repo := new(MockRepository)
		router, _ := newTestRouter(t, repo)

		repo.On("GetByID", mock.Anything, int64(3)).Return(&Product{ID: 3}, nil)
		repo.On("Update", mock.Anything, int64(3), mock.MatchedBy(func(in UpdateProductInput) bool {
			return in.Role != nil && *in.Role == StatusApproved && in.Price == nil
		}), (*string)(nil)).Return(nil)

		body, ct := multipartBody(t, map[string]string{"role": "approved", "price": ""}, "", "")
		req := httptest.NewRequest(http.MethodPatch, "/update-product/3", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		repo.AssertExpectations(t)
	})

	t.Run("QueryStringIsNotAField", func(t *testing.T) {
		repo := new(MockRepository)
		router, _ := newTestRouter(t, repo)

		req := httptest.NewRequest(http.MethodPatch, "/update-product/1?role=approved", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PriceOutOfRange", func(t *testing.T) {
		for _, price := range []string{"Inf", "NaN", "1e20", "10000000000"} {
			repo := new(MockRepository)
			router, _ := newTestRouter(t, repo)

			req := httptest.NewRequest(http.MethodPatch, "/update-product/1", strings.NewReader("price="+price))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, price)
			repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		}
	})

	t.Run("JSONPriceTooLarge", func(t *testing.T) {
		repo := new(MockRepository)
		router, _ := newTestRouter(t, repo)

		req := httptest.NewRequest(http.MethodPatch, "/update-product/1", strings.NewReader(`{"price":1e20}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_CreateRejectsHugePrice(t *testing.T) {
	repo := new(MockRepository)
	router, _ := newTestRouter(t, repo)

	body, ct := multipartBody(t, map[string]string{"productName": "Honey", "price": "1e20"}, "honey.jpg", "img")
	req := httptest.NewRequest(http.MethodPost, "/product-upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandler_Delete(t *testing.T) {
	repo := new(MockRepository)
	router, root := newTestRouter(t, repo)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.jpg"), []byte("a"), 0o644))

	repo.On("GetByID", mock.Anything, int64(1)).Return(&Product{ID: 1, ProductImage: "a.jpg"}, nil)
	repo.On("Delete", mock.Anything, int64(1)).Return(nil)
	repo.On("GetByID", mock.Anything, int64(2)).Return(nil, ErrProductNotFound)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/deleteProduct/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product and image deleted", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/deleteProduct/2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Image(t *testing.T) {
	router, root := newTestRouter(t, new(MockRepository))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.png"), []byte("png"), 0o644))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/a.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/nope.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/images/x", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("imageName", `..\secret`)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec = httptest.NewRecorder()
	NewHandler(&service{disk: nil}).Image(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
