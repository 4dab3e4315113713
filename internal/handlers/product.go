package handlers

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/alzy/commerce-api/internal/logging"
	"github.com/alzy/commerce-api/internal/services"
	"github.com/alzy/commerce-api/types"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPage        = 1
	maxMultipartMemory = 8 << 20
	formFieldImage     = "image"
)

// ProductService is the product use-case surface used by the handlers.
type ProductService interface {
	List(ctx context.Context, offset, limit int) ([]types.Product, int, error)
	Get(ctx context.Context, id int) (types.Product, error)
	Create(ctx context.Context, in services.ProductInput) (types.Product, error)
	Update(ctx context.Context, id int, in services.ProductInput) (types.Product, error)
	Delete(ctx context.Context, id int) error
	SetImage(ctx context.Context, id int, data []byte) (types.Product, error)
}

// ProductHandler provides HTTP handlers for products.
type ProductHandler struct {
	products ProductService
	logger   logging.Logger
}

func NewProductHandler(products ProductService, logger logging.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// ProductRouter registers product routes on the given router. Every route
// requires authentication.
func ProductRouter(r chi.Router, products ProductService, requireAuth func(http.Handler) http.Handler, logger logging.Logger) {
	handler := NewProductHandler(products, logger)

	r.Use(requireAuth)
	r.Get("/", handler.ListProducts)
	r.Post("/", handler.CreateProduct)
	r.Route("/{productID}", func(r chi.Router) {
		r.Get("/", handler.GetProduct)
		r.Put("/", handler.UpdateProduct)
		r.Delete("/", handler.DeleteProduct)
		r.Put("/image", handler.UploadImage)
	})
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.products.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product")
		return
	}

	writeJSON(w, http.StatusOK, ProductListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req services.ProductInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.products.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.ProductInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.products.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err, "product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage stores the multipart "image" file as the product's picture.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := readImageFile(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.products.SetImage(r.Context(), id, data)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// ProductListResponse is the paginated list response payload.
type ProductListResponse struct {
	Items []types.Product `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int             `json:"total"`
}

// parsePagination accepts page/limit or skip/limit. skip wins when both are
// present; page is then derived from it.
func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = defaultPage
	limit = services.DefaultPageLimit
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, 0, errors.New("invalid limit")
		}
	}
	if limit > services.MaxPageLimit {
		limit = services.MaxPageLimit
	}

	if raw := strings.TrimSpace(query.Get("skip")); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, 0, errors.New("invalid skip")
		}
		return offset/limit + 1, limit, offset, nil
	}

	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 || page > math.MaxInt/limit {
			return 0, 0, 0, errors.New("invalid page")
		}
	}

	return page, limit, (page - 1) * limit, nil
}

func readImageFile(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageBytes+maxMultipartMemory)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, errors.New("invalid multipart form")
	}

	files := r.MultipartForm.File[formFieldImage]
	if len(files) == 0 {
		return nil, errors.New("image file is required")
	}
	if len(files) > 1 {
		return nil, errors.New("only one image file is allowed")
	}

	file, err := files[0].Open()
	if err != nil {
		return nil, errors.New("failed to read image file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxImageBytes+1))
	if err != nil {
		return nil, errors.New("failed to read image file")
	}
	return data, nil
}
