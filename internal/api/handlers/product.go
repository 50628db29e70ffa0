package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GetProduct serves GET /api/v1/products/{id}; id may also be a slug.
func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())
		lookup := r.PathValue("id")

		product, err := h.productService.GetProduct(r.Context(), lookup)
		if err != nil {
			logger.Warn("Failed to get product", slog.String("lookup", lookup), slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

// ListProducts serves GET /api/v1/products?category=&featured=&popular=&page=&pageSize=
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		page, pageSize := utils.ParsePagination(r, 1, service.DefaultPageSize)

		filter := models.ProductFilter{
			CategorySlug: r.URL.Query().Get("category"),
			Featured:     utils.ParseOptionalBool(r, "featured"),
			Popular:      utils.ParseOptionalBool(r, "popular"),
			Page:         page,
			PageSize:     pageSize,
		}

		products, total, err := h.productService.ListProducts(r.Context(), filter)
		if err != nil {
			logger.Error("Failed to list products", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		logger.Info("Products listed", slog.Int("count", len(products)), slog.Int("total", total))
		response.Success(w, http.StatusOK, models.NewPage(products, total, page, min(pageSize, service.MaxPageSize)))
	}
}
