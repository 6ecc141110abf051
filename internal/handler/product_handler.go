package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/village-market/internal/service"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalog  service.CatalogService
	products service.ProductService
}

func NewProductHandler(catalog service.CatalogService, products service.ProductService) *ProductHandler {
	return &ProductHandler{catalog: catalog, products: products}
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	if c.QueryParam("latest") == "true" {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		list, err := h.catalog.LatestProducts(ctx, limit)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"products": toProductList(list)})
	}
	list, err := h.catalog.ListProducts(ctx, c.QueryParam("category"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"products": toProductList(list)})
}

func (h *ProductHandler) GetBySlug(c echo.Context) error {
	p, err := h.catalog.ProductBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

type productRequest struct {
	ShopID      uint64           `json:"shopId"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
	Images      []string         `json:"images"`
	IsAvailable *bool            `json:"isAvailable"`
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	in := service.ProductInput{
		ShopID:      req.ShopID,
		Name:        deref(req.Name),
		Description: deref(req.Description),
		Category:    deref(req.Category),
		Images:      req.Images,
		Available:   req.IsAvailable,
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.Stock != nil {
		in.Stock = *req.Stock
	}
	p, err := h.products.Create(c.Request().Context(), principal(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	p, err := h.products.Update(c.Request().Context(), principal(c), id, service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Images:      req.Images,
		Available:   req.IsAvailable,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	if err := h.products.Delete(c.Request().Context(), principal(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
