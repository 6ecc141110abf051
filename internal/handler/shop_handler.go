package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/service"
)

type ShopHandler struct {
	catalog service.CatalogService
	shops   service.ShopService
}

func NewShopHandler(catalog service.CatalogService, shops service.ShopService) *ShopHandler {
	return &ShopHandler{catalog: catalog, shops: shops}
}

func (h *ShopHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	list, err := h.listShops(ctx, c.QueryParam("featured") == "true")
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"shops": toShopList(list)})
}

func (h *ShopHandler) listShops(ctx context.Context, featured bool) ([]model.Shop, error) {
	if featured {
		return h.catalog.FeaturedShops(ctx)
	}
	return h.catalog.ListShops(ctx)
}

func (h *ShopHandler) GetBySlug(c echo.Context) error {
	page, err := h.catalog.ShopBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	resp := toShopResponse(page.Shop)
	resp.Products = toProductList(page.Products)
	return c.JSON(http.StatusOK, resp)
}

func (h *ShopHandler) ListMine(c echo.Context) error {
	list, err := h.shops.ListMine(c.Request().Context(), principal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"shops": toShopList(list)})
}

type shopRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	HouseNumber *string `json:"houseNumber"`
	LogoURL     *string `json:"logoUrl"`
	IsActive    *bool   `json:"isActive"`
}

func (h *ShopHandler) Create(c echo.Context) error {
	var req shopRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	shop, err := h.shops.Create(c.Request().Context(), principal(c), service.ShopInput{
		Name:        deref(req.Name),
		Description: deref(req.Description),
		HouseNumber: deref(req.HouseNumber),
		LogoURL:     deref(req.LogoURL),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toShopResponse(shop))
}

func (h *ShopHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid shop id")
	}
	var req shopRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	shop, err := h.shops.Update(c.Request().Context(), principal(c), id, service.ShopPatch{
		Name:        req.Name,
		Description: req.Description,
		HouseNumber: req.HouseNumber,
		LogoURL:     req.LogoURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toShopResponse(shop))
}

func (h *ShopHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid shop id")
	}
	if err := h.shops.Delete(c.Request().Context(), principal(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
