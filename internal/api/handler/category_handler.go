package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

// CategoryHandler exposes the category registry. Categories are addressed by
// their exact name.
type CategoryHandler struct {
	service ports.CategoryService
}

func NewCategoryHandler(service ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// List returns categories, optionally only active ones.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        active_only  query     bool  false  "Only active categories"
// @Param        skip         query     int   false  "Offset"
// @Param        limit        query     int   false  "Page size (default 100, max 1000)"
// @Success      200          {object}  listResponse{data=[]domain.Category}
// @Router       /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	var q categoryQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	return h.list(c, q.ActiveOnly, pageQuery{Skip: q.Skip, Limit: q.Limit})
}

// Active returns active categories only.
//
// @Summary      List active categories
// @Tags         categories
// @Produce      json
// @Param        skip   query     int  false  "Offset"
// @Param        limit  query     int  false  "Page size (default 100, max 1000)"
// @Success      200    {object}  listResponse{data=[]domain.Category}
// @Router       /categories/active [get]
func (h *CategoryHandler) Active(c echo.Context) error {
	var q pageQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	return h.list(c, true, q)
}

func (h *CategoryHandler) list(c echo.Context, activeOnly bool, q pageQuery) error {
	cats, total, err := h.service.List(c.Request().Context(), activeOnly, q.Skip, q.Limit)
	if err != nil {
		return err
	}
	if cats == nil {
		cats = []*domain.Category{}
	}
	return c.JSON(http.StatusOK, listResponse{Success: true, Message: "Categories retrieved successfully", Data: cats, Total: total})
}

// Get returns one category.
//
// @Summary      Get category
// @Tags         categories
// @Produce      json
// @Param        name  path      string  true  "Category name"
// @Success      200   {object}  apiResponse{data=domain.Category}
// @Failure      404   {object}  errorResponse
// @Router       /categories/{name} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	cat, err := h.service.Get(c.Request().Context(), pathParam(c, "name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiResponse{Success: true, Message: "Category retrieved successfully", Data: cat})
}

// Create adds a category (admin only).
//
// @Summary      Create category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCategoryRequest  true  "Category"
// @Success      201   {object}  apiResponse{data=domain.Category}
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req createCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.service.Create(c.Request().Context(), caller(c), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, apiResponse{Success: true, Message: "Category created successfully", Data: cat})
}

// Update changes name, description and active flag in one write (admin only).
//
// @Summary      Update category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string                 true  "Category name"
// @Param        body  body      updateCategoryRequest  true  "Fields to change"
// @Success      200   {object}  apiResponse{data=domain.Category}
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /categories/{name} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	name := pathParam(c, "name")
	var req updateCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.service.Update(c.Request().Context(), caller(c), name, domain.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiResponse{Success: true, Message: "Category updated successfully", Data: cat})
}

// Delete deactivates a category (admin only). Products keep their category.
//
// @Summary      Deactivate category
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Category name"
// @Success      200   {object}  apiResponse{data=domain.Category}
// @Failure      404   {object}  errorResponse
// @Router       /categories/{name} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	cat, err := h.service.Deactivate(c.Request().Context(), caller(c), pathParam(c, "name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiResponse{Success: true, Message: "Category deactivated successfully", Data: cat})
}
