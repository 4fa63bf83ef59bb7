package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/storefront/internal/api/metrics"
	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

const imagesField = "images"

// ProductHandler exposes the product lifecycle. Create and update take
// multipart forms so images travel with the fields.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// Create handles POST /products.
//
// @Summary      Create product
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title              formData  string  true   "Title (1-150 chars)"
// @Param        price              formData  number  true   "Price, greater than 0"
// @Param        category           formData  string  true   "Category name"
// @Param        rating             formData  number  false  "Rating 0.0-5.0"
// @Param        description        formData  string  false  "Description"
// @Param        short_description  formData  string  false  "Short description"
// @Param        images             formData  file    false  "Up to 5 images"
// @Success      201                {object}  apiResponse{data=domain.Product}
// @Failure      400                {object}  errorResponse
// @Failure      403                {object}  errorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	in := domain.ProductInput{
		Title:            form.Get("title"),
		Description:      form.Get("description"),
		ShortDescription: form.Get("short_description"),
		Category:         form.Get("category"),
	}
	if !form.Has("price") {
		return domain.Invalid("price", "price is required")
	}
	if in.Price, err = parseFloat("price", form.Get("price")); err != nil {
		return err
	}
	if form.Has("rating") {
		if in.Rating, err = parseFloat("rating", form.Get("rating")); err != nil {
			return err
		}
	}
	if in.Images, _, err = formImages(c); err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), caller(c), in)
	recordMutation("create", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, apiResponse{Success: true, Message: "Product created successfully", Data: p})
}

// Update handles PUT /products/:id. Only the fields present in the form are
// changed. Uploaded images replace the whole list; clear_images=true empties
// it.
//
// @Summary      Update product
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id                 path      string  true   "Product id"
// @Param        title              formData  string  false  "Title"
// @Param        price              formData  number  false  "Price"
// @Param        category           formData  string  false  "Category name"
// @Param        rating             formData  number  false  "Rating"
// @Param        description        formData  string  false  "Description"
// @Param        short_description  formData  string  false  "Short description"
// @Param        clear_images       formData  bool    false  "Remove all images"
// @Param        images             formData  file    false  "Replacement images"
// @Success      200                {object}  apiResponse{data=domain.Product}
// @Failure      400                {object}  errorResponse
// @Failure      404                {object}  errorResponse
// @Failure      409                {object}  errorResponse
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	var changes domain.ProductChanges
	changes.Title = optString(form, "title")
	changes.Description = optString(form, "description")
	changes.ShortDescription = optString(form, "short_description")
	changes.Category = optString(form, "category")
	if changes.Price, err = optFloat(form, "price"); err != nil {
		return err
	}
	if changes.Rating, err = optFloat(form, "rating"); err != nil {
		return err
	}

	images, present, err := formImages(c)
	if err != nil {
		return err
	}
	switch {
	case present:
		changes.Images = &images
	case strings.EqualFold(form.Get("clear_images"), "true"):
		empty := []domain.ImageUpload{}
		changes.Images = &empty
	}

	p, err := h.service.Update(c.Request().Context(), caller(c), c.Param("id"), changes)
	recordMutation("update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiResponse{Success: true, Message: "Product updated successfully", Data: p})
}

// Lock handles PATCH /products/:id/lock.
//
// @Summary      Lock product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  apiResponse{data=domain.Product}
// @Failure      404  {object}  errorResponse
// @Router       /products/{id}/lock [patch]
func (h *ProductHandler) Lock(c echo.Context) error {
	p, err := h.service.Lock(c.Request().Context(), caller(c), c.Param("id"))
	recordMutation("lock", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiResponse{Success: true, Message: "Product locked successfully", Data: p})
}

// Unlock handles PATCH /products/:id/unlock.
//
// @Summary      Unlock product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  apiResponse{data=domain.Product}
// @Failure      404  {object}  errorResponse
// @Router       /products/{id}/unlock [patch]
func (h *ProductHandler) Unlock(c echo.Context) error {
	p, err := h.service.Unlock(c.Request().Context(), caller(c), c.Param("id"))
	recordMutation("unlock", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiResponse{Success: true, Message: "Product unlocked successfully", Data: p})
}

// Delete handles DELETE /products/:id. Locked products can be deleted.
//
// @Summary      Delete product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  apiResponse
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	err := h.service.Delete(c.Request().Context(), caller(c), c.Param("id"))
	recordMutation("delete", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiResponse{Success: true, Message: "Product deleted successfully"})
}

// Get handles GET /products/:id.
//
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  apiResponse{data=domain.Product}
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiResponse{Success: true, Message: "Product details retrieved successfully", Data: p})
}

// List handles GET /products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category       query     string  false  "Category name"
// @Param        unlocked_only  query     bool    false  "Only unlocked products"
// @Param        skip           query     int     false  "Offset"
// @Param        limit          query     int     false  "Page size (default 100, max 1000)"
// @Success      200            {object}  listResponse{data=[]domain.Product}
// @Failure      400            {object}  errorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	var q productQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	return h.list(c, q, "products")
}

// Unlocked handles GET /products/unlocked.
//
// @Summary      List unlocked products
// @Tags         products
// @Produce      json
// @Param        category  query     string  false  "Category name"
// @Param        skip      query     int     false  "Offset"
// @Param        limit     query     int     false  "Page size (default 100, max 1000)"
// @Success      200       {object}  listResponse{data=[]domain.Product}
// @Failure      400       {object}  errorResponse
// @Router       /products/unlocked [get]
func (h *ProductHandler) Unlocked(c echo.Context) error {
	var q productQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	q.UnlockedOnly = true
	return h.list(c, q, "unlocked products")
}

func (h *ProductHandler) list(c echo.Context, q productQuery, noun string) error {
	products, total, err := h.service.List(c.Request().Context(), domain.ProductFilter{
		Category:     q.Category,
		UnlockedOnly: q.UnlockedOnly,
		Skip:         q.Skip,
		Limit:        q.Limit,
	})
	if err != nil {
		return err
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return c.JSON(http.StatusOK, listResponse{
		Success: true,
		Message: "Retrieved " + strconv.Itoa(len(products)) + " " + noun + " successfully",
		Data:    products,
		Total:   total,
	})
}

// formImages reads the uploaded image parts. present is false when the
// request carried no image field at all.
func formImages(c echo.Context) (images []domain.ImageUpload, present bool, err error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, false, nil
		}
		return nil, false, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	headers, ok := form.File[imagesField]
	if !ok {
		return nil, false, nil
	}
	images = make([]domain.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, true, echo.NewHTTPError(http.StatusBadRequest, "failed to read image "+fh.Filename)
		}
		images = append(images, domain.ImageUpload{Filename: fh.Filename, Data: data})
	}
	return images, true, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func optString(form url.Values, key string) *string {
	if !form.Has(key) {
		return nil
	}
	v := form.Get(key)
	return &v
}

func optFloat(form url.Values, key string) (*float64, error) {
	if !form.Has(key) {
		return nil, nil
	}
	f, err := parseFloat(key, form.Get(key))
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseFloat(field, raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, domain.Invalid(field, "%s must be a number", field)
	}
	return f, nil
}

func recordMutation(op string, err error) {
	result := "success"
	if err != nil {
		result = domain.Code(err)
	}
	metrics.ProductMutationsTotal.WithLabelValues(op, result).Inc()
}
