package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

type InquiryHandler struct {
	service ports.InquiryService
}

func NewInquiryHandler(service ports.InquiryService) *InquiryHandler {
	return &InquiryHandler{service: service}
}

// Contact accepts a contact-form submission.
//
// @Summary      Submit inquiry
// @Tags         inquiry
// @Accept       json
// @Produce      json
// @Param        body  body      inquiryRequest  true  "Contact form"
// @Success      201   {object}  apiResponse{data=inquiryData}
// @Failure      400   {object}  errorResponse
// @Router       /inquiry/contact [post]
func (h *InquiryHandler) Contact(c echo.Context) error {
	var req inquiryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	inq, err := h.service.Submit(c.Request().Context(), ports.InquiryInput{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		PhoneNumber:         req.PhoneNumber,
		Subject:             req.Subject,
		Message:             req.Message,
		SubscribeNewsletter: req.SubscribeNewsletter,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, apiResponse{
		Success: true,
		Message: "Thank you for your inquiry! We'll get back to you within 24 hours.",
		Data: inquiryData{
			Reference:   inq.Reference,
			Email:       inq.Email,
			SubmittedAt: inq.SubmittedAt.Format(time.RFC3339),
		},
	})
}

// Subjects lists the suggested inquiry subjects.
//
// @Summary      Inquiry subjects
// @Tags         inquiry
// @Produce      json
// @Success      200  {object}  apiResponse{data=[]string}
// @Router       /inquiry/subjects [get]
func (h *InquiryHandler) Subjects(c echo.Context) error {
	return c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: "Available inquiry subjects",
		Data:    domain.InquirySubjects,
	})
}
