package handler

import "github.com/pixelforge/storefront/internal/core/domain"

// apiResponse is the success envelope of every single-item endpoint.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// listResponse is the success envelope of paged listings.
type listResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Total   int64  `json:"total"`
}

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// --- Auth ---

type credentialsRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type authData struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

// --- Categories ---

type createCategoryRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// --- Inquiry ---

// inquiryRequest only checks presence; lengths are enforced on the trimmed
// values by the inquiry service.
type inquiryRequest struct {
	FirstName           string `json:"first_name"   validate:"required"`
	LastName            string `json:"last_name"    validate:"required"`
	Email               string `json:"email"        validate:"required"`
	PhoneNumber         string `json:"phone_number"`
	Subject             string `json:"subject"      validate:"required"`
	Message             string `json:"message"      validate:"required"`
	SubscribeNewsletter bool   `json:"subscribe_newsletter"`
}

type inquiryData struct {
	Reference   string `json:"reference"`
	Email       string `json:"email"`
	SubmittedAt string `json:"submitted_at"`
}

// --- Paging ---

type pageQuery struct {
	Skip  int `query:"skip"`
	Limit int `query:"limit"`
}

type productQuery struct {
	Skip         int    `query:"skip"`
	Limit        int    `query:"limit"`
	Category     string `query:"category"`
	UnlockedOnly bool   `query:"unlocked_only"`
}

type categoryQuery struct {
	Skip       int  `query:"skip"`
	Limit      int  `query:"limit"`
	ActiveOnly bool `query:"active_only"`
}
