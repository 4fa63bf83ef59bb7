package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

func TestInquiryHandler_Contact(t *testing.T) {
	e := newEcho()
	var got ports.InquiryInput
	h := NewInquiryHandler(&stubInquiryService{
		submitFn: func(_ context.Context, in ports.InquiryInput) (*domain.Inquiry, error) {
			got = in
			return &domain.Inquiry{
				Reference:   "INQ-20260302-0042",
				Email:       "ada@example.com",
				SubmittedAt: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
			}, nil
		},
	})

	body := `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","subject":"Custom Order Request","message":"Fifty magnets please.","subscribe_newsletter":true}`
	rec := httptest.NewRecorder()
	if err := h.Contact(e.NewContext(jsonRequest(http.MethodPost, "/inquiry/contact", body), rec)); err != nil {
		t.Fatalf("contact: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.FirstName != "Ada" || !got.SubscribeNewsletter {
		t.Errorf("input not forwarded: %+v", got)
	}

	var resp struct {
		Data inquiryData `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Data.Reference != "INQ-20260302-0042" || resp.Data.SubmittedAt != "2026-03-02T12:00:00Z" {
		t.Errorf("unexpected data %+v", resp.Data)
	}
}

func TestInquiryHandler_Subjects(t *testing.T) {
	e := newEcho()
	h := NewInquiryHandler(&stubInquiryService{})

	rec := httptest.NewRecorder()
	if err := h.Subjects(e.NewContext(httptest.NewRequest(http.MethodGet, "/inquiry/subjects", nil), rec)); err != nil {
		t.Fatalf("subjects: %v", err)
	}
	var resp struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != len(domain.InquirySubjects) {
		t.Errorf("expected %d subjects, got %d", len(domain.InquirySubjects), len(resp.Data))
	}
}
