package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

const (
	maxInquiryNameLength    = 50
	maxInquirySubjectLength = 100
	maxInquiryPhoneLength   = 20
	minInquiryPhoneDigits   = 10
	minInquiryMessageLength = 10
	maxInquiryMessageLength = 1000
)

// InquiryService accepts contact-form submissions and forwards them to the
// shop owner through the notifier. Inquiries are not stored.
type InquiryService struct {
	notifier   ports.Notifier
	clock      ports.Clock
	adminEmail string
	validate   *validator.Validate
	logger     zerolog.Logger
}

func NewInquiryService(notifier ports.Notifier, clock ports.Clock, adminEmail string, logger zerolog.Logger) *InquiryService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &InquiryService{
		notifier:   notifier,
		clock:      clock,
		adminEmail: adminEmail,
		validate:   validator.New(),
		logger:     logger,
	}
}

func (s *InquiryService) Submit(ctx context.Context, in ports.InquiryInput) (*domain.Inquiry, error) {
	inq, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	inq.ID = uuid.NewString()
	inq.SubmittedAt = s.clock.Now().UTC()
	inq.Reference = inquiryReference(inq)

	s.logger.Info().Str("inquiry_id", inq.ID).Str("reference", inq.Reference).Str("email", inq.Email).Str("subject", inq.Subject).Msg("inquiry received")

	if s.notifier != nil {
		s.notifier.Notify(domain.Event{
			Kind:      domain.EventInquirySubmitted,
			Subject:   inq.ID,
			Recipient: s.adminEmail,
			Attributes: map[string]string{
				"reference":            inq.Reference,
				"first_name":           inq.FirstName,
				"last_name":            inq.LastName,
				"email":                inq.Email,
				"phone_number":         inq.PhoneNumber,
				"subject":              inq.Subject,
				"message":              inq.Message,
				"subscribe_newsletter": fmt.Sprintf("%t", inq.SubscribeNewsletter),
			},
			OccurredAt: inq.SubmittedAt,
		})
	}
	return inq, nil
}

func (s *InquiryService) normalize(in ports.InquiryInput) (*domain.Inquiry, error) {
	inq := &domain.Inquiry{
		FirstName:           strings.TrimSpace(in.FirstName),
		LastName:            strings.TrimSpace(in.LastName),
		Email:               domain.NormalizeEmail(in.Email),
		PhoneNumber:         strings.TrimSpace(in.PhoneNumber),
		Subject:             strings.TrimSpace(in.Subject),
		Message:             strings.TrimSpace(in.Message),
		SubscribeNewsletter: in.SubscribeNewsletter,
	}

	if err := requiredText("first_name", inq.FirstName, maxInquiryNameLength); err != nil {
		return nil, err
	}
	if err := requiredText("last_name", inq.LastName, maxInquiryNameLength); err != nil {
		return nil, err
	}
	if err := s.validate.Var(inq.Email, "required,email"); err != nil {
		return nil, domain.Invalid("email", "email must be a valid email address")
	}
	if inq.PhoneNumber != "" {
		if utf8.RuneCountInString(inq.PhoneNumber) > maxInquiryPhoneLength {
			return nil, domain.Invalid("phone_number", "phone number must be at most %d characters", maxInquiryPhoneLength)
		}
		if countDigits(inq.PhoneNumber) < minInquiryPhoneDigits {
			return nil, domain.Invalid("phone_number", "phone number must be at least %d digits", minInquiryPhoneDigits)
		}
	}
	if err := requiredText("subject", inq.Subject, maxInquirySubjectLength); err != nil {
		return nil, err
	}
	if err := requiredText("message", inq.Message, maxInquiryMessageLength); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(inq.Message) < minInquiryMessageLength {
		return nil, domain.Invalid("message", "message must be at least %d characters long", minInquiryMessageLength)
	}
	return inq, nil
}

func requiredText(field, v string, max int) error {
	if v == "" {
		return domain.Invalid(field, "%s cannot be empty", field)
	}
	if utf8.RuneCountInString(v) > max {
		return domain.Invalid(field, "%s must be at most %d characters", field, max)
	}
	return nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// inquiryReference formats INQ-YYYYMMDD-NNNN where NNNN is derived from the
// inquiry ID. References may repeat; the ID does not.
func inquiryReference(inq *domain.Inquiry) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(inq.ID))
	return fmt.Sprintf("INQ-%s-%04d", inq.SubmittedAt.Format("20060102"), h.Sum32()%10000)
}
