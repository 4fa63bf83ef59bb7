package domain

import "time"

// EventKind names a notification event.
type EventKind string

const (
	EventUserRegistered   EventKind = "user.registered"
	EventProductCreated   EventKind = "product.created"
	EventInquirySubmitted EventKind = "inquiry.submitted"
)

// Event is a fire-and-forget notification emitted after a successful
// mutation. Subject identifies the entity the event is about and, together
// with Kind, keys deduplication.
type Event struct {
	Kind       EventKind         `json:"kind"`
	Subject    string            `json:"subject"`
	Recipient  string            `json:"recipient,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Inquiry is a customer contact-form submission. ID is unique per
// submission; Reference is the short code quoted back to the customer.
type Inquiry struct {
	ID                  string    `json:"id"`
	Reference           string    `json:"reference"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	Email               string    `json:"email"`
	PhoneNumber         string    `json:"phone_number,omitempty"`
	Subject             string    `json:"subject"`
	Message             string    `json:"message"`
	SubscribeNewsletter bool      `json:"subscribe_newsletter"`
	SubmittedAt         time.Time `json:"submitted_at"`
}

// InquirySubjects are the predefined subjects offered by the contact form.
var InquirySubjects = []string{
	"General Inquiry",
	"Custom Order Request",
	"Product Information",
	"Technical Support",
	"Bulk Order Inquiry",
	"Collaboration Opportunity",
	"Complaint",
	"Feedback",
	"Other",
}
