package email

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"
)

// ContactForm is a message sent through the site's contact page.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Message string `json:"message"`
}

// Normalize trims surrounding whitespace from every field.
func (f ContactForm) Normalize() ContactForm {
	return ContactForm{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Address: strings.TrimSpace(f.Address),
		Message: strings.TrimSpace(f.Message),
	}
}

// Validate checks the required fields and the email format.
func (f ContactForm) Validate() error {
	if f.Name == "" || f.Email == "" || f.Message == "" {
		return errors.New("missing required fields: name, email, and message are required")
	}
	if !ValidAddress(f.Email) {
		return errors.New("invalid email format")
	}
	return nil
}

var ghana = loadGhana()

func loadGhana() *time.Location {
	loc, err := time.LoadLocation("Africa/Accra")
	if err != nil {
		return time.UTC
	}
	return loc
}

// GhanaTime formats t the way submission times are shown to the office.
func GhanaTime(t time.Time) string {
	return t.In(ghana).Format("January 2, 2006 at 03:04 PM") + " (Ghana Time)"
}

// FormatContact builds the subject and plain-text body of a contact form
// notification.
func FormatContact(f ContactForm, submitted time.Time) (subject, body string) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "New Contact Form Submission - King Lemuel Properties\n\n")
	fmt.Fprintf(&buf, "Name: %s\n", f.Name)
	fmt.Fprintf(&buf, "Email: %s\n", f.Email)
	if f.Phone != "" {
		fmt.Fprintf(&buf, "Phone: %s\n", f.Phone)
	}
	if f.Address != "" {
		fmt.Fprintf(&buf, "Address: %s\n", f.Address)
	}
	fmt.Fprintf(&buf, "\nMessage:\n%s\n\n", f.Message)
	fmt.Fprintf(&buf, "Submitted: %s\n\n", GhanaTime(submitted))
	fmt.Fprintf(&buf, "---\nThis email was sent from the King Lemuel Properties contact form.\n")
	fmt.Fprintf(&buf, "Reply directly to this email to respond to the customer.\n")

	return "New Contact Form Submission from " + f.Name, buf.String()
}

// InquiryNotice is what the office needs to know about a new inquiry.
type InquiryNotice struct {
	ListingID    string
	ListingTitle string
	Price        float64
	Name         string
	Email        string
	Phone        string
	Message      string
}

// FormatInquiry builds the subject and body of a new-inquiry notification.
func FormatInquiry(n InquiryNotice, submitted time.Time) (subject, body string) {
	var buf bytes.Buffer

	title := n.ListingTitle
	if title == "" {
		title = n.ListingID
	}
	fmt.Fprintf(&buf, "New inquiry about: %s\n", title)
	if n.Price > 0 {
		fmt.Fprintf(&buf, "Price: GH₵%s\n", formatWithCommas(int64(n.Price)))
	}
	fmt.Fprintf(&buf, "Listing ID: %s\n\n", n.ListingID)
	fmt.Fprintf(&buf, "From: %s <%s>\n", n.Name, n.Email)
	if n.Phone != "" {
		fmt.Fprintf(&buf, "Phone: %s\n", n.Phone)
	}
	fmt.Fprintf(&buf, "\n%s\n\n", n.Message)
	fmt.Fprintf(&buf, "Submitted: %s\n", GhanaTime(submitted))

	return "Property inquiry: " + title, buf.String()
}

// Mailer delivers notifications to the office inbox. In dev mode, or when
// SMTP is not configured, messages are logged instead of sent.
type Mailer struct {
	cfg     SMTPConfig
	office  string
	devMode bool
	send    func(SMTPConfig, Message) error
}

// NewMailer creates a mailer that delivers to office.
func NewMailer(cfg SMTPConfig, office string, devMode bool) *Mailer {
	return &Mailer{cfg: cfg, office: office, devMode: devMode, send: Send}
}

// SendContact delivers a contact form submission. Replies go to the
// visitor.
func (m *Mailer) SendContact(f ContactForm, submitted time.Time) error {
	subject, body := FormatContact(f, submitted)
	return m.deliver(Message{To: []string{m.office}, ReplyTo: f.Email, Subject: subject, Body: body})
}

// SendInquiry delivers a new-inquiry notification.
func (m *Mailer) SendInquiry(n InquiryNotice, submitted time.Time) error {
	subject, body := FormatInquiry(n, submitted)
	return m.deliver(Message{To: []string{m.office}, ReplyTo: n.Email, Subject: subject, Body: body})
}

func (m *Mailer) deliver(msg Message) error {
	if m.devMode || !m.cfg.IsConfigured() || m.office == "" {
		slog.Info("email not sent (dev mode or SMTP unconfigured)",
			"to", strings.Join(msg.To, ","),
			"subject", msg.Subject,
			"body", msg.Body,
		)
		return nil
	}
	if err := m.send(m.cfg, msg); err != nil {
		return fmt.Errorf("sending %q: %w", msg.Subject, err)
	}
	return nil
}
