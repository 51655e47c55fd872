package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers emails through an SMTP relay using go-mail.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates a sender for the given SMTP relay.
func NewSMTPSender(host string, port int, username, password, from, fromName string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
	}
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, toEmail, firstName string) error {
	data := welcomeEmailData{
		baseEmailData: baseEmailData{
			Title:      subjectWelcome,
			Heading:    "Welcome aboard",
			Subheading: "Your rental profile is ready. Complete it to raise your trust score and stand out to landlords.",
		},
		FirstName: firstName,
	}

	html, err := renderEmailTemplate("welcome.html", data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWelcome, html)
}

func (s *SMTPSender) SendSavedSearchMatchEmail(ctx context.Context, toEmail, searchName, listingURL string) error {
	data := savedSearchMatchEmailData{
		baseEmailData: baseEmailData{
			Title:      subjectSavedSearchMatch,
			Heading:    "New match found",
			Subheading: "A listing was just published that fits one of your saved searches.",
			CTALabel:   "View listing",
			CTAURL:     listingURL,
		},
		SearchName: searchName,
	}

	html, err := renderEmailTemplate("saved_search_match.html", data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectSavedSearchMatch, html)
}

func (s *SMTPSender) SendTrustScoreChangedEmail(ctx context.Context, toEmail string, score, previousScore int) error {
	data := trustScoreChangedEmailData{
		baseEmailData: baseEmailData{
			Title:      subjectTrustScoreChanged,
			Heading:    "Trust score updated",
			Subheading: "Your profile trust score has been recalculated.",
		},
		Score:         score,
		PreviousScore: previousScore,
		Improved:      score >= previousScore,
	}

	html, err := renderEmailTemplate("trust_score_changed.html", data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectTrustScoreChanged, html)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		// Some SMTP relays resolve to unroutable IPv6 addresses; force IPv4.
		gomail.WithDialContextFunc(func(ctx context.Context, _, addr string) (net.Conn, error) {
			d := net.Dialer{Timeout: 15 * time.Second}
			return d.DialContext(ctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}
	return nil
}
