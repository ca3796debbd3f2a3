package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends moderation notifications over SMTP.
type Mailer struct {
	host     string
	port     int
	from     string
	password string
}

func New(host string, port int, from, password string) *Mailer {
	return &Mailer{host: host, port: port, from: from, password: password}
}

// SendListingReportedEmail notifies the moderation inbox that a listing
// was reported.
func (m *Mailer) SendListingReportedEmail(toEmail, listingTitle, reason string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Listing Reported")
	msg.SetBody("text/plain", fmt.Sprintf("The listing '%s' was reported for: %s.", listingTitle, reason))

	d := gomail.NewDialer(m.host, m.port, m.from, m.password)
	return d.DialAndSend(msg)
}
