package worker

import (
	"crypto/tls"
	"fmt"
	"strings"

	"dealflow/scraper"

	"github.com/badoux/checkmail"
	"gopkg.in/gomail.v2"
)

// AlertMailer delivers saved-search lead alerts over SMTP
type AlertMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewAlertMailer(host string, port int, username, password, from string) *AlertMailer {
	dialer := gomail.NewDialer(host, port, username, password)
	dialer.TLSConfig = &tls.Config{ServerName: host}

	return &AlertMailer{
		dialer: dialer,
		from:   from,
	}
}

// SendLeadAlert mails the new leads a saved search produced. The
// recipient is validated before dialing so a malformed address fails
// fast instead of burning an SMTP round trip.
func (am *AlertMailer) SendLeadAlert(email, searchName string, leads []scraper.Listing) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return fmt.Errorf("invalid alert recipient %q: %w", email, err)
	}
	if len(leads) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", am.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("%d new leads for %q", len(leads), searchName))
	m.SetBody("text/html", am.buildBody(searchName, leads))

	if err := am.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send lead alert: %w", err)
	}
	return nil
}

func (am *AlertMailer) buildBody(searchName string, leads []scraper.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>New leads for %s</h2><ul>", searchName)
	for _, lead := range leads {
		fmt.Fprintf(&b, "<li><strong>%s, %s %s</strong> &mdash; $%d, %d days on market",
			lead.Address, lead.City, lead.State, lead.Price, lead.DaysOnMarket)
		if lead.ListingURL != "" {
			fmt.Fprintf(&b, ` (<a href="%s">listing</a>)`, lead.ListingURL)
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul><p>Manage alerts from your saved searches page.</p>")
	return b.String()
}
