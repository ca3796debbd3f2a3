package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// WhatsAppLink builds the wa.me deep link used to contact a seller about a
// listing. Non-digit characters are stripped from the phone number and the
// greeting mentions the listing title.
func WhatsAppLink(phone, listingTitle string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	greeting := fmt.Sprintf("Hi! I'm interested in your listing %q on DalagHub.", listingTitle)
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits.String(), url.QueryEscape(greeting))
}

// PhoneLink builds the tel: link for direct calls.
func PhoneLink(phone string) string {
	return "tel:" + phone
}
