// Package company derives website and naming signals from a corporate email address.
// Every function here is pure: the tenant name produced by DisplayName is the
// natural key used for idempotent provisioning.
package company

import (
	"fmt"
	"strings"

	"github.com/ainager-onboarding/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// publicProviders are mailbox hosts that never identify a company.
var publicProviders = map[string]struct{}{
	"gmail.com": {}, "googlemail.com": {}, "yahoo.com": {}, "yahoo.co.uk": {},
	"hotmail.com": {}, "outlook.com": {}, "live.com": {}, "msn.com": {},
	"aol.com": {}, "icloud.com": {}, "me.com": {}, "mac.com": {},
	"protonmail.com": {}, "proton.me": {}, "gmx.com": {}, "gmx.de": {},
	"mail.com": {}, "yandex.com": {}, "yandex.ru": {}, "zoho.com": {},
	"qq.com": {}, "163.com": {},
}

// NormalizeEmail trims and lower-cases an address. All per-email keys use this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DomainOf returns the domain part of email. The address must contain exactly
// one '@' with non-empty local and domain parts.
func DomainOf(email string) (string, error) {
	parts := strings.Split(NormalizeEmail(email), "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid email address: %w", domain.ErrValidation)
	}
	return parts[1], nil
}

// IsPublicProvider reports whether d belongs to the public mailbox deny-list.
func IsPublicProvider(d string) bool {
	_, ok := publicProviders[strings.ToLower(d)]
	return ok
}

// CompanyDomain validates that email is a well-formed company address and returns its domain.
func CompanyDomain(email string) (string, error) {
	d, err := DomainOf(email)
	if err != nil {
		return "", err
	}
	if !strings.Contains(d, ".") || strings.HasPrefix(d, ".") || strings.HasSuffix(d, ".") {
		return "", fmt.Errorf("invalid email domain: %w", domain.ErrValidation)
	}
	if IsPublicProvider(d) {
		return "", fmt.Errorf("please use your company email address: %w", domain.ErrValidation)
	}
	return d, nil
}

// CandidateURL guesses the website origin for d. It is not verified to be reachable.
func CandidateURL(d string) string {
	if strings.HasPrefix(d, "www.") {
		return "https://" + d
	}
	return "https://www." + d
}

// DisplayName turns a domain into a human name: "my-shop.com" -> "My Shop",
// "www.acme.io" -> "Acme". Falls back to d when nothing usable remains.
func DisplayName(d string) string {
	label := strings.TrimPrefix(strings.ToLower(d), "www.")
	if i := strings.IndexByte(label, '.'); i >= 0 {
		label = label[:i]
	}
	tokens := strings.FieldsFunc(label, func(r rune) bool { return r == '-' || r == '_' })
	// cases.Caser is stateful; one per call.
	title := cases.Title(language.Und)
	for i, tok := range tokens {
		tokens[i] = title.String(tok)
	}
	name := strings.Join(tokens, " ")
	if name == "" {
		return d
	}
	return name
}

// Slug lower-cases s and collapses every run of characters outside [a-z0-9]
// into one hyphen, trimming hyphens at both ends.
func Slug(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen {
				b.WriteByte('-')
				pendingHyphen = false
			}
			b.WriteRune(r)
			continue
		}
		pendingHyphen = b.Len() > 0
	}
	return b.String()
}
