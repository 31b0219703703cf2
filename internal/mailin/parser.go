package mailin

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/rumahkita/rumahkita-backend/internal/validator"
)

// InboundMail is a tenant reply received over SMTP, reduced to what the
// inquiry thread needs: plain text plus attachments.
type InboundMail struct {
	SenderEmail string
	SenderName  string
	Subject     string
	Text        string
	Attachments []InboundAttachment
}

// InboundAttachment is a file carried by an inbound mail
type InboundAttachment struct {
	Filename    string
	ContentType string
	Content     io.Reader
	Size        int64
}

// inquiryAddressPattern matches the local part of inquiry reply addresses,
// e.g. inquiry-42@mail.rumahkita.id
var inquiryAddressPattern = regexp.MustCompile(`^inquiry-(\d+)$`)

// ParseInquiryAddress extracts the inquiry ID from a reply address. The
// domain part is validated separately against the configured intake domain.
func ParseInquiryAddress(address string) (inquiryID uint, domain string, err error) {
	localPart, domain, err := splitAddress(address)
	if err != nil {
		return 0, "", err
	}

	matches := inquiryAddressPattern.FindStringSubmatch(localPart)
	if matches == nil {
		return 0, "", fmt.Errorf("not an inquiry reply address: %s", localPart)
	}

	id, err := strconv.ParseUint(matches[1], 10, 64)
	if err != nil || id == 0 {
		return 0, "", fmt.Errorf("invalid inquiry id in address: %s", localPart)
	}

	return uint(id), domain, nil
}

// splitAddress splits an email address into lowercased local part and domain
func splitAddress(address string) (localPart, domain string, err error) {
	address = strings.TrimPrefix(address, "<")
	address = strings.TrimSuffix(address, ">")
	address = strings.TrimSpace(address)

	parts := strings.Split(address, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid email address: %s", address)
	}

	return strings.ToLower(parts[0]), strings.ToLower(parts[1]), nil
}

// ParseMail parses an inbound email from an io.Reader
func ParseMail(r io.Reader) (*InboundMail, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	parsed := &InboundMail{
		Subject: env.GetHeader("Subject"),
		Text:    strings.TrimSpace(env.Text),
	}

	// HTML-only mail still has to land in the thread as text
	if parsed.Text == "" && env.HTML != "" {
		parsed.Text = strings.TrimSpace(stripHTMLTags(env.HTML))
	}

	fromHeader := env.GetHeader("From")
	parsed.SenderName, parsed.SenderEmail = parseFromHeader(fromHeader)

	for _, att := range env.Attachments {
		parsed.Attachments = append(parsed.Attachments, InboundAttachment{
			Filename:    validator.SanitizeFilename(att.FileName),
			ContentType: att.ContentType,
			Content:     bytes.NewReader(att.Content),
			Size:        int64(len(att.Content)),
		})
	}

	// Inline images count too; tenants often paste photos into the body
	for _, att := range env.Inlines {
		if att.FileName != "" {
			parsed.Attachments = append(parsed.Attachments, InboundAttachment{
				Filename:    validator.SanitizeFilename(att.FileName),
				ContentType: att.ContentType,
				Content:     bytes.NewReader(att.Content),
				Size:        int64(len(att.Content)),
			})
		}
	}

	return parsed, nil
}

// parseFromHeader extracts name and email from a From header
func parseFromHeader(from string) (name, email string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	// Pattern: "Name" <email@example.com> or Name <email@example.com>
	re := regexp.MustCompile(`^(?:"?([^"<]*)"?\s*)?<?([^<>]+@[^<>]+)>?$`)
	matches := re.FindStringSubmatch(from)

	if len(matches) >= 3 {
		name = strings.TrimSpace(matches[1])
		email = strings.TrimSpace(matches[2])
		name = strings.Trim(name, `"`)
	} else {
		// Fallback: treat entire string as email
		email = from
	}

	return name, email
}

// stripHTMLTags removes HTML tags from a string
func stripHTMLTags(html string) string {
	// Remove script and style elements
	re := regexp.MustCompile(`(?i)<(script|style)[^>]*>[\s\S]*?</\1>`)
	html = re.ReplaceAllString(html, "")

	// Remove HTML tags
	re = regexp.MustCompile(`<[^>]*>`)
	html = re.ReplaceAllString(html, " ")

	// Decode common HTML entities
	html = strings.ReplaceAll(html, "&nbsp;", " ")
	html = strings.ReplaceAll(html, "&amp;", "&")
	html = strings.ReplaceAll(html, "&lt;", "<")
	html = strings.ReplaceAll(html, "&gt;", ">")
	html = strings.ReplaceAll(html, "&quot;", `"`)
	html = strings.ReplaceAll(html, "&#39;", "'")

	// Collapse runs of whitespace left behind by removed tags
	return strings.Join(strings.Fields(html), " ")
}
