package requests

import (
	"regexp"
	"strings"

	"github.com/ggwhite/go-masker"
)

// phonePattern is deliberately loose: it matches digit runs with common
// separators so numbers written as "+90 535 646 87 47" or "(212) 555-0147"
// are caught as one token. Short digit runs such as street numbers are
// filtered out by the digit-count guard below.
var phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)

// MaskPhoneNumbers replaces phone-like digit sequences in free text with
// their masked form so non-parties never see a recipient's direct contact
// details. Tokens with fewer than nine digits are left alone.
func MaskPhoneNumbers(text string) string {
	if text == "" {
		return text
	}
	return phonePattern.ReplaceAllStringFunc(text, maskPhoneToken)
}

// maskPhoneToken reduces a token to its digits and masks the tail. The
// masker formats only 8 and 10 digit strings, so longer numbers (country
// prefixes, leading zeros) are cut down to their last 10 digits first.
func maskPhoneToken(match string) string {
	var digits strings.Builder
	for _, r := range match {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()

	switch {
	case len(number) < 9:
		return match
	case len(number) >= 10:
		return masker.Telephone(number[len(number)-10:])
	default:
		return masker.Telephone(number[len(number)-8:])
	}
}

// RedactForViewer trims a request down to what a non-party viewer may see.
// Parties (owner and assigned donor) always get the full record. The input
// is copied, never mutated: callers hand the same struct to multiple
// viewers.
func RedactForViewer(req HelpRequest, viewerID string) HelpRequest {
	if req.IsParty(viewerID) {
		return req
	}
	req.Notes = nil
	req.Description = MaskPhoneNumbers(req.Description)
	req.Pickup.Address = MaskPhoneNumbers(req.Pickup.Address)
	return req
}
