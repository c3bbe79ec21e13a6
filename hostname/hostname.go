// Package hostname normalizes and syntax-checks a hostname before it is
// handed to the trie package as a needle: DNS character-class and label
// checks, reduced to the subset relevant to feeding a matcher rather than
// running an issuance eligibility decision. This package owns what is
// admitted as a needle, not what the trie considers a match.
package hostname

import (
	"net"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"

	"github.com/quietdns/hosttrie/trieerr"
)

const (
	// maxLabels bounds the number of dot-separated labels accepted, an
	// RFC 1035-derived sanity limit.
	maxLabels = 10
	// maxLength mirrors the trie package's needle limit: a hostname this
	// package admits must also fit in a trie needle.
	maxLength     = 254
	maxLabelLen   = 63
	minLabelCount = 2
)

var (
	dnsLabelRegexp    = regexp.MustCompile("^[a-z0-9][a-z0-9-]{0,62}$")
	punycodeRegexp    = regexp.MustCompile("^xn--")
	idnReservedRegexp = regexp.MustCompile("^[a-z0-9]{2}--")
)

func isDNSCharacter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') ||
		('A' <= ch && ch <= 'Z') ||
		('0' <= ch && ch <= '9') ||
		ch == '.' || ch == '-'
}

// Normalize lowercases s, checks that any punycode ("xn--") label decodes
// to NFKC-normalized Unicode (such labels are returned unchanged in their
// lowercase ACE form), and rejects anything that isn't a syntactically
// valid hostname made of DNS label characters. The returned string is exactly what should be
// handed to trie.Container.SetNeedle: lowercase ASCII, no trailing dot, at
// most maxLength bytes.
func Normalize(s string) (string, error) {
	if s == "" {
		return "", trieerr.New(trieerr.Malformed, "hostname was empty")
	}
	if len(s) > maxLength {
		return "", trieerr.New(trieerr.TooLarge, "hostname %q is longer than %d bytes", s, maxLength)
	}
	for i := 0; i < len(s); i++ {
		if !isDNSCharacter(s[i]) {
			return "", trieerr.New(trieerr.Malformed, "invalid character in hostname %q", s)
		}
	}
	if net.ParseIP(s) != nil {
		return "", trieerr.New(trieerr.Malformed, "%q is an IP address, not a hostname", s)
	}
	if strings.HasSuffix(s, ".") {
		return "", trieerr.New(trieerr.Malformed, "hostname %q ends in a period", s)
	}

	domain := strings.ToLower(s)
	labels := strings.Split(domain, ".")
	if len(labels) > maxLabels {
		return "", trieerr.New(trieerr.Malformed, "hostname %q has too many labels", s)
	}
	if len(labels) < minLabelCount {
		return "", trieerr.New(trieerr.Malformed, "hostname %q does not have enough labels", s)
	}

	for i, label := range labels {
		if len(label) == 0 {
			return "", trieerr.New(trieerr.Malformed, "hostname %q has an empty label", s)
		}
		if len(label) > maxLabelLen {
			return "", trieerr.New(trieerr.Malformed, "label %q in hostname %q is too long", label, s)
		}
		if !dnsLabelRegexp.MatchString(label) {
			return "", trieerr.New(trieerr.Malformed, "label %q in hostname %q contains an invalid character", label, s)
		}
		if label[len(label)-1] == '-' {
			return "", trieerr.New(trieerr.Malformed, "label %q in hostname %q ends in a hyphen", label, s)
		}
		if punycodeRegexp.MatchString(label) {
			ulabel, err := idna.ToUnicode(label)
			if err != nil {
				return "", trieerr.New(trieerr.Malformed, "label %q in hostname %q has malformed punycode", label, s)
			}
			if !norm.NFKC.IsNormalString(ulabel) {
				return "", trieerr.New(trieerr.Malformed, "label %q in hostname %q is not NFKC-normalized", label, s)
			}
			labels[i] = label
		} else if idnReservedRegexp.MatchString(label) {
			return "", trieerr.New(trieerr.Malformed, "label %q in hostname %q uses a reserved ACE prefix", label, s)
		}
	}

	return strings.Join(labels, "."), nil
}

// IsSyntacticallyValid is a non-error-returning convenience for callers,
// like the bulk loader, that want to skip a malformed line rather than
// abort an entire load over one bad entry.
func IsSyntacticallyValid(s string) bool {
	_, err := Normalize(s)
	return err == nil
}
