// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"net/url"
	"sort"
	"strings"
)

// trackingParams are stripped during URL normalization (spec §4.7 phase 2
// "strip tracking params").
var trackingParams = map[string]bool{
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_term": true, "utm_content": true, "gclid": true, "fbclid": true,
	"ref": true, "mc_cid": true, "mc_eid": true,
}

// NormalizeURL lowercases the host, strips the fragment, strips tracking
// params, and canonicalizes arXiv abs/pdf variants to a single form (spec
// §4.7 phase 2). It does not follow redirects; that is the caller's job
// ("resolve redirects once").
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)

	if q := u.Query(); len(q) > 0 {
		for k := range q {
			if trackingParams[strings.ToLower(k)] {
				q.Del(k)
			}
		}
		u.RawQuery = q.Encode()
	}

	canonicalizeArxiv(u)

	s := u.String()
	return strings.TrimSuffix(s, "/")
}

// canonicalizeArxiv rewrites arxiv.org/pdf/<id>(.pdf)? and
// arxiv.org/abs/<id> to a single canonical abs-style path, so that the PDF
// and landing-page variants of the same paper normalize identically.
func canonicalizeArxiv(u *url.URL) {
	if !strings.HasSuffix(u.Host, "arxiv.org") {
		return
	}
	path := u.Path
	for _, prefix := range []string{"/pdf/", "/abs/"} {
		if strings.HasPrefix(path, prefix) {
			id := strings.TrimPrefix(path, prefix)
			id = strings.TrimSuffix(id, ".pdf")
			u.Path = "/abs/" + id
			return
		}
	}
}

// NormalizedLastNames returns the lowercased, sorted last-name tokens of
// authors, used as input to the title fingerprint (spec §4.7 phase 4,
// GLOSSARY "Fingerprint").
func NormalizedLastNames(authors []string) []string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, lastName(a))
	}
	sort.Strings(names)
	return names
}

func lastName(fullName string) string {
	fullName = strings.TrimSpace(fullName)
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}

// LastName exposes lastName's lowercased-surname extraction for callers
// outside the package that need the same convention (graphstore.DeriveLID's
// human-readable LID prefix, spec §3/§6).
func LastName(fullName string) string {
	return lastName(fullName)
}

// NormalizeTitle lowercases, collapses whitespace, and strips punctuation
// noise so that minor formatting differences don't split a title
// fingerprint across two distinct hashes.
func NormalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastSpace := false
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
