// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
)

// ContentFingerprint returns pdf_md5 (spec §4.7 phase 4).
func ContentFingerprint(pdfBytes []byte) string {
	sum := md5.Sum(pdfBytes)
	return fmt.Sprintf("%x", sum)
}

// TitleFingerprint returns title_fp = hash(normalize(title) +
// sorted(last-names) + year), the GLOSSARY's "title fingerprint" (spec
// §4.7 phase 4).
func TitleFingerprint(title string, authors []string, year int) string {
	norm := NormalizeTitle(title)
	names := NormalizedLastNames(authors)
	input := norm + "|" + strings.Join(names, ",") + "|" + strconv.Itoa(year)
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", sum[:16])
}
