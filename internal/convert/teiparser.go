// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"

	"github.com/meshintel/litingest/internal/container"
)

const imageLocalTEIParser = "litingest-pdf-tei:latest"

// LocalTEIParser converts PDF bytes to TEI XML by piping them through a
// locally hosted GROBID-style container image. It is the optional local
// fallback for the "PDF parser (internal)" external contract (spec §6)
// when no remote parser URL is configured (SPEC_FULL §12), grounded on the
// teacher's container-based markitdown conversion but producing TEI XML
// rather than Markdown. It depends on a container.Runtime (docker or
// podman) injected at construction time.
type LocalTEIParser struct {
	runtime container.Runtime
}

// NewLocalTEIParser creates a parser that uses rt to run the local
// PDF-to-TEI image. It verifies the image exists locally before returning.
func NewLocalTEIParser(rt container.Runtime) (*LocalTEIParser, error) {
	if err := rt.ImageExists(imageLocalTEIParser); err != nil {
		return nil, fmt.Errorf("local TEI parser image not available in %s: %w", rt.Name(), err)
	}
	return &LocalTEIParser{runtime: rt}, nil
}

// ParsePDF pipes pdfBytes through the container and returns the TEI XML it
// emits on stdout. <teiHeader> carries metadata; <back>/<listBibl> carries
// references, per spec §6.
func (p *LocalTEIParser) ParsePDF(pdfBytes []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := p.runtime.Run(imageLocalTEIParser, bytes.NewReader(pdfBytes), &out); err != nil {
		return nil, fmt.Errorf("local TEI parse: %w", err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("local TEI parser produced empty output")
	}
	return out.Bytes(), nil
}
