// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/meshintel/litingest/internal/broker"
	"github.com/meshintel/litingest/internal/domain"
	"github.com/meshintel/litingest/internal/errkind"
)

var tagRe = regexp.MustCompile(`<[^>]+>`)

// LocalParser is the optional local fallback (SPEC_FULL §12, adapted from
// internal/convert.LocalTEIParser) used when no remote parser URL is
// configured.
type LocalParser interface {
	ParsePDF(pdfBytes []byte) ([]byte, error)
}

// TEIParserClient wraps the PDF parser consumed as a remote XML-returning
// service (spec §1, §6 "PDF parser (internal)"): POST PDF bytes, get back
// TEI XML, with teiHeader mapped to metadata and back/listBibl to
// references.
type TEIParserClient struct {
	Broker  *broker.Broker
	URL     string // empty means "use Local only"
	Local   LocalParser
}

// teiDoc mirrors the small slice of the TEI schema this client consumes.
type teiDoc struct {
	XMLName xml.Name `xml:"TEI"`
	Header  struct {
		Title   string `xml:"fileDesc>titleStmt>title"`
		Authors []struct {
			Forename string `xml:"persName>forename"`
			Surname  string `xml:"persName>surname"`
		} `xml:"fileDesc>sourceDesc>biblStruct>analytic>author"`
		Date     string `xml:"fileDesc>sourceDesc>biblStruct>monogr>imprint>date"`
		Abstract string `xml:"profileDesc>abstract>p"`
	} `xml:"teiHeader"`
	Body struct {
		Inner string `xml:",innerxml"`
	} `xml:"text>body"`
	Back struct {
		ListBibl struct {
			Entries []teiBiblStruct `xml:"biblStruct"`
		} `xml:"div>listBibl"`
	} `xml:"text>back"`
}

type teiBiblStruct struct {
	Title   string `xml:"analytic>title"`
	Authors []struct {
		Forename string `xml:"persName>forename"`
		Surname  string `xml:"persName>surname"`
	} `xml:"analytic>author"`
	Date string `xml:"monogr>imprint>date"`
	DOI  string `xml:"analytic>idno[type='DOI']"`
}

// ParsePDF sends pdfBytes to the remote parser (or the local fallback when
// URL is unset) and maps the TEI response onto Work.
func (c *TEIParserClient) ParsePDF(ctx context.Context, pdfBytes []byte) (*Work, error) {
	var raw []byte
	if c.URL != "" {
		resp, err := c.Broker.Request(ctx, broker.Internal, http.MethodPost, c.URL, nil, bytes.NewReader(pdfBytes))
		if err != nil {
			return nil, err
		}
		if resp.Status != 200 {
			return nil, errkind.New(errkind.ProviderUnavailable, "tei-parser", fmt.Errorf("HTTP %d", resp.Status))
		}
		raw = resp.Body
	} else if c.Local != nil {
		out, err := c.Local.ParsePDF(pdfBytes)
		if err != nil {
			return nil, errkind.New(errkind.ParseFailure, "tei-parser-local", err)
		}
		raw = out
	} else {
		return nil, errkind.New(errkind.ProviderUnavailable, "tei-parser", fmt.Errorf("no remote URL or local fallback configured"))
	}

	var doc teiDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, errkind.New(errkind.ParseFailure, "tei-parser", err)
	}

	w := &Work{
		Provider: "pdf-parser",
		Title:    strings.TrimSpace(doc.Header.Title),
		Abstract: strings.TrimSpace(doc.Header.Abstract),
		Fulltext: strings.TrimSpace(tagRe.ReplaceAllString(doc.Body.Inner, " ")),
	}
	for i, a := range doc.Header.Authors {
		w.Authors = append(w.Authors, domain.Author{
			Name:     strings.TrimSpace(a.Forename + " " + a.Surname),
			Sequence: i + 1,
		})
	}
	for _, b := range doc.Back.ListBibl.Entries {
		ref := domain.ParsedRef{Title: strings.TrimSpace(b.Title), DOI: b.DOI}
		for _, a := range b.Authors {
			ref.Authors = append(ref.Authors, strings.TrimSpace(a.Forename+" "+a.Surname))
		}
		w.Reference = append(w.Reference, ref)
	}
	return w, nil
}
