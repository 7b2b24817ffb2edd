// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graphstore implements the Alias & Graph DAO (C8): the Neo4j-backed
// repository behind Literature, Alias, Unresolved, and CITES storage (spec
// §4.8), grounded on the same driver/session/ExecuteWrite pattern the
// teacher's dependency graph uses for its action graph.
package graphstore

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/dedup"
	"github.com/meshintel/litingest/internal/domain"
)

// Store wraps a Neo4j driver with the operations spec §4.8 names.
type Store struct {
	driver neo4j.DriverWithContext
}

// New opens a driver against cfg and verifies connectivity.
func New(ctx context.Context, cfg config.GraphConfig) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}
	return &Store{driver: driver}, nil
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) write(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
}

func (s *Store) read(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
}

// Candidate is the input to UpsertLiterature: whatever identifiers and
// metadata are known about a submission at the point it's first persisted.
type Candidate struct {
	Identifiers domain.Identifiers
	Metadata    domain.Metadata
}

// titleAcronymStopwords are skipped when building a LID's title acronym
// (spec §3/§6: "first letters of the first up-to-5 significant words,
// stopwords removed").
var titleAcronymStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "on": true, "in": true,
	"at": true, "by": true, "to": true, "for": true, "and": true, "or": true,
	"with": true, "as": true, "is": true, "are": true, "from": true, "via": true,
	"into": true, "its": true, "your": true, "using": true,
}

// titleAcronym concatenates the lowercased first letters of title's first
// up-to-5 significant (non-stopword) words.
func titleAcronym(title string) string {
	var acronym strings.Builder
	n := 0
	for _, w := range strings.Fields(dedup.NormalizeTitle(title)) {
		if titleAcronymStopwords[w] {
			continue
		}
		acronym.WriteByte(w[0])
		n++
		if n == 5 {
			break
		}
	}
	return acronym.String()
}

// firstAuthorSurname returns the lowercased last name of the first author in
// sequence order, distinct from the alphabetically sorted surname list used
// as title-fingerprint hash input.
func firstAuthorSurname(authors []domain.Author) string {
	if len(authors) == 0 {
		return "unknown"
	}
	ordered := make([]domain.Author, len(authors))
	copy(ordered, authors)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Sequence < ordered[j].Sequence })
	return dedup.LastName(ordered[0].Name)
}

// DeriveLID computes the spec's human-readable deterministic LID:
// YYYY-<first-author-surname>-<title-acronym>-<4hex>, where 4hex is the
// first 4 hex characters of SHA-256 over normalize(title) + "|" +
// join(",", sorted surnames) + "|" + year (spec §3/§6). Keying on normalized
// metadata rather than on whichever raw identifier happens to be present is
// what makes re-running UpsertLiterature with identical bibliographic data
// return the same LID regardless of which identifier arrived first (spec §8
// "LID determinism").
func DeriveLID(c Candidate) string {
	authorNames := make([]string, len(c.Metadata.Authors))
	for i, a := range c.Metadata.Authors {
		authorNames[i] = a.Name
	}
	fp := dedup.TitleFingerprint(c.Metadata.Title, authorNames, c.Metadata.Year)
	return fmt.Sprintf("%04d-%s-%s-%s",
		c.Metadata.Year,
		firstAuthorSurname(c.Metadata.Authors),
		titleAcronym(c.Metadata.Title),
		fp[:4],
	)
}

// UpsertLiterature creates or updates the Literature node for candidate and
// returns its LID and whether it was newly created (spec §4.8).
func (s *Store) UpsertLiterature(ctx context.Context, c Candidate) (lid string, created bool, err error) {
	lid = DeriveLID(c)
	session := s.write(ctx)
	defer session.Close(ctx)

	authorsJSON, err := json.Marshal(c.Metadata.Authors)
	if err != nil {
		return "", false, fmt.Errorf("marshaling authors: %w", err)
	}

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
			MERGE (l:Literature {lid: $lid})
			ON CREATE SET l.created_at = datetime(), l.created = true
			ON MATCH SET l.created = false
			SET l.title = $title,
			    l.year = $year,
			    l.journal = $journal,
			    l.abstract = $abstract,
			    l.keywords = $keywords,
			    l.authors_json = $authors_json,
			    l.doi = $doi,
			    l.arxiv_id = $arxiv_id,
			    l.pmid = $pmid,
			    l.updated_at = datetime()
			RETURN l.created as created
		`
		params := map[string]interface{}{
			"lid":          lid,
			"title":        c.Metadata.Title,
			"year":         c.Metadata.Year,
			"journal":      c.Metadata.Journal,
			"abstract":     c.Metadata.Abstract,
			"keywords":     c.Metadata.Keywords,
			"authors_json": string(authorsJSON),
			"doi":          c.Identifiers.DOI,
			"arxiv_id":     c.Identifiers.ArxivID,
			"pmid":         c.Identifiers.PMID,
		}
		rec, err := tx.Run(ctx, query, params)
		if err != nil {
			return false, err
		}
		if rec.Next(ctx) {
			v, _ := rec.Record().Get("created")
			return v.(bool), rec.Err()
		}
		return false, rec.Err()
	})
	if err != nil {
		return "", false, err
	}
	return lid, result.(bool), nil
}

// AddAlias creates the Alias node for (aliasType, value) if absent and an
// IDENTIFIES edge to lid; no-op if already present (spec §4.8).
func (s *Store) AddAlias(ctx context.Context, lid string, aliasType domain.AliasType, value string) error {
	if value == "" {
		return nil
	}
	session := s.write(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
			MATCH (l:Literature {lid: $lid})
			MERGE (a:Alias {alias_type: $type, alias_value: $value})
			ON CREATE SET a.created_at = datetime()
			MERGE (a)-[:IDENTIFIES]->(l)
		`
		params := map[string]interface{}{"lid": lid, "type": string(aliasType), "value": value}
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

// ResolveAlias looks up the LID an alias points to (spec §4.8, and
// dedup.AliasIndex).
func (s *Store) ResolveAlias(ctx context.Context, aliasType domain.AliasType, value string) (string, bool, error) {
	session := s.read(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
			MATCH (a:Alias {alias_type: $type, alias_value: $value})-[:IDENTIFIES]->(l:Literature)
			RETURN l.lid as lid
		`
		rec, err := tx.Run(ctx, query, map[string]interface{}{"type": string(aliasType), "value": value})
		if err != nil {
			return "", err
		}
		if rec.Next(ctx) {
			v, _ := rec.Record().Get("lid")
			return v.(string), rec.Err()
		}
		return "", rec.Err()
	})
	if err != nil {
		return "", false, err
	}
	lid, _ := result.(string)
	return lid, lid != "", nil
}

// LiteratureStatus returns the execution status of the task most recently
// associated with lid (dedup.AliasIndex).
func (s *Store) LiteratureStatus(ctx context.Context, lid string) (domain.TaskStatus, bool, error) {
	session := s.read(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		rec, err := tx.Run(ctx, `MATCH (l:Literature {lid: $lid}) RETURN l.task_status as status`, map[string]interface{}{"lid": lid})
		if err != nil {
			return "", err
		}
		if rec.Next(ctx) {
			v, ok := rec.Record().Get("status")
			if !ok || v == nil {
				return string(domain.TaskCompleted), rec.Err()
			}
			return v.(string), rec.Err()
		}
		return "", rec.Err()
	})
	if err != nil {
		return "", false, err
	}
	status, _ := result.(string)
	if status == "" {
		return "", false, nil
	}
	return domain.TaskStatus(status), true, nil
}

// SetLiteratureStatus stamps lid's task_status property, the cross-package
// contract the Task Coordinator (C9) writes and dedup.AliasIndex reads back
// for the phase 1/2 cleanup check.
func (s *Store) SetLiteratureStatus(ctx context.Context, lid string, status domain.TaskStatus) error {
	session := s.write(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return tx.Run(ctx, `MATCH (l:Literature {lid: $lid}) SET l.task_status = $status`, map[string]interface{}{
			"lid":    lid,
			"status": string(status),
		})
	})
	return err
}

// UpdateContent stores the Content Fetcher's (C4) output against lid, so
// later reads (spec §4.10 get_literature_fulltext) can serve it back.
func (s *Store) UpdateContent(ctx context.Context, lid string, content domain.Content) error {
	session := s.write(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
			MATCH (l:Literature {lid: $lid})
			SET l.pdf_url = $pdf_url,
			    l.source_page_url = $source_page_url,
			    l.fulltext = $fulltext,
			    l.parsing_method = $parsing_method,
			    l.quality_score = $quality_score
		`
		params := map[string]interface{}{
			"lid":             lid,
			"pdf_url":         content.PDFURL,
			"source_page_url": content.SourcePageURL,
			"fulltext":        content.Fulltext,
			"parsing_method":  content.ParsingMethod,
			"quality_score":   content.QualityScore,
		}
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

// literatureFields is the Cypher projection shared by GetLiterature,
// GetLiteratureFulltext and BatchGet, keeping their RETURN clauses
// (and the nodeToLiterature decode) in lockstep.
const literatureFields = `
	l.lid as lid, l.title as title, l.year as year, l.journal as journal,
	l.abstract as abstract, l.keywords as keywords, l.authors_json as authors_json,
	l.doi as doi, l.arxiv_id as arxiv_id, l.pmid as pmid,
	l.pdf_url as pdf_url, l.source_page_url as source_page_url,
	l.fulltext as fulltext, l.parsing_method as parsing_method, l.quality_score as quality_score,
	l.created_at as created_at, l.updated_at as updated_at
`

func nodeToLiterature(rec *neo4j.Record, includeFulltext bool) (domain.Literature, error) {
	lit := domain.Literature{}
	get := func(key string) interface{} {
		v, _ := rec.Get(key)
		return v
	}
	lit.LID, _ = get("lid").(string)
	lit.Metadata.Title, _ = get("title").(string)
	lit.Metadata.Journal, _ = get("journal").(string)
	lit.Metadata.Abstract, _ = get("abstract").(string)
	if y, ok := get("year").(int64); ok {
		lit.Metadata.Year = int(y)
	}
	if kws, ok := get("keywords").([]interface{}); ok {
		for _, kw := range kws {
			if s, ok := kw.(string); ok {
				lit.Metadata.Keywords = append(lit.Metadata.Keywords, s)
			}
		}
	}
	if authorsJSON, ok := get("authors_json").(string); ok && authorsJSON != "" {
		_ = json.Unmarshal([]byte(authorsJSON), &lit.Metadata.Authors)
	}
	lit.Identifiers.DOI, _ = get("doi").(string)
	lit.Identifiers.ArxivID, _ = get("arxiv_id").(string)
	lit.Identifiers.PMID, _ = get("pmid").(string)
	lit.Content.PDFURL, _ = get("pdf_url").(string)
	lit.Content.SourcePageURL, _ = get("source_page_url").(string)
	lit.Content.ParsingMethod, _ = get("parsing_method").(string)
	if qs, ok := get("quality_score").(float64); ok {
		lit.Content.QualityScore = qs
	}
	if includeFulltext {
		lit.Content.Fulltext, _ = get("fulltext").(string)
	}
	return lit, nil
}

// GetLiterature returns lid's summary view: everything but fulltext and
// reference raw text (spec §6 "Literature read... Summary omits fulltext").
func (s *Store) GetLiterature(ctx context.Context, lid string) (domain.Literature, bool, error) {
	return s.getLiterature(ctx, lid, false)
}

// GetLiteratureFulltext returns lid's full view, including fulltext (spec
// §6 "Fulltext variant includes all").
func (s *Store) GetLiteratureFulltext(ctx context.Context, lid string) (domain.Literature, bool, error) {
	return s.getLiterature(ctx, lid, true)
}

func (s *Store) getLiterature(ctx context.Context, lid string, includeFulltext bool) (domain.Literature, bool, error) {
	session := s.read(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `MATCH (l:Literature {lid: $lid}) RETURN ` + literatureFields
		rec, err := tx.Run(ctx, query, map[string]interface{}{"lid": lid})
		if err != nil {
			return nil, err
		}
		if rec.Next(ctx) {
			lit, err := nodeToLiterature(rec.Record(), includeFulltext)
			return &lit, err
		}
		return nil, rec.Err()
	})
	if err != nil {
		return domain.Literature{}, false, err
	}
	lit, ok := result.(*domain.Literature)
	if !ok || lit == nil {
		return domain.Literature{}, false, nil
	}
	return *lit, true, nil
}

// BatchGet returns the summary view of every lid found (spec §4.10
// batch_get); missing lids are silently omitted from the result.
func (s *Store) BatchGet(ctx context.Context, lids []string) ([]domain.Literature, error) {
	if len(lids) == 0 {
		return nil, nil
	}
	session := s.read(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `MATCH (l:Literature) WHERE l.lid IN $lids RETURN ` + literatureFields
		rec, err := tx.Run(ctx, query, map[string]interface{}{"lids": lids})
		if err != nil {
			return nil, err
		}
		var out []domain.Literature
		for rec.Next(ctx) {
			lit, err := nodeToLiterature(rec.Record(), false)
			if err != nil {
				return nil, err
			}
			out = append(out, lit)
		}
		return out, rec.Err()
	})
	if err != nil {
		return nil, err
	}
	out, _ := result.([]domain.Literature)
	return out, nil
}

// GraphNode is one node in a Graph() response (spec §6 "Graph read").
type GraphNode struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Authors []string `json:"authors,omitempty"`
	Year    int      `json:"year,omitempty"`
	Type    string   `json:"type"`
}

// GraphEdge is one CITES edge in a Graph() response.
type GraphEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// Graph runs a depth-bounded BFS from the seed lids and returns the
// induced subgraph (spec §4.10 graph, §6 "Graph read").
func (s *Store) Graph(ctx context.Context, lids []string, depth int) ([]GraphNode, []GraphEdge, error) {
	if len(lids) == 0 {
		return nil, nil, nil
	}
	if depth < 1 {
		depth = 1
	}
	session := s.read(ctx)
	defer session.Close(ctx)

	type rows struct {
		nodes []GraphNode
		edges []GraphEdge
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := fmt.Sprintf(`
			MATCH (seed)
			WHERE seed.lid IN $lids
			CALL {
				WITH seed
				MATCH path = (seed)-[:CITES*0..%d]-(n)
				RETURN n
			}
			WITH collect(DISTINCT n) as nodes
			UNWIND nodes as node
			OPTIONAL MATCH (node)-[c:CITES]->(other)
			WHERE other IN nodes
			RETURN DISTINCT
				coalesce(node.lid, node.id) as id,
				node.title as title,
				node.authors_json as authors_json,
				node.year as year,
				labels(node)[0] as label,
				coalesce(other.lid, other.id) as target,
				c.confidence as confidence
		`, depth)
		rec, err := tx.Run(ctx, query, map[string]interface{}{"lids": lids})
		if err != nil {
			return nil, err
		}

		out := rows{}
		seenNodes := map[string]bool{}
		for rec.Next(ctx) {
			r := rec.Record()
			id, _ := fieldString(r, "id")
			if id == "" {
				continue
			}
			if !seenNodes[id] {
				seenNodes[id] = true
				node := GraphNode{ID: id}
				node.Title, _ = fieldString(r, "title")
				node.Type, _ = fieldString(r, "label")
				if y, ok := fieldValue(r, "year").(int64); ok {
					node.Year = int(y)
				}
				if authorsJSON, ok := fieldValue(r, "authors_json").(string); ok && authorsJSON != "" {
					var authors []domain.Author
					if err := json.Unmarshal([]byte(authorsJSON), &authors); err == nil {
						for _, a := range authors {
							node.Authors = append(node.Authors, a.Name)
						}
					}
				}
				out.nodes = append(out.nodes, node)
			}
			target, _ := fieldString(r, "target")
			if target != "" {
				weight := 1.0
				if c, ok := fieldValue(r, "confidence").(float64); ok {
					weight = c
				}
				out.edges = append(out.edges, GraphEdge{Source: id, Target: target, Type: "cites", Weight: weight})
			}
		}
		return out, rec.Err()
	})
	if err != nil {
		return nil, nil, err
	}
	out, _ := result.(rows)
	return out.nodes, out.edges, nil
}

func fieldValue(rec *neo4j.Record, key string) interface{} {
	v, _ := rec.Get(key)
	return v
}

func fieldString(rec *neo4j.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// CleanupEligible reports whether lid is a terminal-failed literature with
// no incoming CITES edges from resolved literature (spec §9 "Failure-doc
// cleanup in phase 1").
func (s *Store) CleanupEligible(ctx context.Context, lid string) (bool, error) {
	status, found, err := s.LiteratureStatus(ctx, lid)
	if err != nil {
		return false, err
	}
	if !found || status != domain.TaskFailed {
		return false, nil
	}

	session := s.read(ctx)
	defer session.Close(ctx)
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
			MATCH (src:Literature)-[:CITES]->(l:Literature {lid: $lid})
			RETURN count(src) as incoming
		`
		rec, err := tx.Run(ctx, query, map[string]interface{}{"lid": lid})
		if err != nil {
			return int64(0), err
		}
		if rec.Next(ctx) {
			v, _ := rec.Record().Get("incoming")
			return v.(int64), rec.Err()
		}
		return int64(0), rec.Err()
	})
	if err != nil {
		return false, err
	}
	return result.(int64) == 0, nil
}

// DeleteLiterature DETACH-deletes a Literature node, cascading incident
// aliases and edges (spec §4.8).
func (s *Store) DeleteLiterature(ctx context.Context, lid string) error {
	session := s.write(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
			MATCH (l:Literature {lid: $lid})
			OPTIONAL MATCH (a:Alias)-[:IDENTIFIES]->(l)
			DETACH DELETE l, a
		`
		_, err := tx.Run(ctx, query, map[string]interface{}{"lid": lid})
		return nil, err
	})
	return err
}

// LinkCites merges a CITES edge idempotently (spec §4.8). dst may be a
// Literature LID or an Unresolved ID; dstIsUnresolved selects the label.
func (s *Store) LinkCites(ctx context.Context, srcLID, dst string, dstIsUnresolved bool, confidence float64, source string) error {
	session := s.write(ctx)
	defer session.Close(ctx)

	dstLabel := "Literature"
	dstKey := "lid"
	if dstIsUnresolved {
		dstLabel = "Unresolved"
		dstKey = "id"
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := fmt.Sprintf(`
			MATCH (src:Literature {lid: $src})
			MATCH (dst:%s {%s: $dst})
			MERGE (src)-[c:CITES]->(dst)
			SET c.confidence = $confidence, c.source = $source
		`, dstLabel, dstKey)
		params := map[string]interface{}{"src": srcLID, "dst": dst, "confidence": confidence, "source": source}
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

// CreatesSelfLoop reports whether linking src->dst would be a self-loop,
// which spec §9 "Cyclic graphs" requires rejecting outright (self-loops,
// not general cycles, since citation graphs are expected to contain cycles).
func CreatesSelfLoop(srcLID, dstID string) bool {
	return srcLID != "" && srcLID == dstID
}

// CreateUnresolved creates a placeholder node for a cited-but-unknown work
// (spec §4.8) and returns its generated ID.
func (s *Store) CreateUnresolved(ctx context.Context, parsed domain.ParsedRef, rawText string) (string, error) {
	sum := sha256.Sum256([]byte(rawText))
	id := fmt.Sprintf("unres_%x", sum[:12])
	titleFP := dedup.TitleFingerprint(parsed.Title, parsed.Authors, parsed.Year)

	session := s.write(ctx)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
			MERGE (u:Unresolved {id: $id})
			ON CREATE SET u.raw_text = $raw_text, u.title = $title, u.doi = $doi,
			              u.arxiv_id = $arxiv_id, u.year = $year, u.title_fp = $title_fp,
			              u.created_at = datetime()
		`
		params := map[string]interface{}{
			"id": id, "raw_text": rawText, "title": parsed.Title,
			"doi": parsed.DOI, "arxiv_id": parsed.ArxivID, "year": parsed.Year,
			"title_fp": titleFP,
		}
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return id, err
}

// FindUnresolvedByTitleFP returns the IDs of Unresolved nodes whose stored
// fingerprint matches titleFP, candidates for promotion once a new
// Literature with that fingerprint is created (spec §4.11 "sweep existing
// Unresolved nodes whose fingerprint matches and promote them").
func (s *Store) FindUnresolvedByTitleFP(ctx context.Context, titleFP string) ([]string, error) {
	if titleFP == "" {
		return nil, nil
	}
	session := s.read(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		rec, err := tx.Run(ctx, `MATCH (u:Unresolved {title_fp: $title_fp}) RETURN u.id as id`, map[string]interface{}{"title_fp": titleFP})
		if err != nil {
			return nil, err
		}
		var ids []string
		for rec.Next(ctx) {
			if v, ok := rec.Record().Get("id"); ok {
				ids = append(ids, v.(string))
			}
		}
		return ids, rec.Err()
	})
	if err != nil {
		return nil, err
	}
	ids, _ := result.([]string)
	return ids, nil
}

// PromoteUnresolved moves every incoming CITES edge of an Unresolved node,
// with its confidence and source, onto the given Literature, then deletes
// the Unresolved node (spec §4.8).
func (s *Store) PromoteUnresolved(ctx context.Context, unresolvedID, lid string) error {
	session := s.write(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
			MATCH (u:Unresolved {id: $uid})
			OPTIONAL MATCH (u)<-[r:CITES]-(src)
			MATCH (l:Literature {lid: $lid})
			FOREACH (_ IN CASE WHEN src IS NOT NULL THEN [1] ELSE [] END |
				MERGE (src)-[nr:CITES]->(l)
				SET nr.confidence = r.confidence, nr.source = r.source
			)
			DETACH DELETE u
		`
		params := map[string]interface{}{"uid": unresolvedID, "lid": lid}
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

// EnsureIndexes creates the unique/secondary indices spec §4.8 requires.
// Safe to call repeatedly; Neo4j's CREATE ... IF NOT EXISTS is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	session := s.write(ctx)
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT lit_lid_unique IF NOT EXISTS FOR (l:Literature) REQUIRE l.lid IS UNIQUE`,
		`CREATE CONSTRAINT alias_type_value_unique IF NOT EXISTS FOR (a:Alias) REQUIRE (a.alias_type, a.alias_value) IS UNIQUE`,
		`CREATE INDEX lit_doi IF NOT EXISTS FOR (l:Literature) ON (l.doi)`,
		`CREATE FULLTEXT INDEX lit_title IF NOT EXISTS FOR (l:Literature) ON EACH [l.title]`,
		`CREATE INDEX lit_task_id IF NOT EXISTS FOR (l:Literature) ON (l.task_id)`,
	}
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		for _, stmt := range stmts {
			if _, err := tx.Run(ctx, stmt, nil); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}
