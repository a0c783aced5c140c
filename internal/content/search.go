package content

import (
	"context"
	"fmt"
	"strings"
)

type SearchResult struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

type SearchResponse struct {
	Total   uint64         `json:"total"`
	Results []SearchResult `json:"results"`
}

// Search runs a prefix full-text query over item titles and bodies.
func (s *Store) Search(ctx context.Context, queryString string, limit int, offset int) (SearchResponse, error) {
	queryString = sanitizeQuery(queryString)
	if queryString == "" {
		return SearchResponse{Results: make([]SearchResult, 0)}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `SELECT i.id, i.type, i.title, COUNT(*) OVER() AS total
		 FROM items_fts f
		 JOIN items i ON i.rowid = f.rowid
		 WHERE items_fts MATCH ?
		 ORDER BY f.rank LIMIT ? OFFSET ?`,
		queryString, limit, offset)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var resp SearchResponse
	resp.Results = make([]SearchResult, 0)

	for rows.Next() {
		var r SearchResult
		var total uint64
		if err := rows.Scan(&r.ID, &r.Type, &r.Title, &total); err != nil {
			return SearchResponse{}, fmt.Errorf("scan result: %w", err)
		}
		resp.Total = total
		resp.Results = append(resp.Results, r)
	}
	if err := rows.Err(); err != nil {
		return SearchResponse{}, fmt.Errorf("iterate results: %w", err)
	}

	return resp, nil
}

// sanitizeQuery reduces free text to quoted prefix terms so that user input
// never reaches the FTS5 query syntax.
func sanitizeQuery(q string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(q) {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	var terms []string
	for _, t := range strings.Fields(b.String()) {
		switch strings.ToUpper(t) {
		case "AND", "OR", "NOT", "NEAR":
			continue
		}
		terms = append(terms, `"`+t+`"*`)
	}
	return strings.Join(terms, " ")
}
