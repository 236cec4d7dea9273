package warehouse

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// UserSessionStat is one user's session rollup.
type UserSessionStat struct {
	User          string
	Sessions      int64
	TotalDuration float64
	MaxDepth      int
}

// PageCount is one page's visit count.
type PageCount struct {
	Page   string
	Visits int64
}

// dangerousKeywordPattern matches write/DDL keywords at word boundaries.
// Defense-in-depth behind comment stripping and semicolon rejection.
var dangerousKeywordPattern = regexp.MustCompile(
	`(?i)\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|COPY|ATTACH|LOAD|EXPORT|IMPORT|INSTALL|CALL|EXECUTE|PRAGMA|SET)\b`,
)

var blockCommentPattern = regexp.MustCompile(`/\*[\s\S]*?\*/`)

func stripSQLComments(query string) string {
	cleaned := blockCommentPattern.ReplaceAllString(query, " ")
	var result strings.Builder
	for _, line := range strings.Split(cleaned, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		result.WriteString(line)
		result.WriteByte('\n')
	}
	return result.String()
}

func (s *Store) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.QueryTimeout)
}

// TotalSessionCount returns the number of loaded sessions.
func (s *Store) TotalSessionCount() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}

// SessionsPerUser returns per-user session rollups ordered by total
// duration.
func (s *Store) SessionsPerUser(limit int) ([]UserSessionStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, COUNT(*), SUM(duration_secs), MAX(depth)
		FROM sessions
		GROUP BY user_id
		ORDER BY SUM(duration_secs) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []UserSessionStat
	for rows.Next() {
		var st UserSessionStat
		if err := rows.Scan(&st.User, &st.Sessions, &st.TotalDuration, &st.MaxDepth); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// TopPages returns the most visited pages. Blank pages (navigations that
// carried no URL) are excluded from the ranking.
func (s *Store) TopPages(limit int) ([]PageCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT to_page, COUNT(*) AS visits
		FROM navigations
		WHERE to_page IS NOT NULL AND to_page != ''
		GROUP BY to_page
		ORDER BY visits DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []PageCount
	for rows.Next() {
		var pc PageCount
		if err := rows.Scan(&pc.Page, &pc.Visits); err != nil {
			return nil, err
		}
		pages = append(pages, pc)
	}
	return pages, rows.Err()
}

// TableRowCounts returns row counts for the warehouse tables.
func (s *Store) TableRowCounts() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	counts := make(map[string]int64, 2)
	for _, table := range []string{"sessions", "navigations"} {
		var count int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return nil, fmt.Errorf("warehouse: counting %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}

// ExecuteQuery runs an arbitrary read-only query and returns rows as
// column-name maps. Write statements, multiple statements, and DDL are
// rejected.
func (s *Store) ExecuteQuery(query string) ([]map[string]interface{}, error) {
	trimmed := strings.TrimSpace(stripSQLComments(query))
	trimmed = strings.TrimSuffix(trimmed, ";")
	if strings.Contains(trimmed, ";") {
		return nil, fmt.Errorf("warehouse: multiple statements are not allowed")
	}
	upper := strings.ToUpper(strings.TrimSpace(trimmed))
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return nil, fmt.Errorf("warehouse: only SELECT queries are allowed")
	}
	if dangerousKeywordPattern.MatchString(trimmed) {
		return nil, fmt.Errorf("warehouse: query contains a disallowed keyword")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetSchemaDescription returns a short description of the warehouse
// schema for API consumers.
func (s *Store) GetSchemaDescription() string {
	return "sessions(user_id, device, session_start, last_navigation, duration_secs, depth); " +
		"navigations(user_id, device, to_page, arrived_time, departed_time, duration_secs, depth, timed_out). " +
		"Both tables hold the latest extract run."
}
