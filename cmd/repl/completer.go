package main

import (
	"sort"
	"strings"
)

var sqlKeywords = []string{
	"SELECT", "FROM", "WHERE", "GROUP BY", "HAVING", "ORDER BY", "LIMIT",
	"DISTINCT", "JOIN", "LEFT JOIN", "RIGHT JOIN", "FULL JOIN", "CROSS JOIN",
	"ON", "AS", "AND", "OR", "NOT", "CASE", "WHEN", "THEN", "ELSE", "END",
	"CREATE TABLE", "DROP TABLE", "COPY", "SHOW",
}

var functionNames = []string{
	"ABS(", "AVG(", "CAST(", "CONCAT(", "COUNT(", "LOWER(", "MAX(", "MIN(",
	"SUM(", "UPPER(",
}

// replCompleter implements readline's AutoCompleter interface, completing
// the word under the cursor against commands, keywords, functions, table
// names, and column names.
type replCompleter struct {
	sess *Session
}

// Do returns completion candidates for the current line/cursor position.
func (c *replCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])
	start := strings.LastIndexAny(lineStr, " \t,(") + 1
	prefix := lineStr[start:]

	var pool []string
	if start == 0 {
		for _, cmd := range c.sess.commands {
			pool = append(pool, strings.TrimSpace(cmd.prefix))
		}
	}
	pool = append(pool, sqlKeywords...)
	pool = append(pool, functionNames...)
	pool = append(pool, c.sess.ctx.TableNames()...)
	pool = append(pool, c.sess.columnNames()...)

	candidates := filterPrefix(pool, prefix)
	for _, cand := range candidates {
		newLine = append(newLine, []rune(cand[len(prefix):]))
	}
	length = len([]rune(prefix))
	return
}

// filterPrefix returns the sorted, deduplicated candidates matching prefix
// case-insensitively. An empty prefix matches nothing: completing every
// known name on a blank word is noise.
func filterPrefix(candidates []string, prefix string) []string {
	if prefix == "" {
		return nil
	}
	lower := strings.ToLower(prefix)
	seen := make(map[string]bool)
	var out []string
	for _, cand := range candidates {
		if !strings.HasPrefix(strings.ToLower(cand), lower) || seen[cand] {
			continue
		}
		seen[cand] = true
		out = append(out, cand)
	}
	sort.Strings(out)
	return out
}
