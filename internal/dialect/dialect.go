// Package dialect translates statements from the MySQL-flavored command
// surface into the SQL the embedded engine executes. The Translator
// interface keeps the manager insulated from the exact grammar; the default
// implementation is a rule-based rewriter covering the constructs the
// surface actually emits.
package dialect

import (
	"fmt"
	"regexp"
	"strings"
)

// Supported dialect names.
const (
	MySQL  = "mysql"
	DuckDB = "duckdb"
)

// Translator converts a statement between dialects. Implementations are
// pure: same input, same output, no side effects.
type Translator interface {
	Translate(sql, from, to string) (string, error)
}

// RuleTranslator is the default MySQL-to-DuckDB rewriter.
type RuleTranslator struct{}

// NewRuleTranslator returns the default translator.
func NewRuleTranslator() *RuleTranslator {
	return &RuleTranslator{}
}

var (
	showDatabasesRe = regexp.MustCompile(`(?is)^\s*SHOW\s+DATABASES\s*;?\s*$`)
	showTablesRe    = regexp.MustCompile(`(?is)^\s*SHOW\s+TABLES\s*;?\s*$`)
	autoIncrementRe = regexp.MustCompile(`(?i)\bAUTO_INCREMENT\b\s*(=\s*\d+)?`)
	engineClauseRe  = regexp.MustCompile(`(?i)\s*ENGINE\s*=\s*\w+`)
	charsetClause   = regexp.MustCompile(`(?i)\s*DEFAULT\s+CHARSET\s*=\s*\w+`)
	limitOffsetRe   = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)\s*,\s*(\d+)`)
)

// Translate rewrites sql from the source dialect to the target dialect.
// Identity when from == to. Only mysql -> duckdb is supported.
func (t *RuleTranslator) Translate(sql, from, to string) (string, error) {
	if from == to {
		return sql, nil
	}
	if from != MySQL || to != DuckDB {
		return "", fmt.Errorf("unsupported dialect pair %q -> %q", from, to)
	}

	if showDatabasesRe.MatchString(sql) {
		return "SELECT database_name FROM duckdb_databases()", nil
	}
	if showTablesRe.MatchString(sql) {
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema()", nil
	}

	out, err := rewriteBackticks(sql)
	if err != nil {
		return "", fmt.Errorf("translate statement: %w", err)
	}

	out = autoIncrementRe.ReplaceAllString(out, "")
	out = engineClauseRe.ReplaceAllString(out, "")
	out = charsetClause.ReplaceAllString(out, "")
	// MySQL "LIMIT offset, count" becomes "LIMIT count OFFSET offset".
	out = limitOffsetRe.ReplaceAllString(out, "LIMIT $2 OFFSET $1")

	return out, nil
}

// rewriteBackticks converts backtick-quoted identifiers to double-quoted
// ones, leaving single-quoted string literals untouched. Unbalanced
// backticks are a translation error.
func rewriteBackticks(sql string) (string, error) {
	if !strings.Contains(sql, "`") {
		return sql, nil
	}

	var b strings.Builder
	inString := false
	inIdent := false
	for _, r := range sql {
		switch {
		case r == '\'' && !inIdent:
			inString = !inString
			b.WriteRune(r)
		case r == '`' && !inString:
			inIdent = !inIdent
			b.WriteRune('"')
		default:
			b.WriteRune(r)
		}
	}
	if inIdent {
		return "", fmt.Errorf("unbalanced backtick quoting in %q", sql)
	}
	return b.String(), nil
}
