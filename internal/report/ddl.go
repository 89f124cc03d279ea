package report

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/placer/internal/classify"
	"github.com/roach88/placer/internal/value"
)

// Dialect selects the SQL flavor for suggested DDL.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ErrNoColumns is returned when no decision has a relational side.
var ErrNoColumns = errors.New("no relational fields to place")

var columnTypes = map[Dialect]map[string]string{
	DialectPostgres: {
		string(value.TagString):  "VARCHAR(255)",
		string(value.TagInteger): "BIGINT",
		string(value.TagFloat):   "DOUBLE PRECISION",
		string(value.TagBoolean): "BOOLEAN",
	},
	DialectSQLite: {
		string(value.TagString):  "TEXT",
		string(value.TagInteger): "INTEGER",
		string(value.TagFloat):   "REAL",
		string(value.TagBoolean): "INTEGER",
	},
}

// ParseDialect accepts "postgres" (or "postgresql") and "sqlite".
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	}
	return "", fmt.Errorf("unknown SQL dialect %q", s)
}

// SuggestDDL renders a CREATE TABLE statement for every relational decision
// (sql or both). Mandatory join fields come first, are NOT NULL and form the
// primary key; the remaining columns follow by name, with UNIQUE on
// uniqueness candidates. Unknown dominant types fall back to TEXT.
func SuggestDDL(table string, decisions []classify.Decision, dialect Dialect) (string, error) {
	types, ok := columnTypes[dialect]
	if !ok {
		return "", fmt.Errorf("unknown SQL dialect %q", dialect)
	}

	var keys, rest []classify.Decision
	for _, d := range decisions {
		switch {
		case d.Rule == classify.RuleMandatoryBoth:
			keys = append(keys, d)
		case d.Relational():
			rest = append(rest, d)
		}
	}
	if len(keys)+len(rest) == 0 {
		return "", ErrNoColumns
	}
	byName := func(ds []classify.Decision) {
		sort.Slice(ds, func(i, j int) bool { return ds[i].FieldName < ds[j].FieldName })
	}
	byName(keys)
	byName(rest)

	width := 0
	for _, d := range append(append([]classify.Decision(nil), keys...), rest...) {
		if n := len(quoteIdent(d.FieldName)); n > width {
			width = n
		}
	}

	var lines []string
	column := func(d classify.Decision, constraint string) {
		typ, ok := types[d.Metrics.DominantType]
		if !ok {
			typ = "TEXT"
		}
		line := fmt.Sprintf("    %-*s %s", width, quoteIdent(d.FieldName), typ)
		if constraint != "" {
			line += " " + constraint
		}
		lines = append(lines, line)
	}
	for _, d := range keys {
		column(d, "NOT NULL")
	}
	for _, d := range rest {
		constraint := ""
		if d.Metrics.IsUnique {
			constraint = "UNIQUE"
		}
		column(d, constraint)
	}
	if len(keys) > 0 {
		names := make([]string, len(keys))
		for i, d := range keys {
			names[i] = quoteIdent(d.FieldName)
		}
		lines = append(lines, fmt.Sprintf("    PRIMARY KEY (%s)", strings.Join(names, ", ")))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", quoteIdent(table))
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);\n")
	return b.String(), nil
}

var plainIdent = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// quoteIdent double-quotes names that are not plain lowercase identifiers.
func quoteIdent(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
