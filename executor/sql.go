package executor

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/variant"
)

// sqlIterator runs rule as a SQL query against the database named in
// input's "dsn" property (an object input) or input itself when input is a
// bare string, grounded on exe_sql.c's create/choose shape: create binds
// the instance to input and parses the rule, choose executes the selection
// and returns the selected values as a variant. The reference
// implementation's exe_sql_parse_rule is an unfinished stub (it always
// fails with NOT_IMPLEMENTED); this executor fills in the gap the stub
// left, using rule verbatim as the SQL text rather than a custom selector
// grammar.
type sqlIterator struct {
	rows []*variant.Value
	pos  int
}

func init() {
	Register("SQL", newSQLIterator)
}

func newSQLIterator(input *variant.Value, rule string, ascDesc bool) (Iterator, error) {
	if input == nil {
		return nil, herr.New(herr.KindExecutorBadArg, "SQL executor requires an input binding")
	}
	dsn := dsnOf(input)
	if dsn == "" {
		return nil, herr.New(herr.KindExecutorBadArg, "SQL executor input must provide a dsn")
	}
	if rule == "" {
		return nil, herr.New(herr.KindExecutorBadArg, "SQL executor requires a query")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, herr.Wrap(herr.KindExecutorOOM, "opening sqlite dsn", err)
	}
	defer db.Close()

	rows, err := db.Query(rule)
	if err != nil {
		return nil, herr.Wrap(herr.KindExecutorBadArg, "executing SQL rule", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, herr.Wrap(herr.KindExecutorBadArg, "reading result columns", err)
	}

	var values []*variant.Value
	for rows.Next() {
		scanned := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range scanned {
			ptrs[i] = &scanned[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, herr.Wrap(herr.KindExecutorBadArg, "scanning row", err)
		}
		obj := variant.NewObject()
		for i, col := range cols {
			obj.ObjectSet(col, sqlValueToVariant(scanned[i]))
		}
		values = append(values, obj)
	}
	if ascDesc {
		reverseValues(values)
	}

	return &sqlIterator{rows: values, pos: -1}, nil
}

func dsnOf(input *variant.Value) string {
	switch input.Kind() {
	case variant.String:
		return input.Str()
	case variant.Object:
		if v := input.ObjectGet("dsn"); v != nil {
			return variant.Stringify(v)
		}
	}
	return ""
}

func sqlValueToVariant(v any) *variant.Value {
	switch t := v.(type) {
	case nil:
		return variant.NewNull()
	case int64:
		return variant.NewLongInt(t)
	case float64:
		return variant.NewNumber(t)
	case []byte:
		return variant.MustString(string(t))
	case string:
		return variant.MustString(t)
	default:
		return variant.MustString("")
	}
}

func reverseValues(v []*variant.Value) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

func (s *sqlIterator) Begin() (bool, error) {
	s.pos = 0
	return s.pos < len(s.rows), nil
}

func (s *sqlIterator) Next() (bool, error) {
	s.pos++
	return s.pos < len(s.rows), nil
}

func (s *sqlIterator) Value() *variant.Value {
	if s.pos < 0 || s.pos >= len(s.rows) {
		return nil
	}
	return s.rows[s.pos]
}

func (s *sqlIterator) Destroy() {
	for _, v := range s.rows {
		v.Unref()
	}
	s.rows = nil
}
