package executor

import (
	"path/filepath"
	"strings"

	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/variant"
)

// mulIterator selects elements of an array/set/tuple input against several
// `key=value` or `key~glob` criteria joined by ';', all of which must hold
// (an AND combination) — "MUL" for the multiple criteria a single rule
// combines. The reference MUL executor is driven by a bison/flex grammar
// (exe_mul.tab.h/exe_mul.l) that test-mul.cpp exercises only through its
// generated parser, with no plain-English description of the grammar's
// semantics available outside the generated parser sources; this is a
// reduced reading of "multiple selection criteria" true to the executor's
// name rather than a port of that grammar.
type mulIterator struct {
	matches []*variant.Value
	pos     int
}

type mulCriterion struct {
	key    string
	value  string
	isGlob bool
}

func init() {
	Register("MUL", newMulIterator)
}

func newMulIterator(input *variant.Value, rule string, ascDesc bool) (Iterator, error) {
	items := elementsOf(input)
	if items == nil {
		return nil, herr.New(herr.KindExecutorBadArg, "MUL input must be an array, tuple, or set")
	}

	var criteria []mulCriterion
	for _, clause := range strings.Split(rule, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if i := strings.Index(clause, "~"); i >= 0 {
			criteria = append(criteria, mulCriterion{
				key: strings.TrimSpace(clause[:i]), value: strings.TrimSpace(clause[i+1:]), isGlob: true,
			})
			continue
		}
		if i := strings.Index(clause, "="); i >= 0 {
			criteria = append(criteria, mulCriterion{
				key: strings.TrimSpace(clause[:i]), value: strings.TrimSpace(clause[i+1:]),
			})
			continue
		}
		return nil, herr.New(herr.KindExecutorBadArg, "MUL clause must be key=value or key~glob: "+clause)
	}

	var matches []*variant.Value
	for _, m := range items {
		if m.Kind() != variant.Object {
			continue
		}
		if matchesAllCriteria(m, criteria) {
			matches = append(matches, m)
		}
	}
	if ascDesc {
		reverseValues(matches)
	}

	return &mulIterator{matches: matches, pos: -1}, nil
}

func matchesAllCriteria(m *variant.Value, criteria []mulCriterion) bool {
	for _, c := range criteria {
		prop := m.ObjectGet(c.key)
		if prop == nil {
			return false
		}
		actual := variant.Stringify(prop)
		if c.isGlob {
			ok, err := filepath.Match(c.value, actual)
			if err != nil || !ok {
				return false
			}
			continue
		}
		if actual != c.value {
			return false
		}
	}
	return true
}

func (m *mulIterator) Begin() (bool, error) {
	m.pos = 0
	return m.pos < len(m.matches), nil
}

func (m *mulIterator) Next() (bool, error) {
	m.pos++
	return m.pos < len(m.matches), nil
}

func (m *mulIterator) Value() *variant.Value {
	if m.pos < 0 || m.pos >= len(m.matches) {
		return nil
	}
	return m.matches[m.pos]
}

func (m *mulIterator) Destroy() {}
