// Package executor implements the iterate-rule plugins spec §4.6.4 names:
// RANGE, SQL, MUL. Each plugin exposes create/it_begin/it_next/it_value/
// destroy as an Iterator built from a Factory registered under the rule's
// executor name (the leading token of `by="NAME: rule-body"`).
package executor

import (
	"strings"
	"sync"

	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/variant"
)

// Iterator walks the elements an executor rule selects from its input.
type Iterator interface {
	// Begin positions the iterator at the first element, reporting
	// whether one exists.
	Begin() (bool, error)
	// Next advances to the next element, reporting whether one exists.
	Next() (bool, error)
	// Value returns the element at the iterator's current position. The
	// caller does not own the returned reference; Ref it to keep it.
	Value() *variant.Value
	// Destroy releases any resources the executor instance holds (open
	// database handles, compiled rule state).
	Destroy()
}

// Factory creates an executor instance bound to input, given the rule body
// (the text following "NAME:") and the ascending/descending flag the
// tokenizer parsed from the rule's trailing direction marker.
type Factory func(input *variant.Value, rule string, ascDesc bool) (Iterator, error)

var (
	registryMu sync.Mutex
	registry   = make(map[string]Factory)
)

// Register installs a named executor plugin. Re-registering the same name
// replaces the prior factory.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToUpper(name)] = f
}

// Lookup resolves a rule's leading executor name.
func Lookup(name string) (Factory, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	f, ok := registry[strings.ToUpper(name)]
	return f, ok
}

// ParseRule splits a `by` attribute's rule string "NAME: body" into its
// executor name and body. A rule with no ':' is treated as a bare name with
// an empty body.
func ParseRule(rule string) (name, body string) {
	i := strings.IndexByte(rule, ':')
	if i < 0 {
		return strings.TrimSpace(rule), ""
	}
	return strings.TrimSpace(rule[:i]), strings.TrimSpace(rule[i+1:])
}

// Create resolves rule's executor name and builds an Iterator bound to
// input, per spec §4.6.4: "after_pushed creates the executor instance
// bound to on; it_begin returns the first iterator."
func Create(input *variant.Value, rule string, ascDesc bool) (Iterator, error) {
	name, body := ParseRule(rule)
	f, ok := Lookup(name)
	if !ok {
		return nil, herr.New(herr.KindExecutorNotImplemented, "no such executor: "+name)
	}
	return f(input, body, ascDesc)
}
