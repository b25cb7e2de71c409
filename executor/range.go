package executor

import (
	"strconv"
	"strings"

	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/variant"
)

// rangeIterator walks a slice of an array/tuple input by (start, end, step),
// the simplest of the three rule-based plugins and the one with no
// external grounding beyond spec §4.6.4's naming — every RANGE behavior
// below (inclusive start, exclusive end, optional step, negative indices
// counted from the end) is this implementation's own reading of the rule
// grammar, there being no RANGE-specific source under the executors/
// directory to ground it on (exe_sql.c covers SQL, test-mul.cpp covers
// MUL; RANGE is named only in the public header's executor list).
type rangeIterator struct {
	items []*variant.Value
	start int
	end   int
	step  int
	pos   int
	asc   bool
}

func init() {
	Register("RANGE", newRangeIterator)
}

func newRangeIterator(input *variant.Value, rule string, ascDesc bool) (Iterator, error) {
	items := elementsOf(input)
	if items == nil {
		return nil, herr.New(herr.KindExecutorBadArg, "RANGE input must be an array, tuple, or set")
	}

	start, end, step := 0, len(items), 1
	parts := strings.FieldsFunc(rule, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, herr.New(herr.KindExecutorBadArg, "RANGE rule must be numeric: "+rule)
		}
		nums = append(nums, n)
	}
	switch len(nums) {
	case 0:
	case 1:
		start = nums[0]
	case 2:
		start, end = nums[0], nums[1]
	default:
		start, end, step = nums[0], nums[1], nums[2]
	}
	if step == 0 {
		step = 1
	}
	start = normalizeIndex(start, len(items))
	end = normalizeIndex(end, len(items))

	return &rangeIterator{items: items, start: start, end: end, step: step, pos: -1, asc: ascDesc}, nil
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i
}

func (r *rangeIterator) Begin() (bool, error) {
	r.pos = r.start
	return r.inBounds(), nil
}

func (r *rangeIterator) Next() (bool, error) {
	r.pos += r.step
	return r.inBounds(), nil
}

func (r *rangeIterator) inBounds() bool {
	if r.step > 0 {
		return r.pos >= r.start && r.pos < r.end && r.pos >= 0 && r.pos < len(r.items)
	}
	return r.pos <= r.start && r.pos > r.end && r.pos >= 0 && r.pos < len(r.items)
}

func (r *rangeIterator) Value() *variant.Value {
	if !r.inBounds() {
		return nil
	}
	return r.items[r.pos]
}

func (r *rangeIterator) Destroy() {}

// elementsOf extracts a plain slice view of an array/tuple/set's members,
// the common input shape every executor walks.
func elementsOf(v *variant.Value) []*variant.Value {
	if v == nil {
		return nil
	}
	var items []*variant.Value
	switch v.Kind() {
	case variant.Array:
		for i := 0; ; i++ {
			m := v.ArrayGet(i)
			if m == nil {
				break
			}
			items = append(items, m)
		}
		if items == nil {
			items = []*variant.Value{}
		}
	case variant.Tuple:
		for i := 0; ; i++ {
			m := v.TupleGet(i)
			if m == nil {
				break
			}
			items = append(items, m)
		}
		if items == nil {
			items = []*variant.Value{}
		}
	case variant.Set:
		v.SetEach(func(m *variant.Value) bool {
			items = append(items, m)
			return true
		})
		if items == nil {
			items = []*variant.Value{}
		}
	default:
		return nil
	}
	return items
}
