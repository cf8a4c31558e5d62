package analytics

import "sort"

// tally counts occurrences by label and remembers first-seen order.
type tally struct {
	order []string
	index map[string]int
	count []int
}

func newTally() *tally {
	return &tally{index: make(map[string]int)}
}

func (t *tally) add(label string) {
	if i, ok := t.index[label]; ok {
		t.count[i]++
		return
	}
	t.index[label] = len(t.order)
	t.order = append(t.order, label)
	t.count = append(t.count, 1)
}

// counts returns the pairs in first-seen order.
func (t *tally) counts() []Count {
	out := make([]Count, 0, len(t.order))
	for i, label := range t.order {
		out = append(out, Count{Name: label, Count: t.count[i]})
	}
	return out
}

// top returns the n largest counts, ties kept in first-seen order.
func (t *tally) top(n int) []Count {
	out := t.counts()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownLabel
	}
	return s
}
