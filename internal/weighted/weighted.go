// Package weighted picks outcomes from fixed discrete distributions.
package weighted

// Rand is the subset of *rand.Rand used for picking.
type Rand interface {
	Intn(n int) int
}

type Entry[T any] struct {
	Value  T
	Weight int
}

// Table is an ordered list of outcomes and their integer weights.
type Table[T any] []Entry[T]

func (t Table[T]) Total() int {
	total := 0
	for _, e := range t {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	return total
}

// Pick draws one value. The result only depends on r.Intn(Total()), so a
// seeded or scripted source makes it deterministic. Pick panics on a table
// with no positive weight.
func (t Table[T]) Pick(r Rand) T {
	total := t.Total()
	if total <= 0 {
		panic("weighted: table has no positive weight")
	}
	n := r.Intn(total)
	for _, e := range t {
		if e.Weight <= 0 {
			continue
		}
		if n < e.Weight {
			return e.Value
		}
		n -= e.Weight
	}
	// unreachable while Intn honours its contract
	return t[len(t)-1].Value
}
