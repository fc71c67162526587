// Package heap selects the best elements of a stream without sorting all of it.
package heap

// Top keeps the n best elements pushed to it. better reports whether a
// should rank before b.
type Top[T any] struct {
	// data is a heap with the worst kept element at the root.
	data   []T
	better func(a, b T) bool
	limit  int
}

// NewTop returns a Top keeping limit elements, or every element if limit is
// not positive.
func NewTop[T any](limit int, better func(a, b T) bool) *Top[T] {
	return &Top[T]{
		better: better,
		limit:  limit,
	}
}

// worse orders the heap so that the root is the element to evict next.
func (t *Top[T]) worse(i, j int) bool {
	return t.better(t.data[j], t.data[i])
}

func (t *Top[T]) Push(value T) {
	if t.limit > 0 && len(t.data) == t.limit {
		if !t.better(value, t.data[0]) {
			return
		}
		t.data[0] = value
		t.down(0)
		return
	}
	t.data = append(t.data, value)
	t.up(len(t.data) - 1)
}

func (t *Top[T]) Len() int {
	return len(t.data)
}

// Sorted empties t and returns its elements, best first.
func (t *Top[T]) Sorted() []T {
	result := make([]T, len(t.data))
	for idx := len(result) - 1; idx >= 0; idx-- {
		result[idx] = t.data[0]
		last := len(t.data) - 1
		t.data[0] = t.data[last]
		t.data = t.data[:last]
		t.down(0)
	}
	return result
}

func (t *Top[T]) up(index int) {
	for index > 0 {
		parent := (index - 1) / 2
		if !t.worse(index, parent) {
			return
		}
		t.data[index], t.data[parent] = t.data[parent], t.data[index]
		index = parent
	}
}

func (t *Top[T]) down(index int) {
	size := len(t.data)
	for {
		left := 2*index + 1
		right := 2*index + 2
		worst := index
		if left < size && t.worse(left, worst) {
			worst = left
		}
		if right < size && t.worse(right, worst) {
			worst = right
		}
		if worst == index {
			return
		}
		t.data[index], t.data[worst] = t.data[worst], t.data[index]
		index = worst
	}
}
