package audiograph

// insertUnique appends v unless an entry matching same is already present.
func insertUnique[T any](set []T, v T, same func(T) bool) ([]T, error) {
	for _, e := range set {
		if same(e) {
			return set, ErrDuplicateEdge
		}
	}
	return append(set, v), nil
}

// pickOne finds the single entry matching pred.
func pickOne[T any](set []T, pred func(T) bool) (int, error) {
	found := -1
	for i, e := range set {
		if !pred(e) {
			continue
		}
		if found >= 0 {
			return -1, ErrAmbiguousEdge
		}
		found = i
	}
	if found < 0 {
		return -1, ErrEdgeNotFound
	}
	return found, nil
}

// removeOne deletes the single entry matching pred, preserving order. An
// emptied set is returned as nil.
func removeOne[T any](set []T, pred func(T) bool) ([]T, T, error) {
	var zero T
	i, err := pickOne(set, pred)
	if err != nil {
		return set, zero, err
	}
	removed := set[i]
	set = append(set[:i], set[i+1:]...)
	if len(set) == 0 {
		set = nil
	}
	return set, removed, nil
}
