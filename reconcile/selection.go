package reconcile

// Selection tracks which change ids the operator wants applied. A
// fresh selection covers every change (opt-out, not opt-in); pure
// state, no I/O.
type Selection map[string]struct{}

// SelectAll returns a selection covering every change in the set.
func SelectAll(set ChangeSet) Selection {
	selection := make(Selection, set.Len())
	for _, change := range set.All() {
		selection[change.ID] = struct{}{}
	}
	return selection
}

// SelectionOf builds a selection from explicit change ids.
func SelectionOf(ids ...string) Selection {
	selection := make(Selection, len(ids))
	for _, id := range ids {
		selection[id] = struct{}{}
	}
	return selection
}

func (s Selection) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Selection) Toggle(id string) {
	if s.Contains(id) {
		delete(s, id)
		return
	}
	s[id] = struct{}{}
}

func (s Selection) DeselectAll() {
	for id := range s {
		delete(s, id)
	}
}

// Filter returns the subset of each bucket whose ids are selected,
// preserving bucket order.
func (s Selection) Filter(set ChangeSet) ChangeSet {
	return ChangeSet{
		Adds:    s.filterBucket(set.Adds),
		Updates: s.filterBucket(set.Updates),
		Deletes: s.filterBucket(set.Deletes),
	}
}

func (s Selection) filterBucket(changes []Change) []Change {
	out := make([]Change, 0, len(changes))
	for _, change := range changes {
		if s.Contains(change.ID) {
			out = append(out, change)
		}
	}
	return out
}
