package state

import "dailydash/internal/domain"

// PreferenceDraft is the transient category selection edited on the
// preference and settings screens. It is separate from the saved user
// preferences until explicitly committed.
type PreferenceDraft struct {
	// order preserves selection order; it becomes the saved order.
	order []string
}

// NewPreferenceDraft starts a draft from an existing selection.
func NewPreferenceDraft(initial []string) *PreferenceDraft {
	d := &PreferenceDraft{}
	for _, c := range initial {
		if !d.Has(c) && len(d.order) < domain.MaxPreferences {
			d.order = append(d.order, c)
		}
	}
	return d
}

// Toggle flips a category in or out of the draft. Adding beyond the
// maximum is ignored.
func (d *PreferenceDraft) Toggle(category string) {
	for i, c := range d.order {
		if c == category {
			d.order = append(d.order[:i], d.order[i+1:]...)
			return
		}
	}
	if len(d.order) < domain.MaxPreferences {
		d.order = append(d.order, category)
	}
}

// Has reports whether the category is currently selected.
func (d *PreferenceDraft) Has(category string) bool {
	for _, c := range d.order {
		if c == category {
			return true
		}
	}
	return false
}

// Selected returns a copy of the selection in order.
func (d *PreferenceDraft) Selected() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Count returns the number of selected categories.
func (d *PreferenceDraft) Count() int { return len(d.order) }
