package dialogue

import "sort"

// Intent is a categorical label for an utterance's communicative function.
// Intents form a tree: an intent may have one parent and any number of
// children. A child is registered with its parent exactly once, at
// construction time.
type Intent struct {
	label    string
	parent   *Intent
	children []*Intent
}

// NewIntent creates a root intent with the given label.
func NewIntent(label string) *Intent {
	return &Intent{label: label}
}

// NewSubIntent creates an intent under the given parent and registers it as a
// child of the parent. A nil parent yields a root intent.
func NewSubIntent(label string, parent *Intent) *Intent {
	i := &Intent{label: label, parent: parent}
	if parent != nil {
		parent.children = append(parent.children, i)
	}
	return i
}

func (i *Intent) Label() string {
	return i.label
}

func (i *Intent) Parent() *Intent {
	return i.parent
}

// Children returns the direct sub-intents in registration order.
func (i *Intent) Children() []*Intent {
	out := make([]*Intent, len(i.children))
	copy(out, i.children)
	return out
}

// IsRoot reports whether the intent has no parent.
func (i *Intent) IsRoot() bool {
	return i.parent == nil
}

// IsLeaf reports whether the intent has no children.
func (i *Intent) IsLeaf() bool {
	return len(i.children) == 0
}

// Root walks up the parent chain and returns the top of the tree.
func (i *Intent) Root() *Intent {
	r := i
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (i *Intent) String() string {
	if i == nil {
		return ""
	}
	return i.label
}

// Equal reports whether two intents have the same label, equivalently placed
// parents and recursively equal (unordered) child sets. Either side may be
// nil; two nils are equal.
func (i *Intent) Equal(other *Intent) bool {
	if i == nil || other == nil {
		return i == other
	}
	if i == other {
		return true
	}
	if i.label != other.label {
		return false
	}
	if (i.parent == nil) != (other.parent == nil) {
		return false
	}
	if i.parent != nil && i.parent.label != other.parent.label {
		return false
	}
	return equalSubtreeSets(i.children, other.children)
}

// equalSubtreeSets matches two child lists as unordered sets, comparing each
// pair by label and recursively by their own children.
func equalSubtreeSets(a, b []*Intent) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, c := range a {
		found := false
		for j, d := range b {
			if used[j] {
				continue
			}
			if c.label == d.label && equalSubtreeSets(c.children, d.children) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SortIntentsByLabel orders intents lexicographically by label, in place.
// Handy for deterministic serialization of intent inventories.
func SortIntentsByLabel(intents []*Intent) {
	sort.Slice(intents, func(a, b int) bool {
		return intents[a].label < intents[b].label
	})
}
