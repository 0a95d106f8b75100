// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

// Link is a named edge to a Var. Owned links sit in a parent's child list;
// unowned links are bare references handed to evaluation callers. Replacing
// a link's target keeps the link itself, so every holder of the link sees
// the new value.
type Link struct {
	Name  string
	Var   *Var
	Owned bool

	prev *Link
	next *Link
}

// NewLink creates an unowned reference to v. A nil v becomes Undefined.
func NewLink(v *Var, name string) *Link {
	if v == nil {
		v = NewUndefined()
	}
	return &Link{Name: name, Var: v.ref()}
}

// Next returns the following sibling in the parent's child list.
func (l *Link) Next() *Link { return l.next }

// Prev returns the preceding sibling in the parent's child list.
func (l *Link) Prev() *Link { return l.prev }

// Replace points the link at v, taking a reference on v and releasing the
// old target. A nil v becomes Undefined.
func (l *Link) Replace(v *Var) {
	if v == nil {
		v = NewUndefined()
	}
	old := l.Var
	l.Var = v.ref()
	old.unref()
}

// ReplaceLink points l at the target of other; a nil other means Undefined.
func (l *Link) ReplaceLink(other *Link) {
	if other == nil {
		l.Replace(nil)
		return
	}
	l.Replace(other.Var)
}

func (v *Var) ref() *Var {
	v.refs++
	return v
}

// unref drops one reference. A node nobody points at any more gives up its
// own children; the memory itself belongs to the garbage collector.
func (v *Var) unref() {
	v.refs--
	if v.refs == 0 {
		v.RemoveAllChildren()
	}
}

// FirstChild returns the first child link, or nil.
func (v *Var) FirstChild() *Link { return v.first }

// LastChild returns the last child link, or nil.
func (v *Var) LastChild() *Link { return v.last }

// Children returns the child links in insertion order.
func (v *Var) Children() []*Link {
	var out []*Link
	for l := v.first; l != nil; l = l.next {
		out = append(out, l)
	}
	return out
}

// NumChildren returns the number of direct children.
func (v *Var) NumChildren() int {
	n := 0
	for l := v.first; l != nil; l = l.next {
		n++
	}
	return n
}

// AddChild appends a new owned edge. Duplicate names are allowed. Adding a
// child to an Undefined node turns it into an Object.
func (v *Var) AddChild(name string, child *Var) *Link {
	if v.typ == Undefined {
		v.typ = Object
	}
	link := NewLink(child, name)
	link.Owned = true
	if v.last != nil {
		v.last.next = link
		link.prev = v.last
		v.last = link
	} else {
		v.first = link
		v.last = link
	}
	return link
}

// AddUniqueChild replaces the target of an existing same-named child in
// place, or appends a new owned edge.
func (v *Var) AddUniqueChild(name string, child *Var) *Link {
	if link := v.FindChild(name); link != nil {
		link.Replace(child)
		return link
	}
	return v.AddChild(name, child)
}

// FindChild returns the first direct child named name, or nil.
func (v *Var) FindChild(name string) *Link {
	for l := v.first; l != nil; l = l.next {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// FindChildOrCreate returns the named child, creating a placeholder of type
// t if there is none.
func (v *Var) FindChildOrCreate(name string, t Type) *Link {
	if link := v.FindChild(name); link != nil {
		return link
	}
	return v.AddChild(name, &Var{typ: t})
}

// RemoveChild unlinks the first child edge pointing at child.
func (v *Var) RemoveChild(child *Var) {
	for l := v.first; l != nil; l = l.next {
		if l.Var == child {
			v.RemoveLink(l)
			return
		}
	}
}

// RemoveLink unlinks link from v's child list and releases its target.
func (v *Var) RemoveLink(link *Link) {
	if link == nil {
		return
	}
	if link.next != nil {
		link.next.prev = link.prev
	}
	if link.prev != nil {
		link.prev.next = link.next
	}
	if v.last == link {
		v.last = link.prev
	}
	if v.first == link {
		v.first = link.next
	}
	link.prev, link.next = nil, nil
	link.Owned = false
	link.Var.unref()
}

// RemoveAllChildren unlinks and releases every child.
func (v *Var) RemoveAllChildren() {
	l := v.first
	v.first, v.last = nil, nil
	for l != nil {
		next := l.next
		l.prev, l.next = nil, nil
		l.Owned = false
		l.Var.unref()
		l = next
	}
}
