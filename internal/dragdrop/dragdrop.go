// Package dragdrop models the board's drag interactions as plain input events
// feeding pure functions, so the center-zone geometry and placeholder logic
// are testable without any rendering surface. The client feeds pointer
// coordinates and the drop target; it gets back a decision it can send as a
// command (create/join group, or a full reorder sequence).
package dragdrop

import (
	"github.com/google/uuid"

	"retroboard-be/internal/constant"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Card is one rendered element of a column: a standalone item or a group.
type Card struct {
	ID   uuid.UUID
	Type string // constant.ElementTypeItem | constant.ElementTypeGroup
	// Position is the element's stored column position.
	Position int
	Bounds   Rect
}

// Column is one category lane in render order.
type Column struct {
	Category string
	Cards    []Card
}

// Intent classifies what a hover would mean if the pointer dropped now.
type Intent int

const (
	// IntentNone: pointer is over no card and no slot of interest.
	IntentNone Intent = iota
	// IntentGroup: pointer is inside the center zone of a card.
	IntentGroup
	// IntentReorder: pointer is over a card but outside its center zone,
	// or between cards.
	IntentReorder
)

// Placeholder is a transient drop slot rendered during a drag. Index is the
// insertion index into the column sequence with the dragged card removed.
type Placeholder struct {
	Index int
}

// Drop is the terminal input event of a drag. Exactly one field is set:
// CardID when released inside a card's center zone, PlaceholderIndex when
// released on a rendered placeholder.
type Drop struct {
	CardID           *uuid.UUID
	PlaceholderIndex *int
}

// Action is what the client should do after a drop.
type Action int

const (
	// ActionNone: the drop resolves to no command (same slot, or an
	// invalid cross-column reorder). No network round-trip happens.
	ActionNone Action = iota
	// ActionCreateGroup: dragged standalone item + target standalone item
	// become a new 2-element group at the target's column position.
	ActionCreateGroup
	// ActionJoinGroup: dragged standalone item is added to the target group.
	ActionJoinGroup
	// ActionReorder: submit NewOrder as the column's full element sequence.
	ActionReorder
)

type Element struct {
	Type string    `json:"type"`
	Id   uuid.UUID `json:"id"`
}

type Decision struct {
	Action   Action
	TargetID uuid.UUID
	// Position is the column position for a newly created group.
	Position int
	// NewOrder is the full ordered element list for an ActionReorder.
	NewOrder []Element
}

// InCenterZone reports whether p lies within the center 50%-width /
// 50%-height zone of r. Dropping there means grouping; anywhere else on the
// card means reordering.
func InCenterZone(p Point, r Rect) bool {
	cx := r.X + r.Width/4
	cy := r.Y + r.Height/4
	return p.X >= cx && p.X <= cx+r.Width/2 &&
		p.Y >= cy && p.Y <= cy+r.Height/2
}

func contains(r Rect, p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// HitCard returns the column card under the pointer, or nil.
func HitCard(col Column, p Point) *Card {
	for i := range col.Cards {
		if contains(col.Cards[i].Bounds, p) {
			return &col.Cards[i]
		}
	}
	return nil
}

// Classify resolves the pointer position over a column into a hover intent.
// The dragged card itself is never a grouping target.
func Classify(col Column, draggedID uuid.UUID, p Point) Intent {
	card := HitCard(col, p)
	if card == nil {
		return IntentReorder
	}
	if card.ID == draggedID {
		return IntentNone
	}
	if InCenterZone(p, card.Bounds) {
		return IntentGroup
	}
	return IntentReorder
}

// Placeholders computes the drop slots to render while dragging: one before
// the first card (unless the dragged card is already first) and one after
// every other card. The slots adjacent to the dragged card's own position are
// the only ones omitted, so every remaining drop has an unambiguous target.
func Placeholders(col Column, draggedID uuid.UUID) []Placeholder {
	var out []Placeholder
	// Insertion indices refer to the sequence without the dragged card.
	idx := 0
	if len(col.Cards) > 0 && col.Cards[0].ID != draggedID {
		out = append(out, Placeholder{Index: 0})
	}
	for _, card := range col.Cards {
		if card.ID == draggedID {
			continue
		}
		idx++
		out = append(out, Placeholder{Index: idx})
	}
	return out
}

// sequenceWithout returns the column's element order minus the dragged card.
func sequenceWithout(col Column, draggedID uuid.UUID) []Element {
	out := make([]Element, 0, len(col.Cards))
	for _, card := range col.Cards {
		if card.ID == draggedID {
			continue
		}
		out = append(out, Element{Type: card.Type, Id: card.ID})
	}
	return out
}

// currentOrder is the column's element order as stored, dragged included.
func currentOrder(col Column) []Element {
	out := make([]Element, 0, len(col.Cards))
	for _, card := range col.Cards {
		out = append(out, Element{Type: card.Type, Id: card.ID})
	}
	return out
}

func ordersEqual(a, b []Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func findCard(col Column, id uuid.UUID) *Card {
	for i := range col.Cards {
		if col.Cards[i].ID == id {
			return &col.Cards[i]
		}
	}
	return nil
}

// Decide resolves a drop into the command the client should issue.
//
// Card targets group: a standalone item target creates a new 2-element group
// at the target's column position, a group target absorbs the dragged item.
// Placeholder targets reorder, but only within the source column; a
// cross-column drop can only mean grouping, never reordering. A reorder that
// reproduces the current order short-circuits to ActionNone so the drag that
// starts and ends at the same slot costs no round-trip and no broadcast.
func Decide(source, target Column, draggedID uuid.UUID, drop Drop) Decision {
	switch {
	case drop.CardID != nil:
		card := findCard(target, *drop.CardID)
		if card == nil || card.ID == draggedID {
			return Decision{Action: ActionNone}
		}
		if card.Type == constant.ElementTypeGroup {
			return Decision{Action: ActionJoinGroup, TargetID: card.ID}
		}
		return Decision{Action: ActionCreateGroup, TargetID: card.ID, Position: card.Position}

	case drop.PlaceholderIndex != nil:
		if target.Category != source.Category {
			// Grouping always wins across columns.
			return Decision{Action: ActionNone}
		}
		dragged := findCard(source, draggedID)
		if dragged == nil {
			return Decision{Action: ActionNone}
		}
		rest := sequenceWithout(source, draggedID)
		idx := *drop.PlaceholderIndex
		if idx < 0 || idx > len(rest) {
			return Decision{Action: ActionNone}
		}
		next := make([]Element, 0, len(rest)+1)
		next = append(next, rest[:idx]...)
		next = append(next, Element{Type: dragged.Type, Id: dragged.ID})
		next = append(next, rest[idx:]...)
		if ordersEqual(next, currentOrder(source)) {
			return Decision{Action: ActionNone}
		}
		return Decision{Action: ActionReorder, NewOrder: next}
	}
	return Decision{Action: ActionNone}
}
