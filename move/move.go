// Package move describes a single Klondike action and lists of them.
package move

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Action is the kind of a move.
type Action uint8

const (
	// Draw turns cards from the stock onto the waste.
	Draw Action = iota
	// Recycle turns the whole waste back over into the stock.
	Recycle
	// Transfer moves one or more face-up cards between piles.
	Transfer
)

var ErrBadMove = errors.New("unparseable move")

// Move is a value type. The rules engine fills in the reveals and
// emptiesColumn flags when it enumerates moves; they are not part of a
// move's identity.
type Move struct {
	action        Action
	from, to      Location
	count         int
	reveals       bool
	emptiesColumn bool
}

func NewDraw(count int) Move {
	return Move{action: Draw, from: Stock, to: Waste, count: count}
}

func NewRecycle(count int) Move {
	return Move{action: Recycle, from: Waste, to: Stock, count: count}
}

func NewTransfer(from, to Location, count int) Move {
	return Move{action: Transfer, from: from, to: to, count: count}
}

// WithEffects returns a copy of m annotated with what it does to the
// source column.
func (m Move) WithEffects(reveals, emptiesColumn bool) Move {
	m.reveals = reveals
	m.emptiesColumn = emptiesColumn
	return m
}

func (m Move) Action() Action      { return m.action }
func (m Move) From() Location      { return m.from }
func (m Move) To() Location        { return m.to }
func (m Move) Count() int          { return m.count }
func (m Move) Reveals() bool       { return m.reveals }
func (m Move) EmptiesColumn() bool { return m.emptiesColumn }

// Reversible is false for commitments: anything that reaches a
// foundation, flips a face-down card or recycles the waste.
func (m Move) Reversible() bool {
	switch {
	case m.action == Recycle:
		return false
	case m.to.IsFoundation():
		return false
	case m.reveals:
		return false
	}
	return true
}

// Equals compares identity only (action, source, destination, count).
func (m Move) Equals(o Move) bool {
	return m.action == o.action && m.from == o.from && m.to == o.to &&
		m.count == o.count
}

// String is one line of a move list: source, destination, count.
func (m Move) String() string {
	return m.from.String() + " " + m.to.String() + " " + strconv.Itoa(m.count)
}

// ShortDescription is meant for people.
func (m Move) ShortDescription() string {
	switch m.action {
	case Draw:
		return fmt.Sprintf("draw %d", m.count)
	case Recycle:
		return "recycle waste"
	}
	if m.count == 1 {
		return fmt.Sprintf("%v -> %v", m.from, m.to)
	}
	return fmt.Sprintf("%v -> %v (%d cards)", m.from, m.to, m.count)
}

// FromString parses the output of String.
func FromString(s string) (Move, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return Move{}, fmt.Errorf("%w: %q", ErrBadMove, s)
	}
	from, err := LocationFromString(fields[0])
	if err != nil {
		return Move{}, err
	}
	to, err := LocationFromString(fields[1])
	if err != nil {
		return Move{}, err
	}
	count, err := strconv.Atoi(fields[2])
	if err != nil || count < 0 {
		return Move{}, fmt.Errorf("%w: bad count in %q", ErrBadMove, s)
	}
	switch {
	case from == Stock && to == Waste:
		return NewDraw(count), nil
	case from == Waste && to == Stock:
		return NewRecycle(count), nil
	case from == Stock || to == Stock || to == Waste || from == to:
		return Move{}, fmt.Errorf("%w: impossible route in %q", ErrBadMove, s)
	}
	if count == 0 {
		return Move{}, fmt.Errorf("%w: zero-card transfer %q", ErrBadMove, s)
	}
	return NewTransfer(from, to, count), nil
}

// List is a plan: an ordered sequence of moves.
type List []Move

// String renders one move per line.
func (l List) String() string {
	var sb strings.Builder
	for _, m := range l {
		sb.WriteString(m.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseList reads a move list, skipping blank lines and lines starting
// with '#'.
func ParseList(text string) (List, error) {
	var l List
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m, err := FromString(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		l = append(l, m)
	}
	return l, nil
}
