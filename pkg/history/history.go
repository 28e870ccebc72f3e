// Package history records diagram edits as undoable commands.
//
// A [Stack] is the command history of one diagram. Its [Stack.Position] is
// the number of applied commands; [Stack.RewindTo] undoes back to an earlier
// position, which is how batch operations roll back on failure.
//
// Commands that are computed in place, such as a layout run, are recorded
// after the fact with [Stack.Record] as a [GeometryCommand] that swaps
// between the geometry before and after.
package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
)

// Sentinel errors for history operations.
var (
	// ErrNothingToUndo is returned by Undo on an empty history.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo when no command was undone.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrBadPosition is returned by RewindTo for a position ahead of the
	// current one.
	ErrBadPosition = errors.New("invalid history position")
)

// Command is one reversible edit.
type Command interface {
	Name() string
	Do() error
	Undo() error
}

// Entry is an applied command with its bookkeeping.
type Entry struct {
	ID      uuid.UUID
	Name    string
	At      time.Time
	command Command
}

// Stack is a linear undo/redo history. It is safe for concurrent use; the
// commands themselves run under the stack's lock, which serializes edits of
// the diagram they belong to.
type Stack struct {
	mu     sync.Mutex
	done   []Entry
	undone []Entry
}

// New returns an empty history.
func New() *Stack { return &Stack{} }

// Execute runs c and records it. Executing a command discards the redo
// list.
func (s *Stack) Execute(c Command) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := c.Do(); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", c.Name(), err)
	}
	return s.push(c), nil
}

// Record adds a command whose effect has already been applied.
func (s *Stack) Record(c Command) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.push(c)
}

func (s *Stack) push(c Command) uuid.UUID {
	e := Entry{ID: uuid.New(), Name: c.Name(), At: time.Now(), command: c}
	s.done = append(s.done, e)
	s.undone = nil
	return e.ID
}

// Undo reverts the most recent command.
func (s *Stack) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo()
}

func (s *Stack) undo() error {
	if len(s.done) == 0 {
		return ErrNothingToUndo
	}
	e := s.done[len(s.done)-1]
	if err := e.command.Undo(); err != nil {
		return fmt.Errorf("undo %s: %w", e.Name, err)
	}
	s.done = s.done[:len(s.done)-1]
	s.undone = append(s.undone, e)
	return nil
}

// Redo reapplies the most recently undone command.
func (s *Stack) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undone) == 0 {
		return ErrNothingToRedo
	}
	e := s.undone[len(s.undone)-1]
	if err := e.command.Do(); err != nil {
		return fmt.Errorf("redo %s: %w", e.Name, err)
	}
	s.undone = s.undone[:len(s.undone)-1]
	s.done = append(s.done, e)
	return nil
}

// Position returns the number of applied commands.
func (s *Stack) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.done)
}

// RewindTo undoes commands until pos are left applied.
func (s *Stack) RewindTo(pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos < 0 || pos > len(s.done) {
		return fmt.Errorf("%w: %d (at %d)", ErrBadPosition, pos, len(s.done))
	}
	for len(s.done) > pos {
		if err := s.undo(); err != nil {
			return err
		}
	}
	return nil
}

// Entries returns the applied commands, oldest first.
func (s *Stack) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.done))
	copy(out, s.done)
	return out
}

// GeometryCommand swaps a diagram between the geometry, pins, lanes and
// expansion state it had before and after an in-place change.
type GeometryCommand struct {
	name          string
	d             *bpmn.Diagram
	before, after bpmn.Geometry
}

// Capture starts a geometry command by remembering the current state of d.
// Call Commit once the change is done.
func Capture(d *bpmn.Diagram, name string) *GeometryCommand {
	return &GeometryCommand{name: name, d: d, before: d.Snapshot()}
}

// Commit remembers the state after the change.
func (c *GeometryCommand) Commit() *GeometryCommand {
	c.after = c.d.Snapshot()
	return c
}

// Name implements Command.
func (c *GeometryCommand) Name() string { return c.name }

// Do implements Command.
func (c *GeometryCommand) Do() error {
	c.d.Restore(c.after)
	return nil
}

// Undo implements Command.
func (c *GeometryCommand) Undo() error {
	c.d.Restore(c.before)
	return nil
}
