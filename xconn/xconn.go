// Package xconn defines the narrow X11 surface the rest of this module
// needs: atom interning and property fetches. It exists so condition
// postprocessing and property fetching can be tested against an in-memory
// fake instead of a real display connection.
package xconn

import "context"

// Atom is an X11 atom id. Atom(0) is X11's None.
type Atom uint32

// WindowID is an X11 window id.
type WindowID uint32

// PropertyType discriminates a GetProperty reply's payload the way the
// protocol does: by the type atom the server returns, mapped down to the
// three shapes match/fetch care about.
type PropertyType int

const (
	// TypeNone means the property doesn't exist on the window.
	TypeNone PropertyType = iota
	TypeInteger
	TypeAtom
	TypeString
)

// PropertyReply is a decoded GetProperty response. BytesAfter mirrors the
// protocol field of the same name: the number of bytes of the property
// value the server didn't send because the request's length was too
// short.
type PropertyReply struct {
	Type       PropertyType
	Format     int // 0, 8, 16 or 32
	ValueInts  []int64
	ValueAtoms []Atom
	ValueStr   []byte
	BytesAfter uint32
}

// Empty reports whether the server has no value at all for the property.
func (r *PropertyReply) Empty() bool {
	return r.Type == TypeNone
}

// Conn is the X11 surface used by atoms.Catalogue and fetch.Fetcher.
// A real implementation wraps an XCB/Xlib connection; mock.go provides an
// in-memory stand-in for tests and the demo binary.
type Conn interface {
	// InternAtom resolves a name to an atom id, creating it server-side if
	// onlyIfExists is false and the atom doesn't exist yet.
	InternAtom(ctx context.Context, name string, onlyIfExists bool) (Atom, error)

	// GetAtomName resolves an atom id back to its name.
	GetAtomName(ctx context.Context, atom Atom) (string, error)

	// GetProperty fetches up to length 4-byte units of win's property,
	// starting at the given long offset, matching the XGetWindowProperty
	// wire call this package's two-phase fetcher drives by hand.
	GetProperty(ctx context.Context, win WindowID, property Atom, longOffset, length uint32) (*PropertyReply, error)
}
