// Package atoms caches the X11 atom↔name mapping so the condition
// evaluation pipeline resolves a given atom or name at most once per
// compositor lifetime, instead of once per window per match.
package atoms

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rlch/wincond/xconn"
)

// Catalogue is a bidirectional, monotonically-growing atom cache backed by
// an xconn.Conn. It never evicts: atom tables are small and bounded by the
// properties a compositor actually touches over its lifetime.
type Catalogue struct {
	conn xconn.Conn
	log  *zap.Logger

	mu        sync.RWMutex
	byName    map[string]xconn.Atom
	byAtom    map[xconn.Atom]string
}

// New builds a Catalogue over conn and eagerly interns the well-known atom
// table, so lookups for those names never hit the connection.
func New(ctx context.Context, conn xconn.Conn, log *zap.Logger) (*Catalogue, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Catalogue{
		conn:   conn,
		log:    log,
		byName: make(map[string]xconn.Atom),
		byAtom: make(map[xconn.Atom]string),
	}
	for _, name := range xconn.WellKnownAtomNames {
		if _, err := c.Intern(ctx, name); err != nil {
			return nil, fmt.Errorf("atoms: preloading %q: %w", name, err)
		}
	}
	return c, nil
}

// Cached looks up name without touching the connection. ok is false on a
// cache miss; callers needing a guaranteed id should call Intern instead.
func (c *Catalogue) Cached(name string) (id xconn.Atom, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok = c.byName[name]
	return id, ok
}

// Intern resolves name to an atom id, interning it server-side on a cache
// miss. The result is cached in both directions.
func (c *Catalogue) Intern(ctx context.Context, name string) (xconn.Atom, error) {
	if id, ok := c.Cached(name); ok {
		return id, nil
	}

	id, err := c.conn.InternAtom(ctx, name, false)
	if err != nil {
		c.log.Debug("atom intern failed", zap.String("name", name), zap.Error(err))
		return 0, fmt.Errorf("atoms: intern %q: %w", name, err)
	}

	c.mu.Lock()
	c.byName[name] = id
	c.byAtom[id] = name
	c.mu.Unlock()
	return id, nil
}

// NameCached looks up atom's name without touching the connection.
func (c *Catalogue) NameCached(atom xconn.Atom) (name string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok = c.byAtom[atom]
	return name, ok
}

// Name resolves atom to its name, issuing a GetAtomName round-trip on a
// cache miss. Used by the matcher to compare ATOM-typed property cells
// against string patterns.
func (c *Catalogue) Name(ctx context.Context, atom xconn.Atom) (string, error) {
	if name, ok := c.NameCached(atom); ok {
		return name, nil
	}

	name, err := c.conn.GetAtomName(ctx, atom)
	if err != nil {
		c.log.Debug("atom name lookup failed", zap.Uint32("atom", uint32(atom)), zap.Error(err))
		return "", fmt.Errorf("atoms: name of %d: %w", atom, err)
	}

	c.mu.Lock()
	c.byName[name] = atom
	c.byAtom[atom] = name
	c.mu.Unlock()
	return name, nil
}

// Len reports how many atoms are currently cached, for tests and metrics.
func (c *Catalogue) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byAtom)
}
