// Package store implements the variable and function stores spec.md §3
// and §6 describe: name -> string, and name -> AST function body, both
// with set/get/delete/destroy and per-name last-write-wins.
//
// The original C implementation (original_source/src/variables/hash_*.c,
// functions/hash_*.c) hash-buckets by the first character of the key
// only — spec.md §3/§9 calls this out as a defect to fix. Go's built-in
// map already gives the well-distributed hash §9 asks for, so these
// stores are plain maps guarded by a mutex (the executor is the sole
// mutator per spec.md §5, but pipeline stages clone the stores from
// concurrent goroutines, so the lock costs nothing and buys safety).
package store

import (
	"sort"
	"sync"

	"github.com/Svartorm/PosixShell/internal/ast"
)

// VariableStore is the name -> string mapping spec.md §3 describes,
// seeded at startup with "#", "?", "UID", "$" (spec.md §3).
type VariableStore struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewVariableStore returns an empty store. Seeding with the special
// variables is the caller's responsibility (internal/shell does this at
// interpreter startup, since it alone knows the PID/UID/initial status).
func NewVariableStore() *VariableStore {
	return &VariableStore{vars: make(map[string]string)}
}

// Set upserts name -> value, replacing any prior value (last-write-wins).
func (s *VariableStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
}

// Get performs a borrowing lookup; ok is false if name is unset.
func (s *VariableStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// Delete removes name, if present.
func (s *VariableStore) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vars, name)
}

// Names returns all set variable names, sorted.
func (s *VariableStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.vars))
	for k := range s.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent VariableStore seeded from a snapshot of
// s, used to give a subshell its own copy-on-write-free variable scope
// (spec.md §4.5: "changes inside a subshell are not visible outside
// it") without a real OS fork, which the Go runtime cannot safely
// continue running after (see internal/shell's Subshell handling).
func (s *VariableStore) Clone() *VariableStore {
	snap := s.Snapshot()
	clone := NewVariableStore()
	clone.vars = snap
	return clone
}

// Destroy releases all entries.
func (s *VariableStore) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars = make(map[string]string)
}

// Snapshot returns a point-in-time copy, used when forking a child so the
// child's view of variables is independent of further parent mutation
// (spec.md §5: "changes there are local to the child").
func (s *VariableStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// FunctionStore is the name -> AST function-body mapping from spec.md §3.
// On upsert the previous body is simply dropped (Go's GC reclaims it);
// there is no double-free hazard to guard the way the C original has to
// (spec.md §3/§9).
type FunctionStore struct {
	mu    sync.RWMutex
	funcs map[string]ast.Node
}

// NewFunctionStore returns an empty function store.
func NewFunctionStore() *FunctionStore {
	return &FunctionStore{funcs: make(map[string]ast.Node)}
}

// Set upserts name -> body, replacing any previous body.
func (s *FunctionStore) Set(name string, body ast.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funcs[name] = body
}

// Get performs a borrowing lookup; ok is false if name is undeclared.
func (s *FunctionStore) Get(name string) (ast.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.funcs[name]
	return v, ok
}

// Delete removes name, if present.
func (s *FunctionStore) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.funcs, name)
}

// Clone returns an independent FunctionStore with a copy of s's entries,
// so a function declared inside a subshell does not leak to the parent.
func (s *FunctionStore) Clone() *FunctionStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := NewFunctionStore()
	for k, v := range s.funcs {
		clone.funcs[k] = v
	}
	return clone
}

// Destroy releases all entries.
func (s *FunctionStore) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funcs = make(map[string]ast.Node)
}
