package tenant

import (
	"context"
	"sync"
)

// Scope holds the current tenant of one sequential unit of work, such as a
// job processing several tenants in turn. Every Enter must be paired with an
// Exit of the returned token, normally through Do.
//
// A Scope must not be shared by concurrent units of work; request handlers
// should rely on Run and the context instead.
type Scope struct {
	mu    sync.Mutex
	base  *Tenant
	stack []*Tenant
}

// Token captures the tenant that was current when Enter was called.
type Token struct {
	scope *Scope
	depth int
	prev  *Tenant
}

// Previous returns the tenant the token restores on Exit, or nil for none.
func (t Token) Previous() *Tenant {
	return t.prev
}

// NewScope creates a scope whose baseline is base (nil for no tenant).
func NewScope(base *Tenant) *Scope {
	return &Scope{base: base}
}

// ScopeFromContext creates a scope whose baseline is the tenant in ctx.
func ScopeFromContext(ctx context.Context) *Scope {
	t, _ := FromContext(ctx)
	return NewScope(t)
}

// Current returns the tenant in effect, or nil.
func (s *Scope) Current() *Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// Depth returns the number of open Enter calls.
func (s *Scope) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}

// Enter makes t current and returns a token restoring the previous value.
func (s *Scope) Enter(t *Tenant) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok := Token{scope: s, depth: len(s.stack), prev: s.current()}
	s.stack = append(s.stack, t)
	return tok
}

// Exit restores the value captured by tok. If inner scopes are still open they
// are discarded as well and ErrUnbalancedExit is returned; the restored value is
// correct either way.
func (s *Scope) Exit(tok Token) error {
	if tok.scope != s {
		return ErrForeignToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tok.depth >= len(s.stack) {
		// Already exited through an outer token.
		return ErrUnbalancedExit
	}
	unbalanced := len(s.stack) != tok.depth+1
	clear(s.stack[tok.depth:])
	s.stack = s.stack[:tok.depth]
	if unbalanced {
		return ErrUnbalancedExit
	}
	return nil
}

// Do runs fn with t current and restores the previous value afterwards,
// including when fn panics. An Exit error is reported only when fn succeeded.
func (s *Scope) Do(ctx context.Context, t *Tenant, fn func(ctx context.Context) error) (err error) {
	tok := s.Enter(t)
	defer func() {
		if exitErr := s.Exit(tok); exitErr != nil && err == nil {
			err = exitErr
		}
	}()
	return fn(s.Context(ctx))
}

// Context returns a child of parent carrying the scope's current tenant.
func (s *Scope) Context(parent context.Context) context.Context {
	return WithTenant(parent, s.Current())
}

func (s *Scope) current() *Tenant {
	if n := len(s.stack); n > 0 {
		return s.stack[n-1]
	}
	return s.base
}

// ForEach runs fn once per tenant, each time scoped to that tenant, stopping at
// the first error. The tenant in ctx is in effect again when ForEach returns.
func ForEach(ctx context.Context, tenants []*Tenant, fn func(ctx context.Context) error) error {
	scope := ScopeFromContext(ctx)
	for _, t := range tenants {
		if err := scope.Do(ctx, t, fn); err != nil {
			return err
		}
	}
	return nil
}
