// Package session owns the lifecycle of the authenticated session: the
// guard that reacts to authorization failures, and the wiring between the
// credential store and the caches that must be discarded on logout.
package session

import "sync"

// CredentialClearer wipes locally stored credential material.
// Satisfied by store.Store.
type CredentialClearer interface {
	ClearCredentials() error
}

// Guard tracks whether the session is still trusted by the server. The
// transport reports every authorization failure here; the guard clears
// credentials synchronously and hands control to the registered handler,
// which owns re-authentication. No retry happens at this level; an
// authorization failure is terminal for the session.
//
// Guard is constructed and injected, never package-level state, so tests
// can run isolated sessions side by side.
type Guard struct {
	mu      sync.Mutex
	creds   CredentialClearer
	handler func()
}

func NewGuard(creds CredentialClearer) *Guard {
	return &Guard{creds: creds}
}

// RegisterLogoutHandler stores the process-wide logout callback.
// The last registration wins.
func (g *Guard) RegisterLogoutHandler(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handler = fn
}

// ReportUnauthorized clears credentials and invokes the registered handler,
// once per reported failure. Without a handler it still clears credentials
// and otherwise no-ops.
func (g *Guard) ReportUnauthorized() {
	g.mu.Lock()
	handler := g.handler
	creds := g.creds
	g.mu.Unlock()

	if creds != nil {
		// A failing clear must not stop the logout signal.
		_ = creds.ClearCredentials()
	}
	if handler != nil {
		handler()
	}
}
