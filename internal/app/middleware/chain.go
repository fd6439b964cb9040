// Package middleware provides the HTTP middleware chain and its entries.
package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Named couples a middleware handler with a stable name so profiles can
// rework the chain explicitly instead of splicing anonymous lists.
type Named struct {
	Name    string
	Handler gin.HandlerFunc
}

// Chain is an ordered middleware list. Order is significant: entries run in
// slice order on every request.
type Chain []Named

// InsertAfter returns a new chain with mw inserted immediately after the
// entry named anchor. A missing anchor is an error, never a silent no-op:
// callers that depend on a specific position must find out at startup.
func (c Chain) InsertAfter(anchor string, mw Named) (Chain, error) {
	for i, n := range c {
		if n.Name == anchor {
			out := make(Chain, 0, len(c)+1)
			out = append(out, c[:i+1]...)
			out = append(out, mw)
			out = append(out, c[i+1:]...)
			return out, nil
		}
	}
	return nil, fmt.Errorf("middleware %q not found in chain", anchor)
}

// Apply registers every entry on the engine in chain order.
func (c Chain) Apply(r *gin.Engine) {
	for _, n := range c {
		r.Use(n.Handler)
	}
}

// Names returns the entry names in order. Used by startup logging and tests.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, n := range c {
		names[i] = n.Name
	}
	return names
}
