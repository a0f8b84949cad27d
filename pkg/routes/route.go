package routes

import "net/http"

// Route pairs a method and pattern with the handler that serves it.
// Patterns are relative to the enclosing group's prefix.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
