package routes

import "net/http"

// Group collects routes under a shared path prefix. Child groups inherit the
// accumulated prefix of their parents.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register walks the groups and installs every route on the mux using
// "METHOD /prefix/pattern" keys.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.install(mux, "")
	}
}

func (g Group) install(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		child.install(mux, prefix)
	}
}
