package util

import (
	"net/http"
	"strings"
)

// locationPrefixer prepends a prefix to absolute Location headers.
type locationPrefixer struct {
	http.ResponseWriter
	prefix string // without trailing slash
}

func (w *locationPrefixer) WriteHeader(statusCode int) {
	if location := w.Header().Get("Location"); strings.HasPrefix(location, "/") && !strings.HasPrefix(location, "//") {
		w.Header().Set("Location", w.prefix+location)
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// HandlePrefix registers handler for all paths below prefix. The prefix is stripped from the request path
// and prepended to absolute redirect locations, so the handler can act as if it was mounted at the root.
func HandlePrefix(mux *http.ServeMux, prefix string, handler http.Handler) {
	prefix = strings.TrimSuffix(prefix, "/")
	var prefixed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if prefix != "" {
			w = &locationPrefixer{w, prefix}
		}
		handler.ServeHTTP(w, r)
	})
	mux.Handle(prefix+"/", http.StripPrefix(prefix, prefixed)) // the mux needs a trailing slash for subtree patterns
}
