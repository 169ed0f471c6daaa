// Package swaggerkit provides OpenAPI swagger UI integration for HTTP services
package swaggerkit

import "net/http"

// docReader is a seam so tests can inject a different doc body
var docReader = func() string {
	return `{"openapi":"3.0.3","info":{"title":"AuditForge API","version":"0.0.0"},"paths":{}}`
}

// serveDocJSON serves the doc skeleton so the UI can load
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(docReader()))
	}
}
