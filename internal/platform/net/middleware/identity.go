package middleware

import (
	"net/http"

	"auditforge/internal/platform/logger"
	pnet "auditforge/internal/platform/net"
)

// walletHeader carries the caller's self-declared wallet address.
// It is advisory: handlers that authorize by party still check the
// addresses recorded on the audit row
const walletHeader = "X-Wallet-Address"

// Identity copies the request id and caller wallet onto the context so
// downstream logs carry request_id and actor fields
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithRequest(r.Context(), pnet.RequestID(r.Context()), r.Header.Get(walletHeader))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
