package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"megacrm-backend/pkg/utils"
)

// PanicRecovery turns a handler panic into a JSON 500 and logs the stack
// with the request id when one was assigned.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC RECOVERED [%s %s %s]: %v\n%s",
					RequestIDFromContext(r.Context()), r.Method, r.URL.Path, err, debug.Stack())
				utils.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
