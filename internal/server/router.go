package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

const requestIDHeader = "X-Request-ID"

// SetupRouter creates and configures the HTTP router
func SetupRouter(handler *Handler, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.Recoverer)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
	})
	r.Use(c.Handler)

	// Register routes
	handler.RegisterRoutes(r)

	return r
}

// requestID assigns a request id when the client did not send one, and
// echoes it back so dashboard logs can be correlated with server logs.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
