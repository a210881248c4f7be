package server

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

func withLogging(logger *log.Logger, now func() time.Time) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Printf("REQ %s %s status=%d bytes=%d id=%s from=%s took=%s",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
				middleware.GetReqID(r.Context()), r.RemoteAddr, now().Sub(start))
		})
	}
}
