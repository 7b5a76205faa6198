package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"
	"github.com/stellar/go/support/log"

	"github.com/stellar/anchor-platform-backend/internal/monitor"
	"github.com/stellar/anchor-platform-backend/internal/sepauth"
)

type ContextKey string

const TokenSubjectContextKey ContextKey = "token_subject"

// RecoverHandler is a middleware that recovers from panics and logs the error.
func RecoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}

			// No need to recover when the client has disconnected:
			if errors.Is(err, http.ErrAbortHandler) {
				panic(err)
			}

			ctx := req.Context()
			log.Ctx(ctx).WithStack(err).Error(err)
			rw.Header().Set("Content-Type", "application/json; charset=utf-8")
			rw.WriteHeader(http.StatusInternalServerError)
			_, _ = rw.Write([]byte(`{"error": "An internal error occurred while processing this request."}`))
		}()

		next.ServeHTTP(rw, req)
	})
}

// MetricsRequestHandler is a middleware that monitors http requests, and export the data
// to the metrics server
func MetricsRequestHandler(monitorService monitor.MonitorServiceInterface) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			mw := chimiddleware.NewWrapResponseWriter(rw, req.ProtoMajor)
			then := time.Now()
			next.ServeHTTP(mw, req)

			duration := time.Since(then)

			labels := monitor.HttpRequestLabels{
				Status: fmt.Sprintf("%d", mw.Status()),
				Route:  getRoutePattern(req),
				Method: req.Method,
			}

			err := monitorService.MonitorHttpRequestDuration(duration, labels)
			if err != nil {
				log.Ctx(req.Context()).Errorf("Error trying to monitor request time: %s", err)
			}
		})
	}
}

// PlatformAuthMiddleware validates the Authorization header against the
// platform JWT audience. It is a no-op when no JWT service is configured,
// which is how local development runs.
func PlatformAuthMiddleware(jwtService *sepauth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if jwtService == nil {
			return next
		}
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			authHeaderParts := strings.Split(req.Header.Get("Authorization"), " ")
			if len(authHeaderParts) != 2 || !strings.EqualFold(authHeaderParts[0], "Bearer") {
				unauthorized(rw)
				return
			}

			ctx := req.Context()
			claims, err := jwtService.ParsePlatformToken(authHeaderParts[1])
			if err != nil {
				log.Ctx(ctx).Warnf("invalid platform token: %v", err)
				unauthorized(rw)
				return
			}

			ctx = context.WithValue(ctx, TokenSubjectContextKey, claims.Subject)
			ctx = log.Set(ctx, log.Ctx(ctx).WithField("subject", claims.Subject))
			next.ServeHTTP(rw, req.WithContext(ctx))
		})
	}
}

func unauthorized(rw http.ResponseWriter) {
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(http.StatusUnauthorized)
	_, _ = rw.Write([]byte(`{"error": "Not authorized."}`))
}

// CorsMiddleware handles Cross-Origin Resource Sharing (CORS) requests that are required by the frontend.
func CorsMiddleware(corsAllowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		cors := cors.New(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedHeaders: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		})
		return cors.Handler(next)
	}
}

// RateLimitMiddleware throttles action invocations per client IP.
func RateLimitMiddleware(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(requestsPerMinute, 1*time.Minute)
}

func getRoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return "undefined"
}
