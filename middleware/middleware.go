// Package middleware validates JSON request bodies with a compiled
// sureschema validator before they reach a net/http handler.
package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/internal/load"
)

// ctxKeyDecoded is the context key of the decoded body.
type ctxKeyDecoded struct{}

// ContextWithDecoded attaches a decoded JSON body to the context.
func ContextWithDecoded(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded{}, v)
}

// DecodedFromContext retrieves the body stored by ValidateJSON.
func DecodedFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(ctxKeyDecoded{})
	return v, v != nil
}

// Options configures ValidateJSON.
type Options struct {
	// MaxBodyBytes caps the request body. Zero means DefaultOptions' limit.
	MaxBodyBytes int64
	// Logger receives rejected requests at debug level. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns a recommended default for HTTP JSON boundaries:
// bodies up to 1 MiB and no logging.
func DefaultOptions() Options {
	return Options{MaxBodyBytes: 1 << 20}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues sureschema.Issues) map[string]any {
	return map[string]any{"issues": issues}
}

// ValidateJSON rejects requests whose body is not valid JSON (400) or does
// not satisfy v (422). Accepted requests reach next with the body restored
// and the decoded value available through DecodedFromContext.
func ValidateJSON(v sureschema.Validator, opt Options) func(http.Handler) http.Handler {
	limit := opt.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultOptions().MaxBodyBytes
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeError(w, http.StatusRequestEntityTooLarge, err.Error())
					return
				}
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			decoded, err := load.JSON(body)
			if err != nil {
				log.Debug("rejecting malformed body", zap.String("path", r.URL.Path), zap.Error(err))
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if err := v.Validate(r.Context(), decoded); err != nil {
				iss, ok := sureschema.AsIssues(err)
				if !ok {
					writeError(w, http.StatusInternalServerError, err.Error())
					return
				}
				log.Debug("rejecting invalid body", zap.String("path", r.URL.Path), zap.Int("issues", len(iss)))
				writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(iss))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), decoded)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
