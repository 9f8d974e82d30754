package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/reqsign"
)

const maxBodyBytes = 1 << 20 // 1MB cap

type ctxKey int

const identityKey ctxKey = iota

// IdentityFrom returns the identity that signed the request.
func IdentityFrom(ctx context.Context) (escrow.Identity, bool) {
	id, ok := ctx.Value(identityKey).(escrow.Identity)
	return id, ok
}

// RequireSignature rejects requests whose signature headers do not verify and
// stores the signer in the request context. The body is buffered so handlers
// can still read it.
func RequireSignature(v reqsign.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				writeError(w, http.StatusRequestEntityTooLarge, "body too large")
				return
			}

			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			h := reqsign.Headers{
				Identity:  r.Header.Get(reqsign.HeaderIdentity),
				Timestamp: r.Header.Get(reqsign.HeaderTimestamp),
				Signature: r.Header.Get(reqsign.HeaderSignature),
			}

			id, err := v.Verify(h, r.Method, r.URL.Path, body)
			if err != nil {
				slog.DebugContext(r.Context(), "signature rejected", "path", r.URL.Path, "error", err)

				switch {
				case errors.Is(err, reqsign.ErrMissingHeaders):
					writeError(w, http.StatusUnauthorized, "missing signature")
				case errors.Is(err, reqsign.ErrClockSkew):
					writeError(w, http.StatusUnauthorized, "stale request")
				default:
					writeError(w, http.StatusUnauthorized, "invalid signature")
				}

				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
		})
	}
}
