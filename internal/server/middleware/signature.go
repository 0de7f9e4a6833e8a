package middleware

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/credgate/internal/server/handlers"
	"github.com/iudanet/credgate/internal/signature"
	"github.com/iudanet/credgate/pkg/api"
)

const (
	msgNotSigned        = "Invalid request, needs to be signed"
	msgInvalidSignature = "Invalid signature"
)

// SignatureVerifier проверяет подпись gateway над method+path
type SignatureVerifier interface {
	Verify(method, path, sig string) signature.Result
}

// GatewaySignature создает middleware, пропускающий к обработчикам только запросы,
// подписанные gateway. Нет заголовка -> 401, подпись не прошла проверку -> 403
func GatewaySignature(logger *slog.Logger, verifier SignatureVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// В лог попадает payload без email из пути
			payload := signature.Payload(r.Method, sanitizePath(r.URL.Path))

			values, ok := r.Header[http.CanonicalHeaderKey(api.HeaderGatewaySignature)]
			if !ok || len(values) == 0 {
				logger.WarnContext(r.Context(), "unsigned request rejected",
					slog.String("payload", payload))
				handlers.WriteError(w, logger, msgNotSigned, http.StatusUnauthorized)
				return
			}

			// Значение подписи в лог не пишем
			res := verifier.Verify(r.Method, r.URL.Path, values[0])
			if !res.Verified {
				attrs := []any{
					slog.String("payload", payload),
					slog.String("reason", res.Reason.String()),
				}
				if res.Err != nil {
					attrs = append(attrs, slog.Any("error", res.Err))
				}
				logger.WarnContext(r.Context(), "gateway signature rejected", attrs...)
				handlers.WriteError(w, logger, msgInvalidSignature, http.StatusForbidden)
				return
			}

			logger.DebugContext(r.Context(), "gateway signature verified",
				slog.String("payload", payload))
			next.ServeHTTP(w, r)
		})
	}
}
