package httpx

import (
	"net/http"

	"go.uber.org/zap"
)

func RecoveryMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error("panic recovered",
						zap.Any("panic", err),
						zap.String("request_id", RequestIDFrom(r)),
						zap.Stack("stack"),
					)
					if !rec.headerWritten {
						JSONInternalError(rec)
					}
				}
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
