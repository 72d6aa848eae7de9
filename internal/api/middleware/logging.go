// logging.go — slog-логирование входящих HTTP-запросов.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// logResponseWriter перехватывает статус-код и объём тела ответа.
type logResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *logResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *logResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (w *logResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// slowRequestThreshold — длительность, после которой успешный запрос
// логируется как WARN. Обычные запросы портала — единицы миллисекунд;
// секунда означает исчерпание пула БД или деградацию IdP.
const slowRequestThreshold = time.Second

// RequestLogger возвращает middleware, пишущий одну строку на запрос.
// Уровень: INFO до 400, WARN 4xx и медленные запросы, ERROR 5xx.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := &logResponseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(lw, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			switch {
			case lw.status >= 500:
				level = slog.LevelError
			case lw.status >= 400 || duration >= slowRequestThreshold:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "HTTP запрос",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", lw.status),
				slog.Duration("duration", duration),
				slog.Int64("bytes", lw.bytes),
				slog.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
