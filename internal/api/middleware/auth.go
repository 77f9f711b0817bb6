// auth.go — проверка статического Bearer-токена администратора.
// Admin API вызывается хост-системой и оператором, поэтому вместо
// JWT достаточно одного секрета из MS_ADMIN_TOKEN.
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/bigkaa/goartstore/mcp-sync/internal/api/errors"
)

// BearerAuth возвращает middleware, пропускающий только запросы
// с заголовком "Authorization: Bearer <token>".
func BearerAuth(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearerToken(r)
			if !ok {
				apierrors.Unauthorized(w, "Отсутствует заголовок Authorization: Bearer")
				return
			}
			if len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				logger.Warn("Отклонён запрос с неверным токеном",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Неверный токен")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken извлекает токен из заголовка Authorization.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
