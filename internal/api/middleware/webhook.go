package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
)

// HeaderWebhookSecret общий секрет платёжного провайдера
const HeaderWebhookSecret = "X-Webhook-Secret"

const msgInvalidWebhookSecret = "некорректная подпись вебхука"

// WebhookSecret пропускает только запросы с совпадающим секретом.
// Пустой секрет в конфигурации закрывает вебхук полностью
func WebhookSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(HeaderWebhookSecret)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				handlers.RespondUnauthorized(w, msgInvalidWebhookSecret)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
