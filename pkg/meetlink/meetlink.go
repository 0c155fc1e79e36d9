package meetlink

import (
	"strings"

	"github.com/google/uuid"
)

const baseURL = "https://meet.google.com/"

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Generate возвращает ссылку вида https://meet.google.com/abc-defg-hij
func Generate() string {
	return FromID(uuid.New())
}

// FromID строит код встречи из байтов id
func FromID(id uuid.UUID) string {
	var sb strings.Builder
	sb.WriteString(baseURL)

	groups := []int{3, 4, 3}
	pos := 0
	for g, n := range groups {
		if g > 0 {
			sb.WriteByte('-')
		}
		for i := 0; i < n; i++ {
			sb.WriteByte(alphabet[int(id[pos])%len(alphabet)])
			pos++
		}
	}
	return sb.String()
}
