package tool

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GeneratePixReference builds a payment reference id of the form
// PIX<unix millis><first 8 alphanumerics of seed, upper-cased>.
func GeneratePixReference(now time.Time, seed string) string {
	var b strings.Builder
	for _, r := range seed {
		if b.Len() == 8 {
			break
		}
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return fmt.Sprintf("PIX%d%s", now.UnixMilli(), strings.ToUpper(b.String()))
}
