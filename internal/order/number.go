package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// numberPrefix brands order numbers; the full shape is WM-YYYYMMDD-XXXXXX.
const numberPrefix = "WM"

// GenerateNumber produces a human-readable order number from the current date
// and a random suffix. Uniqueness is enforced by the storage layer; callers
// retry on conflict rather than trusting the suffix entropy.
func GenerateNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return numberPrefix + "-" + now.UTC().Format("20060102") + "-" + suffix
}
