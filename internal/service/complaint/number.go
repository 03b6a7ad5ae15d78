package complaint

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewComplaintNumber returns COMP-<base36 unix millis>-<5 random base36>.
func NewComplaintNumber(now time.Time) string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return strings.ToUpper("COMP-" + strconv.FormatInt(now.UnixMilli(), 36) + "-" + string(suffix))
}
