package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OfflineOrderPrefix marks order numbers generated on the device, so staff
// never confuse an unsynced order with a server-confirmed one.
const OfflineOrderPrefix = "OFF-"

// GenerateOfflineID produces a local primary key: millisecond timestamp plus
// a random suffix. Unique within a device's lifetime with overwhelming
// probability; it only has to survive until the server assigns a real id.
func GenerateOfflineID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("off_%d_%s", time.Now().UnixMilli(), suffix)
}

// GenerateOfflineOrderNumber produces the short human-facing code shown to
// staff, e.g. OFF-123456.
func GenerateOfflineOrderNumber() string {
	return fmt.Sprintf("%s%06d", OfflineOrderPrefix, time.Now().UnixMilli()%1000000)
}
