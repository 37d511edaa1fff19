package service

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const orderIDSuffixLen = 9

// 36^9, the number of distinct suffixes.
const orderIDSuffixSpace = 101559956668416

// newOrderID returns ORD-<epoch ms>-<9 uppercase base36 chars>. The suffix
// comes from a random UUID; the orders table's unique index rejects the
// rare collision.
func newOrderID(now time.Time) string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[8:]) % orderIDSuffixSpace
	suffix := strings.ToUpper(strconv.FormatUint(n, 36))
	if len(suffix) < orderIDSuffixLen {
		suffix = strings.Repeat("0", orderIDSuffixLen-len(suffix)) + suffix
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
