package util

import (
	"strconv"
)

// MustParseUint parses s as an unsigned id, returning 0 when it is not one.
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}
