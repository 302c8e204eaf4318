package command

import (
	"math"
	"strconv"
	"time"

	"github.com/yndnr/redmod-go/internal/core/domain"
)

func parseInt(arg []byte) (int64, error) {
	n, err := strconv.ParseInt(string(arg), 10, 64)
	if err != nil {
		return 0, domain.ErrNotInteger
	}
	return n, nil
}

// parseTTL parses a relative TTL expressed in unit.
func parseTTL(cmd string, arg []byte, unit time.Duration) (time.Duration, error) {
	n, err := parseInt(arg)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt64/int64(unit) || n < math.MinInt64/int64(unit) {
		return 0, domain.InvalidExpireError(cmd)
	}
	return time.Duration(n) * unit, nil
}

// parseInstant parses an absolute Unix time expressed in unit.
func parseInstant(cmd string, arg []byte, unit time.Duration) (time.Time, error) {
	n, err := parseInt(arg)
	if err != nil {
		return time.Time{}, err
	}
	if unit == time.Second {
		if n > math.MaxInt64/1000 || n < math.MinInt64/1000 {
			return time.Time{}, domain.InvalidExpireError(cmd)
		}
		return time.Unix(n, 0), nil
	}
	return time.UnixMilli(n), nil
}

func keysOf(args [][]byte) []string {
	keys := make([]string, len(args))
	for i, a := range args {
		keys[i] = string(a)
	}
	return keys
}
