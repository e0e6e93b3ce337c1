// Package normalize holds the pure conversions between the chain node's
// hex-encoded wire values and the canonical record types.
package normalize

import (
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
)

// HexToUint64 parses a 0x-prefixed or bare hex string. Empty input yields 0
// so downstream arithmetic stays total; malformed input also yields 0.
func HexToUint64(value string) uint64 {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if trimmed == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// ParseBigInt parses a non-negative big integer from hex (0x-prefixed) or
// decimal input. Malformed or negative input yields zero.
func ParseBigInt(value string) *big.Int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return new(big.Int)
	}
	parsed := new(big.Int)
	var ok bool
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		_, ok = parsed.SetString(trimmed[2:], 16)
	} else {
		_, ok = parsed.SetString(trimmed, 10)
	}
	if !ok || parsed.Sign() < 0 {
		return new(big.Int)
	}
	return parsed
}

// BlockTimestamp decodes the hex seconds-since-epoch timestamp carried by the
// block's header substructure into a UTC instant. A value that cannot be
// decoded yields the zero time, which records the timestamp as unknown
// instead of fabricating one.
func BlockTimestamp(headerTimestamp string) time.Time {
	trimmed := strings.TrimPrefix(strings.TrimSpace(headerTimestamp), "0x")
	if trimmed == "" {
		return time.Time{}
	}
	seconds, err := strconv.ParseInt(trimmed, 16, 64)
	if err != nil || seconds < 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0).UTC()
}

// ClassifyDirection derives a transaction direction relative to the reference
// wallet. Sender and recipient compare case-insensitively.
func ClassifyDirection(from, to, reference string) domain.Direction {
	fromLower := strings.ToLower(strings.TrimSpace(from))
	toLower := strings.ToLower(strings.TrimSpace(to))
	refLower := strings.ToLower(strings.TrimSpace(reference))

	switch {
	case fromLower != "" && fromLower == toLower:
		return domain.DirectionSelfTransfer
	case refLower != "" && toLower == refLower:
		return domain.DirectionIncoming
	case refLower != "" && fromLower == refLower:
		return domain.DirectionOutgoing
	default:
		return domain.DirectionExternal
	}
}
