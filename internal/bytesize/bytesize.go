// Package bytesize parses human-readable byte sizes used in the node
// configuration, such as the wallet database cache ("256Mi", "1G").
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes. Config files may spell it as a plain
// number, a decimal unit (K, M, G, T, optionally with a B suffix), or a
// binary unit (Ki, Mi, Gi, Ti, optionally with a B suffix).
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// ParseByteSize parses a byte size string such as "1Gi", "500MB", or
// "1024".
func ParseByteSize(s string) (ByteSize, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := len(trimmed)
	for split > 0 {
		c := trimmed[split-1]
		if c >= '0' && c <= '9' || c == '.' {
			break
		}
		split--
	}
	numStr := strings.TrimSpace(trimmed[:split])
	unitStr := strings.TrimSpace(trimmed[split:])

	multiplier, err := unitMultiplier(unitStr)
	if err != nil {
		return 0, err
	}

	if strings.Contains(numStr, ".") {
		num, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid byte size %q", s)
		}
		return ByteSize(num * float64(multiplier)), nil
	}

	num, err := strconv.ParseUint(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}
	return ByteSize(num) * multiplier, nil
}

func unitMultiplier(unit string) (ByteSize, error) {
	switch strings.ToLower(strings.TrimSuffix(strings.ToLower(unit), "b")) {
	case "":
		return B, nil
	case "k":
		return KB, nil
	case "m":
		return MB, nil
	case "g":
		return GB, nil
	case "t":
		return TB, nil
	case "ki":
		return KiB, nil
	case "mi":
		return MiB, nil
	case "gi":
		return GiB, nil
	case "ti":
		return TiB, nil
	default:
		return 0, fmt.Errorf("unknown byte size unit %q", unit)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so ByteSize fields
// decode directly from config values.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// String renders the size with the largest binary unit that fits.
func (b ByteSize) String() string {
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2fTiB", float64(b)/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2fGiB", float64(b)/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2fMiB", float64(b)/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2fKiB", float64(b)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", uint64(b))
	}
}

// Uint64 returns the size as a uint64.
func (b ByteSize) Uint64() uint64 { return uint64(b) }

// Int64 returns the size as an int64. Sizes past the int64 range wrap.
func (b ByteSize) Int64() int64 { return int64(b) }
