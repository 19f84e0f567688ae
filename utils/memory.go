package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// MemorySize represents a size in bytes
type MemorySize int64

const (
	Byte MemorySize = 1
	KB   MemorySize = 1024 * Byte
	MB   MemorySize = 1024 * KB
	GB   MemorySize = 1024 * MB
	TB   MemorySize = 1024 * GB
)

// String returns a human-readable representation of the size
func (m MemorySize) String() string {
	if m <= 0 {
		return "0B"
	}

	formatValue := func(val float64, unit string) string {
		if val == float64(int64(val)) {
			return fmt.Sprintf("%.0f%s", val, unit)
		}
		return fmt.Sprintf("%.1f%s", val, unit)
	}

	switch {
	case m >= TB:
		return formatValue(float64(m)/float64(TB), "T")
	case m >= GB:
		return formatValue(float64(m)/float64(GB), "G")
	case m >= MB:
		return formatValue(float64(m)/float64(MB), "M")
	case m >= KB:
		return formatValue(float64(m)/float64(KB), "K")
	default:
		return fmt.Sprintf("%dB", m)
	}
}

// Bytes returns the size as bytes
func (m MemorySize) Bytes() int64 {
	return int64(m)
}

// KB returns the size as kilobytes
func (m MemorySize) KB() float64 {
	return float64(m) / float64(KB)
}

// ParseMemorySize parses a size string like "512K", "10M", "1G" or a plain byte count
func ParseMemorySize(s string) (MemorySize, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, fmt.Errorf("empty memory size string")
	}

	// Accept both "10M" and "10MB"
	upper := strings.ToUpper(s)
	if len(upper) > 2 && strings.HasSuffix(upper, "B") && strings.ContainsAny(upper[len(upper)-2:len(upper)-1], "KMGT") {
		upper = upper[:len(upper)-1]
	}

	lastChar := upper[len(upper)-1:]
	var multiplier MemorySize
	var valueStr string

	switch lastChar {
	case "T":
		multiplier = TB
		valueStr = upper[:len(upper)-1]
	case "G":
		multiplier = GB
		valueStr = upper[:len(upper)-1]
	case "M":
		multiplier = MB
		valueStr = upper[:len(upper)-1]
	case "K":
		multiplier = KB
		valueStr = upper[:len(upper)-1]
	case "B":
		multiplier = Byte
		valueStr = upper[:len(upper)-1]
	default:
		// No unit, assume bytes
		multiplier = Byte
		valueStr = upper
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid memory size: %s", s)
	}

	return MemorySize(value * float64(multiplier)), nil
}

// Set implements pflag.Value so sizes can be passed as flags
func (m *MemorySize) Set(s string) error {
	size, err := ParseMemorySize(s)
	if err != nil {
		return err
	}
	*m = size
	return nil
}

// Type implements pflag.Value
func (m *MemorySize) Type() string {
	return "size"
}

// UnmarshalYAML accepts both "10M" style strings and plain integers
func (m *MemorySize) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return m.Set(raw)
}

// MarshalJSON implements json.Marshaler
func (m MemorySize) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%s"`, m.String())), nil
}
