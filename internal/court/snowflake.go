package court

import (
	"fmt"
	"strconv"
	"strings"
)

// Snowflake is a platform-native 64-bit identifier. It is compared as an
// opaque value; no timestamp is ever extracted from it.
type Snowflake uint64

// ParseSnowflake parses a decimal snowflake string.
func ParseSnowflake(s string) (Snowflake, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty snowflake")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", s, err)
	}
	return Snowflake(v), nil
}

// String returns the decimal form used by the platform API.
func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// Mention renders a user mention.
func (s Snowflake) Mention() string {
	return "<@" + s.String() + ">"
}

// ChannelMention renders a channel mention.
func (s Snowflake) ChannelMention() string {
	return "<#" + s.String() + ">"
}

// Ptr returns a pointer to a copy of s.
func (s Snowflake) Ptr() *Snowflake {
	return &s
}
