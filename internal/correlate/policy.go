package correlate

import (
	"fmt"
	"strings"
)

// ModePolicy decides how an annotation's mode constrains its candidates.
type ModePolicy string

const (
	// ModeSoft narrows candidates by mode only when at least one agrees;
	// otherwise the mismatch is flagged and the candidates are kept.
	ModeSoft ModePolicy = "soft"
	// ModeStrict drops every candidate whose mode disagrees.
	ModeStrict ModePolicy = "strict"
	// ModeIgnore never consults the annotation's mode.
	ModeIgnore ModePolicy = "ignore"
)

// ParseModePolicy accepts "soft", "strict" or "ignore" (case-insensitive).
// An empty value selects ModeSoft.
func ParseModePolicy(value string) (ModePolicy, error) {
	switch ModePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeSoft:
		return ModeSoft, nil
	case ModeStrict:
		return ModeStrict, nil
	case ModeIgnore:
		return ModeIgnore, nil
	default:
		return "", fmt.Errorf("unknown mode policy %q (want soft, strict or ignore)", value)
	}
}

// Policy holds the explicit matching configuration.
type Policy struct {
	// ToleranceMinutes is the accepted distance between annotation and record
	// minutes. Zero requires the exact minute.
	ToleranceMinutes int
	Mode             ModePolicy
}

// DefaultPolicy returns exact-minute matching with soft mode handling.
func DefaultPolicy() Policy {
	return Policy{ToleranceMinutes: 0, Mode: ModeSoft}
}

// Validate rejects settings that cannot be applied.
func (p Policy) Validate() error {
	if p.ToleranceMinutes < 0 {
		return fmt.Errorf("tolerance must be >= 0 minutes, got %d", p.ToleranceMinutes)
	}
	if _, err := ParseModePolicy(string(p.Mode)); err != nil {
		return err
	}
	return nil
}

func (p Policy) normalized() Policy {
	if p.ToleranceMinutes < 0 {
		p.ToleranceMinutes = 0
	}
	mode, err := ParseModePolicy(string(p.Mode))
	if err != nil {
		mode = ModeSoft
	}
	p.Mode = mode
	return p
}
