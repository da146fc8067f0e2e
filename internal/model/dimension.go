package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDimension is returned when a dimension tag is not one of the five known dimensions.
var ErrUnknownDimension = errors.New("unknown dimension")

// Dimension identifies one of the five immunity risk metrics.
type Dimension int

const (
	TRD Dimension = iota // Time to Revenue Degradation
	AER                  // Attack Economics Ratio
	HFP                  // Human Failure Probability
	BRI                  // Blast Radius Index
	RRG                  // Recovery Reality Gap
)

// DimensionCount is the fixed number of dimensions in an assessment.
const DimensionCount = 5

var dimensionTags = [DimensionCount]string{"TRD", "AER", "HFP", "BRI", "RRG"}

var dimensionNames = [DimensionCount]string{
	"Time to Revenue Degradation",
	"Attack Economics Ratio",
	"Human Failure Probability",
	"Blast Radius Index",
	"Recovery Reality Gap",
}

var dimensionUnits = [DimensionCount]string{"hours", "usd", "percent", "percent", "multiplier"}

// AllDimensions returns the dimensions in canonical order.
func AllDimensions() [DimensionCount]Dimension {
	return [DimensionCount]Dimension{TRD, AER, HFP, BRI, RRG}
}

// Valid reports whether d is one of the five dimensions.
func (d Dimension) Valid() bool {
	return d >= TRD && d <= RRG
}

func (d Dimension) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
	return dimensionTags[d]
}

// Name returns the long human readable dimension name.
func (d Dimension) Name() string {
	if !d.Valid() {
		return d.String()
	}
	return dimensionNames[d]
}

// Unit returns the unit of the raw metric captured for the dimension.
func (d Dimension) Unit() string {
	if !d.Valid() {
		return ""
	}
	return dimensionUnits[d]
}

// HigherIsBetter reports whether a larger raw metric means a healthier organization.
// Only TRD behaves that way: more hours before revenue degrades is good, while more
// attacker value, more human failures, wider blast radius or a larger recovery gap are bad.
func (d Dimension) HigherIsBetter() bool {
	return d == TRD
}

// RiskOriented reports whether a higher normalized score means more risk.
// HFP, BRI and RRG are scored that way and sit in the composite denominator;
// TRD and AER scores grow with resilience and form the numerator.
func (d Dimension) RiskOriented() bool {
	return d == HFP || d == BRI || d == RRG
}

// Health maps a normalized score onto a common scale where 10 is always the
// healthiest value, so scores of different dimensions can be compared.
func (d Dimension) Health(score float64) float64 {
	if d.RiskOriented() {
		return 11 - score
	}
	return score
}

// ParseDimension parses a dimension tag such as "trd" or "RRG".
func ParseDimension(s string) (Dimension, error) {
	tag := strings.ToUpper(strings.TrimSpace(s))
	for i, t := range dimensionTags {
		if t == tag {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// MarshalText encodes the dimension as its tag.
func (d Dimension) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDimension, int(d))
	}
	return []byte(dimensionTags[d]), nil
}

// UnmarshalText decodes a dimension tag.
func (d *Dimension) UnmarshalText(text []byte) error {
	parsed, err := ParseDimension(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
