package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownArchetype is returned when an archetype id is outside 1..8.
var ErrUnknownArchetype = errors.New("unknown business model archetype")

// ArchetypeID identifies one of the eight business-model archetypes.
type ArchetypeID int

const (
	HybridCommerce ArchetypeID = iota + 1
	CriticalSoftware
	DataServices
	DigitalEcosystem
	FinancialServices
	LegacyInfrastructure
	SupplyChain
	RegulatedInformation
)

// ArchetypeCount is the number of archetypes in the catalog.
const ArchetypeCount = 8

var archetypeSlugs = [ArchetypeCount]string{
	"hybrid_commerce",
	"critical_software",
	"data_services",
	"digital_ecosystem",
	"financial_services",
	"legacy_infrastructure",
	"supply_chain",
	"regulated_information",
}

// Valid reports whether id is within 1..8.
func (id ArchetypeID) Valid() bool {
	return id >= HybridCommerce && id <= RegulatedInformation
}

// Slug returns a stable snake_case identifier, e.g. "critical_software".
func (id ArchetypeID) Slug() string {
	if !id.Valid() {
		return ""
	}
	return archetypeSlugs[id-1]
}

func (id ArchetypeID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("ArchetypeID(%d)", int(id))
	}
	return archetypeSlugs[id-1]
}

// ParseArchetypeID accepts either the numeric id ("5") or the slug ("financial_services").
func ParseArchetypeID(s string) (ArchetypeID, error) {
	if n, err := strconv.Atoi(s); err == nil {
		id := ArchetypeID(n)
		if !id.Valid() {
			return 0, fmt.Errorf("%w: %d", ErrUnknownArchetype, n)
		}
		return id, nil
	}
	for i, slug := range archetypeSlugs {
		if slug == s {
			return ArchetypeID(i + 1), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownArchetype, s)
}

// ConfigError marks an invalid configuration such as an unknown archetype or
// dimension requested from a converter or calculator. It is not a user-input error.
type ConfigError struct {
	Component string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: invalid configuration: %v", e.Component, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
