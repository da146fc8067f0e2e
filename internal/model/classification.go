package model

// CompanyProfile is the free-form input to business-model classification.
// Only Name is required; every other field is optional.
type CompanyProfile struct {
	Name        string `json:"name" yaml:"name"`
	Industry    string `json:"industry,omitempty" yaml:"industry,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Domain      string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Country     string `json:"country,omitempty" yaml:"country,omitempty"`

	Employees int     `json:"employees,omitempty" yaml:"employees,omitempty"`
	Revenue   float64 `json:"revenue,omitempty" yaml:"revenue,omitempty"` // Annual, USD

	HasPhysicalStores      bool `json:"has_physical_stores,omitempty" yaml:"has_physical_stores,omitempty"`
	IsB2B                  bool `json:"is_b2b,omitempty" yaml:"is_b2b,omitempty"`
	IsRegulated            bool `json:"is_regulated,omitempty" yaml:"is_regulated,omitempty"`
	CriticalInfrastructure bool `json:"critical_infrastructure,omitempty" yaml:"critical_infrastructure,omitempty"`

	// Signals lists explicitly asserted classification signal ids, e.g. "cloud_native".
	Signals []string `json:"signals,omitempty" yaml:"signals,omitempty"`
}

// Alternative is a runner-up archetype.
type Alternative struct {
	Archetype  ArchetypeID `json:"archetype"`
	Name       string      `json:"name"`
	Confidence float64     `json:"confidence"`
}

// RiskProfile summarizes the archetype's exposure.
type RiskProfile struct {
	DigitalDependency     float64  `json:"digital_dependency"`      // percent, range midpoint
	InterruptionTolerance float64  `json:"interruption_tolerance"`  // hours, range midpoint
	HourlyImpactUSD       float64  `json:"hourly_impact_usd"`
	PrimaryRisks          []string `json:"primary_risks"`
}

// Classification is the outcome of classifying a company.
type Classification struct {
	Archetype    ArchetypeID   `json:"archetype"`
	Name         string        `json:"name"`
	Confidence   float64       `json:"confidence"` // 0-1
	Reasoning    string        `json:"reasoning"`
	Alternatives []Alternative `json:"alternatives"`
	Matched      []string      `json:"matched_signals"`
	Missing      []string      `json:"missing_signals"`
	Prohibited   []string      `json:"prohibited_signals"`
	Shortcut     bool          `json:"shortcut,omitempty"`
	Risk         RiskProfile   `json:"risk_profile"`
}

// ClassificationCheck reports sanity issues for a proposed archetype.
type ClassificationCheck struct {
	Valid       bool     `json:"valid"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}
