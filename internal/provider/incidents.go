package provider

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/ports"
)

const (
	defaultIncidentLimit = 10
	exactThreshold       = 10.0
	similarThreshold     = 5.0
	commonVectors        = 3
)

var matchWeights = map[string]float64{
	"high":   10,
	"medium": 7,
	"low":    5,
}

type ranked struct {
	incident ports.Incident
	score    float64
}

// Match ranks incidents against q. Archetype match dominates, then size,
// region and proximity of the victim's estimated score. Incidents scoring at
// least 10 are exact matches, 5 to 10 similar; the rest are dropped.
func Match(incidents []ports.Incident, q ports.IncidentQuery) ports.IncidentMatches {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultIncidentLimit
	}

	var scored []ranked
	for _, inc := range incidents {
		var s float64
		if inc.Archetype == q.Archetype {
			w, ok := matchWeights[inc.Match]
			if !ok {
				w = matchWeights["low"]
			}
			s += w
		}
		if q.Size != "" && inc.Size == q.Size {
			s += 5
		}
		if q.Region != "" && inc.Region == q.Region {
			s += 3
		}
		if q.Score > 0 && inc.Score > 0 {
			s += math.Max(0, 5-math.Abs(q.Score-inc.Score))
		}
		if s > 0 {
			scored = append(scored, ranked{inc, s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	out := ports.IncidentMatches{Exact: []ports.Incident{}, Similar: []ports.Incident{}}
	for _, r := range scored {
		switch {
		case r.score >= exactThreshold && len(out.Exact) < limit:
			out.Exact = append(out.Exact, r.incident)
		case r.score >= similarThreshold && r.score < exactThreshold && len(out.Similar) < limit:
			out.Similar = append(out.Similar, r.incident)
		}
	}

	relevant := append(append([]ports.Incident{}, out.Exact...), out.Similar...)
	out.Insights = Insights(relevant, q.Score)
	return out
}

// Insights aggregates loss, downtime and attack vectors over incidents.
func Insights(incidents []ports.Incident, score float64) ports.IncidentInsights {
	if len(incidents) == 0 {
		return ports.IncidentInsights{
			CommonVectors:  []string{},
			PeerComparison: "No comparable breaches found",
		}
	}

	var loss, downtime float64
	counts := make(map[string]int)
	var order []string
	var victimTotal float64
	var victims int
	for _, inc := range incidents {
		loss += inc.LossUSD
		downtime += inc.DowntimeHours
		if counts[inc.Vector] == 0 {
			order = append(order, inc.Vector)
		}
		counts[inc.Vector]++
		if inc.Score > 0 {
			victimTotal += inc.Score
			victims++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > commonVectors {
		order = order[:commonVectors]
	}

	comparison := fmt.Sprintf("Based on %d similar breaches", len(incidents))
	if score > 0 && victims > 0 {
		avg := victimTotal / float64(victims)
		if score > avg {
			comparison += fmt.Sprintf(", your DII score (%.1f) is %.1f points higher than breach victims", score, score-avg)
		} else {
			comparison += fmt.Sprintf(", your DII score (%.1f) is similar to breach victims (%.1f)", score, avg)
		}
	}

	n := float64(len(incidents))
	return ports.IncidentInsights{
		AverageLossUSD:       math.Round(loss / n),
		AverageDowntimeHours: math.Round(downtime / n),
		CommonVectors:        order,
		PeerComparison:       comparison,
	}
}

// StaticIncidents serves a fixed incident list.
type StaticIncidents struct {
	incidents []ports.Incident
}

// NewStaticIncidents creates a catalog over incidents. A nil list uses the
// built-in sample.
func NewStaticIncidents(incidents []ports.Incident) *StaticIncidents {
	if incidents == nil {
		incidents = sampleIncidents()
	}
	return &StaticIncidents{incidents: incidents}
}

// Comparable implements ports.IncidentCatalog.
func (s *StaticIncidents) Comparable(_ context.Context, q ports.IncidentQuery) (ports.IncidentMatches, error) {
	if !q.Archetype.Valid() {
		return ports.IncidentMatches{}, &model.ConfigError{Component: "incidents", Err: model.ErrUnknownArchetype}
	}
	return Match(s.incidents, q), nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Anonymized cases spanning the archetypes.
func sampleIncidents() []ports.Incident {
	return []ports.Incident{
		{ID: "INC-2024-001", Discovered: day(2024, 2, 21), Archetype: model.DataServices, Match: "high", Sector: "healthcare payments", Size: "large", Region: "north_america", Score: 2.4, Vector: "RANSOMWARE", Method: "stolen remote access credentials", LossUSD: 22_000_000, DowntimeHours: 480, RecoveryHours: 1_400},
		{ID: "INC-2024-002", Discovered: day(2024, 6, 3), Archetype: model.CriticalSoftware, Match: "high", Sector: "automotive SaaS", Size: "large", Region: "north_america", Score: 2.9, Vector: "RANSOMWARE", Method: "double extortion", LossUSD: 25_000_000, DowntimeHours: 336, RecoveryHours: 400},
		{ID: "INC-2023-003", Discovered: day(2023, 9, 11), Archetype: model.HybridCommerce, Match: "medium", Sector: "hospitality", Size: "large", Region: "north_america", Score: 3.1, Vector: "SOCIAL_ENGINEERING", Method: "help desk impersonation", LossUSD: 100_000_000, DowntimeHours: 240, RecoveryHours: 360},
		{ID: "INC-2023-004", Discovered: day(2023, 5, 31), Archetype: model.SupplyChain, Match: "high", Sector: "file transfer", Size: "enterprise", Region: "global", Score: 3.8, Vector: "ZERO_DAY", Method: "managed file transfer exploit", LossUSD: 9_900_000, DowntimeHours: 72, RecoveryHours: 120},
		{ID: "INC-2024-005", Discovered: day(2024, 1, 19), Archetype: model.FinancialServices, Match: "high", Sector: "mortgage lending", Size: "large", Region: "north_america", Score: 3.5, Vector: "RANSOMWARE", Method: "ransomware on servicing platform", LossUSD: 27_000_000, DowntimeHours: 168, RecoveryHours: 300},
		{ID: "INC-2023-006", Discovered: day(2023, 11, 8), Archetype: model.FinancialServices, Match: "medium", Sector: "banking services", Size: "enterprise", Region: "global", Score: 4.6, Vector: "ZERO_DAY", Method: "appliance vulnerability", LossUSD: 12_000_000, DowntimeHours: 48, RecoveryHours: 96},
		{ID: "INC-2022-007", Discovered: day(2022, 10, 1), Archetype: model.RegulatedInformation, Match: "high", Sector: "health insurance", Size: "large", Region: "apac", Score: 3.0, Vector: "CREDENTIAL_STUFFING", Method: "compromised privileged account", LossUSD: 35_000_000, DowntimeHours: 96, RecoveryHours: 720},
		{ID: "INC-2023-008", Discovered: day(2023, 4, 12), Archetype: model.LegacyInfrastructure, Match: "high", Sector: "water utility", Size: "medium", Region: "europe", Score: 2.2, Vector: "RANSOMWARE", Method: "unpatched legacy VPN", LossUSD: 4_500_000, DowntimeHours: 120, RecoveryHours: 500},
		{ID: "INC-2024-009", Discovered: day(2024, 4, 2), Archetype: model.DigitalEcosystem, Match: "medium", Sector: "marketplace", Size: "medium", Region: "europe", Score: 5.1, Vector: "API_ABUSE", Method: "scraping through partner API", LossUSD: 1_800_000, DowntimeHours: 6, RecoveryHours: 24},
		{ID: "INC-2023-010", Discovered: day(2023, 7, 17), Archetype: model.HybridCommerce, Match: "high", Sector: "retail", Size: "medium", Region: "europe", Score: 2.7, Vector: "PHISHING", Method: "point of sale malware via phishing", LossUSD: 6_200_000, DowntimeHours: 72, RecoveryHours: 160},
		{ID: "INC-2024-011", Discovered: day(2024, 8, 29), Archetype: model.CriticalSoftware, Match: "medium", Sector: "security software", Size: "enterprise", Region: "global", Score: 6.2, Vector: "SUPPLY_CHAIN", Method: "faulty update distribution", LossUSD: 5_400_000, DowntimeHours: 24, RecoveryHours: 72},
		{ID: "INC-2022-012", Discovered: day(2022, 12, 5), Archetype: model.DataServices, Match: "low", Sector: "password management", Size: "medium", Region: "north_america", Score: 4.0, Vector: "CLOUD_MISCONFIGURATION", Method: "developer workstation compromise", LossUSD: 3_000_000, DowntimeHours: 12, RecoveryHours: 200},
	}
}
