package insight

import (
	"fmt"
	"math"

	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/orchestrate"
)

// Three headlines per position, indexed by depth.
var headlines = [model.DimensionCount]map[model.PeerPosition][3]string{
	model.TRD: {
		model.PositionAhead:   {"Lightning-Fast Revenue Protection", "Revenue Fortress: Well Defended", "Money Machine: Highly Resilient"},
		model.PositionAverage: {"Moderate Revenue Exposure", "Typical Downtime Tolerance", "Industry-Standard Protection"},
		model.PositionBehind:  {"Revenue at Critical Risk", "Money Hemorrhage Warning", "Downtime Disaster Zone"},
	},
	model.AER: {
		model.PositionAhead:   {"Low-Value Target Status", "Minimal Attack Interest", "Below Threat Radar"},
		model.PositionAverage: {"Moderate Target Value", "Balanced Risk Profile", "On Attacker Watchlists"},
		model.PositionBehind:  {"High-Value Target Alert", "Cybercrime Jackpot", "Prime Attack Target"},
	},
	model.HFP: {
		model.PositionAhead:   {"Human Firewall Active", "Security Champions", "Phishing Resistant Team"},
		model.PositionAverage: {"Typical Human Risk", "Standard Phishing Defense", "Average Security Awareness"},
		model.PositionBehind:  {"Phishing Paradise", "Human Backdoor Open", "Social Engineering Risk"},
	},
	model.BRI: {
		model.PositionAhead:   {"Fortress Architecture", "Damage Well Contained", "Excellent Segmentation"},
		model.PositionAverage: {"Standard Architecture", "Moderate Connectivity", "Typical Blast Zone"},
		model.PositionBehind:  {"Domino Effect Risk", "Dangerously Connected", "Breach Tsunami Zone"},
	},
	model.RRG: {
		model.PositionAhead:   {"Recovery Excellence", "Rapid Restoration Ready", "Practice Makes Perfect"},
		model.PositionAverage: {"Standard Recovery Gap", "Typical Plan vs Reality", "Average Restoration Speed"},
		model.PositionBehind:  {"Recovery Fantasy Land", "Paper Plans Only", "Time Bomb Ticking"},
	},
}

// Planned recovery time the RRG multiplier is applied to.
const plannedRecoveryHours = 8

var impactTemplates = [model.DimensionCount]func(v float64, a catalog.Archetype) string{
	model.TRD: func(hours float64, a catalog.Archetype) string {
		switch {
		case hours <= 2:
			return fmt.Sprintf("Critical operations would fail within %s hours - faster than most ransomware attacks.", num(hours))
		case hours <= 6:
			return fmt.Sprintf("You'd lose 10%% revenue in just %s hours. That's $%s per hour of downtime.", num(hours), a.HourlyLoss)
		case hours <= 24:
			return "A full day outage means significant customer defection risk. Most competitors recover faster."
		case hours <= 72:
			return "Three days to revenue impact gives breathing room, but reputation damage starts after day one."
		default:
			return "Your revenue streams are well-protected, but don't get complacent about emerging threats."
		}
	},
	model.AER: func(value float64, _ catalog.Archetype) string {
		amount := orchestrate.Money(value)
		switch {
		case value >= 1_000_000:
			return fmt.Sprintf("Attackers could extract %s from your systems - you're a prime target for sophisticated groups.", amount)
		case value >= 500_000:
			return fmt.Sprintf("%s potential loss makes you attractive to mid-tier cybercrime syndicates.", amount)
		case value >= 200_000:
			return fmt.Sprintf("At %s attack value, you're below the radar of major groups but still vulnerable to opportunists.", amount)
		case value >= 50_000:
			return fmt.Sprintf("%s extraction potential means limited attacker interest, but automation makes everyone a target.", amount)
		default:
			return fmt.Sprintf("Low attack value (%s) reduces threat actor motivation, but zero-day exploits don't discriminate.", amount)
		}
	},
	model.HFP: func(pct float64, _ catalog.Archetype) string {
		p := num(pct)
		switch {
		case pct >= 40:
			return fmt.Sprintf("%s%% phishing success rate means nearly half your team would fall for attacks. Major training needed.", p)
		case pct >= 25:
			return fmt.Sprintf("One in four employees (%s%%) failing security tests creates multiple breach vectors daily.", p)
		case pct >= 15:
			return fmt.Sprintf("%s%% failure rate is improving but still above industry standards. Focus on repeat offenders.", p)
		case pct >= 8:
			return fmt.Sprintf("Strong security culture with only %s%% vulnerability. Consider advanced threat simulations.", p)
		default:
			return fmt.Sprintf("Excellent human firewall at %s%% failure rate. Your team could mentor others.", p)
		}
	},
	model.BRI: func(pct float64, a catalog.Archetype) string {
		p := num(pct)
		systems := fmt.Sprintf("~%d critical systems", int(math.Round(pct/100*float64(a.Systems))))
		switch {
		case pct >= 70:
			return fmt.Sprintf("A breach would impact %s%% of systems (%s). Near-total business paralysis.", p, systems)
		case pct >= 50:
			return fmt.Sprintf("Half your infrastructure (%s%%) at risk means %s could go down simultaneously.", p, systems)
		case pct >= 30:
			return fmt.Sprintf("%s%% blast radius limits damage but %s is still significant downtime.", p, systems)
		case pct >= 15:
			return fmt.Sprintf("Good isolation with only %s%% exposure. Smart architecture protecting %s%% of systems.", p, num(100-pct))
		default:
			return fmt.Sprintf("Excellent segmentation! Only %s%% blast radius shows defense-in-depth working.", p)
		}
	},
	model.RRG: func(m float64, _ catalog.Archetype) string {
		x := num(m)
		actual := int(math.Round(plannedRecoveryHours * m))
		switch {
		case m >= 5:
			return fmt.Sprintf("Recovery takes %sx longer than planned (%d hours vs %d). Disaster waiting to happen.", x, actual, plannedRecoveryHours)
		case m >= 3:
			return fmt.Sprintf("%sx gap means %d-hour recovery instead of %d. Customer SLAs at severe risk.", x, actual, plannedRecoveryHours)
		case m >= 2:
			return fmt.Sprintf("Moderate %sx gap (%d hours actual). Test scenarios don't match real incidents.", x, actual)
		case m >= 1.5:
			return fmt.Sprintf("Small %sx gap shows good planning. Regular drills keeping recovery realistic.", x)
		default:
			return fmt.Sprintf("Excellent %sx factor! Your tested recovery times match reality. Industry-leading preparedness.", x)
		}
	},
}

func atMost(r model.Responses, d model.Dimension, limit float64) bool {
	v, ok := r.Value(d)
	return ok && v <= limit
}

func atLeast(r model.Responses, d model.Dimension, limit float64) bool {
	v, ok := r.Value(d)
	return ok && v >= limit
}

func above(r model.Responses, d model.Dimension, limit float64) bool {
	v, ok := r.Value(d)
	return ok && v > limit
}

var correlationRules = [model.DimensionCount]func(v float64, r model.Responses) []string{
	model.TRD: func(hours float64, r model.Responses) []string {
		out := []string{}
		if hours <= 6 {
			out = append(out, "Fast revenue loss amplifies the importance of recovery speed - check your RRG next")
			if above(r, model.BRI, 50) {
				out = append(out, "Combined with your high blast radius, a major incident could be catastrophic")
			}
		}
		if hours <= 24 && above(r, model.HFP, 30) {
			out = append(out, "Quick revenue impact + high human failure rate = urgent need for automated defenses")
		}
		return out
	},
	model.AER: func(value float64, r model.Responses) []string {
		out := []string{}
		if value >= 500_000 {
			out = append(out, "High attack value makes you a priority target - human defenses become critical")
			if atMost(r, model.TRD, 12) {
				out = append(out, "Fast revenue loss + high attack value = perfect storm for ransomware groups")
			}
		}
		if value >= 200_000 && above(r, model.BRI, 60) {
			out = append(out, "Valuable data across many systems increases both attack surface and potential losses")
		}
		return out
	},
	model.HFP: func(pct float64, r model.Responses) []string {
		out := []string{}
		if pct >= 25 {
			out = append(out, "High human vulnerability multiplies all other risks - people are your weakest link")
			if atLeast(r, model.AER, 500_000) {
				out = append(out, "Valuable targets + vulnerable humans = social engineering paradise for attackers")
			}
		}
		if pct >= 20 && atLeast(r, model.RRG, 3) {
			out = append(out, "Human errors during recovery could extend your already slow restoration times")
		}
		return out
	},
	model.BRI: func(pct float64, r model.Responses) []string {
		out := []string{}
		if pct >= 60 {
			out = append(out, "Wide blast radius means recovery complexity skyrockets - check your RRG capability")
			if atMost(r, model.TRD, 24) {
				out = append(out, fmt.Sprintf("Fast revenue impact across %s%% of systems could trigger business continuity crisis", num(pct)))
			}
		}
		if pct >= 40 && atLeast(r, model.HFP, 25) {
			out = append(out, "Human mistakes in interconnected systems cascade into enterprise-wide incidents")
		}
		return out
	},
	model.RRG: func(m float64, r model.Responses) []string {
		out := []string{}
		if m >= 3 {
			out = append(out, "Slow recovery amplifies all other vulnerabilities - time is your enemy in incidents")
			if atMost(r, model.TRD, 12) {
				out = append(out, "Fast revenue loss + slow recovery = potential business extinction event")
			}
			if bri, ok := r.Value(model.BRI); ok && bri >= 60 {
				out = append(out, fmt.Sprintf("Recovering %s%% of systems at %sx planned time could take weeks", num(bri), num(m)))
			}
		}
		return out
	},
}

type teaserRule struct {
	next model.Dimension
	text func(v float64) string
}

func fixed(s string) func(float64) string {
	return func(float64) string { return s }
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

// The first unanswered candidate is teased.
var teaserRules = [model.DimensionCount][2]teaserRule{
	model.TRD: {
		{model.RRG, func(h float64) string {
			return pick(h <= 12,
				"Your fast revenue loss makes recovery speed critical. How quickly can you really bounce back?",
				"You have buffer time, but can you actually recover within that window?")
		}},
		{model.AER, fixed("Now let's see if you're valuable enough for attackers to target those revenue streams")},
	},
	model.AER: {
		{model.HFP, func(v float64) string {
			return pick(v >= 500_000,
				"High-value targets need strong human defenses. How susceptible is your team?",
				"Even low-value targets fall to human tricks. What's your team's resistance?")
		}},
		{model.BRI, fixed("Let's see how far an attack could spread through your systems")},
	},
	model.HFP: {
		{model.BRI, func(p float64) string {
			return pick(p >= 25,
				"Human errors can cascade. How interconnected are your critical systems?",
				"Your team is strong, but can system design contain the mistakes that do happen?")
		}},
		{model.AER, fixed("Let's see what attackers could gain by exploiting those human vulnerabilities")},
	},
	model.BRI: {
		{model.RRG, func(p float64) string {
			return pick(p >= 50,
				"Wide blast radius means complex recovery. Can you restore all those systems quickly?",
				"Good isolation helps, but how fast can you recover what does get hit?")
		}},
		{model.TRD, fixed("Let's see how quickly this level of damage hits your bottom line")},
	},
	model.RRG: {
		{model.TRD, func(m float64) string {
			return pick(m >= 3,
				"Slow recovery is costly. How fast does downtime hit your revenue?",
				"Good recovery capability! Let's see how much time pressure you're under")
		}},
		{model.BRI, fixed("Recovery complexity depends on damage scope. How far can incidents spread?")},
	},
}

func nextTeaser(d model.Dimension, v float64, answered model.Responses) *model.Teaser {
	for _, rule := range teaserRules[d] {
		if !answered.Has(rule.next) {
			return &model.Teaser{Dimension: rule.next, Text: rule.text(v)}
		}
	}
	return nil
}
