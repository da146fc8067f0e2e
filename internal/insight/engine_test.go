package insight

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/model"
)

func resp(d model.Dimension, v float64) model.DimensionResponse {
	return model.DimensionResponse{Dimension: d, Value: v, Score: 5}
}

func with(rs ...model.DimensionResponse) model.Responses {
	var r model.Responses
	for _, x := range rs {
		r = r.With(x)
	}
	return r
}

func TestReveal_FirstAnswer(t *testing.T) {
	e := New(catalog.Default())

	got, err := e.Reveal(resp(model.TRD, 4), model.CriticalSoftware, model.Responses{}, nil)
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}

	if got.Dimension != model.TRD || got.Depth != 1 {
		t.Errorf("Expected TRD at depth 1, got %s at depth %d", got.Dimension, got.Depth)
	}
	if got.Peer.Position != model.PositionBehind || got.Peer.Percentile != 25 {
		t.Errorf("Expected behind at 25th percentile, got %s at %d", got.Peer.Position, got.Peer.Percentile)
	}
	checks := map[string][2]string{
		"peer message":    {"75% of peers perform better here", got.Peer.Message},
		"headline":        {"Revenue at Critical Risk", got.Headline},
		"business impact": {"You'd lose 10% revenue in just 4 hours. That's $250K per hour of downtime.", got.BusinessImpact},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s: expected %q, got %q", name, c[0], c[1])
		}
	}
	want := []string{"Fast revenue loss amplifies the importance of recovery speed - check your RRG next"}
	if !reflect.DeepEqual(got.Correlations, want) {
		t.Errorf("Expected correlations %v, got %v", want, got.Correlations)
	}

	if got.Next == nil {
		t.Fatal("Expected a next-dimension teaser")
	}
	if got.Next.Dimension != model.RRG || !strings.Contains(got.Next.Text, "fast revenue loss") {
		t.Errorf("Expected an RRG teaser about fast revenue loss, got %s: %q", got.Next.Dimension, got.Next.Text)
	}
}

func TestReveal_CorrelationsCappedAndMeta(t *testing.T) {
	e := New(catalog.Default())
	answers := with(resp(model.TRD, 4), resp(model.BRI, 70))
	composite := &model.CompositeScore{Score: 2.1}

	got, err := e.Reveal(resp(model.RRG, 6), model.CriticalSoftware, answers, composite)
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}

	if got.Depth != 3 {
		t.Errorf("Expected depth 3, got %d", got.Depth)
	}
	if len(got.Correlations) != 3 {
		t.Fatalf("Expected two correlations and a meta comment, got %v", got.Correlations)
	}
	if !strings.Contains(got.Correlations[0], "Slow recovery amplifies") {
		t.Errorf("Unexpected first correlation %q", got.Correlations[0])
	}
	if !strings.Contains(got.Correlations[1], "business extinction") {
		t.Errorf("Unexpected second correlation %q", got.Correlations[1])
	}
	if want := "Multiple weak dimensions are compounding your vulnerability exponentially"; got.Correlations[2] != want {
		t.Errorf("Expected meta comment %q, got %q", want, got.Correlations[2])
	}
	if want := "Recovery takes 6x longer than planned (48 hours vs 8). Disaster waiting to happen."; got.BusinessImpact != want {
		t.Errorf("Expected impact %q, got %q", want, got.BusinessImpact)
	}
	if got.Next != nil {
		t.Errorf("Expected no teaser once TRD and BRI are answered, got %+v", got.Next)
	}
}

func TestReveal_MetaOnlyFromDepthThree(t *testing.T) {
	e := New(catalog.Default())
	composite := &model.CompositeScore{Score: 9}

	got, err := e.Reveal(resp(model.HFP, 5), model.CriticalSoftware, with(resp(model.TRD, 48)), composite)
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if got.Depth != 2 || len(got.Correlations) != 0 {
		t.Errorf("Expected depth 2 without correlations, got depth %d with %v", got.Depth, got.Correlations)
	}

	got, err = e.Reveal(resp(model.HFP, 5), model.CriticalSoftware, with(resp(model.TRD, 48), resp(model.AER, 10_000)), composite)
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	want := []string{"Strong performance across dimensions creates resilience multiplier effect"}
	if !reflect.DeepEqual(got.Correlations, want) {
		t.Errorf("Expected %v, got %v", want, got.Correlations)
	}
}

func TestReveal_DepthCapped(t *testing.T) {
	e := New(catalog.Default())
	answers := with(resp(model.TRD, 48), resp(model.AER, 10_000), resp(model.HFP, 5), resp(model.BRI, 10), resp(model.RRG, 1))

	got, err := e.Reveal(resp(model.RRG, 1.2), model.CriticalSoftware, answers, nil)
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if got.Depth != 5 {
		t.Errorf("Expected depth 5, got %d", got.Depth)
	}
	if got.Headline != "Practice Makes Perfect" {
		t.Errorf("Expected headline %q, got %q", "Practice Makes Perfect", got.Headline)
	}
}

func TestReveal_Errors(t *testing.T) {
	e := New(catalog.Default())

	_, err := e.Reveal(resp(model.Dimension(7), 1), model.CriticalSoftware, model.Responses{}, nil)
	if !errors.Is(err, model.ErrUnknownDimension) {
		t.Errorf("Expected ErrUnknownDimension, got %v", err)
	}

	_, err = e.Reveal(resp(model.TRD, 1), model.ArchetypeID(0), model.Responses{}, nil)
	if !errors.Is(err, model.ErrUnknownArchetype) {
		t.Errorf("Expected ErrUnknownArchetype, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	b := catalog.Default().MustLookup(model.CriticalSoftware).Benchmarks
	tests := []struct {
		d     model.Dimension
		value float64
		want  int
		pos   model.PeerPosition
	}{
		{model.TRD, 48, 95, model.PositionAhead},
		{model.TRD, 24, 90, model.PositionAhead},
		{model.TRD, 8, 50, model.PositionAverage},
		{model.TRD, 1, 10, model.PositionBehind},
		{model.AER, 100_000, 75, model.PositionAhead},
		{model.AER, 2_000_000, 10, model.PositionBehind},
		{model.HFP, 5, 95, model.PositionAhead},
		{model.HFP, 10, 90, model.PositionAhead},
		{model.HFP, 30, 50, model.PositionAverage},
		{model.BRI, 80, 25, model.PositionBehind},
		{model.RRG, 3, 50, model.PositionAverage},
	}
	for _, tt := range tests {
		got := Compare(tt.d, tt.value, b[tt.d])
		if got.Percentile != tt.want || got.Position != tt.pos {
			t.Errorf("%s %v: expected %d (%s), got %d (%s)", tt.d, tt.value, tt.want, tt.pos, got.Percentile, got.Position)
		}
	}

	if got := Compare(model.HFP, 5, b[model.HFP]).Message; got != "You're in the top 5% of your industry" {
		t.Errorf("Unexpected top message %q", got)
	}
	if got := Compare(model.HFP, 30, b[model.HFP]).Message; got != "You're right at industry average (50th percentile)" {
		t.Errorf("Unexpected average message %q", got)
	}
}

func TestImpactTemplates(t *testing.T) {
	cs := catalog.Default().MustLookup(model.CriticalSoftware)
	tests := []struct {
		d     model.Dimension
		value float64
		want  string
	}{
		{model.TRD, 2, "Critical operations would fail within 2 hours - faster than most ransomware attacks."},
		{model.TRD, 100, "Your revenue streams are well-protected, but don't get complacent about emerging threats."},
		{model.AER, 1_200_000, "Attackers could extract $1.2M from your systems - you're a prime target for sophisticated groups."},
		{model.AER, 20_000, "Low attack value ($20K) reduces threat actor motivation, but zero-day exploits don't discriminate."},
		{model.HFP, 25, "One in four employees (25%) failing security tests creates multiple breach vectors daily."},
		{model.BRI, 75, "A breach would impact 75% of systems (~150 critical systems). Near-total business paralysis."},
		{model.BRI, 20, "Good isolation with only 20% exposure. Smart architecture protecting 80% of systems."},
		{model.RRG, 2.5, "Moderate 2.5x gap (20 hours actual). Test scenarios don't match real incidents."},
		{model.RRG, 1, "Excellent 1x factor! Your tested recovery times match reality. Industry-leading preparedness."},
	}
	for _, tt := range tests {
		if got := impactTemplates[tt.d](tt.value, cs); got != tt.want {
			t.Errorf("%s %v:\n expected %q\n got      %q", tt.d, tt.value, tt.want, got)
		}
	}
}

func TestNextTeaser(t *testing.T) {
	got := nextTeaser(model.TRD, 48, with(resp(model.TRD, 48), resp(model.RRG, 2)))
	if got == nil || got.Dimension != model.AER {
		t.Errorf("Expected an AER teaser, got %+v", got)
	}

	got = nextTeaser(model.AER, 600_000, with(resp(model.AER, 600_000)))
	if got == nil {
		t.Fatal("Expected a teaser after AER")
	}
	if got.Dimension != model.HFP || !strings.Contains(got.Text, "High-value targets") {
		t.Errorf("Expected an HFP teaser about high-value targets, got %s: %q", got.Dimension, got.Text)
	}

	got = nextTeaser(model.RRG, 1.5, with(resp(model.RRG, 1.5)))
	if got == nil {
		t.Fatal("Expected a teaser after RRG")
	}
	if want := "Good recovery capability! Let's see how much time pressure you're under"; got.Text != want {
		t.Errorf("Expected %q, got %q", want, got.Text)
	}
}

func TestHeadline(t *testing.T) {
	tests := []struct {
		pos   model.PeerPosition
		depth int
		want  string
	}{
		{model.PositionBehind, 1, "Phishing Paradise"},
		{model.PositionBehind, 2, "Human Backdoor Open"},
		{model.PositionBehind, 4, "Social Engineering Risk"},
		{model.PositionBehind, 0, "Phishing Paradise"},
		{model.PeerPosition("sideways"), 1, ""},
	}
	for _, tt := range tests {
		if got := Headline(model.HFP, tt.pos, tt.depth); got != tt.want {
			t.Errorf("Headline(HFP, %s, %d) = %q, want %q", tt.pos, tt.depth, got, tt.want)
		}
	}
}

func TestCuriosityHook(t *testing.T) {
	tests := []struct {
		answered  int
		composite *model.CompositeScore
		want      string
	}{
		{1, nil, "First insight"},
		{3, &model.CompositeScore{Score: 3}, "Immunity gaps detected"},
		{3, &model.CompositeScore{Score: 6}, "taking shape"},
		{3, nil, "taking shape"},
		{5, nil, "Complete immunity profile"},
	}
	for _, tt := range tests {
		if got := CuriosityHook(tt.answered, tt.composite); !strings.Contains(got, tt.want) {
			t.Errorf("CuriosityHook(%d): expected %q in %q", tt.answered, tt.want, got)
		}
	}
}
