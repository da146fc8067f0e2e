package orchestrate

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/dii/internal/model"
)

func answers(values map[model.Dimension]float64) model.Responses {
	var r model.Responses
	for d, v := range values {
		r = r.With(model.DimensionResponse{Dimension: d, Value: v, Score: 5})
	}
	return r
}

func order(dims ...model.Dimension) [model.DimensionCount]model.Dimension {
	var out [model.DimensionCount]model.Dimension
	copy(out[:], dims)
	return out
}

func TestInitialOrder(t *testing.T) {
	state, err := New().InitialOrder(model.HybridCommerce)
	if err != nil {
		t.Fatalf("InitialOrder failed: %v", err)
	}

	if want := order(model.TRD, model.BRI, model.HFP, model.RRG, model.AER); state.Order != want {
		t.Errorf("Expected order %v, got %v", want, state.Order)
	}
	if state.RemainingMinutes != 8 {
		t.Errorf("Expected 8 minutes, got %d", state.RemainingMinutes)
	}
	if state.AdaptiveReason != "" {
		t.Errorf("Expected no adaptive reason, got %q", state.AdaptiveReason)
	}
	first := state.Priorities[0]
	if first.Priority != 1 || first.Dimension != model.TRD {
		t.Errorf("Expected TRD at priority 1, got %s at %d", first.Dimension, first.Priority)
	}
	if want := "Physical and digital revenue streams need protection"; first.Rationale != want {
		t.Errorf("Expected rationale %q, got %q", want, first.Rationale)
	}
}

func TestInitialOrder_EveryArchetypeIsPermutation(t *testing.T) {
	for id := model.HybridCommerce; id <= model.RegulatedInformation; id++ {
		state, err := New().InitialOrder(id)
		if err != nil {
			t.Fatalf("%s: InitialOrder failed: %v", id, err)
		}
		if err := checkPermutation(state.Order); err != nil {
			t.Errorf("%s: %v", id, err)
		}
	}
}

func TestInitialOrder_UnknownArchetype(t *testing.T) {
	_, err := New().InitialOrder(model.ArchetypeID(0))
	if !errors.Is(err, model.ErrUnknownArchetype) {
		t.Errorf("Expected ErrUnknownArchetype, got %v", err)
	}
}

func TestAdaptOrder_FastRevenueLossPromotesRRG(t *testing.T) {
	o := New()
	initial, err := o.InitialOrder(model.HybridCommerce)
	if err != nil {
		t.Fatalf("InitialOrder failed: %v", err)
	}

	state, err := o.AdaptOrder(initial.Order, answers(map[model.Dimension]float64{model.TRD: 4}), model.HybridCommerce)
	if err != nil {
		t.Fatalf("AdaptOrder failed: %v", err)
	}

	if want := order(model.TRD, model.RRG, model.BRI, model.HFP, model.AER); state.Order != want {
		t.Errorf("Expected order %v, got %v", want, state.Order)
	}
	if state.AdaptiveReason != rules[0].reason {
		t.Errorf("Expected reason %q, got %q", rules[0].reason, state.AdaptiveReason)
	}
	if state.RemainingMinutes != 6 {
		t.Errorf("Expected 6 minutes, got %d", state.RemainingMinutes)
	}
	if p := state.Priorities[1]; p.Priority != 2 || p.Dimension != model.RRG {
		t.Errorf("Expected RRG at priority 2, got %s at %d", p.Dimension, p.Priority)
	}
}

func TestAdaptOrder_RuleThatDoesNotMoveIsSkipped(t *testing.T) {
	o := New()
	initial, err := o.InitialOrder(model.CriticalSoftware)
	if err != nil {
		t.Fatalf("InitialOrder failed: %v", err)
	}

	// RRG already sits in the next open slot, so the HFP rule applies instead.
	r := answers(map[model.Dimension]float64{model.TRD: 4, model.AER: 2_000_000})
	state, err := o.AdaptOrder(initial.Order, r, model.CriticalSoftware)
	if err != nil {
		t.Fatalf("AdaptOrder failed: %v", err)
	}

	if want := order(model.TRD, model.HFP, model.RRG, model.AER, model.BRI); state.Order != want {
		t.Errorf("Expected order %v, got %v", want, state.Order)
	}
	if state.AdaptiveReason != rules[1].reason {
		t.Errorf("Expected reason %q, got %q", rules[1].reason, state.AdaptiveReason)
	}
}

func TestAdaptOrder_NoRuleKeepsOrder(t *testing.T) {
	o := New()
	initial, err := o.InitialOrder(model.CriticalSoftware)
	if err != nil {
		t.Fatalf("InitialOrder failed: %v", err)
	}

	state, err := o.AdaptOrder(initial.Order, answers(map[model.Dimension]float64{model.TRD: 4}), model.CriticalSoftware)
	if err != nil {
		t.Fatalf("AdaptOrder failed: %v", err)
	}
	if state.Order != initial.Order || state.AdaptiveReason != "" {
		t.Errorf("Expected %v unchanged, got %v (%q)", initial.Order, state.Order, state.AdaptiveReason)
	}
}

func TestAdaptOrder_AnsweredTargetStays(t *testing.T) {
	start := order(model.HFP, model.TRD, model.BRI, model.RRG, model.AER)
	r := answers(map[model.Dimension]float64{model.HFP: 45, model.AER: 10_000})

	state, err := New().AdaptOrder(start, r, model.HybridCommerce)
	if err != nil {
		t.Fatalf("AdaptOrder failed: %v", err)
	}
	if state.Order != start {
		t.Errorf("Expected %v unchanged, got %v", start, state.Order)
	}
}

func TestAdaptOrder_AlwaysPermutation(t *testing.T) {
	o := New()
	sets := []map[model.Dimension]float64{
		{},
		{model.TRD: 1},
		{model.AER: 5_000_000},
		{model.BRI: 90, model.HFP: 60},
		{model.TRD: 2, model.AER: 2_000_000, model.BRI: 80, model.HFP: 50},
		{model.RRG: 10, model.HFP: 90},
	}
	for id := model.HybridCommerce; id <= model.RegulatedInformation; id++ {
		initial, err := o.InitialOrder(id)
		if err != nil {
			t.Fatalf("%s: InitialOrder failed: %v", id, err)
		}
		current := initial.Order
		for _, set := range sets {
			state, err := o.AdaptOrder(current, answers(set), id)
			if err != nil {
				t.Fatalf("%s %v: AdaptOrder failed: %v", id, set, err)
			}
			if err := checkPermutation(state.Order); err != nil {
				t.Fatalf("%s %v: %v", id, set, err)
			}
			current = state.Order
		}
	}
}

func TestAdaptOrder_RejectsInvalidOrder(t *testing.T) {
	_, err := New().AdaptOrder(order(model.TRD, model.TRD, model.HFP, model.BRI, model.RRG), model.Responses{}, model.HybridCommerce)
	if err == nil {
		t.Error("Expected an error for a duplicated dimension")
	}

	_, err = New().AdaptOrder(order(model.TRD, model.AER, model.HFP, model.BRI, model.Dimension(9)), model.Responses{}, model.HybridCommerce)
	if !errors.Is(err, model.ErrUnknownDimension) {
		t.Errorf("Expected ErrUnknownDimension, got %v", err)
	}
}

func TestPromote(t *testing.T) {
	start := order(model.TRD, model.AER, model.HFP, model.BRI, model.RRG)
	r := answers(map[model.Dimension]float64{model.TRD: 1, model.HFP: 10})

	got, moved := promote(start, r, model.RRG)
	if !moved {
		t.Error("Expected RRG to move")
	}
	if want := order(model.TRD, model.RRG, model.AER, model.HFP, model.BRI); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if _, moved = promote(start, r, model.AER); moved {
		t.Error("Expected AER to stay, it is already the next open slot")
	}
}

func TestTransitionBetween(t *testing.T) {
	tr, ok := TransitionBetween(model.BRI, model.RRG)
	if !ok {
		t.Fatal("Expected a BRI to RRG transition")
	}
	if tr.Text != "Wide damage means complex recovery" {
		t.Errorf("Unexpected transition text %q", tr.Text)
	}

	if _, ok := TransitionBetween(model.RRG, model.BRI); ok {
		t.Error("Expected no RRG to BRI transition")
	}
}

func TestSkipRecommendations_RRGFromCorrelation(t *testing.T) {
	r := answers(map[model.Dimension]float64{model.TRD: 4, model.BRI: 75, model.HFP: 45})
	recs := SkipRecommendations(r, []model.Dimension{model.AER, model.RRG})

	if len(recs) != 2 {
		t.Fatalf("Expected 2 recommendations, got %d", len(recs))
	}
	rrg := recs[0]
	if rrg.Dimension != model.RRG || rrg.SuggestedValue != 5 || rrg.SuggestedMetric != 5.0 || rrg.Confidence != 75 {
		t.Errorf("Unexpected RRG recommendation %+v", rrg)
	}
	if want := "Based on your 4h revenue window, 75% blast radius, and 45% human failure rate"; rrg.Rationale != want {
		t.Errorf("Expected rationale %q, got %q", want, rrg.Rationale)
	}

	aer := recs[1]
	if aer.Dimension != model.AER || aer.Confidence != 40 || aer.SuggestedMetric != 200_000 {
		t.Errorf("Unexpected AER recommendation %+v", aer)
	}
}

func TestSkipRecommendations_TRDFromCorrelation(t *testing.T) {
	tests := []struct {
		aer, hfp  float64
		hours     float64
		value     int
		rationale string
	}{
		{1_500_000, 35, 6, 1, "$1.5M value + 35% human vulnerability suggests rapid targeting"},
		{600_000, 10, 12, 2, "$600K value + 10% human vulnerability suggests rapid targeting"},
		{250_000, 10, 24, 2, "$250K value + 10% human vulnerability suggests rapid targeting"},
		{50_000, 10, 48, 3, "$50K value + 10% human vulnerability suggests rapid targeting"},
	}
	for _, tt := range tests {
		r := answers(map[model.Dimension]float64{model.AER: tt.aer, model.HFP: tt.hfp})
		recs := SkipRecommendations(r, []model.Dimension{model.TRD})
		if len(recs) != 1 {
			t.Fatalf("AER %v: expected 1 recommendation, got %d", tt.aer, len(recs))
		}
		got := recs[0]
		if got.SuggestedMetric != tt.hours || got.SuggestedValue != tt.value || got.Confidence != 65 {
			t.Errorf("AER %v: expected %vh (level %d) at 65, got %+v", tt.aer, tt.hours, tt.value, got)
		}
		if got.Rationale != tt.rationale {
			t.Errorf("AER %v: expected rationale %q, got %q", tt.aer, tt.rationale, got.Rationale)
		}
	}
}

func TestSkipRecommendations_DefaultsOnly(t *testing.T) {
	all := model.AllDimensions()
	recs := SkipRecommendations(model.Responses{}, all[:])

	if len(recs) != model.DimensionCount {
		t.Fatalf("Expected %d recommendations, got %d", model.DimensionCount, len(recs))
	}
	for i, rec := range recs {
		if rec.Dimension != all[i] || rec.Confidence != 40 || rec.SuggestedValue != 3 {
			t.Errorf("Expected %s default at 40, got %+v", all[i], rec)
		}
	}
	if got := SkipRecommendations(model.Responses{}, nil); len(got) != 0 {
		t.Errorf("Expected no recommendations without open dimensions, got %v", got)
	}
}

func TestSkipRecommendations_ConfidenceInRange(t *testing.T) {
	all := model.AllDimensions()
	sets := []map[model.Dimension]float64{
		{},
		{model.TRD: 1, model.BRI: 95, model.HFP: 80},
		{model.AER: 9_000_000, model.HFP: 99},
	}
	for _, set := range sets {
		for _, rec := range SkipRecommendations(answers(set), all[:]) {
			if rec.Confidence < 0 || rec.Confidence > 100 {
				t.Errorf("%v: confidence %d outside [0,100]", set, rec.Confidence)
			}
		}
	}
}

func TestRemaining(t *testing.T) {
	r := answers(map[model.Dimension]float64{model.BRI: 20})
	got := Remaining(order(model.BRI, model.TRD, model.AER, model.RRG, model.HFP), r)
	if want := []model.Dimension{model.TRD, model.AER, model.RRG, model.HFP}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestEstimateRemainingTime(t *testing.T) {
	want := []int{8, 6, 4, 3, 1, 0}
	for answered, minutes := range want {
		if got := EstimateRemainingTime(answered); got != minutes {
			t.Errorf("EstimateRemainingTime(%d) = %d, want %d", answered, got, minutes)
		}
	}
}

func TestCorrelationHints(t *testing.T) {
	if hints := CorrelationHints(model.Responses{}); len(hints) != 0 {
		t.Errorf("Expected no hints without answers, got %v", hints)
	}

	r := answers(map[model.Dimension]float64{
		model.TRD: 6, model.AER: 600_000, model.HFP: 30, model.BRI: 75, model.RRG: 3,
	})
	hints := CorrelationHints(r)
	if len(hints) != 3 {
		t.Fatalf("Expected 3 hints, got %v", hints)
	}
	if !strings.Contains(hints[0], "prime ransomware target") {
		t.Errorf("Unexpected first hint %q", hints[0])
	}
	if !strings.Contains(hints[2], "potential business failure") {
		t.Errorf("Unexpected last hint %q", hints[2])
	}
}

func TestMoney(t *testing.T) {
	tests := map[float64]string{
		1_000_000: "$1.0M",
		2_500_000: "$2.5M",
		200_000:   "$200K",
	}
	for v, want := range tests {
		if got := Money(v); got != want {
			t.Errorf("Money(%v) = %q, want %q", v, got, want)
		}
	}
}
