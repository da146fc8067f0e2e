package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDimensionString(t *testing.T) {
	tests := []struct {
		d    Dimension
		want string
	}{
		{TRD, "TRD"},
		{AER, "AER"},
		{HFP, "HFP"},
		{BRI, "BRI"},
		{RRG, "RRG"},
		{Dimension(7), "Dimension(7)"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("Dimension(%d).String() = %q, want %q", int(tt.d), got, tt.want)
		}
	}
}

func TestParseDimension(t *testing.T) {
	for _, d := range AllDimensions() {
		got, err := ParseDimension(" " + d.String() + " ")
		if err != nil || got != d {
			t.Errorf("ParseDimension(%q) = %v, %v", d.String(), got, err)
		}
	}
	got, err := ParseDimension("rrg")
	if err != nil || got != RRG {
		t.Errorf("expected lowercase tag to parse, got %v, %v", got, err)
	}
	if _, err := ParseDimension("XYZ"); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("expected ErrUnknownDimension, got %v", err)
	}
}

func TestDimensionJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Dimension{"d": BRI})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"d":"BRI"}` {
		t.Errorf("unexpected encoding %s", data)
	}

	var back map[string]Dimension
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back["d"] != BRI {
		t.Errorf("expected BRI, got %v", back["d"])
	}
}

func TestParseArchetypeID(t *testing.T) {
	tests := []struct {
		in      string
		want    ArchetypeID
		wantErr bool
	}{
		{"5", FinancialServices, false},
		{"financial_services", FinancialServices, false},
		{"hybrid_commerce", HybridCommerce, false},
		{"8", RegulatedInformation, false},
		{"0", 0, true},
		{"9", 0, true},
		{"bank", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseArchetypeID(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownArchetype) {
				t.Errorf("ParseArchetypeID(%q): expected ErrUnknownArchetype, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseArchetypeID(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestResponsesWithIsCopy(t *testing.T) {
	var empty Responses
	one := empty.With(DimensionResponse{Dimension: TRD, Value: 4})
	if empty.Has(TRD) {
		t.Error("With mutated the receiver")
	}
	if !one.Has(TRD) || one.Count() != 1 {
		t.Fatalf("expected one TRD answer, got %d", one.Count())
	}

	replaced := one.With(DimensionResponse{Dimension: TRD, Value: 12})
	if v, _ := replaced.Value(TRD); v != 12 {
		t.Errorf("expected replacement value 12, got %v", v)
	}
	if v, _ := one.Value(TRD); v != 4 {
		t.Errorf("earlier snapshot changed to %v", v)
	}

	cleared := replaced.Without(TRD)
	if cleared.Has(TRD) || !replaced.Has(TRD) {
		t.Error("Without should clear only the copy")
	}
}

func TestResponsesAnsweredOrder(t *testing.T) {
	var r Responses
	r = r.With(DimensionResponse{Dimension: RRG})
	r = r.With(DimensionResponse{Dimension: AER})
	r = r.With(DimensionResponse{Dimension: Dimension(12)})

	got := r.Answered()
	if len(got) != 2 || got[0] != AER || got[1] != RRG {
		t.Errorf("expected [AER RRG], got %v", got)
	}
	if len(r.List()) != 2 {
		t.Errorf("expected 2 listed responses, got %d", len(r.List()))
	}
}

func TestResponsesRealCount(t *testing.T) {
	var r Responses
	r = r.With(DimensionResponse{Dimension: TRD})
	r = r.With(DimensionResponse{Dimension: BRI, Inferred: true, Confidence: 40})

	if r.Count() != 2 {
		t.Errorf("expected 2 answered, got %d", r.Count())
	}
	if r.RealCount() != 1 {
		t.Errorf("expected 1 real answer, got %d", r.RealCount())
	}
	if !r.Real(TRD) || r.Real(BRI) || r.Real(AER) {
		t.Errorf("expected only TRD to be real, got TRD=%v BRI=%v AER=%v", r.Real(TRD), r.Real(BRI), r.Real(AER))
	}
}

func TestConfigErrorUnwrap(t *testing.T) {
	err := error(&ConfigError{Component: "score", Err: ErrUnknownArchetype})
	if !errors.Is(err, ErrUnknownArchetype) {
		t.Error("ConfigError should unwrap to its cause")
	}
}

func TestDimensionHealth(t *testing.T) {
	if TRD.RiskOriented() || AER.RiskOriented() {
		t.Error("TRD and AER scores grow with resilience")
	}
	for _, d := range []Dimension{HFP, BRI, RRG} {
		if !d.RiskOriented() {
			t.Errorf("%s should be risk oriented", d)
		}
		if got := d.Health(2.5); got != 8.5 {
			t.Errorf("%s.Health(2.5) = %v, want 8.5", d, got)
		}
	}
	if got := TRD.Health(2.5); got != 2.5 {
		t.Errorf("TRD.Health(2.5) = %v, want 2.5", got)
	}
}
