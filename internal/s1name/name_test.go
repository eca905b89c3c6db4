package s1name

import "testing"

const slcName = "S1B_IW_SLC__1SDV_20190805T162509_20190805T162536_017453_020D3A_AB12.SAFE"

func TestParseSLC(t *testing.T) {
	p, err := Parse(slcName)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if p.Mission() != "S1B" {
		t.Errorf("Mission: expected S1B, got %s", p.Mission())
	}
	if p.Mode() != "IW" {
		t.Errorf("Mode: expected IW, got %s", p.Mode())
	}
	if p.Type() != "SLC_" {
		t.Errorf("Type: expected SLC_, got %s", p.Type())
	}
	if p.TypePol() != "1SDV" {
		t.Errorf("TypePol: expected 1SDV, got %s", p.TypePol())
	}
	if p.StartTime() != "20190805T162509" {
		t.Errorf("StartTime: expected 20190805T162509, got %s", p.StartTime())
	}
	if p.Orbit() != "017453" {
		t.Errorf("Orbit: expected 017453, got %s", p.Orbit())
	}
	if p.CRC() != "AB12" {
		t.Errorf("CRC: expected AB12, got %s", p.CRC())
	}
	if p.IsAnnotation() {
		t.Error("Standard product must not report as annotation")
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{
		"",
		"S1B_IW",
		"not a product name",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(name); err == nil {
				t.Fatal("Expected error, got nil")
			}
		})
	}
}

func TestRecomposeRoundTrip(t *testing.T) {
	p, err := Parse(slcName)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := p.Recompose(true); got != slcName {
		t.Errorf("Expected %s, got %s", slcName, got)
	}
	if got := p.Recompose(false); got != slcName[:len(slcName)-5] {
		t.Errorf("Expected name without suffix, got %s", got)
	}
}

func TestToAnnotationAndStandard(t *testing.T) {
	p, _ := Parse(slcName)

	p.ToAnnotation("A")
	if p.TypePol() != "1ADV" {
		t.Errorf("Expected 1ADV, got %s", p.TypePol())
	}
	if !p.IsAnnotation() {
		t.Error("Expected annotation product after ToAnnotation")
	}

	p.ToStandard()
	if p.TypePol() != "1SDV" {
		t.Errorf("Expected 1SDV, got %s", p.TypePol())
	}
}

func TestAnnotationPattern(t *testing.T) {
	re, err := AnnotationPattern(slcName)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		productID string
		match     bool
	}{
		{
			name:      "annotation variant matches",
			productID: "S1B_IW_SLC__1ADV_20190805T162509_20190805T162536_017453_020D3A_",
			match:     true,
		},
		{
			name:      "default variant matches",
			productID: "S1B_IW_SLC__1DDV_20190805T162509_20190805T162536_017453_020D3A_",
			match:     true,
		},
		{
			name:      "different checksum still matches",
			productID: "S1B_IW_SLC__1ADV_20190805T162509_20190805T162536_017453_020D3A_FFFF",
			match:     true,
		},
		{
			name:      "standard marker does not match",
			productID: "S1B_IW_SLC__1SDV_20190805T162509_20190805T162536_017453_020D3A_",
			match:     false,
		},
		{
			name:      "different orbit does not match",
			productID: "S1B_IW_SLC__1ADV_20190805T162509_20190805T162536_099999_020D3A_",
			match:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := re.MatchString(tt.productID); got != tt.match {
				t.Errorf("MatchString(%q): expected %v, got %v", tt.productID, tt.match, got)
			}
		})
	}
}
