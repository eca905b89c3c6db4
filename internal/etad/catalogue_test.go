package etad_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rkm/s1etad/internal/etad"
	"github.com/rkm/s1etad/internal/etad/etadtest"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestCatalogueContents(t *testing.T) {
	p := newTestProduct(t)
	cat := p.Catalogue()

	wantSwaths := []string{"IW1", "IW2"}
	gotSwaths := cat.SwathIDs()
	if len(gotSwaths) != len(wantSwaths) {
		t.Fatalf("SwathIDs = %v, want %v", gotSwaths, wantSwaths)
	}
	for i := range wantSwaths {
		if gotSwaths[i] != wantSwaths[i] {
			t.Errorf("SwathIDs[%d] = %q, want %q", i, gotSwaths[i], wantSwaths[i])
		}
	}

	for _, tc := range []struct {
		swath string
		want  []int
	}{
		{"IW1", []int{1, 2, 3}},
		{"IW2", []int{4, 5}},
	} {
		got := cat.BurstIndexes(tc.swath)
		if len(got) != len(tc.want) {
			t.Errorf("BurstIndexes(%s) = %v, want %v", tc.swath, got, tc.want)
			continue
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("BurstIndexes(%s)[%d] = %d, want %d", tc.swath, i, got[i], tc.want[i])
			}
		}
	}

	for i, spec := range etadtest.Bursts() {
		if cat.ProductID[i] != etadtest.ProductID {
			t.Errorf("row %d: ProductID = %q, want %q", i, cat.ProductID[i], etadtest.ProductID)
		}
		if cat.PIndex[i] != 1 {
			t.Errorf("row %d: PIndex = %d, want 1", i, cat.PIndex[i])
		}
		if want := etadtest.TimeAt(spec.StartAzimuth); !cat.AzimuthTimeMin[i].Equal(want) {
			t.Errorf("row %d: AzimuthTimeMin = %v, want %v", i, cat.AzimuthTimeMin[i], want)
		}
	}
}

func TestQueryBurst(t *testing.T) {
	p := newTestProduct(t)

	tests := []struct {
		name  string
		query etad.Query
		want  []int // bIndex, result order
	}{
		{
			name:  "default returns all sorted by start time",
			query: etad.Query{},
			want:  []int{1, 4, 2, 5, 3},
		},
		{
			name:  "time window drops late bursts",
			query: etad.Query{LastTime: timePtr(etadtest.TimeAt(0.12))},
			want:  []int{1, 4, 2, 5},
		},
		{
			name: "window boundary is inclusive",
			query: etad.Query{
				FirstTime: timePtr(etadtest.RefTime),
				LastTime:  timePtr(etadtest.TimeAt(0.07)),
			},
			want: []int{1, 4},
		},
		{
			name:  "first time excludes earlier bursts",
			query: etad.Query{FirstTime: timePtr(etadtest.TimeAt(0.05))},
			want:  []int{2, 5, 3},
		},
		{
			name:  "swath filter",
			query: etad.Query{Swaths: []string{"IW2"}},
			want:  []int{4, 5},
		},
		{
			name: "swath and time filters compose",
			query: etad.Query{
				Swaths:   []string{"IW1"},
				LastTime: timePtr(etadtest.TimeAt(0.12)),
			},
			want: []int{1, 2},
		},
		{
			name:  "empty window",
			query: etad.Query{LastTime: timePtr(etadtest.TimeAt(0.01))},
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.QueryBurst(tc.query)
			if err != nil {
				t.Fatalf("QueryBurst: %v", err)
			}
			if got.Len() != len(tc.want) {
				t.Fatalf("result has %d rows (%v), want %v", got.Len(), got.BIndex, tc.want)
			}
			for i, b := range tc.want {
				if got.BIndex[i] != b {
					t.Errorf("row %d: bIndex = %d, want %d", i, got.BIndex[i], b)
				}
			}
		})
	}
}

func TestQueryBurstProductName(t *testing.T) {
	p := newTestProduct(t)

	// The catalogue stores the annotation variant of the input product
	// name; queries may use any variant of the same acquisition.
	standard := "S1B_IW_SLC__1SDV_20250110T040000_20250110T040027_019964_025C12_AAAA"
	otherOrbit := "S1B_IW_SLC__1SDV_20250110T040000_20250110T040027_019965_025C12_AAAA"

	got, err := p.QueryBurst(etad.Query{ProductName: standard})
	if err != nil {
		t.Fatalf("QueryBurst: %v", err)
	}
	if got.Len() != len(etadtest.Bursts()) {
		t.Errorf("standard-name query matched %d rows, want %d", got.Len(), len(etadtest.Bursts()))
	}

	got, err = p.QueryBurst(etad.Query{ProductName: otherOrbit})
	if err != nil {
		t.Fatalf("QueryBurst: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("other-orbit query matched %d rows, want 0", got.Len())
	}

	if _, err := p.QueryBurst(etad.Query{ProductName: "not-a-product-name"}); err == nil {
		t.Error("query with an invalid product name succeeded, want error")
	}
}

func TestIterSwaths(t *testing.T) {
	p := newTestProduct(t)

	all, err := p.IterSwaths(nil)
	if err != nil {
		t.Fatalf("IterSwaths(nil): %v", err)
	}
	if len(all) != 2 || all[0].ID() != "IW1" || all[1].ID() != "IW2" {
		ids := make([]string, len(all))
		for i, s := range all {
			ids[i] = s.ID()
		}
		t.Errorf("IterSwaths(nil) = %v, want [IW1 IW2]", ids)
	}

	sel, err := p.QueryBurst(etad.Query{Swaths: []string{"IW2"}})
	if err != nil {
		t.Fatalf("QueryBurst: %v", err)
	}
	some, err := p.IterSwaths(sel)
	if err != nil {
		t.Fatalf("IterSwaths(selection): %v", err)
	}
	if len(some) != 1 || some[0].ID() != "IW2" {
		t.Errorf("IterSwaths(selection) returned %d swaths, want just IW2", len(some))
	}
}

func TestCatalogueRejectsMalformedMetadata(t *testing.T) {
	doc := parseDoc(t, "<etadProduct><productInformation>"+
		"<correctionGridAzimuthSampling>140</correctionGridAzimuthSampling>"+
		"</productInformation></etadProduct>")

	_, err := etad.NewProduct("synthetic", doc, etadtest.Store(t))
	if !errors.Is(err, etad.ErrMalformedMetadata) {
		t.Errorf("NewProduct without burst records: err = %v, want ErrMalformedMetadata", err)
	}
}
