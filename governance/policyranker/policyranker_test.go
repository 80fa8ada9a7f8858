package policyranker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/vector"
)

type stubSource struct {
	hits      []vector.ScoredEmbedding
	err       error
	lastQuery string
	lastK     int
}

func (s *stubSource) QueryRelevance(ctx context.Context, text string, k int) ([]vector.ScoredEmbedding, error) {
	s.lastQuery, s.lastK = text, k
	if s.err != nil {
		return nil, s.err
	}
	return s.hits, nil
}

func (s *stubSource) QueryDistance(ctx context.Context, text string, k int) ([]vector.ScoredEmbedding, error) {
	return nil, errors.New("distance not available")
}

func policyHit(id string, score float64, meta map[string]any) vector.ScoredEmbedding {
	meta["policy_id"] = id
	return vector.ScoredEmbedding{
		Embedding: &vector.Embedding{
			ID:       id,
			Text:     "各单位应当按照本办法开展生活垃圾分类工作。居民必须遵守分类投放规定。建议建立积分激励机制推进分类。短句。",
			Metadata: meta,
		},
		Score: score,
	}
}

func policyIDs(refs []governance.PolicyReference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.PolicyID)
	}
	return out
}

func TestCentralOutranksStreetAtEqualRelevance(t *testing.T) {
	src := &stubSource{hits: []vector.ScoredEmbedding{
		policyHit("street", 0.8, map[string]any{"admin_level": "street", "title": "石牌街道通知"}),
		policyHit("central", 0.8, map[string]any{"admin_level": "central", "title": "国务院意见"}),
	}}
	refs := New(src).FindRelevantPolicies(context.Background(), "垃圾分类", "", nil, 2)
	if diff := cmp.Diff([]string{"central", "street"}, policyIDs(refs)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if refs[0].Relevance != 0.8 {
		t.Errorf("central score = %v, want 0.8", refs[0].Relevance)
	}
	if got, want := refs[1].Relevance, 0.8*0.2; got-want > 1e-9 || want-got > 1e-9 {
		t.Errorf("street score = %v, want %v", got, want)
	}
}

func TestRegionBoostAndQuery(t *testing.T) {
	src := &stubSource{hits: []vector.ScoredEmbedding{
		policyHit("beijing", 0.9, map[string]any{"admin_level": "municipal", "region": "北京市"}),
		policyHit("guangzhou", 0.8, map[string]any{"admin_level": "municipal", "region": "广州市"}),
	}}
	refs := New(src).FindRelevantPolicies(context.Background(), "垃圾分类", "广州市天河区", nil, 2)

	if src.lastQuery != "垃圾分类 广州市天河区" {
		t.Errorf("query = %q", src.lastQuery)
	}
	if src.lastK != 6 {
		t.Errorf("expected over-fetch of 6, got %d", src.lastK)
	}
	if diff := cmp.Diff([]string{"guangzhou", "beijing"}, policyIDs(refs)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got, want := refs[0].Relevance, 0.8*0.6*1.25; got-want > 1e-9 || want-got > 1e-9 {
		t.Errorf("boosted score = %v, want %v", got, want)
	}
}

func TestLevelFilterAndLimit(t *testing.T) {
	src := &stubSource{hits: []vector.ScoredEmbedding{
		policyHit("p1", 0.9, map[string]any{"admin_level": "01_中央政策"}),
		policyHit("p2", 0.8, map[string]any{"authority": "广东省人民政府"}),
		policyHit("p3", 0.7, map[string]any{"admin_level": "省级"}),
		policyHit("p4", 0.6, map[string]any{"title": "天河区实施方案"}),
	}}
	levels := []governance.AdminLevel{governance.AdminLevelProvincial, governance.AdminLevelCounty}
	refs := New(src).FindRelevantPolicies(context.Background(), "q", "", levels, 5)
	if diff := cmp.Diff([]string{"p2", "p3", "p4"}, policyIDs(refs)); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
	for _, r := range refs {
		if r.AdminLevel != governance.AdminLevelProvincial && r.AdminLevel != governance.AdminLevelCounty {
			t.Errorf("%s has level %s", r.PolicyID, r.AdminLevel)
		}
	}

	refs = New(src).FindRelevantPolicies(context.Background(), "q", "", nil, 2)
	if len(refs) != 2 {
		t.Errorf("expected 2 policies, got %d", len(refs))
	}
}

func TestProvisionExtraction(t *testing.T) {
	src := &stubSource{hits: []vector.ScoredEmbedding{
		policyHit("p", 1, map[string]any{"admin_level": "central"}),
	}}
	refs := New(src).FindRelevantPolicies(context.Background(), "q", "", nil, 1)
	ref := refs[0]
	if len(ref.KeyProvisions) != 2 {
		t.Errorf("key provisions = %v", ref.KeyProvisions)
	}
	if diff := cmp.Diff([]string{"各单位应当按照本办法开展生活垃圾分类工作。", "居民必须遵守分类投放规定。"}, ref.ComplianceRequirements); diff != "" {
		t.Errorf("requirements mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"建议建立积分激励机制推进分类。"}, ref.ImplementationGuidance); diff != "" {
		t.Errorf("guidance mismatch (-want +got):\n%s", diff)
	}
}

func TestRetrievalErrorYieldsEmpty(t *testing.T) {
	src := &stubSource{err: errors.New("index down")}
	refs := New(src).FindRelevantPolicies(context.Background(), "q", "广州市", nil, 3)
	if refs == nil || len(refs) != 0 {
		t.Errorf("expected empty slice, got %#v", refs)
	}
}

func TestInferLevel(t *testing.T) {
	inf := NewLevelInferrer(governance.AdminLevelCentral)
	tests := []struct {
		name string
		meta map[string]any
		want governance.AdminLevel
	}{
		{"enum", map[string]any{"admin_level": "county"}, governance.AdminLevelCounty},
		{"label", map[string]any{"admin_level": "市级"}, governance.AdminLevelMunicipal},
		{"directory tag", map[string]any{"admin_level": "05_街道级政策"}, governance.AdminLevelStreet},
		{"community tag", map[string]any{"admin_level": "街道社区"}, governance.AdminLevelStreet},
		{"district tag", map[string]any{"admin_level": "区县"}, governance.AdminLevelCounty},
		{"authority", map[string]any{"authority": "国务院办公厅"}, governance.AdminLevelCentral},
		{"region beats title order", map[string]any{"region": "广东省", "title": "广州市办法"}, governance.AdminLevelProvincial},
		{"street office", map[string]any{"authority": "石牌街道办事处"}, governance.AdminLevelStreet},
		{"unknown tag falls through", map[string]any{"admin_level": "misc", "title": "天河区通知"}, governance.AdminLevelCounty},
		{"nothing", map[string]any{"title": "关于做好工作的通知"}, governance.AdminLevelCentral},
		{"nil", nil, governance.AdminLevelCentral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inf.Infer(tt.meta); got != tt.want {
				t.Errorf("Infer() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := NewLevelInferrer(governance.AdminLevelStreet).Infer(nil); got != governance.AdminLevelStreet {
		t.Errorf("configured fallback ignored: %q", got)
	}
	if got := NewLevelInferrer("bogus").Infer(nil); got != governance.AdminLevelCentral {
		t.Errorf("invalid fallback should become central, got %q", got)
	}
}

func TestLocationTerms(t *testing.T) {
	tests := []struct {
		location string
		want     []string
	}{
		{"广州市天河区", []string{"广州市", "广州", "天河区", "天河"}},
		{"广东省广州市天河区石牌街道", []string{"广东省", "广东", "广州市", "广州", "天河区", "天河", "石牌街道", "石牌"}},
		{"广西壮族自治区南宁市", []string{"广西壮族自治区", "广西壮族", "南宁市", "南宁"}},
		{"Shenzhen Nanshan", []string{"shenzhen", "nanshan"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, LocationTerms(tt.location)); diff != "" {
				t.Errorf("LocationTerms mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPolicyHierarchy(t *testing.T) {
	tests := []struct {
		location string
		want     []governance.AdminLevel
	}{
		{"", []governance.AdminLevel{governance.AdminLevelCentral}},
		{"广东省", []governance.AdminLevel{governance.AdminLevelCentral, governance.AdminLevelProvincial}},
		{"广州市", []governance.AdminLevel{governance.AdminLevelCentral, governance.AdminLevelProvincial, governance.AdminLevelMunicipal}},
		{"广州市天河区", []governance.AdminLevel{governance.AdminLevelCentral, governance.AdminLevelProvincial, governance.AdminLevelMunicipal, governance.AdminLevelCounty}},
		{"石牌街道", governance.AdminLevels()},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, PolicyHierarchy(tt.location)); diff != "" {
				t.Errorf("PolicyHierarchy mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWeightedScoreMonotone(t *testing.T) {
	r := New(nil)
	levels := governance.AdminLevels()
	for i := 1; i < len(levels); i++ {
		hi := r.WeightedScore(0.5, levels[i-1], false)
		lo := r.WeightedScore(0.5, levels[i], false)
		if hi < lo {
			t.Errorf("%s (%v) should not score below %s (%v)", levels[i-1], hi, levels[i], lo)
		}
	}
	if r.WeightedScore(0.5, governance.AdminLevelCounty, true) < r.WeightedScore(0.5, governance.AdminLevelCounty, false) {
		t.Errorf("region boost must not lower the score")
	}

	custom := New(nil, WithLevelWeights(map[governance.AdminLevel]float64{governance.AdminLevelStreet: 2}), WithRegionBoost(0.5))
	if custom.LevelWeight(governance.AdminLevelStreet) != 2 {
		t.Errorf("custom weight not applied")
	}
	if got := custom.WeightedScore(1, governance.AdminLevelCentral, true); got != 1.25 {
		t.Errorf("boost below 1 should be ignored, got %v", got)
	}
}
