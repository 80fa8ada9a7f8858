package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sweetpotato0/gov-allin/rag/chunking"
	"github.com/sweetpotato0/gov-allin/rag/document"
)

type recordingIndexer struct {
	docs []document.Document
}

func (r *recordingIndexer) Rebuild(_ context.Context, docs []document.Document) error {
	r.docs = docs
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileStoreFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[{"id":"c1","title":"停车难","category":"停车管理","steps":["调研","规划"]}]`)
	writeFile(t, dir, "b.yaml", "title: 垃圾分类\ncategory: 环境治理\nsteps: 宣传；督导\nkeywords: [分类, 宣传]\n")
	writeFile(t, dir, "c.json", `{"x":{"id":"c9","title":"噪音"},"a":{"id":"c8","title":"调解"}}`)
	writeFile(t, dir, "notes.txt", "ignored")

	recs, err := NewFileStore([]string{dir}, nil).Cases(context.Background())
	if err != nil {
		t.Fatalf("Cases() error = %v", err)
	}

	var titles []string
	for _, r := range recs {
		titles = append(titles, r.Title)
	}
	if diff := cmp.Diff([]string{"停车难", "垃圾分类", "调解", "噪音"}, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(StringList{"宣传", "督导"}, recs[1].Steps); diff != "" {
		t.Errorf("scalar steps not split (-want +got):\n%s", diff)
	}
	if recs[1].ID == "" {
		t.Errorf("missing ids should be assigned")
	}
}

func TestFileStoreMissingPath(t *testing.T) {
	_, err := NewFileStore(nil, []string{"/does/not/exist.json"}).Policies(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCaseDocument(t *testing.T) {
	doc := CaseDocument(SampleCases()[0])

	if doc.ID != "case_001" {
		t.Errorf("ID = %q", doc.ID)
	}
	for _, want := range []string{"案例标题: 邻里纠纷调解成功案例", "解决步骤:\n1. 及时介入", "关键词: 邻里纠纷, 装修噪音"} {
		if !strings.Contains(doc.Content, want) {
			t.Errorf("content missing %q", want)
		}
	}
	if doc.Metadata["problem_type"] != "邻里纠纷" || doc.Metadata["source"] != defaultCaseSource {
		t.Errorf("unexpected metadata %v", doc.Metadata)
	}
	measures := strings.Split(document.MetaString(doc.Metadata, "measures"), "; ")
	if len(measures) != 5 {
		t.Errorf("expected 5 measures, got %d", len(measures))
	}
	if !strings.Contains(document.MetaString(doc.Metadata, "success_factors"), "耐心倾听") {
		t.Errorf("success factors not derived from reflection: %v", doc.Metadata["success_factors"])
	}
}

func TestCaseDocumentTruncatesLongContent(t *testing.T) {
	rec := CaseRecord{ID: "long", Title: "t", Problem: strings.Repeat("问", 7000)}
	if n := len([]rune(CaseDocument(rec).Content)); n != maxCaseContentRunes {
		t.Errorf("content length = %d runes", n)
	}
}

func TestBuilderLoad(t *testing.T) {
	cases, policies := &recordingIndexer{}, &recordingIndexer{}
	store := SampleStore()
	store.CaseRecords = append(store.CaseRecords, CaseRecord{ID: "empty"})
	store.PolicyRecords = append(store.PolicyRecords, PolicyRecord{
		ID:      "html",
		Title:   "网页政策",
		Content: "<html><body><p>第一条 应当依法办理。</p><p>打印本页</p></body></html>",
	})

	b := NewBuilder(cases, policies, WithChunker(chunking.NewWindowChunker(chunking.WithChunkSize(60), chunking.WithOverlap(10))))
	stats, err := b.Load(context.Background(), store)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if stats.Cases != 5 || stats.SkippedRecords != 1 || stats.Policies != 6 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if len(cases.docs) != 5 || len(policies.docs) != stats.PolicyChunks {
		t.Errorf("indexers received %d cases / %d policy chunks", len(cases.docs), len(policies.docs))
	}

	var html *document.Document
	for i := range policies.docs {
		if policies.docs[i].Metadata["policy_id"] == "html" {
			html = &policies.docs[i]
		}
	}
	if html == nil {
		t.Fatal("html policy not indexed")
	}
	if strings.Contains(html.Content, "<p>") || strings.Contains(html.Content, "打印本页") {
		t.Errorf("policy body not cleaned: %q", html.Content)
	}
	if html.Metadata["chunk_index"] != 0 {
		t.Errorf("chunk index missing: %v", html.Metadata)
	}
}
