package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sweetpotato0/gov-allin/pkg/logging"
	"github.com/sweetpotato0/gov-allin/rag/chunking"
	"github.com/sweetpotato0/gov-allin/rag/document"
	"github.com/sweetpotato0/gov-allin/rag/preprocess"
)

const (
	maxCaseContentRunes = 6000
	defaultCaseSource   = "case_library"
)

// Indexer receives the full document set on every load.
type Indexer interface {
	Rebuild(ctx context.Context, docs []document.Document) error
}

// Stats summarizes a load.
type Stats struct {
	Cases          int
	Policies       int
	PolicyChunks   int
	SkippedRecords int
}

// Builder turns store records into case and policy index documents.
type Builder struct {
	cases    Indexer
	policies Indexer
	chunker  chunking.Chunker
	logger   *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithChunker replaces the policy chunker.
func WithChunker(c chunking.Chunker) BuilderOption {
	return func(b *Builder) {
		if c != nil {
			b.chunker = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder. Either index may be nil to skip that corpus.
func NewBuilder(cases, policies Indexer, opts ...BuilderOption) *Builder {
	b := &Builder{
		cases:    cases,
		policies: policies,
		chunker:  chunking.NewWindowChunker(),
		logger:   logging.WithComponent("knowledge"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Load reads every record from store and rebuilds both indexes.
func (b *Builder) Load(ctx context.Context, store DocumentStore) (Stats, error) {
	var stats Stats

	if b.cases != nil {
		recs, err := store.Cases(ctx)
		if err != nil {
			return stats, fmt.Errorf("load cases: %w", err)
		}
		docs := make([]document.Document, 0, len(recs))
		for _, rec := range recs {
			if strings.TrimSpace(rec.Title) == "" && strings.TrimSpace(rec.Problem) == "" {
				stats.SkippedRecords++
				b.logger.Warn("skipping empty case record", "case_id", rec.ID)
				continue
			}
			docs = append(docs, CaseDocument(rec))
		}
		if err := b.cases.Rebuild(ctx, docs); err != nil {
			return stats, fmt.Errorf("index cases: %w", err)
		}
		stats.Cases = len(docs)
	}

	if b.policies != nil {
		recs, err := store.Policies(ctx)
		if err != nil {
			return stats, fmt.Errorf("load policies: %w", err)
		}
		var docs []document.Document
		for _, rec := range recs {
			chunks, err := PolicyDocuments(ctx, b.chunker, rec)
			if err != nil {
				return stats, fmt.Errorf("chunk policy %s: %w", rec.ID, err)
			}
			if len(chunks) == 0 {
				stats.SkippedRecords++
				b.logger.Warn("skipping empty policy record", "policy_id", rec.ID)
				continue
			}
			docs = append(docs, chunks...)
			stats.Policies++
		}
		if err := b.policies.Rebuild(ctx, docs); err != nil {
			return stats, fmt.Errorf("index policies: %w", err)
		}
		stats.PolicyChunks = len(docs)
	}

	b.logger.Info("knowledge base loaded",
		"cases", stats.Cases,
		"policies", stats.Policies,
		"policy_chunks", stats.PolicyChunks,
		"skipped", stats.SkippedRecords,
	)
	return stats, nil
}

// CaseDocument formats a case record as one index document.
func CaseDocument(rec CaseRecord) document.Document {
	var parts []string
	if rec.Title != "" {
		parts = append(parts, "案例标题: "+rec.Title)
	}
	if rec.Problem != "" {
		parts = append(parts, "问题描述: "+rec.Problem)
	}
	if rec.Category != "" {
		parts = append(parts, "涉及领域: "+rec.Category)
	}
	if len(rec.Steps) > 0 {
		lines := make([]string, len(rec.Steps))
		for i, s := range rec.Steps {
			lines[i] = fmt.Sprintf("%d. %s", i+1, s)
		}
		parts = append(parts, "解决步骤:\n"+strings.Join(lines, "\n"))
	}
	if rec.Result != "" {
		parts = append(parts, "处理结果: "+rec.Result)
	}
	if rec.Reflection != "" {
		parts = append(parts, "经验总结: "+rec.Reflection)
	}
	if len(rec.Keywords) > 0 {
		parts = append(parts, "关键词: "+strings.Join(rec.Keywords, ", "))
	}

	source := rec.Source
	if source == "" {
		source = defaultCaseSource
	}
	return document.Document{
		ID:      rec.ID,
		Title:   rec.Title,
		Content: truncateRunes(strings.Join(parts, "\n\n"), maxCaseContentRunes),
		Metadata: map[string]any{
			"case_id":         rec.ID,
			"title":           rec.Title,
			"category":        rec.Category,
			"problem_type":    rec.Category,
			"source":          source,
			"keywords":        strings.Join(rec.Keywords, ", "),
			"success_factors": strings.Join(reflectionFactors(rec.Reflection), "; "),
			"measures":        strings.Join(rec.Steps, "; "),
			"type":            "case",
		},
	}
}

// reflectionFactors splits a lessons-learned sentence into its clauses.
func reflectionFactors(reflection string) []string {
	fields := strings.FieldsFunc(reflection, func(r rune) bool {
		return r == '，' || r == ',' || r == '、' || r == '。' || r == '；' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// PolicyDocuments cleans a policy body and splits it into chunk documents that
// share the policy metadata.
func PolicyDocuments(ctx context.Context, chunker chunking.Chunker, rec PolicyRecord) ([]document.Document, error) {
	body := preprocess.Preprocess(rec.Content)
	if body == "" {
		return nil, nil
	}
	source := rec.Source
	if source == "" {
		source = rec.ID
	}
	meta := map[string]any{
		"policy_id":   rec.ID,
		"title":       rec.Title,
		"admin_level": rec.AdminLevel,
		"region":      rec.Region,
		"authority":   rec.Authority,
		"source":      source,
		"type":        "policy",
	}
	if rec.Year > 0 {
		meta["year"] = rec.Year
	}

	doc := document.Document{ID: rec.ID, Title: rec.Title, Content: body, Metadata: meta}
	document.EnsureDocumentID(&doc)
	chunks, err := chunker.Chunk(ctx, doc)
	if err != nil {
		return nil, err
	}
	out := make([]document.Document, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		out = append(out, document.Document{
			ID:       c.ID,
			Title:    rec.Title,
			Content:  c.Content,
			Metadata: c.Metadata,
		})
	}
	return out, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
