// Package caseranker retrieves precedent cases for a problem and ranks them by
// normalized relevance.
package caseranker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/pkg/logging"
	"github.com/sweetpotato0/gov-allin/rag/relevance"
)

const (
	defaultOverFetch = 3
	defaultSource    = "case_library"

	maxMeasures   = 5
	maxFactors    = 3
	maxConditions = 3
)

var conditionKeywords = []string{
	"适用", "条件", "前提", "要求", "环境",
	"applicable", "condition", "prerequisite",
}

// Ranker finds similar cases in a case index.
type Ranker struct {
	source     relevance.Source
	normalizer *relevance.Normalizer
	overFetch  int
	logger     *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithNormalizer overrides the relevance normalizer.
func WithNormalizer(n *relevance.Normalizer) Option {
	return func(r *Ranker) {
		if n != nil {
			r.normalizer = n
		}
	}
}

// WithOverFetch sets how many candidates per requested result are fetched
// before category filtering.
func WithOverFetch(factor int) Option {
	return func(r *Ranker) {
		if factor > 0 {
			r.overFetch = factor
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Ranker over the given case index.
func New(source relevance.Source, opts ...Option) *Ranker {
	r := &Ranker{
		source:     source,
		normalizer: relevance.New(),
		overFetch:  defaultOverFetch,
		logger:     logging.WithComponent("caseranker"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// FindSimilarCases returns at most k cases ordered by descending relevance.
// When category is non-nil only cases of that category are kept. Retrieval
// errors are logged and yield an empty result.
func (r *Ranker) FindSimilarCases(ctx context.Context, description string, category *governance.Category, k int) []governance.CaseReference {
	if k <= 0 {
		return []governance.CaseReference{}
	}
	refs, err := r.find(ctx, description, category, k)
	if err != nil {
		r.logger.Error("case retrieval failed",
			"query", logging.Trim(description, 50),
			"error", err,
		)
		return []governance.CaseReference{}
	}
	return refs
}

func (r *Ranker) find(ctx context.Context, description string, category *governance.Category, k int) (refs []governance.CaseReference, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			refs, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()

	hits, strategy, err := r.normalizer.Query(ctx, r.source, description, k*r.overFetch)
	if err != nil {
		return nil, err
	}

	refs = make([]governance.CaseReference, 0, len(hits))
	for _, hit := range hits {
		cat := caseCategory(hit.Metadata)
		if category != nil && cat != *category {
			continue
		}
		refs = append(refs, toReference(hit, cat))
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Relevance > refs[j].Relevance
	})
	if len(refs) > k {
		refs = refs[:k]
	}

	r.logger.Debug("cases ranked",
		"strategy", strategy,
		"candidates", len(hits),
		"returned", len(refs),
	)
	return refs, nil
}

func toReference(hit relevance.Hit, cat governance.Category) governance.CaseReference {
	id := metaString(hit.Metadata, "case_id")
	if id == "" {
		id = hit.ID
	}
	title := metaString(hit.Metadata, "title")
	if title == "" {
		title = "未知案例"
	}
	source := metaString(hit.Metadata, "source")
	if source == "" {
		source = defaultSource
	}
	return governance.CaseReference{
		CaseID:               id,
		Title:                title,
		Category:             cat,
		Relevance:            hit.Relevance,
		KeyMeasures:          splitField(metaString(hit.Metadata, "measures"), maxMeasures),
		SuccessFactors:       splitField(metaString(hit.Metadata, "success_factors"), maxFactors),
		ApplicableConditions: ApplicableConditions(hit.Text),
		Source:               source,
	}
}

// caseCategory reads problem_type, falling back to category. Unknown names map to other.
func caseCategory(meta map[string]any) governance.Category {
	for _, key := range []string{"problem_type", "category"} {
		if c, ok := governance.ParseCategory(metaString(meta, key)); ok {
			return c
		}
	}
	return governance.CategoryOther
}

// ApplicableConditions returns up to three content lines that describe when a
// case applies.
func ApplicableConditions(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lowered := strings.ToLower(line)
		for _, k := range conditionKeywords {
			if strings.Contains(lowered, k) {
				out = append(out, line)
				break
			}
		}
		if len(out) == maxConditions {
			break
		}
	}
	return out
}

func splitField(value string, limit int) []string {
	var out []string
	for _, part := range strings.Split(value, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	switch v := meta[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
