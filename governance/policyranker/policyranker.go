// Package policyranker retrieves policy documents and re-ranks them by legal
// authority and regional match.
package policyranker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/pkg/logging"
	"github.com/sweetpotato0/gov-allin/rag/relevance"
)

const (
	defaultOverFetch   = 3
	defaultRegionBoost = 1.25
	defaultSource      = "policy_library"
)

// DefaultLevelWeights returns the authority multiplier per admin level.
func DefaultLevelWeights() map[governance.AdminLevel]float64 {
	return map[governance.AdminLevel]float64{
		governance.AdminLevelCentral:    1.0,
		governance.AdminLevelProvincial: 0.8,
		governance.AdminLevelMunicipal:  0.6,
		governance.AdminLevelCounty:     0.4,
		governance.AdminLevelStreet:     0.2,
	}
}

// Ranker finds policies in a policy index.
type Ranker struct {
	source       relevance.Source
	normalizer   *relevance.Normalizer
	inferrer     *LevelInferrer
	levelWeights map[governance.AdminLevel]float64
	regionBoost  float64
	overFetch    int
	logger       *slog.Logger
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

// WithLevelWeights overrides weights for the given levels. Negative or
// non-finite weights are ignored.
func WithLevelWeights(weights map[governance.AdminLevel]float64) Option {
	return func(r *Ranker) {
		for level, w := range weights {
			if level.Valid() && w >= 0 && !math.IsInf(w, 0) && !math.IsNaN(w) {
				r.levelWeights[level] = w
			}
		}
	}
}

// WithRegionBoost sets the multiplier applied on a regional match. Values
// below 1 are ignored.
func WithRegionBoost(boost float64) Option {
	return func(r *Ranker) {
		if boost >= 1 && !math.IsInf(boost, 0) {
			r.regionBoost = boost
		}
	}
}

// WithDefaultLevel sets the level used when inference finds nothing.
func WithDefaultLevel(level governance.AdminLevel) Option {
	return func(r *Ranker) {
		r.inferrer = NewLevelInferrer(level)
	}
}

// WithOverFetch sets how many candidates per requested result are fetched.
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

// New creates a Ranker over the given policy index.
func New(source relevance.Source, opts ...Option) *Ranker {
	r := &Ranker{
		source:       source,
		normalizer:   relevance.New(),
		inferrer:     NewLevelInferrer(governance.AdminLevelCentral),
		levelWeights: DefaultLevelWeights(),
		regionBoost:  defaultRegionBoost,
		overFetch:    defaultOverFetch,
		logger:       logging.WithComponent("policyranker"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// LevelWeight returns the multiplier for a level.
func (r *Ranker) LevelWeight(level governance.AdminLevel) float64 {
	return r.levelWeights[level]
}

// WeightedScore combines a normalized relevance with the level weight and the
// region boost when regionMatch is set.
func (r *Ranker) WeightedScore(rel float64, level governance.AdminLevel, regionMatch bool) float64 {
	score := relevance.FromRelevance(rel) * r.LevelWeight(level)
	if regionMatch {
		score *= r.regionBoost
	}
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0
	}
	return score
}

// FindRelevantPolicies returns at most k policies ordered by descending
// weighted score. A non-empty levels slice keeps only documents of those
// levels. Retrieval errors are logged and yield an empty result.
func (r *Ranker) FindRelevantPolicies(ctx context.Context, description, location string, levels []governance.AdminLevel, k int) []governance.PolicyReference {
	if k <= 0 {
		return []governance.PolicyReference{}
	}
	refs, err := r.find(ctx, description, location, levels, k)
	if err != nil {
		r.logger.Error("policy retrieval failed",
			"query", logging.Trim(description, 50),
			"location", location,
			"error", err,
		)
		return []governance.PolicyReference{}
	}
	return refs
}

func (r *Ranker) find(ctx context.Context, description, location string, levels []governance.AdminLevel, k int) (refs []governance.PolicyReference, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			refs, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()

	query := strings.TrimSpace(description + " " + location)
	hits, strategy, err := r.normalizer.Query(ctx, r.source, query, k*r.overFetch)
	if err != nil {
		return nil, err
	}

	var allowed map[governance.AdminLevel]bool
	if len(levels) > 0 {
		allowed = make(map[governance.AdminLevel]bool, len(levels))
		for _, l := range levels {
			allowed[l] = true
		}
	}
	terms := LocationTerms(location)

	refs = make([]governance.PolicyReference, 0, len(hits))
	for _, hit := range hits {
		level := r.inferrer.Infer(hit.Metadata)
		if allowed != nil && !allowed[level] {
			continue
		}
		region := metaString(hit.Metadata, "region")
		title := metaString(hit.Metadata, "title")
		score := r.WeightedScore(hit.Relevance, level, regionMatches(terms, region, title))
		refs = append(refs, toReference(hit, level, region, title, score))
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Relevance > refs[j].Relevance
	})
	if len(refs) > k {
		refs = refs[:k]
	}

	r.logger.Debug("policies ranked",
		"strategy", strategy,
		"location_terms", terms,
		"candidates", len(hits),
		"returned", len(refs),
	)
	return refs, nil
}

func regionMatches(terms []string, region, title string) bool {
	haystack := strings.ToLower(region + " " + title)
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}

func toReference(hit relevance.Hit, level governance.AdminLevel, region, title string, score float64) governance.PolicyReference {
	id := metaString(hit.Metadata, "policy_id")
	if id == "" {
		id = hit.ID
	}
	if title == "" {
		title = "未知政策"
	}
	source := metaString(hit.Metadata, "source")
	if source == "" {
		source = defaultSource
	}
	return governance.PolicyReference{
		PolicyID:               id,
		Title:                  title,
		AdminLevel:             level,
		Region:                 region,
		Relevance:              score,
		KeyProvisions:          KeyProvisions(hit.Text),
		ComplianceRequirements: ComplianceRequirements(hit.Text),
		ImplementationGuidance: ImplementationGuidance(hit.Text),
		Source:                 source,
	}
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
