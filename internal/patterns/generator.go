package patterns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kairosjournal/kairos-backend/internal/ai"
	"github.com/kairosjournal/kairos-backend/internal/entries"
)

var (
	ErrInsufficientData = errors.New("not enough journal entries for analysis")
	ErrGenerationFailed = errors.New("both AI model tiers failed to generate patterns")
	ErrPersistence      = errors.New("failed to save generated patterns")
)

const (
	minEntriesForAnalysis = 7
	maxEntriesInPrompt    = 10
	minInsights           = 3
	maxInsights           = 5
)

// EntrySource supplies the most recent entries for a user, newest first.
type EntrySource interface {
	RecentEntries(userID uuid.UUID, limit int) ([]entries.Entry, error)
}

// InsightStore persists one generation run's output: evict the user's
// unacknowledged ai_insight rows, then insert the new batch.
type InsightStore interface {
	ReplaceUnacknowledged(userID uuid.UUID, insights []Insight) error
}

// GeneratorConfig selects the two model tiers and the primary deadline.
type GeneratorConfig struct {
	PrimaryModel   string
	FallbackModel  string
	PrimaryTimeout time.Duration
	MaxTokens      int
	Temperature    float64
}

// Result is one successful generation run.
type Result struct {
	Insights []Insight
	Tier     string
}

// Generator runs the two-tier pattern generation pipeline. All
// collaborators are injected; the generator holds no globals and is safe
// to share across requests.
type Generator struct {
	entries EntrySource
	store   InsightStore
	ai      ai.Completer
	cfg     GeneratorConfig
}

func NewGenerator(source EntrySource, store InsightStore, completer ai.Completer, cfg GeneratorConfig) *Generator {
	return &Generator{entries: source, store: store, ai: completer, cfg: cfg}
}

// Generate fetches recent entries, asks the primary model under a
// deadline, falls back to the secondary model on any primary failure,
// validates the output and persists it. Returns the insights plus the
// tier that produced them.
func (g *Generator) Generate(ctx context.Context, userID uuid.UUID) (*Result, error) {
	recent, err := g.entries.RecentEntries(userID, maxEntriesInPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journal entries: %w", err)
	}
	if len(recent) < minEntriesForAnalysis {
		return nil, ErrInsufficientData
	}

	userPrompt := BuildPrompt(recent)

	insights, err := g.primaryWithDeadline(ctx, userPrompt)
	tier := TierPrimary
	if err != nil {
		slog.Warn("primary model failed, falling back",
			"model", g.cfg.PrimaryModel, "user_id", userID, "error", err)

		insights, err = g.generateWithModel(ctx, g.cfg.FallbackModel, userPrompt)
		if err != nil {
			slog.Error("fallback model failed",
				"model", g.cfg.FallbackModel, "user_id", userID, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		tier = TierFallback
	}

	if err := g.store.ReplaceUnacknowledged(userID, insights); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	slog.Info("patterns generated", "user_id", userID, "tier", tier, "count", len(insights))
	return &Result{Insights: insights, Tier: tier}, nil
}

// primaryWithDeadline races the primary call against the configured
// deadline; whichever settles first wins. The losing call is not
// canceled: a late result lands in the buffered channel and is
// discarded with the run, so it can never be persisted twice. Because
// the loser can outlive the caller, ctx must not be tied to a request
// lifetime; handlers pass a detached context.
func (g *Generator) primaryWithDeadline(ctx context.Context, userPrompt string) ([]Insight, error) {
	type outcome struct {
		insights []Insight
		err      error
	}
	ch := make(chan outcome, 1)

	go func() {
		ins, err := g.generateWithModel(ctx, g.cfg.PrimaryModel, userPrompt)
		ch <- outcome{ins, err}
	}()

	timer := time.NewTimer(g.cfg.PrimaryTimeout)
	defer timer.Stop()

	select {
	case o := <-ch:
		return o.insights, o.err
	case <-timer.C:
		return nil, fmt.Errorf("primary model timed out after %s", g.cfg.PrimaryTimeout)
	}
}

func (g *Generator) generateWithModel(ctx context.Context, model, userPrompt string) ([]Insight, error) {
	raw, err := g.ai.Complete(ctx, model, analysisSystemPrompt, userPrompt, g.cfg.MaxTokens, g.cfg.Temperature)
	if err != nil {
		return nil, err
	}

	jsonText, err := ai.ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Patterns []Insight `json:"patterns"`
	}
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse AI response as JSON: %w", err)
	}

	return validateInsights(payload.Patterns)
}

// validateInsights enforces the expected shape: 3-5 insights, each with
// a non-empty title and description and enumerated confidence/category.
// Any mismatch is a generation failure routed into the fallback path,
// never a panic.
func validateInsights(list []Insight) ([]Insight, error) {
	if len(list) < minInsights || len(list) > maxInsights {
		return nil, fmt.Errorf("AI response contains %d patterns, want %d-%d", len(list), minInsights, maxInsights)
	}
	for i, in := range list {
		if in.Title == "" {
			return nil, fmt.Errorf("pattern %d has an empty title", i+1)
		}
		if in.Description == "" {
			return nil, fmt.Errorf("pattern %d has an empty description", i+1)
		}
		if !validConfidences[in.Confidence] {
			return nil, fmt.Errorf("pattern %d has invalid confidence %q", i+1, in.Confidence)
		}
		if !validCategories[in.Category] {
			return nil, fmt.Errorf("pattern %d has invalid category %q", i+1, in.Category)
		}
	}
	return list, nil
}
