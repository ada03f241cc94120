package patterns

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kairosjournal/kairos-backend/internal/entries"
)

// --- fakes ---

type fakeEntrySource struct {
	entries []entries.Entry
	err     error
}

func (f *fakeEntrySource) RecentEntries(userID uuid.UUID, limit int) ([]entries.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

type storedRow struct {
	insight Insight
	acked   bool
}

type fakeStore struct {
	mu    sync.Mutex
	rows  []storedRow
	calls int
	err   error
}

func (f *fakeStore) ReplaceUnacknowledged(userID uuid.UUID, insights []Insight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.acked {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	for _, in := range insights {
		f.rows = append(f.rows, storedRow{insight: in})
	}
	return nil
}

func (f *fakeStore) unacked() []Insight {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Insight
	for _, r := range f.rows {
		if !r.acked {
			out = append(out, r.insight)
		}
	}
	return out
}

type modelBehavior struct {
	response string
	err      error
	delay    time.Duration
}

type fakeCompleter struct {
	mu       sync.Mutex
	behavior map[string]modelBehavior
	calls    map[string]int
	lastCtx  context.Context
}

func newFakeCompleter() *fakeCompleter {
	return &fakeCompleter{
		behavior: make(map[string]modelBehavior),
		calls:    make(map[string]int),
	}
}

func (f *fakeCompleter) Complete(ctx context.Context, model, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	f.mu.Lock()
	f.calls[model]++
	f.lastCtx = ctx
	b := f.behavior[model]
	f.mu.Unlock()

	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	return b.response, b.err
}

func (f *fakeCompleter) callCount(model string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[model]
}

func (f *fakeCompleter) capturedCtx() context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCtx
}

// --- helpers ---

func validInsightJSON(n int, label string) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(
			`{"title":"%s insight %d","description":"Something noteworthy about the writing.","confidence":"high","category":"emotional"}`,
			label, i+1))
	}
	return `{"patterns":[` + strings.Join(items, ",") + `]}`
}

func journalEntries(n int) []entries.Entry {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	list := make([]entries.Entry, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, entries.Entry{
			ID:        uuid.New(),
			EntryText: fmt.Sprintf("day %d notes", n-i),
			CreatedAt: now.AddDate(0, 0, -i),
		})
	}
	return list
}

func testConfig(timeout time.Duration) GeneratorConfig {
	return GeneratorConfig{
		PrimaryModel:   "primary-model",
		FallbackModel:  "fallback-model",
		PrimaryTimeout: timeout,
		MaxTokens:      2048,
		Temperature:    0.7,
	}
}

// --- tests ---

func TestGenerate_InsufficientEntries_NoAICall(t *testing.T) {
	completer := newFakeCompleter()
	store := &fakeStore{}
	g := NewGenerator(&fakeEntrySource{entries: journalEntries(5)}, store, completer, testConfig(time.Second))

	_, err := g.Generate(context.Background(), uuid.New())
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("got %v, want ErrInsufficientData", err)
	}
	if completer.callCount("primary-model") != 0 || completer.callCount("fallback-model") != 0 {
		t.Fatal("no AI call should be made with insufficient data")
	}
	if store.calls != 0 {
		t.Fatal("nothing should be persisted")
	}
}

func TestGenerate_PrimarySucceeds_FallbackNeverInvoked(t *testing.T) {
	completer := newFakeCompleter()
	completer.behavior["primary-model"] = modelBehavior{response: validInsightJSON(3, "primary")}
	store := &fakeStore{}
	g := NewGenerator(&fakeEntrySource{entries: journalEntries(8)}, store, completer, testConfig(time.Second))

	result, err := g.Generate(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if result.Tier != TierPrimary {
		t.Fatalf("got tier %q, want %q", result.Tier, TierPrimary)
	}
	if len(result.Insights) != 3 {
		t.Fatalf("got %d insights, want 3", len(result.Insights))
	}
	if completer.callCount("fallback-model") != 0 {
		t.Fatal("fallback must not be invoked when primary succeeds")
	}
	if got := store.unacked(); len(got) != 3 {
		t.Fatalf("store holds %d unacknowledged insights, want 3", len(got))
	}
}

func TestGenerate_PrimaryTimesOut_FallbackResultPersisted(t *testing.T) {
	completer := newFakeCompleter()
	completer.behavior["primary-model"] = modelBehavior{
		response: validInsightJSON(3, "primary"),
		delay:    200 * time.Millisecond,
	}
	completer.behavior["fallback-model"] = modelBehavior{response: validInsightJSON(3, "fallback")}
	store := &fakeStore{}
	g := NewGenerator(&fakeEntrySource{entries: journalEntries(8)}, store, completer, testConfig(10*time.Millisecond))

	result, err := g.Generate(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if result.Tier != TierFallback {
		t.Fatalf("got tier %q, want %q", result.Tier, TierFallback)
	}
	if n := completer.callCount("fallback-model"); n != 1 {
		t.Fatalf("fallback invoked %d times, want 1", n)
	}
	for _, in := range store.unacked() {
		if !strings.HasPrefix(in.Title, "fallback") {
			t.Fatalf("persisted insight %q did not come from the fallback tier", in.Title)
		}
	}
}

func TestGenerate_MalformedPrimaryOutput_TriggersFallback(t *testing.T) {
	malformed := []string{
		"no json at all",
		`{"patterns": "not an array"}`,
		validInsightJSON(2, "primary"), // too few
		validInsightJSON(6, "primary"), // too many
		`{"patterns":[{"title":"","description":"d","confidence":"high","category":"emotional"},{"title":"b","description":"d","confidence":"high","category":"emotional"},{"title":"c","description":"d","confidence":"high","category":"emotional"}]}`,
		`{"patterns":[{"title":"a","description":"d","confidence":"huge","category":"emotional"},{"title":"b","description":"d","confidence":"high","category":"emotional"},{"title":"c","description":"d","confidence":"high","category":"emotional"}]}`,
		`{"patterns":[{"title":"a","description":"d","confidence":"high","category":"astral"},{"title":"b","description":"d","confidence":"high","category":"emotional"},{"title":"c","description":"d","confidence":"high","category":"emotional"}]}`,
	}

	for _, bad := range malformed {
		completer := newFakeCompleter()
		completer.behavior["primary-model"] = modelBehavior{response: bad}
		completer.behavior["fallback-model"] = modelBehavior{response: validInsightJSON(4, "fallback")}
		store := &fakeStore{}
		g := NewGenerator(&fakeEntrySource{entries: journalEntries(8)}, store, completer, testConfig(time.Second))

		result, err := g.Generate(context.Background(), uuid.New())
		if err != nil {
			t.Fatalf("primary output %q: unexpected error %v", bad, err)
		}
		if result.Tier != TierFallback {
			t.Fatalf("primary output %q: got tier %q, want fallback", bad, result.Tier)
		}
		if n := completer.callCount("fallback-model"); n != 1 {
			t.Fatalf("primary output %q: fallback invoked %d times, want 1", bad, n)
		}
	}
}

func TestGenerate_BothTiersFail(t *testing.T) {
	completer := newFakeCompleter()
	completer.behavior["primary-model"] = modelBehavior{err: errors.New("upstream 503")}
	completer.behavior["fallback-model"] = modelBehavior{err: errors.New("upstream 503")}
	store := &fakeStore{}
	g := NewGenerator(&fakeEntrySource{entries: journalEntries(8)}, store, completer, testConfig(time.Second))

	_, err := g.Generate(context.Background(), uuid.New())
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("got %v, want ErrGenerationFailed", err)
	}
	if store.calls != 0 {
		t.Fatal("nothing should be persisted when both tiers fail")
	}
}

func TestGenerate_PersistenceFailureSurfaced(t *testing.T) {
	completer := newFakeCompleter()
	completer.behavior["primary-model"] = modelBehavior{response: validInsightJSON(3, "primary")}
	store := &fakeStore{err: errors.New("connection reset")}
	g := NewGenerator(&fakeEntrySource{entries: journalEntries(8)}, store, completer, testConfig(time.Second))

	_, err := g.Generate(context.Background(), uuid.New())
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("got %v, want ErrPersistence", err)
	}
}

func TestGenerate_RegenerationReplacesUnacknowledged(t *testing.T) {
	completer := newFakeCompleter()
	completer.behavior["primary-model"] = modelBehavior{response: validInsightJSON(3, "first")}
	store := &fakeStore{}
	g := NewGenerator(&fakeEntrySource{entries: journalEntries(8)}, store, completer, testConfig(time.Second))
	userID := uuid.New()

	if _, err := g.Generate(context.Background(), userID); err != nil {
		t.Fatal(err)
	}

	// User acknowledges one insight; it must survive regeneration.
	store.rows[0].acked = true

	completer.behavior["primary-model"] = modelBehavior{response: validInsightJSON(4, "second")}
	if _, err := g.Generate(context.Background(), userID); err != nil {
		t.Fatal(err)
	}

	unacked := store.unacked()
	if len(unacked) != 4 {
		t.Fatalf("got %d unacknowledged insights after regeneration, want 4", len(unacked))
	}
	for _, in := range unacked {
		if !strings.HasPrefix(in.Title, "second") {
			t.Fatalf("stale unacknowledged insight survived: %q", in.Title)
		}
	}
}
