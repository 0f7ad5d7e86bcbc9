package services

import (
	"bytes"
	"context"
	"html/template"
	"rally-metrics-go/logging"
	"rally-metrics-go/models"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"golang.org/x/sync/singleflight"
)

var _ SummaryRepository = (*MemorySummaryRepository)(nil)

const (
	SummaryFailedText = "Failed to load summary."
	SummaryEmptyText  = "No summary available."
)

// SummaryRepository persists player summaries keyed by normalized player name
type SummaryRepository interface {
	GetSummary(ctx context.Context, key string) (*models.Summary, error)
	SaveSummary(ctx context.Context, key string, summary *models.Summary) error
	PurgeSummaries(ctx context.Context) error
}

// SummaryFetcher is the subset of PlayerService the summary cache needs
type SummaryFetcher interface {
	GetSummary(ctx context.Context, playerName string) (string, error)
}

// SummaryService lazily fetches and caches player summaries
type SummaryService struct {
	fetcher      SummaryFetcher
	repo         SummaryRepository
	ttl          time.Duration
	fetchTimeout time.Duration
	group        singleflight.Group
	logger       *logging.Logger
	now          func() time.Time
}

// NewSummaryService creates a new summary service
func NewSummaryService(fetcher SummaryFetcher, repo SummaryRepository, ttl time.Duration) *SummaryService {
	return &SummaryService{
		fetcher:      fetcher,
		repo:         repo,
		ttl:          ttl,
		fetchTimeout: 30 * time.Second,
		logger:       logging.WithPrefix("SummaryService"),
		now:          time.Now,
	}
}

// GetSummary returns the cached summary for playerName, fetching it on a miss.
// It never fails: fetch errors yield SummaryFailedText, which is not cached,
// so the next request retries. Concurrent misses for the same player share
// one fetch; a caller whose ctx ends stops waiting without failing the rest.
func (s *SummaryService) GetSummary(ctx context.Context, playerName string) string {
	key := models.SummaryKey(playerName)
	if key == "" {
		return SummaryEmptyText
	}

	if text, ok := s.cached(ctx, key); ok {
		return text
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		// shared by every waiting caller, so it outlives any single request
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		return s.fetch(fetchCtx, key, playerName)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debugf("Coalesced summary fetch for %q", playerName)
		}
		if res.Err != nil {
			s.logger.Errorf("Failed to fetch summary for %q: %v", playerName, res.Err)
			return SummaryFailedText
		}
		if text := res.Val.(string); text != "" {
			return text
		}
		return SummaryEmptyText
	case <-ctx.Done():
		s.logger.Debugf("Stopped waiting for summary of %q: %v", playerName, ctx.Err())
		return SummaryFailedText
	}
}

// cached returns a fresh stored summary
func (s *SummaryService) cached(ctx context.Context, key string) (string, bool) {
	summary, err := s.repo.GetSummary(ctx, key)
	if err != nil {
		s.logger.Warnf("Summary lookup for %q failed: %v", key, err)
		return "", false
	}
	if summary == nil || summary.IsExpired(s.ttl, s.now()) {
		return "", false
	}
	return summary.Text, true
}

// fetch loads a summary from the API and stores it. An empty result is
// returned as "" and not stored.
func (s *SummaryService) fetch(ctx context.Context, key, playerName string) (string, error) {
	// another flight may have stored it after our first lookup
	if text, ok := s.cached(ctx, key); ok {
		return text, nil
	}

	text, err := s.fetcher.GetSummary(ctx, playerName)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	summary := &models.Summary{Key: key, PlayerName: playerName, Text: text, FetchedAt: s.now()}
	if err := s.repo.SaveSummary(ctx, key, summary); err != nil {
		s.logger.Warnf("Failed to cache summary for %q: %v", playerName, err)
	}
	return text, nil
}

// Purge drops every cached summary
func (s *SummaryService) Purge(ctx context.Context) error {
	return s.repo.PurgeSummaries(ctx)
}

var summaryRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
		renderer.WithNodeRenderers(util.Prioritized(escapedHTMLRenderer{}, 100)),
	),
)

// escapedHTMLRenderer prints raw HTML found in summaries as text instead of
// dropping it
type escapedHTMLRenderer struct{}

func (escapedHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindRawHTML, renderEscapedRawHTML)
	reg.Register(ast.KindHTMLBlock, renderEscapedHTMLBlock)
}

func renderEscapedRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	segments := node.(*ast.RawHTML).Segments
	for i := 0; i < segments.Len(); i++ {
		segment := segments.At(i)
		_, _ = w.Write(util.EscapeHTML(segment.Value(source)))
	}
	return ast.WalkSkipChildren, nil
}

func renderEscapedHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.HTMLBlock)
	if entering {
		_, _ = w.WriteString("<p>")
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			_, _ = w.Write(util.EscapeHTML(line.Value(source)))
		}
		return ast.WalkContinue, nil
	}
	if n.HasClosure() {
		_, _ = w.Write(util.EscapeHTML(n.ClosureLine.Value(source)))
	}
	_, _ = w.WriteString("</p>\n")
	return ast.WalkContinue, nil
}

// RenderSummaryHTML converts summary text (plain text or markdown) to safe HTML.
// Raw HTML in the input is shown escaped.
func RenderSummaryHTML(text string) template.HTML {
	var buf bytes.Buffer
	if err := summaryRenderer.Convert([]byte(text), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(text) + "</p>")
	}
	return template.HTML(buf.String())
}

// MemorySummaryRepository keeps summaries in process memory
type MemorySummaryRepository struct {
	mu        sync.RWMutex
	summaries map[string]models.Summary
}

// NewMemorySummaryRepository creates an empty in-memory repository
func NewMemorySummaryRepository() *MemorySummaryRepository {
	return &MemorySummaryRepository{summaries: make(map[string]models.Summary)}
}

// GetSummary returns the stored summary or nil
func (r *MemorySummaryRepository) GetSummary(_ context.Context, key string) (*models.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.summaries[key]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// SaveSummary stores or replaces a summary
func (r *MemorySummaryRepository) SaveSummary(_ context.Context, key string, summary *models.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries[key] = *summary
	return nil
}

// PurgeSummaries drops all summaries
func (r *MemorySummaryRepository) PurgeSummaries(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = make(map[string]models.Summary)
	return nil
}
