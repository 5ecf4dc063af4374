// Package pipeline turns a free-form app identifier into a structured list
// of unmet-need themes: normalize the identifier, page through the public
// review feed, pack the review text under a token budget, send one
// completion request, and validate the model's JSON.
package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marktron/app-gaps/internal/apperr"
	"github.com/marktron/app-gaps/internal/config"
	"github.com/marktron/app-gaps/internal/model"
	"github.com/marktron/app-gaps/pkg/anthropic"
	"github.com/marktron/app-gaps/pkg/appstore"
)

// Analyzer orchestrates one analysis run. Construct it once per process
// and reuse it across requests; it holds no per-request state.
type Analyzer struct {
	cfg     *config.Config
	store   appstore.Client
	llm     anthropic.Client
	fetcher *Fetcher
}

// New creates an Analyzer with all dependencies.
func New(cfg *config.Config, store appstore.Client, llm anthropic.Client) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		store:   store,
		llm:     llm,
		fetcher: NewFetcher(store, cfg.AppStore),
	}
}

// Run executes the full pipeline for one raw identifier-or-URL input.
func (a *Analyzer) Run(ctx context.Context, input string) (*model.Report, error) {
	appID, err := ExtractAppID(input)
	if err != nil {
		return nil, err
	}

	// Fail fast on missing credentials before touching the network.
	if a.cfg.Anthropic.Key == "" {
		return nil, apperr.Validation("anthropic API key is not configured")
	}

	log := zap.L().With(zap.String("app_id", appID))
	log.Info("analysis starting")

	var (
		reviews []appstore.Review
		info    *appstore.AppInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reviews = a.fetcher.FetchAll(gctx, appID)
		return nil
	})
	g.Go(func() error {
		// Metadata is decoration; any failure degrades to no info.
		lookup, lookupErr := a.store.Lookup(gctx, appID)
		if lookupErr != nil {
			log.Warn("app lookup failed, continuing without metadata", zap.Error(lookupErr))
			return nil
		}
		info = lookup
		return nil
	})
	_ = g.Wait()

	blocks := Reduce(reviews, a.cfg.Reducer)
	log.Info("reviews reduced",
		zap.Int("fetched", len(reviews)),
		zap.Int("kept", len(blocks)),
	)

	system, user := BuildPrompt(blocks)

	temp := a.cfg.Anthropic.Temperature
	resp, err := a.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.cfg.Anthropic.Model,
		MaxTokens:   a.cfg.Anthropic.MaxTokens,
		System:      system,
		Messages:    []anthropic.Message{{Role: "user", Content: user}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, apperr.Upstream(err, "analysis service unavailable")
	}
	resp.Usage.LogCost(a.cfg.Anthropic.Model, "analyze")

	analysis, err := ParseAnalysis(extractText(resp))
	if err != nil {
		return nil, err
	}

	log.Info("analysis complete", zap.Int("themes", len(analysis.Themes)))
	return &model.Report{
		AppID:          appID,
		AppInfo:        info,
		AnalysisResult: *analysis,
	}, nil
}
