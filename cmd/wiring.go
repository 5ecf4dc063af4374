package main

import (
	"github.com/marktron/app-gaps/internal/pipeline"
	"github.com/marktron/app-gaps/pkg/anthropic"
	"github.com/marktron/app-gaps/pkg/appstore"
)

// newStoreClient builds the App Store client from config.
func newStoreClient() appstore.Client {
	return appstore.NewClient(
		appstore.WithFeedBaseURL(cfg.AppStore.FeedBaseURL),
		appstore.WithLookupBaseURL(cfg.AppStore.LookupBaseURL),
		appstore.WithCountry(cfg.AppStore.Country),
	)
}

// newAnalyzer wires the full pipeline. Clients are constructed once and
// shared across requests.
func newAnalyzer() *pipeline.Analyzer {
	return pipeline.New(cfg, newStoreClient(), anthropic.NewClient(cfg.Anthropic.Key))
}
