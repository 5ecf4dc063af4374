package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/marktron/app-gaps/internal/config"
	"github.com/marktron/app-gaps/pkg/anthropic"
	"github.com/marktron/app-gaps/pkg/appstore"
)

// stubStore serves canned review pages keyed by page number and a canned
// lookup result. Pages without an entry come back empty; pages listed in
// pageErr fail.
type stubStore struct {
	mu         sync.Mutex
	pages      map[int][]appstore.Review
	pageErr    map[int]error
	info       *appstore.AppInfo
	lookupErr  error
	pagesAsked []int
}

func (s *stubStore) ReviewsPage(_ context.Context, _ string, page int) ([]appstore.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pagesAsked = append(s.pagesAsked, page)
	if err, ok := s.pageErr[page]; ok {
		return nil, err
	}
	return s.pages[page], nil
}

func (s *stubStore) Lookup(_ context.Context, _ string) (*appstore.AppInfo, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.info, nil
}

func (s *stubStore) asked() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.pagesAsked...)
}

// stubLLM returns a fixed completion text and records the last request.
type stubLLM struct {
	text string
	err  error
	last anthropic.MessageRequest
}

func (s *stubLLM) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: s.text}},
	}, nil
}

// testConfig mirrors production defaults but drops the inter-page delay so
// fetch-loop tests run instantly.
func testConfig() *config.Config {
	return &config.Config{
		AppStore: config.AppStoreConfig{
			PageCeiling:          10,
			PageDelayMS:          0,
			SufficiencyThreshold: 500,
		},
		Reducer: config.ReducerConfig{
			MaxReviewTokens: 1000,
			MaxTotalTokens:  6000,
			MaxReviews:      100,
		},
		Anthropic: config.AnthropicConfig{
			Key:         "test-key",
			Model:       "claude-sonnet-4-5-20250929",
			Temperature: 0.7,
			MaxTokens:   2048,
		},
	}
}

// reviewPage builds n distinct reviews attributed to a page.
func reviewPage(page, n int) []appstore.Review {
	reviews := make([]appstore.Review, n)
	for i := range reviews {
		reviews[i] = appstore.Review{
			Rating: "4",
			Title:  fmt.Sprintf("Review p%d-%d", page, i),
			Body:   "It works but it could do more.",
		}
	}
	return reviews
}
