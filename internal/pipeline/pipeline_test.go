package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marktron/app-gaps/internal/apperr"
	"github.com/marktron/app-gaps/pkg/appstore"
)

const fencedAnalysis = "```json\n" + oneThemeJSON + "\n```"

func TestAnalyzerRunEndToEnd(t *testing.T) {
	store := &stubStore{
		pages: map[int][]appstore.Review{
			1: reviewPage(1, 50),
			2: reviewPage(2, 50),
			3: reviewPage(3, 50),
		},
		info: &appstore.AppInfo{Name: "Facebook", Developer: "Meta"},
	}
	llm := &stubLLM{text: fencedAnalysis}
	cfg := testConfig()
	cfg.Reducer.MaxReviews = 200
	cfg.Reducer.MaxTotalTokens = 20000
	a := New(cfg, store, llm)

	report, err := a.Run(context.Background(), "284882215")
	require.NoError(t, err)

	assert.Equal(t, "284882215", report.AppID)
	require.NotNil(t, report.AppInfo)
	assert.Equal(t, "Facebook", report.AppInfo.Name)
	require.Len(t, report.Themes, 1)
	assert.Equal(t, "t", report.Themes[0].Title)
	assert.Empty(t, report.PrioritizedThemes)

	// All 150 reviews made it into the prompt, joined by blank lines.
	require.Len(t, llm.last.Messages, 1)
	user := llm.last.Messages[0].Content
	assert.Equal(t, 150, strings.Count(user, "[4/5]"))
	assert.Contains(t, user, "p1-0")
	assert.Contains(t, user, "p3-49")

	assert.Equal(t, testConfig().Anthropic.Model, llm.last.Model)
	require.NotNil(t, llm.last.Temperature)
	assert.InDelta(t, 0.7, *llm.last.Temperature, 1e-9)
}

func TestAnalyzerRunAcceptsStoreURL(t *testing.T) {
	store := &stubStore{pages: map[int][]appstore.Review{1: reviewPage(1, 5)}}
	llm := &stubLLM{text: `{"themes":[],"prioritizedThemes":[]}`}
	a := New(testConfig(), store, llm)

	report, err := a.Run(context.Background(), "https://apps.apple.com/us/app/facebook/id284882215")
	require.NoError(t, err)
	assert.Equal(t, "284882215", report.AppID)
}

func TestAnalyzerRunInvalidInput(t *testing.T) {
	a := New(testConfig(), &stubStore{}, &stubLLM{})

	_, err := a.Run(context.Background(), "not an app")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAnalyzerRunMissingKeyFailsFast(t *testing.T) {
	cfg := testConfig()
	cfg.Anthropic.Key = ""
	store := &stubStore{}
	a := New(cfg, store, &stubLLM{})

	_, err := a.Run(context.Background(), "284882215")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, store.asked(), "no network call before credential check")
}

func TestAnalyzerRunCompletionFailure(t *testing.T) {
	store := &stubStore{pages: map[int][]appstore.Review{1: reviewPage(1, 5)}}
	llm := &stubLLM{err: eris.New("api: overloaded")}
	a := New(testConfig(), store, llm)

	_, err := a.Run(context.Background(), "284882215")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	assert.Equal(t, "analysis service unavailable", apperr.MessageOf(err))
}

func TestAnalyzerRunUnparsableCompletion(t *testing.T) {
	store := &stubStore{pages: map[int][]appstore.Review{1: reviewPage(1, 5)}}
	llm := &stubLLM{text: "I could not produce JSON, sorry."}
	a := New(testConfig(), store, llm)

	_, err := a.Run(context.Background(), "284882215")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAnalyzerRunLookupFailureDegrades(t *testing.T) {
	store := &stubStore{
		pages:     map[int][]appstore.Review{1: reviewPage(1, 5)},
		lookupErr: eris.New("lookup down"),
	}
	llm := &stubLLM{text: fencedAnalysis}
	a := New(testConfig(), store, llm)

	report, err := a.Run(context.Background(), "284882215")
	require.NoError(t, err)
	assert.Nil(t, report.AppInfo)
	assert.Len(t, report.Themes, 1)
}

func TestAnalyzerRunNoReviewsStillCompletes(t *testing.T) {
	// An entirely failed fetch is no usable input, not an error; the
	// empty-corpus prompt still goes out.
	store := &stubStore{pageErr: map[int]error{1: eris.New("down")}}
	llm := &stubLLM{text: `{"themes":[],"prioritizedThemes":[]}`}
	a := New(testConfig(), store, llm)

	report, err := a.Run(context.Background(), "284882215")
	require.NoError(t, err)
	assert.Empty(t, report.Themes)
	assert.True(t, strings.HasPrefix(llm.last.Messages[0].Content, userPromptHeader))
}

func TestReduceBuildParseIdempotent(t *testing.T) {
	reviews := reviewPage(1, 75)

	run := func() (string, string) {
		blocks := Reduce(reviews, testConfig().Reducer)
		system, user := BuildPrompt(blocks)
		res, err := ParseAnalysis(fencedAnalysis)
		require.NoError(t, err)
		require.Len(t, res.Themes, 1)
		return system, user
	}

	s1, u1 := run()
	s2, u2 := run()
	assert.Equal(t, s1, s2)
	assert.Equal(t, u1, u2)
}
