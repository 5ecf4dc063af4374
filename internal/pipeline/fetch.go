package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marktron/app-gaps/internal/config"
	"github.com/marktron/app-gaps/pkg/appstore"
)

// Fetcher walks the paginated review feed for one app. Pages are requested
// strictly in order with a fixed delay between them to stay polite toward
// the public feed.
type Fetcher struct {
	client      appstore.Client
	pageCeiling int
	pageDelay   time.Duration
	sufficiency int
}

// NewFetcher creates a Fetcher from the pagination policy in cfg.
func NewFetcher(client appstore.Client, cfg config.AppStoreConfig) *Fetcher {
	return &Fetcher{
		client:      client,
		pageCeiling: cfg.PageCeiling,
		pageDelay:   cfg.PageDelay(),
		sufficiency: cfg.SufficiencyThreshold,
	}
}

// FetchAll accumulates reviews page by page until the feed is exhausted
// (an empty page), the sufficiency threshold is reached, or the page
// ceiling is hit. A page that fails to fetch contributes zero reviews and
// never fails the overall fetch; an entirely failed fetch yields an empty
// slice, which downstream stages treat as "no usable input".
//
// A persistent upstream outage is indistinguishable here from a genuinely
// exhausted feed: both walk every page and come back empty. The per-page
// warnings are the only operator-visible difference.
func (f *Fetcher) FetchAll(ctx context.Context, appID string) []appstore.Review {
	log := zap.L().With(zap.String("app_id", appID))

	var all []appstore.Review
	for page := 1; page <= f.pageCeiling; page++ {
		if page > 1 {
			if !f.wait(ctx) {
				break
			}
		}

		reviews, err := f.client.ReviewsPage(ctx, appID, page)
		if err != nil {
			log.Warn("review page fetch failed, continuing",
				zap.Int("page", page),
				zap.Error(err),
			)
			continue
		}

		// Empty page means the feed is exhausted.
		if len(reviews) == 0 {
			break
		}

		all = append(all, reviews...)
		if len(all) >= f.sufficiency {
			all = all[:f.sufficiency]
			break
		}
	}

	log.Info("review fetch complete", zap.Int("reviews", len(all)))
	return all
}

// wait sleeps for the inter-page delay, returning false if the context is
// cancelled first.
func (f *Fetcher) wait(ctx context.Context) bool {
	if f.pageDelay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(f.pageDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
