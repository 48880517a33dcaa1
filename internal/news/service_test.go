package news_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"marketdash/internal/market"
	"marketdash/internal/marketerr"
	"marketdash/internal/news"
)

var base = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func article(id, headline, source, url string, ago time.Duration) market.NewsArticle {
	return market.NewsArticle{
		ID:          id,
		Symbol:      "ABC",
		Headline:    headline,
		Source:      source,
		URL:         url,
		PublishedAt: base.Add(-ago),
	}
}

func ids(items []market.NewsArticle) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestDedupe_RecencyFirst(t *testing.T) {
	t.Parallel()

	// Arrange: input deliberately not in time order
	items := []market.NewsArticle{
		article("old-update", "ABC beats expectation (Update)", "CNBC", "https://n.com/1", 3*time.Hour),
		article("new", "ABC beats expectation", "Reuters", "https://n.com/2", time.Hour),
		article("same-url", "Totally different words here", "WSJ", "https://n.com/2/?utm_source=feed", 2*time.Hour),
		article("other", "XYZ misses target", "Forbes", "https://n.com/3#comments", 4*time.Hour),
	}

	// Act
	got := news.Dedupe(items, 0.85)

	// Assert: newest version wins, URLs are canonical, input untouched
	require.Equal(t, []string{"new", "other"}, ids(got))
	require.Equal(t, "https://n.com/3", got[1].URL)
	require.Equal(t, "https://n.com/3#comments", items[3].URL)
}

func TestService_Prioritize(t *testing.T) {
	t.Parallel()

	s := news.NewService(nil, news.DefaultConfig())
	items := []market.NewsArticle{
		article("blog", "a", "Some Blog", "https://b.com/1", 0),
		article("cnbc-old", "b", "CNBC", "https://b.com/2", 5*time.Hour),
		article("reuters", "c", "reuters", "https://b.com/3", 9*time.Hour),
		article("cnbc-new", "d", "CNBC", "https://b.com/4", time.Hour),
		article("korean", "e", "서울경제", "https://b.com/5", 2*time.Hour),
		article("other-blog", "f", "Another Blog", "https://b.com/6", 30*time.Minute),
	}

	got := s.Prioritize(items)

	// Assert: ranked outlets first (case-insensitive), unlisted last by recency
	require.Equal(t, []string{"reuters", "cnbc-new", "cnbc-old", "korean", "blog", "other-blog"}, ids(got))
}

func TestService_ClampLimit(t *testing.T) {
	t.Parallel()

	s := news.NewService(nil, news.Config{})
	require.Equal(t, 10, s.ClampLimit(0))
	require.Equal(t, 1, s.ClampLimit(-4))
	require.Equal(t, 7, s.ClampLimit(7))
	require.Equal(t, 20, s.ClampLimit(500))
}

func TestService_GetTickerNews_FetchSizing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit     int
		wantFetch int
	}{
		{limit: 3, wantFetch: 15},
		{limit: 0, wantFetch: 15},
		{limit: 18, wantFetch: 18},
		{limit: 99, wantFetch: 20},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.limit), func(t *testing.T) {
			t.Parallel()

			// Arrange
			ctrl := gomock.NewController(t)
			adapter := NewMockAdapter(ctrl)
			adapter.EXPECT().Name().Return("test").AnyTimes()
			adapter.EXPECT().
				FetchNews(gomock.Any(), "ABC", tt.wantFetch).
				Return([]market.NewsArticle{}, nil).
				Times(1)

			s := news.NewService(adapter, news.DefaultConfig())

			// Act
			got, err := s.GetTickerNews(t.Context(), "ABC", tt.limit)

			// Assert
			require.NoError(t, err)
			require.Empty(t, got)
		})
	}
}

func TestService_GetTickerNews_Truncation(t *testing.T) {
	t.Parallel()

	raw := make([]market.NewsArticle, 0, 30)
	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"}
	for i := range 30 {
		headline := fmt.Sprintf("%s %s %s story", words[i%10], words[(i/10)%10], words[(i*3)%10])
		raw = append(raw, article(fmt.Sprint(i), headline, "Reuters", fmt.Sprintf("https://t.com/%d", i), time.Duration(i)*time.Minute))
	}

	ctrl := gomock.NewController(t)
	adapter := NewMockAdapter(ctrl)
	adapter.EXPECT().Name().Return("test").AnyTimes()
	adapter.EXPECT().FetchNews(gomock.Any(), gomock.Any(), gomock.Any()).Return(raw, nil).AnyTimes()

	s := news.NewService(adapter, news.DefaultConfig())
	available := len(news.Dedupe(raw, 0.85))

	for _, limit := range []int{-1, 1, 5, 10, 20, 25} {
		got, err := s.GetTickerNews(t.Context(), "ABC", limit)
		require.NoError(t, err)

		n := s.ClampLimit(limit)
		require.LessOrEqual(t, len(got), n)
		require.GreaterOrEqual(t, len(got), min(available, n))
	}
}

func TestService_AggregateIsIdempotent(t *testing.T) {
	t.Parallel()

	s := news.NewService(nil, news.DefaultConfig())
	items := []market.NewsArticle{
		article("1", "ABC beats expectation (Update)", "CNBC", "https://n.com/a/?utm_source=x", 10*time.Minute),
		article("2", "ABC beats expectation", "Bloomberg", "https://n.com/b", 20*time.Minute),
		article("3", "ABC opens new plant", "Some Blog", "https://n.com/c#x", 20*time.Minute),
		article("4", "ABC opens new plant in Texas", "Reuters", "https://n.com/d", 40*time.Minute),
		article("5", "Analysts split on ABC guidance", "MarketWatch", "https://n.com/a", 5*time.Minute),
		article("6", "ABC CEO interview", "Forbes", "https://n.com/e", time.Hour),
	}

	once := s.Aggregate(items, 10)
	twice := s.Aggregate(once, 10)

	require.Equal(t, once, twice)
}

func TestService_GetTickerNews_PropagatesAdapterError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	adapter := NewMockAdapter(ctrl)
	wantErr := marketerr.Network("feed down", errors.New("dial tcp: timeout"))
	adapter.EXPECT().FetchNews(gomock.Any(), "ABC", 15).Return(nil, wantErr)

	s := news.NewService(adapter, news.DefaultConfig())
	_, err := s.GetTickerNews(t.Context(), "ABC", 5)

	require.ErrorIs(t, err, wantErr)
}

func TestNewService_CustomPriority(t *testing.T) {
	t.Parallel()

	s := news.NewService(nil, news.Config{SourcePriority: []string{"Seeking Alpha"}})
	got := s.Prioritize([]market.NewsArticle{
		article("reuters", "a", "Reuters", "https://c.com/1", 0),
		article("sa", "b", "Seeking Alpha", "https://c.com/2", time.Hour),
	})
	require.Equal(t, []string{"sa", "reuters"}, ids(got))
}
