package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stockscope/models"
)

func newTestReddit(server *httptest.Server) *RedditService {
	return &RedditService{
		httpClient: server.Client(),
		baseURL:    server.URL,
	}
}

func redditListing(title, selftext string) string {
	return `{
		"data": {
			"children": [{
				"data": {
					"title": "` + title + `",
					"selftext": "` + selftext + `",
					"author": "degen42",
					"score": 7,
					"created_utc": 1717252200,
					"permalink": "/r/stocks/comments/abc/post/"
				}
			}]
		}
	}`
}

func TestReddit_GetPosts_MergesSubreddits(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.Header.Get("User-Agent") == "" || strings.HasPrefix(r.Header.Get("User-Agent"), "Go-http-client") {
			t.Error("expected a custom user agent")
		}
		w.Write([]byte(redditListing("AAPL to the moon", "strong quarter")))
	}))
	defer server.Close()

	svc := newTestReddit(server)
	posts, err := svc.GetPosts(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetPosts failed: %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("expected 1 post per subreddit, got %d", len(posts))
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 subreddit calls, got %d", len(paths))
	}
	if paths[0] != "/r/stocks/search.json" || paths[1] != "/r/wallstreetbets/search.json" {
		t.Errorf("unexpected search paths: %v", paths)
	}

	post := posts[0]
	if post.Platform != models.PlatformReddit {
		t.Errorf("expected reddit platform, got %s", post.Platform)
	}
	if post.Content != "AAPL to the moon strong quarter" {
		t.Errorf("expected title and selftext joined, got %q", post.Content)
	}
	if post.Sentiment != models.SentimentNeutral {
		t.Errorf("reddit posts arrive unscored, got %s", post.Sentiment)
	}
	if post.Timestamp != 1717252200000 {
		t.Errorf("expected epoch millis, got %d", post.Timestamp)
	}
	if post.URL != "https://www.reddit.com/r/stocks/comments/abc/post/" {
		t.Errorf("unexpected URL %q", post.URL)
	}
}

func TestReddit_OneSubredditFailing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/r/stocks/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(redditListing("WSB take", "")))
	}))
	defer server.Close()

	svc := newTestReddit(server)
	posts, err := svc.GetPosts(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("one failing subreddit should degrade, not fail: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("expected the healthy subreddit's post, got %d", len(posts))
	}
}

func TestReddit_AllSubredditsFailing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestReddit(server)
	_, err := svc.GetPosts(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error when every subreddit fails")
	}
	if code := CodeOf(err); code != ErrAPI {
		t.Errorf("expected API_ERROR, got %s", code)
	}
}

func TestReddit_RejectsBadSymbol(t *testing.T) {
	svc := NewRedditService()
	_, err := svc.GetPosts(context.Background(), "bad symbol")
	if err == nil {
		t.Fatal("expected validation error before any network call")
	}
	if code := CodeOf(err); code != ErrInvalidSymbol {
		t.Errorf("expected INVALID_SYMBOL, got %s", code)
	}
}
