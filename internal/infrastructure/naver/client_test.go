package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

const searchBody = `{
  "lastBuildDate": "Mon, 18 Dec 2023 15:00:00 +0900",
  "total": 2,
  "items": [
    {
      "title": "<b>크래프톤</b>, 신작 &quot;배틀그라운드&quot; 출시",
      "originallink": "https://origin.example/1",
      "link": "https://n.news.naver.com/1",
      "description": "<b>크래프톤</b>이 A &amp; B 협력을 발표했다",
      "pubDate": "Mon, 18 Dec 2023 14:30:00 +0900"
    },
    {
      "title": "크래프톤 실적",
      "link": "https://n.news.naver.com/2",
      "description": "",
      "pubDate": "Mon, 18 Dec 2023 10:00:00 +0900"
    }
  ]
}`

func TestSearchMapsItemsAndStripsMarkup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Naver-Client-Id") != "id" || r.Header.Get("X-Naver-Client-Secret") != "secret" {
			t.Fatalf("missing credential headers")
		}
		q := r.URL.Query()
		if q.Get("query") != "크래프톤" || q.Get("display") != "100" || q.Get("start") != "1" || q.Get("sort") != "date" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(searchBody))
	}))
	defer server.Close()

	client := New(Options{Endpoint: server.URL, ClientID: "id", ClientSecret: "secret"})
	items, err := client.Search(context.Background(), "크래프톤", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	first := items[0]
	if first.Title != `크래프톤, 신작 "배틀그라운드" 출시` {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if first.Description != "크래프톤이 A & B 협력을 발표했다" {
		t.Fatalf("unexpected description %q", first.Description)
	}
	if first.Company != "크래프톤" || first.Link != "https://n.news.naver.com/1" || first.PublishedRaw != "Mon, 18 Dec 2023 14:30:00 +0900" {
		t.Fatalf("unexpected mapping: %+v", first)
	}
}

func TestSearchReportsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorCode":"024"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(Options{Endpoint: server.URL})
	_, err := client.Search(context.Background(), "넷마블", 10)
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if items := client.FetchCompanyNews(context.Background(), "넷마블", 10); items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", items)
	}
}

func TestFetchCompanyNewsIsolatesFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"malformed json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"items": [`))
		},
		"timeout": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			client := New(Options{Endpoint: server.URL, Timeout: 30 * time.Millisecond})
			items := client.FetchCompanyNews(context.Background(), "엔씨소프트", 100)
			if len(items) != 0 {
				t.Fatalf("expected no items, got %d", len(items))
			}
		})
	}
}

func TestSearchHonoursRateLimitCancellation(t *testing.T) {
	client := New(Options{Endpoint: "http://127.0.0.1:0", RatePerSecond: 0.001})
	// Drain the single burst token.
	client.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Search(ctx, "웹젠", 10); err == nil {
		t.Fatalf("expected rate limit wait to fail on cancelled context")
	}
}
