package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomaskoefod/newsagg/internal/config"
	"github.com/thomaskoefod/newsagg/internal/database"
	"github.com/thomaskoefod/newsagg/internal/i18n"
	"github.com/thomaskoefod/newsagg/internal/library"
	"github.com/thomaskoefod/newsagg/internal/newsapi"
	"github.com/thomaskoefod/newsagg/internal/status"
	"github.com/thomaskoefod/newsagg/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeNews struct {
	queries []newsapi.Query
}

func (f *fakeNews) Fetch(_ context.Context, q newsapi.Query) []models.TransientArticle {
	f.queries = append(f.queries, q)
	return []models.TransientArticle{{Title: "Headline", URL: "https://example.com/h", Source: "BBC News"}}
}

type fakeFeeds struct{}

func (fakeFeeds) Feeds() []models.Feed { return []models.Feed{{URL: "https://example.com/rss", Name: "Example"}} }

func (fakeFeeds) Fetch(_ context.Context, name string) []models.TransientArticle {
	return []models.TransientArticle{{Title: "From " + name, URL: "https://example.com/f"}}
}

type upperTranslator struct{ fail bool }

func (u upperTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	if u.fail {
		return "", errors.New("translator down")
	}
	return strings.ToUpper(text), nil
}

type harness struct {
	t      *testing.T
	router *gin.Engine
	news   *fakeNews
	lib    *library.Library
}

func newHarness(t *testing.T, mutate ...func(*Deps)) *harness {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &harness{t: t, news: &fakeNews{}, lib: library.New(db, nil)}
	d := Deps{
		News:       h.news,
		Feeds:      fakeFeeds{},
		Library:    h.lib,
		Translator: upperTranslator{},
		Catalog:    i18n.New(nil),
		Server: config.ServerConfig{
			UserHeader:      "X-Authenticated-User",
			LoginURL:        "/users/login/",
			DefaultLanguage: "en",
		},
	}
	for _, m := range mutate {
		m(&d)
	}
	h.router = NewRouter(d)
	return h
}

type reqOpt func(*http.Request)

func asUser(u string) reqOpt {
	return func(r *http.Request) { r.Header.Set("X-Authenticated-User", u) }
}

func withLang(lang string) reqOpt {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "lang", Value: lang}) }
}

func (h *harness) do(method, target string, body any, opts ...reqOpt) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(h.t, err)
		req = httptest.NewRequest(method, target, strings.NewReader(string(data)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, o := range opts {
		o(req)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func article(n int) models.TransientArticle {
	return models.TransientArticle{
		Title:  fmt.Sprintf("Story %d", n),
		URL:    fmt.Sprintf("https://example.com/%d", n),
		Source: "BBC News",
	}
}

func TestHealthAndRequestID(t *testing.T) {
	h := newHarness(t)
	w, body := h.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestNews(t *testing.T) {
	h := newHarness(t)

	t.Run("headlines with filters", func(t *testing.T) {
		w, body := h.do(http.MethodGet, "/api/news?category=sports&page=2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		last := h.news.queries[len(h.news.queries)-1]
		assert.Equal(t, newsapi.ModeTopHeadlines, last.Mode)
		assert.Equal(t, "sports", last.Category)
		assert.Equal(t, 2, last.Page)
		assert.EqualValues(t, 2, body["current_page"])
		assert.Len(t, body["articles"], 1)
		assert.Empty(t, body["saved_urls"])
		assert.NotEmpty(t, body["categories"])
	})

	t.Run("search takes precedence", func(t *testing.T) {
		h.do(http.MethodGet, "/api/news?search=climate&category=sports&page=x", nil)
		last := h.news.queries[len(h.news.queries)-1]
		assert.Equal(t, newsapi.ModeSearch, last.Mode)
		assert.Equal(t, "climate", last.Text)
		assert.Equal(t, 1, last.Page)
	})

	t.Run("feed mode", func(t *testing.T) {
		before := len(h.news.queries)
		_, body := h.do(http.MethodGet, "/api/news?feed=Example", nil)
		assert.Len(t, h.news.queries, before)
		articles := body["articles"].([]any)
		assert.Equal(t, "From Example", articles[0].(map[string]any)["title"])
	})

	t.Run("saved urls for logged in user", func(t *testing.T) {
		_, _, err := h.lib.Save(context.Background(), "alice", article(1))
		require.NoError(t, err)
		_, body := h.do(http.MethodGet, "/api/news", nil, asUser("alice"))
		assert.Equal(t, []any{"https://example.com/1"}, body["saved_urls"])
	})
}

func TestReadLater_RequiresLogin(t *testing.T) {
	h := newHarness(t)
	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/api/read-later"},
		{http.MethodPost, "/api/read-later"},
		{http.MethodDelete, "/api/read-later/1"},
	} {
		w, body := h.do(tc.method, tc.target, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.target)
		assert.Equal(t, "must log in", body["error"])
		assert.Equal(t, "/users/login/", body["login_url"])
	}
}

func TestSaveAndRemove(t *testing.T) {
	h := newHarness(t)

	w, body := h.do(http.MethodPost, "/api/read-later", article(1), asUser("alice"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, i18n.MsgArticleAdded, body["message"])
	saved := body["saved"].(map[string]any)
	articleID := int64(saved["article_id"].(float64))

	w, body = h.do(http.MethodPost, "/api/read-later", article(1), asUser("alice"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, i18n.MsgAlreadyInList, body["message"])

	w, body = h.do(http.MethodGet, "/api/article?url="+url.QueryEscape("https://example.com/1"), nil, asUser("alice"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["is_saved"])

	w, body = h.do(http.MethodDelete, fmt.Sprintf("/api/read-later/%d", articleID), nil, asUser("alice"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, i18n.MsgArticleRemoved, body["message"])

	w, body = h.do(http.MethodGet, "/api/article?url="+url.QueryEscape("https://example.com/1"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, i18n.MsgArticleNotFound, body["error"])
}

func TestSave_Validation(t *testing.T) {
	h := newHarness(t)

	w, body := h.do(http.MethodPost, "/api/read-later", models.TransientArticle{Title: "No URL"}, asUser("alice"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, i18n.MsgMissingURL, body["error"])

	w, _ = h.do(http.MethodDelete, "/api/read-later/abc", nil, asUser("alice"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	form := url.Values{"url": {"https://example.com/form"}, "title": {"Form post"}}
	req := httptest.NewRequest(http.MethodPost, "/api/read-later", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Authenticated-User", "alice")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestReadLater_Pagination(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 25; i++ {
		_, _, err := h.lib.Save(context.Background(), "alice", article(i))
		require.NoError(t, err)
	}

	_, body := h.do(http.MethodGet, "/api/read-later", nil, asUser("alice"))
	assert.Len(t, body["saved_articles"], ReadLaterPageSize)
	assert.EqualValues(t, 25, body["total"])
	assert.Equal(t, true, body["has_next"])

	_, body = h.do(http.MethodGet, "/api/read-later?page=2", nil, asUser("alice"))
	assert.Len(t, body["saved_articles"], 5)
	assert.Equal(t, false, body["has_next"])
	assert.Equal(t, true, body["has_previous"])

	_, body = h.do(http.MethodGet, "/api/read-later?page=99", nil, asUser("alice"))
	assert.EqualValues(t, 2, body["page"])

	_, body = h.do(http.MethodGet, "/api/read-later?category=sports", nil, asUser("alice"))
	assert.Empty(t, body["saved_articles"])
	assert.EqualValues(t, 0, body["total"])

	_, body = h.do(http.MethodGet, "/api/read-later?source=CNN", nil, asUser("alice"))
	assert.EqualValues(t, 0, body["total"])

	_, body = h.do(http.MethodGet, "/api/read-later", nil, asUser("bob"))
	assert.EqualValues(t, 0, body["total"])
	assert.EqualValues(t, 1, body["num_pages"])
}

func TestPaginate(t *testing.T) {
	assert.Equal(t, pageWindow{page: 1, numPages: 1, start: 0, end: 0}, paginate(0, 3, 20))
	assert.Equal(t, pageWindow{page: 2, numPages: 2, start: 20, end: 21}, paginate(21, 2, 20))
	assert.Equal(t, pageWindow{page: 1, numPages: 2, start: 0, end: 20}, paginate(40, 0, 20))
}

func TestTranslate(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.lib.Save(context.Background(), "alice", models.TransientArticle{
		Title: "hello", Content: "body", URL: "https://example.com/t",
	})
	require.NoError(t, err)

	_, body := h.do(http.MethodGet, "/api/article?translate=uk&url="+url.QueryEscape("https://example.com/t"), nil)
	art := body["article"].(map[string]any)
	assert.Equal(t, "HELLO", art["title"])
	assert.Equal(t, "BODY", art["content"])
	assert.Equal(t, "uk", body["current_lang"])
	assert.NotContains(t, body, "translation_error")

	_, body = h.do(http.MethodPost, "/api/article/translate?lang=de", models.TransientArticle{Title: "x", URL: "u"})
	assert.Equal(t, true, body["translated"])
	assert.Equal(t, "X", body["article"].(map[string]any)["title"])

	_, body = h.do(http.MethodPost, "/api/article/translate?lang=zz", models.TransientArticle{Title: "x", URL: "u"})
	assert.Equal(t, false, body["translated"])
	assert.Equal(t, "x", body["article"].(map[string]any)["title"])
	assert.Equal(t, i18n.MsgUnsupportedLang, body["translation_error"])

	_, body = h.do(http.MethodGet, "/api/article?translate=zz&url="+url.QueryEscape("https://example.com/t"), nil, withLang("uk"))
	assert.Equal(t, "hello", body["article"].(map[string]any)["title"])
	assert.Equal(t, "Мова не підтримується.", body["translation_error"])
}

func TestTranslate_FailureKeepsOriginal(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.Translator = upperTranslator{fail: true} })

	w, body := h.do(http.MethodPost, "/api/article/translate", models.TransientArticle{Title: "keep me", URL: "u"}, withLang("uk"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "keep me", body["article"].(map[string]any)["title"])
	assert.Equal(t, "Переклад недоступний, показано оригінал.", body["translation_error"])
}

func TestLocalizedMessages(t *testing.T) {
	h := newHarness(t)
	_, body := h.do(http.MethodPost, "/api/read-later", article(1), asUser("alice"), withLang("uk"))
	assert.Equal(t, "Статтю додано до списку для читання!", body["message"])
}

func TestStatus(t *testing.T) {
	h := newHarness(t, func(d *Deps) {
		d.Probes = []status.Probe{
			{Name: "NewsAPI", Check: func(context.Context) (int, error) { return 200, nil }},
			{Name: "Google Translate", Check: func(context.Context) (int, error) { return 0, errors.New("down") }},
		}
	})

	_, body := h.do(http.MethodGet, "/api/status", nil)
	services := body["services"].([]any)
	require.Len(t, services, 2)
	assert.Equal(t, "🟢 Available | 200", services[0].(map[string]any)["text"])
	assert.Equal(t, "🔴 Unavailable", services[1].(map[string]any)["text"])

	_, body = h.do(http.MethodGet, "/api/status", nil, withLang("uk"))
	services = body["services"].([]any)
	assert.Equal(t, "🟢 Доступно | 200", services[0].(map[string]any)["text"])
}

func TestStatus_DoesNotExposeAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	cfg := &config.Config{
		NewsAPI:     config.NewsAPIConfig{BaseURL: base, APIKey: "SECRET-KEY-123"},
		Translation: config.TranslationConfig{Provider: "google", BaseURL: base},
	}
	h := newHarness(t, func(d *Deps) { d.Probes = status.DefaultProbes(cfg, nil) })

	w, body := h.do(http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "SECRET-KEY-123")
	services := body["services"].([]any)
	assert.Equal(t, "🔴 Unavailable", services[0].(map[string]any)["text"])
}
