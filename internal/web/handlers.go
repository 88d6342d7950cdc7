package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thomaskoefod/newsagg/internal/database"
	"github.com/thomaskoefod/newsagg/internal/i18n"
	"github.com/thomaskoefod/newsagg/internal/library"
	"github.com/thomaskoefod/newsagg/internal/newsapi"
	"github.com/thomaskoefod/newsagg/internal/status"
	"github.com/thomaskoefod/newsagg/internal/translate"
	"github.com/thomaskoefod/newsagg/pkg/models"
)

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// pageParam parses the page query parameter; anything invalid is page 1.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (s *server) handleNews(c *gin.Context) {
	ctx := c.Request.Context()
	category := c.Query("category")
	source := c.Query("source")
	search := c.Query("search")
	feedName := c.Query("feed")
	page := pageParam(c)

	var articles []models.TransientArticle
	switch {
	case feedName != "" && s.Feeds != nil:
		articles = s.Feeds.Fetch(ctx, feedName)
	case search != "":
		articles = s.News.Fetch(ctx, newsapi.Query{Mode: newsapi.ModeSearch, Text: search, Page: page})
	default:
		articles = s.News.Fetch(ctx, newsapi.Query{
			Mode:     newsapi.ModeTopHeadlines,
			Category: category,
			Source:   source,
			Page:     page,
		})
	}

	savedURLs, err := s.Library.SavedURLs(ctx, userOf(c))
	if err != nil {
		s.internalError(c, "listing saved urls", err)
		return
	}

	var feeds []models.Feed
	if s.Feeds != nil {
		feeds = s.Feeds.Feeds()
	}

	c.JSON(http.StatusOK, gin.H{
		"articles":          articles,
		"saved_urls":        savedURLs,
		"categories":        newsapi.Categories,
		"sources":           newsapi.Sources,
		"feeds":             feeds,
		"selected_category": category,
		"selected_source":   source,
		"selected_feed":     feedName,
		"search_query":      search,
		"current_page":      page,
	})
}

func (s *server) handleArticle(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": s.t(c, i18n.MsgMissingURL)})
		return
	}

	article, saved, err := s.Library.Article(c.Request.Context(), userOf(c), url)
	if errors.Is(err, database.ErrArticleNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": s.t(c, i18n.MsgArticleNotFound)})
		return
	}
	if err != nil {
		s.internalError(c, "loading article", err)
		return
	}

	resp := gin.H{
		"article":               article,
		"is_saved":              saved,
		"translation_languages": translate.Languages,
		"current_lang":          c.Query("translate"),
	}

	if lang := c.Query("translate"); lang != "" {
		tr, failure := s.translateArticle(c, article.Transient(), lang)
		if failure != "" {
			resp["translation_error"] = s.t(c, failure)
		}
		translated := *article
		translated.Title, translated.Description, translated.Content = tr.Title, tr.Description, tr.Content
		resp["article"] = translated
	}

	c.JSON(http.StatusOK, resp)
}

// handleTranslate translates an article that was never stored, such as a
// headline the reader opened from the news list.
func (s *server) handleTranslate(c *gin.Context) {
	var a models.TransientArticle
	if err := c.ShouldBind(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lang := c.DefaultQuery("lang", s.TranslateTarget)

	tr, failure := s.translateArticle(c, a, lang)
	resp := gin.H{"article": tr, "translated": failure == "", "current_lang": lang}
	if failure != "" {
		resp["translation_error"] = s.t(c, failure)
	}
	c.JSON(http.StatusOK, resp)
}

// translateArticle returns a translated copy of a, or a itself with the
// message key explaining the failure.
func (s *server) translateArticle(c *gin.Context, a models.TransientArticle, lang string) (models.TransientArticle, string) {
	if !translate.Supported(lang) {
		return a, i18n.MsgUnsupportedLang
	}
	if s.Translator == nil {
		return a, i18n.MsgTranslationFailed
	}
	tr, ok := translate.TranslateArticle(c.Request.Context(), s.Translator, a, lang, s.log)
	if !ok {
		return a, i18n.MsgTranslationFailed
	}
	return tr, ""
}

func (s *server) handleSave(c *gin.Context) {
	var a models.TransientArticle
	if err := c.ShouldBind(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, created, err := s.Library.Save(c.Request.Context(), userOf(c), a)
	switch {
	case errors.Is(err, library.ErrMissingURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": s.t(c, i18n.MsgMissingURL)})
		return
	case errors.Is(err, library.ErrUnauthorized):
		s.unauthorized(c)
		return
	case err != nil:
		s.internalError(c, "saving article", err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": s.t(c, i18n.MsgArticleAdded), "saved": saved})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": s.t(c, i18n.MsgAlreadyInList), "saved": saved})
}

func (s *server) handleRemove(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": s.t(c, i18n.MsgInvalidArticleID)})
		return
	}

	if err := s.Library.Remove(c.Request.Context(), userOf(c), id); err != nil {
		if errors.Is(err, library.ErrUnauthorized) {
			s.unauthorized(c)
			return
		}
		s.internalError(c, "removing article", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": s.t(c, i18n.MsgArticleRemoved)})
}

func (s *server) handleReadLater(c *gin.Context) {
	category := c.Query("category")
	source := c.Query("source")

	entries, err := s.Library.ListSaved(c.Request.Context(), userOf(c), library.Filters{
		Source:   source,
		Category: category,
	})
	if err != nil {
		s.internalError(c, "listing saved articles", err)
		return
	}

	p := paginate(len(entries), pageParam(c), ReadLaterPageSize)
	c.JSON(http.StatusOK, gin.H{
		"saved_articles":    entries[p.start:p.end],
		"total":             len(entries),
		"page":              p.page,
		"num_pages":         p.numPages,
		"has_next":          p.page < p.numPages,
		"has_previous":      p.page > 1,
		"categories":        newsapi.Categories,
		"sources":           newsapi.Sources,
		"selected_category": category,
		"selected_source":   source,
	})
}

type pageWindow struct {
	page, numPages, start, end int
}

// paginate clamps page into [1, numPages]. An empty list has one empty page.
func paginate(total, page, perPage int) pageWindow {
	numPages := (total + perPage - 1) / perPage
	if numPages == 0 {
		numPages = 1
	}
	if page > numPages {
		page = numPages
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	return pageWindow{page: page, numPages: numPages, start: start, end: end}
}

type serviceStatus struct {
	status.Result
	Text string `json:"text"`
}

func (s *server) handleStatus(c *gin.Context) {
	results := status.Run(c.Request.Context(), s.Probes, s.StatusTimeout)
	label := func(msg string) string { return s.t(c, msg) }

	services := make([]serviceStatus, 0, len(results))
	for _, r := range results {
		if r.Error != "" {
			s.log.Warn("upstream unavailable", zap.String("service", r.Name), zap.String("error", r.Error))
		}
		services = append(services, serviceStatus{Result: r, Text: r.Text(label)})
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (s *server) internalError(c *gin.Context, op string, err error) {
	s.log.Error(op,
		zap.String("request_id", c.GetString(ctxRequestID)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": s.t(c, i18n.MsgInternalError)})
}
