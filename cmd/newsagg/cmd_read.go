package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/thomaskoefod/newsagg/internal/newsapi"
	"github.com/thomaskoefod/newsagg/pkg/models"
)

var (
	headlineCategory string
	headlineSource   string
	headlineFeed     string
	headlinePage     int
)

var headlinesCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Print top headlines or a configured feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var articles []models.TransientArticle
		if headlineFeed != "" {
			articles = a.feeds.Fetch(cmd.Context(), headlineFeed)
		} else {
			articles = a.news.TopHeadlines(cmd.Context(), headlineCategory, headlineSource, headlinePage)
		}
		printArticles(cmd.OutOrStdout(), articles)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search all articles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		articles := a.news.Fetch(cmd.Context(), newsapi.Query{
			Mode: newsapi.ModeSearch,
			Text: strings.Join(args, " "),
			Page: headlinePage,
		})
		printArticles(cmd.OutOrStdout(), articles)
		return nil
	},
}

const snippetLength = 160

func printArticles(w io.Writer, articles []models.TransientArticle) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return
	}
	for i, a := range articles {
		fmt.Fprintf(w, "%d. %s", i+1, a.Title)
		if a.Source != "" {
			fmt.Fprintf(w, " (%s)", a.Source)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "   %s\n", a.URL)

		text := a.Content
		if text == "" {
			text = a.Description
		}
		if text != "" {
			fmt.Fprintf(w, "   %s\n", snippet(text, snippetLength))
		}
	}
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
