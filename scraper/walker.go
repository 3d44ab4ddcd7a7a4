package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-catalog/config"
	"github.com/aluiziolira/go-scrape-catalog/models"
)

const (
	cardSelector     = "div.inner_wrap.TYPE_1"
	nextLinkSelector = "a.dark_link"
)

type walkState int

const (
	walkFetching walkState = iota
	walkDone
)

// pageState is the per-term pagination state.
type pageState struct {
	term  string
	page  int
	pages int
	found *URLSet
}

// Walker follows search result pages for a term until the site stops
// offering a link to the next page number.
type Walker struct {
	cfg     *config.Config
	fetcher *Fetcher
	metrics *Metrics
	base    *url.URL
}

// NewWalker builds a walker rooted at cfg.BaseURL.
func NewWalker(cfg *config.Config, fetcher *Fetcher, metrics *Metrics) (*Walker, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}
	return &Walker{
		cfg:     cfg,
		fetcher: fetcher,
		metrics: metrics,
		base:    base,
	}, nil
}

// termEscaper turns query escaping into path-style quoting: spaces become %20
// and slashes stay literal, as the site's own search form sends them.
var termEscaper = strings.NewReplacer("+", "%20", "%2F", "/")

// SearchURL returns the first results page for term.
func (w *Walker) SearchURL(term string) string {
	escaped := termEscaper.Replace(url.QueryEscape(term))
	return w.base.String() + escapeNonASCII(fmt.Sprintf(w.cfg.SearchTemplate, escaped))
}

// PageURL returns results page n for term. Page 1 is the search URL verbatim.
func (w *Walker) PageURL(term string, page int) string {
	search := w.SearchURL(term)
	if page <= 1 {
		return search
	}
	return search + "&" + w.cfg.PageParam + "=" + strconv.Itoa(page)
}

// Discover walks every results page for term and returns the product URLs found.
// A failed page fetch aborts the term unless KeepPartialPages is set.
func (w *Walker) Discover(ctx context.Context, term string) (*models.Discovery, error) {
	st := &pageState{term: term, page: 1, found: NewURLSet()}

	for state := walkFetching; state != walkDone; {
		if st.page > w.cfg.MaxPages {
			slog.Warn("pagination guard reached, stopping walk",
				slog.String("term", term),
				slog.Int("max_pages", w.cfg.MaxPages),
			)
			return w.discovery(st, true), nil
		}

		next, err := w.step(ctx, st)
		if err != nil {
			if w.cfg.KeepPartialPages {
				slog.Warn("search page failed, keeping partial results",
					slog.String("term", term),
					slog.Int("page", st.page),
					slog.Int("found", st.found.Len()),
					slog.Any("error", err),
				)
				return w.discovery(st, true), nil
			}
			return nil, fmt.Errorf("search %q page %d: %w", term, st.page, err)
		}
		state = next
	}

	slog.Info("search finished",
		slog.String("term", term),
		slog.Int("pages", st.pages),
		slog.Int("products", st.found.Len()),
	)
	return w.discovery(st, false), nil
}

// step fetches the current page, records its cards and decides the next state.
func (w *Walker) step(ctx context.Context, st *pageState) (walkState, error) {
	pageURL := w.PageURL(st.term, st.page)
	slog.Info("walking search page",
		slog.String("term", st.term),
		slog.Int("page", st.page),
		slog.String("url", pageURL),
	)

	page, err := w.fetcher.Fetch(ctx, phaseSearch, pageURL, 0)
	if err != nil {
		return walkDone, err
	}
	st.pages++
	w.metrics.IncPages()

	added := w.collectCards(page.Doc, st.found)
	slog.Debug("search page parsed",
		slog.String("term", st.term),
		slog.Int("page", st.page),
		slog.Int("new_products", added),
	)

	if !hasNextPage(page.Doc, st.page+1) {
		return walkDone, nil
	}
	st.page++
	return walkFetching, nil
}

func (w *Walker) collectCards(doc *goquery.Document, found *URLSet) int {
	added := 0
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Find("a[href]").First().Attr("href")
		if !ok {
			return
		}
		abs, err := w.resolve(href)
		if err != nil {
			slog.Debug("skipping card link", slog.String("href", href), slog.Any("error", err))
			return
		}
		if found.Add(abs) {
			added++
		}
	})
	return added
}

func (w *Walker) resolve(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return w.base.ResolveReference(ref).String(), nil
}

func (w *Walker) discovery(st *pageState, partial bool) *models.Discovery {
	return &models.Discovery{
		Term:    st.term,
		URLs:    st.found.Items(),
		Pages:   st.pages,
		Partial: partial,
	}
}

// hasNextPage looks for a pagination link whose text is the next page number.
func hasNextPage(doc *goquery.Document, next int) bool {
	want := strconv.Itoa(next)
	found := false
	doc.Find(nextLinkSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) == want {
			found = true
			return false
		}
		return true
	})
	return found
}

// escapeNonASCII percent-encodes bytes outside ASCII so the request URL is
// stable regardless of how the transport normalizes it.
func escapeNonASCII(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x80 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}
