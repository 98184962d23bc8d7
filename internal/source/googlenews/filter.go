package googlenews

import (
	"sort"
	"strings"
	"time"

	"github.com/newthinker/datahub/internal/core"
	"go.uber.org/zap"
)

const (
	// narrowWindow is the longest request window that gets widened.
	narrowWindow = 7 * 24 * time.Hour
	// widenBy is how far back a narrow window's lower bound moves.
	widenBy = 30 * 24 * time.Hour
	// maxUndated caps undated articles returned when nothing dated matches.
	maxUndated = 5
)

// window is the effective [from, to] range searched and filtered.
type window struct {
	from    time.Time
	to      time.Time
	widened bool
}

// effectiveWindow makes end inclusive and moves the lower bound of a
// window of a week or less back by widenBy.
func effectiveWindow(start, end time.Time) window {
	w := window{from: startOfDay(start), to: startOfDay(end).AddDate(0, 0, 1)}
	if w.to.Sub(w.from) <= narrowWindow {
		w.from = w.from.Add(-widenBy)
		w.widened = true
	}
	return w
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// normalizeURL drops the scheme, query and trailing slash for dedupe.
func normalizeURL(u string) string {
	s := strings.ToLower(strings.TrimSpace(u))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, "/")
}

func normalizeHeadline(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

// dedupe keeps the first article per URL and per headline. Articles
// without a URL are dropped.
func dedupe(articles []core.Article) []core.Article {
	seenURL := make(map[string]bool)
	seenTitle := make(map[string]bool)
	out := make([]core.Article, 0, len(articles))
	for _, a := range articles {
		u := normalizeURL(a.URL)
		h := normalizeHeadline(a.Headline)
		if u == "" || seenURL[u] || seenTitle[h] {
			continue
		}
		seenURL[u] = true
		seenTitle[h] = true
		out = append(out, a)
	}
	return out
}

// filterByDate keeps articles inside w, newest first. When none match but
// some articles are undated, up to maxUndated of those are returned.
func filterByDate(articles []core.Article, w window, logger *zap.Logger) []core.Article {
	var dated, undated []core.Article
	for _, a := range articles {
		t, ok := a.PublishedAt()
		if !ok {
			undated = append(undated, a)
			continue
		}
		if !t.Before(w.from) && !t.After(w.to) {
			dated = append(dated, a)
		}
	}

	if len(dated) == 0 && len(undated) > 0 {
		logger.Info("no dated articles in range, including undated ones",
			zap.Int("undated", len(undated)))
		if len(undated) > maxUndated {
			undated = undated[:maxUndated]
		}
		return undated
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Datetime > dated[j].Datetime
	})
	return dated
}
