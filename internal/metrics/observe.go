package metrics

import "time"

// Recomputed records one filter pass over dataset.
func Recomputed(dataset string, matched int, elapsed time.Duration) {
	FilterRecomputes.WithLabelValues(dataset).Inc()
	FilterRenderDuration.WithLabelValues(dataset).Observe(elapsed.Seconds())
	FilterMatches.WithLabelValues(dataset).Observe(float64(matched))
}

// SessionOpened records a new live session for page.
func SessionOpened(page string) {
	LiveSessionsTotal.WithLabelValues(page).Inc()
	LiveSessionsActive.Inc()
}

// SessionClosed records a live session leaving memory.
func SessionClosed(expired bool) {
	LiveSessionsActive.Dec()
	if expired {
		LiveSessionsExpired.Inc()
	}
}

// Suggested records an autocomplete list being shown.
func Suggested(dataset string, count int) {
	outcome := "results"
	if count == 0 {
		outcome = "empty"
	}
	SuggestionsShown.WithLabelValues(dataset, outcome).Inc()
}

// SiteBuilt records a generator run.
func SiteBuilt(err error) {
	if err != nil {
		SiteBuildsTotal.WithLabelValues("failed").Inc()
		return
	}
	SiteBuildsTotal.WithLabelValues("succeeded").Inc()
}
