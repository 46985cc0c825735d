package knowledge_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"complyscan.app/engine/internal/knowledge"
)

const landingHTML = `<html><body>
<aside class="widget widget_recent_entries">
<ul>
<li><a href="/news/1">Fines reach record levels</a> <span class="post-date">August 12, 2026</span></li>
<li><a href="/news/2">New guidance on AI systems</a></li>
<li><a href="/news/3">Transfer framework upheld</a> <span class="post-date">July 3, 2026</span></li>
<li><a href="/news/4">Fourth entry beyond the cap</a></li>
</ul>
</aside>
</body></html>`

func articleHTML(n int) string {
	return fmt.Sprintf(`<html><body>
<h1 class="entry-title">Art. %d GDPR - Principles</h1>
<div class="entry-content"><p>Personal data shall be processed lawfully, fairly and transparently. Further detail follows here.</p></div>
</body></html>`, n)
}

var _ = Describe("HTTPFetcher", func() {
	var (
		server *httptest.Server
		ctx    context.Context
	)

	newServer := func(handler http.HandlerFunc) {
		server = httptest.NewServer(handler)
		DeferCleanup(server.Close)
	}

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("builds a live snapshot from the landing page and article pages", func() {
		newServer(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				fmt.Fprint(w, landingHTML)
				return
			}
			var n int
			if _, err := fmt.Sscanf(r.URL.Path, "/art-%d-gdpr/", &n); err == nil {
				fmt.Fprint(w, articleHTML(n))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		})

		fetcher := knowledge.NewHTTPFetcher(knowledge.FetcherConfig{BaseURL: server.URL})
		snapshot, err := fetcher.FetchSnapshot(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(snapshot.IsLiveData).To(BeTrue())
		Expect(snapshot.RecentChanges).To(Equal(
			"Latest updates: Fines reach record levels (August 12, 2026); " +
				"New guidance on AI systems; Transfer framework upheld (July 3, 2026)"))

		Expect(snapshot.KeyRequirements).To(HaveLen(7))
		Expect(snapshot.KeyRequirements[0]).To(HavePrefix("Art. 5 GDPR - Principles: "))
		Expect(snapshot.KeyRequirements[0]).To(HaveSuffix("Further detail follows here."))

		Expect(snapshot.Complete()).To(BeTrue())
	})

	It("keeps the frozen weak points and templates in live snapshots", func() {
		newServer(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				fmt.Fprint(w, landingHTML)
				return
			}
			fmt.Fprint(w, articleHTML(5))
		})

		fetcher := knowledge.NewHTTPFetcher(knowledge.FetcherConfig{BaseURL: server.URL})
		snapshot, err := fetcher.FetchSnapshot(ctx)
		Expect(err).NotTo(HaveOccurred())

		frozen := knowledge.Frozen()
		Expect(snapshot.CommonWeakPoints).To(Equal(frozen.CommonWeakPoints))
		Expect(snapshot.ActionTemplates).To(Equal(frozen.ActionTemplates))
	})

	It("falls back to frozen recent changes when the widget is absent", func() {
		newServer(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				fmt.Fprint(w, "<html><body>no widget here</body></html>")
				return
			}
			fmt.Fprint(w, articleHTML(5))
		})

		fetcher := knowledge.NewHTTPFetcher(knowledge.FetcherConfig{BaseURL: server.URL})
		snapshot, err := fetcher.FetchSnapshot(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snapshot.RecentChanges).To(Equal(knowledge.Frozen().RecentChanges))
	})

	It("skips articles that fail without failing the snapshot", func() {
		newServer(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				fmt.Fprint(w, landingHTML)
				return
			}
			if strings.HasPrefix(r.URL.Path, "/art-7-") {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, articleHTML(5))
		})

		fetcher := knowledge.NewHTTPFetcher(knowledge.FetcherConfig{BaseURL: server.URL})
		snapshot, err := fetcher.FetchSnapshot(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snapshot.KeyRequirements).To(HaveLen(6))
	})

	It("fails when the landing page is unreachable", func() {
		newServer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		fetcher := knowledge.NewHTTPFetcher(knowledge.FetcherConfig{BaseURL: server.URL})
		_, err := fetcher.FetchSnapshot(ctx)
		Expect(err).To(MatchError(ContainSubstring("unexpected status 503")))
	})

	It("fails when no article yields content", func() {
		newServer(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				fmt.Fprint(w, landingHTML)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		})

		fetcher := knowledge.NewHTTPFetcher(knowledge.FetcherConfig{BaseURL: server.URL})
		_, err := fetcher.FetchSnapshot(ctx)
		Expect(err).To(MatchError(ContainSubstring("no article content")))
	})

	It("sends the configured user agent", func() {
		var got string
		newServer(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		fetcher := knowledge.NewHTTPFetcher(knowledge.FetcherConfig{
			BaseURL:   server.URL,
			UserAgent: "compliance-bot/2.0",
		})
		_, _ = fetcher.FetchSnapshot(ctx)
		Expect(got).To(Equal("compliance-bot/2.0"))
	})
})
