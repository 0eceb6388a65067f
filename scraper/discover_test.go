package scraper

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xmlResponder(body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(200, body)
	resp.Header.Set("Content-Type", "application/xml")
	return httpmock.ResponderFromResponse(resp)
}

const sitemapIndex = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>http://school.test/sitemap-pages.xml</loc></sitemap>
</sitemapindex>`

const sitemapPages = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://school.test/tuition</loc></url>
  <url><loc>http://school.test/logo.png</loc></url>
  <url><loc>https://other.test/admissions</loc></url>
</urlset>`

func registerSchoolSite(transport *httpmock.MockTransport) {
	transport.RegisterResponder("GET", "http://school.test/sitemap.xml", xmlResponder(sitemapIndex))
	transport.RegisterResponder("GET", "http://school.test/sitemap-pages.xml", xmlResponder(sitemapPages))
	transport.RegisterResponder("GET", "http://school.test/", htmlResponder(`<html><body>
		<a href="/admissions">Admissions</a>
		<a href="/brochure.pdf">Brochure</a>
		<a href="/style.css">css</a>
		<a href="#top">top</a>
		<a href="mailto:info@school.test">mail</a>
		<a href="http://school.test/">home</a>
	</body></html>`))
	transport.RegisterResponder("GET", "http://school.test/admissions", htmlResponder(`<html><body>
		<a href="/admissions/requirements">Requirements</a>
	</body></html>`))
	transport.RegisterResponder("GET", "http://school.test/admissions/requirements", htmlResponder(`<html><body>
		<a href="/deep">Deep</a>
	</body></html>`))
	transport.RegisterResponder("GET", "http://school.test/deep", htmlResponder(`<html><body>
		<a href="/deeper">Deeper</a>
	</body></html>`))
}

func TestDiscovererListURLs(t *testing.T) {
	cfg := testConfig()
	cfg.DiscoveryDepth = 2
	f, transport := newTestFetcher(t, cfg)
	registerSchoolSite(transport)

	got, err := f.Discoverer().ListURLs(context.Background(), "http://school.test/")
	require.NoError(t, err)

	assert.Equal(t, "http://school.test/tuition", got[0])
	assert.ElementsMatch(t, []string{
		"http://school.test/tuition",
		"http://school.test/admissions",
		"http://school.test/admissions/requirements",
		"http://school.test/deep",
		"http://school.test/brochure.pdf",
	}, got)
}

func TestDiscovererPageBudget(t *testing.T) {
	cfg := testConfig()
	cfg.DiscoveryMaxPages = 1
	f, transport := newTestFetcher(t, cfg)
	registerSchoolSite(transport)

	got, err := f.Discoverer().ListURLs(context.Background(), "http://school.test/")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"http://school.test/tuition",
		"http://school.test/admissions",
		"http://school.test/brochure.pdf",
	}, got)
}

func TestDiscovererUnreachableSite(t *testing.T) {
	f, _ := newTestFetcher(t, nil)

	_, err := f.Discoverer().ListURLs(context.Background(), "http://school.test/")
	assert.Error(t, err)

	_, err = f.Discoverer().ListURLs(context.Background(), "not a url")
	assert.Error(t, err)
}
