package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<html><head><script>var x=1;</script></head><body>
<nav>Site nav</nav>
<div class="cookie-banner">Accept cookies</div>
<main>
  <h1>Platform Engineer</h1>
  <p>We build infrastructure.</p>
</main>
<footer>Legal stuff</footer>
</body></html>`

func TestURLFetchesHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(sampleHTML))
	}))
	defer srv.Close()

	result, err := URL(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "Platform Engineer")
}

func TestURLNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result, err := URL(context.Background(), srv.URL, nil)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
}

func TestURLInvalid(t *testing.T) {
	_, err := URL(context.Background(), "not a url", nil)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
}

func TestExtractMainTextStripsNoise(t *testing.T) {
	text, err := ExtractMainText(sampleHTML, []string{"main"})
	require.NoError(t, err)

	assert.Contains(t, text, "Platform Engineer")
	assert.Contains(t, text, "We build infrastructure.")
	assert.NotContains(t, text, "Site nav")
	assert.NotContains(t, text, "Legal stuff")
	assert.NotContains(t, text, "Accept cookies")
	assert.NotContains(t, text, "var x=1")
}

func TestExtractMainTextFallsBackToBody(t *testing.T) {
	text, err := ExtractMainText("<html><body><p>plain body</p></body></html>", []string{".job-description"})
	require.NoError(t, err)
	assert.Contains(t, text, "plain body")
}

func TestExtractMainTextRemovesNoiseSelectors(t *testing.T) {
	html := `<html><body><main><p>description</p><form class="apply">apply here</form></main></body></html>`
	text, err := ExtractMainText(html, []string{"main"}, "form")
	require.NoError(t, err)
	assert.Contains(t, text, "description")
	assert.NotContains(t, text, "apply here")
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://boards.greenhouse.io/acme/jobs/1", PlatformGreenhouse},
		{"https://jobs.lever.co/acme/abc", PlatformLever},
		{"https://acme.wd5.myworkdayjobs.com/en-US/careers", PlatformWorkday},
		{"https://www.linkedin.com/jobs/view/123", PlatformLinkedIn},
		{"https://example.com/careers/1", PlatformUnknown},
		{"::bad::", PlatformUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectPlatform(tt.url), tt.url)
	}
}

func TestPlatformSelectorsNonEmpty(t *testing.T) {
	for _, p := range []Platform{PlatformGreenhouse, PlatformLever, PlatformWorkday, PlatformLinkedIn, PlatformUnknown} {
		assert.NotEmpty(t, ContentSelectors(p), string(p))
		assert.NotEmpty(t, NoiseSelectors(p), string(p))
	}
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("short"))
	assert.True(t, ShouldUseBrowser("   "))
	assert.False(t, ShouldUseBrowser(strings.Repeat("content ", 100)))
}
