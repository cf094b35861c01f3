package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><body>
	<a href="/catalog">Catalog</a>
	<a href="/catalog">Catalog again</a>
	<a href="https://www.x.edu/about/">About</a>
	<a href="https://sub.x.edu/dept">Department</a>
	<a href="https://elsewhere.com/offsite">Offsite</a>
	<a href="/files/syllabus.pdf">Syllabus</a>
	<a href="/admin/panel">Admin</a>
	<a href="mailto:info@x.edu">Mail</a>
	<a href="javascript:void(0)">JS</a>
	<a href="#section">Anchor</a>
</body></html>`

func newTestExtractor(t *testing.T, allow, deny []string) *Extractor {
	t.Helper()
	e, err := New("https://www.x.edu", allow, deny)
	require.NoError(t, err)
	return e
}

func TestExtract_FiltersAndResolves(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t, nil, []string{`/admin`, `\.pdf$`})

	links := e.Extract("https://www.x.edu/start", "text/html; charset=utf-8", []byte(page))

	require.Equal(t, []string{
		"https://www.x.edu/catalog",
		"https://www.x.edu/about/",
		"https://sub.x.edu/dept",
	}, links)
}

func TestExtract_AllowPatternsNarrow(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t, []string{`/catalog`}, nil)

	links := e.Extract("https://www.x.edu/start", "text/html", []byte(page))
	require.Equal(t, []string{"https://www.x.edu/catalog"}, links)
}

func TestExtract_NonHTMLYieldsNothing(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t, nil, nil)

	require.Nil(t, e.Extract("https://www.x.edu/data", "application/pdf", []byte("%PDF-1.7")))
	require.Nil(t, e.Extract("https://www.x.edu/data", "application/json", []byte(`{"a":1}`)))
}

func TestExtract_OffsiteHostsRejected(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t, nil, nil)

	body := []byte(`<a href="https://evil-x.edu/phish">near miss</a>`)
	require.Empty(t, e.Extract("https://www.x.edu/", "text/html", body))
}

func TestNew_RejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := New("not a base url", nil, nil)
	require.Error(t, err)

	_, err = New("https://www.x.edu", []string{`([`}, nil)
	require.Error(t, err)

	_, err = New("https://www.x.edu", nil, []string{`([`})
	require.Error(t, err)
}
