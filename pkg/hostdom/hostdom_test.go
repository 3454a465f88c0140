package hostdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *Document {
	t.Helper()
	doc, err := ParseString(html)
	require.NoError(t, err)
	return doc
}

func TestLinks(t *testing.T) {
	doc := parse(t, `<body>
		<a href="#inbox">Inbox</a>
		<a>no href</a>
		<a href="#label/X">X</a>
	</body>`)
	links := doc.Links()
	require.Len(t, links, 2)
	assert.Equal(t, "#inbox", links[0].Href())
	assert.Equal(t, "#label/X", links[1].Href())
}

func TestNavLinksPrefersNavigationRegion(t *testing.T) {
	doc := parse(t, `<body>
		<a href="#outside">outside</a>
		<div role="navigation"><a href="#inside">inside</a></div>
	</body>`)
	links := doc.NavLinks()
	require.Len(t, links, 1)
	assert.Equal(t, "#inside", links[0].Href())
}

func TestNavLinksFallsBackToWholeDocument(t *testing.T) {
	doc := parse(t, `<body><a href="#only">only</a></body>`)
	links := doc.NavLinks()
	require.Len(t, links, 1)
	assert.Equal(t, "#only", links[0].Href())
}

func TestLinkAttributes(t *testing.T) {
	doc := parse(t, `<body>
		<a href="#x" title="Own" aria-label="Aria label">
			<span title="Nested">text <span class="bsU">7</span></span>
		</a>
	</body>`)
	links := doc.Links()
	require.Len(t, links, 1)
	l := links[0]

	title, ok := l.OwnTitle()
	assert.True(t, ok)
	assert.Equal(t, "Own", title)

	nested, ok := l.DescendantTitle()
	assert.True(t, ok)
	assert.Equal(t, "Nested", nested)

	aria, ok := l.AriaLabel()
	assert.True(t, ok)
	assert.Equal(t, "Aria label", aria)

	badge, ok := l.BadgeText()
	assert.True(t, ok)
	assert.Equal(t, "7", badge)
}

func TestLinkMissingAttributes(t *testing.T) {
	doc := parse(t, `<body><a href="#x">plain</a></body>`)
	l := doc.Links()[0]

	_, ok := l.OwnTitle()
	assert.False(t, ok)
	_, ok = l.DescendantTitle()
	assert.False(t, ok)
	_, ok = l.AriaLabel()
	assert.False(t, ok)
	_, ok = l.BadgeText()
	assert.False(t, ok)
	assert.Equal(t, "plain", l.Text())
}

func TestNilDocument(t *testing.T) {
	var doc *Document
	assert.Nil(t, doc.Links())
	assert.Nil(t, doc.NavLinks())
}
