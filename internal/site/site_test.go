package site_test

import (
	"strings"
	"testing"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, content string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(content))
	require.NoError(t, err)
	return doc
}

func TestForName(t *testing.T) {
	sink := &metadata.NoopSink{}

	leg, err := site.ForName("legislation", sink)
	require.NoError(t, err)
	assert.Equal(t, "legislation", leg.Name())
	assert.Equal(t, "legal", leg.CachePrefix())

	aus, err := site.ForName(" AustLII ", sink)
	require.NoError(t, err)
	assert.Equal(t, "austlii", aus.Name())
	assert.Equal(t, "austlii", aus.CachePrefix())

	_, isResolver := aus.(site.RedirectResolver)
	assert.True(t, isResolver)
	_, isResolver = leg.(site.RedirectResolver)
	assert.False(t, isResolver)

	_, err = site.ForName("hansard", sink)
	assert.ErrorIs(t, err, site.ErrUnknownSite)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"austlii", "legislation"}, site.Names())
}
