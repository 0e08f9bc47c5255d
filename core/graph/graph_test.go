package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmhub/ilm/core/content"
)

func TestBuild(t *testing.T) {
	items := []content.Taxonomy{
		{Category: "fiqh", Tags: []string{"salah", "wudu"}},
		{Category: "fiqh", Tags: []string{"salah", "salah"}},
		{Category: "hadith", Tags: []string{"salah", "adab"}},
		{Category: "seerah", Tags: nil},
		{Category: "", Tags: []string{"ignored"}},
	}
	g := Build(items)

	assert.Equal(t, []Node{
		{ID: "category:fiqh", Kind: KindCategory, Label: "fiqh", Weight: 2},
		{ID: "category:hadith", Kind: KindCategory, Label: "hadith", Weight: 1},
		{ID: "category:seerah", Kind: KindCategory, Label: "seerah", Weight: 1},
		{ID: "tag:adab", Kind: KindTag, Label: "adab", Weight: 1},
		{ID: "tag:salah", Kind: KindTag, Label: "salah", Weight: 3},
		{ID: "tag:wudu", Kind: KindTag, Label: "wudu", Weight: 1},
	}, g.Nodes)

	assert.Equal(t, []Edge{
		{Source: "category:fiqh", Target: "category:hadith", Kind: EdgeRelated, Weight: 1},
		{Source: "category:fiqh", Target: "tag:salah", Kind: EdgeHasTag, Weight: 2},
		{Source: "category:fiqh", Target: "tag:wudu", Kind: EdgeHasTag, Weight: 1},
		{Source: "category:hadith", Target: "tag:adab", Kind: EdgeHasTag, Weight: 1},
		{Source: "category:hadith", Target: "tag:salah", Kind: EdgeHasTag, Weight: 1},
	}, g.Edges)
}

func TestBuildEmpty(t *testing.T) {
	g := Build(nil)
	require.NotNil(t, g.Nodes)
	require.NotNil(t, g.Edges)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}

func TestBuildIsDeterministic(t *testing.T) {
	items := []content.Taxonomy{
		{Category: "b", Tags: []string{"x", "y"}},
		{Category: "a", Tags: []string{"y", "x"}},
		{Category: "c", Tags: []string{"x"}},
	}
	first := Build(items)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Build(items))
	}
	// a-b share x and y, a-c and b-c share x
	assert.Contains(t, first.Edges, Edge{Source: "category:a", Target: "category:b", Kind: EdgeRelated, Weight: 2})
	assert.Contains(t, first.Edges, Edge{Source: "category:a", Target: "category:c", Kind: EdgeRelated, Weight: 1})
	assert.Contains(t, first.Edges, Edge{Source: "category:b", Target: "category:c", Kind: EdgeRelated, Weight: 1})
}
