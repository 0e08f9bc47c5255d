package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmhub/ilm/core/content"
	"github.com/ilmhub/ilm/core/graph"
	"github.com/ilmhub/ilm/core/user"
	"github.com/ilmhub/ilm/tests"
)

func graphNodes(t *testing.T, e *env, query string) []string {
	t.Helper()
	var g graph.Graph
	decode(t, e.get(t, "/v1/knowledge-graph"+query, ""), &g)
	nodes := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, n.ID)
	}
	return nodes
}

func Test_knowledgeGraphApi(t *testing.T) {
	e := setup(t)

	author := e.createUser(t, "Author", "author", user.RoleAuthor)
	testutil.CreateItem(t, e.contentRepo, "Wudu", "fiqh", []string{"taharah", "salah"}, author, content.StatusPublished)
	testutil.CreateItem(t, e.contentRepo, "Khushu", "tazkiyah", []string{"salah"}, author, content.StatusPublished)
	testutil.CreateItem(t, e.contentRepo, "Draft", "aqidah", []string{"tawhid"}, author, content.StatusDraft)

	var g graph.Graph
	decode(t, e.get(t, "/v1/knowledge-graph", ""), &g)
	assert.Equal(t, []string{"category:fiqh", "category:tazkiyah", "tag:salah", "tag:taharah"}, graphNodes(t, e, ""), "drafts are left out")
	assert.Contains(t, g.Edges, graph.Edge{Source: "category:fiqh", Target: "category:tazkiyah", Kind: graph.EdgeRelated, Weight: 1})

	assert.Len(t, graphNodes(t, e, "?category=FIQH"), 3)
}

func Test_knowledgeGraphApi_followsPublication(t *testing.T) {
	e := setup(t)

	author := e.createUser(t, "Author", "author", user.RoleAuthor)
	editorToken := e.token(t, e.createUser(t, "Editor", "editor", user.RoleEditor))
	testutil.CreateItem(t, e.contentRepo, "Wudu", "fiqh", []string{"salah"}, author, content.StatusPublished)
	pending := testutil.CreateItem(t, e.contentRepo, "Nisab", "muamalat", []string{"zakat"}, author, content.StatusPendingReview)
	itemPath := "/v1/content/" + pending.ID

	before := []string{"category:fiqh", "tag:salah"}
	require.Equal(t, before, graphNodes(t, e, ""))
	require.Empty(t, graphNodes(t, e, "?category=muamalat"))

	rec := e.do(t, http.MethodPost, itemPath+"/approve", editorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"category:fiqh", "category:muamalat", "tag:salah", "tag:zakat"}, graphNodes(t, e, ""))
	assert.Equal(t, []string{"category:muamalat", "tag:zakat"}, graphNodes(t, e, "?category=muamalat"))

	rec = e.do(t, http.MethodPost, itemPath+"/archive", editorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, before, graphNodes(t, e, ""))
	assert.Empty(t, graphNodes(t, e, "?category=muamalat"))
}
