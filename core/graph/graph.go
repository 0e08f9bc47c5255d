// Package graph builds the knowledge graph of categories and tags from published content.
package graph

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/content"
)

// Node kinds
const (
	KindCategory = "category"
	KindTag      = "tag"
)

// Edge kinds
const (
	EdgeHasTag  = "has_tag"
	EdgeRelated = "related"
)

type Node struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
	Weight int    `json:"weight"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func nodeID(kind, name string) string {
	return kind + ":" + name
}

// Build derives the graph from the taxonomy of published items.
// Nodes are sorted by kind then id, edges by source then target.
func Build(items []content.Taxonomy) Graph {
	catCount := map[string]int{}
	tagCount := map[string]int{}
	catTag := map[[2]string]int{}
	catTags := map[string]map[string]bool{}

	for _, it := range items {
		if it.Category == "" {
			continue
		}
		catCount[it.Category]++
		if catTags[it.Category] == nil {
			catTags[it.Category] = map[string]bool{}
		}
		seen := map[string]bool{}
		for _, tag := range it.Tags {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tagCount[tag]++
			catTag[[2]string{it.Category, tag}]++
			catTags[it.Category][tag] = true
		}
	}

	g := Graph{Nodes: []Node{}, Edges: []Edge{}}
	for cat, n := range catCount {
		g.Nodes = append(g.Nodes, Node{ID: nodeID(KindCategory, cat), Kind: KindCategory, Label: cat, Weight: n})
	}
	for tag, n := range tagCount {
		g.Nodes = append(g.Nodes, Node{ID: nodeID(KindTag, tag), Kind: KindTag, Label: tag, Weight: n})
	}
	for ct, n := range catTag {
		g.Edges = append(g.Edges, Edge{
			Source: nodeID(KindCategory, ct[0]),
			Target: nodeID(KindTag, ct[1]),
			Kind:   EdgeHasTag,
			Weight: n,
		})
	}

	cats := make([]string, 0, len(catTags))
	for cat := range catTags {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for i, a := range cats {
		for _, b := range cats[i+1:] {
			var shared int
			for tag := range catTags[a] {
				if catTags[b][tag] {
					shared++
				}
			}
			if shared > 0 {
				g.Edges = append(g.Edges, Edge{
					Source: nodeID(KindCategory, a),
					Target: nodeID(KindCategory, b),
					Kind:   EdgeRelated,
					Weight: shared,
				})
			}
		}
	}

	sort.Slice(g.Nodes, func(i, j int) bool {
		if g.Nodes[i].Kind != g.Nodes[j].Kind {
			return g.Nodes[i].Kind < g.Nodes[j].Kind
		}
		return g.Nodes[i].ID < g.Nodes[j].ID
	})
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].Source != g.Edges[j].Source {
			return g.Edges[i].Source < g.Edges[j].Source
		}
		return g.Edges[i].Target < g.Edges[j].Target
	})
	return g
}

type (
	Service interface {
		// Get returns the graph of every published item, or of one category.
		Get(ctx context.Context, category string) (Graph, error)
	}

	service struct {
		contentSvc content.Service
		cache      core.Cache
		ttl        time.Duration
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(contentSvc content.Service, cache core.Cache, ttl time.Duration, logger core.Logger) Service {
	return &service{contentSvc: contentSvc, cache: cache, ttl: ttl, logger: logger}
}

func (svc *service) Get(ctx context.Context, category string) (Graph, error) {
	category = core.CleanString(category, true /* lower */)
	key := core.CachePrefixGraph + category

	var g Graph
	found, err := svc.cache.Get(ctx, key, &g)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("reading graph cache: %v", err), err)
	}
	if found {
		return g, nil
	}

	items, err := svc.contentSvc.Taxonomy(ctx, category)
	if err != nil {
		return Graph{}, err
	}
	g = Build(items)
	if err := svc.cache.Set(ctx, key, g, svc.ttl); err != nil {
		svc.logger.Warn(fmt.Sprintf("writing graph cache: %v", err), err)
	}
	return g, nil
}
