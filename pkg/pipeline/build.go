package pipeline

import (
	"slices"

	"github.com/matzehuels/impactgraph/pkg/entity"
	"github.com/matzehuels/impactgraph/pkg/graph"
)

// Selection is the relationship graph of the requested projects together
// with the data the later stages need.
type Selection struct {
	Graph *graph.Graph
	// Order lists node IDs in request order, or storage order when all
	// projects were requested.
	Order []string
	// Followers maps each node to the sorted names of the stored projects
	// that follow it, whether or not they were requested.
	Followers map[string][]string
}

// Build returns the relationship graph of the records named in names.
// See [Select] for the construction rules.
func Build(records []entity.Record, names []string, relation string) *graph.Graph {
	return Select(records, names, relation).Graph
}

// Select builds the relationship graph of the records named in names.
//
// Empty names selects every record. Each selected record becomes a node
// keyed by project name; when two records share a name the first one wins.
// An undirected edge joins a and b when the id of b appears in the relation
// list of a. Edges to ids outside the selection are ignored and self
// references are dropped. Followers are counted over all records. An unknown
// relation falls back to friends.
func Select(records []entity.Record, names []string, relation string) Selection {
	byName := make(map[string]*entity.Record, len(records))
	var storage []string
	for i := range records {
		r := &records[i]
		if r.Name == "" {
			continue
		}
		if _, dup := byName[r.Name]; dup {
			continue
		}
		byName[r.Name] = r
		storage = append(storage, r.Name)
	}

	order := storage
	if len(names) > 0 {
		order = make([]string, 0, len(names))
		seen := make(map[string]bool, len(names))
		for _, name := range names {
			if seen[name] || byName[name] == nil {
				continue
			}
			seen[name] = true
			order = append(order, name)
		}
	}

	g := graph.New(graph.Metadata{"relation": relationOrDefault(relation)})
	selected := make(map[string]bool, len(order))
	for _, name := range order {
		r := byName[name]
		_ = g.AddNode(graph.Node{ID: name, Meta: graph.Metadata{
			"id":     r.ID,
			"handle": r.Handle,
		}})
		selected[name] = true
	}

	// Follows are collected over every stored project so a node's follower
	// count does not depend on which other projects were requested.
	nameByID := make(map[int64]string, len(storage))
	for _, name := range storage {
		nameByID[byName[name].ID] = name
	}
	follows := make(map[string]map[string]bool, len(order))
	addFollow := func(follower, followed string) {
		if follower == followed {
			return
		}
		if selected[followed] {
			if follows[followed] == nil {
				follows[followed] = make(map[string]bool)
			}
			follows[followed][follower] = true
		}
		if selected[follower] && selected[followed] {
			_ = g.AddEdge(follower, followed)
		}
	}

	for _, name := range storage {
		r := byName[name]
		if relation != RelationFollowers {
			for _, id := range r.FriendIDs {
				if other, ok := nameByID[id]; ok {
					addFollow(name, other)
				}
			}
		}
		if relation == RelationFollowers || relation == RelationBoth {
			for _, id := range r.FollowerIDs {
				if other, ok := nameByID[id]; ok {
					addFollow(other, name)
				}
			}
		}
	}

	followers := make(map[string][]string, len(follows))
	for name, set := range follows {
		list := make([]string, 0, len(set))
		for f := range set {
			list = append(list, f)
		}
		slices.Sort(list)
		followers[name] = list
	}

	return Selection{Graph: g, Order: order, Followers: followers}
}

func relationOrDefault(relation string) string {
	if ValidRelations[relation] {
		return relation
	}
	return DefaultRelation
}
