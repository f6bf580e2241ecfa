package workflow

import (
	"errors"
	"fmt"
	"sort"
)

// NodeKind identifies what a node in the editor canvas does.
type NodeKind string

const (
	KindQuery         NodeKind = "query"
	KindKnowledgeBase NodeKind = "knowledge_base"
	KindLLM           NodeKind = "llm"
	KindOutput        NodeKind = "output"
)

// Node is one unit placed on the canvas. Config carries the kind-specific
// settings the editor attached (provider, model, keys for llm nodes).
type Node struct {
	ID     string         `json:"id"`
	Kind   NodeKind       `json:"type"`
	Config map[string]any `json:"data,omitempty"`
}

// Edge is a directed connection, source feeds target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the serialized node/edge set stored with a workflow.
// It is loaded fresh per execution and never mutated.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Errors surfaced by Resolve. Both are fatal for the execution request.
var (
	ErrGraphIncomplete   = errors.New("no output node found, connect an output node to run")
	ErrGraphDisconnected = errors.New("output node is not connected to any source")
)

// Path is the set of nodes that feed the chosen output node.
type Path struct {
	Output Node
	// LLM is the authoritative generation node, nil when no llm node is
	// reachable from the output.
	LLM *Node
	// KnowledgeBases are all reachable knowledge base nodes, sorted by id
	// so retrieval order is deterministic.
	KnowledgeBases []Node
	// Query is the first reachable query node, nil when absent. Its
	// presence is structural only; the query text always comes from the
	// execution request.
	Query *Node
}

// canonicalKind maps the names the drag-and-drop editor serializes onto the
// kinds the engine works with.
func canonicalKind(k NodeKind) NodeKind {
	switch k {
	case "userQuery", KindQuery:
		return KindQuery
	case "knowledgeBase", KindKnowledgeBase:
		return KindKnowledgeBase
	case "llmEngine", KindLLM:
		return KindLLM
	case KindOutput:
		return KindOutput
	}
	return k
}

// Resolve walks the graph backward from the output node and partitions
// everything it can reach by kind.
//
// targetID selects the output node explicitly; when empty the first
// output node in node order is used. The walk is a breadth-first pass
// over incoming edges in the order they appear, so the first llm node
// encountered is stable for a given stored graph.
func Resolve(g Graph, targetID string) (*Path, error) {
	byID := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	output, err := findOutput(g, byID, targetID)
	if err != nil {
		return nil, err
	}

	// incoming[target] lists sources in stored edge order.
	incoming := make(map[string][]string)
	for _, e := range g.Edges {
		incoming[e.Target] = append(incoming[e.Target], e.Source)
	}

	path := &Path{Output: output}
	visited := map[string]bool{output.ID: true}
	queue := append([]string(nil), incoming[output.ID]...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		node, ok := byID[id]
		if !ok {
			// Dangling edge, skip.
			continue
		}

		switch canonicalKind(node.Kind) {
		case KindLLM:
			if path.LLM == nil {
				n := node
				path.LLM = &n
			}
		case KindKnowledgeBase:
			path.KnowledgeBases = append(path.KnowledgeBases, node)
		case KindQuery:
			if path.Query == nil {
				n := node
				path.Query = &n
			}
		}

		queue = append(queue, incoming[id]...)
	}

	if path.LLM == nil && len(path.KnowledgeBases) == 0 && path.Query == nil {
		return nil, ErrGraphDisconnected
	}

	sort.Slice(path.KnowledgeBases, func(i, j int) bool {
		return path.KnowledgeBases[i].ID < path.KnowledgeBases[j].ID
	})

	return path, nil
}

func findOutput(g Graph, byID map[string]Node, targetID string) (Node, error) {
	if targetID != "" {
		node, ok := byID[targetID]
		if !ok {
			return Node{}, fmt.Errorf("%w: target node %q does not exist", ErrGraphIncomplete, targetID)
		}
		if canonicalKind(node.Kind) != KindOutput {
			return Node{}, fmt.Errorf("%w: target node %q is not an output node", ErrGraphIncomplete, targetID)
		}
		return node, nil
	}
	for _, n := range g.Nodes {
		if canonicalKind(n.Kind) == KindOutput {
			return n, nil
		}
	}
	return Node{}, ErrGraphIncomplete
}
