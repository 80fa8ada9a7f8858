// Package graph runs a small state machine: nodes execute in sequence along
// their edges, condition nodes pick a branch, and any node error routes the
// run to an optional failure node.
package graph

import (
	"context"
	"errors"
	"fmt"
)

// NodeType represents the type of a node in the graph
type NodeType string

const (
	NodeTypeStart     NodeType = "start"
	NodeTypeEnd       NodeType = "end"
	NodeTypeStage     NodeType = "stage"
	NodeTypeCondition NodeType = "condition"
	NodeTypeFailure   NodeType = "failure"
)

// State represents the execution state passed between nodes
type State map[string]any

// Keys written by the executor when a run is routed to the failure node.
const (
	ErrorKey       = "graph.error"
	FailedStageKey = "graph.failed_stage"
)

// NodeFunc is the function executed by a node
type NodeFunc func(context.Context, State) (State, error)

// ConditionFunc evaluates a condition and returns a key of the node's NextMap
type ConditionFunc func(context.Context, State) (string, error)

// Node represents a node in the execution graph
type Node struct {
	Name      string
	Type      NodeType
	Execute   NodeFunc
	Condition ConditionFunc     // Only for condition nodes
	Next      string            // Outgoing edge for non-condition nodes
	NextMap   map[string]string // For condition nodes: condition result -> next node
}

// ErrNoRoute is returned when a node has nowhere to go.
var ErrNoRoute = errors.New("no next node")

// Graph represents an execution flow graph
type Graph struct {
	nodes       map[string]*Node
	startNode   string
	endNode     string
	failureNode string
	maxVisits   int
}

// NewGraph creates a new graph
func NewGraph() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		maxVisits: 10,
	}
}

func (g *Graph) validateNode(node *Node) {
	if node.Name == "" {
		panic("node name cannot be empty")
	}

	switch node.Type {
	case NodeTypeCondition:
		if node.Condition == nil {
			panic(fmt.Sprintf("condition node %s must have non-nil Condition function", node.Name))
		}
	case NodeTypeEnd, NodeTypeFailure:
		// terminal nodes may omit Execute
	default:
		if node.Execute == nil {
			panic(fmt.Sprintf("node %s of type %s must have non-nil Execute function", node.Name, node.Type))
		}
	}
}

// AddNode adds a node to the graph
func (g *Graph) AddNode(node *Node) {
	if _, exists := g.nodes[node.Name]; exists {
		panic(fmt.Sprintf("node %s already exists", node.Name))
	}

	g.validateNode(node)
	g.nodes[node.Name] = node

	switch node.Type {
	case NodeTypeStart:
		g.startNode = node.Name
	case NodeTypeEnd:
		g.endNode = node.Name
	case NodeTypeFailure:
		g.failureNode = node.Name
	}
}

// SetStartNode sets the start node
func (g *Graph) SetStartNode(name string) {
	g.mustExist(name)
	g.startNode = name
}

// SetEndNode sets the end node
func (g *Graph) SetEndNode(name string) {
	g.mustExist(name)
	g.endNode = name
}

// SetFailureNode sets the node that receives every failed run
func (g *Graph) SetFailureNode(name string) {
	g.mustExist(name)
	g.failureNode = name
}

func (g *Graph) mustExist(name string) {
	if _, exists := g.nodes[name]; !exists {
		panic(fmt.Sprintf("node %s not found", name))
	}
}

// Validate checks that the start node is set and every edge points at a node.
func (g *Graph) Validate() error {
	if g.startNode == "" {
		return fmt.Errorf("start node not set")
	}
	for _, node := range g.nodes {
		targets := []string{node.Next}
		for _, t := range node.NextMap {
			targets = append(targets, t)
		}
		for _, t := range targets {
			if t == "" {
				continue
			}
			if _, ok := g.nodes[t]; !ok {
				return fmt.Errorf("node %s points at unknown node %s", node.Name, t)
			}
		}
	}
	return nil
}

// Execute runs from the start node until a terminal node is reached and
// returns the final state together with the names of the nodes visited.
//
// When a node fails (returns an error, panics, or the context is done) and a
// failure node is configured, the error is stored under ErrorKey, the failing
// node under FailedStageKey, the failure node runs, and Execute returns the
// node error. Without a failure node the error is returned immediately.
func (g *Graph) Execute(ctx context.Context, initialState State) (State, []string, error) {
	if g.startNode == "" {
		return nil, nil, fmt.Errorf("start node not set")
	}

	state := initialState
	if state == nil {
		state = make(State)
	}

	var path []string
	visited := make(map[string]int)
	current := g.startNode

	for {
		node, exists := g.nodes[current]
		if !exists {
			return state, path, fmt.Errorf("node %s not found", current)
		}

		// Detect runaway loops by counting how many times we revisit a node.
		visited[current]++
		if visited[current] > g.maxVisits {
			return state, path, fmt.Errorf("infinite loop detected at node %s", current)
		}
		path = append(path, current)

		if node.Type == NodeTypeEnd || node.Type == NodeTypeFailure {
			return g.finish(ctx, node, state, path)
		}

		next, err := g.step(ctx, node, state)
		if err != nil {
			err = fmt.Errorf("node %s: %w", node.Name, err)
			if g.failureNode == "" || node.Name == g.failureNode {
				return state, path, err
			}
			state[ErrorKey] = err
			state[FailedStageKey] = node.Name
			failure := g.nodes[g.failureNode]
			path = append(path, failure.Name)
			final, _, ferr := g.finish(ctx, failure, state, path)
			return final, path, errors.Join(err, ferr)
		}
		current = next
	}
}

func (g *Graph) step(ctx context.Context, node *Node, state State) (next string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch node.Type {
	case NodeTypeCondition:
		result, err := node.Condition(ctx, state)
		if err != nil {
			return "", fmt.Errorf("error evaluating condition: %w", err)
		}
		next = node.NextMap[result]
		if next == "" {
			return "", fmt.Errorf("%w for condition result %q", ErrNoRoute, result)
		}
		return next, nil
	default:
		if _, err := node.Execute(ctx, state); err != nil {
			return "", err
		}
		if node.Next == "" {
			return "", ErrNoRoute
		}
		return node.Next, nil
	}
}

func (g *Graph) finish(ctx context.Context, node *Node, state State, path []string) (final State, _ []string, err error) {
	if node.Execute == nil {
		return state, path, nil
	}
	defer func() {
		if r := recover(); r != nil {
			final, err = state, fmt.Errorf("node %s: panic: %v", node.Name, r)
		}
	}()
	out, err := node.Execute(ctx, state)
	if out == nil {
		out = state
	}
	return out, path, err
}

// GetNode returns a node by name
func (g *Graph) GetNode(name string) (*Node, error) {
	node, exists := g.nodes[name]
	if !exists {
		return nil, fmt.Errorf("node %s not found", name)
	}
	return node, nil
}

// SetMaxVisits sets the maximum number of visits to a node
func (g *Graph) SetMaxVisits(maxVisits int) {
	if maxVisits > 0 {
		g.maxVisits = maxVisits
	}
}

// Builder helps build graphs fluently
type Builder struct {
	graph *Graph
}

// NewBuilder creates a new graph builder
func NewBuilder() *Builder {
	return &Builder{
		graph: NewGraph(),
	}
}

// AddNode adds a node to the graph
func (b *Builder) AddNode(name string, nodeType NodeType, execute NodeFunc) *Builder {
	b.graph.AddNode(&Node{
		Name:    name,
		Type:    nodeType,
		Execute: execute,
	})
	return b
}

// AddConditionNode adds a condition node
func (b *Builder) AddConditionNode(name string, condition ConditionFunc, nextMap map[string]string) *Builder {
	b.graph.AddNode(&Node{
		Name:      name,
		Type:      NodeTypeCondition,
		Condition: condition,
		NextMap:   nextMap,
	})
	return b
}

// AddEdge connects two nodes
func (b *Builder) AddEdge(from, to string) *Builder {
	b.graph.mustExist(from)
	b.graph.nodes[from].Next = to
	return b
}

// Chain connects the named nodes in order.
func (b *Builder) Chain(names ...string) *Builder {
	for i := 0; i+1 < len(names); i++ {
		b.AddEdge(names[i], names[i+1])
	}
	return b
}

// SetStart sets the start node
func (b *Builder) SetStart(name string) *Builder {
	b.graph.SetStartNode(name)
	return b
}

// SetEnd sets the end node
func (b *Builder) SetEnd(name string) *Builder {
	b.graph.SetEndNode(name)
	return b
}

// SetFailure sets the failure node
func (b *Builder) SetFailure(name string) *Builder {
	b.graph.SetFailureNode(name)
	return b
}

// SetMaxVisits sets the maximum number of visits to a node
func (b *Builder) SetMaxVisits(maxVisits int) *Builder {
	b.graph.SetMaxVisits(maxVisits)
	return b
}

// Build validates and returns the constructed graph
func (b *Builder) Build() (*Graph, error) {
	if err := b.graph.Validate(); err != nil {
		return nil, err
	}
	return b.graph, nil
}
