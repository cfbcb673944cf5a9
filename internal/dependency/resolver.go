// Package dependency validates and orders the prerequisite graph that
// skills declare through their requires lists.
package dependency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devskills/skillkit/internal/model"
)

// ValidationError describes one problem in the requires graph.
type ValidationError struct {
	Type    string   // "circular", "missing", "invalid"
	Skills  []string // Skills involved in the error
	Message string   // Human-readable error message
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Result is the outcome of resolving a requires graph.
type Result struct {
	Ordered  []model.Skill     // Skills in prerequisite-first order
	Warnings []ValidationError // Non-fatal issues
	Errors   []ValidationError // Fatal issues
}

// HasErrors reports whether resolution found fatal issues.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings reports whether resolution found non-fatal issues.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Resolve validates the requires graph and orders skills so that every
// prerequisite precedes its dependents. Names are matched ignoring
// case. Unknown prerequisites are warnings and do not block ordering;
// cycles are errors and leave the input order in place.
func Resolve(skills []model.Skill) Result {
	result := Result{
		Ordered:  skills,
		Warnings: []ValidationError{},
		Errors:   []ValidationError{},
	}

	if len(skills) == 0 {
		return result
	}

	// When a name repeats the first occurrence wins, matching the
	// library merge. Duplicate names are a lint concern, not ours.
	unique := make([]model.Skill, 0, len(skills))
	known := make(map[string]bool, len(skills))
	for _, skill := range skills {
		key := nameKey(skill.Name)
		if known[key] {
			continue
		}
		known[key] = true
		unique = append(unique, skill)
	}

	// Graph edges only cover prerequisites that exist; missing ones are
	// reported but must not wedge the sort.
	graph := make(map[string][]string, len(unique))
	for _, skill := range unique {
		key := nameKey(skill.Name)
		graph[key] = nil
		for _, req := range skill.Requires {
			reqKey := nameKey(req)
			if !known[reqKey] {
				result.Warnings = append(result.Warnings, ValidationError{
					Type:    "missing",
					Skills:  []string{skill.Name, req},
					Message: fmt.Sprintf("skill %q requires %q, which was not found", skill.Name, req),
				})
				continue
			}
			graph[key] = append(graph[key], reqKey)
		}
	}

	if cycles := detectCycles(graph); len(cycles) > 0 {
		for _, cycle := range cycles {
			result.Errors = append(result.Errors, ValidationError{
				Type:    "circular",
				Skills:  cycle,
				Message: fmt.Sprintf("circular requires chain: %s", strings.Join(cycle, " -> ")),
			})
		}
		return result
	}

	ordered, err := topologicalSort(unique, graph)
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "invalid",
			Skills:  []string{},
			Message: fmt.Sprintf("failed to order skills: %v", err),
		})
		return result
	}

	result.Ordered = ordered
	return result
}

// ValidateGraph validates a requires graph without caring about the
// resulting order. Errors and warnings are returned together.
func ValidateGraph(skills []model.Skill) []ValidationError {
	result := Resolve(skills)
	all := make([]ValidationError, 0, len(result.Errors)+len(result.Warnings))
	all = append(all, result.Errors...)
	all = append(all, result.Warnings...)
	return all
}

// detectCycles finds circular requires chains via depth-first search.
// Nodes are visited in sorted order so reported cycles are stable.
func detectCycles(graph map[string][]string) [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := []string{}

	var dfs func(node string) bool
	dfs = func(node string) bool {
		visited[node] = true
		recStack[node] = true
		path = append(path, node)

		for _, req := range graph[node] {
			if !visited[req] {
				if dfs(req) {
					return true
				}
			} else if recStack[req] {
				cycleStart := -1
				for i, n := range path {
					if n == req {
						cycleStart = i
						break
					}
				}
				if cycleStart != -1 {
					cycle := make([]string, len(path)-cycleStart)
					copy(cycle, path[cycleStart:])
					cycle = append(cycle, req)
					cycles = append(cycles, cycle)
				}
				return true
			}
		}

		path = path[:len(path)-1]
		recStack[node] = false
		return false
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	for _, node := range nodes {
		if !visited[node] {
			path = []string{}
			dfs(node)
		}
	}

	return cycles
}

// topologicalSort orders skills with Kahn's algorithm. Ties break
// alphabetically so the result is deterministic.
func topologicalSort(skills []model.Skill, graph map[string][]string) ([]model.Skill, error) {
	inDegree := make(map[string]int, len(skills))
	for _, skill := range skills {
		inDegree[nameKey(skill.Name)] = len(graph[nameKey(skill.Name)])
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	skillsByName := make(map[string]model.Skill, len(skills))
	for _, skill := range skills {
		skillsByName[nameKey(skill.Name)] = skill
	}

	var result []model.Skill
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if skill, exists := skillsByName[current]; exists {
			result = append(result, skill)
		}

		for _, skill := range skills {
			key := nameKey(skill.Name)
			for _, req := range graph[key] {
				if req == current {
					inDegree[key]--
					if inDegree[key] == 0 {
						queue = append(queue, key)
						sort.Strings(queue)
					}
				}
			}
		}
	}

	if len(result) != len(skills) {
		return skills, fmt.Errorf("ordered %d of %d skills", len(result), len(skills))
	}

	return result, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
