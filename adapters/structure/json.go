package structure

import (
	"fmt"

	"bayesview/domain/core"

	"github.com/tidwall/gjson"
)

// parseJSON accepts a bare array of pairs, an {"edges": [...]} wrapper, and
// {"parent": ..., "child": ...} objects in place of pairs
func parseJSON(data []byte) ([][]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, core.NewMalformedStructureError("invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if root.IsObject() {
		root = root.Get("edges")
		if !root.Exists() {
			return nil, core.NewMalformedStructureError(`JSON object has no "edges" field`)
		}
	}
	if !root.IsArray() {
		return nil, core.NewMalformedStructureError("edge list must be a JSON array")
	}

	var (
		edges [][]string
		err   error
	)
	root.ForEach(func(_, entry gjson.Result) bool {
		var pair []string
		pair, err = jsonPair(len(edges), entry)
		if err != nil {
			return false
		}
		edges = append(edges, pair)
		return true
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

func jsonPair(i int, entry gjson.Result) ([]string, error) {
	if entry.IsObject() {
		parent, child := entry.Get("parent"), entry.Get("child")
		if parent.Type != gjson.String || child.Type != gjson.String {
			return nil, core.NewMalformedStructureError(fmt.Sprintf("edge %d: parent and child must be strings", i))
		}
		return []string{parent.String(), child.String()}, nil
	}
	if !entry.IsArray() {
		return nil, core.NewMalformedStructureError(fmt.Sprintf("edge %d is not a pair", i))
	}

	var names []string
	for _, member := range entry.Array() {
		if member.Type != gjson.String {
			return nil, core.NewMalformedStructureError(fmt.Sprintf("edge %d has a non-string member %s", i, member.Raw))
		}
		names = append(names, member.String())
	}
	return names, nil
}
