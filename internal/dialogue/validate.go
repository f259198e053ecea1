package dialogue

import (
	"errors"
	"fmt"
	"sort"
)

// Validate checks the structural rules a tree must satisfy before serving:
// the root exists, every option is exactly one of navigation or link, every
// navigation target exists, and every node reachable from the root can get
// to a terminal node or back to the root.
func Validate(tree Tree) error {
	if _, ok := tree[StartKey]; !ok {
		return fmt.Errorf("dialogue tree has no %q node", StartKey)
	}

	var errs []error
	for _, key := range sortedKeys(tree) {
		for i, o := range tree[key].Options {
			switch {
			case o.Value != "" && o.URL != "":
				errs = append(errs, fmt.Errorf("node %q option %d sets both value and url", key, i))
			case o.Value == "" && o.URL == "":
				errs = append(errs, fmt.Errorf("node %q option %d sets neither value nor url", key, i))
			case o.IsNavigation():
				if _, ok := tree[o.Value]; !ok {
					errs = append(errs, fmt.Errorf("node %q option %d targets unknown node %q", key, i, o.Value))
				}
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	exits := exitNodes(tree)
	for _, key := range sortedKeys(reachable(tree)) {
		if !exits[key] {
			errs = append(errs, fmt.Errorf("node %q cannot reach a terminal node or %q", key, StartKey))
		}
	}
	return errors.Join(errs...)
}

func reachable(tree Tree) map[string]bool {
	seen := map[string]bool{StartKey: true}
	queue := []string{StartKey}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		for _, o := range tree[key].Options {
			if o.IsNavigation() && !seen[o.Value] {
				seen[o.Value] = true
				queue = append(queue, o.Value)
			}
		}
	}
	return seen
}

// exitNodes is the fixed point of: terminal, the root, showing "go back", or
// navigating to another exit node.
func exitNodes(tree Tree) map[string]bool {
	exits := make(map[string]bool, len(tree))
	for key, n := range tree {
		if key == StartKey || len(n.Options) == 0 || n.ShowGoBack {
			exits[key] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for key, n := range tree {
			if exits[key] {
				continue
			}
			for _, o := range n.Options {
				if o.IsNavigation() && exits[o.Value] {
					exits[key] = true
					changed = true
					break
				}
			}
		}
	}
	return exits
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
