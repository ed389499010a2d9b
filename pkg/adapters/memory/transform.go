package memory

import (
	"fmt"
	"strings"

	"github.com/emberhq/ember/pkg/core"
)

// applyUpdate mutates data in place for one update instruction, applying
// transform markers against the current stored value. The variant switch is
// exhaustive: an unknown transform is a hard error, not a silent overwrite.
func applyUpdate(data core.Data, u core.Update) error {
	parent, leaf, err := resolveParent(data, u.FieldPath)
	if err != nil {
		return err
	}

	switch op := u.Value.(type) {
	case core.IncrementOp:
		current, _ := asFloat(parent[leaf])
		delta, ok := asFloat(op.By)
		if !ok {
			return fmt.Errorf("memory: increment delta %v is not numeric", op.By)
		}
		if isIntegral(parent[leaf]) && isIntegral(op.By) {
			parent[leaf] = int64(current) + int64(delta)
		} else {
			parent[leaf] = current + delta
		}
	case core.ArrayUnionOp:
		members := toSlice(parent[leaf])
		for _, v := range op.Values {
			found := false
			for _, member := range members {
				if compare(member, v) == 0 {
					found = true
					break
				}
			}
			if !found {
				members = append(members, v)
			}
		}
		parent[leaf] = members
	case core.ArrayRemoveOp:
		var kept []any
		for _, member := range toSlice(parent[leaf]) {
			remove := false
			for _, v := range op.Values {
				if compare(member, v) == 0 {
					remove = true
					break
				}
			}
			if !remove {
				kept = append(kept, member)
			}
		}
		parent[leaf] = kept
	case core.Transform:
		return fmt.Errorf("memory: unsupported transform %T", op)
	default:
		parent[leaf] = u.Value
	}
	return nil
}

// resolveParent walks to the map holding the final path segment, creating
// intermediate maps as Firestore's update does for dotted paths.
func resolveParent(data core.Data, fieldPath string) (map[string]any, string, error) {
	segments := strings.Split(fieldPath, ".")
	current := map[string]any(data)
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment]
		if !ok {
			created := make(map[string]any)
			current[segment] = created
			current = created
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return nil, "", fmt.Errorf("memory: field path %q crosses non-map value", fieldPath)
		}
		current = m
	}
	return current, segments[len(segments)-1], nil
}

func isIntegral(v any) bool {
	switch v.(type) {
	case int, int32, int64, nil:
		return true
	}
	return false
}
