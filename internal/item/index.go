package item

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/veridex/veridex/pkg/errors"
	"github.com/veridex/veridex/pkg/logger"
)

// Options tune how trees are indexed and rendered as graphs.
type Options struct {
	// CompositeRels lists relation names treated as part of their parent
	// item: their values are neither indexed separately nor decomposed
	// into links.
	CompositeRels []string
	// UniqueIDIndex indexes each item only under its first identifier
	// instead of under all of identifier, @id and url.
	UniqueIDIndex bool
	// EnsureURLs adds canonical urls to graph nodes.
	EnsureURLs bool
}

// IndexIdentTree flattens a value tree into an identifier index. Every item
// in the tree (other than the noIdentTypes) must carry at least one of
// identifier, @id or url. Branches indexed under several identifiers share
// the same underlying map; entries meeting under one identifier are merged
// with later fields winning.
func IndexIdentTree(v any, opts Options) (Index, error) {
	switch t := v.(type) {
	case []any:
		result := Index{}
		for _, e := range t {
			sub, err := IndexIdentTree(e, opts)
			if err != nil {
				return nil, err
			}
			result = indexMerge(result, sub)
		}
		return result, nil
	case M:
		result := Index{}
		for _, k := range sortedKeys(t) {
			if typeIn(k, opts.CompositeRels) {
				continue
			}
			sub, err := IndexIdentTree(t[k], opts)
			if err != nil {
				return nil, err
			}
			result = indexMerge(result, sub)
		}
		if IsItem(t) && !typeIn(Type(t), noIdentTypes) {
			ids := ItemIdentifiers(t)
			if len(ids) == 0 {
				return nil, errors.New(errors.ErrCodeIdentMissing,
					fmt.Sprintf("cannot index a %s item without identifiers", Type(t)))
			}
			if opts.UniqueIDIndex {
				ids = ids[:1]
			}
			for _, id := range ids {
				result = indexMerge(result, Index{id: t})
			}
		}
		return result, nil
	default:
		// simple values are never indexed
		return Index{}, nil
	}
}

func indexMerge(a, b Index) Index {
	result := make(Index, len(a)+len(b))
	for k, v := range a {
		result[k] = v
	}
	for k, v := range b {
		if prev, ok := result[k]; ok {
			result[k] = Merge(prev, v)
		} else {
			result[k] = v
		}
	}
	return result
}

// ValidateItemIndex checks that v has the shape of an identifier index:
// a map with string keys and map values.
func ValidateItemIndex(v any) error {
	switch idx := v.(type) {
	case Index:
		return nil
	case M:
		for k, val := range idx {
			if _, ok := val.(M); !ok {
				return errors.New(errors.ErrCodeIndexInvalid,
					fmt.Sprintf("index value for %s is not a map", k))
			}
		}
		return nil
	default:
		return errors.New(errors.ErrCodeIndexInvalid,
			fmt.Sprintf("an item index must be a map, not %T", v))
	}
}

// ItemWithRefs returns a copy of an item in which every nested item has
// been replaced by its first identifier. Nested items must already carry
// identifiers; nested maps without an @type are kept as shallow copies.
func ItemWithRefs(m M) (M, error) {
	if !IsItem(m) {
		logger.Warn("expecting an item, @type field not included", zap.Any("keys", sortedKeys(m)))
	}
	out := make(M, len(m))
	for _, k := range sortedKeys(m) {
		rv, err := valueAsRef(m[k], k)
		if err != nil {
			return nil, err
		}
		out[k] = rv
	}
	return out, nil
}

func valueAsRef(v any, key string) (any, error) {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			rv, err := valueAsRef(e, key)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	case M:
		if IsItem(t) && !typeIn(Type(t), noIdentTypes) {
			ids := ItemIdentifiers(t)
			if len(ids) == 0 {
				return nil, errors.New(errors.ErrCodeIdentMissing,
					fmt.Sprintf("nested item in %s does not have an identifier", key))
			}
			return ids[0], nil
		}
		return Clone(t), nil
	case nil:
		return nil, nil
	case string, bool, float64, float32, int, int64:
		return v, nil
	default:
		return nil, errors.New(errors.ErrCodeIndexInvalid,
			fmt.Sprintf("unsupported value type %T for %s", v, key))
	}
}

// ItemAndLinks reduces an item to a graph node plus the links standing in
// for its nested items. List-valued properties never stay on the node:
// their item elements become links and everything else is dropped. Scalar
// values, null values, plain maps and composite relations stay on the node.
func ItemAndLinks(m M, opts Options) (M, []M, error) {
	if !IsItem(m) {
		return nil, nil, errors.New(errors.ErrCodeValidation, "expecting an item with an @type field")
	}
	ids := ItemIdentifiers(m)
	if len(ids) == 0 {
		return nil, nil, errors.New(errors.ErrCodeIdentMissing, "cannot build links for an item without identifiers")
	}
	srcID := ids[0]
	node := M{}
	var links []M
	for _, k := range sortedKeys(m) {
		ls, keep, err := valueAsLinks(m[k], srcID, k, opts)
		if err != nil {
			return nil, nil, err
		}
		if keep {
			node[k] = m[k]
		} else {
			links = append(links, ls...)
		}
	}
	return node, links, nil
}

func valueAsLinks(v any, srcID, rel string, opts Options) ([]M, bool, error) {
	if typeIn(rel, opts.CompositeRels) {
		return nil, true, nil
	}
	switch t := v.(type) {
	case []any:
		var links []M
		for _, e := range t {
			sub, keep, err := valueAsLinks(e, srcID, rel, opts)
			if err != nil {
				return nil, false, err
			}
			if !keep {
				links = append(links, sub...)
			}
		}
		return links, false, nil
	case M:
		if IsItem(t) && !typeIn(Type(t), noIdentTypes) {
			ids := ItemIdentifiers(t)
			if len(ids) == 0 {
				return nil, false, errors.New(errors.ErrCodeIdentMissing,
					fmt.Sprintf("nested item in %s does not have an identifier", rel))
			}
			return []M{{"source": srcID, "target": ids[0], "rel": rel}}, false, nil
		}
		return nil, true, nil
	case nil:
		return nil, true, nil
	case string, bool, float64, float32, int, int64:
		return nil, true, nil
	default:
		return nil, false, errors.New(errors.ErrCodeIndexInvalid,
			fmt.Sprintf("unsupported value type %T for %s in %s", v, rel, srcID))
	}
}

// TrimTree limits how many hops of prop are kept in a nested tree. At a
// remaining depth of zero the property is removed entirely.
func TrimTree(v any, prop string, depth int) (any, error) {
	if depth < 0 {
		return nil, errors.New(errors.ErrCodeValidation, fmt.Sprintf("negative trim depth %d", depth))
	}
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			tv, err := TrimTree(e, prop, depth)
			if err != nil {
				return nil, err
			}
			out[i] = tv
		}
		return out, nil
	case M:
		if !IsItem(t) {
			return t, nil
		}
		if _, ok := t[prop]; !ok {
			return t, nil
		}
		result := Clone(t)
		if depth == 0 {
			delete(result, prop)
		} else {
			tv, err := TrimTree(result[prop], prop, depth-1)
			if err != nil {
				return nil, err
			}
			result[prop] = tv
		}
		return result, nil
	default:
		return v, nil
	}
}

// FilterIndexByType returns the subset of an index whose items declare any
// of the query types.
func FilterIndexByType(idx Index, qtypes ...string) Index {
	out := Index{}
	for id, it := range idx {
		if IsItem(it) && ItemMatchesType(it, qtypes) {
			out[id] = it
		}
	}
	return out
}

// PartitionIdentIndex splits an index into labelled sub-indexes by type.
// The label _rest is reserved and collects items matching no partition;
// non-item values are dropped. When an item matches several partitions it
// lands in the first matching label in sorted label order.
func PartitionIdentIndex(idx Index, partitions map[string][]string) (map[string]Index, error) {
	if _, ok := partitions["_rest"]; ok {
		return nil, errors.New(errors.ErrCodeValidation, "partition label _rest is reserved")
	}
	result := make(map[string]Index, len(partitions)+1)
	labels := make([]string, 0, len(partitions))
	for label := range partitions {
		result[label] = Index{}
		labels = append(labels, label)
	}
	result["_rest"] = Index{}
	sort.Strings(labels)
	for id, it := range idx {
		if !IsItem(it) {
			continue
		}
		var matched []string
		for _, label := range labels {
			if ItemMatchesType(it, partitions[label]) {
				matched = append(matched, label)
			}
		}
		switch {
		case len(matched) > 1:
			logger.Warn("multiple partitions match item",
				zap.String("identifier", id), zap.Strings("labels", matched))
			result[matched[0]][id] = it
		case len(matched) == 1:
			result[matched[0]][id] = it
		default:
			result["_rest"][id] = it
		}
	}
	return result, nil
}

// TypeCount is one entry of a type histogram.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// BuildTypeHisto counts the declared types of the items in an index, most
// frequent first. Ties are ordered by type name.
func BuildTypeHisto(idx Index) []TypeCount {
	counts := map[string]int{}
	for _, it := range idx {
		if t, ok := it["@type"].(string); ok && t != "" {
			counts[t]++
		}
	}
	out := make([]TypeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, TypeCount{Type: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}
