package item

import (
	"sort"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/pkg/errors"
)

// Types whose items never get an identifier of their own. Mostly external
// schema.org types that are carried along inside review trees.
var noIdentTypes = []string{
	"MediaObject", "Timing", "schema:Language", "Thing",
	"schema:CreativeWork", "CreativeWork",
	"nif:String", "schema:Rating", "schema:ClaimReview", "ClaimReview",
}

// Types whose items never get a url.
var noURLTypes = append([]string{"Dataset", "SentencePair"}, noIdentTypes...)

func typeIn(name string, list []string) bool {
	for _, t := range list {
		if t == name {
			return true
		}
	}
	return false
}

func sortedKeys(m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIDs(idx Index) []string {
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EnsureIdent returns a copy of a value tree in which every item carries an
// identifier. Children are processed before their parents so that a parent
// identifier can hash over its children's identifiers. Items that already
// have an identifier, and the types in noIdentTypes, pass through as they
// are.
func (r *Registry) EnsureIdent(v any) (any, error) {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ev, err := r.EnsureIdent(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case M:
		result := make(M, len(t)+1)
		for _, k := range sortedKeys(t) {
			ev, err := r.EnsureIdent(t[k])
			if err != nil {
				return nil, err
			}
			result[k] = ev
		}
		if !IsItem(t) {
			return Clone(t), nil
		}
		if _, ok := t["identifier"]; ok {
			return result, nil
		}
		if typeIn(Type(t), noIdentTypes) {
			return result, nil
		}
		ident, err := r.CalcIdentifier(result)
		if err != nil {
			return nil, err
		}
		result["identifier"] = ident
		return result, nil
	default:
		return v, nil
	}
}

// EnsureURL returns a copy of a value tree in which every item carries a
// url. Items of types without a route template get an explicit null url so
// the key is present either way.
func (r *Registry) EnsureURL(v any) (any, error) {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ev, err := r.EnsureURL(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case M:
		result := make(M, len(t)+1)
		for _, k := range sortedKeys(t) {
			ev, err := r.EnsureURL(t[k])
			if err != nil {
				return nil, err
			}
			result[k] = ev
		}
		if !IsItem(t) {
			return Clone(t), nil
		}
		if _, ok := t["url"]; ok {
			return result, nil
		}
		if typeIn(Type(t), noURLTypes) {
			return result, nil
		}
		u, ok, err := r.ItemURL(result)
		if err != nil {
			return nil, err
		}
		if ok {
			result["url"] = u
		} else {
			result["url"] = nil
		}
		return result, nil
	default:
		return v, nil
	}
}

// CalcIdentifier computes an item's identifier by hashing its identity
// fields, with nested items replaced by their identifiers. Nested items
// without an identifier get one computed on the fly, children before
// parents; the item itself must not carry one yet.
func (r *Registry) CalcIdentifier(m M) (string, error) {
	if !IsItem(m) {
		return "", errors.New(errors.ErrCodeValidation, "cannot identify a value without an @type field")
	}
	if _, ok := m["identifier"]; ok {
		return "", errors.New(errors.ErrCodeValidation, "item already has an identifier")
	}
	keys, err := r.IdentKeys(Type(m))
	if err != nil {
		return "", err
	}
	selected := SelectKeys(m, keys)
	identified := make(M, len(selected))
	for k, v := range selected {
		ev, err := r.EnsureIdent(v)
		if err != nil {
			return "", err
		}
		identified[k] = ev
	}
	toID, err := ItemWithRefs(identified)
	if err != nil {
		return "", err
	}
	return HashItem(toID)
}

// WithIdentifier returns a copy of the item with its computed identifier
// attached.
func (r *Registry) WithIdentifier(m M) (M, error) {
	ident, err := r.CalcIdentifier(m)
	if err != nil {
		return nil, err
	}
	out := Clone(m)
	out["identifier"] = ident
	return out, nil
}

// ItemURL computes the canonical url for an item from its type's route
// template. ok is false for registered types whose items carry an external
// url instead.
func (r *Registry) ItemURL(m M) (string, bool, error) {
	if !IsItem(m) {
		return "", false, errors.New(errors.ErrCodeValidation, "cannot compute a url for a value without an @type field")
	}
	template, err := r.RouteTemplate(Type(m))
	if err != nil {
		return "", false, err
	}
	if template == "" {
		return "", false, nil
	}
	route, err := expandRoute(template, m)
	if err != nil {
		return "", false, err
	}
	return consts.CoinformContext + route, true, nil
}

// NormaliseNestedItem flattens a nested item into an identifier index whose
// values refer to each other by identifier. The root item's identifier is
// reported under the reserved mainItem key.
func (r *Registry) NormaliseNestedItem(tree M, opts Options) (M, error) {
	if !IsItem(tree) {
		return nil, errors.New(errors.ErrCodeValidation, "expecting an item with an @type field")
	}
	identTree, err := r.EnsureIdent(tree)
	if err != nil {
		return nil, err
	}
	root := identTree.(M)
	idx, err := IndexIdentTree(identTree, opts)
	if err != nil {
		return nil, err
	}
	out := make(M, len(idx)+1)
	for _, id := range sortedIDs(idx) {
		flat, err := ItemWithRefs(idx[id])
		if err != nil {
			return nil, err
		}
		out[id] = flat
	}
	mainIDs := ItemIdentifiers(root)
	if len(mainIDs) == 0 {
		return nil, errors.New(errors.ErrCodeIdentMissing, "main item has no identifier")
	}
	out["mainItem"] = mainIDs[0]
	return out, nil
}

// NestedItemAsGraph flattens a nested item into nodes and source/target/rel
// links. The root item's identifier is reported as mainNode.
func (r *Registry) NestedItemAsGraph(tree M, opts Options) (M, error) {
	if !IsItem(tree) {
		return nil, errors.New(errors.ErrCodeValidation, "expecting an item with an @type field")
	}
	identTree, err := r.EnsureIdent(tree)
	if err != nil {
		return nil, err
	}
	root := identTree.(M)
	indexOpts := opts
	indexOpts.UniqueIDIndex = true
	idx, err := IndexIdentTree(identTree, indexOpts)
	if err != nil {
		return nil, err
	}
	nodes := make([]any, 0, len(idx))
	links := make([]M, 0)
	for _, id := range sortedIDs(idx) {
		node, nodeLinks, err := ItemAndLinks(idx[id], opts)
		if err != nil {
			return nil, err
		}
		if opts.EnsureURLs {
			ev, err := r.EnsureURL(node)
			if err != nil {
				return nil, err
			}
			node = ev.(M)
		}
		nodes = append(nodes, node)
		links = append(links, nodeLinks...)
	}
	mainIDs := ItemIdentifiers(root)
	if len(mainIDs) == 0 {
		return nil, errors.New(errors.ErrCodeIdentMissing, "main item has no identifier")
	}
	return M{
		"@context": consts.CoinformContext,
		"@type":    "Graph",
		"nodes":    nodes,
		"links":    links,
		"mainNode": mainIDs[0],
	}, nil
}

// Package-level forms of the registry-backed operations, bound to the
// process-wide registry.

// EnsureIdent adds identifiers throughout a value tree.
func EnsureIdent(v any) (any, error) { return defaultRegistry.EnsureIdent(v) }

// EnsureURL adds urls throughout a value tree.
func EnsureURL(v any) (any, error) { return defaultRegistry.EnsureURL(v) }

// CalcIdentifier computes an item's content-addressable identifier.
func CalcIdentifier(m M) (string, error) { return defaultRegistry.CalcIdentifier(m) }

// WithIdentifier returns a copy of the item with its identifier attached.
func WithIdentifier(m M) (M, error) { return defaultRegistry.WithIdentifier(m) }

// ItemURL computes an item's canonical url.
func ItemURL(m M) (string, bool, error) { return defaultRegistry.ItemURL(m) }

// NormaliseNestedItem flattens a nested item into an identifier index.
func NormaliseNestedItem(tree M, opts Options) (M, error) {
	return defaultRegistry.NormaliseNestedItem(tree, opts)
}

// NestedItemAsGraph flattens a nested item into a nodes-and-links graph.
func NestedItemAsGraph(tree M, opts Options) (M, error) {
	return defaultRegistry.NestedItemAsGraph(tree, opts)
}
