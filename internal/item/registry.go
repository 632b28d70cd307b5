package item

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/veridex/veridex/pkg/errors"
	"github.com/veridex/veridex/pkg/logger"
)

// Descriptor declares how items of a registered type are identified and
// linked to other items.
type Descriptor struct {
	// SuperTypes lists more general type names for the type.
	SuperTypes []string
	// IdentKeys are the fields whose values together identify an item of
	// the type. Hashing these fields yields the item's identifier.
	IdentKeys []string
	// RouteTemplate is the canonical route for items of the type, with
	// {field} placeholders expanded from the item. Empty for types whose
	// items already carry an external url.
	RouteTemplate string
	// ItemRefKeys are the fields whose values are other items (or
	// references to them).
	ItemRefKeys []string
}

// Registry maps type names to their descriptors. The zero value is not
// usable; call NewRegistry.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Descriptor
}

// NewRegistry returns a registry pre-populated with the review type schema:
// the rating, creative-work, agent, bot and review types produced by the
// pipeline.
func NewRegistry() *Registry {
	r := &Registry{types: map[string]Descriptor{}}

	ratingIdent := []string{"@type", "reviewAspect", "ratingValue", "confidence", "ratingExplanation"}
	r.mustRegister("Rating", Descriptor{
		IdentKeys:     ratingIdent,
		RouteTemplate: "/rating/{identifier}",
	})
	r.mustRegister("AggregateRating", Descriptor{
		SuperTypes:    []string{"Rating"},
		IdentKeys:     append(append([]string{}, ratingIdent...), "ratingCount", "reviewCount"),
		RouteTemplate: "/rating/{identifier}",
	})

	// WebPage and Article items already have an external url, so no route
	r.mustRegister("WebPage", Descriptor{
		SuperTypes:  []string{"CreativeWork"},
		IdentKeys:   []string{"@type", "url"},
		ItemRefKeys: []string{"mentioned_in"},
	})
	r.mustRegister("Article", Descriptor{
		SuperTypes: []string{"CreativeWork"},
		IdentKeys:  []string{"@type", "url"},
	})
	r.mustRegister("Sentence", Descriptor{
		SuperTypes:    []string{"CreativeWork"},
		IdentKeys:     []string{"@type", "text"},
		RouteTemplate: "/sentence/{identifier}",
		ItemRefKeys:   []string{"appearance"},
	})
	r.mustRegister("Claim", Descriptor{
		SuperTypes:    []string{"CreativeWork", "Sentence"},
		IdentKeys:     []string{"@type", "text"},
		RouteTemplate: "/sentence/{identifier}",
		ItemRefKeys:   []string{"appearance"},
	})

	agentIdent := []string{"@type", "name", "url"}
	r.mustRegister("Organization", Descriptor{
		IdentKeys:     agentIdent,
		RouteTemplate: "/organization/{identifier}",
	})
	r.mustRegister("Person", Descriptor{
		IdentKeys:     agentIdent,
		RouteTemplate: "/person/{identifier}",
	})
	r.mustRegister("schema:Organization", Descriptor{
		IdentKeys:     agentIdent,
		RouteTemplate: "/organization/{identifier}",
	})

	// Bot types. Most are identified by their isBasedOn sub-bots; the
	// sentence encoder predates that convention and still uses author.
	botRoute := "/bot/{@type}/{softwareVersion}/{identifier}"
	botIdent := []string{"@type", "name", "dateCreated", "softwareVersion", "isBasedOn", "launchConfiguration"}
	r.mustRegister("SentenceEncoder", Descriptor{
		SuperTypes:    []string{"SoftwareApplication", "Bot"},
		IdentKeys:     []string{"@type", "name", "dateCreated", "softwareVersion", "author", "launchConfiguration"},
		RouteTemplate: botRoute,
		ItemRefKeys:   []string{"author"},
	})
	r.mustRegister("SemSentSimReviewer", Descriptor{
		SuperTypes:    []string{"SoftwareApplication", "Bot"},
		IdentKeys:     botIdent,
		RouteTemplate: botRoute,
		ItemRefKeys:   []string{"author"},
	})
	for _, bot := range []string{
		"SentCheckWorthinessReviewer",
		"SentStanceReviewer",
		"SentPolarityReviewer",
		"ClaimReviewNormalizer",
		"MisinfoMeSourceCredReviewer",
		"DBSentCredReviewer",
		"QSentCredReviewer",
		"TweetCredReviewer",
	} {
		r.mustRegister(bot, Descriptor{
			SuperTypes:    []string{"SoftwareApplication", "Bot"},
			IdentKeys:     botIdent,
			RouteTemplate: botRoute,
			ItemRefKeys:   []string{"isBasedOn"},
		})
	}
	for _, bot := range []string{
		"AggQSentCredReviewer",
		"ArticleCredReviewer",
		"CredReviewer",
	} {
		r.mustRegister(bot, Descriptor{
			SuperTypes:    []string{"Bot", "SoftwareApplication"},
			IdentKeys:     botIdent,
			RouteTemplate: botRoute,
			ItemRefKeys:   []string{"isBasedOn"},
		})
	}

	// Review types
	reviewRoute := "/review/{identifier}"
	reviewIdent := []string{"@type", "dateCreated", "author", "itemReviewed", "reviewRating"}
	reviewRefs := []string{"author", "itemReviewed", "reviewRating"}
	r.mustRegister("SentCheckWorthinessReview", Descriptor{
		SuperTypes:    []string{"CheckWorthinessReview", "Review"},
		IdentKeys:     reviewIdent,
		RouteTemplate: reviewRoute,
		ItemRefKeys:   reviewRefs,
	})
	r.mustRegister("SentStanceReview", Descriptor{
		SuperTypes:    []string{"StanceReview", "Review"},
		IdentKeys:     reviewIdent,
		RouteTemplate: reviewRoute,
		ItemRefKeys:   reviewRefs,
	})
	r.mustRegister("SentSimilarityReview", Descriptor{
		SuperTypes:    []string{"SimilarityReview", "Review"},
		IdentKeys:     reviewIdent,
		RouteTemplate: reviewRoute,
		ItemRefKeys:   reviewRefs,
	})
	r.mustRegister("SentPolarSimilarityReview", Descriptor{
		SuperTypes: []string{"SimilarityReview", "Review"},
		IdentKeys: []string{"@type", "headline", "reviewBody", "dateCreated",
			"author", "itemReviewed", "reviewRating", "isBasedOn"},
		RouteTemplate: reviewRoute,
		ItemRefKeys:   []string{"author", "itemReviewed", "reviewRating", "isBasedOn"},
	})
	r.mustRegister("NormalisedClaimReview", Descriptor{
		SuperTypes: []string{"ClaimReview", "Review"},
		IdentKeys: []string{"@type", "dateCreated", "author", "claimReviewed", "reviewRating",
			"reviewAspect", "basedOnClaimReview"},
		RouteTemplate: reviewRoute,
		ItemRefKeys:   []string{"author", "reviewRating", "basedOnClaimReview"},
	})
	// external claim reviews keep the fact-checker's own url
	r.mustRegister("schema:ClaimReview", Descriptor{
		IdentKeys: []string{"url"},
	})
	r.mustRegister("WebSiteCredReview", Descriptor{
		SuperTypes:    []string{"CredibilityReview", "Review"},
		IdentKeys:     reviewIdent,
		RouteTemplate: reviewRoute,
		ItemRefKeys:   reviewRefs,
	})
	credIdent := []string{"@type", "dateCreated", "author", "itemReviewed", "reviewRating", "isBasedOn"}
	credRefs := []string{"author", "itemReviewed", "reviewRating", "isBasedOn"}
	for _, rev := range []string{
		"DBSentCredReview",
		"QSentCredReview",
		"AggQSentCredReview",
		"ArticleCredReview",
		"TweetCredReview",
	} {
		r.mustRegister(rev, Descriptor{
			SuperTypes:    []string{"CredibilityReview", "Review"},
			IdentKeys:     credIdent,
			RouteTemplate: reviewRoute,
			ItemRefKeys:   credRefs,
		})
	}
	r.mustRegister("DocumentCredReview", Descriptor{
		SuperTypes:    []string{"CreativeWork", "Review"},
		IdentKeys:     []string{"@type", "reviewAspect", "itemReviewed", "dateCreated", "author", "reviewRating"},
		RouteTemplate: reviewRoute,
		ItemRefKeys:   []string{"itemReviewed", "author", "reviewRating"},
	})

	return r
}

// Register adds a descriptor for a type name. Registering the same name
// twice is an error, as is a descriptor without ident keys.
func (r *Registry) Register(name string, d Descriptor) error {
	if name == "" {
		return errors.New(errors.ErrCodeValidation, "type name must not be empty")
	}
	if len(d.IdentKeys) == 0 {
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("type %s needs at least one ident key", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[name]; ok {
		return errors.New(errors.ErrCodeTypeDuplicate,
			fmt.Sprintf("a schema for %s was already registered, duplicates are not allowed", name))
	}
	r.types[name] = d
	return nil
}

func (r *Registry) mustRegister(name string, d Descriptor) {
	if err := r.Register(name, d); err != nil {
		panic(err)
	}
}

// Registered reports whether the type name has a descriptor.
func (r *Registry) Registered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[name]
	return ok
}

// TypeNames returns all registered type names in sorted order.
func (r *Registry) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SuperTypes returns the super type names for a type. Unregistered types
// are tolerated here (unlike the other lookups) since arbitrary schema.org
// types can appear in inbound documents; they have no known super types.
func (r *Registry) SuperTypes(name string) []string {
	r.mu.RLock()
	d, ok := r.types[name]
	r.mu.RUnlock()
	if !ok {
		logger.Warn("type name has not been registered", zap.String("type", name))
		return []string{}
	}
	if d.SuperTypes == nil {
		return []string{}
	}
	return d.SuperTypes
}

// IdentKeys returns the identity fields for a type.
func (r *Registry) IdentKeys(name string) ([]string, error) {
	r.mu.RLock()
	d, ok := r.types[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeTypeNotRegistered,
			fmt.Sprintf("type name %s has not been registered", name))
	}
	return d.IdentKeys, nil
}

// ItemRefKeys returns the item-reference fields for a type.
func (r *Registry) ItemRefKeys(name string) ([]string, error) {
	r.mu.RLock()
	d, ok := r.types[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeTypeNotRegistered,
			fmt.Sprintf("type name %s has not been registered", name))
	}
	if d.ItemRefKeys == nil {
		return []string{}, nil
	}
	return d.ItemRefKeys, nil
}

// RouteTemplate returns the route template for a type, or the empty string
// for registered types whose items carry an external url.
func (r *Registry) RouteTemplate(name string) (string, error) {
	r.mu.RLock()
	d, ok := r.types[name]
	r.mu.RUnlock()
	if !ok {
		return "", errors.New(errors.ErrCodeTypeNotRegistered,
			fmt.Sprintf("type name %s has not been registered", name))
	}
	return d.RouteTemplate, nil
}

// expandRoute fills {field} placeholders in a route template with the
// item's values. Every placeholder must resolve.
func expandRoute(template string, m M) (string, error) {
	var out strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			return "", errors.New(errors.ErrCodeRouteTemplate,
				fmt.Sprintf("unbalanced placeholder in route template %s", template))
		}
		out.WriteString(rest[:open])
		field := rest[open+1 : open+closing]
		v, ok := m[field]
		if !ok {
			return "", errors.New(errors.ErrCodeRouteTemplate,
				fmt.Sprintf("item is missing route field %s for template %s", field, template))
		}
		out.WriteString(fmt.Sprintf("%v", v))
		rest = rest[open+closing+1:]
	}
}

var defaultRegistry = NewRegistry()

// Types returns the process-wide type registry used by the package-level
// normalisation functions.
func Types() *Registry {
	return defaultRegistry
}
