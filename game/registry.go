package game

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Role is what a grammar accepts as direct or indirect object.
type Role string

const (
	// RoleNone accepts no object.
	RoleNone Role = ""
	// RoleSelf requires the text to name the entity owning the grammar.
	RoleSelf Role = "self"
	// RoleAny passes the text through unresolved.
	RoleAny Role = "any"
)

// Invocation is a matched command.
type Invocation struct {
	World  *World
	Player *Player
	// Self is the entity whose grammar matched, nil for world grammars.
	Self Entity
	Verb string
	Prep string
	Dobj string
	Iobj string
}

type Handler func(ctx context.Context, inv *Invocation) error

// Grammar is a verb pattern routed to a handler.
type Grammar struct {
	Verbs   []string
	Dobj    Role
	Preps   []string
	Iobj    Role
	Handler Handler
}

// signature identifies grammars that replace each other when inherited.
func (g Grammar) signature() string {
	verbs := append([]string{}, g.Verbs...)
	sort.Strings(verbs)
	return fmt.Sprintf("%s/%s/%s/%s", strings.Join(verbs, ","), g.Dobj, strings.Join(g.Preps, ","), g.Iobj)
}

func (g Grammar) String() string {
	parts := []string{strings.Join(g.Verbs, "|")}
	if g.Dobj != RoleNone {
		parts = append(parts, fmt.Sprintf("<%s>", g.Dobj))
	}
	if len(g.Preps) > 0 {
		parts = append(parts, strings.Join(g.Preps, "|"))
	}
	if g.Iobj != RoleNone {
		parts = append(parts, fmt.Sprintf("<%s>", g.Iobj))
	}
	return strings.Join(parts, " ")
}

// variantSpec is the static declaration of a variant: the variants it
// inherits from, most base first, and its own grammars and messages.
type variantSpec struct {
	parents  []Variant
	grammars []Grammar
	messages map[string]string
}

// Registry holds the merged grammar and message tables of every variant.
// It is immutable after NewRegistry.
type Registry struct {
	specs     map[Variant]variantSpec
	lists     map[Variant][]Grammar
	grammars  map[Variant]map[string][]Grammar
	messages  map[Variant]map[string]string
	ancestors map[Variant]map[Variant]bool
}

// NewRegistry merges specs. Every variant inherits the grammars and messages
// of its parents, most base first, and a grammar with the same signature as
// an inherited one replaces it in place.
func NewRegistry(specs map[Variant]variantSpec) (*Registry, error) {
	r := &Registry{
		specs:     specs,
		lists:     map[Variant][]Grammar{},
		grammars:  map[Variant]map[string][]Grammar{},
		messages:  map[Variant]map[string]string{},
		ancestors: map[Variant]map[Variant]bool{},
	}
	for v := range specs {
		order, err := r.linearize(v, map[Variant]bool{}, map[Variant]bool{})
		if err != nil {
			return nil, err
		}
		list := []Grammar{}
		messages := map[string]string{}
		ancestors := map[Variant]bool{}
		for _, ancestor := range order {
			ancestors[ancestor] = true
			spec := specs[ancestor]
			list = mergeGrammars(list, spec.grammars)
			for key, msg := range spec.messages {
				messages[key] = msg
			}
		}
		r.lists[v] = list
		r.grammars[v] = verbTable(list)
		r.messages[v] = messages
		r.ancestors[v] = ancestors
	}
	return r, nil
}

// linearize returns v and its ancestors, each once, parents before children.
func (r *Registry) linearize(v Variant, visited map[Variant]bool, visiting map[Variant]bool) ([]Variant, error) {
	if visited[v] {
		return nil, nil
	}
	if visiting[v] {
		return nil, errors.Errorf("inheritance cycle at %q", v)
	}
	spec, found := r.specs[v]
	if !found {
		return nil, errors.Errorf("unknown variant %q", v)
	}
	visiting[v] = true
	result := []Variant{}
	for _, parent := range spec.parents {
		order, err := r.linearize(parent, visited, visiting)
		if err != nil {
			return nil, err
		}
		result = append(result, order...)
	}
	visited[v] = true
	return append(result, v), nil
}

func mergeGrammars(list []Grammar, add []Grammar) []Grammar {
	result := append([]Grammar{}, list...)
	for _, g := range add {
		replaced := false
		for i := range result {
			if result[i].signature() == g.signature() {
				result[i] = g
				replaced = true
				break
			}
		}
		if !replaced {
			result = append(result, g)
		}
	}
	return result
}

func verbTable(list []Grammar) map[string][]Grammar {
	result := map[string][]Grammar{}
	for _, g := range list {
		for _, verb := range g.Verbs {
			result[verb] = append(result[verb], g)
		}
	}
	return result
}

// Grammars returns the grammars of v for verb, in declaration order.
func (r *Registry) Grammars(v Variant, verb string) []Grammar {
	return r.grammars[v][verb]
}

// Verbs returns the sorted verbs v understands.
func (r *Registry) Verbs(v Variant) []string {
	result := make([]string, 0, len(r.grammars[v]))
	for verb := range r.grammars[v] {
		result = append(result, verb)
	}
	sort.Strings(result)
	return result
}

// withInstance returns the verb table of v extended with instance grammars.
func (r *Registry) withInstance(v Variant, extra []Grammar) map[string][]Grammar {
	return verbTable(mergeGrammars(r.lists[v], extra))
}

// Message returns the merged message template of v for key.
func (r *Registry) Message(v Variant, key string) (string, bool) {
	msg, found := r.messages[v][key]
	return msg, found
}

// Messages returns a copy of the merged message table of v.
func (r *Registry) Messages(v Variant) map[string]string {
	result := map[string]string{}
	for k, m := range r.messages[v] {
		result[k] = m
	}
	return result
}

// IsA returns true if v is ancestor or inherits from it.
func (r *Registry) IsA(v Variant, ancestor Variant) bool {
	return r.ancestors[v][ancestor]
}

// Descendants returns the sorted instantiable variants that are ancestor or
// inherit from it.
func (r *Registry) Descendants(ancestor Variant) []Variant {
	result := []Variant{}
	for _, v := range Instantiable() {
		if r.IsA(v, ancestor) {
			result = append(result, v)
		}
	}
	return result
}
