package game

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/zond/azimuth/structs"
)

var (
	constructors = map[Variant]func() Entity{
		VariantPlace:             func() Entity { return &Place{exits: map[string]Passage{}} },
		VariantExit:              func() Entity { return &Exit{} },
		VariantOpenableExit:      func() Entity { return &OpenableExit{OpenState: OpenState{IsOpen: true}} },
		VariantLockableExit:      func() Entity { return &LockableExit{OpenableExit: OpenableExit{OpenState: OpenState{IsOpen: true}}} },
		VariantObject:            func() Entity { return &Object{} },
		VariantContainer:         func() Entity { return &Container{} },
		VariantOpenableContainer: func() Entity { return &OpenableContainer{OpenState: OpenState{IsOpen: true}} },
		VariantLockableContainer: func() Entity {
			return &LockableContainer{OpenableContainer: OpenableContainer{OpenState: OpenState{IsOpen: true}}}
		},
		VariantFurniture:  func() Entity { return &Furniture{} },
		VariantClothing:   func() Entity { return &Clothing{} },
		VariantHeldObject: func() Entity { return &HeldObject{} },
		VariantPlayer:     func() Entity { return &Player{} },
		VariantProgrammer: func() Entity { return &Programmer{} },
	}
)

// Instantiable returns the sorted variants that can be constructed.
func Instantiable() []Variant {
	result := make([]Variant, 0, len(constructors))
	for v := range constructors {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i] < result[j]
	})
	return result
}

// ParseVariant returns the instantiable variant named s.
func ParseVariant(s string) (Variant, bool) {
	for v := range constructors {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// newEntity returns an empty entity of variant v, without id.
func newEntity(v Variant) (Entity, error) {
	constructor, found := constructors[v]
	if !found {
		return nil, errors.Errorf("unknown class %q", v)
	}
	e := constructor()
	e.Base().self = e
	return e, nil
}

type variantRecorder interface {
	recordVariant(rec structs.Record)
}

type variantLoader interface {
	loadVariant(rec structs.Record)
}

// Record serializes e.
func Record(e Entity) structs.Record {
	rec := e.Base().record(e.Variant())
	if r, ok := e.(variantRecorder); ok {
		r.recordVariant(rec)
	}
	recordCapabilities(e, rec)
	return rec
}

// restore sets the fields of e that don't refer to other entities.
func restore(e Entity, rec structs.Record) {
	e.Base().load(rec)
	if l, ok := e.(variantLoader); ok {
		l.loadVariant(rec)
	}
	loadCapabilities(e, rec)
}
