package game

import (
	"github.com/zond/azimuth/structs"
)

// OpenState is the state of things that can be opened and closed. When
// PairedID is set, the paired object follows the open state, e.g. the other
// side of a door.
type OpenState struct {
	IsOpen   bool
	PairedID string
}

func (s *OpenState) GetOpenState() *OpenState {
	return s
}

func (s *OpenState) saveTo(rec structs.Record) {
	rec["open"] = s.IsOpen
	rec["open_paired_object"] = structs.Ref(s.PairedID)
}

func (s *OpenState) loadFrom(rec structs.Record) {
	s.IsOpen = rec.Bool("open", true)
	s.PairedID = rec.String("open_paired_object")
}

// LockState is the state of lockable things. KeyID is the object that locks
// and unlocks, LockedBy restricts locking to a single player.
type LockState struct {
	IsLocked bool
	KeyID    string
	LockedBy string
	PairedID string
}

func (s *LockState) GetLockState() *LockState {
	return s
}

func (s *LockState) saveTo(rec structs.Record) {
	rec["is_locked"] = s.IsLocked
	rec["locked_by_object"] = structs.Ref(s.KeyID)
	rec["locked_by_player"] = structs.Ref(s.LockedBy)
	rec["lock_paired_object"] = structs.Ref(s.PairedID)
}

func (s *LockState) loadFrom(rec structs.Record) {
	s.IsLocked = rec.Bool("is_locked", false)
	s.KeyID = rec.String("locked_by_object")
	s.LockedBy = rec.String("locked_by_player")
	s.PairedID = rec.String("lock_paired_object")
}

type WearState struct {
	WornBy string
}

func (s *WearState) GetWearState() *WearState {
	return s
}

func (s *WearState) saveTo(rec structs.Record) {
	rec["worn_by"] = structs.Ref(s.WornBy)
}

func (s *WearState) loadFrom(rec structs.Record) {
	s.WornBy = rec.String("worn_by")
}

type HoldState struct {
	HeldBy string
}

func (s *HoldState) GetHoldState() *HoldState {
	return s
}

func (s *HoldState) saveTo(rec structs.Record) {
	rec["held_by"] = structs.Ref(s.HeldBy)
}

func (s *HoldState) loadFrom(rec structs.Record) {
	s.HeldBy = rec.String("held_by")
}

// Position is a thing placed relative to a piece of furniture.
type Position struct {
	ThingID string
	Prep    string
}

type PositionState struct {
	Positioned []Position
}

func (s *PositionState) GetPositionState() *PositionState {
	return s
}

// CanPosition is the capacity policy hook. There is no limit.
func (s *PositionState) CanPosition(e Entity) bool {
	return true
}

// Set places id at prep, replacing any earlier position of the same thing.
func (s *PositionState) Set(id string, prep string) {
	s.Clear(id)
	s.Positioned = append(s.Positioned, Position{ThingID: id, Prep: prep})
}

func (s *PositionState) Clear(id string) {
	for i, p := range s.Positioned {
		if p.ThingID == id {
			s.Positioned = append(s.Positioned[:i], s.Positioned[i+1:]...)
			return
		}
	}
}

func (s *PositionState) saveTo(rec structs.Record) {
	positioned := []map[string]string{}
	for _, p := range s.Positioned {
		positioned = append(positioned, map[string]string{"id": p.ThingID, "prep": p.Prep})
	}
	rec["positioned"] = positioned
}

func (s *PositionState) loadFrom(rec structs.Record) {
	s.Positioned = nil
	for _, m := range rec.Maps("positioned") {
		s.Positioned = append(s.Positioned, Position{ThingID: m["id"], Prep: m["prep"]})
	}
}

type Openable interface {
	Entity
	GetOpenState() *OpenState
}

type Lockable interface {
	Openable
	GetLockState() *LockState
}

// Containable is implemented by entities offering put/take/look in.
type Containable interface {
	Entity
	containable()
}

type Wearable interface {
	Entity
	GetWearState() *WearState
}

type Holdable interface {
	Entity
	GetHoldState() *HoldState
}

type Positionable interface {
	Entity
	GetPositionState() *PositionState
}

// isOpen returns false only for closed openables.
func isOpen(e Entity) bool {
	if o, ok := e.(Openable); ok {
		return o.GetOpenState().IsOpen
	}
	return true
}

// recordCapabilities adds the fields of every capability e has.
func recordCapabilities(e Entity, rec structs.Record) {
	if o, ok := e.(Openable); ok {
		o.GetOpenState().saveTo(rec)
	}
	if l, ok := e.(Lockable); ok {
		l.GetLockState().saveTo(rec)
	}
	if w, ok := e.(Wearable); ok {
		w.GetWearState().saveTo(rec)
	}
	if h, ok := e.(Holdable); ok {
		h.GetHoldState().saveTo(rec)
	}
	if p, ok := e.(Positionable); ok {
		p.GetPositionState().saveTo(rec)
	}
}

func loadCapabilities(e Entity, rec structs.Record) {
	if o, ok := e.(Openable); ok {
		o.GetOpenState().loadFrom(rec)
	}
	if l, ok := e.(Lockable); ok {
		l.GetLockState().loadFrom(rec)
	}
	if w, ok := e.(Wearable); ok {
		w.GetWearState().loadFrom(rec)
	}
	if h, ok := e.(Holdable); ok {
		h.GetHoldState().loadFrom(rec)
	}
	if p, ok := e.(Positionable); ok {
		p.GetPositionState().loadFrom(rec)
	}
}

// release clears any wear or hold state of e, done when it leaves the hands
// of its user.
func release(e Entity) {
	if w, ok := e.(Wearable); ok {
		w.GetWearState().WornBy = ""
	}
	if h, ok := e.(Holdable); ok {
		h.GetHoldState().HeldBy = ""
	}
}
