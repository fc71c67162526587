package game

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/zond/azimuth"
	"github.com/zond/azimuth/storage"
	"github.com/zond/azimuth/structs"
)

var (
	ErrClosed = errors.New("world is closed")
)

type Options struct {
	// WorldID is the id of the bootstrap record.
	WorldID string
	Store   storage.Store
	// Audit may be nil.
	Audit *storage.AuditLogger
	// WizardPassword is the password of the programmer created when seeding.
	WizardPassword string
	// LoginInterval is how long a username is refused after a failed login.
	LoginInterval time.Duration
	// OutboxSize is the number of messages buffered per session.
	OutboxSize int
}

type job struct {
	ctx     context.Context
	session *Session
	f       func(context.Context) error
	done    chan struct{}
}

// World owns the live object graph. Every mutation of it happens on the
// dispatcher goroutine, one job at a time.
type World struct {
	id         string
	store      storage.Store
	audit      *storage.AuditLogger
	registry   *Registry
	config     *structs.WorldConfig
	players    *structs.PlayerIndex
	limiter    *loginRateLimiter
	stats      *CommandStats
	outboxSize int

	cache    map[string]Entity
	online   map[string]*Player
	sessions *azimuth.SyncMap[string, *Session]

	jobs    chan job
	stopped chan struct{}
	cancel  context.CancelFunc
}

// New loads the world from opts.Store, seeding it if it has no bootstrap
// record, and starts the dispatcher.
func New(ctx context.Context, opts Options) (*World, error) {
	if opts.WorldID == "" {
		return nil, errors.New("world id required")
	}
	if opts.Store == nil {
		return nil, errors.New("store required")
	}
	registry, err := NewRegistry(variantSpecs())
	if err != nil {
		return nil, azimuth.WithStack(err)
	}
	w := &World{
		id:         opts.WorldID,
		store:      opts.Store,
		audit:      opts.Audit,
		registry:   registry,
		limiter:    newLoginRateLimiter(opts.LoginInterval),
		stats:      NewCommandStats(),
		outboxSize: opts.OutboxSize,
		cache:      map[string]Entity{},
		online:     map[string]*Player{},
		sessions:   azimuth.NewSyncMap[string, *Session](),
		jobs:       make(chan job),
		stopped:    make(chan struct{}),
	}
	if err := w.bootstrap(ctx, opts.WizardPassword); err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.run(runCtx)
	go w.stats.runUpdateLoop(runCtx)
	return w, nil
}

func (w *World) bootstrap(ctx context.Context, wizardPassword string) error {
	rec, err := w.store.Load(ctx, w.id)
	if errors.Is(err, os.ErrNotExist) {
		return w.seed(ctx, wizardPassword)
	} else if err != nil {
		return azimuth.WithStack(err)
	}
	if w.config, err = structs.WorldConfigFromRecord(rec); err != nil {
		return azimuth.WithStack(err)
	}
	rec, err = w.store.Load(ctx, structs.PlayerIndexID(w.id))
	if errors.Is(err, os.ErrNotExist) {
		w.players = structs.NewPlayerIndex(w.id)
	} else if err != nil {
		return azimuth.WithStack(err)
	} else {
		w.players = structs.PlayerIndexFromRecord(w.id, rec)
	}
	log.Printf("loaded world %q with %d players", w.id, w.players.Len())
	return nil
}

func (w *World) ID() string {
	return w.id
}

func (w *World) Registry() *Registry {
	return w.registry
}

func (w *World) Stats() *CommandStats {
	return w.stats
}

// Close disconnects every session, flushes the cache and stops the
// dispatcher.
func (w *World) Close(ctx context.Context) error {
	err := w.do(ctx, nil, func(ctx context.Context) error {
		for _, id := range azimuth.SortedKeys(w.sessions, func(a, b string) bool { return a < b }) {
			if s, found := w.sessions.GetHas(id); found {
				w.disconnect(ctx, s)
			}
		}
		return w.Flush(ctx)
	})
	w.cancel()
	<-w.stopped
	return err
}

func (w *World) run(ctx context.Context) {
	defer close(w.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-w.jobs:
			w.execute(j)
		}
	}
}

// execute runs a job to completion. Errors and panics are logged with their
// stack and reported softly to the session of the job, if any.
func (w *World) execute(j job) {
	defer close(j.done)
	defer func() {
		if e := recover(); e != nil {
			log.Printf("panic in world job: %v\n%s", e, debug.Stack())
			w.stats.RecordPanic()
			if j.session != nil {
				j.session.Tell(w.Message(nil, "fail_internal", nil, nil))
			}
		}
	}()
	if err := j.f(j.ctx); err != nil {
		log.Printf("world job failed: %v\n%s", err, azimuth.StackTrace(err))
		if j.session != nil {
			j.session.Tell(w.Message(nil, "fail_internal", nil, nil))
		}
	}
}

// do runs f on the dispatcher and waits for it to finish. It must never be
// called from the dispatcher itself.
func (w *World) do(ctx context.Context, s *Session, f func(context.Context) error) error {
	j := job{
		ctx:     ctx,
		session: s,
		f:       f,
		done:    make(chan struct{}),
	}
	select {
	case w.jobs <- j:
	case <-ctx.Done():
		return azimuth.WithStack(ctx.Err())
	case <-w.stopped:
		return azimuth.WithStack(ErrClosed)
	}
	<-j.done
	return nil
}

// Online returns the players with an active session.
func (w *World) Online() []*Player {
	result := make([]*Player, 0, len(w.online))
	for _, p := range w.online {
		result = append(result, p)
	}
	return result
}

// StartRoom returns the place new and homeless players are put in.
func (w *World) StartRoom(ctx context.Context) *Place {
	pl, _ := w.GetObject(ctx, w.config.GetStartRoom()).(*Place)
	return pl
}

// GetObject returns the entity with id, from the cache or else the store.
// Missing and broken records are nil.
func (w *World) GetObject(ctx context.Context, id string) Entity {
	if id == "" {
		return nil
	}
	if e, found := w.cache[id]; found {
		return e
	}
	rec, err := w.store.Load(ctx, id)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		log.Printf("loading %q: %v", id, err)
		return nil
	}
	e, err := w.instantiate(ctx, rec)
	if err != nil {
		log.Printf("instantiating %q: %v", id, err)
		return nil
	}
	return e
}

// instantiate reconstructs rec and wires its references. The entity is
// cached before any referenced entity is loaded, so cycles resolve to it.
func (w *World) instantiate(ctx context.Context, rec structs.Record) (Entity, error) {
	v, found := ParseVariant(rec.Class())
	if !found {
		return nil, errors.Errorf("%q has unknown class %q", rec.ID(), rec.Class())
	}
	e, err := newEntity(v)
	if err != nil {
		return nil, azimuth.WithStack(err)
	}
	restore(e, rec)
	t := e.Base()
	if t.ID == "" {
		return nil, errors.Errorf("record without id: %+v", rec)
	}
	w.cache[t.ID] = e

	if _, isCharacter := e.(Character); !isCharacter && t.location == nil && t.pendingLocation != "" {
		if loc := w.GetObject(ctx, t.pendingLocation); loc != nil {
			place(e, loc)
		}
	}
	for _, id := range rec.Strings("contents") {
		child := w.GetObject(ctx, id)
		if child == nil {
			continue
		}
		if _, isCharacter := child.(Character); isCharacter {
			continue
		}
		if ct := child.Base(); ct.location == nil && (ct.pendingLocation == "" || ct.pendingLocation == t.ID) {
			place(child, e)
		}
	}
	switch x := e.(type) {
	case *Place:
		for _, id := range rec.Strings("exits") {
			if exit, ok := w.GetObject(ctx, id).(Passage); ok {
				x.AddExit(exit)
			}
		}
	case Passage:
		exit := x.GetExit()
		destination := rec.String("destination")
		exit.Destination = Deferred(destination)
		if pl, ok := w.cache[destination].(*Place); ok {
			exit.Destination = Resolved(pl)
		}
		if source, ok := w.GetObject(ctx, rec.String("source")).(*Place); ok {
			source.AddExit(x)
		}
	}
	t.pendingLocation = ""
	return e, nil
}

// Create returns a new cached entity of variant v in location. It is not
// saved.
func (w *World) Create(ctx context.Context, v Variant, name string, location Entity) (Entity, error) {
	e, err := newEntity(v)
	if err != nil {
		return nil, azimuth.WithStack(err)
	}
	t := e.Base()
	t.ID = azimuth.NextID()
	t.Name = name
	t.Messages = map[string]string{}
	w.cache[t.ID] = e
	if location != nil {
		place(e, location)
	}
	return e, nil
}

// Save persists entities.
func (w *World) Save(ctx context.Context, entities ...Entity) error {
	for _, e := range entities {
		if e == nil {
			continue
		}
		if err := w.store.Save(ctx, Record(e)); err != nil {
			return azimuth.WithStack(err)
		}
	}
	return nil
}

// Flush saves every cached entity, the world config and the player index.
func (w *World) Flush(ctx context.Context) error {
	ids := make([]string, 0, len(w.cache))
	for id := range w.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := w.Save(ctx, w.cache[id]); err != nil {
			return err
		}
	}
	if err := w.store.Save(ctx, w.config.Record()); err != nil {
		return azimuth.WithStack(err)
	}
	if err := w.store.Save(ctx, w.players.Record()); err != nil {
		return azimuth.WithStack(err)
	}
	return nil
}

// classes returns the record classes of variants and their descendants.
func (w *World) classes(variants []Variant) []string {
	result := []string{}
	for _, v := range variants {
		for _, d := range w.registry.Descendants(v) {
			result = append(result, string(d))
		}
	}
	return result
}

func (w *World) isA(e Entity, variants []Variant) bool {
	if len(variants) == 0 {
		return true
	}
	for _, v := range variants {
		if w.registry.IsA(e.Variant(), v) {
			return true
		}
	}
	return false
}

// FindByName finds the entity named name among the variants, searching the
// cache and then the store. Strong cached matches win over stored ones, which
// win over weak cached ones.
func (w *World) FindByName(ctx context.Context, name string, variants ...Variant) (Entity, error) {
	var strong, weak []Entity
	for _, e := range w.cache {
		if !w.isA(e, variants) {
			continue
		}
		switch MatchName(e, name, nil) {
		case MatchStrong:
			strong = append(strong, e)
		case MatchWeak:
			weak = append(weak, e)
		}
	}
	if found, err := single(strong, name); found != nil || err != nil {
		return found, err
	}
	rec, err := w.store.FindByName(ctx, name, w.classes(variants)...)
	if err == nil {
		if e := w.GetObject(ctx, rec.ID()); e != nil {
			return e, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, azimuth.WithStack(err)
	}
	if found, err := single(weak, name); found != nil || err != nil {
		return found, err
	}
	return nil, errors.Wrapf(os.ErrNotExist, "nothing named %q", name)
}

// FindByID finds the single entity among the variants whose id starts with
// prefix.
func (w *World) FindByID(ctx context.Context, prefix string, variants ...Variant) (Entity, error) {
	matches := map[string]bool{}
	for id, e := range w.cache {
		if strings.HasPrefix(id, prefix) && w.isA(e, variants) {
			matches[id] = true
		}
	}
	recs, err := w.store.FindByIDPrefix(ctx, prefix, w.classes(variants)...)
	if err != nil {
		return nil, azimuth.WithStack(err)
	}
	for _, rec := range recs {
		matches[rec.ID()] = true
	}
	switch len(matches) {
	case 0:
		return nil, errors.Wrapf(os.ErrNotExist, "no id starting with %q", prefix)
	case 1:
		for id := range matches {
			if e := w.GetObject(ctx, id); e != nil {
				return e, nil
			}
		}
		return nil, errors.Wrapf(os.ErrNotExist, "%q can't be loaded", prefix)
	}
	return nil, errors.Wrapf(storage.ErrAmbiguous, "%d ids starting with %q", len(matches), prefix)
}

// single returns the one entity in matches, nil for none, or
// storage.ErrAmbiguous.
func single(matches []Entity, name string) (Entity, error) {
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}
	return nil, errors.Wrapf(storage.ErrAmbiguous, "%d things named %q", len(matches), name)
}

type enterHook interface {
	onEnter(w *World, e Entity)
}

type leaveHook interface {
	onLeave(w *World, e Entity)
}

// Move moves e to where, running the leave hook of the old location and the
// enter hook of the new one.
func (w *World) Move(e Entity, where Entity) {
	if from, ok := e.Base().location.(leaveHook); ok {
		from.onLeave(w, e)
	}
	MoveTo(e, where)
	if to, ok := where.(enterHook); ok {
		to.onEnter(w, e)
	}
}

// destination resolves the destination of x, loading it if deferred.
func (w *World) destination(ctx context.Context, x *Exit) *Place {
	if pl := x.Destination.Place(); pl != nil {
		return pl
	}
	if !x.Destination.Deferred() {
		return nil
	}
	pl, ok := w.GetObject(ctx, x.Destination.ID()).(*Place)
	if !ok {
		return nil
	}
	x.Destination = Resolved(pl)
	return pl
}

// LookAt describes e as seen by viewer.
func (w *World) LookAt(e Entity, viewer *Player) string {
	if pl, ok := e.(*Place); ok {
		return pl.lookAt(viewer)
	}
	t := e.Base()
	lines := []string{}
	if t.Description != "" {
		lines = append(lines, t.Description)
	} else {
		lines = append(lines, fmt.Sprintf("You see nothing special about %s.", t.Name))
	}
	if _, ok := e.(Containable); ok && isOpen(e) && len(t.contents) > 0 {
		lines = append(lines, fmt.Sprintf("Inside there is: %s", strings.Join(Names(t.contents), ", ")))
	}
	if o, ok := e.(Openable); ok {
		if o.GetOpenState().IsOpen {
			lines = append(lines, w.Message(e, "open_look_at", viewer, nil))
		} else {
			lines = append(lines, w.Message(e, "closed_look_at", viewer, nil))
		}
	}
	if l, ok := e.(Lockable); ok {
		if l.GetLockState().IsLocked {
			lines = append(lines, w.Message(e, "locked_look_at", viewer, nil))
		} else {
			lines = append(lines, w.Message(e, "unlocked_look_at", viewer, nil))
		}
	}
	if wr, ok := e.(Wearable); ok {
		if by, found := w.cache[wr.GetWearState().WornBy]; found {
			lines = append(lines, fmt.Sprintf("Worn: %s", by.Base().Name))
		}
	}
	if h, ok := e.(Holdable); ok {
		if by, found := w.cache[h.GetHoldState().HeldBy]; found {
			lines = append(lines, fmt.Sprintf("Held: %s", by.Base().Name))
		}
	}
	if p, ok := e.(Positionable); ok {
		for _, pos := range p.GetPositionState().Positioned {
			thing, found := w.cache[pos.ThingID]
			if !found || thing.Base().location == nil || thing.Base().location != t.location {
				continue
			}
			if viewer != nil && thing == viewer.self {
				lines = append(lines, fmt.Sprintf("You are %s it.", pos.Prep))
			} else {
				lines = append(lines, fmt.Sprintf("%s is %s it.", thing.Base().Name, pos.Prep))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// grammarsFor returns the grammars for verb of e, or of the world when e is
// nil, including instance commands.
func (w *World) grammarsFor(e Entity, verb string) []Grammar {
	if e == nil {
		return w.registry.Grammars(VariantWorld, verb)
	}
	t := e.Base()
	if len(t.commands) == 0 {
		return w.registry.Grammars(e.Variant(), verb)
	}
	if t.commandCache == nil {
		t.commandCache = w.registry.withInstance(e.Variant(), t.commands)
	}
	return t.commandCache[verb]
}
