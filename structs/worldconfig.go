package structs

import (
	"fmt"
	"maps"
	"sync"

	"github.com/pkg/errors"

	goccy "github.com/goccy/go-json"
)

const (
	WorldConfigClass = "WorldConfig"
	PlayerIndexClass = "PlayerIndex"
)

// WorldConfig is the bootstrap record of a world. A world without one is
// considered uninitialized and gets seeded.
// All fields are private and accessed via getters/setters that handle locking.
type WorldConfig struct {
	mu          sync.RWMutex
	id          string
	startRoomID string
}

func NewWorldConfig(id string) *WorldConfig {
	return &WorldConfig{id: id}
}

func (c *WorldConfig) GetID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// GetStartRoom returns the id of the place new and homeless players start in.
func (c *WorldConfig) GetStartRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.startRoomID
}

func (c *WorldConfig) SetStartRoom(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startRoomID = id
}

func (c *WorldConfig) Record() Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Record{
		IDField:         c.id,
		ClassField:      WorldConfigClass,
		"start_room_id": c.startRoomID,
	}
}

// WorldConfigFromRecord validates and loads a bootstrap record.
func WorldConfigFromRecord(r Record) (*WorldConfig, error) {
	if r.ID() == "" {
		return nil, errors.New("world config without id")
	}
	if r.String("start_room_id") == "" {
		return nil, errors.Errorf("world config %q without start_room_id", r.ID())
	}
	return &WorldConfig{
		id:          r.ID(),
		startRoomID: r.String("start_room_id"),
	}, nil
}

type worldConfigJSON struct {
	ID          string `json:"id"`
	StartRoomID string `json:"start_room_id"`
}

func (c *WorldConfig) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return goccy.Marshal(worldConfigJSON{
		ID:          c.id,
		StartRoomID: c.startRoomID,
	})
}

func (c *WorldConfig) UnmarshalJSON(data []byte) error {
	var j worldConfigJSON
	if err := goccy.Unmarshal(data, &j); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = j.ID
	c.startRoomID = j.StartRoomID
	return nil
}

// PlayerIndex maps usernames to player entity ids. It is persisted as its
// own record next to the world config.
type PlayerIndex struct {
	mu      sync.RWMutex
	worldID string
	players map[string]string
}

func NewPlayerIndex(worldID string) *PlayerIndex {
	return &PlayerIndex{
		worldID: worldID,
		players: map[string]string{},
	}
}

// PlayerIndexID returns the record id of the player index of a world.
func PlayerIndexID(worldID string) string {
	return fmt.Sprintf("%s_players", worldID)
}

func (p *PlayerIndex) Get(username string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, found := p.players[username]
	return id, found
}

// Add stores the username unless it is already taken, and reports whether it
// stored it.
func (p *PlayerIndex) Add(username, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, found := p.players[username]; found {
		return false
	}
	p.players[username] = id
	return true
}

func (p *PlayerIndex) Del(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.players, username)
}

func (p *PlayerIndex) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.players)
}

func (p *PlayerIndex) Record() Record {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Record{
		IDField:    PlayerIndexID(p.worldID),
		ClassField: PlayerIndexClass,
		"players":  maps.Clone(p.players),
	}
}

func PlayerIndexFromRecord(worldID string, r Record) *PlayerIndex {
	return &PlayerIndex{
		worldID: worldID,
		players: r.StringMap("players"),
	}
}
