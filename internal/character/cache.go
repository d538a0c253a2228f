package character

import "github.com/rs/zerolog"

// Cache is the per-container definition store: an identifier→Drawable map
// populated as definition tags are decoded, plus the in-progress set that
// guards sprite timeline compilation against reference cycles.
type Cache struct {
	definitions map[uint16]Drawable
	inProgress  map[uint16]bool
	log         zerolog.Logger
}

// NewCache constructs an empty, per-container definition cache.
func NewCache(log zerolog.Logger) *Cache {
	return &Cache{
		definitions: make(map[uint16]Drawable),
		inProgress:  make(map[uint16]bool),
		log:         log,
	}
}

// Define registers a character under its identifier. Each identifier
// appears at most once per container; a repeat definition is a
// malformed-input condition, so first one wins and the duplicate is
// logged rather than replacing the original.
func (c *Cache) Define(d Drawable) {
	if _, exists := c.definitions[d.ID()]; exists {
		c.log.Warn().Uint16("character_id", d.ID()).Msg("duplicate character id, keeping first definition")
		return
	}
	c.definitions[d.ID()] = d
}

// Resolve looks up a character by id. A missing id is not itself an error
// at this layer — callers decide how to react
// to a nil, ok-false result.
func (c *Cache) Resolve(id uint16) (Drawable, bool) {
	d, ok := c.definitions[id]
	return d, ok
}

// EnterSprite marks a sprite id as currently compiling its timeline,
// returning false if it is already in progress (a cycle). Callers must
// call ExitSprite when compilation finishes, success or not.
func (c *Cache) EnterSprite(id uint16) bool {
	if c.inProgress[id] {
		c.log.Warn().Uint16("character_id", id).Msg("cyclic sprite reference, yielding empty timeline")
		return false
	}
	c.inProgress[id] = true
	return true
}

// ExitSprite clears the in-progress marker for a sprite id.
func (c *Cache) ExitSprite(id uint16) {
	delete(c.inProgress, id)
}
