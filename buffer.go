package parsec

import (
	"sync"
)

// CommandKind is the kind of a buffered world mutation.
type CommandKind uint8

const (
	// CommandSpawn creates a new entity with the carried components.
	CommandSpawn CommandKind = iota
	// CommandDespawn destroys an entity.
	CommandDespawn
	// CommandInsert attaches a component to an entity.
	CommandInsert
	// CommandRemove detaches a component from an entity.
	CommandRemove
	// CommandSetResource registers or replaces a resource value.
	CommandSetResource
)

// String returns the string representation of the command kind.
func (k CommandKind) String() string {
	switch k {
	case CommandSpawn:
		return "spawn"
	case CommandDespawn:
		return "despawn"
	case CommandInsert:
		return "insert"
	case CommandRemove:
		return "remove"
	case CommandSetResource:
		return "set-resource"
	default:
		return "unknown"
	}
}

// Command is one buffered mutation, tagged with the world it targets.
type Command struct {
	// Kind is the mutation kind.
	Kind CommandKind

	// World identifies the target world.
	World WorldID

	// Entity is the target entity for despawn, insert and remove.
	Entity Entity

	// Component is the detached component type for remove.
	Component ComponentID

	// Resource is the target resource type for set-resource.
	Resource ResourceID

	// components carries *T values for spawn and insert, and the *T value
	// for set-resource.
	components []any
}

// CommandBuffer records deferred world mutations made by one system during a
// run. Each buffer belongs to exactly one (system, world) pair; it is
// created lazily on the system's first run against that world and persists
// across passes, so its backing storage amortizes rather than reallocating.
//
// Contents are logically consumed once replayed, never re-applied.
type CommandBuffer struct {
	world WorldID

	mu       sync.Mutex
	commands []Command
}

func newCommandBuffer(world WorldID) *CommandBuffer {
	return &CommandBuffer{world: world}
}

// WorldID returns the identity of the world this buffer targets.
func (b *CommandBuffer) WorldID() WorldID {
	return b.world
}

// Spawn buffers creation of an entity owning the given components, each a
// non-nil pointer.
func (b *CommandBuffer) Spawn(components ...any) {
	b.push(Command{Kind: CommandSpawn, World: b.world, components: components})
}

// Despawn buffers destruction of an entity.
func (b *CommandBuffer) Despawn(e Entity) {
	b.push(Command{Kind: CommandDespawn, World: b.world, Entity: e})
}

// Insert buffers attachment of a component, a non-nil pointer, to an entity.
func (b *CommandBuffer) Insert(e Entity, component any) {
	b.push(Command{Kind: CommandInsert, World: b.world, Entity: e, components: []any{component}})
}

// Remove buffers detachment of a component type from an entity.
func (b *CommandBuffer) Remove(e Entity, id ComponentID) {
	b.push(Command{Kind: CommandRemove, World: b.world, Entity: e, Component: id})
}

// SetResource buffers registration of a resource value, a non-nil pointer.
func SetResource[T any](b *CommandBuffer, value *T) {
	b.push(Command{Kind: CommandSetResource, World: b.world, Resource: resourceID[T](), components: []any{value}})
}

func (b *CommandBuffer) push(c Command) {
	b.mu.Lock()
	b.commands = append(b.commands, c)
	b.mu.Unlock()
}

// Len returns the number of buffered commands.
func (b *CommandBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.commands)
}

// Commands returns a snapshot of the buffered commands for an external
// replay step. The buffer is not consumed.
func (b *CommandBuffer) Commands() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Command, len(b.commands))
	copy(out, b.commands)
	return out
}

// Flush applies the buffered commands to the world in recording order and
// consumes them, retaining the buffer's capacity for the next pass.
// res may be nil when no set-resource commands are buffered.
func (b *CommandBuffer) Flush(w *World, res *Resources) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.commands {
		c := &b.commands[i]
		switch c.Kind {
		case CommandSpawn:
			w.Spawn(c.components...)
		case CommandDespawn:
			w.Despawn(c.Entity)
		case CommandInsert:
			w.Insert(c.Entity, c.components...)
		case CommandRemove:
			w.Remove(c.Entity, c.Component)
		case CommandSetResource:
			res.insertRaw(c.Resource, c.components[0])
		}
		c.components = nil
	}
	b.commands = b.commands[:0]
}
