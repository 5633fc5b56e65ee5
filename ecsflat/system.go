// Package ecsflat runs a flat.World as a system of an EngoEngine/ecs world.
package ecsflat

import (
	"github.com/EngoEngine/ecs"

	"github.com/flatphys/flat"
)

// maxFramesPerUpdate bounds the catch-up work after a long frame.
const maxFramesPerUpdate = 5

type physicsEntity struct {
	*ecs.BasicEntity
	body *flat.Body
}

// PhysicsSystem steps a flat.World at its fixed rate from the variable frame time of
// the ecs loop. Entities whose body leaves the world, by falling into the void or being
// removed directly, are dropped after the frame and reported through OnRemoved.
type PhysicsSystem struct {
	world    *flat.World
	entities []physicsEntity

	accumulator float64

	// OnRemoved is called for every entity pruned because its body left the world.
	OnRemoved func(basic ecs.BasicEntity)
}

func NewPhysicsSystem(world *flat.World) *PhysicsSystem {
	return &PhysicsSystem{world: world}
}

func (ps *PhysicsSystem) World() *flat.World {
	return ps.world
}

// Add links an entity to body, adding the body to the world if it is not in one yet.
func (ps *PhysicsSystem) Add(basic *ecs.BasicEntity, body *flat.Body) {
	if body.World() == nil {
		ps.world.AddBody(body)
	}
	if body.UserData == nil {
		body.UserData = basic.ID()
	}
	ps.entities = append(ps.entities, physicsEntity{basic, body})
}

// Remove satisfies the ecs.System interface. The entity's body is removed from the world.
func (ps *PhysicsSystem) Remove(basic ecs.BasicEntity) {
	for i, e := range ps.entities {
		if e.ID() != basic.ID() {
			continue
		}
		if e.body.World() == ps.world {
			ps.world.RemoveBody(e.body)
		}
		ps.entities = append(ps.entities[:i], ps.entities[i+1:]...)
		return
	}
}

// Body returns the body linked to basic, or nil.
func (ps *PhysicsSystem) Body(basic ecs.BasicEntity) *flat.Body {
	for _, e := range ps.entities {
		if e.ID() == basic.ID() {
			return e.body
		}
	}
	return nil
}

func (ps *PhysicsSystem) Len() int {
	return len(ps.entities)
}

// Priority runs physics before systems that read body state.
func (ps *PhysicsSystem) Priority() int {
	return 100
}

// Update satisfies the ecs.System interface.
func (ps *PhysicsSystem) Update(dt float32) {
	step := 1 / float64(ps.world.TicksPerSecond())

	ps.accumulator += float64(dt)
	frames := int(ps.accumulator / step)
	if frames > maxFramesPerUpdate {
		// drop the backlog rather than spiral
		frames = maxFramesPerUpdate
		ps.accumulator = 0
	} else {
		ps.accumulator -= float64(frames) * step
	}

	for i := 0; i < frames; i++ {
		ps.world.Update()
	}

	ps.prune()
}

func (ps *PhysicsSystem) prune() {
	kept := ps.entities[:0]
	var removed []ecs.BasicEntity
	for _, e := range ps.entities {
		if e.body.World() != ps.world {
			removed = append(removed, *e.BasicEntity)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(ps.entities); i++ {
		ps.entities[i] = physicsEntity{}
	}
	ps.entities = kept

	if ps.OnRemoved != nil {
		for _, basic := range removed {
			ps.OnRemoved(basic)
		}
	}
}
