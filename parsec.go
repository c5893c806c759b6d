// Package parsec provides access-declared, conflict-free parallel scheduling
// for archetype-based entity component systems.
//
// Systems declare, at construction time, exactly which components and
// resources they read or write. The schedule uses those declarations to run
// systems in parallel whenever their accesses cannot conflict, and restricts
// each system's visible data to what it declared.
//
// # Quick Start
//
// Declare a query and build a system from it:
//
//	movement := parsec.NewQuery(
//	    parsec.Write[Position](),
//	    parsec.Read[Velocity](),
//	)
//
//	sys, err := parsec.NewSystem("movement").
//	    WithQuery(movement).
//	    Build(func(res *parsec.ResourceView, queries []*parsec.Query, cmd *parsec.CommandBuffer, view *parsec.View) {
//	        movement.Each(view, func(e parsec.Entity) {
//	            pos := parsec.GetMut[Position](view, e)
//	            vel := parsec.Get[Velocity](view, e)
//	            pos.X += vel.X
//	            pos.Y += vel.Y
//	        })
//	    })
//
// Register systems with a schedule and drive it once per pass:
//
//	sched := parsec.NewSchedule().AddSystem(sys, parsec.Default)
//	sched.Execute(world, resources)
//
// # Declarations
//
// Access descriptors name one component or resource type each:
//
//	parsec.Read[Velocity]()     Shared component read
//	parsec.Write[Position]()    Exclusive component write
//	parsec.With[Alive]()        Filter only: entity must have Alive
//	parsec.Without[Static]()    Filter only: entity must lack Static
//	parsec.ReadRes[Config]()    Shared resource read
//	parsec.WriteRes[Score]()    Exclusive resource write
//	parsec.None()               No access (pass-through marker)
//
// A system declaring conflicting access to the same type across independent
// descriptors is rejected at build time with ErrDeclarationConflict. Touching
// anything a system did not declare aborts that system's run with
// ErrAccessViolation; other systems in the pass are unaffected.
//
// # Deferred Mutations
//
// Structural changes (spawn, despawn, add/remove component, set resource) are
// recorded into each system's private CommandBuffer during a pass and applied
// to the world by the schedule once the pass completes.
package parsec

// Version is the parsec version.
const Version = "1.0.0"
