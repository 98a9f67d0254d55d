// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

// Role discriminates the three kinds of Entity. Modeled as a tag plus
// role-specific fields on Entity itself (not an interface) so the hub can
// keep a single map for all entities without dynamic dispatch.
type Role uint8

const (
	RolePlayer Role = iota
	RoleBullet
	RoleProp
)

// Entity is the unit of simulation: a player, a bullet, or a prop.
type Entity struct {
	Coordinates Vec2
	Velocity    Vec2
	Acceleration Vec2
	MaxVelocity Vec2

	// Yaw is the aim angle in degrees. Wrap is not enforced.
	Yaw int16

	Tank   *Tank
	Levels [StatCount]uint8

	// Health is a percentage of current max health.
	Health float64

	Shooting bool

	Role Role

	// Player-only.
	Points uint32
	Score  uint32

	// Bullet-only: the id that was live when the bullet was created. May
	// later vanish; that's fine, it's just an attribution, not a live ref.
	AuthorId Id
}

// NewEntity constructs an Entity ready to enter a Hub. Velocity,
// acceleration, and max velocity all start at zero; levels all start at
// zero; health starts full.
func NewEntity(coords Vec2, tank *Tank, role Role) *Entity {
	return &Entity{
		Coordinates: coords,
		Tank:        tank,
		Health:      100,
		Role:        role,
	}
}

// Stat returns the current effective value of stat s, after applying the
// entity's upgrade level for that stat. Every stat except Reload scales up
// with level; Reload scales down (more shots per window as it's upgraded).
func (e *Entity) Stat(s Stat) float32 {
	level := float32(e.Levels[s])
	base := e.Tank.BaseStats[s]
	if s == Reload {
		return base * (1 - level/20)
	}
	return base * (1 + level/10)
}

// IncrementLevel raises the level of stat s by one, for Player entities
// with spare points and room under MaxLevel. No-op otherwise (including
// for Bullet/Prop roles - bullets are never player-role-upgradable).
func (e *Entity) IncrementLevel(s Stat) {
	if e.Role != RolePlayer || e.Points == 0 {
		return
	}
	if e.Levels[s]+1 >= MaxLevel {
		return
	}
	e.Points--
	e.Levels[s]++
}

// ActiveCannons returns the cannons that should fire this tick. The
// modulo test is kept exactly as designed, including its quirks: it reads
// "the tick count divides the delay scaled by the reload stat", which is
// the inverse of the usual "every N ticks" meaning, and is undefined at
// tick == 0 (guarded here by requiring tick > 0).
func (e *Entity) ActiveCannons(tick uint64) []Cannon {
	if tick == 0 || e.Tank == nil {
		return nil
	}
	reload := float64(e.Stat(Reload))
	var active []Cannon
	for _, cannon := range e.Tank.Cannons {
		value := uint64(float64(cannon.Delay) * reload)
		if value%tick == 0 {
			active = append(active, cannon)
		}
	}
	return active
}

// statChildMapping maps a parent stat to the level a bullet inherits it
// as, per CreateBullet's seeding rule.
var statChildMapping = map[Stat]Stat{
	BodyDamage:    BulletDamage,
	MaxHealth:     BulletPenetration,
	MovementSpeed: BulletSpeed,
}

// CreateBullet spawns a bullet fired from cannon by owner (whose id is
// ownerId). The bullet inherits position from the owner and a subset of
// the owner's levels (see statChildMapping); everything else starts at
// zero, matching a freshly-constructed entity.
func (e *Entity) CreateBullet(cannon Cannon, ownerId Id) *Entity {
	yaw := e.Yaw + cannon.Yaw
	velocity := yawUnitVector(yaw)

	bullet := &Entity{
		Coordinates:  e.Coordinates,
		Velocity:     velocity,
		Acceleration: velocity.Mul(-1.0 / 10),
		Tank:         cannon.Bullet,
		Yaw:          yaw,
		Health:       100,
		Role:         RoleBullet,
		AuthorId:     ownerId,
	}

	for parent, child := range statChildMapping {
		bullet.Levels[child] = e.Levels[parent]
	}

	return bullet
}

// UpdateMovement advances position by velocity, then velocity by
// acceleration, clamping both into their respective bounds.
func (e *Entity) UpdateMovement(arenaExtent float64) {
	e.Coordinates = e.Coordinates.Add(e.Velocity)
	e.Coordinates.X = clamp(e.Coordinates.X, -arenaExtent, arenaExtent)
	e.Coordinates.Y = clamp(e.Coordinates.Y, -arenaExtent, arenaExtent)

	e.Velocity = e.Velocity.Add(e.Acceleration)
	e.Velocity.X = clampMagnitude(e.Velocity.X, abs(e.MaxVelocity.X))
	e.Velocity.Y = clampMagnitude(e.Velocity.Y, abs(e.MaxVelocity.Y))
}

// Damage reduces health by amount scaled inversely by MaxHealth, and
// reports whether the entity is still alive.
func (e *Entity) Damage(amount float32) bool {
	e.Health -= float64(amount) / float64(e.Stat(MaxHealth)) * 100
	return e.Health > 0
}

func (e *Entity) DistanceFrom(other *Entity) float64 {
	return e.Coordinates.Distance(other.Coordinates)
}

// HandleEvent applies a decoded UserEvent's effect to the entity.
func (e *Entity) HandleEvent(event UserEvent) {
	switch event.Kind {
	case EventDirectionChange:
		e.ChangeDirection(event.DirectionChange)
	case EventYaw:
		e.Yaw = event.Yaw
	case EventSetShooting:
		e.Shooting = event.SetShooting
	case EventLevelUpgrade:
		if event.LevelUpgrade.valid() {
			e.IncrementLevel(event.LevelUpgrade)
		}
	}
}

// ChangeDirection recomputes acceleration and max velocity from the four
// movement keys. An axis with no input coasts to a stop using its
// previous max velocity; an axis with input accelerates towards the new
// target velocity.
func (e *Entity) ChangeDirection(d DirectionChange) {
	v := Vec2{
		X: b2f(d.Right) - b2f(d.Left),
		Y: b2f(d.Down) - b2f(d.Up),
	}

	if v.X != 0 {
		e.Acceleration.X = v.X / 10
	} else {
		e.Acceleration.X = -e.MaxVelocity.X / 10
	}

	if v.Y != 0 {
		e.Acceleration.Y = v.Y / 10
	} else {
		e.Acceleration.Y = -e.MaxVelocity.Y / 10
	}

	e.MaxVelocity = v
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
