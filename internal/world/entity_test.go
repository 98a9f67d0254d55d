// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "testing"

func testTank() *Tank {
	return &Tank{
		Id:   0,
		Size: 10,
		BaseStats: [StatCount]float32{
			HealthRegen:       0,
			MaxHealth:         100,
			BodyDamage:        10,
			BulletSpeed:       0,
			BulletPenetration: 0,
			BulletDamage:      0,
			Reload:            1,
			MovementSpeed:     1,
		},
	}
}

func TestStatMultiplier(t *testing.T) {
	e := NewEntity(Vec2{}, testTank(), RolePlayer)

	base := e.Stat(MovementSpeed)
	e.Levels[MovementSpeed] = 5
	if up := e.Stat(MovementSpeed); up <= base {
		t.Fatalf("expected stat to strictly increase with level, got %v <= %v", up, base)
	}

	baseReload := e.Stat(Reload)
	e.Levels[Reload] = 5
	if down := e.Stat(Reload); down >= baseReload {
		t.Fatalf("expected reload to strictly decrease with level, got %v >= %v", down, baseReload)
	}
}

func TestIncrementLevelRequiresPoints(t *testing.T) {
	e := NewEntity(Vec2{}, testTank(), RolePlayer)
	e.IncrementLevel(MaxHealth)
	if e.Levels[MaxHealth] != 0 {
		t.Fatal("expected no-op with zero points")
	}

	e.Points = 20
	for i := 0; i < 20; i++ {
		e.IncrementLevel(MaxHealth)
	}
	if e.Levels[MaxHealth] != MaxLevel-1 {
		t.Fatalf("expected level to cap at %d, got %d", MaxLevel-1, e.Levels[MaxHealth])
	}
	if e.Points != 20-(MaxLevel-1) {
		t.Fatalf("expected %d points spent, %d remain", MaxLevel-1, e.Points)
	}

	pointsAtCap := e.Points
	e.IncrementLevel(MaxHealth)
	if e.Points != pointsAtCap || e.Levels[MaxHealth] != MaxLevel-1 {
		t.Fatal("expected level-cap idempotence: further upgrades are a no-op")
	}
}

func TestIncrementLevelBulletNoOp(t *testing.T) {
	e := NewEntity(Vec2{}, testTank(), RoleBullet)
	e.Points = 5
	e.IncrementLevel(MaxHealth)
	if e.Levels[MaxHealth] != 0 {
		t.Fatal("bullets are never player-role-upgradable")
	}
}

func TestCreateBulletInheritance(t *testing.T) {
	owner := NewEntity(Vec2{X: 3, Y: 4}, testTank(), RolePlayer)
	owner.Levels[BodyDamage] = 4
	owner.Levels[MaxHealth] = 2
	owner.Levels[MovementSpeed] = 6
	owner.Yaw = 45

	bulletTank := &Tank{Id: 1, Size: 1}
	cannon := Cannon{Yaw: 10, Delay: 5, Bullet: bulletTank}

	bullet := owner.CreateBullet(cannon, 42)

	if bullet.Role != RoleBullet || bullet.AuthorId != 42 {
		t.Fatal("expected bullet role and author id to be set")
	}
	if bullet.Coordinates != owner.Coordinates {
		t.Fatal("expected bullet position copied from owner")
	}
	if bullet.Yaw != owner.Yaw+cannon.Yaw {
		t.Fatalf("expected yaw %d, got %d", owner.Yaw+cannon.Yaw, bullet.Yaw)
	}
	if bullet.Levels[BulletDamage] != owner.Levels[BodyDamage] {
		t.Fatal("expected BulletDamage inherited from BodyDamage")
	}
	if bullet.Levels[BulletPenetration] != owner.Levels[MaxHealth] {
		t.Fatal("expected BulletPenetration inherited from MaxHealth")
	}
	if bullet.Levels[BulletSpeed] != owner.Levels[MovementSpeed] {
		t.Fatal("expected BulletSpeed inherited from MovementSpeed")
	}
	if bullet.Levels[Reload] != 0 || bullet.Levels[HealthRegen] != 0 {
		t.Fatal("expected unmapped levels to stay zero")
	}
}

func TestUpdateMovementClampsPositionAndVelocity(t *testing.T) {
	e := NewEntity(Vec2{X: 999, Y: -999}, testTank(), RoleProp)
	e.Velocity = Vec2{X: 50, Y: -50}
	e.MaxVelocity = Vec2{X: 10, Y: -10}

	e.UpdateMovement(1000)

	if e.Coordinates.X > 1000 || e.Coordinates.Y < -1000 {
		t.Fatalf("expected coordinates clamped to arena, got %+v", e.Coordinates)
	}
	if abs(e.Velocity.X) > 10 || abs(e.Velocity.Y) > 10 {
		t.Fatalf("expected velocity capped to max velocity magnitude, got %+v", e.Velocity)
	}
}

func TestChangeDirectionCoastsToStop(t *testing.T) {
	e := NewEntity(Vec2{}, testTank(), RolePlayer)
	e.HandleEvent(UserEvent{Kind: EventDirectionChange, DirectionChange: DirectionChange{Down: true}})

	for i := 0; i < 5; i++ {
		e.UpdateMovement(1000)
	}
	if e.Velocity.Y <= 0 {
		t.Fatal("expected positive y velocity while moving down")
	}

	e.HandleEvent(UserEvent{Kind: EventDirectionChange, DirectionChange: DirectionChange{}})
	if e.MaxVelocity != (Vec2{}) {
		t.Fatal("expected max velocity zeroed on release")
	}

	for i := 0; i < 10; i++ {
		e.UpdateMovement(1000)
	}
	if e.Velocity.X != 0 || e.Velocity.Y != 0 {
		t.Fatalf("expected velocity to reach zero within 10 ticks, got %+v", e.Velocity)
	}
}

func TestActiveCannonsTickZeroGuard(t *testing.T) {
	tank := testTank()
	tank.Cannons = []Cannon{{Delay: 4, Bullet: tank}}
	e := NewEntity(Vec2{}, tank, RolePlayer)

	if active := e.ActiveCannons(0); active != nil {
		t.Fatal("expected no active cannons at tick zero, per the tick>0 guard")
	}
}

func TestActiveCannonsModuloQuirk(t *testing.T) {
	tank := testTank()
	// Reload stat is 1 at level 0 (base_stats[Reload]=1), so value == delay.
	tank.Cannons = []Cannon{{Delay: 6, Bullet: tank}}
	e := NewEntity(Vec2{}, tank, RolePlayer)

	// 6 % 6 == 0: fires.
	if active := e.ActiveCannons(6); len(active) != 1 {
		t.Fatalf("expected cannon active at tick==delay, got %d", len(active))
	}
	// 6 % 4 == 2, non-zero: does not fire (tick 4 does not divide 6).
	if active := e.ActiveCannons(4); len(active) != 0 {
		t.Fatalf("expected cannon inactive at tick 4, got %d", len(active))
	}
	// 6 % 12 == 6 (value < tick): does not fire either, since value%tick
	// only equals zero when tick divides value. This is the documented
	// quirk: it behaves like "fire on divisors of delay", not "every
	// delay ticks".
	if active := e.ActiveCannons(12); len(active) != 0 {
		t.Fatalf("expected cannon inactive at tick 12 (quirked semantics), got %d", len(active))
	}
}

func TestDamage(t *testing.T) {
	e := NewEntity(Vec2{}, testTank(), RoleProp)
	alive := e.Damage(50)
	if !alive {
		t.Fatal("expected entity to survive 50 damage against 100 max health")
	}
	if e.Health != 50 {
		t.Fatalf("expected health 50, got %v", e.Health)
	}
	if e.Damage(50) {
		t.Fatal("expected entity to die once health reaches zero")
	}
}
