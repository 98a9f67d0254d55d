// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"log"

	"github.com/softbear-oss/tankhub/internal/wire"
	"github.com/softbear-oss/tankhub/internal/world"
)

// hit is a recorded collision: victim id and damage amount, in the order
// the collision pass found them.
type hit struct {
	id     world.Id
	damage float32
}

// updateEntities runs one full simulation step: motion, shooting,
// collision detection, then damage application (which may trigger Prop
// respawn and entity removal).
//
// Bullets fired during the motion/shoot pass must not disturb iteration
// over h.entities. The entities map is swapped out for the duration of
// that pass; newly spawned bullets land in the (now fresh) h.entities map
// and are merged back in afterward, so they are visible to this tick's
// collision pass without aliasing the range over the snapshot.
func (h *Hub) updateEntities() {
	snapshot := h.entities
	h.entities = make(map[world.Id]*world.Entity, len(snapshot))

	for id, e := range snapshot {
		h.updateEntity(e, id)
	}

	for id, e := range h.entities {
		snapshot[id] = e
	}
	h.entities = snapshot

	hits := h.collisions(h.entities)

	h.applyHits(hits)
}

func (h *Hub) updateEntity(e *world.Entity, id world.Id) {
	old := e.Coordinates
	e.UpdateMovement(h.config.MapSize)

	if h.grid.Add(e.Coordinates, id) {
		h.grid.Remove(old, id)
	}

	if e.Role != world.RoleProp || e.Coordinates != old {
		h.queuedEvents = append(h.queuedEvents, world.ServerEvent{
			Kind:     world.EventPosition,
			Id:       id,
			Position: e.Coordinates,
			Yaw:      e.Yaw,
			Velocity: e.Velocity,
		})
	}

	if e.Shooting {
		for _, cannon := range e.ActiveCannons(h.tick) {
			bullet := e.CreateBullet(cannon, id)
			h.spawnEntity(bullet)
		}
	}
}

// collisions examines entities (the post-motion, post-spawn set, so that
// bullets fired this tick participate) and records a hit for every pair
// within range. Both (E,O) and (O,E) orderings are visited because
// iteration passes over every entity in turn, so symmetric collisions are
// recorded twice.
func (h *Hub) collisions(entities map[world.Id]*world.Entity) []hit {
	var hits []hit
	for id, e := range entities {
		cell := h.grid.Cell(e.Coordinates)
		if cell == nil {
			continue
		}
		for otherId := range cell {
			if otherId == id {
				continue
			}
			other, ok := entities[otherId]
			if !ok {
				continue
			}
			if e.DistanceFrom(other) < e.Tank.Size+other.Tank.Size {
				hits = append(hits, hit{id: otherId, damage: e.Stat(world.BodyDamage)})
			}
		}
	}
	return hits
}

func (h *Hub) applyHits(hits []hit) {
	for _, hit := range hits {
		e, ok := h.entities[hit.id]
		if !ok {
			continue
		}
		if e.Damage(hit.damage) {
			continue
		}
		if e.Role == world.RoleProp {
			h.spawnEntity(world.NewEntity(h.randomCoordinates(), e.Tank, world.RoleProp))
		}
		h.removeEntity(hit.id)
	}
}

// spawnEntity allocates a fresh id, indexes the entity in the grid,
// enqueues an EntityCreate event, and inserts it into the entities map.
func (h *Hub) spawnEntity(e *world.Entity) world.Id {
	id := h.ids.Next()
	h.grid.Add(e.Coordinates, id)
	h.queuedEvents = append(h.queuedEvents, world.ServerEvent{
		Kind:     world.EventEntityCreate,
		Id:       id,
		Tank:     e.Tank.Id,
		Position: e.Coordinates,
	})
	h.entities[id] = e
	h.order = append(h.order, id)
	return id
}

// removeEntity swap-removes id from the entities map, the grid, and
// enqueues an EntityDelete. A missing id is logged and otherwise ignored -
// this can legitimately happen when a GoingAway races a death the same
// tick already processed.
func (h *Hub) removeEntity(id world.Id) {
	e, ok := h.entities[id]
	if !ok {
		log.Println("hub: remove of unknown entity", id)
		return
	}
	delete(h.entities, id)
	for i, other := range h.order {
		if other == id {
			h.order[i] = h.order[len(h.order)-1]
			h.order = h.order[:len(h.order)-1]
			break
		}
	}
	h.grid.Remove(e.Coordinates, id)
	h.queuedEvents = append(h.queuedEvents, world.ServerEvent{Kind: world.EventEntityDelete, Id: id})
}

// spawnPlayer creates a player entity for a newly admitted session, sends
// it the one-time UserInit frame, then launches its read/write pumps.
func (h *Hub) spawnPlayer(s *session) {
	tank := h.config.Tanks[0]
	e := world.NewEntity(world.Vec2{}, tank, world.RolePlayer)
	id := h.spawnEntity(e)

	init := wire.EncodeUserInit(*h.config, id)
	if err := s.sendInit(init); err != nil {
		log.Println("hub: init send error:", err)
	}

	bc := h.subscribe()
	h.sessionChannels[id] = bc
	s.start(id, h.inbound, bc)
}
