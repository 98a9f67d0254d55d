// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	cloudpkg "github.com/softbear-oss/tankhub/internal/hub/cloud"
	"github.com/softbear-oss/tankhub/internal/wire"
	"github.com/softbear-oss/tankhub/internal/world"
)

const (
	broadcastBuffer = 128
	inboundBuffer   = 128
	admissionBuffer = 32

	debugPeriod   = time.Second * 5
	statlogPeriod = time.Second * 5

	// initialPropCount seeds the arena with a handful of destructible props
	// on creation, rather than leaving it empty until the first death.
	initialPropCount = 20
)

// Hub is one authoritative arena: it owns every Entity, the SpatialGrid
// that prunes collision checks, the monotonic id counter, and the select
// loop that multiplexes ticks, admissions, and inbound user events.
type Hub struct {
	config *wire.Config

	entities map[world.Id]*world.Entity
	order    []world.Id // insertion order, for deterministic iteration
	grid     *world.SpatialGrid
	ids      world.IdCounter

	queuedEvents []world.ServerEvent
	tick         uint64

	admission chan *session
	inbound   chan userMessage

	subscribers     map[chan []byte]struct{}
	sessionChannels map[world.Id]chan []byte

	rand *rand.Rand

	statlogPath string
	statusJSON  atomic.Value

	id    uint32
	cloud *cloudpkg.Cloud
}

// New constructs a Hub bound to config. The grid is sized from
// config.MapSize; the arena is seeded with initialPropCount props, whose
// EntityCreate events are already queued on return. id identifies
// this hub for cloud score reporting; cloud may be nil (offline mode).
func New(id uint32, config *wire.Config, cloud *cloudpkg.Cloud, statlogPath string) *Hub {
	h := &Hub{
		id:          id,
		config:      config,
		entities:    make(map[world.Id]*world.Entity),
		grid:        world.NewSpatialGrid(config.MapSize),
		admission:   make(chan *session, admissionBuffer),
		inbound:     make(chan userMessage, inboundBuffer),
		subscribers:     make(map[chan []byte]struct{}),
		sessionChannels: make(map[world.Id]chan []byte),
		rand:            rand.New(rand.NewSource(time.Now().UnixNano())),
		statlogPath: statlogPath,
		cloud:       cloud,
	}
	h.seedProps()
	return h
}

func (h *Hub) seedProps() {
	if len(h.config.Tanks) == 0 {
		return
	}
	tank := h.config.Tanks[0]
	for i := 0; i < initialPropCount; i++ {
		h.spawnEntity(world.NewEntity(h.randomCoordinates(), tank, world.RoleProp))
	}
}

func (h *Hub) randomCoordinates() world.Vec2 {
	size := h.config.MapSize
	return world.Vec2{
		X: h.rand.Float64()*2*size - size,
		Y: h.rand.Float64()*2*size - size,
	}
}

// Admit hands a new connection's session to the hub's admission channel.
// Per spec.md §5 ("HubManager operations ... suspend only on admission
// channel sends"), this blocks if the buffer is momentarily full rather
// than treating backpressure as "hub ended." Callers must not invoke this
// on a retired hub (see handle.retired in manager.go): retire closes this
// channel, and Manager serializes retire against Admit under its own
// lock so the two never race.
func (h *Hub) Admit(s *session) {
	h.admission <- s
}

// retire closes the admission channel, so Run's admission case observes
// ok == false and returns, ending the hub's game loop. Called only from
// Manager.Shutdown, under the same lock CreateClient sends under.
func (h *Hub) retire() {
	close(h.admission)
}

// PlayerCount counts the hub's live player entities (reported in the stat
// log). It reflects the hub's own bookkeeping, independent of the
// manager's separately tracked (and never-decremented) counter that drives
// least-loaded selection - see handle in manager.go.
func (h *Hub) PlayerCount() int {
	count := 0
	for _, id := range h.order {
		if e, ok := h.entities[id]; ok && e.Role == world.RolePlayer {
			count++
		}
	}
	return count
}

// Run is the hub's main event loop (game_update_loop): a select over the
// tick interval, the admission channel, and the inbound user-event
// channel, biased so the tick takes priority and a backlog of admissions
// or user events never starves the simulation tick. Admissions and user
// events have no fixed order relative to each other.
func (h *Hub) Run() {
	interval := time.NewTicker(time.Duration(h.config.UpdateDelayMs) * time.Millisecond)
	defer interval.Stop()

	debugTicker := time.NewTicker(debugPeriod)
	defer debugTicker.Stop()

	statlogTicker := time.NewTicker(statlogPeriod)
	defer statlogTicker.Stop()

	cloudTicker := time.NewTicker(cloudpkg.UpdatePeriod)
	defer cloudTicker.Stop()

	for {
		// Go's select has no native bias; give the tick channel first
		// refusal with a non-blocking check before falling into the full
		// select, so a backlog of admissions/events never starves ticks.
		select {
		case <-interval.C:
			h.tickOnce()
			continue
		default:
		}

		select {
		case <-interval.C:
			h.tickOnce()
		case s, ok := <-h.admission:
			if !ok {
				return
			}
			h.spawnPlayer(s)
		case msg := <-h.inbound:
			switch msg.kind {
			case userMessageEvent:
				if e, ok := h.entities[msg.user]; ok {
					e.HandleEvent(msg.event)
				}
			case userMessageGoingAway:
				if ch, ok := h.sessionChannels[msg.user]; ok {
					h.unsubscribe(ch)
					delete(h.sessionChannels, msg.user)
				}
				h.removeEntity(msg.user)
			}
		case <-debugTicker.C:
			h.debugDump()
		case <-statlogTicker.C:
			h.appendStatlog()
		case <-cloudTicker.C:
			h.flushCloud()
		}
	}
}

// flushCloud reports the current top players to the cloud backend. A nil
// h.cloud makes every UpdateScore call a no-op.
func (h *Hub) flushCloud() {
	for _, p := range h.computeLeaderboard() {
		if err := h.cloud.UpdateScore(h.id, uint32(p.id), p.score); err != nil {
			log.Println("cloud: update score error:", err)
		}
	}
}

func (h *Hub) tickOnce() {
	h.updateEntities()
	data := wire.EncodeServerEventBatch(h.queuedEvents)
	h.broadcast(data)
	h.queuedEvents = h.queuedEvents[:0]
	h.tick++
}

func (h *Hub) broadcast(data []byte) {
	for ch := range h.subscribers {
		select {
		case ch <- data:
		default:
			// Slow subscriber drops this batch; it resyncs from the next
			// EntityCreate it does receive.
			log.Println("hub: subscriber dropped a tick")
		}
	}
}

func (h *Hub) subscribe() chan []byte {
	ch := make(chan []byte, broadcastBuffer)
	h.subscribers[ch] = struct{}{}
	return ch
}

func (h *Hub) unsubscribe(ch chan []byte) {
	delete(h.subscribers, ch)
}
