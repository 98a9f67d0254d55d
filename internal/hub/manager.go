// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"bytes"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	cloudpkg "github.com/softbear-oss/tankhub/internal/hub/cloud"
	"github.com/softbear-oss/tankhub/internal/wire"
)

// handle is one hub entry in the manager's table: a reference to the
// running Hub plus a player_count that is incremented on admission but,
// per the preserved open question, never decremented on departure - once
// a hub hits config.MaxPlayerCount it is considered full forever. retired
// marks a hub whose admission channel has been closed (see Shutdown); it
// is never selected again.
type handle struct {
	hub         *Hub
	playerCount int32
	retired     bool
}

// Manager is the process-level load balancer: it holds every live hub,
// picks the least-populated one with room for a new connection, and spawns
// a fresh hub when none fits.
type Manager struct {
	mu sync.Mutex

	config *wire.Config
	cloud  *cloudpkg.Cloud

	ids     uint32
	handles []*handle

	statlogDir string
}

// NewManager constructs an empty Manager bound to config. cloud may be nil
// (offline mode, see internal/hub/cloud).
func NewManager(config *wire.Config, cloud *cloudpkg.Cloud, statlogDir string) *Manager {
	return &Manager{config: config, cloud: cloud, statlogDir: statlogDir}
}

// CreateClient implements HubManager.create_client: find the hub with
// minimum player_count; if it has room and hasn't been retired, hand it
// the connection and increment its counter. Otherwise spawn a new hub and
// hand it the connection directly (its own counter starts at 0).
func (m *Manager) CreateClient(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := newSession(conn)

	if h := m.leastLoaded(); h != nil && !h.retired && h.playerCount < m.config.MaxPlayerCount {
		h.hub.Admit(s)
		h.playerCount++
		return
	}

	m.createHub(s)
}

// Shutdown retires every live hub, closing each one's admission channel so
// its Run loop observes the close and exits (spec.md §5: "A hub ends when
// its admission channel closes"). Must only be called after the process
// has stopped accepting new connections: CreateClient and Shutdown share
// m.mu so a send can never race a close, but calling this while still
// accepting connections would just make every subsequent CreateClient
// spawn a fresh hub instead of admitting anywhere.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.handles {
		if h.retired {
			continue
		}
		h.retired = true
		h.hub.retire()
	}
}

func (m *Manager) leastLoaded() *handle {
	var best *handle
	for _, h := range m.handles {
		if best == nil || h.playerCount < best.playerCount {
			best = h
		}
	}
	return best
}

func (m *Manager) createHub(s *session) {
	m.ids++
	id := m.ids

	h := New(id, m.config, m.cloud, m.statlogPath(id))
	go h.Run()

	h.Admit(s)

	m.handles = append(m.handles, &handle{hub: h, playerCount: 0})
}

func (m *Manager) statlogPath(id uint32) string {
	if m.statlogDir == "" {
		return ""
	}
	return m.statlogDir + "/hub-" + strconv.FormatUint(uint64(id), 10) + ".csv"
}

var managerJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// ServeStatus reports the number of live hubs, their total recorded
// player_count (see handle's doc comment on why that total only grows),
// and each hub's latest debugDump snapshot.
func (m *Manager) ServeStatus(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	hubs := len(m.handles)
	var total int32
	var hubStatuses [][]byte
	for _, h := range m.handles {
		total += h.playerCount
		if buf, ok := h.hub.statusJSONBytes(); ok {
			hubStatuses = append(hubStatuses, buf)
		}
	}
	m.mu.Unlock()

	var raw bytes.Buffer
	raw.WriteByte('[')
	for i, buf := range hubStatuses {
		if i > 0 {
			raw.WriteByte(',')
		}
		raw.Write(buf)
	}
	raw.WriteByte(']')

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	status, err := managerJSON.Marshal(struct {
		Hubs        int                 `json:"hubs"`
		PlayerTotal int32               `json:"player_total"`
		HubStatus   jsoniter.RawMessage `json:"hub_status"`
	}{Hubs: hubs, PlayerTotal: total, HubStatus: raw.Bytes()})
	if err != nil {
		return
	}
	_, _ = w.Write(status)
}
