// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"fmt"
	"runtime"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/softbear-oss/tankhub/internal/world"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// debugDump prints a population/memory snapshot to the console and
// refreshes the cached status JSON served over HTTP.
func (h *Hub) debugDump() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	players, bullets, props := 0, 0, 0
	for _, id := range h.order {
		e, ok := h.entities[id]
		if !ok {
			continue
		}
		switch e.Role {
		case world.RolePlayer:
			players++
		case world.RoleBullet:
			bullets++
		case world.RoleProp:
			props++
		}
	}

	fmt.Printf("Debug hub %d [%v] memstats: %dM/%dM\n", h.id, time.Now().Format(time.UnixDate), stats.HeapInuse/1e6, stats.NextGC/1e6)
	fmt.Printf(" - tick %d, players: %d, bullets: %d, props: %d\n", h.tick, players, bullets, props)

	status, err := json.Marshal(struct {
		Tick    uint64 `json:"tick"`
		Players int    `json:"players"`
		Bullets int    `json:"bullets"`
		Props   int    `json:"props"`
	}{Tick: h.tick, Players: players, Bullets: bullets, Props: props})
	if err != nil {
		fmt.Println("debug: status marshal error:", err)
		return
	}
	h.statusJSON.Store(status)
}

// statusJSONBytes returns the most recently computed per-hub status
// snapshot, or (nil, false) if debugDump hasn't run yet.
func (h *Hub) statusJSONBytes() ([]byte, bool) {
	buf, ok := h.statusJSON.Load().([]byte)
	return buf, ok
}
