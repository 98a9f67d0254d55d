// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"testing"

	"github.com/softbear-oss/tankhub/internal/wire"
	"github.com/softbear-oss/tankhub/internal/world"
)

func managerTestConfig(maxPlayerCount int32) *wire.Config {
	return &wire.Config{
		MaxPlayerCount: maxPlayerCount,
		MapSize:        1000,
		UpdateDelayMs:  50,
		Tanks:          []*world.Tank{testTank()},
	}
}

func TestLeastLoadedPicksSmallestCount(t *testing.T) {
	m := &Manager{handles: []*handle{
		{hub: &Hub{}, playerCount: 3},
		{hub: &Hub{}, playerCount: 1},
		{hub: &Hub{}, playerCount: 2},
	}}

	best := m.leastLoaded()
	if best == nil || best.playerCount != 1 {
		t.Fatalf("expected the handle with playerCount 1, got %+v", best)
	}
}

func TestLeastLoadedEmptyManager(t *testing.T) {
	m := &Manager{}
	if m.leastLoaded() != nil {
		t.Fatal("expected nil from an empty manager")
	}
}

func TestStatlogPathDisabledWhenDirEmpty(t *testing.T) {
	m := &Manager{}
	if got := m.statlogPath(1); got != "" {
		t.Fatalf("expected empty path when statlogDir unset, got %q", got)
	}
}

func TestStatlogPathIncludesHubId(t *testing.T) {
	m := &Manager{statlogDir: "/var/log/tankhub"}
	if got, want := m.statlogPath(42), "/var/log/tankhub/hub-42.csv"; got != want {
		t.Fatalf("statlogPath(42) = %q, want %q", got, want)
	}
}

// TestCreateClientAdmitsToLeastLoadedHub drives CreateClient end to end:
// it must pick the less-populated of two live hubs, send the session on
// that hub's real admission channel, and increment only that handle's
// playerCount.
func TestCreateClientAdmitsToLeastLoadedHub(t *testing.T) {
	m := &Manager{config: managerTestConfig(2)}
	full := New(1, managerTestConfig(2), nil, "")
	roomy := New(2, managerTestConfig(2), nil, "")
	m.handles = []*handle{
		{hub: full, playerCount: 2},
		{hub: roomy, playerCount: 0},
	}

	m.CreateClient(nil)

	if len(m.handles) != 2 {
		t.Fatalf("expected no new hub spawned, got %d handles", len(m.handles))
	}
	if m.handles[1].playerCount != 1 {
		t.Fatalf("expected roomy hub's playerCount incremented to 1, got %d", m.handles[1].playerCount)
	}
	if len(roomy.admission) != 1 {
		t.Fatalf("expected the session admitted onto roomy hub's admission channel, got %d queued", len(roomy.admission))
	}
	if len(full.admission) != 0 {
		t.Fatal("expected the full hub's admission channel untouched")
	}
}

// TestCreateClientNeverDecrements documents the preserved open-question
// behavior: a handle's playerCount only ever grows, even across repeated
// admissions to the same hub.
func TestCreateClientNeverDecrements(t *testing.T) {
	m := &Manager{config: managerTestConfig(5)}
	h := New(1, managerTestConfig(5), nil, "")
	m.handles = []*handle{{hub: h, playerCount: 0}}

	m.CreateClient(nil)
	m.CreateClient(nil)

	if m.handles[0].playerCount != 2 {
		t.Fatalf("expected playerCount 2 after two admissions, got %d", m.handles[0].playerCount)
	}
	if len(m.handles) != 1 {
		t.Fatal("expected the handle list untouched (no new hub needed)")
	}
}

// TestCreateClientFallsThroughWhenHubRetired exercises the "send failure
// (hub ended), fall through to step 3" path: a retired handle must never
// be admitted to, and a fresh hub is spawned in its place.
func TestCreateClientFallsThroughWhenHubRetired(t *testing.T) {
	m := &Manager{config: managerTestConfig(2)}
	retired := New(1, managerTestConfig(2), nil, "")
	m.handles = []*handle{{hub: retired, playerCount: 0, retired: true}}

	m.CreateClient(nil)

	if len(m.handles) != 2 {
		t.Fatalf("expected a new hub spawned for the retired handle, got %d handles", len(m.handles))
	}
	if len(retired.admission) != 0 {
		t.Fatal("expected nothing admitted onto the retired hub")
	}
}

// TestShutdownRetiresHubsAndClosesAdmission exercises the shutdown path
// that makes Run's `case s, ok := <-h.admission: if !ok { return }`
// reachable.
func TestShutdownRetiresHubsAndClosesAdmission(t *testing.T) {
	m := &Manager{config: managerTestConfig(5)}
	h := New(1, managerTestConfig(5), nil, "")
	m.handles = []*handle{{hub: h, playerCount: 0}}

	m.Shutdown()

	if !m.handles[0].retired {
		t.Fatal("expected handle marked retired")
	}
	if _, ok := <-h.admission; ok {
		t.Fatal("expected the hub's admission channel closed")
	}
}
