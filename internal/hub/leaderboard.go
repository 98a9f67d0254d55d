// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"container/heap"
	"sort"

	"github.com/softbear-oss/tankhub/internal/world"
)

// playerScore is the minimal projection of an Entity needed to rank
// players; computed fresh each time a leaderboard snapshot is taken.
type playerScore struct {
	id    world.Id
	score uint32
}

type playerScoreSet []playerScore

func (s playerScoreSet) Len() int { return len(s) }

// Less is inverted (greater score sorts first), so this is a max-heap by
// score: heap.Pop yields players highest-score first.
func (s playerScoreSet) Less(i, j int) bool { return s[i].score > s[j].score }
func (s playerScoreSet) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func (s *playerScoreSet) Push(x interface{}) { *s = append(*s, x.(playerScore)) }

func (s *playerScoreSet) Pop() interface{} {
	old := *s
	n := len(old)
	item := old[n-1]
	*s = old[:n-1]
	return item
}

// topPlayers returns the count highest-scoring players, highest first.
// Mirrors the two-strategy split (insertion when at most 20 players are
// requested, heap otherwise) used for the same purpose against a
// differently-shaped player set.
func topPlayers(players playerScoreSet, count int) []playerScore {
	if count <= 20 {
		return topPlayersInsert(players, count)
	}
	return topPlayersHeap(players, count)
}

func topPlayersHeap(players playerScoreSet, count int) []playerScore {
	heap.Init(&players)

	top := make([]playerScore, 0, count)
	for players.Len() > 0 && len(top) < cap(top) {
		top = append(top, heap.Pop(&players).(playerScore))
	}
	return top
}

// topPlayersInsert sorts a count-sized subset, then inserts each remaining
// player into it in place, keeping the subset sorted. O(n*count) but
// avoids a full sort for the common case (count small, n moderate).
func topPlayersInsert(players playerScoreSet, count int) []playerScore {
	n := len(players)
	if count > n {
		count = n
	}

	subset := players[:count]
	sort.Sort(&subset)

	if count < n {
		rest := players[count:]
		end := len(subset) - 1

		for _, p := range rest {
			j := end
			if !subset.scoreLess(p, subset[j]) {
				continue
			}
			subset[j] = p

			for ; j > 0 && subset.scoreLess(subset[j], subset[j-1]); j-- {
				subset.Swap(j, j-1)
			}
		}
	}

	top := make([]playerScore, len(subset))
	copy(top, subset)
	return top
}

func (s playerScoreSet) scoreLess(a, b playerScore) bool { return a.score > b.score }

// computeLeaderboard snapshots the current player scores and returns the
// top 10, highest first.
func (h *Hub) computeLeaderboard() []playerScore {
	set := make(playerScoreSet, 0, len(h.entities))
	for _, id := range h.order {
		e, ok := h.entities[id]
		if !ok || e.Role != world.RolePlayer {
			continue
		}
		set = append(set, playerScore{id: id, score: e.Score})
	}
	return topPlayers(set, 10)
}
