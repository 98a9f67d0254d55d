// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"math/rand"
	"sort"
	"strconv"
	"testing"

	"github.com/softbear-oss/tankhub/internal/world"
)

func createPlayerScoreSet(n int) playerScoreSet {
	random := rand.New(rand.NewSource(0))

	set := make(playerScoreSet, n)
	for i := range set {
		score := int(random.NormFloat64()*30 + 10)
		if score < 0 {
			score = 0
		}
		set[i] = playerScore{id: world.Id(i + 1), score: uint32(score)}
	}
	return set
}

func TestTopPlayersOrdering(t *testing.T) {
	set := createPlayerScoreSet(200)

	top := topPlayers(append(playerScoreSet{}, set...), 10)
	if len(top) != 10 {
		t.Fatalf("expected 10 results, got %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].score > top[i-1].score {
			t.Fatalf("expected descending scores, got %+v", top)
		}
	}
}

func TestTopPlayersFewerThanCount(t *testing.T) {
	set := createPlayerScoreSet(3)
	top := topPlayers(set, 10)
	if len(top) != 3 {
		t.Fatalf("expected 3 results, got %d", len(top))
	}
}

func benchLeaderboardFunc(b *testing.B, f func(playerScoreSet, int) []playerScore, n, count int) {
	set := createPlayerScoreSet(n)

	b.Run(strconv.Itoa(n), func(b *testing.B) {
		b.StopTimer()
		b.ReportAllocs()

		s := make(playerScoreSet, len(set))

		for i := 0; i < b.N; i++ {
			copy(s, set)
			b.StartTimer()

			top := f(s, count)

			b.StopTimer()
			sorted := sort.SliceIsSorted(top, func(i, j int) bool {
				return top[i].score > top[j].score
			})
			if !sorted {
				b.Errorf("not sorted: %v", top)
			}
		}

		b.StartTimer()
	})
}

func BenchmarkTop10PlayersHeap(b *testing.B) {
	for i := 64; i <= 4096; i *= 2 {
		benchLeaderboardFunc(b, topPlayersHeap, i, 10)
	}
}

func BenchmarkTop10PlayersInsert(b *testing.B) {
	for i := 64; i <= 4096; i *= 2 {
		benchLeaderboardFunc(b, topPlayersInsert, i, 10)
	}
}
