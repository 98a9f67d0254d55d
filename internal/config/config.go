// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the hub's JSON configuration file: max_player_count,
// map_size, update_delay_ms, the tank catalog, and hit_delay.
package config

import (
	"errors"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/softbear-oss/tankhub/internal/wire"
	"github.com/softbear-oss/tankhub/internal/world"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type cannonJSON struct {
	Yaw    int16  `json:"yaw"`
	Delay  uint32 `json:"delay"`
	Size   int32  `json:"size"`
	Bullet int32  `json:"bullet"` // references a tank by id; -1 for none
}

type tankJSON struct {
	Id        int32                     `json:"id"`
	Size      float64                   `json:"size"`
	BaseStats [world.StatCount]float32  `json:"base_stats"`
	Cannons   []cannonJSON              `json:"cannons"`
}

type fileJSON struct {
	MaxPlayerCount int32      `json:"max_player_count"`
	MapSize        float64    `json:"map_size"`
	UpdateDelayMs  uint64     `json:"update_delay_ms"`
	Tanks          []tankJSON `json:"tanks"`
	HitDelay       uint32     `json:"hit_delay"`
}

// Load reads and parses the configuration file at path. The tanks list
// must be non-empty; tanks[0] becomes the default player tank. Any
// failure here is meant to be fatal at startup.
func Load(path string) (*wire.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file fileJSON
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Tanks) == 0 {
		return nil, errors.New("config: tanks list must be non-empty")
	}

	byId := make(map[int32]*world.Tank, len(file.Tanks))
	tanks := make([]*world.Tank, len(file.Tanks))
	for i, t := range file.Tanks {
		tank := &world.Tank{Id: t.Id, Size: t.Size, BaseStats: t.BaseStats}
		tanks[i] = tank
		byId[t.Id] = tank
	}
	for i, t := range file.Tanks {
		tank := tanks[i]
		tank.Cannons = make([]world.Cannon, len(t.Cannons))
		for j, c := range t.Cannons {
			tank.Cannons[j] = world.Cannon{
				Yaw:    c.Yaw,
				Delay:  c.Delay,
				Size:   c.Size,
				Bullet: byId[c.Bullet],
			}
		}
	}

	return &wire.Config{
		MaxPlayerCount: file.MaxPlayerCount,
		MapSize:        file.MapSize,
		UpdateDelayMs:  file.UpdateDelayMs,
		Tanks:          tanks,
		HitDelay:       file.HitDelay,
	}, nil
}
