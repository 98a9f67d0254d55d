// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package wire

import (
	"bytes"
	"io"

	"github.com/softbear-oss/tankhub/internal/world"
)

func writeCannon(w io.Writer, c world.Cannon, bulletId int32) error {
	if err := writeI16(w, c.Yaw); err != nil {
		return err
	}
	if err := writeU32(w, c.Delay); err != nil {
		return err
	}
	if err := writeI32(w, c.Size); err != nil {
		return err
	}
	return writeI32(w, bulletId)
}

// writeTank writes a full Tank definition - used only inside Config's
// tank catalog. Elsewhere (EntityCreate, Config.tanks[i].cannons[j].bullet)
// a Tank is referenced by its integer id only.
func writeTank(w io.Writer, t *world.Tank) error {
	if err := writeI32(w, t.Id); err != nil {
		return err
	}
	if err := writeF64(w, t.Size); err != nil {
		return err
	}
	for _, stat := range t.BaseStats {
		if err := writeF32(w, stat); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(len(t.Cannons))); err != nil {
		return err
	}
	for _, cannon := range t.Cannons {
		bulletId := int32(-1)
		if cannon.Bullet != nil {
			bulletId = cannon.Bullet.Id
		}
		if err := writeCannon(w, cannon, bulletId); err != nil {
			return err
		}
	}
	return nil
}

func readTank(r io.Reader) (id int32, size float64, stats [world.StatCount]float32, cannonBulletIds []int32, cannons []world.Cannon, err error) {
	if id, err = readI32(r); err != nil {
		return
	}
	if size, err = readF64(r); err != nil {
		return
	}
	for i := range stats {
		if stats[i], err = readF32(r); err != nil {
			return
		}
	}
	var count uint32
	if count, err = readU32(r); err != nil {
		return
	}
	cannons = make([]world.Cannon, count)
	cannonBulletIds = make([]int32, count)
	for i := range cannons {
		if cannons[i].Yaw, err = readI16(r); err != nil {
			return
		}
		if cannons[i].Delay, err = readU32(r); err != nil {
			return
		}
		if cannons[i].Size, err = readI32(r); err != nil {
			return
		}
		if cannonBulletIds[i], err = readI32(r); err != nil {
			return
		}
	}
	return
}

// Config is the wire shape of the hub's configuration, sent once to each
// client on admission as part of UserInit. Tanks carries the full, shared
// tank catalog (every other reference to a Tank on the wire is by id
// only).
type Config struct {
	MaxPlayerCount int32
	MapSize        float64
	UpdateDelayMs  uint64
	Tanks          []*world.Tank
	HitDelay       uint32
}

func writeConfig(w io.Writer, c Config) error {
	if err := writeI32(w, c.MaxPlayerCount); err != nil {
		return err
	}
	if err := writeF64(w, c.MapSize); err != nil {
		return err
	}
	if err := writeU64(w, c.UpdateDelayMs); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(c.Tanks))); err != nil {
		return err
	}
	for _, tank := range c.Tanks {
		if err := writeTank(w, tank); err != nil {
			return err
		}
	}
	return writeU32(w, c.HitDelay)
}

// readConfig decodes a Config and resolves each cannon's bullet reference
// against the tanks decoded in the same catalog, looked up by id once the
// whole catalog has been read.
func readConfig(r io.Reader) (Config, error) {
	var c Config
	var err error
	if c.MaxPlayerCount, err = readI32(r); err != nil {
		return c, err
	}
	if c.MapSize, err = readF64(r); err != nil {
		return c, err
	}
	if c.UpdateDelayMs, err = readU64(r); err != nil {
		return c, err
	}
	var tankCount uint32
	if tankCount, err = readU32(r); err != nil {
		return c, err
	}

	type pending struct {
		tank      *world.Tank
		bulletIds []int32
	}
	pendings := make([]pending, tankCount)
	byId := make(map[int32]*world.Tank, tankCount)

	for i := range pendings {
		id, size, stats, bulletIds, cannons, err := readTank(r)
		if err != nil {
			return c, err
		}
		tank := &world.Tank{Id: id, Size: size, BaseStats: stats, Cannons: cannons}
		pendings[i] = pending{tank: tank, bulletIds: bulletIds}
		byId[id] = tank
		c.Tanks = append(c.Tanks, tank)
	}
	for _, p := range pendings {
		for i, bulletId := range p.bulletIds {
			p.tank.Cannons[i].Bullet = byId[bulletId]
		}
	}

	c.HitDelay, err = readU32(r)
	return c, err
}

// EncodeUserInit writes the one-time admission frame: the full Config
// plus the id assigned to this connection's entity.
func EncodeUserInit(config Config, you world.Id) []byte {
	var buf bytes.Buffer
	_ = writeConfig(&buf, config)
	_ = writeU32(&buf, uint32(you))
	return buf.Bytes()
}

// DecodeUserInit is the client-side counterpart, kept for round-trip
// tests.
func DecodeUserInit(data []byte) (Config, world.Id, error) {
	r := bytes.NewReader(data)
	config, err := readConfig(r)
	if err != nil {
		return Config{}, 0, err
	}
	you, err := readU32(r)
	return config, world.Id(you), err
}
