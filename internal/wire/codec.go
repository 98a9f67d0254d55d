// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/softbear-oss/tankhub/internal/world"
)

func writeVec2(w io.Writer, v world.Vec2) error {
	if err := writeF64(w, v.X); err != nil {
		return err
	}
	return writeF64(w, v.Y)
}

func readVec2(r io.Reader) (world.Vec2, error) {
	x, err := readF64(r)
	if err != nil {
		return world.Vec2{}, err
	}
	y, err := readF64(r)
	if err != nil {
		return world.Vec2{}, err
	}
	return world.Vec2{X: x, Y: y}, nil
}

// EncodeUserEvent writes a single tagged UserEvent frame, using the
// client->server tag table (tags 0-3).
func EncodeUserEvent(event world.UserEvent) []byte {
	var buf bytes.Buffer
	switch event.Kind {
	case world.EventSetShooting:
		_ = writeU8(&buf, 0)
		_ = writeBool(&buf, event.SetShooting)
	case world.EventYaw:
		_ = writeU8(&buf, 1)
		_ = writeI16(&buf, event.Yaw)
	case world.EventLevelUpgrade:
		_ = writeU8(&buf, 2)
		_ = writeU8(&buf, uint8(event.LevelUpgrade))
	case world.EventDirectionChange:
		_ = writeU8(&buf, 3)
		d := event.DirectionChange
		_ = writeBool(&buf, d.Up)
		_ = writeBool(&buf, d.Left)
		_ = writeBool(&buf, d.Down)
		_ = writeBool(&buf, d.Right)
	}
	return buf.Bytes()
}

// DecodeUserEvent decodes a single UserEvent frame. An unknown tag, or a
// truncated/malformed payload, is a decode error; callers end the
// client's session on one with no close frame.
func DecodeUserEvent(data []byte) (world.UserEvent, error) {
	r := bytes.NewReader(data)
	tag, err := readU8(r)
	if err != nil {
		return world.UserEvent{}, err
	}
	switch tag {
	case 0:
		v, err := readBool(r)
		return world.UserEvent{Kind: world.EventSetShooting, SetShooting: v}, err
	case 1:
		v, err := readI16(r)
		return world.UserEvent{Kind: world.EventYaw, Yaw: v}, err
	case 2:
		v, err := readU8(r)
		if err != nil {
			return world.UserEvent{}, err
		}
		if v >= world.StatCount {
			return world.UserEvent{}, fmt.Errorf("wire: invalid stat %d", v)
		}
		return world.UserEvent{Kind: world.EventLevelUpgrade, LevelUpgrade: world.Stat(v)}, nil
	case 3:
		up, err := readBool(r)
		if err != nil {
			return world.UserEvent{}, err
		}
		left, err := readBool(r)
		if err != nil {
			return world.UserEvent{}, err
		}
		down, err := readBool(r)
		if err != nil {
			return world.UserEvent{}, err
		}
		right, err := readBool(r)
		if err != nil {
			return world.UserEvent{}, err
		}
		return world.UserEvent{Kind: world.EventDirectionChange, DirectionChange: world.DirectionChange{
			Up: up, Left: left, Down: down, Right: right,
		}}, nil
	default:
		return world.UserEvent{}, fmt.Errorf("wire: unknown UserEvent tag %d", tag)
	}
}

func writeServerEvent(w io.Writer, event world.ServerEvent) error {
	switch event.Kind {
	case world.EventEntityDelete:
		if err := writeU8(w, 0); err != nil {
			return err
		}
		return writeU32(w, uint32(event.Id))
	case world.EventEntityCreate:
		if err := writeU8(w, 1); err != nil {
			return err
		}
		if err := writeU32(w, uint32(event.Id)); err != nil {
			return err
		}
		if err := writeI32(w, event.Tank); err != nil {
			return err
		}
		return writeVec2(w, event.Position)
	case world.EventPosition:
		if err := writeU8(w, 2); err != nil {
			return err
		}
		if err := writeU32(w, uint32(event.Id)); err != nil {
			return err
		}
		if err := writeVec2(w, event.Position); err != nil {
			return err
		}
		if err := writeI16(w, event.Yaw); err != nil {
			return err
		}
		return writeVec2(w, event.Velocity)
	default:
		return fmt.Errorf("wire: unknown ServerEvent kind %d", event.Kind)
	}
}

func readServerEvent(r io.Reader) (world.ServerEvent, error) {
	tag, err := readU8(r)
	if err != nil {
		return world.ServerEvent{}, err
	}
	switch tag {
	case 0:
		id, err := readU32(r)
		return world.ServerEvent{Kind: world.EventEntityDelete, Id: world.Id(id)}, err
	case 1:
		id, err := readU32(r)
		if err != nil {
			return world.ServerEvent{}, err
		}
		tank, err := readI32(r)
		if err != nil {
			return world.ServerEvent{}, err
		}
		pos, err := readVec2(r)
		return world.ServerEvent{Kind: world.EventEntityCreate, Id: world.Id(id), Tank: tank, Position: pos}, err
	case 2:
		id, err := readU32(r)
		if err != nil {
			return world.ServerEvent{}, err
		}
		pos, err := readVec2(r)
		if err != nil {
			return world.ServerEvent{}, err
		}
		yaw, err := readI16(r)
		if err != nil {
			return world.ServerEvent{}, err
		}
		vel, err := readVec2(r)
		return world.ServerEvent{Kind: world.EventPosition, Id: world.Id(id), Position: pos, Yaw: yaw, Velocity: vel}, err
	default:
		return world.ServerEvent{}, fmt.Errorf("wire: unknown ServerEvent tag %d", tag)
	}
}

// EncodeServerEventBatch serializes a tick's worth of queued ServerEvents
// as a u32 count followed by each event in order - the delta batch sent
// to every client each tick.
func EncodeServerEventBatch(events []world.ServerEvent) []byte {
	var buf bytes.Buffer
	_ = writeU32(&buf, uint32(len(events)))
	for _, event := range events {
		_ = writeServerEvent(&buf, event)
	}
	return buf.Bytes()
}

// DecodeServerEventBatch is the client-side counterpart to
// EncodeServerEventBatch; kept here (even though the server never calls
// it) because it's the reference decoder exercised by round-trip tests.
func DecodeServerEventBatch(data []byte) ([]world.ServerEvent, error) {
	r := bytes.NewReader(data)
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	events := make([]world.ServerEvent, 0, n)
	for i := uint32(0); i < n; i++ {
		event, err := readServerEvent(r)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
