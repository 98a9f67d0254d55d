// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package wire

import (
	"reflect"
	"testing"

	"github.com/softbear-oss/tankhub/internal/world"
)

func TestUserEventRoundTrip(t *testing.T) {
	cases := []world.UserEvent{
		{Kind: world.EventSetShooting, SetShooting: true},
		{Kind: world.EventSetShooting, SetShooting: false},
		{Kind: world.EventYaw, Yaw: -180},
		{Kind: world.EventYaw, Yaw: 359},
		{Kind: world.EventLevelUpgrade, LevelUpgrade: world.BulletDamage},
		{Kind: world.EventDirectionChange, DirectionChange: world.DirectionChange{Up: true, Right: true}},
	}

	for _, want := range cases {
		got, err := DecodeUserEvent(EncodeUserEvent(want))
		if err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("round trip mismatch: want %+v got %+v", want, got)
		}
	}
}

func TestDecodeUserEventUnknownTag(t *testing.T) {
	if _, err := DecodeUserEvent([]byte{255}); err == nil {
		t.Fatal("expected decode error for unknown tag")
	}
}

func TestDecodeUserEventTruncated(t *testing.T) {
	// Tag 1 (Yaw) needs 2 more bytes; give it none.
	if _, err := DecodeUserEvent([]byte{1}); err == nil {
		t.Fatal("expected decode error for truncated payload")
	}
}

func TestServerEventBatchRoundTrip(t *testing.T) {
	want := []world.ServerEvent{
		{Kind: world.EventEntityCreate, Id: 1, Tank: 0, Position: world.Vec2{X: 1.5, Y: -2.5}},
		{Kind: world.EventPosition, Id: 1, Position: world.Vec2{X: 2, Y: 3}, Yaw: 90, Velocity: world.Vec2{X: 0.1, Y: 0.2}},
		{Kind: world.EventEntityDelete, Id: 1},
	}

	got, err := DecodeServerEventBatch(EncodeServerEventBatch(want))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip mismatch: want %+v got %+v", want, got)
	}
}

func TestServerEventBatchEmpty(t *testing.T) {
	got, err := DecodeServerEventBatch(EncodeServerEventBatch(nil))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty batch, got %+v", got)
	}
}

func TestUserInitRoundTrip(t *testing.T) {
	bulletTank := &world.Tank{Id: 1, Size: 2}
	tank := &world.Tank{
		Id:   0,
		Size: 10,
		BaseStats: [world.StatCount]float32{
			world.MaxHealth: 100, world.Reload: 1, world.MovementSpeed: 1,
		},
		Cannons: []world.Cannon{{Yaw: 0, Delay: 10, Size: 2, Bullet: bulletTank}},
	}

	config := Config{
		MaxPlayerCount: 16,
		MapSize:        1000,
		UpdateDelayMs:  50,
		Tanks:          []*world.Tank{tank, bulletTank},
		HitDelay:       3,
	}

	gotConfig, gotYou, err := DecodeUserInit(EncodeUserInit(config, 7))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if gotYou != 7 {
		t.Fatalf("expected you=7, got %d", gotYou)
	}
	if len(gotConfig.Tanks) != 2 {
		t.Fatalf("expected 2 tanks, got %d", len(gotConfig.Tanks))
	}
	if gotConfig.Tanks[0].Cannons[0].Bullet.Id != bulletTank.Id {
		t.Fatal("expected cannon's bullet reference resolved against the catalog")
	}
	if gotConfig.MaxPlayerCount != 16 || gotConfig.MapSize != 1000 || gotConfig.UpdateDelayMs != 50 || gotConfig.HitDelay != 3 {
		t.Fatalf("scalar field mismatch: %+v", gotConfig)
	}
}
