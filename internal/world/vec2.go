// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "github.com/chewxy/math32"

// Vec2 is a 2D floating-point vector, used for position, velocity, and
// acceleration. It matches the wire encoding of Vec2 exactly: two f64s.
type Vec2 struct {
	X float64
	Y float64
}

func (vec Vec2) Add(other Vec2) Vec2 {
	return Vec2{vec.X + other.X, vec.Y + other.Y}
}

func (vec Vec2) Sub(other Vec2) Vec2 {
	return Vec2{vec.X - other.X, vec.Y - other.Y}
}

func (vec Vec2) Mul(factor float64) Vec2 {
	return Vec2{vec.X * factor, vec.Y * factor}
}

func (vec Vec2) Distance(other Vec2) float64 {
	return vec.Sub(other).Length()
}

func (vec Vec2) Length() float64 {
	return float64(math32.Hypot(float32(vec.X), float32(vec.Y)))
}

// yawUnitVector returns the unit vector pointing in the direction of yaw
// degrees (0 = +Y, 90 = +X, matching the right-handed screen convention
// used by DirectionChange.to_velocity in the original source).
func yawUnitVector(yaw int16) Vec2 {
	radians := float32(yaw) * (math32.Pi / 180)
	return Vec2{X: float64(math32.Sin(radians)), Y: float64(math32.Cos(radians))}
}

// clamp restricts val to [minimum, maximum].
func clamp(val, minimum, maximum float64) float64 {
	if val < minimum {
		return minimum
	}
	if val > maximum {
		return maximum
	}
	return val
}

// clampMagnitude preserves the sign of val while capping its magnitude to
// maximum (which must be non-negative).
func clampMagnitude(val, maximum float64) float64 {
	if val < -maximum {
		return -maximum
	}
	if val > maximum {
		return maximum
	}
	return val
}

func abs(val float64) float64 {
	if val < 0 {
		return -val
	}
	return val
}
