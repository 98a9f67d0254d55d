// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import "github.com/softbear-oss/tankhub/internal/world"

// userMessageKind distinguishes the two shapes a ClientSession can push onto
// a hub's inbound channel.
type userMessageKind uint8

const (
	userMessageEvent userMessageKind = iota
	userMessageGoingAway
)

// userMessage is the inbound channel's element type: either a user's decoded
// event, tagged with the entity id it came from, or notice that a session
// ended.
type userMessage struct {
	kind  userMessageKind
	user  world.Id
	event world.UserEvent
}
