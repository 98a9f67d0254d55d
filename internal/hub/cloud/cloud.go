// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud is the optional, out-of-process persistence backend for
// hub high scores. A nil *Cloud is valid to use with any method and acts
// as a no-op - this just means the server is running in offline mode.
package cloud

import (
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
)

// UpdatePeriod is how often a hub should flush its leaderboard snapshot.
const UpdatePeriod = 30 * time.Second

// Cloud persists per-hub high scores to a shared table, trimmed from a
// larger multi-region bookkeeping service down to the one concern
// HubManager actually needs: durable scores.
type Cloud struct {
	database Database
}

// New connects to DynamoDB using the ambient AWS credential chain. stage
// namespaces the table name (e.g. "dev", "prod"). Returns a nil *Cloud on
// any error, matching the offline-is-valid contract.
func New(stage string) (*Cloud, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	database, err := NewDynamoDBDatabase(sess, stage)
	if err != nil {
		return nil, err
	}
	return &Cloud{database: database}, nil
}

// UpdateScore reports a single hub's player score, keyed by hub and player
// id. Only improves an existing record (never lowers a previously
// reported high score) - enforced by the database implementation.
func (cloud *Cloud) UpdateScore(hubID uint32, playerID uint32, score uint32) error {
	if cloud == nil {
		return nil
	}
	return cloud.database.UpdateScore(Score{HubID: hubID, PlayerID: playerID, Score: score})
}

// TopScores returns every score recorded across all hubs (each one a
// player's best in one hub), unsorted and unlimited.
func (cloud *Cloud) TopScores() ([]Score, error) {
	if cloud == nil {
		return nil, nil
	}
	return cloud.database.ReadScores()
}
