// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/guregu/dynamo"
)

// DynamoDBDatabase is the Database implementation backing the hosted
// offering; the table name is namespaced per deploy stage.
type DynamoDBDatabase struct {
	svc         *dynamodb.DynamoDB
	db          *dynamo.DB
	scoresTable dynamo.Table
}

func NewDynamoDBDatabase(sess *session.Session, stage string) (*DynamoDBDatabase, error) {
	ddb := &DynamoDBDatabase{svc: dynamodb.New(sess)}
	ddb.db = dynamo.NewFromIface(ddb.svc)
	ddb.scoresTable = ddb.db.Table("tankhub-" + stage + "-scores")
	return ddb, nil
}

// UpdateScore only writes when there is no prior record, or the prior
// record's score is lower - a conditional put silently no-ops otherwise.
func (ddb *DynamoDBDatabase) UpdateScore(score Score) error {
	err := ddb.scoresTable.Put(score).If("attribute_not_exists(score) OR score < ?", score.Score).Run()
	if _, ok := err.(*dynamodb.ConditionalCheckFailedException); ok {
		return nil
	}
	return err
}

func (ddb *DynamoDBDatabase) ReadScores() (scores []Score, err error) {
	query := ddb.scoresTable.Scan().Iter()

	for {
		var score Score
		if !query.Next(&score) {
			err = query.Err()
			return
		}
		scores = append(scores, score)
	}
}
