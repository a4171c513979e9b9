package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateMatch opens a new wager match owned by the creator. The creator must
// hold at least the wager amount, but tokens only move at settlement.
func (ms *MongoStorage) CreateMatch(creatorID, game string, wager int64) (*Match, error) {
	if creatorID == "" || game == "" || wager <= 0 {
		return nil, ErrInvalidData
	}
	creator, err := ms.User(creatorID)
	if err != nil {
		return nil, err
	}
	if creator.TokenBalance < wager {
		return nil, ErrInsufficientTokens
	}
	match := &Match{
		ID:        uuid.NewString(),
		Game:      game,
		CreatorID: creatorID,
		Wager:     wager,
		Status:    MatchStatusOpen,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if _, err := ms.matches.InsertOne(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// Match returns the match with the given ID.
func (ms *MongoStorage) Match(id string) (*Match, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	result := ms.matches.FindOne(ctx, bson.M{"_id": id})
	match := &Match{}
	if err := result.Decode(match); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return match, nil
}

// OpenMatches returns matches waiting for an opponent, newest first.
func (ms *MongoStorage) OpenMatches(limit int64) ([]*Match, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := ms.matches.Find(ctx, bson.M{"status": MatchStatusOpen}, opts)
	if err != nil {
		return nil, err
	}
	var matches []*Match
	if err := cur.All(ctx, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// JoinMatch registers the opponent on an open match and activates it. The
// transition is a single conditional update, so two concurrent joins cannot
// both succeed.
func (ms *MongoStorage) JoinMatch(matchID, opponentID string) (*Match, error) {
	if opponentID == "" {
		return nil, ErrInvalidData
	}
	match, err := ms.Match(matchID)
	if err != nil {
		return nil, err
	}
	if match.CreatorID == opponentID {
		return nil, ErrInvalidData
	}
	opponent, err := ms.User(opponentID)
	if err != nil {
		return nil, err
	}
	if opponent.TokenBalance < match.Wager {
		return nil, ErrInsufficientTokens
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	res, err := ms.matches.UpdateOne(ctx,
		bson.M{"_id": matchID, "status": MatchStatusOpen},
		bson.M{"$set": bson.M{
			"opponentID": opponentID,
			"status":     MatchStatusActive,
			"updatedAt":  time.Now(),
		}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrInvalidMatchTransition
	}
	return ms.Match(matchID)
}

// SettleMatch resolves an active match declaring the winner. The loser is
// debited and the winner credited the wager, each with its own ledger entry,
// and the stats counters are updated. All the writes commit or abort
// together, and the match status transition is conditional so a match can
// only settle once.
func (ms *MongoStorage) SettleMatch(matchID, winnerID string) (*Match, error) {
	match, err := ms.Match(matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != MatchStatusActive {
		return nil, ErrInvalidMatchTransition
	}
	if winnerID != match.CreatorID && winnerID != match.OpponentID {
		return nil, ErrInvalidData
	}
	loserID := match.CreatorID
	if winnerID == match.CreatorID {
		loserID = match.OpponentID
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	err = ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		res, err := ms.matches.UpdateOne(sessCtx,
			bson.M{"_id": matchID, "status": MatchStatusActive},
			bson.M{"$set": bson.M{
				"status":    MatchStatusSettled,
				"winnerID":  winnerID,
				"updatedAt": time.Now(),
			}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrInvalidMatchTransition
		}
		if err := ms.incUserTokens(sessCtx, loserID, -match.Wager); err != nil {
			return err
		}
		if err := ms.incUserTokens(sessCtx, winnerID, match.Wager); err != nil {
			return err
		}
		desc := fmt.Sprintf("%s match %s", match.Game, matchID)
		if err := ms.addTransaction(sessCtx, &Transaction{
			UserID:      loserID,
			Type:        TxTypeMatchLoss,
			Amount:      -match.Wager,
			Description: desc,
		}); err != nil {
			return err
		}
		if err := ms.addTransaction(sessCtx, &Transaction{
			UserID:      winnerID,
			Type:        TxTypeMatchWin,
			Amount:      match.Wager,
			Description: desc,
		}); err != nil {
			return err
		}
		if err := ms.applyMatchResult(sessCtx, winnerID, true, match.Wager); err != nil {
			return err
		}
		return ms.applyMatchResult(sessCtx, loserID, false, 0)
	})
	if err != nil {
		return nil, err
	}
	return ms.Match(matchID)
}

// CancelMatch cancels an open match. Only the creator can cancel, and only
// while no opponent has joined.
func (ms *MongoStorage) CancelMatch(matchID, requesterID string) (*Match, error) {
	match, err := ms.Match(matchID)
	if err != nil {
		return nil, err
	}
	if match.CreatorID != requesterID {
		return nil, ErrNotParticipant
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	res, err := ms.matches.UpdateOne(ctx,
		bson.M{"_id": matchID, "status": MatchStatusOpen},
		bson.M{"$set": bson.M{
			"status":    MatchStatusCancelled,
			"updatedAt": time.Now(),
		}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrInvalidMatchTransition
	}
	return ms.Match(matchID)
}
