package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/explorer-guide/internal/errs"
	"github.com/GregMSThompson/explorer-guide/internal/models"
)

type cipher interface {
	Encrypt(ctx context.Context, plaintext, aad string) (string, error)
	Decrypt(ctx context.Context, ciphertext, aad string) (string, error)
}

// sessionDoc is the parent document of a session's turns. TurnCount orders
// turns and serializes concurrent appends through the transaction.
type sessionDoc struct {
	TurnCount int64     `firestore:"turnCount"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type firestoreHistory struct {
	client   *firestore.Client
	cipher   cipher
	clockNow func() time.Time
}

// NewFirestoreHistory stores turns under users/{uid}/guide_sessions/{sessionId}/turns.
// cipher may be nil, in which case text is stored in the clear.
func NewFirestoreHistory(client *firestore.Client, c cipher) *firestoreHistory {
	return &firestoreHistory{client: client, cipher: c, clockNow: time.Now}
}

func (s *firestoreHistory) sessionRef(uid, sessionID string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("guide_sessions").Doc(sessionID)
}

func (s *firestoreHistory) turnsCollection(uid, sessionID string) *firestore.CollectionRef {
	return s.sessionRef(uid, sessionID).Collection("turns")
}

func aad(uid, sessionID string) string {
	return uid + "/" + sessionID
}

func (s *firestoreHistory) Get(ctx context.Context, uid, sessionID string) ([]models.Message, error) {
	iter := s.turnsCollection(uid, sessionID).Query.OrderBy("seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := []models.Message{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list guide turns", err)
		}
		var turn models.Turn
		if err := doc.DataTo(&turn); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse guide turn", err)
		}
		if turn.Encrypted {
			if turn, err = s.decryptTurn(ctx, uid, sessionID, turn); err != nil {
				return nil, err
			}
		}
		out = append(out, turn.Messages()...)
	}
	return out, nil
}

func (s *firestoreHistory) Append(ctx context.Context, uid, sessionID string, human, assistant models.Message) error {
	turn := models.NewTurn(human, assistant)
	turn.CreatedAt = s.clockNow()

	if s.cipher != nil {
		var err error
		if turn, err = s.encryptTurn(ctx, uid, sessionID, turn); err != nil {
			return err
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return errs.NewDatabaseError("create", "failed to generate turn id", err)
	}

	sessionRef := s.sessionRef(uid, sessionID)
	turnRef := s.turnsCollection(uid, sessionID).Doc(id.String())

	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var sess sessionDoc
		snap, err := tx.Get(sessionRef)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			if err := snap.DataTo(&sess); err != nil {
				return err
			}
		}

		turn.Seq = sess.TurnCount
		if err := tx.Create(turnRef, turn); err != nil {
			return err
		}
		return tx.Set(sessionRef, sessionDoc{TurnCount: sess.TurnCount + 1, UpdatedAt: turn.CreatedAt})
	})
	if err != nil {
		return errs.NewDatabaseError("create", "failed to save guide turn", err)
	}
	return nil
}

func (s *firestoreHistory) encryptTurn(ctx context.Context, uid, sessionID string, turn models.Turn) (models.Turn, error) {
	var err error
	if turn.Prompt, err = s.cipher.Encrypt(ctx, turn.Prompt, aad(uid, sessionID)); err != nil {
		return turn, err
	}
	if turn.Answer, err = s.cipher.Encrypt(ctx, turn.Answer, aad(uid, sessionID)); err != nil {
		return turn, err
	}
	turn.Encrypted = true
	return turn, nil
}

func (s *firestoreHistory) decryptTurn(ctx context.Context, uid, sessionID string, turn models.Turn) (models.Turn, error) {
	if s.cipher == nil {
		return turn, errs.NewEncryptionError("turn is encrypted but no key is configured", nil)
	}
	var err error
	if turn.Prompt, err = s.cipher.Decrypt(ctx, turn.Prompt, aad(uid, sessionID)); err != nil {
		return turn, err
	}
	if turn.Answer, err = s.cipher.Decrypt(ctx, turn.Answer, aad(uid, sessionID)); err != nil {
		return turn, err
	}
	turn.Encrypted = false
	return turn, nil
}

func (s *firestoreHistory) Close() error { return nil }
