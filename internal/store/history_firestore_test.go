package store

import (
	"context"
	"os"
	"strings"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"github.com/GregMSThompson/explorer-guide/internal/models"
)

// reverseCipher stands in for KMS; it prefixes the aad so a mismatched key is visible.
type reverseCipher struct{}

func (reverseCipher) Encrypt(ctx context.Context, plaintext, aad string) (string, error) {
	return aad + "|" + reverse(plaintext), nil
}

func (reverseCipher) Decrypt(ctx context.Context, ciphertext, aad string) (string, error) {
	return reverse(strings.TrimPrefix(ciphertext, aad+"|")), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "explorer-guide-test")
	if err != nil {
		t.Fatalf("firestore client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestFirestoreHistoryRoundTripEncrypted(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	h := NewFirestoreHistory(client, reverseCipher{})
	uid := "u-" + uuid.NewString()

	for _, q := range []string{"first", "second"} {
		if err := h.Append(ctx, uid, "s1", models.UserMessage(q, at), models.AssistantMessage("re: "+q, at)); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}

	msgs, err := h.Get(ctx, uid, "s1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(msgs) != 4 || msgs[0].Content != "first" || msgs[3].Content != "re: second" {
		t.Fatalf("unexpected history: %+v", msgs)
	}

	docs, err := h.turnsCollection(uid, "s1").Documents(ctx).GetAll()
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	for _, doc := range docs {
		var turn models.Turn
		doc.DataTo(&turn)
		if !turn.Encrypted || !strings.HasPrefix(turn.Prompt, uid+"/s1|") {
			t.Fatalf("turn stored in the clear: %+v", turn)
		}
	}
}

func TestFirestoreHistoryAbsentSession(t *testing.T) {
	client := emulatorClient(t)
	msgs, err := NewFirestoreHistory(client, nil).Get(context.Background(), "nobody", "none")
	if err != nil || len(msgs) != 0 {
		t.Fatalf("expected empty history, got %v, %v", msgs, err)
	}
}
