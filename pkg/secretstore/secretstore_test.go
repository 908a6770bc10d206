package secretstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/ids"
)

// fakeSecretStore grants decryption to a single authorized consumer and
// keeps the "ciphertext" reversible so round trips can be asserted.
type fakeSecretStore struct {
	mu         sync.Mutex
	documents  map[string]string // documentId -> plaintext
	authorized common.Address
}

func newFakeSecretStore(t *testing.T, authorized common.Address) *httptest.Server {
	t.Helper()
	store := &fakeSecretStore{documents: map[string]string{}, authorized: authorized}
	router := chi.NewRouter()

	router.Post("/api/v1/secretstore/encrypt", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		store.mu.Lock()
		store.documents[req["documentId"]] = req["content"]
		store.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{
			"encryptedContent": "enc:" + req["documentId"],
		})
	})
	router.Post("/api/v1/secretstore/decrypt", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req["consumer"] != store.authorized.Hex() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		store.mu.Lock()
		plaintext, ok := store.documents[req["documentId"]]
		store.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"content": plaintext})
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	consumer := common.HexToAddress("0x33")
	server := newFakeSecretStore(t, consumer)
	client := NewClient(server.URL, time.Second, nil)
	ctx := context.Background()

	did := ids.GenerateDID()
	plaintext := `["https://example.org/dataset.csv"]`

	encrypted, err := client.EncryptDocument(ctx, did, plaintext, common.HexToAddress("0x44"))
	if err != nil {
		t.Fatalf("EncryptDocument() error = %v", err)
	}
	if encrypted == plaintext || encrypted == "" {
		t.Fatalf("EncryptDocument() = %q, want opaque ciphertext", encrypted)
	}

	decrypted, err := client.DecryptDocument(ctx, did, encrypted, consumer)
	if err != nil {
		t.Fatalf("DecryptDocument() error = %v", err)
	}
	if decrypted != plaintext {
		t.Errorf("DecryptDocument() = %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptWithoutGrant(t *testing.T) {
	server := newFakeSecretStore(t, common.HexToAddress("0x33"))
	client := NewClient(server.URL, time.Second, nil)
	ctx := context.Background()

	did := ids.GenerateDID()
	if _, err := client.EncryptDocument(ctx, did, "secret", common.HexToAddress("0x44")); err != nil {
		t.Fatalf("EncryptDocument() error = %v", err)
	}

	_, err := client.DecryptDocument(ctx, did, "enc:"+did.ID(), common.HexToAddress("0x99"))
	if !errors.IsUnauthorized(err) {
		t.Errorf("DecryptDocument() error = %v, want unauthorized", err)
	}
}

func TestValidation(t *testing.T) {
	client := NewClient("http://localhost:0", time.Second, nil)
	ctx := context.Background()

	if _, err := client.EncryptDocument(ctx, ids.GenerateDID(), "", common.Address{}); !errors.IsValidation(err) {
		t.Errorf("EncryptDocument(empty) error = %v, want validation", err)
	}
	if _, err := client.DecryptDocument(ctx, ids.GenerateDID(), "", common.Address{}); !errors.IsValidation(err) {
		t.Errorf("DecryptDocument(empty) error = %v, want validation", err)
	}
}
