package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/ids"
)

func testController(t *testing.T) (*httptest.Server, chi.Router) {
	t.Helper()
	router := chi.NewRouter()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, router
}

func TestInitializeAgreement(t *testing.T) {
	server, router := testController(t)

	var received InitializeRequest
	router.Post("/api/v1/services/access/initialize", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	client := NewClient(server.URL, time.Second, nil)
	req := &InitializeRequest{
		DID:             ids.GenerateDID().String(),
		AgreementID:     ids.NoZeroX(ids.GenerateID().Hex()),
		ServiceIndex:    1,
		Signature:       "0xabcdef",
		ConsumerAddress: common.HexToAddress("0x33").Hex(),
	}
	if err := client.InitializeAgreement(context.Background(), req); err != nil {
		t.Fatalf("InitializeAgreement() error = %v", err)
	}
	if received.AgreementID != req.AgreementID {
		t.Errorf("controller received agreement ID %s, want %s", received.AgreementID, req.AgreementID)
	}
	if received.ConsumerAddress != req.ConsumerAddress {
		t.Errorf("controller received consumer %s, want %s", received.ConsumerAddress, req.ConsumerAddress)
	}
}

func TestInitializeAgreementValidation(t *testing.T) {
	client := NewClient("http://localhost:0", time.Second, nil)
	ctx := context.Background()

	err := client.InitializeAgreement(ctx, &InitializeRequest{Signature: "0x01"})
	if !errors.IsValidation(err) {
		t.Errorf("missing agreement ID: error = %v, want validation", err)
	}
	err = client.InitializeAgreement(ctx, &InitializeRequest{AgreementID: "aa"})
	if !errors.IsValidation(err) {
		t.Errorf("missing signature: error = %v, want validation", err)
	}
}

func TestInitializeAgreementRejected(t *testing.T) {
	server, router := testController(t)
	router.Post("/api/v1/services/access/initialize", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "signature mismatch", http.StatusBadRequest)
	})

	client := NewClient(server.URL, time.Second, nil)
	err := client.InitializeAgreement(context.Background(), &InitializeRequest{
		AgreementID: "aa", Signature: "0x01",
	})
	if !errors.IsRemoteRejection(err) {
		t.Errorf("error = %v, want remote rejection", err)
	}
}

func TestConsumeService(t *testing.T) {
	server, router := testController(t)
	agreementID := ids.GenerateID()
	consumer := common.HexToAddress("0x33")

	router.Get("/api/v1/services/consume", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("serviceAgreementId") != ids.NoZeroX(agreementID.Hex()) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if q.Get("consumerAddress") != consumer.Hex() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if q.Get("index") != "2" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="data.csv"`)
		w.Write([]byte("payload"))
	})

	client := NewClient(server.URL, time.Second, nil)
	dest, err := client.ConsumeService(context.Background(), agreementID, "", consumer, "0xsig", 2, t.TempDir())
	if err != nil {
		t.Fatalf("ConsumeService() error = %v", err)
	}
	content, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(content) != "payload" {
		t.Errorf("content = %q, want payload", content)
	}
}

func TestConsumeServiceUnauthorized(t *testing.T) {
	server, router := testController(t)
	router.Get("/api/v1/services/consume", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := NewClient(server.URL, time.Second, nil)
	_, err := client.ConsumeService(context.Background(), ids.GenerateID(), "", common.Address{}, "", 0, t.TempDir())
	if !errors.IsUnauthorized(err) {
		t.Errorf("error = %v, want unauthorized", err)
	}
}

func TestEncrypt(t *testing.T) {
	server, router := testController(t)
	router.Post("/api/v1/services/publish", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req["document"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"encryptedDocument": "0xencrypted"})
	})

	client := NewClient(server.URL, time.Second, nil)
	out, err := client.Encrypt(context.Background(), ids.GenerateDID(), `["https://example.org/file"]`, common.HexToAddress("0x44"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if out != "0xencrypted" {
		t.Errorf("Encrypt() = %q, want 0xencrypted", out)
	}
}

func TestExecute(t *testing.T) {
	server, router := testController(t)
	router.Post("/api/v1/services/exec", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"workflowId": "job-7"})
	})

	client := NewClient(server.URL, time.Second, nil)
	jobID, err := client.Execute(context.Background(), &ExecuteRequest{
		AgreementID: "aa",
		WorkflowDID: ids.GenerateDID().String(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if jobID != "job-7" {
		t.Errorf("Execute() = %q, want job-7", jobID)
	}
}
