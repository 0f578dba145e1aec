// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/racoongodz/blockchain-voting-backend/auth"
	"github.com/racoongodz/blockchain-voting-backend/cliparse"
	"github.com/racoongodz/blockchain-voting-backend/db"
	"github.com/racoongodz/blockchain-voting-backend/models"
)

// SetupTestDB opens a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		Environment:     "test",
		DatabaseType:    "sqlite",
		DatabaseURL:     ":memory:",
		StorageBackend:  cliparse.StorageLocal,
		StorageBucket:   "voter-photos",
		PublicBaseURL:   "http://localhost:3318",
		MaxUploadMB:     5,
		DuplicatePolicy: models.PolicyWalletOrEmail,
		CORSOrigins:     []string{"*"},
	}
}

// CreateTestBallot saves a ballot whose registration window is open from an
// hour ago until an hour from now, and returns its id
func CreateTestBallot(t *testing.T, conn *sql.DB, ballotID string) string {
	t.Helper()

	now := time.Now().UTC()
	return CreateTestBallotWindow(t, conn, ballotID, now.Add(-time.Hour), now.Add(time.Hour))
}

// CreateTestBallotWindow saves a ballot with an explicit registration window
func CreateTestBallotWindow(t *testing.T, conn *sql.DB, ballotID string, start, end time.Time) string {
	t.Helper()

	err := db.NewStore(conn).SaveBallot(context.Background(), models.Ballot{
		BallotID:          ballotID,
		Title:             "Test Ballot " + ballotID,
		AdminAddress:      "0xADMIN",
		RegistrationStart: start,
		RegistrationEnd:   end,
		CreatedAt:         time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}
	return ballotID
}

// CreateTestPending inserts a pending voter with its wallet and e-mail
// claims and returns it
func CreateTestPending(t *testing.T, conn *sql.DB, ballotID, fullName, email, wallet string) models.PendingVoter {
	t.Helper()

	v := models.PendingVoter{
		ID:              auth.GenerateID(),
		BallotID:        ballotID,
		FullName:        fullName,
		Email:           email,
		MetamaskAddress: wallet,
		IDPhoto:         "http://localhost:3318/uploads/" + strings.ReplaceAll(fullName, " ", "_") + ".jpg",
		CreatedAt:       time.Now().UTC(),
	}
	claims := []models.Claim{
		{Kind: models.ClaimWallet, Value: wallet},
		{Kind: models.ClaimEmail, Value: email},
	}
	if err := db.NewStore(conn).CreatePending(context.Background(), v, claims); err != nil {
		t.Fatalf("Failed to create test pending voter: %v", err)
	}
	return v
}

// CreateTestApproved inserts an approved voter holding a wallet claim
func CreateTestApproved(t *testing.T, conn *sql.DB, ballotID, fullName, email, wallet string) models.ApprovedVoter {
	t.Helper()

	password, _ := auth.GeneratePassword()
	v := models.ApprovedVoter{
		ID:              auth.GenerateID(),
		BallotID:        ballotID,
		FullName:        fullName,
		Email:           email,
		MetamaskAddress: wallet,
		VoterPassword:   password,
		CreatedAt:       time.Now().UTC(),
	}
	required := []models.Claim{{Kind: models.ClaimWallet, Value: wallet}}
	optional := []models.Claim{{Kind: models.ClaimEmail, Value: email}}
	if err := db.NewStore(conn).CreateApproved(context.Background(), v, "", required, optional); err != nil {
		t.Fatalf("Failed to create test approved voter: %v", err)
	}
	return v
}

// MemoryBlobStore is an in-memory storage.BlobStore
type MemoryBlobStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string

	FailUpload bool
	FailDelete bool
}

const memoryBlobBase = "https://blobs.test/voter-photos/"

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{Objects: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Upload(_ context.Context, name, _ string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUpload {
		return errors.New("blob store unavailable")
	}
	if _, ok := m.Objects[name]; ok {
		return errors.New("object exists")
	}
	m.Objects[name] = data
	return nil
}

func (m *MemoryBlobStore) PublicURL(name string) (string, error) {
	return memoryBlobBase + name, nil
}

func (m *MemoryBlobStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDelete {
		return errors.New("blob store unavailable")
	}
	delete(m.Objects, name)
	m.Deleted = append(m.Deleted, name)
	return nil
}

func (m *MemoryBlobStore) ObjectName(publicURL string) (string, bool) {
	name, ok := strings.CutPrefix(publicURL, memoryBlobBase)
	return name, ok && name != ""
}

// Count returns the number of stored objects
func (m *MemoryBlobStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}

// RecordingMailer remembers every password mail it is asked to send
type RecordingMailer struct {
	mu   sync.Mutex
	Sent map[string]string
	Fail bool
}

func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{Sent: make(map[string]string)}
}

func (m *RecordingMailer) SendVoterPassword(_ context.Context, to, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("smtp unavailable")
	}
	m.Sent[to] = password
	return nil
}

// Password returns the password mailed to the address, if any
func (m *RecordingMailer) Password(to string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Sent[to]
	return p, ok
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeMultipartRequest creates a multipart/form-data request. A nil photo
// omits the id_photo part.
func MakeMultipartRequest(method, path string, fields map[string]string, photoName string, photo []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if photo != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="id_photo"; filename="`+photoName+`"`)
		h.Set("Content-Type", "image/jpeg")
		part, _ := mw.CreatePart(h)
		part.Write(photo)
	}
	mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
