package registration

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racoongodz/blockchain-voting-backend/auth"
	"github.com/racoongodz/blockchain-voting-backend/db"
	"github.com/racoongodz/blockchain-voting-backend/models"
	"github.com/racoongodz/blockchain-voting-backend/testutil"
)

type fixture struct {
	conn   *sql.DB
	store  *db.Store
	blobs  *testutil.MemoryBlobStore
	mailer *testutil.RecordingMailer
	svc    *Service
}

func newFixture(t *testing.T, policy string) *fixture {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	f := &fixture{
		conn:   conn,
		store:  db.NewStore(conn),
		blobs:  testutil.NewMemoryBlobStore(),
		mailer: testutil.NewRecordingMailer(),
	}
	f.svc = NewService(f.store, f.blobs, f.mailer, policy)
	return f
}

func submission(ballotID, name, email, wallet string) Submission {
	return Submission{
		BallotID:         ballotID,
		FullName:         name,
		Email:            email,
		MetamaskAddress:  wallet,
		PhotoName:        "id card.jpg",
		PhotoContentType: "image/jpeg",
		Photo:            []byte("\xff\xd8\xff\xe0jpeg"),
	}
}

func TestSubmitRegistration(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	ctx := context.Background()

	v, err := f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xABC"))
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "B-1", v.BallotID)
	assert.True(t, strings.HasPrefix(v.IDPhoto, "https://blobs.test/voter-photos/"))
	assert.True(t, strings.HasSuffix(v.IDPhoto, "-id_card.jpg"))
	assert.Equal(t, 1, f.blobs.Count())

	pending, err := f.svc.ListPending(ctx, []string{"B-1"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, v.ID, pending[0].ID)

	// Same wallet again, differently cased
	_, err = f.svc.SubmitRegistration(ctx, submission("B-1", "Alice Again", "other@example.com", "0xabc"))
	assert.ErrorIs(t, err, ErrDuplicateWallet)

	_, err = f.svc.SubmitRegistration(ctx, submission("B-1", "Alice Again", "ALICE@example.com", "0xDEF"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	assert.Equal(t, 1, f.blobs.Count(), "rejected submissions store no photo")

	// Another ballot is a separate scope
	testutil.CreateTestBallot(t, f.conn, "B-2")
	_, err = f.svc.SubmitRegistration(ctx, submission("B-2", "Alice", "alice@example.com", "0xABC"))
	assert.NoError(t, err)
}

func TestSubmitRegistration_DuplicateAgainstApproved(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	ctx := context.Background()

	v, err := f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xABC"))
	require.NoError(t, err)
	_, err = f.svc.ApproveVoter(ctx, v.ID)
	require.NoError(t, err)

	_, err = f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xABC"))
	assert.ErrorIs(t, err, ErrDuplicateWallet)

	_, err = f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xNEW"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSubmitRegistration_Policies(t *testing.T) {
	ctx := context.Background()

	t.Run("wallet-only allows a shared email", func(t *testing.T) {
		f := newFixture(t, models.PolicyWalletOnly)
		testutil.CreateTestBallot(t, f.conn, "B-1")

		_, err := f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "family@example.com", "0x1"))
		require.NoError(t, err)
		_, err = f.svc.SubmitRegistration(ctx, submission("B-1", "Bob", "family@example.com", "0x2"))
		assert.NoError(t, err)
	})

	t.Run("wallet-or-name blocks a shared name", func(t *testing.T) {
		f := newFixture(t, models.PolicyWalletOrName)
		testutil.CreateTestBallot(t, f.conn, "B-1")

		_, err := f.svc.SubmitRegistration(ctx, submission("B-1", "Alice Smith", "a@example.com", "0x1"))
		require.NoError(t, err)
		_, err = f.svc.SubmitRegistration(ctx, submission("B-1", "alice smith", "b@example.com", "0x2"))
		assert.ErrorIs(t, err, ErrDuplicateName)
		_, err = f.svc.SubmitRegistration(ctx, submission("B-1", "Bob", "a@example.com", "0x3"))
		assert.NoError(t, err)
	})

	t.Run("empty policy defaults to wallet-or-email", func(t *testing.T) {
		f := newFixture(t, "")
		testutil.CreateTestBallot(t, f.conn, "B-1")

		_, err := f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "a@example.com", "0x1"))
		require.NoError(t, err)
		_, err = f.svc.SubmitRegistration(ctx, submission("B-1", "Bob", "a@example.com", "0x2"))
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})
}

func TestSubmitRegistration_Window(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)
	testutil.CreateTestBallotWindow(t, f.conn, "B-1", start, end)

	// A clock in a far-off zone must not shift the window
	tokyo := time.FixedZone("JST", 9*3600)

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"before start", start.Add(-time.Second), ErrRegistrationClosed},
		{"at start", start, nil},
		{"inside, local zone", time.Date(2025, 3, 2, 1, 30, 0, 0, tokyo), nil},
		{"at end", end, nil},
		{"after end", end.Add(time.Second), ErrRegistrationClosed},
		{"after end, local zone", time.Date(2025, 3, 2, 3, 0, 0, 0, tokyo), ErrRegistrationClosed},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.svc.now = func() time.Time { return tt.now }
			wallet := "0xW" + string(rune('A'+i))
			_, err := f.svc.SubmitRegistration(context.Background(),
				submission("B-1", "Voter "+wallet, wallet+"@example.com", wallet))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSubmitRegistration_Invalid(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	ctx := context.Background()

	noPhoto := submission("B-1", "Alice", "alice@example.com", "0xABC")
	noPhoto.Photo = nil

	tests := []struct {
		name      string
		sub       Submission
		wantErr   error
		wantField string
	}{
		{"missing name", submission("B-1", " ", "alice@example.com", "0xABC"), ErrValidation, "full_name"},
		{"missing wallet", submission("B-1", "Alice", "alice@example.com", ""), ErrValidation, "metamask_address"},
		{"bad email", submission("B-1", "Alice", "not-an-email", "0xABC"), ErrValidation, "email"},
		{"missing photo", noPhoto, ErrValidation, "id_photo"},
		{"unknown ballot", submission("B-404", "Alice", "alice@example.com", "0xABC"), ErrBallotNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitRegistration(ctx, tt.sub)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantField != "" {
				assert.Contains(t, err.Error(), tt.wantField)
			}
		})
	}
	assert.Equal(t, 0, f.blobs.Count())
}

func TestSubmitRegistration_UploadFailure(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	f.blobs.FailUpload = true

	_, err := f.svc.SubmitRegistration(context.Background(), submission("B-1", "Alice", "alice@example.com", "0xABC"))
	assert.ErrorIs(t, err, ErrStorage)

	pending, err := f.store.ListPending(context.Background(), []string{"B-1"})
	require.NoError(t, err)
	assert.Empty(t, pending, "no row without a photo")
}

// blindRepo hides existing claims from the early lookup, the way a
// concurrent registration slips past it
type blindRepo struct {
	*db.Store
}

func (blindRepo) FindClaims(context.Context, string, []models.Claim) ([]models.Claim, error) {
	return nil, nil
}

func TestSubmitRegistration_ConstraintIsAuthoritative(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	svc := NewService(blindRepo{f.store}, f.blobs, f.mailer, models.PolicyWalletOrEmail)
	ctx := context.Background()

	_, err := svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xABC"))
	require.NoError(t, err)

	_, err = svc.SubmitRegistration(ctx, submission("B-1", "Mallory", "mallory@example.com", "0xABC"))
	assert.ErrorIs(t, err, ErrDuplicateWallet)
	assert.Equal(t, 1, f.blobs.Count(), "photo of the losing submission is removed")
	assert.Len(t, f.blobs.Deleted, 1)
}

func TestApproveVoter(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	ctx := context.Background()

	p, err := f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xABC"))
	require.NoError(t, err)

	res, err := f.svc.ApproveVoter(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Warning)
	assert.Len(t, res.Voter.VoterPassword, auth.PasswordLength)
	assert.False(t, res.Voter.IsOnChain)

	pending, err := f.svc.ListPending(ctx, []string{"B-1"})
	require.NoError(t, err)
	assert.Empty(t, pending)

	grouped, err := f.svc.ListApproved(ctx, []string{"B-1"})
	require.NoError(t, err)
	require.Len(t, grouped["B-1"], 1)
	a := grouped["B-1"][0]
	assert.Equal(t, p.FullName, a.FullName)
	assert.Equal(t, p.Email, a.Email)
	assert.Equal(t, p.MetamaskAddress, a.MetamaskAddress)
	require.NotNil(t, a.IDPhoto)
	assert.Equal(t, p.IDPhoto, *a.IDPhoto)
	assert.Equal(t, res.Voter.VoterPassword, a.VoterPassword)

	mailed, ok := f.mailer.Password("alice@example.com")
	require.True(t, ok)
	assert.Equal(t, a.VoterPassword, mailed)

	_, err = f.svc.ApproveVoter(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound, "approval consumes the pending record")

	_, err = f.svc.ApproveVoter(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApproveVoter_MailFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	f.mailer.Fail = true

	p := testutil.CreateTestPending(t, f.conn, "B-1", "Alice", "alice@example.com", "0xABC")
	_, err := f.svc.ApproveVoter(context.Background(), p.ID)
	assert.NoError(t, err)
}

func TestApproveVoter_AlreadyApprovedByName(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrName)
	testutil.CreateTestApproved(t, f.conn, "B-1", "Alice Smith", "first@example.com", "0x1")
	p := testutil.CreateTestPending(t, f.conn, "B-1", "alice smith", "second@example.com", "0x2")

	_, err := f.svc.ApproveVoter(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrAlreadyApproved)

	// Under the default policy the names of distinct people may collide
	svc := NewService(f.store, f.blobs, f.mailer, models.PolicyWalletOrEmail)
	_, err = svc.ApproveVoter(context.Background(), p.ID)
	assert.NoError(t, err)
}

// stuckPendingRepo fails to delete pending rows
type stuckPendingRepo struct {
	*db.Store
}

func (stuckPendingRepo) DeletePending(context.Context, string) (bool, error) {
	return false, errors.New("connection reset")
}

func TestApproveVoter_PendingDeleteFailureKeepsApproval(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	p := testutil.CreateTestPending(t, f.conn, "B-1", "Alice", "alice@example.com", "0xABC")
	svc := NewService(stuckPendingRepo{f.store}, f.blobs, f.mailer, models.PolicyWalletOrEmail)

	res, err := svc.ApproveVoter(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Contains(t, res.Warning, p.ID)

	_, err = f.store.GetApproved(context.Background(), res.Voter.ID)
	assert.NoError(t, err, "approval stands")

	// The leftover pending row cannot be approved a second time
	_, err = svc.ApproveVoter(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrAlreadyApproved)
}

func TestRejectVoter(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	ctx := context.Background()

	p, err := f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xABC"))
	require.NoError(t, err)

	require.NoError(t, f.svc.RejectVoter(ctx, p.ID))
	assert.Equal(t, 0, f.blobs.Count())

	pending, err := f.svc.ListPending(ctx, []string{"B-1"})
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, f.svc.RejectVoter(ctx, p.ID), ErrNotFound)

	// Rejection frees the wallet
	_, err = f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xABC"))
	assert.NoError(t, err)
}

func TestRejectVoter_PhotoDeleteFailure(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	ctx := context.Background()

	p, err := f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xABC"))
	require.NoError(t, err)

	f.blobs.FailDelete = true
	require.NoError(t, f.svc.RejectVoter(ctx, p.ID))

	_, err = f.store.GetPending(ctx, p.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRejectVoter_AfterConcurrentApproval(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	ctx := context.Background()

	p, err := f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xABC"))
	require.NoError(t, err)

	// An approval that has moved the claims but not yet dropped the pending row
	photo := p.IDPhoto
	approved := models.ApprovedVoter{
		ID:              "approved-1",
		BallotID:        p.BallotID,
		FullName:        p.FullName,
		Email:           p.Email,
		MetamaskAddress: p.MetamaskAddress,
		IDPhoto:         &photo,
		VoterPassword:   "Secret123456",
		CreatedAt:       time.Now(),
	}
	require.NoError(t, f.store.CreateApproved(ctx, approved, p.ID, nil, nil))

	err = f.svc.RejectVoter(ctx, p.ID)
	assert.ErrorIs(t, err, ErrAlreadyApproved)
	assert.Empty(t, f.blobs.Deleted, "approved voter keeps the photo")
	assert.Equal(t, 1, f.blobs.Count())

	_, err = f.store.GetApproved(ctx, approved.ID)
	assert.NoError(t, err)
	_, err = f.store.GetPending(ctx, p.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestAddApprovedVoter(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	ctx := context.Background()

	req := models.AddApprovedVoterRequest{
		FullName:        "Carol",
		Email:           "carol@example.com",
		MetamaskAddress: "0xC0C",
		BallotID:        "B-1",
	}
	v, err := f.svc.AddApprovedVoter(ctx, req)
	require.NoError(t, err)
	assert.Len(t, v.VoterPassword, auth.PasswordLength)
	assert.Nil(t, v.IDPhoto)
	_, ok := f.mailer.Password("carol@example.com")
	assert.True(t, ok)

	// Same wallet is refused
	dup := req
	dup.FullName = "Carol Two"
	dup.Email = "carol2@example.com"
	_, err = f.svc.AddApprovedVoter(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateWallet)

	// Same name and email with a new wallet is the admin's call
	twin := req
	twin.MetamaskAddress = "0xC0D"
	twin.IDPhotoURL = "https://cdn.example.com/p.jpg"
	v2, err := f.svc.AddApprovedVoter(ctx, twin)
	require.NoError(t, err)
	require.NotNil(t, v2.IDPhoto)
	assert.Equal(t, twin.IDPhotoURL, *v2.IDPhoto)

	_, err = f.svc.AddApprovedVoter(ctx, models.AddApprovedVoterRequest{FullName: "X", BallotID: "B-1"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "metamask_address")

	_, err = f.svc.AddApprovedVoter(ctx, models.AddApprovedVoterRequest{
		FullName: "X", Email: "x@example.com", MetamaskAddress: "0xX", BallotID: "B-1", IDPhotoURL: "not a url",
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "id_photo_url")

	missing := req
	missing.BallotID = "B-404"
	missing.MetamaskAddress = "0xFFF"
	_, err = f.svc.AddApprovedVoter(ctx, missing)
	assert.ErrorIs(t, err, ErrBallotNotFound)
}

func TestUnapproveVoter(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	ctx := context.Background()

	v := testutil.CreateTestApproved(t, f.conn, "B-1", "Alice", "alice@example.com", "0xABC")

	assert.ErrorIs(t, f.svc.UnapproveVoter(ctx, v.ID, "B-2"), ErrNotFound)
	assert.ErrorIs(t, f.svc.UnapproveVoter(ctx, v.ID, ""), ErrValidation)
	require.NoError(t, f.svc.UnapproveVoter(ctx, v.ID, "B-1"))
	assert.ErrorIs(t, f.svc.UnapproveVoter(ctx, v.ID, "B-1"), ErrNotFound)

	_, err := f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xABC"))
	assert.NoError(t, err, "unapproval frees the wallet")
}

func TestDeleteApprovedVoter(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	testutil.CreateTestBallot(t, f.conn, "B-1")
	ctx := context.Background()

	p, err := f.svc.SubmitRegistration(ctx, submission("B-1", "Alice", "alice@example.com", "0xABC"))
	require.NoError(t, err)
	res, err := f.svc.ApproveVoter(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteApprovedVoter(ctx, res.Voter.ID))
	assert.Equal(t, 0, f.blobs.Count(), "photo cleaned up")
	assert.ErrorIs(t, f.svc.DeleteApprovedVoter(ctx, res.Voter.ID), ErrNotFound)

	// A foreign photo URL is left alone
	manual, err := f.svc.AddApprovedVoter(ctx, models.AddApprovedVoterRequest{
		FullName: "Bob", Email: "bob@example.com", MetamaskAddress: "0xB0B", BallotID: "B-1",
		IDPhotoURL: "https://cdn.example.com/bob.jpg",
	})
	require.NoError(t, err)
	deleted := len(f.blobs.Deleted)
	require.NoError(t, f.svc.DeleteApprovedVoter(ctx, manual.ID))
	assert.Len(t, f.blobs.Deleted, deleted)
}

func TestMarkOnChain(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	ctx := context.Background()

	a := testutil.CreateTestApproved(t, f.conn, "B-1", "A", "a@example.com", "0x1")
	b := testutil.CreateTestApproved(t, f.conn, "B-1", "B", "b@example.com", "0x2")
	c := testutil.CreateTestApproved(t, f.conn, "B-1", "C", "c@example.com", "0x3")

	n, err := f.svc.MarkOnChain(ctx, []string{a.ID, b.ID, "does-not-exist"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = f.svc.MarkOnChain(ctx, []string{a.ID, b.ID})
	assert.NoError(t, err, "repeating is a no-op")

	for _, tc := range []struct {
		id   string
		want bool
	}{{a.ID, true}, {b.ID, true}, {c.ID, false}} {
		got, err := f.store.GetApproved(ctx, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.IsOnChain, tc.id)
	}

	// An empty batch succeeds without touching anything
	n, err = f.svc.MarkOnChain(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = f.svc.MarkOnChain(ctx, []string{" "})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListApprovedGroupsEveryBallot(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	ctx := context.Background()

	testutil.CreateTestApproved(t, f.conn, "B-1", "A", "a@example.com", "0x1")
	testutil.CreateTestApproved(t, f.conn, "B-1", "B", "b@example.com", "0x2")
	testutil.CreateTestApproved(t, f.conn, "B-3", "C", "c@example.com", "0x3")

	grouped, err := f.svc.ListApproved(ctx, []string{"B-1", "B-2"})
	require.NoError(t, err)
	assert.Len(t, grouped, 2)
	assert.Len(t, grouped["B-1"], 2)
	require.Contains(t, grouped, "B-2")
	assert.NotNil(t, grouped["B-2"])
	assert.Empty(t, grouped["B-2"])

	// Keys come back exactly as requested
	grouped, err = f.svc.ListApproved(ctx, []string{" B-1", "B-1", "B-2 "})
	require.NoError(t, err)
	assert.Len(t, grouped, 3)
	require.Contains(t, grouped, " B-1")
	assert.Len(t, grouped[" B-1"], 2)
	assert.Len(t, grouped["B-1"], 2)
	require.Contains(t, grouped, "B-2 ")
	assert.Empty(t, grouped["B-2 "])

	_, err = f.svc.ListApproved(ctx, []string{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.ListPending(ctx, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchApproved(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	ctx := context.Background()

	alice := testutil.CreateTestApproved(t, f.conn, "B-1", "Alice Liddell", "a@example.com", "0xAAA")
	wallet := testutil.CreateTestApproved(t, f.conn, "B-2", "Bob", "b@example.com", "0xALICE")
	testutil.CreateTestApproved(t, f.conn, "B-1", "Carol", "c@example.com", "0xCCC")

	found, err := f.svc.SearchApproved(ctx, "alice")
	require.NoError(t, err)
	var ids []string
	for _, v := range found {
		ids = append(ids, v.ID)
	}
	assert.ElementsMatch(t, []string{alice.ID, wallet.ID}, ids)

	_, err = f.svc.SearchApproved(ctx, "  ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApprovedCredentialsAndBatch(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	ctx := context.Background()

	a := testutil.CreateTestApproved(t, f.conn, "B-1", "A", "a@example.com", "0x1")
	b := testutil.CreateTestApproved(t, f.conn, "B-1", "B", "b@example.com", "0x2")
	testutil.CreateTestApproved(t, f.conn, "B-2", "C", "c@example.com", "0x3")

	creds, err := f.svc.ApprovedCredentials(ctx)
	require.NoError(t, err)
	assert.Len(t, creds, 3)

	_, err = f.svc.MarkOnChain(ctx, []string{a.ID})
	require.NoError(t, err)

	batch, err := f.svc.OnChainBatch(ctx, "B-1")
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, batch.VoterIDs)
	assert.Equal(t, []string{"0x2"}, batch.Addresses)
	assert.Equal(t, []string{auth.Keccak256Hex(b.VoterPassword)}, batch.HashedPasswords)

	empty, err := f.svc.OnChainBatch(ctx, "B-404")
	require.NoError(t, err)
	assert.NotNil(t, empty.VoterIDs)
	assert.Empty(t, empty.VoterIDs)
}

func TestSaveAndGetBallot(t *testing.T) {
	f := newFixture(t, models.PolicyWalletOrEmail)
	ctx := context.Background()

	b, err := f.svc.SaveBallot(ctx, models.SaveBallotRequest{
		BallotID:          "7",
		Title:             "Board",
		AdminAddress:      "0xADMIN",
		RegistrationStart: "2025-06-01T08:00",
		RegistrationEnd:   "2025-06-02T10:00:00+02:00",
		VotingEnd:         "2025-06-05T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), b.RegistrationStart)
	assert.Equal(t, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC), b.RegistrationEnd)

	got, err := f.svc.GetBallot(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Board", got.Title)
	assert.True(t, got.RegistrationEnd.Equal(b.RegistrationEnd))
	require.NotNil(t, got.VotingEnd)

	_, err = f.svc.GetBallot(ctx, "8")
	assert.ErrorIs(t, err, ErrBallotNotFound)

	tests := []struct {
		name string
		req  models.SaveBallotRequest
	}{
		{"missing title", models.SaveBallotRequest{BallotID: "9", AdminAddress: "0x", RegistrationStart: "2025-06-01T08:00", RegistrationEnd: "2025-06-02T08:00"}},
		{"bad time", models.SaveBallotRequest{BallotID: "9", Title: "T", AdminAddress: "0x", RegistrationStart: "tomorrow", RegistrationEnd: "2025-06-02T08:00"}},
		{"start after end", models.SaveBallotRequest{BallotID: "9", Title: "T", AdminAddress: "0x", RegistrationStart: "2025-06-03T08:00", RegistrationEnd: "2025-06-02T08:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SaveBallot(ctx, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
