// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	val "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.uber.org/zap"

	"github.com/racoongodz/blockchain-voting-backend/auth"
	"github.com/racoongodz/blockchain-voting-backend/db"
	"github.com/racoongodz/blockchain-voting-backend/metrics"
	"github.com/racoongodz/blockchain-voting-backend/models"
	"github.com/racoongodz/blockchain-voting-backend/notify"
	"github.com/racoongodz/blockchain-voting-backend/storage"
)

// Repository is the persistence the workflow needs. *db.Store implements it.
type Repository interface {
	SaveBallot(ctx context.Context, b models.Ballot) error
	GetBallot(ctx context.Context, ballotID string) (models.Ballot, error)

	FindClaims(ctx context.Context, ballotID string, claims []models.Claim) ([]models.Claim, error)

	CreatePending(ctx context.Context, v models.PendingVoter, claims []models.Claim) error
	GetPending(ctx context.Context, id string) (models.PendingVoter, error)
	ListPending(ctx context.Context, ballotIDs []string) ([]models.PendingVoter, error)
	DeletePending(ctx context.Context, id string) (released bool, err error)

	ApprovedExists(ctx context.Context, ballotID, wallet, fullName string, matchName bool) (bool, error)
	CreateApproved(ctx context.Context, v models.ApprovedVoter, fromPendingID string, required, optional []models.Claim) error
	GetApproved(ctx context.Context, id string) (models.ApprovedVoter, error)
	ListApproved(ctx context.Context, ballotIDs []string) ([]models.ApprovedVoter, error)
	ListOffChain(ctx context.Context, ballotID string) ([]models.ApprovedVoter, error)
	SearchApproved(ctx context.Context, query string) ([]models.ApprovedVoter, error)
	DeleteApproved(ctx context.Context, id, ballotID string) error
	MarkOnChain(ctx context.Context, ids []string) (int64, error)
	ListCredentials(ctx context.Context) ([]models.VoterCredential, error)
}

// Service runs the voter registration and review workflow.
type Service struct {
	repo   Repository
	blobs  storage.BlobStore
	mailer notify.Mailer
	policy string
	now    func() time.Time
}

func NewService(repo Repository, blobs storage.BlobStore, mailer notify.Mailer, policy string) *Service {
	if mailer == nil {
		mailer = notify.NopMailer{}
	}
	if policy == "" {
		policy = models.PolicyWalletOrEmail
	}
	return &Service{
		repo:   repo,
		blobs:  blobs,
		mailer: mailer,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Submission is a voter registration as received from the form. Tags name
// the form fields in validation errors.
type Submission struct {
	BallotID        string `json:"ballot_id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	MetamaskAddress string `json:"metamask_address"`

	PhotoName        string `json:"-"`
	PhotoContentType string `json:"-"`
	Photo            []byte `json:"id_photo"`
}

func (s Submission) Validate() error {
	return val.ValidateStruct(&s,
		val.Field(&s.BallotID, val.Required),
		val.Field(&s.FullName, val.Required),
		val.Field(&s.Email, val.Required, is.Email),
		val.Field(&s.MetamaskAddress, val.Required),
		val.Field(&s.Photo, val.Required),
	)
}

// ApprovalResult is the approved voter plus a reconciliation warning when
// the pending row could not be removed.
type ApprovalResult struct {
	Voter   models.ApprovedVoter
	Warning string
}

// SubmitRegistration validates a submission, stores its photo and records
// a pending voter. The row is written only once the photo URL is known.
func (s *Service) SubmitRegistration(ctx context.Context, sub Submission) (models.PendingVoter, error) {
	sub.BallotID = strings.TrimSpace(sub.BallotID)
	sub.FullName = strings.TrimSpace(sub.FullName)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.MetamaskAddress = strings.TrimSpace(sub.MetamaskAddress)

	if err := sub.Validate(); err != nil {
		metrics.Registrations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return models.PendingVoter{}, invalid(err)
	}

	ballot, err := s.repo.GetBallot(ctx, sub.BallotID)
	if errors.Is(err, db.ErrNotFound) {
		metrics.Registrations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return models.PendingVoter{}, ErrBallotNotFound
	}
	if err != nil {
		return models.PendingVoter{}, s.persistence("get ballot", err, "ballot_id", sub.BallotID)
	}

	if !ballot.RegistrationOpen(s.now()) {
		metrics.Registrations.WithLabelValues(metrics.OutcomeClosed).Inc()
		return models.PendingVoter{}, ErrRegistrationClosed
	}

	claims := s.claimsFor(sub.MetamaskAddress, sub.Email, sub.FullName)
	held, err := s.repo.FindClaims(ctx, sub.BallotID, claims)
	if err != nil {
		return models.PendingVoter{}, s.persistence("find claims", err, "ballot_id", sub.BallotID)
	}
	if len(held) > 0 {
		metrics.Registrations.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		return models.PendingVoter{}, duplicateError(firstByPriority(held))
	}

	name := storage.NewObjectName(sub.PhotoName, s.now())
	contentType := sub.PhotoContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.blobs.Upload(ctx, name, contentType, sub.Photo); err != nil {
		metrics.StorageFailures.WithLabelValues("upload").Inc()
		metrics.Registrations.WithLabelValues(metrics.OutcomeFailed).Inc()
		zap.S().Errorw("Photo upload failed", "ballot_id", sub.BallotID, "object", name, "error", err)
		return models.PendingVoter{}, fmt.Errorf("%w: failed to upload ID photo", ErrStorage)
	}

	photoURL, err := s.blobs.PublicURL(name)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("url").Inc()
		metrics.Registrations.WithLabelValues(metrics.OutcomeFailed).Inc()
		zap.S().Errorw("Photo URL unavailable", "ballot_id", sub.BallotID, "object", name, "error", err)
		s.deleteObject(ctx, name)
		return models.PendingVoter{}, fmt.Errorf("%w: failed to get ID photo URL", ErrStorage)
	}

	voter := models.PendingVoter{
		ID:              auth.GenerateID(),
		BallotID:        sub.BallotID,
		FullName:        sub.FullName,
		Email:           sub.Email,
		MetamaskAddress: sub.MetamaskAddress,
		IDPhoto:         photoURL,
		CreatedAt:       s.now(),
	}

	if err := s.repo.CreatePending(ctx, voter, claims); err != nil {
		// The photo is ours alone; never leave it behind a failed insert
		s.deleteObject(ctx, name)

		var conflict *db.ClaimConflictError
		if errors.As(err, &conflict) {
			metrics.Registrations.WithLabelValues(metrics.OutcomeDuplicate).Inc()
			return models.PendingVoter{}, duplicateError(conflict.Kind)
		}
		metrics.Registrations.WithLabelValues(metrics.OutcomeFailed).Inc()
		return models.PendingVoter{}, s.persistence("insert pending voter", err, "ballot_id", sub.BallotID)
	}

	metrics.Registrations.WithLabelValues(metrics.OutcomeAccepted).Inc()
	zap.S().Infow("Voter registered", "voter_id", voter.ID, "ballot_id", voter.BallotID)
	return voter, nil
}

// ApproveVoter moves a pending voter to the approved set with a freshly
// generated password. A failure to remove the pending row after the
// approval committed is reported as a warning, not an error.
func (s *Service) ApproveVoter(ctx context.Context, voterID string) (ApprovalResult, error) {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return ApprovalResult{}, fmt.Errorf("%w: voter_id is required", ErrValidation)
	}

	pending, err := s.repo.GetPending(ctx, voterID)
	if errors.Is(err, db.ErrNotFound) {
		return ApprovalResult{}, fmt.Errorf("%w: pending voter %s", ErrNotFound, voterID)
	}
	if err != nil {
		return ApprovalResult{}, s.persistence("get pending voter", err, "voter_id", voterID)
	}

	password, err := auth.GeneratePassword()
	if err != nil {
		return ApprovalResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	exists, err := s.repo.ApprovedExists(ctx, pending.BallotID, pending.MetamaskAddress, pending.FullName,
		s.policy == models.PolicyWalletOrName)
	if err != nil {
		return ApprovalResult{}, s.persistence("check approved voters", err, "voter_id", voterID)
	}
	if exists {
		return ApprovalResult{}, ErrAlreadyApproved
	}

	photo := pending.IDPhoto
	approved := models.ApprovedVoter{
		ID:              auth.GenerateID(),
		BallotID:        pending.BallotID,
		FullName:        pending.FullName,
		Email:           pending.Email,
		MetamaskAddress: pending.MetamaskAddress,
		IDPhoto:         &photo,
		VoterPassword:   password,
		IsOnChain:       false,
		CreatedAt:       s.now(),
	}

	if err := s.repo.CreateApproved(ctx, approved, pending.ID, nil, nil); err != nil {
		var conflict *db.ClaimConflictError
		if errors.As(err, &conflict) {
			return ApprovalResult{}, ErrAlreadyApproved
		}
		return ApprovalResult{}, s.persistence("insert approved voter", err, "voter_id", voterID)
	}

	metrics.Reviews.WithLabelValues(metrics.ActionApprove).Inc()
	result := ApprovalResult{Voter: approved}

	// A concurrent reject may already have removed the row
	if _, err := s.repo.DeletePending(ctx, pending.ID); err != nil && !errors.Is(err, db.ErrNotFound) {
		zap.S().Errorw("Approved voter still pending, needs manual reconciliation",
			"pending_id", pending.ID,
			"approved_id", approved.ID,
			"ballot_id", approved.BallotID,
			"error", err,
		)
		result.Warning = fmt.Sprintf("voter approved but pending record %s could not be removed", pending.ID)
	}

	s.mailPassword(ctx, approved)
	zap.S().Infow("Voter approved", "voter_id", approved.ID, "pending_id", pending.ID, "ballot_id", approved.BallotID)
	return result, nil
}

// RejectVoter deletes a pending voter. The photo delete is best-effort.
func (s *Service) RejectVoter(ctx context.Context, voterID string) error {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return fmt.Errorf("%w: voter_id is required", ErrValidation)
	}

	pending, err := s.repo.GetPending(ctx, voterID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: pending voter %s", ErrNotFound, voterID)
	}
	if err != nil {
		return s.persistence("get pending voter", err, "voter_id", voterID)
	}

	released, err := s.repo.DeletePending(ctx, voterID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: pending voter %s", ErrNotFound, voterID)
	}
	if err != nil {
		return s.persistence("delete pending voter", err, "voter_id", voterID)
	}
	if !released {
		// The claims moved to an approved row; the photo is now that voter's
		zap.S().Warnw("Rejected pending voter had already been approved, photo kept",
			"voter_id", voterID, "ballot_id", pending.BallotID)
		return ErrAlreadyApproved
	}

	s.deletePhoto(ctx, pending.IDPhoto)

	metrics.Reviews.WithLabelValues(metrics.ActionReject).Inc()
	zap.S().Infow("Voter rejected", "voter_id", voterID, "ballot_id", pending.BallotID)
	return nil
}

// AddApprovedVoter inserts an approved voter directly, bypassing review.
// Only the wallet must be unique within the ballot.
func (s *Service) AddApprovedVoter(ctx context.Context, req models.AddApprovedVoterRequest) (models.ApprovedVoter, error) {
	req.Trim()
	if err := req.Validate(); err != nil {
		return models.ApprovedVoter{}, invalid(err)
	}

	if _, err := s.repo.GetBallot(ctx, req.BallotID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.ApprovedVoter{}, ErrBallotNotFound
		}
		return models.ApprovedVoter{}, s.persistence("get ballot", err, "ballot_id", req.BallotID)
	}

	password, err := auth.GeneratePassword()
	if err != nil {
		return models.ApprovedVoter{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	v := models.ApprovedVoter{
		ID:              auth.GenerateID(),
		BallotID:        req.BallotID,
		FullName:        req.FullName,
		Email:           req.Email,
		MetamaskAddress: req.MetamaskAddress,
		VoterPassword:   password,
		CreatedAt:       s.now(),
	}
	if req.IDPhotoURL != "" {
		photo := req.IDPhotoURL
		v.IDPhoto = &photo
	}

	required := []models.Claim{{Kind: models.ClaimWallet, Value: v.MetamaskAddress}}
	optional := s.claimsFor(v.MetamaskAddress, v.Email, v.FullName)[1:]

	if err := s.repo.CreateApproved(ctx, v, "", required, optional); err != nil {
		var conflict *db.ClaimConflictError
		if errors.As(err, &conflict) {
			return models.ApprovedVoter{}, ErrDuplicateWallet
		}
		return models.ApprovedVoter{}, s.persistence("insert approved voter", err, "ballot_id", v.BallotID)
	}

	metrics.Reviews.WithLabelValues(metrics.ActionAdd).Inc()
	s.mailPassword(ctx, v)
	zap.S().Infow("Voter added manually", "voter_id", v.ID, "ballot_id", v.BallotID)
	return v, nil
}

// UnapproveVoter removes an approved voter of the given ballot. The photo
// is kept.
func (s *Service) UnapproveVoter(ctx context.Context, voterID, ballotID string) error {
	voterID = strings.TrimSpace(voterID)
	ballotID = strings.TrimSpace(ballotID)
	if voterID == "" || ballotID == "" {
		return fmt.Errorf("%w: voter_id and ballot_id are required", ErrValidation)
	}

	if err := s.repo.DeleteApproved(ctx, voterID, ballotID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: approved voter %s in ballot %s", ErrNotFound, voterID, ballotID)
		}
		return s.persistence("unapprove voter", err, "voter_id", voterID, "ballot_id", ballotID)
	}

	metrics.Reviews.WithLabelValues(metrics.ActionUnapprove).Inc()
	zap.S().Infow("Voter unapproved", "voter_id", voterID, "ballot_id", ballotID)
	return nil
}

// DeleteApprovedVoter removes an approved voter and, best-effort, its photo.
func (s *Service) DeleteApprovedVoter(ctx context.Context, voterID string) error {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return fmt.Errorf("%w: voter id is required", ErrValidation)
	}

	v, err := s.repo.GetApproved(ctx, voterID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: approved voter %s", ErrNotFound, voterID)
	}
	if err != nil {
		return s.persistence("get approved voter", err, "voter_id", voterID)
	}

	if v.IDPhoto != nil {
		s.deletePhoto(ctx, *v.IDPhoto)
	}

	if err := s.repo.DeleteApproved(ctx, voterID, ""); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: approved voter %s", ErrNotFound, voterID)
		}
		return s.persistence("delete approved voter", err, "voter_id", voterID)
	}

	metrics.Reviews.WithLabelValues(metrics.ActionDelete).Inc()
	zap.S().Infow("Approved voter deleted", "voter_id", voterID, "ballot_id", v.BallotID)
	return nil
}

// MarkOnChain flags approved voters as registered on-chain. It is
// idempotent; unknown ids are ignored and an empty list is a no-op.
func (s *Service) MarkOnChain(ctx context.Context, voterIDs []string) (int64, error) {
	ids := compact(voterIDs)
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.repo.MarkOnChain(ctx, ids)
	if err != nil {
		return 0, s.persistence("mark on-chain", err, "count", len(ids))
	}

	metrics.OnChainMarked.Add(float64(n))
	zap.S().Infow("Voters marked on-chain", "requested", len(ids), "updated", n)
	return n, nil
}

func (s *Service) ListPending(ctx context.Context, ballotIDs []string) ([]models.PendingVoter, error) {
	ids := compact(ballotIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: ballot IDs required", ErrValidation)
	}

	voters, err := s.repo.ListPending(ctx, ids)
	if err != nil {
		return nil, s.persistence("list pending voters", err)
	}
	return voters, nil
}

// ListApproved groups approved voters by ballot. Every requested ballot id
// is a key of the result exactly as sent, with an empty list when it has
// no voters.
func (s *Service) ListApproved(ctx context.Context, ballotIDs []string) (map[string][]models.ApprovedVoter, error) {
	ids := compact(ballotIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: ballot IDs required", ErrValidation)
	}

	voters, err := s.repo.ListApproved(ctx, ids)
	if err != nil {
		return nil, s.persistence("list approved voters", err)
	}

	byBallot := make(map[string][]models.ApprovedVoter, len(ids))
	for _, v := range voters {
		byBallot[v.BallotID] = append(byBallot[v.BallotID], v)
	}

	grouped := make(map[string][]models.ApprovedVoter, len(ballotIDs))
	for _, requested := range ballotIDs {
		list := byBallot[strings.TrimSpace(requested)]
		if list == nil {
			list = []models.ApprovedVoter{}
		}
		grouped[requested] = list
	}
	return grouped, nil
}

func (s *Service) SearchApproved(ctx context.Context, query string) ([]models.ApprovedVoter, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query required", ErrValidation)
	}

	voters, err := s.repo.SearchApproved(ctx, query)
	if err != nil {
		return nil, s.persistence("search approved voters", err)
	}
	return voters, nil
}

// ApprovedCredentials lists every approved voter's wallet, password and
// ballot.
func (s *Service) ApprovedCredentials(ctx context.Context) ([]models.VoterCredential, error) {
	creds, err := s.repo.ListCredentials(ctx)
	if err != nil {
		return nil, s.persistence("list credentials", err)
	}
	return creds, nil
}

// OnChainBatch prepares the approved voters of a ballot that are not yet
// on-chain as the parallel arrays registerMultipleVoters expects.
func (s *Service) OnChainBatch(ctx context.Context, ballotID string) (models.OnChainBatch, error) {
	ballotID = strings.TrimSpace(ballotID)
	if ballotID == "" {
		return models.OnChainBatch{}, fmt.Errorf("%w: ballot_id is required", ErrValidation)
	}

	voters, err := s.repo.ListOffChain(ctx, ballotID)
	if err != nil {
		return models.OnChainBatch{}, s.persistence("list off-chain voters", err, "ballot_id", ballotID)
	}

	batch := models.OnChainBatch{
		BallotID:        ballotID,
		VoterIDs:        make([]string, 0, len(voters)),
		Addresses:       make([]string, 0, len(voters)),
		HashedPasswords: make([]string, 0, len(voters)),
	}
	for _, v := range voters {
		batch.VoterIDs = append(batch.VoterIDs, v.ID)
		batch.Addresses = append(batch.Addresses, v.MetamaskAddress)
		batch.HashedPasswords = append(batch.HashedPasswords, auth.Keccak256Hex(v.VoterPassword))
	}
	return batch, nil
}

// Helpers

// claimsFor returns the uniqueness keys the policy enforces, wallet first
func (s *Service) claimsFor(wallet, email, fullName string) []models.Claim {
	claims := []models.Claim{{Kind: models.ClaimWallet, Value: wallet}}
	switch s.policy {
	case models.PolicyWalletOrEmail:
		claims = append(claims, models.Claim{Kind: models.ClaimEmail, Value: email})
	case models.PolicyWalletOrName:
		claims = append(claims, models.Claim{Kind: models.ClaimName, Value: fullName})
	}
	return claims
}

func firstByPriority(held []models.Claim) string {
	for _, kind := range []string{models.ClaimWallet, models.ClaimEmail, models.ClaimName} {
		for _, c := range held {
			if c.Kind == kind {
				return kind
			}
		}
	}
	return held[0].Kind
}

func duplicateError(kind string) error {
	switch kind {
	case models.ClaimEmail:
		return ErrDuplicateEmail
	case models.ClaimName:
		return ErrDuplicateName
	default:
		return ErrDuplicateWallet
	}
}

// invalid wraps a validation library error in ErrValidation
func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func (s *Service) persistence(op string, err error, keysAndValues ...any) error {
	zap.S().Errorw("Database operation failed", append([]any{"op", op, "error", err}, keysAndValues...)...)
	return fmt.Errorf("%w: %s", ErrPersistence, op)
}

// deletePhoto removes the object behind a photo URL. Failures are logged
// and swallowed.
func (s *Service) deletePhoto(ctx context.Context, photoURL string) {
	if photoURL == "" {
		return
	}
	name, ok := s.blobs.ObjectName(photoURL)
	if !ok {
		zap.S().Warnw("Photo URL not managed by this store, skipping delete", "url", photoURL)
		return
	}
	s.deleteObject(ctx, name)
}

func (s *Service) deleteObject(ctx context.Context, name string) {
	if err := s.blobs.Delete(ctx, name); err != nil {
		metrics.StorageFailures.WithLabelValues("delete").Inc()
		zap.S().Warnw("Photo delete failed", "object", name, "error", err)
	}
}

func (s *Service) mailPassword(ctx context.Context, v models.ApprovedVoter) {
	if err := s.mailer.SendVoterPassword(ctx, v.Email, v.VoterPassword); err != nil {
		metrics.MailFailures.Inc()
		zap.S().Warnw("Password mail not sent", "voter_id", v.ID, "error", err)
	}
}

func compact(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
