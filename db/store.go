// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/racoongodz/blockchain-voting-backend/models"
)

// ErrNotFound is returned when a lookup or a keyed delete matches no row.
var ErrNotFound = errors.New("record not found")

// ClaimConflictError reports that a uniqueness claim is already held by
// another voter of the same ballot.
type ClaimConflictError struct {
	Kind string
}

func (e *ClaimConflictError) Error() string {
	return fmt.Sprintf("%s already registered for this ballot", e.Kind)
}

// Store is the voter repository and ballot metadata store.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// NormalizeClaim trims and lower-cases a claim value so wallet checksums
// and e-mail casing do not defeat duplicate detection
func NormalizeClaim(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Ballots

// SaveBallot inserts a ballot or updates the metadata of an existing one.
// created_at is kept from the first save.
func (s *Store) SaveBallot(ctx context.Context, b models.Ballot) error {
	var votingEnd *time.Time
	if b.VotingEnd != nil {
		t := b.VotingEnd.UTC()
		votingEnd = &t
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ballots (ballot_id, title, admin_address, registration_start, registration_end, voting_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ballot_id) DO UPDATE SET
			title = EXCLUDED.title,
			admin_address = EXCLUDED.admin_address,
			registration_start = EXCLUDED.registration_start,
			registration_end = EXCLUDED.registration_end,
			voting_end = EXCLUDED.voting_end
	`, b.BallotID, b.Title, b.AdminAddress, b.RegistrationStart.UTC(), b.RegistrationEnd.UTC(), votingEnd, b.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save ballot: %w", err)
	}
	return nil
}

func (s *Store) GetBallot(ctx context.Context, ballotID string) (models.Ballot, error) {
	var b models.Ballot
	var votingEnd sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT ballot_id, title, admin_address, registration_start, registration_end, voting_end, created_at
		FROM ballots
		WHERE ballot_id = $1
	`, ballotID).Scan(&b.BallotID, &b.Title, &b.AdminAddress, &b.RegistrationStart, &b.RegistrationEnd, &votingEnd, &b.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Ballot{}, ErrNotFound
	}
	if err != nil {
		return models.Ballot{}, fmt.Errorf("failed to query ballot: %w", err)
	}

	b.RegistrationStart = b.RegistrationStart.UTC()
	b.RegistrationEnd = b.RegistrationEnd.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	if votingEnd.Valid {
		t := votingEnd.Time.UTC()
		b.VotingEnd = &t
	}
	return b, nil
}

// Claims

// FindClaims returns the subset of claims already held within the ballot.
func (s *Store) FindClaims(ctx context.Context, ballotID string, claims []models.Claim) ([]models.Claim, error) {
	if len(claims) == 0 {
		return nil, nil
	}

	args := []any{ballotID}
	conds := make([]string, 0, len(claims))
	for _, c := range claims {
		n := len(args)
		conds = append(conds, "(kind = $"+strconv.Itoa(n+1)+" AND value = $"+strconv.Itoa(n+2)+")")
		args = append(args, c.Kind, NormalizeClaim(c.Value))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, value FROM registration_claim
		WHERE ballot_id = $1 AND (`+strings.Join(conds, " OR ")+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()

	var held []models.Claim
	for rows.Next() {
		var c models.Claim
		if err := rows.Scan(&c.Kind, &c.Value); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		held = append(held, c)
	}
	return held, rows.Err()
}

func insertClaims(ctx context.Context, tx *sql.Tx, ballotID, voterID string, claims []models.Claim) error {
	for _, c := range claims {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO registration_claim (ballot_id, kind, value, voter_id)
			VALUES ($1, $2, $3, $4)
		`, ballotID, c.Kind, NormalizeClaim(c.Value), voterID)
		if err != nil {
			if isUniqueViolation(err) {
				return &ClaimConflictError{Kind: c.Kind}
			}
			return fmt.Errorf("failed to insert %s claim: %w", c.Kind, err)
		}
	}
	return nil
}

// insertFreeClaims takes each claim only if nobody holds it yet
func insertFreeClaims(ctx context.Context, tx *sql.Tx, ballotID, voterID string, claims []models.Claim) error {
	for _, c := range claims {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO registration_claim (ballot_id, kind, value, voter_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (ballot_id, kind, value) DO NOTHING
		`, ballotID, c.Kind, NormalizeClaim(c.Value), voterID)
		if err != nil {
			return fmt.Errorf("failed to insert %s claim: %w", c.Kind, err)
		}
	}
	return nil
}

// Pending voters

// CreatePending inserts a pending voter together with its claims. A held
// claim aborts the insert with *ClaimConflictError.
func (s *Store) CreatePending(ctx context.Context, v models.PendingVoter, claims []models.Claim) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertClaims(ctx, tx, v.BallotID, v.ID, claims); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pending_voters (id, ballot_id, full_name, email, metamask_address, id_photo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.BallotID, v.FullName, v.Email, v.MetamaskAddress, v.IDPhoto, v.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert pending voter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pending voter: %w", err)
	}
	return nil
}

const pendingColumns = `id, ballot_id, full_name, email, metamask_address, id_photo, created_at`

func scanPending(row interface{ Scan(...any) error }) (models.PendingVoter, error) {
	var v models.PendingVoter
	err := row.Scan(&v.ID, &v.BallotID, &v.FullName, &v.Email, &v.MetamaskAddress, &v.IDPhoto, &v.CreatedAt)
	v.CreatedAt = v.CreatedAt.UTC()
	return v, err
}

func (s *Store) GetPending(ctx context.Context, id string) (models.PendingVoter, error) {
	v, err := scanPending(s.db.QueryRowContext(ctx, `
		SELECT `+pendingColumns+` FROM pending_voters WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return models.PendingVoter{}, ErrNotFound
	}
	if err != nil {
		return models.PendingVoter{}, fmt.Errorf("failed to query pending voter: %w", err)
	}
	return v, nil
}

func (s *Store) ListPending(ctx context.Context, ballotIDs []string) ([]models.PendingVoter, error) {
	if len(ballotIDs) == 0 {
		return []models.PendingVoter{}, nil
	}
	in, args := inList(1, ballotIDs)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pendingColumns+` FROM pending_voters
		WHERE ballot_id IN (`+in+`)
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending voters: %w", err)
	}
	defer rows.Close()

	voters := []models.PendingVoter{}
	for rows.Next() {
		v, err := scanPending(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending voter: %w", err)
		}
		voters = append(voters, v)
	}
	return voters, rows.Err()
}

// DeletePending removes a pending voter and releases the claims it still
// owns. After an approval the claims belong to the approved row and stay;
// released is false in that case.
func (s *Store) DeletePending(ctx context.Context, id string) (released bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM pending_voters WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete pending voter: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return false, ErrNotFound
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM registration_claim WHERE voter_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to release claims: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count released claims: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit pending delete: %w", err)
	}
	return n > 0, nil
}

// Approved voters

// ApprovedExists reports whether the ballot already has an approved voter
// with the given wallet or, when matchName is set, the given full name.
func (s *Store) ApprovedExists(ctx context.Context, ballotID, wallet, fullName string, matchName bool) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM approved_voters
			WHERE ballot_id = $1 AND (LOWER(metamask_address) = $2`
	args := []any{ballotID, NormalizeClaim(wallet)}
	if matchName {
		query += ` OR LOWER(full_name) = $3`
		args = append(args, NormalizeClaim(fullName))
	}
	query += `))`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check approved voters: %w", err)
	}
	return exists, nil
}

// CreateApproved inserts an approved voter. Claims owned by fromPendingID
// are handed over to the new row; required claims must be free, optional
// claims are taken only if free.
func (s *Store) CreateApproved(ctx context.Context, v models.ApprovedVoter, fromPendingID string, required, optional []models.Claim) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO approved_voters (id, ballot_id, full_name, email, metamask_address, id_photo, voter_password, is_onchain, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, v.ID, v.BallotID, v.FullName, v.Email, v.MetamaskAddress, v.IDPhoto, v.VoterPassword, v.IsOnChain, v.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert approved voter: %w", err)
	}

	if fromPendingID != "" {
		res, err := tx.ExecContext(ctx, `
			UPDATE registration_claim SET voter_id = $1 WHERE voter_id = $2
		`, v.ID, fromPendingID)
		if err != nil {
			return fmt.Errorf("failed to transfer claims: %w", err)
		}
		// A pending voter always owns its wallet claim; none left means a
		// concurrent approval already took them
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return &ClaimConflictError{Kind: models.ClaimWallet}
		}
	}

	if err := insertClaims(ctx, tx, v.BallotID, v.ID, required); err != nil {
		return err
	}
	if err := insertFreeClaims(ctx, tx, v.BallotID, v.ID, optional); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit approved voter: %w", err)
	}
	return nil
}

const approvedColumns = `id, ballot_id, full_name, email, metamask_address, id_photo, voter_password, is_onchain, created_at`

func scanApproved(row interface{ Scan(...any) error }) (models.ApprovedVoter, error) {
	var v models.ApprovedVoter
	var photo sql.NullString
	err := row.Scan(&v.ID, &v.BallotID, &v.FullName, &v.Email, &v.MetamaskAddress, &photo, &v.VoterPassword, &v.IsOnChain, &v.CreatedAt)
	if photo.Valid {
		v.IDPhoto = &photo.String
	}
	v.CreatedAt = v.CreatedAt.UTC()
	return v, err
}

func (s *Store) queryApproved(ctx context.Context, where string, args ...any) ([]models.ApprovedVoter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+approvedColumns+` FROM approved_voters
		WHERE `+where+`
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved voters: %w", err)
	}
	defer rows.Close()

	voters := []models.ApprovedVoter{}
	for rows.Next() {
		v, err := scanApproved(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approved voter: %w", err)
		}
		voters = append(voters, v)
	}
	return voters, rows.Err()
}

func (s *Store) GetApproved(ctx context.Context, id string) (models.ApprovedVoter, error) {
	v, err := scanApproved(s.db.QueryRowContext(ctx, `
		SELECT `+approvedColumns+` FROM approved_voters WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return models.ApprovedVoter{}, ErrNotFound
	}
	if err != nil {
		return models.ApprovedVoter{}, fmt.Errorf("failed to query approved voter: %w", err)
	}
	return v, nil
}

func (s *Store) ListApproved(ctx context.Context, ballotIDs []string) ([]models.ApprovedVoter, error) {
	if len(ballotIDs) == 0 {
		return []models.ApprovedVoter{}, nil
	}
	in, args := inList(1, ballotIDs)
	return s.queryApproved(ctx, `ballot_id IN (`+in+`)`, args...)
}

// ListOffChain returns the approved voters of a ballot not yet pushed on-chain
func (s *Store) ListOffChain(ctx context.Context, ballotID string) ([]models.ApprovedVoter, error) {
	return s.queryApproved(ctx, `ballot_id = $1 AND is_onchain = $2`, ballotID, false)
}

// SearchApproved matches query as a case-insensitive substring of the full
// name or the wallet address. LIKE wildcards in query match literally.
func (s *Store) SearchApproved(ctx context.Context, query string) ([]models.ApprovedVoter, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(query))
	return s.queryApproved(ctx,
		`LOWER(full_name) LIKE $1 ESCAPE '\' OR LOWER(metamask_address) LIKE $1 ESCAPE '\'`,
		"%"+escaped+"%")
}

// DeleteApproved removes an approved voter and its claims. A non-empty
// ballotID must match as well.
func (s *Store) DeleteApproved(ctx context.Context, id, ballotID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var res sql.Result
	if ballotID == "" {
		res, err = tx.ExecContext(ctx, `DELETE FROM approved_voters WHERE id = $1`, id)
	} else {
		res, err = tx.ExecContext(ctx, `DELETE FROM approved_voters WHERE id = $1 AND ballot_id = $2`, id, ballotID)
	}
	if err != nil {
		return fmt.Errorf("failed to delete approved voter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM registration_claim WHERE voter_id = $1`, id); err != nil {
		return fmt.Errorf("failed to release claims: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit approved delete: %w", err)
	}
	return nil
}

// MarkOnChain sets is_onchain for the given ids. Unknown ids are ignored.
func (s *Store) MarkOnChain(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := inList(2, ids)
	res, err := s.db.ExecContext(ctx, `
		UPDATE approved_voters SET is_onchain = $1 WHERE id IN (`+in+`)
	`, append([]any{true}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark voters on-chain: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) ListCredentials(ctx context.Context) ([]models.VoterCredential, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT metamask_address, voter_password, ballot_id
		FROM approved_voters
		ORDER BY ballot_id, created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	creds := []models.VoterCredential{}
	for rows.Next() {
		var c models.VoterCredential
		if err := rows.Scan(&c.MetamaskAddress, &c.VoterPassword, &c.BallotID); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

// inList builds "$n, $n+1, ..." placeholders for an IN clause
func inList(start int, values []string) (string, []any) {
	marks := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		marks[i] = "$" + strconv.Itoa(start+i)
		args[i] = v
	}
	return strings.Join(marks, ", "), args
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
			strings.Contains(liteErr.Error(), "UNIQUE")
	}
	return false
}
