// Package services contains server-side business logic. AccountService is the
// account directory: registration, credential checks, external identities and
// the owned-block set. BlockService is the block ledger.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"github.com/dmitrijs2005/blockkeeper/internal/dbx"
	"github.com/dmitrijs2005/blockkeeper/internal/logging"
	"github.com/dmitrijs2005/blockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blockkeeper/internal/server/models"
	"github.com/dmitrijs2005/blockkeeper/internal/server/repositories/repomanager"
)

// AccountService manages users and their owned-block sets.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	hasher      auth.Hasher
	external    *auth.ExternalVerifier
	log         logging.Logger

	dummyOnce sync.Once
	dummy     string
}

// maxSecretBytes is the longest secret bcrypt accepts.
const maxSecretBytes = 72

// NewAccountService wires the account directory. external may be nil, which
// disables external login.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService,
	hasher auth.Hasher, external *auth.ExternalVerifier, log logging.Logger) *AccountService {
	if log == nil {
		log = logging.Nop{}
	}
	return &AccountService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		external:    external,
		log:         log,
	}
}

// FindByEmail returns the user registered under email, or nil when there is none.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u.Redacted(), nil
}

// Register creates a local user with a bcrypt hash of secret.
func (s *AccountService) Register(ctx context.Context, email, secret string) (*models.User, error) {
	if err := validateCredentials(email, secret); err != nil {
		return nil, err
	}

	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.ErrUserExists
	}

	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: hash secret", common.ErrorInternal)
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{Email: email, PasswordHash: &hash})
	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.BlockIDs = []string{}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u.Redacted(), nil
}

// Authenticate checks secret against the stored hash and returns the user id.
func (s *AccountService) Authenticate(ctx context.Context, email, secret string) (string, error) {
	if err := validateCredentials(email, secret); err != nil {
		return "", err
	}

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Compare(s.dummyHash(), secret)
			return "", common.ErrUserNotFound
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if u.PasswordHash == nil {
		s.hasher.Compare(s.dummyHash(), secret)
		return "", common.ErrInvalidCredential
	}
	if !s.hasher.Compare(*u.PasswordHash, secret) {
		return "", common.ErrInvalidCredential
	}
	return u.ID, nil
}

// Login authenticates and issues an identity token for the user.
func (s *AccountService) Login(ctx context.Context, email, secret string) (string, error) {
	sub, err := s.Authenticate(ctx, email, secret)
	if err != nil {
		return "", err
	}
	return s.issue(sub)
}

// RegisterOrFetchExternal returns the id of the user with email, creating a
// user without a local hash when none exists. Name and picture of an existing
// user are left as they are.
func (s *AccountService) RegisterOrFetchExternal(ctx context.Context, email, name, picture string) (string, error) {
	if err := validateEmail(email); err != nil {
		return "", err
	}

	repo := s.repomanager.Users(s.db)

	u, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("find user: %w", err)
	}

	u, err = repo.Create(ctx, &models.User{Email: email, Name: optional(name), Picture: optional(picture)})
	if errors.Is(err, common.ErrUserExists) {
		// lost a race with a concurrent first login
		u, err = repo.GetByEmail(ctx, email)
	}
	if err != nil {
		return "", fmt.Errorf("create external user: %w", err)
	}

	s.log.Info(ctx, "external user provisioned", "user_id", u.ID)
	return u.ID, nil
}

// ExternalLogin verifies an identity-broker assertion, provisions the user if
// needed and issues an identity token.
func (s *AccountService) ExternalLogin(ctx context.Context, assertion string) (string, error) {
	if !s.external.Enabled() {
		return "", common.ErrorUnauthorized
	}

	p, err := s.external.Verify(assertion)
	if err != nil {
		return "", err
	}

	sub, err := s.RegisterOrFetchExternal(ctx, p.Email, p.Name, p.Picture)
	if err != nil {
		return "", err
	}
	return s.issue(sub)
}

// Me returns the caller's profile including the owned-block set.
func (s *AccountService) Me(ctx context.Context, id auth.Identity) (*models.User, error) {
	sub, err := id.Require()
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	u, err := repo.GetByID(ctx, sub)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ids, err := repo.BlockIDs(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("owned blocks: %w", err)
	}
	u.BlockIDs = ids

	return u.Redacted(), nil
}

// LinkBlock adds blockID to the user's owned set.
func (s *AccountService) LinkBlock(ctx context.Context, userID, blockID string) error {
	return s.LinkBlockTx(ctx, s.db, userID, blockID)
}

// LinkBlockTx is LinkBlock on an explicit connection or transaction.
func (s *AccountService) LinkBlockTx(ctx context.Context, tx dbx.DBTX, userID, blockID string) error {
	if userID == "" {
		return common.ErrUserNotFound
	}
	if err := s.repomanager.Users(tx).LinkBlock(ctx, userID, blockID); err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("link block: %w", err)
	}
	return nil
}

// UnlinkBlocks removes blockIDs from the user's owned set. Ids that are not
// in the set are ignored.
func (s *AccountService) UnlinkBlocks(ctx context.Context, userID string, blockIDs []string) error {
	return s.UnlinkBlocksTx(ctx, s.db, userID, blockIDs)
}

// UnlinkBlocksTx is UnlinkBlocks on an explicit connection or transaction.
func (s *AccountService) UnlinkBlocksTx(ctx context.Context, tx dbx.DBTX, userID string, blockIDs []string) error {
	if len(blockIDs) == 0 {
		return nil
	}
	if _, err := s.repomanager.Users(tx).UnlinkBlocks(ctx, userID, blockIDs); err != nil {
		return fmt.Errorf("unlink blocks: %w", err)
	}
	return nil
}

// dummyHash is compared against when there is no stored hash, so unknown and
// known emails take the same bcrypt time.
func (s *AccountService) dummyHash() string {
	s.dummyOnce.Do(func() {
		if h, err := s.hasher.Hash("blockkeeper:no-such-user"); err == nil {
			s.dummy = h
		}
	})
	return s.dummy
}

func (s *AccountService) issue(sub string) (string, error) {
	tok, err := s.tokens.Issue(sub)
	if err != nil {
		return "", fmt.Errorf("%w: issue token", common.ErrorInternal)
	}
	return tok, nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email must be a non-empty address", common.ErrorValidation)
	}
	return nil
}

func validateCredentials(email, secret string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if secret == "" {
		return fmt.Errorf("%w: secret is required", common.ErrorValidation)
	}
	if len(secret) > maxSecretBytes {
		return fmt.Errorf("%w: secret must be at most %d bytes", common.ErrorValidation, maxSecretBytes)
	}
	return nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
