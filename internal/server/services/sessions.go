package services

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dka-services/account-core/internal/common"
	"github.com/dka-services/account-core/internal/cryptox"
	"github.com/dka-services/account-core/internal/logging"
	"github.com/dka-services/account-core/internal/server/keys"
	"github.com/dka-services/account-core/internal/server/models"
	"github.com/dka-services/account-core/internal/server/repositories/repomanager"
)

// Claims is the sealed payload of a session token: the registered claim set
// plus the account profile view. Tokens are encrypted, not signed, so the
// profile travels confidentially.
type Claims struct {
	jwt.RegisteredClaims
	Profile *models.AccountView `json:"profile"`
}

// TokenPair is the result of a successful authorization.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access-token lifetime in seconds.
	ExpiresIn int64
}

// SessionService issues, verifies, and refreshes encrypted session tokens.
// Key material is read from disk on every call so a key rotation needs no
// process restart.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	keys        *keys.Provider
	logger      logging.Logger

	accessTTL      time.Duration
	refreshTTL     time.Duration
	accessIssuer   string
	accessSubject  string
	refreshIssuer  string
	refreshSubject string
}

// SessionParams carries the token-shape configuration of a SessionService.
type SessionParams struct {
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	AccessIssuer   string
	AccessSubject  string
	RefreshIssuer  string
	RefreshSubject string
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, kp *keys.Provider, p SessionParams, l logging.Logger) *SessionService {
	return &SessionService{
		db:             db,
		repomanager:    m,
		keys:           kp,
		logger:         l.With("module", "session_service"),
		accessTTL:      p.AccessTTL,
		refreshTTL:     p.RefreshTTL,
		accessIssuer:   p.AccessIssuer,
		accessSubject:  p.AccessSubject,
		refreshIssuer:  p.RefreshIssuer,
		refreshSubject: p.RefreshSubject,
	}
}

// Authorize checks a login/password pair and, on success, issues an
// access/refresh token pair sharing one jti. The refresh token's revocation
// record is persisted before the pair is returned.
func (s *SessionService) Authorize(ctx context.Context, login, password string) (*TokenPair, error) {
	if login == "" || password == "" {
		return nil, fmt.Errorf("login and password are required: %w", common.ErrorValidation)
	}

	cred, err := s.repomanager.Credentials(s.db).GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if !cryptox.VerifyPassword(cred.PasswordHash, password) {
		return nil, fmt.Errorf("password mismatch: %w", common.ErrorUnauthenticated)
	}
	if cred.Parent == nil {
		return nil, fmt.Errorf("credential has no owning account: %w", common.ErrorNotFound)
	}

	view, err := s.repomanager.Accounts(s.db).GetView(ctx, *cred.Parent)
	if err != nil {
		return nil, err
	}

	pub, err := s.keys.Public()
	if err != nil {
		s.logger.Error(ctx, "public key unavailable", "error", err.Error())
		return nil, fmt.Errorf("public key unavailable: %w", common.ErrorInternal)
	}

	now := time.Now().UTC()
	jti := models.NewID()

	access, err := s.seal(pub, view, jti, s.accessIssuer, s.accessSubject, now, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("seal access token: %w", common.ErrorAborted)
	}
	refresh, err := s.seal(pub, view, jti, s.refreshIssuer, s.refreshSubject, now, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("seal refresh token: %w", common.ErrorAborted)
	}

	if err := s.repomanager.Sessions(s.db).Create(ctx, &models.SessionToken{
		JTI:           jti,
		AccountID:     view.ID,
		Issuer:        s.refreshIssuer,
		Subject:       s.refreshSubject,
		ExpiresAtUnix: now.Add(s.refreshTTL).Unix(),
		Status:        models.TokenActive,
		CreatedAt:     now,
	}); err != nil {
		return nil, fmt.Errorf("persist revocation record: %w", common.ErrorAborted)
	}

	s.logger.Info(ctx, "session authorized", "account_id", view.ID, "jti", jti)
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Verify decrypts an access token and validates its claims against the
// access issuer/subject. On success the embedded profile claims come back.
func (s *SessionService) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.open(ctx, token, s.accessIssuer, s.accessSubject)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a fresh access token. The refresh
// token itself is returned unchanged; rotation is not performed. The jti's
// revocation record must exist and still be active, and the profile is
// re-read from the store rather than taken from the old claims.
func (s *SessionService) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	claims, err := s.open(ctx, token, s.refreshIssuer, s.refreshSubject)
	if err != nil {
		return nil, err
	}
	jti := claims.ID

	record, err := s.repomanager.Sessions(s.db).Find(ctx, jti)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("no revocation record for jti %s: %w", jti, common.ErrorSessionMissing)
		}
		return nil, err
	}
	if record.Status == models.TokenRevoked {
		return nil, fmt.Errorf("session %s revoked: %w", jti, common.ErrorTokenRevoked)
	}

	view, err := s.repomanager.Accounts(s.db).GetView(ctx, record.AccountID)
	if err != nil {
		return nil, err
	}

	pub, err := s.keys.Public()
	if err != nil {
		s.logger.Error(ctx, "public key unavailable", "error", err.Error())
		return nil, fmt.Errorf("public key unavailable: %w", common.ErrorInternal)
	}

	now := time.Now().UTC()
	access, err := s.seal(pub, view, jti, s.accessIssuer, s.accessSubject, now, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("seal access token: %w", common.ErrorAborted)
	}

	s.logger.Info(ctx, "session refreshed", "account_id", view.ID, "jti", jti)
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: token,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Revoke flips a jti's revocation record to revoked. Revoking an unknown or
// already-revoked jti reports not found.
func (s *SessionService) Revoke(ctx context.Context, jti string) error {
	if err := validateJTI(jti); err != nil {
		return err
	}
	revoked, err := s.repomanager.Sessions(s.db).Revoke(ctx, jti)
	if err != nil {
		return err
	}
	if !revoked {
		return fmt.Errorf("no active session %s: %w", jti, common.ErrorNotFound)
	}
	s.logger.Info(ctx, "session revoked", "jti", jti)
	return nil
}

func (s *SessionService) seal(pub *rsa.PublicKey, view *models.AccountView, jti, issuer, subject string, now time.Time, ttl time.Duration) (string, error) {
	return cryptox.Seal(pub, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{view.ID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Profile: view,
	})
}

// open decrypts a token and validates its claim set against the expected
// issuer and subject, classifying failures into token-error kinds.
func (s *SessionService) open(ctx context.Context, token, issuer, subject string) (*Claims, error) {
	priv, err := s.keys.Private()
	if err != nil {
		s.logger.Error(ctx, "private key unavailable", "error", err.Error())
		return nil, fmt.Errorf("private key unavailable: %w", common.ErrorInternal)
	}

	claims := &Claims{}
	if err := cryptox.Open(priv, token, claims); err != nil {
		return nil, fmt.Errorf("decrypt token: %w", common.ErrorTokenMalformed)
	}

	validator := jwt.NewValidator(
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
	)
	if err := validator.Validate(claims); err != nil {
		return nil, classifyClaimError(err)
	}
	return claims, nil
}

// classifyClaimError resolves a claim-validation failure to one of the
// distinct token-error kinds.
func classifyClaimError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%v: %w", err, common.ErrorTokenExpired)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%v: %w", err, common.ErrorTokenIssuerMismatch)
	case errors.Is(err, jwt.ErrTokenInvalidSubject):
		return fmt.Errorf("%v: %w", err, common.ErrorTokenSubjectMismatch)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%v: %w", err, common.ErrorTokenMalformed)
	default:
		return fmt.Errorf("%v: %w", err, common.ErrorTokenUnclassified)
	}
}
