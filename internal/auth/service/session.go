package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/siteadmin/internal/auth/domain"
	"github.com/aussiebroadwan/siteadmin/pkg/cryptox"
	"github.com/aussiebroadwan/siteadmin/pkg/jwtx"
	"github.com/aussiebroadwan/siteadmin/pkg/kv"
	"github.com/aussiebroadwan/siteadmin/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// RefreshKey is where the current refresh token for jti is stored.
func RefreshKey(jti string) string { return "refresh:" + jti }

// LoginRequest is one password login. IP doubles as the lockout identity.
type LoginRequest struct {
	Password     string
	TwoFACode    string
	CaptchaToken string
	Honeypot     string
	IP           string
	UserAgent    string
}

// SessionService issues and rotates admin sessions.
type SessionService struct {
	AccessCodec  *jwtx.HS256Codec
	RefreshCodec *jwtx.HS256Codec

	Subject    string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Credentials CredentialChain
	Attempts    *AttemptTracker
	Audit       AuditRecorder

	// TOTPSecret enables the second factor. Empty means twofa_code must be
	// empty too.
	TOTPSecret string
	// CaptchaSecret, when set, must equal the submitted captcha token.
	CaptchaSecret string

	KV      kv.Store
	Timeout time.Duration
	Now     func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SessionService) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// Login runs the password grant. Every path after the lockout check writes
// exactly one audit row.
func (s *SessionService) Login(ctx context.Context, req LoginRequest) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx).With(slog.String("ip", req.IP))

	blocked, err := s.Attempts.IsBlocked(ctx, req.IP)
	if err != nil {
		l.Error("attempt tracker unavailable", "err", err)
		return domain.TokenPair{}, err
	}
	if blocked {
		// No credential check, so the response cannot leak whether the
		// password was right.
		s.audit(ctx, req, false)
		l.Warn("login rejected: identity locked out")
		return domain.TokenPair{}, ErrTooManyAttempts
	}

	if !s.passesAntiAutomation(req) {
		s.audit(ctx, req, false)
		if err := s.Attempts.Record(ctx, req.IP, false); err != nil {
			l.Error("attempt tracker unavailable", "err", err)
			return domain.TokenPair{}, err
		}
		l.Warn("login rejected: anti-automation check failed")
		return domain.TokenPair{}, ErrValidationFailed
	}

	hash, source, err := s.Credentials.Resolve(ctx, s.Subject)
	if err != nil {
		s.audit(ctx, req, false)
		l.Error("admin credential unavailable", "err", err, "source", source)
		return domain.TokenPair{}, err
	}

	// Evaluate both factors unconditionally so timing does not reveal which
	// one failed.
	passwordOK := cryptox.VerifyPassword(req.Password, hash)
	secondOK := s.secondFactorOK(req.TwoFACode)
	valid := passwordOK && secondOK

	s.audit(ctx, req, valid)
	if err := s.Attempts.Record(ctx, req.IP, valid); err != nil {
		l.Error("attempt tracker unavailable", "err", err)
		return domain.TokenPair{}, err
	}

	if !valid {
		l.Info("login failed", "source", source)
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx)
	if err != nil {
		l.Error("issue session", "err", err)
		return domain.TokenPair{}, err
	}

	l.Info("login succeeded", "source", source, "jti", pair.JTI)
	return pair, nil
}

// Refresh rotates a refresh token. The stored record is consumed atomically,
// so each refresh token works at most once.
func (s *SessionService) Refresh(ctx context.Context, token string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	if token == "" {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	claims, err := s.RefreshCodec.Verify(token)
	if errors.Is(err, jwtx.ErrNoSecret) {
		return domain.TokenPair{}, fmt.Errorf("%w: refresh secret", ErrConfiguration)
	}
	if err != nil {
		l.Info("refresh token rejected", "err", err)
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	if err := claims.ValidateType(jwtx.TypeRefresh); err != nil || claims.ID == "" || claims.Subject != s.Subject {
		l.Info("refresh token rejected", "type", claims.Type)
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	kctx, cancel := s.bounded(ctx)
	stored, err := s.KV.GetDel(kctx, RefreshKey(claims.ID))
	cancel()
	if errors.Is(err, kv.ErrNotFound) {
		l.Warn("refresh token reused or revoked", "jti", claims.ID)
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	if err != nil {
		l.Error("refresh store unavailable", "err", err)
		return domain.TokenPair{}, fmt.Errorf("%w: consume refresh record: %v", ErrStoreUnavailable, err)
	}
	if !cryptox.Equal(stored, token) {
		l.Warn("refresh token does not match stored record", "jti", claims.ID)
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	pair, err := s.issuePair(ctx)
	if err != nil {
		return domain.TokenPair{}, err
	}
	l.Info("session refreshed", "old_jti", claims.ID, "jti", pair.JTI)
	return pair, nil
}

// Revoke drops the refresh record for jti. Revoking an unknown jti is not an
// error.
func (s *SessionService) Revoke(ctx context.Context, jti string) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.KV.Delete(ctx, RefreshKey(jti)); err != nil {
		return fmt.Errorf("%w: revoke: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SessionService) issuePair(ctx context.Context) (domain.TokenPair, error) {
	jti := jwtx.NewJTI()

	access, err := s.AccessCodec.Issue(jwtx.NewClaims(s.Subject, jti, jwtx.TypeAccess), s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, mapIssueError(err)
	}
	refresh, err := s.RefreshCodec.Issue(jwtx.NewClaims(s.Subject, jti, jwtx.TypeRefresh), s.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, mapIssueError(err)
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()
	if err := s.KV.Set(ctx, RefreshKey(jti), refresh, s.RefreshTTL); err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: store refresh record: %v", ErrStoreUnavailable, err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		JTI:          jti,
		ExpiresIn:    int64(s.AccessTTL / time.Second),
	}, nil
}

func mapIssueError(err error) error {
	if errors.Is(err, jwtx.ErrNoSecret) {
		return fmt.Errorf("%w: signing secret", ErrConfiguration)
	}
	return err
}

func (s *SessionService) passesAntiAutomation(req LoginRequest) bool {
	ok := req.Honeypot == ""
	if s.CaptchaSecret != "" {
		ok = cryptox.Equal(req.CaptchaToken, s.CaptchaSecret) && ok
	}
	return ok
}

func (s *SessionService) secondFactorOK(code string) bool {
	if s.TOTPSecret == "" {
		return code == ""
	}
	valid, err := totp.ValidateCustom(code, s.TOTPSecret, s.now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && valid
}

// audit hands the attempt to the sink. Failures are logged and never change
// the outcome of the login.
func (s *SessionService) audit(ctx context.Context, req LoginRequest, success bool) {
	if s.Audit == nil {
		return
	}
	err := s.Audit.Record(ctx, domain.LoginAttempt{
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
		Success:   success,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		slogx.FromContext(ctx).Warn("login audit write failed", "err", err, "success", success)
	}
}
