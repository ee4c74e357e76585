package identity

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Account codes skip ambiguous characters so partners can read them
// aloud over support calls
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength          = 8
	codeGenerationTries = 5
	minPasswordLength   = 6
)

// AuthService handles registration and authentication
type AuthService struct {
	accountRepo  account.Repository
	settingsRepo platform.SettingsRepository
	jwtService   *auth.JWTService
	hasher       *auth.PasswordHasher
	logger       *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	accountRepo account.Repository,
	settingsRepo platform.SettingsRepository,
	jwtService *auth.JWTService,
	hasher *auth.PasswordHasher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		accountRepo:  accountRepo,
		settingsRepo: settingsRepo,
		jwtService:   jwtService,
		hasher:       hasher,
		logger:       logger,
	}
}

// Register creates a partner account under a referrer's code. The
// referrer's slot is claimed atomically before the account is created,
// so two registrations racing for the last slot cannot both win.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if len(input.Password) < minPasswordLength {
		return nil, shared.NewDomainError("WEAK_PASSWORD", "Password must have at least 6 characters")
	}

	referralCode := strings.ToUpper(strings.TrimSpace(input.ReferralCode))
	if referralCode == "" {
		return nil, shared.NewDomainError("REFERRAL_REQUIRED", "Registration requires a referral code")
	}

	referrer, err := s.accountRepo.FindByCode(ctx, referralCode)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("INVALID_REFERRAL", "Referral code does not exist")
		}
		return nil, err
	}
	if !referrer.IsActive() {
		return nil, shared.ErrAccountBlocked
	}

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.ConsumeReferralSlot(ctx, referrer.ID, settings.ReferralSlotsPerGrant); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	code, err := s.generateUniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	acc, err := account.NewAccount(input.Name, code, passwordHash, &referrer.ID)
	if err != nil {
		return nil, err
	}
	if input.Document != "" {
		acc.Document = onlyDigits(input.Document)
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		s.logger.Error("Account creation failed after slot was claimed",
			zap.String("referrer_id", referrer.ID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Partner registered",
		zap.String("account_id", acc.ID.String()),
		zap.String("referrer_id", referrer.ID.String()))

	tokens, err := s.issueTokens(acc)
	if err != nil {
		return nil, err
	}

	result := &AuthResult{
		Account: ToAccountResponse(acc, settings.ReferralSlotsPerGrant),
		Tokens:  tokens,
	}
	return result, nil
}

// Login authenticates an account by its code and password
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	acc, err := s.accountRepo.FindByCode(ctx, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid code or password")
		}
		return nil, err
	}

	if !acc.IsActive() {
		s.logger.Warn("Login attempt for blocked account", zap.String("account_id", acc.ID.String()))
		return nil, shared.ErrAccountBlocked
	}

	if err := s.hasher.Verify(acc.PasswordHash, input.Password); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("code", code))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid code or password")
	}

	tokens, err := s.issueTokens(acc)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account logged in", zap.String("account_id", acc.ID.String()))

	result := &AuthResult{
		Account: ToAccountResponse(acc, settings.ReferralSlotsPerGrant),
		Tokens:  tokens,
	}
	return result, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	accountID, err := claims.GetAccountUUID()
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	acc, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	if !acc.IsActive() {
		return nil, shared.ErrAccountBlocked
	}

	tokens, err := s.jwtService.RefreshTokenPair(refreshToken, acc.Code)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	return tokens, nil
}

func (s *AuthService) issueTokens(acc *account.Account) (*auth.TokenPair, error) {
	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		AccountID: acc.ID,
		Code:      acc.Code,
		Role:      string(acc.Role),
	})
	if err != nil {
		s.logger.Error("Token generation failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return tokens, nil
}

func (s *AuthService) generateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < codeGenerationTries; i++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", err
		}
		exists, err := s.accountRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("identity: could not generate a unique account code")
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("identity: failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
