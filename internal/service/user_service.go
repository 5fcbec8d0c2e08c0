package service

import (
	"context"
	"strconv"
	"time"

	"kindler/internal/config"
	"kindler/internal/middleware"
	"kindler/internal/models"
	"kindler/internal/repository"
	"kindler/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// AccessTokenTTL is the lifetime of access tokens.
	AccessTokenTTL = time.Hour
	// RefreshTokenTTL is the lifetime of refresh tokens.
	RefreshTokenTTL = 72 * time.Hour

	minAge = 18
)

// TokenPair carries a freshly minted access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Username  string
	Password  string
	Nickname  string
	BirthDate string // YYYY-MM-DD
	Gender    string
	Bio       string
	Location  string
}

// UpdateProfileInput is the payload for editing one's own profile. Empty
// fields are left unchanged.
type UpdateProfileInput struct {
	UserID   uint
	Nickname string
	Bio      string
	Location string
}

// UserService provides account, session and profile business logic.
type UserService struct {
	userRepo repository.UserRepository
	tokens   *TokenStore
	cfg      *config.Config
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, tokens *TokenStore, cfg *config.Config) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		cfg:      cfg,
	}
}

// Register validates the input and creates the account with a bcrypt
// password hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Nickname == "" {
		return nil, models.NewValidationError("Nickname is required")
	}
	if len(in.Nickname) > 50 {
		return nil, models.NewValidationError("Nickname too long (max 50 characters)")
	}

	birthDate, err := time.Parse("2006-01-02", in.BirthDate)
	if err != nil {
		return nil, models.NewValidationError("Birth date must be in YYYY-MM-DD format")
	}
	probe := models.User{BirthDate: birthDate}
	if probe.Age(time.Now()) < minAge {
		return nil, models.NewValidationError("You must be at least 18 years old")
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	user := &models.User{
		Username:  in.Username,
		Password:  string(hash),
		Nickname:  in.Nickname,
		BirthDate: birthDate,
		Gender:    in.Gender,
		Bio:       in.Bio,
		Location:  in.Location,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user registered", "username", user.Username)
	return user, nil
}

// Login verifies the credentials and mints a token pair. The refresh token
// JTI is registered in the token store for later verification.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, models.NewUnauthorizedError("Invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, models.NewUnauthorizedError("Invalid username or password")
	}

	pair, err := s.mintTokenPair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// refresh token is revoked so each one can be used at most once.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken, "refresh")
	if err != nil {
		return nil, err
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, models.NewUnauthorizedError("Invalid refresh token")
	}
	active, err := s.tokens.RefreshTokenExists(ctx, jti)
	if err != nil || !active {
		return nil, models.NewUnauthorizedError("Refresh token expired or revoked")
	}

	userID, err := subjectUserID(claims)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.RevokeRefreshToken(ctx, jti); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke rotated refresh token", "error", err)
	}

	return s.mintTokenPair(ctx, userID)
}

// Logout blacklists the presented access token for its remaining lifetime
// and revokes the refresh token if one is supplied.
func (s *UserService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := s.parseToken(accessToken, "access")
	if err != nil {
		return err
	}

	if jti, _ := claims["jti"].(string); jti != "" {
		if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
			ttl := time.Until(exp.Time)
			if err := s.tokens.BlacklistAccessToken(ctx, jti, ttl); err != nil {
				middleware.Logger.WarnContext(ctx, "failed to blacklist access token", "error", err)
			}
		}
	}

	if refreshToken != "" {
		if refreshClaims, err := s.parseToken(refreshToken, "refresh"); err == nil {
			if jti, _ := refreshClaims["jti"].(string); jti != "" {
				if err := s.tokens.RevokeRefreshToken(ctx, jti); err != nil {
					middleware.Logger.WarnContext(ctx, "failed to revoke refresh token", "error", err)
				}
			}
		}
	}

	return nil
}

// GetProfile returns the user with the given ID.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers returns a page of users.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// UpdateProfile applies the non-empty fields of in to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500

	if in.Nickname != "" {
		if len(in.Nickname) > 50 {
			return nil, models.NewValidationError("Nickname too long (max 50 characters)")
		}
		user.Nickname = in.Nickname
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.Location != "" {
		user.Location = in.Location
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) mintTokenPair(ctx context.Context, userID uint) (*TokenPair, error) {
	access, _, err := s.mintToken(userID, "access", AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshJTI, err := s.mintToken(userID, "refresh", RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.SaveRefreshToken(ctx, refreshJTI, RefreshTokenTTL); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to persist refresh token", "error", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) mintToken(userID uint, typ string, ttl time.Duration) (string, string, error) {
	jti := uuid.NewString()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": middleware.TokenIssuer,
		"aud": middleware.TokenAudience,
		"typ": typ,
		"jti": jti,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", models.NewStorageError(err)
	}
	return signed, jti, nil
}

func (s *UserService) parseToken(tokenString, expectedTyp string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.NewUnauthorizedError("Invalid signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithIssuer(middleware.TokenIssuer),
		jwt.WithAudience(middleware.TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}
	if typ, _ := claims["typ"].(string); typ != expectedTyp {
		return nil, models.NewUnauthorizedError("Invalid token type")
	}
	return claims, nil
}

func subjectUserID(claims jwt.MapClaims) (uint, error) {
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid token subject")
	}
	return uint(id), nil
}
