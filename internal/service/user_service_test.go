package service

import (
	"context"
	"testing"
	"time"

	"kindler/internal/config"
	"kindler/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret-key-12345678901234567890123456789012",
		Env:       "test",
	}
}

func testTokenStore(t *testing.T) *TokenStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTokenStore(rdb)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:  "test_user",
		Password:  "SecurePass12!@",
		Nickname:  "Tess",
		BirthDate: "1994-04-12",
		Gender:    "female",
		Location:  "london",
	}
}

func TestUserServiceRegister(t *testing.T) {
	t.Run("Success Hashes Password", func(t *testing.T) {
		users := noopUserRepo()
		users.getByUsernameFn = func(context.Context, string) (*models.User, error) { return nil, nil }
		var created *models.User
		users.createFn = func(_ context.Context, u *models.User) error {
			u.ID = 1
			created = u
			return nil
		}

		svc := NewUserService(users, testTokenStore(t), testConfig())
		user, err := svc.Register(context.Background(), validRegisterInput())
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, uint(1), user.ID)
		assert.NotEqual(t, "SecurePass12!@", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("SecurePass12!@")))
	})

	t.Run("Weak Password Rejected", func(t *testing.T) {
		svc := NewUserService(noopUserRepo(), testTokenStore(t), testConfig())
		in := validRegisterInput()
		in.Password = "short"
		_, err := svc.Register(context.Background(), in)
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})

	t.Run("Bad Birth Date Rejected", func(t *testing.T) {
		svc := NewUserService(noopUserRepo(), testTokenStore(t), testConfig())
		in := validRegisterInput()
		in.BirthDate = "12/04/1994"
		_, err := svc.Register(context.Background(), in)
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})

	t.Run("Under Age Rejected", func(t *testing.T) {
		svc := NewUserService(noopUserRepo(), testTokenStore(t), testConfig())
		in := validRegisterInput()
		in.BirthDate = time.Now().AddDate(-17, 0, 0).Format("2006-01-02")
		_, err := svc.Register(context.Background(), in)
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})

	t.Run("Taken Username Rejected", func(t *testing.T) {
		users := noopUserRepo()
		users.getByUsernameFn = func(context.Context, string) (*models.User, error) {
			return &models.User{ID: 9, Username: "test_user"}, nil
		}
		svc := NewUserService(users, testTokenStore(t), testConfig())
		_, err := svc.Register(context.Background(), validRegisterInput())
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})
}

func loginReadyUserRepo(t *testing.T, password string) *userRepoStub {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	users := noopUserRepo()
	users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if username != "test_user" {
			return nil, nil
		}
		return &models.User{ID: 5, Username: "test_user", Password: string(hash)}, nil
	}
	return users
}

func TestUserServiceLogin(t *testing.T) {
	cfg := testConfig()

	t.Run("Success Mints Token Pair", func(t *testing.T) {
		svc := NewUserService(loginReadyUserRepo(t, "SecurePass12!@"), testTokenStore(t), cfg)
		pair, user, err := svc.Login(context.Background(), "test_user", "SecurePass12!@")
		require.NoError(t, err)
		assert.Equal(t, uint(5), user.ID)

		parse := func(raw string) jwt.MapClaims {
			token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
				return []byte(cfg.JWTSecret), nil
			})
			require.NoError(t, err)
			return token.Claims.(jwt.MapClaims)
		}

		access := parse(pair.AccessToken)
		assert.Equal(t, "access", access["typ"])
		assert.Equal(t, "5", access["sub"])
		assert.NotEmpty(t, access["jti"])

		refresh := parse(pair.RefreshToken)
		assert.Equal(t, "refresh", refresh["typ"])
	})

	t.Run("Wrong Password", func(t *testing.T) {
		svc := NewUserService(loginReadyUserRepo(t, "SecurePass12!@"), testTokenStore(t), cfg)
		_, _, err := svc.Login(context.Background(), "test_user", "WrongPass12!@")
		assert.True(t, models.IsCode(err, models.CodeUnauthorized))
	})

	t.Run("Unknown User", func(t *testing.T) {
		svc := NewUserService(loginReadyUserRepo(t, "SecurePass12!@"), testTokenStore(t), cfg)
		_, _, err := svc.Login(context.Background(), "ghost", "SecurePass12!@")
		assert.True(t, models.IsCode(err, models.CodeUnauthorized))
	})
}

func TestUserServiceRefreshRotation(t *testing.T) {
	store := testTokenStore(t)
	svc := NewUserService(loginReadyUserRepo(t, "SecurePass12!@"), store, testConfig())
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "test_user", "SecurePass12!@")
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, fresh.RefreshToken)

	// The spent refresh token is single-use
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))

	// The rotated one still works
	_, err = svc.Refresh(ctx, fresh.RefreshToken)
	assert.NoError(t, err)
}

func TestUserServiceRefreshRejectsAccessToken(t *testing.T) {
	svc := NewUserService(loginReadyUserRepo(t, "SecurePass12!@"), testTokenStore(t), testConfig())
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "test_user", "SecurePass12!@")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))
}

func TestUserServiceLogout(t *testing.T) {
	store := testTokenStore(t)
	cfg := testConfig()
	svc := NewUserService(loginReadyUserRepo(t, "SecurePass12!@"), store, cfg)
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "test_user", "SecurePass12!@")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))

	// The access token JTI is blacklisted
	token, err := jwt.Parse(pair.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	jti := token.Claims.(jwt.MapClaims)["jti"].(string)

	revoked, err := store.IsAccessTokenRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	// The refresh token no longer refreshes
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))
}

func TestUserServiceUpdateProfile(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Nickname: "Old", Bio: "old bio", Location: "york"}, nil
	}
	var saved *models.User
	users.updateFn = func(_ context.Context, u *models.User) error {
		saved = u
		return nil
	}

	svc := NewUserService(users, testTokenStore(t), testConfig())

	user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:   3,
		Nickname: "New",
		Location: "leeds",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "New", user.Nickname)
	assert.Equal(t, "leeds", user.Location)
	// Untouched fields keep their values
	assert.Equal(t, "old bio", user.Bio)
}
