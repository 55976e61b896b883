package service

import (
	"context"
	"errors"
	"time"

	"github.com/comissoes-next/internal/cache"
	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenHours = 24

// JWTClaims 管理员 Token 载荷，TokenVersion 与库中不一致即视为已注销
type JWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// AdminIdentity 通过鉴权的管理员
type AdminIdentity struct {
	AdminID  uint
	Username string
	IsSuper  bool
}

// AuthService 管理员登录、Token 校验与注销
type AuthService struct {
	cfg       *config.JWTConfig
	adminRepo repository.AdminRepository
	now       func() time.Time
}

func NewAuthService(cfg *config.JWTConfig, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{cfg: cfg, adminRepo: adminRepo, now: time.Now}
}

// HashPassword bcrypt 摘要
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateJWT 签发 HS256 Token
func (s *AuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	hours := s.cfg.ExpireHours
	if hours <= 0 {
		hours = defaultTokenHours
	}
	issuedAt := s.now()
	expiresAt := issuedAt.Add(time.Duration(hours) * time.Hour)
	claims := JWTClaims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseAdminJWT 校验签名与有效期，只接受 HS256
func ParseAdminJWT(secret, tokenString string) (*JWTClaims, error) {
	if secret == "" {
		return nil, ErrInvalidToken
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &JWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate 解析 Token 并核对 Token 版本；优先读缓存快照，未命中回源数据库
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*AdminIdentity, error) {
	if s == nil {
		return nil, ErrInvalidToken
	}
	claims, err := ParseAdminJWT(s.cfg.SecretKey, tokenString)
	if err != nil {
		return nil, err
	}

	state, hit, cacheErr := cache.GetAdminAuthState(ctx, claims.AdminID)
	if cacheErr != nil {
		logger.Warnw("admin_auth_state_cache_read_failed", "admin_id", claims.AdminID, "error", cacheErr)
	}
	if !hit {
		admin, err := s.adminRepo.GetByID(claims.AdminID)
		if err != nil {
			return nil, err
		}
		if admin == nil {
			return nil, ErrInvalidToken
		}
		state = cache.NewAdminAuthState(admin)
		_ = cache.SetAdminAuthState(ctx, state)
	}
	if state.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenExpired
	}
	return &AdminIdentity{AdminID: state.AdminID, Username: state.Username, IsSuper: state.IsSuper}, nil
}

// Login 校验密码并签发 Token
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil || bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	loginAt := s.now()
	admin.LastLoginAt = &loginAt
	if err := s.adminRepo.TouchLastLogin(admin.ID, loginAt); err != nil {
		logger.Warnw("admin_touch_last_login_failed", "admin_id", admin.ID, "error", err)
	}
	_ = cache.SetAdminAuthState(ctx, cache.NewAdminAuthState(admin))
	return admin, token, expiresAt, nil
}

// Logout 递增 Token 版本，使该管理员所有已签发 Token 失效
func (s *AuthService) Logout(ctx context.Context, adminID uint) error {
	version, err := s.adminRepo.BumpTokenVersion(adminID)
	if err != nil {
		return err
	}
	if err := cache.DelAdminAuthState(ctx, adminID); err != nil {
		logger.Warnw("admin_auth_state_cache_evict_failed", "admin_id", adminID, "error", err)
	}
	logger.Infow("admin_tokens_revoked", "admin_id", adminID, "token_version", version)
	return nil
}
