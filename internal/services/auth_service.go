package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"tienda/internal/database"
	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/internal/validation"
	pkgerrors "tienda/pkg/errors"
	"tienda/pkg/logger"
)

const invalidCredentials = "Correo o contraseña incorrectos"

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name            string `form:"nombre" validate:"required,person_name"`
	Email           string `form:"correo" validate:"required,store_email"`
	Phone           string `form:"telefono" validate:"required,bo_phone"`
	Password        string `form:"password" validate:"required,strong_password"`
	ConfirmPassword string `form:"confirm_password" validate:"eqfield=Password"`
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string `form:"correo" validate:"required,store_email"`
	Password string `form:"password" validate:"required"`
}

// sessionClaims is the signed payload of the session cookie.
type sessionClaims struct {
	UserID      uint   `json:"uid,omitempty"`
	Name        string `json:"name,omitempty"`
	Role        string `json:"role,omitempty"`
	SessionID   string `json:"sid,omitempty"`
	LastOrderID uint   `json:"last_order,omitempty"`
	jwt.StandardClaims
}

// CartMerger folds a guest cart into a user's cart.
type CartMerger interface {
	MergeGuestCart(ctx context.Context, sessionID string, userID uint) (MergeResult, error)
}

// AuthService handles registration, login and the session token.
type AuthService struct {
	userRepo  repositories.UserRepository
	carts     CartMerger
	validate  *validation.Validator
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *logger.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, carts CartMerger, validate *validation.Validator, jwtSecret string, tokenTTL time.Duration, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthService{
		userRepo:  userRepo,
		carts:     carts,
		validate:  validate,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// Register creates a customer account, migrates the guest cart and returns
// the authenticated actor.
func (s *AuthService) Register(ctx context.Context, actor models.Actor, in RegisterInput) (models.Actor, error) {
	in.Name = validation.NormalizeName(in.Name)
	in.Email = validation.NormalizeEmail(in.Email)
	in.Phone = validation.NormalizePhone(in.Phone)
	if err := s.validate.Struct(in); err != nil {
		return actor, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return actor, pkgerrors.New(pkgerrors.CodeConflict, "Ya existe una cuenta con este correo electrónico")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return actor, classify(err, "")
	}

	hash, err := database.HashPassword(in.Password)
	if err != nil {
		return actor, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Role:         models.RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return actor, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Ya existe una cuenta con este correo electrónico")
		}
		return actor, classify(err, "")
	}

	s.log.Info().Uint("user_id", user.ID).Msg("user registered")
	return s.signIn(ctx, actor, user)
}

// Login checks credentials, migrates the guest cart and returns the
// authenticated actor. Any credential mismatch yields the same message.
func (s *AuthService) Login(ctx context.Context, actor models.Actor, in LoginInput) (models.Actor, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return actor, err
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return actor, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentials)
		}
		return actor, classify(err, "")
	}
	if !database.CheckPassword(in.Password, user.PasswordHash) {
		return actor, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentials)
	}

	return s.signIn(ctx, actor, user)
}

func (s *AuthService) signIn(ctx context.Context, actor models.Actor, user *models.User) (models.Actor, error) {
	role, err := models.ParseRole(string(user.Role))
	if err != nil {
		return actor, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "invalid stored role")
	}

	if actor.SessionID != "" && s.carts != nil {
		res, err := s.carts.MergeGuestCart(ctx, actor.SessionID, user.ID)
		if err != nil {
			return actor, err
		}
		if res.Merged+res.Reassigned > 0 {
			s.log.Info().Uint("user_id", user.ID).Int("merged", res.Merged).Int("reassigned", res.Reassigned).Msg("guest cart migrated")
		}
	}

	return models.Actor{
		UserID:      user.ID,
		Name:        user.Name,
		Role:        role,
		LastOrderID: actor.LastOrderID,
	}, nil
}

// GetUser loads the account behind an authenticated actor.
func (s *AuthService) GetUser(ctx context.Context, actor models.Actor) (*models.User, error) {
	if !actor.IsAuthenticated() {
		return nil, nil
	}
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, classify(err, "Usuario no encontrado")
	}
	return user, nil
}

// EnsureGuestSession gives a guest a session id when it has none and
// reports whether the actor changed.
func (s *AuthService) EnsureGuestSession(actor models.Actor) (models.Actor, bool) {
	if actor.IsAuthenticated() || actor.SessionID != "" {
		return actor, false
	}
	actor.SessionID = uuid.New().String()
	return actor, true
}

// IssueToken signs actor into a session token.
func (s *AuthService) IssueToken(actor models.Actor) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID:      actor.UserID,
		Name:        actor.Name,
		Role:        string(actor.Role),
		SessionID:   actor.SessionID,
		LastOrderID: actor.LastOrderID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// ParseToken validates a session token and returns the actor it carries.
func (s *AuthService) ParseToken(tokenString string) (models.Actor, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return models.Actor{}, fmt.Errorf("invalid token")
	}

	actor := models.Actor{
		UserID:      claims.UserID,
		Name:        claims.Name,
		SessionID:   claims.SessionID,
		LastOrderID: claims.LastOrderID,
	}
	if actor.UserID != 0 {
		role, err := models.ParseRole(claims.Role)
		if err != nil {
			return models.Actor{}, fmt.Errorf("invalid token: %w", err)
		}
		actor.Role = role
	}
	return actor, nil
}
