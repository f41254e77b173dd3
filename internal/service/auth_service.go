package service

import (
	"errors"
	"log"
	"strings"
	"time"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
	"ridelink/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ridelink/internal/util"
)

const tokenTTL = 7 * 24 * time.Hour

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	Register(name, email, password string) (*model.User, string, error)
	Login(email, password string) (*model.User, string, error)
	GetMe(userID string) (*model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

func (s *authService) Register(name, email, password string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" {
		return nil, "", apperr.InvalidInput("name and email are required")
	}
	if len(password) < 8 {
		return nil, "", apperr.InvalidInput("password must be at least 8 characters")
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, "", apperr.InvalidInput("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Internal("failed to hash password", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", apperr.Internal("failed to create user", err)
	}

	token, err := util.GenerateToken(user.ID, user.Email, s.jwtSecret, tokenTTL)
	if err != nil {
		return nil, "", apperr.Internal("failed to generate token", err)
	}

	return user, token, nil
}

func (s *authService) Login(email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", apperr.Internal("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	// Login still succeeds when this fails; last_login_at is best-effort
	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		log.Printf("Failed to update last login for user %s: %v", user.ID, err)
	}

	token, err := util.GenerateToken(user.ID, user.Email, s.jwtSecret, tokenTTL)
	if err != nil {
		return nil, "", apperr.Internal("failed to generate token", err)
	}

	return user, token, nil
}

func (s *authService) GetMe(userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}
