package service

import (
	"errors"
	"strings"

	"flowcore"
	"flowcore/internal/api/handler/mapper"
	"flowcore/internal/api/handler/request"
	"flowcore/internal/api/handler/response"
	"flowcore/internal/api/models"
	"flowcore/internal/api/repo"
	"flowcore/pkg"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken          = errors.New("user with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

type userStore interface {
	FindByEmail(email string) (models.User, error)
	FindByID(id uint) (models.User, error)
	Create(user *models.User) error
	SetRefreshToken(id uint, token string) error
	ExistsByEmail(email string) (bool, error)
}

type UserService struct {
	userRepo   userStore
	config     flowcore.AppConfig
	logger     zerolog.Logger
	userMapper mapper.UserMapper
}

func NewUserService() *UserService {
	return &UserService{
		userRepo: repo.NewUserRepository(),
		config:   flowcore.GetConfig(),
		logger:   flowcore.Logger,
	}
}

func (slf *UserService) Register(registerDTO request.RegisterDTO) (*response.AuthResponseDTO, error) {
	email := strings.ToLower(strings.TrimSpace(registerDTO.Email))
	exists, err := slf.userRepo.ExistsByEmail(email)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error checking if user exists")
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registerDTO.Password), bcrypt.DefaultCost)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}

	user := models.User{
		Email:    email,
		Password: string(hashedPassword),
		Prenom:   registerDTO.Prenom,
		Nom:      registerDTO.Nom,
		Role:     models.RoleEditor,
		Actif:    true,
	}
	if err = slf.userRepo.Create(&user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		slf.logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	auth, err := slf.issueTokens(user)
	if err != nil {
		return nil, err
	}
	slf.logger.Info().Uint("userId", user.ID).Msg("User registered successfully")
	return auth, nil
}

func (slf *UserService) Login(loginDTO request.LoginDTO) (*response.AuthResponseDTO, error) {
	user, err := slf.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(loginDTO.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		slf.logger.Error().Err(err).Msg("Error finding user by email")
		return nil, err
	}

	if !user.Actif {
		return nil, ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginDTO.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	auth, err := slf.issueTokens(user)
	if err != nil {
		return nil, err
	}
	slf.logger.Info().Uint("userId", user.ID).Msg("User logged in successfully")
	return auth, nil
}

func (slf *UserService) GetByID(id uint) (response.UserResponseDTO, error) {
	user, err := slf.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.UserResponseDTO{}, ErrUserNotFound
		}
		slf.logger.Error().Err(err).Uint("userId", id).Msg("Error finding user by ID")
		return response.UserResponseDTO{}, err
	}
	return slf.userMapper.EntityToUserResponse(user), nil
}

// RefreshToken exchanges a refresh token for a new pair. The old refresh token
// stops working.
func (slf *UserService) RefreshToken(refreshToken string) (*response.AuthResponseDTO, error) {
	claims, err := pkg.ValidateRefreshToken(refreshToken, slf.config.JWTConfig.Secret)
	if err != nil {
		slf.logger.Debug().Err(err).Msg("Invalid refresh token")
		return nil, ErrInvalidRefreshToken
	}

	user, err := slf.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		slf.logger.Error().Err(err).Uint("userId", claims.UserID).Msg("Error finding user by ID")
		return nil, err
	}
	if !user.Actif {
		return nil, ErrAccountInactive
	}
	if user.RefreshToken != refreshToken {
		slf.logger.Warn().Uint("userId", user.ID).Msg("Refresh token mismatch")
		return nil, ErrInvalidRefreshToken
	}

	auth, err := slf.issueTokens(user)
	if err != nil {
		return nil, err
	}
	slf.logger.Info().Uint("userId", user.ID).Msg("Token refreshed successfully")
	return auth, nil
}

func (slf *UserService) Logout(userID uint) error {
	if err := slf.userRepo.SetRefreshToken(userID, ""); err != nil {
		slf.logger.Error().Err(err).Uint("userId", userID).Msg("Error clearing refresh token")
		return err
	}
	return nil
}

func (slf *UserService) issueTokens(user models.User) (*response.AuthResponseDTO, error) {
	jwtCfg := slf.config.JWTConfig
	token, err := pkg.GenerateToken(user.ID, user.Email, string(user.Role), jwtCfg.Secret, jwtCfg.Expiration)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error generating token")
		return nil, err
	}

	refreshToken, err := pkg.GenerateRefreshToken(user.ID, jwtCfg.Secret, jwtCfg.RefreshExpiration)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error generating refresh token")
		return nil, err
	}

	if err = slf.userRepo.SetRefreshToken(user.ID, refreshToken); err != nil {
		slf.logger.Error().Err(err).Msg("Error updating user with refresh token")
		return nil, err
	}
	user.RefreshToken = refreshToken

	return &response.AuthResponseDTO{
		Token:        token,
		RefreshToken: refreshToken,
		User:         slf.userMapper.EntityToUserResponse(user),
	}, nil
}
