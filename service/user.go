package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tourism_marketplace/constants"
	"tourism_marketplace/helper"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

// WelcomeMailer greets new accounts.
type WelcomeMailer interface {
	SendWelcome(to, name string) error
}

type UserService struct {
	db      *gorm.DB
	tokens  *helper.TokenIssuer
	welcome WelcomeMailer
}

func NewUserService(db *gorm.DB, tokens *helper.TokenIssuer) *UserService {
	return &UserService{db: db, tokens: tokens}
}

func (s *UserService) SetWelcomeMailer(m WelcomeMailer) {
	s.welcome = m
}

// Register creates a CUSTOMER account.
func (s *UserService) Register(ctx context.Context, input model.RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !helper.ValidEmail(email) {
		return nil, BadRequest("invalid email")
	}

	var user model.User
	if err := copier.Copy(&user, &input); err != nil {
		return nil, Internal("copy register input", err)
	}
	user.Email = email
	user.Role = constants.ROLE_CUSTOMER
	user.Active = true

	hash, err := helper.HashPassword(input.Password)
	if err != nil {
		return nil, Internal("hash password", err)
	}
	user.Password = hash

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, dbError(err, "user")
	}
	if count > 0 {
		return nil, Conflict(constants.EMAIL_ALREADY_USED)
	}

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict(constants.EMAIL_ALREADY_USED)
		}
		return nil, dbError(err, "user")
	}
	logrus.WithField("user_id", user.ID).Info("user registered")

	if s.welcome != nil {
		go func(to, name string) {
			if err := s.welcome.SendWelcome(to, name); err != nil {
				logrus.WithError(err).WithField("to", to).Warn("welcome mail failed")
			}
		}(user.Email, user.FullName)
	}
	return &user, nil
}

func (s *UserService) Login(ctx context.Context, input model.LoginInput) (*model.TokenData, *model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, Unauthorized(constants.INVALID_CREDENTIALS)
	}
	if err != nil {
		return nil, nil, dbError(err, "user")
	}
	if !helper.CheckPasswordHash(input.Password, user.Password) {
		return nil, nil, Unauthorized(constants.INVALID_CREDENTIALS)
	}
	if !user.Active {
		return nil, nil, Forbidden(constants.ACCOUNT_NOT_ACTIVE)
	}

	tokens, err := s.issue(ctx, &user)
	if err != nil {
		return nil, nil, err
	}
	return tokens, &user, nil
}

// Refresh rotates the token pair. Only the latest refresh token is accepted.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*model.TokenData, error) {
	principal, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, Unauthorized(constants.INVALID_TOKEN)
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, principal.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Unauthorized(constants.INVALID_TOKEN)
		}
		return nil, dbError(err, "user")
	}
	if user.RefreshToken != refreshToken {
		return nil, Unauthorized(constants.INVALID_TOKEN)
	}
	if !user.Active {
		return nil, Forbidden(constants.ACCOUNT_NOT_ACTIVE)
	}
	return s.issue(ctx, &user)
}

func (s *UserService) issue(ctx context.Context, user *model.User) (*model.TokenData, error) {
	principal := model.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}
	access, err := s.tokens.GenerateAccessToken(principal)
	if err != nil {
		return nil, Internal("sign access token", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(principal)
	if err != nil {
		return nil, Internal("sign refresh token", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("refresh_token", refresh).Error; err != nil {
		return nil, dbError(err, "user")
	}
	return &model.TokenData{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, dbError(err, "user")
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, filter model.FilterUser) (*model.ResponseCustom, error) {
	query := s.db.WithContext(ctx).Model(&model.User{})
	if filter.SearchKey != "" {
		like := "%" + strings.ToLower(filter.SearchKey) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", strings.ToUpper(filter.Role))
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, dbError(err, "users")
	}
	var rows []model.User
	if err := utils.ApplyPagination(query.Order("id asc"), filter.Limit, filter.Page).Find(&rows).Error; err != nil {
		return nil, dbError(err, "users")
	}
	return &model.ResponseCustom{Rows: rows, Limit: filter.Limit, Page: filter.Page, TotalCount: total}, nil
}

func (s *UserService) SetActive(ctx context.Context, id uint, active bool) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("active", active).Error; err != nil {
		return nil, dbError(err, "user")
	}
	user.Active = active
	return user, nil
}
