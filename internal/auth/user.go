package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already used")
)

type User struct {
	ID           uint64    `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
}

// Users is the account storage the HTTP layer needs.
type Users interface {
	Create(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (User, error)
}

// GormUsers stores accounts in the users table.
type GormUsers struct {
	DB *gorm.DB
}

func (s *GormUsers) Create(ctx context.Context, u *User) error {
	err := s.DB.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}
	return err
}

func (s *GormUsers) FindByUsername(ctx context.Context, username string) (User, error) {
	var u User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}
