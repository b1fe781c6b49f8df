package model

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type Brawler struct {
	ID          uint      `gorm:"primaryKey" yaml:"-"`
	Username    string    `gorm:"not null;uniqueIndex" yaml:"username"`
	Password    string    `gorm:"not null" yaml:"password"`
	DisplayName string    `gorm:"not null" yaml:"display_name"`
	AvatarURL   *string   `yaml:"avatar_url,omitempty"`
	CreatedAt   time.Time `yaml:"-"`
	UpdatedAt   time.Time `yaml:"-"`
}

type BrawlerDTO struct {
	ID          uint   `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

func (b *Brawler) CheckPassword(password string) bool {
	if b == nil || b.Password == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(b.Password), []byte(password)) == nil
}

func (b *Brawler) SetPassword(password string) error {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}

	b.Password = string(h)

	return nil
}

// HashedPassword reports whether the password field already holds a bcrypt hash.
func (b *Brawler) HashedPassword() bool {
	if b == nil {
		return false
	}

	_, err := bcrypt.Cost([]byte(b.Password))

	return err == nil
}

func (b *Brawler) ToDTO(withUsername bool) *BrawlerDTO {
	if b == nil {
		return nil
	}

	dto := &BrawlerDTO{
		ID:          b.ID,
		DisplayName: b.DisplayName,
	}

	if withUsername {
		dto.Username = b.Username
	}

	if b.AvatarURL != nil {
		dto.AvatarURL = *b.AvatarURL
	}

	return dto
}

func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
