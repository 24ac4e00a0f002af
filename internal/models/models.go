package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey"  json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	Name         string    `gorm:"not null"              json:"name"`
	Role         string    `gorm:"not null"              json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// RefreshToken stores only the SHA-256 digest of the value handed to the
// client. Deleting a User removes its tokens via the FK cascade.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"                                          json:"id"`
	TokenHash string    `gorm:"uniqueIndex;not null"                                json:"-"`
	UserID    string    `gorm:"type:uuid;index;not null"                            json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"       json:"-"`
	ExpiresAt int64     `gorm:"not null"                                            json:"expires_at"`
	Revoked   bool      `gorm:"default:false"                                       json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey"       json:"id"`
	Name string `gorm:"unique;not null"  json:"name"`
	Slug string `gorm:"unique;not null"  json:"slug"`
}

type Project struct {
	ID          uint      `gorm:"primaryKey"                                        json:"id"`
	Title       string    `gorm:"not null"                                          json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null"                              json:"slug"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CategoryID  *uint     `gorm:"index"                                             json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Featured    bool      `gorm:"default:false"                                     json:"featured"`
	SortOrder   int       `gorm:"default:0"                                         json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Testimonial struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	Author    string    `gorm:"not null"       json:"author"`
	Company   string    `json:"company"`
	Quote     string    `gorm:"not null"       json:"quote"`
	Published bool      `gorm:"default:false"  json:"published"`
	CreatedAt time.Time `json:"created_at"`
}

type ContactMessage struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	Name      string    `gorm:"not null"       json:"name"`
	Email     string    `gorm:"not null"       json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `gorm:"not null"       json:"body"`
	Read      bool      `gorm:"default:false"  json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func All() []any {
	return []any{&User{}, &RefreshToken{}, &Category{}, &Project{}, &Testimonial{}, &ContactMessage{}}
}
