package model

type User struct {
	DTO
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	Password     string  `gorm:"not null" json:"-"`
	FullName     string  `gorm:"not null" json:"fullName"`
	Phone        *string `json:"phone"`
	Role         string  `gorm:"not null;default:'CUSTOMER'" json:"role"`
	Active       bool    `gorm:"not null;default:true" json:"active"`
	RefreshToken string  `json:"-"`
}

type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	FullName string  `json:"fullName" validate:"required,min=2,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,min=6,max=20"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ActiveUserInput struct {
	Active *bool `json:"active" validate:"required"`
}

type FilterUser struct {
	Pagination
	SearchKey string `query:"searchKey"`
	Role      string `query:"role"`
	Active    *bool  `query:"active"`
}
