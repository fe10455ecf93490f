package model

type Attraction struct {
	DTO
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex" json:"slug"`
	Description *string   `gorm:"type:text" json:"description"`
	Address     string    `json:"address"`
	ImageURL    *string   `json:"imageUrl"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CityID      uint      `gorm:"not null;index" json:"cityId"`
	City        *City     `gorm:"foreignKey:CityID" json:"city,omitempty"`
	CategoryID  uint      `gorm:"not null;index" json:"categoryId"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Sectors     []Sector  `gorm:"foreignKey:AttractionID" json:"sectors,omitempty"`
}

type CreateAttractionInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=150"`
	Description *string `json:"description" validate:"omitempty"`
	Address     string  `json:"address" validate:"omitempty,max=255"`
	CityID      uint    `json:"cityId" validate:"required,gt=0"`
	CategoryID  uint    `json:"categoryId" validate:"required,gt=0"`
}

type UpdateAttractionInput struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=150"`
	Description *string `json:"description"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	CityID      *uint   `json:"cityId" validate:"omitempty,gt=0"`
	CategoryID  *uint   `json:"categoryId" validate:"omitempty,gt=0"`
	Active      *bool   `json:"active"`
}

type FilterAttraction struct {
	Pagination
	SearchKey  string `query:"searchKey"`
	CityID     uint   `query:"cityId"`
	CategoryID uint   `query:"categoryId"`
	Active     *bool  `query:"active"`
}

type Favorite struct {
	DTO
	UserID       uint        `gorm:"not null;uniqueIndex:idx_favorite_user_attraction" json:"userId"`
	AttractionID uint        `gorm:"not null;uniqueIndex:idx_favorite_user_attraction" json:"attractionId"`
	Attraction   *Attraction `gorm:"foreignKey:AttractionID" json:"attraction,omitempty"`
}

type FavoriteInput struct {
	AttractionID uint `json:"attractionId" validate:"required,gt=0"`
}
