package model

type Department struct {
	DTO
	Name   string `gorm:"uniqueIndex;not null" json:"name"`
	Cities []City `gorm:"foreignKey:DepartmentID" json:"cities,omitempty"`
}

type City struct {
	DTO
	Name         string      `gorm:"not null" json:"name"`
	DepartmentID uint        `gorm:"not null;index" json:"departmentId"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

type DepartmentInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type CityInput struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	DepartmentID uint   `json:"departmentId" validate:"required,gt=0"`
}

type FilterCity struct {
	Pagination
	DepartmentID uint   `query:"departmentId"`
	SearchKey    string `query:"searchKey"`
}
