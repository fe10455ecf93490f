package service

import (
	"context"
	"strings"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"

	"tourism_marketplace/helper"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

// CatalogService manages departments, cities, categories and attractions.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Departments

func (s *CatalogService) ListDepartments(ctx context.Context, p model.Pagination) (*model.ResponseCustom, error) {
	var rows []model.Department
	return s.page(s.db.WithContext(ctx).Model(&model.Department{}).Order("name asc"), p, &rows)
}

func (s *CatalogService) GetDepartment(ctx context.Context, id uint) (*model.Department, error) {
	var department model.Department
	if err := s.db.WithContext(ctx).Preload("Cities").First(&department, id).Error; err != nil {
		return nil, dbError(err, "department")
	}
	return &department, nil
}

func (s *CatalogService) CreateDepartment(ctx context.Context, input model.DepartmentInput) (*model.Department, error) {
	department := model.Department{Name: strings.TrimSpace(input.Name)}
	if err := s.db.WithContext(ctx).Create(&department).Error; err != nil {
		return nil, dbError(err, "department")
	}
	return &department, nil
}

func (s *CatalogService) UpdateDepartment(ctx context.Context, id uint, input model.DepartmentInput) (*model.Department, error) {
	var department model.Department
	db := s.db.WithContext(ctx)
	if err := db.First(&department, id).Error; err != nil {
		return nil, dbError(err, "department")
	}
	department.Name = strings.TrimSpace(input.Name)
	if err := db.Save(&department).Error; err != nil {
		return nil, dbError(err, "department")
	}
	return &department, nil
}

func (s *CatalogService) DeleteDepartment(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	var cities int64
	if err := db.Model(&model.City{}).Where("department_id = ?", id).Count(&cities).Error; err != nil {
		return dbError(err, "cities")
	}
	if cities > 0 {
		return Conflict("department still has %d cities", cities)
	}
	return deleteByID(db, &model.Department{}, id, "department")
}

// Cities

func (s *CatalogService) ListCities(ctx context.Context, filter model.FilterCity) (*model.ResponseCustom, error) {
	query := s.db.WithContext(ctx).Model(&model.City{})
	if filter.DepartmentID != 0 {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.SearchKey != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.SearchKey)+"%")
	}
	var rows []model.City
	return s.page(query.Order("name asc"), filter.Pagination, &rows, "Department")
}

func (s *CatalogService) GetCity(ctx context.Context, id uint) (*model.City, error) {
	var city model.City
	if err := s.db.WithContext(ctx).Preload("Department").First(&city, id).Error; err != nil {
		return nil, dbError(err, "city")
	}
	return &city, nil
}

func (s *CatalogService) CreateCity(ctx context.Context, input model.CityInput) (*model.City, error) {
	db := s.db.WithContext(ctx)
	if err := db.First(&model.Department{}, input.DepartmentID).Error; err != nil {
		return nil, dbError(err, "department")
	}
	var city model.City
	if err := copier.Copy(&city, &input); err != nil {
		return nil, Internal("copy city input", err)
	}
	if err := db.Create(&city).Error; err != nil {
		return nil, dbError(err, "city")
	}
	return &city, nil
}

func (s *CatalogService) UpdateCity(ctx context.Context, id uint, input model.CityInput) (*model.City, error) {
	db := s.db.WithContext(ctx)
	var city model.City
	if err := db.First(&city, id).Error; err != nil {
		return nil, dbError(err, "city")
	}
	if err := db.First(&model.Department{}, input.DepartmentID).Error; err != nil {
		return nil, dbError(err, "department")
	}
	if err := copier.Copy(&city, &input); err != nil {
		return nil, Internal("copy city input", err)
	}
	if err := db.Save(&city).Error; err != nil {
		return nil, dbError(err, "city")
	}
	return &city, nil
}

func (s *CatalogService) DeleteCity(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	var attractions int64
	if err := db.Model(&model.Attraction{}).Where("city_id = ?", id).Count(&attractions).Error; err != nil {
		return dbError(err, "attractions")
	}
	if attractions > 0 {
		return Conflict("city still has %d attractions", attractions)
	}
	return deleteByID(db, &model.City{}, id, "city")
}

// Categories

func (s *CatalogService) ListCategories(ctx context.Context, p model.Pagination) (*model.ResponseCustom, error) {
	var rows []model.Category
	return s.page(s.db.WithContext(ctx).Model(&model.Category{}).Order("name asc"), p, &rows)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, dbError(err, "category")
	}
	return &category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, input model.CategoryInput) (*model.Category, error) {
	db := s.db.WithContext(ctx)
	name := strings.TrimSpace(input.Name)
	if err := s.ensureCategoryNameFree(db, name, 0); err != nil {
		return nil, err
	}
	category := model.Category{Name: name, Description: input.Description}
	if err := db.Create(&category).Error; err != nil {
		return nil, dbError(err, "category")
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, input model.CategoryInput) (*model.Category, error) {
	db := s.db.WithContext(ctx)
	var category model.Category
	if err := db.First(&category, id).Error; err != nil {
		return nil, dbError(err, "category")
	}
	name := strings.TrimSpace(input.Name)
	if err := s.ensureCategoryNameFree(db, name, id); err != nil {
		return nil, err
	}
	category.Name = name
	category.Description = input.Description
	if err := db.Save(&category).Error; err != nil {
		return nil, dbError(err, "category")
	}
	return &category, nil
}

func (s *CatalogService) ensureCategoryNameFree(db *gorm.DB, name string, excludeID uint) error {
	var count int64
	query := db.Model(&model.Category{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return dbError(err, "category")
	}
	if count > 0 {
		return Conflict("category %s already exists", name)
	}
	return nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	var attractions int64
	if err := db.Model(&model.Attraction{}).Where("category_id = ?", id).Count(&attractions).Error; err != nil {
		return dbError(err, "attractions")
	}
	if attractions > 0 {
		return Conflict("category still has %d attractions", attractions)
	}
	return deleteByID(db, &model.Category{}, id, "category")
}

// Attractions

func (s *CatalogService) ListAttractions(ctx context.Context, filter model.FilterAttraction) (*model.ResponseCustom, error) {
	query := s.db.WithContext(ctx).Model(&model.Attraction{})
	if filter.SearchKey != "" {
		like := "%" + strings.ToLower(filter.SearchKey) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", like, like)
	}
	if filter.CityID != 0 {
		query = query.Where("city_id = ?", filter.CityID)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	var rows []model.Attraction
	return s.page(query.Order("name asc"), filter.Pagination, &rows, "City", "Category")
}

// GetAttraction accepts the numeric id or the slug.
func (s *CatalogService) GetAttraction(ctx context.Context, idOrSlug string) (*model.Attraction, error) {
	query := s.db.WithContext(ctx).
		Preload("City.Department").
		Preload("Category").
		Preload("Sectors", "active = ?", true)

	var attraction model.Attraction
	var err error
	if id, ok := parseUint(idOrSlug); ok {
		err = query.First(&attraction, id).Error
	} else {
		err = query.Where("slug = ?", idOrSlug).First(&attraction).Error
	}
	if err != nil {
		return nil, dbError(err, "attraction")
	}
	return &attraction, nil
}

func (s *CatalogService) CreateAttraction(ctx context.Context, input model.CreateAttractionInput) (*model.Attraction, error) {
	var attraction model.Attraction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model.City{}, input.CityID).Error; err != nil {
			return dbError(err, "city")
		}
		if err := tx.First(&model.Category{}, input.CategoryID).Error; err != nil {
			return dbError(err, "category")
		}

		if err := copier.Copy(&attraction, &input); err != nil {
			return Internal("copy attraction input", err)
		}
		attraction.Active = true

		slug, err := helper.GenerateUniqueSlug(tx, &model.Attraction{}, input.Name, 0)
		if err != nil {
			return dbError(err, "attraction")
		}
		attraction.Slug = slug

		return dbError(tx.Create(&attraction).Error, "attraction")
	})
	if err != nil {
		return nil, err
	}
	return &attraction, nil
}

func (s *CatalogService) UpdateAttraction(ctx context.Context, id uint, input model.UpdateAttractionInput) (*model.Attraction, error) {
	var attraction model.Attraction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&attraction, id).Error; err != nil {
			return dbError(err, "attraction")
		}
		if input.CityID != nil {
			if err := tx.First(&model.City{}, *input.CityID).Error; err != nil {
				return dbError(err, "city")
			}
		}
		if input.CategoryID != nil {
			if err := tx.First(&model.Category{}, *input.CategoryID).Error; err != nil {
				return dbError(err, "category")
			}
		}

		renamed := input.Name != nil && *input.Name != attraction.Name
		if err := copier.CopyWithOption(&attraction, &input, copier.Option{IgnoreEmpty: true}); err != nil {
			return Internal("copy attraction input", err)
		}
		if renamed {
			slug, err := helper.GenerateUniqueSlug(tx, &model.Attraction{}, attraction.Name, attraction.ID)
			if err != nil {
				return dbError(err, "attraction")
			}
			attraction.Slug = slug
		}
		return dbError(tx.Save(&attraction).Error, "attraction")
	})
	if err != nil {
		return nil, err
	}
	return &attraction, nil
}

func (s *CatalogService) SetAttractionImage(ctx context.Context, id uint, url string) (*model.Attraction, error) {
	db := s.db.WithContext(ctx)
	var attraction model.Attraction
	if err := db.First(&attraction, id).Error; err != nil {
		return nil, dbError(err, "attraction")
	}
	if err := db.Model(&attraction).Update("image_url", url).Error; err != nil {
		return nil, dbError(err, "attraction")
	}
	attraction.ImageURL = &url
	return &attraction, nil
}

func (s *CatalogService) DeleteAttraction(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteByID(tx, &model.Attraction{}, id, "attraction"); err != nil {
			return err
		}
		return dbError(tx.Where("attraction_id = ?", id).Delete(&model.Sector{}).Error, "sectors")
	})
}

// page counts before preloading, then fetches one page of rows.
func (s *CatalogService) page(query *gorm.DB, p model.Pagination, rows any, preloads ...string) (*model.ResponseCustom, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, dbError(err, "list")
	}
	for _, name := range preloads {
		query = query.Preload(name)
	}
	if err := utils.ApplyPagination(query, p.Limit, p.Page).Find(rows).Error; err != nil {
		return nil, dbError(err, "list")
	}
	return &model.ResponseCustom{Rows: rows, Limit: p.Limit, Page: p.Page, TotalCount: total}, nil
}

func deleteByID(db *gorm.DB, value any, id uint, what string) error {
	result := db.Delete(value, id)
	if result.Error != nil {
		return dbError(result.Error, what)
	}
	if result.RowsAffected == 0 {
		return NotFound("%s not found", what)
	}
	return nil
}
