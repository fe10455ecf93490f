package helper

import (
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// GenerateUniqueSlug slugifies name and appends -1, -2... until no row of
// model (other than excludeID) uses it.
func GenerateUniqueSlug(tx *gorm.DB, model any, name string, excludeID uint) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "item"
	}
	result := base
	i := 1

	for {
		var count int64
		query := tx.Unscoped().Model(model).Where("slug = ?", result)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}
		if err := query.Count(&count).Error; err != nil {
			return "", err
		}

		if count == 0 {
			break
		}
		result = fmt.Sprintf("%s-%d", base, i)
		i++
	}

	return result, nil
}
