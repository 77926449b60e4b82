package catalog

import (
	"strings"
	"time"

	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared"
)

const (
	maxCategoryNameLength        = 100
	maxCategoryDescriptionLength = 500
)

// Category groups products in the catalog
type Category struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category
func NewCategory(name, description string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	if len(description) > maxCategoryDescriptionLength {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Description is too long")
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Description:       description,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// Update updates the category's basic information
func (c *Category) Update(name, description string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	if len(description) > maxCategoryDescriptionLength {
		return shared.NewDomainError("VALIDATION_ERROR", "Description is too long")
	}

	c.Name = strings.TrimSpace(name)
	c.Description = description
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return nil
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Category name is required")
	}
	if len(name) > maxCategoryNameLength {
		return shared.NewDomainError("VALIDATION_ERROR", "Category name is too long")
	}
	return nil
}
