package models

// Tag is immutable reference data used to classify recipes.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Color string `gorm:"size:7;uniqueIndex" json:"color"`
	Slug  string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "tags"
}

// Ingredient is reference data. The (name, measurement unit) pair is unique.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:unique_name_measurement" json:"name" yaml:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:unique_name_measurement" json:"measurement_unit" yaml:"measurement_unit"`
}

// TableName specifies the table name for GORM
func (Ingredient) TableName() string {
	return "ingredients"
}
