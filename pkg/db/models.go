package db

import (
	"gorm.io/gorm"
)

// CalculationResults is an archived, completed calculation.
type CalculationResults struct {
	gorm.Model

	Name           string            `gorm:"uniqueIndex"`
	Method         string            `gorm:"index"`
	Parameters     map[string]string `gorm:"-"`
	ParametersJSON string            `gorm:"column:parameters_json;type:jsonb"`
	// Results is the CSV rendering of the calculation.
	Results string
}
