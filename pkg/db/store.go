package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
	"github.com/vega-project/ccb-cosmology/pkg/util"
)

// ResultsArchive keeps completed calculations beyond their retention in redis.
type ResultsArchive interface {
	StoreOrUpdate(ctx context.Context, calc *v1.Calculation) error
	Get(ctx context.Context, parameters map[string]string) (*CalculationResults, error)
}

// archiveParameters are the keys Get can query on.
var archiveParameters = map[string]bool{
	"name":        true,
	"method":      true,
	"realization": true,
	"model":       true,
	"cosmology":   true,
	"redshifts":   true,
}

// ArchiveParameters flattens the spec of a calculation into the queryable
// parameters of its archive entry.
func ArchiveParameters(calc *v1.Calculation) (map[string]string, error) {
	cosmology, err := json.Marshal(calc.Spec.Cosmology)
	if err != nil {
		return nil, err
	}
	redshifts := make([]string, len(calc.Spec.Redshifts))
	for i, z := range calc.Spec.Redshifts {
		redshifts[i] = strconv.FormatFloat(z, 'g', -1, 64)
	}

	parameters := map[string]string{
		"name":      calc.Name,
		"method":    calc.Spec.Method,
		"cosmology": string(cosmology),
		"redshifts": strings.Join(redshifts, ","),
	}
	if calc.Spec.Cosmology.Realization != "" {
		parameters["realization"] = calc.Spec.Cosmology.Realization
	} else {
		parameters["model"] = calc.Spec.Cosmology.Model
	}
	return parameters, nil
}

type resultsArchive struct {
	db *gorm.DB
}

func (s *resultsArchive) StoreOrUpdate(ctx context.Context, calc *v1.Calculation) error {
	if calc.Phase != v1.CompletedPhase {
		return fmt.Errorf("calculation %s is %s, only completed calculations are archived", calc.Name, calc.Phase)
	}
	parameters, err := ArchiveParameters(calc)
	if err != nil {
		return err
	}
	parametersJSON, err := json.Marshal(parameters)
	if err != nil {
		return err
	}
	results, err := util.ResultsCSV(calc)
	if err != nil {
		return err
	}

	existing, err := s.Get(ctx, map[string]string{"name": calc.Name})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	} else {
		existing.Method = calc.Spec.Method
		existing.ParametersJSON = string(parametersJSON)
		existing.Results = string(results)
		return s.db.WithContext(ctx).Save(existing).Error
	}

	return s.db.WithContext(ctx).Create(&CalculationResults{
		Name:           calc.Name,
		Method:         calc.Spec.Method,
		ParametersJSON: string(parametersJSON),
		Results:        string(results),
	}).Error
}

func (s *resultsArchive) Get(ctx context.Context, parameters map[string]string) (*CalculationResults, error) {
	query := s.db.WithContext(ctx).Model(&CalculationResults{})

	for key, value := range parameters {
		if !archiveParameters[key] {
			return nil, fmt.Errorf("unknown archive parameter %q", key)
		}
		jsonQuery := fmt.Sprintf("parameters_json ->> '%s' = ?", key)
		query = query.Where(jsonQuery, value)
	}

	var result CalculationResults
	if err := query.First(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to find CalculationResults: %w", err)
	}
	if err := json.Unmarshal([]byte(result.ParametersJSON), &result.Parameters); err != nil {
		return nil, fmt.Errorf("couldn't unmarshal archived parameters: %w", err)
	}
	return &result, nil
}
