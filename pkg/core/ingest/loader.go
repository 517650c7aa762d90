package ingest

import (
	"errors"
	"fmt"

	"fpna_dashboard/pkg/core/store"
	"fpna_dashboard/pkg/models"
)

// ErrDuplicateRecord is returned when a (Month, Department) pair appears twice.
var ErrDuplicateRecord = errors.New("duplicate (Month, Department) record")

type recordKey struct {
	month models.Month
	dept  string
}

// LoadFinancials reads financials.csv with the full variance schema.
func LoadFinancials(s *store.TableStore) ([]models.FinancialRecord, error) {
	var records []models.FinancialRecord
	if err := s.ReadTable(models.FinancialsFile, models.FinancialsColumns, &records); err != nil {
		return nil, err
	}
	keys := make([]recordKey, len(records))
	for i, r := range records {
		keys[i] = recordKey{month: r.Month, dept: r.Department}
	}
	if err := checkUnique(keys); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadRevenue reads financials.csv requiring only the columns the forecast
// needs, so a dataset without Expense or Forecast_Revenue can still be
// projected.
func LoadRevenue(s *store.TableStore) ([]models.RevenueRecord, error) {
	var records []models.RevenueRecord
	if err := s.ReadTable(models.FinancialsFile, models.RevenueColumns, &records); err != nil {
		return nil, err
	}
	keys := make([]recordKey, len(records))
	for i, r := range records {
		keys[i] = recordKey{month: r.Month, dept: r.Department}
	}
	if err := checkUnique(keys); err != nil {
		return nil, err
	}
	return records, nil
}

// checkUnique reports the first repeated key with 1-based file line numbers
// (the header is line 1).
func checkUnique(keys []recordKey) error {
	seen := make(map[recordKey]int, len(keys))
	for i, k := range keys {
		if first, ok := seen[k]; ok {
			return fmt.Errorf("%w: %s/%s on lines %d and %d", ErrDuplicateRecord, k.month, k.dept, first+2, i+2)
		}
		seen[k] = i
	}
	return nil
}
