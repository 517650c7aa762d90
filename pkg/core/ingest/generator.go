package ingest

import (
	"fmt"
	"math/rand/v2"
	"time"

	"fpna_dashboard/pkg/core/store"
	"fpna_dashboard/pkg/models"

	"github.com/shopspring/decimal"
)

// DefaultDepartments is the synthetic dataset's department list.
var DefaultDepartments = []string{"Sales", "Marketing", "Operations", "R&D"}

// GenerateOptions controls the synthetic dataset.
type GenerateOptions struct {
	Seed        uint64 // 0 picks a time-based seed
	Start       models.Month
	Months      int
	Departments []string
}

// DefaultGenerateOptions is 24 months from 2023-01 for the default departments.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Seed:        42,
		Start:       models.Month{Year: 2023, Month: time.January},
		Months:      24,
		Departments: DefaultDepartments,
	}
}

// Generate builds a synthetic monthly dataset. Each department draws a base
// revenue and base expense once; every month adds uniform noise on top, and
// the budget forecast lands between -5% and +10% of the realised revenue.
func Generate(opts GenerateOptions) ([]models.FinancialRecord, error) {
	if opts.Months <= 0 {
		return nil, fmt.Errorf("months must be positive, got %d", opts.Months)
	}
	if len(opts.Departments) == 0 {
		return nil, fmt.Errorf("at least one department is required")
	}
	if opts.Start.IsZero() {
		opts.Start = DefaultGenerateOptions().Start
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))

	records := make([]models.FinancialRecord, 0, opts.Months*len(opts.Departments))
	for _, dept := range opts.Departments {
		baseRevenue := 50000 + rng.IntN(100000)
		baseExpense := 30000 + rng.IntN(50000)

		for i := 0; i < opts.Months; i++ {
			revenue := baseRevenue - 10000 + rng.IntN(25000)
			expense := baseExpense - 5000 + rng.IntN(15000)
			factor := 1 + (-0.05 + rng.Float64()*0.15)
			forecast := decimal.NewFromInt(int64(revenue)).Mul(decimal.NewFromFloat(factor)).Round(2)

			records = append(records, models.FinancialRecord{
				Month:           opts.Start.AddMonths(i),
				Department:      dept,
				Revenue:         models.FromInt(int64(revenue)),
				Expense:         models.FromInt(int64(expense)),
				ForecastRevenue: models.Known(forecast),
			})
		}
	}
	return records, nil
}

// WriteGenerated persists records as financials.csv.
func WriteGenerated(s *store.TableStore, records []models.FinancialRecord) error {
	return s.WriteTables(store.Table{Name: models.FinancialsFile, Rows: records})
}
