package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fpna_dashboard/pkg/core/store"
	"fpna_dashboard/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ShapeAndRanges(t *testing.T) {
	opts := DefaultGenerateOptions()
	records, err := Generate(opts)
	require.NoError(t, err)
	require.Len(t, records, 24*len(DefaultDepartments))

	assert.Equal(t, "2023-01", records[0].Month.String())
	assert.Equal(t, "2024-12", records[23].Month.String())
	assert.Equal(t, "Sales", records[0].Department)
	assert.Equal(t, "R&D", records[len(records)-1].Department)

	low := decimal.NewFromFloat(0.95)
	high := decimal.NewFromFloat(1.1001)
	for _, r := range records {
		rev, ok := r.Revenue.Decimal()
		require.True(t, ok)
		assert.True(t, rev.GreaterThanOrEqual(decimal.NewFromInt(40000)), "revenue %s", rev)
		assert.True(t, rev.LessThan(decimal.NewFromInt(165000)), "revenue %s", rev)

		exp, ok := r.Expense.Decimal()
		require.True(t, ok)
		assert.True(t, exp.GreaterThanOrEqual(decimal.NewFromInt(25000)), "expense %s", exp)
		assert.True(t, exp.LessThan(decimal.NewFromInt(90000)), "expense %s", exp)

		fc, ok := r.ForecastRevenue.Decimal()
		require.True(t, ok)
		ratio := fc.Div(rev)
		assert.True(t, ratio.GreaterThanOrEqual(low.Sub(decimal.NewFromFloat(0.0001))), "ratio %s", ratio)
		assert.True(t, ratio.LessThanOrEqual(high), "ratio %s", ratio)
		assert.True(t, fc.Equal(fc.Round(2)))
	}
}

func TestGenerate_SeedIsReproducible(t *testing.T) {
	opts := DefaultGenerateOptions()
	opts.Seed = 7
	a, err := Generate(opts)
	require.NoError(t, err)
	b, err := Generate(opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_InvalidOptions(t *testing.T) {
	_, err := Generate(GenerateOptions{Months: 0, Departments: []string{"A"}})
	assert.Error(t, err)

	_, err = Generate(GenerateOptions{Months: 3})
	assert.Error(t, err)
}

func TestWriteGeneratedThenLoad(t *testing.T) {
	s := store.NewTableStore(t.TempDir())
	opts := DefaultGenerateOptions()
	opts.Departments = []string{"Sales", "Marketing"}
	records, err := Generate(opts)
	require.NoError(t, err)
	require.NoError(t, WriteGenerated(s, records))

	loaded, err := LoadFinancials(s)
	require.NoError(t, err)
	require.Len(t, loaded, len(records))
	for i := range records {
		assert.Equal(t, records[i].Month, loaded[i].Month)
		assert.Equal(t, records[i].Department, loaded[i].Department)
		assert.True(t, records[i].Revenue.Equal(loaded[i].Revenue))
		assert.True(t, records[i].ForecastRevenue.Equal(loaded[i].ForecastRevenue))
	}

	revenue, err := LoadRevenue(s)
	require.NoError(t, err)
	assert.Len(t, revenue, len(records))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		loader   func(*store.TableStore) error
		checkErr func(t *testing.T, err error)
	}{
		{
			name:    "duplicate month and department",
			content: "Month,Department,Revenue,Expense,Forecast_Revenue\n2024-01,Sales,1,1,1\n2024-01-15,Sales,2,2,2\n",
			loader: func(s *store.TableStore) error {
				_, err := LoadFinancials(s)
				return err
			},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrDuplicateRecord))
				assert.Contains(t, err.Error(), "2024-01/Sales on lines 2 and 3")
			},
		},
		{
			name:    "revenue loader ignores missing expense columns",
			content: "Month,Department,Revenue\n2024-01,Sales,1\n",
			loader: func(s *store.TableStore) error {
				_, err := LoadRevenue(s)
				return err
			},
			checkErr: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:    "financials loader requires full schema",
			content: "Month,Department,Revenue\n2024-01,Sales,1\n",
			loader: func(s *store.TableStore) error {
				_, err := LoadFinancials(s)
				return err
			},
			checkErr: func(t *testing.T, err error) {
				var schema *store.SchemaError
				require.True(t, errors.As(err, &schema))
				assert.Equal(t, []string{"Expense", "Forecast_Revenue"}, schema.Missing)
			},
		},
		{
			name:    "invalid month",
			content: "Month,Department,Revenue\nJan-24,Sales,1\n",
			loader: func(s *store.TableStore) error {
				_, err := LoadRevenue(s)
				return err
			},
			checkErr: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "invalid month")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, models.FinancialsFile), []byte(tt.content), 0o644))
			tt.checkErr(t, tt.loader(store.NewTableStore(dir)))
		})
	}
}
