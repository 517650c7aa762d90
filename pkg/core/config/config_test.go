package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credentialVars = []string{
	"AZURE_OPENAI_KEY", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT", "AZURE_OPENAI_API_VERSION",
	"OPENAI_API_KEY", "GEMINI_API_KEY",
	"FPNA_NARRATIVE_OPENAI_KEY", "FPNA_NARRATIVE_AZURE_API_VERSION",
}

// isolate points HOME at an empty directory and unsets every variable Load
// reads, restoring them when the test ends.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range credentialVars {
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(LoadOptions{EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 6, cfg.Forecast.Horizon)
	assert.Equal(t, 3, cfg.Forecast.RollingWindow)
	assert.Equal(t, 1.96, cfg.Forecast.Z)
	assert.True(t, cfg.Forecast.SeasonalEnabled)
	assert.Equal(t, "auto", cfg.Narrative.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Narrative.OpenAIModel)
	assert.Equal(t, "2024-07-18", cfg.Narrative.AzureAPIVersion)
	assert.Equal(t, 0.2, cfg.Narrative.Temperature)
	assert.Empty(t, cfg.Narrative.OpenAIKey)
	assert.Equal(t, uint64(42), cfg.Generate.Seed)
	assert.Equal(t, "2023-01", cfg.Generate.Start)
	assert.Equal(t, 24, cfg.Generate.Months)
	assert.Equal(t, []string{"Sales", "Marketing", "Operations", "R&D"}, cfg.Generate.Departments)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "fpna.yaml", `
data_dir: /tmp/fpna
forecast:
  horizon: 12
  rolling_window: 4
narrative:
  provider: openai
logging:
  format: json
`)
	t.Setenv("FPNA_FORECAST_HORIZON", "9")
	t.Setenv("FPNA_GENERATE_DEPARTMENTS", "Sales,Ops")

	cfg, err := Load(LoadOptions{ConfigFile: path, EnvFile: filepath.Join(dir, "none.env")})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/fpna", cfg.DataDir)
	assert.Equal(t, 9, cfg.Forecast.Horizon, "env beats file")
	assert.Equal(t, 4, cfg.Forecast.RollingWindow)
	assert.Equal(t, "openai", cfg.Narrative.Provider)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"Sales", "Ops"}, cfg.Generate.Departments)
}

func TestLoad_EnvFileAndProviderVariables(t *testing.T) {
	dir := isolate(t)
	envFile := writeFile(t, dir, ".env", "OPENAI_API_KEY=sk-from-dotenv\nAZURE_OPENAI_API_VERSION=2025-01-01\n")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load(LoadOptions{EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "sk-from-dotenv", cfg.Narrative.OpenAIKey)
	assert.Equal(t, "g-key", cfg.Narrative.GeminiKey)
	assert.Equal(t, "2025-01-01", cfg.Narrative.AzureAPIVersion)
}

func TestLoad_PrefixedCredentialWins(t *testing.T) {
	dir := isolate(t)
	t.Setenv("FPNA_NARRATIVE_OPENAI_KEY", "sk-prefixed")
	t.Setenv("OPENAI_API_KEY", "sk-plain")

	cfg, err := Load(LoadOptions{EnvFile: filepath.Join(dir, "none.env")})
	require.NoError(t, err)
	assert.Equal(t, "sk-prefixed", cfg.Narrative.OpenAIKey)
}

func TestLoad_Errors(t *testing.T) {
	dir := isolate(t)
	noEnv := filepath.Join(dir, "none.env")

	_, err := Load(LoadOptions{ConfigFile: filepath.Join(dir, "absent.yaml"), EnvFile: noEnv})
	assert.ErrorContains(t, err, "error reading config file")

	bad := writeFile(t, dir, "bad.yaml", "forecast: [unclosed\n")
	_, err = Load(LoadOptions{ConfigFile: bad, EnvFile: noEnv})
	assert.Error(t, err)

	t.Setenv("FPNA_FORECAST_HORIZON", "0")
	_, err = Load(LoadOptions{EnvFile: noEnv})
	assert.ErrorContains(t, err, "forecast.horizon")
}

func TestConfig_Mappings(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load(LoadOptions{EnvFile: filepath.Join(dir, "none.env")})
	require.NoError(t, err)
	cfg.Narrative.Provider = "gemini"
	cfg.Narrative.GeminiKey = "g"

	opts := cfg.ForecastOptions()
	assert.Equal(t, 6, opts.Horizon)
	assert.Equal(t, 3, opts.Window)

	settings := cfg.LLMSettings()
	assert.Equal(t, "gemini", settings.Provider)
	assert.Equal(t, "g", settings.GeminiKey)
	assert.Equal(t, 0.2, settings.Temperature)

	gen, err := cfg.GenerateOptions()
	require.NoError(t, err)
	assert.Equal(t, "2023-01", gen.Start.String())
	assert.Equal(t, uint64(42), gen.Seed)

	cfg.Generate.Start = "not-a-month"
	_, err = cfg.GenerateOptions()
	assert.Error(t, err)
}
