package limit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedFile = `
[[definitions]]
code = "MONTHLY_TRANSFER_AMOUNT"
name = "Monthly transfer amount"
period = "Month"
metric_type = "Amount"
visible = true

[[definitions]]
code = "DAILY_TOPUP_COUNT"
name = "Daily top-up count"
period = "Day"
metric_type = "Count"

[[customer_limits]]
customer_id = "C"
definition = "monthly_transfer_amount"
year = 2025
month = 1
value = "15000"
currency = "TRY"
reason = "initial"
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "limits.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	seed, err := LoadSeed(writeSeed(t, seedFile))
	require.NoError(t, err)
	require.Len(t, seed.Definitions, 2)
	require.Len(t, seed.CustomerLimits, 1)

	report, err := ApplySeed(ctx, svc, seed, "seed")
	require.NoError(t, err)
	assert.Equal(t, SeedReport{DefinitionsCreated: 2, LimitsApplied: 1}, report)

	// A second run skips definitions and rewrites limits in place.
	report, err = ApplySeed(ctx, svc, seed, "seed")
	require.NoError(t, err)
	assert.Equal(t, SeedReport{DefinitionsSkipped: 2, LimitsApplied: 1}, report)

	defs, err := svc.ListDefinitions(ctx, true)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	result, err := svc.Check(ctx, CheckRequest{
		CustomerID: "C", LimitDefinitionID: defs[0].ID, Value: decimal.NewFromInt(15001),
		Year: intp(2025), Month: intp(1),
	})
	require.NoError(t, err)
	assert.False(t, result.Allowed)
}

func TestLoadSeed_RejectsUnknownKeys(t *testing.T) {
	_, err := LoadSeed(writeSeed(t, "[[definitions]]\ncode = \"X\"\nperiodd = \"Month\"\n"))
	assert.Error(t, err)
}

func TestApplySeed_UnknownDefinition(t *testing.T) {
	svc := newTestService(t, nil)
	seed := &Seed{CustomerLimits: []SeedCustomerLimit{{CustomerID: "C", Definition: "NOPE", Value: "1"}}}

	_, err := ApplySeed(context.Background(), svc, seed, "seed")
	assert.ErrorContains(t, err, "unknown definition")
}
