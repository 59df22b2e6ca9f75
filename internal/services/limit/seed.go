package limit

import (
	"context"
	"fmt"

	"walletcore/internal/models"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// Seed is the TOML seed file applied by the seed-limits command.
//
//	[[definitions]]
//	code = "MONTHLY_TRANSFER_AMOUNT"
//	name = "Monthly transfer amount"
//	period = "Month"
//	metric_type = "Amount"
//	visible = true
//
//	[[customer_limits]]
//	customer_id = "cust-1"
//	definition = "MONTHLY_TRANSFER_AMOUNT"
//	year = 2025
//	month = 1
//	value = "15000"
//	currency = "TRY"
type Seed struct {
	Definitions    []SeedDefinition    `toml:"definitions"`
	CustomerLimits []SeedCustomerLimit `toml:"customer_limits"`
}

type SeedDefinition struct {
	Code       string `toml:"code"`
	Name       string `toml:"name"`
	Period     string `toml:"period"`
	MetricType string `toml:"metric_type"`
	Visible    bool   `toml:"visible"`
}

type SeedCustomerLimit struct {
	CustomerID string `toml:"customer_id"`
	// Definition is the definition code.
	Definition string `toml:"definition"`
	Year       *int   `toml:"year"`
	Month      *int   `toml:"month"`
	Day        *int   `toml:"day"`
	Value      string `toml:"value"`
	Currency   string `toml:"currency"`
	Source     string `toml:"source"`
	Reason     string `toml:"reason"`
}

type SeedReport struct {
	DefinitionsCreated int
	DefinitionsSkipped int
	LimitsApplied      int
}

// LoadSeed decodes a seed file.
func LoadSeed(path string) (*Seed, error) {
	var seed Seed
	meta, err := toml.DecodeFile(path, &seed)
	if err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("seed file %s: unknown keys %v", path, undecoded)
	}
	return &seed, nil
}

// ApplySeed creates missing definitions by code and upserts every customer
// limit. Existing definitions are left unchanged.
func ApplySeed(ctx context.Context, svc Service, seed *Seed, actor string) (SeedReport, error) {
	var report SeedReport

	existing, err := svc.ListDefinitions(ctx, false)
	if err != nil {
		return report, err
	}
	byCode := make(map[string]string, len(existing))
	for _, def := range existing {
		byCode[def.Code] = def.ID
	}

	for _, sd := range seed.Definitions {
		if _, ok := byCode[normalizeCode(sd.Code)]; ok {
			report.DefinitionsSkipped++
			continue
		}
		def, err := svc.CreateDefinition(ctx, DefinitionRequest{
			Code:       sd.Code,
			Name:       sd.Name,
			Period:     models.Period(sd.Period),
			MetricType: models.MetricType(sd.MetricType),
			IsVisible:  sd.Visible,
		})
		if err != nil {
			return report, fmt.Errorf("definition %s: %w", sd.Code, err)
		}
		byCode[def.Code] = def.ID
		report.DefinitionsCreated++
	}

	for i, sl := range seed.CustomerLimits {
		defID, ok := byCode[normalizeCode(sl.Definition)]
		if !ok {
			return report, fmt.Errorf("customer limit %d: unknown definition %q", i, sl.Definition)
		}
		value, err := decimal.NewFromString(sl.Value)
		if err != nil {
			return report, fmt.Errorf("customer limit %d: invalid value %q: %w", i, sl.Value, err)
		}
		source := models.LimitSource(sl.Source)
		if source == "" {
			source = models.LimitSourceSystem
		}
		_, err = svc.SetCustomerLimit(ctx, SetLimitRequest{
			CustomerID:        sl.CustomerID,
			LimitDefinitionID: defID,
			Year:              sl.Year,
			Month:             sl.Month,
			Day:               sl.Day,
			Value:             value,
			Currency:          sl.Currency,
			Source:            source,
			Reason:            sl.Reason,
			Actor:             actor,
		})
		if err != nil {
			return report, fmt.Errorf("customer limit %d: %w", i, err)
		}
		report.LimitsApplied++
	}
	return report, nil
}
