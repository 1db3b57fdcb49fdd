package retirement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestMonthlyPayment(t *testing.T) {
	// 30-year loan of 100k at 6% a year
	got := MonthlyPayment(d("100000"), d("0.005"), 360).Round(2)
	assertMoney(t, "599.55", got)

	assertMoney(t, "100", MonthlyPayment(d("1200"), decimal.Zero, 12))
	assertMoney(t, "0", MonthlyPayment(d("1200"), d("0.01"), 0))
}

func TestProjectWithoutGrowth(t *testing.T) {
	plan := Plan{
		CurrentAge:           30,
		RetirementAge:        31,
		LifeExpectancy:       32,
		CurrentSavings:       d("1000"),
		MonthlyContribution:  d("100"),
		DesiredMonthlyIncome: d("1000"),
	}

	proj, err := Project(plan)
	require.NoError(t, err)
	require.Len(t, proj.Years, 2)

	assertMoney(t, "2200", proj.NestEgg)
	assertMoney(t, "1200", proj.TotalContributions)
	assertMoney(t, "12000", proj.RequiredNestEgg)
	assertMoney(t, "9800", proj.Shortfall)
	assertMoney(t, "183.33", proj.SustainableMonthlyIncome)
	assert.Equal(t, 31, proj.DepletionAge)
	assert.False(t, proj.OnTrack)

	working, retired := proj.Years[0], proj.Years[1]
	assert.False(t, working.Retired)
	assertMoney(t, "2200", working.EndBalance)
	assert.True(t, retired.Retired)
	assertMoney(t, "2200", retired.Withdrawals)
	assertMoney(t, "0", retired.EndBalance)
}

func TestProjectFundsLastExactly(t *testing.T) {
	plan := Plan{
		CurrentAge:           40,
		RetirementAge:        41,
		LifeExpectancy:       42,
		CurrentSavings:       d("0"),
		MonthlyContribution:  d("500"),
		DesiredMonthlyIncome: d("500"),
	}
	proj, err := Project(plan)
	require.NoError(t, err)
	assert.Equal(t, 0, proj.DepletionAge)
	assert.True(t, proj.OnTrack)
	assertMoney(t, "0", proj.Shortfall)
	assertMoney(t, "500", proj.SustainableMonthlyIncome)
}

func TestProjectDefaultPlan(t *testing.T) {
	proj, err := Project(DefaultPlan())
	require.NoError(t, err)
	require.Len(t, proj.Years, 60)

	// Balances grow while working and contributions are all counted
	for i := 1; i < 35; i++ {
		assert.True(t, proj.Years[i].EndBalance.GreaterThan(proj.Years[i-1].EndBalance), "year %d", i+1)
	}
	assertMoney(t, "210000", proj.TotalContributions)
	assert.True(t, proj.NestEgg.GreaterThan(proj.NestEggReal))
	assert.True(t, proj.MonthlyIncomeAtRetirement.GreaterThan(d("4000")))

	// Sustainable income exactly exhausts the nest egg, so it is below
	// the required level whenever there is a shortfall
	if proj.Shortfall.IsPositive() {
		assert.True(t, proj.SustainableMonthlyIncome.LessThan(proj.MonthlyIncomeAtRetirement))
		assert.NotZero(t, proj.DepletionAge)
	}
}

func TestProjectPostRetirementReturn(t *testing.T) {
	plan := DefaultPlan()
	low := d("2")
	plan.PostRetirementReturn = &low
	conservative, err := Project(plan)
	require.NoError(t, err)

	base, err := Project(DefaultPlan())
	require.NoError(t, err)

	assert.True(t, conservative.NestEgg.Equal(base.NestEgg))
	assert.True(t, conservative.RequiredNestEgg.GreaterThan(base.RequiredNestEgg))
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Plan)
		wantErr string
	}{
		{"valid default", func(p *Plan) {}, ""},
		{"retire before now", func(p *Plan) { p.RetirementAge = 25 }, "retirement age"},
		{"die before retiring", func(p *Plan) { p.LifeExpectancy = 60 }, "life expectancy"},
		{"negative savings", func(p *Plan) { p.CurrentSavings = d("-1") }, "current savings cannot be negative"},
		{"absurd return", func(p *Plan) { p.AnnualReturn = d("150") }, "annual return must be between"},
		{"negative age", func(p *Plan) { p.CurrentAge = -1 }, "current age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPlan()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
