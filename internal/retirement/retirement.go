// Package retirement projects savings growth and retirement drawdown.
//
// All money math uses decimal arithmetic with monthly compounding. Rates
// are given as annual percentages (7 means 7%). Results are rounded to
// cents only at the edges (yearly rows and summary figures).
package retirement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// workingPlaces bounds intermediate precision so repeated compounding
// does not grow decimal digits without limit
const workingPlaces = 10

var (
	zero    = decimal.Zero
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Plan holds the calculator inputs
type Plan struct {
	CurrentAge     int `json:"current_age"`
	RetirementAge  int `json:"retirement_age"`
	LifeExpectancy int `json:"life_expectancy"`

	CurrentSavings      decimal.Decimal `json:"current_savings"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`

	// DesiredMonthlyIncome is expressed in today's money
	DesiredMonthlyIncome decimal.Decimal `json:"desired_monthly_income"`

	// Annual percentages
	AnnualReturn         decimal.Decimal  `json:"annual_return"`
	InflationRate        decimal.Decimal  `json:"inflation_rate"`
	ContributionGrowth   decimal.Decimal  `json:"contribution_growth"`
	PostRetirementReturn *decimal.Decimal `json:"post_retirement_return,omitempty"`
}

// DefaultPlan returns the calculator's starting inputs
func DefaultPlan() Plan {
	return Plan{
		CurrentAge:           30,
		RetirementAge:        65,
		LifeExpectancy:       90,
		CurrentSavings:       decimal.NewFromInt(25000),
		MonthlyContribution:  decimal.NewFromInt(500),
		DesiredMonthlyIncome: decimal.NewFromInt(4000),
		AnnualReturn:         decimal.NewFromInt(7),
		InflationRate:        decimal.NewFromInt(3),
		ContributionGrowth:   zero,
	}
}

// Validate checks ages and amounts for consistency
func (p Plan) Validate() error {
	if p.CurrentAge < 0 || p.CurrentAge > 120 {
		return fmt.Errorf("current age must be between 0 and 120 (got %d)", p.CurrentAge)
	}
	if p.RetirementAge <= p.CurrentAge {
		return fmt.Errorf("retirement age (%d) must be greater than current age (%d)", p.RetirementAge, p.CurrentAge)
	}
	if p.LifeExpectancy <= p.RetirementAge {
		return fmt.Errorf("life expectancy (%d) must be greater than retirement age (%d)", p.LifeExpectancy, p.RetirementAge)
	}
	if p.LifeExpectancy > 130 {
		return fmt.Errorf("life expectancy must be 130 or less (got %d)", p.LifeExpectancy)
	}

	for name, v := range map[string]decimal.Decimal{
		"current savings":        p.CurrentSavings,
		"monthly contribution":   p.MonthlyContribution,
		"desired monthly income": p.DesiredMonthlyIncome,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s cannot be negative (got %s)", name, v.String())
		}
	}

	rates := map[string]decimal.Decimal{
		"annual return":       p.AnnualReturn,
		"inflation rate":      p.InflationRate,
		"contribution growth": p.ContributionGrowth,
	}
	if p.PostRetirementReturn != nil {
		rates["post-retirement return"] = *p.PostRetirementReturn
	}
	for name, v := range rates {
		if v.LessThan(decimal.NewFromInt(-50)) || v.GreaterThan(hundred) {
			return fmt.Errorf("%s must be between -50%% and 100%% (got %s%%)", name, v.String())
		}
	}
	return nil
}

func (p Plan) postReturn() decimal.Decimal {
	if p.PostRetirementReturn != nil {
		return *p.PostRetirementReturn
	}
	return p.AnnualReturn
}

// YearRow summarises one year of the projection
type YearRow struct {
	Age           int             `json:"age"`
	Year          int             `json:"year"`
	Retired       bool            `json:"retired"`
	StartBalance  decimal.Decimal `json:"start_balance"`
	Contributions decimal.Decimal `json:"contributions"`
	Growth        decimal.Decimal `json:"growth"`
	Withdrawals   decimal.Decimal `json:"withdrawals"`
	EndBalance    decimal.Decimal `json:"end_balance"`
	// RealBalance is EndBalance in today's money
	RealBalance decimal.Decimal `json:"real_balance"`
}

// Projection is the calculator output
type Projection struct {
	Plan  Plan      `json:"plan"`
	Years []YearRow `json:"years"`

	NestEgg                   decimal.Decimal `json:"nest_egg"`
	NestEggReal               decimal.Decimal `json:"nest_egg_real"`
	TotalContributions        decimal.Decimal `json:"total_contributions"`
	MonthlyIncomeAtRetirement decimal.Decimal `json:"monthly_income_at_retirement"`
	RequiredNestEgg           decimal.Decimal `json:"required_nest_egg"`
	SustainableMonthlyIncome  decimal.Decimal `json:"sustainable_monthly_income"`
	Shortfall                 decimal.Decimal `json:"shortfall"`

	// DepletionAge is the age at which savings run out, 0 if they last
	DepletionAge int  `json:"depletion_age"`
	OnTrack      bool `json:"on_track"`
}

// monthlyRate converts an annual percentage to a monthly fraction
func monthlyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(hundred).Div(twelve)
}

// growthFactor returns (1 + percent/100)^years
func growthFactor(percent decimal.Decimal, years int) decimal.Decimal {
	return one.Add(percent.Div(hundred)).Pow(decimal.NewFromInt(int64(years)))
}

// MonthlyPayment is the level payment that amortizes principal over
// months at the given monthly rate.
func MonthlyPayment(principal, rate decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return zero
	}
	n := decimal.NewFromInt(int64(months))
	if rate.IsZero() {
		return principal.Div(n)
	}
	// P * r / (1 - (1+r)^-n)
	discount := one.Sub(one.Div(one.Add(rate).Pow(n)))
	return principal.Mul(rate).Div(discount)
}

// Project runs the plan month by month from today to life expectancy
func Project(p Plan) (*Projection, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	accRate := monthlyRate(p.AnnualReturn)
	drawRate := monthlyRate(p.postReturn())
	yearsToRetire := p.RetirementAge - p.CurrentAge
	retiredMonths := (p.LifeExpectancy - p.RetirementAge) * 12

	proj := &Projection{Plan: p}
	incomeAtRetirement := p.DesiredMonthlyIncome.Mul(growthFactor(p.InflationRate, yearsToRetire))
	proj.MonthlyIncomeAtRetirement = incomeAtRetirement.Round(2)

	balance := p.CurrentSavings
	contribution := p.MonthlyContribution
	totalContrib := zero

	for y := 0; y < p.LifeExpectancy-p.CurrentAge; y++ {
		age := p.CurrentAge + y
		retired := age >= p.RetirementAge
		row := YearRow{Age: age, Year: y + 1, Retired: retired, StartBalance: balance}

		if !retired && y > 0 && !p.ContributionGrowth.IsZero() {
			contribution = contribution.Mul(one.Add(p.ContributionGrowth.Div(hundred)))
		}
		withdrawal := zero
		if retired {
			withdrawal = incomeAtRetirement.Mul(growthFactor(p.InflationRate, age-p.RetirementAge))
		}

		for m := 0; m < 12; m++ {
			if !retired {
				growth := balance.Mul(accRate).Round(workingPlaces)
				row.Growth = row.Growth.Add(growth)
				balance = balance.Add(growth).Add(contribution)
				row.Contributions = row.Contributions.Add(contribution)
				continue
			}
			growth := balance.Mul(drawRate).Round(workingPlaces)
			row.Growth = row.Growth.Add(growth)
			balance = balance.Add(growth)
			take := decimal.Min(withdrawal, balance)
			balance = balance.Sub(take)
			row.Withdrawals = row.Withdrawals.Add(take)
			if take.LessThan(withdrawal) && proj.DepletionAge == 0 {
				proj.DepletionAge = age
			}
		}

		totalContrib = totalContrib.Add(row.Contributions)
		row.EndBalance = balance
		row.RealBalance = balance.Div(growthFactor(p.InflationRate, y+1))
		proj.Years = append(proj.Years, row.rounded())

		if age+1 == p.RetirementAge {
			proj.NestEgg = balance
		}
	}

	proj.NestEggReal = proj.NestEgg.Div(growthFactor(p.InflationRate, yearsToRetire)).Round(2)
	proj.TotalContributions = totalContrib.Round(2)
	proj.RequiredNestEgg = requiredNestEgg(incomeAtRetirement, p.InflationRate, drawRate, retiredMonths).Round(2)
	proj.SustainableMonthlyIncome = MonthlyPayment(proj.NestEgg, drawRate, retiredMonths).Round(2)
	proj.NestEgg = proj.NestEgg.Round(2)
	proj.Shortfall = decimal.Max(zero, proj.RequiredNestEgg.Sub(proj.NestEgg))
	proj.OnTrack = proj.Shortfall.IsZero() && proj.DepletionAge == 0
	return proj, nil
}

// requiredNestEgg is the value at retirement of the inflation-indexed
// income stream, discounted at the drawdown rate. Withdrawals step up once
// a year, matching the projection.
func requiredNestEgg(income, inflation, rate decimal.Decimal, months int) decimal.Decimal {
	total := zero
	discount := one
	factor := one.Add(rate)
	payment := income
	yearly := one.Add(inflation.Div(hundred))
	for m := 0; m < months; m++ {
		if m > 0 && m%12 == 0 {
			payment = payment.Mul(yearly)
		}
		discount = discount.Mul(factor).Round(workingPlaces + 6)
		total = total.Add(payment.Div(discount))
	}
	return total
}

func (r YearRow) rounded() YearRow {
	r.StartBalance = r.StartBalance.Round(2)
	r.Contributions = r.Contributions.Round(2)
	r.Growth = r.Growth.Round(2)
	r.Withdrawals = r.Withdrawals.Round(2)
	r.EndBalance = r.EndBalance.Round(2)
	r.RealBalance = r.RealBalance.Round(2)
	return r
}
