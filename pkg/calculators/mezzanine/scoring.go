package mezzanine

import "github.com/iwvelando/finance-calculators/pkg/mathutil"

// riskTable holds the multiplier per option and how strongly it moves the
// score. A multiplier of 1 is neutral.
type riskTable struct {
	weight  float64
	factors map[string]float64
}

func (t riskTable) points(option string) float64 {
	f, ok := t.factors[option]
	if !ok {
		return 0
	}
	return (f - 1) * t.weight
}

var (
	projectTypeRisk = riskTable{20, map[string]float64{
		"residential": 0.8, "commercial": 1.0, "industrial": 0.9, "mixed-use": 1.2,
		"hospitality": 1.3, "healthcare": 0.7, "educational": 0.8, "retail": 1.1,
		"office": 1.0, "warehouse": 0.8, "multifamily": 0.9, "single-family": 0.7,
		"land-development": 1.5,
	}}
	locationRisk = riskTable{15, map[string]float64{
		"urban": 1.0, "suburban": 0.9, "rural": 1.2, "downtown": 1.1, "airport-area": 0.8,
		"university-area": 0.9, "medical-district": 0.7, "business-district": 1.0,
		"residential-area": 0.8, "industrial-zone": 0.9, "coastal": 1.3, "mountain": 1.1, "desert": 1.2,
	}}
	marketConditionRisk = riskTable{20, map[string]float64{
		"strong": 0.8, "stable": 1.0, "weak": 1.3, "recovering": 1.1, "declining": 1.4, "volatile": 1.5,
	}}
	lenderTypeRisk = riskTable{15, map[string]float64{
		"private-equity": 1.2, "hedge-fund": 1.3, "real-estate-fund": 1.1, "insurance-company": 0.9,
		"pension-fund": 0.8, "family-office": 1.0, "commercial-bank": 0.9, "investment-bank": 1.1,
		"credit-union": 0.8, "hard-money-lender": 1.4,
	}}
	experienceRisk = riskTable{20, map[string]float64{
		"novice": 1.4, "experienced": 1.0, "expert": 0.7, "institutional": 0.6,
	}}
	preLeasingRisk = riskTable{15, map[string]float64{
		"none": 1.3, "partial": 1.1, "substantial": 0.9, "fully-leased": 0.7,
	}}
	environmentalRisk = riskTable{15, map[string]float64{
		"none": 0.8, "minor": 1.0, "moderate": 1.2, "significant": 1.5, "unknown": 1.3,
	}}
	zoningRisk = riskTable{15, map[string]float64{
		"none": 0.8, "minor": 1.0, "moderate": 1.2, "significant": 1.4, "pending-approval": 1.3,
	}}
	constructionRisk = riskTable{20, map[string]float64{
		"low": 0.8, "moderate": 1.0, "high": 1.3, "very-high": 1.6,
	}}
	marketRisk = riskTable{20, map[string]float64{
		"low": 0.8, "moderate": 1.0, "high": 1.3, "very-high": 1.6,
	}}
	exitStrategyRisk = riskTable{15, map[string]float64{
		"sale": 1.0, "refinance": 0.9, "hold": 1.1, "ipo": 1.4, "merger": 1.2,
		"joint-venture": 1.1, "1031-exchange": 0.9,
	}}
	seniorApprovalRisk = riskTable{25, map[string]float64{
		"approved": 0.7, "pending": 1.0, "conditional": 1.2, "denied": 1.8, "not-required": 1.0,
	}}
	guaranteeRisk = riskTable{15, map[string]float64{
		"none": 1.3, "partial": 1.0, "full": 0.8, "corporate-only": 0.9,
	}}
)

// RiskScore starts from a neutral 50 and adds each qualitative factor,
// the borrower's credit and the combined leverage. The result is 0..100.
func RiskScore(in Inputs) float64 {
	score := baseRiskScore +
		projectTypeRisk.points(in.ProjectType) +
		locationRisk.points(in.Location) +
		marketConditionRisk.points(in.MarketCondition) +
		lenderTypeRisk.points(in.LenderType) +
		experienceRisk.points(in.BorrowerExperience) +
		preLeasingRisk.points(in.PreLeasing) +
		environmentalRisk.points(in.EnvironmentalIssues) +
		zoningRisk.points(in.ZoningIssues) +
		constructionRisk.points(in.ConstructionRisk) +
		marketRisk.points(in.MarketRisk) +
		exitStrategyRisk.points(in.ExitStrategy) +
		seniorApprovalRisk.points(in.SeniorLenderApproval) +
		guaranteeRisk.points(in.GuaranteeRequired)

	if credit := in.BorrowerCreditScore; credit > 0 {
		switch {
		case credit < 600:
			score += 20
		case credit < 650:
			score += 15
		case credit < 700:
			score += 10
		case credit < 750:
			score += 5
		case credit >= 800:
			score -= 10
		}
	}

	switch lev := leverage(in); {
	case lev > 90:
		score += 25
	case lev > 85:
		score += 20
	case lev > 80:
		score += 15
	case lev > 75:
		score += 10
	case lev < 60:
		score -= 10
	}
	return mathutil.Clamp(score, 0, 100)
}

// FeasibilityScore is the inverse of risk, moved by interest coverage, the
// construction timeline and pre-leasing. The result is 0..100.
func FeasibilityScore(in Inputs, risk, interestCoverage float64) float64 {
	score := 100 - risk

	if in.StabilizedNOI > 0 {
		switch {
		case interestCoverage > 2.0:
			score += 20
		case interestCoverage > 1.5:
			score += 15
		case interestCoverage > 1.25:
			score += 10
		case interestCoverage > 1.1:
			score += 5
		case interestCoverage < 1.0:
			score -= 20
		}
	}

	if months := in.ProjectTimeline; months > 0 {
		switch {
		case months <= 12:
			score += 10
		case months <= 18:
			score += 5
		case months > 36:
			score -= 10
		}
	}

	if pct := in.PreLeasingPercentage; pct > 0 {
		switch {
		case pct >= 80:
			score += 15
		case pct >= 60:
			score += 10
		case pct >= 40:
			score += 5
		case pct < 20:
			score -= 10
		}
	}
	return mathutil.Clamp(score, 0, 100)
}

// ApprovalProbability blends feasibility and risk, then adjusts for senior
// lender consent, credit and leverage. The result is 0..100.
func ApprovalProbability(in Inputs, risk, feasibility float64) float64 {
	p := feasibility*0.6 + (100-risk)*0.4

	switch in.SeniorLenderApproval {
	case "approved":
		p += 20
	case "denied":
		p -= 40
	case "conditional":
		p -= 15
	}

	if credit := in.BorrowerCreditScore; credit > 0 {
		switch {
		case credit >= 750:
			p += 15
		case credit >= 700:
			p += 10
		case credit < 600:
			p -= 25
		}
	}

	switch lev := leverage(in); {
	case lev > 90:
		p -= 30
	case lev > 85:
		p -= 20
	case lev > 80:
		p -= 10
	case lev < 70:
		p += 10
	}
	return mathutil.Clamp(p, 0, 100)
}
