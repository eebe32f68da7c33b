// Package earthquake prices earthquake insurance and scores seismic risk for
// a property.
package earthquake

import (
	"math"
	"slices"
	"strconv"

	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
)

// ID is the registry identifier.
const ID = "earthquake-insurance"

// Seismic risk levels.
const (
	RiskVeryLow  = "Very Low Risk"
	RiskLow      = "Low Risk"
	RiskModerate = "Moderate Risk"
	RiskHigh     = "High Risk"
	RiskVeryHigh = "Very High Risk"
)

const (
	averageLossShare       = 0.6
	baseClaimProbability   = 0.02
	maxClaimProbability    = 25.0
	businessInterruptShare = 0.5
	comparisonYears        = 30
	lossOfUseShare         = 0.2
)

// Inputs describe the structure, its site and the policy requested.
type Inputs struct {
	PropertyValue        float64 `mapstructure:"propertyValue" json:"propertyValue"`
	Location             string  `mapstructure:"location" json:"location"`
	SeismicZone          string  `mapstructure:"seismicZone" json:"seismicZone"`
	BuildingType         string  `mapstructure:"buildingType" json:"buildingType"`
	BuildingAge          int     `mapstructure:"buildingAge" json:"buildingAge"`
	Stories              int     `mapstructure:"stories" json:"stories"`
	SquareFootage        float64 `mapstructure:"squareFootage" json:"squareFootage"`
	FoundationType       string  `mapstructure:"foundationType" json:"foundationType"`
	SoilType             string  `mapstructure:"soilType" json:"soilType"`
	RetrofitStatus       string  `mapstructure:"retrofitStatus" json:"retrofitStatus"`
	CoverageType         string  `mapstructure:"coverageType" json:"coverageType"`
	CoverageLimit        float64 `mapstructure:"coverageLimit" json:"coverageLimit"`
	DeductiblePercentage float64 `mapstructure:"deductiblePercentage" json:"deductiblePercentage"`
	ContentsValue        float64 `mapstructure:"contentsValue" json:"contentsValue"`
	BusinessInterruption bool    `mapstructure:"businessInterruption" json:"businessInterruption"`
	AnnualIncome         float64 `mapstructure:"annualIncome" json:"annualIncome"`
	PolicyType           string  `mapstructure:"policyType" json:"policyType"`
	ClaimsHistory        string  `mapstructure:"claimsHistory" json:"claimsHistory"`
}

// Factor is one multiplier applied to the premium.
type Factor struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Multiplier float64 `json:"multiplier"`
}

// CoverageLine is one insured amount.
type CoverageLine struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Outputs are the premium, risk and cost-benefit figures.
type Outputs struct {
	BaseRate             float64        `json:"baseRate"`
	AnnualPremium        float64        `json:"annualPremium"`
	MonthlyPremium       float64        `json:"monthlyPremium"`
	BusinessInterruption float64        `json:"businessInterruptionPremium"`
	DeductibleAmount     float64        `json:"deductibleAmount"`
	PremiumPerThousand   float64        `json:"premiumPerThousand"`
	PremiumPerSquareFoot float64        `json:"premiumPerSquareFoot"`
	RiskScore            int            `json:"riskScore"`
	SeismicRiskLevel     string         `json:"seismicRiskLevel"`
	ClaimProbability     float64        `json:"claimProbability"`
	ExpectedLoss         float64        `json:"expectedLoss"`
	ThirtyYearPremiums   float64        `json:"thirtyYearPremiums"`
	PotentialLoss        float64        `json:"potentialLoss"`
	BreakEvenProbability float64        `json:"breakEvenProbability"`
	CostEffective        bool           `json:"costEffective"`
	PremiumFactors       []Factor       `json:"premiumFactors"`
	CoverageBreakdown    []CoverageLine `json:"coverageBreakdown"`
	Recommendations      []string       `json:"recommendations"`
	MitigationMeasures   []string       `json:"mitigationMeasures"`
}

var (
	zoneFactors = map[string]float64{"zone-1": 0.5, "zone-2": 1.2, "zone-3": 2.8, "zone-4": 4.5}

	buildingFactors = map[string]float64{
		"wood-frame": 1.0, "steel-frame": 0.7, "concrete": 0.8,
		"masonry": 1.2, "mixed": 1.1, "manufactured": 1.5,
	}

	soilFactors = map[string]float64{"rock": 0.7, "hard-soil": 0.9, "soft-soil": 1.4, "fill": 1.8}

	foundationFactors = map[string]float64{
		"slab": 1.0, "crawlspace": 1.1, "basement": 0.9, "pier-beam": 1.3, "post-tension": 0.8,
	}

	retrofitFactors = map[string]float64{"none": 1.0, "partial": 0.9, "complete": 0.7, "unknown": 1.0}

	coverageFactors = map[string]float64{
		"building-only": 1.0, "contents-only": 0.8, "building-contents": 1.2,
		"loss-of-use": 0.6, "comprehensive": 1.5,
	}

	policyFactors = map[string]float64{"standalone": 1.0, "endorsement": 0.9, "commercial": 1.3}

	claimsFactors = map[string]float64{"none": 1.0, "one": 1.2, "multiple": 1.5}

	// State codes with a location loading; anything else rates as "other".
	locationFactors = map[string]float64{
		"CA": 1.5, "AK": 1.4, "WA": 1.3, "OR": 1.3, "NV": 1.2, "HI": 1.2, "UT": 1.1,
		"ID": 1.0, "MT": 0.9, "CO": 0.9, "MO": 0.9, "WY": 0.8, "AZ": 0.8, "NM": 0.8,
		"OK": 0.8, "AR": 0.8, "TN": 0.8, "TX": 0.7, "KY": 0.7, "SC": 0.7,
		"IL": 0.6, "IN": 0.6, "OH": 0.6, "NC": 0.6, "VA": 0.6, "WV": 0.6, "PA": 0.6,
		"NY": 0.6, "VT": 0.6, "NH": 0.6, "ME": 0.6, "MA": 0.6, "RI": 0.6, "CT": 0.6,
		"NJ": 0.6, "DE": 0.6, "MD": 0.6, "GA": 0.6, "AL": 0.6, "MS": 0.6, "LA": 0.6,
		"FL": 0.5, "other": 0.5,
	}

	// Zone 4 is only plausible in these states.
	highRiskStates = []string{"CA", "AK", "WA", "OR", "NV", "HI", "UT"}

	zonePoints       = map[string]int{"zone-1": 5, "zone-2": 15, "zone-3": 20, "zone-4": 25}
	buildingPoints   = map[string]int{"steel-frame": 5, "concrete": 8, "wood-frame": 12, "mixed": 15, "masonry": 18, "manufactured": 20}
	soilPoints       = map[string]int{"rock": 3, "hard-soil": 8, "soft-soil": 12, "fill": 15}
	foundationPoints = map[string]int{"post-tension": 2, "basement": 4, "slab": 6, "crawlspace": 8, "pier-beam": 10}
	retrofitPoints   = map[string]int{"complete": 0, "partial": 5, "none": 10, "unknown": 10}

	zoneProbability     = map[string]float64{"zone-1": 0.3, "zone-2": 0.7, "zone-3": 1.5, "zone-4": 2.5}
	buildingProbability = map[string]float64{
		"steel-frame": 0.6, "concrete": 0.8, "wood-frame": 1.0, "mixed": 1.2, "masonry": 1.5, "manufactured": 2.0,
	}
	retrofitProbability = map[string]float64{"complete": 0.5, "partial": 0.8, "none": 1.0, "unknown": 1.0}
)

func factor(table map[string]float64, key string, fallback float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return fallback
}

// AgeFactor loads the rate for older construction.
func AgeFactor(age int) float64 {
	switch {
	case age < 10:
		return 0.8
	case age < 25:
		return 1.0
	case age < 50:
		return 1.3
	case age < 75:
		return 1.6
	default:
		return 2.0
	}
}

// DeductibleFactor discounts the rate for higher deductibles.
func DeductibleFactor(pct float64) float64 {
	switch {
	case pct <= 5:
		return 1.4
	case pct <= 10:
		return 1.0
	case pct <= 15:
		return 0.8
	case pct <= 20:
		return 0.7
	default:
		return 0.6
	}
}

// LocationFactor returns the state loading, treating unknown codes as other.
func LocationFactor(state string) float64 {
	return factor(locationFactors, state, locationFactors["other"])
}

// BaseRate is the premium per $1,000 of coverage before policy factors.
func BaseRate(in Inputs) float64 {
	return factor(zoneFactors, in.SeismicZone, 1) *
		factor(buildingFactors, in.BuildingType, 1) *
		AgeFactor(in.BuildingAge) *
		factor(soilFactors, in.SoilType, 1) *
		factor(foundationFactors, in.FoundationType, 1) *
		factor(retrofitFactors, in.RetrofitStatus, 1) *
		LocationFactor(in.Location)
}

// RiskScore sums structural and site risk points, capped at 100.
func RiskScore(in Inputs) int {
	score := zonePoints[in.SeismicZone] + buildingPoints[in.BuildingType] +
		soilPoints[in.SoilType] + foundationPoints[in.FoundationType]

	switch age := in.BuildingAge; {
	case age < 10:
		score += 5
	case age < 25:
		score += 10
	case age < 50:
		score += 15
	case age < 75:
		score += 18
	default:
		score += 20
	}

	if p, ok := retrofitPoints[in.RetrofitStatus]; ok {
		score += p
	} else {
		score += retrofitPoints["unknown"]
	}
	return min(score, 100)
}

// CostEffective reports whether the claim probability strictly exceeds the
// break-even probability. Coverage that only breaks even is not cost effective.
func CostEffective(claimProbability, breakEvenProbability float64) bool {
	return claimProbability > breakEvenProbability
}

// RiskLevel grades a risk score.
func RiskLevel(score int) string {
	switch {
	case score < 20:
		return RiskVeryLow
	case score < 40:
		return RiskLow
	case score < 60:
		return RiskModerate
	case score < 80:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// ClaimProbability is the chance of a claim over 30 years, in percent.
func ClaimProbability(in Inputs) float64 {
	p := baseClaimProbability *
		factor(zoneProbability, in.SeismicZone, 1) *
		factor(buildingProbability, in.BuildingType, 1) *
		factor(retrofitProbability, in.RetrofitStatus, 1)

	switch age := in.BuildingAge; {
	case age < 10:
		p *= 0.7
	case age < 25:
		// unadjusted
	case age < 50:
		p *= 1.3
	case age < 75:
		p *= 1.6
	default:
		p *= 2.0
	}
	return math.Min(p*constants.PercentageMultiplier, maxClaimProbability)
}

// Calculate prices the policy.
func Calculate(in Inputs) Outputs {
	var out Outputs

	base := BaseRate(in)
	coverage := factor(coverageFactors, in.CoverageType, 1)
	deductible := DeductibleFactor(in.DeductiblePercentage)
	policy := factor(policyFactors, in.PolicyType, 1)
	claims := factor(claimsFactors, in.ClaimsHistory, 1)

	premium := in.CoverageLimit / constants.PerThousand * base * coverage * deductible * policy * claims
	if in.BusinessInterruption {
		bi := in.AnnualIncome / constants.PerThousand * base * businessInterruptShare
		out.BusinessInterruption = mathutil.Round(bi)
		premium += bi
	}

	out.BaseRate = mathutil.RoundTo(base, 4)
	out.AnnualPremium = mathutil.Round(premium)
	out.MonthlyPremium = mathutil.Round(premium / constants.MonthsPerYear)
	out.DeductibleAmount = mathutil.Round(mathutil.ApplyPercentage(in.CoverageLimit, in.DeductiblePercentage))
	out.PremiumPerThousand = mathutil.Round(mathutil.SafeDivide(premium, in.CoverageLimit/constants.PerThousand))
	out.PremiumPerSquareFoot = mathutil.Round(mathutil.SafeDivide(premium, in.SquareFootage))

	out.RiskScore = RiskScore(in)
	out.SeismicRiskLevel = RiskLevel(out.RiskScore)

	probability := ClaimProbability(in)
	out.ClaimProbability = mathutil.RoundTo(probability, 1)
	out.ExpectedLoss = mathutil.Round(in.PropertyValue * probability / constants.PercentageMultiplier * averageLossShare)

	thirty := premium * comparisonYears
	potential := in.PropertyValue * averageLossShare
	breakEven := mathutil.CalculatePercentage(thirty, potential)
	out.ThirtyYearPremiums = mathutil.Round(thirty)
	out.PotentialLoss = mathutil.Round(potential)
	out.BreakEvenProbability = mathutil.RoundTo(breakEven, 1)
	out.CostEffective = CostEffective(probability, breakEven)

	out.PremiumFactors = []Factor{
		{Name: "Seismic Zone", Value: in.SeismicZone, Multiplier: factor(zoneFactors, in.SeismicZone, 1)},
		{Name: "Building Type", Value: in.BuildingType, Multiplier: factor(buildingFactors, in.BuildingType, 1)},
		{Name: "Building Age", Value: strconv.Itoa(in.BuildingAge) + " years", Multiplier: AgeFactor(in.BuildingAge)},
		{Name: "Soil Type", Value: in.SoilType, Multiplier: factor(soilFactors, in.SoilType, 1)},
		{Name: "Foundation", Value: in.FoundationType, Multiplier: factor(foundationFactors, in.FoundationType, 1)},
		{Name: "Retrofit", Value: in.RetrofitStatus, Multiplier: factor(retrofitFactors, in.RetrofitStatus, 1)},
		{Name: "Location", Value: in.Location, Multiplier: LocationFactor(in.Location)},
		{Name: "Coverage", Value: in.CoverageType, Multiplier: coverage},
		{Name: "Deductible", Value: strconv.FormatFloat(in.DeductiblePercentage, 'f', -1, 64) + "%", Multiplier: deductible},
		{Name: "Policy Type", Value: in.PolicyType, Multiplier: policy},
		{Name: "Claims History", Value: in.ClaimsHistory, Multiplier: claims},
	}
	out.CoverageBreakdown = coverageBreakdown(in)
	out.Recommendations = recommendations(in, out)
	out.MitigationMeasures = mitigation(in)
	return out
}

func coverageBreakdown(in Inputs) []CoverageLine {
	var lines []CoverageLine
	switch in.CoverageType {
	case "building-only":
		lines = append(lines, CoverageLine{"Building", in.CoverageLimit})
	case "contents-only":
		lines = append(lines, CoverageLine{"Contents", in.ContentsValue})
	case "building-contents":
		lines = append(lines, CoverageLine{"Building", in.CoverageLimit}, CoverageLine{"Contents", in.ContentsValue})
	case "loss-of-use":
		lines = append(lines, CoverageLine{"Loss of Use", mathutil.Round(in.CoverageLimit * lossOfUseShare)})
	case "comprehensive":
		lines = append(lines,
			CoverageLine{"Building", in.CoverageLimit},
			CoverageLine{"Contents", in.ContentsValue},
			CoverageLine{"Loss of Use", mathutil.Round(in.CoverageLimit * lossOfUseShare)},
		)
	}
	if in.BusinessInterruption && in.AnnualIncome > 0 {
		lines = append(lines, CoverageLine{"Business Interruption (annual)", in.AnnualIncome})
	}
	return lines
}

func recommendations(in Inputs, out Outputs) []string {
	var recs []string
	switch {
	case out.RiskScore >= 70:
		recs = append(recs,
			"Earthquake coverage is strongly recommended for this high risk property",
			"Review building code compliance and consider higher coverage limits",
		)
	case out.RiskScore >= 50:
		recs = append(recs,
			"Earthquake coverage is recommended; evaluate retrofit options to reduce risk",
		)
	default:
		recs = append(recs, "Earthquake coverage is optional; standard precautions apply")
	}

	if in.RetrofitStatus == "none" && in.BuildingAge > 25 {
		recs = append(recs, "A seismic retrofit can reduce premiums by 20-40% on older buildings; consult a structural engineer")
	}
	if in.SeismicZone == "zone-3" || in.SeismicZone == "zone-4" {
		recs = append(recs, "Keep an emergency fund sized to the deductible of "+format.Currency(out.DeductibleAmount))
	}
	if in.DeductiblePercentage <= 5 {
		recs = append(recs, "Raising the deductible above 5% lowers the premium substantially")
	}
	if in.CoverageLimit < in.PropertyValue*0.8 {
		recs = append(recs, "Coverage limit is below 80% of property value; consider increasing it")
	}
	if !out.CostEffective {
		recs = append(recs, "Premiums exceed the expected loss at this claim probability; consider a higher deductible or self-insuring")
	}
	return recs
}

func mitigation(in Inputs) []string {
	var steps []string
	if in.FoundationType == "crawlspace" || in.FoundationType == "pier-beam" {
		steps = append(steps, "Bolt the frame to the foundation and brace cripple walls")
	}
	if in.BuildingType == "masonry" {
		steps = append(steps, "Reinforce unreinforced masonry walls and chimneys")
	}
	if in.SoilType == "soft-soil" || in.SoilType == "fill" {
		steps = append(steps, "Commission a geotechnical assessment for liquefaction risk")
	}
	if in.RetrofitStatus == "none" || in.RetrofitStatus == "unknown" {
		steps = append(steps, "Obtain a seismic retrofit inspection")
	}
	return append(steps,
		"Strap water heaters and heavy appliances",
		"Install an automatic gas shutoff valve",
	)
}

// ZoneMatchesLocation reports whether a zone 4 rating is plausible for the state.
func ZoneMatchesLocation(zone, state string) bool {
	return zone != "zone-4" || slices.Contains(highRiskStates, state)
}
