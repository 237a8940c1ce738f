package commissions

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexpro/backoffice/pkg/apperrors"
	"github.com/lexpro/backoffice/pkg/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pct(p string) Rule   { return Rule{Type: models.CommissionPercentage, Percentage: d(p)} }
func fixed(a string) Rule { return Rule{Type: models.CommissionFixed, Amount: d(a)} }

func TestComputeAmount(t *testing.T) {
	tests := []struct {
		name  string
		total string
		rule  Rule
		want  string
	}{
		{"percentage", "10000", pct("20"), "2000"},
		{"fixed ignores total", "10000", fixed("500"), "500"},
		{"zero total", "0", pct("35"), "0"},
		{"half to even down", "0.25", pct("10"), "0.02"},  // 0.025
		{"half to even up", "0.35", pct("10"), "0.04"},    // 0.035
		{"fractional pct", "1234.56", pct("12.5"), "154.32"},
		{"negative total clamps", "-100", pct("10"), "0"},
		{"negative fixed clamps", "10", fixed("-5"), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAmount(d(tt.total), tt.rule)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestScenario_TwoLawyers(t *testing.T) {
	as := []Assignment{
		{LawyerID: uuid.New(), Rule: pct("20")},
		{LawyerID: uuid.New(), Rule: fixed("500")},
	}
	as = Recompute(d("10000"), as)

	assert.True(t, as[0].Amount.Equal(d("2000")))
	assert.True(t, as[1].Amount.Equal(d("500")))
	assert.True(t, TotalCommission(as).Equal(d("2500")))
	// net remainder = contracted - commission
	assert.True(t, d("10000").Sub(TotalCommission(as)).Equal(d("7500")))
}

func TestSnapshotIsNotRederivedWithoutRecompute(t *testing.T) {
	as := Recompute(d("10000"), []Assignment{{LawyerID: uuid.New(), Rule: pct("10")}})
	require.True(t, as[0].Amount.Equal(d("1000")))

	// Total changes elsewhere; the stored amount does not follow on its own.
	stored := as[0]
	assert.True(t, stored.Amount.Equal(d("1000")))

	again := Recompute(d("20000"), as)
	assert.True(t, again[0].Amount.Equal(d("2000")))
	assert.True(t, as[0].Amount.Equal(d("1000")), "input slice must not be modified")
}

func TestRecompute_KeepsPaidAndFixed(t *testing.T) {
	as := []Assignment{
		{LawyerID: uuid.New(), Rule: pct("10"), Amount: d("100"), Paid: true},
		{LawyerID: uuid.New(), Rule: fixed("75"), Amount: d("75")},
		{LawyerID: uuid.New(), Rule: pct("10"), Amount: d("100")},
	}
	out := Recompute(d("5000"), as)
	assert.True(t, out[0].Amount.Equal(d("100")))
	assert.True(t, out[1].Amount.Equal(d("75")))
	assert.True(t, out[2].Amount.Equal(d("500")))
}

func TestValidateAssignmentSet(t *testing.T) {
	a, b, gone := uuid.New(), uuid.New(), uuid.New()
	active := map[uuid.UUID]bool{a: true, b: true}

	t.Run("empty", func(t *testing.T) {
		err := ValidateAssignmentSet(nil, active, nil)
		var ve *apperrors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []string{"At least one lawyer is required"}, ve.Fields["lawyers"])
	})

	t.Run("valid", func(t *testing.T) {
		err := ValidateAssignmentSet([]Assignment{{LawyerID: a, Rule: pct("20")}, {LawyerID: b, Rule: fixed("500")}}, active, nil)
		assert.NoError(t, err)
	})

	t.Run("duplicate and missing", func(t *testing.T) {
		err := ValidateAssignmentSet([]Assignment{
			{LawyerID: a, Rule: pct("20")},
			{LawyerID: a, Rule: pct("10")},
			{Rule: pct("5")},
		}, active, nil)
		var ve *apperrors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields["lawyers[1].lawyer_id"], "Lawyer is already assigned to this case")
		assert.Contains(t, ve.Fields["lawyers[2].lawyer_id"], "This field is required")
	})

	t.Run("inactive only allowed when already assigned", func(t *testing.T) {
		err := ValidateAssignmentSet([]Assignment{{LawyerID: gone, Rule: pct("20")}}, active, nil)
		var ve *apperrors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields["lawyers[0].lawyer_id"], "Lawyer is not active")

		err = ValidateAssignmentSet([]Assignment{{LawyerID: gone, Rule: pct("20")}}, active, map[uuid.UUID]bool{gone: true})
		assert.NoError(t, err)
	})

	t.Run("bad rules", func(t *testing.T) {
		err := ValidateAssignmentSet([]Assignment{
			{LawyerID: a, Rule: pct("101")},
			{LawyerID: b, Rule: Rule{Type: "bonus"}},
		}, active, nil)
		var ve *apperrors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "lawyers[0].commission_percentage")
		assert.Contains(t, ve.Fields, "lawyers[1].commission_type")
	})
}

func TestModelRoundTrip(t *testing.T) {
	caseID := uuid.New()
	a := Assignment{LawyerID: uuid.New(), Rule: fixed("500"), Amount: d("500")}
	row := a.ToModel(caseID)
	assert.Equal(t, caseID, row.CaseID)
	assert.True(t, row.CommissionPercentage.IsZero())

	back := FromModel(row)
	assert.Equal(t, a.LawyerID, back.LawyerID)
	assert.True(t, back.Rule.Amount.Equal(d("500")))
	assert.True(t, ComputeAmount(d("99999"), back.Rule).Equal(d("500")))
}
