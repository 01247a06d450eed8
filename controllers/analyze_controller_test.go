package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeDeal(t *testing.T) {
	t.Run("Seventy percent rule", func(t *testing.T) {
		analysis := AnalyzeDeal(AnalyzeRequest{
			AskingPrice: 100000,
			ARV:         200000,
			RepairCost:  30000,
		})

		// 200000 * 0.7 - 30000
		assert.Equal(t, 110000, analysis.MaxAllowableOffer)
		assert.True(t, analysis.MeetsSeventyRule)
	})

	t.Run("Asking above MAO fails the rule", func(t *testing.T) {
		analysis := AnalyzeDeal(AnalyzeRequest{
			AskingPrice: 150000,
			ARV:         200000,
			RepairCost:  30000,
		})

		assert.False(t, analysis.MeetsSeventyRule)
	})

	t.Run("Equity at purchase", func(t *testing.T) {
		analysis := AnalyzeDeal(AnalyzeRequest{
			AskingPrice: 120000,
			ARV:         200000,
			RepairCost:  25000,
		})

		assert.Equal(t, 55000, analysis.EquityAtPurchase)
	})

	t.Run("Amortized payment with explicit terms", func(t *testing.T) {
		analysis := AnalyzeDeal(AnalyzeRequest{
			AskingPrice:    100000,
			ARV:            150000,
			DownPaymentPct: 20,
			InterestRate:   6,
		})

		// 80000 principal at 6% over 360 months is about $480/mo
		assert.InDelta(t, 480, analysis.MonthlyPayment, 1)
	})

	t.Run("Defaults applied when terms are omitted", func(t *testing.T) {
		withDefaults := AnalyzeDeal(AnalyzeRequest{AskingPrice: 100000, ARV: 150000})
		explicit := AnalyzeDeal(AnalyzeRequest{
			AskingPrice:    100000,
			ARV:            150000,
			DownPaymentPct: 20,
			InterestRate:   7,
		})

		assert.Equal(t, explicit, withDefaults)
	})

	t.Run("Cash flow and cash on cash", func(t *testing.T) {
		analysis := AnalyzeDeal(AnalyzeRequest{
			AskingPrice:     100000,
			ARV:             150000,
			RepairCost:      10000,
			MonthlyRent:     1500,
			MonthlyExpenses: 400,
			DownPaymentPct:  20,
			InterestRate:    6,
		})

		// rent - expenses - payment: 1500 - 400 - ~480
		assert.InDelta(t, 620, analysis.MonthlyCashFlow, 2)
		// annual cash flow over 30000 invested
		assert.InDelta(t, 24.8, analysis.CashOnCashReturn, 0.5)
	})

	t.Run("Zero cash invested reports zero return", func(t *testing.T) {
		analysis := AnalyzeDeal(AnalyzeRequest{ARV: 100000})
		assert.Zero(t, analysis.CashOnCashReturn)
	})
}
