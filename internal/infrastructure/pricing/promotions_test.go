package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distrisur/internal/core/id"
	"distrisur/internal/core/types"
	"distrisur/internal/domain/sales"
)

func TestRuleEngine_ApplyPromotions(t *testing.T) {
	ctx := context.Background()

	engine := NewRuleEngine([]PromotionRule{
		{Name: "cerveza 10% x6", Category: "cerveza", MinQuantity: 6, Percent: types.MustMoney("10")},
		{Name: "agua 5%", Category: "agua", MinQuantity: 1, Percent: types.MustMoney("5")},
	})

	t.Run("matching lines accumulate", func(t *testing.T) {
		res, err := engine.ApplyPromotions(ctx, []sales.PricedItem{
			{ProductID: id.New(), Quantity: 6, UnitPrice: types.MustMoney("1900.00"), Category: "cerveza"},
			{ProductID: id.New(), Quantity: 2, UnitPrice: types.MustMoney("350.00"), Category: "agua"},
		})
		require.NoError(t, err)

		// 10% of 11400 plus 5% of 700.
		assert.True(t, res.Discount.Equal(types.MustMoney("1175.00")), "got %s", res.Discount)
		assert.Equal(t, []string{"cerveza 10% x6", "agua 5%"}, res.Applied)
	})

	t.Run("quantity below minimum does not fire", func(t *testing.T) {
		res, err := engine.ApplyPromotions(ctx, []sales.PricedItem{
			{ProductID: id.New(), Quantity: 5, UnitPrice: types.MustMoney("1900.00"), Category: "cerveza"},
		})
		require.NoError(t, err)
		assert.True(t, res.Discount.IsZero())
		assert.Empty(t, res.Applied)
	})

	t.Run("empty category matches everything", func(t *testing.T) {
		all := NewRuleEngine([]PromotionRule{
			{Name: "apertura 2%", MinQuantity: 1, Percent: types.MustMoney("2")},
		})
		res, err := all.ApplyPromotions(ctx, []sales.PricedItem{
			{ProductID: id.New(), Quantity: 1, UnitPrice: types.MustMoney("100.00"), Category: "jugo"},
		})
		require.NoError(t, err)
		assert.True(t, res.Discount.Equal(types.MustMoney("2.00")), "got %s", res.Discount)
	})

	t.Run("no rules means no discount", func(t *testing.T) {
		empty := NewRuleEngine(nil)
		res, err := empty.ApplyPromotions(ctx, []sales.PricedItem{
			{ProductID: id.New(), Quantity: 1, UnitPrice: types.MustMoney("100.00")},
		})
		require.NoError(t, err)
		assert.True(t, res.Discount.IsZero())
	})
}
