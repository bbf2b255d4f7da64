package promo

import (
	"sort"

	"github.com/shopspring/decimal"
)

// priceRun 同一单价的连续件数
type priceRun struct {
	price decimal.Decimal
	qty   int64
}

// bundleDiscount 计算组合价优惠
//
// 合格商品按单价升序排列，每 MinItems 件为一组；
// 每个完整组贡献 max(0, 组内单价之和 - BundlePrice)，不足一组的余量保持原价。
// 合格件数不足 MinItems 时 ok=false。
// 按 (单价, 件数) 分段计算，不逐件展开。
func bundleDiscount(items []CartItem, bundle Bundle, eligible []uint) (decimal.Decimal, int, bool) {
	runs, count := qualifyingRuns(items, eligible)
	size := int64(bundle.MinItems)
	if size <= 0 || count < size {
		return decimal.Zero, 0, false
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].price.LessThan(runs[j].price)
	})

	total := decimal.Zero
	var bundles int64
	addChunk := func(sum decimal.Decimal, times int64) {
		if saving := sum.Sub(bundle.BundlePrice); saving.IsPositive() {
			total = total.Add(saving.Mul(decimal.NewFromInt(times)))
		}
		bundles += times
	}

	partial := decimal.Zero
	var filled int64
	for _, run := range runs {
		qty := run.qty
		if filled > 0 {
			take := min(qty, size-filled)
			partial = partial.Add(run.price.Mul(decimal.NewFromInt(take)))
			filled += take
			qty -= take
			if filled < size {
				continue
			}
			addChunk(partial, 1)
			partial, filled = decimal.Zero, 0
		}
		if full := qty / size; full > 0 {
			addChunk(run.price.Mul(decimal.NewFromInt(size)), full)
			qty -= full * size
		}
		if qty > 0 {
			partial = run.price.Mul(decimal.NewFromInt(qty))
			filled = qty
		}
	}
	return total, int(bundles), true
}

// qualifyingRuns 汇总合格商品的单价与件数；eligible 为空时全部商品合格
func qualifyingRuns(items []CartItem, eligible []uint) ([]priceRun, int64) {
	var allowed map[uint]struct{}
	if len(eligible) > 0 {
		allowed = make(map[uint]struct{}, len(eligible))
		for _, id := range eligible {
			allowed[id] = struct{}{}
		}
	}

	runs := make([]priceRun, 0, len(items))
	var count int64
	for _, item := range items {
		if allowed != nil {
			if _, ok := allowed[item.ProductID]; !ok {
				continue
			}
		}
		if item.Quantity <= 0 {
			continue
		}
		runs = append(runs, priceRun{price: item.UnitPrice, qty: int64(item.Quantity)})
		count += int64(item.Quantity)
	}
	return runs, count
}
