package portion

import (
	"math"

	"nutrition-resolver/internal/pkg/common"
)

// ToPerPortion 把 per-100g 的營養值換算成單一份量的絕對值。
// 熱量與鈉取整數，巨集營養素取到 0.1。
func ToPerPortion(per100g common.NutritionData, grams float64) common.NutritionData {
	if grams <= 0 {
		return common.NutritionData{}
	}
	factor := grams / 100
	return common.NutritionData{
		Calories: math.Round(per100g.Calories * factor),
		Protein:  roundTenth(per100g.Protein * factor),
		Carbs:    roundTenth(per100g.Carbs * factor),
		Fat:      roundTenth(per100g.Fat * factor),
		Fiber:    roundTenth(per100g.Fiber * factor),
		Sugar:    roundTenth(per100g.Sugar * factor),
		Sodium:   math.Round(per100g.Sodium * factor),
	}
}

// SanitizeEnergy 用 Atwater 係數 (4/4/9) 檢查熱量；偏差超過 8% 時改用計算值
func SanitizeEnergy(n common.NutritionData) common.NutritionData {
	computed := n.Protein*4 + n.Carbs*4 + n.Fat*9
	if computed <= 0 {
		return n
	}
	if n.Calories <= 0 {
		n.Calories = math.Round(computed)
		return n
	}
	diff := math.Abs(n.Calories-computed) / computed
	if diff > 0.08 {
		n.Calories = math.Round(computed)
	}
	return n
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
