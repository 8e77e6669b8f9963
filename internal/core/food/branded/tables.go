package branded

import "nutrition-resolver/internal/pkg/common"

// categoryNutrition 分類 → 典型單份營養值的後援表。
// 這些是領域資料：來自常見品項的平均值，不是算出來的。
var categoryNutrition = map[string]common.NutritionData{
	"burger":        {Calories: 550, Protein: 25, Carbs: 40, Fat: 29, Sodium: 1000},
	"pizza":         {Calories: 285, Protein: 12, Carbs: 36, Fat: 10, Sodium: 640},
	"fries":         {Calories: 365, Protein: 4, Carbs: 48, Fat: 17, Sodium: 246},
	"taco":          {Calories: 210, Protein: 9, Carbs: 21, Fat: 10, Sodium: 360},
	"burrito":       {Calories: 450, Protein: 21, Carbs: 58, Fat: 16, Sodium: 960},
	"sandwich":      {Calories: 350, Protein: 15, Carbs: 40, Fat: 14, Sodium: 700},
	"hot dog":       {Calories: 290, Protein: 10, Carbs: 24, Fat: 17, Sodium: 810},
	"fried chicken": {Calories: 320, Protein: 19, Carbs: 11, Fat: 22, Sodium: 540},
	"nuggets":       {Calories: 270, Protein: 14, Carbs: 16, Fat: 17, Sodium: 540},
	"salad":         {Calories: 150, Protein: 5, Carbs: 12, Fat: 9, Sodium: 300},
	"soup":          {Calories: 120, Protein: 6, Carbs: 15, Fat: 4, Sodium: 700},
	"pasta":         {Calories: 310, Protein: 12, Carbs: 43, Fat: 9, Sodium: 480},
	"rice":          {Calories: 205, Protein: 4, Carbs: 45, Fat: 0.4, Sodium: 2},
	"sushi":         {Calories: 255, Protein: 9, Carbs: 38, Fat: 7, Sodium: 430},
	"noodles":       {Calories: 380, Protein: 14, Carbs: 52, Fat: 12, Sodium: 890},
	"cereal":        {Calories: 150, Protein: 3, Carbs: 33, Fat: 1.5, Sodium: 200},
	"yogurt":        {Calories: 140, Protein: 8, Carbs: 16, Fat: 5, Sodium: 65},
	"smoothie":      {Calories: 180, Protein: 4, Carbs: 38, Fat: 2, Sodium: 60},
	"cookie":        {Calories: 160, Protein: 2, Carbs: 21, Fat: 8, Sodium: 110},
	"chocolate":     {Calories: 230, Protein: 3, Carbs: 25, Fat: 13, Sodium: 35},
	"ice cream":     {Calories: 270, Protein: 5, Carbs: 31, Fat: 14, Sodium: 100},
	"donut":         {Calories: 250, Protein: 4, Carbs: 31, Fat: 12, Sodium: 200},
	"chips":         {Calories: 150, Protein: 2, Carbs: 15, Fat: 10, Sodium: 170},
}

// brandKeywords 名稱中出現的關鍵字 → 連鎖品牌。
// 有序切片：較長、較特定的關鍵字先比對。
type brandKeyword struct {
	Keyword string
	Brand   string
}

var brandKeywords = []brandKeyword{
	{"mcdonald", "mcdonalds"},
	{"burger king", "burger king"},
	{"wendy", "wendys"},
	{"taco bell", "taco bell"},
	{"pizza hut", "pizza hut"},
	{"domino", "dominos"},
	{"kfc", "kfc"},
	{"subway", "subway"},
	{"starbucks", "starbucks"},
	{"chipotle", "chipotle"},
	{"dairy queen", "dairy queen"},
}

// brandSynonym 知名單品 → 展開後的完整搜尋字串。
// 有序：變體生成會截斷，順序必須固定。
type brandSynonym struct {
	Item     string
	Expanded string
}

var brandSynonyms = []brandSynonym{
	{"whopper", "burger king whopper"},
	{"big mac", "mcdonalds big mac"},
	{"mcnuggets", "mcdonalds chicken mcnuggets"},
	{"mcflurry", "mcdonalds mcflurry"},
	{"quarter pounder", "mcdonalds quarter pounder"},
	{"frosty", "wendys frosty"},
	{"baconator", "wendys baconator"},
	{"blizzard", "dairy queen blizzard"},
	{"footlong", "subway footlong"},
	{"crunchwrap", "taco bell crunchwrap"},
	{"chalupa", "taco bell chalupa"},
	{"frappuccino", "starbucks frappuccino"},
}
