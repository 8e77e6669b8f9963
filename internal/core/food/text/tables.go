package text

import "regexp"

// typoTable 常見拼字錯誤的修正表，以字界 regex 整詞替換
var typoTable = map[string]string{
	"chiken":    "chicken",
	"chickin":   "chicken",
	"sandwhich": "sandwich",
	"sandwish":  "sandwich",
	"burguer":   "burger",
	"hamberger": "hamburger",
	"peperoni":  "pepperoni",
	"brocolli":  "broccoli",
	"tomatoe":   "tomato",
	"potatoe":   "potato",
	"bannana":   "banana",
	"yoghurt":   "yogurt",
	"cofee":     "coffee",
	"spagetti":  "spaghetti",
	"avacado":   "avocado",
	"ceasar":    "caesar",
	"omlet":     "omelet",
	"omelette":  "omelet",
	"lettice":   "lettuce",
	"sasuage":   "sausage",
}

// typoPatterns 載入時預編譯，對應 typoTable 的每個鍵
var typoPatterns = func() map[*regexp.Regexp]string {
	m := make(map[*regexp.Regexp]string, len(typoTable))
	for typo, fix := range typoTable {
		m[regexp.MustCompile(`\b`+typo+`\b`)] = fix
	}
	return m
}()

// stopWords 清理查詢時剔除的英文停用詞
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "with": true,
	"and": true, "some": true, "my": true, "i": true, "had": true,
	"ate": true, "for": true, "on": true, "in": true, "to": true,
	"please": true, "want": true, "like": true, "just": true,
}

// 各屬性類別的固定 regex 清單。一律不分大小寫、收集全部不重疊的匹配，
// 類別之間不互斥（"chicken" 同時命中核心名詞與蛋白質）。
var (
	corePatterns = compileAll(
		`\bpizzas?\b`,
		`\bsandwich(es)?\b`,
		`\b(ham)?burgers?\b`,
		`\bhot\s?dogs?\b`,
		`\btacos?\b`,
		`\bburritos?\b`,
		`\bsushi\b`,
		`\brolls?\b`,
		`\bbowls?\b`,
		`\bsalads?\b`,
		`\bsoups?\b`,
		`\b(pasta|spaghetti|noodles?)\b`,
		`\brice\b`,
		`\boatmeal\b`,
		`\beggs?\b`,
		`\b(bread|toast)\b`,
		`\bcookies?\b`,
		`\bfries\b`,
		`\bchicken\b`,
		`\bsteaks?\b`,
		`\bfish\b`,
		`\bwraps?\b`,
		`\bcurry\b`,
		`\bpancakes?\b`,
		`\bsmoothies?\b`,
	)

	prepPatterns = compileAll(
		`\bgrilled\b`,
		`\bdeep[\s-]?fried\b`,
		`\bfried\b`,
		`\bbaked\b`,
		`\broasted\b`,
		`\bsteamed\b`,
		`\bboiled\b`,
		`\braw\b`,
		`\bsmoked\b`,
		`\bsauteed\b`,
		`\bscrambled\b`,
		`\bpoached\b`,
		`\bbreaded\b`,
		`\bcrispy\b`,
	)

	formPatterns = compileAll(
		`\bsliced\b`,
		`\bdiced\b`,
		`\bchopped\b`,
		`\bmashed\b`,
		`\bshredded\b`,
		`\bwhole\b`,
		`\bground\b`,
		`\bminced\b`,
	)

	cuisinePatterns = compileAll(
		`\bitalian\b`,
		`\bmexican\b`,
		`\bchinese\b`,
		`\bjapanese\b`,
		`\bthai\b`,
		`\bindian\b`,
		`\bkorean\b`,
		`\bgreek\b`,
		`\bmediterranean\b`,
		`\bamerican\b`,
		`\bfrench\b`,
		`\bvietnamese\b`,
	)

	proteinPatterns = compileAll(
		`\bchicken\b`,
		`\bbeef\b`,
		`\bpork\b`,
		`\bturkey\b`,
		`\btofu\b`,
		`\bshrimp\b`,
		`\bsalmon\b`,
		`\btuna\b`,
		`\beggs?\b`,
		`\bbacon\b`,
		`\bham\b`,
		`\blamb\b`,
		`\bfish\b`,
	)

	sizePatterns = compileAll(
		`\bextra[\s-]?large\b`,
		`\bxl\b`,
		`\blarge\b`,
		`\bmedium\b`,
		`\bregular\b`,
		`\bsmall\b`,
		`\bmini\b`,
		`\bjumbo\b`,
	)
)

// unitPatterns 單位＋數量的樣板，依宣告順序第一個命中者勝出
var unitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?|half|quarter|one|two|three|four|a|an|½|¼)\s*(slices?|pieces?|bowls?|cups?|rolls?|eggs?|servings?|links?|patties|bars?|scoops?)\b`),
	regexp.MustCompile(`(?i)\b(slices?|bowls?|cups?|rolls?)\s+of\b`),
}

// fractionWords 分數詞與數詞對應的數值
var fractionWords = map[string]float64{
	"half":    0.5,
	"½":       0.5,
	"quarter": 0.25,
	"¼":       0.25,
	"a":       1,
	"an":      1,
	"one":     1,
	"two":     2,
	"three":   3,
	"four":    4,
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}
