// Package alias 用靜態同義詞表把查詢展開成一組相關的搜尋字串。
// 刻意偏向高召回：弱匹配交給下游評分器用較低的 alias 來源加分去懲罰。
package alias

import (
	"strings"

	"nutrition-resolver/internal/core/food/text"
)

type aliasEntry struct {
	canonical string
	aliases   []string
}

// aliasTable 典型詞 → 同義詞清單。鍵與值都參與雙向子字串比對。
// 下游只取前幾個展開結果，所以用固定順序的清單而不是 map。
var aliasTable = []aliasEntry{
	{"pizza", []string{"pizza slice", "cheese pizza", "pepperoni pizza", "margherita"}},
	{"burger", []string{"hamburger", "cheeseburger", "beef burger"}},
	{"hot dog", []string{"hotdog", "frankfurter", "wiener"}},
	{"sandwich", []string{"sub", "hoagie", "panini", "club sandwich"}},
	{"fries", []string{"french fries", "chips", "potato fries"}},
	{"soda", []string{"pop", "soft drink", "cola", "fizzy drink"}},
	{"fried chicken", []string{"chicken tenders", "chicken nuggets", "chicken strips"}},
	{"chicken", []string{"chicken breast", "grilled chicken", "roast chicken"}},
	{"beef", []string{"steak", "ground beef", "roast beef"}},
	{"pork", []string{"pork chop", "pulled pork", "bacon"}},
	{"fish", []string{"salmon", "tuna", "cod", "tilapia"}},
	{"shrimp", []string{"prawns", "prawn"}},
	{"egg", []string{"eggs", "scrambled eggs", "boiled egg", "omelet"}},
	{"rice", []string{"white rice", "brown rice", "fried rice", "steamed rice"}},
	{"noodles", []string{"pasta", "spaghetti", "ramen", "udon"}},
	{"pasta", []string{"spaghetti", "penne", "macaroni", "fettuccine"}},
	{"bread", []string{"toast", "baguette", "bun", "bagel"}},
	{"oatmeal", []string{"oats", "porridge", "rolled oats"}},
	{"cereal", []string{"cornflakes", "granola", "muesli"}},
	{"salad", []string{"green salad", "garden salad", "caesar salad"}},
	{"soup", []string{"broth", "stew", "chowder"}},
	{"sushi", []string{"sushi roll", "maki", "nigiri", "california roll"}},
	{"taco", []string{"tacos", "soft taco", "hard shell taco"}},
	{"burrito", []string{"burrito bowl", "wrap"}},
	{"yogurt", []string{"greek yogurt", "yoghurt"}},
	{"cheese", []string{"cheddar", "mozzarella", "parmesan"}},
	{"milk", []string{"whole milk", "skim milk", "soy milk", "almond milk"}},
	{"coffee", []string{"latte", "cappuccino", "espresso", "americano"}},
	{"tea", []string{"green tea", "black tea", "milk tea"}},
	{"juice", []string{"orange juice", "apple juice"}},
	{"smoothie", []string{"protein shake", "fruit smoothie"}},
	{"apple", []string{"green apple", "red apple"}},
	{"banana", []string{"bananas"}},
	{"potato", []string{"baked potato", "mashed potatoes", "potatoes"}},
	{"avocado", []string{"guacamole"}},
	{"chocolate", []string{"chocolate bar", "dark chocolate", "milk chocolate"}},
	{"cookie", []string{"cookies", "biscuit"}},
	{"cake", []string{"cupcake", "sponge cake", "cheesecake"}},
	{"ice cream", []string{"gelato", "soft serve", "sundae"}},
	{"pancake", []string{"pancakes", "waffles", "crepe"}},
	{"peanut butter", []string{"pb", "nut butter", "almond butter"}},
}

// ExpandAliases 回傳去重後的展開集合，原始查詢永遠排第一。
// 純函式、不回傳錯誤，輸出順序固定。
func ExpandAliases(query string) []string {
	normalized := text.NormalizeQuery(query)
	if normalized == "" {
		return nil
	}

	seen := map[string]bool{normalized: true}
	result := []string{normalized}

	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			result = append(result, term)
		}
	}

	addEntry := func(entry aliasEntry) {
		add(entry.canonical)
		for _, a := range entry.aliases {
			add(a)
		}
	}

	matches := func(target string, entry aliasEntry) bool {
		if containsEither(target, entry.canonical) {
			return true
		}
		for _, a := range entry.aliases {
			if containsEither(target, a) {
				return true
			}
		}
		return false
	}

	// 整句與典型詞/同義詞的雙向子字串比對
	for _, entry := range aliasTable {
		if matches(normalized, entry) {
			addEntry(entry)
		}
	}

	// 長度 ≥4 的單詞再比對一輪，補足整句比不中的情況
	for _, word := range strings.Fields(normalized) {
		if len(word) < 4 {
			continue
		}
		for _, entry := range aliasTable {
			if matches(word, entry) {
				addEntry(entry)
			}
		}
	}

	return result
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
