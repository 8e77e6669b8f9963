package portion

// classDefault 一個份量類別的預設質量與顯示單位
type classDefault struct {
	Grams float64
	Unit  string
}

// classDefaults 份量類別表。這些數值是領域營養知識，不是推導出來的邏輯。
var classDefaults = map[string]classDefault{
	"pizza_slice":     {Grams: 125, Unit: "1 slice"},
	"hot_dog_link":    {Grams: 75, Unit: "1 link"},
	"burger_single":   {Grams: 220, Unit: "1 burger"},
	"sandwich_whole":  {Grams: 180, Unit: "1 sandwich"},
	"taco_single":     {Grams: 100, Unit: "1 taco"},
	"burrito_whole":   {Grams: 300, Unit: "1 burrito"},
	"california_roll": {Grams: 170, Unit: "1 roll"},
	"sushi_piece":     {Grams: 30, Unit: "1 piece"},
	"teriyaki_bowl":   {Grams: 350, Unit: "1 bowl"},
	"rice_cooked":     {Grams: 150, Unit: "1 cup"},
	"oatmeal_cooked":  {Grams: 240, Unit: "1 cup"},
	"egg_large":       {Grams: 50, Unit: "1 egg"},
	"chicken_breast":  {Grams: 170, Unit: "1 breast"},
	"salad_side":      {Grams: 85, Unit: "1 side salad"},
	"soup_bowl":       {Grams: 245, Unit: "1 bowl"},
	"bread_slice":     {Grams: 40, Unit: "1 slice"},
	"cookie_single":   {Grams: 30, Unit: "1 cookie"},
	"fries_serving":   {Grams: 115, Unit: "1 serving"},
}

// unitToClass 解析出的單位詞對應的份量類別
var unitToClass = map[string]string{
	"slice": "pizza_slice",
	"bowl":  "teriyaki_bowl",
	"roll":  "california_roll",
	"cup":   "rice_cooked",
	"egg":   "egg_large",
	"piece": "sushi_piece",
	"link":  "hot_dog_link",
}

// keywordClass 食物名稱關鍵字 → 份量類別。
// 用有序切片而不是 map：第一個包含命中者勝出，順序即優先序（較特定的在前）。
type keywordClass struct {
	Keyword string
	Class   string
}

var keywordToClass = []keywordClass{
	{"california roll", "california_roll"},
	{"teriyaki", "teriyaki_bowl"},
	{"hot dog", "hot_dog_link"},
	{"hotdog", "hot_dog_link"},
	{"pizza", "pizza_slice"},
	{"burger", "burger_single"},
	{"sandwich", "sandwich_whole"},
	{"taco", "taco_single"},
	{"burrito", "burrito_whole"},
	{"sushi", "sushi_piece"},
	{"oatmeal", "oatmeal_cooked"},
	{"porridge", "oatmeal_cooked"},
	{"rice", "rice_cooked"},
	{"egg", "egg_large"},
	{"chicken breast", "chicken_breast"},
	{"salad", "salad_side"},
	{"soup", "soup_bowl"},
	{"toast", "bread_slice"},
	{"bread", "bread_slice"},
	{"cookie", "cookie_single"},
	{"fries", "fries_serving"},
	{"bowl", "teriyaki_bowl"},
}

// sizeMultiplier 原始文字中的尺寸詞 → 倍率。
// 有序：複合詞（extra large）要先於其子字串（large）檢查。
type sizeMultiplier struct {
	Word       string
	Multiplier float64
}

var sizeMultipliers = []sizeMultiplier{
	{"extra large", 2.0},
	{"extra-large", 2.0},
	{"xl", 2.0},
	{"jumbo", 2.5},
	{"large", 1.5},
	{"regular", 1.0},
	{"medium", 1.0},
	{"small", 0.75},
	{"mini", 0.5},
}

// cupDensities 每杯的換算克數，依食物分類
var cupDensities = map[string]float64{
	"cereals":   55,
	"grains":    45,
	"nuts":      120,
	"dairy":     240,
	"beverages": 240,
}

const defaultCupDensity = 60.0

// mlDensities 每毫升的換算克數，依食物分類
var mlDensities = map[string]float64{
	"oils":  0.92,
	"dairy": 1.03,
}

const defaultMLDensity = 1.0
