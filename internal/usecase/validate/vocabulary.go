package validate

// prohibitedKeywords is the content-policy blocklist. A query term containing
// any of these as a substring is flagged and must never reach scoring.
var prohibitedKeywords = []string{
	"cocaine", "heroin", "methamphetamine", "ecstasy", "lsd", "fentanyl", "amphetamine", "opium", "crack",
	"pistol", "handgun", "firearm", "grenade", "explosives", "dynamite", "bomb", "incendiary", "c4", "detonator",
	"silencer", "smg", "rifle", "ak47", "uzi", "glock", "sniper", "shotgun", "machete", "switchblade",
	"dirk", "butterfly", "knuckleduster", "brass", "cyanide", "arsenic", "ricin", "strychnine", "sarin",
	"mustard", "nerve", "counterfeit", "fake", "forged", "stolen", "skimmer", "trafficking", "contraband",
	"cartel", "narcotics", "cannabis", "marijuana", "weed", "hashish", "opiate", "barbiturate",
	"meth", "lab", "drug", "blackmail", "extortion", "bribery", "espionage", "spy", "malware",
	"virus", "cyberattack", "ransomware", "keylogger", "trojan", "worm", "sexting", "pornography",
	"revenge", "voyeurism", "adoption", "organ", "body", "human", "abuse", "child", "underage",
	"sex", "pedo", "incest", "rape", "hitman", "assassin", "torture", "execution", "contract",
	"money", "laundering", "paraphernalia", "needle", "syringe", "bong", "pipe",
	"oxycodone", "hydrocodone", "vicodin", "percocet", "adderall", "xanax",
	"revolver", "slave", "dmt", "molotov",
}

// synonymMap resolves colloquial vocabulary to canonical catalog categories.
var synonymMap = map[string][]string{
	"Movie":       {"film", "cinema", "action", "sci-fi", "drama", "documentary", "thriller", "comedy", "horror", "romance", "animation", "biopic"},
	"Book":        {"novel", "literature", "classic", "fiction", "non-fiction", "biography", "textbook", "manga", "graphic novel", "manual", "guide", "storybook"},
	"Clothing":    {"tshirt", "hoodie", "jacket", "jeans", "pants", "sweater", "dress", "skirt", "blouse", "suit", "outerwear", "top", "bottom", "footwear"},
	"Electronics": {"gadget", "device", "smartphone", "laptop", "tablet", "camera", "headphones", "speaker", "monitor", "console", "tv", "earbuds"},
	"Furniture":   {"chair", "table", "sofa", "couch", "bed", "desk", "bookshelf", "cabinet", "dining set", "stool", "recliner", "bench", "wardrobe"},
	"Food":        {"snack", "organic", "gluten-free", "grocery", "fruit", "vegetable", "beverage", "meat", "dairy", "grain", "seafood", "sauce", "spice"},
}

// clothingCorrections maps colloquial garment names onto the base terms used
// in the clothing catalog.
var clothingCorrections = map[string][]string{
	"tshirt":     {"t-shirt", "tee shirt", "tee-shirt", "t shirt", "teeshirt"},
	"shoes":      {"sneakers", "trainers", "loafers", "tennis shoes", "athletic shoes", "sneaker", "footwear", "boots"},
	"sweatshirt": {"hoodie", "hoody", "crewneck", "sweater shirt", "jumper", "pullover"},
	"sweatpants": {"jogging pants", "joggers", "track pants", "jog pants", "warm-up pants", "jog", "lounge pants"},
	"jeans":      {"denims", "denim jeans", "blue jeans", "skinny jeans", "flared jeans", "straight jeans", "bootcut jeans"},
	"pants":      {"trousers", "slacks", "chinos", "khakis", "dress pants", "casual pants", "cargo pants", "work pants"},
	"beanie":     {"knit cap", "beenie", "winter hat", "ski hat", "watch cap"},
	"sweater":    {"jumper", "pullover", "cardy", "cardi", "cardigan"},
	"puffer":     {"puffer jacket", "down jacket", "quilted jacket", "puffy coat"},
	"bomber":     {"bomber jacket", "flight jacket", "aviator jacket"},
	"pajamas":    {"pjs", "pj's", "nightwear", "sleepwear", "jammies", "bedclothes", "nightdress", "loungewear"},
	"blazer":     {"suit jacket", "sports coat", "formal jacket", "business jacket"},
	"sweatsuit":  {"tracksuit", "athletic suit", "track suit", "warm-up suit", "training suit"},
	"tank":       {"tank top", "singlet", "vest top", "athletic tank", "workout tank", "sleeveless top"},
	"heels":      {"high heels", "stiletto", "pumps", "kitten heels", "platform heels", "wedge heels"},
	"boots":      {"ankle boots", "combat boots", "work boots", "hiking boots", "riding boots", "chelsea boots"},
	"parka":      {"parka jacket", "winter coat", "fur-lined parka", "heavy parka"},
	"sandals":    {"sandles", "flip flop", "flip-flops", "open-toe shoes", "thongs", "beach sandals", "slides"},
	"button-up":  {"button up", "button-down", "dress shirt", "oxford shirt", "formal shirt", "collared shirt", "button front shirt"},
	"cargo":      {"cargo pants", "utility pants", "multi-pocket pants"},
	"romper":     {"romper suit", "playsuit", "one-piece suit", "jumpsuit", "shortall"},
	"pinafore":   {"pinafore dress", "apron dress", "smock dress"},
	"overalls":   {"dungarees", "coveralls", "bib overalls", "mechanic overalls", "utility overalls"},
	"swimsuit":   {"swim trunks", "bathing suit", "swimming trunks", "board shorts", "one-piece", "two-piece", "bikini"},
	"leggings":   {"yoga pants", "tights", "workout pants", "compression pants", "sports leggings", "activewear"},
	"vest":       {"waistcoat", "gilet", "sleeveless jacket", "formal vest", "puffer vest"},
	"scarf":      {"wrap", "shawl", "neck scarf", "fashion scarf", "muffler"},
	"gloves":     {"mittens", "hand warmers", "winter gloves", "fingerless gloves", "driving gloves"},
}

// VocabularyWords returns every word in the synonym and clothing tables, used
// to train the spell-correction model alongside catalog text.
func VocabularyWords() []string {
	var words []string
	for category, synonyms := range synonymMap {
		words = append(words, category)
		words = append(words, synonyms...)
	}
	for base, synonyms := range clothingCorrections {
		words = append(words, base)
		words = append(words, synonyms...)
	}
	return words
}
