package lessons

import "github.com/abhisek/nibble/internal/quiz"

var catalog = []Lesson{
	{ID: "1", Title: "Nutrition Basics", Subtitle: "Macronutrients and balanced plates", Label: "Nutrition"},
	{ID: "2", Title: "Reading Labels", Subtitle: "Scanning nutrition panels and ingredient lists", Label: "Labels"},
	{ID: "3", Title: "Food Safety", Subtitle: "Cooking temperatures, storage and hygiene", Label: "Safety"},
	{ID: "4", Title: "Budgeting", Subtitle: "Eating well while spending less", Label: "Budget"},
	{ID: "5", Title: "Misleading Claims", Subtitle: "What front-of-pack marketing really means", Label: "Claims"},
	{ID: "6", Title: "Labeling Rules", Subtitle: "Ingredient order, allergens and nutrition panels", Label: "Rules"},
	{ID: "7", Title: "Serving Sizes", Subtitle: "Servings versus packages", Label: "Portions"},
	{ID: "8", Title: "Sugar & Sweeteners", Subtitle: "Added sugars and healthier swaps", Label: "Sugar"},
}

// Catalog returns every lesson in display order.
func Catalog() []Lesson {
	out := make([]Lesson, len(catalog))
	copy(out, catalog)
	return out
}

// LookupLesson finds a catalog entry by id.
func LookupLesson(id string) (Lesson, bool) {
	for _, l := range catalog {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

// NextLesson returns the first catalog lesson not in completed.
func NextLesson(completed []string) (Lesson, bool) {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}
	for _, l := range catalog {
		if !done[l.ID] {
			return l, true
		}
	}
	return Lesson{}, false
}

// BackupContent returns the static content shipped for a catalog lesson.
func BackupContent(id string) (LessonContent, bool) {
	c, ok := backups[id]
	if !ok {
		return LessonContent{}, false
	}
	// Hand out copies so callers cannot mutate the table.
	c.Sections = append([]Section(nil), c.Sections...)
	c.Notes = append([]string(nil), c.Notes...)
	qs := make([]quiz.Question, len(c.Quiz))
	for i, q := range c.Quiz {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}
	c.Quiz = qs
	return c, true
}

func q(question string, options ...string) quiz.Question {
	return quiz.Question{Question: question, Options: options, CorrectIndex: 0}
}

var backups = map[string]LessonContent{
	"1": {
		Title:    "Nutrition Basics",
		Overview: "Core ideas about macronutrients, micronutrients, and practical tips to build balanced meals you can keep doing.",
		Sections: []Section{
			{Heading: "Macronutrients", Body: "Protein for repair and satiety, carbohydrates for energy (choose fibre-rich carbs), and fats for cell health and hormones."},
			{Heading: "Balanced plates", Body: "Aim to include a protein, vegetables, and a wholegrain or starchy vegetable at most meals. Portion sizes depend on your needs."},
		},
		Quiz: []quiz.Question{
			q("Which macronutrient primarily repairs tissue?", "Protein", "Carbohydrate", "Fat", "Fibre"),
			q("Which choice is a fibre-rich carbohydrate?", "Brown rice", "Soda", "White bread", "Candy"),
			q("Why include vegetables on your plate?", "For vitamins, fibre and variety", "Because they're expensive", "To add sugar", "To increase calories"),
		},
		Notes: []string{"Small, repeatable changes matter more than perfect meals."},
	},
	"2": {
		Title:    "Reading Labels",
		Overview: "How to scan nutrition labels and ingredient lists quickly so you can pick healthier products in the supermarket.",
		Sections: []Section{
			{Heading: "Start with serving size", Body: "Serving size affects all numbers. Check it first and compare to how much you actually eat."},
			{Heading: "Ingredient order & nutrients", Body: "Ingredients are listed by weight (largest first). Watch for added sugars, saturated fat, and sodium."},
		},
		Quiz: []quiz.Question{
			q("What should you check first on a nutrition label?", "Serving size", "Calories per pack", "Brand name", "Best before date"),
			q("Where do you find added sugar on many labels?", "Ingredient list and 'added sugars' field", "Front picture", "Price tag", "Manufacturer name"),
			q("If sugar is listed first in ingredients, that means:", "It's one of the main ingredients", "It's not in the product", "It's only a trace amount", "It's organic"),
		},
		Notes: []string{"Use label checks to compare similar products quickly."},
	},
	"3": {
		Title:    "Food Safety",
		Overview: "Key steps to keep food safe at home: safe cooking temperatures, storage, and preventing cross-contamination.",
		Sections: []Section{
			{Heading: "Temperature & cooking", Body: "Cook meats to their safe internal temperatures and reheat leftovers until steaming hot."},
			{Heading: "Storage & hygiene", Body: "Chill perishable foods promptly, avoid cross-contamination (separate raw and ready-to-eat), and wash hands and surfaces."},
		},
		Quiz: []quiz.Question{
			q("What helps prevent cross-contamination?", "Use separate boards for raw meat and veg", "Use the same knife for everything", "Store raw meat above salads", "Skip handwashing"),
			q("Where should perishable food be stored?", "In the fridge at 4°C / 40°F or below", "On the counter", "In the car", "Next to the heater"),
			q("Safe practice for leftovers is to:", "Cool quickly and refrigerate within 2 hours", "Leave at room temp overnight", "Freeze immediately without cooling", "Reheat once then leave out"),
		},
		Notes: []string{"When in doubt, heat thoroughly or discard questionable items."},
	},
	"4": {
		Title:    "Budgeting for Food",
		Overview: "Practical ways to eat well while spending less: planning, smart shopping, and reducing waste.",
		Sections: []Section{
			{Heading: "Plan & batch", Body: "Plan a week, batch-cook staples (grains, beans, roasted veg) and reuse components across meals."},
			{Heading: "Shop smart", Body: "Buy seasonal produce, compare unit prices, and prefer whole foods over heavily processed convenience items."},
		},
		Quiz: []quiz.Question{
			q("A good budget tip is to:", "Plan meals and batch-cook components", "Buy only branded snacks", "Cook every meal from scratch with expensive ingredients", "Discard leftovers"),
			q("Which saves money per serving?", "Cook larger batches and reuse", "Buy many single-serve convenience items", "Throw out imperfect veg", "Only buy imported produce"),
			q("To reduce waste you should:", "Use leftovers creatively", "Ignore expiry dates", "Buy more perishable items than you can eat", "Always buy single-use packaging"),
		},
		Notes: []string{"Small planning steps compound into big savings."},
	},
	"5": {
		Title:    "Misleading Claims",
		Overview: "Common marketing phrases and how to interpret them. 'Natural', 'low-fat', and front-of-pack claims may not mean 'healthy'.",
		Sections: []Section{
			{Heading: "Watch the front label", Body: "Claims on the front of pack are marketing. Check the full nutrition facts and ingredient list for the truth."},
			{Heading: "Common traps", Body: "'Low-fat' can mean high sugar; 'natural' is unregulated in many places; 'light' may not be lower in calories."},
		},
		Quiz: []quiz.Question{
			q("If a product says 'low-fat' you should:", "Check sugar and calories on the nutrition panel", "Assume it's the healthiest option", "Buy extra", "Trust the picture"),
			q("A 'natural' claim on the front of pack means:", "Not necessarily regulated, check ingredients", "It is always organic", "It has no sugar", "It is calorie-free"),
			q("Best approach to marketing claims is to:", "Verify with the ingredient list and nutrition facts", "Believe the claim without checking", "Ignore labels completely", "Buy the cheapest item"),
		},
		Notes: []string{"Use facts (ingredients + numbers) not marketing language to compare products."},
	},
	"6": {
		Title:    "Labeling Rules",
		Overview: "Basics of how ingredient lists, allergen statements, and nutrition panels are organised, and what to check for safety and accuracy.",
		Sections: []Section{
			{Heading: "Ingredient order & allergens", Body: "Ingredients are listed by weight. Allergens are often highlighted or in a separate 'contains' statement."},
			{Heading: "Nutrition panel basics", Body: "Panels show per-serving amounts (and sometimes per package). Look for calories, sugars, fat, sodium and protein."},
		},
		Quiz: []quiz.Question{
			q("Ingredients are listed in what order?", "By weight (largest to smallest)", "Alphabetical order", "By price", "Random order"),
			q("An allergen 'contains' statement means:", "It intentionally includes that allergen", "It never includes allergens", "It is marketed as allergen-free", "It is always organic"),
			q("Nutrition facts usually list values:", "Per serving (and sometimes per package)", "Only per 100g always", "In teaspoons only", "Only as percentages"),
		},
		Notes: []string{"Allergen notices and serving columns are important for safety and comparison."},
	},
	"7": {
		Title:    "Serving Sizes",
		Overview: "Understanding serving sizes helps you interpret nutrition numbers correctly. Packages can contain multiple servings.",
		Sections: []Section{
			{Heading: "Serving vs package", Body: "A package may contain several servings; multiply the per-serving numbers to match how much you eat."},
			{Heading: "Measuring & eyeballing", Body: "Use simple measures (cups, handfuls) to estimate servings until you're comfortable with portion sizes."},
		},
		Quiz: []quiz.Question{
			q("If a pack lists 2 servings and you eat the whole pack, you should:", "Double the per-serving calories to get total", "Use the per-serving number as-is", "Ignore the label", "Assume it's one serving"),
			q("Serving size affects:", "All nutrition numbers on the panel", "Only the brand name", "Only the picture", "Only the ingredients order"),
			q("A practical way to estimate a serving is to use:", "A handful, a cup measure or a kitchen scale", "Only your phone", "The front picture", "The color of the food"),
		},
		Notes: []string{"Check serving size first. It's the key to accurate comparisons."},
	},
	"8": {
		Title:    "Sugar & Sweeteners",
		Overview: "Types of sugars and sweeteners, how to spot added sugars on labels, and healthier swap ideas.",
		Sections: []Section{
			{Heading: "Added vs natural sugars", Body: "Natural sugars (in fruit, milk) come with nutrients; added sugars increase calories without benefits."},
			{Heading: "Types of sweeteners", Body: "Learn common names (sucrose, high-fructose corn syrup, dextrose) and non-nutritive sweeteners. Check ingredient lists and 'added sugars' fields."},
		},
		Quiz: []quiz.Question{
			q("Which sugar is generally packaged with fibre and nutrients?", "Whole fruit", "Soda", "Table sugar", "Candy"),
			q("To find added sugar on a label, check:", "Ingredient list and 'added sugars' on nutrition panel", "The front image", "Unit price", "Manufacturer address"),
			q("A good swap to reduce added sugar is:", "Choose plain yoghurt and add fruit", "Drink extra soda", "Add sugar to breakfast", "Eat more syrup"),
		},
		Notes: []string{"When reducing sugar, prefer whole foods and simple swaps rather than processed 'diet' options."},
	},
}
