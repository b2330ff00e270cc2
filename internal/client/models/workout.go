package models

type Exercise struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	Description string `json:"description"`
}

type Workout struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Date      string     `json:"date"`
	Plan      []Exercise `json:"plan"`
	Completed bool       `json:"completed"`
}

type Meal struct {
	Items    []string  `json:"items"`
	Grams    []float64 `json:"grams"`
	Calories float64   `json:"calories"`
	Proteins float64   `json:"proteins"`
	Fats     float64   `json:"fats"`
	Carbs    float64   `json:"carbs"`
}

type Meals struct {
	Breakfast Meal `json:"breakfast"`
	Lunch     Meal `json:"lunch"`
	Dinner    Meal `json:"dinner"`
}

type NutritionPlan struct {
	ID       int     `json:"id"`
	Date     string  `json:"date"`
	Meals    Meals   `json:"meals"`
	Calories float64 `json:"calories"`
}
