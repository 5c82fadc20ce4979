package domain

// Plan is a generated fitness plan. Its content is computed by the service
// and only displayed by the client.
type Plan struct {
	HealthMetrics map[string]any `json:"health_metrics"`
	WorkoutPlan   WorkoutPlan    `json:"workout_plan"`
	MealPlan      MealPlan       `json:"meal_plan"`
	Tips          []string       `json:"tips"`
}

// WorkoutPlan holds one optional workout per weekday.
type WorkoutPlan struct {
	Monday        *DayWorkout `json:"monday,omitempty"`
	Tuesday       *DayWorkout `json:"tuesday,omitempty"`
	Wednesday     *DayWorkout `json:"wednesday,omitempty"`
	Thursday      *DayWorkout `json:"thursday,omitempty"`
	Friday        *DayWorkout `json:"friday,omitempty"`
	Saturday      *DayWorkout `json:"saturday,omitempty"`
	Sunday        *DayWorkout `json:"sunday,omitempty"`
	WeeklySummary string      `json:"weekly_summary,omitempty"`
}

// Days returns the scheduled workouts in week order, skipping rest days.
func (w WorkoutPlan) Days() []NamedWorkout {
	all := []NamedWorkout{
		{"monday", w.Monday},
		{"tuesday", w.Tuesday},
		{"wednesday", w.Wednesday},
		{"thursday", w.Thursday},
		{"friday", w.Friday},
		{"saturday", w.Saturday},
		{"sunday", w.Sunday},
	}
	days := all[:0]
	for _, d := range all {
		if d.Workout != nil {
			days = append(days, d)
		}
	}
	return days
}

// NamedWorkout pairs a weekday with its workout.
type NamedWorkout struct {
	Day     string
	Workout *DayWorkout
}

// DayWorkout is the workout for a single day.
type DayWorkout struct {
	WorkoutType     string     `json:"workout_type"`
	Exercises       []Exercise `json:"exercises"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
}

// Exercise is one entry of a workout.
type Exercise struct {
	Name        string  `json:"name"`
	Sets        int     `json:"sets"`
	Reps        string  `json:"reps"`
	RestSeconds *int    `json:"rest_seconds,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// MealPlan is the nutrition part of a plan.
type MealPlan struct {
	DayMeal       *DayMeals      `json:"day_meal,omitempty"`
	WeeklySummary string         `json:"weekly_summary,omitempty"`
	DailyTargets  map[string]any `json:"daily_targets,omitempty"`
}

// DayMeals are the meals of a single day.
type DayMeals struct {
	Breakfast *Meal  `json:"breakfast,omitempty"`
	Lunch     *Meal  `json:"lunch,omitempty"`
	Dinner    *Meal  `json:"dinner,omitempty"`
	Snacks    []Meal `json:"snacks,omitempty"`
}

// Meal is a single meal with optional macros.
type Meal struct {
	Name        string   `json:"name"`
	Calories    *int     `json:"calories,omitempty"`
	ProteinG    *float64 `json:"protein_g,omitempty"`
	CarbsG      *float64 `json:"carbs_g,omitempty"`
	FatG        *float64 `json:"fat_g,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Preparation string   `json:"preparation,omitempty"`
}
