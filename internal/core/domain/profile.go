package domain

// Profile is the fitness profile a plan is generated from.
//
// All attributes are optional. Range checks are done by the service.
type Profile struct {
	ID                     string   `json:"id,omitempty" yaml:"id,omitempty"`
	UserID                 string   `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Age                    *int     `json:"age,omitempty" yaml:"age,omitempty"`
	Weight                 *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	HeightFeet             *int     `json:"height_feet,omitempty" yaml:"height_feet,omitempty"`
	HeightInches           *float64 `json:"height_inches,omitempty" yaml:"height_inches,omitempty"`
	Gender                 string   `json:"gender,omitempty" yaml:"gender,omitempty"`
	FitnessGoal            string   `json:"fitness_goal,omitempty" yaml:"fitness_goal,omitempty"`
	ActivityLevel          string   `json:"activity_level,omitempty" yaml:"activity_level,omitempty"`
	WorkoutDaysPerWeek     *int     `json:"workout_days_per_week,omitempty" yaml:"workout_days_per_week,omitempty"`
	WorkoutDurationMinutes *int     `json:"workout_duration_minutes,omitempty" yaml:"workout_duration_minutes,omitempty"`
	AvailableEquipment     []string `json:"available_equipment,omitempty" yaml:"available_equipment,omitempty"`
	DietaryPreferences     []string `json:"dietary_preferences,omitempty" yaml:"dietary_preferences,omitempty"`
}

// Validate checks the ranges the service enforces, so obvious mistakes are
// reported before a round trip.
func (p *Profile) Validate() error {
	switch {
	case p.Age != nil && (*p.Age < 13 || *p.Age > 120):
		return ErrInvalidProfile.WithDetails("age must be between 13 and 120")
	case p.Weight != nil && (*p.Weight <= 0 || *p.Weight > 1000):
		return ErrInvalidProfile.WithDetails("weight must be greater than 0 and at most 1000")
	case p.HeightFeet != nil && (*p.HeightFeet < 3 || *p.HeightFeet > 8):
		return ErrInvalidProfile.WithDetails("height_feet must be between 3 and 8")
	case p.HeightInches != nil && (*p.HeightInches < 0 || *p.HeightInches >= 12):
		return ErrInvalidProfile.WithDetails("height_inches must be at least 0 and below 12")
	case p.WorkoutDaysPerWeek != nil && (*p.WorkoutDaysPerWeek < 1 || *p.WorkoutDaysPerWeek > 7):
		return ErrInvalidProfile.WithDetails("workout_days_per_week must be between 1 and 7")
	case p.WorkoutDurationMinutes != nil && (*p.WorkoutDurationMinutes < 15 || *p.WorkoutDurationMinutes > 180):
		return ErrInvalidProfile.WithDetails("workout_duration_minutes must be between 15 and 180")
	}
	return nil
}
