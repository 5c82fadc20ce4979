package command

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yndnr/fitplan-go/internal/cli/output"
	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// overviewView lists health metrics and daily nutrition targets.
type overviewView struct {
	plan *domain.Plan
}

func (v overviewView) Table() *output.Table {
	t := output.NewTable("METRIC", "VALUE")
	for _, k := range sortedKeys(v.plan.HealthMetrics) {
		t.AddRow(k, anyString(v.plan.HealthMetrics[k]))
	}
	for _, k := range sortedKeys(v.plan.MealPlan.DailyTargets) {
		t.AddRow("target."+k, anyString(v.plan.MealPlan.DailyTargets[k]))
	}
	if s := v.plan.WorkoutPlan.WeeklySummary; s != "" {
		t.AddRow("workout summary", s)
	}
	if s := v.plan.MealPlan.WeeklySummary; s != "" {
		t.AddRow("meal summary", s)
	}
	return t
}

// workoutView has one row per exercise.
type workoutView struct {
	plan domain.WorkoutPlan
}

func (v workoutView) Table() *output.Table {
	t := output.NewTable("DAY", "TYPE", "EXERCISE", "SETS", "REPS", "REST")
	for _, d := range v.plan.Days() {
		w := d.Workout
		if len(w.Exercises) == 0 {
			t.AddRow(d.Day, w.WorkoutType, "-", "-", "-", "-")
			continue
		}
		for _, e := range w.Exercises {
			rest := "-"
			if e.RestSeconds != nil {
				rest = strconv.Itoa(*e.RestSeconds) + "s"
			}
			t.AddRow(d.Day, w.WorkoutType, e.Name, strconv.Itoa(e.Sets), e.Reps, rest)
		}
	}
	return t
}

// mealsView has one row per meal of the day.
type mealsView struct {
	plan domain.MealPlan
}

func (v mealsView) Table() *output.Table {
	t := output.NewTable("MEAL", "NAME", "CALORIES", "PROTEIN", "CARBS", "FAT")
	day := v.plan.DayMeal
	if day == nil {
		return t
	}
	add := func(label string, m *domain.Meal) {
		if m == nil {
			return
		}
		t.AddRow(label, m.Name, intString(m.Calories), gramString(m.ProteinG), gramString(m.CarbsG), gramString(m.FatG))
	}
	add("breakfast", day.Breakfast)
	add("lunch", day.Lunch)
	add("dinner", day.Dinner)
	for i := range day.Snacks {
		add("snack", &day.Snacks[i])
	}
	return t
}

type tipsView []string

func (v tipsView) Table() *output.Table {
	t := output.NewTable("#", "TIP")
	for i, tip := range v {
		t.AddRow(strconv.Itoa(i+1), tip)
	}
	return t
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func anyString(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = anyString(e)
		}
		return strings.Join(parts, ", ")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func intString(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func gramString(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64) + "g"
}
