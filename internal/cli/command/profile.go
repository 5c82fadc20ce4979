package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// ProfileCommand returns the profile command group.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:   "profile",
		Usage:  "Show or edit your fitness profile",
		Before: requireLogin,
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Show the saved profile",
				Action: profileGet,
			},
			{
				Name:      "set",
				Usage:     "Update profile fields; fields not given are kept",
				UsageText: AppName + " profile set --age 30 --weight 180 --goal \"build muscle\"",
				Flags:     profileFlags(),
				Action:    profileSet,
			},
		},
	}
}

func profileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "YAML file with profile fields, applied before other flags"},
		&cli.IntFlag{Name: "age", Usage: "Age in years (13-120)"},
		&cli.Float64Flag{Name: "weight", Usage: "Weight in pounds"},
		&cli.IntFlag{Name: "height-feet", Usage: "Height, feet part (3-8)"},
		&cli.Float64Flag{Name: "height-inches", Usage: "Height, inches part (0-11.9)"},
		&cli.StringFlag{Name: "gender", Usage: "Gender"},
		&cli.StringFlag{Name: "goal", Usage: "Fitness goal"},
		&cli.StringFlag{Name: "activity", Usage: "Activity level"},
		&cli.IntFlag{Name: "days", Usage: "Workout days per week (1-7)"},
		&cli.IntFlag{Name: "duration", Usage: "Workout duration in minutes (15-180)"},
		&cli.StringSliceFlag{Name: "equipment", Usage: "Available equipment (repeatable)"},
		&cli.StringSliceFlag{Name: "diet", Usage: "Dietary preferences (repeatable)"},
	}
}

func profileGet(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	profile, err := rt.Profiles.Get(c.Context)
	if errors.Is(err, domain.ErrProfileNotFound) {
		rt.Printf("no profile yet; run `%s profile set`\n", AppName)
		return nil
	}
	if err != nil {
		return protected(err)
	}
	return rt.Print(c, profile)
}

func profileSet(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	var fromFile *domain.Profile
	if path := c.String("file"); path != "" {
		if fromFile, err = readProfileFile(path); err != nil {
			return err
		}
	}
	if fromFile == nil && !anyProfileFlag(c) {
		return errors.New("nothing to update; pass at least one field flag or --file")
	}

	saved, err := rt.Profiles.Update(c.Context, func(p *domain.Profile) {
		if fromFile != nil {
			mergeProfile(p, fromFile)
		}
		applyProfileFlags(c, p)
	})
	if err != nil {
		return protected(err)
	}
	return rt.Print(c, saved)
}

func readProfileFile(path string) (*domain.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	var p domain.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile file: %w", err)
	}
	return &p, nil
}

func anyProfileFlag(c *cli.Context) bool {
	for _, f := range profileFlags() {
		name := f.Names()[0]
		if name != "file" && c.IsSet(name) {
			return true
		}
	}
	return false
}

// mergeProfile copies the fields set in src onto dst.
func mergeProfile(dst, src *domain.Profile) {
	if src.Age != nil {
		dst.Age = src.Age
	}
	if src.Weight != nil {
		dst.Weight = src.Weight
	}
	if src.HeightFeet != nil {
		dst.HeightFeet = src.HeightFeet
	}
	if src.HeightInches != nil {
		dst.HeightInches = src.HeightInches
	}
	if src.Gender != "" {
		dst.Gender = src.Gender
	}
	if src.FitnessGoal != "" {
		dst.FitnessGoal = src.FitnessGoal
	}
	if src.ActivityLevel != "" {
		dst.ActivityLevel = src.ActivityLevel
	}
	if src.WorkoutDaysPerWeek != nil {
		dst.WorkoutDaysPerWeek = src.WorkoutDaysPerWeek
	}
	if src.WorkoutDurationMinutes != nil {
		dst.WorkoutDurationMinutes = src.WorkoutDurationMinutes
	}
	if src.AvailableEquipment != nil {
		dst.AvailableEquipment = src.AvailableEquipment
	}
	if src.DietaryPreferences != nil {
		dst.DietaryPreferences = src.DietaryPreferences
	}
}

func applyProfileFlags(c *cli.Context, p *domain.Profile) {
	intFlag := func(name string, dst **int) {
		if c.IsSet(name) {
			v := c.Int(name)
			*dst = &v
		}
	}
	floatFlag := func(name string, dst **float64) {
		if c.IsSet(name) {
			v := c.Float64(name)
			*dst = &v
		}
	}
	stringFlag := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}

	intFlag("age", &p.Age)
	floatFlag("weight", &p.Weight)
	intFlag("height-feet", &p.HeightFeet)
	floatFlag("height-inches", &p.HeightInches)
	stringFlag("gender", &p.Gender)
	stringFlag("goal", &p.FitnessGoal)
	stringFlag("activity", &p.ActivityLevel)
	intFlag("days", &p.WorkoutDaysPerWeek)
	intFlag("duration", &p.WorkoutDurationMinutes)
	if c.IsSet("equipment") {
		p.AvailableEquipment = c.StringSlice("equipment")
	}
	if c.IsSet("diet") {
		p.DietaryPreferences = c.StringSlice("diet")
	}
}
