package command

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fitplan-go/internal/cli/output"
	"github.com/yndnr/fitplan-go/internal/core/domain"
)

var planSections = []string{"overview", "workout", "meals", "tips", "all"}

// PlanCommand returns the plan command group.
func PlanCommand() *cli.Command {
	return &cli.Command{
		Name:   "plan",
		Usage:  "Show or generate your fitness plan",
		Before: requireLogin,
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show the current plan",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "section",
						Value: "all",
						Usage: "Section to show: " + strings.Join(planSections, ", "),
					},
				},
				Action: planGet,
			},
			{
				Name:   "generate",
				Usage:  "Generate a new plan from your profile",
				Action: planGenerate,
			},
		},
	}
}

func planGet(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	section := strings.ToLower(c.String("section"))
	if !validSection(section) {
		return fmt.Errorf("unknown section %q (want %s)", section, strings.Join(planSections, ", "))
	}

	plan, err := rt.Plans.Current(c.Context)
	if errors.Is(err, domain.ErrPlanNotFound) {
		rt.Printf("no plan yet; run `%s plan generate`\n", AppName)
		return nil
	}
	if err != nil {
		return protected(err)
	}
	return printPlan(c, rt, plan, section)
}

func planGenerate(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	var spin *output.Spinner
	if rt.outputFormat(c) == output.FormatTable {
		spin = output.NewSpinner(rt.errOut, "Generating plan...")
		spin.Start()
	}
	plan, err := rt.Plans.Generate(c.Context)
	if spin != nil {
		if err != nil {
			spin.Fail("plan generation failed")
		} else {
			spin.Success("plan generated")
		}
	}

	if errors.Is(err, domain.ErrProfileRequired) {
		return fmt.Errorf("%w; run `%s profile set` first", err, AppName)
	}
	if err != nil {
		return protected(err)
	}
	return printPlan(c, rt, plan, "all")
}

func validSection(s string) bool {
	for _, v := range planSections {
		if s == v {
			return true
		}
	}
	return false
}

// printPlan writes one section, or all of them. Structured formats get the
// plan data itself; tables get the views.
func printPlan(c *cli.Context, rt *Runtime, plan *domain.Plan, section string) error {
	if rt.outputFormat(c) != output.FormatTable {
		var data any = plan
		switch section {
		case "overview":
			data = plan.HealthMetrics
		case "workout":
			data = plan.WorkoutPlan
		case "meals":
			data = plan.MealPlan
		case "tips":
			data = plan.Tips
		}
		return rt.Print(c, data)
	}

	type part struct {
		title string
		view  output.Tabler
	}
	parts := []part{
		{"overview", overviewView{plan: plan}},
		{"workout", workoutView{plan: plan.WorkoutPlan}},
		{"meals", mealsView{plan: plan.MealPlan}},
		{"tips", tipsView(plan.Tips)},
	}
	for _, p := range parts {
		if section != "all" && section != p.title {
			continue
		}
		if section == "all" {
			fmt.Fprintf(rt.out, "== %s ==\n", strings.ToUpper(p.title))
		}
		if err := p.view.Table().Render(rt.out); err != nil {
			return err
		}
		if section == "all" {
			io.WriteString(rt.out, "\n")
		}
	}
	return nil
}
