package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
)

var goals = []string{models.GoalWeightLoss, models.GoalMuscleGain, models.GoalEndurance, models.GoalGeneralFitness}

func (a *App) Profile(ctx context.Context, args []string) error {
	u, err := a.client.GetProfile(ctx)
	if err != nil {
		return err
	}
	printUser(a.out, u)
	return nil
}

// SetProfile asks for each editable field. An empty answer leaves the field
// unchanged; only answered fields are sent.
func (a *App) SetProfile(ctx context.Context, args []string) error {
	var upd models.ProfileUpdate

	ask := func(prompt string) (string, error) {
		return getSimpleText(a.reader, prompt+" (empty to skip)", a.out)
	}

	s, err := ask("Date of birth, YYYY-MM-DD")
	if err != nil {
		return err
	}
	if s != "" {
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return fmt.Errorf("%w: date must look like 1990-05-17", errUsage)
		}
		upd.DateOfBirth = &s
	}

	gender, err := ask("Gender")
	if err != nil {
		return err
	}
	if gender != "" {
		upd.Gender = &gender
	}

	s, err = ask("Height, cm")
	if err != nil {
		return err
	}
	if s != "" {
		h, err := strconv.Atoi(s)
		if err != nil || h <= 0 {
			return fmt.Errorf("%w: height must be a positive whole number", errUsage)
		}
		upd.Height = &h
	}

	s, err = ask("Weight, kg")
	if err != nil {
		return err
	}
	if s != "" {
		w, err := parseWeight(s)
		if err != nil {
			return err
		}
		upd.Weight = &w
	}

	goal, err := ask("Goal: " + strings.Join(goals, ", "))
	if err != nil {
		return err
	}
	if goal != "" {
		if !validGoal(goal) {
			return fmt.Errorf("%w: unknown goal %q", errUsage, goal)
		}
		upd.Goal = &goal
	}

	s, err = ask("Have equipment at home? y/n")
	if err != nil {
		return err
	}
	if s != "" {
		v, err := parseYesNo(s)
		if err != nil {
			return err
		}
		upd.HasEquipment = &v
	}

	if upd.Empty() {
		fmt.Fprintln(a.out, "Nothing to update.")
		return nil
	}

	u, err := a.client.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated.")
	printUser(a.out, u)
	return nil
}

func validGoal(g string) bool {
	for _, known := range goals {
		if g == known {
			return true
		}
	}
	return false
}

func parseWeight(s string) (models.Decimal, error) {
	w, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || w <= 0 {
		return 0, fmt.Errorf("%w: weight must be a positive number", errUsage)
	}
	return models.Decimal(w), nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: answer y or n", errUsage)
}
