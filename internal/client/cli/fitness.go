package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/neurofit/internal/client/client"
	"github.com/dmitrijs2005/neurofit/internal/client/models"
)

func (a *App) Workout(ctx context.Context, args []string) error {
	wk, err := a.client.LatestWorkout(ctx)
	if client.StatusOf(err) == http.StatusNotFound {
		fmt.Fprintln(a.out, "No workout for today. Use 'genworkout' to get one.")
		return nil
	}
	if err != nil {
		return err
	}
	printWorkout(a.out, wk)
	return nil
}

func (a *App) GenWorkout(ctx context.Context, args []string) error {
	wk, err := a.client.GenerateWorkout(ctx)
	if err != nil {
		return err
	}
	printWorkout(a.out, wk)
	return nil
}

// CompleteWorkout marks the given workout done, or today's when no id is
// given.
func (a *App) CompleteWorkout(ctx context.Context, args []string) error {
	var id int
	if len(args) > 0 {
		v, err := a.idArg(args, "")
		if err != nil {
			return err
		}
		id = v
	} else {
		wk, err := a.client.LatestWorkout(ctx)
		if err != nil {
			return err
		}
		id = wk.ID
	}

	if err := a.client.CompleteWorkout(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Workout #%d completed. Well done!\n", id)
	return nil
}

func (a *App) Nutrition(ctx context.Context, args []string) error {
	n, err := a.client.LatestNutritionPlan(ctx)
	if client.StatusOf(err) == http.StatusNotFound {
		fmt.Fprintln(a.out, "No nutrition plan for today. Use 'gennutrition' to get one.")
		return nil
	}
	if err != nil {
		return err
	}
	printNutrition(a.out, n)
	return nil
}

func (a *App) GenNutrition(ctx context.Context, args []string) error {
	n, err := a.client.GenerateNutritionPlan(ctx)
	if err != nil {
		return err
	}
	printNutrition(a.out, n)
	return nil
}

// Coach asks the AI coach. "coach reset" starts a new conversation and
// "coach history" replays the current one.
func (a *App) Coach(ctx context.Context, args []string) error {
	if len(args) == 1 {
		switch args[0] {
		case "reset":
			a.coachService.Reset()
			fmt.Fprintln(a.out, "Conversation cleared.")
			return nil
		case "history":
			for _, m := range a.coachService.History() {
				fmt.Fprintf(a.out, "%s: %s\n", speaker(m.Role), m.Content)
			}
			return nil
		}
	}

	question := strings.Join(args, " ")
	if question == "" {
		q, err := getSimpleText(a.reader, "Ask your coach", a.out)
		if err != nil {
			return err
		}
		question = q
	}

	answer, err := a.coachService.Ask(ctx, question)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", speaker(models.RoleAssistant), answer)
	return nil
}

func speaker(role string) string {
	if role == models.RoleUser {
		return "You"
	}
	return "Coach"
}
