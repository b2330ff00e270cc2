package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/neurofit/internal/client/client"
	"github.com/dmitrijs2005/neurofit/internal/client/models"
)

var errUsage = errors.New("invalid input")

// describe turns an error into a line fit for the terminal.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrRenewalFailed):
		return "session expired, please log in again"
	case errors.Is(err, client.ErrNetwork):
		return "server is unreachable"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("%s (HTTP %d)", apiErr.Detail(), apiErr.Status)
	default:
		return err.Error()
	}
}

// idArg takes a numeric id from args[0] or asks for one.
func (a *App) idArg(args []string, prompt string) (int, error) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	} else {
		s, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return 0, err
		}
		raw = s
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not an id", errUsage, raw)
	}
	return id, nil
}

func printTable(w io.Writer, header string, rows func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	tw.Flush()
}

func printUser(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "#%d %s <%s>\n", u.ID, u.Username, u.Email)
	if u.DateOfBirth != nil {
		fmt.Fprintf(w, "  born:       %s\n", *u.DateOfBirth)
	}
	if u.Gender != nil {
		fmt.Fprintf(w, "  gender:     %s\n", *u.Gender)
	}
	if u.Height != nil {
		fmt.Fprintf(w, "  height:     %d cm\n", *u.Height)
	}
	if u.Weight != nil {
		fmt.Fprintf(w, "  weight:     %.1f kg\n", float64(*u.Weight))
	}
	if u.Goal != nil {
		fmt.Fprintf(w, "  goal:       %s\n", strings.ReplaceAll(*u.Goal, "_", " "))
	}
	if u.HasEquipment != nil {
		fmt.Fprintf(w, "  equipment:  %t\n", *u.HasEquipment)
	}
}

func printWorkout(w io.Writer, wk *models.Workout) {
	status := "pending"
	if wk.Completed {
		status = "completed"
	}
	fmt.Fprintf(w, "Workout #%d %q for %s (%s)\n", wk.ID, wk.Title, wk.Date, status)
	printTable(w, "EXERCISE\tSETS\tREPS\tNOTES", func(tw *tabwriter.Writer) {
		for _, e := range wk.Plan {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", e.Name, e.Sets, e.Reps, e.Description)
		}
	})
}

func printNutrition(w io.Writer, n *models.NutritionPlan) {
	fmt.Fprintf(w, "Nutrition plan #%d for %s, %.0f kcal\n", n.ID, n.Date, n.Calories)
	printTable(w, "MEAL\tKCAL\tP\tF\tC\tITEMS", func(tw *tabwriter.Writer) {
		for _, m := range []struct {
			name string
			meal models.Meal
		}{{"breakfast", n.Meals.Breakfast}, {"lunch", n.Meals.Lunch}, {"dinner", n.Meals.Dinner}} {
			fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%.0f\t%.0f\t%s\n",
				m.name, m.meal.Calories, m.meal.Proteins, m.meal.Fats, m.meal.Carbs, mealItems(m.meal))
		}
	})
}

func mealItems(m models.Meal) string {
	items := make([]string, len(m.Items))
	for i, name := range m.Items {
		if i < len(m.Grams) {
			items[i] = fmt.Sprintf("%s %gg", name, m.Grams[i])
		} else {
			items[i] = name
		}
	}
	return strings.Join(items, ", ")
}

func printPost(w io.Writer, p *models.Post) {
	liked := ""
	if p.IsLiked {
		liked = ", liked by you"
	}
	fmt.Fprintf(w, "#%d %s\nby %s on %s | %d likes%s | %d comments\n\n%s\n",
		p.ID, p.Title, p.User.Username, p.CreatedAt.Format("2006-01-02 15:04"),
		p.LikesCount, liked, p.CommentsCount, p.Content)
}

func printComments(w io.Writer, comments []models.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments yet.")
		return
	}
	for _, c := range comments {
		fmt.Fprintf(w, "- %s (%s): %s\n", c.User.Username, c.CreatedAt.Format("2006-01-02 15:04"), c.Content)
	}
}
