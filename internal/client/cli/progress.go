package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
)

func (a *App) Progress(ctx context.Context, args []string) error {
	entries, err := a.client.ListProgress(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No progress entries yet. Use 'addprogress' to record one.")
		return nil
	}
	printTable(a.out, "ID\tDATE\tWEIGHT\tNOTES", func(tw *tabwriter.Writer) {
		for _, e := range entries {
			weight := "-"
			if e.Weight != nil {
				weight = fmt.Sprintf("%.1f", float64(*e.Weight))
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.ID, e.Date, weight, e.Notes)
		}
	})
	return nil
}

func (a *App) AddProgress(ctx context.Context, args []string) error {
	s, err := getSimpleText(a.reader, "Weight, kg", a.out)
	if err != nil {
		return err
	}
	w, err := parseWeight(s)
	if err != nil {
		return err
	}
	notes, err := getSimpleText(a.reader, "Notes (optional)", a.out)
	if err != nil {
		return err
	}

	e, err := a.client.CreateProgress(ctx, models.ProgressInput{Weight: w, Notes: notes})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Progress entry #%d saved for %s.\n", e.ID, e.Date)
	return nil
}

func (a *App) DeleteProgress(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter entry id")
	if err != nil {
		return err
	}
	if err := a.client.DeleteProgress(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Progress entry #%d deleted.\n", id)
	return nil
}
