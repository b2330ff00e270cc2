package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
)

func (a *App) Posts(ctx context.Context, args []string) error {
	posts, err := a.client.ListPosts(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "No posts yet. Use 'newpost' to write one.")
		return nil
	}
	printTable(a.out, "ID\tTITLE\tAUTHOR\tLIKES\tCOMMENTS", func(tw *tabwriter.Writer) {
		for _, p := range posts {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", p.ID, p.Title, p.User.Username, p.LikesCount, p.CommentsCount)
		}
	})
	return nil
}

// ShowPost prints a post followed by its comments.
func (a *App) ShowPost(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter post id")
	if err != nil {
		return err
	}
	p, err := a.client.GetPost(ctx, id)
	if err != nil {
		return err
	}
	comments, err := a.client.ListComments(ctx, id)
	if err != nil {
		return err
	}
	printPost(a.out, p)
	fmt.Fprintln(a.out)
	printComments(a.out, comments)
	return nil
}

func (a *App) NewPost(ctx context.Context, args []string) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Text", a.out)
	if err != nil {
		return err
	}
	if title == "" || content == "" {
		return fmt.Errorf("%w: title and text are required", errUsage)
	}

	p, err := a.client.CreatePost(ctx, models.PostInput{Title: title, Content: content})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Post #%d published.\n", p.ID)
	return nil
}

// EditPost replaces the title and/or text of one of the user's posts.
func (a *App) EditPost(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter post id")
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "New title (empty to keep)", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "New text (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if title == "" && content == "" {
		fmt.Fprintln(a.out, "Nothing to update.")
		return nil
	}

	if _, err := a.client.UpdatePost(ctx, id, models.PostInput{Title: title, Content: content}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Post #%d updated.\n", id)
	return nil
}

func (a *App) DeletePost(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter post id")
	if err != nil {
		return err
	}
	if err := a.client.DeletePost(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Post #%d deleted.\n", id)
	return nil
}

// LikePost toggles the like and shows the new state.
func (a *App) LikePost(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter post id")
	if err != nil {
		return err
	}
	if err := a.client.LikePost(ctx, id); err != nil {
		return err
	}
	p, err := a.client.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if p.IsLiked {
		fmt.Fprintf(a.out, "You like post #%d (%d likes).\n", id, p.LikesCount)
	} else {
		fmt.Fprintf(a.out, "Like removed from post #%d (%d likes).\n", id, p.LikesCount)
	}
	return nil
}

func (a *App) Comments(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter post id")
	if err != nil {
		return err
	}
	comments, err := a.client.ListComments(ctx, id)
	if err != nil {
		return err
	}
	printComments(a.out, comments)
	return nil
}

// AddComment takes "comment <id> <text...>" or prompts for what is missing.
func (a *App) AddComment(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter post id")
	if err != nil {
		return err
	}

	text := ""
	if len(args) > 1 {
		text = strings.Join(args[1:], " ")
	} else {
		text, err = getSimpleText(a.reader, "Comment", a.out)
		if err != nil {
			return err
		}
	}
	if text == "" {
		return fmt.Errorf("%w: comment is empty", errUsage)
	}

	if _, err := a.client.AddComment(ctx, id, text); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Comment added.")
	return nil
}
