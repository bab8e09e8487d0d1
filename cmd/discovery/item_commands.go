package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"discovery/internal/catalog"
	"discovery/internal/library"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		categoryFlag string
		creator      string
		loved        bool
		disliked     bool
		rating       int
		notes        string
		metadata     []string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an item to the catalog by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := catalog.ParseCategory(categoryFlag)
			if err != nil {
				return err
			}
			meta, err := parseMetadata(metadata)
			if err != nil {
				return err
			}
			req := library.AddRequest{
				Category: category,
				Title:    args[0],
				Creator:  creator,
				Metadata: meta,
				Notes:    notes,
			}
			switch {
			case loved:
				req.Loved = catalog.Bool(true)
			case disliked:
				req.Loved = catalog.Bool(false)
			}
			if cmd.Flags().Changed("rating") {
				req.Rating = catalog.Int(rating)
			}

			return ctx.withLibrary(func(lib *library.Library) error {
				result, err := lib.AddManual(cmd.Context(), req, force)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.Item == nil {
					fmt.Fprintln(out, "Did you mean one of these existing items?")
					fmt.Fprintln(out)
					for i, s := range result.Suggestions {
						fmt.Fprintf(out, "  %d. %s%s (id %s)\n", i+1, s.Item.Title, creatorSuffix(s.Item.Creator), s.Item.ID)
					}
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Use --force to add it as a new item, or 'discovery update <id>' to edit an existing one.")
					return nil
				}
				item := result.Item
				fmt.Fprintf(out, "Added: %s\n", describeItem(*item))
				printOpinion(out, req.Loved, req.Rating, "")
				printWishlistPruned(out, result.Pruned, "add", ctx.config.Display.QueryLimit)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "Category ("+categoryList()+")")
	cmd.Flags().StringVarP(&creator, "creator", "a", "", "Creator (artist, author, developer, director)")
	cmd.Flags().BoolVarP(&loved, "loved", "l", false, "Mark as loved")
	cmd.Flags().BoolVarP(&disliked, "dislike", "d", false, "Mark as disliked")
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Rating (1-5)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes")
	cmd.Flags().StringArrayVarP(&metadata, "meta", "m", nil, "Metadata key=value (repeatable)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip suggestions and add anyway")
	_ = cmd.MarkFlagRequired("category")
	cmd.MarkFlagsMutuallyExclusive("loved", "dislike")
	return cmd
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var (
		title    string
		creator  string
		loved    bool
		disliked bool
		unlove   bool
		rating   int
		notes    string
		metadata []string
	)

	cmd := &cobra.Command{
		Use:   "update <item>",
		Short: "Edit an item's details or your opinion of it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := parseMetadata(metadata)
			if err != nil {
				return err
			}
			req := library.UpdateRequest{Metadata: meta, ClearLoved: unlove}
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("creator") {
				req.Creator = &creator
			}
			if flags.Changed("rating") {
				req.Rating = catalog.Int(rating)
			}
			if flags.Changed("notes") {
				req.Notes = &notes
			}
			switch {
			case loved:
				req.Loved = catalog.Bool(true)
			case disliked:
				req.Loved = catalog.Bool(false)
			}

			return ctx.withLibrary(func(lib *library.Library) error {
				out := cmd.OutOrStdout()
				item, err := resolveItem(cmd.Context(), lib, args[0], out)
				if err != nil {
					return err
				}
				updated, changed, err := lib.Update(cmd.Context(), item.ID, req)
				if err != nil {
					return err
				}
				if !changed {
					fmt.Fprintln(out, "No changes specified. Use --help to see options.")
					return nil
				}
				fmt.Fprintf(out, "Updated: %s%s\n", updated.Title, creatorSuffix(updated.Creator))
				r, err := lib.Store().Rating(cmd.Context(), updated.ID)
				if err != nil {
					return err
				}
				if r != nil {
					printOpinion(out, r.Loved, r.Rating, r.Notes)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&creator, "creator", "a", "", "New creator")
	cmd.Flags().BoolVarP(&loved, "loved", "l", false, "Mark as loved")
	cmd.Flags().BoolVarP(&disliked, "dislike", "d", false, "Mark as disliked")
	cmd.Flags().BoolVarP(&unlove, "unlove", "u", false, "Remove loved/disliked status")
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Set rating (1-5)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Set notes")
	cmd.Flags().StringArrayVarP(&metadata, "meta", "m", nil, "Metadata key=value to merge (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("loved", "dislike", "unlove")
	return cmd
}

func newLoveCommand(ctx *commandContext) *cobra.Command {
	var rating int
	var notes string

	cmd := &cobra.Command{
		Use:   "love <item>",
		Short: "Mark an item as loved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := library.UpdateRequest{Loved: catalog.Bool(true)}
			if cmd.Flags().Changed("rating") {
				req.Rating = catalog.Int(rating)
			}
			if cmd.Flags().Changed("notes") {
				req.Notes = &notes
			}
			return setOpinion(cmd, ctx, args[0], req, "Loved")
		},
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Set rating (1-5)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Add notes")
	return cmd
}

func newDislikeCommand(ctx *commandContext) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "dislike <item>",
		Short: "Mark an item as disliked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := library.UpdateRequest{Loved: catalog.Bool(false)}
			if cmd.Flags().Changed("notes") {
				req.Notes = &notes
			}
			return setOpinion(cmd, ctx, args[0], req, "Disliked")
		},
	}
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Add notes (why you disliked it)")
	return cmd
}

func setOpinion(cmd *cobra.Command, ctx *commandContext, query string, req library.UpdateRequest, verb string) error {
	return ctx.withLibrary(func(lib *library.Library) error {
		out := cmd.OutOrStdout()
		item, err := resolveItem(cmd.Context(), lib, query, out)
		if err != nil {
			return err
		}
		if _, _, err := lib.Update(cmd.Context(), item.ID, req); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", verb, item.Title)
		if req.Rating != nil {
			fmt.Fprintf(out, "  Rating: %s\n", catalog.Stars(*req.Rating))
		}
		if req.Notes != nil {
			fmt.Fprintf(out, "  Notes: %s\n", strings.TrimSpace(*req.Notes))
		}
		return nil
	})
}

// resolveItem looks up an item by id or text. Ambiguous matches are listed
// so the user can retry with an id.
func resolveItem(ctx context.Context, lib *library.Library, query string, out io.Writer) (*catalog.Item, error) {
	item, matches, err := lib.Resolve(ctx, query)
	if errors.Is(err, library.ErrAmbiguous) {
		fmt.Fprintf(out, "Multiple items match '%s':\n", query)
		for i, m := range matches {
			fmt.Fprintf(out, "  %d. %s (id %s)\n", i+1, describeItem(m), m.ID)
		}
		return nil, fmt.Errorf("%w; retry with an item id", err)
	}
	return item, err
}

func printOpinion(out io.Writer, loved *bool, rating *int, notes string) {
	switch catalog.LovedLabel(loved) {
	case "loved":
		fmt.Fprintln(out, "  Loved: yes")
	case "disliked":
		fmt.Fprintln(out, "  Disliked: yes")
	}
	if rating != nil {
		fmt.Fprintf(out, "  Rating: %s\n", catalog.Stars(*rating))
	}
	if notes != "" {
		fmt.Fprintf(out, "  Notes: %s\n", notes)
	}
}

func categoryList() string {
	names := make([]string, len(catalog.Categories))
	for i, c := range catalog.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
