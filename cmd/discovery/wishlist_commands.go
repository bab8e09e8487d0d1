package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"discovery/internal/catalog"
	"discovery/internal/library"
	"discovery/internal/store"
	"discovery/internal/textutil"
)

func newWishlistCommand(ctx *commandContext) *cobra.Command {
	wishlistCmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Track things you want but do not have yet",
	}
	wishlistCmd.AddCommand(newWishlistAddCommand(ctx))
	wishlistCmd.AddCommand(newWishlistViewCommand(ctx))
	wishlistCmd.AddCommand(newWishlistRemoveCommand(ctx))
	wishlistCmd.AddCommand(newWishlistPruneCommand(ctx))
	return wishlistCmd
}

func newWishlistAddCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag, creator, notes string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an entry to the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := catalog.ParseCategory(categoryFlag)
			if err != nil {
				return err
			}
			entry := &catalog.WishlistEntry{
				Category: category,
				Title:    args[0],
				Creator:  creator,
				Notes:    strings.TrimSpace(notes),
			}
			return ctx.withLibrary(func(lib *library.Library) error {
				out := cmd.OutOrStdout()
				owned, err := lib.Wishlist().Match(cmd.Context(), catalog.WishlistEntry{
					Category: category,
					Title:    strings.TrimSpace(entry.Title),
					Creator:  strings.TrimSpace(entry.Creator),
				})
				if err != nil {
					return err
				}
				if owned != nil {
					fmt.Fprintf(out, "Already in your catalog: %s\n", describeItem(*owned))
					return nil
				}
				if err := lib.Wishlist().Add(cmd.Context(), entry); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wishlist added: [%s] %s%s\n", entry.Category, entry.Title, creatorSuffix(entry.Creator))
				if entry.Notes != "" {
					fmt.Fprintf(out, "  Notes: %s\n", entry.Notes)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "Category ("+categoryList()+")")
	cmd.Flags().StringVarP(&creator, "creator", "a", "", "Creator (artist, author, developer, director)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newWishlistViewCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag, search string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show wishlist entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(categoryFlag)
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(lib *library.Library) error {
				var entries []catalog.WishlistEntry
				if strings.TrimSpace(search) != "" {
					entries, err = lib.Store().SearchWishlist(cmd.Context(), search, category)
				} else {
					entries, err = lib.Store().Wishlist(cmd.Context(), category)
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Wishlist is empty.")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						string(e.Category),
						e.Title,
						e.Creator,
						textutil.Truncate(e.Notes, 40),
						e.CreatedAt.Local().Format(time.DateOnly),
						shortID(e.ID),
					})
				}
				fmt.Fprintf(out, "%d wishlist item(s):\n", len(entries))
				fmt.Fprintln(out, renderTable(plainColumns("Category", "Title", "Creator", "Notes", "Added", "ID"), rows))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "Filter by category")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search title or creator")
	return cmd
}

func newWishlistRemoveCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "remove <entry>",
		Short: "Remove a wishlist entry by id or title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(categoryFlag)
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(lib *library.Library) error {
				out := cmd.OutOrStdout()
				entry, err := resolveWishlistEntry(cmd.Context(), lib.Store(), args[0], category)
				if err != nil {
					return err
				}
				if entry == nil {
					fmt.Fprintln(out, "Wishlist item not found.")
					return nil
				}
				deleted, err := lib.Store().DeleteWishlistEntry(cmd.Context(), entry.ID)
				if err != nil {
					return err
				}
				if !deleted {
					fmt.Fprintln(out, "Wishlist item not found.")
					return nil
				}
				fmt.Fprintf(out, "Wishlist removed: %s\n", entry.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "Filter by category")
	return cmd
}

// resolveWishlistEntry finds an entry by id, then by unique text match, then
// by unique exact title among several matches.
func resolveWishlistEntry(ctx context.Context, st *store.Store, query string, category catalog.Category) (*catalog.WishlistEntry, error) {
	query = strings.TrimSpace(query)
	entry, err := st.WishlistEntry(ctx, query)
	if err != nil || entry != nil {
		return entry, err
	}
	matches, err := st.SearchWishlist(ctx, query, category)
	if err != nil {
		return nil, err
	}
	if len(matches) == 1 {
		return &matches[0], nil
	}
	var exact []catalog.WishlistEntry
	for _, m := range matches {
		if strings.EqualFold(m.Title, query) {
			exact = append(exact, m)
		}
	}
	switch {
	case len(exact) == 1:
		return &exact[0], nil
	case len(matches) > 1:
		return nil, fmt.Errorf("%d wishlist entries match '%s'; use the id from 'discovery wishlist view'", len(matches), query)
	}
	return nil, nil
}

func newWishlistPruneCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove wishlist entries that are now in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(categoryFlag)
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(lib *library.Library) error {
				removed, err := lib.Wishlist().Prune(cmd.Context(), category)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(removed) == 0 {
					fmt.Fprintln(out, "No wishlist items to prune.")
					return nil
				}
				fmt.Fprintf(out, "Pruned %d wishlist item(s):\n", len(removed))
				for _, entry := range removed {
					fmt.Fprintf(out, "  [%s] %s%s\n", entry.Category, entry.Title, creatorSuffix(entry.Creator))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "Filter by category")
	return cmd
}
