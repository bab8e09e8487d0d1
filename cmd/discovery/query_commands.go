package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"discovery/internal/catalog"
	"discovery/internal/library"
	"discovery/internal/store"
)

// itemView is an item joined with its sources and rating for display.
type itemView struct {
	ID       string           `json:"id"`
	Category catalog.Category `json:"category"`
	Title    string           `json:"title"`
	Creator  string           `json:"creator,omitempty"`
	Sources  []catalog.Source `json:"sources"`
	Loved    *bool            `json:"loved"`
	Rating   *int             `json:"rating,omitempty"`
	Notes    string           `json:"notes,omitempty"`
	Metadata catalog.Metadata `json:"metadata,omitempty"`
}

func loadViews(ctx context.Context, st *store.Store, items []catalog.Item) ([]itemView, error) {
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		links, err := st.SourceLinks(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		rating, err := st.Rating(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		view := itemView{
			ID:       item.ID,
			Category: item.Category,
			Title:    item.Title,
			Creator:  item.Creator,
			Loved:    catalog.ResolveLoved(rating, links),
			Metadata: item.Metadata,
		}
		for _, link := range links {
			view.Sources = append(view.Sources, link.Source)
		}
		if rating != nil {
			view.Rating = rating.Rating
			view.Notes = rating.Notes
		}
		views = append(views, view)
	}
	return views, nil
}

func renderViews(out io.Writer, views []itemView) {
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		sources := make([]string, len(v.Sources))
		for i, s := range v.Sources {
			sources[i] = string(s)
		}
		stars := ""
		if v.Rating != nil {
			stars = catalog.Stars(*v.Rating)
		}
		rows = append(rows, []string{
			string(v.Category),
			v.Title,
			v.Creator,
			strings.Join(sources, ","),
			lovedMarker(v.Loved, colorize),
			stars,
			shortID(v.ID),
		})
	}
	fmt.Fprintln(out, renderTable([]column{
		{title: "Category"},
		{title: "Title", width: 40},
		{title: "Creator", width: 30},
		{title: "Sources", width: 30},
		{title: "Opinion"},
		{title: "Rating"},
		{title: "ID"},
	}, rows))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newQueryCommand(ctx *commandContext) *cobra.Command {
	var (
		categoryFlag string
		sourceFlag   string
		filter       store.Filter
		count        bool
		format       string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List catalog items with filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(categoryFlag)
			if err != nil {
				return err
			}
			filter.Category = category
			if sourceFlag != "" {
				source, err := catalog.ParseSource(sourceFlag)
				if err != nil {
					return err
				}
				filter.Source = source
			}
			for _, r := range []int{filter.MinRating, filter.MaxRating} {
				if r != 0 && !catalog.ValidRating(r) {
					return fmt.Errorf("rating %d out of range 1-5", r)
				}
			}
			if !cmd.Flags().Changed("limit") {
				filter.Limit = ctx.config.Display.QueryLimit
			}

			return ctx.withLibrary(func(lib *library.Library) error {
				st := lib.Store()
				total, err := st.CountItems(cmd.Context(), filter)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if count {
					if format == "json" {
						return writeJSON(cmd, map[string]int{"count": total})
					}
					fmt.Fprintf(out, "Count: %d\n", total)
					return nil
				}

				items, err := st.QueryItems(cmd.Context(), filter)
				if err != nil {
					return err
				}
				views, err := loadViews(cmd.Context(), st, items)
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(cmd, map[string]any{"total": total, "offset": filter.Offset, "items": views})
				}
				if len(views) == 0 {
					fmt.Fprintln(out, "No items found.")
					return nil
				}
				fmt.Fprintf(out, "Showing %d of %d items (offset: %d):\n", len(views), total, filter.Offset)
				renderViews(out, views)
				if next := filter.Offset + len(views); !filter.Random && next < total {
					fmt.Fprintf(out, "Use --offset %d to see more\n", next)
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&categoryFlag, "category", "c", "", "Filter by category")
	flags.StringVar(&sourceFlag, "source", "", "Filter by source")
	flags.BoolVarP(&filter.Loved, "loved", "l", false, "Show only loved items")
	flags.BoolVarP(&filter.Disliked, "disliked", "d", false, "Show only disliked items")
	flags.StringVarP(&filter.Creator, "creator", "a", "", "Filter by creator (partial match)")
	flags.StringVarP(&filter.Search, "search", "s", "", "Search title or creator")
	flags.IntVar(&filter.MinRating, "min-rating", 0, "Minimum rating (1-5)")
	flags.IntVar(&filter.MaxRating, "max-rating", 0, "Maximum rating (1-5)")
	flags.IntVarP(&filter.Limit, "limit", "n", 0, "Max items to show (default from config)")
	flags.IntVar(&filter.Offset, "offset", 0, "Skip the first N items")
	flags.BoolVarP(&filter.Random, "random", "r", false, "Random sample instead of store order")
	flags.BoolVar(&count, "count", false, "Show only the count")
	flags.StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	return cmd
}

func newLovedCommand(ctx *commandContext) *cobra.Command {
	return newOpinionListCommand(ctx, "loved", "List loved items grouped by category", store.Filter{Loved: true})
}

func newDislikedCommand(ctx *commandContext) *cobra.Command {
	return newOpinionListCommand(ctx, "disliked", "List disliked items grouped by category", store.Filter{Disliked: true})
}

func newOpinionListCommand(ctx *commandContext, label, short string, base store.Filter) *cobra.Command {
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   label,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(categoryFlag)
			if err != nil {
				return err
			}
			filter := base
			filter.Category = category
			return ctx.withLibrary(func(lib *library.Library) error {
				items, err := lib.Store().QueryItems(cmd.Context(), filter)
				if err != nil {
					return err
				}
				printGrouped(cmd.OutOrStdout(), items, label, ctx.config.Display.QueryLimit)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "Filter by category")
	return cmd
}

func printGrouped(out io.Writer, items []catalog.Item, label string, limit int) {
	if len(items) == 0 {
		fmt.Fprintf(out, "No %s items yet.\n", label)
		return
	}
	grouped := make(map[catalog.Category][]catalog.Item)
	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}
	fmt.Fprintf(out, "%d %s items:\n\n", len(items), label)
	for _, category := range catalog.Categories {
		group := grouped[category]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(out, "  %s (%d)\n", strings.ToUpper(string(category)), len(group))
		for i, item := range group {
			if limit > 0 && i == limit {
				fmt.Fprintf(out, "    ... and %d more\n", len(group)-limit)
				break
			}
			fmt.Fprintf(out, "    %s%s\n", item.Title, creatorSuffix(item.Creator))
		}
		fmt.Fprintln(out)
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search titles and creators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(categoryFlag)
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(lib *library.Library) error {
				items, err := lib.Store().Search(cmd.Context(), args[0], category)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintf(out, "No items found matching '%s'.\n", args[0])
					return nil
				}
				views, err := loadViews(cmd.Context(), lib.Store(), items)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Found %d item(s):\n", len(views))
				renderViews(out, views)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "Filter by category")
	return cmd
}

func newSQLCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Run a read-only SQL query (SELECT, WITH, EXPLAIN)",
		Long: "Run a read-only SQL query against the catalog.\n\n" +
			"Tables: items, item_sources, ratings, wishlist_items, sync_state.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(lib *library.Library) error {
				result, err := lib.Store().ReadOnlyQuery(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if format == "json" {
					records := make([]map[string]any, 0, len(result.Rows))
					for _, row := range result.Rows {
						record := make(map[string]any, len(result.Columns))
						for i, column := range result.Columns {
							record[column] = row[i]
						}
						records = append(records, record)
					}
					return writeJSON(cmd, records)
				}
				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(result.Rows))
				for _, row := range result.Rows {
					cells := make([]string, len(row))
					for i, v := range row {
						cells[i] = formatSQLValue(v)
					}
					rows = append(rows, cells)
				}
				fmt.Fprintln(out, renderTable(plainColumns(result.Columns...), rows))
				fmt.Fprintf(out, "Rows: %d\n", len(result.Rows))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	return cmd
}

func formatSQLValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return "NULL"
	case string:
		return typed
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}
