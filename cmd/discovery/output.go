package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"discovery/internal/catalog"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// lovedMarker renders the tri-state loved flag as a short table cell.
func lovedMarker(loved *bool, colorize bool) string {
	label := catalog.LovedLabel(loved)
	if !colorize || label == "" {
		return label
	}
	if *loved {
		return ansiGreen + label + ansiReset
	}
	return ansiRed + label + ansiReset
}

func creatorSuffix(creator string) string {
	if strings.TrimSpace(creator) == "" {
		return ""
	}
	return " - " + creator
}

func describeItem(item catalog.Item) string {
	return fmt.Sprintf("[%s] %s%s", item.Category, item.Title, creatorSuffix(item.Creator))
}

// parseCategory accepts an empty value as "all categories".
func parseCategory(value string) (catalog.Category, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return catalog.ParseCategory(value)
}

// parseMetadata turns repeated key=value flags into metadata. Integer values
// are stored as numbers.
func parseMetadata(pairs []string) (catalog.Metadata, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := catalog.Metadata{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q (want key=value)", pair)
		}
		value = strings.TrimSpace(value)
		if n, err := strconv.Atoi(value); err == nil {
			metadata[key] = n
			continue
		}
		metadata[key] = value
	}
	return metadata, nil
}

func printWishlistPruned(out io.Writer, pruned []catalog.WishlistEntry, context string, limit int) {
	if len(pruned) == 0 {
		return
	}
	fmt.Fprintf(out, "\nPruned %d wishlist item(s) after %s:\n", len(pruned), context)
	for i, entry := range pruned {
		if i == limit {
			fmt.Fprintf(out, "  ... and %d more\n", len(pruned)-limit)
			break
		}
		fmt.Fprintf(out, "  %s%s\n", entry.Title, creatorSuffix(entry.Creator))
	}
}
