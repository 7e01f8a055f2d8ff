package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookworld/internal/catalog"
	"bookworld/internal/detail"
	"bookworld/internal/discovery"

	"github.com/charmbracelet/glamour"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var errNotFound = errors.New("book not found")

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "bookworld",
		Short:         "Discover books and keep a reading list",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.storePath, "store", defaultStorePath(), "Reading list file")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Open Library base URL")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 15*time.Second, "Request timeout")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newSearchCmd(a),
		newShowCmd(a),
		newToggleCmd(a),
		newListCmd(a),
		newRemoveCmd(a),
	)
	return root
}

func newSearchCmd(a *app) *cobra.Command {
	var genre, sort string
	cmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Search the catalog",
		Long: `Search the catalog by free text, genre and sort mode.

Without text or genre the sort mode's default term is used, so a bare
"bookworld search" lists highly rated bestsellers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, details := discovery.FiltersFromValues(url.Values{
				"q":     {strings.Join(args, " ")},
				"genre": {genre},
				"sort":  {sort},
			})
			if len(details) > 0 {
				return fmt.Errorf("invalid %s: %s", details[0].Field, details[0].Message)
			}

			var snap discovery.Snapshot
			err := a.withNotifier(cmd.Context(), func(ctx context.Context) error {
				snap, _ = a.newDiscovery().Search(ctx, "", filters)
				return nil
			})
			if err != nil {
				return err
			}
			return a.printResults(snap)
		},
	}
	cmd.Flags().StringVarP(&genre, "genre", "g", discovery.GenreAll, "Genre: "+strings.Join(discovery.Genres, ", "))
	cmd.Flags().StringVarP(&sort, "sort", "s", string(discovery.SortRating), "Sort: rating, new, old, title")
	return cmd
}

func (a *app) printResults(snap discovery.Snapshot) error {
	switch snap.State {
	case discovery.StateEmpty:
		fmt.Fprintln(a.out, "No books found. Try a different search or genre.")
		return nil
	case discovery.StateError:
		return errors.New("search failed")
	}

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"ID", "Title", "Author", "Year", "Rating"})
	table.SetAutoWrapText(false)
	for _, b := range snap.Results {
		year, rating := "", ""
		if b.FirstPublishYear > 0 {
			year = strconv.Itoa(b.FirstPublishYear)
		}
		if b.Rating > 0 {
			rating = strconv.FormatFloat(b.Rating, 'f', 1, 64)
		}
		table.Append([]string{b.ID, b.Title, b.DisplayAuthor(), year, rating})
	}
	table.Render()
	fmt.Fprintf(a.out, "%d books\n", len(snap.Results))
	return nil
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <work-id>",
		Short: "Show one book and whether it is on your list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := catalog.WorkID(args[0])
			var view detail.View
			err := a.withNotifier(cmd.Context(), func(ctx context.Context) error {
				view = a.newDetail().Load(ctx, id, a.store())
				return nil
			})
			if err != nil {
				return err
			}
			if view.State != detail.StateReady {
				return fmt.Errorf("%s: %w", id, errNotFound)
			}

			b := view.Book
			fmt.Fprintln(a.out, b.Title)
			if len(b.Authors) > 0 {
				fmt.Fprintf(a.out, "by %s\n", strings.Join(b.Authors, ", "))
			}
			fmt.Fprintln(a.out)
			if b.FirstPublishDate != "" {
				fmt.Fprintf(a.out, "First published: %s\n", b.FirstPublishDate)
			}
			if b.PageCount > 0 {
				fmt.Fprintf(a.out, "Pages: %d\n", b.PageCount)
			}
			if len(b.Subjects) > 0 {
				fmt.Fprintf(a.out, "Subjects: %s\n", strings.Join(b.Subjects, ", "))
			}
			fmt.Fprintf(a.out, "\n%s\n[%s]\n", renderMarkdown(b.Description), view.Label)
			return nil
		},
	}
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <work-id>",
		Short: "Add a book to your list, or remove it if present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := detail.View{ID: catalog.WorkID(args[0])}
			return a.withNotifier(cmd.Context(), func(ctx context.Context) error {
				return a.newDetail().Toggle(ctx, &view, a.store())
			})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print your reading list",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.store().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(a.out, "Your list is empty.")
				return nil
			}

			table := tablewriter.NewWriter(a.out)
			table.SetHeader([]string{"#", "ID"})
			for i, id := range ids {
				table.Append([]string{strconv.Itoa(i + 1), id})
			}
			table.Render()
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <work-id>",
		Short: "Remove a book from your list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store().Remove(cmd.Context(), catalog.WorkID(args[0]))
		},
	}
}

// renderMarkdown formats a description for the terminal. Descriptions are
// often markdown; rendering falls back to the raw text.
func renderMarkdown(s string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return s
	}
	out, err := r.Render(s)
	if err != nil {
		return s
	}
	return out
}
