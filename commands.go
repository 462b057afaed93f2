package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type cliOptions struct {
	configFile string
	envFile    string
}

// lookupFlags are shared by the list and search commands.
type lookupFlags struct {
	id, isbn, title, author string
}

// appRunner wraps a command body with the App lifecycle.
type appRunner func(run func(cmd *cobra.Command, app AppProvider) error) func(*cobra.Command, []string) error

// NewRootCmd builds the libcat command tree. newApp is called by each
// command once flags are parsed, and the App is cleaned when it returns.
func NewRootCmd(newApp func(configFile, envFile string) (AppProvider, error)) *cobra.Command {
	opts := &cliOptions{}

	withApp := func(run func(cmd *cobra.Command, app AppProvider) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts.configFile, opts.envFile)
			if err != nil {
				return fmt.Errorf("application failed to initialize: %w", err)
			}
			defer app.Clean()
			return run(cmd, app)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "libcat",
		Short: "libcat - single-user library catalog manager",
		Long: `libcat records books, updates their metadata, soft-deletes entries
and lists or searches them.

Run without arguments to start the interactive menu.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, app AppProvider) error {
			return app.Run(cmd.InOrStdin(), cmd.OutOrStdout())
		}),
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", DefaultConfigFile, "path to the yaml configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env", DefaultEnvFile, "path to the optional environment file")

	rootCmd.AddCommand(
		newAddCmd(withApp),
		newUpdateCmd(withApp),
		newDeleteCmd(withApp),
		newLookupCmd(withApp, "list", "List active books matching one field exactly"),
		newLookupCmd(withApp, "search", "Search active books by case-insensitive pattern"),
	)
	return rootCmd
}

func newAddCmd(withApp appRunner) *cobra.Command {
	var nb NewBook
	var isbn string
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a book to the catalog",
		Example: `  libcat add --title Dune --author Herbert --isbn 1001 --genre Sci-Fi --lang EN`,
		Args:    cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, app AppProvider) error {
			var err error
			if nb.ISBN, err = ParseISBN(isbn); err != nil {
				return err
			}
			book, err := app.Service().Add(cmd.Context(), nb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book added. ID: %s\n", book.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&nb.Title, "title", "", "book title (required)")
	cmd.Flags().StringVar(&nb.Author, "author", "", "book author (required)")
	cmd.Flags().StringVar(&isbn, "isbn", "", "book isbn (required)")
	cmd.Flags().StringVar(&nb.Genre, "genre", "", "book genre")
	cmd.Flags().StringVar(&nb.Lang, "lang", "", "book language")
	return cmd
}

func newUpdateCmd(withApp appRunner) *cobra.Command {
	var changes BookChanges
	var id, isbn, newISBN string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the metadata of a book located by id or isbn",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, app AppProvider) error {
			target, err := QueryFromFields(QueryFields{ID: id, ISBN: isbn}, UpdateOrder...)
			if err != nil {
				return err
			}
			if target.Key == KeyAll {
				target = Query{}
			}
			if changes.ISBN, err = ParseISBN(newISBN); err != nil {
				return err
			}
			book, err := app.Service().Update(cmd.Context(), target, changes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book Information updated. ID: %s\n", book.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&id, "id", "", "id of the book to update")
	cmd.Flags().StringVar(&isbn, "isbn", "", "isbn of the book to update, used when --id is empty")
	cmd.Flags().StringVar(&changes.Title, "title", "", "new title")
	cmd.Flags().StringVar(&changes.Author, "author", "", "new author")
	cmd.Flags().StringVar(&newISBN, "new-isbn", "", "new isbn, ignored when locating by --isbn")
	cmd.Flags().StringVar(&changes.Genre, "genre", "", "new genre")
	cmd.Flags().StringVar(&changes.Lang, "lang", "", "new language")
	return cmd
}

func newDeleteCmd(withApp appRunner) *cobra.Command {
	var f QueryFields
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Soft-delete every book matching title, id or isbn (first given wins)",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, app AppProvider) error {
			q, err := QueryFromFields(f, DeleteOrder...)
			if err != nil {
				return err
			}
			n, err := app.Service().Delete(cmd.Context(), q)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book Information Deleted. Records flagged: %d\n", n)
			return nil
		}),
	}
	cmd.Flags().StringVar(&f.Title, "title", "", "title of the books to delete")
	cmd.Flags().StringVar(&f.ID, "id", "", "id of the book to delete")
	cmd.Flags().StringVar(&f.ISBN, "isbn", "", "isbn of the book to delete")
	return cmd
}

func newLookupCmd(withApp appRunner, name, short string) *cobra.Command {
	var f lookupFlags
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Long:  short + ".\nThe first non-empty flag among --id, --isbn, --title, --author is used; none selects every active book.",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, app AppProvider) error {
			q, err := QueryFromFields(QueryFields{ID: f.id, ISBN: f.isbn, Title: f.title, Author: f.author}, LookupOrder...)
			if err != nil {
				return err
			}
			var views []BookView
			if name == "search" {
				views, err = app.Service().Search(cmd.Context(), q)
			} else {
				views, err = app.Service().List(cmd.Context(), q)
			}
			if err != nil {
				return err
			}
			RenderBooks(cmd.OutOrStdout(), views)
			return nil
		}),
	}
	cmd.Flags().StringVar(&f.id, "id", "", "book id")
	cmd.Flags().StringVar(&f.isbn, "isbn", "", "book isbn")
	cmd.Flags().StringVar(&f.title, "title", "", "book title")
	cmd.Flags().StringVar(&f.author, "author", "", "book author")
	return cmd
}
