package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var (
	// errExit is returned by a prompt when the user leaves the shell.
	errExit = errors.New("shell: exit")
	// errReadInput wraps a failure to read the user input.
	errReadInput = errors.New("shell: read input")
)

// maxInputLine bounds the length of a single input line.
const maxInputLine = 1 << 20

// Shell is the interactive numbered menu in front of the catalog.
type Shell struct {
	logger  *zap.Logger
	service CatalogServiceProvider
	out     io.Writer
	input   *lineReader
}

// NewShell provides a shell reading user input from in and printing to out.
func NewShell(logger *zap.Logger, service CatalogServiceProvider, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		logger:  logger,
		service: service,
		out:     out,
		input:   newLineReader(in),
	}
}

// lineReader feeds the lines of a reader into lines, which is closed once
// the reader is exhausted, fails or stop is called. err is only set before
// lines is closed.
type lineReader struct {
	lines    chan string
	done     chan struct{}
	stopOnce sync.Once
	err      error
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(lr.lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxInputLine)
		for scanner.Scan() {
			select {
			case lr.lines <- scanner.Text():
			case <-lr.done:
				return
			}
		}
		lr.err = scanner.Err()
	}()
	return lr
}

// stop releases the reading goroutine once its pending line is dropped.
func (lr *lineReader) stop() {
	lr.stopOnce.Do(func() { close(lr.done) })
}

// Run loops over the main menu until the user exits, the input
// ends or ctx is cancelled.
func (sh *Shell) Run(ctx context.Context) error {
	defer sh.input.stop()
	for {
		choice, err := sh.mainMenu(ctx)
		if err != nil {
			return sh.exit(ctx, err)
		}

		switch choice {
		case "1":
			err = sh.addBook(ctx)
		case "2":
			err = sh.updateBook(ctx)
		case "3":
			err = sh.deleteBook(ctx)
		case "4":
			err = sh.listBook(ctx)
		case "5":
			err = sh.searchBook(ctx)
		case "6":
			fmt.Fprintln(sh.out, "Exiting.")
			return nil
		default:
			fmt.Fprintln(sh.out, "Invalid choice, please try again.")
			continue
		}

		if errors.Is(err, errExit) || errors.Is(err, errReadInput) || ctx.Err() != nil {
			return sh.exit(ctx, err)
		}
		if err != nil {
			fmt.Fprintln(sh.out, errorStyle.Render("Error: "+err.Error()))
		}
	}
}

func (sh *Shell) exit(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		sh.logger.Info("shell: context is done: exit", zap.String("reason", ctx.Err().Error()))
		return nil
	}
	if errors.Is(err, errExit) {
		sh.logger.Info("shell: input closed: exit")
		return nil
	}
	sh.logger.Error("shell: failed to read input: exit", zap.Error(err))
	fmt.Fprintln(sh.out, errorStyle.Render("Error: "+err.Error()))
	return err
}

func (sh *Shell) mainMenu(ctx context.Context) (string, error) {
	fmt.Fprintln(sh.out)
	fmt.Fprintln(sh.out, titleStyle.Render("Library Management System"))
	fmt.Fprintln(sh.out, "1. Add Book")
	fmt.Fprintln(sh.out, "2. Update Book")
	fmt.Fprintln(sh.out, "3. Delete Book")
	fmt.Fprintln(sh.out, "4. List Book")
	fmt.Fprintln(sh.out, "5. Search Book")
	fmt.Fprintln(sh.out, "6. Exit")
	return sh.prompt(ctx, "Enter choice: ")
}

// prompt prints label and waits for the next input line.
func (sh *Shell) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(sh.out, label)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-sh.input.lines:
		if !ok {
			if sh.input.err != nil {
				return "", fmt.Errorf("%w: %w", errReadInput, sh.input.err)
			}
			return "", errExit
		}
		return strings.TrimSpace(line), nil
	}
}

// prompts asks every label in turn and returns the answers in order.
func (sh *Shell) prompts(ctx context.Context, labels ...string) ([]string, error) {
	answers := make([]string, 0, len(labels))
	for _, label := range labels {
		answer, err := sh.prompt(ctx, label)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func (sh *Shell) addBook(ctx context.Context) error {
	in, err := sh.prompts(ctx, "Enter title: ", "Enter author: ", "Enter ISBN: ", "Enter Genre: ", "Enter Language: ")
	if err != nil {
		return err
	}
	isbn, err := ParseISBN(in[2])
	if err != nil {
		return err
	}
	book, err := sh.service.Add(ctx, NewBook{Title: in[0], Author: in[1], ISBN: isbn, Genre: in[3], Lang: in[4]})
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Book added. ID: %s\n", book.ID)
	return nil
}

func (sh *Shell) updateBook(ctx context.Context) error {
	in, err := sh.prompts(ctx, "Enter ID: ", "Enter ISBN: ", "Enter Title: ", "Enter Author: ", "Enter Genre: ", "Enter Language: ")
	if err != nil {
		return err
	}
	target, err := QueryFromFields(QueryFields{ID: in[0], ISBN: in[1]}, UpdateOrder...)
	if err != nil {
		return err
	}
	changes := BookChanges{Title: in[2], Author: in[3], Genre: in[4], Lang: in[5]}
	if target.Key == KeyID {
		// the isbn answer is a new value when the book is located by id.
		if changes.ISBN, err = ParseISBN(in[1]); err != nil {
			return err
		}
	}
	if target.Key == KeyAll {
		target = Query{}
	}
	if _, err = sh.service.Update(ctx, target, changes); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "Book Information updated.")
	return nil
}

func (sh *Shell) deleteBook(ctx context.Context) error {
	in, err := sh.prompts(ctx, "Enter ID: ", "Enter ISBN: ", "Enter Title: ")
	if err != nil {
		return err
	}
	q, err := QueryFromFields(QueryFields{ID: in[0], ISBN: in[1], Title: in[2]}, DeleteOrder...)
	if err != nil {
		return err
	}
	n, err := sh.service.Delete(ctx, q)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Book Information Deleted. Records flagged: %d\n", n)
	return nil
}

func (sh *Shell) listBook(ctx context.Context) error {
	q, err := sh.lookupQuery(ctx)
	if err != nil {
		return err
	}
	views, err := sh.service.List(ctx, q)
	if err != nil {
		return err
	}
	RenderBooks(sh.out, views)
	fmt.Fprintln(sh.out, "Book Listed Information.")
	return nil
}

func (sh *Shell) searchBook(ctx context.Context) error {
	q, err := sh.lookupQuery(ctx)
	if err != nil {
		return err
	}
	views, err := sh.service.Search(ctx, q)
	if err != nil {
		return err
	}
	RenderBooks(sh.out, views)
	fmt.Fprintln(sh.out, "Book Searched Information.")
	return nil
}

func (sh *Shell) lookupQuery(ctx context.Context) (Query, error) {
	in, err := sh.prompts(ctx, "Enter ID: ", "Enter ISBN: ", "Enter Title: ", "Enter Author: ")
	if err != nil {
		return Query{}, err
	}
	return QueryFromFields(QueryFields{ID: in[0], ISBN: in[1], Title: in[2], Author: in[3]}, LookupOrder...)
}
