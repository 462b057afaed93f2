package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// BookViewHeaders are the column titles of rendered results.
var BookViewHeaders = []string{"ID", "TITLE", "ISBN", "AUTHOR", "GENRE", "LANG", "AVAILABILITY"}

// RenderBooks prints views as a bordered table, or a short notice when empty.
func RenderBooks(w io.Writer, views []BookView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			v.ID,
			v.Title,
			strconv.FormatInt(v.ISBN, 10),
			v.Author,
			v.Genre,
			v.Lang,
			strconv.FormatBool(v.Availability),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(BookViewHeaders...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}
