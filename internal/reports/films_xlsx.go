// Package reports reads film import sheets and writes ranking reports as
// Excel workbooks.
package reports

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	PopularSheet = "Popular"
	dateLayout   = "2006-01-02"
)

var popularHeader = []interface{}{"Rank", "Film ID", "Name", "Release date", "Likes", "Genres"}

// WritePopular writes films, already ranked, as one row each.
func WritePopular(w io.Writer, films []models.Film, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PopularSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(PopularSheet, "A1", &popularHeader); err != nil {
		return err
	}

	for i, film := range films {
		row := []interface{}{
			i + 1,
			film.ID,
			film.Name,
			film.ReleaseDate.Format(dateLayout),
			film.Rate,
			genreNames(film.Genres),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(PopularSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Popular films",
		Created: generatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

// RowError describes one sheet row that could not be turned into a film.
type RowError struct {
	Sheet string
	Row   int // 1-based, as shown in Excel
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s!%d: %v", e.Sheet, e.Row, e.Err)
}

// ReadFilms parses every sheet of an import workbook. The first row of a
// sheet is a header; columns are name, description, release date
// (YYYY-MM-DD), duration in minutes and comma separated genre names. Bad
// rows are reported and skipped.
func ReadFilms(r io.Reader) ([]models.Film, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var films []models.Film
	var rowErrs []RowError
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}

		for i, row := range rows {
			if i == 0 || isBlank(row) {
				continue
			}
			film, err := parseFilmRow(row)
			if err != nil {
				rowErrs = append(rowErrs, RowError{Sheet: sheet, Row: i + 1, Err: err})
				continue
			}
			films = append(films, film)
		}
	}
	return films, rowErrs, nil
}

func parseFilmRow(row []string) (models.Film, error) {
	if len(row) < 4 {
		return models.Film{}, fmt.Errorf("expected at least 4 columns, got %d", len(row))
	}

	releaseDate, err := time.Parse(dateLayout, strings.TrimSpace(row[2]))
	if err != nil {
		return models.Film{}, fmt.Errorf("release date %q: want YYYY-MM-DD", row[2])
	}
	duration, err := strconv.Atoi(strings.TrimSpace(row[3]))
	if err != nil {
		return models.Film{}, fmt.Errorf("duration %q is not a number", row[3])
	}

	film := models.Film{
		Name:        strings.TrimSpace(row[0]),
		Description: strings.TrimSpace(row[1]),
		ReleaseDate: releaseDate,
		Duration:    duration,
	}
	if len(row) > 4 {
		genres, err := parseGenres(row[4])
		if err != nil {
			return models.Film{}, err
		}
		film.Genres = genres
	}

	if err := film.BeforeSave(nil); err != nil {
		return models.Film{}, fmt.Errorf("invalid film %q", film.Name)
	}
	return film, nil
}

func parseGenres(cell string) ([]models.Genre, error) {
	var genres []models.Genre
	for _, name := range strings.Split(cell, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		genre, ok := lookupGenre(name)
		if !ok {
			return nil, fmt.Errorf("unknown genre %q", name)
		}
		genres = append(genres, genre)
	}
	return genres, nil
}

func lookupGenre(name string) (models.Genre, bool) {
	for _, g := range models.DefaultGenres {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return models.Genre{}, false
}

func genreNames(genres []models.Genre) string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
