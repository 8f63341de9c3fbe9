package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Sheet is one table flattened to strings. Column names are the JSON field
// names with id first.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
}

func (d *Dump) rowsOf(table string) (interface{}, bool) {
	switch table {
	case "destinations":
		return d.Destinations, true
	case "music_tracks":
		return d.MusicTracks, true
	case "news":
		return d.News, true
	case "news_widgets":
		return d.NewsWidgets, true
	case "blog_posts":
		return d.BlogPosts, true
	case "blog_categories":
		return d.BlogCategories, true
	case "partner_notifications":
		return d.PartnerNotifications, true
	case "hero_slides":
		return d.HeroSlides, true
	case "home_settings":
		if d.HomeSettings == nil {
			return []interface{}{}, true
		}
		return []interface{}{d.HomeSettings}, true
	case "culture_video":
		if d.CultureVideo == nil {
			return []interface{}{}, true
		}
		return []interface{}{d.CultureVideo}, true
	}
	return nil, false
}

// Sheet flattens one table of the dump.
func (d *Dump) Sheet(table string) (*Sheet, error) {
	rows, ok := d.rowsOf(table)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", table, err)
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("flatten %s: %w", table, err)
	}

	seen := map[string]bool{}
	for _, rec := range records {
		for k := range rec {
			seen[k] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		if k != "id" {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	if seen["id"] || len(records) == 0 {
		cols = append([]string{"id"}, cols...)
	}

	s := &Sheet{Name: table, Columns: cols, Rows: make([][]string, 0, len(records))}
	for _, rec := range records {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = cell(rec[col])
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

func cell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// IsTable reports whether name is an exportable table.
func IsTable(name string) bool {
	return slices.Contains(Tables, name)
}

// WriteCSV writes one table as CSV with a UTF-8 BOM so spreadsheet apps
// detect Thai text correctly.
func (d *Dump) WriteCSV(w io.Writer, table string) error {
	s, err := d.Sheet(table)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(s.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteXLSX writes one sheet per table.
func (d *Dump) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range Tables {
		s, err := d.Sheet(table)
		if err != nil {
			return err
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", table); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(table); err != nil {
			return fmt.Errorf("create sheet %s: %w", table, err)
		}

		if err := f.SetSheetRow(table, "A1", &s.Columns); err != nil {
			return fmt.Errorf("write header %s: %w", table, err)
		}
		for r, row := range s.Rows {
			cellName, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(table, cellName, &row); err != nil {
				return fmt.Errorf("write %s row %d: %w", table, r+1, err)
			}
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}
