// Package extractor turns loosely structured HTML stat tables into candidate
// player records.
//
// Extraction is deliberately column-agnostic: instead of mapping fixed
// columns per source, an ordered set of independent classifier predicates
// (name, team, position, stat) is evaluated per cell. This survives layout
// drift across sources at the cost of precision — a jersey number can be
// read as a team code, and that is an accepted failure mode.
package extractor

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/metrics"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/pipeline"
)

// minRowCells is the minimum cell count for a row to be considered data.
const minRowCells = 3

// nameScanWindow limits the name search to the leading cells of a row.
const nameScanWindow = 3

var teamCodePattern = regexp.MustCompile(`^[A-Z]{2,3}$`)

// Extractor implements pipeline.Extractor over HTML tables.
type Extractor struct {
	logger *zap.Logger
}

// New builds an Extractor.
func New(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract parses every table in body, skipping each table's first row as a
// header, and classifies the remaining rows into candidate records. Rows
// that never establish a name are dropped silently.
func (e *Extractor) Extract(body []byte, source string) []pipeline.CandidateRecord {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		e.logger.Warn("unparseable document; no records extracted",
			zap.String("source", source), zap.Error(err))
		return nil
	}

	var records []pipeline.CandidateRecord
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(rowIdx int, row *goquery.Selection) {
			if rowIdx == 0 {
				return // header row
			}
			cells := rowCells(row)
			if len(cells) < minRowCells {
				return
			}
			if rec, ok := classifyRow(cells, source); ok {
				records = append(records, rec)
			}
		})
	})

	e.logger.Debug("extracted candidate records",
		zap.String("source", source), zap.Int("count", len(records)))
	metrics.ObserveRecordsFound(source, len(records))
	return records
}

func rowCells(row *goquery.Selection) []string {
	var cells []string
	row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	return cells
}

// classifyRow runs the classifier predicates over the row's cells in order.
// The row only becomes a record if the name predicate matched.
func classifyRow(cells []string, source string) (pipeline.CandidateRecord, bool) {
	rec := pipeline.CandidateRecord{Source: source}

	for i, cell := range cells {
		if rec.Name == "" && i < nameScanWindow && looksLikeName(cell) {
			rec.Name = cell
		}
		if rec.Team == "" && looksLikeTeamCode(cell) {
			rec.Team = cell
		}
		if rec.Position == "" {
			if pos, ok := pipeline.ParsePosition(cell); ok {
				rec.Position = pos
			}
		}
		if looksNumeric(cell) {
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				rec.Stats.Values = append(rec.Stats.Values, v)
			}
		}
	}

	if rec.Name == "" {
		return pipeline.CandidateRecord{}, false
	}
	return rec, true
}

// looksLikeName accepts a cell longer than 3 characters that is neither
// entirely uppercase nor purely numeric.
func looksLikeName(cell string) bool {
	if len(cell) <= 3 {
		return false
	}
	return !isUppercase(cell) && !looksNumeric(cell)
}

// looksLikeTeamCode accepts 2 or 3 uppercase letters. Position codes are
// excluded so a row like [name, "QB", "KC", ...] reads KC as the team.
func looksLikeTeamCode(cell string) bool {
	if _, isPosition := pipeline.ParsePosition(cell); isPosition {
		return false
	}
	return teamCodePattern.MatchString(cell)
}

// looksNumeric accepts a cell whose text is entirely digits once `.` and `-`
// are removed.
func looksNumeric(cell string) bool {
	cleaned := strings.NewReplacer(".", "", "-", "").Replace(cell)
	if cleaned == "" {
		return false
	}
	for _, r := range cleaned {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isUppercase mirrors Python's str.isupper: at least one letter, and no
// lowercase letters anywhere.
func isUppercase(cell string) bool {
	hasLetter := false
	for _, r := range cell {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
