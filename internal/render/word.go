package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	docx "github.com/fumiama/go-docx"
)

// Every length below is in twips.
const twipsPerInch = 1440

func inches(in float64) int {
	return int(math.Round(in * twipsPerInch))
}

// pageSetup is the size and margins of a document's only section.
type pageSetup struct {
	width, height            int
	top, bottom, left, right int
}

func (p pageSetup) usableWidth() int {
	return p.width - p.left - p.right
}

var letterPage = pageSetup{
	width: inches(8.5), height: inches(11),
	top: twipsPerInch, bottom: twipsPerInch, left: twipsPerInch, right: twipsPerInch,
}

const (
	titlePt   = 20
	headingPt = 14
)

// cell is one table cell; each line of text becomes its own paragraph.
type cell struct {
	text string
	// span is the number of grid columns covered; 0 means 1.
	span  int
	shade string
	bold  bool
}

// wordDoc lays out paragraphs and fixed-grid tables in a single font.
type wordDoc struct {
	f      *docx.Docx
	page   pageSetup
	face   string
	sizePt int
	err    error
}

func newWordDoc(page pageSetup, face string, sizePt int) *wordDoc {
	return &wordDoc{f: docx.New().WithDefaultTheme(), page: page, face: face, sizePt: sizePt}
}

func (w *wordDoc) run(p *docx.Paragraph, text string, bold bool, sizePt int) {
	if text == "" {
		return
	}
	halfPts := strconv.Itoa(sizePt * 2)
	r := p.AddText(text).Font(w.face, w.face, w.face, "").Size(halfPts).SizeCs(halfPts)
	if bold {
		r.Bold()
	}
}

func (w *wordDoc) paragraph(text string, bold bool, sizePt int, align string) {
	p := w.f.AddParagraph()
	if align != "" {
		p.Justification(align)
	}
	w.run(p, text, bold, sizePt)
}

func (w *wordDoc) title(text string) {
	w.paragraph(text, true, titlePt, "center")
}

func (w *wordDoc) heading(text string) {
	w.paragraph(text, true, headingPt, "center")
}

func (w *wordDoc) centered(text string) {
	w.paragraph(text, false, w.sizePt, "center")
}

func (w *wordDoc) blank() {
	w.f.AddParagraph()
}

func (w *wordDoc) pageBreak() {
	w.f.AddParagraph().AddPageBreaks()
}

// table appends a fixed-grid table. A row whose spans run past the grid is
// clipped and reported by bytes.
func (w *wordDoc) table(widths []int, rows [][]cell) {
	cols := make([]int64, len(widths))
	var total int64
	for i, v := range widths {
		cols[i] = int64(v)
		total += int64(v)
	}
	tbl := w.f.AddTableTwips(make([]int64, len(rows)), cols, total, nil)
	tbl.TableProperties.Width.Type = "dxa"

	for i, row := range rows {
		tr := tbl.TableRows[i]
		kept := make([]*docx.WTableCell, 0, len(cols))
		col := 0
		for _, c := range row {
			span := max(c.span, 1)
			if col+span > len(cols) {
				if w.err == nil {
					w.err = fmt.Errorf("table row %d spans %d columns, grid has %d", i, col+span, len(cols))
				}
				span = len(cols) - col
				if span < 1 {
					break
				}
			}
			tc := tr.TableCells[col]
			if span > 1 {
				var width int64
				for _, v := range cols[col : col+span] {
					width += v
				}
				tc.TableCellProperties.TableCellWidth.W = width
				tc.TableCellProperties.GridSpan = &docx.WGridSpan{Val: span}
			}
			if c.shade != "" {
				tc.Shade("clear", "auto", c.shade)
			}
			for _, line := range strings.Split(c.text, "\n") {
				w.run(tc.AddParagraph(), line, c.bold, w.sizePt)
			}
			kept = append(kept, tc)
			col += span
		}
		// a cell needs at least one paragraph
		for ; col < len(cols); col++ {
			tc := tr.TableCells[col]
			tc.AddParagraph()
			kept = append(kept, tc)
		}
		tr.TableCells = kept
	}
}

// bytes closes the section with the page setup and packs the document.
func (w *wordDoc) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	p := w.page
	w.f.Document.Body.Items = append(w.f.Document.Body.Items, &docx.SectPr{
		PgSz: &docx.PgSz{W: p.width, H: p.height},
		PgMar: &docx.PgMar{
			Top: p.top, Left: p.left, Bottom: p.bottom, Right: p.right,
			Header: 720, Footer: 720,
		},
	})
	var buf bytes.Buffer
	if _, err := w.f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}
