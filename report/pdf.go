// Package report renders solved truss state into shareable artifacts: a
// multi-page PDF with the structure, deformed-shape and stress views plus a
// results table, and an XLSX results workbook. It consumes only the export
// views and the solution, never the solver internals.
package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/morhenderson/Truss-Me/export"
	"github.com/morhenderson/Truss-Me/truss"
	"github.com/phpdave11/gofpdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// Meta is the title block of a generated report.
type Meta struct {
	Title   string
	Project string
	Author  string
	Notes   string
}

// drawing box on an A4 portrait page, mm
const (
	pageLeft   = 20.
	pageTop    = 45.
	pageWidth  = 170.
	pageHeight = 205.
)

// WritePDF renders the report into w. magnify scales the displacements on
// the deformed-shape page.
func WritePDF(w io.Writer, t *truss.Truss, sol *truss.Solution, meta Meta, magnify float64) error {
	pdf, err := buildPDF(t, sol, meta, magnify)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

// SavePDF renders the report to a file.
func SavePDF(path string, t *truss.Truss, sol *truss.Solution, meta Meta, magnify float64) error {
	pdf, err := buildPDF(t, sol, meta, magnify)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

func buildPDF(t *truss.Truss, sol *truss.Solution, meta Meta, magnify float64) (*gofpdf.Fpdf, error) {
	structure := export.Structure(t)
	deformed, err := export.Deformed(t, sol, magnify)
	if err != nil {
		return nil, err
	}
	stress, err := export.Stress(t, sol)
	if err != nil {
		return nil, err
	}
	if meta.Title == "" {
		meta.Title = "Truss Analysis Report"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	addSummaryPage(pdf, t, sol, meta)

	addDrawingPage(pdf, "Structure", func() {
		m := fitMapper(projectNodes(structure.Nodes))
		drawFrame(pdf, structure, m, 40, 40, 40, 0.4)
		labelNodes(pdf, structure, m)
	})

	addDrawingPage(pdf, fmt.Sprintf("Deformed Shape (×%g)", magnify), func() {
		m := fitMapper(projectNodes(structure.Nodes), projectNodes(deformed.Nodes))
		drawFrame(pdf, structure, m, 190, 190, 190, 0.3)
		drawFrame(pdf, deformed.StructureView, m, 40, 40, 40, 0.5)
	})

	addDrawingPage(pdf, "Axial Stress", func() {
		m := fitMapper(projectNodes(structure.Nodes))
		maxAbs := math.Max(math.Abs(stress.Min), math.Abs(stress.Max))
		for i, e := range structure.Elements {
			r, g, b := stressColor(stress.Stresses[i], maxAbs)
			pdf.SetDrawColor(r, g, b)
			pdf.SetLineWidth(0.7)
			x1, y1 := m(structure.Nodes[e[0]])
			x2, y2 := m(structure.Nodes[e[1]])
			pdf.Line(x1, y1, x2, y2)
		}
		drawStressLegend(pdf, stress)
	})

	addResultsPage(pdf, t, sol)
	return pdf, nil
}

func addSummaryPage(pdf *gofpdf.Fpdf, t *truss.Truss, sol *truss.Solution, meta Meta) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	if meta.Project != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Project: %s", meta.Project))
		pdf.Ln(6)
	}
	if meta.Author != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Author: %s", meta.Author))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Model")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Nodes: %d    Elements: %d    DOFs: %d",
		t.NumNodes(), t.NumElements(), t.NumDOF()))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Weight (L·A·rho total): %.6g", t.Weight()))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Load Case: %s", sol.Case.Name))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Condition estimate: %.3e", sol.Diagnostics.Cond))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Solve residual: %.3e    Equilibrium residual: %.3e",
		sol.Diagnostics.Residual, sol.Diagnostics.Equilibrium))
	pdf.Ln(8)
	if len(sol.Diagnostics.Warnings) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 6, "Warnings")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		for _, wmsg := range sol.Diagnostics.Warnings {
			pdf.MultiCell(0, 5, "- "+wmsg, "", "L", false)
		}
		pdf.Ln(4)
	}
	if meta.Notes != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, meta.Notes, "", "L", false)
	}
}

func addDrawingPage(pdf *gofpdf.Fpdf, title string, draw func()) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, title)
	pdf.Ln(10)
	draw()
}

func addResultsPage(pdf *gofpdf.Fpdf, t *truss.Truss, sol *truss.Solution) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Results")
	pdf.Ln(12)

	header := func(cols []string, widths []float64) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, c := range cols {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	cell := func(w float64, s string) {
		pdf.CellFormat(w, 5.5, s, "1", 0, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Nodal displacements and reactions")
	pdf.Ln(8)
	widths := []float64{14, 26, 26, 26, 26, 26, 26}
	header([]string{"Node", "ux", "uy", "uz", "rx", "ry", "rz"}, widths)
	for n := 0; n < t.NumNodes(); n++ {
		u := sol.Displacement(n)
		r := sol.Reaction(n)
		cell(widths[0], fmt.Sprintf("%d", n))
		for _, v := range []float64{u.X, u.Y, u.Z, r.X, r.Y, r.Z} {
			cell(26, fmt.Sprintf("%.4e", v))
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Element axial results")
	pdf.Ln(8)
	widths = []float64{16, 16, 16, 34, 34, 34}
	header([]string{"Elem", "A", "B", "Strain", "Stress", "Force"}, widths)
	conn := t.Conn()
	for i, ax := range sol.Axials {
		cell(widths[0], fmt.Sprintf("%d", i))
		cell(widths[1], fmt.Sprintf("%d", conn[i][0]))
		cell(widths[2], fmt.Sprintf("%d", conn[i][1]))
		cell(widths[3], fmt.Sprintf("%.4e", ax.Strain))
		cell(widths[4], fmt.Sprintf("%.4e", ax.Stress))
		cell(widths[5], fmt.Sprintf("%.4e", ax.Force))
		pdf.Ln(-1)
	}
}

// isometric projection: x recedes left, y recedes right, z points up the
// page. The second coordinate grows downward to match page space.
func project(p r3.Vec) (u, v float64) {
	const c30 = 0.8660254037844387
	return (p.X - p.Y) * c30, (p.X+p.Y)*0.5 - p.Z
}

func projectNodes(nodes []r3.Vec) [][2]float64 {
	out := make([][2]float64, len(nodes))
	for i, p := range nodes {
		u, v := project(p)
		out[i] = [2]float64{u, v}
	}
	return out
}

// fitMapper scales the union of the projected point sets into the page
// drawing box, preserving aspect ratio.
func fitMapper(sets ...[][2]float64) func(r3.Vec) (float64, float64) {
	minU, minV := math.Inf(1), math.Inf(1)
	maxU, maxV := math.Inf(-1), math.Inf(-1)
	for _, pts := range sets {
		for _, p := range pts {
			minU = math.Min(minU, p[0])
			maxU = math.Max(maxU, p[0])
			minV = math.Min(minV, p[1])
			maxV = math.Max(maxV, p[1])
		}
	}
	spanU, spanV := maxU-minU, maxV-minV
	if spanU <= 0 {
		spanU = 1
	}
	if spanV <= 0 {
		spanV = 1
	}
	scale := math.Min(pageWidth/spanU, pageHeight/spanV)
	// center the drawing in the box
	offX := pageLeft + (pageWidth-spanU*scale)/2
	offY := pageTop + (pageHeight-spanV*scale)/2
	return func(p r3.Vec) (float64, float64) {
		u, v := project(p)
		return offX + (u-minU)*scale, offY + (v-minV)*scale
	}
}

func drawFrame(pdf *gofpdf.Fpdf, v export.StructureView, m func(r3.Vec) (float64, float64), r, g, b int, width float64) {
	pdf.SetDrawColor(r, g, b)
	pdf.SetLineWidth(width)
	for _, e := range v.Elements {
		x1, y1 := m(v.Nodes[e[0]])
		x2, y2 := m(v.Nodes[e[1]])
		pdf.Line(x1, y1, x2, y2)
	}
	pdf.SetFillColor(r, g, b)
	for _, p := range v.Nodes {
		x, y := m(p)
		pdf.Circle(x, y, 0.8, "F")
	}
}

func labelNodes(pdf *gofpdf.Fpdf, v export.StructureView, m func(r3.Vec) (float64, float64)) {
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)
	for i, p := range v.Nodes {
		x, y := m(p)
		pdf.Text(x+1.4, y-1.4, fmt.Sprintf("%d", i))
	}
	pdf.SetTextColor(0, 0, 0)
}

// stressColor maps σ onto a diverging ramp: compression toward blue,
// tension toward red, near-zero light gray.
func stressColor(s, maxAbs float64) (r, g, b int) {
	if maxAbs <= 0 {
		return 120, 120, 120
	}
	t := s / maxAbs
	if t > 1 {
		t = 1
	}
	if t < -1 {
		t = -1
	}
	if t >= 0 {
		return 220, int(220 * (1 - t)), int(220 * (1 - t))
	}
	return int(220 * (1 + t)), int(220 * (1 + t)), 220
}

func drawStressLegend(pdf *gofpdf.Fpdf, sv export.StressView) {
	const (
		x0    = pageLeft
		y0    = pageTop + pageHeight + 8
		w     = 90.
		h     = 5.
		steps = 30
	)
	maxAbs := math.Max(math.Abs(sv.Min), math.Abs(sv.Max))
	for i := 0; i < steps; i++ {
		s := sv.Min + (sv.Max-sv.Min)*(float64(i)+0.5)/steps
		r, g, b := stressColor(s, maxAbs)
		pdf.SetFillColor(r, g, b)
		pdf.Rect(x0+w*float64(i)/steps, y0, w/steps+0.1, h, "F")
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x0, y0, w, h, "D")
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(x0, y0+h+4, fmt.Sprintf("%.3e", sv.Min))
	pdf.Text(x0+w-14, y0+h+4, fmt.Sprintf("%.3e", sv.Max))
	pdf.Text(x0+w+6, y0+h-1, "axial stress")
}
