package report

import (
	"fmt"

	"github.com/morhenderson/Truss-Me/truss"
	"github.com/xuri/excelize/v2"
)

// WriteWorkbook saves the model and one solution as an XLSX workbook with
// Summary, Nodes, Elements, Displacements, Reactions and Stresses sheets,
// one header row per sheet.
func WriteWorkbook(path string, t *truss.Truss, sol *truss.Solution) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return err
	}
	for _, sheet := range []string{"Nodes", "Elements", "Displacements", "Reactions", "Stresses"} {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}

	summary := [][]interface{}{
		{"nodes", t.NumNodes()},
		{"elements", t.NumElements()},
		{"dofs", t.NumDOF()},
		{"weight", t.Weight()},
		{"load case", sol.Case.Name},
		{"condition estimate", sol.Diagnostics.Cond},
		{"solve residual", sol.Diagnostics.Residual},
		{"equilibrium residual", sol.Diagnostics.Equilibrium},
		{"warnings", len(sol.Diagnostics.Warnings)},
	}
	for _, w := range sol.Diagnostics.Warnings {
		summary = append(summary, []interface{}{"warning", w})
	}
	if err := writeRows(f, "Summary", summary); err != nil {
		return err
	}

	nodes := [][]interface{}{{"node", "x", "y", "z"}}
	for i := 0; i < t.NumNodes(); i++ {
		p := t.Node(i)
		nodes = append(nodes, []interface{}{i, p.X, p.Y, p.Z})
	}
	if err := writeRows(f, "Nodes", nodes); err != nil {
		return err
	}

	elements := [][]interface{}{{"element", "node a", "node b", "length", "area", "youngs", "density", "weight"}}
	for i, c := range t.Conn() {
		bar := t.Bar(i)
		elements = append(elements, []interface{}{
			i, c[0], c[1], bar.Length(), bar.Area, bar.Youngs, bar.Density, bar.Weight(),
		})
	}
	if err := writeRows(f, "Elements", elements); err != nil {
		return err
	}

	disps := [][]interface{}{{"node", "ux", "uy", "uz"}}
	reactions := [][]interface{}{{"node", "rx", "ry", "rz"}}
	for i := 0; i < t.NumNodes(); i++ {
		u := sol.Displacement(i)
		r := sol.Reaction(i)
		disps = append(disps, []interface{}{i, u.X, u.Y, u.Z})
		reactions = append(reactions, []interface{}{i, r.X, r.Y, r.Z})
	}
	if err := writeRows(f, "Displacements", disps); err != nil {
		return err
	}
	if err := writeRows(f, "Reactions", reactions); err != nil {
		return err
	}

	stresses := [][]interface{}{{"element", "strain", "stress", "force"}}
	for i, ax := range sol.Axials {
		stresses = append(stresses, []interface{}{i, ax.Strain, ax.Stress, ax.Force})
	}
	if err := writeRows(f, "Stresses", stresses); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		anchor, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, anchor, &rows[i]); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
