package cmd

import (
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/morhenderson/Truss-Me/model"
	"github.com/morhenderson/Truss-Me/report"
	"github.com/morhenderson/Truss-Me/truss"
)

var (
	analyzePDF     bool
	analyzeXLSX    bool
	analyzeMagnify float64
	analyzeWorkers int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <model.json>",
	Short: "Solve a truss model and report displacements, reactions and member forces",
	Long: `Solve a truss model by the direct stiffness method.

The model is a JSON file with nodes, elements, supports and loads:

{
  "name": "two-bar",
  "nodes": [
    {"x": 0, "y": 0, "z": 0},
    {"x": 1, "y": 0, "z": 0},
    {"x": 2, "y": 0, "z": 0}
  ],
  "elements": [
    {"a": 0, "b": 1, "area": 1e-4, "youngs": 2e11},
    {"a": 1, "b": 2, "area": 1e-4, "youngs": 2e11}
  ],
  "supports": [
    {"node": 0, "fix": [true, true, true]},
    {"node": 1, "fix": [false, true, true]},
    {"node": 2, "fix": [false, true, true]}
  ],
  "loads": [
    {"node": 2, "force": [1000, 0, 0]}
  ],
  "self_weight": false
}

Environment (or a .env file in the working directory):
  TRUSS_OUT_DIR     directory for PDF/XLSX output, default the model's directory
  TRUSS_COND_LIMIT  condition estimate warning threshold, default 1e12`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzePDF, "pdf", false, "write a PDF report")
	analyzeCmd.Flags().BoolVar(&analyzeXLSX, "xlsx", false, "write an XLSX workbook")
	analyzeCmd.Flags().Float64Var(&analyzeMagnify, "magnify", 0, "deformed shape magnification, 0 picks one from the results")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "assembly workers, 0 uses GOMAXPROCS")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	m, err := model.Load(path)
	if err != nil {
		return err
	}

	cfg := truss.Config{
		Workers:   effectiveWorkers(analyzeWorkers),
		CondLimit: envFloat("TRUSS_COND_LIMIT", 0),
	}
	tr, lc, err := m.Build(cfg)
	if err != nil {
		return err
	}

	sol, err := tr.Solve(lc)
	if err != nil {
		return err
	}
	printSolution(tr, sol)

	if !analyzePDF && !analyzeXLSX {
		return nil
	}

	magnify := analyzeMagnify
	if magnify <= 0 {
		magnify = autoMagnify(tr, sol)
	}
	outDir := envString("TRUSS_OUT_DIR", filepath.Dir(path))
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if analyzePDF {
		out := filepath.Join(outDir, stem+".pdf")
		if err := report.SavePDF(out, tr, sol, report.Meta{Title: m.Name}, magnify); err != nil {
			return fmt.Errorf("write PDF: %w", err)
		}
		fmt.Printf("wrote %s\n", out)
	}
	if analyzeXLSX {
		out := filepath.Join(outDir, stem+".xlsx")
		if err := report.WriteWorkbook(out, tr, sol); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		fmt.Printf("wrote %s\n", out)
	}
	return nil
}

// effectiveWorkers resolves the --workers flag: positive counts pass
// through, anything else takes the runtime's GOMAXPROCS.
func effectiveWorkers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// autoMagnify scales the largest displacement to a twentieth of the
// structure's extent so the deformed drawing reads at a glance.
func autoMagnify(tr *truss.Truss, sol *truss.Solution) float64 {
	umax := floats.Norm(sol.Displacements, math.Inf(1))
	if umax <= 0 {
		return 1
	}
	var extent float64
	p0 := tr.Node(0)
	for i := 1; i < tr.NumNodes(); i++ {
		p := tr.Node(i)
		for _, d := range []float64{p.X - p0.X, p.Y - p0.Y, p.Z - p0.Z} {
			if a := math.Abs(d); a > extent {
				extent = a
			}
		}
	}
	if extent <= 0 {
		extent = 1
	}
	return extent / (20 * umax)
}

func printSolution(tr *truss.Truss, sol *truss.Solution) {
	fmt.Print(tr)
	d := sol.Diagnostics
	fmt.Printf("Case %q: condition %.3e, residual %.3e, equilibrium %.3e\n",
		sol.Case.Name, d.Cond, d.Residual, d.Equilibrium)
	for _, w := range d.Warnings {
		fmt.Printf("warning: %s\n", w)
	}

	fmt.Println("\nNode displacements (m) and reactions (N):")
	fmt.Printf("%4s %12s %12s %12s %12s %12s %12s\n", "node", "ux", "uy", "uz", "rx", "ry", "rz")
	for i := 0; i < tr.NumNodes(); i++ {
		u := sol.Displacement(i)
		r := sol.Reaction(i)
		fmt.Printf("%4d %12.4e %12.4e %12.4e %12.4e %12.4e %12.4e\n",
			i, u.X, u.Y, u.Z, r.X, r.Y, r.Z)
	}

	fmt.Println("\nMember axial results:")
	fmt.Printf("%4s %12s %12s %12s\n", "elem", "strain", "stress (Pa)", "force (N)")
	for i, ax := range sol.Axials {
		fmt.Printf("%4d %12.4e %12.4e %12.4e\n", i, ax.Strain, ax.Stress, ax.Force)
	}
	fmt.Println()
}
