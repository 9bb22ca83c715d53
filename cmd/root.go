// Package cmd implements the command line interface.
package cmd

import (
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "truss-me",
	Short: "Linear static analysis of 3D pin-jointed trusses",
	Long: `Truss-Me analyzes three-dimensional pin-jointed trusses by the
direct stiffness method: it assembles the global stiffness matrix from
axial bar elements, solves the supported system for joint displacements,
and recovers support reactions and member strains, stresses and forces.

Models are plain JSON files. Results print to the terminal and can be
written to PDF and XLSX reports.`,
}

// Execute runs the root command. Cobra prints the failure itself; the
// exit code is all that is left to signal.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadEnv)
}

// loadEnv pulls optional defaults from a .env file in the working
// directory. A missing file is fine, a malformed one is not.
func loadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}
}

// envFloat reads a float environment variable, keeping the fallback when
// the variable is unset.
func envFloat(key string, fallback float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Fatalf("parse %s=%q: %v", key, s, err)
	}
	return v
}

// envString reads an environment variable, keeping the fallback when the
// variable is unset.
func envString(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}
