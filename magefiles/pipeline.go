//go:build mage

package main

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// run invokes the built CLI with the given arguments.
func run(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Ingest parses the intake form and matches PDFs to sources.
func Ingest() error {
	mg.Deps(Build)
	return run("ingest")
}

// Extract runs evidence extraction over all sources.
func Extract() error {
	mg.Deps(Build)
	return run("extract")
}

// Aggregate renders the review outputs from persisted records.
func Aggregate() error {
	mg.Deps(Build)
	return run("aggregate")
}

// Pipeline runs the full pipeline unattended.
func Pipeline() error {
	mg.Deps(Build)
	return run("run", "--yes")
}
