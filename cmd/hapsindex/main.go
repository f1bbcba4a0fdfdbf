// Command hapsindex writes a sparse segment index for .haps genotype files.
package main

import (
	"hapsindex/internal/app"
	"hapsindex/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
