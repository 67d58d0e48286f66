// The staticlint binary bundles the static analyzers used on this
// project into a single multichecker: a set of standard passes from the
// Go toolchain, the staticcheck "SA" analyzers enabled through
// config.json next to the binary, the ineffassign and nilerr analyzers,
// and the project-specific noosexit analyzer.
package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"

	"github.com/tinyapp/tinyapp/cmd/staticlint/noosexit"
)

// configFileName names the JSON file, looked up next to the binary,
// that lists the enabled staticcheck analyzers.
const configFileName = `config.json`

type configData struct {
	Staticcheck []string
}

func loadConfig() (*configData, error) {
	binaryPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(binaryPath), configFileName))
	if err != nil {
		return nil, err
	}

	cfg := &configData{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	checks := []*analysis.Analyzer{
		copylock.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		noosexit.Analyzer,
	}

	enabled := map[string]bool{}
	for _, name := range cfg.Staticcheck {
		enabled[name] = true
	}
	for _, check := range staticcheck.Analyzers {
		if enabled[check.Analyzer.Name] {
			checks = append(checks, check.Analyzer)
		}
	}

	multichecker.Main(checks...)
}
