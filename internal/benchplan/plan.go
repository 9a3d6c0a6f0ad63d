// Package benchplan loads the run plan of tnp1-bench.
//
// A plan only chooses among the build-time search profiles and says how
// often to run them. It cannot change a search tunable.
package benchplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/tnp1/internal/search"
)

// FileName is the plan file looked up in the working directory.
const FileName = ".tnp1-bench.json"

// Error variables for plan loading.
var (
	ErrPlanFileNotFound = errors.New("plan file not found")
	ErrPlanFileRead     = errors.New("cannot read plan file")
	ErrPlanInvalid      = errors.New("invalid plan file")
	ErrNoProfiles       = errors.New("plan lists no profiles")
	ErrRunsNotPositive  = errors.New("runs must be positive")
)

// Plan says which profiles to run and how.
type Plan struct {
	Profiles []string `json:"profiles"`
	Runs     int      `json:"runs"`
	Verify   bool     `json:"verify"`
	Out      string   `json:"out,omitempty"`
}

// Default returns the plan used when no file exists.
func Default() Plan {
	return Plan{
		Profiles: []string{"small"},
		Runs:     1,
	}
}

// Load reads the plan. An explicit path must exist; without one, FileName
// in workDir is used when present and Default otherwise. The returned path
// is empty when no file was read.
func Load(workDir, explicitPath string) (Plan, string, error) {
	plan := Default()

	path := explicitPath
	mustExist := path != ""

	if path == "" {
		path = filepath.Join(workDir, FileName)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !mustExist && errors.Is(err, os.ErrNotExist) {
			return plan, "", nil
		}

		if errors.Is(err, os.ErrNotExist) {
			return Plan{}, "", fmt.Errorf("%w: %s", ErrPlanFileNotFound, path)
		}

		return Plan{}, "", fmt.Errorf("%w: %s: %w", ErrPlanFileRead, path, err)
	}

	fromFile, err := parse(data)
	if err != nil {
		return Plan{}, "", fmt.Errorf("%w %s: %w", ErrPlanInvalid, path, err)
	}

	plan = merge(plan, fromFile)

	err = plan.Validate()
	if err != nil {
		return Plan{}, "", fmt.Errorf("%w %s: %w", ErrPlanInvalid, path, err)
	}

	return plan, path, nil
}

func parse(data []byte) (Plan, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Plan{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var plan Plan

	err = json.Unmarshal(standardized, &plan)
	if err != nil {
		return Plan{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return plan, nil
}

func merge(base, overlay Plan) Plan {
	if len(overlay.Profiles) > 0 {
		base.Profiles = overlay.Profiles
	}

	if overlay.Runs != 0 {
		base.Runs = overlay.Runs
	}

	if overlay.Verify {
		base.Verify = true
	}

	if overlay.Out != "" {
		base.Out = overlay.Out
	}

	return base
}

// Validate checks that every profile exists and runs is positive.
func (p Plan) Validate() error {
	if len(p.Profiles) == 0 {
		return ErrNoProfiles
	}

	if p.Runs <= 0 {
		return fmt.Errorf("%w, got %d", ErrRunsNotPositive, p.Runs)
	}

	for _, name := range p.Profiles {
		_, err := search.Profile(name)
		if err != nil {
			return err
		}
	}

	return nil
}
