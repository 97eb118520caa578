package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/DJKarma/price-prism/internal/project"
	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/export"
	"github.com/DJKarma/price-prism/pkg/optimize"
	"github.com/DJKarma/price-prism/pkg/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatXLSX  = "xlsx"
)

var errInvalid = errors.New("configuration has validation errors")

type priceOptions struct {
	format string
	out    string
	mode   string
}

type optimizeOptions struct {
	scope        string
	bedroomType  string
	bedroomTypes []string
	target       float64
	mode         string
	settings     config.OptimizerSettings
	write        bool
	format       string
}

func loadProject(projectPath string) (*project.Project, error) {
	p, err := project.Load(projectPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("project loaded",
		zap.String("project", projectPath),
		zap.Int("units", len(p.Units)))
	return p, nil
}

func runValidate(w io.Writer, projectPath string) error {
	p, err := loadProject(projectPath)
	if err != nil {
		return err
	}

	report := p.Validate()
	if report.Valid {
		mode, err := p.Mode("")
		if err != nil {
			return err
		}
		priced, err := p.Price(mode)
		if err != nil {
			return err
		}
		report = priced.Report
	}

	printValidationReport(w, report)
	if !report.Valid {
		return errInvalid
	}
	return nil
}

func runPrice(w io.Writer, projectPath string, opts priceOptions) error {
	switch opts.format {
	case formatTable, formatJSON:
	case formatXLSX:
		if opts.out == "" {
			return fmt.Errorf("--out is required for xlsx output")
		}
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	p, err := loadProject(projectPath)
	if err != nil {
		return err
	}
	mode, err := p.Mode(opts.mode)
	if err != nil {
		return err
	}
	priced, err := p.Price(mode)
	if err != nil {
		return reportFailure(w, err)
	}

	if opts.out == "" {
		return writePriced(w, priced, opts)
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	err = writePriced(f, priced, opts)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing output file: %w", cerr)
	}
	return err
}

func writePriced(w io.Writer, priced *project.Priced, opts priceOptions) error {
	switch opts.format {
	case formatJSON:
		return writeJSON(w, priced)
	case formatXLSX:
		if err := export.WriteXLSX(w, priced.Units, priced.Summary); err != nil {
			return err
		}
		logger.Info("workbook written", zap.String("path", opts.out), zap.Int("units", len(priced.Units)))
		return nil
	}

	printPricedTable(w, priced.Units)
	fmt.Fprintln(w)
	printSummary(w, priced.Summary)
	if len(priced.Report.Errors)+len(priced.Report.Warnings) > 0 {
		fmt.Fprintln(w)
		printValidationReport(w, priced.Report)
	}
	return nil
}

func runFloors(w io.Writer, projectPath string, maxFloor int) error {
	p, err := loadProject(projectPath)
	if err != nil {
		return err
	}
	if err := validation.ValidateConfig(p.Config).Err(); err != nil {
		return reportFailure(w, err)
	}
	printFloorTable(w, p.FloorTable(maxFloor))
	return nil
}

func runOptimize(w io.Writer, projectPath string, opts optimizeOptions) error {
	if opts.format != formatTable && opts.format != formatJSON {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	p, err := loadProject(projectPath)
	if err != nil {
		return err
	}
	mode, err := p.Mode(opts.mode)
	if err != nil {
		return err
	}

	scope := optimize.Scope(opts.scope)
	log := logger.With(zap.String("run_id", uuid.NewString()), zap.String("scope", opts.scope))
	log.Info("optimization started", zap.Float64("target", opts.target))

	res, err := p.Optimize(scope, optimize.Request{
		Mode:         mode,
		BedroomType:  opts.bedroomType,
		BedroomTypes: opts.bedroomTypes,
		Target:       opts.target,
		Settings:     opts.settings,
	})
	if err != nil {
		log.Warn("optimization failed", zap.Error(err))
		return reportFailure(w, err)
	}
	log.Info("optimization finished",
		zap.Int("iterations", res.Iterations),
		zap.Bool("converged", res.Converged),
		zap.Float64("final_average_psf", res.FinalAveragePsf))

	if opts.write {
		path, err := config.FindProjectFile(projectPath, config.ProjectFiles)
		if err != nil {
			return err
		}
		if err := config.Save(path, res.Apply(p.Config)); err != nil {
			return err
		}
		log.Info("config updated", zap.String("path", path))
	}

	if opts.format == formatJSON {
		return writeJSON(w, res)
	}
	printOptimizeResult(w, res)
	return nil
}

// reportFailure prints the validation report behind a configuration error.
func reportFailure(w io.Writer, err error) error {
	var cerr *validation.ConfigurationError
	if errors.As(err, &cerr) {
		printValidationReport(w, cerr.Report)
		return errInvalid
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
