package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pion/logging"
	"github.com/pkg/errors"

	"github.com/cwbudde/algo-radcal/calib"
	"github.com/cwbudde/algo-radcal/dataset"
	"github.com/cwbudde/algo-radcal/diagnostics"
	"github.com/cwbudde/algo-radcal/internal/appconfig"
	"github.com/cwbudde/algo-radcal/report"
)

// outcome is the result of calibrating one channel pair.
type outcome struct {
	Pair   dataset.ChannelPair
	Result calib.Result
	Diag   *diagnostics.Report
	Files  []string
	Err    error
}

// pipeline reads a logger file, calibrates the selected pairs and writes
// one report set per pair.
type pipeline struct {
	cfg      appconfig.Config
	pairs    []string // pair names to keep; empty keeps all
	log      logging.LeveledLogger
	calibLog logging.LeveledLogger
	now      func() time.Time
}

func newPipeline(cfg appconfig.Config, logs logging.LoggerFactory, pairs []string) *pipeline {
	return &pipeline{
		cfg:      cfg,
		pairs:    pairs,
		log:      logs.NewLogger("dataset"),
		calibLog: logs.NewLogger("calib"),
		now:      time.Now,
	}
}

func (p *pipeline) load(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening logger file")
	}
	defer f.Close()

	tbl, err := dataset.Read(f, p.cfg.Input.ReadOptions()...)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if n := tbl.DeleteRows(p.cfg.Input.DeleteRows...); n > 0 {
		p.log.Infof("%s: deleted %d rows", path, n)
	}

	if tbl.HasColumn(p.cfg.Input.TimestampColumn) {
		_, bad, err := tbl.Timestamps()
		if err != nil {
			return nil, err
		}
		if len(bad) > 0 {
			p.log.Warnf("%s: %d rows without a valid timestamp, first at row %d", path, len(bad), bad[0])
		}
	}
	return tbl, nil
}

// selectPairs pairs the channel columns of tbl and applies the pair filter.
func (p *pipeline) selectPairs(tbl *dataset.Table) ([]dataset.ChannelPair, []string) {
	pairs, unmatched := dataset.PairChannels(tbl.Channels(p.cfg.Input.ExcludeColumns))
	if len(p.pairs) == 0 {
		return pairs, unmatched
	}

	want := make(map[string]bool, len(p.pairs))
	for _, name := range p.pairs {
		want[name] = true
	}
	kept := pairs[:0]
	for _, pr := range pairs {
		if want[pr.Name()] || want[pr.Up] || want[pr.Down] {
			kept = append(kept, pr)
		}
	}
	return kept, unmatched
}

func (p *pipeline) run(path string) ([]outcome, error) {
	tbl, err := p.load(path)
	if err != nil {
		return nil, err
	}

	pairs, unmatched := p.selectPairs(tbl)
	for _, name := range unmatched {
		p.log.Debugf("%s: column %s has no up/down twin", path, name)
	}
	if len(pairs) == 0 {
		return nil, errors.Errorf("%s: no matching up/down channel pairs", path)
	}

	if err := os.MkdirAll(p.cfg.Output.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}

	now := p.now()
	out := make([]outcome, 0, len(pairs))
	for _, pr := range pairs {
		oc := p.calibrate(tbl, pr)
		if oc.Err == nil {
			oc.Files, oc.Err = p.write(path, oc, now)
		}
		if oc.Err != nil {
			p.log.Errorf("%s: pair %s: %v", path, pr.Name(), oc.Err)
		}
		out = append(out, oc)
	}
	return out, nil
}

func (p *pipeline) calibrate(tbl *dataset.Table, pr dataset.ChannelPair) outcome {
	oc := outcome{Pair: pr}

	rd, err := tbl.Extract(pr)
	if err != nil {
		oc.Err = err
		return oc
	}
	if len(rd.Dropped) > 0 {
		p.log.Infof("pair %s: skipped %d rows with missing readings", pr.Name(), len(rd.Dropped))
	}

	oc.Result, oc.Err = calib.CalibrateConfig(rd.Up, rd.Down, p.cfg.CalibConfig(p.calibLog))
	if oc.Err != nil {
		return oc
	}

	diag, err := diagnostics.Analyze(oc.Result, diagnostics.DefaultMaxLag)
	if err != nil {
		oc.Err = errors.Wrap(err, "residual diagnostics")
		return oc
	}
	oc.Diag = &diag
	if diag.SerialCorrelation {
		p.log.Warnf("pair %s: residuals are serially correlated (acf[1]=%.3f)", pr.Name(), diag.Autocorrelation[1])
	}
	return oc
}

func (p *pipeline) write(source string, oc outcome, now time.Time) ([]string, error) {
	format, err := report.ParseFormat(p.cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	name := report.Filename(p.cfg.Output.Station, oc.Pair.Name(), now)
	base := filepath.Join(p.cfg.Output.Dir, strings.TrimSuffix(name, ".dat"))

	cal := report.FromResult(oc.Pair, p.cfg.CalibConfig(nil), oc.Result, oc.Diag)
	cal.Station = p.cfg.Output.Station
	cal.Source = filepath.Base(source)
	cal.Created = now.UTC().Truncate(time.Second)

	files := []string{base + ".dat", base + format.Ext()}
	writers := []func(*os.File) error{
		func(f *os.File) error { return report.WriteRetained(f, oc.Result) },
		func(f *os.File) error { return report.Encode(f, cal, format) },
	}
	if p.cfg.Output.Samples {
		files = append(files, base+"_samples.csv")
		writers = append(writers, func(f *os.File) error { return report.WriteSamples(f, oc.Result) })
	}

	for i, file := range files {
		if err := writeFile(file, writers[i]); err != nil {
			return files[:i], err
		}
	}
	return files, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
