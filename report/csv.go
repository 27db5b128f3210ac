package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/cwbudde/algo-radcal/calib"
	"github.com/cwbudde/algo-radcal/dataset"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	return errors.Wrap(cw.Error(), "writing csv")
}

// WriteRetained writes the surviving pairs as "index,up,down,fitted".
func WriteRetained(w io.Writer, res calib.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "up", "down", "fitted"}); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for i, idx := range res.RetainedIndex {
		rec := []string{
			strconv.Itoa(idx),
			formatFloat(res.RetainedUp[i]),
			formatFloat(res.RetainedDown[i]),
			formatFloat(res.Fitted[i]),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "writing row %d", i)
		}
	}
	return flush(cw)
}

// WriteSamples writes every input pair as "index,up,down,fitted,retained".
// fitted is evaluated on the final line for discarded pairs too so a
// plotting tool can draw the line through the full data.
func WriteSamples(w io.Writer, res calib.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "up", "down", "fitted", "retained"}); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	next := 0
	for i, x := range res.OriginalUp {
		kept := next < len(res.RetainedIndex) && res.RetainedIndex[next] == i
		if kept {
			next++
		}
		rec := []string{
			strconv.Itoa(i),
			formatFloat(x),
			formatFloat(res.OriginalDown[i]),
			formatFloat(res.Slope*x + res.Intercept),
			strconv.FormatBool(kept),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "writing row %d", i)
		}
	}
	return flush(cw)
}

// WritePairs writes the channel-pair configuration as
// "name,up,down,wavelength_nm".
func WritePairs(w io.Writer, pairs []dataset.ChannelPair) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "up", "down", "wavelength_nm"}); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, p := range pairs {
		if err := cw.Write([]string{p.Name(), p.Up, p.Down, strconv.Itoa(p.WavelengthNM)}); err != nil {
			return errors.Wrapf(err, "writing pair %s", p.Name())
		}
	}
	return flush(cw)
}
