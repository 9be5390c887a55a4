// Package dataset loads the solubility table, assembles the fingerprint and
// graph datasets with a reproducible train/test split, and batches graphs for
// the training loop.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Row is one usable line of the input table.  Row numbers are 1-based and
// count the header, matching what an editor shows.
type Row struct {
	Line   int
	SMILES string
	Target float64
}

// CSVOptions selects columns by header name.
type CSVOptions struct {
	SMILESColumn string
	TargetColumn string
	Delimiter    rune
}

// LoadCSV reads a delimited table.  Rows with an empty SMILES or a
// non-numeric target are logged and dropped.
func LoadCSV(r io.Reader, opts CSVOptions, logger logging.Logger) ([]Row, error) {
	log := logging.OrDefault(logger)
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeDatasetEmpty, "input table is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetReadFailed, "failed to read header")
	}

	smilesIdx, targetIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case opts.SMILESColumn:
			smilesIdx = i
		case opts.TargetColumn:
			targetIdx = i
		}
	}
	if smilesIdx < 0 {
		return nil, errors.Newf(errors.ErrCodeDatasetColumnMissing, "column %q not found", opts.SMILESColumn)
	}
	if targetIdx < 0 {
		return nil, errors.Newf(errors.ErrCodeDatasetColumnMissing, "column %q not found", opts.TargetColumn)
	}

	var rows []Row
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatasetReadFailed, "failed to read row").
				WithDetailf("line=%d", line)
		}
		if smilesIdx >= len(rec) || targetIdx >= len(rec) {
			log.Warn("row is missing columns, dropped", logging.Row(line))
			continue
		}
		smiles := strings.TrimSpace(rec[smilesIdx])
		if smiles == "" {
			log.Warn("row has no SMILES, dropped", logging.Row(line))
			continue
		}
		target, err := strconv.ParseFloat(strings.TrimSpace(rec[targetIdx]), 64)
		if err != nil {
			log.Warn("row target is not numeric, dropped", logging.Row(line), logging.SMILES(smiles), logging.Err(err))
			continue
		}
		rows = append(rows, Row{Line: line, SMILES: smiles, Target: target})
	}

	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetEmpty, "input table has no usable rows")
	}
	return rows, nil
}

// LoadCSVFile opens path and calls LoadCSV.
func LoadCSVFile(path string, opts CSVOptions, logger logging.Logger) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetReadFailed, "failed to open input table").
			WithDetailf("path=%s", path)
	}
	defer f.Close()
	return LoadCSV(f, opts, logger)
}

//Personal.AI order the ending
