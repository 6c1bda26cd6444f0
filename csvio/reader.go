// Package csvio decodes transaction streams from CSV and renders account
// snapshots back to CSV, matching the `type,client,tx,amount` input format.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerflow/ledger"
)

// RejectFunc is invoked for every row that cannot be decoded. The row is
// skipped and decoding continues; only reader-level failures abort the run.
type RejectFunc func(line int, err error)

// Decoder streams transaction records out of a CSV source. Rows it cannot
// interpret at all (unknown kind, unparseable numbers, too few columns) go
// to the reject callback; semantically invalid but well-formed records are
// passed through for the processor to judge.
type Decoder struct {
	r      *csv.Reader
	reject RejectFunc
	line   int
	cur    ledger.Record
	err    error
}

// NewDecoder wraps r. reject may be nil, in which case malformed rows are
// dropped silently.
func NewDecoder(r io.Reader, reject RejectFunc) *Decoder {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if reject == nil {
		reject = func(int, error) {}
	}
	return &Decoder{r: cr, reject: reject}
}

// Next advances to the next decodable record. It returns false at end of
// input or on a reader failure; check Err to tell the two apart.
func (d *Decoder) Next() bool {
	for {
		row, err := d.r.Read()
		if errors.Is(err, io.EOF) {
			return false
		}
		if err != nil {
			// csv.Reader reports per-row quoting problems as *csv.ParseError;
			// those reject one row rather than ending the stream.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				d.line++
				d.reject(d.line, err)
				continue
			}
			d.err = fmt.Errorf("csvio: read row: %w", err)
			return false
		}
		d.line++

		if d.line == 1 && isHeader(row) {
			continue
		}

		rec, err := decodeRow(row)
		if err != nil {
			d.reject(d.line, err)
			continue
		}
		d.cur = rec
		return true
	}
}

// Record returns the record decoded by the last successful Next.
func (d *Decoder) Record() ledger.Record {
	return d.cur
}

// Err returns the reader failure that ended decoding, if any. Rejected rows
// never surface here.
func (d *Decoder) Err() error {
	return d.err
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "type")
}

func decodeRow(row []string) (ledger.Record, error) {
	if len(row) < 3 {
		return ledger.Record{}, fmt.Errorf("csvio: expected at least 3 columns, got %d", len(row))
	}

	kind, err := parseKind(strings.TrimSpace(row[0]))
	if err != nil {
		return ledger.Record{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(row[1]), 10, 16)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("csvio: parse client id %q: %w", row[1], err)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(row[2]), 10, 32)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("csvio: parse tx id %q: %w", row[2], err)
	}

	rec := ledger.Record{
		Kind:     kind,
		ClientID: uint16(client),
		TxID:     uint32(tx),
	}

	if len(row) > 3 {
		raw := strings.TrimSpace(row[3])
		if raw != "" {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return ledger.Record{}, fmt.Errorf("csvio: parse amount %q: %w", raw, err)
			}
			rec.Amount = amount
			rec.HasAmount = true
		}
	}
	return rec, nil
}

func parseKind(s string) (ledger.Kind, error) {
	switch strings.ToLower(s) {
	case "deposit":
		return ledger.KindDeposit, nil
	case "withdrawal":
		return ledger.KindWithdrawal, nil
	case "dispute":
		return ledger.KindDispute, nil
	case "resolve":
		return ledger.KindResolve, nil
	case "chargeback":
		return ledger.KindChargeback, nil
	default:
		return "", fmt.Errorf("csvio: unknown record type %q", s)
	}
}
