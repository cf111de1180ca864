package invoices

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/warebill/warebill/internal/billing"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	if _, err := s.buf.WriteString(line); err != nil {
		return err
	}
	return nil
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

// csvPrinter renders grouped totals with thousand separators so the export
// opens cleanly in spreadsheets used by billing ops.
var csvPrinter = message.NewPrinter(language.English)

// WriteInvoiceCSV streams one invoice as CSV: metadata comments, the lines
// in invoice order, one subtotal row per service type, then the grand total.
func WriteInvoiceCSV(w io.Writer, inv *billing.Invoice) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Invoice: %s", inv.ID)); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Customer: %s", inv.CustomerID)); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Period: %s to %s | Currency: %s",
		inv.Period.StartDate.Format("2006-01-02"), inv.Period.EndDate.Format("2006-01-02"), inv.Currency)); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"Service Type", "Charge Type", "Quantity", "Unit", "Unit Rate", "Amount"}); err != nil {
		return err
	}
	for _, ln := range inv.Lines {
		if err := streamer.writeRow([]string{
			string(ln.ServiceType),
			ln.ChargeType,
			ln.Quantity.String(),
			string(ln.Unit),
			ln.UnitRate.String(),
			ln.Amount.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"", "", "", "", "", ""}); err != nil {
		return err
	}
	for _, sub := range inv.ServiceSubtotals() {
		amount, _ := sub.Amount.Float64()
		if err := streamer.writeRow([]string{
			"Subtotal", string(sub.ServiceType), "", "", "", csvPrinter.Sprintf("%.2f", amount),
		}); err != nil {
			return err
		}
	}
	total, _ := inv.TotalAmount.Float64()
	if err := streamer.writeRow([]string{
		"Total", "", "", "", inv.Currency, csvPrinter.Sprintf("%.2f", total),
	}); err != nil {
		return err
	}
	return streamer.Close()
}
