package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/aluiziolira/go-tech-catalog/models"
)

// OutputWriter streams products in an export format.
type OutputWriter interface {
	Write(products []models.Product) error
	Close() error
	Count() int
}

// Export formats accepted by NewWriter.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// NewWriter returns the writer for format, or an error for unknown formats.
func NewWriter(format string, w io.Writer) (OutputWriter, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(w)
	case FormatJSON:
		return NewJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ContentType returns the MIME type served for an export format.
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/x-ndjson"
}

// CSVWriter writes records to CSV.
type CSVWriter struct {
	writer *csv.Writer
	count  int
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	writer := csv.NewWriter(w)
	header := []string{"id", "title", "description", "price", "category", "link", "source", "scraped_at"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return &CSVWriter{writer: writer}, nil
}

// Write appends products to the CSV output.
func (cw *CSVWriter) Write(products []models.Product) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, product := range products {
		scrapedAt := ""
		if product.ScrapedAt != nil {
			scrapedAt = product.ScrapedAt.Format(time.RFC3339)
		}
		record := []string{
			strconv.Itoa(product.ID),
			product.Title,
			product.Description,
			product.Price,
			product.Category,
			product.Link,
			product.Source,
			scrapedAt,
		}
		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
		cw.count++
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes anything still buffered.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return nil
}

// Count returns the number of records written, excluding the header.
func (cw *CSVWriter) Count() int {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.count
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	writer  *bufio.Writer
	encoder *json.Encoder
	count   int
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	buffer := bufio.NewWriter(w)
	return &JSONWriter{
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}
}

// Write appends products in JSONL format.
func (jw *JSONWriter) Write(products []models.Product) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, product := range products {
		if err := jw.encoder.Encode(product); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
		jw.count++
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Count returns the number of records written.
func (jw *JSONWriter) Count() int {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	return jw.count
}
