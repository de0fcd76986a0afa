// Package csv implements the top-of-book replay source: an
// eventloop.Replayable that streams a memory-mapped CSV file of
// timestamped quotes into a pubsub.Publisher.
package csv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/mmap"

	"github.com/rivermark-labs/marketsim/pkg/marketdata"
	"github.com/rivermark-labs/marketsim/pkg/pubsub"
	"github.com/rivermark-labs/marketsim/pkg/simtime"
)

// ErrMalformedInput is returned when a line does not parse as
// "timestamp_ns,symbol,bidSize,bidPrice,askSize,askPrice".
var ErrMalformedInput = errors.New("marketdatacsv: malformed input")

// Reader is an eventloop.Replayable over a CSV file of top-of-book quotes.
// Timestamps must be strictly non-decreasing; Reader does not validate
// this, it is a precondition on the input file.
type Reader struct {
	publisher pubsub.Publisher[marketdata.TopOfBook]

	file    *mmap.ReaderAt
	scanner *bufio.Scanner

	entries map[string]*trackedEntry

	nextLine   parsedLine
	nextExists bool
}

type trackedEntry struct {
	book  marketdata.TopOfBook
	entry pubsub.PublisherEntry
}

type parsedLine struct {
	ts     simtime.TimestampNs
	symbol string
	book   marketdata.TopOfBook
}

// Open memory-maps path and primes the first line for reading.
func Open(path string, publisher pubsub.Publisher[marketdata.TopOfBook]) (*Reader, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("marketdatacsv: unable to open %q: %w", path, err)
	}

	section := io.NewSectionReader(f, 0, int64(f.Len()))
	scanner := bufio.NewScanner(section)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	r := &Reader{
		publisher: publisher,
		file:      f,
		scanner:   scanner,
		entries:   make(map[string]*trackedEntry),
	}

	if err := r.readNextLine(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the underlying memory mapping.
func (r *Reader) Close() error {
	return r.file.Close()
}

// NextEventTime implements eventloop.Replayable.
func (r *Reader) NextEventTime() simtime.TimestampNs {
	if !r.nextExists {
		return simtime.Max
	}
	return r.nextLine.ts
}

// DispatchNext implements eventloop.Replayable: publish every line sharing
// the current timestamp, then end the batch.
func (r *Reader) DispatchNext() {
	startTime := r.NextEventTime()
	if startTime >= simtime.Max {
		return
	}

	for {
		r.publish()
		if err := r.readNextLine(); err != nil {
			// A malformed line mid-stream is fatal; surface it by pinning
			// the cursor at Max so NextEventTime reports exhaustion and the
			// caller's error handling (checked at Open time for the first
			// line) is expected to have already rejected bad input.
			r.nextExists = false
			panic(err)
		}
		if r.NextEventTime() != startTime {
			break
		}
	}
	r.publisher.EndBatch()
}

// Skip implements eventloop.Replayable: discard lines strictly before ts.
func (r *Reader) Skip(ts simtime.TimestampNs) {
	for r.NextEventTime() < ts {
		if err := r.readNextLine(); err != nil {
			panic(err)
		}
	}
}

func (r *Reader) publish() {
	line := r.nextLine
	tracked, ok := r.entries[line.symbol]
	if !ok {
		tracked = &trackedEntry{book: line.book}
		tracked.entry = r.publisher.CreateEntry(line.symbol, &tracked.book)
		r.entries[line.symbol] = tracked
	} else {
		tracked.book = line.book
	}
	tracked.entry.Publish()
}

func (r *Reader) readNextLine() error {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return fmt.Errorf("marketdatacsv: read error: %w", err)
		}
		r.nextExists = false
		return nil
	}

	line, err := parseLine(r.scanner.Text())
	if err != nil {
		return err
	}
	r.nextLine = line
	r.nextExists = true
	return nil
}

func parseLine(line string) (parsedLine, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 6 {
		return parsedLine{}, fmt.Errorf("%w: expected 6 fields, got %d: %q", ErrMalformedInput, len(fields), line)
	}

	tsRaw, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return parsedLine{}, fmt.Errorf("%w: timestamp %q: %v", ErrMalformedInput, fields[0], err)
	}

	bidSize, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return parsedLine{}, fmt.Errorf("%w: bidSize %q: %v", ErrMalformedInput, fields[2], err)
	}
	bidPrice, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return parsedLine{}, fmt.Errorf("%w: bidPrice %q: %v", ErrMalformedInput, fields[3], err)
	}
	askSize, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return parsedLine{}, fmt.Errorf("%w: askSize %q: %v", ErrMalformedInput, fields[4], err)
	}
	askPrice, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return parsedLine{}, fmt.Errorf("%w: askPrice %q: %v", ErrMalformedInput, fields[5], err)
	}

	return parsedLine{
		ts:     simtime.TimestampNs(tsRaw),
		symbol: fields[1],
		book: marketdata.TopOfBook{
			BidSize:  bidSize,
			BidPrice: bidPrice,
			AskSize:  askSize,
			AskPrice: askPrice,
		},
	}, nil
}
