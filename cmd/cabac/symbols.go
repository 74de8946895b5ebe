package main

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// readSymbols reads whitespace separated unsigned integers.
func readSymbols(r io.Reader) ([]uint64, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	var symbols []uint64
	for sc.Scan() {
		v, err := strconv.ParseUint(sc.Text(), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "symbol %d", len(symbols))
		}
		symbols = append(symbols, v)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to read symbols")
	}
	return symbols, nil
}

// writeSymbols writes one symbol per line.
func writeSymbols(w io.Writer, symbols []uint64) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for _, s := range symbols {
		buf = strconv.AppendUint(buf[:0], s, 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return errors.Wrap(err, "unable to write symbols")
		}
	}
	return errors.Wrap(bw.Flush(), "unable to write symbols")
}
