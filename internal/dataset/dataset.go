// Package dataset reads labeled sequences in the crfsuite text format.
//
// Every non-empty line is one item: a label followed by tab-separated
// attributes, each optionally suffixed with ":value" (default 1). An empty
// line ends the current sequence. Inside attribute names "\:" stands for a
// literal colon and "\\" for a backslash.
//
//	B-PER	w[0]=John	shape=ULL	pos\:tag=NNP
//	O	w[0]=runs	len:4
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/happyhackingspace/seqtag/crf"
)

const maxLineSize = 16 * 1024 * 1024

// Read parses all sequences from r.
func Read(r io.Reader) ([]crf.TrainingSequence, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		sequences []crf.TrainingSequence
		cur       crf.TrainingSequence
	)
	flush := func() {
		if len(cur.Labels) > 0 {
			sequences = append(sequences, cur)
		}
		cur = crf.TrainingSequence{}
	}

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		fields := strings.Split(line, "\t")
		feats := make(map[string]float64, len(fields)-1)
		for _, field := range fields[1:] {
			if field == "" {
				continue
			}
			name, value, err := parseAttribute(field)
			if err != nil {
				return nil, fmt.Errorf("dataset: line %d: %w", lineNo, err)
			}
			feats[name] += value
		}
		cur.Labels = append(cur.Labels, fields[0])
		cur.Features = append(cur.Features, feats)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: line %d: %w", lineNo+1, err)
	}
	flush()
	return sequences, nil
}

// ReadFile parses all sequences from the file at path.
func ReadFile(path string) ([]crf.TrainingSequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	seqs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seqs, nil
}

// parseAttribute splits "name[:value]" honoring the \: and \\ escapes.
func parseAttribute(field string) (string, float64, error) {
	var name strings.Builder
	sep := -1
	for i := 0; i < len(field); i++ {
		ch := field[i]
		switch {
		case ch == '\\' && i+1 < len(field) && (field[i+1] == ':' || field[i+1] == '\\'):
			name.WriteByte(field[i+1])
			i++
		case ch == ':':
			sep = i
		default:
			name.WriteByte(ch)
		}
		if sep >= 0 {
			break
		}
	}

	if sep < 0 {
		return name.String(), 1, nil
	}
	raw := field[sep+1:]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("attribute %q: invalid value %q", field, raw)
	}
	if name.Len() == 0 {
		return "", 0, fmt.Errorf("attribute %q: empty name", field)
	}
	return name.String(), value, nil
}
