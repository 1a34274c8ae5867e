package pipeline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/ppiankov/newsclean/internal/model"
)

// ErrMalformedShard is returned when a shard cannot be parsed even line by line
var ErrMalformedShard = errors.New("malformed shard")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DiscoverShards lists files in dir whose extension matches one of exts
// (case-insensitive), sorted by path
func DiscoverShards(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if matchesExtension(e.Name(), exts) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func matchesExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// ReadInfo describes how a shard was parsed
type ReadInfo struct {
	Records     int
	Fallback    bool  // strict parse failed and the line-by-line parse was used
	StrictError error // why the strict parse failed, when Fallback is set
}

// ReadShard parses a newline-delimited JSON shard into a raw batch.
// The whole file is first decoded as a stream of JSON objects; when that
// fails, each non-blank line is parsed on its own. Column order follows the
// first appearance of each key.
func ReadShard(path string) (*model.Batch, ReadInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ReadInfo{}, fmt.Errorf("read shard: %w", err)
	}
	return ParseShard(path, data)
}

// ParseShard is ReadShard over in-memory content; path is used in errors only
func ParseShard(path string, data []byte) (*model.Batch, ReadInfo, error) {
	records, strictErr := parseStrict(data)
	info := ReadInfo{}
	if strictErr != nil {
		var err error
		records, err = parseLines(path, data)
		if err != nil {
			return nil, ReadInfo{}, err
		}
		info.Fallback = true
		info.StrictError = strictErr
	}
	info.Records = len(records)
	return buildBatch(records), info, nil
}

// parseStrict decodes data as a sequence of JSON objects
func parseStrict(data []byte) ([]gjson.Result, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var records []gjson.Result
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(records)+1, err)
		}
		rec := gjson.ParseBytes(raw)
		if !rec.IsObject() {
			return nil, fmt.Errorf("record %d is not an object", len(records)+1)
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseLines is the permissive fallback: BOM and CR tolerant, blank lines skipped
func parseLines(path string, data []byte) ([]gjson.Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var records []gjson.Result
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			return nil, fmt.Errorf("%w: %s line %d: invalid JSON", ErrMalformedShard, path, lineNo)
		}
		rec := gjson.Parse(line)
		if !rec.IsObject() {
			return nil, fmt.Errorf("%w: %s line %d: not a JSON object", ErrMalformedShard, path, lineNo)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedShard, path, err)
	}
	return records, nil
}

// buildBatch lays records out as columns in first-seen key order; absent keys are null
func buildBatch(records []gjson.Result) *model.Batch {
	var order []string
	cols := make(map[string][]model.Value)

	for i, rec := range records {
		rec.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			vals, ok := cols[name]
			if !ok {
				vals = make([]model.Value, len(records))
				order = append(order, name)
			}
			// Repeated keys within one object: last one wins
			vals[i] = ValueOf(value)
			cols[name] = vals
			return true
		})
	}

	b := model.NewBatch(len(records))
	for _, name := range order {
		b.AddColumn(name, cols[name])
	}
	return b
}

// ValueOf converts a parsed JSON value into a cell; objects and arrays are compacted
func ValueOf(r gjson.Result) model.Value {
	switch r.Type {
	case gjson.String:
		return model.String(r.Str)
	case gjson.Number:
		return model.NumberLiteral(r.Num, r.Raw)
	case gjson.True:
		return model.Bool(true)
	case gjson.False:
		return model.Bool(false)
	case gjson.JSON:
		return model.JSON(string(pretty.Ugly([]byte(r.Raw))))
	default:
		return model.Null
	}
}
