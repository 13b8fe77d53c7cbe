package catalog

import (
	"bufio"
	"os"
	"strings"

	"github.com/juju/errors"

	"tupledb/pkg/logger"
	"tupledb/pkg/primitives"
	"tupledb/pkg/storage/heap"
	"tupledb/pkg/tuple"
	"tupledb/pkg/types"
)

// tableDefinition is one parsed line of a schema description file.
type tableDefinition struct {
	name       string
	fieldNames []string
	fieldTypes []types.Type
	primaryKey string
}

// LoadSchema reads a schema description file and registers one table per
// line, each backed by a heap file named <tableName>.dat beside the
// description file.
//
// Line format: `name (field type [pk], field type [pk], ...)` with types
// int and string, case-insensitive. A malformed line, unknown type, or
// unknown annotation is a fatal configuration error: the process terminates
// rather than running with a malformed catalog.
func (c *Catalog) LoadSchema(path string) {
	file, err := os.Open(path)
	if err != nil {
		logger.Fatalf("cannot open schema description %s: %v", path, err)
	}
	defer file.Close()

	baseDir := primitives.Filepath(path).Dir()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		def, err := parseTableDefinition(line)
		if err != nil {
			logger.Fatalf("invalid catalog entry %q: %v", line, err)
		}

		td, err := tuple.NewTupleDesc(def.fieldTypes, def.fieldNames)
		if err != nil {
			logger.Fatalf("invalid schema for table %q: %v", def.name, err)
		}

		tablePath := primitives.Filepath(baseDir).Join(def.name + ".dat")
		hf, err := heap.NewHeapFile(tablePath, td)
		if err != nil {
			logger.Fatalf("cannot open heap file for table %q: %v", def.name, err)
		}

		c.AddTable(hf, def.name, def.primaryKey)
		logger.Infof("added table %q with schema %s", def.name, td)
	}

	if err := scanner.Err(); err != nil {
		logger.Fatalf("reading schema description %s: %v", path, err)
	}
}

// parseTableDefinition parses one `name (field type [pk], ...)` line.
func parseTableDefinition(line string) (*tableDefinition, error) {
	open := strings.Index(line, "(")
	close := strings.LastIndex(line, ")")
	if open < 0 || close < open {
		return nil, errors.Errorf("expected `name (field type, ...)`")
	}

	def := &tableDefinition{
		name: strings.TrimSpace(line[:open]),
	}
	if def.name == "" {
		return nil, errors.Errorf("missing table name")
	}

	for _, fieldSpec := range strings.Split(line[open+1:close], ",") {
		parts := strings.Fields(strings.TrimSpace(fieldSpec))
		if len(parts) < 2 {
			return nil, errors.Errorf("expected `field type` in %q", fieldSpec)
		}

		fieldName := parts[0]
		def.fieldNames = append(def.fieldNames, fieldName)

		switch strings.ToLower(parts[1]) {
		case "int":
			def.fieldTypes = append(def.fieldTypes, types.IntType)
		case "string":
			def.fieldTypes = append(def.fieldTypes, types.StringType)
		default:
			return nil, errors.Errorf("unknown type %q", parts[1])
		}

		if len(parts) == 3 {
			if parts[2] != "pk" {
				return nil, errors.Errorf("unknown annotation %q", parts[2])
			}
			def.primaryKey = fieldName
		} else if len(parts) > 3 {
			return nil, errors.Errorf("too many tokens in %q", fieldSpec)
		}
	}

	if len(def.fieldTypes) == 0 {
		return nil, errors.Errorf("table %q has no fields", def.name)
	}

	return def, nil
}
