package main

import (
	"flag"
	"fmt"
	"os"

	"tupledb/pkg/database"
	"tupledb/pkg/logger"
	"tupledb/pkg/primitives"
	"tupledb/pkg/storage/heap"
)

func main() {
	configPath := flag.String("config", "", "engine config file (ini)")
	schemaPath := flag.String("schema", "", "schema description file to load")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	cfg := database.DefaultConfig()
	if *configPath != "" {
		loaded, err := database.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tupledb: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tupledb: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if *schemaPath != "" {
		db.LoadSchema(*schemaPath)
	}

	if err := printTables(db); err != nil {
		fmt.Fprintf(os.Stderr, "tupledb: %v\n", err)
		os.Exit(1)
	}
}

// printTables reports every registered table with its schema, page count,
// and live record count.
func printTables(db *database.Database) error {
	cat := db.Catalog()
	ids := cat.TableIDs()
	if len(ids) == 0 {
		fmt.Println("no tables registered")
		return nil
	}

	for _, id := range ids {
		name, err := cat.GetTableName(id)
		if err != nil {
			return err
		}
		td, err := cat.GetTupleDesc(id)
		if err != nil {
			return err
		}
		file, err := cat.GetFile(id)
		if err != nil {
			return err
		}

		hf, ok := file.(*heap.HeapFile)
		if !ok {
			logger.Warnf("table %q is not heap-backed, skipping", name)
			continue
		}

		numPages, err := hf.NumPages()
		if err != nil {
			return err
		}
		records, err := countRecords(db, hf)
		if err != nil {
			return err
		}

		fmt.Printf("%s %s  pages=%d records=%d\n", name, td, numPages, records)
	}
	return nil
}

func countRecords(db *database.Database, hf *heap.HeapFile) (int, error) {
	tid := primitives.NewTransactionID()
	it := hf.Iterator(tid, db.PageStore())
	if err := it.Open(); err != nil {
		return 0, err
	}
	defer it.Close()

	count := 0
	for {
		hasNext, err := it.HasNext()
		if err != nil {
			return 0, err
		}
		if !hasNext {
			return count, db.PageStore().CommitTransaction(tid)
		}
		if _, err := it.Next(); err != nil {
			return 0, err
		}
		count++
	}
}
