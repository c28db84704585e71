// Command grain-cli is a thin driver over the heap package: it opens
// (or creates) a heap file and performs a single CRUD/scan/stats
// operation per invocation. It is an external collaborator per
// spec.md §1 — all storage logic lives in pkg/heap; this binary only
// parses flags and prints results.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mnohosten/grain/pkg/heap"
)

const version = "0.1.0"

func main() {
	dataPath := flag.String("data", "./grain.db", "Path to the heap file")
	op := flag.String("op", "stats", "Operation: insert, scan, update, delete, stats")

	id := flag.Int("id", 0, "Record id (insert; update never changes a record's id)")
	name := flag.String("name", "", "Record name (insert/update)")
	age := flag.Int("age", 0, "Record age (insert/update)")
	email := flag.String("email", "", "Record email (insert/update)")

	page := flag.Int("page", 0, "Target page id (update/delete)")
	slot := flag.Int("slot", 0, "Target slot index (update/delete)")

	showVersion := flag.Bool("version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Grain CLI v%s — drive a heap file from the command line\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -data t.db -op insert -id 1 -name Alice -age 30 -email alice@example.com\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  %s -data t.db -op scan\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  %s -data t.db -op update -page 0 -slot 0 -name Alicia\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  %s -data t.db -op delete -page 0 -slot 0\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  %s -data t.db -op stats\n", filepath.Base(os.Args[0]))
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("grain-cli v%s\n", version)
		return
	}

	f, err := openOrCreate(*dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "grain-cli: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := run(f, *op, *id, *age, *name, *email, *page, *slot); err != nil {
		fmt.Fprintf(os.Stderr, "grain-cli: %v\n", err)
		os.Exit(1)
	}
}

func openOrCreate(path string) (*heap.File, error) {
	if _, err := os.Stat(path); err == nil {
		return heap.Open(path, heap.DefaultConfig())
	}
	return heap.Create(path, heap.DefaultConfig())
}

func run(f *heap.File, op string, id, age int, name, email string, page, slot int) error {
	switch op {
	case "insert":
		rec := heap.ReferenceRecord{ID: int32(id), Name: name, Age: int32(age), Email: email}
		rid, err := f.Insert(rec.Encode())
		if err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		fmt.Printf("inserted at page=%d slot=%d\n", rid.PageID, rid.SlotIdx)
		return nil

	case "scan":
		rid := heap.RecordId{PageID: 0, SlotIdx: -1}
		count := 0
		for {
			var rec heap.Record
			var err error
			rid, rec, err = f.ScanNext(rid)
			if err == heap.ErrScanEnd {
				break
			}
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			decoded, err := heap.DecodeReference(rec)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			fmt.Printf("page=%d slot=%d id=%d name=%q age=%d email=%q\n",
				rid.PageID, rid.SlotIdx, decoded.ID, decoded.Name, decoded.Age, decoded.Email)
			count++
		}
		fmt.Printf("%d record(s)\n", count)
		return nil

	case "update":
		rid := heap.RecordId{PageID: int32(page), SlotIdx: int32(slot)}
		rec := heap.ReferenceRecord{Name: name, Age: int32(age), Email: email}
		if err := f.UpdateRecord(rid, rec.EncodeMutable()); err != nil {
			return fmt.Errorf("update: %w", err)
		}
		fmt.Printf("updated page=%d slot=%d\n", page, slot)
		return nil

	case "delete":
		rid := heap.RecordId{PageID: int32(page), SlotIdx: int32(slot)}
		if err := f.DeleteRecord(rid); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		fmt.Printf("deleted page=%d slot=%d\n", page, slot)
		return nil

	case "stats":
		s := f.Stats()
		fmt.Printf("pages=%d next_page_idx=%d first_free_page=%d reads=%d writes=%d\n",
			s.NumPages, s.NextPageIdx, s.FirstFreePage, s.PagesRead, s.PagesWritten)
		return nil

	default:
		return fmt.Errorf("unknown -op %q (want insert, scan, update, delete, stats)", op)
	}
}
