// azimuth-admin backs up and restores the records of a world store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/zond/azimuth/server"
	"github.com/zond/azimuth/storage"
)

func main() {
	config, err := server.ConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	flag.StringVar(&config.Dir, "dir", config.Dir, "Where the database is.")
	flag.StringVar(&config.Store, "db", config.Store, "Store backend: sqlite or bolt.")
	dataPath := flag.String("data", "", "Path of the JSON dump.")
	doRestore := flag.Bool("restore", false, "XOR 'backup': Load records from the data path into the store.")
	doBackup := flag.Bool("backup", false, "XOR 'restore': Write every record in the store to the data path.")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] -backup|-restore -data <path>\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if *dataPath == "" || (*doRestore == *doBackup) {
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := storage.Open(ctx, config.Store, config.Dir)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if *doRestore {
		f, err := os.Open(*dataPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		n, err := storage.Restore(ctx, store, f)
		if err != nil {
			log.Fatalf("restoring from %q: %v", *dataPath, err)
		}
		log.Printf("Restored %d records from %q", n, *dataPath)
	}
	if *doBackup {
		f, err := os.Create(*dataPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		n, err := storage.Backup(ctx, store, f)
		if err != nil {
			log.Fatalf("backing up to %q: %v", *dataPath, err)
		}
		log.Printf("Wrote %d records to %q", n, *dataPath)
	}
}
