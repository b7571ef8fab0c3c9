package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
)

func main() {
	var (
		addr   = flag.String("addr", "http://localhost:8080", "report service address")
		output = flag.String("o", "", "output file (default stdout)")
	)
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <user> <month>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "month accepts 2024-10 or 202410\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	user := flag.Arg(0)
	period, err := entity.NormalizePeriod(flag.Arg(1))
	if err != nil {
		log.Fatalf("bad month: %v", err)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	url := fmt.Sprintf("%s/api/v1/reports/%s/%s", *addr, user, period)

	resp, err := client.Get(url)
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("server returned %s: %s", resp.Status, body)
	}

	if *output == "" {
		os.Stdout.Write(body)
		return
	}
	if err := os.WriteFile(*output, body, 0o644); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
	log.Printf("report written to %s", *output)
}
