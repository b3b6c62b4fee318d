package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	jsonOut := flag.Bool("json", false, "print the full evaluation result as JSON")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: glulam [-json] <script.glulam>\n")
		os.Exit(2)
	}

	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("read script: %v", err)
	}

	app := NewApp()
	result := app.Evaluate(string(source))

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("encode result: %v", err)
		}
		return
	}

	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(os.Stderr, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(os.Stderr, "error: %s\n", e.Message)
		}
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}

	for _, m := range result.Meshes {
		fmt.Printf("%s: %d vertices, %d triangles, color %s\n",
			m.ObjectName, len(m.Vertices)/3, len(m.Indices)/3, m.Color)
	}
}
