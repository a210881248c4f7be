package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"doxydecor/decor"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: cssdebug <file.html> [selector]")
		os.Exit(2)
	}
	path := os.Args[1]
	query := "div.memproto"
	if len(os.Args) > 2 {
		query = os.Args[2]
	}
	sel, err := cascadia.Compile(query)
	if err != nil {
		log.Fatalf("selector %q: %v", query, err)
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	doc, err := decor.Parse(f, "")
	f.Close()
	if err != nil {
		log.Fatal(err)
	}
	rep := decor.New(decor.DefaultOptions(), nil).Run(doc)
	log.Printf("decorated %s: %s", path, rep)

	ss := decor.BuildStylesheet(doc, path, decor.FileLoader, nil)
	log.Printf("stylesheet rules=%d", ss.Len())

	for _, n := range cascadia.QueryAll(doc, sel) {
		props := decor.ComputeStyle(n, ss)
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%q", k, props[k])
		}
		fmt.Printf("node=%s id=%q class=%q%s\n", n.Data, attr(n, "id"), attr(n, "class"), b.String())
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
