package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

func printScripts() {
	fmt.Println("Scripts:")
	keys := make([]string, 0, len(scriptMap))
	for key := range scriptMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Println("\t" + key)
	}
}

func main() {
	flag.Parse()

	script := flag.Arg(0)
	fn, ok := scriptMap[script]
	if !ok {
		fmt.Printf(
			"you must specify a valid script, '%s' is not a valid script.\n",
			script,
		)
		printScripts()
		os.Exit(1)
	}

	fn()
}

func cmd(name string, args ...string) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fullCmd := name
	for _, a := range args {
		fullCmd += " "
		fullCmd += a
	}

	fmt.Printf("$ %s\n", fullCmd)
	err := cmd.Run()
	if err != nil {
		os.Exit(1)
	}
}

var scriptMap = map[string]func(){
	"dev:serve_fixtures":  serveFixtures,
	"dev:scrape_fixtures": scrapeFixtures,
}

const fixturesAddr = "127.0.0.1:8089"

func fixtureHandler() http.Handler {
	dir := filepath.Join("internal", "scrapers", "ollama", "testdata")
	mux := http.NewServeMux()
	mux.HandleFunc("/library", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(dir, "library.html"))
	})
	mux.HandleFunc("/library/{name}/tags", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, r.PathValue("name")+"_tags.html")
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	})
	return mux
}

// serves the scraper's test fixtures the way the library site lays them
// out, point scraper.base_url at it to debug selectors.
func serveFixtures() {
	slog.Info("serving fixtures", "url", "http://"+fixturesAddr)
	err := http.ListenAndServe(fixturesAddr, fixtureHandler())
	if err != nil {
		slog.Error("fixture server stopped", "err", err.Error())
		os.Exit(1)
	}
}

func scrapeFixtures() {
	go serveFixtures()
	cmd(
		"go", "run", "./cmd/modelcatalog",
		"--config", filepath.Join("dev", "scripts", "fixtures.json5"),
		"scrape", "--logs",
	)
}
