package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/hazyhaar/fangyan/pkg/dict"
	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

func cmdSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	common := addCommonFlags(fs)
	dialect := fs.String("dialect", "", "restrict to one dialect")
	pos := fs.String("pos", "", "restrict to one part of speech")
	limit := fs.Int("limit", 20, "maximum results (0 = all)")
	explain := fs.Bool("explain", false, "list the rules that fired for each result")
	fs.Parse(args)

	logger := newLogger("warn")
	cfg := common.resolve(logger)

	reg, st := openRegistry(cfg, logger)
	defer st.Close()

	query := strings.Join(fs.Args(), " ")
	res := reg.Search(lexicon.Filters{Dialect: *dialect, POS: *pos}, query, *limit)
	printResults(os.Stdout, reg.Index(), res, *explain)
}

func printResults(w io.Writer, idx *lexicon.Index, res *dict.SearchResult, explain bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tID\tHEADWORD\tROMANIZATION\tGLOSS")
	for _, r := range res.Results {
		e := r.Entry
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Score, e.ID, e.Headword, e.Romanization(), e.Gloss)
		if explain {
			for _, hit := range idx.Explain(e.ID, res.Query) {
				fmt.Fprintf(tw, "\t  %s\t+%d\t\t\n", hit.Rule, hit.Points)
			}
		}
	}
	tw.Flush()
	fmt.Fprintf(w, "%d of %d results\n", len(res.Results), res.Total)
}
