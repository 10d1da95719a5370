// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biosearch/internal/export"
	"github.com/pdiddy/biosearch/internal/notify"
	"github.com/pdiddy/biosearch/internal/render"
	"github.com/pdiddy/biosearch/internal/search"
	"github.com/pdiddy/biosearch/internal/server"
	"github.com/pdiddy/biosearch/internal/session"
	"github.com/pdiddy/biosearch/pkg/types"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatHTML  = "html"
)

var (
	errRejected = errors.New("search rejected")
	errFailed   = errors.New("search failed")
)

var searchCmd = &cobra.Command{
	Use:   "search [QUERY...]",
	Short: "Search the selected databases and print the results",
	Long: `Search sends QUERY to the BioSearch server with the selected databases and
prints the results grouped by database. Databases that failed or returned
nothing are skipped.

With --query-file, every search in the YAML file is run in order instead.`,
	Example: `  biosearch search BRCA1
  biosearch search -d ncbi -d uniprot insulin --format json
  biosearch search p53 --organism "Homo sapiens" --from 2020-01-01 --export ./out
  biosearch search --query-file queries.yaml`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringSliceP("database", "d", defaultDatabaseValues(), "database to search (repeatable)")
	f.StringP("format", "f", formatTable, "output format: table, json, or html")
	f.String("export", "", "also export the results as JSON into this directory")
	f.StringP("organism", "o", "", "restrict results to an organism")
	f.String("from", "", "earliest date (YYYY-MM-DD)")
	f.String("to", "", "latest date (YYYY-MM-DD)")
	f.StringP("type", "t", "", "result type understood by the server")
	f.IntP("limit", "l", 0, "maximum results per database (0 for the server default)")
	f.String("query-file", "", "YAML file of searches to run")

	rootCmd.AddCommand(searchCmd)
}

func defaultDatabaseValues() []string {
	var values []string
	for _, db := range server.DefaultDatabases {
		if db.Checked {
			values = append(values, db.Value)
		}
	}
	return values
}

func runSearch(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	format, _ := f.GetString("format")
	switch format {
	case formatTable, formatJSON, formatHTML:
	default:
		return fmt.Errorf("unknown format %q (want table, json, or html)", format)
	}
	exportDir, _ := f.GetString("export")
	queryFile, _ := f.GetString("query-file")

	var reqs []types.SearchRequest
	if queryFile != "" {
		if len(args) > 0 {
			return fmt.Errorf("give either QUERY or --query-file, not both")
		}
		if exportDir != "" {
			return fmt.Errorf("--export cannot be combined with --query-file")
		}
		qf, err := search.ReadQueryFile(queryFile)
		if err != nil {
			return err
		}
		if reqs, err = qf.Requests(); err != nil {
			return err
		}
	} else {
		req, err := requestFromFlags(cmd, args)
		if err != nil {
			return err
		}
		reqs = []types.SearchRequest{req}
	}

	sess, notes, err := newSession(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer notes.Close()

	out := cmd.OutOrStdout()
	for i, req := range reqs {
		if len(reqs) > 1 && format == formatTable {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, queryHeading(req))
		}
		if err := runOne(cmd.Context(), sess, req, format, out); err != nil {
			return err
		}
	}

	if exportDir != "" {
		path, err := sess.Export(exportDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Exported:", path)
	}
	return nil
}

// requestFromFlags builds the request for a single QUERY. Empty queries and
// empty database lists are passed through so the session reports them.
func requestFromFlags(cmd *cobra.Command, args []string) (types.SearchRequest, error) {
	f := cmd.Flags()
	p := search.QueryParams{Query: strings.Join(args, " ")}
	p.Databases, _ = f.GetStringSlice("database")
	p.Organism, _ = f.GetString("organism")
	p.DateFrom, _ = f.GetString("from")
	p.DateTo, _ = f.GetString("to")
	p.ResultType, _ = f.GetString("type")
	p.Limit, _ = f.GetInt("limit")

	req, err := p.ToRequest()
	if err != nil && !errors.Is(err, types.ErrEmptyQuery) && !errors.Is(err, types.ErrNoDatabases) {
		return req, err
	}
	return req, nil
}

// newSession wires the search client, renderer, and a notification center
// that echoes every notification to w.
func newSession(w io.Writer) (*session.Session, *notify.Center, error) {
	reg := render.NewRegistry()
	if cfg.Render.LayoutsFile != "" {
		if err := reg.LoadFile(cfg.Render.LayoutsFile); err != nil {
			return nil, nil, err
		}
	}
	notes := notify.NewCenter(
		notify.WithTTL(cfg.Notify.TTL),
		notify.WithLogger(logger),
		notify.WithSink(func(n notify.Notification) {
			fmt.Fprintln(w, notificationLine(n))
		}),
	)
	sess := session.New(search.NewClient(cfg.Client, logger),
		session.WithRenderer(render.New(reg, logger)),
		session.WithNotifier(notes),
		session.WithLogger(logger),
	)
	return sess, notes, nil
}

func runOne(ctx context.Context, sess *session.Session, req types.SearchRequest, format string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch sess.SubmitRequest(ctx, req) {
	case session.Rejected:
		return errRejected
	case session.Failed:
		return errFailed
	case session.Stale:
		return fmt.Errorf("search for %q was superseded", req.Query)
	}

	st := sess.State()
	switch format {
	case formatJSON:
		rs := sess.Results()
		if rs.IsEmpty() {
			_, err := io.WriteString(out, "{}\n")
			return err
		}
		return export.Encode(out, rs)
	case formatHTML:
		if err := render.WriteTabs(out, st.View); err != nil {
			return err
		}
		if err := render.WritePanes(out, st.View); err != nil {
			return err
		}
		return render.WritePanel(out, st.View.Panel)
	default:
		return writeTable(out, st.View)
	}
}

func queryHeading(req types.SearchRequest) string {
	return headingStyle.Render(fmt.Sprintf("%s [%s]", req.Query, strings.Join(req.Databases, ", ")))
}
