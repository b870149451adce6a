package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/kevin-cantwell/sqlfront/internal/engine"
	"github.com/kevin-cantwell/sqlfront/internal/logger"
	"github.com/kevin-cantwell/sqlfront/internal/output"
	"github.com/kevin-cantwell/sqlfront/internal/pipeline"
	"github.com/kevin-cantwell/sqlfront/internal/schema"
)

var log = logger.Get("sqlfront")

func main() {
	app := cli.NewApp()
	app.Name = "sqlfront"
	app.Usage = "Lexical, syntactic and semantic analysis of simple SELECT queries"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "schema",
			Usage:  "JSON schema file (defaults to the built-in students/courses/enrollments schema)",
			EnvVar: "SQLFRONT_SCHEMA",
		},
		cli.StringFlag{
			Name:   "log-level",
			Value:  logger.DefaultLevel,
			Usage:  "CRITICAL, ERROR, WARNING, NOTICE, INFO or DEBUG",
			EnvVar: "SQLFRONT_LOG_LEVEL",
		},
		cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.Bool("no-color") {
			color.NoColor = true
		}
		return logger.Setup(os.Stderr, c.String("log-level"), !color.NoColor)
	}

	jsonFlag := cli.BoolFlag{
		Name:  "json",
		Usage: "Write JSON lines instead of tables",
	}
	app.Commands = []cli.Command{
		{
			Name:      "analyze",
			Usage:     "Run all three phases and report every artifact",
			ArgsUsage: "QUERY (read from stdin when omitted)",
			Flags: []cli.Flag{
				jsonFlag,
				cli.StringFlag{
					Name:  "stop-after",
					Value: string(pipeline.Semantic),
					Usage: "Last phase to run: lexical, syntactic or semantic",
				},
				cli.BoolFlag{
					Name:  "run",
					Usage: "Execute the query against the demo database when analysis is clean",
				},
			},
			Action: analyzeCommand,
		},
		{
			Name:      "tokens",
			Usage:     "Print the token table",
			ArgsUsage: "QUERY",
			Flags:     []cli.Flag{jsonFlag},
			Action:    tokensCommand,
		},
		{
			Name:      "parse",
			Usage:     "Print the syntax tree and the canonical query",
			ArgsUsage: "QUERY",
			Action:    parseCommand,
		},
		{
			Name:   "schema",
			Usage:  "Print the tables and columns of the active schema",
			Action: schemaCommand,
		},
		{
			Name:      "run",
			Usage:     "Analyze the query and run it against the demo database",
			ArgsUsage: "QUERY",
			Flags:     []cli.Flag{jsonFlag},
			Action:    runCommand,
		},
		{
			Name:   "repl",
			Usage:  "Interactive shell",
			Action: replCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgHiRed).Sprint(err))
		os.Exit(1)
	}
}

// failed is returned by commands whose query did not pass analysis; the
// report has already been written.
var failed = cli.NewExitError("", 1)

func schemaSource(c *cli.Context) schema.Source {
	if path := c.GlobalString("schema"); path != "" {
		return schema.NewFileSource(path)
	}
	return schema.Static(schema.Default())
}

func queryArg(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args(), " "), nil
	}
	data, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.Wrap(err, "read query from stdin")
	}
	return string(data), nil
}

func writer(c *cli.Context) output.Writer {
	if c.Bool("json") {
		return output.NewJSONWriter(os.Stdout)
	}
	return output.NewTextRenderer(os.Stdout, !color.NoColor)
}

func analyzeCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}
	stop, err := pipeline.ParsePhase(c.String("stop-after"))
	if err != nil {
		return err
	}
	res := pipeline.New(schemaSource(c), pipeline.WithStopAfter(stop)).Analyze(query)
	w := writer(c)
	if err := w.WriteResult(res); err != nil {
		return err
	}
	if len(res.Errors) > 0 {
		return failed
	}
	if c.Bool("run") && res.OK() {
		return runDemo(w, res)
	}
	return nil
}

func tokensCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}
	res := pipeline.New(nil, pipeline.WithStopAfter(pipeline.Lexical)).Analyze(query)
	if c.Bool("json") {
		if err := output.WriteTokens(output.NewJSONWriter(os.Stdout), res.Tokens); err != nil {
			return err
		}
	} else {
		output.NewTextRenderer(os.Stdout, !color.NoColor).Tokens(res.Tokens)
	}
	return reportErrors(res)
}

func parseCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}
	res := pipeline.New(nil, pipeline.WithStopAfter(pipeline.Syntactic)).Analyze(query)
	if res.AST != nil {
		fmt.Println(res.ASTText)
		fmt.Println()
		fmt.Println(res.SQL)
	}
	return reportErrors(res)
}

func schemaCommand(c *cli.Context) error {
	sch, err := schemaSource(c).Schema()
	if err != nil {
		return err
	}
	output.NewTextRenderer(os.Stdout, !color.NoColor).Schema(sch)
	return nil
}

func runCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}
	res := pipeline.New(schemaSource(c)).Analyze(query)
	w := writer(c)
	if !res.OK() {
		if err := w.WriteResult(res); err != nil {
			return err
		}
		return failed
	}
	return runDemo(w, res)
}

func runDemo(w output.Writer, res *pipeline.Result) error {
	ctx := context.Background()
	demo, err := engine.OpenDemo(ctx)
	if err != nil {
		return err
	}
	defer demo.Close()

	rows, err := demo.Query(ctx, res.AST)
	if err != nil {
		return err
	}
	log.Infof("demo returned %d rows", len(rows.Values))
	return output.WriteRows(w, rows)
}

// reportErrors prints diagnostics and hints for commands that do not render
// the whole result.
func reportErrors(res *pipeline.Result) error {
	if len(res.Errors) == 0 {
		return nil
	}
	red := color.New(color.FgHiRed)
	for _, d := range res.Errors {
		fmt.Fprintln(os.Stderr, red.Sprint(d.String()))
	}
	if res.Snippet != "" {
		fmt.Fprintln(os.Stderr, res.Snippet)
	}
	for _, h := range res.Hints {
		fmt.Fprintln(os.Stderr, color.New(color.FgHiYellow).Sprint("hint: "+h))
	}
	return failed
}
