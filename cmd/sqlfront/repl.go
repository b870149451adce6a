package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/kevin-cantwell/sqlfront/internal/engine"
	"github.com/kevin-cantwell/sqlfront/internal/output"
	"github.com/kevin-cantwell/sqlfront/internal/pipeline"
)

const replHelp = `Enter a query to analyze it. Commands:
  \p QUERY   parse only
  \r QUERY   analyze and run against the demo database
  \t         list tables
  \h         this help
  \q         quit`

func replCommand(c *cli.Context) error {
	src := schemaSource(c)
	p := pipeline.New(src)
	parser := pipeline.New(src, pipeline.WithStopAfter(pipeline.Syntactic))

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "sqlfront> ",
		HistoryFile:     filepath.Join(os.TempDir(), "sqlfront.history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer l.Close()

	var demo *engine.Demo
	defer func() {
		if demo != nil {
			demo.Close()
		}
	}()

	fmt.Println("Welcome to sqlfront. Type \\h for help.")
repl:
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue repl
		} else if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println("Error while reading line:", err)
			continue repl
		}

		tr := output.NewTextRenderer(os.Stdout, !color.NoColor)
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue repl
		case trimmed == "quit" || trimmed == "exit" || trimmed == `\q`:
			break repl
		case trimmed == `\h`:
			fmt.Println(replHelp)
		case trimmed == `\t`:
			sch, err := src.Schema()
			if err != nil {
				fmt.Println("Error loading schema:", err)
				continue repl
			}
			tr.Schema(sch)
		case strings.HasPrefix(trimmed, `\p`):
			printErr(tr.WriteResult(parser.Analyze(strings.TrimSpace(trimmed[len(`\p`):]))))
		case strings.HasPrefix(trimmed, `\r`):
			res := p.Analyze(strings.TrimSpace(trimmed[len(`\r`):]))
			if !res.OK() {
				printErr(tr.WriteResult(res))
				continue repl
			}
			if demo == nil {
				if demo, err = engine.OpenDemo(context.Background()); err != nil {
					fmt.Println("Error opening demo database:", err)
					continue repl
				}
			}
			rows, err := demo.Query(context.Background(), res.AST)
			if err != nil {
				fmt.Println("Error running query:", err)
				continue repl
			}
			printErr(output.WriteRows(tr, rows))
		default:
			printErr(tr.WriteResult(p.Analyze(line)))
		}
	}
	return nil
}

func printErr(err error) {
	if err != nil {
		fmt.Println("Error writing output:", err)
	}
}
