package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/cloudbox/dblink"
)

type replCmd struct {
	Conn    string `arg:"" help:"Connection name"`
	Chunk   string `help:"Chunk to start in"`
	History string `type:"path" default:"${history_file}" env:"DBLINK_HISTORY" help:"History file path"`
}

// statements whose first keyword means they return rows
var rowKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"PRAGMA":   true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"DESCRIBE": true,
	"DESC":     true,
	"VALUES":   true,
}

func returnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	return rowKeywords[strings.ToUpper(fields[0])]
}

func prompt(conn *dblink.Conn, chunk string) string {
	if chunk == "" {
		return conn.Name() + "> "
	}
	return conn.Name() + "/" + chunk + "> "
}

func (c *replCmd) Run(a *app) error {
	return a.withConn(c.Conn, func(conn *dblink.Conn) error {
		chunk := c.Chunk
		if chunk != "" {
			if _, err := conn.Chunk(a.ctx, chunk); err != nil {
				return err
			}
		}

		l, err := readline.NewEx(&readline.Config{
			Prompt:          prompt(conn, chunk),
			HistoryFile:     c.History,
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return fmt.Errorf("readline: %w", err)
		}
		defer l.Close()

		fmt.Printf("Connected to %s. \\c lists chunks, \\u <chunk> switches chunk, \\q quits.\n", conn.Name())

		for {
			line, err := l.Readline()
			switch {
			case errors.Is(err, readline.ErrInterrupt):
				if len(line) == 0 {
					return nil
				}
				continue
			case errors.Is(err, io.EOF):
				return nil
			case err != nil:
				return fmt.Errorf("read line: %w", err)
			}

			trimmed := strings.TrimSuffix(strings.TrimSpace(line), ";")
			switch {
			case trimmed == "":
				continue

			case trimmed == `\q` || trimmed == "quit" || trimmed == "exit":
				return nil

			case trimmed == `\c`:
				names, err := conn.Chunks()
				if err != nil {
					fmt.Println("Error listing chunks:", err)
					continue
				}
				for _, name := range names {
					fmt.Println(name)
				}

			case strings.HasPrefix(trimmed, `\u`):
				next := strings.TrimSpace(trimmed[len(`\u`):])
				if next != "" {
					if _, err := conn.Chunk(a.ctx, next); err != nil {
						fmt.Println("Error switching chunk:", err)
						continue
					}
				}
				chunk = next
				l.SetPrompt(prompt(conn, chunk))

			case returnsRows(trimmed):
				cur, err := selectCursor(a.ctx, conn, chunk, trimmed)
				if err != nil {
					fmt.Println("Error running query:", err)
					continue
				}

				err = render(os.Stdout, cur, "table")
				_ = cur.Close()
				if err != nil {
					fmt.Println("Error reading rows:", err)
				}

			default:
				affected, err := execute(a.ctx, conn, chunk, trimmed)
				if err != nil {
					fmt.Println("Error running statement:", err)
					continue
				}
				printAffected(os.Stdout, affected)
			}
		}
	})
}
