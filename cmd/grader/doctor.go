package main

import (
	"context"
	"os"
	"strings"
	"time"

	pretty_table "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v3"

	"github.com/fngrade/grader/internal/execute"
	"github.com/fngrade/grader/internal/langs"
)

type doctorRow struct {
	unit    string
	health  int // 0 - OK, 1 - Warning, 2 - Error
	message string
}

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "check that every language toolchain is installed and runnable",
		Action: func(ctx context.Context, _ *cli.Command) error {
			rows := make([]doctorRow, 0)
			for _, l := range langs.NewDefaultRegistry().List() {
				rows = append(rows, probeToolchain(ctx, l))
			}
			outputDoctorRows(rows)
			return nil
		},
	}
}

func probeToolchain(ctx context.Context, l *langs.Language) doctorRow {
	bin := l.RunArgv[0]
	if l.Compiled() {
		bin = l.CompileArgv[0]
	}

	res, err := execute.Run(ctx, []string{bin, "--version"}, ".", nil,
		10*time.Second, 8*1024)
	if err != nil {
		return doctorRow{unit: l.Name, health: 2, message: err.Error()}
	}

	msg := firstLine(string(res.Stdout))
	if msg == "" {
		msg = firstLine(string(res.Stderr))
	}
	health := 0
	if res.ExitCode != 0 || res.TimedOut {
		health = 2
	}
	return doctorRow{unit: l.Name, health: health, message: msg}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func outputDoctorRows(rows []doctorRow) {
	t := pretty_table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(pretty_table.Row{"Unit", "Health", "Message"})
	for _, row := range rows {
		healthCode := ""
		switch row.health {
		case 0:
			healthCode = "OKAY"
		case 1:
			healthCode = "WARN"
		case 2:
			healthCode = "ERROR"
		}
		t.AppendRow(pretty_table.Row{row.unit, healthCode, row.message})
	}
	t.SetStyle(pretty_table.StyleColoredDark)
	textColor := text.Transformer(func(s interface{}) string {
		switch s.(string) {
		case "OKAY":
			return text.FgHiGreen.Sprint(s)
		case "WARN":
			return text.FgHiYellow.Sprint(s)
		case "ERROR":
			return text.FgHiRed.Sprint(s)
		}
		return ""
	})
	t.SetColumnConfigs([]pretty_table.ColumnConfig{
		{
			Name:        "Health",
			Transformer: textColor,
			Align:       text.AlignCenter,
		},
	})
	t.Render()
}
