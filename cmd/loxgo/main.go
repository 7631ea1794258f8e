// Command loxgo runs loxgo scripts, either as a file or as an interactive
// REPL, per spec.md §1's "embeddable module plus CLI host" scope.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"loxgo/internal/lang"
	"loxgo/internal/natives"
)

func main() {
	verbose := flag.Bool("v", false, "enable verbose (debug-level) logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	vm := newLoxVM()

	args := flag.Args()
	switch len(args) {
	case 0:
		repl(vm)
	case 1:
		runFile(vm, args[0])
	default:
		fmt.Fprintln(os.Stderr, "Usage: loxgo [script]")
		os.Exit(64)
	}
}

func newLoxVM() *lang.VM {
	vm := lang.NewVM()
	for _, m := range natives.All() {
		vm.RegisterModule(m)
		log.Debug().Str("module", m.Name).Msg("registered native module")
	}
	return vm
}

func runFile(vm *lang.VM, path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open file \"%s\".\n", path)
		os.Exit(74)
	}

	switch vm.Interpret(string(source)) {
	case lang.InterpretCompileError:
		os.Exit(65)
	case lang.InterpretRuntimeError:
		os.Exit(70)
	}
}

// repl implements the interactive loop, grounded on
// ajkachnic-ion/main.go's `repl()` shape but built on
// github.com/chzyer/readline for history and line editing, with
// github.com/fatih/color distinguishing prompt/error text.
func repl(vm *lang.VM) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          color.GreenString("> "),
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("could not start REPL")
	}
	defer rl.Close()

	errColor := color.New(color.FgRed)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if line == "" {
			continue
		}

		result := vm.Interpret(line)
		if result != lang.InterpretOK {
			errColor.Fprintln(os.Stderr, "(error above)")
		}
	}
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".loxgo_history"
	}
	return home + "/.loxgo_history"
}
