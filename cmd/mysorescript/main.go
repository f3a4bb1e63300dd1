// mysorescript is the CLI/REPL driver for the MysoreScript execution
// core: it reads source, hands it to the parser, and asks the
// interpreter to run the resulting statement blocks.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/curiousleo/mysorescript/parser"
	"github.com/curiousleo/mysorescript/vm"
)

func main() {
	help := flag.Bool("h", false, "show this help")
	interactive := flag.Bool("i", false, "start the interactive REPL")
	memStats := flag.Bool("m", false, "print heap statistics on exit")
	timings := flag.Bool("t", false, "print per-phase timings")
	file := flag.String("f", "", "parse and run FILE")
	configPath := flag.String("config", "", "TOML file overriding the compile threshold")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mysorescript [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}
	vm.LogCompilation = *timings

	ctx := vm.NewContext(vm.NewHeap(), vm.DefaultSelectors, vm.DefaultClasses, &InterpretingCodeGenerator{})
	if *configPath != "" {
		cfg, err := LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mysorescript: %v\n", err)
			os.Exit(1)
		}
		if cfg.CompileThreshold > 0 {
			ctx.CompileThreshold = cfg.CompileThreshold
		}
	}

	exitCode := 0
	switch {
	case *file != "":
		exitCode = runFile(ctx, *file, *timings)
	case *interactive || *file == "":
		runREPL(ctx, *timings)
	}

	if *memStats {
		printHeapStats(ctx)
	}
	os.Exit(exitCode)
}

func runFile(ctx *vm.Context, path string, timings bool) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mysorescript: %v\n", err)
		return 1
	}

	parseStart := time.Now()
	program, err := parser.ParseProgram(string(source))
	if timings {
		fmt.Fprintf(os.Stderr, "parse: %s\n", time.Since(parseStart))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	return runGuarded(func() {
		runStart := time.Now()
		program.Interpret(ctx)
		if timings {
			fmt.Fprintf(os.Stderr, "run: %s\n", time.Since(runStart))
		}
	})
}

// runREPL runs the interactive read-eval-print loop: prompt
// `MysoreScript> `, one statement block per line, empty line exits,
// parser errors printed to stderr as `line L, col C: syntax error` with
// the loop continuing. A full collection runs before every prompt, and
// every accepted AST is retained for the session.
func runREPL(ctx *vm.Context, timings bool) {
	scanner := bufio.NewScanner(os.Stdin)
	var history []vm.Node

	for {
		ctx.Heap.Collect()
		fmt.Print("MysoreScript> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			break
		}

		stmt, err := parser.ParseStatement(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		history = append(history, stmt)

		runStart := time.Now()
		runGuarded(func() { stmt.Interpret(ctx) })
		if timings {
			fmt.Fprintf(os.Stderr, "run: %s\n", time.Since(runStart))
		}
	}
}

// runGuarded recovers a panic whose value is an error (any vm error
// type, InternalInvariantViolation included, or a Go runtime error),
// prints it, and returns a non-zero status; a panic carrying any other
// value is re-raised.
func runGuarded(run func()) (status int) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				fmt.Fprintf(os.Stderr, "mysorescript: %v\n", err)
				status = 1
				return
			}
			panic(r)
		}
	}()
	run()
	return 0
}

func printHeapStats(ctx *vm.Context) {
	before := ctx.Heap.HeapStats()
	ctx.Heap.Collect()
	after := ctx.Heap.HeapStats()
	fmt.Fprintf(os.Stderr, "heap: %d allocations, %d live objects before collection, %d after\n",
		before.TotalAllocations, before.LiveObjects, after.LiveObjects)
}
