// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/ezrec/rv32sim/cpu"
	"github.com/ezrec/rv32sim/emulator"
	"github.com/ezrec/rv32sim/internal"
	"github.com/ezrec/rv32sim/loader"
)

// Program run when no image is given.
const demoProgram = "addi x1, x0, 42\n"

// defineFlags collects repeated -D NAME=VALUE options.
type defineFlags map[string]string

func (df defineFlags) String() string {
	var list []string
	for name, value := range internal.Sorted2(maps.All(df)) {
		list = append(list, name+"="+value)
	}
	return strings.Join(list, ",")
}

func (df defineFlags) Set(text string) error {
	name, value, ok := strings.Cut(text, "=")
	if !ok {
		value = "1"
	}
	if len(name) == 0 {
		return fmt.Errorf("empty define name in %q", text)
	}
	df[name] = value
	return nil
}

func main() {
	var compile string
	var binary string
	var object string
	var section string
	var steps int
	var mib uint
	var verbose bool
	var color bool
	var format string
	defines := defineFlags{}

	flag.StringVar(&compile, "c", "", ".s file to assemble")
	flag.StringVar(&binary, "b", "", "flat binary image to load")
	flag.StringVar(&object, "e", "", "ELF object to load")
	flag.StringVar(&section, "s", loader.CODE_SECTION, "ELF section to load")
	flag.IntVar(&steps, "n", 1, "Number of instructions to step")
	flag.UintVar(&mib, "m", cpu.MEMORY_SIZE>>20, "Memory size in MiB (1 or 2)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&color, "color", isatty.IsTerminal(os.Stdout.Fd()), "Colorize the dump and errors")
	flag.StringVar(&format, "format", "text", "Dump format (text or yaml)")
	flag.Var(defines, "D", "Assembler define NAME=VALUE (repeatable)")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	sources := 0
	for _, name := range []string{compile, binary, object} {
		if len(name) != 0 {
			sources++
		}
	}
	if sources > 1 {
		log.Fatalf("%v: only one of -c, -b or -e may be given", os.Args[0])
	}

	if format != "text" && format != "yaml" {
		log.Fatalf("%v: -format %v: must be text or yaml", os.Args[0], format)
	}

	size := mib << 20
	if size == 0 || size > cpu.MEMORY_SIZE_MAX {
		log.Fatalf("%v: -m %v: memory must be 1 or 2 MiB", os.Args[0], mib)
	}

	emu := emulator.NewEmulator(size)
	emu.Verbose = verbose

	if verbose {
		for name, value := range internal.Sorted2(emu.Defines()) {
			log.Printf("define %v=%v", name, value)
		}
	}

	var err error
	switch {
	case len(compile) != 0:
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf, defines)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	case len(binary) != 0:
		image, err := loader.ReadFlat(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		err = emu.LoadImage(image)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
	case len(object) != 0:
		image, err := loader.ReadCodeSection(object, section)
		if err != nil {
			log.Fatalf("%v: %v", object, err)
		}
		err = emu.LoadImage(image)
		if err != nil {
			log.Fatalf("%v: %v", object, err)
		}
	default:
		err = emu.Assemble(strings.NewReader(demoProgram), defines)
		if err != nil {
			log.Fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err = emu.Run(ctx, steps)

	switch {
	case format == "yaml":
		emu.DumpYAML(os.Stdout)
	case color:
		fmt.Print(colorizeDump(emu.String()))
	default:
		emu.Dump(os.Stdout)
	}

	if err != nil {
		if color {
			log.Fatal(colorizeError(err.Error()))
		}
		log.Fatal(err)
	}
}
