// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/rv32sim/isa"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
	"XLEN":   "32",
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
	reMemory     = regexp.MustCompile(`^(.*)\(([A-Za-z0-9]+)\)$`)
)

// Assembler is a single pass assembler for RV32 code.
type Assembler struct {
	Verbose bool   // If set, verbosely logs the assembler actions.
	Lines   []Line // List of generated lines.

	predefine map[string]string // Predefines
	Label     map[string]uint32 // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Assemble assembles source text with a fresh assembler.
func Assemble(text string) (prog *Program, err error) {
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(text))
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}

	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}

	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = ^value
	}

	return
}

// register parses a register operand.
func (asm *Assembler) register(word string) (index uint8, err error) {
	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	index, ok = isa.RegisterIndex(word)
	if !ok {
		err = ErrRegisterInvalid(word)
	}
	return
}

// memory parses an 'offset(register)' operand.
func (asm *Assembler) memory(word string) (offset int64, base uint8, err error) {
	match := reMemory.FindStringSubmatch(word)
	if match == nil {
		err = ErrOperandMemory
		return
	}

	if len(match[1]) != 0 {
		offset, err = asm.signed(match[1], 12)
		if err != nil {
			return
		}
	}

	base, err = asm.register(match[2])
	return
}

// signed parses a value that must fit in a 'bits' wide signed field.
func (asm *Assembler) signed(word string, bits uint) (value int64, err error) {
	value, err = asm.valueOf(word)
	if err != nil {
		return
	}

	if value < -(1<<(bits-1)) || value >= (1<<(bits-1)) {
		err = ErrImmediateRange
	}
	return
}

// unsigned parses a value that must fit in a 'bits' wide unsigned field.
func (asm *Assembler) unsigned(word string, bits uint) (value int64, err error) {
	value, err = asm.valueOf(word)
	if err != nil {
		return
	}

	if value < 0 || value >= (1<<bits) {
		err = ErrImmediateRange
	}
	return
}

// target parses a branch or jump target as a numeric offset or a label.
func (asm *Assembler) target(word string, bits uint) (offset int64, label string, err error) {
	offset, err = asm.valueOf(word)
	if err != nil {
		if !reLabel.MatchString(word) {
			return
		}
		err = nil
		label = word
		return
	}

	err = checkOffset(offset, bits)
	return
}

// checkOffset validates a pc-relative offset for a 'bits' wide field.
func checkOffset(offset int64, bits uint) error {
	if offset&1 != 0 {
		return ErrImmediateAlign
	}
	if offset < -(1<<(bits-1)) || offset >= (1<<(bits-1)) {
		return ErrImmediateRange
	}
	return nil
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int64
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	for key, pc := range asm.Label {
		pred[key] = starlark.MakeInt64(int64(pc))
	}
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine expands a line into words, and records its labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "'":
				str = "'"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Strip comments
	if n := strings.IndexAny(line, "#;"); n >= 0 {
		line = line[:n]
	}

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.FormatInt(value, 10)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !reLabel.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint32, 16)
		}
		asm.Label[label] = asm.currentPc()
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words[1:] {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[1+n] = equate
		}
	}

	return
}

// currentPc gets the address of the next emitted byte.
func (asm *Assembler) currentPc() uint32 {
	if len(asm.Lines) == 0 {
		return 0
	}

	last := asm.Lines[len(asm.Lines)-1]

	return last.Pc + uint32(len(last.Data))
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Lines = asm.Lines[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for n := range asm.Lines {
		ln := &asm.Lines[n]

		if len(ln.LinkLabel) == 0 {
			continue
		}
		lineno = ln.LineNo
		line = strings.Join(ln.Words, " ")

		pc, ok := asm.Label[ln.LinkLabel]
		if !ok {
			err = ErrLabelMissing(ln.LinkLabel)
			return
		}

		in := &ln.Code[0]
		offset := int64(pc) - int64(ln.Pc)
		switch in.Op.Format() {
		case isa.FORMAT_B:
			err = checkOffset(offset, 13)
			in.Imm = uint32(offset) & 0x1fff
		case isa.FORMAT_J:
			err = checkOffset(offset, 21)
			in.Imm = uint32(offset) & 0x1fffff
		}
		if err != nil {
			return
		}

		err = ln.encode()
		if err != nil {
			return
		}
	}

	prog = &Program{
		Lines: slices.Clone(asm.Lines),
	}

	return
}

// encode regenerates the line's bytes from its instructions.
func (ln *Line) encode() (err error) {
	ln.Data = ln.Data[:0]
	for n := range ln.Code {
		in := &ln.Code[n]
		var word uint32
		word, err = isa.Encode(*in)
		if err != nil {
			return
		}
		in.Word = word
		in.Len = 4
		ln.Data = binary.LittleEndian.AppendUint32(ln.Data, word)
	}

	return
}

// emit appends a line of instructions.
func (asm *Assembler) emit(lineno int, words []string, code []isa.Instruction, label string) (err error) {
	ln := Line{
		LineNo:    lineno,
		Pc:        asm.currentPc(),
		Words:     words,
		Code:      code,
		LinkLabel: label,
	}

	err = ln.encode()
	if err != nil {
		return
	}

	asm.Lines = append(asm.Lines, ln)
	return
}

// parseWords assembles the words of a single line.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	if len(words) == 0 {
		return
	}

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	switch mnemonic {
	case ".word", ".half":
		if len(args) == 0 {
			err = ErrOperandCount
			return
		}
		width := uint(32)
		if mnemonic == ".half" {
			width = 16
		}
		ln := Line{LineNo: lineno, Pc: asm.currentPc(), Words: words}
		for _, arg := range args {
			var value int64
			value, err = asm.valueOf(arg)
			if err != nil {
				return
			}
			if value < -(1<<(width-1)) || value >= (1<<width) {
				err = ErrImmediateRange
				return
			}
			if width == 16 {
				ln.Data = binary.LittleEndian.AppendUint16(ln.Data, uint16(value))
			} else {
				ln.Data = binary.LittleEndian.AppendUint32(ln.Data, uint32(value))
			}
		}
		asm.Lines = append(asm.Lines, ln)
		return
	}

	code, label, err := asm.parseInstruction(mnemonic, args)
	if err != nil {
		return
	}

	return asm.emit(lineno, words, code, label)
}

// parseInstruction converts a mnemonic and its operands to instructions.
func (asm *Assembler) parseInstruction(mnemonic string, args []string) (code []isa.Instruction, label string, err error) {
	need := func(count int) bool {
		if len(args) != count {
			err = ErrOperandCount
			return false
		}
		return true
	}

	var rd, rs uint8
	twoRegs := func() bool {
		if !need(2) {
			return false
		}
		rd, err = asm.register(args[0])
		if err != nil {
			return false
		}
		rs, err = asm.register(args[1])
		return err == nil
	}

	// Pseudo-instructions
	switch mnemonic {
	case "nop":
		if need(0) {
			code = []isa.Instruction{{Op: isa.OP_ADDI}}
		}
		return
	case "li":
		if !need(2) {
			return
		}
		rd, err = asm.register(args[0])
		if err != nil {
			return
		}
		var value int64
		value, err = asm.valueOf(args[1])
		if err != nil {
			return
		}
		code, err = loadImmediate(rd, value)
		return
	case "mv":
		if twoRegs() {
			code = []isa.Instruction{{Op: isa.OP_ADDI, Rd: rd, Rs1: rs}}
		}
		return
	case "not":
		if twoRegs() {
			code = []isa.Instruction{{Op: isa.OP_XORI, Rd: rd, Rs1: rs, Imm: 0xfff}}
		}
		return
	case "neg":
		if twoRegs() {
			code = []isa.Instruction{{Op: isa.OP_SUB, Rd: rd, Rs1: 0, Rs2: rs}}
		}
		return
	case "seqz":
		if twoRegs() {
			code = []isa.Instruction{{Op: isa.OP_SLTIU, Rd: rd, Rs1: rs, Imm: 1}}
		}
		return
	case "snez":
		if twoRegs() {
			code = []isa.Instruction{{Op: isa.OP_SLTU, Rd: rd, Rs1: 0, Rs2: rs}}
		}
		return
	case "j":
		if !need(1) {
			return
		}
		var offset int64
		offset, label, err = asm.target(args[0], 21)
		if err == nil {
			code = []isa.Instruction{{Op: isa.OP_JAL, Imm: uint32(offset) & 0x1fffff}}
		}
		return
	case "ret":
		if need(0) {
			code = []isa.Instruction{{Op: isa.OP_JALR, Rs1: 1}}
		}
		return
	}

	op, ok := isa.Lookup(mnemonic)
	if !ok {
		err = &ErrOpcodeUnknown{Mnemonic: mnemonic, Closest: closestMnemonic(mnemonic)}
		return
	}

	in := isa.Instruction{Op: op}

	var value int64
	switch op.Format() {
	case isa.FORMAT_NONE:
		// fence may name its predecessor and successor sets.
		if op == isa.OP_FENCE && len(args) == 2 {
			break
		}
		if !need(0) {
			return
		}
	case isa.FORMAT_R:
		if !need(3) {
			return
		}
		if in.Rd, err = asm.register(args[0]); err != nil {
			return
		}
		if in.Rs1, err = asm.register(args[1]); err != nil {
			return
		}
		if in.Rs2, err = asm.register(args[2]); err != nil {
			return
		}
	case isa.FORMAT_I, isa.FORMAT_SHIFT:
		if !need(3) {
			return
		}
		if in.Rd, err = asm.register(args[0]); err != nil {
			return
		}
		if in.Rs1, err = asm.register(args[1]); err != nil {
			return
		}
		if op.Format() == isa.FORMAT_SHIFT {
			if value, err = asm.unsigned(args[2], 5); err != nil {
				return
			}
			in.Shamt = uint32(value)
			in.Imm, _ = isa.ShiftImm(op, in.Shamt)
		} else {
			if value, err = asm.signed(args[2], 12); err != nil {
				return
			}
			in.Imm = uint32(value) & 0xfff
		}
	case isa.FORMAT_LOAD:
		switch {
		case op == isa.OP_JALR && len(args) == 1:
			in.Rd = 1
			if in.Rs1, err = asm.register(args[0]); err != nil {
				return
			}
		case op == isa.OP_JALR && len(args) == 3:
			if in.Rd, err = asm.register(args[0]); err != nil {
				return
			}
			if in.Rs1, err = asm.register(args[1]); err != nil {
				return
			}
			if value, err = asm.signed(args[2], 12); err != nil {
				return
			}
		default:
			if !need(2) {
				return
			}
			if in.Rd, err = asm.register(args[0]); err != nil {
				return
			}
			if value, in.Rs1, err = asm.memory(args[1]); err != nil {
				return
			}
		}
		in.Imm = uint32(value) & 0xfff
	case isa.FORMAT_S:
		if !need(2) {
			return
		}
		if in.Rs2, err = asm.register(args[0]); err != nil {
			return
		}
		if value, in.Rs1, err = asm.memory(args[1]); err != nil {
			return
		}
		in.Imm = uint32(value) & 0xfff
	case isa.FORMAT_B:
		if !need(3) {
			return
		}
		if in.Rs1, err = asm.register(args[0]); err != nil {
			return
		}
		if in.Rs2, err = asm.register(args[1]); err != nil {
			return
		}
		if value, label, err = asm.target(args[2], 13); err != nil {
			return
		}
		in.Imm = uint32(value) & 0x1fff
	case isa.FORMAT_U:
		if !need(2) {
			return
		}
		if in.Rd, err = asm.register(args[0]); err != nil {
			return
		}
		if value, err = asm.valueOf(args[1]); err != nil {
			return
		}
		if value < -(1<<19) || value >= (1<<20) {
			err = ErrImmediateRange
			return
		}
		in.Imm = uint32(value) << 12
	case isa.FORMAT_J:
		target := args
		switch len(args) {
		case 1:
			in.Rd = 1
		case 2:
			if in.Rd, err = asm.register(args[0]); err != nil {
				return
			}
			target = args[1:]
		default:
			err = ErrOperandCount
			return
		}
		if value, label, err = asm.target(target[0], 21); err != nil {
			return
		}
		in.Imm = uint32(value) & 0x1fffff
	case isa.FORMAT_CSR, isa.FORMAT_CSRI:
		if !need(3) {
			return
		}
		if in.Rd, err = asm.register(args[0]); err != nil {
			return
		}
		if value, err = asm.unsigned(args[1], 12); err != nil {
			return
		}
		in.Imm = uint32(value)
		if op.Format() == isa.FORMAT_CSR {
			if in.Rs1, err = asm.register(args[2]); err != nil {
				return
			}
		} else {
			if value, err = asm.unsigned(args[2], 5); err != nil {
				return
			}
			in.Rs1 = uint8(value)
		}
	}

	code = []isa.Instruction{in}
	return
}

// Pseudo-instruction mnemonics
var pseudoMnemonics = []string{"nop", "li", "mv", "not", "neg", "seqz", "snez", "j", "ret"}

// closestMnemonic finds the known mnemonic with the smallest edit distance,
// or "" if every candidate would need a complete rewrite.
func closestMnemonic(mnemonic string) (closest string) {
	candidates := slices.Clone(pseudoMnemonics)
	for _, op := range isa.Ops() {
		candidates = append(candidates, op.String())
	}
	slices.Sort(candidates)

	runes := []rune(mnemonic)
	closestDistance := len(runes)
	for _, candidate := range candidates {
		distance := levenshtein.DistanceForStrings(runes, []rune(candidate), levenshtein.DefaultOptions)
		if distance < closestDistance && distance < len(candidate) {
			closest = candidate
			closestDistance = distance
		}
	}

	return
}

// loadImmediate expands 'li' into addi, lui, or lui+addi.
func loadImmediate(rd uint8, value int64) (code []isa.Instruction, err error) {
	if value < -(1<<31) || value >= (1<<32) {
		err = ErrImmediateRange
		return
	}

	if value >= -2048 && value < 2048 {
		code = []isa.Instruction{{Op: isa.OP_ADDI, Rd: rd, Imm: uint32(value) & 0xfff}}
		return
	}

	v32 := uint32(value)
	lo := isa.SignExtend(v32&0xfff, 12)
	hi := (v32 - lo) & 0xfffff000

	code = []isa.Instruction{{Op: isa.OP_LUI, Rd: rd, Imm: hi}}
	if lo != 0 {
		code = append(code, isa.Instruction{Op: isa.OP_ADDI, Rd: rd, Rs1: rd, Imm: lo & 0xfff})
	}

	return
}
