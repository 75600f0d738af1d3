package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

type VMSegmentType string

const (
	InvalidVMSegmentType VMSegmentType = ""
	ConstVMSegment       VMSegmentType = "constant"
	ArgumentVMSegment    VMSegmentType = "argument"
	LocalVMSegment       VMSegmentType = "local"
	StaticVMSegment      VMSegmentType = "static"
	ThisVMSegment        VMSegmentType = "this"
	ThatVMSegment        VMSegmentType = "that"
	PointerVMSegment     VMSegmentType = "pointer"
	TempVMSegment        VMSegmentType = "temp"
)

type VMOperation string

const (
	InvalidVMOperation VMOperation = ""
	AddVMOperation     VMOperation = "add"
	SubVMOperation     VMOperation = "sub"
	NegVMOperation     VMOperation = "neg"
	EqVMOperation      VMOperation = "eq"
	GtVMOperation      VMOperation = "gt"
	LtVMOperation      VMOperation = "lt"
	AndVMOperation     VMOperation = "and"
	OrVMOperation      VMOperation = "or"
	NotVMOperation     VMOperation = "not"
	MulVMOperation     VMOperation = "mul"
	DivVMOperation     VMOperation = "div"
)

const (
	MultiplyRoutine   = "Math.multiply"
	DivideRoutine     = "Math.divide"
	AllocRoutine      = "Memory.alloc"
	StringNewRoutine  = "String.new"
	AppendCharRoutine = "String.appendChar"
)

// VMWriter buffers the VM commands of one unit. Commands are only ever appended.
type VMWriter struct {
	commands []string
}

func NewVMWriter() *VMWriter {
	return &VMWriter{}
}

func (w *VMWriter) WriteCommand(command string) {
	w.commands = append(w.commands, command)
}

func (w *VMWriter) WritePush(segment VMSegmentType, index MachineWord) {
	w.WriteCommand(fmt.Sprintf("push %s %d", segment, index))
}

func (w *VMWriter) WritePop(segment VMSegmentType, index MachineWord) {
	w.WriteCommand(fmt.Sprintf("pop %s %d", segment, index))
}

// WriteStringConstant leaves a new String holding constant on top of the stack.
// String.appendChar returns its receiver, so the pointer stays on the stack between calls.
func (w *VMWriter) WriteStringConstant(constant string) {
	w.WritePush(ConstVMSegment, MachineWord(len(constant)))
	w.WriteCall(StringNewRoutine, 1)
	for _, c := range []byte(constant) {
		w.WritePush(ConstVMSegment, MachineWord(c))
		w.WriteCall(AppendCharRoutine, 2)
	}
}

func (w *VMWriter) WriteArithmetic(operation VMOperation) {
	switch operation {
	case DivVMOperation:
		w.WriteCall(DivideRoutine, 2)
	case MulVMOperation:
		w.WriteCall(MultiplyRoutine, 2)
	default:
		w.WriteCommand(string(operation))
	}
}

func (w *VMWriter) WriteLabel(label string) {
	w.WriteCommand("label " + label)
}

func (w *VMWriter) WriteGoto(label string) {
	w.WriteCommand("goto " + label)
}

func (w *VMWriter) WriteIf(label string) {
	w.WriteCommand("if-goto " + label)
}

func (w *VMWriter) WriteCall(label string, nargs MachineWord) {
	w.WriteCommand("call " + label + " " + strconv.FormatInt(int64(nargs), 10))
}

func (w *VMWriter) WriteFunction(label string, nlocals MachineWord) {
	w.WriteCommand("function " + label + " " + strconv.FormatInt(int64(nlocals), 10))
}

func (w *VMWriter) WriteReturn() {
	w.WriteCommand("return")
}

func (w *VMWriter) Len() int {
	return len(w.commands)
}

// Commands returns a copy of the commands written so far.
func (w *VMWriter) Commands() []string {
	commands := make([]string, len(w.commands))
	copy(commands, w.commands)
	return commands
}

func (w *VMWriter) String() string {
	var b strings.Builder
	w.WriteTo(&b)
	return b.String()
}

// WriteTo writes one command per line.
func (w *VMWriter) WriteTo(output io.Writer) (int64, error) {
	return writeCommands(output, w.commands)
}

func writeCommands(output io.Writer, commands []string) (int64, error) {
	var total int64
	for _, command := range commands {
		n, err := io.WriteString(output, command+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
