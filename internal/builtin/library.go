// Package builtin implements the resumable Hack standard library of
// spec.md §4.5: Math, Memory, Array, String, Output, Screen, Keyboard,
// and Sys, each built from the vm.Routine/vm.StepResult contract.
//
// Grounded on two independent sources the corpus supplies for the same
// design: Corewar's vm/vm.go buffers one decoded instruction and
// resumes it across ticks via WaitCycles, and original_source's
// simulators/vm/stdlib package, whose StdlibOk::ContinueInNextStep /
// Finished variants this package's StepResult.Kind mirrors directly.
// Function bodies (Math's rules, String's heap layout, Output's glyph
// table, Screen's Bresenham line/circle routines) follow
// original_source/src/simulators/vm/stdlib/*.rs; two routines that file
// leaves `unimplemented!()` — Memory.alloc/deAlloc and
// Keyboard.readChar — are fully implemented here per spec.md §4.5 and
// §8's keyboard-loop scenario.
package builtin

import "go.n2tcore.dev/emu/internal/vm"

// Library holds every built-in routine and the small amount of
// persistent state some of them carry between separate top-level
// calls (Output's cursor, Screen's current color, Memory's free list).
type Library struct {
	output *outputState
	screen *screenState
	memory *memoryState
}

// New builds a fresh Library with all persistent state at its initial
// value (spec.md §5: loading a program resets all state).
func New() *Library {
	return &Library{
		output: newOutputState(),
		screen: newScreenState(),
		memory: newMemoryState(),
	}
}

// Table returns every built-in routine keyed by its Hack-style
// "Class.method" name, ready to merge into a function table (spec.md
// §4.5, §6.2).
func (lib *Library) Table() map[string]vm.Routine {
	t := map[string]vm.Routine{}

	t["Math.init"] = vm.RoutineFunc(mathInit)
	t["Math.abs"] = vm.RoutineFunc(mathAbs)
	t["Math.multiply"] = vm.RoutineFunc(mathMultiply)
	t["Math.divide"] = vm.RoutineFunc(mathDivide)
	t["Math.min"] = vm.RoutineFunc(mathMin)
	t["Math.max"] = vm.RoutineFunc(mathMax)
	t["Math.sqrt"] = vm.RoutineFunc(mathSqrt)

	t["Memory.init"] = vm.RoutineFunc(lib.memory.init)
	t["Memory.peek"] = vm.RoutineFunc(lib.memory.peek)
	t["Memory.poke"] = vm.RoutineFunc(lib.memory.poke)
	t["Memory.alloc"] = vm.RoutineFunc(lib.memory.alloc)
	t["Memory.deAlloc"] = vm.RoutineFunc(lib.memory.deAlloc)

	t["Array.new"] = vm.RoutineFunc(arrayNew)
	t["Array.dispose"] = vm.RoutineFunc(arrayDispose)

	t["String.new"] = vm.RoutineFunc(stringNew)
	t["String.dispose"] = vm.RoutineFunc(stringDispose)
	t["String.length"] = vm.RoutineFunc(stringLength)
	t["String.charAt"] = vm.RoutineFunc(stringCharAt)
	t["String.setCharAt"] = vm.RoutineFunc(stringSetCharAt)
	t["String.appendChar"] = vm.RoutineFunc(stringAppendChar)
	t["String.eraseLastChar"] = vm.RoutineFunc(stringEraseLastChar)
	t["String.intValue"] = vm.RoutineFunc(stringIntValue)
	t["String.setInt"] = vm.RoutineFunc(stringSetInt)
	t["String.backSpace"] = vm.RoutineFunc(stringBackSpace)
	t["String.doubleQuote"] = vm.RoutineFunc(stringDoubleQuote)
	t["String.newLine"] = vm.RoutineFunc(stringNewLine)

	t["Output.init"] = vm.RoutineFunc(lib.output.init)
	t["Output.moveCursor"] = vm.RoutineFunc(lib.output.moveCursor)
	t["Output.printChar"] = vm.RoutineFunc(lib.output.printChar)
	t["Output.printString"] = vm.RoutineFunc(outputPrintString)
	t["Output.printInt"] = vm.RoutineFunc(lib.output.printInt)
	t["Output.println"] = vm.RoutineFunc(lib.output.println)
	t["Output.backSpace"] = vm.RoutineFunc(lib.output.backSpace)

	t["Screen.init"] = vm.RoutineFunc(lib.screen.init)
	t["Screen.clearScreen"] = vm.RoutineFunc(screenClearScreen)
	t["Screen.setColor"] = vm.RoutineFunc(lib.screen.setColor)
	t["Screen.drawPixel"] = vm.RoutineFunc(lib.screen.drawPixel)
	t["Screen.drawLine"] = vm.RoutineFunc(lib.screen.drawLine)
	t["Screen.drawRectangle"] = vm.RoutineFunc(lib.screen.drawRectangle)
	t["Screen.drawCircle"] = vm.RoutineFunc(lib.screen.drawCircle)

	t["Keyboard.init"] = vm.RoutineFunc(keyboardInit)
	t["Keyboard.keyPressed"] = vm.RoutineFunc(keyboardKeyPressed)
	t["Keyboard.readChar"] = vm.RoutineFunc(keyboardReadChar)
	t["Keyboard.readLine"] = vm.RoutineFunc(keyboardReadLine)
	t["Keyboard.readInt"] = vm.RoutineFunc(keyboardReadInt)

	t["Sys.init"] = vm.RoutineFunc(sysInit)
	t["Sys.halt"] = vm.RoutineFunc(sysHalt)
	t["Sys.error"] = vm.RoutineFunc(sysError)
	t["Sys.wait"] = vm.RoutineFunc(sysWait)

	return t
}
