//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"kegboard/board"
	"kegboard/core"
	"kegboard/onewire"
	"kegboard/serial"
)

// Pin assignment
const (
	pinLinkTX   = machine.GPIO0
	pinLinkRX   = machine.GPIO1
	pinMeter0   = machine.GPIO2
	pinMeter1   = machine.GPIO3
	pinRelay0   = machine.GPIO4
	pinRelay1   = machine.GPIO5
	pinThermo   = machine.GPIO6
	pinPresence = machine.GPIO7
	pinDebugTX  = machine.GPIO8
	pinDebugRX  = machine.GPIO9
	pinSelfTest = machine.GPIO10
)

var (
	kb   *board.Board
	link *serial.UARTPort

	// Debug counters
	panics      uint32
	writeErrors uint32
)

func main() {
	// Disable the watchdog left over from a previous boot
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitDebugUART(pinDebugTX, pinDebugRX)

	UpdateSystemTime()
	core.TimerInit()

	link, err = serial.OpenUART(machine.UART0, serial.DefaultBaud, pinLinkTX, pinLinkRX)
	if err != nil {
		core.DebugPrintln("[BOOT] link UART: " + err.Error())
		return
	}

	core.SetGPIODriver(NewRPGPIODriver())

	cfg := board.DefaultConfig()
	cfg.OutputPins = []core.GPIOPin{core.GPIOPin(pinRelay0), core.GPIOPin(pinRelay1)}
	cfg.SelfTest = &board.SelfTestConfig{Pin: core.GPIOPin(pinSelfTest)}

	kb, err = board.New(cfg, board.Deps{
		Clock:       core.SystemClock{},
		Out:         link,
		ThermoBus:   onewire.NewPinBus(pinThermo),
		PresenceBus: onewire.NewPinBus(pinPresence),
	})
	if err != nil {
		core.DebugPrintln("[BOOT] board: " + err.Error())
		return
	}

	for i, pin := range []machine.Pin{pinMeter0, pinMeter1} {
		if err := attachMeter(pin, kb.Meter(i)); err != nil {
			core.DebugPrintln("[BOOT] meter " + core.Itoa(i) + ": " + err.Error())
		}
	}

	if err := kb.Start(); err != nil {
		core.DebugPrintln("[BOOT] start: " + err.Error())
	}

	var rx [64]byte
	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					panics++
					core.DumpEvents()
				}
			}()

			UpdateSystemTime()

			n, _ := link.Read(rx[:])
			if n > 0 {
				if err := kb.Receive(rx[:n]); err != nil {
					writeErrors++
				}
			}

			if err := kb.Tick(); err != nil {
				writeErrors++
			}
		}()

		// Yield to other goroutines
		time.Sleep(100 * time.Microsecond)
	}
}
