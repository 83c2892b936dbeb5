//go:build rp2040 || rp2350

package main

import (
	"machine"

	"kegboard/core"
)

var debugUART *machine.UART

// InitDebugUART routes core debug output to UART1 at 115200 baud
func InitDebugUART(tx, rx machine.Pin) {
	debugUART = machine.UART1

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       tx,
		RX:       rx,
	})
	if err != nil {
		debugUART = nil
		return
	}

	core.SetDebugWriter(func(s string) {
		debugUART.Write([]byte(s))
		debugUART.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()
	core.DebugPrintln("=== kegboard debug UART ===")
}
