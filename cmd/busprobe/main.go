//go:build rp2040

// Command busprobe bit-bangs I2C on two Pico GPIOs, scans the bus and
// dumps the first page of any EEPROM it finds. Wiring: SDA on GP16, SCL
// on GP17, external pull-ups recommended; console on UART0 (GP0/GP1).
//
// Flash with:
//
//	tinygo flash -target=pico ./cmd/busprobe
package main

import (
	"fmt"
	"machine"
	"sync/atomic"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"softi2c-go/drivers/eeprom24"
	"softi2c-go/softi2c"
	"softi2c-go/x/timex"
)

const busHz = 50_000

// pin adapts a machine.Pin to the engine's line model: direction Input
// releases the line to the pull-up, Output with a low latch pulls it
// down.
type pin struct{ p machine.Pin }

func (x pin) Set() { x.p.High() }

func (x pin) Clear() { x.p.Low() }

func (x pin) Read() softi2c.Level {
	if x.p.Get() {
		return softi2c.High
	}
	return softi2c.Low
}

func (x pin) SetDirection(d softi2c.Direction) {
	if d == softi2c.Input {
		x.p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		return
	}
	x.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
}

// ticker feeds the engine from a goroutine instead of a hardware timer.
// Good enough for a probe tool; the engine only requires that ticks stop
// arriving while disabled, not that their period is exact.
type ticker struct {
	enabled atomic.Bool
	period  time.Duration
}

func (t *ticker) Enable()  { t.enabled.Store(true) }
func (t *ticker) Disable() { t.enabled.Store(false) }

func (t *ticker) loop(tick func()) {
	for {
		time.Sleep(t.period)
		if t.enabled.Load() {
			tick()
		}
	}
}

func main() {
	println("[busprobe] boot …")
	time.Sleep(1500 * time.Millisecond)

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	tk := &ticker{period: timex.TickPeriod(busHz)}
	eng := softi2c.New(pin{machine.GP16}, pin{machine.GP17}, tk)
	go tk.loop(eng.Tick)

	fmt.Fprintf(u, "scanning at %d Hz (tick %v)\r\n", busHz, tk.period)

	var probe [1]byte
	var found []uint8
	for addr := uint8(0x08); addr <= 0x77; addr++ {
		_, err := eng.Transfer(softi2c.Request{
			Addr: addr, Read: true, Buf: probe[:], SendStop: true,
		})
		if err == nil {
			found = append(found, addr)
			fmt.Fprintf(u, "  %#02x responds\r\n", addr)
		}
	}
	fmt.Fprintf(u, "scan done, %d device(s)\r\n", len(found))

	for _, addr := range found {
		if addr < eeprom24.AddressDefault || addr > eeprom24.AddressDefault+7 {
			continue
		}
		dev, err := eeprom24.New(eng, eeprom24.Config{
			Address: uint16(addr), Size: 256, PageSize: 8,
		})
		if err != nil {
			continue
		}
		var page [8]byte
		if _, err := dev.ReadAt(page[:], 0); err != nil {
			fmt.Fprintf(u, "%#02x: read failed: %v\r\n", addr, err)
			continue
		}
		fmt.Fprintf(u, "%#02x page 0: %#x\r\n", addr, page)
	}

	for {
		time.Sleep(time.Minute)
	}
}
