// Command bustrace runs the bit-banged master against the simulated bus
// on the host and prints a trace of what happened on the wires. Useful
// for eyeballing framing changes without hardware.
package main

import (
	"log/slog"
	"os"

	"softi2c-go/drivers/eeprom24"
	"softi2c-go/errcode"
	"softi2c-go/softi2c"
	"softi2c-go/softi2c/simbus"
	"softi2c-go/x/timex"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	sdaW, sclW := simbus.NewWire(), simbus.NewWire()
	sda, scl := simbus.NewPin(sdaW), simbus.NewPin(sclW)
	clk := simbus.NewClock()
	rec := simbus.NewRecorder(sdaW, sclW)

	slave := simbus.NewSlave(sdaW, sclW, eeprom24.AddressDefault)
	slave.Pointer = true

	eng := softi2c.New(sda, scl, clk)
	clk.Run(eng.Tick, slave.Step, rec.Sample)
	defer clk.Stop()
	clk.WaitIdle()

	log.Info("bus up",
		"tick_period", timex.TickPeriod(100_000),
		"powerup_ticks", rec.Ticks)

	dev, err := eeprom24.New(eng, eeprom24.Config24C02)
	if err != nil {
		log.Error("eeprom24 config", "err", err)
		os.Exit(1)
	}

	msg := []byte("bitbang")
	if _, err := dev.WriteAt(msg, 0x10); err != nil {
		log.Error("write", "err", err, "code", errcode.Of(err))
		os.Exit(1)
	}
	clk.WaitIdle()
	log.Info("wrote", "bytes", len(msg), "offset", 0x10,
		"ticks", rec.Ticks, "starts", rec.StartEdges, "stops", rec.StopEdges)

	back := make([]byte, len(msg))
	if _, err := dev.ReadAt(back, 0x10); err != nil {
		log.Error("read", "err", err, "code", errcode.Of(err))
		os.Exit(1)
	}
	clk.WaitIdle()
	log.Info("read back", "data", string(back),
		"ticks", rec.Ticks, "master_acks", slave.MasterAcks)

	// An address nobody answers: the transfer fails cleanly and the bus is
	// released.
	if _, err := eng.Transfer(softi2c.Request{
		Addr: 0x29, Buf: make([]byte, 1), SendStop: true,
	}); err != nil {
		clk.WaitIdle()
		log.Debug("probe of empty address", "addr", 0x29, "code", errcode.Of(err))
	}

	if string(back) != string(msg) {
		log.Error("mismatch", "want", string(msg), "got", string(back))
		os.Exit(1)
	}
	log.Info("ok")
}
