//go:build rp2040 || rp2350

// cmd/dac-console/main.go
package main

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"github.com/chmanie/dac8564/bus"
	"github.com/chmanie/dac8564/drivers/dac8564"
	"github.com/chmanie/dac8564/services/console"
	"github.com/chmanie/dac8564/services/dac"
	"github.com/chmanie/dac8564/services/heartbeat"
	"github.com/chmanie/dac8564/types"
)

// ---------- Configuration ----------

const (
	spiHz   = 10_000_000
	pinSCK  = machine.GP18
	pinSDO  = machine.GP19
	pinSDI  = machine.GP16
	pinSync = machine.GP17
	pinLDAC = machine.GP20
	pinEn   = machine.GP21

	uartBaud = 115200
	uartTX   = machine.GP0
	uartRX   = machine.GP1

	vrefMilliV = 2500

	// Boot sweep on every channel, 0 = skip.
	sweepMs    = 500
	sweepSteps = 32
)

func outputPin(p machine.Pin) dac8564.OutputPin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.High()
	return dac8564.PinOutput(p.Set)
}

func main() {
	time.Sleep(2 * time.Second)
	println("[main] boot …")
	ctx := context.Background()

	spi := machine.SPI0
	if err := spi.Configure(machine.SPIConfig{
		Frequency: spiHz,
		SCK:       pinSCK,
		SDO:       pinSDO,
		SDI:       pinSDI,
		Mode:      1,
	}); err != nil {
		println("[main] spi configure:", err.Error())
	}

	dev := dac8564.New(spi, outputPin(pinSync), outputPin(pinLDAC), outputPin(pinEn))
	dev.Configure(dac8564.Config{VRefMilliV: vrefMilliV})
	println("[main] dac enable …")
	dev.Enable()

	if sweepMs > 0 {
		sleep := func(d time.Duration) bool { time.Sleep(d); return true }
		for _, ch := range dac8564.Channels {
			if _, err := dev.Ramp(ch, 0, 0xFFFF, sweepMs, sweepSteps, sleep); err != nil {
				println("[main] sweep", ch.String(), "failed:", err.Error())
				break
			}
			if err := dev.WriteBlocking(ch, 0); err != nil {
				println("[main] reset", ch.String(), "failed:", err.Error())
			}
		}
		println("[main] sweep done")
	}

	b := bus.NewBus(8)
	mon := b.NewConnection("monitor")
	vals := mon.Subscribe(dac.Base("main").Append(dac.TokValue, bus.SingleWild))
	go func() {
		for m := range vals.Channel() {
			if v, ok := m.Payload.(types.DACValue); ok {
				println("[monitor]", v.Channel, int(v.Value))
			}
		}
	}()

	go (&heartbeat.Service{Interval: 10 * time.Second, Print: true}).Run(ctx, b.NewConnection("heartbeat"))

	// dev is already enabled; the service reports it ready without a second reset.
	svc := dac.New(b.NewConnection("dac"), dev, dac.Config{})
	go svc.Run(ctx)

	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{BaudRate: uartBaud, TX: uartTX, RX: uartRX}); err != nil {
		println("[main] uart configure:", err.Error())
	}
	println("[main] console on uart0")
	console.New(b.NewConnection("console"), u, console.Config{Timeout: 30 * time.Second}).Run(ctx)
}
