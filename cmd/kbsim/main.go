// Command kbsim runs the kegboard firmware core on the host against
// simulated sensors, meters and token readers. With a serial device it
// serves a real host; without one it logs the frames it would send.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"kegboard/board"
	"kegboard/config"
	"kegboard/core"
	"kegboard/logging"
	"kegboard/serial"
	"kegboard/sim"
)

var (
	configPath = flag.String("config", "", "YAML configuration file")
	device     = flag.String("device", "", "Serial device to serve the host on")
	duration   = flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		return config.Default(), nil
	}
	return config.Load(*configPath)
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *device != "" {
		cfg.Serial.Device = *device
	}
	if *debug {
		cfg.Logger.Level = "debug"
	}
	if err := logging.Init(&cfg.Logger); err != nil {
		return err
	}
	logging.InstallDebugWriter()
	log := logging.WithField("board", cfg.Board.Name)

	peripherals, err := sim.New(cfg.Sim)
	if err != nil {
		return err
	}

	mem := core.NewMemoryGPIO()
	var (
		gpio     core.GPIODriver = mem
		loopback *sim.Loopback
	)
	if st := cfg.Board.SelfTest; st != nil && cfg.Sim.SelfTestMeter != nil {
		loopback = sim.NewLoopback(mem, core.GPIOPin(st.Pin))
		gpio = loopback
	}
	core.SetGPIODriver(gpio)

	var (
		port serial.Port
		out  io.Writer
	)
	if cfg.Serial.Device != "" {
		port, err = serial.Open(&cfg.Serial)
		if err != nil {
			return err
		}
		defer port.Close()
		out = port
		log.Infof("serving host on %s at %d baud", cfg.Serial.Device, cfg.Serial.Baud)
	} else {
		out = newTraceWriter(log)
		log.Info("no serial device, tracing frames")
	}

	core.SetTime(0)
	core.TimerInit()
	b, err := board.New(cfg.ToBoard(), board.Deps{
		Clock:       core.SystemClock{},
		Out:         out,
		ThermoBus:   peripherals.Thermo,
		PresenceBus: peripherals.Presence,
		GPIO:        gpio,
	})
	if err != nil {
		return err
	}
	if loopback != nil {
		loopback.Connect(b.Meter(*cfg.Sim.SelfTestMeter))
		log.Infof("selftest pin %d looped back to %s", cfg.Board.SelfTest.Pin, b.Meter(*cfg.Sim.SelfTestMeter).Name())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	var rx chan []byte
	if port != nil {
		rx = make(chan []byte, 16)
		go readLoop(ctx, port, rx)
	}

	if err := b.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	start := time.Now()
	ticker := time.NewTicker(time.Duration(cfg.Sim.TickMs) * time.Millisecond)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case data := <-rx:
			logging.HexDump("rx", data)
			if err := b.Receive(data); err != nil {
				log.Warnf("write failed: %v", err)
			}

		case <-ticker.C:
			now := uint32(time.Since(start).Milliseconds())
			core.SetTime(now)
			peripherals.Step(b, now)
			if err := b.Tick(); err != nil {
				log.Warnf("write failed: %v", err)
			}
		}
	}

	logStats(log, b)
	core.DumpEvents()
	return nil
}

// readLoop forwards bytes from the port to the main loop until ctx ends
func readLoop(ctx context.Context, port serial.Port, rx chan<- []byte) {
	buf := make([]byte, 256)
	for ctx.Err() == nil {
		n, err := port.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case rx <- data:
			case <-ctx.Done():
				return
			}
		}
		if err != nil && err != io.EOF {
			if ctx.Err() == nil {
				logging.GetLogger().Errorf("serial read: %v", err)
			}
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func logStats(log *logrus.Entry, b *board.Board) {
	s := b.Stats()
	rs := b.ReaderStats()
	log.Infof("sent=%d emit_failed=%d write_errors=%d command_errors=%d input_overflow=%d scan_errors=%d",
		s.Sent, s.EmitFailed, s.WriteErrors, s.CommandErrors, s.InputOverflow, s.ScanErrors)
	log.Infof("frames=%d resyncs=%d malformed=%d bad_checksum=%d dropped_tokens=%d",
		rs.Frames, rs.Resyncs, rs.Malformed, rs.BadChecksum, b.DroppedAuthTokens())
}
