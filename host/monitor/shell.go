package monitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/shlex"

	"i2cmaster/core"
	"i2cmaster/sensor/mpu6050"
)

const shellHelp = `Commands:
  read ADDR REG [N]       read N bytes (default 1) starting at REG
  write ADDR REG BYTE...  write bytes starting at REG
  scan                    probe every 7-bit address with a read of register 0
  help                    show this text
  quit                    leave the shell
Numbers accept 0x, 0o and 0b prefixes. Text after # is ignored.
`

var errQuit = errors.New("quit")

// Shell runs a line-oriented register shell on bus until r is exhausted or
// the user types quit. Command errors are printed and do not end the shell.
func Shell(bus mpu6050.RegisterBus, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	fmt.Fprint(w, "> ")
	for sc.Scan() {
		args, err := shlex.Split(sc.Text())
		if err == nil && len(args) > 0 {
			err = runCommand(bus, w, args)
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
		fmt.Fprint(w, "> ")
	}
	return sc.Err()
}

func runCommand(bus mpu6050.RegisterBus, w io.Writer, args []string) error {
	switch args[0] {
	case "help", "?":
		_, err := io.WriteString(w, shellHelp)
		return err
	case "quit", "exit":
		return errQuit
	case "scan":
		return scan(bus, w)
	case "read":
		return readCommand(bus, w, args[1:])
	case "write":
		return writeCommand(bus, w, args[1:])
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func readCommand(bus mpu6050.RegisterBus, w io.Writer, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("usage: read ADDR REG [N]")
	}
	addr, reg, err := parseTarget(args)
	if err != nil {
		return err
	}

	n := 1
	if len(args) == 3 {
		v, err := strconv.ParseUint(args[2], 0, 16)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		n = int(v)
	}

	if n == 1 {
		b, err := bus.ByteRead(addr, reg)
		if err != nil {
			return err
		}
		return dump(w, reg, []byte{b})
	}
	buf := make([]byte, n)
	if err := bus.BurstRead(addr, reg, buf); err != nil {
		return err
	}
	return dump(w, reg, buf)
}

func writeCommand(bus mpu6050.RegisterBus, w io.Writer, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: write ADDR REG BYTE...")
	}
	addr, reg, err := parseTarget(args)
	if err != nil {
		return err
	}

	data := make([]byte, 0, len(args)-2)
	for _, a := range args[2:] {
		v, err := strconv.ParseUint(a, 0, 8)
		if err != nil {
			return fmt.Errorf("data: %w", err)
		}
		data = append(data, byte(v))
	}
	if err := bus.BurstWrite(addr, reg, data); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "wrote %d bytes\n", len(data))
	return err
}

// scan reports every address that acknowledges a read of register 0.
// Reserved addresses are skipped.
func scan(bus mpu6050.RegisterBus, w io.Writer) error {
	found := 0
	for a := core.Address(0x08); a < 0x78; a++ {
		if _, err := bus.ByteRead(a, 0); err != nil {
			if errors.Is(err, core.ErrAborted) {
				continue
			}
			return err
		}
		fmt.Fprintf(w, "found device at 0x%02x\n", uint8(a))
		found++
	}
	_, err := fmt.Fprintf(w, "%d devices\n", found)
	return err
}

func parseTarget(args []string) (core.Address, uint8, error) {
	a, err := strconv.ParseUint(args[0], 0, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("address: %w", err)
	}
	r, err := strconv.ParseUint(args[1], 0, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("register: %w", err)
	}
	return core.Address(a), uint8(r), nil
}

func dump(w io.Writer, reg uint8, data []byte) error {
	for i := 0; i < len(data); i += 8 {
		end := min(i+8, len(data))
		fmt.Fprintf(w, "0x%02x:", uint8(int(reg)+i))
		for _, b := range data[i:end] {
			fmt.Fprintf(w, " %02x", b)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
