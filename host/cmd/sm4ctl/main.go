// Command sm4ctl is an interactive bench console for one SM4
// controller board: it opens a SocketCAN interface, mirrors the
// board's CANopen state, and lets an operator inspect or drive it
// from a line-oriented shell. Command loop idiom ported from donor
// host/cmd/gopper-host/main.go (bufio.Scanner + flag), tokenizing with
// github.com/google/shlex instead of strings.Fields so quoted
// arguments survive.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/shlex"

	"sm4/host/canbus"
	"sm4/host/debuglink"
)

var (
	iface      = flag.String("iface", "can0", "SocketCAN interface name")
	nodeID     = flag.Uint("node", 5, "CANopen node ID of the board")
	resolution = flag.Uint("resolution", 3200, "Encoder counts per revolution")

	debugDevice = flag.String("debug-device", "/dev/ttyACM0", "USB debug link serial device (opened lazily by dbg-read/dbg-write)")
	debugBaud   = flag.Int("debug-baud", 115200, "USB debug link baud rate")
)

var debugLink *debuglink.Link

func ensureDebugLink() (*debuglink.Link, error) {
	if debugLink != nil {
		return debugLink, nil
	}
	l, err := debuglink.Open(*debugDevice, *debugBaud, 2*time.Second)
	if err != nil {
		return nil, err
	}
	debugLink = l
	return l, nil
}

func main() {
	flag.Parse()

	fmt.Println("sm4ctl - SM4 controller bench console")
	fmt.Println("======================================")

	bus, err := canbus.Open(*iface)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open %s: %v\n", *iface, err)
		os.Exit(1)
	}
	defer bus.Close()

	mirror := canbus.NewMirror(uint16(*nodeID), uint32(*resolution), bus)
	defer mirror.Close()

	fmt.Printf("Mirroring node %d on %s. Type 'help' for commands, 'quit' to exit.\n", *nodeID, *iface)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return
		case "help", "?":
			printHelp()
		case "state":
			printState(mirror)
		case "vel":
			runVelocity(mirror, args[1:])
		case "enable":
			runEnable(mirror, args[1:])
		case "dbg-read":
			runDebugRead(args[1:])
		case "dbg-write":
			runDebugWrite(args[1:])
		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", args[0])
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  state              - Print the mirrored board state")
	fmt.Println("  vel <axis> <rps>   - Set an axis's target velocity")
	fmt.Println("  enable <axis> <on|off> - Enable or disable an axis")
	fmt.Println("  dbg-read <index-hex> <subindex-hex>          - Read a field over the USB debug link")
	fmt.Println("  dbg-write <index-hex> <subindex-hex> <4-byte-hex> - Write a field over the USB debug link")
	fmt.Println("  quit/exit/q        - Exit the program")
	fmt.Println()
}

func printState(m *canbus.Mirror) {
	s := m.State()
	fmt.Printf("NMT: %s  battery: %.2fV  temperature: %.1f°C\n", s.NMTState, s.Voltage, s.Temperature)
	printAxis(1, s.Axis1)
	printAxis(2, s.Axis2)
}

func printAxis(n int, a canbus.AxisState) {
	fmt.Printf("  axis%d: mode=%s enabled=%v velocity(actual=%.3f target=%.3f) position(rev=%d angle=%d)\n",
		n, a.Mode, a.Enabled, a.ActualVelocity, a.TargetVelocity, a.ActualPosition.GetRevolutions(), a.ActualPosition.GetAngle())
}

func runVelocity(m *canbus.Mirror, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: vel <1|2> <rps>")
		return
	}
	rps, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid velocity %q: %v\n", args[1], err)
		return
	}
	switch args[0] {
	case "1":
		m.SetAxis1TargetVelocity(float32(rps))
	case "2":
		m.SetAxis2TargetVelocity(float32(rps))
	default:
		fmt.Println("usage: vel <1|2> <rps>")
		return
	}
	fmt.Println("ok (takes effect on next SYNC)")
}

func runDebugRead(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: dbg-read <index-hex> <subindex-hex>")
		return
	}
	index, sub, err := parseIndexSub(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	link, err := ensureDebugLink()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	value, err := link.Read(index, sub)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Printf("index=0x%04X sub=0x%02X value=%s\n", index, sub, hex.EncodeToString(value[:]))
}

func runDebugWrite(args []string) {
	if len(args) != 3 {
		fmt.Println("usage: dbg-write <index-hex> <subindex-hex> <4-byte-hex>")
		return
	}
	index, sub, err := parseIndexSub(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	raw, err := hex.DecodeString(args[2])
	if err != nil || len(raw) != 4 {
		fmt.Println("value must be exactly 4 hex-encoded bytes")
		return
	}
	var value [4]byte
	copy(value[:], raw)

	link, err := ensureDebugLink()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	if err := link.Write(index, sub, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Println("ok")
}

func parseIndexSub(indexHex, subHex string) (uint16, uint8, error) {
	index, err := strconv.ParseUint(indexHex, 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid index %q: %w", indexHex, err)
	}
	sub, err := strconv.ParseUint(subHex, 16, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid subindex %q: %w", subHex, err)
	}
	return uint16(index), uint8(sub), nil
}

func runEnable(m *canbus.Mirror, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: enable <1|2> <on|off>")
		return
	}
	var enabled bool
	switch args[1] {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		fmt.Println("usage: enable <1|2> <on|off>")
		return
	}
	switch args[0] {
	case "1":
		m.SetAxis1Enabled(enabled)
	case "2":
		m.SetAxis2Enabled(enabled)
	default:
		fmt.Println("usage: enable <1|2> <on|off>")
		return
	}
	fmt.Println("ok (takes effect on next SYNC)")
}

