//go:build linux

package canbus

import (
	"fmt"
	"net"
	"unsafe"

	"golang.org/x/sys/unix"

	"sm4/canopen"
)

// SocketCANBus is a raw SocketCAN transport, grounded on golang.org/x/sys/unix's
// PF_CAN/SOCK_RAW bindings (there is no vendored SocketCAN client in
// the retrieval pack; x/sys is already a direct dependency of the
// donor's platform code, so this keeps the wire-level CAN transport on
// a library the pack's stack already pulls in rather than hand-rolling
// the netlink/ioctl plumbing from nothing).
type SocketCANBus struct {
	fd int
}

// sockaddrCAN mirrors struct sockaddr_can for AF_CAN/SOCK_RAW binds;
// x/sys/unix does not define this type directly, so it is built here
// from the raw interface index the way the kernel's CAN socket API
// expects (see linux/can.h).
type sockaddrCAN struct {
	Family  uint16
	Ifindex int32
	_       [8]byte // rx_id / tx_id union from can_addr, unused for raw sockets
}

// Open binds a raw CAN_RAW socket to the named interface (e.g. "can0").
func Open(ifaceName string) (*SocketCANBus, error) {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("canbus: socket: %w", err)
	}

	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("canbus: %w", err)
	}

	addr := sockaddrCAN{Family: unix.AF_CAN, Ifindex: int32(iface.Index)}
	if _, _, errno := unix.Syscall(unix.SYS_BIND, uintptr(fd),
		uintptr(unsafe.Pointer(&addr)), unsafe.Sizeof(addr)); errno != 0 {
		unix.Close(fd)
		return nil, fmt.Errorf("canbus: bind %s: %w", ifaceName, errno)
	}

	return &SocketCANBus{fd: fd}, nil
}

// Close releases the underlying socket.
func (b *SocketCANBus) Close() error {
	return unix.Close(b.fd)
}

// canFrameWireSize is sizeof(struct can_frame): 4-byte id, 1-byte dlc,
// 3 bytes padding, 8 bytes data.
const canFrameWireSize = 16

// Send writes f as a classic (non-FD) CAN frame.
func (b *SocketCANBus) Send(f canopen.Frame) error {
	var raw [canFrameWireSize]byte
	raw[0] = byte(f.ID)
	raw[1] = byte(f.ID >> 8)
	raw[4] = f.Length
	copy(raw[8:], f.Data[:f.Length])

	_, err := unix.Write(b.fd, raw[:])
	if err != nil {
		return fmt.Errorf("canbus: write: %w", err)
	}
	return nil
}

// Receive blocks for the next frame on the bus.
func (b *SocketCANBus) Receive() (canopen.Frame, error) {
	var raw [canFrameWireSize]byte
	n, err := unix.Read(b.fd, raw[:])
	if err != nil {
		return canopen.Frame{}, fmt.Errorf("canbus: read: %w", err)
	}
	if n < canFrameWireSize {
		return canopen.Frame{}, fmt.Errorf("canbus: short frame read (%d bytes)", n)
	}

	var f canopen.Frame
	f.ID = uint16(raw[0]) | uint16(raw[1])<<8
	f.Length = raw[4]
	copy(f.Data[:], raw[8:16])
	return f, nil
}
