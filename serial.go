package mercury

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/goburrow/serial"
)

const (
	// SerialDefaultTimeout bound of a single read waiting for the meter
	SerialDefaultTimeout = 5 * time.Second
	// SerialDefaultBaudRate factory speed of the meter
	SerialDefaultBaudRate = 9600
	// TCPDefaultTimeout dial timeout of RS-485 to Ethernet converters
	TCPDefaultTimeout = 5 * time.Second
)

// ErrClosedConnection 连接已关闭
var ErrClosedConnection = errors.New("mercury: use of closed connection")

// SerialPort is an RS-485 line opened through goburrow/serial. Reads wait at
// most Config.Timeout for the line to become readable and then return what
// is buffered. The caller owns its lifecycle.
type SerialPort struct {
	// Serial port configuration.
	serial.Config
	mu   sync.Mutex
	port io.ReadWriteCloser
}

var _ io.ReadWriteCloser = (*SerialPort)(nil)

// NewSerialPort returns an unconnected port for device with the line
// settings the meter expects (8N1, SerialDefaultBaudRate).
func NewSerialPort(device string) *SerialPort {
	return &SerialPort{
		Config: serial.Config{
			Address:  device,
			BaudRate: SerialDefaultBaudRate,
			DataBits: 8,
			StopBits: 1,
			Parity:   "N",
			Timeout:  SerialDefaultTimeout,
		},
	}
}

// Connect opens the device.
func (sf *SerialPort) Connect() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if sf.port != nil {
		return nil
	}
	if sf.Timeout <= 0 {
		sf.Timeout = SerialDefaultTimeout
	}
	port, err := serial.Open(&sf.Config)
	if err != nil {
		return err
	}
	sf.port = port
	return nil
}

// IsConnected returns a bool signifying whether the port is open or not.
func (sf *SerialPort) IsConnected() bool {
	sf.mu.Lock()
	b := sf.port != nil
	sf.mu.Unlock()
	return b
}

// Read waits for the line to become readable, bounded by Config.Timeout.
func (sf *SerialPort) Read(b []byte) (int, error) {
	sf.mu.Lock()
	port := sf.port
	sf.mu.Unlock()
	if port == nil {
		return 0, ErrClosedConnection
	}
	return port.Read(b)
}

// Write writes b to the line.
func (sf *SerialPort) Write(b []byte) (int, error) {
	sf.mu.Lock()
	port := sf.port
	sf.mu.Unlock()
	if port == nil {
		return 0, ErrClosedConnection
	}
	return port.Write(b)
}

// Close close current connection.
func (sf *SerialPort) Close() error {
	var err error
	sf.mu.Lock()
	if sf.port != nil {
		err = sf.port.Close()
		sf.port = nil
	}
	sf.mu.Unlock()
	return err
}

// DialTCP connects to an RS-485 to Ethernet converter in transparent mode.
// The client sets a read deadline before every response.
func DialTCP(address string, timeout time.Duration) (net.Conn, error) {
	if timeout <= 0 {
		timeout = TCPDefaultTimeout
	}
	return net.DialTimeout("tcp", address, timeout)
}
