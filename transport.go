package mercury

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/goburrow/serial"
)

const (
	// DefaultTimeout bound of the wait for a response on deadline capable channels
	DefaultTimeout = SerialDefaultTimeout
	// DefaultDelay minimum turnaround the meter needs between request and response
	DefaultDelay = 20 * time.Millisecond
)

// Channel is an already configured duplex byte channel to the meter. Read
// must be bounded: when nothing arrives in time it returns a timeout error
// (serial.ErrTimeout, os.ErrDeadlineExceeded, a net.Error with Timeout() or
// ErrTimeout) instead of blocking. Channels that can SetReadDeadline get a
// deadline of the client timeout before every response.
type Channel interface {
	io.ReadWriter
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// exchange sends one request frame and reads the response, expecting
// bytesToRead bytes. No retry. A short or garbled response is returned
// as is, validating it is the codec's job.
func (sf *Client) exchange(aduRequest []byte, bytesToRead int) (aduResponse []byte, err error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	sf.Debugf("sending [% x]", aduRequest)
	if _, err = sf.ch.Write(aduRequest); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommunication, err)
	}
	time.Sleep(sf.delay)

	if d, ok := sf.ch.(readDeadliner); ok {
		if err = d.SetReadDeadline(time.Now().Add(sf.timeout)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCommunication, err)
		}
	}

	var n int
	var data [responseBufferSize]byte
	n, err = sf.ch.Read(data[:])
	switch {
	case err != nil && n == 0:
		if isTimeout(err) {
			sf.Errorf("no response within %v", sf.timeout)
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %w", ErrCommunication, err)
	case n == 0:
		return nil, ErrTimeout
	}
	// the frame may arrive in pieces, collect the rest until it is complete
	// or the line goes quiet
	for n < bytesToRead && err == nil {
		var n1 int
		n1, err = sf.ch.Read(data[n:])
		n += n1
		if n1 == 0 {
			break
		}
	}
	aduResponse = data[:n]
	sf.Debugf("received [% x]", aduResponse)
	return aduResponse, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) ||
		errors.Is(err, serial.ErrTimeout) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
