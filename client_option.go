package mercury

import (
	"time"
)

// Option client option for user.
type Option func(*Client)

// WithAddress set the RS-485 address of the meter, default DefaultAddress.
func WithAddress(address byte) Option {
	return func(c *Client) {
		c.address = address
	}
}

// WithAccessLevel set the access level used to open a session, default DefaultAccessLevel.
func WithAccessLevel(level byte) Option {
	return func(c *Client) {
		c.accessLevel = level
	}
}

// WithPassword set the password used to open a session, default DefaultPassword.
func WithPassword(password [PasswordSize]byte) Option {
	return func(c *Client) {
		c.password = password
	}
}

// WithTimeout set the response timeout, only valid on channels supporting
// read deadlines. Serial ports are bounded by their own configuration.
func WithTimeout(t time.Duration) Option {
	return func(c *Client) {
		if t > 0 {
			c.timeout = t
		}
	}
}

// WithDelay set the delay between writing a request and reading the response.
func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithLocker set the shared bus lock held by Exclusive and Collect.
func WithLocker(l Locker) Option {
	return func(c *Client) {
		c.locker = l
	}
}

// WithAddressCheck reject responses whose address byte differs from the meter address.
func WithAddressCheck() Option {
	return func(c *Client) {
		c.checkAddress = true
	}
}

// WithLogProvider set logger provider.
func WithLogProvider(provider LogProvider) Option {
	return func(c *Client) {
		c.setLogProvider(provider)
	}
}

// WithEnableLogger enable log output when you has set logger.
func WithEnableLogger() Option {
	return func(c *Client) {
		c.LogMode(true)
	}
}
