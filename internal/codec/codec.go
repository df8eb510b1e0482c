// Package codec implements the message framing used between linecast and its
// clients: one UTF-8 text message per newline-delimited frame.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxFrameSize bounds how many bytes a single inbound frame may occupy
// before the read is treated as a transport error.
const DefaultMaxFrameSize = 64 * 1024

// ErrFrameTooLarge is returned by Receive when a frame exceeds the configured
// maximum size. The stream is unusable afterwards.
var ErrFrameTooLarge = errors.New("codec: frame exceeds maximum size")

// ErrInvalidPayload is returned by Send when the payload cannot be framed
// losslessly, for example because it embeds a raw newline.
var ErrInvalidPayload = errors.New("codec: payload not representable in line framing")

// ValidatePayload reports whether text can round-trip through the line
// framing unchanged: it must not contain the frame delimiter and must not end
// with a carriage return, which the receive side strips as part of a CRLF.
func ValidatePayload(text string) error {
	if strings.ContainsRune(text, '\n') || strings.HasSuffix(text, "\r") {
		return ErrInvalidPayload
	}
	return nil
}

// LineCodec frames text messages over a byte stream, one message per
// newline-terminated line. A LineCodec is not safe for concurrent use on the
// same direction; linecast gives each connection exactly one reader and one
// writer.
type LineCodec struct {
	rw      io.ReadWriter
	reader  *bufio.Reader
	maxSize int
}

// New wraps rw with a LineCodec using DefaultMaxFrameSize.
func New(rw io.ReadWriter) *LineCodec {
	return NewWithLimit(rw, DefaultMaxFrameSize)
}

// NewWithLimit wraps rw with a LineCodec enforcing the given frame size limit.
// Non-positive limits fall back to DefaultMaxFrameSize.
func NewWithLimit(rw io.ReadWriter, maxSize int) *LineCodec {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	bufSize := maxSize
	if bufSize > 4096 {
		bufSize = 4096
	}
	return &LineCodec{
		rw:      rw,
		reader:  bufio.NewReaderSize(rw, bufSize),
		maxSize: maxSize,
	}
}

// Send writes one message to the stream, appending the frame delimiter.
// Payloads rejected by ValidatePayload are refused; everything else
// round-trips unchanged.
func (c *LineCodec) Send(text string) error {
	if err := ValidatePayload(text); err != nil {
		return err
	}
	if _, err := io.WriteString(c.rw, text+"\n"); err != nil {
		return fmt.Errorf("codec: send: %w", err)
	}
	return nil
}

// Receive blocks until the next complete frame arrives and returns its payload
// with the delimiter stripped. An orderly remote close surfaces as io.EOF; a
// close in the middle of a frame surfaces as io.ErrUnexpectedEOF.
func (c *LineCodec) Receive() (string, error) {
	var sb strings.Builder
	for {
		chunk, err := c.reader.ReadSlice('\n')
		sb.Write(chunk)
		if sb.Len() > c.maxSize {
			return "", ErrFrameTooLarge
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			if sb.Len() == 0 {
				return "", io.EOF
			}
			return "", io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("codec: receive: %w", err)
	}
	line := sb.String()
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
